package chart

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"
	"math"
	"testing"

	"cpuchart/internal/aggregate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleChartRows() []aggregate.ChartRow {
	return aggregate.AggregateRows([][]string{
		{"i1", "p1", "x", "0", "1.5"},
		{"i1", "p1", "x", "1", "2.5"},
		{"i2", "p2", "x", "0", "3.0"},
	})
}

func TestOverallExample(t *testing.T) {
	d := Overall(exampleChartRows())
	require.NotNil(t, d)
	assert.Equal(t, KindBar, d.Kind)
	assert.Equal(t, ClickSelectProcess, d.Click)
	assert.Equal(t, []string{"i1", "i2"}, d.Categories)
	require.Len(t, d.Series, 2)
	p1, ok := d.SeriesByName("p1")
	require.True(t, ok)
	assert.Equal(t, []Value{4.0, 0}, p1.Values)
	p2, ok := d.SeriesByName("p2")
	require.True(t, ok)
	assert.Equal(t, []Value{0, 3.0}, p2.Values)
}

func TestOverallNoRows(t *testing.T) {
	assert.Nil(t, Overall(nil))
}

func TestOverallSumsMatchInput(t *testing.T) {
	rows := aggregate.AggregateRows([][]string{
		{"a", "p", "", "0", "1"},
		{"a", "p", "", "1", "2"},
		{"a", "p", "", "0", "5"}, // overwrites core 0
		{"b", "p", "", "0", "0.25"},
		{"b", "q", "", "3", "4"},
	})
	d := Overall(rows)
	require.NotNil(t, d)
	p, _ := d.SeriesByName("p")
	q, _ := d.SeriesByName("q")
	assert.Equal(t, []Value{7, 0.25}, p.Values)
	assert.Equal(t, []Value{0, 4}, q.Values)
}

func TestProcessPies(t *testing.T) {
	rows := exampleChartRows()
	pies := ProcessPies("p1", rows)
	require.Len(t, pies, 1)
	assert.Equal(t, KindPie, pies[0].Kind)
	assert.Equal(t, "p1 on Instance i1", pies[0].Title)
	require.Len(t, pies[0].Series, 1)
	assert.Equal(t, CPUTimeSeriesName, pies[0].Series[0].Name)
	assert.Equal(t, []Slice{{Name: "Core 0", Value: 1.5}, {Name: "Core 1", Value: 2.5}}, pies[0].Series[0].Slices)
}

func TestProcessPiesAbsent(t *testing.T) {
	rows := exampleChartRows()
	assert.Empty(t, ProcessPies("nope", rows))
	assert.Empty(t, ProcessPies("", rows))
}

func TestProcessPiesEmptyProcessName(t *testing.T) {
	rows := aggregate.AggregateRows([][]string{
		{"i1", "", "x", "0", "1.5"},
		{"i2", "p1", "x", "0", "2"},
	})
	overall := Overall(rows)
	require.NotNil(t, overall)
	_, ok := overall.SeriesByName("")
	require.True(t, ok)

	pies := ProcessPies("", rows)
	require.Len(t, pies, 1)
	assert.Equal(t, " on Instance i1", pies[0].Title)

	set := BuildAll(rows, Selection{}.WithProcess(""))
	assert.Len(t, set.ProcessPies, 1)
}

func TestProcessPiesOnePerInstanceWithData(t *testing.T) {
	rows := aggregate.AggregateRows([][]string{
		{"a", "p", "", "0", "1"},
		{"b", "q", "", "0", "1"},
		{"c", "p", "", "0", "1"},
	})
	pies := ProcessPies("p", rows)
	require.Len(t, pies, 2)
	assert.Equal(t, "p on Instance a", pies[0].Title)
	assert.Equal(t, "p on Instance c", pies[1].Title)
	assert.NotEqual(t, pies[0].ID, pies[1].ID)
}

func TestInstanceBar(t *testing.T) {
	rows := exampleChartRows()
	d := InstanceBar("i2", rows)
	require.NotNil(t, d)
	assert.Equal(t, []string{"p1", "p2"}, d.Categories)
	require.Len(t, d.Series, 1)
	assert.Equal(t, "i2", d.Series[0].Name)
	assert.Equal(t, []Value{0, 3.0}, d.Series[0].Values)
	assert.Equal(t, ClickNone, d.Click)
}

func TestInstancePie(t *testing.T) {
	rows := exampleChartRows()
	d := InstancePie("i1", rows)
	require.NotNil(t, d)
	assert.Equal(t, "Process CPU Time Portion on Instance i1", d.Title)
	assert.Equal(t, []Slice{{Name: "p1", Value: 4.0}, {Name: "p2", Value: 0}}, d.Series[0].Slices)
}

func TestInstanceChartsMissingInstance(t *testing.T) {
	rows := exampleChartRows()
	for _, instance := range []string{"", "i3"} {
		assert.Nil(t, InstanceBar(instance, rows), instance)
		assert.Nil(t, InstancePie(instance, rows), instance)
	}
}

func TestValueJSON(t *testing.T) {
	out, err := json.Marshal([]Value{1.5, Value(math.NaN()), Value(math.Inf(1)), 0})
	require.NoError(t, err)
	assert.Equal(t, "[1.5,null,null,0]", string(out))

	var back []Value
	require.NoError(t, json.Unmarshal(out, &back))
	require.Len(t, back, 4)
	assert.Equal(t, Value(1.5), back[0])
	assert.True(t, math.IsNaN(float64(back[1])))
}

func TestNaNPropagatesToSums(t *testing.T) {
	rows := aggregate.AggregateRows([][]string{
		{"a", "p", "", "0", "1"},
		{"a", "p", "", "1", "n/a"},
	})
	d := Overall(rows)
	require.NotNil(t, d)
	assert.True(t, math.IsNaN(float64(d.Series[0].Values[0])))
}

func TestBuildAll(t *testing.T) {
	rows := exampleChartRows()
	set := BuildAll(rows, Selection{})
	assert.NotNil(t, set.Overall)
	assert.Empty(t, set.ProcessPies)
	assert.Nil(t, set.InstanceBar)
	assert.Nil(t, set.InstancePie)
	assert.Equal(t, []string{"i1", "i2"}, set.Instances)
	assert.Len(t, set.Descriptors(), 1)

	set = BuildAll(rows, Selection{}.WithProcess("p2").WithInstance("i1"))
	assert.Len(t, set.ProcessPies, 1)
	assert.NotNil(t, set.InstanceBar)
	assert.NotNil(t, set.InstancePie)
	descriptors := set.Descriptors()
	require.Len(t, descriptors, 4)
	assert.Equal(t, "overall", descriptors[0].ID)
	assert.Equal(t, "instance-pie", descriptors[3].ID)

	assert.True(t, BuildAll(nil, Selection{}.WithProcess("p1").WithInstance("i1")).Empty())
}

func TestSelection(t *testing.T) {
	var sel Selection
	_, ok := sel.ProcessName()
	assert.False(t, ok)
	_, ok = sel.InstanceID()
	assert.False(t, ok)
	assert.False(t, sel.IsInstance(""))

	sel = sel.WithProcess("").WithInstance("i1")
	process, ok := sel.ProcessName()
	assert.True(t, ok)
	assert.Equal(t, "", process)
	assert.True(t, sel.IsInstance("i1"))
	assert.False(t, sel.IsInstance("i2"))

	out, err := json.Marshal(Selection{}.WithProcess(""))
	require.NoError(t, err)
	assert.Equal(t, `{"process":""}`, string(out))
	out, err = json.Marshal(Selection{})
	require.NoError(t, err)
	assert.Equal(t, `{}`, string(out))
}
