// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package chart derives renderer-neutral chart descriptors from aggregated CPU time rows.
package chart

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"cpuchart/internal/aggregate"
)

// Kind is the chart type of a descriptor
type Kind string

const (
	KindBar Kind = "bar"
	KindPie Kind = "pie"
)

// ClickAction is the interaction a rendered chart declares for clicks on its elements
type ClickAction string

const (
	ClickNone ClickAction = ""
	// ClickSelectProcess makes the clicked series' name the selected process
	ClickSelectProcess ClickAction = "select-process"
)

// CPUTimeSeriesName names the single series of the pie charts
const CPUTimeSeriesName = "CPU Time"

// Value is a chart value. NaN and infinities, which can't be represented in JSON, are
// encoded as null.
type Value float64

func (v Value) MarshalJSON() ([]byte, error) {
	f := float64(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(f, 'g', -1, 64)), nil
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*v = Value(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*v = Value(f)
	return nil
}

// Slice is one named slice of a pie chart
type Slice struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

// Series is one data series. Bar series carry one value per category, pie series carry slices.
type Series struct {
	Name   string  `json:"name"`
	Values []Value `json:"values,omitempty"`
	Slices []Slice `json:"slices,omitempty"`
}

// Descriptor is a declarative chart description
type Descriptor struct {
	ID         string      `json:"id"`
	Kind       Kind        `json:"kind"`
	Title      string      `json:"title,omitempty"`
	Categories []string    `json:"categories,omitempty"`
	Series     []Series    `json:"series"`
	Click      ClickAction `json:"click,omitempty"`
}

// SeriesByName returns the series with the given name
func (d *Descriptor) SeriesByName(name string) (Series, bool) {
	for _, s := range d.Series {
		if s.Name == name {
			return s, true
		}
	}
	return Series{}, false
}

// Overall builds the grouped bar chart of every process per instance. Each value is the
// process's summed core time on that instance, 0 where the instance has no data for the
// process. Clicking a bar selects its series' process. Returns nil when there are no rows.
func Overall(rows []aggregate.ChartRow) *Descriptor {
	if len(rows) == 0 {
		return nil
	}
	processes := aggregate.ProcessNames(rows)
	categories := make([]string, 0, len(rows))
	for _, row := range rows {
		categories = append(categories, row.InstanceID)
	}
	d := &Descriptor{
		ID:         "overall",
		Kind:       KindBar,
		Categories: categories,
		Click:      ClickSelectProcess,
	}
	for _, process := range processes {
		values := make([]Value, 0, len(rows))
		for _, row := range rows {
			values = append(values, Value(row.Total(process)))
		}
		d.Series = append(d.Series, Series{Name: process, Values: values})
	}
	return d
}

// ProcessPies builds one pie per instance that has data for the process, each slicing the
// process's CPU time by core. Instances without the process get no chart. An empty name is
// matched like any other.
func ProcessPies(process string, rows []aggregate.ChartRow) []Descriptor {
	var pies []Descriptor
	for i, row := range rows {
		cores, ok := row.Cores(process)
		if !ok {
			continue
		}
		slices := make([]Slice, 0, len(cores))
		for _, c := range cores {
			slices = append(slices, Slice{Name: "Core " + c.Core, Value: Value(c.Time)})
		}
		pies = append(pies, Descriptor{
			ID:     fmt.Sprintf("process-pie-%d", i),
			Kind:   KindPie,
			Title:  fmt.Sprintf("%s on Instance %s", process, row.InstanceID),
			Series: []Series{{Name: CPUTimeSeriesName, Slices: slices}},
		})
	}
	return pies
}

// InstanceBar builds a bar chart of the instance's summed CPU time per process, over the
// process names of all rows. Returns nil if the instance is not in rows.
func InstanceBar(instance string, rows []aggregate.ChartRow) *Descriptor {
	row, ok := aggregate.Find(rows, instance)
	if !ok {
		return nil
	}
	processes := aggregate.ProcessNames(rows)
	values := make([]Value, 0, len(processes))
	for _, process := range processes {
		values = append(values, Value(row.Total(process)))
	}
	return &Descriptor{
		ID:         "instance-bar",
		Kind:       KindBar,
		Categories: processes,
		Series:     []Series{{Name: instance, Values: values}},
	}
}

// InstancePie builds a pie of the instance's CPU time split by process. Processes the instance
// has no data for appear as 0 slices. Returns nil under the same conditions as InstanceBar.
func InstancePie(instance string, rows []aggregate.ChartRow) *Descriptor {
	row, ok := aggregate.Find(rows, instance)
	if !ok {
		return nil
	}
	processes := aggregate.ProcessNames(rows)
	slices := make([]Slice, 0, len(processes))
	for _, process := range processes {
		slices = append(slices, Slice{Name: process, Value: Value(row.Total(process))})
	}
	return &Descriptor{
		ID:     "instance-pie",
		Kind:   KindPie,
		Title:  fmt.Sprintf("Process CPU Time Portion on Instance %s", instance),
		Series: []Series{{Name: CPUTimeSeriesName, Slices: slices}},
	}
}
