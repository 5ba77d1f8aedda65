package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"encoding/json"
	"math"
	"strings"
	"testing"

	"cpuchart/internal/aggregate"
	"cpuchart/internal/chart"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exampleSet(sel chart.Selection) chart.Set {
	rows := aggregate.AggregateRows([][]string{
		{"i1", "p1", "x", "0", "1.5"},
		{"i1", "p1", "x", "1", "2.5"},
		{"i2", "p2", "x", "0", "3.0"},
	})
	return chart.BuildAll(rows, sel)
}

func TestExpandFormats(t *testing.T) {
	tests := []struct {
		input    []string
		expected []string
	}{
		{[]string{FormatAll}, FormatOptions},
		{[]string{FormatTxt, FormatAll}, []string{FormatTxt, FormatHtml, FormatXlsx, FormatJson}},
		{[]string{FormatJson, FormatJson}, []string{FormatJson}},
		{nil, nil},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExpandFormats(tt.input))
	}
}

func TestCreateRejectsMisalignedSeries(t *testing.T) {
	set := chart.Set{Overall: &chart.Descriptor{
		ID:         "overall",
		Kind:       chart.KindBar,
		Categories: []string{"a", "b"},
		Series:     []chart.Series{{Name: "p", Values: []chart.Value{1}}},
	}}
	_, err := Create(FormatTxt, set, "bad")
	assert.Error(t, err)
}

func TestCreateUnsupportedFormatPanics(t *testing.T) {
	assert.Panics(t, func() {
		_, _ = Create("pdf", exampleSet(chart.Selection{}), "x")
	})
}

func TestJsonReport(t *testing.T) {
	out, err := Create(FormatJson, exampleSet(chart.Selection{}.WithProcess("p1").WithInstance("i2")), "example.csv")
	require.NoError(t, err)
	var decoded struct {
		Title  string             `json:"title"`
		Charts []chart.Descriptor `json:"charts"`
	}
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "example.csv", decoded.Title)
	require.Len(t, decoded.Charts, 4)
	assert.Equal(t, "overall", decoded.Charts[0].ID)
	assert.Equal(t, chart.ClickSelectProcess, decoded.Charts[0].Click)
	assert.Equal(t, "p1 on Instance i1", decoded.Charts[1].Title)
}

func TestJsonReportEmptyAndNaN(t *testing.T) {
	out, err := Create(FormatJson, chart.Set{}, "empty")
	require.NoError(t, err)
	assert.Contains(t, string(out), `"charts": []`)

	rows := aggregate.AggregateRows([][]string{{"a", "p", "", "0", "bad"}})
	out, err = Create(FormatJson, chart.BuildAll(rows, chart.Selection{}), "nan")
	require.NoError(t, err)
	assert.Contains(t, string(out), "null")
}

func TestHtmlReport(t *testing.T) {
	out, err := Create(FormatHtml, exampleSet(chart.Selection{}.WithProcess("p1").WithInstance("i1")), "example.csv")
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "example.csv")
	assert.Contains(t, html, "p1 on Instance i1")
	assert.Contains(t, html, "Process CPU Time Portion on Instance i1")
	assert.Contains(t, html, "console.log('Clicked bar:', params)")
	assert.Contains(t, html, "chart_process_pie_0")
}

func TestChartSnippet(t *testing.T) {
	set := exampleSet(chart.Selection{})
	snippet, err := ChartSnippet(*set.Overall, "%MY_ECHARTS%.on('click', function (params) { select(params.seriesName); });")
	require.NoError(t, err)
	assert.Contains(t, snippet.Element, `id="chart_overall"`)
	assert.Contains(t, snippet.Script, "goecharts_chart_overall.on('click', function (params) { select(params.seriesName); });")
	assert.Contains(t, snippet.Option, `"i1"`)

	_, err = ChartSnippet(chart.Descriptor{ID: "x", Kind: "line"})
	assert.Error(t, err)
}

func TestHtmlReportEmpty(t *testing.T) {
	out, err := Create(FormatHtml, chart.Set{}, "nothing.csv")
	require.NoError(t, err)
	assert.Contains(t, string(out), NoDataFound)
}

func TestXlsxReport(t *testing.T) {
	out, err := Create(FormatXlsx, exampleSet(chart.Selection{}.WithProcess("p1")), "example.csv")
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	cell := func(sheet, name string) string {
		val, err := f.GetCellValue(sheet, name)
		require.NoError(t, err)
		return val
	}
	assert.Equal(t, "example.csv", cell(XlsxPrimarySheetName, "A1"))
	assert.Equal(t, "CPU Time by Instance and Process", cell(XlsxPrimarySheetName, "A3"))
	assert.Equal(t, "p1", cell(XlsxPrimarySheetName, "B4"))
	assert.Equal(t, "p2", cell(XlsxPrimarySheetName, "C4"))
	assert.Equal(t, "i1", cell(XlsxPrimarySheetName, "A5"))
	assert.Equal(t, "4", cell(XlsxPrimarySheetName, "B5"))
	assert.Equal(t, "3", cell(XlsxPrimarySheetName, "C6"))
	// pie for p1 follows after a blank row
	assert.Equal(t, "p1 on Instance i1", cell(XlsxPrimarySheetName, "A8"))
	assert.Equal(t, "Core 0", cell(XlsxPrimarySheetName, "A9"))
	assert.Equal(t, "1.5", cell(XlsxPrimarySheetName, "B9"))

	assert.Equal(t, "Instance", cell(XlsxDataSheetName, "A1"))
	assert.Equal(t, "i1", cell(XlsxDataSheetName, "A2"))
	assert.Equal(t, "p1", cell(XlsxDataSheetName, "B2"))
}

func TestXlsxValue(t *testing.T) {
	assert.Equal(t, "NaN", xlsxValue(chart.Value(math.NaN())))
	assert.Equal(t, 2.5, xlsxValue(2.5))
}

func TestTextReport(t *testing.T) {
	out, err := Create(FormatTxt, exampleSet(chart.Selection{}.WithProcess("p1").WithInstance("i1")), "example.csv")
	require.NoError(t, err)
	txt := string(out)
	assert.True(t, strings.HasPrefix(txt, "example.csv\n===========\n"))
	assert.Contains(t, txt, "CPU Time by Instance and Process\n")
	assert.Contains(t, txt, "i1\n   p1   4.00\n   p2   0.00\n")
	assert.Contains(t, txt, "Core 0   1.50 (37.5%)\n")
	assert.Contains(t, txt, "Process CPU Time on Instance i1\n")
	assert.NotContains(t, txt, "#")
}

func TestTextReportBarsAndThousands(t *testing.T) {
	rows := aggregate.AggregateRows([][]string{
		{"a", "big", "", "0", "12345.5"},
		{"a", "small", "", "0", "100"},
	})
	out, err := CreateText(chart.BuildAll(rows, chart.Selection{}), "bars", 60)
	require.NoError(t, err)
	txt := string(out)
	assert.Contains(t, txt, "12,345.50")
	assert.Contains(t, txt, "#")
}

func TestTextReportEmpty(t *testing.T) {
	out, err := Create(FormatTxt, chart.Set{}, "empty")
	require.NoError(t, err)
	assert.Contains(t, string(out), NoDataFound)
}
