// Package report renders chart sets as html, json, xlsx and txt reports.
package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math"
	"strings"

	"cpuchart/internal/chart"
	"cpuchart/internal/util"
)

const (
	FormatHtml = "html"
	FormatXlsx = "xlsx"
	FormatJson = "json"
	FormatTxt  = "txt"
	FormatAll  = "all"
)

const NoDataFound = "No data found."

var FormatOptions = []string{FormatHtml, FormatXlsx, FormatJson, FormatTxt}

// Create generates a report of the chart set in the specified format.
// If the format is not supported, the function panics with an error message.
//
// Parameters:
// - format: The desired format of the report (txt, json, html, xlsx).
// - set: The charts to include.
// - title: The report title, typically the name of the input file.
//
// Returns:
// - out: The generated report as a byte slice.
// - err: An error, if any occurred during report generation.
func Create(format string, set chart.Set, title string) (out []byte, err error) {
	// bar series must line up with the categories
	for _, d := range set.Descriptors() {
		if d.Kind != chart.KindBar {
			continue
		}
		for _, s := range d.Series {
			if len(s.Values) != len(d.Categories) {
				return nil, fmt.Errorf("chart %s: expected %d value(s) for series %s, found %d", d.ID, len(d.Categories), s.Name, len(s.Values))
			}
		}
	}
	switch format {
	case FormatTxt:
		return createTextReport(set, title, 0)
	case FormatJson:
		return createJsonReport(set, title)
	case FormatHtml:
		return createHtmlReport(set, title)
	case FormatXlsx:
		return createXlsxReport(set, title)
	}
	panic(fmt.Sprintf("expected one of %s, got %s", strings.Join(FormatOptions, ", "), format))
}

// CreateText generates a txt report with value bars scaled to fit width columns.
// A width of 0 omits the bars.
func CreateText(set chart.Set, title string, width int) ([]byte, error) {
	return createTextReport(set, title, width)
}

// ExpandFormats replaces "all" with every supported format and removes duplicates
func ExpandFormats(formats []string) []string {
	var out []string
	for _, f := range formats {
		if f == FormatAll {
			for _, option := range FormatOptions {
				out = util.UniqueAppend(out, option)
			}
			continue
		}
		out = util.UniqueAppend(out, f)
	}
	return out
}

// chartTitle is the heading of a chart in reports; untitled charts are named by kind
func chartTitle(d chart.Descriptor) string {
	if d.Title != "" {
		return d.Title
	}
	switch d.ID {
	case "overall":
		return "CPU Time by Instance and Process"
	case "instance-bar":
		if len(d.Series) > 0 {
			return fmt.Sprintf("Process CPU Time on Instance %s", d.Series[0].Name)
		}
	}
	return d.ID
}

func finite(v chart.Value) bool {
	f := float64(v)
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
