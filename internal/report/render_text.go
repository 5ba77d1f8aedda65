package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"math"
	"strings"

	"cpuchart/internal/chart"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const columnSpacing = 3

// use printer to get commas at thousands, e.g., 258,691.80
var printer = message.NewPrinter(language.English)

func formatValue(v chart.Value) string {
	if !finite(v) {
		return fmt.Sprintf("%v", float64(v))
	}
	return printer.Sprintf("%.2f", float64(v))
}

// textRow is one labelled line of a text chart
type textRow struct {
	label string
	value chart.Value
}

func createTextReport(set chart.Set, title string, barWidth int) (out []byte, err error) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s\n%s\n\n", title, strings.Repeat("=", len(title))))
	descriptors := set.Descriptors()
	if len(descriptors) == 0 {
		sb.WriteString(NoDataFound + "\n")
	}
	for _, d := range descriptors {
		heading := chartTitle(d)
		sb.WriteString(fmt.Sprintf("%s\n%s\n", heading, strings.Repeat("-", len(heading))))
		switch d.Kind {
		case chart.KindBar:
			sb.WriteString(renderTextBarChart(d, barWidth))
		case chart.KindPie:
			sb.WriteString(renderTextPieChart(d, barWidth))
		}
		sb.WriteString("\n")
	}
	out = []byte(sb.String())
	return
}

// renderTextBarChart prints one block per category, e.g.,
//
//	i1
//	   p1   4.00
//	   p2   0.00
func renderTextBarChart(d chart.Descriptor, barWidth int) string {
	var sb strings.Builder
	for catIdx, category := range d.Categories {
		rows := make([]textRow, 0, len(d.Series))
		for _, s := range d.Series {
			rows = append(rows, textRow{label: s.Name, value: s.Values[catIdx]})
		}
		sb.WriteString(category + "\n")
		sb.WriteString(renderTextRows(rows, false, 0, barWidth, columnSpacing))
	}
	return sb.String()
}

// renderTextPieChart prints each slice with its share of the total
func renderTextPieChart(d chart.Descriptor, barWidth int) string {
	var sb strings.Builder
	for _, s := range d.Series {
		total := 0.0
		for _, slice := range s.Slices {
			if finite(slice.Value) {
				total += float64(slice.Value)
			}
		}
		rows := make([]textRow, 0, len(s.Slices))
		for _, slice := range s.Slices {
			rows = append(rows, textRow{label: slice.Name, value: slice.Value})
		}
		sb.WriteString(renderTextRows(rows, true, total, barWidth, 0))
	}
	return sb.String()
}

// renderTextRows aligns labels and values in columns. With share set, every value is followed
// by its percentage of total. Bars are drawn when barWidth leaves room after the labels and
// values.
func renderTextRows(rows []textRow, share bool, total float64, barWidth int, indent int) string {
	maxLabel, maxValue := 0, 0
	peak := 0.0
	values := make([]string, len(rows))
	for i, r := range rows {
		values[i] = formatValue(r.value)
		if share {
			pct := 0.0
			if total > 0 && finite(r.value) {
				pct = float64(r.value) / total * 100
			}
			values[i] += fmt.Sprintf(" (%.1f%%)", pct)
		}
		maxLabel = max(maxLabel, len(r.label))
		maxValue = max(maxValue, len(values[i]))
		if finite(r.value) {
			peak = math.Max(peak, float64(r.value))
		}
	}
	room := barWidth - indent - maxLabel - maxValue - 2*columnSpacing
	var sb strings.Builder
	for i, r := range rows {
		sb.WriteString(strings.Repeat(" ", indent))
		sb.WriteString(fmt.Sprintf("%-*s%*s", maxLabel+columnSpacing, r.label, maxValue, values[i]))
		if room > 0 && peak > 0 && finite(r.value) && r.value > 0 {
			n := int(math.Round(float64(r.value) / peak * float64(room)))
			sb.WriteString(strings.Repeat(" ", columnSpacing) + strings.Repeat("#", n))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
