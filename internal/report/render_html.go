package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"fmt"
	"regexp"

	"cpuchart/internal/chart"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/render"
)

// echarts' placeholder for a missing value
const missingValue = "-"

var rxNonIdentifier = regexp.MustCompile(`[^A-Za-z0-9_]`)

// htmlChartID turns a descriptor id into a valid JavaScript identifier; go-echarts names the
// chart instance variable after it
func htmlChartID(d chart.Descriptor) string {
	return "chart_" + rxNonIdentifier.ReplaceAllString(d.ID, "_")
}

func htmlValue(v chart.Value) any {
	if !finite(v) {
		return missingValue
	}
	return float64(v)
}

// the static report has no view to update, clicks are only logged
var staticClickFunc = render.EchartsInstancePlaceholder + `.on('click', function (params) { console.log('Clicked bar:', params); });`

// echartsChart is what both the page and the snippet renderers need from a chart
type echartsChart interface {
	components.Charter
	render.Renderer
}

func newEchartsChart(d chart.Descriptor, jsFuncs []string) (echartsChart, error) {
	switch d.Kind {
	case chart.KindBar:
		return renderBarChart(d, jsFuncs), nil
	case chart.KindPie:
		return renderPieChart(d, jsFuncs), nil
	default:
		return nil, fmt.Errorf("unsupported chart kind %q for chart %s", d.Kind, d.ID)
	}
}

// ChartSnippet renders d for embedding in a page that loads echarts itself. The jsFuncs are
// appended to the chart's script with render.EchartsInstancePlaceholder naming the chart.
func ChartSnippet(d chart.Descriptor, jsFuncs ...string) (render.ChartSnippet, error) {
	c, err := newEchartsChart(d, jsFuncs)
	if err != nil {
		return render.ChartSnippet{}, err
	}
	return c.RenderSnippet(), nil
}

func createHtmlReport(set chart.Set, title string) (out []byte, err error) {
	page := components.NewPage()
	page.PageTitle = title
	descriptors := set.Descriptors()
	if len(descriptors) == 0 {
		page.AddCharts(emptyChart(title))
	}
	for _, d := range descriptors {
		var jsFuncs []string
		if d.Click == chart.ClickSelectProcess {
			jsFuncs = append(jsFuncs, staticClickFunc)
		}
		c, err := newEchartsChart(d, jsFuncs)
		if err != nil {
			return nil, err
		}
		page.AddCharts(c)
	}
	var buf bytes.Buffer
	if err = page.Render(&buf); err != nil {
		return nil, fmt.Errorf("failed to render html report: %w", err)
	}
	out = buf.Bytes()
	return
}

func emptyChart(title string) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "120px", ChartID: "chart_empty"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: NoDataFound, Left: "center"}),
	)
	return bar
}

func renderBarChart(d chart.Descriptor, jsFuncs []string) *charts.Bar {
	id := htmlChartID(d)
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:   "100%",
			Height:  "400px",
			ChartID: id,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: chartTitle(d),
			Left:  "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:        opts.Bool(true),
			Trigger:     "axis",
			AxisPointer: &opts.AxisPointer{Type: "shadow"},
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(true),
			Top:  "bottom",
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Name: "CPU Time",
			Type: "value",
		}),
	)
	bar.SetXAxis(d.Categories)
	for _, s := range d.Series {
		data := make([]opts.BarData, 0, len(s.Values))
		for _, v := range s.Values {
			data = append(data, opts.BarData{Value: htmlValue(v)})
		}
		bar.AddSeries(s.Name, data)
	}
	if len(jsFuncs) > 0 {
		bar.AddJSFuncs(jsFuncs...)
	}
	return bar
}

func renderPieChart(d chart.Descriptor, jsFuncs []string) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:   "100%",
			Height:  "400px",
			ChartID: htmlChartID(d),
		}),
		charts.WithTitleOpts(opts.Title{
			Title: chartTitle(d),
			Left:  "center",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:      opts.Bool(true),
			Trigger:   "item",
			Formatter: "{a} <br/>{b}: {c} ({d}%)",
		}),
		charts.WithLegendOpts(opts.Legend{
			Show: opts.Bool(false),
		}),
	)
	for _, s := range d.Series {
		data := make([]opts.PieData, 0, len(s.Slices))
		for _, slice := range s.Slices {
			data = append(data, opts.PieData{Name: slice.Name, Value: htmlValue(slice.Value)})
		}
		pie.AddSeries(s.Name, data, charts.WithPieChartOpts(opts.PieChart{Radius: "50%"}))
	}
	if len(jsFuncs) > 0 {
		pie.AddJSFuncs(jsFuncs...)
	}
	return pie
}
