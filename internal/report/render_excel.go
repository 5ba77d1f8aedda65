package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"strconv"

	"cpuchart/internal/chart"

	"github.com/xuri/excelize/v2"
)

const (
	XlsxPrimarySheetName = "Report"
	XlsxDataSheetName    = "Data"
)

func cellName(col int, row int) (name string) {
	columnName, err := excelize.ColumnNumberToName(col)
	if err != nil {
		return
	}
	name, err = excelize.JoinCellName(columnName, row)
	if err != nil {
		return
	}
	return
}

// excel has no NaN or infinity, those are written as text
func xlsxValue(v chart.Value) any {
	if !finite(v) {
		return strconv.FormatFloat(float64(v), 'f', -1, 64)
	}
	return float64(v)
}

func renderXlsxChart(d chart.Descriptor, f *excelize.File, sheetName string, row *int) {
	col := 1
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	_ = f.SetCellValue(sheetName, cellName(col, *row), chartTitle(d))
	_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), boldStyle)
	*row++
	switch d.Kind {
	case chart.KindBar:
		// categories down the side, one column per series
		col = 2
		for _, s := range d.Series {
			_ = f.SetCellValue(sheetName, cellName(col, *row), s.Name)
			_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), boldStyle)
			col++
		}
		*row++
		for catIdx, category := range d.Categories {
			col = 1
			_ = f.SetCellValue(sheetName, cellName(col, *row), category)
			_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), boldStyle)
			col++
			for _, s := range d.Series {
				_ = f.SetCellValue(sheetName, cellName(col, *row), xlsxValue(s.Values[catIdx]))
				col++
			}
			*row++
		}
	case chart.KindPie:
		for _, s := range d.Series {
			for _, slice := range s.Slices {
				col = 1
				_ = f.SetCellValue(sheetName, cellName(col, *row), slice.Name)
				_ = f.SetCellStyle(sheetName, cellName(col, *row), cellName(col, *row), boldStyle)
				col++
				_ = f.SetCellValue(sheetName, cellName(col, *row), xlsxValue(slice.Value))
				*row++
			}
		}
	}
	*row++
}

// renderXlsxData writes the flat instance/process/core/time rows behind the charts
func renderXlsxData(set chart.Set, f *excelize.File, sheetName string) {
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
		},
	})
	row := 1
	for col, name := range []string{"Instance", "Process", "CPU Time"} {
		_ = f.SetCellValue(sheetName, cellName(col+1, row), name)
		_ = f.SetCellStyle(sheetName, cellName(col+1, row), cellName(col+1, row), headerStyle)
	}
	row++
	if set.Overall == nil {
		return
	}
	for _, s := range set.Overall.Series {
		for catIdx, instance := range set.Overall.Categories {
			_ = f.SetCellValue(sheetName, cellName(1, row), instance)
			_ = f.SetCellValue(sheetName, cellName(2, row), s.Name)
			_ = f.SetCellValue(sheetName, cellName(3, row), xlsxValue(s.Values[catIdx]))
			row++
		}
	}
}

func createXlsxReport(set chart.Set, title string) (out []byte, err error) {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := XlsxPrimarySheetName
	_ = f.SetSheetName("Sheet1", sheetName)
	_ = f.SetColWidth(sheetName, "A", "A", 30)
	_ = f.SetColWidth(sheetName, "B", "Z", 15)
	row := 1
	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 14,
		},
	})
	_ = f.SetCellValue(sheetName, cellName(1, row), title)
	_ = f.SetCellStyle(sheetName, cellName(1, row), cellName(1, row), titleStyle)
	row += 2
	descriptors := set.Descriptors()
	if len(descriptors) == 0 {
		_ = f.SetCellValue(sheetName, cellName(1, row), NoDataFound)
	}
	for _, d := range descriptors {
		renderXlsxChart(d, f, sheetName, &row)
	}
	if _, err = f.NewSheet(XlsxDataSheetName); err != nil {
		return nil, fmt.Errorf("failed to add xlsx data sheet: %w", err)
	}
	_ = f.SetColWidth(XlsxDataSheetName, "A", "C", 20)
	renderXlsxData(set, f, XlsxDataSheetName)
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write xlsx report to buffer: %w", err)
	}
	out = buf.Bytes()
	return
}
