package report

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"encoding/json"

	"cpuchart/internal/chart"
)

func createJsonReport(set chart.Set, title string) (out []byte, err error) {
	type outReport struct {
		Title  string             `json:"title"`
		Charts []chart.Descriptor `json:"charts"`
	}
	oReport := outReport{Title: title, Charts: set.Descriptors()}
	if oReport.Charts == nil {
		oReport.Charts = []chart.Descriptor{}
	}
	return json.MarshalIndent(oReport, "", " ")
}
