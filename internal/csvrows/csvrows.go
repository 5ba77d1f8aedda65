// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package csvrows reads comma separated CPU time files into raw string rows.
package csvrows

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/pkg/errors"
)

// Read returns every record in r. Records may have any number of fields and stray quotes are
// tolerated; the content itself is not validated.
func Read(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	var records [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return records, errors.Wrap(err, "failed to read csv record")
		}
		records = append(records, record)
	}
	return records, nil
}

// ReadFile reads the records of the CSV file at path
func ReadFile(path string) ([][]string, error) {
	file, err := os.Open(path) // #nosec G304
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	defer file.Close()
	records, err := Read(file)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return records, nil
}

// Split separates the header record from the data records
func Split(records [][]string) (header []string, rows [][]string) {
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], records[1:]
}
