package csvrows

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `instance_id,process_name,total_cpu_time_ms,cpu_core,cpu_time_ms_per_core,total_time_ms
1,Process_A,500,0,120,900
1,Process_A,500,1,380,900
2,Process_B,300,0,300,1200
`

func TestReadAndSplit(t *testing.T) {
	records, err := Read(strings.NewReader(sample))
	require.NoError(t, err)
	header, rows := Split(records)
	assert.Equal(t, "instance_id", header[0])
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"2", "Process_B", "300", "0", "300", "1200"}, rows[2])
}

func TestReadToleratesRaggedRows(t *testing.T) {
	records, err := Read(strings.NewReader("h1,h2\na,b,c,d,e\nshort\nx,y\"z,1,2,3\n"))
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, []string{"short"}, records[2])
	assert.Equal(t, "y\"z", records[3][1])
}

func TestReadSkipsBlankLines(t *testing.T) {
	records, err := Read(strings.NewReader("h1,h2\na,b\n\nc,d\n\n"))
	require.NoError(t, err)
	_, rows := Split(records)
	assert.Equal(t, [][]string{{"a", "b"}, {"c", "d"}}, rows)
}

func TestSplitEmpty(t *testing.T) {
	header, rows := Split(nil)
	assert.Nil(t, header)
	assert.Nil(t, rows)

	header, rows = Split([][]string{{"only", "header"}})
	assert.Equal(t, []string{"only", "header"}, header)
	assert.Empty(t, rows)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0600))
	records, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, records, 4)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open")
}
