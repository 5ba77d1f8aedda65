package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"cpuchart/internal/chart"
	"cpuchart/internal/config"
	"cpuchart/internal/filter"
	"cpuchart/internal/report"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `Instance,Process,Thread,Core,CPU Time
1,Process_A,t0,0,1.5
1,Process_A,t1,1,2.5
2,Process_B,t0,0,3.0
2,Process_A,t0,0,0.5
`

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sample.csv")
	require.NoError(t, os.WriteFile(path, []byte(sampleCSV), 0644))
	return path
}

func TestLoadRows(t *testing.T) {
	path := writeSample(t)
	header, rows, err := LoadRows(path, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Instance", "Process", "Thread", "Core", "CPU Time"}, header)
	assert.Len(t, rows, 4)

	where, err := filter.New(`process == "Process_A"`)
	require.NoError(t, err)
	_, rows, err = LoadRows(path, where)
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, _, err = LoadRows(filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}

func TestReportingCommandRun(t *testing.T) {
	appContext := AppContext{OutputDir: filepath.Join(t.TempDir(), "out")}
	statuses := map[string]string{}
	rc := ReportingCommand{
		Input:     writeSample(t),
		Formats:   []string{report.FormatAll},
		Selection: chart.Selection{}.WithProcess("Process_A").WithInstance("2"),
		StatusUpdate: func(format, status string) error {
			statuses[format] = status
			return nil
		},
	}
	paths, err := rc.Run(appContext)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"html": "done", "xlsx": "done", "json": "done", "txt": "done"}, statuses)
	require.Len(t, paths, len(report.FormatOptions))
	for i, format := range report.FormatOptions {
		assert.Equal(t, filepath.Join(appContext.OutputDir, "sample."+format), paths[i])
		info, err := os.Stat(paths[i])
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
}

func TestReportingCommandTextToStdout(t *testing.T) {
	var stdout bytes.Buffer
	rc := ReportingCommand{
		Input:   writeSample(t),
		Formats: []string{report.FormatTxt},
		Stdout:  &stdout,
	}
	paths, err := rc.Run(AppContext{OutputDir: t.TempDir()})
	require.NoError(t, err)
	require.Len(t, paths, 1)
	written, err := os.ReadFile(paths[0])
	require.NoError(t, err)
	assert.Equal(t, string(written), stdout.String())
	assert.Contains(t, stdout.String(), "CPU Time by Instance and Process")
}

func TestGetAppContextDefault(t *testing.T) {
	appContext := GetAppContext(&cobra.Command{Use: "orphan"})
	assert.Equal(t, "127.0.0.1:8080", appContext.Config.Listen)
}

func TestGetAppContextFromParent(t *testing.T) {
	root := &cobra.Command{Use: "cpuchart"}
	child := &cobra.Command{Use: "render", Run: func(*cobra.Command, []string) {}}
	root.AddCommand(child)
	cfg := config.Default()
	cfg.Formats = []string{report.FormatTxt}
	root.SetContext(WithAppContext(context.Background(), AppContext{OutputDir: "/tmp/out", Config: cfg}))
	child.SetContext(context.Background())

	appContext := GetAppContext(child)
	assert.Equal(t, "/tmp/out", appContext.OutputDir)
	assert.Equal(t, []string{report.FormatTxt}, appContext.Config.Formats)

	_, ok := AppContextFrom(context.Background())
	assert.False(t, ok)
}

func TestFlagSelection(t *testing.T) {
	newCmd := func() *cobra.Command {
		cmd := &cobra.Command{Use: "render"}
		cmd.Flags().String(FlagProcessName, "", "")
		cmd.Flags().String(FlagInstanceName, "", "")
		return cmd
	}
	assert.Equal(t, chart.Selection{}, FlagSelection(newCmd(), "", ""))
	assert.Equal(t, chart.Selection{}.WithProcess("p1"), FlagSelection(newCmd(), "p1", ""))

	cmd := newCmd()
	require.NoError(t, cmd.Flags().Set(FlagProcessName, ""))
	assert.Equal(t, chart.Selection{}.WithProcess(""), FlagSelection(cmd, "", ""))

	cmd = newCmd()
	require.NoError(t, cmd.Flags().Set(FlagInstanceName, "i1"))
	assert.Equal(t, chart.Selection{}.WithInstance("i1"), FlagSelection(cmd, "", "i1"))
}

func TestUsageFunc(t *testing.T) {
	root := &cobra.Command{Use: "cpuchart"}
	root.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd := &cobra.Command{Use: "render", Run: func(*cobra.Command, []string) {}}
	cmd.Flags().String(FlagInputName, "", "")
	root.AddCommand(cmd)
	var out bytes.Buffer
	cmd.SetOut(&out)
	usage := UsageFunc(func() []FlagGroup {
		return []FlagGroup{{GroupName: "Input Options", Flags: []Flag{{Name: FlagInputName, Help: "csv file"}}}}
	})
	require.NoError(t, usage(cmd))
	assert.Contains(t, out.String(), "Usage: cpuchart render [flags]")
	assert.Contains(t, out.String(), "  Input Options:\n")
	assert.Contains(t, out.String(), "--input")
	assert.Contains(t, out.String(), "--debug")
}
