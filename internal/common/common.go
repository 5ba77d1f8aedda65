// Package common defines data structures and functions that are used by multiple
// application commands, e.g., serve and render.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"cpuchart/internal/aggregate"
	"cpuchart/internal/chart"
	"cpuchart/internal/config"
	"cpuchart/internal/csvrows"
	"cpuchart/internal/filter"
	"cpuchart/internal/progress"
	"cpuchart/internal/report"
	"cpuchart/internal/util"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	Timestamp   string        // Timestamp is the time the application started, used in output names.
	OutputDir   string        // OutputDir is the directory where the application will write output files.
	LogFilePath string        // LogFilePath is the path of the log file, empty when logging elsewhere.
	Version     string        // Version is the version of the application.
	Debug       bool          // Debug is true when debug logging is enabled.
	Config      config.Config // Config holds the defaults loaded from the --config file.
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

const (
	FlagInputName    = "input"
	FlagFormatName   = "format"
	FlagProcessName  = "process"
	FlagInstanceName = "instance"
	FlagWhereName    = "where"
)

type appContextKey struct{}

// WithAppContext returns a copy of ctx carrying appContext
func WithAppContext(ctx context.Context, appContext AppContext) context.Context {
	return context.WithValue(ctx, appContextKey{}, appContext)
}

// AppContextFrom returns the AppContext carried by ctx
func AppContextFrom(ctx context.Context) (AppContext, bool) {
	if ctx == nil {
		return AppContext{}, false
	}
	appContext, ok := ctx.Value(appContextKey{}).(AppContext)
	return appContext, ok
}

// GetAppContext returns the AppContext stored on the root command
func GetAppContext(cmd *cobra.Command) AppContext {
	for c := cmd; c != nil; c = c.Parent() {
		if ctx := c.Context(); ctx != nil {
			if appContext, ok := AppContextFrom(ctx); ok {
				return appContext
			}
		}
	}
	return AppContext{Config: config.Default()}
}

// FlagSelection returns the selection named by the process and instance flags. A flag selects
// when it was given on the command line, even as "", or holds a value from the config file.
func FlagSelection(cmd *cobra.Command, process, instance string) chart.Selection {
	var sel chart.Selection
	if flagSelects(cmd, FlagProcessName, process) {
		sel = sel.WithProcess(process)
	}
	if flagSelects(cmd, FlagInstanceName, instance) {
		sel = sel.WithInstance(instance)
	}
	return sel
}

func flagSelects(cmd *cobra.Command, name, value string) bool {
	if value != "" {
		return true
	}
	flag := cmd.Flags().Lookup(name)
	return flag != nil && flag.Changed
}

// UsageFunc prints the command's flags in the given groups followed by the global flags
func UsageFunc(getFlagGroups func() []FlagGroup) func(cmd *cobra.Command) error {
	return func(cmd *cobra.Command) error {
		cmd.Printf("Usage: %s [flags]\n\n", cmd.CommandPath())
		if cmd.Example != "" {
			cmd.Printf("Examples:\n%s\n\n", cmd.Example)
		}
		cmd.Println("Flags:")
		for _, group := range getFlagGroups() {
			cmd.Printf("  %s:\n", group.GroupName)
			for _, flag := range group.Flags {
				flagDefault := ""
				if f := cmd.Flags().Lookup(flag.Name); f != nil && f.DefValue != "" {
					flagDefault = fmt.Sprintf(" (default: %s)", f.DefValue)
				}
				cmd.Printf("    --%-20s %s%s\n", flag.Name, flag.Help, flagDefault)
			}
		}
		if cmd.Parent() == nil {
			return nil
		}
		cmd.Println("\nGlobal Flags:")
		cmd.Parent().PersistentFlags().VisitAll(func(pf *pflag.Flag) {
			flagDefault := ""
			if pf.DefValue != "" {
				flagDefault = fmt.Sprintf(" (default: %s)", pf.DefValue)
			}
			cmd.Printf("  --%-20s %s%s\n", pf.Name, pf.Usage, flagDefault)
		})
		return nil
	}
}

// FlagValidationError is used to report an error with a flag
func FlagValidationError(cmd *cobra.Command, msg string) error {
	err := errors.New(msg)
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	fmt.Fprintf(os.Stderr, "See '%s --help' for usage details.\n", cmd.CommandPath())
	cmd.SilenceUsage = true
	return err
}

// CreateOutputDir creates the output directory if it does not exist
func CreateOutputDir(outputDir string) error {
	if err := util.CreateDirectoryIfNotExists(outputDir, 0755); err != nil { // #nosec G301
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	return nil
}

// LoadRows reads the CSV file at path and returns the data rows that pass the filter.
// The header row is returned separately.
func LoadRows(path string, where *filter.Filter) (header []string, rows [][]string, err error) {
	records, err := csvrows.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	header, rows = csvrows.Split(records)
	total := len(rows)
	rows = where.Apply(rows)
	slog.Debug("loaded rows", slog.String("path", path), slog.Int("rows", total), slog.Int("kept", len(rows)), slog.String("where", where.String()))
	return header, rows, nil
}

// ReportingCommand holds what the render command needs to turn a CSV file into reports
type ReportingCommand struct {
	Input     string
	Formats   []string
	Selection chart.Selection
	Where     *filter.Filter
	TextWidth int       // TextWidth scales the txt report's value bars, 0 omits them
	Stdout    io.Writer // Stdout receives the txt report when it is the only format, nil to skip
	// StatusUpdate, if set, is called with the format and its progress
	StatusUpdate progress.MultiSpinnerUpdateFunc
}

func (rc *ReportingCommand) status(format, status string) {
	if rc.StatusUpdate == nil {
		return
	}
	if err := rc.StatusUpdate(format, status); err != nil {
		slog.Debug("failed to update status", slog.String("format", format), slog.String("error", err.Error()))
	}
}

// Run reads the input, builds the chart set and writes one report file per format to the
// output directory. It returns the paths of the files written.
func (rc *ReportingCommand) Run(appContext AppContext) ([]string, error) {
	_, rows, err := LoadRows(rc.Input, rc.Where)
	if err != nil {
		return nil, err
	}
	chartRows := aggregate.AggregateRows(rows)
	set := chart.BuildAll(chartRows, rc.Selection)
	if process, ok := rc.Selection.ProcessName(); ok && len(set.ProcessPies) == 0 {
		slog.Warn("selected process not found in data", slog.String("process", process))
	}
	if instance, ok := rc.Selection.InstanceID(); ok && set.InstanceBar == nil {
		slog.Warn("selected instance not found in data", slog.String("instance", instance))
	}
	if err := CreateOutputDir(appContext.OutputDir); err != nil {
		return nil, err
	}
	title := filepath.Base(rc.Input)
	baseName := util.ReportBaseName(rc.Input)
	formats := report.ExpandFormats(rc.Formats)
	var reportFilePaths []string
	for _, format := range formats {
		rc.status(format, "rendering")
		var reportBytes []byte
		if format == report.FormatTxt {
			reportBytes, err = report.CreateText(set, title, rc.TextWidth)
		} else {
			reportBytes, err = report.Create(format, set, title)
		}
		if err != nil {
			rc.status(format, "failed")
			return nil, fmt.Errorf("failed to create %s report: %w", format, err)
		}
		if len(formats) == 1 && format == report.FormatTxt && rc.Stdout != nil {
			fmt.Fprint(rc.Stdout, string(reportBytes))
		}
		reportPath := filepath.Join(appContext.OutputDir, fmt.Sprintf("%s.%s", baseName, format))
		if err = writeReport(reportBytes, reportPath); err != nil {
			rc.status(format, "failed")
			return nil, fmt.Errorf("failed to write report: %w", err)
		}
		rc.status(format, "done")
		reportFilePaths = append(reportFilePaths, reportPath)
	}
	slog.Info("reports created", slog.String("input", rc.Input), slog.Int("instances", len(chartRows)), slog.String("files", strings.Join(reportFilePaths, ",")))
	return reportFilePaths, nil
}

// writeReport writes the report bytes to the specified path.
func writeReport(reportBytes []byte, reportPath string) error {
	err := os.WriteFile(reportPath, reportBytes, 0644) // #nosec G306
	if err != nil {
		err = fmt.Errorf("failed to write report file: %v", err)
		slog.Error(err.Error())
		return err
	}
	return nil
}
