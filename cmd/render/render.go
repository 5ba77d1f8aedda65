// Package render is a subcommand of the root command. It writes CPU time chart reports for a
// CSV file.
package render

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"cpuchart/internal/common"
	"cpuchart/internal/filter"
	"cpuchart/internal/progress"
	"cpuchart/internal/report"
	"cpuchart/internal/util"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const cmdName = "render"

var examples = []string{
	fmt.Sprintf("  All report formats:             $ %s %s --input cpu.csv", common.AppName, cmdName),
	fmt.Sprintf("  Text report on the terminal:    $ %s %s --input cpu.csv --format txt", common.AppName, cmdName),
	fmt.Sprintf("  Per-core pies for a process:    $ %s %s --input cpu.csv --process Process_A", common.AppName, cmdName),
	fmt.Sprintf("  Focus on one instance:          $ %s %s --input cpu.csv --instance 3 --format html", common.AppName, cmdName),
	fmt.Sprintf("  Only some rows:                 $ %s %s --input cpu.csv --where \"hasPrefix(process, 'Process_')\"", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Write CPU time chart reports for a CSV file",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagInput    string
	flagFormat   []string
	flagProcess  string
	flagInstance string
	flagWhere    string
	flagWidth    int
	flagNoBars   bool
)

const (
	flagWidthName  = "width"
	flagNoBarsName = "nobars"
)

// used when the width can't be taken from the terminal
const defaultTextWidth = 80

func init() {
	Cmd.Flags().StringVar(&flagInput, common.FlagInputName, "", "")
	Cmd.Flags().StringSliceVar(&flagFormat, common.FlagFormatName, []string{report.FormatAll}, "")
	Cmd.Flags().StringVar(&flagProcess, common.FlagProcessName, "", "")
	Cmd.Flags().StringVar(&flagInstance, common.FlagInstanceName, "", "")
	Cmd.Flags().StringVar(&flagWhere, common.FlagWhereName, "", "")
	Cmd.Flags().IntVar(&flagWidth, flagWidthName, 0, "")
	Cmd.Flags().BoolVar(&flagNoBars, flagNoBarsName, false, "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: common.FlagInputName,
			Help: "CSV file with instance, process, thread, core and CPU time columns (required)",
		},
		{
			Name: common.FlagWhereName,
			Help: "only chart rows matching this expression, e.g., \"instance == '1' || time > 5\"",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Input Options",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: common.FlagProcessName,
			Help: "add a per-core pie chart of this process for every instance running it",
		},
		{
			Name: common.FlagInstanceName,
			Help: "add bar and pie charts of the processes on this instance",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Chart Options",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: common.FlagFormatName,
			Help: fmt.Sprintf("choose output format(s) from: %s", strings.Join(append([]string{report.FormatAll}, report.FormatOptions...), ", ")),
		},
		{
			Name: flagWidthName,
			Help: "width of the txt report bars in columns, 0 to fit the terminal",
		},
		{
			Name: flagNoBarsName,
			Help: "omit the bars from the txt report",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Output Options",
		Flags:     flags,
	})
	return groups
}

func validateFlags(cmd *cobra.Command, args []string) error {
	cfg := common.GetAppContext(cmd).Config
	if !cmd.Flags().Lookup(common.FlagFormatName).Changed && len(cfg.Formats) > 0 {
		flagFormat = cfg.Formats
	}
	if !cmd.Flags().Lookup(common.FlagProcessName).Changed && cfg.Process != "" {
		flagProcess = cfg.Process
	}
	if !cmd.Flags().Lookup(common.FlagInstanceName).Changed && cfg.Instance != "" {
		flagInstance = cfg.Instance
	}
	if !cmd.Flags().Lookup(common.FlagWhereName).Changed && cfg.Where != "" {
		flagWhere = cfg.Where
	}
	if flagInput == "" {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s is required", common.FlagInputName))
	}
	exists, err := util.FileExists(flagInput)
	if err != nil {
		return common.FlagValidationError(cmd, fmt.Sprintf("failed to check input file: %v", err))
	}
	if !exists {
		return common.FlagValidationError(cmd, fmt.Sprintf("input file %s does not exist", flagInput))
	}
	// validate format options
	formatOptions := append([]string{report.FormatAll}, report.FormatOptions...)
	for _, format := range flagFormat {
		if !slices.Contains(formatOptions, format) {
			return common.FlagValidationError(cmd, fmt.Sprintf("format options are: %s", strings.Join(formatOptions, ", ")))
		}
	}
	if flagWidth < 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must not be negative", flagWidthName))
	}
	if _, err := filter.New(flagWhere); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

// textWidth returns the columns available to the txt report
func textWidth() int {
	if flagNoBars {
		return 0
	}
	if flagWidth > 0 {
		return flagWidth
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
			return width
		}
	}
	return defaultTextWidth
}

func runCmd(cmd *cobra.Command, args []string) error {
	appContext := common.GetAppContext(cmd)
	where, err := filter.New(flagWhere)
	if err != nil {
		return err
	}
	formats := report.ExpandFormats(flagFormat)
	rc := common.ReportingCommand{
		Input:     flagInput,
		Formats:   formats,
		Selection: common.FlagSelection(cmd, flagProcess, flagInstance),
		Where:     where,
		TextWidth: textWidth(),
		Stdout:    os.Stdout,
	}
	// a lone txt report goes to stdout, keep it free of progress lines
	var multiSpinner *progress.MultiSpinner
	if !(len(formats) == 1 && formats[0] == report.FormatTxt) {
		multiSpinner = progress.NewMultiSpinner()
		for _, format := range formats {
			if err := multiSpinner.AddSpinner(format); err != nil {
				slog.Error(err.Error())
			}
		}
		multiSpinner.Start()
		rc.StatusUpdate = multiSpinner.Status
	}
	reportFilePaths, err := rc.Run(appContext)
	if multiSpinner != nil {
		multiSpinner.Finish()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	if len(formats) == 1 && formats[0] == report.FormatTxt {
		return nil
	}
	if len(reportFilePaths) > 0 {
		fmt.Println("Report files:")
	}
	for _, reportFilePath := range reportFilePaths {
		fmt.Printf("  %s\n", reportFilePath)
	}
	return nil
}
