// Package serve is a subcommand of the root command. It serves the interactive CPU time view.
package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"cpuchart/internal/common"
	"cpuchart/internal/config"
	"cpuchart/internal/filter"
	"cpuchart/internal/server"
	"cpuchart/internal/view"

	"github.com/spf13/cobra"
)

const cmdName = "serve"

var examples = []string{
	fmt.Sprintf("  Serve on the default address:       $ %s %s", common.AppName, cmdName),
	fmt.Sprintf("  Serve on all interfaces:            $ %s %s --listen :8080", common.AppName, cmdName),
	fmt.Sprintf("  Open with a file already uploaded:  $ %s %s --input cpu.csv --instance 1", common.AppName, cmdName),
	fmt.Sprintf("  Only chart rows above 10s:          $ %s %s --where \"time > 10\"", common.AppName, cmdName),
}

var Cmd = &cobra.Command{
	Use:           cmdName,
	Short:         "Serve the interactive CPU time charts",
	Example:       strings.Join(examples, "\n"),
	RunE:          runCmd,
	PreRunE:       validateFlags,
	GroupID:       "primary",
	Args:          cobra.NoArgs,
	SilenceErrors: true,
}

// flag vars
var (
	flagListen      string
	flagMaxUploadMB int64
	flagInput       string
	flagProcess     string
	flagInstance    string
	flagWhere       string
)

const (
	flagListenName      = "listen"
	flagMaxUploadMBName = "max-upload-mb"
)

func init() {
	Cmd.Flags().StringVar(&flagListen, flagListenName, config.DefaultListen, "")
	Cmd.Flags().Int64Var(&flagMaxUploadMB, flagMaxUploadMBName, config.DefaultMaxUploadMB, "")
	Cmd.Flags().StringVar(&flagInput, common.FlagInputName, "", "")
	Cmd.Flags().StringVar(&flagProcess, common.FlagProcessName, "", "")
	Cmd.Flags().StringVar(&flagInstance, common.FlagInstanceName, "", "")
	Cmd.Flags().StringVar(&flagWhere, common.FlagWhereName, "", "")

	Cmd.SetUsageFunc(common.UsageFunc(getFlagGroups))
}

func getFlagGroups() []common.FlagGroup {
	var groups []common.FlagGroup
	flags := []common.Flag{
		{
			Name: flagListenName,
			Help: "address to listen on, host:port",
		},
		{
			Name: flagMaxUploadMBName,
			Help: "largest accepted upload in MB",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "Server Options",
		Flags:     flags,
	})
	flags = []common.Flag{
		{
			Name: common.FlagInputName,
			Help: "CSV file to load before the first upload",
		},
		{
			Name: common.FlagProcessName,
			Help: "process to break down by core once the input is loaded",
		},
		{
			Name: common.FlagInstanceName,
			Help: "instance to focus on",
		},
		{
			Name: common.FlagWhereName,
			Help: "only chart rows matching this expression, e.g., \"process == 'A' && time > 1\"",
		},
	}
	groups = append(groups, common.FlagGroup{
		GroupName: "View Options",
		Flags:     flags,
	})
	return groups
}

// applyConfig copies config file values into flags that were not set on the command line
func applyConfig(cmd *cobra.Command, cfg config.Config) {
	if !cmd.Flags().Lookup(flagListenName).Changed && cfg.Listen != "" {
		flagListen = cfg.Listen
	}
	if !cmd.Flags().Lookup(flagMaxUploadMBName).Changed && cfg.MaxUploadMB > 0 {
		flagMaxUploadMB = cfg.MaxUploadMB
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
}

func validateFlags(cmd *cobra.Command, args []string) error {
	applyConfig(cmd, common.GetAppContext(cmd).Config)
	if flagListen == "" {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must not be empty", flagListenName))
	}
	if flagMaxUploadMB <= 0 {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s must be positive, got %d", flagMaxUploadMBName, flagMaxUploadMB))
	}
	if flagInput != "" {
		if _, err := os.Stat(flagInput); err != nil {
			return common.FlagValidationError(cmd, fmt.Sprintf("input file %s not accessible: %v", flagInput, err))
		}
	}
	if _, ok := common.FlagSelection(cmd, flagProcess, "").ProcessName(); ok && flagInput == "" {
		return common.FlagValidationError(cmd, fmt.Sprintf("--%s requires --%s, an upload clears the process selection", common.FlagProcessName, common.FlagInputName))
	}
	if _, err := filter.New(flagWhere); err != nil {
		return common.FlagValidationError(cmd, err.Error())
	}
	return nil
}

func runCmd(cmd *cobra.Command, args []string) error {
	where, err := filter.New(flagWhere)
	if err != nil {
		return err
	}
	state := view.New()
	srv := server.New(state, server.Options{
		MaxUploadBytes: config.Config{MaxUploadMB: flagMaxUploadMB}.MaxUploadBytes(),
		Where:          where,
	})
	if flagInput != "" {
		header, rows, err := common.LoadRows(flagInput, where)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			slog.Error(err.Error())
			cmd.SilenceUsage = true
			return err
		}
		state.Upload(header, rows)
	}
	selection := common.FlagSelection(cmd, flagProcess, flagInstance)
	if process, ok := selection.ProcessName(); ok {
		state.SelectProcess(process)
	}
	if instance, ok := selection.InstanceID(); ok {
		state.SelectInstance(instance)
	}
	// handle signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ready := make(chan string, 1)
	defer close(ready)
	go func() {
		if addr, ok := <-ready; ok {
			fmt.Printf("Serving on http://%s (press Ctrl+C to stop)\n", addr)
		}
	}()
	if err := srv.Run(ctx, flagListen, ready); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		slog.Error(err.Error())
		cmd.SilenceUsage = true
		return err
	}
	return nil
}
