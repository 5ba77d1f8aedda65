package serve

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"testing"

	"cpuchart/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlagGroupsMatchFlags(t *testing.T) {
	for _, group := range getFlagGroups() {
		for _, flag := range group.Flags {
			assert.NotNil(t, Cmd.Flags().Lookup(flag.Name), "flag %s in group %s is not defined", flag.Name, group.GroupName)
		}
	}
}

func TestApplyConfig(t *testing.T) {
	t.Cleanup(func() {
		flagListen = config.DefaultListen
		flagMaxUploadMB = config.DefaultMaxUploadMB
		flagInstance = ""
		flagWhere = ""
		Cmd.Flags().Lookup(flagListenName).Changed = false
	})
	require.NoError(t, Cmd.Flags().Set(flagListenName, "0.0.0.0:9000"))
	applyConfig(Cmd, config.Config{
		Listen:      "127.0.0.1:1234",
		MaxUploadMB: 8,
		Instance:    "3",
		Where:       "time > 1",
	})
	// flags given on the command line win over the file
	assert.Equal(t, "0.0.0.0:9000", flagListen)
	assert.Equal(t, int64(8), flagMaxUploadMB)
	assert.Equal(t, "3", flagInstance)
	assert.Equal(t, "time > 1", flagWhere)
}

func TestValidateFlags(t *testing.T) {
	t.Cleanup(func() {
		flagMaxUploadMB = config.DefaultMaxUploadMB
		flagProcess = ""
		flagWhere = ""
		Cmd.Flags().Lookup(flagMaxUploadMBName).Changed = false
	})
	assert.NoError(t, validateFlags(Cmd, nil))

	require.NoError(t, Cmd.Flags().Set(flagMaxUploadMBName, "0"))
	assert.Error(t, validateFlags(Cmd, nil))
	flagMaxUploadMB = config.DefaultMaxUploadMB

	flagProcess = "p1"
	assert.Error(t, validateFlags(Cmd, nil))
	flagProcess = ""

	flagWhere = "instance =="
	assert.Error(t, validateFlags(Cmd, nil))
}
