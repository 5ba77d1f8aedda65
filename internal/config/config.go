// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

// Package config loads the optional YAML file holding defaults for the serve and render
// commands. Command line flags take precedence over values from the file.
package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// Config - structure of the config file, e.g.:
//
//	listen: 127.0.0.1:8080
//	max-upload-mb: 32
//	formats: [html, txt]
//	process: Process_A
//	instance: "1"
//	where: "time > 10"
type Config struct {
	Listen      string   `yaml:"listen"`
	MaxUploadMB int64    `yaml:"max-upload-mb"`
	Formats     []string `yaml:"formats"`
	Process     string   `yaml:"process"`
	Instance    string   `yaml:"instance"`
	Where       string   `yaml:"where"`
}

const (
	DefaultListen      = "127.0.0.1:8080"
	DefaultMaxUploadMB = 32
)

// Default returns the configuration used when no file is given
func Default() Config {
	return Config{
		Listen:      DefaultListen,
		MaxUploadMB: DefaultMaxUploadMB,
	}
}

// Load reads the config file at path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return cfg, errors.Wrapf(err, "failed to read config file %s", path)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if cfg.MaxUploadMB <= 0 {
		return cfg, errors.Errorf("max-upload-mb must be positive, got %d", cfg.MaxUploadMB)
	}
	return cfg, nil
}

// MaxUploadBytes returns the upload limit in bytes
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}
