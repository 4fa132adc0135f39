// Copyright 2019 Ross Light
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// SPDX-License-Identifier: Apache-2.0

// Package config loads the gqlplan command's configuration from YAML.
//
// Loading applies defaults to fields the file leaves unset, then environment
// overrides named GQLPLAN_<SECTION>_<FIELD> (for example
// GQLPLAN_CACHE_SIZE), then validates the result.
package config

import (
	"io"
	"log/slog"
	"strings"

	"golang.org/x/xerrors"
)

// Config is the top-level configuration.
type Config struct {
	Parser  ParserConfig  `yaml:"parser"`
	Rules   RulesConfig   `yaml:"rules"`
	Cache   CacheConfig   `yaml:"cache"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
	Server  ServerConfig  `yaml:"server"`
}

// ParserConfig bounds the resources parsing a document may consume.
type ParserConfig struct {
	MaxDepth int `yaml:"max_depth"`
	MaxSize  int `yaml:"max_size"`
}

// RulesConfig configures the validation rule processor.
type RulesConfig struct {
	// MaxProcessingDepth is read once when the processor is created.
	MaxProcessingDepth int  `yaml:"max_processing_depth"`
	ChildrenFirst      bool `yaml:"children_first"`
}

// CacheConfig configures the plan cache.
type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of "debug", "info", "warn" or "error".
	Level string `yaml:"level"`
	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// MetricsConfig configures Prometheus metrics.
type MetricsConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Namespace string `yaml:"namespace"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration with every field set to its default.
func Default() *Config {
	cfg := &Config{
		Cache:   CacheConfig{Enabled: DefaultCacheEnabled},
		Metrics: MetricsConfig{Enabled: DefaultMetricsEnabled},
	}
	ApplyDefaults(cfg)
	return cfg
}

// NewLogger returns a logger writing to w in the configured format and level.
func (c LogConfig) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	switch strings.ToLower(c.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, xerrors.Errorf("unknown log format %q", c.Format)
	}
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, xerrors.Errorf("unknown log level %q", s)
	}
}
