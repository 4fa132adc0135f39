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

package config

import (
	"bytes"
	"io"
	"os"
	"strconv"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v3"
)

// Load reads the configuration file at path, applies environment overrides
// and validates the result. An empty path loads the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return finish(Default(), os.LookupEnv)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, xerrors.Errorf("load config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, xerrors.Errorf("load config %s: %w", path, err)
	}
	return finish(cfg, os.LookupEnv)
}

// Parse decodes YAML configuration. Keys that do not correspond to a field are
// an error. Parse applies defaults but neither environment overrides nor
// validation.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, xerrors.Errorf("parse config: %w", err)
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

func finish(cfg *Config, lookup func(string) (string, bool)) (*Config, error) {
	if err := ApplyEnv(cfg, lookup); err != nil {
		return nil, xerrors.Errorf("load config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, xerrors.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides fields from variables named GQLPLAN_<SECTION>_<FIELD>.
// lookup is usually os.LookupEnv.
func ApplyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	ints := []struct {
		name string
		dst  *int
	}{
		{"GQLPLAN_PARSER_MAX_DEPTH", &cfg.Parser.MaxDepth},
		{"GQLPLAN_PARSER_MAX_SIZE", &cfg.Parser.MaxSize},
		{"GQLPLAN_RULES_MAX_PROCESSING_DEPTH", &cfg.Rules.MaxProcessingDepth},
		{"GQLPLAN_CACHE_SIZE", &cfg.Cache.Size},
	}
	for _, v := range ints {
		s, ok := lookup(v.name)
		if !ok {
			continue
		}
		i, err := strconv.Atoi(s)
		if err != nil {
			return xerrors.Errorf("%s: %w", v.name, err)
		}
		*v.dst = i
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"GQLPLAN_RULES_CHILDREN_FIRST", &cfg.Rules.ChildrenFirst},
		{"GQLPLAN_CACHE_ENABLED", &cfg.Cache.Enabled},
		{"GQLPLAN_METRICS_ENABLED", &cfg.Metrics.Enabled},
	}
	for _, v := range bools {
		s, ok := lookup(v.name)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(s)
		if err != nil {
			return xerrors.Errorf("%s: %w", v.name, err)
		}
		*v.dst = b
	}

	strs := []struct {
		name string
		dst  *string
	}{
		{"GQLPLAN_LOG_LEVEL", &cfg.Log.Level},
		{"GQLPLAN_LOG_FORMAT", &cfg.Log.Format},
		{"GQLPLAN_METRICS_NAMESPACE", &cfg.Metrics.Namespace},
		{"GQLPLAN_SERVER_ADDR", &cfg.Server.Addr},
	}
	for _, v := range strs {
		if s, ok := lookup(v.name); ok {
			*v.dst = s
		}
	}
	return nil
}
