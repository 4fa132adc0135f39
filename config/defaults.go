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

// Default values for configuration fields.
const (
	DefaultParserMaxDepth     = 50
	DefaultParserMaxSize      = 16 << 10 // 16 KiB
	DefaultMaxProcessingDepth = 250
	DefaultCacheEnabled       = true
	DefaultCacheSize          = 1000
	DefaultLogLevel           = "info"
	DefaultLogFormat          = "text"
	DefaultMetricsEnabled     = true
	DefaultMetricsNamespace   = "gqlplan"
	DefaultServerAddr         = ":8080"
)

// ApplyDefaults fills in zero-valued fields. Boolean fields are left alone:
// Load starts from Default so an absent key keeps its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Parser.MaxDepth == 0 {
		cfg.Parser.MaxDepth = DefaultParserMaxDepth
	}
	if cfg.Parser.MaxSize == 0 {
		cfg.Parser.MaxSize = DefaultParserMaxSize
	}
	if cfg.Rules.MaxProcessingDepth == 0 {
		cfg.Rules.MaxProcessingDepth = DefaultMaxProcessingDepth
	}
	if cfg.Cache.Size == 0 {
		cfg.Cache.Size = DefaultCacheSize
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
}
