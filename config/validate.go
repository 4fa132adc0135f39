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
	"fmt"
	"net"
	"regexp"
	"strings"
)

// FieldError is a validation failure for a single field.
type FieldError struct {
	// Field is the dotted YAML path of the field, like "cache.size".
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every field that failed validation.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Error())
	}
	return "invalid configuration: " + strings.Join(msgs, "; ")
}

var metricNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Validate checks the configuration and returns a *ValidationError listing
// every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError
	fail := func(field, format string, args ...interface{}) {
		errs = append(errs, FieldError{Field: field, Message: fmt.Sprintf(format, args...)})
	}
	if cfg.Parser.MaxDepth < 1 {
		fail("parser.max_depth", "must be positive (got %d)", cfg.Parser.MaxDepth)
	}
	if cfg.Parser.MaxSize < 1 {
		fail("parser.max_size", "must be positive (got %d)", cfg.Parser.MaxSize)
	}
	if cfg.Rules.MaxProcessingDepth < 1 {
		fail("rules.max_processing_depth", "must be positive (got %d)", cfg.Rules.MaxProcessingDepth)
	}
	if cfg.Cache.Size < 1 {
		fail("cache.size", "must be positive (got %d)", cfg.Cache.Size)
	}
	if _, err := parseLevel(cfg.Log.Level); err != nil {
		fail("log.level", "must be one of debug, info, warn, error (got %q)", cfg.Log.Level)
	}
	if f := strings.ToLower(cfg.Log.Format); f != "text" && f != "json" {
		fail("log.format", "must be text or json (got %q)", cfg.Log.Format)
	}
	if !metricNamePattern.MatchString(cfg.Metrics.Namespace) {
		fail("metrics.namespace", "%q is not a valid metric name prefix", cfg.Metrics.Namespace)
	}
	if _, _, err := net.SplitHostPort(cfg.Server.Addr); err != nil {
		fail("server.addr", "%v", err)
	}
	if len(errs) > 0 {
		return &ValidationError{Errors: errs}
	}
	return nil
}
