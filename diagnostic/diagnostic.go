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

// Package diagnostic provides the messages that document validation
// produces and utilities for rendering them with source code snippets.
package diagnostic

import (
	"fmt"

	"golang.org/x/xerrors"
)

// Severity orders diagnostics by how serious they are.
type Severity int

// Severities, from least to most serious.
const (
	Info Severity = iota
	Warning
	Error
	Critical
)

var severityNames = [...]string{
	Info:     "info",
	Warning:  "warning",
	Error:    "error",
	Critical: "critical",
}

func (sev Severity) String() string {
	if sev < 0 || int(sev) >= len(severityNames) {
		return fmt.Sprintf("Severity(%d)", int(sev))
	}
	return severityNames[sev]
}

// MarshalText returns the lowercase name of the severity.
func (sev Severity) MarshalText() ([]byte, error) {
	if sev < 0 || int(sev) >= len(severityNames) {
		return nil, xerrors.Errorf("marshal severity: unknown value %d", int(sev))
	}
	return []byte(severityNames[sev]), nil
}

// UnmarshalText parses a severity name.
func (sev *Severity) UnmarshalText(text []byte) error {
	for i, name := range severityNames {
		if string(text) == name {
			*sev = Severity(i)
			return nil
		}
	}
	return xerrors.Errorf("unmarshal severity: unknown value %q", text)
}

// Code is a stable, machine-checkable error code.
type Code string

// Diagnostic codes.
const (
	// InvalidDocument is used for violations of document validation rules.
	InvalidDocument Code = "INVALID_DOCUMENT"
	// SyntaxError is used when a document cannot be lexed or parsed.
	SyntaxError Code = "SYNTAX_ERROR"
	// DepthExceeded is used when a document nests too deeply to validate.
	DepthExceeded Code = "DEPTH_EXCEEDED"
)

// Location is a 1-based line and column in a document. The zero value means
// the location is unknown.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// IsValid reports whether the location is known.
func (loc Location) IsValid() bool {
	return loc.Line > 0 && loc.Column > 0
}

// String returns the location in the form "line:col".
func (loc Location) String() string {
	return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
}

// Diagnostic is a validation message.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Code     Code     `json:"code"`
	Message  string   `json:"message"`
	// Rule is the identifier of the rule that produced the message, like
	// "5.2.1.1". It is empty for diagnostics that are not tied to a rule.
	Rule string `json:"rule,omitempty"`
	// Reference is an anchor into the GraphQL specification describing the
	// rule.
	Reference string   `json:"reference,omitempty"`
	Location  Location `json:"location"`
}

// String formats the diagnostic for a log or terminal.
func (d Diagnostic) String() string {
	s := d.Message
	if d.Rule != "" {
		s += " (rule " + d.Rule + ")"
	}
	if d.Location.IsValid() {
		s = d.Location.String() + ": " + s
	}
	return s
}

// List is an ordered collection of diagnostics. Diagnostics are only ever
// appended. The zero value is an empty list. A List is not safe for
// concurrent use.
type List struct {
	items []Diagnostic
}

// Add appends a diagnostic to the list.
func (l *List) Add(d Diagnostic) {
	l.items = append(l.items, d)
}

// Len returns the number of diagnostics in the list.
func (l *List) Len() int {
	if l == nil {
		return 0
	}
	return len(l.items)
}

// At returns the i'th diagnostic.
func (l *List) At(i int) Diagnostic {
	return l.items[i]
}

// All returns a copy of the diagnostics in the order they were added.
func (l *List) All() []Diagnostic {
	if l == nil {
		return nil
	}
	return append([]Diagnostic(nil), l.items...)
}

// HasCritical reports whether any diagnostic in the list is critical.
func (l *List) HasCritical() bool {
	return l.Max() >= Critical
}

// Max returns the highest severity in the list, or -1 if the list is empty.
func (l *List) Max() Severity {
	max := Severity(-1)
	if l == nil {
		return max
	}
	for _, d := range l.items {
		if d.Severity > max {
			max = d.Severity
		}
	}
	return max
}

// Count returns the number of diagnostics with at least the given severity.
func (l *List) Count(min Severity) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, d := range l.items {
		if d.Severity >= min {
			n++
		}
	}
	return n
}
