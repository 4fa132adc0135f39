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

package graphql

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/internal/gqlang"
	"zombiezen.com/go/gqlplan/rules"
	"zombiezen.com/go/gqlplan/schema"
)

// ErrSchemaMismatch is returned when a document validated against one schema
// is used with a different one.
var ErrSchemaMismatch = xerrors.New("document validated with a different schema")

// SyntaxError is returned by Compile when the source cannot be tokenized or
// does not match the GraphQL grammar. No document is produced.
type SyntaxError struct {
	Message string
	// Line and Column are 1-based.
	Line   int
	Column int

	err error
}

// newSyntaxError converts an error from the gqlang package.
func newSyntaxError(err error) error {
	var se *gqlang.SyntaxError
	if !xerrors.As(err, &se) {
		return xerrors.Errorf("compile: %w", err)
	}
	return &SyntaxError{
		Message: se.Message,
		Line:    se.Position.Line,
		Column:  se.Position.Column,
		err:     err,
	}
}

// Error returns the message prefixed by "line:col".
func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error: %d:%d: %s", e.Line, e.Column, e.Message)
}

// Unwrap returns the underlying parse error.
func (e *SyntaxError) Unwrap() error {
	return e.err
}

// Location returns the error's location.
func (e *SyntaxError) Location() Location {
	return Location{Line: e.Line, Column: e.Column}
}

// OperationType represents the keywords used to declare operations.
type OperationType int

// Types of operations.
const (
	QueryOperation OperationType = 1 + iota
	MutationOperation
	SubscriptionOperation
)

func operationTypeFromSchema(typ schema.OperationType) OperationType {
	switch typ {
	case schema.Query:
		return QueryOperation
	case schema.Mutation:
		return MutationOperation
	case schema.Subscription:
		return SubscriptionOperation
	default:
		panic("unknown operation type")
	}
}

// String returns the keyword corresponding to the operation type.
func (typ OperationType) String() string {
	switch typ {
	case QueryOperation:
		return "query"
	case MutationOperation:
		return "mutation"
	case SubscriptionOperation:
		return "subscription"
	default:
		return fmt.Sprintf("OperationType(%d)", int(typ))
	}
}

// Request holds the inputs for a GraphQL operation.
type Request struct {
	// Query is the GraphQL document text.
	Query string `json:"query"`
	// If OperationName is not empty, then the operation with the given name will
	// be selected. Otherwise, the document must only include a single operation.
	OperationName string `json:"operationName,omitempty"`
	// Variables is the JSON object of variable values. It is passed through to
	// the executor undecoded.
	Variables json.RawMessage `json:"variables,omitempty"`
}

// Response holds the output of a GraphQL operation.
type Response struct {
	// Data is the JSON result. Nil or "null" is omitted.
	Data   json.RawMessage  `json:"data,omitempty"`
	Errors []*ResponseError `json:"errors,omitempty"`
}

// MarshalJSON converts the response to JSON format. Errors are written before
// data.
func (resp Response) MarshalJSON() ([]byte, error) {
	hasData := len(resp.Data) > 0 && !bytes.Equal(bytes.TrimSpace(resp.Data), []byte("null"))
	var buf []byte
	buf = append(buf, '{')
	if len(resp.Errors) > 0 {
		buf = append(buf, `"errors":`...)
		errorsData, err := json.Marshal(resp.Errors)
		if err != nil {
			return buf, xerrors.Errorf("marshal response: %w", err)
		}
		buf = append(buf, errorsData...)
		if hasData {
			buf = append(buf, ',')
		}
	}
	if hasData {
		if !json.Valid(resp.Data) {
			return buf, xerrors.New("marshal response: data is not valid JSON")
		}
		buf = append(buf, `"data":`...)
		buf = append(buf, resp.Data...)
	}
	buf = append(buf, '}')
	return buf, nil
}

// ResponseError describes an error that occurred during the processing of a
// GraphQL operation.
type ResponseError struct {
	Message    string           `json:"message"`
	Locations  []Location       `json:"locations,omitempty"`
	Path       []PathSegment    `json:"path,omitempty"`
	Extensions *ErrorExtensions `json:"extensions,omitempty"`
}

// ErrorExtensions holds the machine-readable details of a response error.
type ErrorExtensions struct {
	Code string `json:"code,omitempty"`
	Rule string `json:"rule,omitempty"`
}

// Error returns e.Message.
func (e *ResponseError) Error() string {
	return e.Message
}

// ToResponseError converts an error from Compile into a response error.
func ToResponseError(e error) *ResponseError {
	var re *ResponseError
	if xerrors.As(e, &re) {
		return re
	}
	var se *SyntaxError
	if xerrors.As(e, &se) {
		return &ResponseError{
			Message:    se.Message,
			Locations:  []Location{se.Location()},
			Extensions: &ErrorExtensions{Code: string(diagnostic.SyntaxError)},
		}
	}
	re = &ResponseError{Message: e.Error()}
	if xerrors.Is(e, rules.ErrDepthExceeded) {
		re.Extensions = &ErrorExtensions{Code: string(diagnostic.DepthExceeded)}
	}
	return re
}

// ResponseErrors converts the critical diagnostics in a list to response
// errors, preserving their order.
func ResponseErrors(diags []diagnostic.Diagnostic) []*ResponseError {
	var errs []*ResponseError
	for _, d := range diags {
		if d.Severity < diagnostic.Critical {
			continue
		}
		re := &ResponseError{
			Message:    d.Message,
			Extensions: &ErrorExtensions{Code: string(d.Code), Rule: d.Rule},
		}
		if d.Location.IsValid() {
			re.Locations = []Location{{Line: d.Location.Line, Column: d.Location.Column}}
		}
		errs = append(errs, re)
	}
	return errs
}

// Location identifies a position in a GraphQL document. Line and column
// are 1-based.
type Location struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// String returns the location in the form "line:col".
func (loc Location) String() string {
	return fmt.Sprintf("%d:%d", loc.Line, loc.Column)
}

// PathSegment identifies a field or array index in an output object.
type PathSegment struct {
	Field     string
	ListIndex int
}

// String returns the segment's index or field name as a string.
func (seg PathSegment) String() string {
	if seg.Field == "" {
		return strconv.Itoa(seg.ListIndex)
	}
	return seg.Field
}

// MarshalJSON converts the segment to a JSON integer or a JSON string.
func (seg PathSegment) MarshalJSON() ([]byte, error) {
	if seg.Field == "" {
		return strconv.AppendInt(nil, int64(seg.ListIndex), 10), nil
	}
	return json.Marshal(seg.Field)
}

// UnmarshalJSON converts JSON strings into field segments and JSON numbers into
// list index segments.
func (seg *PathSegment) UnmarshalJSON(data []byte) error {
	if !bytes.HasPrefix(data, []byte(`"`)) {
		i, err := json.Number(string(data)).Int64()
		if err != nil {
			return err
		}
		seg.ListIndex = int(i)
		return nil
	}
	err := json.Unmarshal(data, &seg.Field)
	return err
}
