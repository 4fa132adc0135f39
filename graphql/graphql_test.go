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
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/diagnostic"
)

func TestResponseMarshalJSON(t *testing.T) {
	tests := []struct {
		name string
		resp Response
		want string
	}{
		{
			name: "Empty",
			want: `{}`,
		},
		{
			name: "Data",
			resp: Response{Data: json.RawMessage(`{"a":1}`)},
			want: `{"data":{"a":1}}`,
		},
		{
			name: "NullData",
			resp: Response{Data: json.RawMessage(`null`)},
			want: `{}`,
		},
		{
			name: "ErrorsFirst",
			resp: Response{
				Data: json.RawMessage(`{"a":null}`),
				Errors: []*ResponseError{{
					Message:   "boom",
					Locations: []Location{{Line: 1, Column: 3}},
					Path:      []PathSegment{{Field: "a"}, {ListIndex: 2}},
				}},
			},
			want: `{"errors":[{"message":"boom","locations":[{"line":1,"column":3}],"path":["a",2]}],"data":{"a":null}}`,
		},
		{
			name: "Extensions",
			resp: Response{
				Errors: []*ResponseError{{
					Message:    "unused fragment F",
					Extensions: &ErrorExtensions{Code: "INVALID_DOCUMENT", Rule: "5.5.1.4"},
				}},
			},
			want: `{"errors":[{"message":"unused fragment F","extensions":{"code":"INVALID_DOCUMENT","rule":"5.5.1.4"}}]}`,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := json.Marshal(test.resp)
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(test.want, string(got)); diff != "" {
				t.Errorf("json.Marshal(...) (-want +got):\n%s", diff)
			}
		})
	}
}

func TestResponseMarshalInvalidData(t *testing.T) {
	if _, err := json.Marshal(Response{Data: json.RawMessage(`{`)}); err == nil {
		t.Error("json.Marshal did not return an error")
	}
}

func TestPathSegmentJSON(t *testing.T) {
	var path []PathSegment
	if err := json.Unmarshal([]byte(`["users",3,"name"]`), &path); err != nil {
		t.Fatal(err)
	}
	want := []PathSegment{{Field: "users"}, {ListIndex: 3}, {Field: "name"}}
	if diff := cmp.Diff(want, path); diff != "" {
		t.Errorf("path (-want +got):\n%s", diff)
	}
	if got := path[1].String(); got != "3" {
		t.Errorf("path[1].String() = %q; want \"3\"", got)
	}
}

func TestResponseErrors(t *testing.T) {
	diags := []diagnostic.Diagnostic{
		{
			Severity: diagnostic.Warning,
			Code:     diagnostic.InvalidDocument,
			Message:  "just a warning",
			Location: diagnostic.Location{Line: 1, Column: 1},
		},
		{
			Severity: diagnostic.Critical,
			Code:     diagnostic.InvalidDocument,
			Rule:     "5.2.2.1",
			Message:  "multiple anonymous operations",
			Location: diagnostic.Location{Line: 1, Column: 13},
		},
		{
			Severity: diagnostic.Critical,
			Code:     diagnostic.InvalidDocument,
			Rule:     "5.1.1",
			Message:  "no location",
		},
	}
	want := []*ResponseError{
		{
			Message:    "multiple anonymous operations",
			Locations:  []Location{{Line: 1, Column: 13}},
			Extensions: &ErrorExtensions{Code: "INVALID_DOCUMENT", Rule: "5.2.2.1"},
		},
		{
			Message:    "no location",
			Extensions: &ErrorExtensions{Code: "INVALID_DOCUMENT", Rule: "5.1.1"},
		},
	}
	if diff := cmp.Diff(want, ResponseErrors(diags)); diff != "" {
		t.Errorf("ResponseErrors(...) (-want +got):\n%s", diff)
	}
}

func TestToResponseError(t *testing.T) {
	se := &SyntaxError{Message: "unexpected EOF", Line: 2, Column: 5}
	tests := []struct {
		name string
		err  error
		want *ResponseError
	}{
		{
			name: "Syntax",
			err:  xerrors.Errorf("compile: %w", se),
			want: &ResponseError{
				Message:    "unexpected EOF",
				Locations:  []Location{{Line: 2, Column: 5}},
				Extensions: &ErrorExtensions{Code: "SYNTAX_ERROR"},
			},
		},
		{
			name: "Other",
			err:  xerrors.New("bad"),
			want: &ResponseError{Message: "bad"},
		},
		{
			name: "AlreadyResponseError",
			err:  &ResponseError{Message: "x"},
			want: &ResponseError{Message: "x"},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.want, ToResponseError(test.err)); diff != "" {
				t.Errorf("ToResponseError(...) (-want +got):\n%s", diff)
			}
		})
	}
}

func TestOperationTypeString(t *testing.T) {
	tests := []struct {
		typ  OperationType
		want string
	}{
		{QueryOperation, "query"},
		{MutationOperation, "mutation"},
		{SubscriptionOperation, "subscription"},
		{0, "OperationType(0)"},
	}
	for _, test := range tests {
		if got := test.typ.String(); got != test.want {
			t.Errorf("OperationType(%d).String() = %q; want %q", int(test.typ), got, test.want)
		}
	}
}
