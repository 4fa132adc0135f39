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

package diagnostic

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestList(t *testing.T) {
	var l List
	if l.HasCritical() || l.Len() != 0 || l.Max() != -1 {
		t.Errorf("empty list: HasCritical() = %t, Len() = %d, Max() = %v", l.HasCritical(), l.Len(), l.Max())
	}
	want := []Diagnostic{
		{Severity: Warning, Code: InvalidDocument, Message: "a", Rule: "5.5.1.4"},
		{Severity: Info, Code: InvalidDocument, Message: "b"},
		{Severity: Critical, Code: InvalidDocument, Message: "c", Rule: "5.2.1.1", Location: Location{2, 1}},
	}
	for _, d := range want {
		l.Add(d)
	}
	if diff := cmp.Diff(want, l.All()); diff != "" {
		t.Errorf("All() (-want +got):\n%s", diff)
	}
	if !l.HasCritical() {
		t.Error("HasCritical() = false; want true")
	}
	if got := l.Count(Warning); got != 2 {
		t.Errorf("Count(Warning) = %d; want 2", got)
	}
	all := l.All()
	all[0].Message = "changed"
	if l.At(0).Message != "a" {
		t.Error("All() aliases the list's storage")
	}
}

func TestDiagnosticString(t *testing.T) {
	tests := []struct {
		d    Diagnostic
		want string
	}{
		{
			d:    Diagnostic{Message: "boom"},
			want: "boom",
		},
		{
			d:    Diagnostic{Message: "boom", Rule: "5.8.3", Location: Location{3, 14}},
			want: "3:14: boom (rule 5.8.3)",
		},
	}
	for _, test := range tests {
		if got := test.d.String(); got != test.want {
			t.Errorf("%#v.String() = %q; want %q", test.d, got, test.want)
		}
	}
}

func TestDiagnosticJSON(t *testing.T) {
	d := Diagnostic{
		Severity:  Critical,
		Code:      InvalidDocument,
		Message:   "Field \"x\" not found",
		Rule:      "5.3.1",
		Reference: "#sec-Field-Selections-on-Objects-Interfaces-and-Unions-Types",
		Location:  Location{Line: 1, Column: 9},
	}
	got, err := json.Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	const want = `{"severity":"critical","code":"INVALID_DOCUMENT","message":"Field \"x\" not found","rule":"5.3.1","reference":"#sec-Field-Selections-on-Objects-Interfaces-and-Unions-Types","location":{"line":1,"column":9}}`
	if string(got) != want {
		t.Errorf("json.Marshal(...) = %s; want %s", got, want)
	}
	var back Diagnostic
	if err := json.Unmarshal(got, &back); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff(d, back); diff != "" {
		t.Errorf("round trip (-want +got):\n%s", diff)
	}
}
