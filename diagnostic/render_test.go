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
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var ansiPattern = regexp.MustCompile("\x1b\\[[0-9;]*m")

func stripAnsi(s string) string {
	return ansiPattern.ReplaceAllString(s, "")
}

func TestRenderSnippet(t *testing.T) {
	result := stripAnsi(RenderSnippet("query { user }", 3, 9, 4, "unknown field"))

	lines := strings.Split(result, "\n")
	assert.Len(t, lines, 2)
	assert.Equal(t, "3 | query { user }", lines[0])
	assert.Equal(t, "  |         ^^^^ unknown field", lines[1])
}

func TestRenderSnippetDefaults(t *testing.T) {
	result := stripAnsi(RenderSnippet("test", 1, 0, 0, ""))
	assert.Equal(t, "1 | test\n  | ^", result)
}

func TestRenderSnippetLargeLineNumber(t *testing.T) {
	result := stripAnsi(RenderSnippet("code", 1234, 1, 4, ""))
	lines := strings.Split(result, "\n")
	assert.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[1], "     | ^^^^"), "underline should align with gutter: %q", lines[1])
}

func TestRenderLocation(t *testing.T) {
	result := stripAnsi(RenderLocation("query.graphql", 3, 9))
	assert.Equal(t, "--> query.graphql:3:9", result)
}

func TestRender(t *testing.T) {
	const source = "query {\n  user { nmae }\n}\n"
	d := Diagnostic{
		Severity: Critical,
		Code:     InvalidDocument,
		Message:  `Cannot query field "nmae" on type "User".`,
		Rule:     "5.3.1",
		Location: Location{Line: 2, Column: 10},
	}
	result := stripAnsi(Render("q.graphql", source, d))
	assert.Equal(t, "critical[5.3.1]: Cannot query field \"nmae\" on type \"User\".\n"+
		"--> q.graphql:2:10\n"+
		"2 |   user { nmae }\n"+
		"  |          ^^^^", result)
}

func TestRenderWithoutLocation(t *testing.T) {
	d := Diagnostic{Severity: Warning, Message: "hmm"}
	assert.Equal(t, "warning: hmm", stripAnsi(Render("q.graphql", "{ a }", d)))
}
