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
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	gutterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	caretStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	headerStyle  = lipgloss.NewStyle().Bold(true)
)

// RenderSnippet renders a source line with line number, gutter, and
// underline caret:
//
//	3 | query { user }
//	  |         ^^^^ error message here
func RenderSnippet(source string, lineNum int, column int, length int, message string) string {
	if length < 1 {
		length = 1
	}
	if column < 1 {
		column = 1
	}

	numStr := strconv.Itoa(lineNum)
	gutterWidth := len(numStr)

	lineNumStyled := gutterStyle.Render(numStr)
	pipe := gutterStyle.Render("|")
	emptyGutter := strings.Repeat(" ", gutterWidth)

	codeLine := lineNumStyled + " " + pipe + " " + source

	padding := strings.Repeat(" ", column-1)
	carets := caretStyle.Render(strings.Repeat("^", length))
	msgRendered := ""
	if message != "" {
		msgRendered = " " + messageStyle.Render(message)
	}
	underLine := emptyGutter + " " + pipe + " " + padding + carets + msgRendered

	return codeLine + "\n" + underLine
}

// RenderLocation renders a location header like "--> file.graphql:3:9".
func RenderLocation(filename string, line int, column int) string {
	loc := filename + ":" + strconv.Itoa(line) + ":" + strconv.Itoa(column)
	arrow := gutterStyle.Render("-->")
	return arrow + " " + loc
}

// Render formats a diagnostic with a header, its location in filename, and
// a snippet of the line of source it refers to.
func Render(filename string, source string, d Diagnostic) string {
	sb := new(strings.Builder)
	sb.WriteString(severityStyle(d.Severity).Render(d.Severity.String()))
	if d.Rule != "" {
		sb.WriteString(headerStyle.Render("[" + d.Rule + "]"))
	}
	sb.WriteString(": ")
	sb.WriteString(headerStyle.Render(d.Message))
	if !d.Location.IsValid() {
		return sb.String()
	}
	sb.WriteString("\n")
	sb.WriteString(RenderLocation(filename, d.Location.Line, d.Location.Column))
	if line, ok := sourceLine(source, d.Location.Line); ok {
		sb.WriteString("\n")
		sb.WriteString(RenderSnippet(line, d.Location.Line, d.Location.Column, wordLength(line, d.Location.Column), ""))
	}
	return sb.String()
}

func severityStyle(sev Severity) lipgloss.Style {
	switch {
	case sev >= Error:
		return messageStyle.Bold(true)
	case sev == Warning:
		return warningStyle.Bold(true)
	default:
		return infoStyle.Bold(true)
	}
}

// sourceLine returns the 1-based n'th line of source.
func sourceLine(source string, n int) (string, bool) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	lines := strings.Split(source, "\n")
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

// wordLength returns the length of the name or punctuator that starts at
// the 1-based column.
func wordLength(line string, column int) int {
	i := column - 1
	if i < 0 || i >= len(line) {
		return 1
	}
	n := 0
	for i+n < len(line) && isWordByte(line[i+n]) {
		n++
	}
	if n == 0 {
		return 1
	}
	return n
}

func isWordByte(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9' || c == '_' || c == '$' || c == '@'
}
