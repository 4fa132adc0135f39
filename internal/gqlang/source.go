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

package gqlang

import (
	"fmt"
	"sort"
	"strings"
)

// Source is a GraphQL document's text. It provides random access to the
// document's bytes and converts byte offsets into line and column numbers.
// A Source is safe to use from multiple goroutines.
type Source struct {
	text       string
	lineStarts []Pos
}

// NewSource returns a new Source for the given text.
func NewSource(text string) *Source {
	src := &Source{text: text, lineStarts: []Pos{0}}
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				// CRLF is a single line terminator.
				i++
			}
			src.lineStarts = append(src.lineStarts, Pos(i+1))
		case '\n':
			src.lineStarts = append(src.lineStarts, Pos(i+1))
		}
	}
	return src
}

// String returns the source text.
func (src *Source) String() string {
	return src.text
}

// Len returns the number of bytes in the source.
func (src *Source) Len() int {
	return len(src.text)
}

// At returns the byte at the given position or 0 if pos is out of range.
func (src *Source) At(pos Pos) byte {
	if pos < 0 || int(pos) >= len(src.text) {
		return 0
	}
	return src.text[pos]
}

// Slice returns the text in the span.
func (src *Source) Slice(span Span) string {
	return src.text[span.Start:span.End]
}

// Position converts a byte position into a line and column number.
func (src *Source) Position(pos Pos) Position {
	if pos < 0 {
		pos = 0
	}
	if int(pos) > len(src.text) {
		pos = Pos(len(src.text))
	}
	// Index of the last line start <= pos.
	i := sort.Search(len(src.lineStarts), func(i int) bool {
		return src.lineStarts[i] > pos
	}) - 1
	col := int(pos-src.lineStarts[i]) + 1
	if i == 0 && strings.HasPrefix(src.text, bom) && pos >= Pos(len(bom)) {
		// The byte order mark does not occupy a column.
		col -= len(bom)
	}
	return Position{Line: i + 1, Column: col}
}

// A Pos is a 0-based byte offset in a GraphQL document.
type Pos int

// ToPosition converts a byte position into a line and column number.
// Prefer Source.Position when converting many positions in the same text.
func (pos Pos) ToPosition(input string) Position {
	return NewSource(input).Position(pos)
}

// A Position is a line/column pair. Both are 1-based.
// The column is byte-based.
type Position struct {
	Line   int
	Column int
}

// String returns p in the form "line:col".
func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// A Span is a half-open range of bytes [Start, End) in a document.
type Span struct {
	Start Pos
	End   Pos
}

// Len returns the number of bytes in the span.
func (span Span) Len() int {
	return int(span.End - span.Start)
}

const bom = "\ufeff"
