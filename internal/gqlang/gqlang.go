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

// Package gqlang provides a parser for the GraphQL language.
//
// Parsing happens in two stages. A Lexer splits the source into tokens and
// the parser assembles the significant tokens into a tree of immutable Nodes.
// Both stages stop at the first error: a document that does not lex or parse
// produces a *SyntaxError and no tree.
package gqlang

import (
	"fmt"
	"strconv"
	"strings"
)

// A Node is an element of a GraphQL syntax tree. Nodes are immutable once the
// parser returns them: use With to derive a modified copy.
//
// The meaning of Primary and Secondary depends on the node's type:
//
//	Operation            operation type keyword, operation name
//	Variable             variable name, type expression (e.g. "[Int!]!")
//	Directive            directive name
//	NamedFragment        fragment name, type condition
//	InlineFragment       -, type condition (may be empty)
//	FragmentSpread       fragment name
//	Field                field name, alias (may be empty)
//	InputItem            argument or object field name
//	VariableValue        variable name
//	EnumValue            enum symbol
//	ScalarValue          raw literal text
//	TypeSystemDefinition keyword, defined name
type Node struct {
	typ       NodeType
	span      Span
	primary   string
	secondary string
	scalar    ScalarKind
	coord     Coord
	children  []*Node
}

// Type returns the node's type.
func (n *Node) Type() NodeType {
	return n.typ
}

// Pos returns the position of the node's first token.
func (n *Node) Pos() Pos {
	return n.span.Start
}

// End returns the position of the byte after the node's last token.
func (n *Node) End() Pos {
	return n.span.End
}

// Span returns the range of source text the node covers.
func (n *Node) Span() Span {
	return n.span
}

// Primary returns the node's primary value.
func (n *Node) Primary() string {
	return n.primary
}

// Secondary returns the node's secondary value.
func (n *Node) Secondary() string {
	return n.secondary
}

// ScalarKind returns the kind of literal for a ScalarValue node.
func (n *Node) ScalarKind() ScalarKind {
	return n.scalar
}

// Coord returns the node's coordinates in the tree.
func (n *Node) Coord() Coord {
	return n.coord
}

// Len returns the number of children.
func (n *Node) Len() int {
	return len(n.children)
}

// Child returns the i'th child.
func (n *Node) Child(i int) *Node {
	return n.children[i]
}

// Children returns a copy of the node's children.
func (n *Node) Children() []*Node {
	return append([]*Node(nil), n.children...)
}

// FirstChild returns the first child with the given type or nil if the node
// has no such child.
func (n *Node) FirstChild(typ NodeType) *Node {
	for _, c := range n.children {
		if c.typ == typ {
			return c
		}
	}
	return nil
}

// String returns a short description of the node for debugging.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	sb := new(strings.Builder)
	sb.WriteString(n.typ.String())
	sb.WriteByte('(')
	sb.WriteString(n.primary)
	if n.secondary != "" {
		sb.WriteString(", ")
		sb.WriteString(n.secondary)
	}
	sb.WriteString(")@")
	sb.WriteString(string(n.coord))
	return sb.String()
}

// A NodeOption overrides a value in a node copy made by With.
type NodeOption func(*Node)

// WithPrimary overrides the primary value.
func WithPrimary(s string) NodeOption {
	return func(n *Node) { n.primary = s }
}

// WithSecondary overrides the secondary value.
func WithSecondary(s string) NodeOption {
	return func(n *Node) { n.secondary = s }
}

// WithChildren replaces the children.
func WithChildren(children ...*Node) NodeOption {
	return func(n *Node) { n.children = append([]*Node(nil), children...) }
}

// With returns a shallow copy of n with the given overrides applied.
// n is not modified.
func (n *Node) With(opts ...NodeOption) *Node {
	clone := new(Node)
	*clone = *n
	clone.children = append([]*Node(nil), n.children...)
	for _, opt := range opts {
		opt(clone)
	}
	return clone
}

// StringValue converts a ScalarValue's raw literal into its value. String
// literals are unquoted and unescaped; other literals are returned verbatim.
func (n *Node) StringValue() string {
	switch {
	case n.typ != ScalarValueNode || n.scalar != StringScalar:
		return n.primary
	case strings.HasPrefix(n.primary, `"""`):
		return blockStringValue(n.primary)
	default:
		return stringValue(n.primary)
	}
}

// NodeType is the type of a Node.
type NodeType int

// Node types.
const (
	DocumentNode NodeType = iota
	OperationNode
	VariableCollectionNode
	VariableNode
	DirectiveNode
	NamedFragmentNode
	InlineFragmentNode
	FragmentSpreadNode
	FieldCollectionNode
	FieldNode
	InputItemCollectionNode
	InputItemNode
	VariableValueNode
	ComplexValueNode
	EnumValueNode
	ScalarValueNode
	ListValueNode
	NullValueNode
	TypeSystemDefinitionNode
)

var nodeTypeNames = [...]string{
	DocumentNode:             "Document",
	OperationNode:            "Operation",
	VariableCollectionNode:   "VariableCollection",
	VariableNode:             "Variable",
	DirectiveNode:            "Directive",
	NamedFragmentNode:        "NamedFragment",
	InlineFragmentNode:       "InlineFragment",
	FragmentSpreadNode:       "FragmentSpread",
	FieldCollectionNode:      "FieldCollection",
	FieldNode:                "Field",
	InputItemCollectionNode:  "InputItemCollection",
	InputItemNode:            "InputItem",
	VariableValueNode:        "VariableValue",
	ComplexValueNode:         "ComplexValue",
	EnumValueNode:            "EnumValue",
	ScalarValueNode:          "ScalarValue",
	ListValueNode:            "ListValue",
	NullValueNode:            "NullValue",
	TypeSystemDefinitionNode: "TypeSystemDefinition",
}

func (typ NodeType) String() string {
	if typ < 0 || int(typ) >= len(nodeTypeNames) {
		return fmt.Sprintf("NodeType(%d)", int(typ))
	}
	return nodeTypeNames[typ]
}

// IsValue reports whether the node type is one of the input value types.
func (typ NodeType) IsValue() bool {
	switch typ {
	case VariableValueNode, ComplexValueNode, EnumValueNode, ScalarValueNode, ListValueNode, NullValueNode:
		return true
	default:
		return false
	}
}

// ScalarKind indicates the kind of literal in a ScalarValue node.
type ScalarKind int

// Scalar kinds.
const (
	StringScalar ScalarKind = iota
	BooleanScalar
	IntScalar
	FloatScalar
)

func (kind ScalarKind) String() string {
	switch kind {
	case StringScalar:
		return "String"
	case BooleanScalar:
		return "Boolean"
	case IntScalar:
		return "Int"
	case FloatScalar:
		return "Float"
	default:
		return fmt.Sprintf("ScalarKind(%d)", int(kind))
	}
}

// Coord identifies a node by the sequence of child indices that lead to it
// from the document root, e.g. "0.2.1". The root's coordinate is empty.
type Coord string

// Child returns the coordinate of the i'th child.
func (c Coord) Child(i int) Coord {
	if c == "" {
		return Coord(strconv.Itoa(i))
	}
	return c + "." + Coord(strconv.Itoa(i))
}

// Depth returns the number of edges between the root and the coordinate.
func (c Coord) Depth() int {
	if c == "" {
		return 0
	}
	return strings.Count(string(c), ".") + 1
}

func stringValue(raw string) string {
	raw = strings.TrimPrefix(raw, `"`)
	raw = strings.TrimSuffix(raw, `"`)
	sb := new(strings.Builder)
	sb.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' || i+1 >= len(raw) {
			sb.WriteByte(raw[i])
			continue
		}
		i++ // skip past backslash
		switch raw[i] {
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'u':
			if i+5 > len(raw) {
				sb.WriteRune('�')
				continue
			}
			codePoint, err := strconv.ParseUint(raw[i+1:i+5], 16, 16)
			i += 4
			if err != nil {
				sb.WriteRune('�') // Unicode replacement character
				continue
			}
			sb.WriteRune(rune(codePoint))
		default:
			sb.WriteByte(raw[i])
		}
	}
	return sb.String()
}

func blockStringValue(raw string) string {
	raw = strings.TrimPrefix(raw, `"""`)
	raw = strings.TrimSuffix(raw, `"""`)
	raw = strings.ReplaceAll(raw, `\"""`, `"""`)
	lines := splitLines(raw)
	if len(lines) == 0 {
		return ""
	}

	// Eliminate common indentation.
	commonIndent := -1
	for _, line := range lines[1:] {
		indent := countLeadingWhitespace(line)
		if indent < len(line) && (commonIndent == -1 || indent < commonIndent) {
			commonIndent = indent
		}
	}
	if commonIndent != -1 {
		for i, line := range lines {
			if i == 0 {
				continue
			}
			if commonIndent < len(line) {
				lines[i] = line[commonIndent:]
			} else {
				lines[i] = ""
			}
		}
	}

	// Strip leading and trailing blank lines.
	for len(lines) > 0 && countLeadingWhitespace(lines[0]) == len(lines[0]) {
		lines = lines[1:]
	}
	for len(lines) > 0 && countLeadingWhitespace(lines[len(lines)-1]) == len(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	return strings.Join(lines, "\n")
}

func splitLines(s string) []string {
	lineStart := 0
	var lines []string
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\r':
			lines = append(lines, s[lineStart:i])
			if i+1 < len(s) && s[i+1] == '\n' {
				// CRLF, advance.
				i++
			}
			lineStart = i + 1
		case '\n':
			lines = append(lines, s[lineStart:i])
			lineStart = i + 1
		}
	}
	if lineStart < len(s) {
		lines = append(lines, s[lineStart:])
	}
	return lines
}

func countLeadingWhitespace(s string) int {
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			return i
		}
	}
	return len(s)
}
