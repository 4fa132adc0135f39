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

	"golang.org/x/xerrors"
)

// Default parse limits.
const (
	DefaultMaxDepth = 50
	DefaultMaxSize  = 16 << 10 // 16 KiB
)

// ParseOptions bound the resources a parse may consume. Zero fields use the
// defaults.
type ParseOptions struct {
	// MaxDepth is the deepest the syntax tree may nest.
	MaxDepth int
	// MaxSize is the largest document (in bytes) that will be parsed.
	MaxSize int
}

func (opts *ParseOptions) maxDepth() int {
	if opts == nil || opts.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return opts.MaxDepth
}

func (opts *ParseOptions) maxSize() int {
	if opts == nil || opts.MaxSize <= 0 {
		return DefaultMaxSize
	}
	return opts.MaxSize
}

// CheckSize returns a *SyntaxError if the source is larger than the options
// permit.
func (opts *ParseOptions) CheckSize(src *Source) error {
	if src.Len() > opts.maxSize() {
		return &SyntaxError{
			Message:  fmt.Sprintf("document too large (%d bytes, limit is %d)", src.Len(), opts.maxSize()),
			Position: src.Position(0),
		}
	}
	return nil
}

type parser struct {
	src      *Source
	tokens   []Token
	lastEnd  Pos
	maxDepth int
}

// Parse tokenizes and parses a GraphQL document into a syntax tree.
// The returned error, if any, wraps a *SyntaxError.
func Parse(src *Source, opts *ParseOptions) (*Node, error) {
	if err := opts.CheckSize(src); err != nil {
		return nil, xerrors.Errorf("parse: %w", err)
	}
	tokens, err := Tokenize(src)
	if err != nil {
		return nil, xerrors.Errorf("parse: %w", err)
	}
	return ParseTokens(src, tokens, opts)
}

// ParseTokens parses the tokens previously produced by Tokenize.
// Ignored tokens are skipped.
func ParseTokens(src *Source, tokens []Token, opts *ParseOptions) (*Node, error) {
	if err := opts.CheckSize(src); err != nil {
		return nil, xerrors.Errorf("parse: %w", err)
	}
	p := &parser{
		src:      src,
		maxDepth: opts.maxDepth(),
	}
	for _, tok := range tokens {
		if !tok.Ignored {
			p.tokens = append(p.tokens, tok)
		}
	}
	doc, err := p.document()
	if err != nil {
		return nil, xerrors.Errorf("parse: %w", err)
	}
	return doc, nil
}

func (p *parser) peek() Token {
	if len(p.tokens) == 0 {
		end := Pos(p.src.Len())
		return Token{Kind: EOF, Span: Span{end, end}}
	}
	return p.tokens[0]
}

// peekN returns the token n positions ahead of the next token.
func (p *parser) peekN(n int) Token {
	if n >= len(p.tokens) {
		end := Pos(p.src.Len())
		return Token{Kind: EOF, Span: Span{end, end}}
	}
	return p.tokens[n]
}

func (p *parser) next() Token {
	tok := p.peek()
	if len(p.tokens) > 0 {
		p.tokens = p.tokens[1:]
		p.lastEnd = tok.Span.End
	}
	return tok
}

func (p *parser) text(tok Token) string {
	return tok.Text(p.src)
}

// isKeyword reports whether tok is a name token with the given text.
func (p *parser) isKeyword(tok Token, kw string) bool {
	return tok.Kind == Name && p.text(tok) == kw
}

// unexpected returns a syntax error for a token that does not fit the
// production.
func (p *parser) unexpected(production string, tok Token, expected string) error {
	found := tok.describe(p.src)
	return &SyntaxError{
		Message:  fmt.Sprintf("%s: expected %s, found %s", production, expected, found),
		Pos:      tok.Span.Start,
		Position: p.src.Position(tok.Span.Start),
		Expected: expected,
		Found:    found,
	}
}

func (p *parser) tooDeep(tok Token) error {
	return &SyntaxError{
		Message:  "syntax tree too deep",
		Pos:      tok.Span.Start,
		Position: p.src.Position(tok.Span.Start),
	}
}

// expect consumes the next token if it has the given kind.
func (p *parser) expect(production string, kind TokenKind) (Token, error) {
	tok := p.peek()
	if tok.Kind != kind {
		return Token{}, p.unexpected(production, tok, "'"+punctuatorStrings[kind]+"'")
	}
	return p.next(), nil
}

// name consumes a name token.
func (p *parser) name(production string) (Token, error) {
	tok := p.peek()
	if tok.Kind != Name {
		return Token{}, p.unexpected(production, tok, "name")
	}
	return p.next(), nil
}

func (p *parser) newNode(typ NodeType, coord Coord, start Pos) *Node {
	return &Node{
		typ:   typ,
		coord: coord,
		span:  Span{Start: start, End: start},
	}
}

// add appends child to parent's children. The child must have been created
// with parent.nextCoord().
func (parent *Node) add(child *Node) {
	parent.children = append(parent.children, child)
}

func (parent *Node) nextCoord() Coord {
	return parent.coord.Child(len(parent.children))
}

// finish records the end of the node as the end of the last consumed token.
func (p *parser) finish(n *Node) *Node {
	n.span.End = p.lastEnd
	return n
}

func (p *parser) document() (*Node, error) {
	doc := p.newNode(DocumentNode, "", 0)
	for p.peek().Kind != EOF {
		defn, err := p.definition(doc.nextCoord(), 1)
		if err != nil {
			return nil, err
		}
		doc.add(defn)
	}
	if len(doc.children) == 0 {
		return nil, p.unexpected("document", p.peek(), "definition")
	}
	doc.span.End = Pos(p.src.Len())
	return doc, nil
}

var operationKeywords = map[string]bool{
	"query":        true,
	"mutation":     true,
	"subscription": true,
}

var typeSystemKeywords = map[string]bool{
	"schema":    true,
	"scalar":    true,
	"type":      true,
	"interface": true,
	"union":     true,
	"enum":      true,
	"input":     true,
	"directive": true,
	"extend":    true,
}

// https://graphql.github.io/graphql-spec/June2018/#Definition
func (p *parser) definition(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	switch {
	case tok.Kind == LBrace || tok.Kind == Name && operationKeywords[p.text(tok)]:
		// Operations do not permit a description before them.
		return p.operation(coord, depth+1)
	case p.isKeyword(tok, "fragment"):
		return p.fragmentDefinition(coord, depth+1)
	case tok.Kind == Name && typeSystemKeywords[p.text(tok)]:
		return p.typeSystemDefinition(coord)
	case (tok.Kind == StringValue || tok.Kind == BlockStringValue) && p.peekN(1).Kind == Name && typeSystemKeywords[p.text(p.peekN(1))]:
		return p.typeSystemDefinition(coord)
	default:
		return nil, p.unexpected("definition", tok, "operation, fragment, or type system definition")
	}
}

// https://graphql.github.io/graphql-spec/June2018/#OperationDefinition
func (p *parser) operation(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	op := p.newNode(OperationNode, coord, tok.Span.Start)
	if tok.Kind == LBrace {
		op.primary = "query"
		sel, err := p.selectionSet(op.nextCoord(), depth+1)
		if err != nil {
			return nil, err
		}
		op.add(sel)
		return p.finish(op), nil
	}
	op.primary = p.text(p.next())
	if tok := p.peek(); tok.Kind == Name {
		op.secondary = p.text(p.next())
	}
	if p.peek().Kind == LParen {
		vars, err := p.variableDefinitions(op.nextCoord(), depth+1)
		if err != nil {
			return nil, err
		}
		op.add(vars)
	}
	if err := p.directives(op, depth+1, false); err != nil {
		return nil, err
	}
	sel, err := p.selectionSet(op.nextCoord(), depth+1)
	if err != nil {
		return nil, xerrors.Errorf("operation: %w", err)
	}
	op.add(sel)
	return p.finish(op), nil
}

// https://graphql.github.io/graphql-spec/June2018/#SelectionSet
func (p *parser) selectionSet(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	set := p.newNode(FieldCollectionNode, coord, tok.Span.Start)
	err := p.group(LBrace, RBrace, "selection", false, func() error {
		var sel *Node
		var err error
		if p.peek().Kind == Spread {
			sel, err = p.fragment(set.nextCoord(), depth+1)
		} else {
			sel, err = p.field(set.nextCoord(), depth+1)
		}
		if err != nil {
			return err
		}
		set.add(sel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.finish(set), nil
}

// https://graphql.github.io/graphql-spec/June2018/#Field
func (p *parser) field(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	nameTok, err := p.name("field")
	if err != nil {
		return nil, err
	}
	f := p.newNode(FieldNode, coord, nameTok.Span.Start)
	f.primary = p.text(nameTok)
	if p.peek().Kind == Colon {
		p.next()
		nameTok, err := p.name("field")
		if err != nil {
			return nil, err
		}
		f.secondary = f.primary
		f.primary = p.text(nameTok)
	}
	if p.peek().Kind == LParen {
		args, err := p.arguments(f.nextCoord(), depth+1, false)
		if err != nil {
			return nil, xerrors.Errorf("field %s: %w", f.primary, err)
		}
		f.add(args)
	}
	if err := p.directives(f, depth+1, false); err != nil {
		return nil, err
	}
	if p.peek().Kind == LBrace {
		sub, err := p.selectionSet(f.nextCoord(), depth+1)
		if err != nil {
			return nil, xerrors.Errorf("field %s: %w", f.primary, err)
		}
		f.add(sub)
	}
	return p.finish(f), nil
}

// https://graphql.github.io/graphql-spec/June2018/#Arguments
func (p *parser) arguments(coord Coord, depth int, isConst bool) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	args := p.newNode(InputItemCollectionNode, coord, tok.Span.Start)
	err := p.group(LParen, RParen, "argument", false, func() error {
		arg, err := p.inputItem("argument", args.nextCoord(), depth+1, isConst)
		if err != nil {
			return err
		}
		args.add(arg)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.finish(args), nil
}

// inputItem parses either an argument or an object field: both are a name
// followed by a colon and a value.
//
// https://graphql.github.io/graphql-spec/June2018/#Argument
// https://graphql.github.io/graphql-spec/June2018/#ObjectField
func (p *parser) inputItem(production string, coord Coord, depth int, isConst bool) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	nameTok, err := p.name(production)
	if err != nil {
		return nil, err
	}
	item := p.newNode(InputItemNode, coord, nameTok.Span.Start)
	item.primary = p.text(nameTok)
	if _, err := p.expect(production, Colon); err != nil {
		return nil, err
	}
	val, err := p.value(item.nextCoord(), depth+1, isConst)
	if err != nil {
		return nil, xerrors.Errorf("%s %s: %w", production, item.primary, err)
	}
	item.add(val)
	return p.finish(item), nil
}

// https://graphql.github.io/graphql-spec/June2018/#Value
func (p *parser) value(coord Coord, depth int, isConst bool) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	switch tok.Kind {
	case Dollar:
		if isConst {
			return nil, p.unexpected("value", tok, "constant value")
		}
		p.next()
		nameTok, err := p.name("variable")
		if err != nil {
			return nil, err
		}
		v := p.newNode(VariableValueNode, coord, tok.Span.Start)
		v.primary = p.text(nameTok)
		return p.finish(v), nil
	case IntValue, FloatValue, StringValue, BlockStringValue:
		p.next()
		v := p.newNode(ScalarValueNode, coord, tok.Span.Start)
		v.primary = p.text(tok)
		switch tok.Kind {
		case IntValue:
			v.scalar = IntScalar
		case FloatValue:
			v.scalar = FloatScalar
		default:
			v.scalar = StringScalar
		}
		return p.finish(v), nil
	case Name:
		p.next()
		switch text := p.text(tok); text {
		case "true", "false":
			v := p.newNode(ScalarValueNode, coord, tok.Span.Start)
			v.primary = text
			v.scalar = BooleanScalar
			return p.finish(v), nil
		case "null":
			return p.finish(p.newNode(NullValueNode, coord, tok.Span.Start)), nil
		default:
			v := p.newNode(EnumValueNode, coord, tok.Span.Start)
			v.primary = text
			return p.finish(v), nil
		}
	case LBracket:
		return p.listValue(coord, depth+1, isConst)
	case LBrace:
		return p.objectValue(coord, depth+1, isConst)
	default:
		return nil, p.unexpected("value", tok, "value")
	}
}

// https://graphql.github.io/graphql-spec/June2018/#ListValue
func (p *parser) listValue(coord Coord, depth int, isConst bool) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	list := p.newNode(ListValueNode, coord, tok.Span.Start)
	err := p.group(LBracket, RBracket, "value", true, func() error {
		elem, err := p.value(list.nextCoord(), depth+1, isConst)
		if err != nil {
			return err
		}
		list.add(elem)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.finish(list), nil
}

// https://graphql.github.io/graphql-spec/June2018/#ObjectValue
func (p *parser) objectValue(coord Coord, depth int, isConst bool) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	obj := p.newNode(ComplexValueNode, coord, tok.Span.Start)
	err := p.group(LBrace, RBrace, "object field", true, func() error {
		field, err := p.inputItem("object field", obj.nextCoord(), depth+1, isConst)
		if err != nil {
			return err
		}
		obj.add(field)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.finish(obj), nil
}

// https://graphql.github.io/graphql-spec/June2018/#VariableDefinitions
func (p *parser) variableDefinitions(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	vars := p.newNode(VariableCollectionNode, coord, tok.Span.Start)
	err := p.group(LParen, RParen, "variable definition", false, func() error {
		v, err := p.variableDefinition(vars.nextCoord(), depth+1)
		if err != nil {
			return err
		}
		vars.add(v)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return p.finish(vars), nil
}

// https://graphql.github.io/graphql-spec/June2018/#VariableDefinition
func (p *parser) variableDefinition(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	if _, err := p.expect("variable definition", Dollar); err != nil {
		return nil, err
	}
	nameTok, err := p.name("variable definition")
	if err != nil {
		return nil, err
	}
	v := p.newNode(VariableNode, coord, tok.Span.Start)
	v.primary = p.text(nameTok)
	if _, err := p.expect("variable definition", Colon); err != nil {
		return nil, err
	}
	v.secondary, err = p.typeRef(depth + 1)
	if err != nil {
		return nil, xerrors.Errorf("variable $%s: %w", v.primary, err)
	}
	if p.peek().Kind == Equals {
		p.next()
		defaultValue, err := p.value(v.nextCoord(), depth+1, true)
		if err != nil {
			return nil, xerrors.Errorf("variable $%s: default value: %w", v.primary, err)
		}
		v.add(defaultValue)
	}
	if err := p.directives(v, depth+1, true); err != nil {
		return nil, err
	}
	return p.finish(v), nil
}

// typeRef parses a type reference and returns it in canonical form,
// e.g. "[Int!]!".
//
// https://graphql.github.io/graphql-spec/June2018/#Type
func (p *parser) typeRef(depth int) (string, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return "", p.tooDeep(tok)
	}
	var typ string
	switch tok.Kind {
	case Name:
		typ = p.text(p.next())
	case LBracket:
		p.next()
		elem, err := p.typeRef(depth + 1)
		if err != nil {
			return "", err
		}
		if _, err := p.expect("list type", RBracket); err != nil {
			return "", err
		}
		typ = "[" + elem + "]"
	default:
		return "", p.unexpected("type", tok, "name or '['")
	}
	if p.peek().Kind == Bang {
		p.next()
		typ += "!"
	}
	return typ, nil
}

// directives parses zero or more directives and adds them to parent.
//
// https://graphql.github.io/graphql-spec/June2018/#Directives
func (p *parser) directives(parent *Node, depth int, isConst bool) error {
	for p.peek().Kind == At {
		tok := p.peek()
		if depth > p.maxDepth {
			return p.tooDeep(tok)
		}
		p.next()
		nameTok, err := p.name("directive")
		if err != nil {
			return err
		}
		d := p.newNode(DirectiveNode, parent.nextCoord(), tok.Span.Start)
		d.primary = p.text(nameTok)
		if p.peek().Kind == LParen {
			args, err := p.arguments(d.nextCoord(), depth+1, isConst)
			if err != nil {
				return xerrors.Errorf("directive @%s: %w", d.primary, err)
			}
			d.add(args)
		}
		parent.add(p.finish(d))
	}
	return nil
}

// fragment parses either a fragment spread or an inline fragment. Both start
// with "...".
//
// https://graphql.github.io/graphql-spec/June2018/#FragmentSpread
// https://graphql.github.io/graphql-spec/June2018/#InlineFragment
func (p *parser) fragment(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	if _, err := p.expect("fragment", Spread); err != nil {
		return nil, err
	}
	switch next := p.peek(); {
	case next.Kind == Name && p.text(next) != "on":
		p.next()
		spread := p.newNode(FragmentSpreadNode, coord, tok.Span.Start)
		spread.primary = p.text(next)
		if err := p.directives(spread, depth+1, false); err != nil {
			return nil, err
		}
		return p.finish(spread), nil
	case next.Kind == Name || next.Kind == At || next.Kind == LBrace:
		frag := p.newNode(InlineFragmentNode, coord, tok.Span.Start)
		if next.Kind == Name {
			var err error
			frag.secondary, err = p.typeCondition(depth + 1)
			if err != nil {
				return nil, err
			}
		}
		if err := p.directives(frag, depth+1, false); err != nil {
			return nil, err
		}
		sel, err := p.selectionSet(frag.nextCoord(), depth+1)
		if err != nil {
			return nil, xerrors.Errorf("inline fragment: %w", err)
		}
		frag.add(sel)
		return p.finish(frag), nil
	default:
		return nil, p.unexpected("fragment", next, "name, 'on', '@', or '{'")
	}
}

// https://graphql.github.io/graphql-spec/June2018/#FragmentDefinition
func (p *parser) fragmentDefinition(coord Coord, depth int) (*Node, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return nil, p.tooDeep(tok)
	}
	p.next() // "fragment"
	nameTok, err := p.name("fragment definition")
	if err != nil {
		return nil, err
	}
	if p.text(nameTok) == "on" {
		return nil, p.unexpected("fragment definition", nameTok, "fragment name")
	}
	frag := p.newNode(NamedFragmentNode, coord, tok.Span.Start)
	frag.primary = p.text(nameTok)
	frag.secondary, err = p.typeCondition(depth + 1)
	if err != nil {
		return nil, xerrors.Errorf("fragment %s: %w", frag.primary, err)
	}
	if err := p.directives(frag, depth+1, false); err != nil {
		return nil, err
	}
	sel, err := p.selectionSet(frag.nextCoord(), depth+1)
	if err != nil {
		return nil, xerrors.Errorf("fragment %s: %w", frag.primary, err)
	}
	frag.add(sel)
	return p.finish(frag), nil
}

// typeCondition parses "on Type" and returns the type name.
//
// https://graphql.github.io/graphql-spec/June2018/#TypeCondition
func (p *parser) typeCondition(depth int) (string, error) {
	tok := p.peek()
	if depth > p.maxDepth {
		return "", p.tooDeep(tok)
	}
	if !p.isKeyword(tok, "on") {
		return "", p.unexpected("type condition", tok, "'on'")
	}
	p.next()
	nameTok, err := p.name("type condition")
	if err != nil {
		return "", err
	}
	return p.text(nameTok), nil
}

// typeSystemDefinition consumes a type system definition or extension
// without interpreting its body. Executable documents may not contain these,
// so the node only records the keyword and the defined name for reporting.
//
// https://graphql.github.io/graphql-spec/June2018/#TypeSystemDefinition
func (p *parser) typeSystemDefinition(coord Coord) (*Node, error) {
	tok := p.peek()
	defn := p.newNode(TypeSystemDefinitionNode, coord, tok.Span.Start)
	if tok.Kind == StringValue || tok.Kind == BlockStringValue {
		// Description.
		p.next()
	}
	defn.primary = p.text(p.next())
	if defn.primary == "extend" {
		kw, err := p.name("type system extension")
		if err != nil {
			return nil, err
		}
		defn.primary += " " + p.text(kw)
	}
	if p.peek().Kind == At && defn.primary == "directive" {
		p.next()
	}
	if tok := p.peek(); tok.Kind == Name && !typeSystemKeywords[p.text(tok)] {
		defn.secondary = p.text(p.next())
	}

	// Skip to the end of the definition: either the close of its body or
	// the start of the next top-level definition.
	nesting := 0
	for {
		tok := p.peek()
		if tok.Kind == EOF {
			if nesting > 0 {
				return nil, p.unexpected(defn.primary+" definition", tok, "closing bracket")
			}
			break
		}
		if nesting == 0 && startsDefinition(p, tok) {
			break
		}
		switch tok.Kind {
		case LBrace, LParen, LBracket:
			nesting++
		case RBrace, RParen, RBracket:
			if nesting == 0 {
				return nil, p.unexpected(defn.primary+" definition", tok, "definition")
			}
			nesting--
		}
		p.next()
		if nesting == 0 && tok.Kind == RBrace {
			break
		}
	}
	return p.finish(defn), nil
}

// startsDefinition reports whether tok can begin a new top-level definition
// following a type system definition.
func startsDefinition(p *parser, tok Token) bool {
	switch tok.Kind {
	case StringValue, BlockStringValue:
		return true
	case Name:
		text := p.text(tok)
		return operationKeywords[text] || typeSystemKeywords[text] || text == "fragment"
	default:
		return false
	}
}

// group parses a delimited list of items. If allowEmpty is false, the list
// must contain at least one item.
func (p *parser) group(ldelim, rdelim TokenKind, ruleName string, allowEmpty bool, rule func() error) error {
	if _, err := p.expect(ruleName, ldelim); err != nil {
		return err
	}
	for n := 0; ; n++ {
		tok := p.peek()
		switch {
		case tok.Kind == rdelim && (n > 0 || allowEmpty):
			p.next()
			return nil
		case tok.Kind == rdelim || tok.Kind == EOF:
			if n == 0 {
				return p.unexpected(ruleName, tok, ruleName)
			}
			return p.unexpected(ruleName, tok, fmt.Sprintf("%s or '%s'", ruleName, punctuatorStrings[rdelim]))
		}
		if err := rule(); err != nil {
			return err
		}
	}
}
