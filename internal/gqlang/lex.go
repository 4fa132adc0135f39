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
	"strings"
	"unicode/utf8"
)

// A Token is a lexical unit of a GraphQL document. Its text is not copied out
// of the source: use Text to obtain it.
type Token struct {
	Kind TokenKind
	Span Span

	// Ignored is true for tokens that carry no meaning in the grammar:
	// whitespace, line terminators, commas, comments, and byte order marks.
	Ignored bool
}

// Text returns the token's source text.
func (tok Token) Text(src *Source) string {
	return src.Slice(tok.Span)
}

// describe formats the token for an error message.
func (tok Token) describe(src *Source) string {
	if tok.Kind == EOF {
		return "EOF"
	}
	return fmt.Sprintf("%q", tok.Text(src))
}

// A Lexer splits a GraphQL document into tokens on demand.
// https://graphql.github.io/graphql-spec/June2018/#sec-Source-Text
type Lexer struct {
	src *Source
	pos Pos
	err error

	peeked  bool
	peekTok Token
	peekErr error
}

// NewLexer returns a lexer positioned at the beginning of src.
func NewLexer(src *Source) *Lexer {
	return &Lexer{src: src}
}

// Reset moves the lexer back to the beginning of the source.
func (l *Lexer) Reset() {
	*l = Lexer{src: l.src}
}

// Next returns the next token, including ignored tokens. At the end of the
// input, Next returns a token of kind EOF. Once Next returns an error, all
// subsequent calls return the same error.
func (l *Lexer) Next() (Token, error) {
	if l.peeked {
		l.peeked = false
		return l.peekTok, l.peekErr
	}
	if l.err != nil {
		return Token{}, l.err
	}
	tok, err := l.scan()
	if err != nil {
		l.err = err
	}
	return tok, err
}

// Peek returns the token that the next call to Next will return without
// advancing the lexer.
func (l *Lexer) Peek() (Token, error) {
	if !l.peeked {
		l.peekTok, l.peekErr = l.Next()
		l.peeked = true
	}
	return l.peekTok, l.peekErr
}

// Tokenize splits the entire source into tokens. The EOF token is not included.
func Tokenize(src *Source) ([]Token, error) {
	l := NewLexer(src)
	var tokens []Token
	for {
		tok, err := l.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == EOF {
			return tokens, nil
		}
		tokens = append(tokens, tok)
	}
}

func (l *Lexer) scan() (Token, error) {
	input := l.src.text
	if int(l.pos) >= len(input) {
		return Token{Kind: EOF, Span: Span{l.pos, l.pos}}, nil
	}
	rest := input[l.pos:]
	c := rest[0]
	if kind := punctuators[c]; kind != EOF {
		return l.emit(kind, 1, false), nil
	}
	switch {
	case c == '.':
		if strings.HasPrefix(rest, "...") {
			return l.emit(Spread, 3, false), nil
		}
		return Token{}, l.errorf(l.pos, "unexpected character '.'")
	case c == ' ' || c == '\t':
		n := 1
		for n < len(rest) && (rest[n] == ' ' || rest[n] == '\t') {
			n++
		}
		return l.emit(Whitespace, n, true), nil
	case c == '\n':
		return l.emit(LineTerminator, 1, true), nil
	case c == '\r':
		if strings.HasPrefix(rest, "\r\n") {
			return l.emit(LineTerminator, 2, true), nil
		}
		return l.emit(LineTerminator, 1, true), nil
	case c == ',':
		return l.emit(Comma, 1, true), nil
	case c == '#':
		n := strings.IndexAny(rest, "\r\n")
		if n == -1 {
			// To end of input.
			n = len(rest)
		}
		return l.emit(Comment, n, true), nil
	case strings.HasPrefix(rest, bom):
		return l.emit(ByteOrderMark, len(bom), true), nil
	case isNameStart(c):
		n := 1
		for n < len(rest) && (isNameStart(rest[n]) || isDigit(rest[n])) {
			n++
		}
		return l.emit(Name, n, false), nil
	case c == '-' || isDigit(c):
		return l.number()
	case c == '"':
		if strings.HasPrefix(rest, `"""`) {
			return l.blockString()
		}
		return l.simpleString()
	default:
		r, _ := utf8.DecodeRuneInString(rest)
		return Token{}, l.errorf(l.pos, "unrecognized character %q", r)
	}
}

func (l *Lexer) emit(kind TokenKind, n int, ignored bool) Token {
	tok := Token{
		Kind:    kind,
		Span:    Span{Start: l.pos, End: l.pos + Pos(n)},
		Ignored: ignored,
	}
	l.pos += Pos(n)
	return tok
}

// simpleString scans a quoted string.
// https://graphql.github.io/graphql-spec/June2018/#sec-String-Value
func (l *Lexer) simpleString() (Token, error) {
	rest := l.src.text[l.pos:]
	for n := 1; n < len(rest); n++ {
		switch c := rest[n]; {
		case c == '"':
			return l.emit(StringValue, n+1, false), nil
		case c == '\n' || c == '\r':
			return Token{}, l.errorf(l.pos+Pos(n), "unterminated string")
		case c < 0x20 && c != '\t':
			return Token{}, l.errorf(l.pos+Pos(n), "invalid character %q in string", rune(c))
		case c == '\\':
			escapeLen, err := l.escapeLength(l.pos+Pos(n), rest[n:])
			if err != nil {
				return Token{}, err
			}
			n += escapeLen - 1
		}
	}
	return Token{}, l.errorf(Pos(l.src.Len()), "unterminated string")
}

// escapeLength returns the number of bytes in the escape sequence at the
// beginning of s, which must start with a backslash.
func (l *Lexer) escapeLength(pos Pos, s string) (int, error) {
	if len(s) < 2 {
		return 0, l.errorf(pos, "unterminated string")
	}
	switch s[1] {
	case '"', '\\', '/', 'b', 'f', 'n', 'r', 't':
		return 2, nil
	case 'u':
		if len(s) < 6 {
			return 0, l.errorf(pos, "invalid unicode escape sequence")
		}
		for i := 2; i < 6; i++ {
			if !isHexDigit(s[i]) {
				return 0, l.errorf(pos, "invalid unicode escape sequence %q", s[:6])
			}
		}
		return 6, nil
	default:
		return 0, l.errorf(pos, "invalid escape sequence %q", s[:2])
	}
}

// blockString scans a triple-quoted string.
// https://graphql.github.io/graphql-spec/June2018/#sec-String-Value
func (l *Lexer) blockString() (Token, error) {
	const marker = `"""`
	rest := l.src.text[l.pos:]
	for i := len(marker); ; {
		j := strings.Index(rest[i:], marker)
		if j == -1 {
			return Token{}, l.errorf(Pos(l.src.Len()), "unterminated block string")
		}
		if rest[i+j-1] != '\\' {
			return l.emit(BlockStringValue, i+j+len(marker), false), nil
		}
		// Move past escaped triple quote.
		i += j + len(marker)
	}
}

// number scans either an integer or a floating-point literal (both start with
// an integer).
// https://graphql.github.io/graphql-spec/June2018/#sec-Int-Value
// https://graphql.github.io/graphql-spec/June2018/#sec-Float-Value
func (l *Lexer) number() (Token, error) {
	rest := l.src.text[l.pos:]
	n := 0

	// IntegerPart
	if rest[0] == '-' {
		n++
	}
	if n >= len(rest) || !isDigit(rest[n]) {
		return Token{}, l.errorf(l.pos+Pos(n), "invalid number: expected digit after '-'")
	}
	if rest[n] == '0' {
		n++
		if n < len(rest) && isDigit(rest[n]) {
			return Token{}, l.errorf(l.pos+Pos(n), "invalid number: unexpected digit after 0")
		}
	} else {
		for n < len(rest) && isDigit(rest[n]) {
			n++
		}
	}
	kind := IntValue

	// FractionalPart
	if n < len(rest) && rest[n] == '.' {
		n++
		if n >= len(rest) || !isDigit(rest[n]) {
			return Token{}, l.errorf(l.pos+Pos(n), "invalid number: expected digit after '.'")
		}
		for n < len(rest) && isDigit(rest[n]) {
			n++
		}
		kind = FloatValue
	}

	// ExponentPart
	if n < len(rest) && (rest[n] == 'e' || rest[n] == 'E') {
		n++
		if n < len(rest) && (rest[n] == '+' || rest[n] == '-') {
			n++
		}
		if n >= len(rest) || !isDigit(rest[n]) {
			return Token{}, l.errorf(l.pos+Pos(n), "invalid number: expected digit in exponent")
		}
		for n < len(rest) && isDigit(rest[n]) {
			n++
		}
		kind = FloatValue
	}

	if n < len(rest) && (rest[n] == '.' || isNameStart(rest[n])) {
		return Token{}, l.errorf(l.pos+Pos(n), "invalid number: unexpected character %q", rest[n])
	}
	return l.emit(kind, n, false), nil
}

func (l *Lexer) errorf(pos Pos, format string, args ...interface{}) error {
	return &SyntaxError{
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
		Position: l.src.Position(pos),
	}
}

// TokenKind is the type of a Token.
type TokenKind int

// Token kinds.
const (
	EOF TokenKind = iota

	// Punctuators
	Bang     // '!'
	Dollar   // '$'
	LParen   // '('
	RParen   // ')'
	Spread   // '...'
	Colon    // ':'
	Equals   // '='
	At       // '@'
	LBracket // '['
	RBracket // ']'
	LBrace   // '{'
	RBrace   // '}'
	Pipe     // '|'
	Amp      // '&'

	Name
	IntValue
	FloatValue
	StringValue
	BlockStringValue

	// Ignored tokens
	Whitespace
	LineTerminator
	Comma
	Comment
	ByteOrderMark
)

var punctuators = [256]TokenKind{
	'!': Bang,
	'$': Dollar,
	'(': LParen,
	')': RParen,
	':': Colon,
	'=': Equals,
	'@': At,
	'[': LBracket,
	']': RBracket,
	'{': LBrace,
	'}': RBrace,
	'|': Pipe,
	'&': Amp,
}

var punctuatorStrings = map[TokenKind]string{
	Bang:     "!",
	Dollar:   "$",
	LParen:   "(",
	RParen:   ")",
	Spread:   "...",
	Colon:    ":",
	Equals:   "=",
	At:       "@",
	LBracket: "[",
	RBracket: "]",
	LBrace:   "{",
	RBrace:   "}",
	Pipe:     "|",
	Amp:      "&",
}

func (kind TokenKind) String() string {
	switch kind {
	case EOF:
		return "EOF"
	case Bang:
		return "Bang"
	case Dollar:
		return "Dollar"
	case LParen:
		return "LParen"
	case RParen:
		return "RParen"
	case Spread:
		return "Spread"
	case Colon:
		return "Colon"
	case Equals:
		return "Equals"
	case At:
		return "At"
	case LBracket:
		return "LBracket"
	case RBracket:
		return "RBracket"
	case LBrace:
		return "LBrace"
	case RBrace:
		return "RBrace"
	case Pipe:
		return "Pipe"
	case Amp:
		return "Amp"
	case Name:
		return "Name"
	case IntValue:
		return "IntValue"
	case FloatValue:
		return "FloatValue"
	case StringValue:
		return "StringValue"
	case BlockStringValue:
		return "BlockStringValue"
	case Whitespace:
		return "Whitespace"
	case LineTerminator:
		return "LineTerminator"
	case Comma:
		return "Comma"
	case Comment:
		return "Comment"
	case ByteOrderMark:
		return "ByteOrderMark"
	default:
		return fmt.Sprintf("TokenKind(%d)", int(kind))
	}
}

// isNameStart reports whether c could occur at any position in a name.
// https://graphql.github.io/graphql-spec/June2018/#Name
func isNameStart(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || c == '_'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
