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
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opencensus.io/trace"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/plancache"
	"zombiezen.com/go/gqlplan/rules"
	"zombiezen.com/go/gqlplan/rules/docrules"
	"zombiezen.com/go/gqlplan/schema"
)

const testSDL = `
type Query {
	a: Int
	b: Int
	c: Query
}

type Mutation {
	m: Int
}
`

func newTestCompiler(tb testing.TB, opts ...CompilerOption) *Compiler {
	tb.Helper()
	s, err := schema.LoadSDL("test.graphql", testSDL)
	if err != nil {
		tb.Fatal(err)
	}
	c, err := NewCompiler(s, opts...)
	if err != nil {
		tb.Fatal(err)
	}
	return c
}

func summarize(diags []diagnostic.Diagnostic) []string {
	var list []string
	for _, d := range diags {
		list = append(list, fmt.Sprintf("%s %v: %s", d.Rule, d.Location, d.Message))
	}
	return list
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name      string
		source    string
		valid     bool
		diags     []string
		operation string
		typ       OperationType
	}{
		{
			name:   "SingleQuery",
			source: `query { a b }`,
			valid:  true,
			typ:    QueryOperation,
		},
		{
			name:   "TwoAnonymousQueries",
			source: `query { a } query { b }`,
			diags:  []string{"5.2.2.1 1:13: multiple anonymous operations"},
		},
		{
			name:      "NamedMutation",
			source:    `mutation M { m } query Q { a }`,
			valid:     true,
			operation: "M",
			typ:       MutationOperation,
		},
		{
			name:   "AmbiguousOperation",
			source: `mutation M { m } query Q { a }`,
			valid:  true,
		},
		{
			name:   "SkippedUnknownField",
			source: `{ a x @skip(if: true) }`,
			diags:  []string{`5.3.1 1:5: field "x" not found on type Query`},
			typ:    QueryOperation,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := newTestCompiler(t)
			vd, err := c.Compile(context.Background(), test.source)
			if err != nil {
				t.Fatal("Compile:", err)
			}
			if vd.Valid() != test.valid {
				t.Errorf("Valid() = %t; want %t", vd.Valid(), test.valid)
			}
			if diff := cmp.Diff(test.diags, summarize(vd.Diagnostics())); diff != "" {
				t.Errorf("diagnostics (-want +got):\n%s", diff)
			}
			if got := vd.TypeOf(test.operation); got != test.typ {
				t.Errorf("TypeOf(%q) = %v; want %v", test.operation, got, test.typ)
			}
			if got := vd.Source(); got != test.source {
				t.Errorf("Source() = %q; want %q", got, test.source)
			}
			if got, want := vd.SchemaID(), c.Schema().ID(); got != want {
				t.Errorf("SchemaID() = %q; want %q", got, want)
			}
			if vd.ID() == "" {
				t.Error("ID() is empty")
			}
		})
	}
}

func TestCompileEndToEnd(t *testing.T) {
	c := newTestCompiler(t)
	vd, err := c.Compile(context.Background(), `query { a b }`)
	if err != nil {
		t.Fatal(err)
	}
	doc := vd.Document()
	op := vd.FindOperation("")
	if op == document.NoPart {
		t.Fatal("FindOperation(\"\") = NoPart")
	}
	var fields []string
	for _, sel := range doc.Children(doc.Operation(op).SelectionSet()) {
		f := doc.Field(sel)
		if f == nil {
			t.Fatalf("%s is not a field", doc.Describe(sel))
		}
		if f.Definition() == nil {
			t.Errorf("field %s is unbound", f.Name())
		}
		if f.ParentType() != c.Schema().RootType(schema.Query) {
			t.Errorf("field %s parent type = %v; want Query", f.Name(), f.ParentType())
		}
		fields = append(fields, f.Name())
	}
	if diff := cmp.Diff([]string{"a", "b"}, fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestCompileSyntaxError(t *testing.T) {
	tests := []struct {
		name   string
		source string
		opts   ParseOptions
		line   int
		column int
	}{
		{
			name:   "Lexical",
			source: `{ a ^ }`,
			line:   1,
			column: 5,
		},
		{
			name:   "UnterminatedSelectionSet",
			source: "{\n  a",
			line:   2,
		},
		{
			name:   "TooLarge",
			source: `{ a b c }`,
			opts:   ParseOptions{MaxSize: 4},
			line:   1,
			column: 1,
		},
		{
			name:   "TooDeep",
			source: `{ c { c { c { a } } } }`,
			opts:   ParseOptions{MaxDepth: 3},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := newTestCompiler(t, WithParseOptions(test.opts))
			vd, err := c.Compile(context.Background(), test.source)
			if err == nil {
				t.Fatalf("Compile(...) = %v, <nil>; want error", vd)
			}
			var se *SyntaxError
			if !xerrors.As(err, &se) {
				t.Fatalf("Compile(...) error = %v; want *SyntaxError", err)
			}
			if vd != nil {
				t.Error("Compile returned a document along with a syntax error")
			}
			if test.line != 0 && se.Line != test.line {
				t.Errorf("Line = %d; want %d", se.Line, test.line)
			}
			if test.column != 0 && se.Column != test.column {
				t.Errorf("Column = %d; want %d", se.Column, test.column)
			}
			if se.Message == "" {
				t.Error("Message is empty")
			}
		})
	}
}

func TestCompileDepthExceeded(t *testing.T) {
	const nesting = 20
	source := strings.Repeat("{ c ", nesting) + "{ a }" + strings.Repeat(" }", nesting)
	c := newTestCompiler(t,
		WithParseOptions(ParseOptions{MaxDepth: 4 * nesting}),
		WithMaxProcessingDepth(10))
	_, err := c.Compile(context.Background(), source)
	if !xerrors.Is(err, rules.ErrDepthExceeded) {
		t.Errorf("Compile(...) error = %v; want %v", err, rules.ErrDepthExceeded)
	}
	if re := ToResponseError(err); re.Extensions == nil || re.Extensions.Code != string(diagnostic.DepthExceeded) {
		t.Errorf("ToResponseError(err).Extensions = %+v; want code %s", re.Extensions, diagnostic.DepthExceeded)
	}

	// The same document within the default limit validates.
	c = newTestCompiler(t, WithParseOptions(ParseOptions{MaxDepth: 4 * nesting}))
	vd, err := c.Compile(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if !vd.Valid() {
		t.Errorf("diagnostics: %v", vd.Diagnostics())
	}
}

func TestCompileCanceled(t *testing.T) {
	c := newTestCompiler(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Compile(ctx, `{ a }`)
	if !xerrors.Is(err, context.Canceled) {
		t.Errorf("Compile(...) error = %v; want %v", err, context.Canceled)
	}
}

func TestCompileDeterministic(t *testing.T) {
	const source = `query Q($v: Int) { a c { x } ...F } query Q { b } fragment F on Query { a: b } fragment G on Query { a }`
	c := newTestCompiler(t)
	first, err := c.Compile(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if first.Valid() {
		t.Fatal("document is valid")
	}
	for i := 0; i < 5; i++ {
		vd, err := c.Compile(context.Background(), source)
		if err != nil {
			t.Fatal(err)
		}
		if diff := cmp.Diff(first.Diagnostics(), vd.Diagnostics()); diff != "" {
			t.Fatalf("run %d diagnostics differ (-first +got):\n%s", i+2, diff)
		}
		if vd.ID() == first.ID() {
			t.Errorf("run %d reused plan id %s without a cache", i+2, vd.ID())
		}
	}
}

func TestCompileCache(t *testing.T) {
	cache, err := plancache.New[*ValidatedDocument](plancache.Config{Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	c := newTestCompiler(t, WithCache(cache))

	var wg sync.WaitGroup
	results := make([]*ValidatedDocument, 8)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Compile(context.Background(), `{ a }`)
		}(i)
	}
	wg.Wait()
	for i := range results {
		if errs[i] != nil {
			t.Fatalf("Compile #%d: %v", i, errs[i])
		}
		if results[i] != results[0] {
			t.Errorf("Compile #%d returned a different document", i)
		}
	}

	other, err := c.Compile(context.Background(), `{ b }`)
	if err != nil {
		t.Fatal(err)
	}
	if other == results[0] {
		t.Error("different sources share a document")
	}
	if _, err := c.Compile(context.Background(), `{`); err == nil {
		t.Error("Compile(`{`) did not return an error")
	}
	if got := cache.Len(); got != 2 {
		t.Errorf("cache.Len() = %d; want 2", got)
	}

	// A compiler for a different schema shares the cache without collisions.
	c2 := newTestCompiler(t, WithCache(cache))
	vd, err := c2.Compile(context.Background(), `{ a }`)
	if err != nil {
		t.Fatal(err)
	}
	if vd == results[0] {
		t.Error("compilers for different schemas share a document")
	}
	if err := vd.CheckSchema(c.Schema()); !xerrors.Is(err, ErrSchemaMismatch) {
		t.Errorf("CheckSchema(other schema) = %v; want %v", err, ErrSchemaMismatch)
	}
	if err := vd.CheckSchema(c2.Schema()); err != nil {
		t.Errorf("CheckSchema(own schema) = %v", err)
	}
}

func TestCacheKey(t *testing.T) {
	s, err := schema.LoadSDL("test.graphql", testSDL)
	if err != nil {
		t.Fatal(err)
	}
	newCompiler := func(opts ...CompilerOption) *Compiler {
		t.Helper()
		c, err := NewCompiler(s, opts...)
		if err != nil {
			t.Fatal(err)
		}
		return c
	}
	base := newCompiler()
	tests := []struct {
		name string
		c    *Compiler
		same bool
	}{
		{
			name: "ExplicitDefaults",
			c: newCompiler(
				WithParseOptions(ParseOptions{MaxDepth: 50, MaxSize: 16 << 10}),
				WithMaxProcessingDepth(rules.DefaultMaxDepth),
				WithRules(docrules.Default()),
			),
			same: true,
		},
		{name: "ParseDepth", c: newCompiler(WithParseOptions(ParseOptions{MaxDepth: 3}))},
		{name: "ParseSize", c: newCompiler(WithParseOptions(ParseOptions{MaxSize: 8}))},
		{name: "ProcessingDepth", c: newCompiler(WithMaxProcessingDepth(2))},
		{name: "Rules", c: newCompiler(WithRules(rules.NewPackage(nil)))},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			want, got := base.CacheKey(`{ a }`), test.c.CacheKey(`{ a }`)
			if (got == want) != test.same {
				t.Errorf("CacheKey = %q, default compiler's = %q; same = %t, want %t", got, want, got == want, test.same)
			}
		})
	}
}

func TestCacheSharedAcrossSettings(t *testing.T) {
	cache, err := plancache.New[*ValidatedDocument](plancache.Config{Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	strict := newTestCompiler(t, WithCache(cache))
	lax, err := NewCompiler(strict.Schema(), WithCache(cache), WithRules(rules.NewPackage(nil)))
	if err != nil {
		t.Fatal(err)
	}
	const source = `{ a } { b }`
	vd, err := strict.Compile(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if vd.Valid() {
		t.Error("strict compiler accepted multiple anonymous operations")
	}
	vd, err = lax.Compile(context.Background(), source)
	if err != nil {
		t.Fatal(err)
	}
	if !vd.Valid() {
		t.Errorf("compiler without rules got a cached invalid document: %v", vd.Diagnostics())
	}
}

func TestNewCompilerErrors(t *testing.T) {
	if _, err := NewCompiler(nil); err == nil {
		t.Error("NewCompiler(nil) did not return an error")
	}
	s, err := schema.LoadSDL("test.graphql", testSDL)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := NewCompiler(s, WithMaxProcessingDepth(-1)); err == nil {
		t.Error("NewCompiler(s, WithMaxProcessingDepth(-1)) did not return an error")
	}
}

type spanRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *spanRecorder) ExportSpan(s *trace.SpanData) {
	r.mu.Lock()
	r.names = append(r.names, s.Name)
	r.mu.Unlock()
}

func TestCompileSpans(t *testing.T) {
	rec := new(spanRecorder)
	trace.RegisterExporter(rec)
	defer trace.UnregisterExporter(rec)
	c := newTestCompiler(t)
	ctx, span := trace.StartSpan(context.Background(), "test", trace.WithSampler(trace.AlwaysSample()))
	_, err := c.Compile(ctx, `{ a }`)
	span.End()
	if err != nil {
		t.Fatal(err)
	}
	rec.mu.Lock()
	defer rec.mu.Unlock()
	want := []string{"gqlplan.Lex", "gqlplan.Parse", "gqlplan.Build", "gqlplan.Validate", "gqlplan.Compile", "test"}
	if diff := cmp.Diff(want, rec.names); diff != "" {
		t.Errorf("exported spans (-want +got):\n%s", diff)
	}
}

func BenchmarkCompile(b *testing.B) {
	const source = `query Q($id: Int) { a b c { a ...F c { b } } } fragment F on Query { a b }`
	c := newTestCompiler(b)
	ctx := context.Background()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.Compile(ctx, source); err != nil {
			b.Fatal(err)
		}
	}
}
