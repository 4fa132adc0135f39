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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opencensus.io/trace"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/internal/gqlang"
	"zombiezen.com/go/gqlplan/plancache"
	"zombiezen.com/go/gqlplan/rules"
	"zombiezen.com/go/gqlplan/rules/docrules"
	"zombiezen.com/go/gqlplan/schema"
)

// Compiler turns GraphQL document text into validated documents for a single
// schema. It is safe to call Compile from multiple goroutines.
type Compiler struct {
	schema       *schema.Schema
	logger       *slog.Logger
	parseOptions gqlang.ParseOptions
	processor    *rules.Processor
	cache        *plancache.Cache[*ValidatedDocument]
	// settingsID identifies the limits and rules the compiler validates with.
	settingsID string
}

// ParseOptions bound the resources parsing a document may consume. Zero
// fields use the defaults: a maximum nesting depth of 50 and a maximum size
// of 16 KiB.
type ParseOptions struct {
	MaxDepth int
	MaxSize  int
}

// CompilerOption customizes a Compiler.
type CompilerOption func(*compilerOptions)

type compilerOptions struct {
	logger       *slog.Logger
	parseOptions ParseOptions
	maxDepth     int
	pkg          *rules.Package
	cache        *plancache.Cache[*ValidatedDocument]
}

// WithLogger sets the logger for compile events.
func WithLogger(logger *slog.Logger) CompilerOption {
	return func(o *compilerOptions) { o.logger = logger }
}

// WithParseOptions sets the parser's limits.
func WithParseOptions(opts ParseOptions) CompilerOption {
	return func(o *compilerOptions) { o.parseOptions = opts }
}

// WithMaxProcessingDepth sets how deeply the rule processor may descend into a
// document before giving up. Zero means rules.DefaultMaxDepth.
func WithMaxProcessingDepth(depth int) CompilerOption {
	return func(o *compilerOptions) { o.maxDepth = depth }
}

// WithRules replaces the validation rules. The default is docrules.Default().
func WithRules(pkg *rules.Package) CompilerOption {
	return func(o *compilerOptions) { o.pkg = pkg }
}

// WithCache makes the compiler store its results in the given cache, keyed by
// CacheKey. The cache may be shared between compilers, even ones with
// different schemas, limits, or rules.
func WithCache(cache *plancache.Cache[*ValidatedDocument]) CompilerOption {
	return func(o *compilerOptions) { o.cache = cache }
}

// NewCompiler returns a compiler that validates documents against s.
func NewCompiler(s *schema.Schema, opts ...CompilerOption) (*Compiler, error) {
	if s == nil {
		return nil, xerrors.New("new compiler: schema is required")
	}
	o := new(compilerOptions)
	for _, opt := range opts {
		opt(o)
	}
	if o.maxDepth < 0 {
		return nil, xerrors.Errorf("new compiler: negative processing depth %d", o.maxDepth)
	}
	if o.pkg == nil {
		o.pkg = docrules.Default()
	}
	c := &Compiler{
		schema: s,
		logger: o.logger,
		parseOptions: gqlang.ParseOptions{
			MaxDepth: o.parseOptions.MaxDepth,
			MaxSize:  o.parseOptions.MaxSize,
		},
		processor: rules.NewProcessor(o.pkg, rules.Config{MaxDepth: o.maxDepth}),
		cache:     o.cache,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	parseDepth, parseSize := o.parseOptions.MaxDepth, o.parseOptions.MaxSize
	if parseDepth <= 0 {
		parseDepth = gqlang.DefaultMaxDepth
	}
	if parseSize <= 0 {
		parseSize = gqlang.DefaultMaxSize
	}
	// Packages are immutable, so the pointer identifies the rules.
	settings := sha256.Sum256([]byte(fmt.Sprintf("%d,%d,%d,%p", parseDepth, parseSize, c.processor.MaxDepth(), o.pkg)))
	c.settingsID = hex.EncodeToString(settings[:8])
	return c, nil
}

// Schema returns the schema passed to NewCompiler.
func (c *Compiler) Schema() *schema.Schema {
	return c.schema
}

// CacheKey returns the key under which the compiled form of source is cached:
// the SHA-256 of the text, the schema's identity, and a digest of the
// compiler's limits and rules.
func (c *Compiler) CacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:]) + "/" + c.schema.ID() + "/" + c.settingsID
}

// Compile lexes, parses, builds and validates a document. Validation failures
// are reported as diagnostics on the returned document, not as errors.
//
// If the text cannot be parsed, Compile returns a *SyntaxError. If the document
// nests too deeply for the rule processor, the error wraps
// rules.ErrDepthExceeded. Compile checks ctx between phases and returns
// ctx.Err() wrapped if it is done.
func (c *Compiler) Compile(ctx context.Context, source string) (*ValidatedDocument, error) {
	if c.cache == nil {
		return c.compile(ctx, source)
	}
	vd, err := c.cache.Get(ctx, c.CacheKey(source), func(ctx context.Context) (*ValidatedDocument, error) {
		return c.compile(ctx, source)
	})
	if err != nil {
		return nil, err
	}
	if vd.schema != c.schema {
		return nil, xerrors.Errorf("compile: %w", ErrSchemaMismatch)
	}
	return vd, nil
}

func (c *Compiler) compile(ctx context.Context, source string) (_ *ValidatedDocument, err error) {
	ctx, span := trace.StartSpan(ctx, "gqlplan.Compile")
	defer span.End()
	start := time.Now()
	defer func() {
		if err != nil {
			c.logger.DebugContext(ctx, "compile failed", "duration", time.Since(start), "error", err)
			if span.IsRecordingEvents() {
				span.SetStatus(traceStatus(err))
			}
		}
	}()

	src := gqlang.NewSource(source)
	if err := c.parseOptions.CheckSize(src); err != nil {
		return nil, newSyntaxError(err)
	}
	tokens, err := c.lex(ctx, src)
	if err != nil {
		return nil, newSyntaxError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Errorf("compile: %w", err)
	}
	root, err := c.parse(ctx, src, tokens)
	if err != nil {
		return nil, newSyntaxError(err)
	}
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Errorf("compile: %w", err)
	}
	doc := c.build(ctx, root, src)
	if err := ctx.Err(); err != nil {
		return nil, xerrors.Errorf("compile: %w", err)
	}
	diags, valid, err := c.validate(ctx, doc)
	if err != nil {
		return nil, xerrors.Errorf("compile: %w", err)
	}
	vd := &ValidatedDocument{
		id:     uuid.NewString(),
		schema: c.schema,
		doc:    doc,
		diags:  diags,
		valid:  valid,
	}
	span.AddAttributes(
		trace.StringAttribute("gqlplan.plan_id", vd.id),
		trace.BoolAttribute("gqlplan.valid", valid),
		trace.Int64Attribute("gqlplan.diagnostics", int64(len(diags))),
	)
	c.logger.DebugContext(ctx, "compile finished",
		"duration", time.Since(start),
		"plan_id", vd.id,
		"valid", valid,
		"diagnostics", len(diags))
	return vd, nil
}

func (c *Compiler) lex(ctx context.Context, src *gqlang.Source) ([]gqlang.Token, error) {
	_, span := trace.StartSpan(ctx, "gqlplan.Lex")
	defer span.End()
	tokens, err := gqlang.Tokenize(src)
	span.AddAttributes(trace.Int64Attribute("gqlplan.tokens", int64(len(tokens))))
	return tokens, err
}

func (c *Compiler) parse(ctx context.Context, src *gqlang.Source, tokens []gqlang.Token) (*gqlang.Node, error) {
	_, span := trace.StartSpan(ctx, "gqlplan.Parse")
	defer span.End()
	return gqlang.ParseTokens(src, tokens, &c.parseOptions)
}

func (c *Compiler) build(ctx context.Context, root *gqlang.Node, src *gqlang.Source) *document.Document {
	_, span := trace.StartSpan(ctx, "gqlplan.Build")
	defer span.End()
	doc := document.Build(root, src, c.schema)
	span.AddAttributes(trace.Int64Attribute("gqlplan.parts", int64(doc.Len())))
	return doc
}

func (c *Compiler) validate(ctx context.Context, doc *document.Document) ([]diagnostic.Diagnostic, bool, error) {
	_, span := trace.StartSpan(ctx, "gqlplan.Validate")
	defer span.End()
	diags := new(diagnostic.List)
	valid, err := c.processor.Process(doc, diags)
	if err != nil {
		return nil, false, err
	}
	return diags.All(), valid, nil
}

func traceStatus(err error) trace.Status {
	var se *SyntaxError
	switch {
	case xerrors.As(err, &se):
		return trace.Status{Code: trace.StatusCodeInvalidArgument, Message: err.Error()}
	case xerrors.Is(err, context.Canceled):
		return trace.Status{Code: trace.StatusCodeCancelled, Message: err.Error()}
	case xerrors.Is(err, context.DeadlineExceeded):
		return trace.Status{Code: trace.StatusCodeDeadlineExceeded, Message: err.Error()}
	case xerrors.Is(err, rules.ErrDepthExceeded):
		return trace.Status{Code: trace.StatusCodeResourceExhausted, Message: err.Error()}
	default:
		return trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()}
	}
}
