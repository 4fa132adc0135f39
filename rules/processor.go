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

package rules

import (
	"fmt"

	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/internal/enginekey"
)

// DefaultMaxDepth is the processing depth used when Config.MaxDepth is zero.
const DefaultMaxDepth = 250

// ErrDepthExceeded is returned by Process when the document nests deeper than
// the processor's maximum depth.
var ErrDepthExceeded = xerrors.New("processing depth exceeded")

// Config holds a processor's settings.
type Config struct {
	// MaxDepth is the deepest part the processor will visit.
	// Zero means DefaultMaxDepth.
	MaxDepth int
}

// Processor runs a package's steps over documents. Its configuration is
// fixed at construction. A Processor is safe to use from multiple
// goroutines, as long as each call works on a different document.
type Processor struct {
	pkg      *Package
	maxDepth int
}

// NewProcessor returns a processor for pkg.
func NewProcessor(pkg *Package, cfg Config) *Processor {
	maxDepth := cfg.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Processor{pkg: pkg, maxDepth: maxDepth}
}

// MaxDepth returns the deepest part the processor will visit.
func (p *Processor) MaxDepth() int {
	return p.maxDepth
}

// Process checks doc, appending any problems found to diags. It reports
// whether every step passed. Process only returns an error if the document
// nests too deeply or a directive hook fails; in that case, the result of the
// validation is undefined and diags may be incomplete.
func (p *Processor) Process(doc *document.Document, diags *diagnostic.List) (bool, error) {
	r := &run{
		pkg:      p.pkg,
		maxDepth: p.maxDepth,
		doc:      doc,
		diags:    diags,
	}
	ok, err := r.visit(doc.Root(), 0)
	if err != nil {
		return false, xerrors.Errorf("process document: %w", err)
	}
	return ok, nil
}

// run is the state of one Process call.
type run struct {
	pkg      *Package
	maxDepth int
	doc      *document.Document
	diags    *diagnostic.List
	scratch  map[interface{}]interface{}
}

// visit processes the subtree rooted at id. It reports whether every step in
// the subtree passed.
func (r *run) visit(id document.PartID, depth int) (bool, error) {
	if depth > r.maxDepth {
		return false, &depthError{
			part:  r.doc.Describe(id),
			limit: r.maxDepth,
		}
	}
	ok := true
	childrenDone := false
	if r.pkg.childrenFirst {
		childOK, err := r.visitChildren(id, depth)
		if err != nil {
			return false, err
		}
		ok = childOK
		childrenDone = true
	}

	kind := r.doc.Kind(id)
	ctx := &Context{
		run:   r,
		part:  id,
		depth: depth,
	}
	allowChildren := true
	for i := range r.pkg.steps[kind] {
		step := &r.pkg.steps[kind][i]
		ctx.step = step
		if step.ShouldExecute != nil && !step.ShouldExecute(ctx) {
			continue
		}
		step.Execute(ctx)
		if step.AllowChildren != nil && !step.AllowChildren(ctx) {
			allowChildren = false
		}
	}
	ctx.step = nil
	if ctx.failed {
		ok = false
	} else if kind == document.DirectivePart {
		if err := r.runHook(id, depth); err != nil {
			return false, err
		}
	}

	if allowChildren && !childrenDone {
		childOK, err := r.visitChildren(id, depth)
		if err != nil {
			return false, err
		}
		ok = ok && childOK
	}
	return ok, nil
}

func (r *run) visitChildren(id document.PartID, depth int) (bool, error) {
	ok := true
	for i, n := 0, r.doc.NumChildren(id); i < n; i++ {
		childOK, err := r.visit(r.doc.Child(id, i), depth+1)
		if err != nil {
			return false, err
		}
		ok = ok && childOK
	}
	return ok, nil
}

func (r *run) runHook(id document.PartID, depth int) error {
	name := r.doc.Directive(id).Name()
	hook := r.pkg.hooks[name]
	if hook == nil {
		return nil
	}
	ctx := &Context{
		run:     r,
		part:    id,
		depth:   depth,
		mutator: document.NewMutator(enginekey.Key{}, r.doc),
	}
	if err := hook(ctx, id); err != nil {
		return xerrors.Errorf("directive @%s hook: %w", name, err)
	}
	return nil
}

type depthError struct {
	part  string
	limit int
}

func (e *depthError) Error() string {
	return fmt.Sprintf("%s: %v (limit %d)", e.part, ErrDepthExceeded, e.limit)
}

func (e *depthError) Unwrap() error {
	return ErrDepthExceeded
}

// Context is passed to steps and hooks. It is only valid for the duration of
// the call.
type Context struct {
	run     *run
	part    document.PartID
	depth   int
	step    *Step
	mutator *document.Mutator
	failed  bool
}

// Document returns the document being processed.
func (ctx *Context) Document() *document.Document {
	return ctx.run.doc
}

// Part returns the active part.
func (ctx *Context) Part() document.PartID {
	return ctx.part
}

// Kind returns the kind of the active part.
func (ctx *Context) Kind() document.Kind {
	return ctx.run.doc.Kind(ctx.part)
}

// Depth returns the depth of the active part. The document root has depth 0.
func (ctx *Context) Depth() int {
	return ctx.depth
}

// Mutator returns the document mutator. It is nil except inside a
// DirectiveHook.
func (ctx *Context) Mutator() *document.Mutator {
	return ctx.mutator
}

// Scratch returns the value stored under key for the current Process call,
// calling init to create it on first use. Steps use Scratch to share state
// across parts, like which conflicts have already been reported.
func (ctx *Context) Scratch(key interface{}, init func() interface{}) interface{} {
	r := ctx.run
	if v, ok := r.scratch[key]; ok {
		return v
	}
	if r.scratch == nil {
		r.scratch = make(map[interface{}]interface{})
	}
	v := init()
	r.scratch[key] = v
	return v
}

// Report records a diagnostic. A critical diagnostic fails the active part.
func (ctx *Context) Report(d diagnostic.Diagnostic) {
	if d.Severity >= diagnostic.Critical {
		ctx.failed = true
	}
	ctx.run.diags.Add(d)
}

// Fail records a critical diagnostic at part and fails the active part.
func (ctx *Context) Fail(part document.PartID, rule, reference, message string) {
	ctx.Report(diagnostic.Diagnostic{
		Severity:  diagnostic.Critical,
		Code:      diagnostic.InvalidDocument,
		Message:   message,
		Rule:      rule,
		Reference: reference,
		Location:  ctx.run.doc.Location(part),
	})
}

// Failf records a critical diagnostic at part for the running step.
func (ctx *Context) Failf(part document.PartID, format string, args ...interface{}) {
	var rule, ref string
	if ctx.step != nil {
		rule, ref = ctx.step.Rule, ctx.step.Reference
	}
	ctx.Fail(part, rule, ref, fmt.Sprintf(format, args...))
}

// Warnf records a warning at part for the running step. Warnings do not fail
// the part.
func (ctx *Context) Warnf(part document.PartID, format string, args ...interface{}) {
	var rule, ref string
	if ctx.step != nil {
		rule, ref = ctx.step.Rule, ctx.step.Reference
	}
	ctx.Report(diagnostic.Diagnostic{
		Severity:  diagnostic.Warning,
		Code:      diagnostic.InvalidDocument,
		Message:   fmt.Sprintf(format, args...),
		Rule:      rule,
		Reference: ref,
		Location:  ctx.run.doc.Location(part),
	})
}
