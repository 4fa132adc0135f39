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

// Package rules provides a generic engine that checks a document against an
// ordered set of rules.
//
// A Package groups rule steps by the kind of document part they apply to.
// A Processor walks a document, running the steps registered for each part
// and collecting diagnostics. Packages are immutable once built and may be
// shared by any number of concurrent processors.
package rules

import (
	"zombiezen.com/go/gqlplan/document"
)

// Step is one atomic check.
type Step struct {
	// Rule is a stable identifier for the rule the step checks, like
	// "5.2.1.1". It is copied into diagnostics.
	Rule string
	// Reference is a human-readable anchor for the rule, like
	// "Operation Name Uniqueness".
	Reference string
	// Kinds lists the part kinds the step runs on.
	Kinds []document.Kind

	// ShouldExecute reports whether the step applies to the active part.
	// A nil ShouldExecute always applies.
	ShouldExecute func(ctx *Context) bool
	// Execute runs the check. It reports problems through ctx.
	Execute func(ctx *Context)
	// AllowChildren reports whether the active part's children should be
	// processed after the step has run. A nil AllowChildren allows them.
	AllowChildren func(ctx *Context) bool
}

// DirectiveHook runs after a directive part has passed every step. The
// context's Mutator is available only inside a hook.
type DirectiveHook func(ctx *Context, directive document.PartID) error

// Package is an immutable table of rule steps keyed by part kind.
type Package struct {
	steps         [document.NumKinds][]Step
	hooks         map[string]DirectiveHook
	childrenFirst bool
}

// PackageOption configures a Package.
type PackageOption func(*Package)

// WithChildrenFirst makes processors finish a part's children before running
// the part's own steps.
func WithChildrenFirst() PackageOption {
	return func(pkg *Package) { pkg.childrenFirst = true }
}

// WithDirectiveHook registers a hook for the directive with the given name
// (without the "@"). Registering a name twice replaces the earlier hook.
func WithDirectiveHook(name string, hook DirectiveHook) PackageOption {
	return func(pkg *Package) { pkg.hooks[name] = hook }
}

// NewPackage builds a package from steps. Steps run in the order given.
// NewPackage panics if a step has no Execute function or names an invalid
// kind.
func NewPackage(steps []Step, opts ...PackageOption) *Package {
	pkg := &Package{hooks: make(map[string]DirectiveHook)}
	for _, step := range steps {
		if step.Execute == nil {
			panic("rules: step " + step.Rule + " has no Execute function")
		}
		step.Kinds = append([]document.Kind(nil), step.Kinds...)
		for _, k := range step.Kinds {
			if int(k) >= document.NumKinds {
				panic("rules: step " + step.Rule + " names invalid kind " + k.String())
			}
			pkg.steps[k] = append(pkg.steps[k], step)
		}
	}
	for _, opt := range opts {
		opt(pkg)
	}
	return pkg
}

// Steps returns the steps registered for kind, in order.
func (pkg *Package) Steps(kind document.Kind) []Step {
	return append([]Step(nil), pkg.steps[kind]...)
}

// Len returns the number of distinct step registrations across all kinds.
func (pkg *Package) Len() int {
	n := 0
	for _, list := range pkg.steps {
		n += len(list)
	}
	return n
}

// ChildrenFirst reports whether the package processes children before their
// parent.
func (pkg *Package) ChildrenFirst() bool {
	return pkg.childrenFirst
}

// Hook returns the hook registered for the named directive or nil.
func (pkg *Package) Hook(name string) DirectiveHook {
	return pkg.hooks[name]
}
