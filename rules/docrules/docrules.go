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

// Package docrules provides the rule package that validates executable
// GraphQL documents.
//
// Rules are identified by their section numbers in the June 2018 edition of
// the GraphQL specification. The numbers are opaque identifiers: they are
// kept stable so that clients matching on them keep working.
//
// See https://graphql.github.io/graphql-spec/June2018/#sec-Validation
package docrules

import (
	"sync"

	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/rules"
)

var (
	defaultOnce sync.Once
	defaultPkg  *rules.Package
)

// Default returns the package of every document rule with the @skip and
// @include hooks installed. It is built on first use and shared.
func Default() *rules.Package {
	defaultOnce.Do(func() {
		defaultPkg = New()
	})
	return defaultPkg
}

// New builds a fresh package of every document rule with the @skip and
// @include hooks installed, followed by opts.
func New(opts ...rules.PackageOption) *rules.Package {
	opts = append([]rules.PackageOption{
		rules.WithDirectiveHook("skip", rules.SkipHook),
		rules.WithDirectiveHook("include", rules.IncludeHook),
	}, opts...)
	return rules.NewPackage(Steps(), opts...)
}

// Steps returns every document rule step in rule order. Callers may use it to
// build a customized package.
func Steps() []rules.Step {
	var steps []rules.Step
	steps = append(steps, operationSteps()...)
	steps = append(steps, fieldSteps()...)
	steps = append(steps, argumentSteps()...)
	steps = append(steps, fragmentSteps()...)
	steps = append(steps, valueSteps()...)
	steps = append(steps, directiveSteps()...)
	steps = append(steps, variableSteps()...)
	return steps
}

func kinds(k ...document.Kind) []document.Kind {
	return k
}

// parentKind returns the kind of the active part's parent.
func parentKind(ctx *rules.Context) document.Kind {
	doc := ctx.Document()
	parent := doc.Parent(ctx.Part())
	if parent == document.NoPart {
		return document.DocumentPart
	}
	return doc.Kind(parent)
}

// earlierSibling returns the first sibling of id before it for which match
// returns true, or NoPart.
func earlierSibling(doc *document.Document, id document.PartID, match func(document.PartID) bool) document.PartID {
	parent := doc.Parent(id)
	for i, n := 0, doc.NumChildren(parent); i < n; i++ {
		sib := doc.Child(parent, i)
		if sib == id {
			break
		}
		if match(sib) {
			return sib
		}
	}
	return document.NoPart
}
