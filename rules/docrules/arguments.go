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

package docrules

import (
	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/rules"
	"zombiezen.com/go/gqlplan/schema"
)

func argumentSteps() []rules.Step {
	return []rules.Step{
		{
			Rule:          "5.4.1",
			Reference:     "Argument Names",
			Kinds:         kinds(document.ArgumentPart),
			ShouldExecute: ownerIsBound,
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				arg := doc.Argument(ctx.Part())
				if arg.Definition() != nil {
					return
				}
				owner := doc.Parent(ctx.Part())
				if d := doc.Directive(owner); d != nil {
					ctx.Failf(ctx.Part(), "unknown argument %s on directive @%s", arg.Name(), d.Name())
					return
				}
				f := doc.Field(owner)
				ctx.Failf(ctx.Part(), "unknown argument %s on field %v.%s", arg.Name(), f.ParentType(), f.Name())
			},
		},
		{
			Rule:      "5.4.2",
			Reference: "Argument Uniqueness",
			Kinds:     kinds(document.ArgumentPart),
			ShouldExecute: func(ctx *rules.Context) bool {
				k := parentKind(ctx)
				return k == document.FieldPart || k == document.DirectivePart
			},
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				name := doc.Argument(ctx.Part()).Name()
				first := earlierSibling(doc, ctx.Part(), func(id document.PartID) bool {
					arg := doc.Argument(id)
					return arg != nil && arg.Name() == name
				})
				if first != document.NoPart {
					ctx.Failf(ctx.Part(), "multiple values for argument %s", name)
				}
			},
		},
		{
			Rule:      "5.4.2.1",
			Reference: "Required Arguments",
			Kinds:     kinds(document.FieldPart, document.DirectivePart),
			Execute:   checkRequiredArguments,
		},
	}
}

// ownerIsBound reports whether the active argument belongs to a field or
// directive that resolved against the schema.
func ownerIsBound(ctx *rules.Context) bool {
	doc := ctx.Document()
	owner := doc.Parent(ctx.Part())
	switch doc.Kind(owner) {
	case document.FieldPart:
		return doc.Field(owner).Definition() != nil
	case document.DirectivePart:
		return doc.Directive(owner).Definition() != nil
	default:
		return false
	}
}

// checkRequiredArguments reports non-null arguments without a default that
// are not supplied. Supplied nulls are reported by the value rules.
//
// https://graphql.github.io/graphql-spec/June2018/#sec-Required-Arguments
func checkRequiredArguments(ctx *rules.Context) {
	doc := ctx.Document()
	var defs []*schema.InputValue
	var args []document.PartID
	if f := doc.Field(ctx.Part()); f != nil {
		if f.Definition() == nil {
			return
		}
		defs, args = f.Definition().Arguments, f.Arguments()
	} else {
		d := doc.Directive(ctx.Part())
		if d.Definition() == nil {
			return
		}
		defs, args = d.Definition().Arguments, d.Arguments()
	}
	for _, def := range defs {
		if !def.Type.IsNonNull() || def.HasDefault() {
			continue
		}
		if !hasArgument(doc, args, def.Name) {
			ctx.Failf(ctx.Part(), "missing required argument %s", def.Name)
		}
	}
}

func hasArgument(doc *document.Document, args []document.PartID, name string) bool {
	for _, id := range args {
		if doc.Argument(id).Name() == name {
			return true
		}
	}
	return false
}
