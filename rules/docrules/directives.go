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
)

func directiveSteps() []rules.Step {
	return []rules.Step{
		{
			Rule:      "5.7.1",
			Reference: "Directives Are Defined",
			Kinds:     kinds(document.DirectivePart),
			Execute: func(ctx *rules.Context) {
				d := ctx.Document().Directive(ctx.Part())
				if d.Definition() == nil {
					ctx.Failf(ctx.Part(), "unknown directive @%s", d.Name())
				}
			},
			AllowChildren: func(ctx *rules.Context) bool {
				return ctx.Document().Directive(ctx.Part()).Definition() != nil
			},
		},
		{
			Rule:      "5.7.2",
			Reference: "Directives Are In Valid Locations",
			Kinds:     kinds(document.DirectivePart),
			ShouldExecute: func(ctx *rules.Context) bool {
				return ctx.Document().Directive(ctx.Part()).Definition() != nil
			},
			Execute: func(ctx *rules.Context) {
				d := ctx.Document().Directive(ctx.Part())
				if !d.Definition().AllowsLocation(d.Location()) {
					ctx.Failf(ctx.Part(), "directive @%s not allowed at %s location", d.Name(), d.Location())
				}
			},
		},
		{
			Rule:      "5.7.3",
			Reference: "Directives Are Unique Per Location",
			Kinds:     kinds(document.DirectivePart),
			ShouldExecute: func(ctx *rules.Context) bool {
				def := ctx.Document().Directive(ctx.Part()).Definition()
				return def != nil && !def.IsRepeatable
			},
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				name := doc.Directive(ctx.Part()).Name()
				first := earlierSibling(doc, ctx.Part(), func(id document.PartID) bool {
					d := doc.Directive(id)
					return d != nil && d.Name() == name
				})
				if first != document.NoPart {
					ctx.Failf(ctx.Part(), "directive @%s used more than once at %s location", name, doc.Directive(ctx.Part()).Location())
				}
			},
		},
	}
}
