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

func fragmentSteps() []rules.Step {
	return []rules.Step{
		{
			Rule:      "5.5.1.1",
			Reference: "Fragment Name Uniqueness",
			Kinds:     kinds(document.NamedFragmentPart),
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				name := doc.NamedFragment(ctx.Part()).Name()
				if doc.Fragment(name) != ctx.Part() {
					ctx.Failf(ctx.Part(), "multiple fragments with name %q", name)
				}
			},
		},
		{
			Rule:          "5.5.1.2",
			Reference:     "Fragment Spread Type Existence",
			Kinds:         kinds(document.NamedFragmentPart, document.InlineFragmentPart),
			ShouldExecute: hasTypeCondition,
			Execute: func(ctx *rules.Context) {
				if cond, target := fragmentTarget(ctx); target == nil {
					ctx.Failf(ctx.Part(), "unknown type %s", cond)
				}
			},
			AllowChildren: func(ctx *rules.Context) bool {
				_, target := fragmentTarget(ctx)
				return target != nil
			},
		},
		{
			Rule:          "5.5.1.3",
			Reference:     "Fragments On Composite Types",
			Kinds:         kinds(document.NamedFragmentPart, document.InlineFragmentPart),
			ShouldExecute: hasTypeCondition,
			Execute: func(ctx *rules.Context) {
				if cond, target := fragmentTarget(ctx); target != nil && !target.IsComposite() {
					ctx.Failf(ctx.Part(), "type %s must be a composite", cond)
				}
			},
			AllowChildren: func(ctx *rules.Context) bool {
				_, target := fragmentTarget(ctx)
				return target == nil || target.IsComposite()
			},
		},
		{
			Rule:      "5.5.1.4",
			Reference: "Fragments Must Be Used",
			Kinds:     kinds(document.NamedFragmentPart),
			// Duplicates are reported by 5.5.1.1.
			ShouldExecute: isFirstFragmentWithName,
			Execute: func(ctx *rules.Context) {
				frag := ctx.Document().NamedFragment(ctx.Part())
				if !frag.Referenced() {
					ctx.Failf(ctx.Part(), "unused fragment %s", frag.Name())
				}
			},
		},
		{
			Rule:      "5.5.2.1",
			Reference: "Fragment spread target defined",
			Kinds:     kinds(document.FragmentSpreadPart),
			Execute: func(ctx *rules.Context) {
				spread := ctx.Document().FragmentSpread(ctx.Part())
				if spread.Fragment() == document.NoPart {
					ctx.Failf(ctx.Part(), "undefined fragment %s", spread.Name())
				}
			},
		},
		{
			Rule:          "5.5.2.2",
			Reference:     "Fragment spreads must not form cycles",
			Kinds:         kinds(document.NamedFragmentPart),
			ShouldExecute: isFirstFragmentWithName,
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				if spread := findCycle(doc, ctx.Part()); spread != document.NoPart {
					ctx.Failf(spread, "fragment %s is self-referential", doc.NamedFragment(ctx.Part()).Name())
				}
			},
		},
		{
			Rule:      "5.5.2.3",
			Reference: "Fragment spread is possible",
			Kinds:     kinds(document.FragmentSpreadPart, document.InlineFragmentPart),
			Execute:   checkSpreadPossible,
		},
	}
}

func hasTypeCondition(ctx *rules.Context) bool {
	cond, _ := fragmentTarget(ctx)
	return cond != ""
}

// fragmentTarget returns the type condition and resolved target of the
// active named or inline fragment.
func fragmentTarget(ctx *rules.Context) (string, *schema.Type) {
	doc := ctx.Document()
	if frag := doc.NamedFragment(ctx.Part()); frag != nil {
		return frag.TypeCondition(), frag.Target()
	}
	frag := doc.InlineFragment(ctx.Part())
	return frag.TypeCondition(), frag.Target()
}

func isFirstFragmentWithName(ctx *rules.Context) bool {
	doc := ctx.Document()
	return doc.Fragment(doc.NamedFragment(ctx.Part()).Name()) == ctx.Part()
}

// findCycle returns the first spread directly inside fragment start that
// leads back to start, or NoPart if the fragment does not reach itself.
//
// https://graphql.github.io/graphql-spec/June2018/#sec-Fragment-spreads-must-not-form-cycles
func findCycle(doc *document.Document, start document.PartID) document.PartID {
	result := document.NoPart
	doc.Walk(doc.NamedFragment(start).SelectionSet(), func(id document.PartID) bool {
		if result != document.NoPart {
			return false
		}
		spread := doc.FragmentSpread(id)
		if spread == nil {
			return true
		}
		if next := spread.Fragment(); next != document.NoPart && reaches(doc, next, start) {
			result = id
		}
		return false
	})
	return result
}

// reaches reports whether fragment to is fragment from or is spread by it,
// directly or indirectly.
func reaches(doc *document.Document, from, to document.PartID) bool {
	visited := make(map[document.PartID]bool)
	stack := []document.PartID{from}
	for len(stack) > 0 {
		frag := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if frag == to {
			return true
		}
		if visited[frag] {
			continue
		}
		visited[frag] = true
		doc.Walk(doc.NamedFragment(frag).SelectionSet(), func(id document.PartID) bool {
			if spread := doc.FragmentSpread(id); spread != nil {
				if next := spread.Fragment(); next != document.NoPart {
					stack = append(stack, next)
				}
				return false
			}
			return true
		})
	}
	return false
}

// checkSpreadPossible reports a fragment whose target type can never overlap
// with the type it is spread into.
//
// https://graphql.github.io/graphql-spec/June2018/#sec-Fragment-spread-is-possible
func checkSpreadPossible(ctx *rules.Context) {
	doc := ctx.Document()
	var parentType, target *schema.Type
	var name string
	if spread := doc.FragmentSpread(ctx.Part()); spread != nil {
		if spread.Fragment() == document.NoPart {
			return
		}
		name = spread.Name()
		parentType = spread.ParentType()
		target = doc.NamedFragment(spread.Fragment()).Target()
	} else {
		inline := doc.InlineFragment(ctx.Part())
		if inline.TypeCondition() == "" {
			return
		}
		name = "on " + inline.TypeCondition()
		set := doc.Parent(ctx.Part())
		parentType = doc.FieldSelectionSet(set).ParentType()
		target = inline.Target()
	}
	if !parentType.IsComposite() || !target.IsComposite() {
		return
	}
	if !schema.Overlaps(parentType, target) {
		ctx.Failf(ctx.Part(), "fragment %s cannot be spread here: objects of type %v can never be a %v", name, parentType, target)
	}
}
