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

func variableSteps() []rules.Step {
	return []rules.Step{
		{
			Rule:      "5.8.1",
			Reference: "Variable Uniqueness",
			Kinds:     kinds(document.VariablePart),
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				name := doc.Variable(ctx.Part()).Name()
				first := earlierSibling(doc, ctx.Part(), func(id document.PartID) bool {
					v := doc.Variable(id)
					return v != nil && v.Name() == name
				})
				if first != document.NoPart {
					ctx.Failf(ctx.Part(), "multiple variables with name %q", name)
				}
			},
		},
		{
			Rule:      "5.8.2",
			Reference: "Variables Are Input Types",
			Kinds:     kinds(document.VariablePart),
			Execute: func(ctx *rules.Context) {
				v := ctx.Document().Variable(ctx.Part())
				switch {
				case v.GraphType() == nil:
					ctx.Failf(ctx.Part(), "undefined type %v", v.Type())
				case !v.GraphType().IsInput():
					ctx.Failf(ctx.Part(), "%v is not an input type", v.Type())
				}
			},
			// Default values cannot be checked against an unusable type.
			AllowChildren: func(ctx *rules.Context) bool {
				return ctx.Document().Variable(ctx.Part()).GraphType().IsInput()
			},
		},
		{
			Rule:      "5.8.3",
			Reference: "All Variable Uses Defined",
			Kinds:     kinds(document.OperationPart),
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				op := doc.Operation(ctx.Part())
				for _, use := range op.VariableUses() {
					name := doc.SuppliedValue(use).Raw()
					if findVariable(doc, op, name) != document.NoPart {
						continue
					}
					if op.Name() == "" {
						ctx.Failf(use, "undefined variable $%s", name)
					} else {
						ctx.Failf(use, "undefined variable $%s in operation %s", name, op.Name())
					}
				}
			},
		},
		{
			Rule:      "5.8.4",
			Reference: "All Variables Used",
			Kinds:     kinds(document.OperationPart),
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				op := doc.Operation(ctx.Part())
				used := make(map[string]bool)
				for _, use := range op.VariableUses() {
					used[doc.SuppliedValue(use).Raw()] = true
				}
				for _, id := range op.Variables() {
					if name := doc.Variable(id).Name(); !used[name] {
						ctx.Failf(id, "unused variable $%s", name)
					}
				}
			},
		},
		{
			Rule:      "5.8.5",
			Reference: "All Variable Usages are Allowed",
			Kinds:     kinds(document.OperationPart),
			Execute:   checkVariableUsages,
		},
	}
}

// findVariable returns the first definition of the named variable in op or
// NoPart.
func findVariable(doc *document.Document, op *document.Operation, name string) document.PartID {
	for _, id := range op.Variables() {
		if doc.Variable(id).Name() == name {
			return id
		}
	}
	return document.NoPart
}

// checkVariableUsages reports variables used where their type is not
// allowed.
//
// https://graphql.github.io/graphql-spec/June2018/#sec-All-Variable-Usages-are-Allowed
func checkVariableUsages(ctx *rules.Context) {
	doc := ctx.Document()
	op := doc.Operation(ctx.Part())
	for _, use := range op.VariableUses() {
		value := doc.SuppliedValue(use)
		locationType := value.Expected()
		defID := findVariable(doc, op, value.Raw())
		if locationType == nil || defID == document.NoPart {
			continue
		}
		def := doc.Variable(defID)
		if !def.GraphType().IsInput() {
			continue
		}
		if locationType.IsNonNull() && !def.Type().IsNonNull() {
			hasDefault := def.DefaultValue() != document.NoPart &&
				doc.SuppliedValue(def.DefaultValue()).Kind() != document.NullValue
			if !hasDefault && !locationHasDefault(doc, use) {
				ctx.Failf(use, "nullable variable $%s not permitted for %v", def.Name(), locationType)
				continue
			}
			locationType = locationType.Nullable()
		}
		if !schema.AreTypesCompatible(locationType, def.Type()) {
			ctx.Failf(use, "variable $%s (type %v) not allowed as %v", def.Name(), def.Type(), value.Expected())
		}
	}
}

// locationHasDefault reports whether the argument or input field the value is
// given for declares a default.
func locationHasDefault(doc *document.Document, value document.PartID) bool {
	arg := doc.Argument(doc.Parent(value))
	return arg != nil && arg.Definition().HasDefault()
}
