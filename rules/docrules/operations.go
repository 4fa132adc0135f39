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

func operationSteps() []rules.Step {
	return []rules.Step{
		{
			Rule:      "5.1.1",
			Reference: "Executable Definitions",
			Kinds:     kinds(document.TypeSystemDefinitionPart),
			Execute: func(ctx *rules.Context) {
				defn := ctx.Document().TypeSystemDefinition(ctx.Part())
				ctx.Failf(ctx.Part(), "%s is not an operation nor a fragment", defn.Describe())
			},
		},
		{
			Rule:      "5.2.1.1",
			Reference: "Operation Name Uniqueness",
			Kinds:     kinds(document.OperationPart),
			ShouldExecute: func(ctx *rules.Context) bool {
				return ctx.Document().Operation(ctx.Part()).Name() != ""
			},
			Execute: checkOperationNameUnique,
		},
		{
			Rule:      "5.2.2.1",
			Reference: "Lone Anonymous Operation",
			Kinds:     kinds(document.OperationPart),
			ShouldExecute: func(ctx *rules.Context) bool {
				return ctx.Document().Operation(ctx.Part()).Name() == ""
			},
			Execute: checkLoneAnonymousOperation,
		},
		{
			Rule:      "5.2.3.1",
			Reference: "Single Root Field",
			Kinds:     kinds(document.OperationPart),
			ShouldExecute: func(ctx *rules.Context) bool {
				op := ctx.Document().Operation(ctx.Part())
				return op.Kind() == schema.Subscription && op.RootType() != nil
			},
			Execute: checkSingleRootField,
		},
		{
			Rule:      "5.2.4",
			Reference: "Operation Type Supported",
			Kinds:     kinds(document.OperationPart),
			Execute: func(ctx *rules.Context) {
				op := ctx.Document().Operation(ctx.Part())
				if op.RootType() == nil {
					ctx.Failf(ctx.Part(), "%s unsupported", op.Kind())
				}
			},
			// Nothing under the operation can be bound without a root type.
			AllowChildren: func(ctx *rules.Context) bool {
				return ctx.Document().Operation(ctx.Part()).RootType() != nil
			},
		},
	}
}

// https://graphql.github.io/graphql-spec/June2018/#sec-Operation-Name-Uniqueness
func checkOperationNameUnique(ctx *rules.Context) {
	doc := ctx.Document()
	name := doc.Operation(ctx.Part()).Name()
	for _, id := range doc.Operations() {
		if id == ctx.Part() {
			return
		}
		if doc.Operation(id).Name() == name {
			ctx.Failf(ctx.Part(), "multiple operations with name %q", name)
			return
		}
	}
}

// checkLoneAnonymousOperation reports an anonymous operation if the document
// has named operations, or if it is not the first of several anonymous
// operations.
//
// https://graphql.github.io/graphql-spec/June2018/#sec-Lone-Anonymous-Operation
func checkLoneAnonymousOperation(ctx *rules.Context) {
	doc := ctx.Document()
	firstAnon := document.NoPart
	hasNamed := false
	for _, id := range doc.Operations() {
		if doc.Operation(id).Name() != "" {
			hasNamed = true
		} else if firstAnon == document.NoPart {
			firstAnon = id
		}
	}
	switch {
	case hasNamed:
		ctx.Failf(ctx.Part(), "anonymous operations mixed with named operations")
	case firstAnon != ctx.Part():
		ctx.Failf(ctx.Part(), "multiple anonymous operations")
	}
}

// https://graphql.github.io/graphql-spec/June2018/#sec-Single-root-field
func checkSingleRootField(ctx *rules.Context) {
	doc := ctx.Document()
	op := doc.Operation(ctx.Part())
	g := newGrouping(doc)
	g.addSet(op.SelectionSet(), nil)
	if len(g.groups) > 1 {
		if op.Name() == "" {
			ctx.Failf(ctx.Part(), "anonymous subscription must select only one top level field")
			return
		}
		ctx.Failf(ctx.Part(), "subscription %q must select only one top level field", op.Name())
	}
}
