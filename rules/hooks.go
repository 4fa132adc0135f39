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
	"zombiezen.com/go/gqlplan/document"
)

// SkipHook excludes the directive's target when it carries @skip(if: true).
// Conditions given by variables are left for execution.
//
// See https://graphql.github.io/graphql-spec/June2018/#sec--skip
func SkipHook(ctx *Context, directive document.PartID) error {
	if cond, ok := literalCondition(ctx.Document(), directive); ok && cond {
		return exclude(ctx, directive)
	}
	return nil
}

// IncludeHook excludes the directive's target when it carries
// @include(if: false). Conditions given by variables are left for execution.
//
// See https://graphql.github.io/graphql-spec/June2018/#sec--include
func IncludeHook(ctx *Context, directive document.PartID) error {
	if cond, ok := literalCondition(ctx.Document(), directive); ok && !cond {
		return exclude(ctx, directive)
	}
	return nil
}

// literalCondition returns the value of a directive's "if" argument if it is
// a Boolean literal.
func literalCondition(doc *document.Document, directive document.PartID) (cond bool, ok bool) {
	for _, id := range doc.Directive(directive).Arguments() {
		arg := doc.Argument(id)
		if arg.Name() != "if" || arg.Value() == document.NoPart {
			continue
		}
		v := doc.SuppliedValue(arg.Value())
		if v.Kind() != document.ScalarValue || v.ScalarKind() != document.BooleanScalar {
			return false, false
		}
		return v.Raw() == "true", true
	}
	return false, false
}

func exclude(ctx *Context, directive document.PartID) error {
	doc := ctx.Document()
	target := doc.Parent(directive)
	switch doc.Kind(target) {
	case document.FieldPart, document.FragmentSpreadPart, document.InlineFragmentPart:
		return ctx.Mutator().Exclude(target)
	default:
		return nil
	}
}
