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
	"strconv"

	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/rules"
	"zombiezen.com/go/gqlplan/schema"
)

func valueSteps() []rules.Step {
	return []rules.Step{
		{
			Rule:      "5.6.1",
			Reference: "Values of Correct Type",
			Kinds:     kinds(document.SuppliedValuePart),
			ShouldExecute: func(ctx *rules.Context) bool {
				return ctx.Document().SuppliedValue(ctx.Part()).Expected() != nil
			},
			Execute: checkValueType,
			// Fields and items of a mismatched value have nothing to be
			// checked against.
			AllowChildren: func(ctx *rules.Context) bool {
				v := ctx.Document().SuppliedValue(ctx.Part())
				return v.Expected() == nil || valueMatchesShape(ctx.Document(), v)
			},
		},
		{
			Rule:          "5.6.2",
			Reference:     "Input Object Field Names",
			Kinds:         kinds(document.ArgumentPart),
			ShouldExecute: inInputObject,
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				arg := doc.Argument(ctx.Part())
				if arg.Definition() == nil {
					ctx.Failf(ctx.Part(), "unknown input field %s for %v", arg.Name(), enclosingInputType(doc, ctx.Part()))
				}
			},
		},
		{
			Rule:      "5.6.3",
			Reference: "Input Object Field Uniqueness",
			Kinds:     kinds(document.ArgumentPart),
			ShouldExecute: func(ctx *rules.Context) bool {
				return parentKind(ctx) == document.SuppliedValuePart
			},
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				name := doc.Argument(ctx.Part()).Name()
				obj := doc.SuppliedValue(doc.Parent(ctx.Part()))
				if obj.Field(name) != ctx.Part() {
					ctx.Failf(ctx.Part(), "multiple input fields named %s", name)
				}
			},
		},
		{
			Rule:      "5.6.4",
			Reference: "Input Object Required Fields",
			Kinds:     kinds(document.SuppliedValuePart),
			ShouldExecute: func(ctx *rules.Context) bool {
				doc := ctx.Document()
				v := doc.SuppliedValue(ctx.Part())
				return v.Kind() == document.ComplexValue && inputObjectType(doc, v) != nil
			},
			Execute: func(ctx *rules.Context) {
				doc := ctx.Document()
				v := doc.SuppliedValue(ctx.Part())
				typ := inputObjectType(doc, v)
				for _, def := range typ.InputFields {
					if def.Type.IsNonNull() && !def.HasDefault() && v.Field(def.Name) == document.NoPart {
						ctx.Failf(ctx.Part(), "missing required input field %s.%s", typ.Name, def.Name)
					}
				}
			},
		},
	}
}

// checkValueType reports a literal that cannot be coerced to its expected
// type. Variables are checked by 5.8.5.
//
// https://graphql.github.io/graphql-spec/June2018/#sec-Values-of-Correct-Type
func checkValueType(ctx *rules.Context) {
	doc := ctx.Document()
	v := doc.SuppliedValue(ctx.Part())
	expected := v.Expected()
	switch v.Kind() {
	case document.VariableValue:
		return
	case document.NullValue:
		if expected.IsNonNull() {
			ctx.Failf(ctx.Part(), "null not permitted for %v", expected)
		}
		return
	}
	if !valueMatchesShape(doc, v) {
		ctx.Failf(ctx.Part(), "cannot coerce %v to %v", v, expected)
		return
	}
	if v.Kind() != document.ScalarValue {
		return
	}
	typ := doc.Schema().Type(expected.NamedType())
	if msg := checkScalar(typ, v); msg != "" {
		ctx.Failf(ctx.Part(), "%s", msg)
	}
}

// valueMatchesShape reports whether a value's form is acceptable for its
// expected type, without looking at scalar contents. A single value may stand
// in for a list.
func valueMatchesShape(doc *document.Document, v *document.SuppliedValue) bool {
	expected := v.Expected().Nullable()
	typ := doc.Schema().Type(expected.NamedType())
	switch v.Kind() {
	case document.ListValue:
		return expected.IsList()
	case document.ComplexValue:
		return typ == nil || typ.Kind == schema.InputObjectKind
	case document.ScalarValue:
		return typ == nil || typ.IsLeaf()
	default:
		return true
	}
}

// checkScalar returns a message describing why a scalar literal is not valid
// for typ, or the empty string.
func checkScalar(typ *schema.Type, v *document.SuppliedValue) string {
	if typ == nil {
		return ""
	}
	generic := "cannot coerce " + v.String() + " to " + typ.Name
	kind := v.ScalarKind()
	if typ.Kind == schema.EnumKind {
		if kind != document.EnumScalar {
			return generic
		}
		if !typ.HasEnumValue(v.Raw()) {
			return v.Raw() + " is not a valid value for " + typ.Name
		}
		return ""
	}
	if kind == document.EnumScalar {
		return generic
	}
	switch typ.Name {
	case "Int":
		if kind != document.IntScalar {
			return generic
		}
		if _, err := strconv.ParseInt(v.Raw(), 10, 32); err != nil {
			return strconv.Quote(v.Raw()) + " is not in the range of a 32-bit integer"
		}
	case "Float":
		if kind != document.IntScalar && kind != document.FloatScalar {
			return generic
		}
		if _, err := strconv.ParseFloat(v.Raw(), 64); err != nil {
			return strconv.Quote(v.Raw()) + " is not representable as a float"
		}
	case "String":
		if kind != document.StringScalar {
			return generic
		}
	case "Boolean":
		if kind != document.BooleanScalar {
			return generic
		}
	case "ID":
		if kind != document.StringScalar && kind != document.IntScalar {
			return generic
		}
	}
	return ""
}

// inInputObject reports whether the active argument is a field of a complex
// value whose input object type is known.
func inInputObject(ctx *rules.Context) bool {
	return parentKind(ctx) == document.SuppliedValuePart &&
		enclosingInputType(ctx.Document(), ctx.Part()) != nil
}

func enclosingInputType(doc *document.Document, arg document.PartID) *schema.Type {
	return inputObjectType(doc, doc.SuppliedValue(doc.Parent(arg)))
}

// inputObjectType returns the input object type a complex value is expected
// to be, or nil.
func inputObjectType(doc *document.Document, v *document.SuppliedValue) *schema.Type {
	if v.Expected() == nil {
		return nil
	}
	typ := doc.Schema().Type(v.Expected().NamedType())
	if typ == nil || typ.Kind != schema.InputObjectKind {
		return nil
	}
	return typ
}
