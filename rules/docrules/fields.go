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
	"fmt"
	"strings"

	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/rules"
)

func fieldSteps() []rules.Step {
	return []rules.Step{
		{
			Rule:      "5.3.1",
			Reference: "Field Selections on Objects, Interfaces, and Unions Types",
			Kinds:     kinds(document.FieldPart),
			// Selections on leaf or unknown types are reported elsewhere.
			ShouldExecute: func(ctx *rules.Context) bool {
				return ctx.Document().Field(ctx.Part()).ParentType().IsComposite()
			},
			Execute: func(ctx *rules.Context) {
				f := ctx.Document().Field(ctx.Part())
				if f.Definition() == nil {
					ctx.Failf(ctx.Part(), "field %q not found on type %v", f.Name(), f.ParentType())
				}
			},
			AllowChildren: func(ctx *rules.Context) bool {
				return ctx.Document().Field(ctx.Part()).Definition() != nil
			},
		},
		{
			Rule:      "5.3.2",
			Reference: "Field Selection Merging",
			Kinds:     kinds(document.FieldSelectionSetPart),
			Execute:   checkFieldsInSetCanMerge,
		},
		{
			Rule:      "5.3.3",
			Reference: "Leaf Field Selections",
			Kinds:     kinds(document.FieldPart),
			ShouldExecute: func(ctx *rules.Context) bool {
				return ctx.Document().Field(ctx.Part()).Definition() != nil
			},
			Execute: checkLeafFieldSelections,
			AllowChildren: func(ctx *rules.Context) bool {
				f := ctx.Document().Field(ctx.Part())
				return f.Type() == nil || !f.Type().IsLeaf() || f.SelectionSet() == document.NoPart
			},
		},
	}
}

// https://graphql.github.io/graphql-spec/June2018/#sec-Leaf-Field-Selections
func checkLeafFieldSelections(ctx *rules.Context) {
	doc := ctx.Document()
	f := doc.Field(ctx.Part())
	switch typ := f.Type(); {
	case typ == nil:
	case typ.IsLeaf() && f.SelectionSet() != document.NoPart:
		ctx.Failf(f.SelectionSet(), "scalar field %q must not have selection set", f.Name())
	case !typ.IsLeaf() && f.SelectionSet() == document.NoPart:
		ctx.Failf(ctx.Part(), "object field %q missing selection set", f.Name())
	}
}

// mergerKey is the Scratch key for the merger shared by one validation run.
type mergerKey struct{}

// checkFieldsInSetCanMerge ensures that the fields with the same response key
// can be merged. A pair of fields reached from several selection sets is
// compared and reported once.
//
// See https://graphql.github.io/graphql-spec/June2018/#FieldsInSetCanMerge()
func checkFieldsInSetCanMerge(ctx *rules.Context) {
	m := ctx.Scratch(mergerKey{}, func() interface{} {
		return newMerger(ctx.Document())
	}).(*merger)
	g := m.newGrouping()
	g.addSet(ctx.Part(), nil)
	for _, group := range g.groups {
		m.checkGroup(group)
	}
	for _, c := range m.conflicts {
		ctx.Failf(c.a, "%s", c.message)
	}
	m.conflicts = m.conflicts[:0]
}

type fieldConflict struct {
	a, b    document.PartID
	message string
}

// merger compares fields for mergeability. Each pair of fields is compared
// at most once per validation run and fields with identical structure are
// grouped only once, so the work is polynomial in the size of the document
// no matter how often fragments are spread.
type merger struct {
	doc *document.Document
	// compared maps a pair of fields to whether they conflict directly.
	compared map[[2]document.PartID]bool
	// shapes maps a pair of fields to whether they have the same response
	// shape.
	shapes    map[[2]document.PartID]bool
	sigs      map[document.PartID]int
	sigIDs    map[string]int
	conflicts []fieldConflict
}

func newMerger(doc *document.Document) *merger {
	return &merger{
		doc:      doc,
		compared: make(map[[2]document.PartID]bool),
		shapes:   make(map[[2]document.PartID]bool),
		sigs:     make(map[document.PartID]int),
		sigIDs:   make(map[string]int),
	}
}

func (m *merger) newGrouping() *grouping {
	g := newGrouping(m.doc)
	g.signature = m.signature
	return g
}

// checkGroup compares the fields of a group pairwise. Once a field conflicts
// with another, it is not compared with the rest of the group.
func (m *merger) checkGroup(group []groupedField) {
	for i, fieldA := range group {
		for _, fieldB := range group[i+1:] {
			if m.checkPair(fieldA, fieldB) {
				break
			}
		}
	}
}

// checkPair compares two fields with the same response key, recording any
// conflicts, and reports whether the two fields conflict with each other.
func (m *merger) checkPair(fieldA, fieldB groupedField) bool {
	pair := [2]document.PartID{fieldA.id, fieldB.id}
	if conflicted, done := m.compared[pair]; done {
		return conflicted
	}
	m.compared[pair] = false
	conflict := func(format string) bool {
		m.conflicts = append(m.conflicts, fieldConflict{
			a:       fieldA.id,
			b:       fieldB.id,
			message: fmt.Sprintf(format, fieldA.field.ResponseKey()),
		})
		m.compared[pair] = true
		return true
	}
	if !m.sameResponseShape(fieldA, fieldB) {
		return conflict("incompatible fields for %s")
	}
	parentA, parentB := fieldA.field.ParentType(), fieldB.field.ParentType()
	if parentA != parentB && !parentA.IsAbstract() && !parentB.IsAbstract() {
		return false
	}
	if fieldA.field.Name() != fieldB.field.Name() {
		return conflict("different fields found for %s")
	}
	if !identicalArguments(m.doc, fieldA.field.Arguments(), fieldB.field.Arguments()) {
		return conflict("different arguments found for %s")
	}
	for _, group := range m.subgroups(fieldA, fieldB) {
		m.checkGroup(group)
	}
	return false
}

// subgroups groups the selections of two fields together.
func (m *merger) subgroups(fieldA, fieldB groupedField) [][]groupedField {
	g := m.newGrouping()
	g.addSet(fieldA.field.SelectionSet(), fieldA.via)
	g.addSet(fieldB.field.SelectionSet(), fieldB.via)
	return g.groups
}

// sameResponseShape reports whether two fields have the same structure.
// See https://graphql.github.io/graphql-spec/June2018/#SameResponseShape()
func (m *merger) sameResponseShape(fieldA, fieldB groupedField) bool {
	pair := [2]document.PartID{fieldA.id, fieldB.id}
	if same, done := m.shapes[pair]; done {
		return same
	}
	// A pair that is being compared further up is assumed to match.
	m.shapes[pair] = true
	same := m.compareShapes(fieldA, fieldB)
	m.shapes[pair] = same
	return same
}

func (m *merger) compareShapes(fieldA, fieldB groupedField) bool {
	typeA, typeB := fieldA.field.Definition().Type, fieldB.field.Definition().Type
	for {
		if typeA.IsNonNull() || typeB.IsNonNull() {
			if !typeA.IsNonNull() || !typeB.IsNonNull() {
				return false
			}
			typeA, typeB = typeA.OfType, typeB.OfType
		}
		listA, listB := typeA.IsList(), typeB.IsList()
		if !listA && !listB {
			break
		}
		if !listA || !listB {
			return false
		}
		typeA, typeB = typeA.OfType, typeB.OfType
	}
	namedA := fieldA.field.Type()
	namedB := fieldB.field.Type()
	if namedA.IsLeaf() || namedB.IsLeaf() {
		return namedA == namedB
	}
	if !namedA.IsComposite() || !namedB.IsComposite() {
		return false
	}
	for _, group := range m.subgroups(fieldA, fieldB) {
		subA := group[0]
		for _, subB := range group[1:] {
			if !m.sameResponseShape(subA, subB) {
				return false
			}
		}
	}
	return true
}

// signature returns a number that is equal for two fields if they have the
// same response key, name, arguments, enclosing type and selections.
// Fragment spreads are compared by name.
func (m *merger) signature(id document.PartID) int {
	if sig, ok := m.sigs[id]; ok {
		return sig
	}
	f := m.doc.Field(id)
	sb := new(strings.Builder)
	fmt.Fprintf(sb, "%s:%s@%v(", f.ResponseKey(), f.Name(), f.ParentType())
	for _, arg := range f.Arguments() {
		a := m.doc.Argument(arg)
		fmt.Fprintf(sb, "%s:%s,", a.Name(), valueText(m.doc, a.Value()))
	}
	sb.WriteString(")")
	m.writeSetSignature(sb, f.SelectionSet())
	sig, ok := m.sigIDs[sb.String()]
	if !ok {
		sig = len(m.sigIDs)
		m.sigIDs[sb.String()] = sig
	}
	m.sigs[id] = sig
	return sig
}

func (m *merger) writeSetSignature(sb *strings.Builder, set document.PartID) {
	if set == document.NoPart {
		return
	}
	sb.WriteString("{")
	for _, sel := range m.doc.Children(set) {
		switch m.doc.Kind(sel) {
		case document.FieldPart:
			fmt.Fprintf(sb, "#%d ", m.signature(sel))
		case document.FragmentSpreadPart:
			fmt.Fprintf(sb, "...%s ", m.doc.FragmentSpread(sel).Name())
		case document.InlineFragmentPart:
			inline := m.doc.InlineFragment(sel)
			fmt.Fprintf(sb, "...on %s", inline.TypeCondition())
			m.writeSetSignature(sb, inline.SelectionSet())
		}
	}
	sb.WriteString("}")
}

// identicalArguments reports whether two argument lists supply the same
// values for the same names.
func identicalArguments(doc *document.Document, a, b []document.PartID) bool {
	if len(a) != len(b) {
		return false
	}
	values := make(map[string]string, len(a))
	for _, id := range a {
		arg := doc.Argument(id)
		values[arg.Name()] = valueText(doc, arg.Value())
	}
	for _, id := range b {
		arg := doc.Argument(id)
		v, ok := values[arg.Name()]
		if !ok || v != valueText(doc, arg.Value()) {
			return false
		}
	}
	return true
}

func valueText(doc *document.Document, id document.PartID) string {
	if id == document.NoPart {
		return ""
	}
	return doc.SuppliedValue(id).String()
}

type groupedField struct {
	id    document.PartID
	field *document.Field
	// via is the chain of named fragments the field was reached through.
	// A fragment already on the chain is not entered again.
	via []document.PartID
}

// grouping groups fields by response key so they can be checked for
// mergability.
type grouping struct {
	doc    *document.Document
	groups [][]groupedField
	index  map[string]int
	// visited is the set of named fragments already expanded into the
	// grouping. Spreading a fragment again adds no new fields.
	visited map[document.PartID]bool
	// signature is optional. If set, a field is dropped when its group
	// already holds a field with the same signature.
	signature func(document.PartID) int
	seen      map[int]bool
}

func newGrouping(doc *document.Document) *grouping {
	return &grouping{
		doc:     doc,
		index:   make(map[string]int),
		visited: make(map[document.PartID]bool),
		seen:    make(map[int]bool),
	}
}

// addSet adds the fields of a selection set, including those of its
// fragments. Unbound fields and fragments are skipped: they are reported by
// other rules and only make merging harder.
func (g *grouping) addSet(set document.PartID, via []document.PartID) {
	if set == document.NoPart {
		return
	}
	doc := g.doc
	for _, sel := range doc.Children(set) {
		switch doc.Kind(sel) {
		case document.FieldPart:
			f := doc.Field(sel)
			if f.Definition() == nil {
				continue
			}
			g.add(groupedField{id: sel, field: f, via: via})
		case document.FragmentSpreadPart:
			frag := doc.FragmentSpread(sel).Fragment()
			if frag == document.NoPart || g.visited[frag] || containsPart(via, frag) {
				continue
			}
			nf := doc.NamedFragment(frag)
			if !nf.Target().IsComposite() {
				continue
			}
			g.visited[frag] = true
			chain := append(via[:len(via):len(via)], frag)
			g.addSet(nf.SelectionSet(), chain)
		case document.InlineFragmentPart:
			inline := doc.InlineFragment(sel)
			if !inline.Target().IsComposite() {
				continue
			}
			g.addSet(inline.SelectionSet(), via)
		}
	}
}

func (g *grouping) add(gf groupedField) {
	if g.signature != nil {
		// The signature includes the response key.
		sig := g.signature(gf.id)
		if g.seen[sig] {
			return
		}
		g.seen[sig] = true
	}
	k := gf.field.ResponseKey()
	if i, ok := g.index[k]; ok {
		g.groups[i] = append(g.groups[i], gf)
		return
	}
	g.index[k] = len(g.groups)
	g.groups = append(g.groups, []groupedField{gf})
}

func containsPart(list []document.PartID, id document.PartID) bool {
	for _, elem := range list {
		if elem == id {
			return true
		}
	}
	return false
}
