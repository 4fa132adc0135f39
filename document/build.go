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

package document

import (
	"strings"

	"zombiezen.com/go/gqlplan/internal/gqlang"
	"zombiezen.com/go/gqlplan/schema"
)

// Build binds a syntax tree to a schema. root must be a DocumentNode
// returned by gqlang.Parse.
//
// Build does not report errors: names that do not resolve against the schema
// or the document are left unbound for validation to report.
func Build(root *gqlang.Node, src *gqlang.Source, s *schema.Schema) *Document {
	doc := &Document{
		src:             src,
		schema:          s,
		fragmentsByName: make(map[string]PartID),
	}
	doc.parts = append(doc.parts, part{
		kind:   DocumentPart,
		parent: NoPart,
		pos:    root.Pos(),
	})
	b := &builder{doc: doc}
	for _, n := range root.Children() {
		switch n.Type() {
		case gqlang.OperationNode:
			b.operation(doc.Root(), n)
		case gqlang.NamedFragmentNode:
			b.namedFragment(doc.Root(), n)
		case gqlang.TypeSystemDefinitionNode:
			b.add(doc.Root(), n, part{
				kind: TypeSystemDefinitionPart,
				typeDefn: &TypeSystemDefinition{
					keyword: n.Primary(),
					name:    n.Secondary(),
				},
			})
		}
	}

	// Spreads are resolved after every fragment has been declared so that
	// spreads may refer to fragments defined later in the document.
	for _, id := range b.spreads {
		spread := doc.parts[id].spread
		spread.fragment = doc.Fragment(spread.name)
	}
	for _, id := range doc.operations {
		b.followOperation(id)
	}
	return doc
}

type builder struct {
	doc     *Document
	spreads []PartID
}

// add appends p to the arena as the last child of parent.
func (b *builder) add(parent PartID, n *gqlang.Node, p part) PartID {
	id := PartID(len(b.doc.parts))
	p.parent = parent
	p.pos = n.Pos()
	b.doc.parts = append(b.doc.parts, p)
	b.doc.parts[parent].children = append(b.doc.parts[parent].children, id)
	return id
}

func (b *builder) operation(parent PartID, n *gqlang.Node) {
	op := &Operation{
		kind:         schema.OperationType(n.Primary()),
		name:         n.Secondary(),
		selectionSet: NoPart,
	}
	op.rootType = b.doc.schema.RootType(op.kind)
	id := b.add(parent, n, part{kind: OperationPart, operation: op})
	b.doc.operations = append(b.doc.operations, id)
	for _, c := range n.Children() {
		switch c.Type() {
		case gqlang.VariableCollectionNode:
			for _, v := range c.Children() {
				op.variables = append(op.variables, b.variable(id, v))
			}
		case gqlang.DirectiveNode:
			op.directives = append(op.directives, b.directive(id, c, operationLocation(op.kind)))
		case gqlang.FieldCollectionNode:
			op.selectionSet = b.selectionSet(id, c, op.rootType)
		}
	}
}

func operationLocation(kind schema.OperationType) schema.DirectiveLocation {
	switch kind {
	case schema.Mutation:
		return schema.LocationMutation
	case schema.Subscription:
		return schema.LocationSubscription
	default:
		return schema.LocationQuery
	}
}

func (b *builder) variable(parent PartID, n *gqlang.Node) PartID {
	v := &Variable{
		name:         n.Primary(),
		defaultValue: NoPart,
	}
	// The parser only produces well-formed type references.
	v.typ, _ = schema.ParseTypeRef(n.Secondary())
	v.graphType = b.doc.schema.Type(v.typ.NamedType())
	id := b.add(parent, n, part{kind: VariablePart, variable: v})
	for _, c := range n.Children() {
		switch {
		case c.Type() == gqlang.DirectiveNode:
			v.directives = append(v.directives, b.directive(id, c, schema.LocationVariableDefinition))
		case c.Type().IsValue():
			v.defaultValue = b.value(id, c, v.typ)
		}
	}
	return id
}

func (b *builder) namedFragment(parent PartID, n *gqlang.Node) {
	frag := &NamedFragment{
		name:          n.Primary(),
		typeCondition: n.Secondary(),
		target:        b.doc.schema.Type(n.Secondary()),
		selectionSet:  NoPart,
	}
	id := b.add(parent, n, part{kind: NamedFragmentPart, fragment: frag})
	b.doc.fragments = append(b.doc.fragments, id)
	if _, exists := b.doc.fragmentsByName[frag.name]; !exists {
		b.doc.fragmentsByName[frag.name] = id
	}
	for _, c := range n.Children() {
		switch c.Type() {
		case gqlang.DirectiveNode:
			frag.directives = append(frag.directives, b.directive(id, c, schema.LocationFragmentDefinition))
		case gqlang.FieldCollectionNode:
			frag.selectionSet = b.selectionSet(id, c, frag.target)
		}
	}
}

func (b *builder) selectionSet(parent PartID, n *gqlang.Node, parentType *schema.Type) PartID {
	id := b.add(parent, n, part{
		kind:      FieldSelectionSetPart,
		selection: &FieldSelectionSet{parentType: parentType},
	})
	for _, c := range n.Children() {
		switch c.Type() {
		case gqlang.FieldNode:
			b.field(id, c, parentType)
		case gqlang.FragmentSpreadNode:
			b.fragmentSpread(id, c, parentType)
		case gqlang.InlineFragmentNode:
			b.inlineFragment(id, c, parentType)
		}
	}
	return id
}

func (b *builder) field(parent PartID, n *gqlang.Node, parentType *schema.Type) {
	f := &Field{
		name:         n.Primary(),
		alias:        n.Secondary(),
		parentType:   parentType,
		selectionSet: NoPart,
		included:     true,
	}
	f.def = b.doc.schema.FieldOf(parentType, f.name)
	if f.def != nil {
		f.typ = b.doc.schema.Type(f.def.Type.NamedType())
	}
	id := b.add(parent, n, part{kind: FieldPart, field: f})
	for _, c := range n.Children() {
		switch c.Type() {
		case gqlang.InputItemCollectionNode:
			for _, item := range c.Children() {
				f.arguments = append(f.arguments, b.argument(id, item, f.def.Argument(item.Primary())))
			}
		case gqlang.DirectiveNode:
			f.directives = append(f.directives, b.directive(id, c, schema.LocationField))
		case gqlang.FieldCollectionNode:
			f.selectionSet = b.selectionSet(id, c, f.typ)
		}
	}
}

func (b *builder) fragmentSpread(parent PartID, n *gqlang.Node, parentType *schema.Type) {
	spread := &FragmentSpread{
		name:       n.Primary(),
		fragment:   NoPart,
		parentType: parentType,
		included:   true,
	}
	id := b.add(parent, n, part{kind: FragmentSpreadPart, spread: spread})
	b.spreads = append(b.spreads, id)
	for _, c := range n.Children() {
		if c.Type() == gqlang.DirectiveNode {
			spread.directives = append(spread.directives, b.directive(id, c, schema.LocationFragmentSpread))
		}
	}
}

func (b *builder) inlineFragment(parent PartID, n *gqlang.Node, parentType *schema.Type) {
	frag := &InlineFragment{
		typeCondition: n.Secondary(),
		target:        parentType,
		selectionSet:  NoPart,
		included:      true,
	}
	if frag.typeCondition != "" {
		frag.target = b.doc.schema.Type(frag.typeCondition)
	}
	id := b.add(parent, n, part{kind: InlineFragmentPart, inline: frag})
	for _, c := range n.Children() {
		switch c.Type() {
		case gqlang.DirectiveNode:
			frag.directives = append(frag.directives, b.directive(id, c, schema.LocationInlineFragment))
		case gqlang.FieldCollectionNode:
			frag.selectionSet = b.selectionSet(id, c, frag.target)
		}
	}
}

func (b *builder) directive(parent PartID, n *gqlang.Node, loc schema.DirectiveLocation) PartID {
	d := &Directive{
		name:     n.Primary(),
		def:      b.doc.schema.Directive(n.Primary()),
		location: loc,
	}
	id := b.add(parent, n, part{kind: DirectivePart, directive: d})
	if args := n.FirstChild(gqlang.InputItemCollectionNode); args != nil {
		for _, item := range args.Children() {
			d.arguments = append(d.arguments, b.argument(id, item, d.def.Argument(item.Primary())))
		}
	}
	return id
}

// argument adds an InputItemNode as an ArgumentPart. def may be nil.
func (b *builder) argument(parent PartID, n *gqlang.Node, def *schema.InputValue) PartID {
	arg := &Argument{
		name:  n.Primary(),
		def:   def,
		value: NoPart,
	}
	id := b.add(parent, n, part{kind: ArgumentPart, argument: arg})
	var expected *schema.TypeRef
	if def != nil {
		expected = def.Type
	}
	if n.Len() > 0 {
		arg.value = b.value(id, n.Child(0), expected)
	}
	return id
}

func (b *builder) value(parent PartID, n *gqlang.Node, expected *schema.TypeRef) PartID {
	v := &SuppliedValue{expected: expected}
	id := b.add(parent, n, part{kind: SuppliedValuePart, value: v})
	switch n.Type() {
	case gqlang.ScalarValueNode:
		v.kind = ScalarValue
		v.raw = n.Primary()
		v.text = v.raw
		switch n.ScalarKind() {
		case gqlang.BooleanScalar:
			v.scalar = BooleanScalar
		case gqlang.IntScalar:
			v.scalar = IntScalar
		case gqlang.FloatScalar:
			v.scalar = FloatScalar
		default:
			v.scalar = StringScalar
			v.str = n.StringValue()
		}
	case gqlang.EnumValueNode:
		v.kind = ScalarValue
		v.scalar = EnumScalar
		v.raw = n.Primary()
		v.text = v.raw
	case gqlang.NullValueNode:
		v.kind = NullValue
		v.text = "null"
	case gqlang.VariableValueNode:
		v.kind = VariableValue
		v.raw = n.Primary()
		v.text = "$" + v.raw
	case gqlang.ListValueNode:
		v.kind = ListValue
		elem := expected.Elem()
		sb := new(strings.Builder)
		sb.WriteString("[")
		for i, c := range n.Children() {
			if i > 0 {
				sb.WriteString(", ")
			}
			item := b.value(id, c, elem)
			sb.WriteString(b.doc.parts[item].value.text)
		}
		sb.WriteString("]")
		v.text = sb.String()
	case gqlang.ComplexValueNode:
		v.kind = ComplexValue
		// A single object may stand in for a list of objects, so the
		// fields are bound to the innermost type.
		var inputType *schema.Type
		if expected != nil {
			inputType = b.doc.schema.Type(expected.NamedType())
		}
		for _, c := range n.Children() {
			b.argument(id, c, inputType.InputField(c.Primary()))
		}
		b.indexFields(id)
	}
	return id
}

// indexFields builds the name index of a complex value once all of its
// fields have been added. The first occurrence of a name wins.
func (b *builder) indexFields(id PartID) {
	v := b.doc.parts[id].value
	children := b.doc.parts[id].children
	v.fields = make(map[string]PartID, len(children))
	sb := new(strings.Builder)
	sb.WriteString("{")
	for i, c := range children {
		arg := b.doc.parts[c].argument
		if _, exists := v.fields[arg.name]; !exists {
			v.fields[arg.name] = c
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(arg.name)
		sb.WriteString(": ")
		if arg.value != NoPart {
			sb.WriteString(b.doc.parts[arg.value].value.text)
		}
	}
	sb.WriteString("}")
	v.text = sb.String()
}

// followOperation visits everything reachable from an operation, following
// each resolved spread once. It marks the fragments it reaches as referenced
// and records the operation's variable uses.
func (b *builder) followOperation(opID PartID) {
	doc := b.doc
	op := doc.parts[opID].operation
	visited := make(map[PartID]bool)
	var visit func(PartID) bool
	visit = func(id PartID) bool {
		p := &doc.parts[id]
		switch p.kind {
		case SuppliedValuePart:
			if p.value.kind == VariableValue {
				op.variableUses = append(op.variableUses, id)
			}
		case FragmentSpreadPart:
			frag := p.spread.fragment
			if frag != NoPart && !visited[frag] {
				visited[frag] = true
				doc.parts[frag].fragment.referenced = true
				doc.Walk(frag, visit)
			}
		}
		return true
	}
	doc.Walk(opID, visit)
}
