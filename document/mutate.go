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
	"golang.org/x/xerrors"

	"zombiezen.com/go/gqlplan/internal/enginekey"
	"zombiezen.com/go/gqlplan/schema"
)

// Mutator changes the few pieces of document state that directives are
// allowed to change: inclusion, resolved types, and spread targets.
// Mutators are handed to directive hooks by the rules engine.
type Mutator struct {
	doc *Document
}

// NewMutator returns a Mutator for doc. The key can only be named inside this
// module, which leaves the rules engine as the only source of mutators.
func NewMutator(_ enginekey.Key, doc *Document) *Mutator {
	return &Mutator{doc: doc}
}

// Document returns the document being mutated.
func (m *Mutator) Document() *Document {
	return m.doc
}

// Exclude removes a field, fragment spread, or inline fragment from the
// result. Exclusion cannot be undone.
func (m *Mutator) Exclude(id PartID) error {
	p := &m.doc.parts[id]
	switch p.kind {
	case FieldPart:
		p.field.included = false
	case FragmentSpreadPart:
		p.spread.included = false
	case InlineFragmentPart:
		p.inline.included = false
	default:
		return xerrors.Errorf("exclude %s: not a selection", m.doc.Describe(id))
	}
	return nil
}

// Retype replaces the resolved type of a field, named fragment, or inline
// fragment. The type of the part's selection set follows.
func (m *Mutator) Retype(id PartID, t *schema.Type) error {
	if t == nil {
		return xerrors.Errorf("retype %s: nil type", m.doc.Describe(id))
	}
	p := &m.doc.parts[id]
	var set PartID
	switch p.kind {
	case FieldPart:
		p.field.typ = t
		set = p.field.selectionSet
	case NamedFragmentPart:
		p.fragment.target = t
		set = p.fragment.selectionSet
	case InlineFragmentPart:
		p.inline.target = t
		set = p.inline.selectionSet
	default:
		return xerrors.Errorf("retype %s: not a field or fragment", m.doc.Describe(id))
	}
	if set != NoPart {
		m.doc.parts[set].selection.parentType = t
	}
	return nil
}

// RedirectSpread points a fragment spread at a different named fragment,
// which becomes referenced.
func (m *Mutator) RedirectSpread(spread, fragment PartID) error {
	sp := m.doc.parts[spread].spread
	if sp == nil {
		return xerrors.Errorf("redirect %s: not a fragment spread", m.doc.Describe(spread))
	}
	frag := m.doc.parts[fragment].fragment
	if frag == nil {
		return xerrors.Errorf("redirect %s: %s is not a named fragment", m.doc.Describe(spread), m.doc.Describe(fragment))
	}
	sp.fragment = fragment
	frag.referenced = true
	return nil
}
