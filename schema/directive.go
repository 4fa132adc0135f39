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

package schema

// DirectiveLocation is a place in a document or schema where a directive
// may be applied.
type DirectiveLocation string

// Executable directive locations.
const (
	LocationQuery              DirectiveLocation = "QUERY"
	LocationMutation           DirectiveLocation = "MUTATION"
	LocationSubscription       DirectiveLocation = "SUBSCRIPTION"
	LocationField              DirectiveLocation = "FIELD"
	LocationFragmentDefinition DirectiveLocation = "FRAGMENT_DEFINITION"
	LocationFragmentSpread     DirectiveLocation = "FRAGMENT_SPREAD"
	LocationInlineFragment     DirectiveLocation = "INLINE_FRAGMENT"
	LocationVariableDefinition DirectiveLocation = "VARIABLE_DEFINITION"
)

// Type system directive locations.
const (
	LocationSchema               DirectiveLocation = "SCHEMA"
	LocationScalar               DirectiveLocation = "SCALAR"
	LocationObject               DirectiveLocation = "OBJECT"
	LocationFieldDefinition      DirectiveLocation = "FIELD_DEFINITION"
	LocationArgumentDefinition   DirectiveLocation = "ARGUMENT_DEFINITION"
	LocationInterface            DirectiveLocation = "INTERFACE"
	LocationUnion                DirectiveLocation = "UNION"
	LocationEnum                 DirectiveLocation = "ENUM"
	LocationEnumValue            DirectiveLocation = "ENUM_VALUE"
	LocationInputObject          DirectiveLocation = "INPUT_OBJECT"
	LocationInputFieldDefinition DirectiveLocation = "INPUT_FIELD_DEFINITION"
)

var knownLocations = map[DirectiveLocation]bool{
	LocationQuery:                true,
	LocationMutation:             true,
	LocationSubscription:         true,
	LocationField:                true,
	LocationFragmentDefinition:   true,
	LocationFragmentSpread:       true,
	LocationInlineFragment:       true,
	LocationVariableDefinition:   true,
	LocationSchema:               true,
	LocationScalar:               true,
	LocationObject:               true,
	LocationFieldDefinition:      true,
	LocationArgumentDefinition:   true,
	LocationInterface:            true,
	LocationUnion:                true,
	LocationEnum:                 true,
	LocationEnumValue:            true,
	LocationInputObject:          true,
	LocationInputFieldDefinition: true,
}

// Directive is a directive declared by a schema.
type Directive struct {
	Name         string
	Description  string
	Locations    []DirectiveLocation
	Arguments    []*InputValue
	IsRepeatable bool
}

// AllowsLocation reports whether the directive may be applied at loc.
func (d *Directive) AllowsLocation(loc DirectiveLocation) bool {
	if d == nil {
		return false
	}
	for _, l := range d.Locations {
		if l == loc {
			return true
		}
	}
	return false
}

// Argument returns the directive's argument with the given name or nil.
func (d *Directive) Argument(name string) *InputValue {
	if d == nil {
		return nil
	}
	return findInputValue(d.Arguments, name)
}
