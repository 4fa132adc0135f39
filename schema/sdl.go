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

import (
	"sort"

	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"golang.org/x/xerrors"
)

// LoadSDL builds a schema from GraphQL schema definition language text.
// name is used in error messages.
func LoadSDL(name, source string) (*Schema, error) {
	doc, err := gqlparser.LoadSchema(&ast.Source{Name: name, Input: source})
	if err != nil {
		return nil, xerrors.Errorf("load schema %s: %w", name, err)
	}
	b := builtins()
	var cfg Config
	typeNames := make([]string, 0, len(doc.Types))
	for typeName := range doc.Types {
		typeNames = append(typeNames, typeName)
	}
	sort.Strings(typeNames)
	for _, typeName := range typeNames {
		def := doc.Types[typeName]
		if def.BuiltIn || b.typeNames[typeName] {
			continue
		}
		cfg.Types = append(cfg.Types, convertDefinition(def, def == doc.Query))
	}
	dirNames := make([]string, 0, len(doc.Directives))
	for dirName := range doc.Directives {
		dirNames = append(dirNames, dirName)
	}
	sort.Strings(dirNames)
	for _, dirName := range dirNames {
		def := doc.Directives[dirName]
		if b.dirNames[dirName] || isBuiltinPosition(def.Position) {
			continue
		}
		cfg.Directives = append(cfg.Directives, convertDirective(def))
	}
	if doc.Query != nil {
		cfg.Query = doc.Query.Name
	}
	if doc.Mutation != nil {
		cfg.Mutation = doc.Mutation.Name
	}
	if doc.Subscription != nil {
		cfg.Subscription = doc.Subscription.Name
	}
	s, err := New(cfg)
	if err != nil {
		return nil, xerrors.Errorf("load schema %s: %w", name, err)
	}
	return s, nil
}

func isBuiltinPosition(pos *ast.Position) bool {
	return pos != nil && pos.Src != nil && pos.Src.BuiltIn
}

// convertDefinition converts a parsed type definition. If isQuery is true,
// the meta fields that the parser adds to the query type are dropped: New
// provides them through Schema.FieldOf.
func convertDefinition(def *ast.Definition, isQuery bool) *Type {
	t := &Type{
		Name:        def.Name,
		Kind:        Kind(def.Kind),
		Description: def.Description,
	}
	switch def.Kind {
	case ast.Object, ast.Interface:
		t.Interfaces = append([]string(nil), def.Interfaces...)
		for _, f := range def.Fields {
			if isQuery && (f.Name == "__schema" || f.Name == "__type") {
				continue
			}
			field := &Field{
				Name:        f.Name,
				Description: f.Description,
				Type:        convertTypeRef(f.Type),
				Arguments:   convertArguments(f.Arguments),
			}
			field.IsDeprecated, field.DeprecationReason = deprecation(f.Directives)
			t.Fields = append(t.Fields, field)
		}
	case ast.Union:
		t.PossibleTypes = append([]string(nil), def.Types...)
	case ast.Enum:
		for _, v := range def.EnumValues {
			ev := &EnumValue{Name: v.Name, Description: v.Description}
			ev.IsDeprecated, ev.DeprecationReason = deprecation(v.Directives)
			t.EnumValues = append(t.EnumValues, ev)
		}
	case ast.InputObject:
		for _, f := range def.Fields {
			t.InputFields = append(t.InputFields, &InputValue{
				Name:         f.Name,
				Description:  f.Description,
				Type:         convertTypeRef(f.Type),
				DefaultValue: literal(f.DefaultValue),
			})
		}
	}
	return t
}

func convertDirective(def *ast.DirectiveDefinition) *Directive {
	d := &Directive{
		Name:         def.Name,
		Description:  def.Description,
		Arguments:    convertArguments(def.Arguments),
		IsRepeatable: def.IsRepeatable,
	}
	for _, loc := range def.Locations {
		d.Locations = append(d.Locations, DirectiveLocation(loc))
	}
	return d
}

func convertArguments(args ast.ArgumentDefinitionList) []*InputValue {
	var list []*InputValue
	for _, arg := range args {
		list = append(list, &InputValue{
			Name:         arg.Name,
			Description:  arg.Description,
			Type:         convertTypeRef(arg.Type),
			DefaultValue: literal(arg.DefaultValue),
		})
	}
	return list
}

func convertTypeRef(t *ast.Type) *TypeRef {
	var ref *TypeRef
	if t.Elem != nil {
		ref = ListType(convertTypeRef(t.Elem))
	} else {
		ref = NamedType(t.NamedType)
	}
	if t.NonNull {
		ref = NonNullType(ref)
	}
	return ref
}

func deprecation(dirs ast.DirectiveList) (bool, string) {
	d := dirs.ForName("deprecated")
	if d == nil {
		return false, ""
	}
	reason := "No longer supported"
	if arg := d.Arguments.ForName("reason"); arg != nil && arg.Value != nil {
		reason = arg.Value.Raw
	}
	return true, reason
}

func literal(v *ast.Value) *string {
	if v == nil {
		return nil
	}
	s := v.String()
	return &s
}
