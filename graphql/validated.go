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

package graphql

import (
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/diagnostic"
	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/schema"
)

// ValidatedDocument is a document that has been parsed and checked against a
// schema. It does not change after Compile returns, so it may be shared
// between goroutines and reused across requests.
type ValidatedDocument struct {
	id     string
	schema *schema.Schema
	doc    *document.Document
	diags  []diagnostic.Diagnostic
	valid  bool
}

// ID returns a unique identifier for this compilation.
func (vd *ValidatedDocument) ID() string {
	return vd.id
}

// Document returns the document's part tree. Callers must not mutate it.
func (vd *ValidatedDocument) Document() *document.Document {
	return vd.doc
}

// Diagnostics returns the messages produced by validation in the order they
// were found.
func (vd *ValidatedDocument) Diagnostics() []diagnostic.Diagnostic {
	return append([]diagnostic.Diagnostic(nil), vd.diags...)
}

// Valid reports whether validation produced no critical diagnostics.
func (vd *ValidatedDocument) Valid() bool {
	return vd.valid
}

// Source returns the document text.
func (vd *ValidatedDocument) Source() string {
	return vd.doc.Source()
}

// Schema returns the schema the document was validated against.
func (vd *ValidatedDocument) Schema() *schema.Schema {
	return vd.schema
}

// SchemaID returns the identity of the schema the document was validated
// against.
func (vd *ValidatedDocument) SchemaID() string {
	return vd.schema.ID()
}

// CheckSchema returns an error wrapping ErrSchemaMismatch if the document was
// not validated against s.
func (vd *ValidatedDocument) CheckSchema(s *schema.Schema) error {
	if vd.schema != s {
		return xerrors.Errorf("check document %s: %w", vd.id, ErrSchemaMismatch)
	}
	return nil
}

// FindOperation returns the operation with the given name or document.NoPart
// if no such operation exists. If the name is empty and the document has
// exactly one operation, then FindOperation returns that operation.
func (vd *ValidatedDocument) FindOperation(name string) document.PartID {
	return vd.doc.FindOperation(name)
}

// TypeOf returns the type of the operation with the given name or zero if no
// such operation exists. If the operation name is empty and there is only one
// operation in the document, then TypeOf returns the type of that operation.
func (vd *ValidatedDocument) TypeOf(operationName string) OperationType {
	op := vd.doc.FindOperation(operationName)
	if op == document.NoPart {
		return 0
	}
	return operationTypeFromSchema(vd.doc.Operation(op).Kind())
}
