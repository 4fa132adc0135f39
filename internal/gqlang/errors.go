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

package gqlang

import "golang.org/x/xerrors"

// SyntaxError is returned when a document cannot be tokenized or does not
// match the GraphQL grammar. It is always fatal for the parse.
type SyntaxError struct {
	// Message describes the problem without the location.
	Message string

	Pos      Pos
	Position Position

	// Expected and Found describe the mismatched token for grammar errors.
	// They are empty for lexical errors.
	Expected string
	Found    string
}

// Error returns the message prefixed by the "line:col" position.
func (e *SyntaxError) Error() string {
	return e.Position.String() + ": " + e.Message
}

// ErrorPos attempts to extract an error's Pos.
func ErrorPos(e error) (pos Pos, ok bool) {
	var se *SyntaxError
	if !xerrors.As(e, &se) {
		return 0, false
	}
	return se.Pos, true
}

// ErrorPosition attempts to extract an error's Position.
func ErrorPosition(e error) (p Position, ok bool) {
	var se *SyntaxError
	if !xerrors.As(e, &se) {
		return Position{}, false
	}
	return se.Position, true
}
