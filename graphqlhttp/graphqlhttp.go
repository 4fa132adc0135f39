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

// Package graphqlhttp provides functions for serving GraphQL over HTTP as
// described in https://graphql.org/learn/serving-over-http/.
package graphqlhttp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/document"
	"zombiezen.com/go/gqlplan/graphql"
)

// Executor runs an operation from a valid document. It is only called once the
// document has no critical diagnostics and the requested operation exists.
type Executor interface {
	Execute(ctx context.Context, doc *graphql.ValidatedDocument, req graphql.Request) graphql.Response
}

// ExecutorFunc is a function that implements Executor.
type ExecutorFunc func(ctx context.Context, doc *graphql.ValidatedDocument, req graphql.Request) graphql.Response

// Execute calls f.
func (f ExecutorFunc) Execute(ctx context.Context, doc *graphql.ValidatedDocument, req graphql.Request) graphql.Response {
	return f(ctx, doc, req)
}

// Handler serves GraphQL HTTP requests by compiling them and handing valid
// documents to its executor.
type Handler struct {
	compiler *graphql.Compiler
	executor Executor
	logger   *slog.Logger
}

// NewHandler returns a new handler that compiles requests with the given
// compiler and runs them with the given executor. A nil logger discards.
func NewHandler(compiler *graphql.Compiler, executor Executor, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		compiler: compiler,
		executor: executor,
		logger:   logger,
	}
}

// ServeHTTP compiles and executes a GraphQL request.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gqlRequest, err := Parse(r)
	if err != nil {
		code := StatusCode(err)
		if code == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", "GET, HEAD, POST")
		}
		http.Error(w, err.Error(), code)
		return
	}
	ctx := r.Context()
	doc, err := h.compiler.Compile(ctx, gqlRequest.Query)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		h.logger.DebugContext(ctx, "compile failed", "error", err)
		WriteResponse(w, graphql.Response{
			Errors: []*graphql.ResponseError{graphql.ToResponseError(err)},
		})
		return
	}
	if !doc.Valid() {
		WriteResponse(w, graphql.Response{
			Errors: graphql.ResponseErrors(doc.Diagnostics()),
		})
		return
	}
	if doc.FindOperation(gqlRequest.OperationName) == document.NoPart {
		msg := fmt.Sprintf("no such operation %q", gqlRequest.OperationName)
		if gqlRequest.OperationName == "" {
			msg = "multiple operations; must specify operation name"
		}
		WriteResponse(w, graphql.Response{
			Errors: []*graphql.ResponseError{{Message: msg}},
		})
		return
	}
	if (r.Method == http.MethodGet || r.Method == http.MethodHead) && doc.TypeOf(gqlRequest.OperationName) != graphql.QueryOperation {
		http.Error(w, "GET requests must be queries", http.StatusBadRequest)
		return
	}
	WriteResponse(w, h.executor.Execute(ctx, doc, gqlRequest))
}

// MaxBodySize is the largest request body Parse will read.
const MaxBodySize = 1 << 20

// Parse parses a GraphQL HTTP request. If an error is returned, StatusCode
// will return the proper HTTP status code to use.
//
// Request methods may be GET, HEAD, or POST. If the method is not one of these,
// then an error is returned that will make StatusCode return
// http.StatusMethodNotAllowed.
func Parse(r *http.Request) (graphql.Request, error) {
	var request graphql.Request
	var err error
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		request, err = parseURL(r.URL.Query())
	case http.MethodPost:
		request, err = parseBody(r)
	default:
		err = requestErrorf(http.StatusMethodNotAllowed, "method %s not allowed", r.Method)
	}
	if err != nil {
		return graphql.Request{}, err
	}
	if request.Query == "" {
		return graphql.Request{}, requestErrorf(http.StatusBadRequest, "missing query")
	}
	return request, nil
}

func parseURL(params url.Values) (graphql.Request, error) {
	request := graphql.Request{
		Query:         params.Get("query"),
		OperationName: params.Get("operationName"),
	}
	if v := params.Get("variables"); v != "" {
		if !json.Valid([]byte(v)) {
			return graphql.Request{}, requestErrorf(http.StatusBadRequest, "variables are not valid JSON")
		}
		request.Variables = json.RawMessage(v)
	}
	return request, nil
}

// parseBody decodes a POST body. A query in the URL is used when the body
// does not supply one.
func parseBody(r *http.Request) (graphql.Request, error) {
	rawContentType := r.Header.Get("Content-Type")
	contentType, _, err := mime.ParseMediaType(rawContentType)
	if err != nil {
		return graphql.Request{}, requestErrorf(http.StatusUnsupportedMediaType, "invalid content type %q", rawContentType)
	}
	var request graphql.Request
	switch contentType {
	case "application/json":
		data, err := readBody(r.Body)
		if err != nil {
			return graphql.Request{}, err
		}
		if err := json.Unmarshal(data, &request); err != nil {
			return graphql.Request{}, wrapRequestError(http.StatusBadRequest, err)
		}
	case "application/x-www-form-urlencoded":
		data, err := readBody(r.Body)
		if err != nil {
			return graphql.Request{}, err
		}
		form, err := url.ParseQuery(string(data))
		if err != nil {
			return graphql.Request{}, wrapRequestError(http.StatusBadRequest, err)
		}
		request = graphql.Request{
			Query:         form.Get("query"),
			OperationName: form.Get("operationName"),
		}
	case "application/graphql":
		data, err := readBody(r.Body)
		if err != nil {
			return graphql.Request{}, err
		}
		request.Query = string(data)
		request.OperationName = r.URL.Query().Get("operationName")
	default:
		return graphql.Request{}, requestErrorf(http.StatusUnsupportedMediaType, "unrecognized content type %s", contentType)
	}
	if request.Query == "" {
		request.Query = r.URL.Query().Get("query")
	}
	return request, nil
}

// readBody reads at most MaxBodySize bytes of a request body.
func readBody(body io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, MaxBodySize+1))
	if err != nil {
		return nil, wrapRequestError(http.StatusBadRequest, err)
	}
	if len(data) > MaxBodySize {
		return nil, requestErrorf(http.StatusRequestEntityTooLarge, "body larger than %d bytes", MaxBodySize)
	}
	return data, nil
}

// httpError is a request error with the status code to respond with.
type httpError struct {
	code  int
	msg   string
	cause error
}

func requestErrorf(code int, format string, args ...interface{}) error {
	return &httpError{code: code, msg: fmt.Sprintf(format, args...)}
}

func wrapRequestError(code int, err error) error {
	return &httpError{code: code, msg: err.Error(), cause: err}
}

func (e *httpError) Error() string {
	return "parse graphql request: " + e.msg
}

func (e *httpError) Unwrap() error {
	return e.cause
}

// StatusCode returns the HTTP status code an error indicates.
func StatusCode(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var e *httpError
	if !xerrors.As(err, &e) {
		return http.StatusInternalServerError
	}
	return e.code
}

// WriteResponse writes a GraphQL result as an HTTP response.
func WriteResponse(w http.ResponseWriter, response graphql.Response) {
	payload, err := json.Marshal(response)
	if err != nil {
		http.Error(w, "GraphQL marshal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Length", strconv.Itoa(len(payload)))
	if _, err := w.Write(payload); err != nil {
		return
	}
}
