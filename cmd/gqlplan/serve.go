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

package main

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/xerrors"
	"zombiezen.com/go/gqlplan/graphql"
	"zombiezen.com/go/gqlplan/graphqlhttp"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a GraphQL validation endpoint over HTTP",
		Long: `Serve accepts GraphQL requests at /graphql and responds with the plan for
valid documents or the validation errors for invalid ones. Prometheus metrics
are served at /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			l, err := net.Listen("tcp", a.cfg.Server.Addr)
			if err != nil {
				return err
			}
			return a.serve(cmd.Context(), l)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Address to listen on (default from config, :8080)")
	return cmd
}

// serve handles requests on l until ctx is done.
func (a *app) serve(ctx context.Context, l net.Listener) error {
	s, err := a.loadSchema()
	if err != nil {
		l.Close()
		return err
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	compiler, err := a.newCompiler(s, reg)
	if err != nil {
		l.Close()
		return err
	}
	mux := http.NewServeMux()
	mux.Handle("/graphql", graphqlhttp.NewHandler(compiler, graphqlhttp.ExecutorFunc(planResponse), a.logger))
	if a.cfg.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.Serve(l)
	}()
	a.logger.Info("serving", "addr", l.Addr().String(), "schema_id", s.ID())
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return xerrors.Errorf("shut down: %w", err)
	}
	if err := <-errc; err != nil && !xerrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

type planSummary struct {
	ID        string   `json:"id"`
	Operation string   `json:"operation,omitempty"`
	Type      string   `json:"type"`
	Fields    []string `json:"fields"`
}

// planResponse describes the selected operation instead of executing it.
func planResponse(ctx context.Context, vd *graphql.ValidatedDocument, req graphql.Request) graphql.Response {
	doc := vd.Document()
	op := doc.Operation(vd.FindOperation(req.OperationName))
	summary := planSummary{
		ID:        vd.ID(),
		Operation: op.Name(),
		Type:      vd.TypeOf(req.OperationName).String(),
		Fields:    []string{},
	}
	for _, sel := range doc.Children(op.SelectionSet()) {
		if f := doc.Field(sel); f != nil && f.Included() {
			summary.Fields = append(summary.Fields, f.ResponseKey())
		}
	}
	data, err := json.Marshal(map[string]planSummary{"plan": summary})
	if err != nil {
		return graphql.Response{Errors: []*graphql.ResponseError{{Message: err.Error()}}}
	}
	return graphql.Response{Data: data}
}
