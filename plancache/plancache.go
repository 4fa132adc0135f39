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

// Package plancache provides a keyed cache of compiled documents. Concurrent
// requests for a missing key share a single build, and the least recently
// used entries are evicted once the cache is full.
package plancache

import (
	"context"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/singleflight"
	"golang.org/x/xerrors"
)

// DefaultSize is the number of entries a cache holds when Config.Size is zero.
const DefaultSize = 1000

// Config specifies the parameters for a cache.
type Config struct {
	// Size is the maximum number of entries. Zero means DefaultSize.
	Size int
	// Namespace prefixes the cache's metric names. Empty means "gqlplan".
	Namespace string
}

// Option customizes a cache created by New.
type Option func(*options)

type options struct {
	registerer prometheus.Registerer
	logger     *slog.Logger
}

// WithRegisterer registers the cache's metrics with reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// WithLogger sets the logger used for cache events. Events are logged at the
// debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// Cache maps string keys to values of type V. It is safe to call its methods
// from multiple goroutines.
type Cache[V any] struct {
	entries *lru.Cache[string, V]
	group   singleflight.Group
	metrics *metrics
	logger  *slog.Logger
}

// New returns an empty cache.
func New[V any](cfg Config, opts ...Option) (*Cache[V], error) {
	if cfg.Size < 0 {
		return nil, xerrors.Errorf("new plan cache: negative size %d", cfg.Size)
	}
	if cfg.Size == 0 {
		cfg.Size = DefaultSize
	}
	if cfg.Namespace == "" {
		cfg.Namespace = "gqlplan"
	}
	o := new(options)
	for _, opt := range opts {
		opt(o)
	}
	c := &Cache[V]{
		metrics: newMetrics(cfg.Namespace),
		logger:  o.logger,
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	var err error
	c.entries, err = lru.NewWithEvict[string, V](cfg.Size, func(key string, _ V) {
		c.metrics.evictions.Inc()
		c.logger.Debug("plan evicted", "key", key)
	})
	if err != nil {
		return nil, xerrors.Errorf("new plan cache: %w", err)
	}
	if o.registerer != nil {
		if err := c.metrics.register(o.registerer); err != nil {
			return nil, xerrors.Errorf("new plan cache: %w", err)
		}
	}
	return c, nil
}

// Get returns the value stored for key. If there is none, Get calls build and
// stores its result. At most one build runs for a key at a time: callers that
// arrive while a build is in flight wait for it and receive the same value or
// the same error. Failed builds are not stored.
//
// The context passed to build is not canceled when ctx is. If ctx is done
// before the build finishes, Get returns ctx.Err() and the build continues
// for the benefit of other callers.
func (c *Cache[V]) Get(ctx context.Context, key string, build func(context.Context) (V, error)) (V, error) {
	if v, ok := c.entries.Get(key); ok {
		c.metrics.hits.Inc()
		return v, nil
	}
	c.metrics.misses.Inc()
	buildCtx := context.WithoutCancel(ctx)
	leader := false
	ch := c.group.DoChan(key, func() (interface{}, error) {
		leader = true
		if v, ok := c.entries.Get(key); ok {
			return v, nil
		}
		start := time.Now()
		v, err := build(buildCtx)
		c.metrics.buildDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			c.metrics.builds.WithLabelValues("error").Inc()
			c.logger.Debug("plan build failed", "key", key, "error", err)
			return nil, err
		}
		c.metrics.builds.WithLabelValues("ok").Inc()
		c.entries.Add(key, v)
		c.logger.Debug("plan built", "key", key, "duration", time.Since(start))
		return v, nil
	})
	var zero V
	select {
	case <-ctx.Done():
		return zero, ctx.Err()
	case res := <-ch:
		if !leader {
			c.metrics.coalesced.Inc()
			c.logger.Debug("plan build coalesced", "key", key)
		}
		if res.Err != nil {
			return zero, res.Err
		}
		v, _ := res.Val.(V)
		return v, nil
	}
}

// Peek returns the value stored for key without building it or updating its
// recentness.
func (c *Cache[V]) Peek(key string) (V, bool) {
	return c.entries.Peek(key)
}

// Len returns the number of stored entries.
func (c *Cache[V]) Len() int {
	return c.entries.Len()
}

// Purge removes every entry. In-flight builds still store their results.
func (c *Cache[V]) Purge() {
	c.entries.Purge()
}
