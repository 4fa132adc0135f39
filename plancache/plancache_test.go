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

package plancache

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func TestGetBuildsOnce(t *testing.T) {
	c, err := New[string](Config{Size: 4})
	require.NoError(t, err)
	builds := 0
	build := func(context.Context) (string, error) {
		builds++
		return "plan", nil
	}
	for i := 0; i < 3; i++ {
		v, err := c.Get(context.Background(), "k", build)
		require.NoError(t, err)
		require.Equal(t, "plan", v)
	}
	require.Equal(t, 1, builds)
	require.Equal(t, 1, c.Len())
	require.Equal(t, 2.0, testutil.ToFloat64(c.metrics.hits))
	require.Equal(t, 1.0, testutil.ToFloat64(c.metrics.misses))
}

func TestGetCoalesces(t *testing.T) {
	c, err := New[int](Config{})
	require.NoError(t, err)

	const waiters = 8
	var builds int32
	started := make(chan struct{})
	release := make(chan struct{})
	build := func(context.Context) (int, error) {
		if atomic.AddInt32(&builds, 1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, waiters)
	errs := make([]error, waiters)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], errs[0] = c.Get(context.Background(), "k", build)
	}()
	<-started
	for i := 1; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = c.Get(context.Background(), "k", build)
		}(i)
	}
	// Waiters that arrive after the build finishes hit the stored entry
	// instead, so every result is the same either way.
	close(release)
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&builds))
	for i := range results {
		require.NoError(t, errs[i])
		require.Equal(t, 42, results[i])
	}
}

func TestGetFailureSharedAndNotStored(t *testing.T) {
	c, err := New[int](Config{})
	require.NoError(t, err)
	errBoom := xerrors.New("boom")
	calls := 0
	_, err = c.Get(context.Background(), "k", func(context.Context) (int, error) {
		calls++
		return 0, errBoom
	})
	require.ErrorIs(t, err, errBoom)
	require.Equal(t, 0, c.Len())

	v, err := c.Get(context.Background(), "k", func(context.Context) (int, error) {
		calls++
		return 7, nil
	})
	require.NoError(t, err)
	require.Equal(t, 7, v)
	require.Equal(t, 2, calls)
	require.Equal(t, 1.0, testutil.ToFloat64(c.metrics.builds.WithLabelValues("error")))
	require.Equal(t, 1.0, testutil.ToFloat64(c.metrics.builds.WithLabelValues("ok")))
}

func TestGetEvictsLeastRecentlyUsed(t *testing.T) {
	c, err := New[string](Config{Size: 2})
	require.NoError(t, err)
	get := func(key string) {
		t.Helper()
		_, err := c.Get(context.Background(), key, func(context.Context) (string, error) {
			return "plan " + key, nil
		})
		require.NoError(t, err)
	}
	get("a")
	get("b")
	get("a")
	get("c")

	_, ok := c.Peek("b")
	require.False(t, ok, "b should have been evicted")
	v, ok := c.Peek("a")
	require.True(t, ok)
	require.Equal(t, "plan a", v)
	require.Equal(t, 1.0, testutil.ToFloat64(c.metrics.evictions))
}

func TestGetCanceled(t *testing.T) {
	c, err := New[int](Config{})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	release := make(chan struct{})
	_, err = c.Get(ctx, "k", func(buildCtx context.Context) (int, error) {
		cancel()
		<-release
		return 1, buildCtx.Err()
	})
	require.ErrorIs(t, err, context.Canceled)
	close(release)

	// The detached build still completes and stores its value.
	v, err := c.Get(context.Background(), "k", func(context.Context) (int, error) {
		return 1, nil
	})
	require.NoError(t, err)
	require.Equal(t, 1, v)
}

func TestNew(t *testing.T) {
	_, err := New[int](Config{Size: -1})
	require.Error(t, err)

	reg := prometheus.NewRegistry()
	_, err = New[int](Config{Namespace: "test"}, WithRegisterer(reg))
	require.NoError(t, err)
	_, err = New[int](Config{Namespace: "test"}, WithRegisterer(reg))
	require.Error(t, err, "registering the same metrics twice")

	families, err := reg.Gather()
	require.NoError(t, err)
	var names []string
	for _, f := range families {
		names = append(names, f.GetName())
	}
	require.Contains(t, names, "test_plancache_build_duration_seconds")
}

func BenchmarkGetHit(b *testing.B) {
	c, err := New[int](Config{Size: 100})
	if err != nil {
		b.Fatal(err)
	}
	keys := make([]string, 100)
	for i := range keys {
		keys[i] = strconv.Itoa(i)
		c.Get(context.Background(), keys[i], func(context.Context) (int, error) { return i, nil })
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Get(context.Background(), keys[i%len(keys)], nil)
	}
}
