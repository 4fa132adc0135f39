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
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/xerrors"
)

// metrics tracks cache behavior.
//
// Metrics:
//   - <ns>_plancache_hits_total
//   - <ns>_plancache_misses_total
//   - <ns>_plancache_coalesced_total: callers that waited on another's build
//   - <ns>_plancache_builds_total{outcome="ok"|"error"}
//   - <ns>_plancache_evictions_total
//   - <ns>_plancache_build_duration_seconds
type metrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	coalesced     prometheus.Counter
	builds        *prometheus.CounterVec
	evictions     prometheus.Counter
	buildDuration prometheus.Histogram
}

const subsystem = "plancache"

func newMetrics(namespace string) *metrics {
	counter := func(name, help string) prometheus.Counter {
		return prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      name,
			Help:      help,
		})
	}
	return &metrics{
		hits:      counter("hits_total", "Number of lookups that found a stored plan"),
		misses:    counter("misses_total", "Number of lookups that did not find a stored plan"),
		coalesced: counter("coalesced_total", "Number of lookups that waited on another caller's build"),
		builds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "builds_total",
				Help:      "Number of plan builds by outcome",
			},
			[]string{"outcome"},
		),
		evictions: counter("evictions_total", "Number of plans evicted to make room"),
		buildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "build_duration_seconds",
			Help:      "Duration of plan builds in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 2, 16), // 10µs to 330ms
		}),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.hits,
		m.misses,
		m.coalesced,
		m.builds,
		m.evictions,
		m.buildDuration,
	} {
		if err := reg.Register(c); err != nil {
			return xerrors.Errorf("register metrics: %w", err)
		}
	}
	return nil
}
