/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"slices"
	"sort"
	"sync"
	"time"

	"gonum.org/v1/gonum/stat"
)

// InteractiveBudget is the per-handler latency the pointer handlers are
// expected to stay under for a smooth drag.
const InteractiveBudget = 16 * time.Millisecond

// Recorder keeps the most recent handler durations per handler name. A nil
// *Recorder is valid and records nothing.
type Recorder struct {
	mu       sync.Mutex
	capacity int
	samples  map[string]*ring
	now      func() time.Time
}

type ring struct {
	buf   []time.Duration
	next  int
	full  bool
	total int
}

func (r *ring) add(d time.Duration) {
	r.buf[r.next] = d
	r.next = (r.next + 1) % len(r.buf)
	if r.next == 0 {
		r.full = true
	}
	r.total++
}

func (r *ring) values() []time.Duration {
	n := r.next
	if r.full {
		n = len(r.buf)
	}
	out := make([]time.Duration, n)
	copy(out, r.buf[:n])
	return out
}

// NewRecorder keeps up to capacity samples per handler (256 if <= 0).
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = 256
	}
	return &Recorder{capacity: capacity, samples: make(map[string]*ring), now: time.Now}
}

// Time starts a measurement; call the returned func when the handler ends.
//
//	defer rec.Time("pointer-move")()
func (r *Recorder) Time(name string) func() {
	if r == nil {
		return func() {}
	}
	start := r.now()
	return func() { r.Observe(name, r.now().Sub(start)) }
}

// Observe records one duration for name.
func (r *Recorder) Observe(name string, d time.Duration) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	rg := r.samples[name]
	if rg == nil {
		rg = &ring{buf: make([]time.Duration, r.capacity)}
		r.samples[name] = rg
	}
	rg.add(d)
}

// Stats summarises one handler.
type Stats struct {
	Name  string
	Count int // all observations, including ones evicted from the window
	P50   time.Duration
	P95   time.Duration
	Max   time.Duration
}

// OverBudget reports whether the p95 exceeds budget.
func (s Stats) OverBudget(budget time.Duration) bool { return s.P95 > budget }

// Stats returns per-handler percentiles over the retained window, sorted
// by name.
func (r *Recorder) Stats() []Stats {
	if r == nil {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Stats, 0, len(r.samples))
	for name, rg := range r.samples {
		v := rg.values()
		if len(v) == 0 {
			continue
		}
		ns := make([]float64, len(v))
		for i, d := range v {
			ns[i] = float64(d)
		}
		slices.Sort(ns)
		out = append(out, Stats{
			Name:  name,
			Count: rg.total,
			P50:   quantile(0.50, ns),
			P95:   quantile(0.95, ns),
			Max:   time.Duration(ns[len(ns)-1]),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// quantile is the empirical (nearest-rank) quantile of sorted ns, so the
// result is always one of the observed durations.
func quantile(p float64, ns []float64) time.Duration {
	return time.Duration(stat.Quantile(p, stat.Empirical, ns, nil))
}

// Reset drops all samples.
func (r *Recorder) Reset() {
	if r == nil {
		return
	}
	r.mu.Lock()
	clear(r.samples)
	r.mu.Unlock()
}

// Report sends one "handler_latency" event per handler through c. It is
// a no-op unless c is enabled.
func (r *Recorder) Report(c *Client) {
	if !c.Enabled() {
		return
	}
	for _, s := range r.Stats() {
		c.Event("handler_latency", map[string]any{
			"handler": s.Name,
			"count":   s.Count,
			"p50_us":  s.P50.Microseconds(),
			"p95_us":  s.P95.Microseconds(),
			"max_us":  s.Max.Microseconds(),
		})
	}
}
