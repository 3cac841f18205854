/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func TestRecorderPercentiles(t *testing.T) {
	r := NewRecorder(0)
	for i := 1; i <= 100; i++ {
		r.Observe("pointer-move", time.Duration(i)*time.Millisecond)
	}
	r.Observe("click", 3*time.Millisecond)
	st := r.Stats()
	if len(st) != 2 || st[0].Name != "click" || st[1].Name != "pointer-move" {
		t.Fatalf("stats = %+v", st)
	}
	mv := st[1]
	if mv.Count != 100 || mv.P50 != 50*time.Millisecond || mv.P95 != 95*time.Millisecond || mv.Max != 100*time.Millisecond {
		t.Fatalf("pointer-move stats = %+v", mv)
	}
	if !mv.OverBudget(InteractiveBudget) || st[0].OverBudget(InteractiveBudget) {
		t.Fatalf("budget check wrong")
	}
}

func TestRecorderWindowAndTime(t *testing.T) {
	r := NewRecorder(4)
	clock := time.Unix(0, 0)
	r.now = func() time.Time { return clock }
	for i := 0; i < 10; i++ {
		done := r.Time("drag")
		clock = clock.Add(time.Duration(i) * time.Millisecond)
		done()
	}
	st := r.Stats()
	if len(st) != 1 || st[0].Count != 10 || st[0].Max != 9*time.Millisecond {
		t.Fatalf("stats = %+v", st)
	}
	if st[0].P50 < 6*time.Millisecond {
		t.Fatalf("window should only hold recent samples, p50 %v", st[0].P50)
	}
	r.Reset()
	if len(r.Stats()) != 0 {
		t.Fatalf("Reset kept samples")
	}
}

func TestNilRecorderIsNoop(t *testing.T) {
	var r *Recorder
	r.Time("x")()
	r.Observe("x", time.Second)
	if r.Stats() != nil {
		t.Fatalf("nil recorder returned stats")
	}
}

func TestRecorderReport(t *testing.T) {
	var mu sync.Mutex
	var names []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		b, _ := io.ReadAll(req.Body)
		var m map[string]any
		_ = json.Unmarshal(b, &m)
		mu.Lock()
		names = append(names, m["handler"].(string))
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()
	c := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c.Close()

	r := NewRecorder(8)
	r.Observe("pointer-down", time.Millisecond)
	r.Observe("pointer-up", time.Millisecond)
	r.Report(c)
	c.Flush(context.Background())
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(names) != 2 {
		t.Fatalf("expected 2 latency events, got %v", names)
	}
}

func TestStatsPickObservedDurations(t *testing.T) {
	r := NewRecorder(16)
	for _, ms := range []int{4, 1, 3, 2} {
		r.Observe("pointer-move", time.Duration(ms)*time.Millisecond)
	}
	r.Observe("pointer-up", 700*time.Microsecond)
	st := r.Stats()
	if len(st) != 2 {
		t.Fatalf("stats = %+v", st)
	}
	mv, up := st[0], st[1]
	if mv.P50 != 2*time.Millisecond || mv.P95 != 4*time.Millisecond || mv.Max != 4*time.Millisecond {
		t.Fatalf("pointer-move = %+v", mv)
	}
	if up.P50 != 700*time.Microsecond || up.P95 != up.Max || up.OverBudget(InteractiveBudget) {
		t.Fatalf("pointer-up = %+v", up)
	}
}
