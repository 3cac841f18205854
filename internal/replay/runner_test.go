/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package replay

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"gonum.org/v1/gonum/floats/scalar"

	"godraft/internal/interaction"
	"godraft/internal/measure"
	"godraft/internal/shape"
)

func run(t *testing.T, name string) (*Report, *interaction.Controller) {
	t.Helper()
	rep, c, err := NewRunner(interaction.DefaultOptions()).RunFile(context.Background(), filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("RunFile(%s) error: %v", name, err)
	}
	return rep, c
}

func TestReplayResize(t *testing.T) {
	rep, c := run(t, "resize.yaml")
	if !rep.OK() {
		t.Fatalf("failures: %+v", rep.Failures)
	}
	if rep.Steps != 5 {
		t.Fatalf("steps = %d", rep.Steps)
	}
	s, _ := c.Scene.Get("p")
	p := s.(*shape.Plane)
	if !scalar.EqualWithinAbs(p.Width, 12, 1e-6) || !scalar.EqualWithinAbs(p.Height, 4, 1e-6) {
		t.Fatalf("size = %vx%v", p.Width, p.Height)
	}
	var seen bool
	for _, l := range rep.Latency {
		if l.Handler == "pointer-move" && l.Count == 4 {
			seen = true
		}
	}
	if !seen {
		t.Fatalf("pointer-move latency missing: %+v", rep.Latency)
	}
	if rep.Session == "" || len(rep.Shapes) != 2 {
		t.Fatalf("report incomplete: %+v", rep)
	}
}

func TestReplayMeasure(t *testing.T) {
	rep, c := run(t, "measure.yaml")
	if !rep.OK() {
		t.Fatalf("failures: %+v", rep.Failures)
	}
	all := c.Measurements.All()
	if len(all) != 1 {
		t.Fatalf("measurements = %d", len(all))
	}
	m := all[0]
	if !scalar.EqualWithinAbs(m.Distance, 3, 1e-9) || !scalar.EqualWithinAbs(m.Offset, 1, 1e-9) || m.Attached() {
		t.Fatalf("measurement = %+v", m)
	}
	if rep.Measurements[0].Label != measure.FormatLength(3, "m") {
		t.Fatalf("label = %q", rep.Measurements[0].Label)
	}
}

func TestReplayDimensionDrivesPlate(t *testing.T) {
	rep, c := run(t, "dimension.yaml")
	if !rep.OK() {
		t.Fatalf("failures: %+v", rep.Failures)
	}
	if _, ok := c.Scene.Get("p"); ok {
		t.Fatalf("p should be deleted")
	}
	m, ok := c.Measurements.Get("w")
	if !ok || m.Role != nil {
		t.Fatalf("orphaned dimension must lose its role: %+v", m)
	}
}

func TestReplayCollectsFailures(t *testing.T) {
	rep, _ := run(t, "failing.yaml")
	if rep.OK() || len(rep.Failures) != 3 {
		t.Fatalf("failures = %+v", rep.Failures)
	}
	if rep.Failures[0].Step != 0 || rep.Failures[2].Op != "delete-measurement" {
		t.Fatalf("failure bookkeeping: %+v", rep.Failures)
	}
}

func TestReplayUnknownStep(t *testing.T) {
	rep, _, err := NewRunner(interaction.DefaultOptions()).RunFile(context.Background(), filepath.Join("testdata", "unknown.yaml"))
	if !errors.Is(err, ErrUnknownStep) {
		t.Fatalf("err = %v, want ErrUnknownStep", err)
	}
	if rep == nil || rep.Steps != 0 {
		t.Fatalf("report = %+v", rep)
	}
}

func TestLoadScriptRejectsInvalid(t *testing.T) {
	if _, err := LoadScript(filepath.Join("testdata", "invalid.yaml")); err == nil {
		t.Fatalf("expected schema error")
	}
	if _, err := LoadScript(filepath.Join("testdata", "nope.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestRunHonoursCancelledContext(t *testing.T) {
	sc, err := LoadScript(filepath.Join("testdata", "resize.yaml"))
	if err != nil {
		t.Fatalf("LoadScript: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, _, err := NewRunner(interaction.DefaultOptions()).Run(ctx, sc); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestWatchRerunsOnChange(t *testing.T) {
	dir := t.TempDir()
	fixture, err := os.ReadFile(filepath.Join("testdata", "plate.yaml"))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "plate.yaml"), fixture, 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	script := filepath.Join(dir, "s.yaml")
	good := "version: 1\nfixture: plate.yaml\nsteps:\n  - op: expect\n    expect: { shape: p, width: 2 }\n"
	bad := "version: 1\nfixture: plate.yaml\nsteps:\n  - op: expect\n    expect: { shape: p, width: 5 }\n"
	if err := os.WriteFile(script, []byte(good), 0o600); err != nil {
		t.Fatalf("write script: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reports := make(chan *Report, 8)
	done := make(chan error, 1)
	go func() {
		done <- NewRunner(interaction.DefaultOptions()).Watch(ctx, script, 20*time.Millisecond, func(r *Report, err error) {
			if err == nil {
				reports <- r
			}
		})
	}()

	next := func() *Report {
		select {
		case r := <-reports:
			return r
		case <-time.After(5 * time.Second):
			t.Fatalf("no report")
			return nil
		}
	}
	if r := next(); !r.OK() {
		t.Fatalf("first run failed: %+v", r.Failures)
	}
	if err := os.WriteFile(script, []byte(bad), 0o600); err != nil {
		t.Fatalf("rewrite script: %v", err)
	}
	if r := next(); r.OK() {
		t.Fatalf("rerun should report the broken expectation")
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Watch: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Watch did not stop")
	}
}
