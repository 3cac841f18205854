/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points the config path at a temp file so tests never read the
// developer's own config.
func isolate(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	old := os.Getenv(EnvConfigPath)
	_ = os.Setenv(EnvConfigPath, path)
	t.Cleanup(func() { _ = os.Setenv(EnvConfigPath, old) })
	return path
}

func TestDefaultsMatchTunedValues(t *testing.T) {
	d := Defaults()
	if d.Snap.Threshold != 0.3 || d.Snap.PriorityBias != 0.05 || d.Align.Threshold != 0.5 {
		t.Fatalf("tuned thresholds changed: %+v %+v", d.Snap, d.Align)
	}
	if d.Measure.MinSegment != 0.3048 || d.Measure.ZeroOffsetTolerance != 0.15 || d.Measure.MaxOffset != 20 {
		t.Fatalf("measure defaults changed: %+v", d.Measure)
	}
	if d.Grid.Step != 1 || d.Transform.AngleSnapDegrees != 15 {
		t.Fatalf("grid/transform defaults changed")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := isolate(t)
	cfg, got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != path {
		t.Fatalf("Load() path = %q, want %q", got, path)
	}
	if cfg.Snap.Threshold != 0.3 || !cfg.Snap.Points {
		t.Fatalf("expected defaults, got %+v", cfg.Snap)
	}
}

func TestLoadFileMergesPresentKeysOnly(t *testing.T) {
	path := isolate(t)
	yml := "snap:\n  threshold: 0.5\n  edges: false\nalign:\n  threshold: 0.25\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Snap.Threshold != 0.5 || cfg.Snap.Edges {
		t.Fatalf("snap not merged: %+v", cfg.Snap)
	}
	if !cfg.Snap.Points {
		t.Fatalf("omitted toggle must keep default")
	}
	if cfg.Align.Threshold != 0.25 || !cfg.Align.Enabled {
		t.Fatalf("align not merged: %+v", cfg.Align)
	}
	if cfg.Snap.PriorityBias != 0.05 {
		t.Fatalf("bias default lost: %v", cfg.Snap.PriorityBias)
	}
}

func TestLoadFileRejectsMalformedYAML(t *testing.T) {
	path := isolate(t)
	if err := os.WriteFile(path, []byte("snap: [unclosed"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if cfg.Snap.Threshold != 0.3 {
		t.Fatalf("defaults must survive a parse error")
	}
}

func TestSaveThenLoad(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Grid.Enabled = true
	cfg.Grid.Step = 0.5
	cfg.Measure.Units = "ft"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !got.Grid.Enabled || got.Grid.Step != 0.5 || got.Measure.Units != "ft" {
		t.Fatalf("round trip lost values: %+v %+v", got.Grid, got.Measure)
	}
}

func TestEnvOverridesTelemetry(t *testing.T) {
	isolate(t)
	old := os.Getenv(EnvTelemetryOptIn)
	_ = os.Setenv(EnvTelemetryOptIn, "true")
	t.Cleanup(func() { _ = os.Setenv(EnvTelemetryOptIn, old) })
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.General.TelemetryOptIn {
		t.Fatalf("General.TelemetryOptIn expected true from env override")
	}
}

func TestEnvOverridesGeometry(t *testing.T) {
	isolate(t)
	oldT := os.Getenv(EnvSnapThreshold)
	oldG := os.Getenv(EnvGridEnabled)
	_ = os.Setenv(EnvSnapThreshold, "0.75")
	_ = os.Setenv(EnvGridEnabled, "yes")
	t.Cleanup(func() {
		_ = os.Setenv(EnvSnapThreshold, oldT)
		_ = os.Setenv(EnvGridEnabled, oldG)
	})
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Snap.Threshold != 0.75 || !cfg.Grid.Enabled {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Snap, cfg.Grid)
	}
	if env, ok := EnvOverrideFor("snap.threshold"); !ok || env != EnvSnapThreshold {
		t.Fatalf("EnvOverrideFor(snap.threshold) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("align.threshold"); ok {
		t.Fatalf("align.threshold is not overridden")
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "/tmp/godraft.log"
	mergeInto(&dst, &src, nil)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "/tmp/godraft.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	oldLevel := os.Getenv(EnvLogLevel)
	oldFmt := os.Getenv(EnvLogFormat)
	oldSrc := os.Getenv(EnvLogSource)
	oldFile := os.Getenv(EnvLogFile)
	_ = os.Setenv(EnvLogLevel, "error")
	_ = os.Setenv(EnvLogFormat, "json")
	_ = os.Setenv(EnvLogSource, "1")
	_ = os.Setenv(EnvLogFile, "/var/tmp/godraft.log")
	t.Cleanup(func() {
		_ = os.Setenv(EnvLogLevel, oldLevel)
		_ = os.Setenv(EnvLogFormat, oldFmt)
		_ = os.Setenv(EnvLogSource, oldSrc)
		_ = os.Setenv(EnvLogFile, oldFile)
	})
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "/var/tmp/godraft.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}
