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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	TelemetryOptIn bool `yaml:"telemetry_opt_in"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// SnapConfig tunes the point/edge snap resolver.
type SnapConfig struct {
	Points       bool    `yaml:"points"`
	Edges        bool    `yaml:"edges"`
	Guides       bool    `yaml:"guides"`
	Threshold    float64 `yaml:"threshold"`
	PriorityBias float64 `yaml:"priority_bias"`
	// AllowFree accepts unsnapped measurement clicks.
	AllowFree bool `yaml:"allow_free"`
}

type AlignConfig struct {
	Enabled   bool    `yaml:"enabled"`
	Threshold float64 `yaml:"threshold"`
}

type GridConfig struct {
	Enabled bool    `yaml:"enabled"`
	Step    float64 `yaml:"step"`
}

type TransformConfig struct {
	MinExtent         float64 `yaml:"min_extent"`
	MinTriangleExtent float64 `yaml:"min_triangle_extent"`
	AngleSnapDegrees  float64 `yaml:"angle_snap_degrees"`
}

type MeasureConfig struct {
	MinSegment          float64 `yaml:"min_segment"`
	ZeroOffsetTolerance float64 `yaml:"zero_offset_tolerance"`
	MaxOffset           float64 `yaml:"max_offset"`
	Units               string  `yaml:"units"` // "m" | "cm" | "ft"
	ExtensionOvershoot  float64 `yaml:"extension_overshoot"`
	ArrowSize           float64 `yaml:"arrow_size"`
}

type AppConfig struct {
	ConfigVersion int             `yaml:"config_version"`
	General       GeneralConfig   `yaml:"general"`
	Logging       LoggingConfig   `yaml:"logging"`
	Snap          SnapConfig      `yaml:"snap"`
	Align         AlignConfig     `yaml:"align"`
	Grid          GridConfig      `yaml:"grid"`
	Transform     TransformConfig `yaml:"transform"`
	Measure       MeasureConfig   `yaml:"measure"`
}

// Defaults returns the application defaults. The snap and alignment
// numbers were tuned by hand; change them only with evidence.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{TelemetryOptIn: false},
		Logging:       LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
		Snap:          SnapConfig{Points: true, Edges: true, Guides: false, Threshold: 0.3, PriorityBias: 0.05, AllowFree: true},
		Align:         AlignConfig{Enabled: true, Threshold: 0.5},
		Grid:          GridConfig{Enabled: false, Step: 1},
		Transform:     TransformConfig{MinExtent: 0.1, MinTriangleExtent: 0.2, AngleSnapDegrees: 15},
		Measure: MeasureConfig{
			MinSegment:          0.3048,
			ZeroOffsetTolerance: 0.15,
			MaxOffset:           20,
			Units:               "m",
			ExtensionOvershoot:  0.1,
			ArrowSize:           0.15,
		},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath      = "GODRAFT_CONFIG"
	EnvTelemetryOptIn  = "GODRAFT_TELEMETRY_OPT_IN"
	EnvSnapThreshold   = "GODRAFT_SNAP_THRESHOLD"
	EnvSnapBias        = "GODRAFT_SNAP_PRIORITY_BIAS"
	EnvSnapGuides      = "GODRAFT_SNAP_GUIDES"
	EnvAlignThreshold  = "GODRAFT_ALIGN_THRESHOLD"
	EnvGridEnabled     = "GODRAFT_GRID"
	EnvGridStep        = "GODRAFT_GRID_STEP"
	EnvMeasureUnits    = "GODRAFT_UNITS"
	EnvMeasureAllowFre = "GODRAFT_ALLOW_FREE"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GODRAFT_LOG_LEVEL"
	EnvLogFormat = "GODRAFT_LOG_FORMAT"
	EnvLogSource = "GODRAFT_LOG_SOURCE"
	EnvLogFile   = "GODRAFT_LOG_FILE"
)

// ConfigPath returns the per-user config file path. GODRAFT_CONFIG wins when set.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoDraft")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoDraft")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "godraft")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults, and merges
// environment overrides. It returns the path that was consulted.
func Load() (AppConfig, string, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, "", err
	}
	cfg, err := LoadFile(path)
	return cfg, path, err
}

// LoadFile is Load for an explicit path. A missing file is not an error;
// a malformed one is.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var fileCfg AppConfig
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			applyEnvOverrides(&cfg)
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		mergeInto(&cfg, &fileCfg, data)
	case !errors.Is(err, os.ErrNotExist):
		applyEnvOverrides(&cfg)
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// mergeInto copies set fields of src over dst. Booleans are only taken
// from the file when the key is present in raw, so an omitted toggle keeps
// its default instead of silently turning off.
func mergeInto(dst *AppConfig, src *AppConfig, raw []byte) {
	present := presentKeys(raw)
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if present["general.telemetry_opt_in"] {
		dst.General.TelemetryOptIn = src.General.TelemetryOptIn
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
	// snap
	if present["snap.points"] {
		dst.Snap.Points = src.Snap.Points
	}
	if present["snap.edges"] {
		dst.Snap.Edges = src.Snap.Edges
	}
	if present["snap.guides"] {
		dst.Snap.Guides = src.Snap.Guides
	}
	if present["snap.allow_free"] {
		dst.Snap.AllowFree = src.Snap.AllowFree
	}
	setPositive(&dst.Snap.Threshold, src.Snap.Threshold)
	if src.Snap.PriorityBias >= 0 && present["snap.priority_bias"] {
		dst.Snap.PriorityBias = src.Snap.PriorityBias
	}
	// align + grid
	if present["align.enabled"] {
		dst.Align.Enabled = src.Align.Enabled
	}
	setPositive(&dst.Align.Threshold, src.Align.Threshold)
	if present["grid.enabled"] {
		dst.Grid.Enabled = src.Grid.Enabled
	}
	setPositive(&dst.Grid.Step, src.Grid.Step)
	// transform
	setPositive(&dst.Transform.MinExtent, src.Transform.MinExtent)
	setPositive(&dst.Transform.MinTriangleExtent, src.Transform.MinTriangleExtent)
	if present["transform.angle_snap_degrees"] && src.Transform.AngleSnapDegrees >= 0 {
		dst.Transform.AngleSnapDegrees = src.Transform.AngleSnapDegrees
	}
	// measure
	setPositive(&dst.Measure.MinSegment, src.Measure.MinSegment)
	setPositive(&dst.Measure.ZeroOffsetTolerance, src.Measure.ZeroOffsetTolerance)
	setPositive(&dst.Measure.MaxOffset, src.Measure.MaxOffset)
	setPositive(&dst.Measure.ExtensionOvershoot, src.Measure.ExtensionOvershoot)
	setPositive(&dst.Measure.ArrowSize, src.Measure.ArrowSize)
	if u := strings.ToLower(strings.TrimSpace(src.Measure.Units)); u != "" {
		dst.Measure.Units = u
	}
}

func setPositive(dst *float64, v float64) {
	if v > 0 {
		*dst = v
	}
}

// presentKeys lists "section.key" paths that appear in the YAML document.
func presentKeys(raw []byte) map[string]bool {
	out := map[string]bool{}
	var doc map[string]any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return out
	}
	for section, v := range doc {
		kv, ok := v.(map[string]any)
		if !ok {
			continue
		}
		for k := range kv {
			out[section+"."+k] = true
		}
	}
	return out
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func envFloat(key string, dst *float64) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			*dst = f
		}
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvTelemetryOptIn)); v != "" {
		cfg.General.TelemetryOptIn = parseBool(v)
	}
	envFloat(EnvSnapThreshold, &cfg.Snap.Threshold)
	envFloat(EnvSnapBias, &cfg.Snap.PriorityBias)
	if v := strings.TrimSpace(os.Getenv(EnvSnapGuides)); v != "" {
		cfg.Snap.Guides = parseBool(v)
	}
	envFloat(EnvAlignThreshold, &cfg.Align.Threshold)
	if v := strings.TrimSpace(os.Getenv(EnvGridEnabled)); v != "" {
		cfg.Grid.Enabled = parseBool(v)
	}
	envFloat(EnvGridStep, &cfg.Grid.Step)
	if v := strings.TrimSpace(os.Getenv(EnvMeasureUnits)); v != "" {
		cfg.Measure.Units = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvMeasureAllowFre)); v != "" {
		cfg.Snap.AllowFree = parseBool(v)
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

var envByKey = map[string]string{
	"general.telemetry_opt_in": EnvTelemetryOptIn,
	"snap.threshold":           EnvSnapThreshold,
	"snap.priority_bias":       EnvSnapBias,
	"snap.guides":              EnvSnapGuides,
	"snap.allow_free":          EnvMeasureAllowFre,
	"align.threshold":          EnvAlignThreshold,
	"grid.enabled":             EnvGridEnabled,
	"grid.step":                EnvGridStep,
	"measure.units":            EnvMeasureUnits,
	"logging.level":            EnvLogLevel,
	"logging.format":           EnvLogFormat,
	"logging.source":           EnvLogSource,
	"logging.file":             EnvLogFile,
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envByKey[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// OverridableKeys lists the config keys that have an environment override.
func OverridableKeys() []string {
	keys := make([]string, 0, len(envByKey))
	for k := range envByKey {
		keys = append(keys, k)
	}
	return keys
}
