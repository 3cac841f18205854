/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package replay drives the interaction controller from gesture scripts.
//
// A script names a scene fixture and lists pointer steps in world
// coordinates. Steps are converted to device pixels through the
// controller's projector, so a replay exercises the same path as a live
// pointer. Expectations record failures in the report instead of
// aborting, which keeps a watch session useful while a script is edited.
package replay

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"godraft/internal/fixture"
)

//go:embed script.schema.json
var scriptSchema []byte

// ErrUnknownStep is returned for a step whose op is not recognised.
var ErrUnknownStep = errors.New("unknown step")

type Expect struct {
	Shape        string   `yaml:"shape,omitempty"`
	Width        *float64 `yaml:"width,omitempty"`
	Height       *float64 `yaml:"height,omitempty"`
	X            *float64 `yaml:"x,omitempty"`
	Y            *float64 `yaml:"y,omitempty"`
	Rotation     *float64 `yaml:"rotation,omitempty"` // degrees
	Measurement  string   `yaml:"measurement,omitempty"`
	Distance     *float64 `yaml:"distance,omitempty"`
	Offset       *float64 `yaml:"offset,omitempty"`
	Attached     *bool    `yaml:"attached,omitempty"`
	Measurements *int     `yaml:"measurements,omitempty"`
	Mode         string   `yaml:"mode,omitempty"`
	Phase        string   `yaml:"phase,omitempty"`
	Tolerance    float64  `yaml:"tolerance,omitempty"`
}

// Step is one scripted action. Which fields matter depends on Op.
type Step struct {
	Op          string        `yaml:"op"`
	At          *fixture.Vec  `yaml:"at,omitempty"`
	Path        []fixture.Vec `yaml:"path,omitempty"`
	Shift       bool          `yaml:"shift,omitempty"`
	Tool        string        `yaml:"tool,omitempty"`
	Shape       string        `yaml:"shape,omitempty"`
	Handle      string        `yaml:"handle,omitempty"`
	Measurement string        `yaml:"measurement,omitempty"`
	Text        string        `yaml:"text,omitempty"`
	Dimension   string        `yaml:"dimension,omitempty"`
	Anchor      string        `yaml:"anchor,omitempty"`
	Expect      *Expect       `yaml:"expect,omitempty"`
}

// Script is a parsed gesture script. Dir resolves the fixture path.
type Script struct {
	Version  int          `yaml:"version"`
	Name     string       `yaml:"name"`
	Fixture  string       `yaml:"fixture"`
	Viewport *fixture.Vec `yaml:"viewport"`
	Steps    []Step       `yaml:"steps"`

	Path string `yaml:"-"`
	Dir  string `yaml:"-"`
}

// LoadScript reads and validates a script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	sc, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.Path = path
	sc.Dir = filepath.Dir(path)
	return sc, nil
}

// ParseScript validates data against the script schema and decodes it.
func ParseScript(data []byte) (*Script, error) {
	if err := fixture.Validate(data, scriptSchema); err != nil {
		return nil, err
	}
	var sc Script
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("decode script: %w", err)
	}
	return &sc, nil
}

// FixturePath is the script's fixture resolved against its directory.
func (sc *Script) FixturePath() string {
	if sc.Fixture == "" || filepath.IsAbs(sc.Fixture) {
		return sc.Fixture
	}
	return filepath.Join(sc.Dir, sc.Fixture)
}
