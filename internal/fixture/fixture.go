/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fixture loads scene fixtures: a list of shapes and optional
// measurements in YAML or JSON, validated against an embedded JSON schema.
// Fixtures drive the replay harness, the CLI and the tests.
package fixture

import (
	_ "embed"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"godraft/internal/measure"
	"godraft/internal/shape"
	"godraft/internal/vector"
)

//go:embed schema.json
var schemaJSON []byte

// Schema returns the embedded JSON schema.
func Schema() []byte { return append([]byte(nil), schemaJSON...) }

// ErrInvalid marks a fixture that does not conform to the schema or
// references unknown shapes.
var ErrInvalid = errors.New("invalid fixture")

// Vec is an [x, y] pair.
type Vec [2]float64

func (v Vec) Pt() vector.Pt { return vector.P(v[0], v[1]) }

type Shape struct {
	ID       string   `yaml:"id"`
	Kind     string   `yaml:"kind"`
	Position Vec      `yaml:"position"`
	Rotation float64  `yaml:"rotation"` // degrees
	Scale    *Vec     `yaml:"scale"`
	Width    float64  `yaml:"width"`
	Height   float64  `yaml:"height"`
	RadiusX  float64  `yaml:"radius_x"`
	RadiusY  *float64 `yaml:"radius_y"`
	HalfBase float64  `yaml:"half_base"`
	Start    Vec      `yaml:"start"`
	End      Vec      `yaml:"end"`
}

type Attachment struct {
	Shape      string `yaml:"shape"`
	Normalized Vec    `yaml:"normalized"`
}

type Measurement struct {
	ID            string   `yaml:"id"`
	Start         Vec      `yaml:"start"`
	End           Vec      `yaml:"end"`
	Offset        float64  `yaml:"offset"`
	LabelPosition *float64 `yaml:"label_position"`
	LabelOpacity  *float64 `yaml:"label_opacity"`
	Attach        *struct {
		Start Attachment `yaml:"start"`
		End   Attachment `yaml:"end"`
	} `yaml:"attach"`
	Role *struct {
		Dimension string `yaml:"dimension"`
		Anchor    string `yaml:"anchor"`
	} `yaml:"role"`
}

// Document is a parsed fixture.
type Document struct {
	Version      int           `yaml:"version"`
	Name         string        `yaml:"name"`
	Units        string        `yaml:"units"`
	Shapes       []Shape       `yaml:"shapes"`
	Measurements []Measurement `yaml:"measurements"`
}

// Load reads and validates a fixture file.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse validates data (YAML or JSON) against the schema and decodes it.
func Parse(data []byte) (*Document, error) {
	if err := Validate(data, schemaJSON); err != nil {
		return nil, err
	}
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	return &doc, nil
}

// Validate checks a YAML or JSON document against a JSON schema. Schema
// violations wrap ErrInvalid.
func Validate(data, schema []byte) error {
	var generic any
	if err := yaml.Unmarshal(data, &generic); err != nil {
		return fmt.Errorf("%w: parse: %v", ErrInvalid, err)
	}
	if generic == nil {
		return fmt.Errorf("%w: empty document", ErrInvalid)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewGoLoader(generic))
	if err != nil {
		return fmt.Errorf("schema validate: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	return nil
}

// Build creates the scene and the measurement set. Attached endpoints
// are re-derived from the shapes, so the stored start and end of an
// attached measurement only matter for free endpoints.
func (d *Document) Build() (*shape.Scene, *measure.Set, error) {
	scene := shape.NewScene()
	for i, fs := range d.Shapes {
		s, err := fs.build()
		if err != nil {
			return nil, nil, fmt.Errorf("%w: shapes[%d]: %v", ErrInvalid, i, err)
		}
		if _, dup := scene.Get(s.ID()); dup {
			return nil, nil, fmt.Errorf("%w: shapes[%d]: duplicate id %q", ErrInvalid, i, s.ID())
		}
		scene.Add(s)
	}
	set := measure.NewSet()
	for i, fm := range d.Measurements {
		m, err := fm.build(scene)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: measurements[%d]: %v", ErrInvalid, i, err)
		}
		set.Add(m)
	}
	for _, s := range scene.Shapes() {
		set.Retrack(s)
	}
	return scene, set, nil
}

func (fs Shape) build() (shape.Shape, error) {
	kind, ok := shape.ParseKind(fs.Kind)
	if !ok {
		return nil, fmt.Errorf("unknown kind %q", fs.Kind)
	}
	var s shape.Shape
	switch kind {
	case shape.KindPlane:
		s = shape.NewPlane(fs.ID, fs.Width, fs.Height)
	case shape.KindCircle:
		ry := fs.RadiusX
		if fs.RadiusY != nil {
			ry = *fs.RadiusY
		}
		s = shape.NewCircle(fs.ID, fs.RadiusX, ry)
	case shape.KindTriangle:
		s = shape.NewTriangle(fs.ID, fs.HalfBase, fs.Height)
	case shape.KindLine:
		s = shape.NewLine(fs.ID, fs.Start.Pt(), fs.End.Pt())
	}
	xf := shape.DefaultTransform()
	xf.Position = fs.Position.Pt()
	xf.Rotation = fs.Rotation * math.Pi / 180
	if fs.Scale != nil {
		xf.Scale = fs.Scale.Pt()
	}
	s.SetTransform(xf)
	return s, nil
}

var (
	dimensions = map[string]measure.Dimension{"width": measure.Width, "height": measure.Height}
	anchors    = map[string]measure.Anchor{
		"left": measure.AnchorLeft, "right": measure.AnchorRight,
		"top": measure.AnchorTop, "bottom": measure.AnchorBottom,
	}
)

func (fm Measurement) build(scene *shape.Scene) (*measure.Measurement, error) {
	m := &measure.Measurement{
		ID:            fm.ID,
		Start:         fm.Start.Pt(),
		End:           fm.End.Pt(),
		Offset:        fm.Offset,
		LabelPosition: 0.5,
		Style:         measure.DefaultStyle(),
	}
	if fm.LabelPosition != nil {
		m.LabelPosition = *fm.LabelPosition
	}
	if fm.LabelOpacity != nil {
		m.Style.SetLabelOpacity(*fm.LabelOpacity)
	}
	if a := fm.Attach; a != nil {
		for _, id := range []string{a.Start.Shape, a.End.Shape} {
			if _, ok := scene.Get(id); !ok {
				return nil, fmt.Errorf("attachment to unknown shape %q", id)
			}
		}
		m.StartAttachment = &measure.Attachment{ShapeID: a.Start.Shape, Normalized: a.Start.Normalized.Pt()}
		m.EndAttachment = &measure.Attachment{ShapeID: a.End.Shape, Normalized: a.End.Normalized.Pt()}
	}
	if r := fm.Role; r != nil {
		if m.StartAttachment == nil {
			return nil, errors.New("role requires an attachment")
		}
		m.Role = &measure.Role{Dimension: dimensions[r.Dimension], Anchor: anchors[r.Anchor]}
	}
	m.Distance = vector.Dist(m.Start, m.End)
	return m, nil
}
