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
	"fmt"
	"log/slog"
	"math"

	"github.com/google/uuid"

	"godraft/internal/fixture"
	"godraft/internal/interaction"
	applog "godraft/internal/log"
	"godraft/internal/measure"
	"godraft/internal/projector"
	"godraft/internal/shape"
	"godraft/internal/telemetry"
	"godraft/internal/transform"
	"godraft/internal/vector"
)

// Failure is an expectation that did not hold.
type Failure struct {
	Step    int    `yaml:"step" json:"step"`
	Op      string `yaml:"op" json:"op"`
	Message string `yaml:"message" json:"message"`
}

type ShapeSummary struct {
	ID       string  `yaml:"id" json:"id"`
	Kind     string  `yaml:"kind" json:"kind"`
	X        float64 `yaml:"x" json:"x"`
	Y        float64 `yaml:"y" json:"y"`
	Rotation float64 `yaml:"rotation" json:"rotation"` // degrees
	Width    float64 `yaml:"width" json:"width"`
	Height   float64 `yaml:"height" json:"height"`
}

type MeasurementSummary struct {
	ID       string  `yaml:"id" json:"id"`
	Distance float64 `yaml:"distance" json:"distance"`
	Offset   float64 `yaml:"offset" json:"offset"`
	Label    string  `yaml:"label" json:"label"`
	Attached bool    `yaml:"attached" json:"attached"`
	Role     string  `yaml:"role,omitempty" json:"role,omitempty"`
}

type LatencySummary struct {
	Handler string  `yaml:"handler" json:"handler"`
	Count   int     `yaml:"count" json:"count"`
	P50us   int64   `yaml:"p50_us" json:"p50_us"`
	P95us   int64   `yaml:"p95_us" json:"p95_us"`
	MaxUs   int64   `yaml:"max_us" json:"max_us"`
	Budget  float64 `yaml:"budget_ms" json:"budget_ms"`
	Over    bool    `yaml:"over_budget" json:"over_budget"`
}

// Report is the outcome of a replay.
type Report struct {
	Session      string               `yaml:"session" json:"session"`
	Script       string               `yaml:"script" json:"script"`
	Steps        int                  `yaml:"steps" json:"steps"`
	Failures     []Failure            `yaml:"failures" json:"failures"`
	Shapes       []ShapeSummary       `yaml:"shapes" json:"shapes"`
	Measurements []MeasurementSummary `yaml:"measurements" json:"measurements"`
	Latency      []LatencySummary     `yaml:"latency" json:"latency"`
}

func (r *Report) OK() bool { return len(r.Failures) == 0 }

// OpenFixture builds a controller over the fixture at path. An empty
// path gives an empty drawing.
func OpenFixture(path string, vp projector.Viewport, opts interaction.Options) (*interaction.Controller, error) {
	scene := shape.NewScene()
	set := measure.NewSet()
	if path != "" {
		doc, err := fixture.Load(path)
		if err != nil {
			return nil, err
		}
		if scene, set, err = doc.Build(); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}
	c := interaction.New(scene, vp, opts)
	for _, m := range set.All() {
		c.Measurements.Add(m)
	}
	return c, nil
}

// Runner replays scripts against fresh controllers.
type Runner struct {
	Options interaction.Options
	Logger  *slog.Logger
}

func NewRunner(opts interaction.Options) *Runner {
	return &Runner{Options: opts, Logger: applog.WithComponent("replay")}
}

// RunFile loads a script and its fixture and replays it.
func (r *Runner) RunFile(ctx context.Context, path string) (*Report, *interaction.Controller, error) {
	sc, err := LoadScript(path)
	if err != nil {
		return nil, nil, err
	}
	return r.Run(ctx, sc)
}

// Run replays sc. The returned controller holds the final state, e.g.
// for export.
func (r *Runner) Run(ctx context.Context, sc *Script) (*Report, *interaction.Controller, error) {
	vp := projector.Viewport{Width: 1024, Height: 768}
	if sc.Viewport != nil {
		vp = projector.Viewport{Width: sc.Viewport[0], Height: sc.Viewport[1]}
	}
	c, err := OpenFixture(sc.FixturePath(), vp, r.Options)
	if err != nil {
		return nil, nil, err
	}
	c.Recorder = telemetry.NewRecorder(0)

	session := uuid.NewString()
	ctx = applog.WithSession(ctx, session)
	logger := r.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	c.SetLogger(logger)
	logger.InfoContext(ctx, "replay start", slog.String("script", sc.Path), slog.Int("steps", len(sc.Steps)))

	rep := &Report{Session: session, Script: sc.Path}
	for i, st := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return rep, c, err
		}
		if err := r.step(c, i, st, rep); err != nil {
			return rep, c, fmt.Errorf("step %d: %w", i, err)
		}
		rep.Steps++
	}
	summarize(c, rep)
	logger.InfoContext(ctx, "replay done", slog.Int("failures", len(rep.Failures)))
	return rep, c, nil
}

func (r *Runner) step(c *interaction.Controller, i int, st Step, rep *Report) error {
	fail := func(format string, args ...any) {
		rep.Failures = append(rep.Failures, Failure{Step: i, Op: st.Op, Message: fmt.Sprintf(format, args...)})
	}
	screen := func(p vector.Pt) interaction.Event {
		sp, _ := c.Projector.ToScreen(p, c.Viewport)
		return interaction.Event{Screen: sp, Shift: st.Shift}
	}
	at := func() (vector.Pt, bool) {
		if st.Handle != "" {
			return handlePosition(c, st.Shape, st.Handle)
		}
		if st.At == nil {
			return vector.Pt{}, false
		}
		return st.At.Pt(), true
	}

	switch st.Op {
	case "tool":
		if st.Tool == "measure" {
			c.SetTool(interaction.ToolMeasure)
		} else {
			c.SetTool(interaction.ToolSelect)
		}
	case "select":
		c.Select(st.Shape)
	case "down", "move", "click":
		p, ok := at()
		if !ok {
			fail("no position")
			return nil
		}
		switch st.Op {
		case "down":
			c.PointerDown(screen(p))
		case "move":
			c.PointerMove(screen(p))
		default:
			c.Click(screen(p))
		}
	case "up":
		c.PointerUp(interaction.Event{Shift: st.Shift})
	case "drag":
		p, ok := at()
		if !ok {
			fail("no start position")
			return nil
		}
		c.PointerDown(screen(p))
		for _, q := range st.Path {
			c.PointerMove(screen(q.Pt()))
		}
		c.PointerUp(interaction.Event{Shift: st.Shift})
	case "cancel":
		c.CancelMeasure()
	case "delete-shape":
		if !c.DeleteShape(st.Shape) {
			fail("no shape %q", st.Shape)
		}
	case "delete-measurement":
		if !c.DeleteMeasurement(st.Measurement) {
			fail("no measurement %q", st.Measurement)
		}
	case "dimension":
		role := measure.Role{Dimension: measure.Width, Anchor: measure.AnchorLeft}
		if st.Dimension == "height" {
			role = measure.Role{Dimension: measure.Height, Anchor: measure.AnchorBottom}
		}
		if a, ok := anchorByName[st.Anchor]; ok {
			role.Anchor = a
		}
		m, ok := c.AddDimension(st.Shape, role)
		if !ok {
			fail("cannot dimension %q", st.Shape)
			return nil
		}
		if st.Measurement != "" {
			c.Measurements.Remove(m.ID)
			m.ID = st.Measurement
			c.Measurements.Add(m)
		}
	case "edit-label":
		ok, err := c.EditLabel(st.Measurement, st.Text)
		if err != nil {
			fail("%v", err)
		} else if !ok {
			fail("label of %q does not drive a shape", st.Measurement)
		}
	case "expect":
		if st.Expect != nil {
			for _, msg := range check(c, *st.Expect) {
				fail("%s", msg)
			}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, st.Op)
	}
	return nil
}

var anchorByName = map[string]measure.Anchor{
	"left": measure.AnchorLeft, "right": measure.AnchorRight,
	"top": measure.AnchorTop, "bottom": measure.AnchorBottom,
}

func handlePosition(c *interaction.Controller, shapeID, name string) (vector.Pt, bool) {
	s, ok := c.Scene.Get(shapeID)
	if !ok {
		return vector.Pt{}, false
	}
	h, ok := transform.ParseHandle(name)
	if !ok {
		return vector.Pt{}, false
	}
	for _, hs := range transform.Handles(s) {
		if hs.Handle == h {
			return hs.Position, true
		}
	}
	return vector.Pt{}, false
}

// sizeOf reports the user-facing width and height of s in local units.
func sizeOf(s shape.Shape) (w, h float64) {
	switch v := s.(type) {
	case *shape.Plane:
		return v.Width, v.Height
	case *shape.Circle:
		return 2 * v.RadiusX, 2 * v.RadiusY
	case *shape.Triangle:
		return 2 * v.HalfBase, v.Height
	case *shape.Line:
		return math.Abs(v.End.X - v.Start.X), math.Abs(v.End.Y - v.Start.Y)
	default:
		panic(fmt.Sprintf("replay: unknown shape type %T", s))
	}
}

func check(c *interaction.Controller, e Expect) []string {
	tol := e.Tolerance
	if tol == 0 {
		tol = 1e-6
	}
	var out []string
	cmp := func(what string, got float64, want *float64) {
		if want != nil && math.Abs(got-*want) > tol {
			out = append(out, fmt.Sprintf("%s = %.6g, want %.6g", what, got, *want))
		}
	}
	if e.Shape != "" {
		s, ok := c.Scene.Get(e.Shape)
		if !ok {
			out = append(out, fmt.Sprintf("shape %q not found", e.Shape))
		} else {
			w, h := sizeOf(s)
			xf := s.Transform()
			cmp(e.Shape+".width", w, e.Width)
			cmp(e.Shape+".height", h, e.Height)
			cmp(e.Shape+".x", xf.Position.X, e.X)
			cmp(e.Shape+".y", xf.Position.Y, e.Y)
			cmp(e.Shape+".rotation", xf.Rotation*180/math.Pi, e.Rotation)
		}
	}
	if e.Measurement != "" {
		m, ok := c.Measurements.Get(e.Measurement)
		if !ok {
			out = append(out, fmt.Sprintf("measurement %q not found", e.Measurement))
		} else {
			cmp(e.Measurement+".distance", m.Distance, e.Distance)
			cmp(e.Measurement+".offset", m.Offset, e.Offset)
			if e.Attached != nil && m.Attached() != *e.Attached {
				out = append(out, fmt.Sprintf("%s.attached = %v", e.Measurement, m.Attached()))
			}
		}
	}
	if e.Measurements != nil && c.Measurements.Len() != *e.Measurements {
		out = append(out, fmt.Sprintf("measurements = %d, want %d", c.Measurements.Len(), *e.Measurements))
	}
	if e.Mode != "" && c.Mode().String() != e.Mode {
		out = append(out, fmt.Sprintf("mode = %s, want %s", c.Mode(), e.Mode))
	}
	if e.Phase != "" && c.MeasurePhase().String() != e.Phase {
		out = append(out, fmt.Sprintf("phase = %s, want %s", c.MeasurePhase(), e.Phase))
	}
	return out
}

func summarize(c *interaction.Controller, rep *Report) {
	for _, s := range c.Scene.Shapes() {
		w, h := sizeOf(s)
		xf := s.Transform()
		rep.Shapes = append(rep.Shapes, ShapeSummary{
			ID: s.ID(), Kind: s.Kind().String(),
			X: xf.Position.X, Y: xf.Position.Y, Rotation: xf.Rotation * 180 / math.Pi,
			Width: w, Height: h,
		})
	}
	opts := c.Options()
	for _, m := range c.Measurements.All() {
		ms := MeasurementSummary{
			ID: m.ID, Distance: m.Distance, Offset: m.Offset,
			Label:    measure.FormatLength(m.Distance, opts.Units),
			Attached: m.Attached(),
		}
		if m.Role != nil {
			ms.Role = m.Role.String()
		}
		rep.Measurements = append(rep.Measurements, ms)
	}
	budget := float64(telemetry.InteractiveBudget.Microseconds()) / 1000
	for _, st := range c.Recorder.Stats() {
		rep.Latency = append(rep.Latency, LatencySummary{
			Handler: st.Name, Count: st.Count,
			P50us: st.P50.Microseconds(), P95us: st.P95.Microseconds(), MaxUs: st.Max.Microseconds(),
			Budget: budget, Over: st.OverBudget(telemetry.InteractiveBudget),
		})
	}
}
