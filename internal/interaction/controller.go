/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"log/slog"

	"godraft/internal/align"
	"godraft/internal/features"
	"godraft/internal/measure"
	"godraft/internal/projector"
	"godraft/internal/shape"
	"godraft/internal/snap"
	"godraft/internal/telemetry"
	"godraft/internal/transform"
	"godraft/internal/vector"
)

// Event is a pointer event in device pixels with the modifier state.
type Event struct {
	Screen vector.Pt
	Shift  bool
}

// Overlay is what the renderer should draw this tick on top of the scene.
// Fields left empty must be cleared.
type Overlay struct {
	SnapPoint *features.SnapPoint
	SnapEdge  *features.SnapEdge
	Guides    []align.GuideLine
	Preview   *measure.Preview
}

// LabelAnchor is a measurement label in device pixels.
type LabelAnchor struct {
	MeasurementID string
	Screen        vector.Pt
	Text          string
}

// Controller routes pointer events to the geometry engines. It is not
// safe for concurrent use; call it from the UI goroutine.
type Controller struct {
	Scene        *shape.Scene
	Measurements *measure.Set
	Projector    *projector.Projector
	Viewport     projector.Viewport
	Picker       Picker
	Recorder     *telemetry.Recorder
	Logger       *slog.Logger

	opts     Options
	mode     Mode
	tool     Tool
	selected string
	engine   *transform.Engine
	measurer *measure.Tool
	overlay  Overlay
}

// New wires a controller over scene. The projector uses the default camera
// with the grid options from opts.
func New(scene *shape.Scene, vp projector.Viewport, opts Options) *Controller {
	if scene == nil {
		scene = shape.NewScene()
	}
	c := &Controller{
		Scene:        scene,
		Measurements: measure.NewSet(),
		Projector:    projector.New(projector.DefaultCamera(), opts.Projector),
		Viewport:     vp,
		opts:         opts,
		mode:         Idle{},
		engine:       transform.New(opts.Transform),
		measurer:     measure.NewTool(opts.Measure),
	}
	c.Picker = &ScenePicker{
		Scene:          scene,
		Measurements:   c.Measurements,
		Draw:           opts.Draw,
		Tolerance:      opts.PickTolerance,
		LabelTolerance: opts.LabelTolerance,
	}
	c.engine.OnChange = func(s shape.Shape) { c.Measurements.Retrack(s) }
	return c
}

// SetLogger routes debug output of the controller and its engines to l.
func (c *Controller) SetLogger(l *slog.Logger) {
	c.Logger = l
	c.engine.Logger = l
	c.measurer.Logger = l
}

func (c *Controller) Options() Options { return c.opts }
func (c *Controller) Mode() Mode       { return c.mode }
func (c *Controller) Tool() Tool       { return c.tool }
func (c *Controller) Selected() string { return c.selected }
func (c *Controller) Overlay() Overlay { return c.overlay }

// Engine exposes the transform engine, e.g. as a measure.Resizer.
func (c *Controller) Engine() *transform.Engine { return c.engine }

// MeasurePhase reports the measure tool state.
func (c *Controller) MeasurePhase() measure.Phase { return c.measurer.Phase() }

// SetTool switches tools. Leaving the measure tool drops pending clicks.
func (c *Controller) SetTool(t Tool) {
	if c.tool == ToolMeasure && t != ToolMeasure {
		c.measurer.Cancel()
	}
	c.tool = t
	c.overlay = Overlay{}
}

// Select makes id the selected shape; an unknown id clears the selection.
func (c *Controller) Select(id string) {
	if _, ok := c.Scene.Get(id); !ok {
		id = ""
	}
	c.selected = id
}

func (c *Controller) world(ev Event) (vector.Pt, bool) {
	return c.Projector.ProjectPlanar(ev.Screen, c.Viewport)
}

func (c *Controller) setMode(next Mode) bool {
	m, ok := begin(c.mode, next)
	if ok {
		c.debug("mode", slog.String("from", c.mode.String()), slog.String("to", m.String()))
	}
	c.mode = m
	return ok
}

// PointerDown starts a gesture on whatever lies under the pointer.
func (c *Controller) PointerDown(ev Event) bool {
	defer c.Recorder.Time("pointer-down")()
	c.overlay = Overlay{}
	if _, idle := c.mode.(Idle); !idle || c.tool != ToolSelect {
		return false
	}
	p, ok := c.world(ev)
	if !ok {
		return false
	}
	hit := c.Picker.Pick(p, c.selected)
	switch hit.Kind {
	case HitLabel:
		if !c.Measurements.BeginLabelDrag(hit.MeasurementID) {
			return false
		}
		if !c.setMode(LabelDragging{MeasurementID: hit.MeasurementID}) {
			c.Measurements.EndLabelDrag()
			return false
		}
		return true
	case HitHandle:
		s, ok := c.Scene.Get(hit.ShapeID)
		if !ok || !c.engine.Begin(s, hit.Handle, p) {
			return false
		}
		var next Mode = Resizing{ShapeID: s.ID(), Handle: hit.Handle}
		if hit.Handle == transform.HandleRotate {
			next = Rotating{ShapeID: s.ID()}
		}
		if !c.setMode(next) {
			c.engine.End()
			return false
		}
		return true
	case HitShape:
		s, _ := c.Scene.Get(hit.ShapeID)
		c.selected = hit.ShapeID
		pos := s.Transform().Position
		return c.setMode(Dragging{ShapeID: hit.ShapeID, Grab: vector.P(pos.X-p.X, pos.Y-p.Y)})
	default:
		c.selected = ""
		return false
	}
}

// PointerMove advances the active gesture, or refreshes the hover
// feedback when idle.
func (c *Controller) PointerMove(ev Event) bool {
	defer c.Recorder.Time("pointer-move")()
	c.overlay = Overlay{}
	p, ok := c.world(ev)
	if !ok {
		return false
	}
	switch m := c.mode.(type) {
	case Dragging:
		s, ok := c.Scene.Get(m.ShapeID)
		if !ok {
			c.mode = release(c.mode)
			return false
		}
		proposed := vector.P(p.X+m.Grab.X, p.Y+m.Grab.Y)
		out := c.opts.Align.Resolve(s, proposed, c.Scene.Others(s.ID()))
		c.overlay.Guides = out.Guides
		c.engine.Translate(s, out.Position)
		return true
	case Resizing, Rotating:
		return c.engine.Update(p, transform.Modifiers{Shift: ev.Shift})
	case LabelDragging:
		return c.Measurements.DragLabel(p, c.opts.Measure.MaxOffset)
	case Idle:
		if c.tool == ToolMeasure {
			pv := c.measurer.Hover(p, c.Scene.Shapes())
			c.overlay.Preview = &pv
			if pv.Snap != nil {
				sp := pv.Snap.Point
				c.overlay.SnapPoint = &sp
				c.overlay.SnapEdge = pv.Snap.Edge
			}
		}
	}
	return false
}

// PointerUp ends any active gesture.
func (c *Controller) PointerUp(Event) bool {
	defer c.Recorder.Time("pointer-up")()
	c.overlay = Overlay{}
	switch c.mode.(type) {
	case Idle:
		return false
	case Resizing, Rotating:
		c.engine.End()
	case LabelDragging:
		c.Measurements.EndLabelDrag()
	}
	c.debug("mode", slog.String("from", c.mode.String()), slog.String("to", "idle"))
	c.mode = release(c.mode)
	return true
}

// Click feeds the measure tool. It returns the measurement created by a
// finishing third click.
func (c *Controller) Click(ev Event) (*measure.Measurement, bool) {
	defer c.Recorder.Time("click")()
	if c.tool != ToolMeasure {
		return nil, false
	}
	p, ok := c.world(ev)
	if !ok {
		return nil, false
	}
	m, done := c.measurer.Click(p, c.Scene.Shapes())
	if done {
		c.Measurements.Add(m)
		c.debug("measurement added", slog.String("id", m.ID), slog.Float64("distance", m.Distance))
		c.overlay = Overlay{}
	}
	return m, done
}

// CancelMeasure drops pending measure clicks.
func (c *Controller) CancelMeasure() {
	c.measurer.Cancel()
	c.overlay.Preview = nil
}

// LabelAnchors projects every label to device pixels. It does not mutate
// anything and may run between any two events.
func (c *Controller) LabelAnchors(vp projector.Viewport) []LabelAnchor {
	all := c.Measurements.All()
	out := make([]LabelAnchor, 0, len(all))
	for _, m := range all {
		g := measure.Derive(m, c.opts.Draw, c.opts.Units)
		sp, ok := c.Projector.ToScreen(g.Label, vp)
		if !ok {
			continue
		}
		out = append(out, LabelAnchor{MeasurementID: m.ID, Screen: sp, Text: g.Text})
	}
	return out
}

// DeleteShape removes a shape. Measurements attached to it become free
// dimensions, and a gesture on it ends.
func (c *Controller) DeleteShape(id string) bool {
	if sid, ok := shapeOf(c.mode); ok && sid == id {
		c.engine.End()
		c.mode = release(c.mode)
	}
	if !c.Scene.Remove(id) {
		return false
	}
	if c.selected == id {
		c.selected = ""
	}
	n := c.Measurements.Orphan(id)
	c.debug("shape deleted", slog.String("id", id), slog.Int("orphaned", n))
	return true
}

// DeleteMeasurement removes a measurement, ending a label drag on it.
func (c *Controller) DeleteMeasurement(id string) bool {
	if m, ok := c.mode.(LabelDragging); ok && m.MeasurementID == id {
		c.mode = release(c.mode)
	}
	return c.Measurements.Remove(id)
}

// EditLabel parses text as a length and, for role measurements, resizes
// the owning shape to match.
func (c *Controller) EditLabel(measurementID, text string) (bool, error) {
	m, ok := c.Measurements.Get(measurementID)
	if !ok {
		return false, nil
	}
	v, err := measure.ParseLength(text, c.opts.Units)
	if err != nil {
		return false, err
	}
	return c.Measurements.ApplyLength(m, v, c.Scene, c.engine), nil
}

// AddDimension attaches a width or height dimension to a plane.
func (c *Controller) AddDimension(shapeID string, role measure.Role) (*measure.Measurement, bool) {
	s, ok := c.Scene.Get(shapeID)
	if !ok {
		return nil, false
	}
	p, ok := s.(*shape.Plane)
	if !ok {
		return nil, false
	}
	m := measure.NewPlaneDimension(p, role)
	c.Measurements.Add(m)
	return m, true
}

// SnapAt resolves a snap for a world point with the controller options.
func (c *Controller) SnapAt(p vector.Pt) (snap.Result, bool) {
	return snap.ResolveShapes(p, c.Scene.Shapes(), c.opts.Snap)
}

func (c *Controller) debug(msg string, attrs ...any) {
	if c.Logger != nil {
		c.Logger.Debug(msg, attrs...)
	}
}
