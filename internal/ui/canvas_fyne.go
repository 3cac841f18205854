//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"godraft/internal/interaction"
	"godraft/internal/measure"
	"godraft/internal/projector"
	"godraft/internal/shape"
	"godraft/internal/transform"
	"godraft/internal/vector"
)

var (
	bgColor     = color.RGBA{R: 30, G: 30, B: 34, A: 255}
	shapeColor  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
	selColor    = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	rotColor    = color.RGBA{R: 255, G: 170, B: 0, A: 255}
	guideColor  = color.RGBA{R: 255, G: 0, B: 170, A: 255}
	snapColor   = color.RGBA{R: 120, G: 200, B: 0, A: 255}
	previewLine = color.RGBA{R: 120, G: 200, B: 0, A: 160}
)

// handleSize is the device-pixel side of a drawn handle square.
const handleSize = 8

// DraftCanvas shows a drawing and forwards pointer input to an
// interaction.Controller. It only renders; all editing state lives in
// the controller.
type DraftCanvas struct {
	widget.BaseWidget
	ctrl *interaction.Controller

	shift   bool
	panning bool
	// OnChange runs after any event that may have changed the drawing.
	OnChange func()
}

func NewDraftCanvas(ctrl *interaction.Controller) *DraftCanvas {
	dc := &DraftCanvas{ctrl: ctrl}
	dc.ExtendBaseWidget(dc)
	return dc
}

func (d *DraftCanvas) Controller() *interaction.Controller { return d.ctrl }

// PreferredSize sets a decent default size for the widget.
func (d *DraftCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 600) }

func (d *DraftCanvas) Resize(s fyne.Size) {
	d.ctrl.Viewport = projector.Viewport{Width: float64(s.Width), Height: float64(s.Height)}
	d.BaseWidget.Resize(s)
}

func device(p fyne.Position) vector.Pt { return vector.P(float64(p.X), float64(p.Y)) }

func (d *DraftCanvas) event(p fyne.Position) interaction.Event {
	return interaction.Event{Screen: device(p), Shift: d.shift}
}

func (d *DraftCanvas) changed() {
	d.Refresh()
	if d.OnChange != nil {
		d.OnChange()
	}
}

// MouseDown starts a gesture. Presses that hit nothing pan the view.
func (d *DraftCanvas) MouseDown(e *desktop.MouseEvent) {
	d.shift = e.Modifier&fyne.KeyModifierShift != 0
	if e.Button == desktop.MouseButtonSecondary {
		d.panning = true
		return
	}
	if d.ctrl.Tool() == interaction.ToolSelect {
		d.panning = !d.ctrl.PointerDown(d.event(e.Position))
	}
	d.changed()
}

func (d *DraftCanvas) MouseUp(e *desktop.MouseEvent) {
	d.shift = e.Modifier&fyne.KeyModifierShift != 0
	d.panning = false
	if d.ctrl.PointerUp(d.event(e.Position)) {
		d.changed()
	}
}

func (d *DraftCanvas) Dragged(e *fyne.DragEvent) {
	if d.panning {
		d.ctrl.Projector.Pan(float64(e.Dragged.DX), float64(e.Dragged.DY))
		d.Refresh()
		return
	}
	if d.ctrl.PointerMove(d.event(e.Position)) {
		d.changed()
	}
}

func (d *DraftCanvas) DragEnd() {
	d.panning = false
	if d.ctrl.PointerUp(interaction.Event{Shift: d.shift}) {
		d.changed()
	}
}

// MouseMoved feeds hover feedback such as the measure preview.
func (d *DraftCanvas) MouseMoved(e *desktop.MouseEvent) {
	d.shift = e.Modifier&fyne.KeyModifierShift != 0
	d.ctrl.PointerMove(d.event(e.Position))
	d.Refresh()
}

func (d *DraftCanvas) MouseIn(*desktop.MouseEvent) {}
func (d *DraftCanvas) MouseOut()                   {}

func (d *DraftCanvas) Tapped(e *fyne.PointEvent) {
	if d.ctrl.Tool() != interaction.ToolMeasure {
		return
	}
	if _, done := d.ctrl.Click(d.event(e.Position)); done {
		d.changed()
		return
	}
	d.Refresh()
}

// Scrolled zooms about the pointer.
func (d *DraftCanvas) Scrolled(e *fyne.ScrollEvent) {
	factor := 1 + float64(e.Scrolled.DY)*0.005
	if factor <= 0.1 {
		factor = 0.1
	}
	d.ctrl.Projector.ZoomAt(device(e.Position), d.ctrl.Viewport, factor)
	d.Refresh()
}

func (d *DraftCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(bgColor)
	return &draftRenderer{dc: d, bg: bg, objects: []fyne.CanvasObject{bg}}
}

// draftRenderer keeps pools of lines, texts and handle squares and
// repositions them on every layout.
type draftRenderer struct {
	dc      *DraftCanvas
	bg      *canvas.Rectangle
	lines   []*canvas.Line
	texts   []*canvas.Text
	squares []*canvas.Rectangle
	objects []fyne.CanvasObject

	nl, nt, ns int
}

func (r *draftRenderer) Destroy()                     {}
func (r *draftRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *draftRenderer) MinSize() fyne.Size           { return r.dc.PreferredSize() }
func (r *draftRenderer) Refresh()                     { r.Layout(r.dc.Size()); canvas.Refresh(r.dc) }

func (r *draftRenderer) screen(w vector.Pt) (fyne.Position, bool) {
	c := r.dc.ctrl
	p, ok := c.Projector.ToScreen(w, c.Viewport)
	return fyne.NewPos(float32(p.X), float32(p.Y)), ok
}

func (r *draftRenderer) line(a, b vector.Pt, col color.Color, width float32) {
	pa, ok1 := r.screen(a)
	pb, ok2 := r.screen(b)
	if !ok1 || !ok2 {
		return
	}
	if r.nl == len(r.lines) {
		r.lines = append(r.lines, canvas.NewLine(col))
	}
	l := r.lines[r.nl]
	r.nl++
	l.StrokeColor = col
	l.StrokeWidth = width
	l.Position1 = pa
	l.Position2 = pb
	l.Show()
}

func (r *draftRenderer) polyline(pts []vector.Pt, col color.Color, width float32) {
	for i := 1; i < len(pts); i++ {
		r.line(pts[i-1], pts[i], col, width)
	}
}

func (r *draftRenderer) text(at fyne.Position, s string, col color.Color) {
	if r.nt == len(r.texts) {
		r.texts = append(r.texts, canvas.NewText("", col))
	}
	t := r.texts[r.nt]
	r.nt++
	t.Text = s
	t.Color = col
	t.TextSize = 12
	t.Alignment = fyne.TextAlignCenter
	sz := t.MinSize()
	t.Resize(sz)
	t.Move(fyne.NewPos(at.X-sz.Width/2, at.Y-sz.Height/2))
	t.Show()
}

func (r *draftRenderer) square(w vector.Pt, col color.Color) {
	p, ok := r.screen(w)
	if !ok {
		return
	}
	if r.ns == len(r.squares) {
		r.squares = append(r.squares, canvas.NewRectangle(col))
	}
	s := r.squares[r.ns]
	r.ns++
	s.FillColor = col
	s.Resize(fyne.NewSize(handleSize, handleSize))
	s.Move(fyne.NewPos(p.X-handleSize/2, p.Y-handleSize/2))
	s.Show()
}

func (r *draftRenderer) dimension(m *measure.Measurement, opts interaction.Options) {
	g := measure.Derive(m, opts.Draw, opts.Units)
	col := m.Style.LineColor
	r.line(g.ExtStart[0], g.ExtStart[1], col, 1)
	r.line(g.ExtEnd[0], g.ExtEnd[1], col, 1)
	r.line(g.DimStart, g.DimEnd, col, 1)
	for _, a := range g.Arrows {
		r.polyline([]vector.Pt{a.Left, a.Tip, a.Right}, col, 1)
	}
}

func (r *draftRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))
	r.nl, r.nt, r.ns = 0, 0, 0

	c := r.dc.ctrl
	opts := c.Options()
	for _, s := range c.Scene.Shapes() {
		if shape.Degenerate(s) {
			continue
		}
		col := color.Color(shapeColor)
		if s.ID() == c.Selected() {
			col = selColor
		}
		r.polyline(shape.WorldOutline(s), col, 1.5)
	}
	if s, ok := c.Scene.Get(c.Selected()); ok {
		for _, h := range transform.Handles(s) {
			col := color.Color(selColor)
			if h.Handle == transform.HandleRotate {
				col = rotColor
			}
			r.square(h.Position, col)
		}
	}
	for _, m := range c.Measurements.All() {
		r.dimension(m, opts)
	}
	for _, la := range c.LabelAnchors(c.Viewport) {
		m, _ := c.Measurements.Get(la.MeasurementID)
		tc := m.Style.TextColor
		tc.A = uint8(float64(tc.A) * m.Style.LabelOpacity())
		r.text(fyne.NewPos(float32(la.Screen.X), float32(la.Screen.Y)), la.Text, tc)
	}

	ov := c.Overlay()
	for _, g := range ov.Guides {
		r.line(g.From, g.To, guideColor, 1)
	}
	if ov.SnapEdge != nil {
		r.line(ov.SnapEdge.Start, ov.SnapEdge.End, snapColor, 2)
	}
	if ov.SnapPoint != nil {
		r.square(ov.SnapPoint.Position, snapColor)
	}
	if pv := ov.Preview; pv != nil {
		if pv.Segment != nil {
			r.line(pv.Segment[0], pv.Segment[1], previewLine, 1)
		}
		if pv.Pending != nil {
			r.dimension(pv.Pending, opts)
		}
	}

	for _, l := range r.lines[r.nl:] {
		l.Hide()
	}
	for _, t := range r.texts[r.nt:] {
		t.Hide()
	}
	for _, s := range r.squares[r.ns:] {
		s.Hide()
	}
	objs := make([]fyne.CanvasObject, 0, 1+len(r.lines)+len(r.texts)+len(r.squares))
	objs = append(objs, r.bg)
	for _, l := range r.lines {
		objs = append(objs, l)
	}
	for _, s := range r.squares {
		objs = append(objs, s)
	}
	for _, t := range r.texts {
		objs = append(objs, t)
	}
	r.objects = objs
}
