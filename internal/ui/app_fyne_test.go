//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based canvas. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"

	"godraft/internal/interaction"
	"godraft/internal/measure"
	"godraft/internal/projector"
	"godraft/internal/shape"
)

func newCanvas(t *testing.T) (*DraftCanvas, *draftRenderer) {
	t.Helper()
	scene := shape.NewScene(shape.NewPlane("p", 2, 2))
	ctrl := interaction.New(scene, projector.Viewport{Width: 800, Height: 600}, interaction.DefaultOptions())
	dc := NewDraftCanvas(ctrl)
	r, ok := dc.CreateRenderer().(*draftRenderer)
	if !ok {
		t.Fatalf("expected draftRenderer, got %T", dc.CreateRenderer())
	}
	return dc, r
}

func visibleLines(r *draftRenderer) []*canvas.Line {
	var out []*canvas.Line
	for _, l := range r.lines {
		if l.Visible() {
			out = append(out, l)
		}
	}
	return out
}

func TestDraftCanvasDefaults(t *testing.T) {
	dc, _ := newCanvas(t)
	sz := dc.PreferredSize()
	if sz.Width != 800 || sz.Height != 600 {
		t.Fatalf("unexpected PreferredSize: %v", sz)
	}
	dc.Resize(fyne.NewSize(1000, 500))
	if vp := dc.Controller().Viewport; vp.Width != 1000 || vp.Height != 500 {
		t.Fatalf("viewport not tracked: %+v", vp)
	}
}

func TestDraftCanvasLayoutDrawsOutlineAndHandles(t *testing.T) {
	dc, r := newCanvas(t)
	r.Layout(fyne.NewSize(800, 600))
	// closed quad outline
	if n := len(visibleLines(r)); n != 4 {
		t.Fatalf("lines = %d, want 4", n)
	}
	if r.ns != 0 {
		t.Fatalf("no handles expected without selection")
	}

	dc.Controller().Select("p")
	r.Layout(fyne.NewSize(800, 600))
	if r.ns != 9 {
		t.Fatalf("handles = %d, want 8 resize + rotate", r.ns)
	}

	// the plate is centred in the viewport
	l := r.lines[0]
	if l.Position1.X < 300 || l.Position1.X > 500 {
		t.Fatalf("outline not centred: %v", l.Position1)
	}
}

func TestDraftCanvasDrawsDimensionAndLabel(t *testing.T) {
	dc, r := newCanvas(t)
	if _, ok := dc.Controller().AddDimension("p", measure.Role{Dimension: measure.Width, Anchor: measure.AnchorLeft}); !ok {
		t.Fatalf("AddDimension failed")
	}
	r.Layout(fyne.NewSize(800, 600))
	// outline, two extension lines, the dimension line and two arrow heads
	if n := len(visibleLines(r)); n != 4+3+4 {
		t.Fatalf("lines = %d", n)
	}
	if r.nt != 1 || r.texts[0].Text != measure.FormatLength(2, "m") {
		t.Fatalf("label not drawn")
	}

	dc.Controller().DeleteShape("p")
	r.Layout(fyne.NewSize(800, 600))
	if n := len(visibleLines(r)); n != 3+4 {
		t.Fatalf("pooled lines not hidden, visible = %d", n)
	}
}

func TestScrollZoomsAboutPointer(t *testing.T) {
	dc, _ := newCanvas(t)
	before := dc.Controller().Projector.Camera.Zoom
	dc.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(400, 300)}, Scrolled: fyne.NewDelta(0, 100)})
	if dc.Controller().Projector.Camera.Zoom <= before {
		t.Fatalf("zoom did not grow")
	}
}
