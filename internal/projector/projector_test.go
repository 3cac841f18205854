/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package projector

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"

	"godraft/internal/vector"
)

const eps = 1e-6

var vp = Viewport{Width: 800, Height: 600}

func near(a, b vector.Pt) bool {
	return scalar.EqualWithinAbs(a.X, b.X, eps) && scalar.EqualWithinAbs(a.Y, b.Y, eps)
}

func TestProjectCentreAndAxes(t *testing.T) {
	p := New(DefaultCamera(), Options{})
	cases := []struct {
		device vector.Pt
		want   vector.Pt
	}{
		{vector.P(400, 300), vector.P(0, 0)},
		{vector.P(450, 300), vector.P(1, 0)},
		{vector.P(400, 250), vector.P(0, 1)}, // device y grows down, world y up
		{vector.P(0, 0), vector.P(-8, 6)},
	}
	for _, c := range cases {
		got, ok := p.ProjectPlanar(c.device, vp)
		if !ok || !near(got, c.want) {
			t.Fatalf("Project(%v) = %v %v, want %v", c.device, got, ok, c.want)
		}
	}
}

func TestProjectGridSnapKeepsDepth(t *testing.T) {
	p := New(DefaultCamera(), Options{Grid: true, GridStep: 1})
	p.Plane.Point.Z = 2.5
	got, ok := p.Project(vector.P(420, 270), vp) // (0.4, 0.6)
	if !ok {
		t.Fatalf("expected intersection")
	}
	if got.X != 0 || got.Y != 1 {
		t.Fatalf("grid snap = %+v", got)
	}
	if !scalar.EqualWithinAbs(got.Z, 2.5, eps) {
		t.Fatalf("depth changed: %v", got.Z)
	}
}

func TestIntersectPlaneEdgeOn(t *testing.T) {
	if _, ok := IntersectPlane(r3.Vec{Z: 1}, r3.Vec{X: 1}, DrawingPlane); ok {
		t.Fatalf("parallel ray must not intersect")
	}
}

func TestDegenerateViewport(t *testing.T) {
	p := New(DefaultCamera(), Options{})
	if _, ok := p.Project(vector.P(1, 1), Viewport{}); ok {
		t.Fatalf("zero viewport must not project")
	}
}

func TestToScreenInvertsProject(t *testing.T) {
	cam := DefaultCamera()
	cam.Center = vector.P(3, -2)
	cam.Zoom = 37
	p := New(cam, Options{})
	for _, d := range []vector.Pt{vector.P(10, 20), vector.P(400, 300), vector.P(799, 1)} {
		w, ok := p.ProjectPlanar(d, vp)
		if !ok {
			t.Fatalf("project %v failed", d)
		}
		s, ok := p.ToScreen(w, vp)
		if !ok || !near(s, d) {
			t.Fatalf("ToScreen(Project(%v)) = %v", d, s)
		}
	}
}

func TestZoomAtKeepsCursorPoint(t *testing.T) {
	p := New(DefaultCamera(), Options{})
	cursor := vector.P(600, 100)
	before, _ := p.ProjectPlanar(cursor, vp)
	p.ZoomAt(cursor, vp, 2)
	after, _ := p.ProjectPlanar(cursor, vp)
	if !near(before, after) {
		t.Fatalf("zoom moved the cursor point: %v -> %v", before, after)
	}
	if p.Camera.Zoom != 100 {
		t.Fatalf("zoom = %v", p.Camera.Zoom)
	}
}

func TestPanFollowsDrag(t *testing.T) {
	p := New(DefaultCamera(), Options{})
	w0, _ := p.ProjectPlanar(vector.P(400, 300), vp)
	p.Pan(50, 0)
	// the content moved right, so the same pixel now sees a point further left
	w1, _ := p.ProjectPlanar(vector.P(400, 300), vp)
	if !near(w1, vector.P(w0.X-1, w0.Y)) {
		t.Fatalf("pan: %v -> %v", w0, w1)
	}
}
