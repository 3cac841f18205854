/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package align

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

const eps = 1e-9

func planeAt(id string, w, h float64, pos vector.Pt) *shape.Plane {
	p := shape.NewPlane(id, w, h)
	xf := p.Transform()
	xf.Position = pos
	p.SetTransform(xf)
	return p
}

func findType(cands []Candidate, t Type) (Candidate, bool) {
	for _, c := range cands {
		if c.Type == t {
			return c, true
		}
	}
	return Candidate{}, false
}

func TestEdgeLeftCandidateNearbyPlanes(t *testing.T) {
	target := planeAt("target", 2, 2, vector.P(2, 0)) // left edge at 1
	dragged := planeAt("dragged", 2, 2, vector.P(0, 5))
	cands := FindCandidates(dragged, vector.P(2.02, 5), []shape.Shape{target}, 0.5)
	c, ok := findType(cands, EdgeLeft)
	if !ok {
		t.Fatalf("expected edge-left candidate, got %+v", cands)
	}
	if c.TargetID != "target" || !scalar.EqualWithinAbs(c.Distance, 0.02, eps) || !scalar.EqualWithinAbs(c.Value, 1, eps) {
		t.Fatalf("unexpected candidate %+v", c)
	}
	for i := 1; i < len(cands); i++ {
		if cands[i].Distance < cands[i-1].Distance {
			t.Fatalf("candidates not sorted: %+v", cands)
		}
	}
}

func TestBestOfKeepsOnePerAxis(t *testing.T) {
	cands := []Candidate{
		{Type: EdgeLeft, TargetID: "a", Distance: 0.01},
		{Type: CenterY, TargetID: "b", Distance: 0.02},
		{Type: CenterX, TargetID: "c", Distance: 0.03},
		{Type: EdgeTop, TargetID: "d", Distance: 0.04},
	}
	best := BestOf(cands)
	if best.Vertical == nil || best.Vertical.Type != EdgeLeft {
		t.Fatalf("vertical = %+v", best.Vertical)
	}
	if best.Horizontal == nil || best.Horizontal.Type != CenterY {
		t.Fatalf("horizontal = %+v", best.Horizontal)
	}
	if !BestOf(nil).Empty() {
		t.Fatalf("no candidates must give an empty best")
	}
}

func TestVerticalFamilies(t *testing.T) {
	vertical := []Type{CenterX, EdgeLeft, EdgeRight, AdjacentLeftRight, AdjacentRightLeft}
	horizontal := []Type{CenterY, EdgeTop, EdgeBottom, AdjacentTopBottom, AdjacentBottomTop}
	for _, ty := range vertical {
		if !ty.Vertical() {
			t.Fatalf("%v should be vertical", ty)
		}
	}
	for _, ty := range horizontal {
		if ty.Vertical() {
			t.Fatalf("%v should be horizontal", ty)
		}
	}
}

func TestResolveSnapsAndEmitsGuides(t *testing.T) {
	target := planeAt("target", 2, 2, vector.P(2, 0))
	dragged := planeAt("dragged", 2, 2, vector.P(0, 5))
	r := Resolver{Enabled: true, Threshold: 0.5}
	out := r.Resolve(dragged, vector.P(2.02, 5), []shape.Shape{target, dragged})
	if !scalar.EqualWithinAbs(out.Position.X, 2, eps) || out.Position.Y != 5 {
		t.Fatalf("position = %v, want (2,5)", out.Position)
	}
	if out.Best.Horizontal != nil {
		t.Fatalf("no horizontal alignment expected, got %+v", out.Best.Horizontal)
	}
	if len(out.Guides) != 1 || out.Guides[0].Orientation != "vertical" {
		t.Fatalf("guides = %+v", out.Guides)
	}
	g := out.Guides[0]
	if g.From.Y != -1 || g.To.Y != 6 {
		t.Fatalf("guide should span both boxes, got %v -> %v", g.From, g.To)
	}
}

func TestResolveDisabledIsIdentity(t *testing.T) {
	target := planeAt("target", 2, 2, vector.P(2, 0))
	dragged := planeAt("dragged", 2, 2, vector.P(0, 5))
	out := Resolver{Enabled: false, Threshold: 0.5}.Resolve(dragged, vector.P(2.02, 5), []shape.Shape{target})
	if out.Position != vector.P(2.02, 5) || len(out.Guides) != 0 {
		t.Fatalf("disabled resolver changed the drag: %+v", out)
	}
}

func TestAdjacentDocking(t *testing.T) {
	target := planeAt("target", 2, 2, vector.P(0, 0)) // right edge at 1
	dragged := planeAt("dragged", 2, 2, vector.P(5, 0))
	out := Resolver{Enabled: true, Threshold: 0.5}.Resolve(dragged, vector.P(2.1, 3), []shape.Shape{target})
	if out.Best.Vertical == nil || out.Best.Vertical.Type != AdjacentLeftRight {
		t.Fatalf("expected adjacent-left-right, got %+v", out.Best.Vertical)
	}
	if !scalar.EqualWithinAbs(out.Position.X, 2, eps) {
		t.Fatalf("dragged left edge should dock at 1, position %v", out.Position)
	}
}

func TestTrianglesDoNotAlign(t *testing.T) {
	tri := shape.NewTriangle("tri", 1, 2)
	target := planeAt("target", 2, 2, vector.P(0, 0))
	if got := FindCandidates(tri, vector.P(0, 0), []shape.Shape{target}, 0.5); len(got) != 0 {
		t.Fatalf("triangle produced candidates: %+v", got)
	}
	dragged := planeAt("dragged", 2, 2, vector.P(0, 0))
	if got := FindCandidates(dragged, vector.P(0, 0), []shape.Shape{tri}, 0.5); len(got) != 0 {
		t.Fatalf("triangle target produced candidates: %+v", got)
	}
}

func TestTypeStrings(t *testing.T) {
	if EdgeLeft.String() != "edge-left" || AdjacentBottomTop.String() != "adjacent-bottom-top" {
		t.Fatalf("unexpected names %q %q", EdgeLeft, AdjacentBottomTop)
	}
}

func TestGuidePositionsKeepThreeDecimals(t *testing.T) {
	a := Box{Left: 0, Right: 1, Bottom: 0, Top: 1}
	b := Box{Left: 0.5, Right: 2, Bottom: -1, Top: 3}
	v := guideForVertical(&Candidate{Type: EdgeLeft, TargetID: "b", Value: 1.23456}, a, b)
	if v.Position != 1.235 || v.From != vector.P(1.235, -1) || v.To != vector.P(1.235, 3) {
		t.Fatalf("vertical guide = %+v", v)
	}
	h := guideForHorizontal(&Candidate{Type: CenterY, TargetID: "b", Value: -0.00049}, a, b)
	if h.Position != 0 || h.Kind != "center" || h.From.X != 0 || h.To.X != 2 {
		t.Fatalf("horizontal guide = %+v", h)
	}
}
