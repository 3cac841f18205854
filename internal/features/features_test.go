/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package features

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

func near(a, b vector.Pt) bool {
	return scalar.EqualWithinAbs(a.X, b.X, 1e-9) && scalar.EqualWithinAbs(a.Y, b.Y, 1e-9)
}

func hasPoint(pts []SnapPoint, p vector.Pt, k PointKind) bool {
	for _, sp := range pts {
		if sp.Kind == k && near(sp.Position, p) {
			return true
		}
	}
	return false
}

func count(pts []SnapPoint, k PointKind) int {
	n := 0
	for _, p := range pts {
		if p.Kind == k {
			n++
		}
	}
	return n
}

func TestPlaneFeatures(t *testing.T) {
	p := shape.NewPlane("p", 2, 4)
	p.SetTransform(shape.Transform{Position: vector.P(10, 0), Scale: vector.P(1, 1)})

	idx := Build([]shape.Shape{p}, Options{})
	if count(idx.Points, Vertex) != 4 || count(idx.Points, Midpoint) != 4 || count(idx.Points, Center) != 1 {
		t.Fatalf("unexpected point counts: %+v", idx.Points)
	}
	if len(idx.Edges) != 4 {
		t.Fatalf("expected 4 boundary edges without guides, got %d", len(idx.Edges))
	}
	if !hasPoint(idx.Points, vector.P(11, 2), Vertex) || !hasPoint(idx.Points, vector.P(10, 0), Center) {
		t.Fatalf("missing world-space corner/center")
	}
	if !hasPoint(idx.Points, vector.P(9, 0), Midpoint) {
		t.Fatalf("missing left midpoint")
	}

	withGuides := Build([]shape.Shape{p}, Options{IncludeGuides: true})
	guides := 0
	for _, e := range withGuides.Edges {
		if e.Guide {
			guides++
		}
	}
	if len(withGuides.Edges) != 8 || guides != 4 {
		t.Fatalf("expected 4 guide edges, got %d of %d", guides, len(withGuides.Edges))
	}
}

func TestPlaneFeaturesFollowRotationAndScale(t *testing.T) {
	p := shape.NewPlane("p", 2, 2)
	p.SetTransform(shape.Transform{Rotation: math.Pi / 2, Scale: vector.P(3, 1)})
	idx := Build([]shape.Shape{p}, Options{})
	// local right midpoint (1,0) scaled to (3,0), rotated to (0,3)
	if !hasPoint(idx.Points, vector.P(0, 3), Midpoint) {
		t.Fatalf("midpoint did not follow transform: %+v", idx.Points)
	}
}

func TestCircleFeaturesUseRadii(t *testing.T) {
	c := shape.NewCircle("c", 3, 1)
	idx := Build([]shape.Shape{c}, Options{})
	for _, want := range []vector.Pt{vector.P(3, 0), vector.P(-3, 0), vector.P(0, 1), vector.P(0, -1)} {
		if !hasPoint(idx.Points, want, Vertex) {
			t.Fatalf("missing cardinal point %v", want)
		}
	}
	if len(idx.Edges) != 2 || !idx.Edges[0].Guide {
		t.Fatalf("diameters must always be present: %+v", idx.Edges)
	}
}

func TestTriangleHasNoEdges(t *testing.T) {
	tr := shape.NewTriangle("t", 1, 3)
	idx := Build([]shape.Shape{tr}, Options{IncludeGuides: true})
	if len(idx.Edges) != 0 {
		t.Fatalf("triangles expose no edges, got %d", len(idx.Edges))
	}
	if count(idx.Points, Vertex) != 3 || count(idx.Points, Midpoint) != 3 {
		t.Fatalf("unexpected triangle points: %+v", idx.Points)
	}
	if !hasPoint(idx.Points, vector.P(0, -0.5), Center) {
		t.Fatalf("centroid missing: %+v", idx.Points)
	}
}

func TestLineFeatures(t *testing.T) {
	l := shape.NewLine("l", vector.P(0, 0), vector.P(4, 0))
	idx := Build([]shape.Shape{l}, Options{})
	if count(idx.Points, Vertex) != 2 || !hasPoint(idx.Points, vector.P(2, 0), Midpoint) || len(idx.Edges) != 1 {
		t.Fatalf("unexpected line features: %+v", idx)
	}
}

func TestDegenerateShapeIsSkipped(t *testing.T) {
	bad := shape.NewPlane("bad", 1, 1)
	bad.Geometry().Fill = []float64{math.NaN(), 0}
	bad.RecomputeBounds()
	good := shape.NewPlane("good", 1, 1)
	idx := Build([]shape.Shape{bad, good}, Options{})
	if len(idx.PointsOf("bad")) != 0 {
		t.Fatalf("degenerate shape produced features")
	}
	if len(idx.PointsOf("good")) != 9 || len(idx.EdgesOf("good")) != 4 {
		t.Fatalf("good shape not indexed")
	}
}
