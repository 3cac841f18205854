/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package snap

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"godraft/internal/features"
	"godraft/internal/shape"
	"godraft/internal/vector"
)

func pointAndEdge(pointDist, edgeDist float64) features.Index {
	return features.Index{
		Points: []features.SnapPoint{{Position: vector.P(pointDist, 0), Kind: features.Vertex, ShapeID: "a"}},
		Edges: []features.SnapEdge{{
			Start: vector.P(-1, -edgeDist), End: vector.P(1, -edgeDist), ShapeID: "b", Label: "top",
		}},
	}
}

func TestPointWinsWithinPriorityBias(t *testing.T) {
	// edge is closer, but by less than the 0.05 bias
	idx := pointAndEdge(0.2, 0.17)
	res, ok := Resolve(vector.P(0, 0), idx, DefaultOptions())
	if !ok || res.Source != FromPoint || res.Point.ShapeID != "a" {
		t.Fatalf("expected point snap, got %+v ok=%v", res, ok)
	}
	if !scalar.EqualWithinAbs(res.Distance, 0.2, 1e-12) {
		t.Fatalf("distance = %v", res.Distance)
	}
}

func TestEdgeWinsBeyondPriorityBias(t *testing.T) {
	idx := pointAndEdge(0.2, 0.1)
	res, ok := Resolve(vector.P(0, 0), idx, DefaultOptions())
	if !ok || res.Source != FromEdge {
		t.Fatalf("expected edge snap, got %+v", res)
	}
	if res.Point.Kind != features.Edge || !scalar.EqualWithinAbs(res.Point.Position.Y, -0.1, 1e-12) || res.Edge.Label != "top" {
		t.Fatalf("unexpected synthetic edge point: %+v", res.Point)
	}
}

func TestEdgeOnlyWhenNoPointInRange(t *testing.T) {
	idx := pointAndEdge(5, 0.25)
	res, ok := Resolve(vector.P(0, 0), idx, DefaultOptions())
	if !ok || res.Source != FromEdge {
		t.Fatalf("expected edge snap without competing point, got %+v", res)
	}
}

func TestNothingInThreshold(t *testing.T) {
	idx := pointAndEdge(0.5, 0.4)
	if _, ok := Resolve(vector.P(0, 0), idx, DefaultOptions()); ok {
		t.Fatalf("expected no snap")
	}
}

func TestSourcesCanBeDisabled(t *testing.T) {
	idx := pointAndEdge(0.2, 0.1)
	opts := DefaultOptions()
	opts.SnapToEdges = false
	if res, ok := Resolve(vector.P(0, 0), idx, opts); !ok || res.Source != FromPoint {
		t.Fatalf("edges disabled: %+v", res)
	}
	opts = DefaultOptions()
	opts.SnapToPoints = false
	idx = pointAndEdge(0.01, 0.2)
	if res, ok := Resolve(vector.P(0, 0), idx, opts); !ok || res.Source != FromEdge {
		t.Fatalf("points disabled: %+v", res)
	}
}

func TestGuideEdgesRespectToggle(t *testing.T) {
	idx := features.Index{Edges: []features.SnapEdge{
		{Start: vector.P(-1, 0.1), End: vector.P(1, 0.1), ShapeID: "p", Label: "diagonal", Guide: true},
	}}
	if _, ok := Resolve(vector.P(0, 0), idx, DefaultOptions()); ok {
		t.Fatalf("guide edge used while guides are off")
	}
	opts := DefaultOptions()
	opts.IncludeGuides = true
	if _, ok := Resolve(vector.P(0, 0), idx, opts); !ok {
		t.Fatalf("guide edge ignored while guides are on")
	}
	idx.Edges[0].Label = "diameter"
	if _, ok := Resolve(vector.P(0, 0), idx, DefaultOptions()); !ok {
		t.Fatalf("circle diameters are always snappable")
	}
}

func TestResolveShapesSnapsToPlaneCorner(t *testing.T) {
	p := shape.NewPlane("p", 2, 2)
	res, ok := ResolveShapes(vector.P(1.1, 0.95), []shape.Shape{p}, DefaultOptions())
	if !ok || res.Point.Kind != features.Vertex || res.Point.Position != vector.P(1, 1) {
		t.Fatalf("expected corner snap, got %+v", res)
	}
	res, ok = ResolveShapes(vector.P(1.1, 0.4), []shape.Shape{p}, DefaultOptions())
	if !ok || res.Source != FromEdge || !scalar.EqualWithinAbs(res.Point.Position.Y, 0.4, 1e-12) || res.Point.Position.X != 1 {
		t.Fatalf("expected right edge snap, got %+v", res)
	}
	if want := p.Kind().String(); res.Point.ShapeKind != want || res.Edge.ShapeKind != want || res.Point.ShapeID != "p" {
		t.Fatalf("edge snap lost its owner: %+v", res.Point)
	}
}

func TestAcceptFallback(t *testing.T) {
	raw := vector.P(3, 4)
	if pos, id, ok := Accept(raw, Result{}, false, true); !ok || pos != raw || id != "" {
		t.Fatalf("free placement should accept raw point")
	}
	if _, _, ok := Accept(raw, Result{}, false, false); ok {
		t.Fatalf("no snap and no free placement must reject")
	}
	res := Result{Point: features.SnapPoint{Position: vector.P(1, 1), ShapeID: "s"}}
	if pos, id, ok := Accept(raw, res, true, false); !ok || pos != vector.P(1, 1) || id != "s" {
		t.Fatalf("snapped point should win")
	}
}
