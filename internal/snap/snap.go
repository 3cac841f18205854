/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package snap picks the best snap target for a cursor position.
//
// Points are preferred over edges: an edge only wins when it is closer
// than the best point by more than a small priority bias, because a
// vertex is a more useful anchor than an arbitrary point on a segment.
package snap

import (
	"math"

	"godraft/internal/features"
	"godraft/internal/shape"
	"godraft/internal/vector"
)

// Options selects snap sources and tolerances.
type Options struct {
	SnapToPoints  bool
	SnapToEdges   bool
	IncludeGuides bool
	Threshold     float64 // world units, default 0.3
	PriorityBias  float64 // world units, default 0.05
}

func DefaultOptions() Options {
	return Options{SnapToPoints: true, SnapToEdges: true, Threshold: 0.3, PriorityBias: 0.05}
}

// Source tells where a result came from.
type Source int

const (
	FromPoint Source = iota
	FromEdge
)

// Result is the winning snap. For edge wins Point is synthetic (kind
// features.Edge) and Edge is the segment it lies on.
type Result struct {
	Point    features.SnapPoint
	Distance float64
	Source   Source
	Edge     *features.SnapEdge
}

// Resolve returns the best snap for p, or false when nothing is in range.
func Resolve(p vector.Pt, idx features.Index, opts Options) (Result, bool) {
	if opts.Threshold <= 0 {
		opts.Threshold = DefaultOptions().Threshold
	}
	var best Result
	found := false
	bestPointDist := math.Inf(1)

	if opts.SnapToPoints {
		t2 := opts.Threshold * opts.Threshold
		bestD2 := math.Inf(1)
		for i := range idx.Points {
			d2 := vector.Dist2(p, idx.Points[i].Position)
			if d2 < t2 && d2 < bestD2 {
				bestD2 = d2
				best = Result{Point: idx.Points[i], Source: FromPoint}
				found = true
			}
		}
		if found {
			bestPointDist = math.Sqrt(bestD2)
			best.Distance = bestPointDist
		}
	}

	if opts.SnapToEdges {
		bestEdgeDist := math.Inf(1)
		var bestEdge *features.SnapEdge
		var bestProj vector.Pt
		for i := range idx.Edges {
			e := &idx.Edges[i]
			if e.Guide && !opts.IncludeGuides && !alwaysGuide(e) {
				continue
			}
			q, _ := vector.ClosestPointOnSegment(p, e.Start, e.End)
			d := vector.Dist(p, q)
			if d < bestEdgeDist {
				bestEdgeDist, bestEdge, bestProj = d, e, q
			}
		}
		if bestEdge != nil && bestEdgeDist < opts.Threshold && bestEdgeDist < bestPointDist-opts.PriorityBias {
			best = Result{
				Point: features.SnapPoint{
					Position:  bestProj,
					Kind:      features.Edge,
					ShapeID:   bestEdge.ShapeID,
					ShapeKind: bestEdge.ShapeKind,
				},
				Distance: bestEdgeDist,
				Source:   FromEdge,
				Edge:     bestEdge,
			}
			found = true
		}
	}
	return best, found
}

// alwaysGuide marks guide edges that ignore the guide toggle.
func alwaysGuide(e *features.SnapEdge) bool { return e.Label == "diameter" }

// ResolveShapes builds the feature index for shapes and resolves p.
func ResolveShapes(p vector.Pt, shapes []shape.Shape, opts Options) (Result, bool) {
	idx := features.Build(shapes, features.Options{IncludeGuides: opts.IncludeGuides})
	return Resolve(p, idx, opts)
}

// Accept applies the caller fallback for a resolve outcome: the snapped
// position when there is one, the raw position when free placement is
// allowed, otherwise nothing.
func Accept(p vector.Pt, res Result, ok, allowFree bool) (pos vector.Pt, shapeID string, accepted bool) {
	if ok {
		return res.Point.Position, res.Point.ShapeID, true
	}
	if allowFree {
		return p, "", true
	}
	return vector.Pt{}, "", false
}
