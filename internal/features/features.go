/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package features enumerates the snappable geometry of every shape on
// the canvas: vertices, edge midpoints, centres and edges, all in world
// coordinates. The index is cheap to rebuild and is recomputed per query.
package features

import (
	"fmt"
	"log/slog"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

// PointKind classifies a snap point.
type PointKind int

const (
	Vertex PointKind = iota
	Midpoint
	Center
	Edge // synthetic: a point projected onto a snap edge
)

func (k PointKind) String() string {
	switch k {
	case Vertex:
		return "vertex"
	case Midpoint:
		return "midpoint"
	case Center:
		return "center"
	case Edge:
		return "edge"
	default:
		return fmt.Sprintf("point(%d)", int(k))
	}
}

// SnapPoint is a discrete snap target.
type SnapPoint struct {
	Position  vector.Pt
	Kind      PointKind
	ShapeID   string
	ShapeKind string
}

// SnapEdge is a segment snap target. Guide edges are construction lines
// (diagonals, centre cross, diameters) rather than drawn boundaries.
type SnapEdge struct {
	Start, End vector.Pt
	ShapeID    string
	ShapeKind  string
	Label      string
	Guide      bool
}

// Index is the feature set of a scene at one instant.
type Index struct {
	Points []SnapPoint
	Edges  []SnapEdge
}

// Options controls optional feature families.
type Options struct {
	// IncludeGuides adds plane diagonals and centre-cross lines. Circle
	// diameters are always present.
	IncludeGuides bool
	Logger        *slog.Logger
}

// Build derives the features of shapes. Shapes with degenerate geometry
// are skipped; the remaining shapes are still indexed.
func Build(shapes []shape.Shape, opts Options) Index {
	var idx Index
	for _, s := range shapes {
		if s == nil {
			continue
		}
		if shape.Degenerate(s) {
			if opts.Logger != nil {
				opts.Logger.Debug("skipping degenerate shape", slog.String("shape", s.ID()), slog.String("kind", s.Kind().String()))
			}
			continue
		}
		idx.add(s, opts)
	}
	return idx
}

func (idx *Index) add(s shape.Shape, opts Options) {
	m := s.Transform().Matrix()
	w := func(p vector.Pt) vector.Pt { return m.Apply(p) }
	id, kind := s.ID(), s.Kind().String()
	point := func(p vector.Pt, k PointKind) {
		idx.Points = append(idx.Points, SnapPoint{Position: w(p), Kind: k, ShapeID: id, ShapeKind: kind})
	}
	edge := func(a, b vector.Pt, label string, guide bool) {
		idx.Edges = append(idx.Edges, SnapEdge{Start: w(a), End: w(b), ShapeID: id, ShapeKind: kind, Label: label, Guide: guide})
	}

	switch v := s.(type) {
	case *shape.Plane:
		b := v.LocalBounds()
		c := b.Corners() // bl, br, tr, tl
		for _, p := range c {
			point(p, Vertex)
		}
		labels := [4]string{"bottom", "right", "top", "left"}
		for i := 0; i < 4; i++ {
			a, e := c[i], c[(i+1)%4]
			point(vector.Mid(a, e), Midpoint)
			edge(a, e, labels[i], false)
		}
		point(b.Center(), Center)
		if opts.IncludeGuides {
			edge(c[0], c[2], "diagonal", true)
			edge(c[1], c[3], "diagonal", true)
			ctr := b.Center()
			edge(vector.P(b.X, ctr.Y), vector.P(b.X+b.W, ctr.Y), "center-horizontal", true)
			edge(vector.P(ctr.X, b.Y), vector.P(ctr.X, b.Y+b.H), "center-vertical", true)
		}
	case *shape.Circle:
		// cardinal points come from the radii, so an ellipse snaps on its
		// own extremes rather than on a unit circle
		ctr := v.LocalBounds().Center()
		rx, ry := v.RadiusX, v.RadiusY
		east, west := vector.P(ctr.X+rx, ctr.Y), vector.P(ctr.X-rx, ctr.Y)
		north, south := vector.P(ctr.X, ctr.Y+ry), vector.P(ctr.X, ctr.Y-ry)
		for _, p := range []vector.Pt{east, north, west, south} {
			point(p, Vertex)
		}
		point(ctr, Center)
		edge(west, east, "diameter", true)
		edge(south, north, "diameter", true)
	case *shape.Triangle:
		// No edge set: triangle edge snapping is not supported.
		vs := v.Vertices()
		for _, p := range vs {
			point(p, Vertex)
		}
		for i := 0; i < 3; i++ {
			point(vector.Mid(vs[i], vs[(i+1)%3]), Midpoint)
		}
		centroid := vector.P((vs[0].X+vs[1].X+vs[2].X)/3, (vs[0].Y+vs[1].Y+vs[2].Y)/3)
		point(centroid, Center)
	case *shape.Line:
		point(v.Start, Vertex)
		point(v.End, Vertex)
		point(vector.Mid(v.Start, v.End), Midpoint)
		edge(v.Start, v.End, "segment", false)
	default:
		panic(fmt.Sprintf("features: unknown shape type %T", s))
	}
}

// PointsOf returns the points owned by shapeID.
func (idx Index) PointsOf(shapeID string) []SnapPoint {
	var out []SnapPoint
	for _, p := range idx.Points {
		if p.ShapeID == shapeID {
			out = append(out, p)
		}
	}
	return out
}

// EdgesOf returns the edges owned by shapeID.
func (idx Index) EdgesOf(shapeID string) []SnapEdge {
	var out []SnapEdge
	for _, e := range idx.Edges {
		if e.ShapeID == shapeID {
			out = append(out, e)
		}
	}
	return out
}
