/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"fmt"

	"godraft/internal/vector"
)

// Scene is the live, ordered shape set. Later shapes draw on top.
// It is not safe for concurrent use.
type Scene struct {
	shapes []Shape
	index  map[string]int
}

func NewScene(shapes ...Shape) *Scene {
	sc := &Scene{index: map[string]int{}}
	for _, s := range shapes {
		sc.Add(s)
	}
	return sc
}

// Add appends s; a shape with the same id is replaced in place.
func (sc *Scene) Add(s Shape) {
	if sc.index == nil {
		sc.index = map[string]int{}
	}
	if i, ok := sc.index[s.ID()]; ok {
		sc.shapes[i] = s
		return
	}
	sc.index[s.ID()] = len(sc.shapes)
	sc.shapes = append(sc.shapes, s)
}

// Get looks up a shape by id.
func (sc *Scene) Get(id string) (Shape, bool) {
	if sc == nil {
		return nil, false
	}
	i, ok := sc.index[id]
	if !ok {
		return nil, false
	}
	return sc.shapes[i], true
}

// Remove deletes the shape with id and reports whether it existed.
func (sc *Scene) Remove(id string) bool {
	i, ok := sc.index[id]
	if !ok {
		return false
	}
	sc.shapes = append(sc.shapes[:i], sc.shapes[i+1:]...)
	delete(sc.index, id)
	for j := i; j < len(sc.shapes); j++ {
		sc.index[sc.shapes[j].ID()] = j
	}
	return true
}

// Shapes returns the shapes in draw order. The slice must not be modified.
func (sc *Scene) Shapes() []Shape {
	if sc == nil {
		return nil
	}
	return sc.shapes
}

// Others returns every shape except the one with id.
func (sc *Scene) Others(id string) []Shape {
	out := make([]Shape, 0, len(sc.shapes))
	for _, s := range sc.shapes {
		if s.ID() != id {
			out = append(out, s)
		}
	}
	return out
}

func (sc *Scene) Len() int { return len(sc.shapes) }

// TopmostAt returns the top-most shape hit at world point p.
func (sc *Scene) TopmostAt(p vector.Pt, tol float64) (Shape, bool) {
	for i := len(sc.shapes) - 1; i >= 0; i-- {
		if Hit(sc.shapes[i], p, tol) {
			return sc.shapes[i], true
		}
	}
	return nil, false
}

// Hit tests whether world point p lies on the shape. tol widens lines,
// which have no area, and is measured in world units.
func Hit(s Shape, p vector.Pt, tol float64) bool {
	if Degenerate(s) {
		return false
	}
	q := WorldToLocal(s, p)
	switch v := s.(type) {
	case *Plane:
		return v.LocalBounds().Contains(q)
	case *Circle:
		b := v.LocalBounds()
		rx, ry := b.W/2, b.H/2
		if rx == 0 || ry == 0 {
			return false
		}
		c := b.Center()
		dx := (q.X - c.X) / rx
		dy := (q.Y - c.Y) / ry
		return dx*dx+dy*dy <= 1
	case *Triangle:
		vs := v.Vertices()
		return pointInTriangle(q, vs[0], vs[1], vs[2])
	case *Line:
		a := LocalToWorld(s, v.Start)
		b := LocalToWorld(s, v.End)
		return vector.DistToSegment(p, a, b) <= tol
	default:
		panic(fmt.Sprintf("shape: unknown shape type %T", s))
	}
}

func pointInTriangle(p, a, b, c vector.Pt) bool {
	d1 := cross(p, a, b)
	d2 := cross(p, b, c)
	d3 := cross(p, c, a)
	neg := d1 < 0 || d2 < 0 || d3 < 0
	pos := d1 > 0 || d2 > 0 || d3 > 0
	return !(neg && pos)
}

func cross(p, a, b vector.Pt) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}
