/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package shape holds the drawable shapes of a drafting scene.
//
// Shape is a closed union: only Plane, Circle, Triangle and Line
// implement it. Code that depends on the kind switches on the concrete
// type and panics on anything else, so adding a kind shows up as a
// failing test in every operation that has not learnt about it yet.
package shape

import (
	"fmt"

	"github.com/google/uuid"

	"godraft/internal/vector"
)

// Kind names a shape variant.
type Kind int

const (
	KindPlane Kind = iota
	KindCircle
	KindTriangle
	KindLine
)

func (k Kind) String() string {
	switch k {
	case KindPlane:
		return "plane"
	case KindCircle:
		return "circle"
	case KindTriangle:
		return "triangle"
	case KindLine:
		return "line"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "plane", "rect", "rectangle":
		return KindPlane, true
	case "circle", "ellipse":
		return KindCircle, true
	case "triangle":
		return KindTriangle, true
	case "line":
		return KindLine, true
	}
	return 0, false
}

// Transform places a shape's local frame in the world.
type Transform struct {
	Position vector.Pt
	Rotation float64 // radians about the plane normal
	Scale    vector.Pt
}

// DefaultTransform is the identity placement.
func DefaultTransform() Transform { return Transform{Scale: vector.P(1, 1)} }

// Matrix returns translate * rotate * scale.
func (t Transform) Matrix() vector.Affine2D {
	s := t.Scale
	if s.X == 0 && s.Y == 0 {
		s = vector.P(1, 1)
	}
	return vector.TRS(t.Position, t.Rotation, s)
}

// Shape is implemented by *Plane, *Circle, *Triangle and *Line only.
type Shape interface {
	ID() string
	Kind() Kind
	Transform() Transform
	SetTransform(Transform)
	// Geometry exposes the live vertex buffers. Callers that write to
	// them must call RecomputeBounds afterwards.
	Geometry() *Geometry
	// LocalBounds is the cached bounding box of the geometry buffers.
	LocalBounds() vector.Rect
	RecomputeBounds()
	sealed()
}

type base struct {
	id     string
	xf     Transform
	geom   Geometry
	bounds vector.Rect
}

func newBase(id string) base {
	if id == "" {
		id = uuid.NewString()
	}
	return base{id: id, xf: DefaultTransform(), bounds: vector.EmptyRect}
}

func (b *base) ID() string               { return b.id }
func (b *base) Transform() Transform     { return b.xf }
func (b *base) SetTransform(t Transform) { b.xf = t }
func (b *base) Geometry() *Geometry      { return &b.geom }
func (b *base) LocalBounds() vector.Rect { return b.bounds }
func (b *base) RecomputeBounds()         { b.bounds = b.geom.Bounds() }
func (b *base) sealed()                  {}

// Plane is a width x height rectangle centred on its local origin.
type Plane struct {
	base
	Width, Height float64
}

func NewPlane(id string, w, h float64) *Plane {
	p := &Plane{base: newBase(id), Width: w, Height: h}
	p.geom = planeGeometry(w, h)
	p.RecomputeBounds()
	return p
}

func (*Plane) Kind() Kind { return KindPlane }

// Circle is an ellipse with independent radii, centred on its local origin.
type Circle struct {
	base
	RadiusX, RadiusY float64
}

// CircleSegments is the ring resolution used for new circles.
var CircleSegments = 48

func NewCircle(id string, rx, ry float64) *Circle {
	c := &Circle{base: newBase(id), RadiusX: rx, RadiusY: ry}
	c.geom = circleGeometry(rx, ry, CircleSegments)
	c.RecomputeBounds()
	return c
}

func (*Circle) Kind() Kind { return KindCircle }

// Triangle is isosceles: base from (-HalfBase,-Height/2) to (HalfBase,-Height/2),
// apex at (0,Height/2).
type Triangle struct {
	base
	HalfBase, Height float64
}

func NewTriangle(id string, halfBase, height float64) *Triangle {
	t := &Triangle{base: newBase(id), HalfBase: halfBase, Height: height}
	t.geom = triangleGeometry(halfBase, height)
	t.RecomputeBounds()
	return t
}

func (*Triangle) Kind() Kind { return KindTriangle }

// Vertices returns the three local corners read from the fill buffer.
func (t *Triangle) Vertices() [3]vector.Pt {
	var v [3]vector.Pt
	for i := 0; i < 3 && 2*i+1 < len(t.geom.Fill); i++ {
		v[i] = vector.P(t.geom.Fill[2*i], t.geom.Fill[2*i+1])
	}
	return v
}

// Line is a segment between two local points.
type Line struct {
	base
	Start, End vector.Pt
}

func NewLine(id string, start, end vector.Pt) *Line {
	l := &Line{base: newBase(id), Start: start, End: end}
	l.geom = lineGeometry(start, end)
	l.RecomputeBounds()
	return l
}

func (*Line) Kind() Kind { return KindLine }

// SetEndpoints moves the local endpoints and rewrites the buffers.
func (l *Line) SetEndpoints(start, end vector.Pt) {
	l.Start, l.End = start, end
	l.geom = lineGeometry(start, end)
	l.RecomputeBounds()
}

// Extents returns the size parameters that resize operates on: half
// extents for planes and circles, (half base, height) for triangles.
// ok is false for lines.
func Extents(s Shape) (e vector.Pt, ok bool) {
	switch v := s.(type) {
	case *Plane:
		return vector.P(v.Width/2, v.Height/2), true
	case *Circle:
		return vector.P(v.RadiusX, v.RadiusY), true
	case *Triangle:
		return vector.P(v.HalfBase, v.Height), true
	case *Line:
		return vector.Pt{}, false
	default:
		panic(fmt.Sprintf("shape: unknown shape type %T", s))
	}
}

// SetExtents stores resized size parameters; the caller rewrites the buffers.
func SetExtents(s Shape, e vector.Pt) {
	switch v := s.(type) {
	case *Plane:
		v.Width, v.Height = 2*e.X, 2*e.Y
	case *Circle:
		v.RadiusX, v.RadiusY = e.X, e.Y
	case *Triangle:
		v.HalfBase, v.Height = e.X, e.Y
	case *Line:
	default:
		panic(fmt.Sprintf("shape: unknown shape type %T", s))
	}
}
