/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry and transforms for the drafting plane.
// Points are gonum r2 vectors so the rest of the engine can use the
// r2 package functions (Add, Sub, Scale, Dot, Norm) directly.

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pt is a 2D point or direction on the drawing plane.
type Pt = r2.Vec

// P is shorthand for Pt{X: x, Y: y}.
func P(x, y float64) Pt { return Pt{X: x, Y: y} }

// Size is a width/height pair.
type Size struct{ W, H float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
// A rect with negative or NaN size is empty.
type Rect struct {
	X, Y float64
	W, H float64
}

// EmptyRect is the neutral element for Union.
var EmptyRect = Rect{W: -1, H: -1}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromPoints returns the bounding box of pts, or EmptyRect.
func RectFromPoints(pts ...Pt) Rect {
	if len(pts) == 0 {
		return EmptyRect
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) {
			return EmptyRect
		}
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (r Rect) Min() Pt    { return Pt{X: r.X, Y: r.Y} }
func (r Rect) Max() Pt    { return Pt{X: r.X + r.W, Y: r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{X: r.X + r.W/2, Y: r.Y + r.H/2} }
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// IsEmpty reports whether r has a negative or NaN extent.
func (r Rect) IsEmpty() bool { return !(r.W >= 0 && r.H >= 0) }

// Corners returns min, (max.x,min.y), max, (min.x,max.y) in that order.
func (r Rect) Corners() [4]Pt {
	return [4]Pt{
		{X: r.X, Y: r.Y},
		{X: r.X + r.W, Y: r.Y},
		{X: r.X + r.W, Y: r.Y + r.H},
		{X: r.X, Y: r.Y + r.H},
	}
}

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both. Empty operands are ignored.
func (r Rect) Union(o Rect) Rect {
	if r.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return r
	}
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Transformed returns the axis-aligned bounds of r's 4 corners mapped by m.
func (r Rect) Transformed(m Affine2D) Rect {
	if r.IsEmpty() {
		return EmptyRect
	}
	c := r.Corners()
	return RectFromPoints(m.Apply(c[0]), m.Apply(c[1]), m.Apply(c[2]), m.Apply(c[3]))
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// ApplyVector maps a direction, ignoring translation.
func (m Affine2D) ApplyVector(v Pt) Pt {
	return Pt{X: m.A*v.X + m.C*v.Y, Y: m.B*v.X + m.D*v.Y}
}

func (m Affine2D) Det() float64 { return m.A*m.D - m.B*m.C }

// Invert returns the inverse transform. ok is false for singular matrices
// (zero scale on an axis), in which case the identity is returned.
func (m Affine2D) Invert() (inv Affine2D, ok bool) {
	det := m.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Identity, false
	}
	id := 1 / det
	a := m.D * id
	b := -m.B * id
	c := -m.C * id
	d := m.A * id
	e := -(a*m.E + c*m.F)
	f := -(b*m.E + d*m.F)
	return Affine2D{A: a, B: b, C: c, D: d, E: e, F: f}, true
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// TRS composes translate * rotate * scale, the order used for shape transforms.
func TRS(pos Pt, rot float64, scale Pt) Affine2D {
	return Translate(pos.X, pos.Y).Mul(Rotate(rot)).Mul(Scale(scale.X, scale.Y))
}
