/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"godraft/internal/vector"
)

// LocalToWorld maps a local point through the shape's full transform.
func LocalToWorld(s Shape, p vector.Pt) vector.Pt {
	return s.Transform().Matrix().Apply(p)
}

// WorldToLocal maps a world point into the shape's local frame. A shape
// with a zero scale axis cannot be inverted; the point is then returned
// relative to the shape position.
func WorldToLocal(s Shape, p vector.Pt) vector.Pt {
	inv, ok := s.Transform().Matrix().Invert()
	if !ok {
		pos := s.Transform().Position
		return vector.P(p.X-pos.X, p.Y-pos.Y)
	}
	return inv.Apply(p)
}

// NormalizedCoordinates expresses a local point as fractions of the local
// bounding box. A degenerate axis maps to 0.5.
func NormalizedCoordinates(s Shape, local vector.Pt) vector.Pt {
	b := s.LocalBounds()
	if b.IsEmpty() {
		return vector.P(0.5, 0.5)
	}
	n := vector.P(0.5, 0.5)
	if b.W > 0 {
		n.X = (local.X - b.X) / b.W
	}
	if b.H > 0 {
		n.Y = (local.Y - b.Y) / b.H
	}
	return n
}

// NormalizedToLocal is the inverse of NormalizedCoordinates.
func NormalizedToLocal(s Shape, n vector.Pt) vector.Pt {
	b := s.LocalBounds()
	if b.IsEmpty() {
		return vector.Pt{}
	}
	return vector.P(b.X+n.X*b.W, b.Y+n.Y*b.H)
}

// NormalizedToWorld is LocalToWorld(NormalizedToLocal(n)).
func NormalizedToWorld(s Shape, n vector.Pt) vector.Pt {
	return LocalToWorld(s, NormalizedToLocal(s, n))
}

// WorldBounds is the axis-aligned box of the 4 transformed local-bbox corners.
func WorldBounds(s Shape) vector.Rect {
	return s.LocalBounds().Transformed(s.Transform().Matrix())
}

// WorldBoundsAt is WorldBounds with the position replaced by pos.
func WorldBoundsAt(s Shape, pos vector.Pt) vector.Rect {
	xf := s.Transform()
	xf.Position = pos
	return s.LocalBounds().Transformed(xf.Matrix())
}

// WorldCenter is the world position of the local bounding-box centre.
func WorldCenter(s Shape) vector.Pt {
	return LocalToWorld(s, s.LocalBounds().Center())
}

// Degenerate reports whether the shape has no usable geometry.
func Degenerate(s Shape) bool {
	b := s.LocalBounds()
	if b.IsEmpty() {
		return true
	}
	return !vector.Finite(b.Min()) || !vector.Finite(b.Max())
}

// WorldOutline returns the outline buffer mapped to world space.
func WorldOutline(s Shape) []vector.Pt {
	m := s.Transform().Matrix()
	pts := s.Geometry().OutlinePoints()
	for i := range pts {
		pts[i] = m.Apply(pts[i])
	}
	return pts
}
