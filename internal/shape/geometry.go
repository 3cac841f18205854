/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package shape

import (
	"math"

	"godraft/internal/vector"
)

// Geometry holds the local vertex buffers of a shape as interleaved x,y
// pairs. Fill is the solid area, Outline the stroked boundary (closed
// loops repeat their first vertex).
type Geometry struct {
	Fill    []float64
	Outline []float64
}

// Bounds returns the local bounding box over both buffers.
func (g *Geometry) Bounds() vector.Rect {
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	n := 0
	for _, buf := range [][]float64{g.Fill, g.Outline} {
		for i := 0; i+1 < len(buf); i += 2 {
			x, y := buf[i], buf[i+1]
			if math.IsNaN(x) || math.IsNaN(y) {
				return vector.EmptyRect
			}
			minX = math.Min(minX, x)
			minY = math.Min(minY, y)
			maxX = math.Max(maxX, x)
			maxY = math.Max(maxY, y)
			n++
		}
	}
	if n == 0 {
		return vector.EmptyRect
	}
	return vector.Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// OutlinePoints returns the outline as points.
func (g *Geometry) OutlinePoints() []vector.Pt { return toPoints(g.Outline) }

// FillPoints returns the fill vertices as points.
func (g *Geometry) FillPoints() []vector.Pt { return toPoints(g.Fill) }

func toPoints(buf []float64) []vector.Pt {
	out := make([]vector.Pt, 0, len(buf)/2)
	for i := 0; i+1 < len(buf); i += 2 {
		out = append(out, vector.P(buf[i], buf[i+1]))
	}
	return out
}

func flatten(pts ...vector.Pt) []float64 {
	out := make([]float64, 0, 2*len(pts))
	for _, p := range pts {
		out = append(out, p.X, p.Y)
	}
	return out
}

func planeGeometry(w, h float64) Geometry {
	hw, hh := w/2, h/2
	c := []vector.Pt{vector.P(-hw, -hh), vector.P(hw, -hh), vector.P(hw, hh), vector.P(-hw, hh)}
	return Geometry{
		Fill:    flatten(c...),
		Outline: flatten(c[0], c[1], c[2], c[3], c[0]),
	}
}

func circleGeometry(rx, ry float64, segments int) Geometry {
	if segments < 3 {
		segments = 3
	}
	ring := make([]vector.Pt, 0, segments+1)
	for i := 0; i <= segments; i++ {
		a := 2 * math.Pi * float64(i%segments) / float64(segments)
		ring = append(ring, vector.P(rx*math.Cos(a), ry*math.Sin(a)))
	}
	fill := append([]vector.Pt{{}}, ring[:segments]...)
	return Geometry{Fill: flatten(fill...), Outline: flatten(ring...)}
}

func triangleGeometry(halfBase, height float64) Geometry {
	a := vector.P(-halfBase, -height/2)
	b := vector.P(halfBase, -height/2)
	c := vector.P(0, height/2)
	return Geometry{Fill: flatten(a, b, c), Outline: flatten(a, b, c, a)}
}

func lineGeometry(start, end vector.Pt) Geometry {
	return Geometry{Fill: flatten(start, end), Outline: flatten(start, end)}
}
