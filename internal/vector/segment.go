/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Dist returns the euclidean distance between a and b.
func Dist(a, b Pt) float64 { return r2.Norm(r2.Sub(a, b)) }

// Dist2 returns the squared distance between a and b.
func Dist2(a, b Pt) float64 { return r2.Norm2(r2.Sub(a, b)) }

// Lerp interpolates between a (t=0) and b (t=1).
func Lerp(a, b Pt, t float64) Pt { return r2.Add(a, r2.Scale(t, r2.Sub(b, a))) }

// Mid returns the midpoint of a and b.
func Mid(a, b Pt) Pt { return Lerp(a, b, 0.5) }

// ClosestPointOnSegment projects p onto segment ab, clamped to the
// segment. t is the clamped parameter along ab. A zero-length segment
// returns a with t=0.
func ClosestPointOnSegment(p, a, b Pt) (q Pt, t float64) {
	ab := r2.Sub(b, a)
	l2 := r2.Norm2(ab)
	if l2 == 0 {
		return a, 0
	}
	t = Clamp(r2.Dot(r2.Sub(p, a), ab)/l2, 0, 1)
	return r2.Add(a, r2.Scale(t, ab)), t
}

// DistToSegment is the distance from p to the closest point of ab.
func DistToSegment(p, a, b Pt) float64 {
	q, _ := ClosestPointOnSegment(p, a, b)
	return Dist(p, q)
}

// LeftNormal returns (-dy, dx) for direction d.
func LeftNormal(d Pt) Pt { return Pt{X: -d.Y, Y: d.X} }

// UnitOr returns the unit vector of v, or fallback when v has no length.
func UnitOr(v, fallback Pt) Pt {
	n := r2.Norm(v)
	if n == 0 || math.IsNaN(n) {
		return fallback
	}
	return r2.Scale(1/n, v)
}

// SignedDistance is the distance of p from the infinite line through a and b,
// positive on the left-normal side of a->b. Zero for a degenerate segment.
func SignedDistance(p, a, b Pt) float64 {
	dir := r2.Sub(b, a)
	if r2.Norm2(dir) == 0 {
		return 0
	}
	n := LeftNormal(r2.Unit(dir))
	return r2.Dot(r2.Sub(p, a), n)
}

// RotateAbout rotates p by alpha radians around pivot.
func RotateAbout(p Pt, alpha float64, pivot Pt) Pt { return r2.Rotate(p, alpha, pivot) }

// Angle returns the direction of v in radians.
func Angle(v Pt) float64 { return math.Atan2(v.Y, v.X) }

// SnapAngle rounds rad to the nearest multiple of step. step <= 0 disables snapping.
func SnapAngle(rad, step float64) float64 {
	if step <= 0 {
		return rad
	}
	return math.Round(rad/step) * step
}

// NormalizeAngle maps rad into (-pi, pi].
func NormalizeAngle(rad float64) float64 {
	r := math.Mod(rad, 2*math.Pi)
	if r <= -math.Pi {
		r += 2 * math.Pi
	} else if r > math.Pi {
		r -= 2 * math.Pi
	}
	return r
}

func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Finite reports whether both coordinates are neither NaN nor infinite.
func Finite(p Pt) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}
