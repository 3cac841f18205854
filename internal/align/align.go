/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package align

// Alignment assistance for dragging shapes. Candidates are detected
// independently per axis against every other shape, then at most one
// guide per axis is applied. These helpers are UI-agnostic and
// deterministic so they can be unit tested and reused across frontends.

import (
	"fmt"
	"math"
	"sort"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

// Type is one of the ten alignment relationships.
type Type int

const (
	CenterX Type = iota
	CenterY
	EdgeLeft
	EdgeRight
	EdgeTop
	EdgeBottom
	// Adjacent types dock a dragged edge against the target's far edge.
	AdjacentLeftRight // dragged left to target right
	AdjacentRightLeft // dragged right to target left
	AdjacentTopBottom // dragged top to target bottom
	AdjacentBottomTop // dragged bottom to target top
)

func (t Type) String() string {
	switch t {
	case CenterX:
		return "center-x"
	case CenterY:
		return "center-y"
	case EdgeLeft:
		return "edge-left"
	case EdgeRight:
		return "edge-right"
	case EdgeTop:
		return "edge-top"
	case EdgeBottom:
		return "edge-bottom"
	case AdjacentLeftRight:
		return "adjacent-left-right"
	case AdjacentRightLeft:
		return "adjacent-right-left"
	case AdjacentTopBottom:
		return "adjacent-top-bottom"
	case AdjacentBottomTop:
		return "adjacent-bottom-top"
	default:
		return fmt.Sprintf("align(%d)", int(t))
	}
}

// Vertical reports whether t is drawn as a vertical guide (it fixes X).
func (t Type) Vertical() bool {
	switch t {
	case CenterX, EdgeLeft, EdgeRight, AdjacentLeftRight, AdjacentRightLeft:
		return true
	default:
		return false
	}
}

// Box is a world-space axis-aligned box. World Y points up, so Top is the
// larger Y.
type Box struct {
	Left, Right, Top, Bottom float64
	CenterX, CenterY         float64
}

func BoxFromRect(r vector.Rect) Box {
	return Box{
		Left: r.X, Right: r.X + r.W,
		Bottom: r.Y, Top: r.Y + r.H,
		CenterX: r.X + r.W/2, CenterY: r.Y + r.H/2,
	}
}

func (b Box) Rect() vector.Rect {
	return vector.Rect{X: b.Left, Y: b.Bottom, W: b.Right - b.Left, H: b.Top - b.Bottom}
}

// BoxOf is the world box of s at its current position.
func BoxOf(s shape.Shape) Box { return BoxFromRect(shape.WorldBounds(s)) }

// BoxAt is the world box of s if it were moved to pos.
func BoxAt(s shape.Shape, pos vector.Pt) Box { return BoxFromRect(shape.WorldBoundsAt(s, pos)) }

// Candidate is a detected coincidence between a feature of the dragged
// shape and a feature of TargetID. Value is the target coordinate.
type Candidate struct {
	Type     Type
	TargetID string
	Value    float64
	Distance float64
}

type pair struct {
	typ     Type
	dragged func(Box) float64
	target  func(Box) float64
}

func left(b Box) float64    { return b.Left }
func right(b Box) float64   { return b.Right }
func top(b Box) float64     { return b.Top }
func bottom(b Box) float64  { return b.Bottom }
func centerX(b Box) float64 { return b.CenterX }
func centerY(b Box) float64 { return b.CenterY }

var pairs = [...]pair{
	{CenterX, centerX, centerX},
	{CenterY, centerY, centerY},
	{EdgeLeft, left, left},
	{EdgeRight, right, right},
	{EdgeTop, top, top},
	{EdgeBottom, bottom, bottom},
	{AdjacentLeftRight, left, right},
	{AdjacentRightLeft, right, left},
	{AdjacentTopBottom, top, bottom},
	{AdjacentBottomTop, bottom, top},
}

func draggedFeature(t Type, b Box) float64 {
	for _, p := range pairs {
		if p.typ == t {
			return p.dragged(b)
		}
	}
	return math.NaN()
}

// Supported reports whether s takes part in alignment. Triangles do not.
func Supported(s shape.Shape) bool {
	switch s.(type) {
	case *shape.Plane, *shape.Circle, *shape.Line:
		return true
	case *shape.Triangle:
		return false
	default:
		panic(fmt.Sprintf("align: unknown shape type %T", s))
	}
}

// FindCandidates tests the dragged shape, placed at proposed, against
// every other shape. A candidate qualifies when its coordinate difference
// is below threshold. The result is sorted by distance, ties keep
// detection order.
func FindCandidates(dragged shape.Shape, proposed vector.Pt, others []shape.Shape, threshold float64) []Candidate {
	if dragged == nil || !Supported(dragged) || shape.Degenerate(dragged) {
		return nil
	}
	box := BoxAt(dragged, proposed)
	var out []Candidate
	for _, o := range others {
		if o == nil || o.ID() == dragged.ID() || !Supported(o) || shape.Degenerate(o) {
			continue
		}
		ob := BoxOf(o)
		for _, p := range pairs {
			target := p.target(ob)
			d := math.Abs(p.dragged(box) - target)
			if d < threshold {
				out = append(out, Candidate{Type: p.typ, TargetID: o.ID(), Value: target, Distance: d})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Distance < out[j].Distance })
	return out
}

// Best holds at most one candidate per axis family.
type Best struct {
	Vertical   *Candidate
	Horizontal *Candidate
}

func (b Best) Empty() bool { return b.Vertical == nil && b.Horizontal == nil }

// BestOf walks sorted candidates once and keeps the first of each family.
func BestOf(cands []Candidate) Best {
	var best Best
	for i := range cands {
		c := &cands[i]
		if c.Type.Vertical() {
			if best.Vertical == nil {
				best.Vertical = c
			}
		} else if best.Horizontal == nil {
			best.Horizontal = c
		}
		if best.Vertical != nil && best.Horizontal != nil {
			break
		}
	}
	return best
}

// Apply shifts proposed so the matched features coincide. The offset
// between the shape position and the matched feature is preserved, so
// aligning left edges does not recentre the shape.
func Apply(proposed vector.Pt, box Box, best Best) vector.Pt {
	if c := best.Vertical; c != nil {
		proposed.X += c.Value - draggedFeature(c.Type, box)
	}
	if c := best.Horizontal; c != nil {
		proposed.Y += c.Value - draggedFeature(c.Type, box)
	}
	return proposed
}
