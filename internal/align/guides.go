/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package align

import (
	"gonum.org/v1/gonum/floats/scalar"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

// GuideLine is a renderable alignment guide in world coordinates.
type GuideLine struct {
	Orientation string // "vertical" | "horizontal"
	Kind        string // "center" | "edge" | "adjacent"
	Type        Type
	TargetID    string
	Position    float64
	From, To    vector.Pt
}

// guidePrecision is the number of decimals kept for guide positions, so
// guides from nearly equal edges land on the same line.
const guidePrecision = 3

func kindOf(t Type) string {
	switch t {
	case CenterX, CenterY:
		return "center"
	case EdgeLeft, EdgeRight, EdgeTop, EdgeBottom:
		return "edge"
	default:
		return "adjacent"
	}
}

func guideForVertical(c *Candidate, a, b Box) GuideLine {
	x := scalar.Round(c.Value, guidePrecision)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kindOf(c.Type),
		Type:        c.Type,
		TargetID:    c.TargetID,
		Position:    x,
		From:        vector.P(x, min(a.Bottom, b.Bottom)),
		To:          vector.P(x, max(a.Top, b.Top)),
	}
}

func guideForHorizontal(c *Candidate, a, b Box) GuideLine {
	y := scalar.Round(c.Value, guidePrecision)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kindOf(c.Type),
		Type:        c.Type,
		TargetID:    c.TargetID,
		Position:    y,
		From:        vector.P(min(a.Left, b.Left), y),
		To:          vector.P(max(a.Right, b.Right), y),
	}
}

// Guides builds at most two guides spanning the moved box and the matched
// target. lookup resolves target ids; unknown targets produce no guide.
func Guides(best Best, moved Box, lookup func(id string) (shape.Shape, bool)) []GuideLine {
	var out []GuideLine
	if c := best.Vertical; c != nil {
		if t, ok := lookup(c.TargetID); ok {
			out = append(out, guideForVertical(c, moved, BoxOf(t)))
		}
	}
	if c := best.Horizontal; c != nil {
		if t, ok := lookup(c.TargetID); ok {
			out = append(out, guideForHorizontal(c, moved, BoxOf(t)))
		}
	}
	return out
}

// Resolver bundles the alignment toggle and threshold.
type Resolver struct {
	Enabled   bool
	Threshold float64
}

// Outcome of a single drag update.
type Outcome struct {
	Position   vector.Pt
	Candidates []Candidate
	Best       Best
	Guides     []GuideLine
}

// Resolve adjusts proposed for dragged against others. When alignment is
// disabled, or dragged does not take part, proposed is returned untouched.
func (r Resolver) Resolve(dragged shape.Shape, proposed vector.Pt, others []shape.Shape) Outcome {
	out := Outcome{Position: proposed}
	if !r.Enabled || dragged == nil || !Supported(dragged) {
		return out
	}
	out.Candidates = FindCandidates(dragged, proposed, others, r.Threshold)
	out.Best = BestOf(out.Candidates)
	if out.Best.Empty() {
		return out
	}
	box := BoxAt(dragged, proposed)
	out.Position = Apply(proposed, box, out.Best)
	byID := make(map[string]shape.Shape, len(others))
	for _, o := range others {
		byID[o.ID()] = o
	}
	out.Guides = Guides(out.Best, BoxAt(dragged, out.Position), func(id string) (shape.Shape, bool) {
		s, ok := byID[id]
		return s, ok
	})
	return out
}
