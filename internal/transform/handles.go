/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"fmt"
	"math"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

// RotateHandleOffset is the world distance of the rotate handle above the
// shape's top edge.
var RotateHandleOffset = 0.5

var resizeNormalized = map[Handle]vector.Pt{
	HandleLeft:        {X: 0, Y: 0.5},
	HandleRight:       {X: 1, Y: 0.5},
	HandleTop:         {X: 0.5, Y: 1},
	HandleBottom:      {X: 0.5, Y: 0},
	HandleTopLeft:     {X: 0, Y: 1},
	HandleTopRight:    {X: 1, Y: 1},
	HandleBottomLeft:  {X: 0, Y: 0},
	HandleBottomRight: {X: 1, Y: 0},
}

// HandleSpot is a handle and its world position.
type HandleSpot struct {
	Handle   Handle
	Position vector.Pt
}

// Handles lists the grabbable handles of s in world space, resize handles
// first. Degenerate shapes have none.
func Handles(s shape.Shape) []HandleSpot {
	if shape.Degenerate(s) {
		return nil
	}
	switch v := s.(type) {
	case *shape.Plane, *shape.Circle, *shape.Triangle:
		out := make([]HandleSpot, 0, len(resizeNormalized)+1)
		for h := HandleLeft; h <= HandleBottomRight; h++ {
			out = append(out, HandleSpot{Handle: h, Position: shape.NormalizedToWorld(s, resizeNormalized[h])})
		}
		top := shape.NormalizedToWorld(s, resizeNormalized[HandleTop])
		rot := s.Transform().Rotation
		up := vector.P(-math.Sin(rot), math.Cos(rot))
		out = append(out, HandleSpot{Handle: HandleRotate, Position: vector.P(top.X+up.X*RotateHandleOffset, top.Y+up.Y*RotateHandleOffset)})
		return out
	case *shape.Line:
		return []HandleSpot{
			{Handle: HandleLineStart, Position: shape.LocalToWorld(v, v.Start)},
			{Handle: HandleLineEnd, Position: shape.LocalToWorld(v, v.End)},
		}
	default:
		panic(fmt.Sprintf("transform: unknown shape type %T", s))
	}
}

// HandleAt returns the first handle of s within tol of world point p.
func HandleAt(s shape.Shape, p vector.Pt, tol float64) (Handle, bool) {
	for _, hs := range Handles(s) {
		if vector.Dist(hs.Position, p) <= tol {
			return hs.Handle, true
		}
	}
	return HandleNone, false
}
