/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package measure

import (
	"math"

	"github.com/google/uuid"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

// Set is the live measurement collection in creation order. At most one
// label drag is active at a time.
type Set struct {
	items    []*Measurement
	dragging *Measurement
}

func NewSet() *Set { return &Set{} }

// Add appends m, replacing a measurement with the same id in place.
func (st *Set) Add(m *Measurement) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	for i, it := range st.items {
		if it.ID == m.ID {
			st.items[i] = m
			return
		}
	}
	st.items = append(st.items, m)
}

func (st *Set) Get(id string) (*Measurement, bool) {
	for _, it := range st.items {
		if it.ID == id {
			return it, true
		}
	}
	return nil, false
}

// Remove deletes a measurement; a label drag on it ends.
func (st *Set) Remove(id string) bool {
	for i, it := range st.items {
		if it.ID == id {
			st.items = append(st.items[:i], st.items[i+1:]...)
			if st.dragging == it {
				st.dragging = nil
			}
			return true
		}
	}
	return false
}

// All returns the measurements; the slice is a copy, the records are live.
func (st *Set) All() []*Measurement {
	out := make([]*Measurement, len(st.items))
	copy(out, st.items)
	return out
}

func (st *Set) Len() int { return len(st.items) }

// Retrack recomputes every endpoint attached to s. It must run after s's
// transform and bounds are current. It returns the number of
// measurements that moved.
func (st *Set) Retrack(s shape.Shape) int {
	n := 0
	for _, it := range st.items {
		if it.retrack(s) {
			n++
		}
	}
	return n
}

// Orphan detaches every endpoint that follows shapeID. The measurements
// stay where they are as free dimensions.
func (st *Set) Orphan(shapeID string) int {
	n := 0
	for _, it := range st.items {
		if !it.AttachedTo(shapeID) {
			continue
		}
		if it.StartAttachment != nil && it.StartAttachment.ShapeID == shapeID {
			it.StartAttachment = nil
		}
		if it.EndAttachment != nil && it.EndAttachment.ShapeID == shapeID {
			it.EndAttachment = nil
		}
		it.Role = nil
		n++
	}
	return n
}

// BeginLabelDrag starts dragging the label of id. It fails while another
// label is being dragged.
func (st *Set) BeginLabelDrag(id string) bool {
	if st.dragging != nil {
		return false
	}
	m, ok := st.Get(id)
	if !ok {
		return false
	}
	st.dragging = m
	return true
}

// Dragging returns the measurement whose label is being dragged.
func (st *Set) Dragging() (*Measurement, bool) { return st.dragging, st.dragging != nil }

// DragLabel moves the dragged label to world point p: the perpendicular
// distance becomes the offset, clamped to maxOffset, and the projection
// onto the segment becomes the label position.
func (st *Set) DragLabel(p vector.Pt, maxOffset float64) bool {
	m := st.dragging
	if m == nil || !vector.Finite(p) {
		return false
	}
	MoveLabel(m, p, maxOffset)
	return true
}

// MoveLabel places m's label at p.
func MoveLabel(m *Measurement, p vector.Pt, maxOffset float64) {
	if vector.Dist(m.Start, m.End) == 0 {
		return
	}
	m.Offset = vector.Clamp(vector.SignedDistance(p, m.Start, m.End), -maxOffset, maxOffset)
	_, t := vector.ClosestPointOnSegment(p, m.Start, m.End)
	m.LabelPosition = t
}

func (st *Set) EndLabelDrag() { st.dragging = nil }

// Resizer changes a shape's size and position, notifying dependents.
type Resizer interface {
	SetExtents(s shape.Shape, ext vector.Pt) bool
	Translate(s shape.Shape, pos vector.Pt)
}

// ApplyLength edits a role measurement's value: the shape is resized so
// the measured extent becomes length (world units) while the anchored
// edge stays put. Dependent measurements are re-tracked afterwards.
func (st *Set) ApplyLength(m *Measurement, length float64, scene *shape.Scene, r Resizer) bool {
	if m == nil || m.Role == nil || m.StartAttachment == nil || scene == nil || r == nil {
		return false
	}
	if math.IsNaN(length) || math.IsInf(length, 0) || length <= 0 {
		return false
	}
	s, ok := scene.Get(m.StartAttachment.ShapeID)
	if !ok {
		return false
	}
	ext, ok := shape.Extents(s)
	if !ok {
		return false
	}
	scale := s.Transform().Scale
	_, tri := s.(*shape.Triangle)
	switch m.Role.Dimension {
	case Width:
		if scale.X == 0 {
			return false
		}
		ext.X = length / (2 * math.Abs(scale.X))
	case Height:
		if scale.Y == 0 {
			return false
		}
		ext.Y = length / math.Abs(scale.Y)
		if !tri {
			ext.Y /= 2
		}
	}
	fixed := m.Role.Anchor.normalized()
	before := shape.NormalizedToWorld(s, fixed)
	if !r.SetExtents(s, ext) {
		return false
	}
	after := shape.NormalizedToWorld(s, fixed)
	pos := s.Transform().Position
	r.Translate(s, vector.P(pos.X+before.X-after.X, pos.Y+before.Y-after.Y))
	st.Retrack(s)
	return true
}

// DimensionGap is the default offset of generated plane dimensions.
var DimensionGap = 0.5

// NewPlaneDimension creates a width or height dimension attached to p.
// Widths run along the bottom edge and sit below it; heights run up the
// right edge and sit to its right.
func NewPlaneDimension(p *shape.Plane, role Role) *Measurement {
	var a, b vector.Pt
	if role.Dimension == Width {
		a, b = vector.P(0, 0), vector.P(1, 0)
	} else {
		a, b = vector.P(1, 0), vector.P(1, 1)
	}
	r := role
	m := &Measurement{
		ID:              uuid.NewString(),
		Start:           shape.NormalizedToWorld(p, a),
		End:             shape.NormalizedToWorld(p, b),
		Offset:          -DimensionGap,
		LabelPosition:   0.5,
		Style:           DefaultStyle(),
		StartAttachment: &Attachment{ShapeID: p.ID(), Normalized: a},
		EndAttachment:   &Attachment{ShapeID: p.ID(), Normalized: b},
		Role:            &r,
	}
	m.refresh()
	return m
}
