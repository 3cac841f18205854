/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package measure implements dimensioning: the three-click measure tool,
// the measurement records it produces, their drawable geometry and the
// live re-tracking of endpoints attached to shapes.
//
// Attached endpoints are stored as normalized coordinates of the owning
// shape's local bounding box, so they follow the shape through
// translation, rotation and non-uniform resizing.
package measure

import (
	"fmt"
	"image/color"
	"math"

	"godraft/internal/shape"
	"godraft/internal/vector"
)

// Dimension is the extent a role measurement reports.
type Dimension int

const (
	Width Dimension = iota
	Height
)

func (d Dimension) String() string {
	if d == Height {
		return "height"
	}
	return "width"
}

// Anchor is the shape edge that stays fixed when the label drives a resize.
type Anchor int

const (
	AnchorLeft Anchor = iota
	AnchorRight
	AnchorTop
	AnchorBottom
)

func (a Anchor) String() string {
	switch a {
	case AnchorLeft:
		return "left"
	case AnchorRight:
		return "right"
	case AnchorTop:
		return "top"
	case AnchorBottom:
		return "bottom"
	default:
		return fmt.Sprintf("anchor(%d)", int(a))
	}
}

// normalized is the anchor edge midpoint in normalized box coordinates.
func (a Anchor) normalized() vector.Pt {
	switch a {
	case AnchorLeft:
		return vector.P(0, 0.5)
	case AnchorRight:
		return vector.P(1, 0.5)
	case AnchorTop:
		return vector.P(0.5, 1)
	default:
		return vector.P(0.5, 0)
	}
}

// Role tags a measurement whose label edits resize its shape.
type Role struct {
	Dimension Dimension
	Anchor    Anchor
}

func (r Role) String() string { return r.Dimension.String() + "@" + r.Anchor.String() }

// Attachment links an endpoint to a point of a shape.
type Attachment struct {
	ShapeID    string
	Normalized vector.Pt
}

// Style is owned by renderers; the engine only clamps the opacity.
type Style struct {
	LineColor    color.RGBA
	TextColor    color.RGBA
	LineWidth    float64
	FontSize     float64
	labelOpacity float64
}

func DefaultStyle() Style {
	return Style{
		LineColor:    color.RGBA{R: 0x1f, G: 0x4e, B: 0xd8, A: 0xff},
		TextColor:    color.RGBA{A: 0xff},
		LineWidth:    0.02,
		FontSize:     12,
		labelOpacity: 1,
	}
}

func (s Style) LabelOpacity() float64 { return s.labelOpacity }

// SetLabelOpacity clamps v into [0,1].
func (s *Style) SetLabelOpacity(v float64) {
	if math.IsNaN(v) {
		v = 1
	}
	s.labelOpacity = vector.Clamp(v, 0, 1)
}

// Measurement is a linear dimension between two world points.
type Measurement struct {
	ID     string
	Start  vector.Pt
	End    vector.Pt
	Offset float64 // signed, along the left normal of Start->End
	// LabelPosition is the label's place along the dimension line, 0..1.
	LabelPosition   float64
	Style           Style
	StartAttachment *Attachment
	EndAttachment   *Attachment
	Role            *Role
	Distance        float64
}

// Attached reports whether any endpoint follows a shape.
func (m *Measurement) Attached() bool { return m.StartAttachment != nil || m.EndAttachment != nil }

// AttachedTo reports whether an endpoint follows shape id.
func (m *Measurement) AttachedTo(id string) bool {
	return (m.StartAttachment != nil && m.StartAttachment.ShapeID == id) ||
		(m.EndAttachment != nil && m.EndAttachment.ShapeID == id)
}

func (m *Measurement) refresh() { m.Distance = vector.Dist(m.Start, m.End) }

// retrack recomputes the endpoints attached to s.
func (m *Measurement) retrack(s shape.Shape) bool {
	changed := false
	if a := m.StartAttachment; a != nil && a.ShapeID == s.ID() {
		m.Start = shape.NormalizedToWorld(s, a.Normalized)
		changed = true
	}
	if a := m.EndAttachment; a != nil && a.ShapeID == s.ID() {
		m.End = shape.NormalizedToWorld(s, a.Normalized)
		changed = true
	}
	if changed {
		m.refresh()
	}
	return changed
}

// DrawParams sizes the decorations of a dimension.
type DrawParams struct {
	ExtensionOvershoot float64
	ArrowSize          float64
}

func DefaultDrawParams() DrawParams { return DrawParams{ExtensionOvershoot: 0.1, ArrowSize: 0.15} }

// Arrow is a filled triangle with its tip on the dimension line end.
type Arrow struct {
	Tip, Left, Right vector.Pt
}

// Geometry is everything a renderer needs to draw a measurement.
type Geometry struct {
	Direction vector.Pt // unit Start->End
	Normal    vector.Pt // left normal of Direction
	DimStart  vector.Pt
	DimEnd    vector.Pt
	// Extension lines run from each endpoint past the dimension line.
	ExtStart [2]vector.Pt
	ExtEnd   [2]vector.Pt
	Arrows   [2]Arrow
	Label    vector.Pt
	Text     string
}

// Derive computes the dimension line, extension lines, arrows and label
// anchor of m. The side is always the left normal (-dy, dx) of the
// segment, so swapping the endpoints mirrors the dimension.
func Derive(m *Measurement, p DrawParams, units string) Geometry {
	dir := vector.UnitOr(vector.Pt{X: m.End.X - m.Start.X, Y: m.End.Y - m.Start.Y}, vector.P(1, 0))
	n := vector.LeftNormal(dir)
	off := vector.Pt{X: n.X * m.Offset, Y: n.Y * m.Offset}
	g := Geometry{
		Direction: dir,
		Normal:    n,
		DimStart:  vector.Pt{X: m.Start.X + off.X, Y: m.Start.Y + off.Y},
		DimEnd:    vector.Pt{X: m.End.X + off.X, Y: m.End.Y + off.Y},
	}
	side := 1.0
	if m.Offset < 0 {
		side = -1
	}
	over := vector.Pt{X: n.X * side * p.ExtensionOvershoot, Y: n.Y * side * p.ExtensionOvershoot}
	g.ExtStart = [2]vector.Pt{m.Start, {X: g.DimStart.X + over.X, Y: g.DimStart.Y + over.Y}}
	g.ExtEnd = [2]vector.Pt{m.End, {X: g.DimEnd.X + over.X, Y: g.DimEnd.Y + over.Y}}
	g.Arrows[0] = arrow(g.DimStart, dir, n, p.ArrowSize)
	g.Arrows[1] = arrow(g.DimEnd, vector.Pt{X: -dir.X, Y: -dir.Y}, n, p.ArrowSize)
	g.Label = vector.Lerp(g.DimStart, g.DimEnd, vector.Clamp(m.LabelPosition, 0, 1))
	g.Text = FormatLength(m.Distance, units)
	return g
}

// arrow points at tip; inward is the direction from tip into the line.
func arrow(tip, inward, n vector.Pt, size float64) Arrow {
	base := vector.Pt{X: tip.X + inward.X*size, Y: tip.Y + inward.Y*size}
	w := size / 3
	return Arrow{
		Tip:   tip,
		Left:  vector.Pt{X: base.X + n.X*w, Y: base.Y + n.Y*w},
		Right: vector.Pt{X: base.X - n.X*w, Y: base.Y - n.Y*w},
	}
}
