/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transform resizes and rotates shapes from handle drags.
//
// Resizing works on a unit-normalized copy of the shape's vertex buffers
// captured when the drag begins: each vertex is stored relative to the
// local bounding-box centre and divided by the current half extents. An
// update then only multiplies every cached unit vertex by the new half
// extents, so vertices never jump no matter how far the size changes.
package transform

import (
	"fmt"
	"log/slog"
	"math"

	applog "godraft/internal/log"
	"godraft/internal/shape"
	"godraft/internal/vector"
)

// Handle identifies what a drag manipulates.
type Handle int

const (
	HandleNone Handle = iota
	HandleLeft
	HandleRight
	HandleTop
	HandleBottom
	HandleTopLeft
	HandleTopRight
	HandleBottomLeft
	HandleBottomRight
	HandleRotate
	HandleLineStart
	HandleLineEnd
)

func (h Handle) String() string {
	switch h {
	case HandleNone:
		return "none"
	case HandleLeft:
		return "left"
	case HandleRight:
		return "right"
	case HandleTop:
		return "top"
	case HandleBottom:
		return "bottom"
	case HandleTopLeft:
		return "top-left"
	case HandleTopRight:
		return "top-right"
	case HandleBottomLeft:
		return "bottom-left"
	case HandleBottomRight:
		return "bottom-right"
	case HandleRotate:
		return "rotate"
	case HandleLineStart:
		return "line-start"
	case HandleLineEnd:
		return "line-end"
	default:
		return fmt.Sprintf("handle(%d)", int(h))
	}
}

// ParseHandle is the inverse of Handle.String.
func ParseHandle(s string) (Handle, bool) {
	for h := HandleLeft; h <= HandleLineEnd; h++ {
		if h.String() == s {
			return h, true
		}
	}
	return HandleNone, false
}

// signs is the outward direction of a resize handle per local axis.
func (h Handle) signs() (sx, sy float64) {
	switch h {
	case HandleLeft:
		return -1, 0
	case HandleRight:
		return 1, 0
	case HandleTop:
		return 0, 1
	case HandleBottom:
		return 0, -1
	case HandleTopLeft:
		return -1, 1
	case HandleTopRight:
		return 1, 1
	case HandleBottomLeft:
		return -1, -1
	case HandleBottomRight:
		return 1, -1
	}
	return 0, 0
}

// IsResize reports whether h changes extents.
func (h Handle) IsResize() bool {
	sx, sy := h.signs()
	return sx != 0 || sy != 0
}

func (h Handle) isCorner() bool {
	sx, sy := h.signs()
	return sx != 0 && sy != 0
}

// Applies reports whether handle h is offered for shape s.
func Applies(s shape.Shape, h Handle) bool {
	switch s.(type) {
	case *shape.Plane, *shape.Circle, *shape.Triangle:
		return h.IsResize() || h == HandleRotate
	case *shape.Line:
		return h == HandleLineStart || h == HandleLineEnd || h == HandleRotate
	default:
		panic(fmt.Sprintf("transform: unknown shape type %T", s))
	}
}

// Config holds the clamps and snapping steps.
type Config struct {
	MinExtent         float64 // half extent floor for planes and circles
	MinTriangleExtent float64 // floor for triangle half base and height
	AngleSnap         float64 // radians, applied with shift
}

func DefaultConfig() Config {
	return Config{MinExtent: 0.1, MinTriangleExtent: 0.2, AngleSnap: 15 * math.Pi / 180}
}

// Modifiers is the keyboard state sampled with a pointer event.
type Modifiers struct {
	Shift bool
}

type units struct {
	center  vector.Pt
	fill    []float64
	outline []float64
}

type session struct {
	shape  shape.Shape
	handle Handle
	start  vector.Pt // half extents at begin
	ref    vector.Pt
	hasRef bool

	pivot      vector.Pt
	startRot   float64
	startAngle float64
}

// Engine runs at most one handle drag at a time. It is not safe for
// concurrent use.
type Engine struct {
	Config Config
	// OnChange runs after every mutation, once the shape's buffers and
	// bounds are current.
	OnChange func(shape.Shape)
	Logger   *slog.Logger

	cache map[string]*units
	cur   *session
}

func New(cfg Config) *Engine {
	return &Engine{Config: cfg, cache: make(map[string]*units)}
}

// Active reports whether a drag is in progress.
func (e *Engine) Active() bool { return e.cur != nil }

// Current returns the shape id and handle of the active drag.
func (e *Engine) Current() (string, Handle, bool) {
	if e.cur == nil {
		return "", HandleNone, false
	}
	return e.cur.shape.ID(), e.cur.handle, true
}

// Begin starts a drag of handle h on s with the pointer at world point p.
// It returns false when h does not apply to s or s has no usable size.
func (e *Engine) Begin(s shape.Shape, h Handle, p vector.Pt) bool {
	if s == nil || !Applies(s, h) {
		return false
	}
	e.End()
	sess := &session{shape: s, handle: h}
	switch {
	case h.IsResize():
		half, ok := halfExtents(s)
		if !ok || half.X <= 0 || half.Y <= 0 {
			e.debug("resize refused", s, slog.String("reason", "degenerate extents"))
			return false
		}
		sess.start = half
		e.cache[s.ID()] = capture(s, half)
	case h == HandleRotate:
		xf := s.Transform()
		sess.pivot = xf.Position
		sess.startRot = xf.Rotation
		sess.startAngle = vector.Angle(vector.Pt{X: p.X - sess.pivot.X, Y: p.Y - sess.pivot.Y})
	}
	e.cur = sess
	return true
}

// Update applies the pointer at world point p. It returns true when the
// shape changed.
func (e *Engine) Update(p vector.Pt, mods Modifiers) bool {
	if e.cur == nil || !vector.Finite(p) {
		return false
	}
	switch h := e.cur.handle; {
	case h.IsResize():
		return e.updateResize(p, mods)
	case h == HandleRotate:
		return e.updateRotate(p, mods)
	case h == HandleLineStart || h == HandleLineEnd:
		return e.updateLine(p, mods)
	}
	return false
}

// End discards the session and every cached unit buffer.
func (e *Engine) End() {
	e.cur = nil
	clear(e.cache)
}

func (e *Engine) updateResize(p vector.Pt, mods Modifiers) bool {
	sess := e.cur
	s := sess.shape
	local := shape.WorldToLocal(s, p)
	if !sess.hasRef {
		// The first move only anchors the reference so the shape does
		// not jump by the grab offset.
		sess.ref = local
		sess.hasRef = true
		return false
	}
	sx, sy := sess.handle.signs()
	next := sess.start
	if sx != 0 {
		next.X = sess.start.X + (local.X-sess.ref.X)*sx
	}
	if sy != 0 {
		next.Y = sess.start.Y + (local.Y-sess.ref.Y)*sy
	}
	minX, minY := e.minHalf(s)
	if mods.Shift {
		var r float64
		switch {
		case sess.handle.isCorner():
			r = max(next.X/sess.start.X, next.Y/sess.start.Y)
		case sx != 0:
			r = next.X / sess.start.X
		default:
			r = next.Y / sess.start.Y
		}
		r = max(r, minX/sess.start.X, minY/sess.start.Y)
		next = vector.P(sess.start.X*r, sess.start.Y*r)
	} else {
		if next.X < minX || next.Y < minY {
			e.debug("resize clamped", s, applog.Pt("half", next))
		}
		next = vector.P(max(next.X, minX), max(next.Y, minY))
	}
	u := e.cache[s.ID()]
	if u == nil {
		return false
	}
	if cur, ok := halfExtents(s); ok && cur == next {
		return false
	}
	apply(s, u, next)
	e.changed(s)
	return true
}

func (e *Engine) updateRotate(p vector.Pt, mods Modifiers) bool {
	sess := e.cur
	angle := vector.Angle(vector.Pt{X: p.X - sess.pivot.X, Y: p.Y - sess.pivot.Y})
	rot := sess.startRot + (angle - sess.startAngle)
	if mods.Shift && e.Config.AngleSnap > 0 {
		rot = vector.SnapAngle(rot, e.Config.AngleSnap)
	}
	rot = vector.NormalizeAngle(rot)
	xf := sess.shape.Transform()
	if xf.Rotation == rot {
		return false
	}
	xf.Rotation = rot
	sess.shape.SetTransform(xf)
	e.changed(sess.shape)
	return true
}

// updateLine moves one endpoint; shift snaps the segment direction while
// keeping the pointer's distance from the fixed end.
func (e *Engine) updateLine(p vector.Pt, mods Modifiers) bool {
	l, ok := e.cur.shape.(*shape.Line)
	if !ok {
		return false
	}
	local := shape.WorldToLocal(l, p)
	fixed := l.Start
	if e.cur.handle == HandleLineStart {
		fixed = l.End
	}
	if mods.Shift && e.Config.AngleSnap > 0 {
		d := vector.Pt{X: local.X - fixed.X, Y: local.Y - fixed.Y}
		n := math.Hypot(d.X, d.Y)
		a := vector.SnapAngle(vector.Angle(d), e.Config.AngleSnap)
		local = vector.P(fixed.X+n*math.Cos(a), fixed.Y+n*math.Sin(a))
	}
	if e.cur.handle == HandleLineStart {
		l.SetEndpoints(local, l.End)
	} else {
		l.SetEndpoints(l.Start, local)
	}
	e.changed(l)
	return true
}

// Translate moves s to pos. Buffers are local, so only the transform changes.
func (e *Engine) Translate(s shape.Shape, pos vector.Pt) {
	xf := s.Transform()
	xf.Position = pos
	s.SetTransform(xf)
	e.changed(s)
}

// SetExtents resizes s about its local centre to the given half extents
// (half base and height for triangles), reusing the unit remapping of a
// handle drag. It reports false for lines and degenerate shapes.
func (e *Engine) SetExtents(s shape.Shape, ext vector.Pt) bool {
	half, ok := halfExtents(s)
	if !ok || half.X <= 0 || half.Y <= 0 {
		return false
	}
	if _, tri := s.(*shape.Triangle); tri {
		ext.Y /= 2
	}
	minX, minY := e.minHalf(s)
	ext = vector.P(max(ext.X, minX), max(ext.Y, minY))
	apply(s, capture(s, half), ext)
	e.changed(s)
	return true
}

func (e *Engine) changed(s shape.Shape) {
	if e.OnChange != nil {
		e.OnChange(s)
	}
}

func (e *Engine) debug(msg string, s shape.Shape, attrs ...any) {
	if e.Logger == nil {
		return
	}
	e.Logger.Debug(msg, append([]any{slog.String("shape", s.ID())}, attrs...)...)
}

func (e *Engine) minHalf(s shape.Shape) (float64, float64) {
	if _, tri := s.(*shape.Triangle); tri {
		m := e.Config.MinTriangleExtent
		return m, m / 2
	}
	return e.Config.MinExtent, e.Config.MinExtent
}

// halfExtents is the resize working size. Triangles report half base and
// half height so every kind scales about its centre the same way.
func halfExtents(s shape.Shape) (vector.Pt, bool) {
	e, ok := shape.Extents(s)
	if !ok {
		return e, false
	}
	if _, tri := s.(*shape.Triangle); tri {
		e.Y /= 2
	}
	return e, true
}

func storeHalfExtents(s shape.Shape, h vector.Pt) {
	if _, tri := s.(*shape.Triangle); tri {
		h.Y *= 2
	}
	shape.SetExtents(s, h)
}

func capture(s shape.Shape, half vector.Pt) *units {
	g := s.Geometry()
	c := s.LocalBounds().Center()
	return &units{
		center:  c,
		fill:    normalize(g.Fill, c, half),
		outline: normalize(g.Outline, c, half),
	}
}

func normalize(buf []float64, c, half vector.Pt) []float64 {
	out := make([]float64, len(buf))
	for i := 0; i+1 < len(buf); i += 2 {
		out[i] = (buf[i] - c.X) / half.X
		out[i+1] = (buf[i+1] - c.Y) / half.Y
	}
	return out
}

func remap(dst, unit []float64, c, half vector.Pt) {
	for i := 0; i+1 < len(unit) && i+1 < len(dst); i += 2 {
		dst[i] = c.X + unit[i]*half.X
		dst[i+1] = c.Y + unit[i+1]*half.Y
	}
}

func apply(s shape.Shape, u *units, half vector.Pt) {
	g := s.Geometry()
	remap(g.Fill, u.fill, u.center, half)
	remap(g.Outline, u.outline, u.center, half)
	storeHalfExtents(s, half)
	s.RecomputeBounds()
}
