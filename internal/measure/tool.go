/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package measure

import (
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	applog "godraft/internal/log"
	"godraft/internal/shape"
	"godraft/internal/snap"
	"godraft/internal/vector"
)

// Phase is the measure tool state.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseHaveFirst
	PhaseHaveBoth
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseHaveFirst:
		return "have-first"
	case PhaseHaveBoth:
		return "have-both"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Options tunes the tool.
type Options struct {
	Snap                snap.Options
	AllowFree           bool
	MinSegment          float64 // shortest accepted segment, one foot by default
	ZeroOffsetTolerance float64 // third click this close to the second gives offset 0
	MaxOffset           float64
}

func DefaultOptions() Options {
	return Options{
		Snap:                snap.DefaultOptions(),
		AllowFree:           true,
		MinSegment:          0.3048,
		ZeroOffsetTolerance: 0.15,
		MaxOffset:           20,
	}
}

type endpoint struct {
	pos     vector.Pt
	shapeID string
}

// Tool is the click-driven measure state machine:
// empty -> have-first -> have-both -> empty (emitting a Measurement).
type Tool struct {
	Opts   Options
	Logger *slog.Logger

	phase  Phase
	first  endpoint
	second endpoint
}

func NewTool(opts Options) *Tool { return &Tool{Opts: opts} }

func (t *Tool) Phase() Phase { return t.phase }

// Cancel drops any pending endpoints.
func (t *Tool) Cancel() {
	t.phase = PhaseEmpty
	t.first, t.second = endpoint{}, endpoint{}
}

func (t *Tool) pick(p vector.Pt, shapes []shape.Shape) (endpoint, *snap.Result, bool) {
	res, ok := snap.ResolveShapes(p, shapes, t.Opts.Snap)
	pos, id, accepted := snap.Accept(p, res, ok, t.Opts.AllowFree)
	if !accepted {
		return endpoint{}, nil, false
	}
	ep := endpoint{pos: pos, shapeID: id}
	if ok {
		return ep, &res, true
	}
	return ep, nil, true
}

// Click advances the state machine with a click at world point p. The
// third click returns the finished measurement. Clicks that cannot be
// resolved, or a second click closer than MinSegment, leave the state
// unchanged.
func (t *Tool) Click(p vector.Pt, shapes []shape.Shape) (*Measurement, bool) {
	if !vector.Finite(p) {
		return nil, false
	}
	switch t.phase {
	case PhaseEmpty:
		ep, _, ok := t.pick(p, shapes)
		if !ok {
			t.debug("click ignored", slog.String("reason", "no snap"), applog.Pt("at", p))
			return nil, false
		}
		t.first = ep
		t.phase = PhaseHaveFirst
	case PhaseHaveFirst:
		ep, _, ok := t.pick(p, shapes)
		if !ok {
			t.debug("click ignored", slog.String("reason", "no snap"), applog.Pt("at", p))
			return nil, false
		}
		if vector.Dist(ep.pos, t.first.pos) < t.Opts.MinSegment {
			t.debug("click ignored", slog.String("reason", "segment too short"), applog.Pt("at", ep.pos))
			return nil, false
		}
		t.second = ep
		t.phase = PhaseHaveBoth
	case PhaseHaveBoth:
		m := t.build(p, shapes)
		t.Cancel()
		return m, true
	}
	return nil, false
}

// offsetFor is the dimension offset for a pointer at p.
func (t *Tool) offsetFor(p vector.Pt) float64 {
	if vector.Dist(p, t.second.pos) <= t.Opts.ZeroOffsetTolerance {
		return 0
	}
	d := vector.SignedDistance(p, t.first.pos, t.second.pos)
	return vector.Clamp(d, -t.Opts.MaxOffset, t.Opts.MaxOffset)
}

func (t *Tool) build(p vector.Pt, shapes []shape.Shape) *Measurement {
	m := &Measurement{
		ID:            uuid.NewString(),
		Start:         t.first.pos,
		End:           t.second.pos,
		Offset:        t.offsetFor(p),
		LabelPosition: 0.5,
		Style:         DefaultStyle(),
	}
	m.refresh()
	if t.first.shapeID != "" && t.second.shapeID != "" {
		a, okA := attach(t.first, shapes)
		b, okB := attach(t.second, shapes)
		if okA && okB {
			m.StartAttachment, m.EndAttachment = a, b
		}
	}
	return m
}

func attach(ep endpoint, shapes []shape.Shape) (*Attachment, bool) {
	for _, s := range shapes {
		if s.ID() != ep.shapeID {
			continue
		}
		local := shape.WorldToLocal(s, ep.pos)
		return &Attachment{ShapeID: s.ID(), Normalized: shape.NormalizedCoordinates(s, local)}, true
	}
	return nil, false
}

// Preview is what the tool shows under the cursor before a click.
type Preview struct {
	Phase  Phase
	Cursor vector.Pt // snapped when Snap is set
	Snap   *snap.Result
	// Segment is the dashed rubber band while waiting for the second point.
	Segment *[2]vector.Pt
	// Pending is the dimension the third click would create.
	Pending *Measurement
}

// Hover resolves the cursor without changing state.
func (t *Tool) Hover(p vector.Pt, shapes []shape.Shape) Preview {
	pv := Preview{Phase: t.phase, Cursor: p}
	if !vector.Finite(p) {
		return pv
	}
	switch t.phase {
	case PhaseEmpty, PhaseHaveFirst:
		ep, res, ok := t.pick(p, shapes)
		if ok {
			pv.Cursor = ep.pos
			pv.Snap = res
		}
		if t.phase == PhaseHaveFirst {
			pv.Segment = &[2]vector.Pt{t.first.pos, pv.Cursor}
		}
	case PhaseHaveBoth:
		m := &Measurement{
			Start:         t.first.pos,
			End:           t.second.pos,
			Offset:        t.offsetFor(p),
			LabelPosition: 0.5,
			Style:         DefaultStyle(),
		}
		m.refresh()
		pv.Pending = m
	}
	return pv
}

func (t *Tool) debug(msg string, attrs ...any) {
	if t.Logger != nil {
		t.Logger.Debug(msg, append([]any{slog.String("phase", t.phase.String())}, attrs...)...)
	}
}
