/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction owns the pointer-driven editing state of a drawing.
//
// Exactly one Mode is active at a time. Modes change only through begin
// and release, so a resize can never overlap a label drag or a plain
// shape drag.
package interaction

import (
	"godraft/internal/transform"
	"godraft/internal/vector"
)

// Mode is one of Idle, Dragging, Resizing, Rotating or LabelDragging.
type Mode interface {
	String() string
	mode()
}

type Idle struct{}

// Dragging moves a shape; Grab is the shape position minus the pointer at
// press time.
type Dragging struct {
	ShapeID string
	Grab    vector.Pt
}

type Resizing struct {
	ShapeID string
	Handle  transform.Handle
}

type Rotating struct {
	ShapeID string
}

type LabelDragging struct {
	MeasurementID string
}

func (Idle) mode()          {}
func (Dragging) mode()      {}
func (Resizing) mode()      {}
func (Rotating) mode()      {}
func (LabelDragging) mode() {}

func (Idle) String() string            { return "idle" }
func (m Dragging) String() string      { return "dragging(" + m.ShapeID + ")" }
func (m Resizing) String() string      { return "resizing(" + m.ShapeID + "," + m.Handle.String() + ")" }
func (m Rotating) String() string      { return "rotating(" + m.ShapeID + ")" }
func (m LabelDragging) String() string { return "label(" + m.MeasurementID + ")" }

// begin enters next from cur. Only Idle may start a gesture.
func begin(cur, next Mode) (Mode, bool) {
	if _, idle := cur.(Idle); !idle {
		return cur, false
	}
	return next, true
}

// release ends whatever gesture is active.
func release(Mode) Mode { return Idle{} }

// shapeOf returns the shape a mode manipulates.
func shapeOf(m Mode) (string, bool) {
	switch v := m.(type) {
	case Dragging:
		return v.ShapeID, true
	case Resizing:
		return v.ShapeID, true
	case Rotating:
		return v.ShapeID, true
	}
	return "", false
}

// Tool is the active editing tool.
type Tool int

const (
	ToolSelect Tool = iota
	ToolMeasure
)

func (t Tool) String() string {
	if t == ToolMeasure {
		return "measure"
	}
	return "select"
}
