/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"godraft/internal/measure"
	"godraft/internal/shape"
	"godraft/internal/transform"
	"godraft/internal/vector"
)

type HitKind int

const (
	HitNone HitKind = iota
	HitLabel
	HitHandle
	HitShape
)

// Hit is what lies under the pointer.
type Hit struct {
	Kind          HitKind
	ShapeID       string
	Handle        transform.Handle
	MeasurementID string
}

// Picker resolves a world point to the object under it. selected is the
// id of the selected shape, whose handles are pickable.
type Picker interface {
	Pick(world vector.Pt, selected string) Hit
}

// ScenePicker tests measurement labels, then the selected shape's handles,
// then shapes from the top of the scene down.
type ScenePicker struct {
	Scene          *shape.Scene
	Measurements   *measure.Set
	Draw           measure.DrawParams
	Tolerance      float64
	LabelTolerance float64
}

func (p *ScenePicker) Pick(world vector.Pt, selected string) Hit {
	if p.Measurements != nil {
		best, bestD := "", p.LabelTolerance
		for _, m := range p.Measurements.All() {
			g := measure.Derive(m, p.Draw, "")
			if d := vector.Dist(g.Label, world); d <= bestD {
				best, bestD = m.ID, d
			}
		}
		if best != "" {
			return Hit{Kind: HitLabel, MeasurementID: best}
		}
	}
	if p.Scene == nil {
		return Hit{}
	}
	if selected != "" {
		if s, ok := p.Scene.Get(selected); ok {
			if h, ok := transform.HandleAt(s, world, p.Tolerance); ok {
				return Hit{Kind: HitHandle, ShapeID: s.ID(), Handle: h}
			}
		}
	}
	if s, ok := p.Scene.TopmostAt(world, p.Tolerance); ok {
		return Hit{Kind: HitShape, ShapeID: s.ID()}
	}
	return Hit{}
}
