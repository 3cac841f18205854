/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"math"

	"godraft/internal/align"
	"godraft/internal/config"
	"godraft/internal/measure"
	"godraft/internal/projector"
	"godraft/internal/snap"
	"godraft/internal/transform"
)

// Options gathers every tunable of the controller.
type Options struct {
	Snap           snap.Options
	Align          align.Resolver
	Projector      projector.Options
	Transform      transform.Config
	Measure        measure.Options
	Draw           measure.DrawParams
	Units          string
	PickTolerance  float64
	LabelTolerance float64
}

func DefaultOptions() Options {
	return OptionsFromConfig(config.Defaults())
}

// OptionsFromConfig maps the user configuration onto controller options.
func OptionsFromConfig(c config.AppConfig) Options {
	so := snap.Options{
		SnapToPoints:  c.Snap.Points,
		SnapToEdges:   c.Snap.Edges,
		IncludeGuides: c.Snap.Guides,
		Threshold:     c.Snap.Threshold,
		PriorityBias:  c.Snap.PriorityBias,
	}
	return Options{
		Snap:      so,
		Align:     align.Resolver{Enabled: c.Align.Enabled, Threshold: c.Align.Threshold},
		Projector: projector.Options{Grid: c.Grid.Enabled, GridStep: c.Grid.Step},
		Transform: transform.Config{
			MinExtent:         c.Transform.MinExtent,
			MinTriangleExtent: c.Transform.MinTriangleExtent,
			AngleSnap:         c.Transform.AngleSnapDegrees * math.Pi / 180,
		},
		Measure: measure.Options{
			Snap:                so,
			AllowFree:           c.Snap.AllowFree,
			MinSegment:          c.Measure.MinSegment,
			ZeroOffsetTolerance: c.Measure.ZeroOffsetTolerance,
			MaxOffset:           c.Measure.MaxOffset,
		},
		Draw:           measure.DrawParams{ExtensionOvershoot: c.Measure.ExtensionOvershoot, ArrowSize: c.Measure.ArrowSize},
		Units:          c.Measure.Units,
		PickTolerance:  0.15,
		LabelTolerance: 0.3,
	}
}
