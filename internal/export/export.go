/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders a drawing to SVG, PDF or PNG for debugging and
// review. Output pages are Y-down; world space is Y-up, so every backend
// goes through the same page mapping.
package export

import (
	"fmt"
	"image/color"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"

	"godraft/internal/align"
	"godraft/internal/measure"
	"godraft/internal/shape"
	"godraft/internal/vector"
)

// Format selects a backend.
type Format string

const (
	SVG Format = "svg"
	PDF Format = "pdf"
	PNG Format = "png"
)

// FormatFromPath picks the backend by file extension.
func FormatFromPath(path string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))); f {
	case SVG, PDF, PNG:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q", filepath.Ext(path))
	}
}

// Options controls layout and styling.
type Options struct {
	Scale         float64 // output units (px or pt) per world unit
	Margin        float64 // world units around the content
	IncludeGuides bool
	Units         string
	Draw          measure.DrawParams
	ShapeStroke   color.RGBA
	ShapeFill     color.RGBA
	StrokeWidth   float64 // output units
	GuideColor    color.RGBA
	Background    color.RGBA
}

func DefaultOptions() Options {
	return Options{
		Scale:         50,
		Margin:        1,
		IncludeGuides: true,
		Units:         "m",
		Draw:          measure.DefaultDrawParams(),
		ShapeStroke:   color.RGBA{A: 0xff},
		ShapeFill:     color.RGBA{R: 0xec, G: 0xef, B: 0xf4, A: 0xff},
		StrokeWidth:   1,
		GuideColor:    color.RGBA{R: 0xff, G: 0x00, B: 0xaa, A: 0xff},
		Background:    color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff},
	}
}

// Drawing is the content handed to a backend.
type Drawing struct {
	Shapes       []shape.Shape
	Measurements []*measure.Measurement
	Guides       []align.GuideLine
}

// FromScene snapshots scene and set. Either may be nil.
func FromScene(scene *shape.Scene, set *measure.Set, guides []align.GuideLine) Drawing {
	var d Drawing
	if scene != nil {
		d.Shapes = scene.Shapes()
	}
	if set != nil {
		d.Measurements = set.All()
	}
	d.Guides = guides
	return d
}

// Bounds covers shapes, dimension lines and, when included, guides.
func (d Drawing) Bounds(opts Options) vector.Rect {
	b := vector.EmptyRect
	for _, s := range d.Shapes {
		if shape.Degenerate(s) {
			continue
		}
		b = b.Union(shape.WorldBounds(s))
	}
	for _, m := range d.Measurements {
		g := measure.Derive(m, opts.Draw, opts.Units)
		b = b.Union(vector.RectFromPoints(m.Start, m.End, g.ExtStart[1], g.ExtEnd[1], g.Label))
	}
	if opts.IncludeGuides {
		for _, gl := range d.Guides {
			b = b.Union(vector.RectFromPoints(gl.From, gl.To))
		}
	}
	return b
}

// page maps world points onto a Y-down output page.
type page struct {
	minX, maxY float64
	scale      float64
	W, H       float64
}

func newPage(d Drawing, opts Options) page {
	scale := opts.Scale
	if scale <= 0 {
		scale = 50
	}
	b := d.Bounds(opts)
	if b.IsEmpty() {
		b = vector.R(-1, -1, 2, 2)
	}
	b = b.Inset(-opts.Margin, -opts.Margin)
	return page{
		minX:  b.X,
		maxY:  b.Y + b.H,
		scale: scale,
		W:     math.Ceil(b.W * scale),
		H:     math.Ceil(b.H * scale),
	}
}

func (p page) at(w vector.Pt) vector.Pt {
	return vector.P((w.X-p.minX)*p.scale, (p.maxY-w.Y)*p.scale)
}

func (p page) all(ws []vector.Pt) []vector.Pt {
	out := make([]vector.Pt, len(ws))
	for i, w := range ws {
		out[i] = p.at(w)
	}
	return out
}

// surface is one output backend. Coordinates are page units.
type surface interface {
	polygon(pts []vector.Pt, fill, stroke color.RGBA, width float64)
	polyline(pts []vector.Pt, stroke color.RGBA, width float64, dashed bool)
	text(at vector.Pt, s string, c color.RGBA, size float64)
}

// render draws shapes first, then guides, then dimensions on top.
func render(s surface, d Drawing, p page, opts Options) {
	for _, sh := range d.Shapes {
		if shape.Degenerate(sh) {
			continue
		}
		pts := p.all(shape.WorldOutline(sh))
		switch sh.(type) {
		case *shape.Line:
			s.polyline(pts, opts.ShapeStroke, opts.StrokeWidth, false)
		case *shape.Plane, *shape.Circle, *shape.Triangle:
			s.polygon(pts, opts.ShapeFill, opts.ShapeStroke, opts.StrokeWidth)
		default:
			panic(fmt.Sprintf("export: unknown shape type %T", sh))
		}
	}
	if opts.IncludeGuides {
		for _, gl := range d.Guides {
			s.polyline([]vector.Pt{p.at(gl.From), p.at(gl.To)}, opts.GuideColor, opts.StrokeWidth, true)
		}
	}
	for _, m := range d.Measurements {
		g := measure.Derive(m, opts.Draw, opts.Units)
		lc := m.Style.LineColor
		w := math.Max(m.Style.LineWidth*p.scale, 0.5)
		s.polyline([]vector.Pt{p.at(g.ExtStart[0]), p.at(g.ExtStart[1])}, lc, w, false)
		s.polyline([]vector.Pt{p.at(g.ExtEnd[0]), p.at(g.ExtEnd[1])}, lc, w, false)
		s.polyline([]vector.Pt{p.at(g.DimStart), p.at(g.DimEnd)}, lc, w, false)
		for _, a := range g.Arrows {
			s.polygon([]vector.Pt{p.at(a.Tip), p.at(a.Left), p.at(a.Right)}, lc, lc, w)
		}
		tc := m.Style.TextColor
		tc.A = uint8(math.Round(float64(tc.A) * m.Style.LabelOpacity()))
		if tc.A > 0 {
			s.text(p.at(g.Label), g.Text, tc, m.Style.FontSize)
		}
	}
}

// Write renders d in format f to w.
func Write(w io.Writer, f Format, d Drawing, opts Options) error {
	switch f {
	case SVG:
		return WriteSVG(w, d, opts)
	case PDF:
		return WritePDF(w, d, opts)
	case PNG:
		return WritePNG(w, d, opts)
	default:
		return fmt.Errorf("unsupported export format %q", f)
	}
}

// WriteFile renders d to path, choosing the backend by extension. Missing
// parent directories are created.
func WriteFile(path string, d Drawing, opts Options) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", f, err)
	}
	if err := Write(out, f, d, opts); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("close %s: %w", f, err)
	}
	return nil
}

func hex(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
