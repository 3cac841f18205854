/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	raster "golang.org/x/image/vector"

	"godraft/internal/vector"
)

// pngSurface rasterizes with anti-aliasing. Labels use the fixed 7x13
// bitmap face whatever the requested size.
type pngSurface struct {
	img *image.RGBA
	z   *raster.Rasterizer
}

func (s pngSurface) fill(pts []vector.Pt, c color.RGBA) {
	if len(pts) < 3 {
		return
	}
	b := s.img.Bounds()
	s.z.Reset(b.Dx(), b.Dy())
	s.z.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		s.z.LineTo(float32(p.X), float32(p.Y))
	}
	s.z.ClosePath()
	s.z.Draw(s.img, b, image.NewUniform(c), image.Point{})
}

// segment fills the quad covering a-b at the given width.
func (s pngSurface) segment(a, b vector.Pt, c color.RGBA, width float64) {
	d := vector.UnitOr(vector.Pt{X: b.X - a.X, Y: b.Y - a.Y}, vector.Pt{})
	if d.X == 0 && d.Y == 0 {
		return
	}
	h := math.Max(width, 1) / 2
	n := vector.Pt{X: -d.Y * h, Y: d.X * h}
	s.fill([]vector.Pt{
		{X: a.X + n.X, Y: a.Y + n.Y},
		{X: b.X + n.X, Y: b.Y + n.Y},
		{X: b.X - n.X, Y: b.Y - n.Y},
		{X: a.X - n.X, Y: a.Y - n.Y},
	}, c)
}

func (s pngSurface) polygon(pts []vector.Pt, fill, stroke color.RGBA, width float64) {
	s.fill(pts, fill)
	for i := 1; i < len(pts); i++ {
		s.segment(pts[i-1], pts[i], stroke, width)
	}
}

const dash, gap = 4.0, 3.0

func (s pngSurface) polyline(pts []vector.Pt, stroke color.RGBA, width float64, dashed bool) {
	for i := 1; i < len(pts); i++ {
		a, b := pts[i-1], pts[i]
		if !dashed {
			s.segment(a, b, stroke, width)
			continue
		}
		l := vector.Dist(a, b)
		for t := 0.0; t < l; t += dash + gap {
			s.segment(vector.Lerp(a, b, t/l), vector.Lerp(a, b, math.Min(t+dash, l)/l), stroke, width)
		}
	}
}

func (s pngSurface) text(at vector.Pt, str string, c color.RGBA, _ float64) {
	dr := &font.Drawer{Dst: s.img, Src: image.NewUniform(c), Face: basicfont.Face7x13}
	w := dr.MeasureString(str).Round()
	dr.Dot = fixed.P(int(math.Round(at.X))-w/2, int(math.Round(at.Y))+4)
	dr.DrawString(str)
}

// WritePNG renders d as a PNG image. Scale is pixels per world unit.
func WritePNG(w io.Writer, d Drawing, opts Options) error {
	p := newPage(d, opts)
	img := image.NewRGBA(image.Rect(0, 0, int(p.W), int(p.H)))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)
	render(pngSurface{img: img, z: raster.NewRasterizer(int(p.W), int(p.H))}, d, p, opts)
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
