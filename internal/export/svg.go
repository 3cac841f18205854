/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"

	"godraft/internal/vector"
)

// svgSurface draws on an svgo canvas. svgo takes integer coordinates, so
// points are rounded to the nearest pixel.
type svgSurface struct {
	c *svg.SVG
}

func ints(pts []vector.Pt) (xs, ys []int) {
	xs = make([]int, len(pts))
	ys = make([]int, len(pts))
	for i, p := range pts {
		xs[i] = int(math.Round(p.X))
		ys[i] = int(math.Round(p.Y))
	}
	return xs, ys
}

func opacity(c color.RGBA) float64 { return float64(c.A) / 255 }

func (s svgSurface) polygon(pts []vector.Pt, fill, stroke color.RGBA, width float64) {
	xs, ys := ints(pts)
	s.c.Polygon(xs, ys, fmt.Sprintf("fill:%s;fill-opacity:%.3g;stroke:%s;stroke-width:%.3g", hex(fill), opacity(fill), hex(stroke), width))
}

func (s svgSurface) polyline(pts []vector.Pt, stroke color.RGBA, width float64, dashed bool) {
	xs, ys := ints(pts)
	style := fmt.Sprintf("fill:none;stroke:%s;stroke-opacity:%.3g;stroke-width:%.3g", hex(stroke), opacity(stroke), width)
	if dashed {
		style += ";stroke-dasharray:4,3"
	}
	s.c.Polyline(xs, ys, style)
}

func (s svgSurface) text(at vector.Pt, str string, c color.RGBA, size float64) {
	x := int(math.Round(at.X))
	y := int(math.Round(at.Y + size/3))
	s.c.Text(x, y, str, fmt.Sprintf("text-anchor:middle;font-family:Helvetica,Arial,sans-serif;font-size:%.3gpx;fill:%s;fill-opacity:%.3g", size, hex(c), opacity(c)))
}

// WriteSVG renders d as a standalone SVG document.
func WriteSVG(w io.Writer, d Drawing, opts Options) error {
	bw := bufio.NewWriter(w)
	p := newPage(d, opts)
	c := svg.New(bw)
	c.Start(int(p.W), int(p.H))
	c.Rect(0, 0, int(p.W), int(p.H), "fill:"+hex(opts.Background))
	render(svgSurface{c: c}, d, p, opts)
	c.End()
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}
