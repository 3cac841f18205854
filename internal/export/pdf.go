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
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"

	"godraft/internal/vector"
)

// pdfSurface draws with gofpdf in points. The built-in Helvetica keeps
// labels as vector text without embedding a font.
type pdfSurface struct {
	pdf *gofpdf.Fpdf
}

func points(pts []vector.Pt) []gofpdf.PointType {
	out := make([]gofpdf.PointType, len(pts))
	for i, p := range pts {
		out[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	return out
}

func (s pdfSurface) setDraw(c color.RGBA, width float64) {
	s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetLineWidth(width)
}

func (s pdfSurface) polygon(pts []vector.Pt, fill, stroke color.RGBA, width float64) {
	s.setDraw(stroke, width)
	s.pdf.SetFillColor(int(fill.R), int(fill.G), int(fill.B))
	s.pdf.Polygon(points(pts), "FD")
}

func (s pdfSurface) polyline(pts []vector.Pt, stroke color.RGBA, width float64, dashed bool) {
	s.setDraw(stroke, width)
	if dashed {
		s.pdf.SetDashPattern([]float64{4, 3}, 0)
		defer s.pdf.SetDashPattern(nil, 0)
	}
	for i := 1; i < len(pts); i++ {
		s.pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
	}
}

func (s pdfSurface) text(at vector.Pt, str string, c color.RGBA, size float64) {
	s.pdf.SetFont("Helvetica", "", size)
	s.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	s.pdf.SetAlpha(opacity(c), "Normal")
	w := s.pdf.GetStringWidth(str)
	s.pdf.Text(at.X-w/2, at.Y+size/3, str)
	s.pdf.SetAlpha(1, "Normal")
}

// WritePDF renders d on a single page sized to the content.
func WritePDF(w io.Writer, d Drawing, opts Options) error {
	p := newPage(d, opts)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: p.W, Ht: p.H},
	})
	pdf.SetTitle("godraft drawing", false)
	pdf.SetAuthor("godraft", false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	bg := opts.Background
	pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	pdf.Rect(0, 0, p.W, p.H, "F")
	render(pdfSurface{pdf: pdf}, d, p, opts)
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
