/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"godraft/internal/align"
	"godraft/internal/measure"
	"godraft/internal/shape"
	"godraft/internal/vector"
)

func sampleDrawing() Drawing {
	plate := shape.NewPlane("plate", 2, 2)
	disc := shape.NewCircle("disc", 1, 1)
	disc.SetTransform(shape.Transform{Position: vector.P(4, 0), Scale: vector.P(1, 1)})
	wedge := shape.NewTriangle("wedge", 1, 2)
	wedge.SetTransform(shape.Transform{Position: vector.P(0, 4), Scale: vector.P(1, 1)})
	rod := shape.NewLine("rod", vector.P(0, 0), vector.P(3, 0))
	rod.SetTransform(shape.Transform{Position: vector.P(-5, 0), Scale: vector.P(1, 1)})
	scene := shape.NewScene(plate, disc, wedge, rod)

	set := measure.NewSet()
	set.Add(measure.NewPlaneDimension(plate, measure.Role{Dimension: measure.Width, Anchor: measure.AnchorLeft}))
	guides := []align.GuideLine{{Orientation: "vertical", Kind: "edge", Type: align.EdgeLeft, Position: -1, From: vector.P(-1, -3), To: vector.P(-1, 6)}}
	return FromScene(scene, set, guides)
}

func TestFormatFromPath(t *testing.T) {
	for path, want := range map[string]Format{"a.svg": SVG, "b/C.PDF": PDF, "x.png": PNG} {
		got, err := FormatFromPath(path)
		if err != nil || got != want {
			t.Fatalf("FormatFromPath(%q) = %q, %v", path, got, err)
		}
	}
	if _, err := FormatFromPath("drawing.cbz"); err == nil {
		t.Fatalf("expected error for unsupported extension")
	}
}

func TestPageFlipsY(t *testing.T) {
	d := Drawing{Shapes: []shape.Shape{shape.NewPlane("p", 2, 2)}}
	opts := DefaultOptions()
	opts.Scale = 10
	p := newPage(d, opts)
	if p.W != 40 || p.H != 40 {
		t.Fatalf("page = %vx%v, want 40x40", p.W, p.H)
	}
	top := p.at(vector.P(-1, 1))
	bottom := p.at(vector.P(-1, -1))
	if !scalar.EqualWithinAbs(top.X, 10, 1e-9) || !scalar.EqualWithinAbs(top.Y, 10, 1e-9) || !scalar.EqualWithinAbs(bottom.Y, 30, 1e-9) {
		t.Fatalf("top=%v bottom=%v", top, bottom)
	}
}

func TestBoundsIncludeDimensionsAndGuides(t *testing.T) {
	d := sampleDrawing()
	opts := DefaultOptions()
	b := d.Bounds(opts)
	if b.Y > -1.5 {
		t.Fatalf("width dimension below the plate not covered: %+v", b)
	}
	if b.Y+b.H < 6 {
		t.Fatalf("guide not covered: %+v", b)
	}
	opts.IncludeGuides = false
	if nb := d.Bounds(opts); nb.Y+nb.H >= 6 {
		t.Fatalf("guides excluded but still bounded: %+v", nb)
	}
}

func TestWriteSVG(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteSVG(&buf, sampleDrawing(), DefaultOptions()); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "<?xml") || !strings.Contains(out, "</svg>") {
		t.Fatalf("not an svg document: %.80q", out)
	}
	// plate, disc, wedge and two arrow heads
	if n := strings.Count(out, "<polygon"); n != 5 {
		t.Fatalf("polygons = %d, want 5", n)
	}
	if !strings.Contains(out, measure.FormatLength(2, "m")) {
		t.Fatalf("label missing")
	}
	if !strings.Contains(out, "stroke-dasharray") {
		t.Fatalf("guide missing")
	}

	buf.Reset()
	opts := DefaultOptions()
	opts.IncludeGuides = false
	if err := WriteSVG(&buf, sampleDrawing(), opts); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	if strings.Contains(buf.String(), "stroke-dasharray") {
		t.Fatalf("guides drawn although excluded")
	}
}

func TestHiddenLabelIsSkipped(t *testing.T) {
	d := sampleDrawing()
	d.Measurements[0].Style.SetLabelOpacity(0)
	var buf bytes.Buffer
	if err := WriteSVG(&buf, d, DefaultOptions()); err != nil {
		t.Fatalf("WriteSVG: %v", err)
	}
	if strings.Contains(buf.String(), "<text") {
		t.Fatalf("transparent label should not be drawn")
	}
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	if err := WritePDF(&buf, sampleDrawing(), DefaultOptions()); err != nil {
		t.Fatalf("WritePDF: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")) {
		t.Fatalf("missing pdf header")
	}
}

func TestWritePNG(t *testing.T) {
	d := Drawing{Shapes: []shape.Shape{shape.NewPlane("p", 2, 2)}}
	opts := DefaultOptions()
	opts.Scale = 10
	var buf bytes.Buffer
	if err := WritePNG(&buf, d, opts); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 40 {
		t.Fatalf("size = %v", b)
	}
	r, g, b, _ := img.At(20, 20).RGBA()
	f := opts.ShapeFill
	if uint8(r>>8) != f.R || uint8(g>>8) != f.G || uint8(b>>8) != f.B {
		t.Fatalf("centre pixel = %d,%d,%d, want fill", r>>8, g>>8, b>>8)
	}
	r, g, b, _ = img.At(1, 1).RGBA()
	if r>>8 != 0xff || g>>8 != 0xff || b>>8 != 0xff {
		t.Fatalf("corner pixel should be background")
	}
}

func TestWriteFileCreatesDirectories(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"a.svg", "b.pdf", "c.png"} {
		path := filepath.Join(root, "nested", "out", name)
		if err := WriteFile(path, sampleDrawing(), DefaultOptions()); err != nil {
			t.Fatalf("WriteFile(%s): %v", name, err)
		}
		st, err := os.Stat(path)
		if err != nil || st.Size() == 0 {
			t.Fatalf("%s not written: %v", name, err)
		}
	}
	if err := WriteFile(filepath.Join(root, "x.epub"), sampleDrawing(), DefaultOptions()); err == nil {
		t.Fatalf("expected unsupported format error")
	}
}

func TestEmptyDrawingStillRenders(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, PNG, Drawing{}, DefaultOptions()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := Write(&buf, Format("tiff"), Drawing{}, DefaultOptions()); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
