/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package projector converts input-device positions into points on the
// drawing plane and back.
//
// The camera is orthographic, centred above the plane and looking down
// the -Z axis with +Y up. Device pixels grow right and down.
package projector

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"godraft/internal/vector"
)

// Camera describes the orthographic view onto the drawing plane.
type Camera struct {
	Center vector.Pt // world point under the viewport centre
	Zoom   float64   // device pixels per world unit
	Height float64   // camera distance above the plane along +Z
	Near   float64
	Far    float64
}

func DefaultCamera() Camera {
	return Camera{Zoom: 50, Height: 100, Near: 0.1, Far: 1000}
}

// Viewport is the device-pixel size of the drawing surface.
type Viewport struct{ Width, Height float64 }

// Plane is an infinite plane given by a point and a normal.
type Plane struct {
	Point  r3.Vec
	Normal r3.Vec
}

// DrawingPlane is z = 0.
var DrawingPlane = Plane{Normal: r3.Vec{Z: 1}}

// Options toggles grid snapping of projected points.
type Options struct {
	Grid     bool
	GridStep float64
}

// Projector owns the camera state. Project and ToScreen do not mutate it.
type Projector struct {
	Camera Camera
	Plane  Plane
	Opts   Options
}

func New(cam Camera, opts Options) *Projector {
	if opts.GridStep <= 0 {
		opts.GridStep = 1
	}
	return &Projector{Camera: cam, Plane: DrawingPlane, Opts: opts}
}

// viewProjection returns P*V as a 4x4 matrix, or nil for a degenerate
// camera or viewport.
func (p *Projector) viewProjection(vp Viewport) *mat.Dense {
	c := p.Camera
	if c.Zoom <= 0 || vp.Width <= 0 || vp.Height <= 0 || c.Far <= c.Near {
		return nil
	}
	halfW := vp.Width / (2 * c.Zoom)
	halfH := vp.Height / (2 * c.Zoom)
	view := mat.NewDense(4, 4, []float64{
		1, 0, 0, -c.Center.X,
		0, 1, 0, -c.Center.Y,
		0, 0, 1, -(p.Plane.Point.Z + c.Height),
		0, 0, 0, 1,
	})
	fn := c.Far - c.Near
	proj := mat.NewDense(4, 4, []float64{
		1 / halfW, 0, 0, 0,
		0, 1 / halfH, 0, 0,
		0, 0, -2 / fn, -(c.Far + c.Near) / fn,
		0, 0, 0, 1,
	})
	var vpm mat.Dense
	vpm.Mul(proj, view)
	return &vpm
}

func toNDC(device vector.Pt, vp Viewport) (x, y float64) {
	return 2*device.X/vp.Width - 1, 1 - 2*device.Y/vp.Height
}

func transformPoint(m mat.Matrix, v r3.Vec) (r3.Vec, bool) {
	var out mat.VecDense
	out.MulVec(m, mat.NewVecDense(4, []float64{v.X, v.Y, v.Z, 1}))
	w := out.AtVec(3)
	if w == 0 {
		return r3.Vec{}, false
	}
	return r3.Vec{X: out.AtVec(0) / w, Y: out.AtVec(1) / w, Z: out.AtVec(2) / w}, true
}

// Ray returns the world-space ray through a device pixel.
func (p *Projector) Ray(device vector.Pt, vp Viewport) (origin, dir r3.Vec, ok bool) {
	m := p.viewProjection(vp)
	if m == nil {
		return r3.Vec{}, r3.Vec{}, false
	}
	var inv mat.Dense
	if err := inv.Inverse(m); err != nil {
		return r3.Vec{}, r3.Vec{}, false
	}
	x, y := toNDC(device, vp)
	near, ok1 := transformPoint(&inv, r3.Vec{X: x, Y: y, Z: -1})
	far, ok2 := transformPoint(&inv, r3.Vec{X: x, Y: y, Z: 1})
	if !ok1 || !ok2 {
		return r3.Vec{}, r3.Vec{}, false
	}
	d := r3.Sub(far, near)
	if r3.Norm(d) == 0 {
		return r3.Vec{}, r3.Vec{}, false
	}
	return near, r3.Unit(d), true
}

// IntersectPlane intersects the line origin + t*dir with pl. It fails
// only when the ray runs parallel to the plane.
func IntersectPlane(origin, dir r3.Vec, pl Plane) (r3.Vec, bool) {
	denom := r3.Dot(dir, pl.Normal)
	if math.Abs(denom) < 1e-12 {
		return r3.Vec{}, false
	}
	t := r3.Dot(r3.Sub(pl.Point, origin), pl.Normal) / denom
	return r3.Add(origin, r3.Scale(t, dir)), true
}

// SnapToGrid rounds the planar coordinates to multiples of step. Z is kept.
func SnapToGrid(v r3.Vec, step float64) r3.Vec {
	if step <= 0 {
		return v
	}
	return r3.Vec{X: math.Round(v.X/step) * step, Y: math.Round(v.Y/step) * step, Z: v.Z}
}

// Project casts a ray through the device pixel and returns where it meets
// the drawing plane, grid-snapped when enabled.
func (p *Projector) Project(device vector.Pt, vp Viewport) (r3.Vec, bool) {
	o, d, ok := p.Ray(device, vp)
	if !ok {
		return r3.Vec{}, false
	}
	hit, ok := IntersectPlane(o, d, p.Plane)
	if !ok {
		return r3.Vec{}, false
	}
	if p.Opts.Grid {
		hit = SnapToGrid(hit, p.Opts.GridStep)
	}
	return hit, true
}

// ProjectPlanar is Project reduced to plane coordinates.
func (p *Projector) ProjectPlanar(device vector.Pt, vp Viewport) (vector.Pt, bool) {
	v, ok := p.Project(device, vp)
	return vector.P(v.X, v.Y), ok
}

// ToScreen maps a world point on the plane to device pixels.
func (p *Projector) ToScreen(world vector.Pt, vp Viewport) (vector.Pt, bool) {
	m := p.viewProjection(vp)
	if m == nil {
		return vector.Pt{}, false
	}
	ndc, ok := transformPoint(m, r3.Vec{X: world.X, Y: world.Y, Z: p.Plane.Point.Z})
	if !ok {
		return vector.Pt{}, false
	}
	return vector.P((ndc.X+1)/2*vp.Width, (1-ndc.Y)/2*vp.Height), true
}

// Pan moves the camera so the content follows a device-pixel drag.
func (p *Projector) Pan(dxPx, dyPx float64) {
	if p.Camera.Zoom <= 0 {
		return
	}
	p.Camera.Center.X -= dxPx / p.Camera.Zoom
	p.Camera.Center.Y += dyPx / p.Camera.Zoom
}

// ZoomAt scales the zoom by factor keeping the world point under device fixed.
func (p *Projector) ZoomAt(device vector.Pt, vp Viewport, factor float64) {
	if factor <= 0 {
		return
	}
	grid := p.Opts.Grid
	p.Opts.Grid = false
	before, ok := p.ProjectPlanar(device, vp)
	p.Camera.Zoom = vector.Clamp(p.Camera.Zoom*factor, 1e-3, 1e6)
	after, ok2 := p.ProjectPlanar(device, vp)
	p.Opts.Grid = grid
	if !ok || !ok2 {
		return
	}
	p.Camera.Center.X += before.X - after.X
	p.Camera.Center.Y += before.Y - after.Y
}
