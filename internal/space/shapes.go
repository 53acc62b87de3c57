// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package space

import "math"

// Sphere is the surface+interior ball of given radius centered at the
// origin. Grounded on original_source/src/sim/spaces/space_sphere.cc.
type Sphere struct {
	Radius float64
}

func (s *Sphere) Name() string { return "sphere" }

func (s *Sphere) Inside(x []float64) bool { return normOf(x) <= s.Radius }

func (s *Sphere) Volume() float64 {
	return 4.0 / 3.0 * math.Pi * s.Radius * s.Radius * s.Radius
}

func (s *Sphere) Project(x []float64) []float64 {
	n := normOf(x)
	p := make([]float64, len(x))
	if n < 1e-12 {
		p[0] = s.Radius
		return p
	}
	scale := s.Radius / n
	for i, v := range x {
		p[i] = v * scale
	}
	return p
}

func (s *Sphere) NormalToEdge(x []float64) []float64 {
	n := normOf(x)
	dir := make([]float64, len(x))
	if n < 1e-12 {
		dir[0] = 1
		return dir
	}
	for i, v := range x {
		dir[i] = v / n
	}
	return dir
}

func (s *Sphere) RandomPlace(draw func() float64) []float64 {
	// rejection sampling in the bounding cube, matching the teacher's
	// reliance on rnd.FloatInRange plus an inside() test rather than a
	// closed-form inverse CDF (original_source Space::place default).
	p := make([]float64, 3)
	for {
		for i := range p {
			p[i] = (2*draw() - 1) * s.Radius
		}
		if s.Inside(p) {
			return p
		}
	}
}

func (s *Sphere) Interaction(x []float64, stiffness float64) ([]float64, float64) {
	return genericInteraction(s, x, stiffness)
}

// Disc is the 2D analogue of Sphere: a filled circle in the xy plane.
type Disc struct {
	Radius float64
}

func (d *Disc) Name() string { return "disc" }

func (d *Disc) Inside(x []float64) bool {
	return x[0]*x[0]+x[1]*x[1] <= d.Radius*d.Radius
}

func (d *Disc) Volume() float64 { return math.Pi * d.Radius * d.Radius }

func (d *Disc) Project(x []float64) []float64 {
	n := math.Hypot(x[0], x[1])
	p := make([]float64, len(x))
	copy(p, x)
	if n < 1e-12 {
		p[0] = d.Radius
		p[1] = 0
		return p
	}
	scale := d.Radius / n
	p[0] = x[0] * scale
	p[1] = x[1] * scale
	return p
}

func (d *Disc) NormalToEdge(x []float64) []float64 {
	n := math.Hypot(x[0], x[1])
	dir := make([]float64, len(x))
	if n < 1e-12 {
		dir[0] = 1
		return dir
	}
	dir[0] = x[0] / n
	dir[1] = x[1] / n
	return dir
}

func (d *Disc) RandomPlace(draw func() float64) []float64 {
	for {
		p := []float64{(2*draw() - 1) * d.Radius, (2*draw() - 1) * d.Radius, 0}
		if d.Inside(p) {
			return p
		}
	}
}

func (d *Disc) Interaction(x []float64, stiffness float64) ([]float64, float64) {
	return genericInteraction(d, x, stiffness)
}

// Cylinder is the solid { |x0| <= Length, x1^2+x2^2 <= Radius^2 } region,
// a direct port of SpaceCylinder::inside/project
// (original_source/src/sim/spaces/space_cylinder.cc). Valid only in 3D,
// matching the teacher's own "cylinder is only valid in 3D" guard.
type Cylinder struct {
	Length float64 // half-length along axis 0
	Radius float64
}

func (c *Cylinder) Name() string { return "cylinder" }

func (c *Cylinder) Inside(w []float64) bool {
	if math.Abs(w[0]) > c.Length {
		return false
	}
	return w[1]*w[1]+w[2]*w[2] <= c.Radius*c.Radius
}

func (c *Cylinder) Volume() float64 {
	return 2 * math.Pi * c.Length * c.Radius * c.Radius
}

// Project follows SpaceCylinder::project exactly: clamp the axial
// coordinate, radially rescale the transverse pair, and when both would
// apply pick whichever correction moves less (the "inX" branch).
func (c *Cylinder) Project(w []float64) []float64 {
	p := []float64{w[0], w[1], w[2]}
	inX := true
	if w[0] > c.Length {
		p[0] = c.Length
		inX = false
	} else if w[0] < -c.Length {
		p[0] = -c.Length
		inX = false
	}
	n := math.Hypot(w[1], w[2])
	if n > c.Radius {
		scale := c.Radius / n
		p[1] = scale * w[1]
		p[2] = scale * w[2]
	} else if inX {
		if c.Length-math.Abs(w[0]) < c.Radius-n {
			if w[0] > 0 {
				p[0] = c.Length
			} else {
				p[0] = -c.Length
			}
		} else if n > 1e-12 {
			scale := c.Radius / n
			p[1] = scale * w[1]
			p[2] = scale * w[2]
		} else {
			p[1] = c.Radius
			p[2] = 0
		}
	}
	return p
}

func (c *Cylinder) NormalToEdge(w []float64) []float64 {
	proj := c.Project(w)
	dir := make([]float64, 3)
	var n float64
	for i := 0; i < 3; i++ {
		dir[i] = w[i] - proj[i]
		n += dir[i] * dir[i]
	}
	if n < 1e-12 {
		// w is on the boundary already: use the outward radial direction.
		rn := math.Hypot(w[1], w[2])
		if rn < 1e-12 {
			return []float64{1, 0, 0}
		}
		return []float64{0, w[1] / rn, w[2] / rn}
	}
	n = math.Sqrt(n)
	for i := range dir {
		dir[i] /= n
	}
	return dir
}

func (c *Cylinder) RandomPlace(draw func() float64) []float64 {
	for {
		p := []float64{(2*draw() - 1) * c.Length, (2*draw() - 1) * c.Radius, (2*draw() - 1) * c.Radius}
		if c.Inside(p) {
			return p
		}
	}
}

func (c *Cylinder) Interaction(x []float64, stiffness float64) ([]float64, float64) {
	return genericInteraction(c, x, stiffness)
}

// Ellipse is an axis-aligned ellipsoid with semi-axes A,B,C (3D) or A,B
// (2D, C ignored). Projection uses Newton's method on the implicit
// surface, matching SpaceEllipse's iterative projector in
// original_source/src/sim/spaces/space_ellipse.cc (closed form is only
// tractable for the sphere/cylinder special cases).
type Ellipse struct {
	A, B, C float64
	Dim     int
}

func (e *Ellipse) Name() string { return "ellipse" }

func (e *Ellipse) semi() []float64 {
	if e.Dim == 2 {
		return []float64{e.A, e.B}
	}
	return []float64{e.A, e.B, e.C}
}

func (e *Ellipse) Inside(x []float64) bool {
	s := e.semi()
	var sum float64
	for i, a := range s {
		sum += (x[i] * x[i]) / (a * a)
	}
	return sum <= 1
}

func (e *Ellipse) Volume() float64 {
	if e.Dim == 2 {
		return math.Pi * e.A * e.B
	}
	return 4.0 / 3.0 * math.Pi * e.A * e.B * e.C
}

// Project performs a fixed number of Newton iterations on the Lagrange
// multiplier of the nearest-point problem, the same scheme used by
// SpaceEllipse::project for the general (A != B != C) case.
func (e *Ellipse) Project(x []float64) []float64 {
	s := e.semi()
	n := len(s)
	if e.Inside(x) {
		// still need boundary point for Interaction/NormalToEdge callers
		// that invoke Project unconditionally; fall through to the same
		// Newton solve, which converges from the interior too.
	}
	lambda := 0.0
	for iter := 0; iter < 50; iter++ {
		var f, df float64
		for i := 0; i < n; i++ {
			a2 := s[i] * s[i]
			denom := a2 + lambda
			t := x[i] / denom
			f += a2 * t * t
			df -= 2 * a2 * a2 * t * t / denom
		}
		f -= 1
		if df == 0 {
			break
		}
		step := f / df
		lambda -= step
		if math.Abs(step) < 1e-14 {
			break
		}
	}
	p := make([]float64, len(x))
	for i := 0; i < n; i++ {
		a2 := s[i] * s[i]
		p[i] = a2 * x[i] / (a2 + lambda)
	}
	for i := n; i < len(x); i++ {
		p[i] = 0
	}
	return p
}

func (e *Ellipse) NormalToEdge(x []float64) []float64 {
	proj := e.Project(x)
	s := e.semi()
	dir := make([]float64, len(x))
	var n float64
	for i, a := range s {
		dir[i] = proj[i] / (a * a)
		n += dir[i] * dir[i]
	}
	n = math.Sqrt(n)
	if n < 1e-12 {
		dir[0] = 1
		return dir
	}
	for i := range dir {
		dir[i] /= n
	}
	return dir
}

func (e *Ellipse) RandomPlace(draw func() float64) []float64 {
	s := e.semi()
	for {
		p := make([]float64, 3)
		for i, a := range s {
			p[i] = (2*draw() - 1) * a
		}
		if e.Inside(p) {
			return p
		}
	}
}

func (e *Ellipse) Interaction(x []float64, stiffness float64) ([]float64, float64) {
	return genericInteraction(e, x, stiffness)
}

// Rectangle (3D box) / Square (equal sides) is the axis-aligned slab
// { |x_i| <= Extent[i] }, grounded on
// original_source/src/sim/spaces/space_square.cc.
type Rectangle struct {
	Extent []float64 // half-widths, one per dimension
}

func NewSquare(dim int, half float64) *Rectangle {
	e := make([]float64, dim)
	for i := range e {
		e[i] = half
	}
	return &Rectangle{Extent: e}
}

func (r *Rectangle) Name() string { return "rectangle" }

func (r *Rectangle) Inside(x []float64) bool {
	for i, e := range r.Extent {
		if math.Abs(x[i]) > e {
			return false
		}
	}
	return true
}

func (r *Rectangle) Volume() float64 {
	v := 1.0
	for _, e := range r.Extent {
		v *= 2 * e
	}
	return v
}

func (r *Rectangle) Project(x []float64) []float64 {
	p := make([]float64, len(x))
	copy(p, x)
	if r.Inside(x) {
		// clamp to the nearest face: find the axis with minimal slack.
		bestAxis, bestSlack := 0, math.Inf(1)
		for i, e := range r.Extent {
			slack := e - math.Abs(x[i])
			if slack < bestSlack {
				bestSlack = slack
				bestAxis = i
			}
		}
		if x[bestAxis] >= 0 {
			p[bestAxis] = r.Extent[bestAxis]
		} else {
			p[bestAxis] = -r.Extent[bestAxis]
		}
		return p
	}
	for i, e := range r.Extent {
		if p[i] > e {
			p[i] = e
		} else if p[i] < -e {
			p[i] = -e
		}
	}
	return p
}

func (r *Rectangle) NormalToEdge(x []float64) []float64 {
	proj := r.Project(x)
	dir := make([]float64, len(x))
	for i := range r.Extent {
		dir[i] = x[i] - proj[i]
	}
	n := normOf(dir)
	if n < 1e-12 {
		dir[0] = 1
		return dir
	}
	for i := range dir {
		dir[i] /= n
	}
	return dir
}

func (r *Rectangle) RandomPlace(draw func() float64) []float64 {
	p := make([]float64, len(r.Extent))
	for i, e := range r.Extent {
		p[i] = (2*draw() - 1) * e
	}
	return p
}

func (r *Rectangle) Interaction(x []float64, stiffness float64) ([]float64, float64) {
	return genericInteraction(r, x, stiffness)
}
