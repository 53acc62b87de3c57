// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package space

import (
	"math"

	"github.com/cpmech/gosl/fun"
)

// Stripe is infinite (no confinement, Inside always true) along every
// axis except the confined ones listed in Confined; the confined axes
// behave like Rectangle's slab. Grounded on
// original_source/src/sim/spaces/space_strip.cc, used for periodic or
// semi-open test geometries (spec.md §8 scenario S2's periodic boundary).
type Stripe struct {
	Dim      int
	Extent   []float64 // half-width per axis, only meaningful where Confined[i]
	Confined []bool
}

func (s *Stripe) Name() string { return "strip" }

func (s *Stripe) Inside(x []float64) bool {
	for i, c := range s.Confined {
		if c && math.Abs(x[i]) > s.Extent[i] {
			return false
		}
	}
	return true
}

func (s *Stripe) Volume() float64 {
	v := 1.0
	for i, c := range s.Confined {
		if !c {
			return math.Inf(1)
		}
		v *= 2 * s.Extent[i]
	}
	return v
}

func (s *Stripe) Project(x []float64) []float64 {
	p := make([]float64, len(x))
	copy(p, x)
	bestAxis, bestSlack, any := -1, math.Inf(1), false
	for i, c := range s.Confined {
		if !c {
			continue
		}
		any = true
		slack := s.Extent[i] - math.Abs(x[i])
		if slack < bestSlack {
			bestSlack = slack
			bestAxis = i
		}
	}
	if !any {
		return p
	}
	if s.Inside(x) {
		if x[bestAxis] >= 0 {
			p[bestAxis] = s.Extent[bestAxis]
		} else {
			p[bestAxis] = -s.Extent[bestAxis]
		}
		return p
	}
	for i, c := range s.Confined {
		if !c {
			continue
		}
		if p[i] > s.Extent[i] {
			p[i] = s.Extent[i]
		} else if p[i] < -s.Extent[i] {
			p[i] = -s.Extent[i]
		}
	}
	return p
}

func (s *Stripe) NormalToEdge(x []float64) []float64 {
	proj := s.Project(x)
	dir := make([]float64, len(x))
	for i := range x {
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

func (s *Stripe) RandomPlace(draw func() float64) []float64 {
	p := make([]float64, len(s.Confined))
	for i, c := range s.Confined {
		if c {
			p[i] = (2*draw() - 1) * s.Extent[i]
		} else {
			p[i] = (2*draw() - 1) * 1e3 // unconfined axis: arbitrary wide spread
		}
	}
	return p
}

func (s *Stripe) Interaction(x []float64, stiffness float64) ([]float64, float64) {
	return genericInteraction(s, x, stiffness)
}

// Gradient wraps another Space and exposes a scalar field Value(x) used
// by fiber dynamic-instability/nucleation rules that depend on position
// (spec.md §4.8's "spatial modulation of rates"), grounded on
// original_source/src/sim/spaces/space_dynamic_disc.cc's field-coupling
// idea. The field itself is any `gosl/fun.Func`, the same interface
// gofem's elements accept for a gravity/load function (e.g.
// ele/solid/elastrod.go's Gfcn, fem/e_diffu.go's Sfun, both invoked as
// `fcn.F(t, x)`); Field is evaluated at t=0 since this module has no
// time-varying boundary condition, only a static spatial profile.

// LinearField is a fun.Func with a simple affine profile along one
// axis; the common case spec.md §4.8 needs, and the default when no
// richer Field is configured.
type LinearField struct {
	Axis        int
	Base, Slope float64
}

func (l LinearField) F(t float64, x []float64) float64 {
	return l.Base + l.Slope*x[l.Axis]
}

var _ fun.Func = LinearField{}

type Gradient struct {
	Inner Space
	Field fun.Func
}

func (g *Gradient) Name() string { return "gradient(" + g.Inner.Name() + ")" }

func (g *Gradient) Inside(x []float64) bool            { return g.Inner.Inside(x) }
func (g *Gradient) Volume() float64                    { return g.Inner.Volume() }
func (g *Gradient) Project(x []float64) []float64      { return g.Inner.Project(x) }
func (g *Gradient) NormalToEdge(x []float64) []float64 { return g.Inner.NormalToEdge(x) }
func (g *Gradient) RandomPlace(draw func() float64) []float64 {
	return g.Inner.RandomPlace(draw)
}
func (g *Gradient) Interaction(x []float64, stiffness float64) ([]float64, float64) {
	return g.Inner.Interaction(x, stiffness)
}

// Value evaluates the configured Field at x, time-independent.
func (g *Gradient) Value(x []float64) float64 {
	return g.Field.F(0, x)
}
