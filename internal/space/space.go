// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package space implements the confining-geometry contract of spec.md
// §3 "Space" and the positional primitives named in spec.md §6
// (sphere, ball, disc, cylinder, ellipse, rectangle, ...). Grounded on
// original_source/src/sim/spaces/space_cylinder.cc,
// space_cylinderZ.cc, space_cylinderP.cc for the inside/project
// contract shape; distance/point math built on
// github.com/cpmech/gosl/gm rather than hand-rolled vector algebra.
package space

import (
	"math"

	"github.com/cpmech/gosl/gm"
)

// Space is a named geometric region. Every implementation must satisfy:
// for any x, Project(x) is the nearest point of the boundary to x, and
// Inside(Project(x)) holds (points on the boundary count as inside).
type Space interface {
	Name() string
	Inside(x []float64) bool
	Project(x []float64) []float64
	Volume() float64
	RandomPlace(draw func() float64) []float64
	NormalToEdge(x []float64) []float64
	// Interaction returns the confinement penalty force contribution at x
	// for a point currently outside (or within a margin of) the space,
	// with the given stiffness, per spec.md §3's "setInteraction".
	Interaction(x []float64, stiffness float64) (forceDir []float64, forceMag float64)
}

func toGM(x []float64) gm.Point {
	p := gm.Point{}
	for i := 0; i < len(x) && i < 3; i++ {
		p[i] = x[i]
	}
	return p
}

func normOf(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return math.Sqrt(s)
}

// genericInteraction implements the linear confinement penalty common to
// every Space: a spring from x to its projection, active only when x is
// outside (spec.md Glossary "Confinement").
func genericInteraction(s Space, x []float64, stiffness float64) ([]float64, float64) {
	if s.Inside(x) {
		return make([]float64, len(x)), 0
	}
	proj := s.Project(x)
	dir := make([]float64, len(x))
	var n float64
	for i := range x {
		dir[i] = x[i] - proj[i]
		n += dir[i] * dir[i]
	}
	n = math.Sqrt(n)
	if n < 1e-12 {
		return dir, 0
	}
	for i := range dir {
		dir[i] /= n
	}
	return dir, stiffness * n
}
