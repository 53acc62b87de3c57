// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rnd

import "math"

// Gaussian wraps a MT19937 source with a Box-Muller sampler, caching the
// second deviate of each pair the way original_source/src/math/random.cc
// does to avoid wasting half of every call to the polar method.
type Gaussian struct {
	src    *MT19937
	cached float64
	has    bool
}

// NewGaussian builds a Gaussian sampler on top of the given uniform source.
func NewGaussian(src *MT19937) *Gaussian {
	return &Gaussian{src: src}
}

// Next returns a standard normal deviate.
func (g *Gaussian) Next() float64 {
	if g.has {
		g.has = false
		return g.cached
	}
	var u, v, s float64
	for {
		u = 2*g.src.Float64() - 1
		v = 2*g.src.Float64() - 1
		s = u*u + v*v
		if s > 0 && s < 1 {
			break
		}
	}
	f := math.Sqrt(-2 * math.Log(s) / s)
	g.cached = v * f
	g.has = true
	return u * f
}

// Vector fills dst with independent standard normal deviates, the way
// Meca's Brownian forcing term (spec.md §4.6 step 4) draws one deviate
// per degree of freedom.
func (g *Gaussian) Vector(dst []float64) {
	for i := range dst {
		dst[i] = g.Next()
	}
}
