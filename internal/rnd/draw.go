// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rnd

import "math"

// Context bundles the process-wide stochastic state: the MT19937 bit
// generator and its Gaussian sampler. cytosim keeps a single process-wide
// Random singleton (spec.md §5); here it is held by one struct that a
// SimContext embeds rather than a package-level global, per spec.md §9's
// "pass an explicit SimContext" redesign note.
type Context struct {
	Source *MT19937
	Gauss  *Gaussian
}

// NewContext seeds a fresh stochastic context.
func NewContext(seed uint32) *Context {
	src := NewMT19937(seed)
	return &Context{Source: src, Gauss: NewGaussian(src)}
}

// ExponentialTime draws a waiting time for a Poisson process of the given
// rate, used throughout the Gillespie-style binding/unbinding and
// hydrolysis code (spec.md §4.7, §4.8). rate<=0 yields +Inf (never fires).
func (c *Context) ExponentialTime(rate float64) float64 {
	if rate <= 0 {
		return math.Inf(1)
	}
	u := c.Source.Float64()
	for u == 0 {
		u = c.Source.Float64()
	}
	return -math.Log(u) / rate
}

// FiresWithin reports whether a Poisson process of the given rate fires
// at least once within dt, i.e. with probability 1-exp(-rate*dt). This is
// the per-step discretization cytosim uses instead of simulating
// continuous-time waiting times for binding_rate/unbinding_rate.
func (c *Context) FiresWithin(rate, dt float64) bool {
	if rate <= 0 {
		return false
	}
	p := -math.Expm1(-rate * dt)
	return c.Source.Float64() < p
}

// PoissonCount draws the number of Poisson events of the given rate over
// dt, used by the fast-diffusion shortcut (spec.md §4.7) to decide how
// many reserve Couples attach this step, via Knuth's direct method.
func (c *Context) PoissonCount(rate, dt float64) int {
	lambda := rate * dt
	if lambda <= 0 {
		return 0
	}
	l := math.Exp(-lambda)
	k := 0
	p := 1.0
	for {
		k++
		p *= c.Source.Float64()
		if p <= l {
			return k - 1
		}
	}
}
