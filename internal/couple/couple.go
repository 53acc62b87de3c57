// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package couple implements the Couple family of spec.md §4.7: two
// Hands (cHand1/cHand2) that together form a crosslink once both bind,
// diffusing freely before either does. Grounded on
// original_source/src/sim/couple.h/.cc and couple_prop.h for the
// single-object behavior, and couple_set.cc for the FF/AF/FA/AA list
// bookkeeping and fast-diffusion shortcut (see set.go).
package couple

import (
	"math"

	"github.com/nedelec/cytosim/internal/fiber"
	"github.com/nedelec/cytosim/internal/fibergrid"
	"github.com/nedelec/cytosim/internal/hand"
	"github.com/nedelec/cytosim/internal/meca"
	"github.com/nedelec/cytosim/internal/rnd"
	"github.com/nedelec/cytosim/internal/space"
)

// ConfineMode mirrors couple_prop.h's `confine` option.
type ConfineMode int

const (
	ConfineNone ConfineMode = iota
	ConfineInside
	ConfineSurface
)

// Prop holds one Couple class's parameters, grounded on
// original_source/src/sim/couple_prop.h.
type Prop struct {
	Hand1, Hand2 *hand.Prop
	Stiffness    float64
	Diffusion    float64 // diffusion coefficient while unbound
	DiffusionDt  float64 // precomputed sqrt(2*Diffusion*dt), couple_prop.h's diffusion_dt

	Stiff         bool // specificity/stiffness veto, couple.cc's allowAttachment
	FastDiffusion bool // couple_set.cc's uniAttach shortcut, see set.go

	Confine      ConfineMode
	ConfineSpace space.Space

	// Specificity restricts the second bond: nil means no restriction,
	// otherwise it must return true for the (existing, candidate)
	// fiber pair's relative orientation to allow binding — spec.md
	// §4.7 "a Couple class may demand parallel or antiparallel
	// filaments to complete its second bond."
	Specificity func(existingDir, candidateDir []float64) bool

	// PropertyIndex identifies this Prop for couple_set.cc's uniLists
	// reserve indexing (see set.go's uniPrepare/uniAttach).
	PropertyIndex int
}

// Couple is one crosslink candidate: two Hands and, while neither is
// bound, a freely diffusing position cPos.
type Couple struct {
	prop  *Prop
	hand1 *hand.Hand
	hand2 *hand.Hand
	cPos  []float64
}

// New creates an unbound Couple at the given initial position.
func New(prop *Prop, pos []float64) *Couple {
	return &Couple{
		prop:  prop,
		hand1: hand.New(prop.Hand1),
		hand2: hand.New(prop.Hand2),
		cPos:  append([]float64(nil), pos...),
	}
}

// Hand1 returns the first Hand.
func (c *Couple) Hand1() *hand.Hand { return c.hand1 }

// Hand2 returns the second Hand.
func (c *Couple) Hand2() *hand.Hand { return c.hand2 }

// Attached1 reports whether Hand1 is bound.
func (c *Couple) Attached1() bool { return c.hand1.Attached() }

// Attached2 reports whether Hand2 is bound.
func (c *Couple) Attached2() bool { return c.hand2.Attached() }

// Pos returns cPos, the free-diffusion position (only meaningful while
// unbound; Position() is the general accessor callers should use).
func (c *Couple) Pos() []float64 { return c.cPos }

// Position returns couple.cc's position(): cPos if free, the bound
// Hand's position if only one is attached, or the midpoint of both if
// both are bound.
func (c *Couple) Position() []float64 {
	if c.Attached2() {
		if c.Attached1() {
			return midpoint(c.hand1.Pos(), c.hand2.Pos())
		}
		return c.hand2.Pos()
	}
	if c.Attached1() {
		return c.hand1.Pos()
	}
	return c.cPos
}

func midpoint(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = 0.5 * (a[i] + b[i])
	}
	return out
}

// force1 returns couple.cc's force1(): stiffness*(hand2.pos() -
// hand1.pos()), the link's force on Hand1 (the force on Hand2 is its
// negation).
func (c *Couple) force1() []float64 {
	out := make([]float64, len(c.cPos))
	p1, p2 := c.hand1.Pos(), c.hand2.Pos()
	for i := range out {
		out[i] = c.prop.Stiffness * (p2[i] - p1[i])
	}
	return out
}

// StepFF advances a fully-unbound Couple: diffuse cPos, apply
// confinement, then attempt attachment for both Hands (couple.cc's
// stepFF). attempt is the caller-supplied (grid, positions, fiber
// lookup, exclude) attachment primitive, since fibergrid plumbing is
// owned by internal/step, not this package.
func (c *Couple) StepFF(rng *rnd.Context, dt float64, attempt func(h *hand.Hand, anchor []float64) bool) {
	amp := c.prop.DiffusionDt
	d := make([]float64, len(c.cPos))
	rng.Gauss.Vector(d)
	for i := range c.cPos {
		c.cPos[i] += amp * d[i]
	}

	switch c.prop.Confine {
	case ConfineInside:
		if c.prop.ConfineSpace != nil && !c.prop.ConfineSpace.Inside(c.cPos) {
			c.cPos = c.prop.ConfineSpace.Project(c.cPos)
		}
	case ConfineSurface:
		if c.prop.ConfineSpace != nil {
			c.cPos = c.prop.ConfineSpace.Project(c.cPos)
		}
	}

	attempt(c.hand1, c.cPos)
	attempt(c.hand2, c.cPos)
}

// StepAF advances a Couple with only Hand1 bound: Hand2 attempts
// attachment near Hand1's position, then Hand1 steps unloaded.
// couple.cc reads cHand1->pos() before stepUnloaded() because that
// call may detach it; this mirrors that ordering.
func (c *Couple) StepAF(rng *rnd.Context, dt float64, attempt func(h *hand.Hand, anchor []float64) bool) {
	anchor := c.hand1.Pos()
	attempt(c.hand2, anchor)
	c.hand1.StepUnloaded(rng, dt)
}

// StepFA is StepAF with the hand roles swapped (couple.cc's stepFA).
func (c *Couple) StepFA(rng *rnd.Context, dt float64, attempt func(h *hand.Hand, anchor []float64) bool) {
	anchor := c.hand2.Pos()
	attempt(c.hand1, anchor)
	c.hand2.StepUnloaded(rng, dt)
}

// StepAA advances a fully-bound Couple: both Hands step loaded under
// the equal-and-opposite link force (couple.cc's stepAA).
func (c *Couple) StepAA(rng *rnd.Context, dt float64) {
	f := c.force1()
	neg := make([]float64, len(f))
	for i := range f {
		neg[i] = -f[i]
	}
	c.hand1.StepLoaded(rng, dt, f)
	c.hand2.StepLoaded(rng, dt, neg)
}

// SetInteractions deposits the crosslink spring into the assembler:
// meca.interLink(cHand1->interpolation(), cHand2->interpolation(),
// stiffness), couple.cc's setInteractions. Only valid when both Hands
// are attached.
func (c *Couple) SetInteractions(m *meca.Meca) {
	if !c.Attached1() || !c.Attached2() {
		return
	}
	m.InterLinkII(c.hand1.Interpolation(m), c.hand2.Interpolation(m), c.prop.Stiffness)
}

// AllowAttachment is couple.cc's allowAttachment: the stiff-specificity
// veto rejecting a second bond that would land within
// 2*segmentation (here, 2*RestLen) of the already-bound Hand on the
// same fiber, plus the Specificity callback's parallel/antiparallel
// filter when set.
func (c *Couple) AllowAttachment(candidateFiber *fiber.Fiber, candidateAbscissa float64) bool {
	var bound *hand.Hand
	switch {
	case c.Attached1():
		bound = c.hand1
	case c.Attached2():
		bound = c.hand2
	default:
		return true
	}

	if c.prop.Stiff && bound.Fiber() == candidateFiber {
		if math.Abs(candidateAbscissa-bound.Abscissa()) < 2*candidateFiber.RestLen {
			return false
		}
	}

	if c.prop.Specificity != nil {
		idx, _ := candidateFiber.PointAtAbscissa(candidateAbscissa)
		candidateDir := candidateFiber.Direction(idx)
		if !c.prop.Specificity(bound.DirFiber(), candidateDir) {
			return false
		}
	}
	return true
}

// Randomize resets cPos to a uniform random point of the confinement
// space, couple_set.cc's randomizePosition() (used when a couple is
// pulled into or back out of the fast-diffusion reserve).
func (c *Couple) Randomize(rng *rnd.Context) {
	if c.prop.ConfineSpace != nil {
		c.cPos = c.prop.ConfineSpace.RandomPlace(rng.Source.Float64)
	}
}

// fiberLookup and attachAttempt are small helper signatures set.go
// builds from the caller's fibergrid plumbing.
type fiberLookup = func(fiberID int) *fiber.Fiber

// attachAttempt builds the (Hand, anchor) -> bool attachment primitive
// StepFF/StepAF/StepFA expect, honoring the owning Couple's
// AllowAttachment veto, mirroring Hand::stepFree's grid query +
// FiberBinder::attach + Couple's allowAttachment gate (hand.go does
// not know about Couple, so this glue lives here).
func attachAttempt(c *Couple, rng *rnd.Context, dt float64, grid *fibergrid.Grid, pos fibergrid.SegmentPositions, lookup fiberLookup) func(h *hand.Hand, anchor []float64) bool {
	return func(h *hand.Hand, anchor []float64) bool {
		if h.Attached() {
			return false
		}
		candidates := grid.NearbySegments(anchor, h.Prop().BindingRange, pos, rng.Source, nil)
		for _, cand := range candidates {
			f := lookup(cand.FiberID)
			if f == nil {
				continue
			}
			abscissa := f.AbscissaOf(cand.Index, cand.Param)
			if !c.AllowAttachment(f, abscissa) {
				continue
			}
			if h.TryAttach(rng, dt, cand.FiberID, f, abscissa) {
				return true
			}
		}
		return false
	}
}
