// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiber

import (
	"math"

	"github.com/nedelec/cytosim/internal/rnd"
)

// AssemblyState mirrors the three end states of spec.md §4.8.
type AssemblyState int

const (
	StateWhite AssemblyState = iota // static / non-dynamic end
	StateGreen                      // growing
	StateRed                        // shrinking
)

// Fate controls what happens when a fiber shrinks below min_length,
// grounded on classic_fiber_prop.h's `fate` option.
type Fate int

const (
	FateNone Fate = iota
	FateDestroy
	FateRescue
)

// ClassicProp holds the Classic variant's rate constants, named after
// classic_fiber_prop.h's fields (already per-step scaled: *_dt).
type ClassicProp struct {
	GrowingSpeed     [2]float64 // [0]=monomer-scaled rate, [1]=force-independent offset
	GrowingForce     float64    // antagonistic force scale; +Inf disables force sensitivity
	FreePolymer      float64    // monomer availability factor in [0,1]
	CatastropheRate  float64
	CataCoef         float64
	RescueRate       float64
	MinLength        float64
	Fate             Fate
	UnitLength       float64
}

// ClassicEnd is the per-tip state machine of DynamicFiber's simpler
// sibling, grounded on fibers/classic_fiber.cc's ClassicFiber::step().
type ClassicEnd struct {
	State  AssemblyState
	Growth float64 // last growth increment (freshAssembly())
}

// Step advances the Classic end state by one time step given the axial
// force on the tip (negative = compressive/antagonistic) and the
// current chain length; returns the signed length change to apply and
// whether the fiber should be destroyed (Fate.Destroy underflow).
func (e *ClassicEnd) Step(prop *ClassicProp, force, length float64, rng *rnd.Context) (delta float64, destroy bool) {
	switch e.State {
	case StateGreen:
		spd := prop.GrowingSpeed[0] * prop.FreePolymer
		if force < 0 && !math.IsInf(prop.GrowingForce, 1) {
			e.Growth = spd*math.Exp(force/prop.GrowingForce) + prop.GrowingSpeed[1]
		} else {
			e.Growth = spd + prop.GrowingSpeed[1]
		}
		cata := prop.CatastropheRate / (1 + prop.CataCoef*e.Growth)
		if rng.FiresWithin(cata, 1) {
			e.State = StateRed
		}
		return e.Growth, false
	case StateRed:
		e.Growth = 0
		if rng.FiresWithin(prop.RescueRate, 1) {
			e.State = StateGreen
			return 0, false
		}
		shrink := -prop.GrowingSpeed[0] // shrinking at the base assembly rate, classic_fiber_prop default
		if length+shrink < prop.MinLength {
			switch prop.Fate {
			case FateDestroy:
				return shrink, true
			case FateRescue:
				e.State = StateGreen
			}
		}
		return shrink, false
	default:
		return 0, false
	}
}

// DynamicProp holds the two-unit Gillespie variant's rates, grounded on
// dynamic_fiber_prop.h / fibers/dynamic_fiber.cc.
type DynamicProp struct {
	GrowingRate     [2]float64
	GrowingForce    float64
	FreePolymer     float64
	ShrinkingRate   float64
	HydrolysisRate2 float64 // hydrolysis_rate_2dt: per-unit hydrolysis rate, already *2*dt scaled
	UnitLength      float64
	MinLength       float64
	Fate            Fate
}

// DynamicEnd tracks the two terminal GTP/GDP-like units, directly
// porting DynamicFiber's unit[0]/unit[1]/state bookkeeping.
type DynamicEnd struct {
	unit        [2]int // 1 = GTP-like (stable), 0 = hydrolyzed
	nextGrowth  float64
	nextHydrol  float64
	initialized bool
}

func (e *DynamicEnd) state() AssemblyState {
	// calculateStateP(): 4 - unit[0] - 2*unit[1], mapped the same way the
	// reference encodes STATE_GREEN=1 (both units fresh) vs STATE_RED=4
	// (both hydrolyzed); only the green/red distinction matters here.
	if e.unit[0] == 0 && e.unit[1] == 0 {
		return StateRed
	}
	return StateGreen
}

// Step runs one Gillespie competition between growth and hydrolysis
// events within a single dt, directly porting stepPlusEnd's while loop.
func (e *DynamicEnd) Step(prop *DynamicProp, force, length float64, rng *rnd.Context) (delta float64, destroy bool) {
	if !e.initialized {
		e.unit[0], e.unit[1] = 1, 1
		e.nextGrowth = rng.ExponentialTime(1)
		e.nextHydrol = rng.ExponentialTime(1)
		e.initialized = true
	}
	rate := prop.GrowingRate[0] * prop.FreePolymer
	var growthRate float64
	if force < 0 && !math.IsInf(prop.GrowingForce, 1) {
		growthRate = rate*math.Exp(force/prop.GrowingForce) + prop.GrowingRate[1]
	} else {
		growthRate = rate + prop.GrowingRate[1]
	}
	if e.state() == StateRed {
		growthRate = prop.ShrinkingRate
	}
	hydrolRate := prop.HydrolysisRate2

	e.nextGrowth -= growthRate
	e.nextHydrol -= hydrolRate

	added := 0
	for e.nextGrowth <= 0 || e.nextHydrol <= 0 {
		if e.nextGrowth*hydrolRate < e.nextHydrol*growthRate {
			if e.state() == StateRed {
				added--
			} else {
				e.unit[1] = e.unit[0]
				e.unit[0] = 1
				added++
			}
			e.nextGrowth += rng.ExponentialTime(1)
		} else {
			if rng.Source.Bool(0.5) {
				e.unit[0] = 0
			} else {
				e.unit[1] = 0
			}
			e.nextHydrol += rng.ExponentialTime(1)
		}
	}

	delta = float64(added) * prop.UnitLength
	if added != 0 && length+delta < prop.MinLength {
		if prop.Fate == FateDestroy {
			return delta, true
		}
	}
	return delta, false
}

// TreadmillingProp couples independent Classic-style assembly at both
// ends, grounded on treadmilling_fiber_prop.h.
type TreadmillingProp struct {
	Plus, Minus ClassicProp
}

// TreadmillingEnd pairs two ClassicEnd state machines, one per tip,
// grounded on fibers/treadmilling_fiber.cc's reuse of the Classic
// per-end machinery at both PLUS_END and MINUS_END (unlike plain
// Classic, which only makes the plus end dynamic).
type TreadmillingEnd struct {
	Plus, Minus ClassicEnd
}

func (e *TreadmillingEnd) Step(prop *TreadmillingProp, forceP, forceM, length float64, rng *rnd.Context) (deltaP, deltaM float64, destroy bool) {
	deltaP, dp := e.Plus.Step(&prop.Plus, forceP, length, rng)
	deltaM, dm := e.Minus.Step(&prop.Minus, forceM, length, rng)
	return deltaP, deltaM, dp || dm
}

// TipDynamics is the uniform contract Fiber.StepDynamics drives: given
// the axial force at each end and the current chain length, advance one
// dt and report the signed length change at each end plus whether the
// fiber should be destroyed. This is the seam between the three
// per-variant state machines above (each keeps its own rate constants
// and Gillespie/deterministic bookkeeping) and Fiber, which only needs
// to apply the resulting length deltas, not know which model produced
// them.
type TipDynamics interface {
	Step(forceP, forceM, length float64, rng *rnd.Context) (deltaP, deltaM float64, destroy bool)
}

// ClassicTip adapts ClassicEnd/ClassicProp to TipDynamics: only the
// plus end is dynamic, matching classic_fiber.cc (the minus end is
// always static).
type ClassicTip struct {
	End  ClassicEnd
	Prop ClassicProp
}

func (t *ClassicTip) Step(forceP, _, length float64, rng *rnd.Context) (deltaP, deltaM float64, destroy bool) {
	deltaP, destroy = t.End.Step(&t.Prop, forceP, length, rng)
	return deltaP, 0, destroy
}

// DynamicTip adapts DynamicEnd/DynamicProp to TipDynamics; like
// ClassicTip, only the plus end grows (dynamic_fiber.cc).
type DynamicTip struct {
	End  DynamicEnd
	Prop DynamicProp
}

func (t *DynamicTip) Step(forceP, _, length float64, rng *rnd.Context) (deltaP, deltaM float64, destroy bool) {
	deltaP, destroy = t.End.Step(&t.Prop, forceP, length, rng)
	return deltaP, 0, destroy
}

// TreadmillTip adapts TreadmillingEnd/TreadmillingProp to TipDynamics:
// both ends are independently dynamic (treadmilling_fiber.cc).
type TreadmillTip struct {
	End  TreadmillingEnd
	Prop TreadmillingProp
}

func (t *TreadmillTip) Step(forceP, forceM, length float64, rng *rnd.Context) (deltaP, deltaM float64, destroy bool) {
	return t.End.Step(&t.Prop, forceP, forceM, length, rng)
}

var (
	_ TipDynamics = (*ClassicTip)(nil)
	_ TipDynamics = (*DynamicTip)(nil)
	_ TipDynamics = (*TreadmillTip)(nil)
)
