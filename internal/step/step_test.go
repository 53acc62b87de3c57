// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package step

import (
	"math"
	"testing"

	"github.com/nedelec/cytosim/internal/body"
	"github.com/nedelec/cytosim/internal/fiber"
	"github.com/nedelec/cytosim/internal/hand"
	"github.com/nedelec/cytosim/internal/meca"
	"github.com/nedelec/cytosim/internal/single"
	"github.com/nedelec/cytosim/internal/space"
)

func TestStepAdvancesAndConverges(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1, 1)

	f := fiber.NewFiber(2, 6, []float64{0, 0}, 1, 1, 1)
	o.AddFiber(f)

	prop := &single.Prop{Stiffness: 10, HandProp: &hand.Prop{BindingRate: 1e9, BindingRange: 1, UnbindingRate: 0, UnbindingForce: math.Inf(1)}}
	p := single.NewPicket(prop, []float64{2, 0.02})
	o.AddSingle(p, prop.HandProp.BindingRange)

	done, err := o.Step(0.001)
	if done {
		t.Fatal("expected first Step not to report done")
	}
	if err != nil {
		t.Fatalf("expected Step to succeed, got %v", err)
	}
	if o.StepCount() != 1 {
		t.Fatalf("expected StepCount 1, got %d", o.StepCount())
	}
	if !p.Attached() {
		t.Fatal("expected the Picket to have attached during the step")
	}

	done, err = o.Step(0.001)
	if err != nil {
		t.Fatalf("expected second Step to succeed, got %v", err)
	}
	if done {
		t.Fatal("expected second Step not to report done")
	}
	if o.StepCount() != 2 {
		t.Fatalf("expected StepCount 2, got %d", o.StepCount())
	}
}

func TestRequestStopHaltsOnNextStep(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1, 2)
	f := fiber.NewFiber(2, 3, []float64{0, 0}, 1, 1, 1)
	o.AddFiber(f)

	o.RequestStop()
	done, err := o.Step(0.001)
	if err != nil {
		t.Fatalf("expected no error on a cancelled step, got %v", err)
	}
	if !done {
		t.Fatal("expected Step to report done after RequestStop")
	}
	if o.StepCount() != 0 {
		t.Fatalf("expected a cancelled step not to advance StepCount, got %d", o.StepCount())
	}
}

func TestWithReadLockObservesPositionsBetweenSteps(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1, 3)
	f := fiber.NewFiber(2, 4, []float64{0, 0}, 1, 1, 1)
	o.AddFiber(f)

	var seen []float64
	o.WithReadLock(func() {
		seen = append([]float64(nil), f.PointsRef().Point(0)...)
	})
	if len(seen) != 2 {
		t.Fatalf("expected a 2D point snapshot, got %v", seen)
	}
}

// TestStepAppliesBrownianForcing exercises the maintainer-flagged gap:
// an isolated fiber (no Single/Couple/Space/steric interaction, and too
// short for AddRigidity to deposit anything) has zero deterministic
// force, so any post-Step displacement can only come from
// meca.Meca.BrownianForcing (spec.md §4.6 step 4).
func TestStepAppliesBrownianForcing(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1, 42)
	f := fiber.NewFiber(2, 2, []float64{0, 0}, 1, 1, 1)
	o.AddFiber(f)

	before := append([]float64(nil), f.PointsRef().Point(0)...)
	if _, err := o.Step(0.01); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := f.PointsRef().Point(0)
	if before[0] == after[0] && before[1] == after[1] {
		t.Fatal("expected Brownian forcing to move an isolated fiber point")
	}
}

// TestDepositConfinementPullsOutsidePointsInward exercises the
// maintainer-flagged gap: Space confinement was never deposited into
// Meca. Bypasses Step's Brownian/solve randomness by driving
// depositConfinement and Solve directly, isolating the confinement
// force from everything else.
func TestDepositConfinementPullsOutsidePointsInward(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1, 1)
	b := body.NewBead(2, []float64{5, 0}, 0.1, 1)
	o.AddBody(b)
	o.SetSpace(&space.Sphere{Radius: 1}, 50)

	o.meca.Clear()
	o.meca.Add(b)
	o.meca.Prepare()
	o.depositConfinement()

	mon := meca.NewMonitor(200, 1e-9)
	if _, err := o.meca.Solve(0.001, mon); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	p := b.PointsRef().Point(0)
	if p[0] >= 5 {
		t.Fatalf("expected confinement to pull the point inward from x=5, got %v", p)
	}
}

// TestDepositStericPushesOverlappingBodiesApart exercises the
// maintainer-flagged gap: the steric grid was never wired to deposit
// contacts into Meca.
func TestDepositStericPushesOverlappingBodiesApart(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 2, 1)
	a := body.NewBead(2, []float64{0, 0}, 0.1, 1)
	c := body.NewBead(2, []float64{0.1, 0}, 0.1, 1)
	o.AddBody(a)
	o.AddBody(c)
	o.SetSteric(0.5, 0.1, 100)

	o.meca.Clear()
	o.meca.Add(a)
	o.meca.Add(c)
	o.meca.Prepare()
	o.depositSteric()

	mon := meca.NewMonitor(200, 1e-9)
	if _, err := o.meca.Solve(0.001, mon); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	pa, pc := a.PointsRef().Point(0), c.PointsRef().Point(0)
	dist := math.Hypot(pc[0]-pa[0], pc[1]-pa[1])
	if dist <= 0.1 {
		t.Fatalf("expected steric push to separate overlapping beads, got distance %v", dist)
	}
}

// TestAdvanceFiberDynamicsGrowsPlusEnd exercises the maintainer-flagged
// gap: dynamic fiber end-states were never advanced after Solve.
func TestAdvanceFiberDynamicsGrowsPlusEnd(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1, 3)
	f := fiber.NewFiber(2, 2, []float64{0, 0}, 1, 1, 1)
	f.Tip = &fiber.ClassicTip{
		End: fiber.ClassicEnd{State: fiber.StateGreen},
		Prop: fiber.ClassicProp{
			GrowingSpeed: [2]float64{0.1, 0},
			GrowingForce: math.Inf(1),
			FreePolymer:  1,
			MinLength:    0.1,
		},
	}
	o.AddFiber(f)

	// Length() only reflects (NPoints-1)*RestLen, so growth below one
	// resegmentation threshold would leave it unchanged; 10 steps at
	// 0.1/step accumulates 1.0 of plus-end extension, comfortably past
	// the 0.5*RestLen needed to trigger at least one InsertAt.
	for i := 0; i < 10; i++ {
		if _, err := o.Step(0.001); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
	}
	if f.NPoints() <= 2 {
		t.Fatalf("expected the dynamic plus end to have grown past a resegmentation threshold, got %d points", f.NPoints())
	}
}

// TestAdvanceFiberDynamicsDestroysFiber exercises the destroy path:
// a fiber whose Tip model reports destroy=true is dropped from the
// registry, consistent with classic_fiber_prop.h's fate=DESTROY.
func TestAdvanceFiberDynamicsDestroysFiber(t *testing.T) {
	o := NewOrchestrator(2, []float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1, 4)
	f := fiber.NewFiber(2, 2, []float64{0, 0}, 1, 1, 1)
	f.Tip = &fiber.ClassicTip{
		End: fiber.ClassicEnd{State: fiber.StateRed},
		Prop: fiber.ClassicProp{
			GrowingSpeed: [2]float64{0.8, 0},
			GrowingForce: math.Inf(1),
			FreePolymer:  1,
			RescueRate:   0,
			MinLength:    0.5,
			Fate:         fiber.FateDestroy,
		},
	}
	o.AddFiber(f)

	if _, err := o.Step(0.001); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(o.fibers) != 0 {
		t.Fatalf("expected the fiber to be destroyed and removed, got %d fibers left", len(o.fibers))
	}
}
