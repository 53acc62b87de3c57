// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package couple

import (
	"math"
	"testing"

	"github.com/nedelec/cytosim/internal/fiber"
	"github.com/nedelec/cytosim/internal/fibergrid"
	"github.com/nedelec/cytosim/internal/hand"
	"github.com/nedelec/cytosim/internal/meca"
	"github.com/nedelec/cytosim/internal/rnd"
)

func segPos(f *fiber.Fiber) fibergrid.SegmentPositions {
	return func(s fibergrid.Segment) (p, q []float64) {
		return f.PointsRef().Point(s.Index), f.PointsRef().Point(s.Index + 1)
	}
}

func segments(f *fiber.Fiber, fiberID int) []fibergrid.Segment {
	var segs []fibergrid.Segment
	for i := 0; i < f.NPoints()-1; i++ {
		segs = append(segs, fibergrid.Segment{FiberID: fiberID, Index: i})
	}
	return segs
}

func newAttachProp() *hand.Prop {
	return &hand.Prop{BindingRate: 1e9, BindingRange: 1, UnbindingRate: 0, UnbindingForce: math.Inf(1)}
}

func TestPositionFreeSingleBoundAndBothBound(t *testing.T) {
	f1 := fiber.NewFiber(2, 3, []float64{0, 0}, 1, 0, 1)
	f2 := fiber.NewFiber(2, 3, []float64{0, 5}, 1, 0, 1)

	prop := &Prop{Hand1: newAttachProp(), Hand2: newAttachProp(), Stiffness: 1}
	c := New(prop, []float64{9, 9})

	if got := c.Position(); got[0] != 9 || got[1] != 9 {
		t.Fatalf("expected free position to equal cPos, got %v", got)
	}

	c.Hand1().Attach(0, f1, 1)
	if got, want := c.Position(), f1.PosAtAbscissa(1); got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected single-bound position to equal hand1 pos, got %v want %v", got, want)
	}

	c.Hand2().Attach(1, f2, 1)
	want := midpoint(f1.PosAtAbscissa(1), f2.PosAtAbscissa(1))
	got := c.Position()
	for i := range got {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Fatalf("expected midpoint position, got %v want %v", got, want)
		}
	}
}

func TestStepFFAttachesBothHandsWhenInRange(t *testing.T) {
	f := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 0, 1)
	grid := fibergrid.NewGrid([]float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1)
	grid.Paint(segments(f, 0), segPos(f), 1)

	prop := &Prop{Hand1: newAttachProp(), Hand2: newAttachProp(), Stiffness: 1}
	c := New(prop, []float64{2, 0.01})

	rng := rnd.NewContext(1)
	lookup := func(id int) *fiber.Fiber { return f }
	c.StepFF(rng, 0.01, attachAttempt(c, rng, 0.01, grid, segPos(f), lookup))

	if !c.Attached1() || !c.Attached2() {
		t.Fatalf("expected both hands to attach, got attached1=%v attached2=%v", c.Attached1(), c.Attached2())
	}
}

func TestStepAFAttachesHand2ThenStepsHand1Unloaded(t *testing.T) {
	f1 := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 0, 1)
	f2 := fiber.NewFiber(2, 5, []float64{0, 2.01}, 1, 0, 1)
	grid := fibergrid.NewGrid([]float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1)
	grid.Paint(segments(f2, 1), segPos(f2), 1)

	prop := &Prop{Hand1: newAttachProp(), Hand2: newAttachProp(), Stiffness: 1}
	c := New(prop, []float64{0, 0})
	c.Hand1().Attach(0, f1, 2)

	rng := rnd.NewContext(2)
	lookup := func(id int) *fiber.Fiber { return f2 }
	c.StepAF(rng, 0.01, attachAttempt(c, rng, 0.01, grid, segPos(f2), lookup))

	if !c.Attached2() {
		t.Fatal("expected hand2 to attach near hand1's position")
	}
	if !c.Attached1() {
		t.Fatal("expected hand1 to remain attached (zero unbinding rate)")
	}
}

func TestStepAAPullsHandsTogether(t *testing.T) {
	f1 := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 0, 1)
	f2 := fiber.NewFiber(2, 5, []float64{5, 0}, 1, 0, 1)

	prop := &Prop{Hand1: &hand.Prop{UnbindingRate: 0, UnbindingForce: math.Inf(1)}, Hand2: &hand.Prop{UnbindingRate: 0, UnbindingForce: math.Inf(1)}, Stiffness: 1}
	c := New(prop, []float64{0, 0})
	c.Hand1().Attach(0, f1, 2)
	c.Hand2().Attach(1, f2, 2)

	rng := rnd.NewContext(3)
	f := c.force1()
	if f[0] <= 0 {
		t.Fatalf("expected force1 to point from hand1 toward hand2 (positive x), got %v", f)
	}
	c.StepAA(rng, 0.01)
	if !c.Attached1() || !c.Attached2() {
		t.Fatal("expected both hands to remain attached under zero unbinding rate")
	}
}

func TestSetInteractionsOnlyWhenBothAttached(t *testing.T) {
	f1 := fiber.NewFiber(2, 3, []float64{0, 0}, 1, 0, 1)
	f2 := fiber.NewFiber(2, 3, []float64{0, 2}, 1, 0, 1)

	prop := &Prop{Hand1: &hand.Prop{}, Hand2: &hand.Prop{}, Stiffness: 5}
	c := New(prop, []float64{0, 0})

	m := meca.New(2)
	m.Add(f1)
	m.Add(f2)
	m.Prepare()

	c.SetInteractions(m) // no-op while unattached; must not panic

	c.Hand1().Attach(0, f1, 1)
	c.Hand2().Attach(1, f2, 1)
	c.SetInteractions(m)

	mon := meca.NewMonitor(200, 1e-9)
	if _, err := m.Solve(0.01, mon); err != nil {
		t.Fatalf("solve failed: %v", err)
	}
}

func TestAllowAttachmentStiffVetoRejectsNearbySecondBond(t *testing.T) {
	f := fiber.NewFiber(2, 10, []float64{0, 0}, 1, 0, 1)

	prop := &Prop{Hand1: &hand.Prop{}, Hand2: &hand.Prop{}, Stiffness: 1, Stiff: true}
	c := New(prop, []float64{0, 0})
	c.Hand1().Attach(0, f, 4)

	if c.AllowAttachment(f, 4.5) {
		t.Fatal("expected stiff veto to reject a second bond within 2*RestLen")
	}
	if !c.AllowAttachment(f, 8) {
		t.Fatal("expected a distant second bond to be allowed")
	}
}

func TestAllowAttachmentSpecificityCallback(t *testing.T) {
	f := fiber.NewFiber(2, 10, []float64{0, 0}, 1, 0, 1)

	calls := 0
	prop := &Prop{
		Hand1: &hand.Prop{}, Hand2: &hand.Prop{}, Stiffness: 1,
		Specificity: func(existingDir, candidateDir []float64) bool {
			calls++
			return false
		},
	}
	c := New(prop, []float64{0, 0})
	c.Hand1().Attach(0, f, 1)

	if c.AllowAttachment(f, 8) {
		t.Fatal("expected Specificity veto to reject the candidate")
	}
	if calls != 1 {
		t.Fatalf("expected Specificity to be consulted once, got %d calls", calls)
	}
}

func TestRandomizeRequiresConfineSpace(t *testing.T) {
	prop := &Prop{Hand1: &hand.Prop{}, Hand2: &hand.Prop{}}
	c := New(prop, []float64{1, 2})
	rng := rnd.NewContext(4)
	c.Randomize(rng) // no ConfineSpace: must be a no-op, not a panic
	if c.Pos()[0] != 1 || c.Pos()[1] != 2 {
		t.Fatalf("expected cPos unchanged without a ConfineSpace, got %v", c.Pos())
	}
}
