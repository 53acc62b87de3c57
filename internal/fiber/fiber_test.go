// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package fiber

import (
	"math"
	"testing"

	"github.com/nedelec/cytosim/internal/rnd"
)

func TestNewFiberSegmentLengths(t *testing.T) {
	f := NewFiber(3, 5, []float64{0, 0, 0}, 0.1, 1, 1)
	for i := 0; i < f.NPoints()-1; i++ {
		a, b := f.PointsRef().Point(i), f.PointsRef().Point(i+1)
		var d float64
		for k := 0; k < 3; k++ {
			diff := b[k] - a[k]
			d += diff * diff
		}
		if math.Abs(math.Sqrt(d)-0.1) > 1e-12 {
			t.Fatalf("segment %d has wrong length %v", i, math.Sqrt(d))
		}
	}
}

func TestProjectIsIdempotentForStraightChain(t *testing.T) {
	f := NewFiber(3, 4, []float64{0, 0, 0}, 1, 1, 1)
	n := f.NPoints()
	force := make([]float64, 3*n)
	// a uniform transverse force on a straight chain: it does not change
	// any segment length to first order.
	for i := 0; i < n; i++ {
		force[3*i+1] = 1 // uniform transverse force
	}
	out := make([]float64, 3*n)
	f.Project(force, out)

	// the projected force must still satisfy: project is idempotent,
	// i.e. projecting twice gives the same result (P^2 = P).
	out2 := make([]float64, 3*n)
	f.Project(out, out2)
	for i := range out {
		if math.Abs(out[i]-out2[i]) > 1e-6 {
			t.Fatalf("projector not idempotent at %d: %v vs %v", i, out[i], out2[i])
		}
	}
}

func TestReshapeRestoresLengthAfterDrift(t *testing.T) {
	f := NewFiber(2, 3, []float64{0, 0}, 1, 1, 1)
	f.reshapeTimer = f.reshapeCadence - 1
	// introduce drift: stretch the first segment.
	b := f.PointsRef().Point(1)
	b[0] += 0.3
	f.Reshape()
	a, b2 := f.PointsRef().Point(0), f.PointsRef().Point(1)
	got := math.Hypot(b2[0]-a[0], b2[1]-a[1])
	if math.Abs(got-1) > 1e-9 {
		t.Fatalf("expected segment length restored to 1, got %v", got)
	}
}

func TestAddRigidityStraightChainNoNetBendingPattern(t *testing.T) {
	f := NewFiber(2, 5, []float64{0, 0}, 1, 2, 1)
	var calls []struct {
		a, b int
		coef float64
	}
	f.AddRigidity(func(a, b int, coef float64) {
		calls = append(calls, struct {
			a, b int
			coef float64
		}{a, b, coef})
	})
	if len(calls) == 0 {
		t.Fatal("expected bending deposit calls for a 5-point chain")
	}
	for _, c := range calls {
		if c.a < 0 || c.a >= f.NPoints() || c.b < 0 || c.b >= f.NPoints() {
			t.Fatalf("out of range index in rigidity deposit: %+v", c)
		}
	}
}

func TestClassicEndGrowsThenCanCatastrophe(t *testing.T) {
	ctx := rnd.NewContext(7)
	e := &ClassicEnd{State: StateGreen}
	prop := &ClassicProp{
		GrowingSpeed:    [2]float64{0.02, 0},
		GrowingForce:    math.Inf(1),
		FreePolymer:     1,
		CatastropheRate: 0.5,
		RescueRate:      0.1,
		MinLength:       0.1,
		Fate:            FateRescue,
	}
	sawRed := false
	length := 1.0
	for i := 0; i < 500; i++ {
		delta, destroy := e.Step(prop, 0, length, ctx)
		if destroy {
			t.Fatal("FateRescue should never destroy")
		}
		length += delta
		if e.State == StateRed {
			sawRed = true
		}
	}
	if !sawRed {
		t.Fatal("expected at least one catastrophe over 500 steps at rate 0.5/step")
	}
}

func TestDynamicEndHydrolysisEventuallyShrinks(t *testing.T) {
	ctx := rnd.NewContext(11)
	e := &DynamicEnd{}
	prop := &DynamicProp{
		GrowingRate:     [2]float64{0.01, 0},
		GrowingForce:    math.Inf(1),
		FreePolymer:     1,
		ShrinkingRate:   0.05,
		HydrolysisRate2: 2,
		UnitLength:      0.008,
		MinLength:       0.01,
		Fate:            FateNone,
	}
	length := 1.0
	sawShrink := false
	for i := 0; i < 2000; i++ {
		delta, _ := e.Step(prop, 0, length, ctx)
		length += delta
		if delta < 0 {
			sawShrink = true
		}
	}
	if !sawShrink {
		t.Fatal("expected at least one shrinkage event under steady hydrolysis")
	}
}

func TestGrowPlusExtendsWithoutResegmentingBelowThreshold(t *testing.T) {
	f := NewFiber(2, 3, []float64{0, 0}, 1, 1, 1)
	f.GrowPlus(0.2)
	if f.NPoints() != 3 {
		t.Fatalf("expected no resegmentation for a small delta, got %d points", f.NPoints())
	}
	last := f.PointsRef().Point(2)
	if math.Abs(last[0]-2.2) > 1e-9 {
		t.Fatalf("expected the plus end to advance to x=2.2, got %v", last)
	}
}

func TestGrowPlusInsertsPointPastThreshold(t *testing.T) {
	f := NewFiber(2, 2, []float64{0, 0}, 1, 1, 1)
	f.GrowPlus(0.8) // last segment grows from 1 to 1.8 > 1.5*RestLen
	if f.NPoints() != 3 {
		t.Fatalf("expected a point to be inserted, got %d points", f.NPoints())
	}
	for i := 0; i < f.NPoints()-1; i++ {
		a, b := f.PointsRef().Point(i), f.PointsRef().Point(i+1)
		l := math.Hypot(b[0]-a[0], b[1]-a[1])
		if l > 1.5*f.RestLen {
			t.Fatalf("segment %d still too long after resegmenting: %v", i, l)
		}
	}
}

func TestGrowMinusExtendsAtPointZero(t *testing.T) {
	f := NewFiber(2, 3, []float64{0, 0}, 1, 1, 1)
	f.GrowMinus(0.5)
	first := f.PointsRef().Point(0)
	if math.Abs(first[0]-(-0.5)) > 1e-9 {
		t.Fatalf("expected the minus end to retreat to x=-0.5, got %v", first)
	}
	if f.NPoints() != 3 {
		t.Fatalf("expected no resegmentation, got %d points", f.NPoints())
	}
}

func TestGrowPlusRemovesPointBelowThreshold(t *testing.T) {
	f := NewFiber(2, 3, []float64{0, 0}, 1, 1, 1)
	f.GrowPlus(-0.8) // last segment shrinks from 1 to 0.2 < 0.5*RestLen
	if f.NPoints() != 2 {
		t.Fatalf("expected the boundary point to be removed, got %d points", f.NPoints())
	}
}

func TestClassicTipStepOnlyGrowsPlusEnd(t *testing.T) {
	ctx := rnd.NewContext(5)
	tip := &ClassicTip{
		End: ClassicEnd{State: StateGreen},
		Prop: ClassicProp{
			GrowingSpeed: [2]float64{0.02, 0},
			GrowingForce: math.Inf(1),
			FreePolymer:  1,
			MinLength:    0.1,
		},
	}
	deltaP, deltaM, destroy := tip.Step(0, 0, 5, ctx)
	if destroy {
		t.Fatal("did not expect destruction with CatastropheRate=0")
	}
	if deltaP <= 0 {
		t.Fatalf("expected positive plus-end growth, got %v", deltaP)
	}
	if deltaM != 0 {
		t.Fatalf("expected zero minus-end growth from ClassicTip, got %v", deltaM)
	}
}

func TestTreadmillTipGrowsBothEnds(t *testing.T) {
	ctx := rnd.NewContext(9)
	rate := ClassicProp{
		GrowingSpeed: [2]float64{0.02, 0},
		GrowingForce: math.Inf(1),
		FreePolymer:  1,
		MinLength:    0.1,
	}
	tip := &TreadmillTip{Prop: TreadmillingProp{Plus: rate, Minus: rate}}
	tip.End.Plus.State = StateGreen
	tip.End.Minus.State = StateGreen
	deltaP, deltaM, destroy := tip.Step(0, 0, 5, ctx)
	if destroy {
		t.Fatal("did not expect destruction")
	}
	if deltaP <= 0 || deltaM <= 0 {
		t.Fatalf("expected growth at both ends, got deltaP=%v deltaM=%v", deltaP, deltaM)
	}
}
