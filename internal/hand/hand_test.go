// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hand

import (
	"math"
	"testing"

	"github.com/nedelec/cytosim/internal/fiber"
	"github.com/nedelec/cytosim/internal/rnd"
)

func TestAttachDetach(t *testing.T) {
	f := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 1, 1)
	h := New(&Prop{BindingRate: 1, BindingRange: 0.1, UnbindingRate: 1, UnbindingForce: math.Inf(1)})
	if h.Attached() {
		t.Fatal("expected new Hand to be unattached")
	}
	h.Attach(7, f, 1.5)
	if !h.Attached() || h.FiberID() != 7 {
		t.Fatal("expected Hand to be attached to fiber 7")
	}
	if h.Abscissa() != 1.5 {
		t.Fatalf("expected abscissa 1.5, got %v", h.Abscissa())
	}
	h.Detach()
	if h.Attached() {
		t.Fatal("expected Hand to be detached")
	}
}

func TestAttachClampsAbscissa(t *testing.T) {
	f := fiber.NewFiber(2, 3, []float64{0, 0}, 1, 1, 1)
	h := New(&Prop{})
	h.Attach(0, f, -5)
	if h.Abscissa() != f.AbscissaM() {
		t.Fatalf("expected clamp to minus end, got %v", h.Abscissa())
	}
	h.Attach(0, f, 100)
	if h.Abscissa() != f.AbscissaP() {
		t.Fatalf("expected clamp to plus end, got %v", h.Abscissa())
	}
}

func TestStepLoadedForceAcceleratesDetachment(t *testing.T) {
	f := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 1, 1)
	rng := rnd.NewContext(1)

	// at zero force each trial detaches with p = 1-exp(-0.1*0.01), about
	// 2 of 2000 expected; under a 50-unit load p is essentially 1.
	detachedAtRest := 0
	detachedUnderLoad := 0
	const trials = 2000
	for i := 0; i < trials; i++ {
		h := New(&Prop{UnbindingRate: 0.1, UnbindingForce: 1})
		h.Attach(0, f, 2)
		h.StepLoaded(rng, 0.01, []float64{0, 0})
		if !h.Attached() {
			detachedAtRest++
		}
	}

	for i := 0; i < trials; i++ {
		h := New(&Prop{UnbindingRate: 0.1, UnbindingForce: 1})
		h.Attach(0, f, 2)
		h.StepLoaded(rng, 0.01, []float64{0, 50})
		if !h.Attached() {
			detachedUnderLoad++
		}
	}
	if detachedUnderLoad == 0 {
		t.Fatal("expected force-accelerated detachment to occur at least once under high load")
	}
	if detachedUnderLoad <= detachedAtRest {
		t.Fatalf("expected more detachments under load than at zero force, got %d vs %d", detachedUnderLoad, detachedAtRest)
	}
}

func TestLinearMotorAdvancesAndClampsAtPlusEnd(t *testing.T) {
	f := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 1, 1)
	rng := rnd.NewContext(2)
	h := New(&Prop{Motor: LinearMotor, UnloadedSpeed: 1, StallForce: 5, UnbindingRate: 0})
	h.Attach(0, f, 0)

	for i := 0; i < 100; i++ {
		h.StepUnloaded(rng, 0.1)
		if !h.Attached() {
			t.Fatal("unexpected detachment with UnbindingRate=0")
		}
	}
	if h.Abscissa() != f.AbscissaP() {
		t.Fatalf("expected motor to clamp at plus end %v, got %v", f.AbscissaP(), h.Abscissa())
	}
}

func TestNonMotorHandDoesNotAdvance(t *testing.T) {
	f := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 1, 1)
	rng := rnd.NewContext(3)
	h := New(&Prop{UnbindingRate: 0})
	h.Attach(0, f, 1.5)
	h.StepUnloaded(rng, 1)
	if h.Abscissa() != 1.5 {
		t.Fatalf("expected non-motor Hand to stay put, got %v", h.Abscissa())
	}
}
