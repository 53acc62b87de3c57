// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package body

import (
	"math"
	"testing"

	"github.com/nedelec/cytosim/internal/rnd"
)

func TestBeadSpeedFromForce(t *testing.T) {
	b := NewBead(3, []float64{0, 0, 0}, 0.5, 1e-3)
	force := []float64{1, 0, 0}
	speed := make([]float64, 3)
	b.SetSpeedsFromForces(force, speed)
	want := 1 / b.Drag(0)
	if math.Abs(speed[0]-want) > 1e-12 {
		t.Fatalf("expected speed %v, got %v", want, speed[0])
	}
}

func newTestSolid2D(src *rnd.MT19937) *Solid {
	s := NewSolid(2, 1e-3, src)
	s.AddPoint([]float64{1, 0}, 0.2)
	s.AddPoint([]float64{-1, 0}, 0.2)
	s.AddPoint([]float64{0, 1}, 0.2)
	return s
}

func TestSolidPrepareAndTranslate(t *testing.T) {
	src := rnd.NewMT19937(1)
	s := newTestSolid2D(src)
	if err := s.PrepareMecable(); err != nil {
		t.Fatal(err)
	}
	n := s.NPoints()
	force := make([]float64, 2*n)
	for p := 0; p < n; p++ {
		force[2*p] = 1 // uniform force: pure translation, no net torque about center
	}
	speed := make([]float64, 2*n)
	s.SetSpeedsFromForces(force, speed)
	for p := 0; p < n; p++ {
		if speed[2*p+1] > 1e-6 {
			t.Fatalf("uniform force should not induce rotation, got vy=%v at point %d", speed[2*p+1], p)
		}
		if speed[2*p] <= 0 {
			t.Fatalf("expected positive x-speed under uniform +x force, got %v", speed[2*p])
		}
	}
}

func TestSolidFixShapeThenReshapeRestoresDistances(t *testing.T) {
	src := rnd.NewMT19937(2)
	s := newTestSolid2D(src)
	if err := s.FixShape(); err != nil {
		t.Fatal(err)
	}
	before := pairwiseDistances(s.PointsRef().Data(), 2)

	// perturb the points (simulate numeric drift) then force a full reshape.
	data := s.PointsRef().Data()
	for i := range data {
		data[i] += 0.01
	}
	s.reshapeTimer = s.reshapeCadence
	s.Reshape()

	after := pairwiseDistances(s.PointsRef().Data(), 2)
	for i := range before {
		if math.Abs(before[i]-after[i]) > 1e-6 {
			t.Fatalf("pairwise distance %d drifted: before=%v after=%v", i, before[i], after[i])
		}
	}
}

func pairwiseDistances(data []float64, dim int) []float64 {
	n := len(data) / dim
	var out []float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			var sq float64
			for d := 0; d < dim; d++ {
				diff := data[i*dim+d] - data[j*dim+d]
				sq += diff * diff
			}
			out = append(out, math.Sqrt(sq))
		}
	}
	return out
}

func TestSphereAddRigidityLinksShellToCenter(t *testing.T) {
	src := rnd.NewMT19937(3)
	sp := NewSphere(3, []float64{0, 0, 0}, 1, 1e-3, 5, src)
	sp.AddShellPoint([]float64{1, 0, 0})
	sp.AddShellPoint([]float64{0, 1, 0})

	var links [][2]int
	sp.AddRigidity(func(a, b int, coef float64) {
		if coef != 5 {
			t.Fatalf("expected rigidity coefficient 5, got %v", coef)
		}
		links = append(links, [2]int{a, b})
	})
	if len(links) != 2 {
		t.Fatalf("expected 2 shell links, got %d", len(links))
	}
	for _, l := range links {
		if l[0] != 0 {
			t.Fatalf("expected every link anchored at center point 0, got %v", l)
		}
	}
}

func TestSolve3x3MatchesIdentity(t *testing.T) {
	a := [3][3]float64{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	b := [3]float64{2, 3, 4}
	x := solveSym3(a, b)
	for i, v := range []float64{2, 3, 4} {
		if math.Abs(x[i]-v) > 1e-12 {
			t.Fatalf("identity solve mismatch at %d: got %v want %v", i, x[i], v)
		}
	}
}
