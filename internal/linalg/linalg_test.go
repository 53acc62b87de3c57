// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import (
	"math"
	"testing"
)

func TestRotation2RoundTrip(t *testing.T) {
	r := NewRotation2(math.Pi / 3)
	v := [2]float64{1, 0}
	out := r.Apply(v)
	n := math.Hypot(out[0], out[1])
	if math.Abs(n-1) > 1e-12 {
		t.Fatalf("rotation should preserve length, got norm %v", n)
	}
}

func TestQuaternionToRotationIdentity(t *testing.T) {
	q := QuaternionFromAxisAngle(Point3{0, 0, 1}, 0)
	r := q.ToRotation3()
	p := r.Apply(Point3{1, 2, 3})
	if math.Abs(p[0]-1) > 1e-9 || math.Abs(p[1]-2) > 1e-9 || math.Abs(p[2]-3) > 1e-9 {
		t.Fatalf("zero-angle rotation should be identity, got %v", p)
	}
}

func TestBestFit2DRecoversRotation(t *testing.T) {
	ref := []float64{1, 0, 0, 1, -1, 0, 0, -1}
	theta := 0.4
	c, s := math.Cos(theta), math.Sin(theta)
	cur := make([]float64, len(ref))
	ApplyFit2D(cur, ref, c, s, 5, -3)

	cosf, sinf, cx, cy := BestFit2D(cur, ref)
	if math.Abs(cosf-c) > 1e-9 || math.Abs(sinf-s) > 1e-9 {
		t.Fatalf("expected (cos,sin)=(%v,%v), got (%v,%v)", c, s, cosf, sinf)
	}
	if math.Abs(cx-5) > 1e-9 || math.Abs(cy+3) > 1e-9 {
		t.Fatalf("expected centroid (5,-3), got (%v,%v)", cx, cy)
	}
}

func TestRescaleFactorShrinksOnGrowth(t *testing.T) {
	f := RescaleFactor(4.0, 1.0)
	if f >= 1 {
		t.Fatalf("growth (cur>ref) should rescale down, got factor %v", f)
	}
}
