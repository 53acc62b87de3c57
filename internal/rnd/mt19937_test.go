// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rnd

import "testing"

func TestMT19937Reproducible(t *testing.T) {
	a := NewMT19937(42)
	b := NewMT19937(42)
	for i := 0; i < 1000; i++ {
		if a.Uint32() != b.Uint32() {
			t.Fatalf("same seed diverged at draw %d", i)
		}
	}
}

func TestMT19937UniformRange(t *testing.T) {
	g := NewMT19937(7)
	for i := 0; i < 10000; i++ {
		x := g.Float64()
		if x < 0 || x >= 1 {
			t.Fatalf("Float64() out of [0,1): %v", x)
		}
	}
}

func TestGaussianMeanVariance(t *testing.T) {
	g := NewGaussian(NewMT19937(1))
	const n = 200000
	var sum, sumsq float64
	for i := 0; i < n; i++ {
		x := g.Next()
		sum += x
		sumsq += x * x
	}
	mean := sum / n
	variance := sumsq/n - mean*mean
	if mean < -0.02 || mean > 0.02 {
		t.Errorf("mean too far from 0: %v", mean)
	}
	if variance < 0.95 || variance > 1.05 {
		t.Errorf("variance too far from 1: %v", variance)
	}
}

func TestShuffleIsPermutation(t *testing.T) {
	g := NewMT19937(3)
	idx := []int{0, 1, 2, 3, 4, 5, 6, 7}
	g.Shuffle(len(idx), func(i, j int) { idx[i], idx[j] = idx[j], idx[i] })
	seen := make(map[int]bool)
	for _, v := range idx {
		if seen[v] {
			t.Fatalf("duplicate value %d after shuffle", v)
		}
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Fatalf("expected 8 distinct values, got %d", len(seen))
	}
}

func TestFiresWithinMonotone(t *testing.T) {
	c := NewContext(5)
	if c.FiresWithin(0, 1) {
		t.Fatal("zero rate must never fire")
	}
}
