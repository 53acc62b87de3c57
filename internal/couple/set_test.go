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
	"github.com/nedelec/cytosim/internal/rnd"
	"github.com/nedelec/cytosim/internal/space"
)

// fixedSampler returns the same fixed set of sites regardless of
// spacing, a deterministic stand-in for a real fiber registry's
// uniform sampler in tests.
type fixedSampler struct {
	sites []Site
}

func (s fixedSampler) UniformSites(rng *rnd.Context, spacing float64) []Site {
	return s.sites
}

// boxSpace is a minimal space.Space implementation for tests that only
// need Volume/Inside/Project/RandomPlace.
type boxSpace struct{ half float64 }

func (b boxSpace) Name() string    { return "box" }
func (b boxSpace) Volume() float64 { return math.Pow(2*b.half, 2) }
func (b boxSpace) Inside(x []float64) bool {
	for _, v := range x {
		if math.Abs(v) > b.half {
			return false
		}
	}
	return true
}
func (b boxSpace) Project(x []float64) []float64 {
	out := append([]float64(nil), x...)
	for i, v := range out {
		if v > b.half {
			out[i] = b.half
		} else if v < -b.half {
			out[i] = -b.half
		}
	}
	return out
}
func (b boxSpace) RandomPlace(draw func() float64) []float64 {
	return []float64{(draw()*2 - 1) * b.half, (draw()*2 - 1) * b.half}
}
func (b boxSpace) NormalToEdge(x []float64) []float64 { return []float64{1, 0} }
func (b boxSpace) Interaction(x []float64, stiffness float64) (dir []float64, mag float64) {
	return []float64{0, 0}, 0
}

var _ space.Space = boxSpace{}

func TestSetLinkClassifiesByAttachmentState(t *testing.T) {
	f1 := fiber.NewFiber(2, 3, []float64{0, 0}, 1, 0, 1)
	f2 := fiber.NewFiber(2, 3, []float64{0, 2}, 1, 0, 1)
	prop := &Prop{Hand1: &hand.Prop{}, Hand2: &hand.Prop{}, Stiffness: 1}

	s := NewSet()

	ff := New(prop, []float64{0, 0})
	s.Add(ff)

	af := New(prop, []float64{0, 0})
	af.Hand1().Attach(0, f1, 1)
	s.Add(af)

	fa := New(prop, []float64{0, 0})
	fa.Hand2().Attach(1, f2, 1)
	s.Add(fa)

	aa := New(prop, []float64{0, 0})
	aa.Hand1().Attach(0, f1, 1)
	aa.Hand2().Attach(1, f2, 1)
	s.Add(aa)

	if len(s.FF()) != 1 || s.FF()[0] != ff {
		t.Fatalf("expected ff list to hold only the unbound couple")
	}
	if len(s.AF()) != 1 || s.AF()[0] != af {
		t.Fatalf("expected af list to hold only the hand1-bound couple")
	}
	if len(s.FA()) != 1 || s.FA()[0] != fa {
		t.Fatalf("expected fa list to hold only the hand2-bound couple")
	}
	if len(s.AA()) != 1 || s.AA()[0] != aa {
		t.Fatalf("expected aa list to hold only the fully-bound couple")
	}
	if s.Len() != 4 {
		t.Fatalf("expected 4 couples total, got %d", s.Len())
	}
}

func TestSetStepPreservesTotalCountAcrossRelink(t *testing.T) {
	f := fiber.NewFiber(2, 20, []float64{0, 0}, 1, 0, 1)
	grid := fibergrid.NewGrid([]float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1)
	grid.Paint(segments(f, 0), segPos(f), 1)
	lookup := func(id int) *fiber.Fiber { return f }

	prop := &Prop{Hand1: newAttachProp(), Hand2: newAttachProp(), Stiffness: 1}
	s := NewSet()
	for i := 0; i < 5; i++ {
		s.Add(New(prop, []float64{float64(i), 0.01}))
	}
	if s.Len() != 5 {
		t.Fatalf("expected 5 couples before stepping, got %d", s.Len())
	}

	rng := rnd.NewContext(5)
	s.Step(rng, 0.01, 2, nil, grid, segPos(f), lookup)

	if s.Len() != 5 {
		t.Fatalf("expected Step to preserve total couple count, got %d", s.Len())
	}
	if len(s.FF()) != 0 {
		t.Fatalf("expected every couple within binding range to leave the FF list, got %d remaining", len(s.FF()))
	}
}

func TestSetMixPreservesListMembership(t *testing.T) {
	prop := &Prop{Hand1: &hand.Prop{}, Hand2: &hand.Prop{}}
	s := NewSet()
	couples := make(map[*Couple]bool)
	for i := 0; i < 10; i++ {
		c := New(prop, []float64{0, 0})
		s.Add(c)
		couples[c] = true
	}
	rng := rnd.NewContext(6)
	s.Mix(rng)
	if len(s.FF()) != 10 {
		t.Fatalf("expected 10 couples still in ff after mix, got %d", len(s.FF()))
	}
	for _, c := range s.FF() {
		if !couples[c] {
			t.Fatal("mix must only reorder, never drop or fabricate couples")
		}
	}
}

func TestSetEraseEmptiesEveryList(t *testing.T) {
	prop := &Prop{Hand1: &hand.Prop{}, Hand2: &hand.Prop{}, ConfineSpace: boxSpace{half: 5}}
	s := NewSet()
	s.Add(New(prop, []float64{0, 0}))
	s.Add(New(prop, []float64{1, 1}))

	rng := rnd.NewContext(7)
	s.Erase(rng)
	if s.Len() != 0 {
		t.Fatalf("expected Erase to empty the set, got %d remaining", s.Len())
	}
}

func TestUniPrepareActivatesOnlyWhenFastDiffusionRequested(t *testing.T) {
	s := NewSet()
	slow := &Prop{PropertyIndex: 0}
	fast := &Prop{PropertyIndex: 2, FastDiffusion: true}

	if s.UniPrepare([]*Prop{slow}) {
		t.Fatal("expected UniPrepare to be inactive with no fast_diffusion prop")
	}
	if !s.UniPrepare([]*Prop{slow, fast}) {
		t.Fatal("expected UniPrepare to activate when a fast_diffusion prop is present")
	}
	if len(s.reserve) != 3 {
		t.Fatalf("expected reserve sized to max PropertyIndex+1 = 3, got %d", len(s.reserve))
	}
}

func TestUniAttachMovesFastDiffusionCouplesOutOfFF(t *testing.T) {
	f := fiber.NewFiber(2, 5, []float64{0, 0}, 1, 0, 1)
	prop := &Prop{
		Hand1: newAttachProp(), Hand2: newAttachProp(), Stiffness: 1,
		FastDiffusion: true, ConfineSpace: boxSpace{half: 5}, PropertyIndex: 0,
	}
	s := NewSet()
	s.UniPrepare([]*Prop{prop})
	c := New(prop, []float64{0, 0})
	s.Add(c)

	sampler := fixedSampler{sites: []Site{{FiberID: 0, Fiber: f, Abscissa: 0.01}}}
	rng := rnd.NewContext(8)
	s.uniAttach(rng, 1.0, 2, sampler)

	if len(s.FF()) != 0 {
		t.Fatal("expected the fast_diffusion couple to leave the FF list")
	}
	if !c.Attached1() {
		t.Fatal("expected the uniform sampler's site to bind hand1")
	}
}

func TestUniRelaxReturnsReserveToFF(t *testing.T) {
	prop := &Prop{Hand1: &hand.Prop{}, Hand2: &hand.Prop{}, FastDiffusion: true, ConfineSpace: boxSpace{half: 5}, PropertyIndex: 0}
	s := NewSet()
	s.UniPrepare([]*Prop{prop})
	c := New(prop, []float64{0, 0})
	s.reserve[0] = append(s.reserve[0], c)

	rng := rnd.NewContext(9)
	s.UniRelax(rng)

	if len(s.FF()) != 1 || s.FF()[0] != c {
		t.Fatal("expected the reserved couple to return to the FF list")
	}
	if len(s.reserve[0]) != 0 {
		t.Fatal("expected the reserve to be emptied")
	}
}

func TestFreezeSuspendsStepWithoutLosingCouples(t *testing.T) {
	f := fiber.NewFiber(2, 20, []float64{0, 0}, 1, 0, 1)
	grid := fibergrid.NewGrid([]float64{-10, -10}, []float64{10, 10}, []bool{false, false}, 1)
	grid.Paint(segments(f, 0), segPos(f), 1)
	lookup := func(id int) *fiber.Fiber { return f }

	prop := &Prop{Hand1: newAttachProp(), Hand2: newAttachProp(), Stiffness: 1}
	s := NewSet()
	for i := 0; i < 3; i++ {
		s.Add(New(prop, []float64{float64(i), 0.01}))
	}

	s.Freeze()
	if !s.Frozen() {
		t.Fatal("expected Frozen() to report true after Freeze")
	}
	if len(s.FF()) != 0 {
		t.Fatal("expected Freeze to empty the active FF list")
	}

	rng := rnd.NewContext(10)
	s.Step(rng, 0.01, 2, nil, grid, segPos(f), lookup)
	if s.Len() != 0 {
		t.Fatal("expected Step to be a no-op while frozen")
	}

	s.Unfreeze()
	if s.Frozen() {
		t.Fatal("expected Frozen() to report false after Unfreeze")
	}
	if s.Len() != 3 {
		t.Fatalf("expected all 3 couples to return after Unfreeze, got %d", s.Len())
	}
}

func TestAttachDensityScalesByDimension(t *testing.T) {
	d2 := attachDensity(1, 0.1, 1, 2)
	d3 := attachDensity(1, 0.1, 1, 3)
	if d2 != 2*0.1 {
		t.Fatalf("expected 2D density = 2*range, got %v", d2)
	}
	if math.Abs(d3-math.Pi*0.1*0.1) > 1e-12 {
		t.Fatalf("expected 3D density = pi*range^2, got %v", d3)
	}
}
