// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package single implements the Single family of spec.md §4.7: one
// Hand anchored at a point that is either fixed in space (Picket) or
// attached to another Mecable's point (Wrist). Grounded on
// original_source/src/sim/singles/picket.cc and
// singles/wrist.cc.
package single

import (
	"github.com/nedelec/cytosim/internal/fiber"
	"github.com/nedelec/cytosim/internal/fibergrid"
	"github.com/nedelec/cytosim/internal/hand"
	"github.com/nedelec/cytosim/internal/meca"
	"github.com/nedelec/cytosim/internal/mecable"
	"github.com/nedelec/cytosim/internal/rnd"
)

// Prop holds one Single class's parameters, grounded on
// original_source/src/sim/single_prop.h's fields (stiffness, length,
// the bound Hand's own class) as exercised by picket.cc/wrist.cc.
type Prop struct {
	Stiffness float64
	HandProp  *hand.Prop
}

// FiberLookup resolves a fibergrid.Segment's FiberID to the concrete
// *fiber.Fiber, a responsibility the attachment grid itself does not
// own (internal/step assigns and tracks fiber identities).
type FiberLookup func(fiberID int) *fiber.Fiber

// Single is the shared Hand-holding base of Picket and Wrist.
type Single struct {
	prop *Prop
	hand *hand.Hand
}

func newSingle(prop *Prop) Single {
	return Single{prop: prop, hand: hand.New(prop.HandProp)}
}

// Hand returns the bound Hand.
func (s *Single) Hand() *hand.Hand { return s.hand }

// Attached reports whether this Single's Hand currently binds a fiber.
func (s *Single) Attached() bool { return s.hand.Attached() }

// tryAttach runs the shared "query the grid around anchor, try the
// nearest candidates in shuffled order" attachment loop of spec.md
// §4.3, used identically by Picket and Wrist.
func tryAttach(h *hand.Hand, rng *rnd.Context, dt float64, grid *fibergrid.Grid, anchor []float64, pos fibergrid.SegmentPositions, lookup FiberLookup) bool {
	candidates := grid.NearbySegments(anchor, h.Prop().BindingRange, pos, rng.Source, nil)
	for _, c := range candidates {
		f := lookup(c.FiberID)
		if f == nil {
			continue
		}
		abscissa := f.AbscissaOf(c.Index, c.Param)
		if h.TryAttach(rng, dt, c.FiberID, f, abscissa) {
			return true
		}
	}
	return false
}

func sub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range out {
		out[i] = a[i] - b[i]
	}
	return out
}

func scale(v []float64, s float64) []float64 {
	out := make([]float64, len(v))
	for i := range v {
		out[i] = v[i] * s
	}
	return out
}

// Picket anchors its Hand to a fixed point in space, grounded on
// singles/picket.cc.
type Picket struct {
	Single
	pos []float64
}

// NewPicket creates a Picket anchored at the fixed world point pos.
func NewPicket(prop *Prop, pos []float64) *Picket {
	return &Picket{Single: newSingle(prop), pos: pos}
}

// Pos returns the fixed anchor point.
func (p *Picket) Pos() []float64 { return p.pos }

// Force returns the spring force the link currently exerts on the
// Hand, picket.cc's force(): stiffness*(sPos - posHand()).
func (p *Picket) Force() []float64 {
	if !p.Attached() {
		return make([]float64, len(p.pos))
	}
	return scale(sub(p.pos, p.Hand().Pos()), p.prop.Stiffness)
}

// StepFree attempts attachment while unbound, querying the fiber grid
// around the fixed anchor point (picket.cc's stepFree).
func (p *Picket) StepFree(rng *rnd.Context, dt float64, grid *fibergrid.Grid, pos fibergrid.SegmentPositions, lookup FiberLookup) {
	if p.Attached() {
		return
	}
	tryAttach(p.Hand(), rng, dt, grid, p.pos, pos, lookup)
}

// StepAttached evaluates detachment and (for motor Hands) advances the
// bound Hand under the current spring load (picket.cc's stepAttached).
func (p *Picket) StepAttached(rng *rnd.Context, dt float64) {
	if !p.Attached() {
		return
	}
	p.Hand().StepLoaded(rng, dt, p.Force())
}

// SetInteractions deposits this Picket's spring into the assembler:
// meca.interClamp(sHand->interpolation(), sPos, stiffness) from
// picket.cc's setInteractions (prop.length is implicitly 0 — Picket
// never carries a rest length, matching the teacher's own
// assert_true(prop->length == 0)).
func (p *Picket) SetInteractions(m *meca.Meca) {
	if !p.Attached() {
		return
	}
	m.InterClampI(p.Hand().Interpolation(m), p.pos, p.prop.Stiffness)
}

// Wrist anchors its Hand to a point on another Mecable, grounded on
// singles/wrist.cc.
type Wrist struct {
	Single
	base  mecable.Mecable
	index int
}

// NewWrist creates a Wrist anchored to point `index` of base.
func NewWrist(prop *Prop, base mecable.Mecable, index int) *Wrist {
	return &Wrist{Single: newSingle(prop), base: base, index: index}
}

// Pos returns the current position of the anchor point.
func (w *Wrist) Pos() []float64 { return w.base.PointsRef().Point(w.index) }

// Force returns the spring force: stiffness*(basePos - handPos),
// wrist.cc's force().
func (w *Wrist) Force() []float64 {
	if !w.Attached() {
		return make([]float64, len(w.Pos()))
	}
	return scale(sub(w.Pos(), w.Hand().Pos()), w.prop.Stiffness)
}

// StepFree attempts attachment while unbound, querying the fiber grid
// around the (possibly moving) anchor point (wrist.cc's stepFree).
func (w *Wrist) StepFree(rng *rnd.Context, dt float64, grid *fibergrid.Grid, pos fibergrid.SegmentPositions, lookup FiberLookup) {
	if w.Attached() {
		return
	}
	tryAttach(w.Hand(), rng, dt, grid, w.Pos(), pos, lookup)
}

// StepAttached evaluates detachment and motor advance under the
// current spring load (wrist.cc's stepAttached).
func (w *Wrist) StepAttached(rng *rnd.Context, dt float64) {
	if !w.Attached() {
		return
	}
	w.Hand().StepLoaded(rng, dt, w.Force())
}

// SetInteractions deposits this Wrist's spring into the assembler:
// meca.interLink(sHand->interpolation(), sBase, stiffness) from
// wrist.cc's setInteractions.
func (w *Wrist) SetInteractions(m *meca.Meca) {
	if !w.Attached() {
		return
	}
	base := m.Exact(w.base, w.index)
	m.InterLinkI(base, w.Hand().Interpolation(m), w.prop.Stiffness)
}
