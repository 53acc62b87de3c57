// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package meca

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/nedelec/cytosim/internal/mecable"
)

// PointExact identifies a single point of a registered Mecable by its
// global index. Grounded on meca.h's PointExact (the zero-interpolation
// degenerate case of PointInterpolated).
type PointExact struct {
	idx int
}

// PointInterpolated identifies a point interpolated between two
// consecutive points of a Mecable: pos = (1-Coef)*pts[Index] +
// Coef*pts[Index+1]. Grounded on meca.h's PointInterpolated, used by
// Hand attachment sites that fall between two fiber vertices.
type PointInterpolated struct {
	idx0, idx1 int
	coef       float64
}

// Exact resolves an (object, local index) pair to a PointExact; ob must
// already be registered via Add.
func (m *Meca) Exact(ob mecable.Mecable, index int) PointExact {
	oi := m.objIndexOf(ob)
	return PointExact{idx: m.globalIndex(oi, index)}
}

// Interpolated resolves an (object, local index, coefficient) triple to
// a PointInterpolated spanning points [index, index+1] of ob.
func (m *Meca) Interpolated(ob mecable.Mecable, index int, coef float64) PointInterpolated {
	oi := m.objIndexOf(ob)
	return PointInterpolated{idx0: m.globalIndex(oi, index), idx1: m.globalIndex(oi, index+1), coef: coef}
}

func (m *Meca) objIndexOf(ob mecable.Mecable) int {
	for i, o := range m.objs {
		if o == ob {
			return i
		}
	}
	chk.Panic("meca: object not registered (call Add before building interactions)")
	return -1
}

// term is one (global point index, linear coefficient) pair in the
// sparse combination vector a link's quadratic form is built from.
type term struct {
	idx  int
	coef float64
}

func exactTerms(p PointExact, sign float64) []term {
	return []term{{p.idx, sign}}
}

func interpTerms(p PointInterpolated, sign float64) []term {
	return []term{{p.idx0, sign * (1 - p.coef)}, {p.idx1, sign * p.coef}}
}

// pos evaluates the current position of a point (exact or interpolated)
// from Meca's vPTS, used to freeze direction/arm vectors at assembly
// time per spec.md §4.6 ("the arm is held constant for the duration of
// the solve").
func (m *Meca) posExact(p PointExact) []float64 { return m.Pos(p.idx) }

func (m *Meca) posInterp(p PointInterpolated) []float64 {
	a, b := m.Pos(p.idx0), m.Pos(p.idx1)
	out := make([]float64, m.dim)
	for d := 0; d < m.dim; d++ {
		out[d] = (1-p.coef)*a[d] + p.coef*b[d]
	}
	return out
}

// addIsotropic deposits weight*(Σterms)^2/2 into mB: for every pair of
// terms (including a term against itself) it adds weight*coefI*coefJ at
// (idxI,idxJ). This is the shared Hessian shape behind every primitive
// in spec.md's table whose arm/direction vector is frozen at assembly
// (interLink, interLongLink, interSideLink, interSlidingLink,
// interClamp, interCoulomb) — see package doc. The raw form always
// grows with separation; interCoulomb (repulsion) uses it as-is, while
// every attracting caller passes -weight to pull terms together
// instead.
func (m *Meca) addIsotropic(weight float64, terms []term) {
	for i := range terms {
		for j := i; j < len(terms); j++ {
			m.mB.Put(terms[i].idx, terms[j].idx, weight*terms[i].coef*terms[j].coef)
		}
	}
}

// addIsotropicBase adds a constant per-axis offset's contribution to
// vBAS for the same terms an addIsotropic call used: force on term i,
// axis d gets += weight*coefI*target[d].
func (m *Meca) addIsotropicBase(weight float64, terms []term, target []float64) {
	for _, t := range terms {
		for d := 0; d < m.dim; d++ {
			m.addBase(t.idx, d, weight*t.coef*target[d])
		}
	}
}

func vecSub(a, b []float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out
}

func vecNorm(v []float64) float64 {
	var s float64
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
