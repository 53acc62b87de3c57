// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package step implements the per-tick orchestrator of spec.md §5: a
// single deterministic simulation loop guarded by one mutex and one
// condition variable, so a second (display/observer) goroutine may
// read positions between steps without ever mutating state. Grounded
// on spec.md §4's step sequence (binding/unbinding, geometry update,
// Meca assembly/solve, integration, reshape — already performed
// internally by meca.Meca.Solve) and §5's concurrency/cancellation
// contract; the orchestration shape itself follows
// github.com/cpmech/gofem's fem.FEM/Solver split (one struct owning
// every registered object plus a Run loop), adapted from an implicit
// finite-element time-stepper to cytosim's implicit-Euler step.
package step

import (
	"sync"

	"github.com/cpmech/gosl/io"

	"github.com/nedelec/cytosim/internal/couple"
	"github.com/nedelec/cytosim/internal/fiber"
	"github.com/nedelec/cytosim/internal/fibergrid"
	"github.com/nedelec/cytosim/internal/meca"
	"github.com/nedelec/cytosim/internal/mecable"
	"github.com/nedelec/cytosim/internal/rnd"
	"github.com/nedelec/cytosim/internal/single"
	"github.com/nedelec/cytosim/internal/space"
	"github.com/nedelec/cytosim/internal/stericgrid"
)

// SingleLike is the shared contract of single.Picket and single.Wrist,
// factored out so the orchestrator can hold both in one slice without
// depending on either concrete type.
type SingleLike interface {
	Attached() bool
	StepFree(rng *rnd.Context, dt float64, grid *fibergrid.Grid, pos fibergrid.SegmentPositions, lookup single.FiberLookup)
	StepAttached(rng *rnd.Context, dt float64)
	SetInteractions(m *meca.Meca)
}

// trackedFiber pairs a Fiber with the integer identity the attachment
// grid and every Hand reference it by, mirroring cytosim's Inventory
// numbering (assigned here by insertion order rather than reused after
// deletion, a documented simplification: this module never deletes
// fibers mid-run).
type trackedFiber struct {
	id int
	f  *fiber.Fiber
}

// Orchestrator owns every mechanical object of one simulation and
// advances them through exactly the sequence spec.md §4 describes.
// One instance is reused across steps, matching meca.Meca's own
// reuse-in-place discipline.
type Orchestrator struct {
	dim int

	mu   sync.Mutex
	cond *sync.Cond

	fibers  []trackedFiber
	nextID  int
	bodies  []mecable.Mecable
	singles []SingleLike
	couples *couple.Set

	grid         *fibergrid.Grid
	maxBindRange float64
	meca         *meca.Meca
	rng          *rnd.Context
	monitorIter  int
	monitorTol   float64
	stepCount    int
	cancelled    bool

	spaceInf, spaceSup []float64
	spacePeriodic      []bool

	confine          space.Space
	confineStiffness float64

	steric          *stericgrid.Grid
	stericRadius    float64
	stericRange     float64
	stericStiffness float64
}

// stericOwner resolves a stericgrid.Object back to the (Mecable, local
// point index) it represents: stericgrid itself stays decoupled from
// any concrete registry (spec.md §4.4), so the Orchestrator keeps this
// parallel slice, rebuilt each step in the same order objects are added
// to the grid, mirroring trackedFiber/fiberByID's id-to-object mapping
// for the fibergrid subsystem.
type stericOwner struct {
	ob    mecable.Mecable
	kind  stericgrid.Kind
	index int // point index (KindPoint) or segment start index (KindSegment)
}

// exactPoint resolves a contact's segment parameter (ignored for
// KindPoint) to the nearer of the segment's two endpoints: InterCoulomb
// only accepts two exact points (meca.h defines no interpolated variant
// for the experimental steric primitive), so a segment contact is
// approximated by its closer vertex.
func (so stericOwner) exactPoint(m *meca.Meca, param float64) meca.PointExact {
	idx := so.index
	if so.kind == stericgrid.KindSegment && param >= 0.5 {
		idx++
	}
	return m.Exact(so.ob, idx)
}

// NewOrchestrator creates an empty Orchestrator for a `dim`-dimensional
// system confined to [inf,sup], with fibergrid cells no larger than
// gridCell.
func NewOrchestrator(dim int, inf, sup []float64, periodic []bool, gridCell float64, seed uint32) *Orchestrator {
	o := &Orchestrator{
		dim:           dim,
		couples:       couple.NewSet(),
		grid:          fibergrid.NewGrid(inf, sup, periodic, gridCell),
		meca:          meca.New(dim),
		rng:           rnd.NewContext(seed),
		monitorIter:   200,
		monitorTol:    1e-6,
		spaceInf:      inf,
		spaceSup:      sup,
		spacePeriodic: periodic,
	}
	o.cond = sync.NewCond(&o.mu)
	return o
}

// SetMonitor overrides the BiCGStab iteration cap and tolerance used
// by every future Step call (defaults: 200 iterations, 1e-6).
func (o *Orchestrator) SetMonitor(maxIter int, tolerance float64) {
	o.monitorIter, o.monitorTol = maxIter, tolerance
}

// SetSpace confines every registered fiber and body in s, depositing an
// InterPlane penalty of the given stiffness each step for any point
// currently outside it (spec.md §3 "Space (11) adds confinement",
// §4.6 step 2).
func (o *Orchestrator) SetSpace(s space.Space, stiffness float64) {
	o.confine = s
	o.confineStiffness = stiffness
}

// SetSteric enables the pairwise steric-exclusion pass (spec.md §4.4):
// every fiber segment and body point is treated as a steric object of
// the given equilibrium radius, pushed apart by stiffness once closer
// than radius*2 or within pushRange of each other, whichever is larger.
func (o *Orchestrator) SetSteric(radius, pushRange, stiffness float64) {
	o.stericRadius = radius
	o.stericRange = pushRange
	o.stericStiffness = stiffness
	cell := 2 * (radius + pushRange)
	o.steric = stericgrid.NewGrid(o.spaceInf, o.spaceSup, o.spacePeriodic, cell)
}

// AddFiber registers a fiber and returns the identity later used by
// Hand attachment and trajectory records.
func (o *Orchestrator) AddFiber(f *fiber.Fiber) int {
	id := o.nextID
	o.nextID++
	o.fibers = append(o.fibers, trackedFiber{id: id, f: f})
	return id
}

// AddBody registers a non-fiber Mecable (Bead, Solid, Sphere).
func (o *Orchestrator) AddBody(m mecable.Mecable) {
	o.bodies = append(o.bodies, m)
}

// AddSingle registers a Single (Picket or Wrist) and widens the
// attachment grid's tracked binding range if needed.
func (o *Orchestrator) AddSingle(s SingleLike, bindingRange float64) {
	o.singles = append(o.singles, s)
	if bindingRange > o.maxBindRange {
		o.maxBindRange = bindingRange
	}
}

// AddCouple registers a Couple with the shared couple.Set.
func (o *Orchestrator) AddCouple(c *couple.Couple, bindingRange float64) {
	o.couples.Add(c)
	if bindingRange > o.maxBindRange {
		o.maxBindRange = bindingRange
	}
}

// Couples exposes the orchestrator's Set, for UniPrepare/Freeze calls
// made once at setup or in response to configuration changes.
func (o *Orchestrator) Couples() *couple.Set { return o.couples }

// fiberByID resolves a fiber identity to its concrete Fiber, the
// single.FiberLookup/couple fiberLookup contract every attachment
// primitive needs; linear in fiber count, acceptable since this
// module's fiber populations are the small-to-moderate sizes typical
// of a cytosim scene, not the millions of points a fibergrid cell
// itself might index.
func (o *Orchestrator) fiberByID(id int) *fiber.Fiber {
	for _, tf := range o.fibers {
		if tf.id == id {
			return tf.f
		}
	}
	return nil
}

func (o *Orchestrator) segmentPositions() fibergrid.SegmentPositions {
	return func(s fibergrid.Segment) (p, q []float64) {
		f := o.fiberByID(s.FiberID)
		return f.PointsRef().Point(s.Index), f.PointsRef().Point(s.Index + 1)
	}
}

func (o *Orchestrator) allSegments() []fibergrid.Segment {
	var segs []fibergrid.Segment
	for _, tf := range o.fibers {
		n := tf.f.NPoints()
		for i := 0; i < n-1; i++ {
			segs = append(segs, fibergrid.Segment{FiberID: tf.id, Index: i})
		}
	}
	return segs
}

// RequestStop sets the cancellation flag spec.md §5 describes: checked
// at the top of the next Step, never mid-step, so a step always
// completes atomically under the mutex.
func (o *Orchestrator) RequestStop() {
	o.mu.Lock()
	o.cancelled = true
	o.mu.Unlock()
}

// WithReadLock runs fn while holding the state mutex for read-only
// access, the observer-thread contract of spec.md §5: "an observer
// acquires it via a scoped lock to read positions, and must not mutate
// anything." Go has no compiler-enforced read-only borrow, so this is
// a convention the caller must honor, exactly as the C++ original
// relies on the observer's own discipline rather than a const-correct
// API surface.
func (o *Orchestrator) WithReadLock(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fn()
}

// TryReadLock is the non-blocking `try_lock` variant spec.md §5 names
// for frame-rate display: returns false immediately if the simulation
// thread currently holds the mutex.
func (o *Orchestrator) TryReadLock(fn func()) bool {
	if !o.mu.TryLock() {
		return false
	}
	defer o.mu.Unlock()
	fn()
	return true
}

// StepCount returns the number of completed steps.
func (o *Orchestrator) StepCount() int { return o.stepCount }

// Step advances the simulation by one implicit-Euler tick of duration
// dt, in the sequence spec.md §4 names: attachment-grid rebuild,
// Hand/Single/Couple stepping, Meca assembly, confinement and steric
// deposits, Brownian forcing, BiCGStab solve (which itself integrates
// positions and reshapes every Mecable, see meca.Meca.Solve), and
// finally the dynamic-instability length update of spec.md §4.8, then
// signals the condition variable for any observer waiting on step
// completion. Returns done=true when the cancellation flag was observed
// (the caller should stop calling Step), and a *meca.DivergenceError
// (wrapped, non-nil) if the solver failed to converge — per spec.md §7,
// a NumericDivergence is reported and the caller is expected to
// terminate after Step returns it, not retry.
func (o *Orchestrator) Step(dt float64) (done bool, err error) {
	o.mu.Lock()
	defer func() {
		o.cond.Broadcast()
		o.mu.Unlock()
	}()

	if o.cancelled {
		o.relaxOnCancel()
		return true, nil
	}

	o.grid.Clear()
	o.grid.Paint(o.allSegments(), o.segmentPositions(), o.maxBindRange)

	lookup := single.FiberLookup(o.fiberByID)
	pos := o.segmentPositions()

	for _, s := range o.singles {
		if s.Attached() {
			s.StepAttached(o.rng, dt)
		} else {
			s.StepFree(o.rng, dt, o.grid, pos, lookup)
		}
	}

	o.couples.Step(o.rng, dt, o.dim, fiberSampler{o}, o.grid, pos, lookup)

	o.meca.Clear()
	for _, tf := range o.fibers {
		o.meca.Add(tf.f)
	}
	for _, b := range o.bodies {
		o.meca.Add(b)
	}
	o.meca.Prepare()

	o.depositConfinement()
	o.depositSteric()

	for _, s := range o.singles {
		s.SetInteractions(o.meca)
	}
	for _, c := range o.couples.AA() {
		c.SetInteractions(o.meca)
	}

	o.meca.BrownianForcing(dt, o.rng.Gauss)

	mon := meca.NewMonitor(o.monitorIter, o.monitorTol)
	if _, serr := o.meca.Solve(dt, mon); serr != nil {
		io.Pfred("step %d: solver did not converge: %v\n", o.stepCount, serr)
		o.relaxOnCancel()
		return true, serr
	}

	o.advanceFiberDynamics()

	o.stepCount++
	return false, nil
}

// depositConfinement adds an InterPlane penalty for every registered
// point o.confine.Interaction reports as outside (spec.md §3 "Space
// (11) adds confinement", §4.6 step 2); a no-op when SetSpace was never
// called. Interaction supplies the outward normal and a zero/nonzero
// penalty magnitude per point; Project supplies InterPlane's anchor
// (the boundary point the spring pulls toward). Evaluating both fresh
// at each point's own local tangent plane, rather than one global
// plane, is what lets the single InterPlane primitive generalize to any
// Space shape (sphere, cylinder, ellipse, ...), not just a literal
// plane.
func (o *Orchestrator) depositConfinement() {
	if o.confine == nil {
		return
	}
	confine := func(ob mecable.Mecable) {
		pts := ob.PointsRef()
		for i := 0; i < pts.N(); i++ {
			x := pts.Point(i)
			dir, mag := o.confine.Interaction(x, o.confineStiffness)
			if mag <= 0 {
				continue
			}
			g := o.confine.Project(x)
			o.meca.InterPlane(o.meca.Exact(ob, i), dir, g, o.confineStiffness)
		}
	}
	for _, tf := range o.fibers {
		confine(tf.f)
	}
	for _, b := range o.bodies {
		confine(b)
	}
}

// depositSteric rebuilds the steric grid from every fiber segment and
// body point, finds contacts, and deposits each as an InterCoulomb push
// (spec.md §4.4); a no-op until SetSteric has been called.
func (o *Orchestrator) depositSteric() {
	if o.steric == nil || o.stericStiffness == 0 {
		return
	}
	o.steric.Clear()
	owners := o.paintSteric()
	for _, c := range o.steric.FindContacts(o.stericRange) {
		a := owners[c.A].exactPoint(o.meca, c.ParamA)
		b := owners[c.B].exactPoint(o.meca, c.ParamB)
		pushDistance := o.steric.At(c.A).Radius + o.steric.At(c.B).Radius
		o.meca.InterCoulomb(a, b, pushDistance, o.stericStiffness)
	}
}

// paintSteric registers every fiber segment (KindSegment) and body
// point (KindPoint) into o.steric, returning the owners slice that maps
// each steric-grid index back to its (Mecable, local index), in the
// same order the objects were added.
func (o *Orchestrator) paintSteric() []stericOwner {
	var owners []stericOwner
	for _, tf := range o.fibers {
		pts := tf.f.PointsRef()
		for i := 0; i+1 < pts.N(); i++ {
			o.steric.Add(stericgrid.Object{
				Kind:   stericgrid.KindSegment,
				P:      pts.Point(i),
				Q:      pts.Point(i + 1),
				Radius: o.stericRadius,
				Range:  o.stericRange,
			})
			owners = append(owners, stericOwner{ob: tf.f, kind: stericgrid.KindSegment, index: i})
		}
	}
	for _, b := range o.bodies {
		pts := b.PointsRef()
		for i := 0; i < pts.N(); i++ {
			o.steric.Add(stericgrid.Object{
				Kind:   stericgrid.KindPoint,
				P:      pts.Point(i),
				Radius: o.stericRadius,
				Range:  o.stericRange,
			})
			owners = append(owners, stericOwner{ob: b, kind: stericgrid.KindPoint, index: i})
		}
	}
	return owners
}

// advanceFiberDynamics runs spec.md §4.8's post-solve length update:
// every dynamic fiber reads back the axial force at its own tips from
// the step just solved, advances its end-state model, resegments to
// apply the resulting growth/shrinkage, and is dropped from the
// registry if its model calls for destruction (classic_fiber_prop.h's
// fate=DESTROY on catastrophic disassembly below min_length).
func (o *Orchestrator) advanceFiberDynamics() {
	kept := o.fibers[:0]
	for _, tf := range o.fibers {
		destroy := false
		if tf.f.HasDynamics() {
			n := tf.f.NPoints()
			dirP := tf.f.Direction(n - 2)
			dirM := negated(tf.f.Direction(0))
			forceP := o.meca.ForceAlong(tf.f, n-1, dirP)
			forceM := o.meca.ForceAlong(tf.f, 0, dirM)
			destroy = tf.f.StepDynamics(forceP, forceM, o.rng)
		}
		if !destroy {
			kept = append(kept, tf)
		}
	}
	o.fibers = kept
}

func negated(v []float64) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = -x
	}
	return out
}

// relaxOnCancel implements spec.md §5's cancellation hook: "calling a
// relax() hook on each class that has enabled fast-diffusion to
// restore lists before teardown", and, per spec.md §7, the same
// relax() call on NumericDivergence.
func (o *Orchestrator) relaxOnCancel() {
	o.couples.UniRelax(o.rng)
}

// fiberSampler adapts the Orchestrator's fiber registry to
// couple.FiberSampler, couple_set.cc's fibers.uniFiberSites: draw
// attachment sites uniformly along the combined length of every fiber,
// spaced on average `spacing` apart.
type fiberSampler struct{ o *Orchestrator }

func (fs fiberSampler) UniformSites(rng *rnd.Context, spacing float64) []couple.Site {
	if spacing <= 0 {
		return nil
	}
	var total float64
	for _, tf := range fs.o.fibers {
		total += tf.f.Length()
	}
	if total <= 0 {
		return nil
	}
	n := int(total / spacing)
	sites := make([]couple.Site, 0, n)
	for i := 0; i < n; i++ {
		// Pick a fiber weighted by its own length, then a uniform
		// abscissa along it; couple_set.cc's own uniFiberSites performs
		// an equivalent length-weighted walk across the FiberSet.
		r := rng.Source.Float64() * total
		var chosen trackedFiber
		for _, tf := range fs.o.fibers {
			if r < tf.f.Length() {
				chosen = tf
				break
			}
			r -= tf.f.Length()
		}
		if chosen.f == nil {
			continue
		}
		a := rng.Source.Float64() * chosen.f.Length()
		sites = append(sites, couple.Site{FiberID: chosen.id, Fiber: chosen.f, Abscissa: a})
	}
	return sites
}
