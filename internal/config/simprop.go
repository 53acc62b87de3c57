// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

// SimProp holds the global, per-run numerical parameters, mirroring the
// shape of inp/sim.go's Data struct (JSON-tagged, one field per
// physical/numerical knob) but scoped to what the mechanical core
// (spec.md) actually consumes instead of gofem's FEM-specific options.
type SimProp struct {
	Dim         int     `json:"dim"`          // spatial dimension, 1/2/3
	TimeStep    float64 `json:"time_step"`    // dt, seconds
	Viscosity   float64 `json:"viscosity"`    // η, for Stokes drag 6πηr
	KT          float64 `json:"kT"`           // thermal energy, for Brownian amplitude sqrt(2 kT drag / dt)
	Seed        uint32  `json:"seed"`         // PRNG seed, for reproducibility (spec.md §6 environment)
	Tolerance   float64 `json:"tolerance"`    // BiCGStab residual tolerance (infinity norm)
	MaxIter     int     `json:"max_iterations"`
	Precondition bool   `json:"precondition"` // preconditioner request; not read by Meca.Solve, which always runs unpreconditioned BiCGStab
	BindingGridStep float64 `json:"binding_grid_step"` // max cell side for the fiber (attachment) grid
	StericGridStep  float64 `json:"steric_grid_step"`  // min cell side for the steric grid
}

// Default returns reasonable defaults, matching the magnitudes used in
// spec.md §8's scenario descriptions (S1: dt=1e-3, S3: dt=1e-3, etc.).
func Default() *SimProp {
	return &SimProp{
		Dim:             3,
		TimeStep:        1e-3,
		Viscosity:       1e-3,
		KT:              4.1e-3,
		Seed:            1,
		Tolerance:       1e-6,
		MaxIter:         1000,
		Precondition:    true,
		BindingGridStep: 0.5,
		StericGridStep:  0.5,
	}
}
