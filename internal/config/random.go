// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/rnd"
)

// DistributedParam declares that a Property's numeric parameter should
// be drawn from a named probability distribution instead of taking a
// fixed value, mirroring inp/sim.go's append_adjustable_parameter path
// (rnd.GetDistribution(prm.D) feeding an rnd.VarData entry collected
// into an rnd.Variables list and initialized once via .Init()).
type DistributedParam struct {
	Kind, Name, Key string
	Dist            string // distribution name gosl/rnd.GetDistribution understands
	Mean, Sigma     float64
	Min, Max        float64
}

// Catalog.randoms collects every DistributedParam registered via
// DeclareRandom, resolved into gosl/rnd.Variables on Finalize — the
// same two-phase append-then-Init discipline inp/sim.go uses for its
// AdjRandom list.
func (c *Catalog) DeclareRandom(d DistributedParam) error {
	distr := rnd.GetDistribution(d.Dist)
	if distr == nil {
		return chk.Err("config: unknown distribution %q for %s:%s.%s", d.Dist, d.Kind, d.Name, d.Key)
	}
	c.randoms = append(c.randoms, &rnd.VarData{
		D: distr, M: d.Mean, S: d.Sigma, Min: d.Min, Max: d.Max,
		Key: d.Kind + ":" + d.Name + "." + d.Key,
	})
	c.randomMeta = append(c.randomMeta, d)
	return nil
}

// FinalizeRandoms initializes every declared distribution once, the
// same point inp/sim.go calls o.AdjRandom.Init() after every property
// and function has registered its adjustable parameters.
func (c *Catalog) FinalizeRandoms() error {
	if err := c.randoms.Init(); err != nil {
		return chk.Err("config: initializing random parameters failed: %v", err)
	}
	return nil
}

// Randoms exposes the initialized variable list for the caller that
// actually draws values per simulated object (internal/fiber,
// internal/body at construction time), keeping this package free of
// a dependency on those domain packages.
func (c *Catalog) Randoms() rnd.Variables { return c.randoms }
