// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config implements the typed configuration surface a text
// parser would populate: the Property catalog (spec.md §3 "Property")
// and the per-run SimProp record. The text grammar itself (spec.md §6)
// is out of scope; this package only consumes an already-tokenized
// ConfigSource, modeled on inp/sim.go's Simulation/MatModels pair with
// the FEM-specific mesh/region machinery dropped (see DESIGN.md).
package config

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/rnd"
)

// Property is a named, typed parameter record attached to a class
// (filament-kind, hand-kind, couple-kind, ...). Identified by
// (Kind, Name); Index is a stable integer assigned on creation and never
// reused, matching spec.md §3's Property entity.
type Property struct {
	Kind   string // e.g. "fiber", "hand", "couple", "space"
	Name   string // e.g. "microtubule", "kinesin"
	Index  int    // stable, assigned on creation
	Params map[string]float64
	Text   map[string]string
}

// Float returns a numeric parameter, or (0,false) if absent.
func (p *Property) Float(key string) (float64, bool) {
	v, ok := p.Params[key]
	return v, ok
}

// MustFloat returns a numeric parameter or panics — used for parameters
// spec.md declares mandatory for a class (e.g. a FiberProp's rigidity),
// matching the teacher's chk.Panic-on-missing-material idiom in
// ele/solid/elastrod.go's allocator.
func (p *Property) MustFloat(key string) float64 {
	v, ok := p.Params[key]
	if !ok {
		chk.Panic("config: property %s:%s missing required parameter %q", p.Kind, p.Name, key)
	}
	return v
}

// Catalog is the (kind,name)->Property registry; the only source of
// calibrated stiffness/rate constants for objects of a class, per
// spec.md §3.
type Catalog struct {
	byKindName map[string]*Property
	all        []*Property

	randoms    rnd.Variables
	randomMeta []DistributedParam
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{byKindName: make(map[string]*Property)}
}

// Define registers a new property, assigning it the next stable index.
// Redefining an existing (kind,name) pair is an InvalidParameter-class
// error (spec.md §7), returned rather than panicked since it originates
// from user-supplied configuration.
func (c *Catalog) Define(kind, name string) (*Property, error) {
	key := kind + ":" + name
	if _, exists := c.byKindName[key]; exists {
		return nil, chk.Err("config: property %s already defined", key)
	}
	p := &Property{
		Kind:   kind,
		Name:   name,
		Index:  len(c.all),
		Params: make(map[string]float64),
		Text:   make(map[string]string),
	}
	c.byKindName[key] = p
	c.all = append(c.all, p)
	return p, nil
}

// Get resolves a (kind,name) reference, returning an InvalidParameter
// error if it cannot be found, per spec.md §7.
func (c *Catalog) Get(kind, name string) (*Property, error) {
	p, ok := c.byKindName[kind+":"+name]
	if !ok {
		return nil, chk.Err("config: cannot resolve property %s:%s", kind, name)
	}
	return p, nil
}

// ByIndex returns every defined property in creation order; callers may
// index into it directly since Index is assigned densely from 0.
func (c *Catalog) ByIndex() []*Property { return c.all }

// Assignment is one key=value pair from a tokenized `set`/`change`/`new`
// command; the ConfigSource contract (SPEC_FULL.md §6.1) yields these
// without this package depending on the text grammar.
type Assignment struct {
	Kind, Name, Key string
	Value           float64
	Text            string // set instead of Value when the rhs is not numeric
}

// ConfigSource is implemented by the (out-of-scope) text parser.
type ConfigSource interface {
	Tokens() ([]Assignment, error)
}

// Load applies every assignment from src to the catalog, defining
// properties on first encounter.
func (c *Catalog) Load(src ConfigSource) error {
	tokens, err := src.Tokens()
	if err != nil {
		return chk.Err("config: reading tokens failed: %v", err)
	}
	for _, a := range tokens {
		p, ok := c.byKindName[a.Kind+":"+a.Name]
		if !ok {
			var defErr error
			p, defErr = c.Define(a.Kind, a.Name)
			if defErr != nil {
				return defErr
			}
		}
		if a.Text != "" {
			p.Text[a.Key] = a.Text
		} else {
			p.Params[a.Key] = a.Value
		}
	}
	return nil
}
