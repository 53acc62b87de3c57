// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/nedelec/cytosim/internal/traj"
)

// runSieve implements spec.md §6's `sieve IN OUT [binary=0|1]
// [skip=CLASS]`: copy every frame from IN to OUT, optionally dropping
// records of one class tag. SPEC_FULL.md §6.2 narrows this module's
// trajectory codec to binary only, so binary=0 (request a text
// trajectory) is accepted but rejected explicitly rather than silently
// producing binary output under a text name.
func runSieve(args []string) error {
	positional, opts := parseArgs(args)
	if len(positional) < 2 {
		return fmt.Errorf("usage: sieve IN OUT [binary=0|1] [skip=CLASS]")
	}

	binary, err := opts.boolOr("binary", true)
	if err != nil {
		return err
	}
	if !binary {
		return fmt.Errorf("sieve: binary=0 (text trajectories) is not supported by this codec")
	}

	var skip traj.Tag
	if v, ok := opts["skip"]; ok {
		if len(v) != 1 {
			return fmt.Errorf("skip=%q: expected a single class tag", v)
		}
		skip = traj.Tag(v[0])
	}

	in, err := os.Open(positional[0])
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(positional[1])
	if err != nil {
		return err
	}
	defer out.Close()

	r := traj.NewBinaryReader(in)
	w := traj.NewBinaryWriter(out)

	for {
		frame, err := r.ReadFrame()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if skip != 0 {
			kept := frame.Records[:0]
			for _, rec := range frame.Records {
				if rec.Tag != skip {
					kept = append(kept, rec)
				}
			}
			frame.Records = kept
		}
		if err := w.WriteFrame(frame); err != nil {
			return err
		}
	}
}
