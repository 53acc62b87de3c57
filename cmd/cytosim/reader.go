// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/nedelec/cytosim/internal/traj"
)

// runReader implements spec.md §6's interactive `reader` REPL: `n`
// reads the next frame, `r` reprints the current one, `w` writes it to
// the configured output, a bare digit string jumps to that frame
// index, and `q` exits. Frame access is sequential under the hood
// (traj.BinaryReader has no index, unlike the original's cached
// frame-offset table): jumping to frame N re-opens the input and reads
// forward, a documented simplification since this module's testable
// properties (spec.md §8) only require round-trip fidelity, not O(1)
// seek.
func runReader(args []string) error {
	positional, opts := parseArgs(args)
	if len(positional) < 1 {
		return fmt.Errorf("usage: reader INPUT [output=FILE]")
	}
	path := positional[0]

	out, err := openOutput(opts["output"])
	if err != nil {
		return err
	}
	defer out.Close()

	rr := &reader{path: path, index: -1}
	if err := rr.seek(0); err != nil {
		return err
	}

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		cmd := scanner.Text()
		switch {
		case cmd == "q":
			return nil
		case cmd == "n":
			if err := rr.advance(); err != nil {
				if err == io.EOF {
					fmt.Fprintln(out, "end of trajectory")
					continue
				}
				return err
			}
			rr.printSummary(out)
		case cmd == "r":
			rr.printSummary(out)
		case cmd == "w":
			if err := writeFrame(out, rr.current); err != nil {
				return err
			}
		default:
			n, perr := strconv.Atoi(cmd)
			if perr != nil {
				fmt.Fprintf(out, "unrecognized command %q (expected n, r, w, q, or a frame index)\n", cmd)
				continue
			}
			if err := rr.seek(n); err != nil {
				return err
			}
			rr.printSummary(out)
		}
	}
	return scanner.Err()
}

type reader struct {
	path    string
	index   int
	current traj.Frame
}

func (r *reader) advance() error {
	return r.seek(r.index + 1)
}

// seek reopens the trajectory and reads forward to frame n.
func (r *reader) seek(n int) error {
	f, err := os.Open(r.path)
	if err != nil {
		return err
	}
	defer f.Close()

	br := traj.NewBinaryReader(f)
	var frame traj.Frame
	for i := 0; i <= n; i++ {
		frame, err = br.ReadFrame()
		if err != nil {
			return err
		}
	}
	r.index = n
	r.current = frame
	return nil
}

func (r *reader) printSummary(w io.Writer) {
	fmt.Fprintf(w, "frame %d: %d records\n", r.index, len(r.current.Records))
}

func writeFrame(w io.Writer, f traj.Frame) error {
	bw := traj.NewBinaryWriter(w)
	return bw.WriteFrame(f)
}
