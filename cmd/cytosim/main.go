// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command cytosim is the CLI entry point of SPEC_FULL.md §6.3: a thin
// dispatcher over the `report`, `reader`, and `sieve` subcommands of
// spec.md §6, each delegating to internal/traj and internal/report.
// Structure (flag.Parse, chk.Panic on a missing/bad argument, io.Pf*
// messaging) is grounded on the teacher's own root main.go driver.
package main

import (
	"flag"
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func main() {
	flag.Parse()
	args := flag.Args()
	if len(args) < 1 {
		chk.Panic("usage: cytosim <report|reader|sieve> [args...]\n")
	}

	var err error
	switch args[0] {
	case "report":
		err = runReport(args[1:])
	case "reader":
		err = runReader(args[1:])
	case "sieve":
		err = runSieve(args[1:])
	case "analyse":
		err = runAnalyse(args[1:])
	default:
		chk.Panic("unknown command %q; expected report, reader, sieve, or analyse\n", args[0])
	}

	if err != nil {
		io.Pfred("cytosim %s: %v\n", args[0], err)
		os.Exit(1)
	}
}
