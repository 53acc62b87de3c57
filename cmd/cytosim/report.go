// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"

	"github.com/nedelec/cytosim/internal/report"
	"github.com/nedelec/cytosim/internal/traj"
)

// runReport implements spec.md §6's
// `report WHAT [frame=N[,M…]] [input=FILE] [output=FILE] [verbose=N] [period=K]`.
func runReport(args []string) error {
	positional, opts := parseArgs(args)
	if len(positional) < 1 {
		return fmt.Errorf("usage: report WHAT [frame=N[,M...]] [input=FILE] [output=FILE] [verbose=N] [period=K]")
	}

	frames, err := opts.intList("frame")
	if err != nil {
		return err
	}
	verbose, err := opts.intOr("verbose", 0)
	if err != nil {
		return err
	}
	period, err := opts.intOr("period", 0)
	if err != nil {
		return err
	}

	in, err := openInput(opts["input"])
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := openOutput(opts["output"])
	if err != nil {
		return err
	}
	defer out.Close()

	r := traj.NewBinaryReader(in)
	_, err = report.Run(r, out, report.Options{
		What:    report.What(positional[0]),
		Frames:  frames,
		Period:  period,
		Verbose: verbose,
	})
	return err
}

// runAnalyse is spec.md §6's `analyse WHAT …`, equivalent to `report`
// run over every frame regardless of any frame=/period= filter.
func runAnalyse(args []string) error {
	positional, opts := parseArgs(args)
	delete(opts, "frame")
	delete(opts, "period")
	rebuilt := append([]string{}, positional...)
	for k, v := range opts {
		rebuilt = append(rebuilt, k+"="+v)
	}
	return runReport(rebuilt)
}

func openInput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func openOutput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}
