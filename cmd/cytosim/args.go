// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strconv"
	"strings"
)

// kv splits spec.md §6's `key=value` positional arguments (e.g.
// `frame=0,3,7`, `input=run.traj`) from bare positional ones.
type kv map[string]string

func parseArgs(args []string) (positional []string, options kv) {
	options = make(kv)
	for _, a := range args {
		if i := strings.IndexByte(a, '='); i >= 0 {
			options[a[:i]] = a[i+1:]
			continue
		}
		positional = append(positional, a)
	}
	return positional, options
}

func (o kv) intOr(key string, fallback int) (int, error) {
	v, ok := o[key]
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s=%q: %v", key, v, err)
	}
	return n, nil
}

func (o kv) intList(key string) ([]int, error) {
	v, ok := o[key]
	if !ok {
		return nil, nil
	}
	var out []int
	for _, tok := range strings.Split(v, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			return nil, fmt.Errorf("%s=%q: %v", key, v, err)
		}
		out = append(out, n)
	}
	return out, nil
}

func (o kv) boolOr(key string, fallback bool) (bool, error) {
	v, ok := o[key]
	if !ok {
		return fallback, nil
	}
	switch v {
	case "0", "false":
		return false, nil
	case "1", "true":
		return true, nil
	default:
		return false, fmt.Errorf("%s=%q: expected 0/1", key, v)
	}
}
