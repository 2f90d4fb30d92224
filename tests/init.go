// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package tests holds end-to-end scenario tests: each scenario wires
// inp/gsd/xs/profile together the way cmd/grate's build does, rather than
// exercising one package's internals in isolation.
package tests

import (
	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func init() {
	io.Verbose = false
}

// Verbose turns on progress printing, for debugging a scenario by hand.
func Verbose() {
	io.Verbose = true
	chk.Verbose = true
}
