// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
)

// Steady-flow scenario: a flat, uniform reach carrying a steady
// discharge should settle into a water-surface profile whose interior
// depths span no more than 10% (max-min over min), and must conserve the fed
// discharge exactly (a single source, no tributaries).
func TestFlatBedSteadyFlow(t *testing.T) {
	chk.PrintTitle("FlatBedSteadyFlow")
	p := buildReach(t, reachOpts{
		N: 12, Dx: 100, SlopeDrop: 0.1, Width: 30, Theta: 30, Hmax: 0.5,
		BankHeight: 1.5, FpWidth: 300, FpSlope: 0.02, ValleyWallSlp: 0.5,
		GSDPsiBin: 8, Qfeed: 40,
	})

	xx := make([]float64, len(p.Nodes))
	for i, n := range p.Nodes {
		xx[i] = n.X
	}
	qw, err := p.Hydrograph.QuasiSteadyFlows(0, 0, 1, xx)
	if err != nil {
		t.Fatalf("QuasiSteadyFlows: %v", err)
	}
	for i, q := range qw {
		if math.Abs(q-40) > 1e-9 {
			t.Fatalf("node %d: expected conserved Q=40, got %v", i, q)
		}
	}

	if err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	mn, mx := math.Inf(1), math.Inf(-1)
	for i := 1; i < len(p.Nodes)-1; i++ {
		d := p.Nodes[i].Section.Depth
		if d <= 0 {
			t.Fatalf("node %d: non-positive depth %v", i, d)
		}
		mn = math.Min(mn, d)
		mx = math.Max(mx, d)
	}
	if (mx-mn)/mn > 0.10 {
		t.Fatalf("interior depth variation too large: min=%v max=%v", mn, mx)
	}
}
