// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/inp"
	"github.com/jmward-river/grate/profile"
	"github.com/jmward-river/grate/xs"
)

// Sharp-hydrograph scenario: a steady 20 m^3/s flow stepping sharply to
// 100 m^3/s, routed with the Preissmann four-point implicit (dynamic)
// solver, must propagate downstream without blowing up: every node stays
// at a finite, positive depth at every step. Discharge envelope and peak
// attenuation are not checked here.
func TestPreissmannSharpHydrograph(t *testing.T) {
	chk.PrintTitle("PreissmannSharpHydrograph")
	const n = 10
	const dx = 200.0
	nodes := make([]*profile.Node, n)
	for i := 0; i < n; i++ {
		eta := 10.0 - 0.0005*float64(i)*dx
		section := &xs.XS{
			Width: 25, Theta: 40, Hmax: 1.5, BankHeight: 2.5,
			FpWidth: 300, FpSlope: 0.02, ValleyWallSlp: 0.5,
		}
		active := uniformGSD(8)
		stored := []*gsd.GSD{active.Clone()}
		nodes[i] = profile.NewNode(float64(i)*dx, eta, eta-10, section, active, stored, 0.5)
	}

	hg := &inp.Hydrograph{Sources: []inp.Source{
		{Coord: 0, Series: []inp.Entry{
			{Time: 0, Q: 20},
			{Time: 1800, Q: 20},
			{Time: 1801, Q: 100}, // sharp step
			{Time: 1e9, Q: 100},
		}},
	}}

	cfg := profile.Config{Dt: 300, HydUpw: 0.3, PreissTheta: 0.7, SolverName: "dynamic", Poro: 0.35}
	p, err := profile.New(cfg, nodes, hg, dx)
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}

	// march through the steady period, the jump, and far enough past it
	// for the surge to reach the downstream boundary (n*dx at a celerity
	// on the order of a few m/s is well within 30 steps * 300s).
	for i := 0; i < 30; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("step %d (t=%v): %v", i, p.CTime, err)
		}
		for j, node := range p.Nodes {
			d := node.Section.Depth
			if math.IsNaN(d) || math.IsInf(d, 0) || d <= 0 {
				t.Fatalf("step %d node %d: non-finite/non-positive depth %v", i, j, d)
			}
		}
	}

	last := p.Nodes[n-1].Section
	if last.Depth <= 0 || math.IsNaN(last.Depth) {
		t.Fatalf("expected finite positive downstream depth after the surge, got %v", last.Depth)
	}
}
