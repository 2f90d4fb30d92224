// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"testing"

	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/inp"
	"github.com/jmward-river/grate/profile"
	"github.com/jmward-river/grate/xs"
)

// uniformGSD returns a single-lithology GSD with all its mass in one
// psi bin, the "uniform gravel" fixture used across several scenarios.
func uniformGSD(psiBinIdx int) *gsd.GSD {
	f := gsd.New(1)
	f.Pct[0][psiBinIdx] = 1
	f.Normalize()
	f.Stats()
	return f
}

// reachOpts configures buildReach's per-node cross-section; every node
// shares the same geometry and GSD, a uniform synthetic reach.
type reachOpts struct {
	N             int
	Dx            float64
	SlopeDrop     float64 // bed elevation drop per node, m
	Width         float64
	Theta         float64
	Hmax          float64
	BankHeight    float64
	FpWidth       float64
	FpSlope       float64
	ValleyWallSlp float64
	GSDPsiBin     int
	Qfeed         float64
	SolverName    string
	RegimeFlag    bool
}

// buildReach assembles a Profile from reachOpts the way cmd/grate's build
// assembles one from an inp.Config, but in-process so scenario tests don't
// need to round-trip through JSON.
func buildReach(t *testing.T, o reachOpts) *profile.Profile {
	t.Helper()
	nodes := make([]*profile.Node, o.N)
	for i := 0; i < o.N; i++ {
		eta := 10.0 - o.SlopeDrop*float64(i)
		section := &xs.XS{
			Width: o.Width, Theta: o.Theta, Hmax: o.Hmax, BankHeight: o.BankHeight,
			FpWidth: o.FpWidth, FpSlope: o.FpSlope, ValleyWallSlp: o.ValleyWallSlp,
		}
		active := uniformGSD(o.GSDPsiBin)
		stored := []*gsd.GSD{active.Clone()}
		nodes[i] = profile.NewNode(float64(i)*o.Dx, eta, eta-10, section, active, stored, 0.5)
	}

	hg := &inp.Hydrograph{Sources: []inp.Source{
		{Coord: 0, Series: []inp.Entry{{Time: 0, Q: o.Qfeed}, {Time: 1e9, Q: o.Qfeed}}},
	}}

	solverName := o.SolverName
	if solverName == "" {
		solverName = "backwater"
	}
	cfg := profile.Config{
		Dt: 900, HydUpw: 0.3, PreissTheta: 0.7, SolverName: solverName,
		Poro: 0.35, RegimeFlag: o.RegimeFlag,
	}
	p, err := profile.New(cfg, nodes, hg, o.Dx)
	if err != nil {
		t.Fatalf("profile.New: %v", err)
	}
	return p
}
