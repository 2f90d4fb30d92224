// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/inp"
	"github.com/jmward-river/grate/xs"
)

// flatGSD returns a uniform gravel GSD with D50 ~= 0.045m (psi 5.5).
func flatGSD() *gsd.GSD {
	f := gsd.New(1)
	f.Pct[0][8] = 1 // psi bin 5..6, centered at 5.5
	f.Normalize()
	f.Stats()
	return f
}

// flatProfile builds a uniform test reach: 10 nodes, dx=100m, eta sloping
// at 0.001, width 30, theta 30deg, Hmax 0.5, bankHeight 1.5, fpWidth 300.
func flatProfile(t *testing.T) *Profile {
	const n = 10
	const dx = 100.0
	nodes := make([]*Node, n)
	for i := 0; i < n; i++ {
		eta := 10 - 0.001*float64(i)*dx
		section := &xs.XS{
			Width: 30, Theta: 30, Hmax: 0.5, BankHeight: 1.5,
			FpWidth: 300, FpSlope: 0.02, ValleyWallSlp: 0.5,
		}
		active := flatGSD()
		stored := []*gsd.GSD{active.Clone()}
		nodes[i] = NewNode(float64(i)*dx, eta, eta-5, section, active, stored, 0.5)
	}

	hg := &inp.Hydrograph{Sources: []inp.Source{
		{Coord: 0, Series: []inp.Entry{{Time: 0, Q: 40}, {Time: 1e9, Q: 40}}},
	}}

	cfg := Config{Dt: 3600, HydUpw: 0.3, PreissTheta: 0.7, SolverName: "backwater", Poro: 0.35}
	p, err := New(cfg, nodes, hg, dx)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestFlatBedSteadyFlow(t *testing.T) {
	chk.PrintTitle("FlatBedSteadyFlow")
	p := flatProfile(t)
	if err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	var depths []float64
	for i := 1; i < len(p.Nodes)-1; i++ {
		d := p.Nodes[i].Section.Depth
		if d <= 0 {
			t.Fatalf("node %d: non-positive depth %v", i, d)
		}
		depths = append(depths, d)
	}
	mn, mx := depths[0], depths[0]
	for _, d := range depths {
		mn = math.Min(mn, d)
		mx = math.Max(mx, d)
	}
	if (mx-mn)/mn > 0.10 {
		t.Fatalf("interior depth variation too large: min=%v max=%v", mn, mx)
	}
}

func TestMassConservationSingleSource(t *testing.T) {
	chk.PrintTitle("MassConservationSingleSource")
	p := flatProfile(t)
	qw, err := p.Hydrograph.QuasiSteadyFlows(0, 0, 1, p.xx())
	if err != nil {
		t.Fatalf("QuasiSteadyFlows: %v", err)
	}
	for i, q := range qw {
		if math.Abs(q-40) > 1e-9 {
			t.Fatalf("node %d: expected cumulative Q=40, got %v", i, q)
		}
	}
}

func TestFlowTweakTableDrivesDischarge(t *testing.T) {
	chk.PrintTitle("FlowTweakTableDrivesDischarge")
	p := flatProfile(t)
	p.Hydrograph.TweakTable = []float64{1.5, 1.0, 0.9}

	if err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	// first step reads TweakTable[0]
	chk.Float64(t, "qw step 1", 1e-9, p.LastQw()[0], 40*1.5)
	if p.YearCounter != 1 {
		t.Fatalf("expected year counter to advance to 1, got %d", p.YearCounter)
	}

	if err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	chk.Float64(t, "qw step 2", 1e-9, p.LastQw()[0], 40*1.0)

	if err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}
	chk.Float64(t, "qw step 3", 1e-9, p.LastQw()[0], 40*0.9)
	if p.YearCounter != 0 {
		t.Fatalf("expected year counter to wrap back to 0 after the table's last entry, got %d", p.YearCounter)
	}
}

func TestSinuosityStaysInRange(t *testing.T) {
	chk.PrintTitle("SinuosityStaysInRange")
	p := flatProfile(t)
	p.Cfg.RegimeFlag = true
	for i := 0; i < 8; i++ {
		if err := p.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	for i, s := range p.sinuosity {
		if s < 1.0 || s > 2.6 {
			t.Fatalf("node %d: sinuosity %v out of [1,2.6]", i, s)
		}
	}
}

func TestNodeDegradeAggradeRoundTrip(t *testing.T) {
	chk.PrintTitle("NodeDegradeAggradeRoundTrip")
	f := flatGSD()
	stored := []*gsd.GSD{f.Clone(), f.Clone()}
	n := NewNode(0, 10, 5, &xs.XS{}, f.Clone(), stored, 0.5)
	eta0 := n.Eta
	if err := n.Degrade(0.2); err != nil {
		t.Fatalf("Degrade: %v", err)
	}
	n.Aggrade(0.2, f.Clone())
	if math.Abs(n.Eta-eta0) > 1e-9 {
		t.Fatalf("expected eta to round-trip back to %v, got %v", eta0, n.Eta)
	}
	if err := n.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants: %v", err)
	}
}

func TestDegradeBelowBedrockFails(t *testing.T) {
	chk.PrintTitle("DegradeBelowBedrockFails")
	f := flatGSD()
	n := NewNode(0, 10, 9.9, &xs.XS{}, f.Clone(), []*gsd.GSD{f.Clone()}, 0.5)
	if err := n.Degrade(1.0); err == nil {
		t.Fatal("expected error degrading below bedrock")
	}
}
