// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package tests

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/xs"
)

// Free-overfall scenario: a steep reach draining to a free overfall drives
// the flow through critical depth near the downstream boundary. Backwater
// clamps a node's depth to its critical depth whenever the subcritical
// solve would undershoot it, so the node immediately upstream of the
// downstream boundary on a steep reach should land at (or very near) its
// critical depth, i.e. Fr^2 ~= 1.
func TestDrawdownAtFreeOverfall(t *testing.T) {
	chk.PrintTitle("DrawdownAtFreeOverfall")
	p := buildReach(t, reachOpts{
		N: 8, Dx: 50, SlopeDrop: 2.0, Width: 30, Theta: 30, Hmax: 0.5,
		BankHeight: 1.5, FpWidth: 300, FpSlope: 0.02, ValleyWallSlp: 0.5,
		GSDPsiBin: 8, Qfeed: 40,
	})

	if err := p.Step(); err != nil {
		t.Fatalf("Step: %v", err)
	}

	// node n-2 is the first interior node the backwater sweep resolves,
	// i.e. the one closest to the downstream boundary/overfall.
	node := p.Nodes[len(p.Nodes)-2]
	section := node.Section
	depth := section.Depth

	critDepth, err := section.CriticalDepth(xs.CriticalDepthInput{
		Q:            40,
		OverbankFlag: section.Depth > section.BankHeight,
	})
	if err != nil {
		t.Fatalf("CriticalDepth: %v", err)
	}

	// the in-bank CriticalDepth search leaves section.Depth at the critical
	// depth; restore the solved depth before evaluating Fr^2 there.
	section.Depth = depth
	section.Geometry()
	section.Conveyance(node.Active)

	meanVeloc := 40 / section.FlowArea[2]
	fr2 := section.Eci * meanVeloc * meanVeloc / (9.81 * depth)

	if math.Abs(depth-critDepth) > 0.05*critDepth {
		t.Fatalf("expected depth near critical on a steep reach: depth=%v critDepth=%v", depth, critDepth)
	}
	if math.Abs(fr2-1) > 0.15 {
		t.Fatalf("expected Fr^2 close to 1 approaching the free overfall, got %v", fr2)
	}
}
