// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regime

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

func gravelBed() *gsd.GSD {
	f := gsd.New(1)
	f.Pct[0][8] = 1 // psi around 5-6, coarse gravel
	f.Normalize()
	f.Stats()
	return f
}

func TestFindStableConverges(t *testing.T) {
	chk.PrintTitle("FindStableConverges")
	f := gravelBed()
	st, err := FindStable(12, 1, 2.5, 60, 25, 0.002, f)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Theta <= 0 || st.Theta > 90 {
		t.Fatalf("theta out of range: %v", st.Theta)
	}
	if st.Depth <= 0 {
		t.Fatalf("expected positive stable depth, got %v", st.Depth)
	}
	if st.Tbed < 0 || st.Tbank < 0 || st.QbCap < 0 {
		t.Fatalf("expected non-negative stress/transport, got tbed=%v tbank=%v qbCap=%v", st.Tbed, st.Tbank, st.QbCap)
	}
}

func TestCoordinatorStepKeepsWithinChannelLimit(t *testing.T) {
	chk.PrintTitle("CoordinatorStepKeepsWithinChannelLimit")
	c := NewCoordinator(20, 42)
	section := &xs.XS{Width: 10, Theta: 60, Hmax: 0, BankHeight: 1, FpWidth: 60}
	f := gravelBed()
	out, err := c.Step(section, StepInput{
		Q: 30, BedSlope: 0.002, F: f, Theta0: 60, FpWidth: 60, ReachDx: 100, Sinuosity: 1.2, OldBankHt: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.NumChannel < 1 || out.NumChannel > 10 {
		t.Fatalf("channel count out of bounds: %d", out.NumChannel)
	}
	if out.Sinuosity < sinuosityLow || out.Sinuosity > sinuosityHigh {
		t.Fatalf("sinuosity out of clamp range: %v", out.Sinuosity)
	}
}

func TestCoordinatorCounterWraps(t *testing.T) {
	chk.PrintTitle("CoordinatorCounterWraps")
	c := NewCoordinator(5, 1)
	if c.Counter() != 3 {
		t.Fatalf("expected initial counter 3 (nodeCount-2), got %d", c.Counter())
	}
	section := &xs.XS{Width: 10, Theta: 60, Hmax: 0, BankHeight: 1, FpWidth: 60}
	f := gravelBed()
	for i := 0; i < 2; i++ {
		if _, err := c.Step(section, StepInput{Q: 15, BedSlope: 0.002, F: f, Theta0: 60, FpWidth: 60, ReachDx: 100, Sinuosity: 1, OldBankHt: 1}); err != nil {
			t.Fatalf("step %d: unexpected error: %v", i, err)
		}
	}
	if c.Counter() != 5-2 {
		t.Fatalf("expected counter to wrap back to nodeCount-2=3, got %d", c.Counter())
	}
}
