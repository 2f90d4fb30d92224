// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xs

import (
	"math"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
)

func rectangular() *XS {
	return &XS{
		Width:         10,
		BankHeight:    2,
		Hmax:          2, // no sloped toe: rectangle
		Theta:         89,
		FpWidth:       60,
		FpSlope:       0.035,
		ValleyWallSlp: 0.5,
	}
}

func TestGeometryInBank(t *testing.T) {
	chk.PrintTitle("GeometryInBank")
	o := rectangular()
	o.Depth = 1.0
	o.Geometry()
	if o.FlowArea[2] != o.FlowArea[0]+o.FlowArea[1] {
		t.Fatalf("total area mismatch: %v != %v+%v", o.FlowArea[2], o.FlowArea[0], o.FlowArea[1])
	}
	if o.FlowArea[1] != 0 {
		t.Fatalf("expected no overbank area in-bank, got %v", o.FlowArea[1])
	}
	if o.HydRadius <= 0 {
		t.Fatalf("expected positive hydraulic radius, got %v", o.HydRadius)
	}
	if o.TopW < o.Width {
		t.Fatalf("top width %v should be >= bed width %v", o.TopW, o.Width)
	}
}

func TestGeometryOverbank(t *testing.T) {
	chk.PrintTitle("GeometryOverbank")
	o := rectangular()
	o.Depth = 3.0 // above BankHeight=2
	o.Geometry()
	if o.FlowArea[1] <= 0 {
		t.Fatalf("expected positive overbank area, got %v", o.FlowArea[1])
	}
	if o.FlowPerim[2] != o.FlowPerim[0]+o.FlowPerim[1] {
		t.Fatal("perimeter sum mismatch")
	}
}

func TestConveyanceChannelOnly(t *testing.T) {
	chk.PrintTitle("ConveyanceChannelOnly")
	o := rectangular()
	o.Depth = 1.0
	o.Geometry()
	f := gsd.New(1)
	f.Pct[0][6] = 1 // psi bin around 3-4
	f.Normalize()
	o.Conveyance(f)
	if o.Eci != 1 {
		t.Fatalf("expected eci=1 for in-bank flow, got %v", o.Eci)
	}
	if math.IsNaN(o.Omega) || o.Omega == 0 {
		t.Fatalf("invalid omega: %v", o.Omega)
	}
}

func TestWilcockCroweNonNegative(t *testing.T) {
	chk.PrintTitle("WilcockCroweNonNegative")
	o := rectangular()
	o.Depth = 1.0
	o.Geometry()
	f := gsd.New(1)
	f.Pct[0][6] = 1
	f.Normalize()
	o.Conveyance(f)
	o.ShearPartition(f, 0.002)
	if err := o.WilcockCrowe(f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.QbCap < 0 {
		t.Fatalf("expected non-negative transport capacity, got %v", o.QbCap)
	}
}

func TestSplitAndRegimeReset(t *testing.T) {
	chk.PrintTitle("SplitAndRegimeReset")
	o := rectangular()
	o.RegimeReset()
	if len(o.Channels) != 1 || o.Channels[0].QProp != 1 {
		t.Fatalf("expected single full-proportion channel after reset, got %+v", o.Channels)
	}
	if err := o.Split(0, 0.3); err != nil {
		t.Fatalf("unexpected split error: %v", err)
	}
	if len(o.Channels) != 2 {
		t.Fatalf("expected 2 channels after split, got %d", len(o.Channels))
	}
	sum := o.Channels[0].QProp + o.Channels[1].QProp
	if math.Abs(sum-1) > 1e-9 {
		t.Fatalf("QProp should still sum to 1, got %v", sum)
	}
}

func TestHasToe(t *testing.T) {
	chk.PrintTitle("HasToe")
	o := rectangular()
	if o.HasToe() {
		t.Fatal("rectangular section (BankHeight==Hmax) should have no toe")
	}
	o.BankHeight = 3
	if !o.HasToe() {
		t.Fatal("expected toe once BankHeight exceeds Hmax")
	}
}
