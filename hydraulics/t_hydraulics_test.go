// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hydraulics

import (
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

func rectChannel() *xs.XS {
	return &xs.XS{Width: 10, BankHeight: 3, Hmax: 3, Theta: 89, FpWidth: 60, FpSlope: 0.035, ValleyWallSlp: 0.5}
}

func gravelGSD() *gsd.GSD {
	f := gsd.New(1)
	f.Pct[0][7] = 1
	f.Normalize()
	f.Stats()
	return f
}

func TestBedSlopeBoundaryNodes(t *testing.T) {
	chk.PrintTitle("BedSlopeBoundaryNodes")
	eta := []float64{10, 9, 8, 7, 6}
	sinu := []float64{1, 1, 1, 1, 1}
	slope := BedSlope(eta, 100, sinu, 0.3)
	chk.Float64(t, "slope[0]", 1e-9, slope[0], 0.01)
	chk.Float64(t, "slope[4]", 1e-9, slope[4], 0.01)
}

func TestQuasiNormalConverges(t *testing.T) {
	chk.PrintTitle("QuasiNormalConverges")
	o := rectChannel()
	o.Depth = 1.0
	f := gravelGSD()
	err := QuasiNormal(0, o, f, 0.002, 15)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if o.Depth <= 0 {
		t.Fatalf("expected positive converged depth, got %v", o.Depth)
	}
}

func TestSolverForUnknownName(t *testing.T) {
	chk.PrintTitle("SolverForUnknownName")
	if _, err := SolverFor("nonexistent", SolverConfig{}); err == nil {
		t.Fatal("expected error for unknown solver name")
	}
	if _, err := SolverFor("backwater", SolverConfig{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestBackwaterNoNegativeDepth(t *testing.T) {
	chk.PrintTitle("BackwaterNoNegativeDepth")
	n := 6
	eta := make([]float64, n)
	qw := make([]float64, n)
	sections := make([]*xs.XS, n)
	gsds := make([]*gsd.GSD, n)
	for i := 0; i < n; i++ {
		eta[i] = float64(n-i) * 0.5
		qw[i] = 20
		sections[i] = rectChannel()
		sections[i].Depth = 1.0
		gsds[i] = gravelGSD()
	}
	sinu := make([]float64, n)
	for i := range sinu {
		sinu[i] = 1
	}
	slope := BedSlope(eta, 100, sinu, 0.3)

	err := Backwater(BackwaterInput{Eta: eta, QwCumul: qw, BedSlope: slope, Sections: sections, GSDs: gsds, Dx: 100})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, s := range sections {
		if s.Depth < 0 {
			t.Fatalf("node %d: negative depth %v", i, s.Depth)
		}
	}
}
