// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package gsd

import "github.com/cpmech/gosl/chk"

// Library holds the named GSD groups read at init time (one group per
// stratigraphic/active-layer assignment), indexed 0..ngrp-1.
type Library struct {
	Groups []*GSD
}

// NewLibrary allocates ngrp empty groups with nlith lithologies each.
func NewLibrary(ngrp, nlith int) *Library {
	l := &Library{Groups: make([]*GSD, ngrp)}
	for i := range l.Groups {
		l.Groups[i] = New(nlith)
	}
	return l
}

// Get returns group index grp, erroring rather than panicking on an
// out-of-range config-supplied index.
func (l *Library) Get(grp int) (*GSD, error) {
	if grp < 0 || grp >= len(l.Groups) {
		return nil, chk.Err("gsd: group index %d out of range [0,%d)", grp, len(l.Groups))
	}
	return l.Groups[grp], nil
}

// SubstrateKernel builds the 5-wide interpolation kernel N[0..4] from a
// scalar dial in [-2, 2]. Positive dial shifts the distribution coarser;
// negative shifts finer. The kernel always sums to 1.
func SubstrateKernel(dial float64) (n [5]float64) {
	switch {
	case dial == 0:
		n[2] = 1
	case dial > 0 && dial < 1:
		n[2] = 1 - dial
		n[3] = dial
	case dial >= 1 && dial < 2:
		n[3] = 1 - (dial - 1)
		n[4] = dial - 1
	case dial >= 2:
		n[4] = 1
	case dial < 0 && dial > -1:
		d := -dial
		n[1] = d
		n[2] = 1 - d
	case dial <= -1 && dial > -2:
		d := -dial
		n[0] = d - 1
		n[1] = 1 - (d - 1)
	case dial <= -2:
		n[0] = 1
	}
	return
}

// Shift applies the 5-wide kernel N to every group in the library in
// place, convolving each group's per-bin fractions across its four
// (or fewer, near the scale's edges) neighbours and re-normalizing.
// It is a one-shot, init-time transform: call it once after loading raw
// group percentages, before any Normalize/Stats calls that feed the
// hydraulic or regime solvers.
func (l *Library) Shift(dial float64) {
	if dial == 0 {
		return
	}
	n := SubstrateKernel(dial)
	for _, g := range l.Groups {
		ngsz, nlith := g.Ngsz(), g.Nlith()
		shifted := New(nlith)
		shifted.Psi = g.Psi
		for gs := 0; gs < ngsz; gs++ {
			for lith := 0; lith < nlith; lith++ {
				shifted.Pct[lith][gs] = shiftedFraction(g, lith, gs, ngsz, n)
			}
		}
		g.Pct = shifted.Pct
		g.Normalize()
		g.Stats()
	}
}

// shiftedFraction computes one (lithology, bin) output of the convolution,
// clamping the neighbour window to the valid bin range at the scale's
// edges. N[3], N[4] draw mass up from the finer bins gs-1, gs-2 (coarsening)
// and N[0], N[1] draw it down from the coarser bins gs+2, gs+1 (fining).
func shiftedFraction(g *GSD, lith, gs, ngsz int, n [5]float64) float64 {
	get := func(idx int) float64 {
		if idx < 0 || idx >= ngsz {
			return 0
		}
		return g.Pct[lith][idx]
	}
	return n[0]*get(gs+2) + n[1]*get(gs+1) + n[2]*get(gs) + n[3]*get(gs-1) + n[4]*get(gs-2)
}
