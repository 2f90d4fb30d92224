// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package gsd implements per-node grain-size distribution (GSD) bookkeeping:
// normalization, grain-size statistics and the substrate-shift transform
// applied to the GSD group library at initialization.
package gsd

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// psi-scale bin edges used throughout GRATE: -3 .. 11, so ngsz = len(Psi)-2
// size bins plus two guard edges.
var defaultPsi = []float64{-3, -2, -1, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11}

// GSD holds a per-node (or per-group) grain-size distribution across
// multiple lithologies.
type GSD struct {
	Psi      []float64   // [ngsz+2] psi-scale bin edges
	Pct      [][]float64 // [nlith][ngsz] mass fraction of lithology in bin
	Abrasion []float64   // [nlith] abrasion coefficient
	Density  []float64   // [nlith] lithology density

	// derived, valid only after Normalize+Stats
	Dsg     float64 // D50 in psi units
	D84     float64
	D90     float64
	Stdv    float64
	SandPct float64 // mass fraction with psi <= 0
}

// New returns a GSD with nlith lithologies and the default 13-bin psi scale,
// all fractions zero.
func New(nlith int) *GSD {
	ngsz := len(defaultPsi) - 2
	o := &GSD{
		Psi:      append([]float64(nil), defaultPsi...),
		Pct:      make([][]float64, nlith),
		Abrasion: make([]float64, nlith),
		Density:  make([]float64, nlith),
	}
	for k := range o.Pct {
		o.Pct[k] = make([]float64, ngsz)
	}
	return o
}

// Ngsz returns the number of grain-size bins.
func (o *GSD) Ngsz() int { return len(o.Psi) - 2 }

// Nlith returns the number of lithologies.
func (o *GSD) Nlith() int { return len(o.Pct) }

// Normalize zeroes negative fractions and rescales so that the total mass
// fraction sums to 1. Safe for an all-zero input: it is left unchanged and
// no error is raised.
func (o *GSD) Normalize() {
	ngsz, nlith := o.Ngsz(), o.Nlith()
	cumtot := 0.0
	ktot := make([]float64, ngsz)
	for j := 0; j < ngsz; j++ {
		for k := 0; k < nlith; k++ {
			if o.Pct[k][j] > 0 {
				ktot[j] += o.Pct[k][j]
			} else {
				o.Pct[k][j] = 0
			}
		}
		cumtot += ktot[j]
	}
	o.SandPct = 0
	if cumtot <= 0 {
		return
	}
	for j := 0; j < ngsz; j++ {
		for k := 0; k < nlith; k++ {
			if o.Pct[k][j] > 0 {
				o.Pct[k][j] /= cumtot
			}
			if o.Psi[j] <= 0 {
				o.SandPct += o.Pct[k][j]
			}
		}
	}
}

// Stats computes Dsg (D50), D84, D90 and Stdv using a moment-like
// convention rather than a true percentile search: dsg is the mass-weighted
// mean bin midpoint, sum_j 0.5*(psi[j]+psi[j+1])*k_j, while D84/D90 apply
// their percentile coefficients to the full edge sum (psi[j]+psi[j+1]),
// i.e. 2*mid, not mid.
func (o *GSD) Stats() {
	ngsz, nlith := o.Ngsz(), o.Nlith()
	ktot := make([]float64, ngsz)
	o.Dsg, o.D84, o.D90 = 0, 0, 0
	for j := 0; j < ngsz; j++ {
		for k := 0; k < nlith; k++ {
			ktot[j] += o.Pct[k][j]
		}
		mid := 0.5 * (o.Psi[j] + o.Psi[j+1])
		o.Dsg += mid * ktot[j]
		o.D84 += 1.68 * mid * ktot[j]
		o.D90 += 1.80 * mid * ktot[j]
	}
	o.Stdv = 0
	for j := 0; j < ngsz; j++ {
		tdev := 0.5*(o.Psi[j]+o.Psi[j+1]) - o.Dsg
		o.Stdv += tdev * tdev * ktot[j]
	}
	if o.Stdv > 0 {
		o.Stdv = math.Sqrt(o.Stdv)
	}
}

// D50Meters returns the D50 grain size in metres, converting from the
// psi-scale (D[mm] = 2^psi, so D[m] = 2^psi / 1000).
func (o *GSD) D50Meters() float64 { return math.Pow(2, o.Dsg) / 1000.0 }

// D84Meters returns D84 in metres.
func (o *GSD) D84Meters() float64 { return math.Pow(2, o.D84) / 1000.0 }

// D90Meters returns D90 in metres.
func (o *GSD) D90Meters() float64 { return math.Pow(2, o.D90) / 1000.0 }

// SetAbrasion overrides every lithology's abrasion coefficient with a
// single value, the hook the randAbr tweak uses at active-layer init.
func (o *GSD) SetAbrasion(v float64) {
	for k := range o.Abrasion {
		o.Abrasion[k] = v
	}
}

// Clone returns a deep copy.
func (o *GSD) Clone() *GSD {
	c := &GSD{
		Psi:      append([]float64(nil), o.Psi...),
		Pct:      make([][]float64, len(o.Pct)),
		Abrasion: append([]float64(nil), o.Abrasion...),
		Density:  append([]float64(nil), o.Density...),
		Dsg:      o.Dsg, D84: o.D84, D90: o.D90, Stdv: o.Stdv, SandPct: o.SandPct,
	}
	for k, row := range o.Pct {
		c.Pct[k] = append([]float64(nil), row...)
	}
	return c
}

// CheckShape returns an error if Pct is ragged or the psi scale is too
// short, rather than panicking deep inside a numerical loop.
func (o *GSD) CheckShape() error {
	ngsz := o.Ngsz()
	if ngsz <= 0 {
		return chk.Err("gsd: psi scale must have at least 3 edges, got %d", len(o.Psi))
	}
	for k, row := range o.Pct {
		if len(row) != ngsz {
			return chk.Err("gsd: lithology %d has %d bins, want %d", k, len(row), ngsz)
		}
	}
	return nil
}
