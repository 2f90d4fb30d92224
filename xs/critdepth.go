// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xs

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// 16-point scan table used by the compound-channel branch of CriticalDepth
// to test whether three critical depths (rather than one) are possible.
// The clustering near 1 is load-bearing: small changes shift which branch
// fires.
var yrTest = []float64{1.0001, 1.0005, 1.001, 1.005, 1.01, 1.02, 1.03, 1.04,
	1.05, 1.06, 1.07, 1.1, 1.2, 1.5, 2, 3}

// CriticalDepthInput carries the quantities CriticalDepth needs beyond the
// XS itself: total cumulative discharge at the node and whether the
// channel is currently overbank.
type CriticalDepthInput struct {
	Q           float64 // cumulative discharge at this node, m^3/s
	OverbankFlag bool   // true when the current depth exceeds bank height
}

// CriticalDepth computes the critical depth for o, following the
// three-branch compound-channel scheme: (1) a single critical depth above
// bank height, solved by bisection on a dimensionless depth ratio; (2) a
// single critical depth for in-bank flow, solved by direct bisection on
// absolute depth; (3) a compound channel where up to three critical depths
// are mathematically possible, disambiguated via a 16-point scan.
//
// In the in-bank branch o.Depth is used as a scratch variable and mutated by
// repeated Geometry() calls; on a successful return it and the Geometry
// fields are left at the returned critical depth. The overbank branches
// only read o.Depth and the Geometry fields and leave them unchanged.
func (o *XS) CriticalDepth(in CriticalDepthInput) (float64, error) {
	const itmax = 50
	const tol = 0.001

	mainWidth := o.Width
	if len(o.Channels) > 0 {
		mainWidth = o.Channels[o.MainChannel()].Width
	}

	bf := (o.FpWidth - mainWidth) / o.BankHeight
	nr := 0.05
	br := 1.0
	yr := 1.0
	var m, k float64

	if in.OverbankFlag {
		yr = o.Depth / o.BankHeight
		br = (o.FpWidth - mainWidth) / mainWidth
		m = 1 / (1 + 2*nr*math.Pow(o.FlowArea[1]/o.FlowArea[0], 1.6667)*
			math.Pow(o.FlowPerim[0]/o.FlowPerim[1], 0.6667))
		k = g * math.Pow(mainWidth, 2) * math.Pow(o.BankHeight, 3) / math.Pow(in.Q, 2)
	} else {
		m = 1
		k = g * math.Pow(mainWidth, 2) / math.Pow(in.Q, 2)
	}

	cFunc := func(yr float64) float64 {
		return 1/(yr+2*br*(yr-1))*(math.Pow(m/yr, 2)+math.Pow((1-m)/(yr-1), 2)*(0.5*br)) +
			2*m*(1-m)/3*(yr+2*br*(yr-1))*(5/(yr*(yr-1))-2/(bf+yr-1))*
				((m/yr)-((1-m)/(yr-1))*0.5*br)
	}
	c := cFunc(yr)

	// fixed-point form of the compound-channel energy derivative; the same
	// expression serves both the single-supra-floodplain branch and the
	// y_c3 search of the triple-root branch.
	yStarFunc := func(yr float64) float64 {
		return (2*br)/(2*br+1) + 1/c*(2*br+1)*
			(math.Pow(m/yr, 2)+math.Pow((1-m)/(yr-1), 2)*(0.5*br)) +
			(2*m*(1-m))/3*c*(2*br+1)*
				(5/yr*(yr-1)-2/(bf+yr-1))*(m/yr-(1-m)/(yr-1)*0.5*br)
	}

	if k < 1 && in.OverbankFlag {
		r, err := bisectConverge(1.1, 1.0001, 5, tol, 50, func(y float64) float64 { return yStarFunc(y) - y })
		if err != nil {
			return 0, err
		}
		return r * o.BankHeight, nil
	}

	if !in.OverbankFlag {
		ymax := o.BankHeight + 1
		ymin := 0.15
		ff := 1.0
		iter := 0
		for ff > 0 {
			if iter > 0 {
				ymax *= 1.5
			}
			o.Depth = ymax
			o.Geometry()
			ff = in.Q/o.FlowArea[2]/math.Sqrt(g*o.HydRadius) - 1.0
			iter++
			if iter > itmax {
				return 0, chk.Err("xs: unable to initialize max depth for critical depth search")
			}
		}

		y1 := (ymin + ymax) / 2
		for iter := 0; iter < itmax; iter++ {
			o.Depth = y1
			o.Geometry()
			ff = in.Q/o.FlowArea[2]/math.Sqrt(g*o.HydRadius) - 1.0
			if ff < 0 {
				ymax = y1
			} else {
				ymin = y1
			}
			y2 := (ymin + ymax) / 2
			dy := y2 - y1
			if math.Abs(dy/y2) < tol {
				o.Depth = y2
				return y2, nil
			}
			y1 = y2
		}
		return 0, chk.Err("xs: critical depth did not converge")
	}

	// compound channel, overbank: scan for a possible triple root.
	cResult := make([]float64, len(yrTest))
	for i := 0; i < len(yrTest); i++ {
		cResult[i] = cFunc(yrTest[i])
	}
	cmax := 0.0
	for _, v := range cResult {
		if v > cmax {
			cmax = v
		}
	}

	yC1 := math.Pow(math.Pow(in.Q, 2)/(g*math.Pow(mainWidth, 2)), 0.334)
	if k > cmax {
		return yC1, nil
	}

	r, err := bisectConverge(1.1, 1.0001, 5, tol, 50, func(y float64) float64 { return yStarFunc(y) - y })
	if err != nil {
		return 0, err
	}
	yC3 := r * o.BankHeight

	yr2 := 1.001
	cc := 1.5
	for cc < k {
		cc = cFunc(yr2)
		yr2 *= 1.01
	}
	yC2 := yr2 * o.BankHeight

	switch {
	case o.Depth > o.BankHeight:
		return yC3, nil
	case o.Depth == o.BankHeight:
		return yC2, nil
	default:
		return yC1, nil
	}
}

// bisectConverge shrinks a bracket toward a sign change: at each step it
// moves whichever bound is on the wrong side of zero for residual(mid),
// converging on the point where residual flips sign.
func bisectConverge(guess, lower, upper, tol float64, itmax int, residual func(float64) float64) (float64, error) {
	yr := guess
	converg := 1.0
	for iter := 0; converg > tol && iter < itmax; iter++ {
		r := residual(yr)
		if r > 0 {
			upper = yr
		} else {
			lower = yr
		}
		next := 0.5 * (upper + lower)
		converg = math.Abs(next - yr)
		yr = next
	}
	return yr, nil
}
