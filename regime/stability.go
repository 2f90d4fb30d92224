// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regime

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

const (
	g   = 9.81
	gs  = 1.65 // submerged sediment specific gravity
	phi = 40.0 // friction angle for bank sediment, degrees

	bankCritTauStar = 0.02
	findStableTol   = 0.001
	findStableItmax = 250
)

// channelXS configures an xs.XS as a single trapezoidal channel with no
// separate vertical toe and no floodplain, so its Geometry/Conveyance/
// ShearPartition/WilcockCrowe machinery can be reused unmodified for a
// regime sub-channel: Hmax=0 puts the whole depth in the sloped-trapezoid
// branch, and BankHeight is set far above any depth this solver will try
// so the overbank branches never fire.
func channelXS(width, theta float64) *xs.XS {
	return &xs.XS{
		Width:      width,
		Theta:      theta,
		Hmax:       0,
		BankHeight: 1e6,
		FpWidth:    width + 1,
	}
}

// findDepth solves for the flow depth in a trapezoidal channel of the
// given width/theta carrying discharge q, bisecting the uniform-flow
// residual f(d) = Q/w_top - R*sqrt(g*R*S)*omega. The roughness height ks
// is supplied by the caller rather than derived from a full
// GSD.Conveyance() call: the bank-stability sub-problem resolves its
// normal depth against D84, not the bed's usual D50-based roughness.
func findDepth(width, theta, q, bedSlope, ks float64) (float64, error) {
	o := channelXS(width, theta)
	resid := func(depth float64) float64 {
		o.Depth = depth
		o.Geometry()
		omega := 1 / (2.5 * math.Log(11.0*o.Depth/ks))
		return q/o.TopW - o.HydRadius*math.Sqrt(g*o.HydRadius*bedSlope)*omega
	}
	lo, hi := 1e-4, 1.0
	for i := 0; i < 60 && resid(hi) > 0; i++ {
		hi *= 1.5
	}
	for iter := 0; iter < 200; iter++ {
		mid := 0.5 * (lo + hi)
		if resid(mid) > 0 {
			lo = mid
		} else {
			hi = mid
		}
		if (hi-lo)/hi < 1e-6 {
			o.Depth = mid
			o.Geometry()
			return mid, nil
		}
	}
	return 0, chk.Err("regime: findDepth did not converge for width=%v theta=%v q=%v", width, theta, q)
}

// Stable is the converged state of one bank-stability search: the bank
// angle that balances bank shear against bank strength, the normal depth
// the balance was struck at, and the stress/transport state there.
type Stable struct {
	Theta float64
	Depth float64
	Tbed  float64
	Tbank float64
	QbCap float64
}

// FindStable searches for the bank angle theta that brings the bank shear
// stress into balance with the bank's critical (stable) shear stress:
// bisect theta until Tbank matches a Mohr-Coulomb-style bank critical
// stress, or fall back to a near-vertical rectangular bank when the bank
// never exceeds Hmax. hmax/bankHeight are the node's persisted geometry,
// not values recomputed from this call's trial width.
func FindStable(width, hmax, bankHeight float64, theta0 float64, q, bedSlope float64, f *gsd.GSD) (Stable, error) {
	deltaX := 0.01 * theta0
	upper := theta0 - deltaX
	lower := deltaX
	theta := 0.25 * phi

	d84 := f.D84Meters()
	d90 := f.D90Meters()
	bankCrit := func(th float64) float64 {
		thr := th * math.Pi / 180
		phr := phi * math.Pi / 180
		return g * 1000 * gs * d90 * bankCritTauStar *
			math.Sqrt(1-(math.Pow(math.Sin(thr), 2)/math.Pow(math.Sin(phr), 2)))
	}

	ks := 2 * d84
	depth, err := findDepth(width, theta, q, bedSlope, ks)
	if err != nil {
		return Stable{}, err
	}
	o := channelXS(width, theta)
	o.Depth = depth
	o.Geometry()
	o.Conveyance(f)
	o.ShearPartition(f, bedSlope)

	bc := bankCrit(theta)
	converg := (o.Tbank - bc) / bc

	if bankHeight > hmax {
		for iter := 0; math.Abs(converg) > findStableTol; iter++ {
			if converg > 0 {
				upper = theta
			} else {
				lower = theta
			}
			theta = 0.5 * (upper + lower)

			depth, err = findDepth(width, theta, q, bedSlope, ks)
			if err != nil {
				return Stable{}, err
			}
			o = channelXS(width, theta)
			o.Depth = depth
			o.Geometry()
			o.Conveyance(f)
			o.ShearPartition(f, bedSlope)

			bc = bankCrit(theta)
			converg = (o.Tbank - bc) / bc
			if iter > findStableItmax {
				break
			}
		}
	} else {
		theta = 89
		o = channelXS(width, theta)
		o.Depth = depth
		o.Geometry()
		o.Conveyance(f)
		o.ShearPartition(f, bedSlope)
	}

	if err := o.WilcockCrowe(f); err != nil {
		return Stable{}, err
	}
	return Stable{Theta: theta, Depth: depth, Tbed: o.Tbed, Tbank: o.Tbank, QbCap: o.QbCap}, nil
}
