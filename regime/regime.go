// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package regime implements the channel-width regime solver and bank
// stability search that together decide how a node's sub-channels widen,
// narrow or split in response to discharge and sediment supply.
package regime

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/num"
	"github.com/jmward-river/grate/gsd"
)

const widthTol = 1e-5

// Result is the outcome of one channel's regime assessment: the
// equilibrium width, the bank angle that balances bank shear against bank
// strength at that width, the flow depth there, and the resulting bank
// height above Hmax.
type Result struct {
	Width      float64
	Theta      float64
	Depth      float64
	BankHeight float64
	Tbed       float64
	Tbank      float64
	QbCap      float64
}

// transportAt returns the bedload transport capacity for a trial channel
// width, used as the objective FindWidth searches against. hmax/bankHeight
// are passed straight through to FindStable's toe-presence check; they
// describe the node's persisted geometry, not the trial width itself.
func transportAt(width, hmax, bankHeight, theta0, q, bedSlope float64, f *gsd.GSD) (float64, error) {
	st, err := FindStable(width, hmax, bankHeight, theta0, q, bedSlope, f)
	return st.QbCap, err
}

// FindWidth searches for the channel width that maximizes bedload
// transport capacity: a bracket phase keeps stepping the trial width by
// 25% in whichever direction the capacity gradient points until the
// gradient flips sign, then a bisection phase tightens the bracket until
// the relative width change is below widthTol. The gradient is a
// num.DerivCen central difference of the capacity. hmax/bankHeight are
// the node's persisted values (the section's Hmax and BankHeight fields
// as of the start of this regime step), used unchanged for every trial
// width's toe-presence check.
func FindWidth(hmax, bankHeight, theta0, q, bedSlope float64, f *gsd.GSD) (Result, error) {
	gradientAt := func(width float64) (float64, error) {
		var outerErr error
		grad := num.DerivCen(func(w float64, args ...interface{}) (res float64) {
			v, err := transportAt(w, hmax, bankHeight, theta0, q, bedSlope, f)
			if err != nil {
				outerErr = err
			}
			res = v
			return
		}, width)
		return grad, outerErr
	}

	p := 4 * math.Sqrt(q)
	grad1, err := gradientAt(p)
	if err != nil {
		return Result{}, err
	}
	p1 := p

	if grad1 > 0 {
		p += 0.25 * p
	} else {
		p -= 0.25 * p
	}
	grad2, err := gradientAt(p)
	if err != nil {
		return Result{}, err
	}
	p2 := p

	for iter := 0; grad1*grad2 > 0; iter++ {
		grad1 = grad2
		p1 = p
		if grad1 > 0 {
			p += 0.25 * p
		} else {
			p -= 0.25 * p
		}
		grad2, err = gradientAt(p)
		if err != nil {
			return Result{}, err
		}
		p2 = p
		if iter > 200 {
			return Result{}, chk.Err("regime: FindWidth failed to bracket a root after %d bracket steps", iter)
		}
	}

	upper := math.Max(p1, p2)
	lower := math.Min(p1, p2)
	p = 0.5 * (upper + lower)
	converg := (upper - lower) / p

	for iter := 0; converg > widthTol; iter++ {
		grad, err := gradientAt(p)
		if err != nil {
			return Result{}, err
		}
		if grad > 0 {
			lower = p
		} else {
			upper = p
		}
		p = 0.5 * (upper + lower)
		converg = (upper - lower) / p
		if iter > 500 {
			return Result{}, chk.Err("regime: FindWidth bisection did not converge")
		}
	}

	st, err := FindStable(p, hmax, bankHeight, theta0, q, bedSlope, f)
	if err != nil {
		return Result{}, err
	}

	// bankHeight = Hmax + sin(theta)*(b2b - w)/2, with b2b the trapezoid's
	// top width at the stable depth.
	thetaRad := st.Theta * math.Pi / 180
	b2b := p + 2*st.Depth/math.Tan(thetaRad)
	bankHeightOut := hmax + math.Sin(thetaRad)*((b2b-p)/2)

	return Result{
		Width:      p,
		Theta:      st.Theta,
		Depth:      st.Depth,
		BankHeight: bankHeightOut,
		Tbed:       st.Tbed,
		Tbank:      st.Tbank,
		QbCap:      st.QbCap,
	}, nil
}
