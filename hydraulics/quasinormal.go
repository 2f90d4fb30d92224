// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hydraulics

import (
	"math"

	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

const quasiNormalMaxIter = 900

// QuasiNormal solves for the depth at which normal flow (Keulegan
// resistance balancing gravity) carries discharge q at a single node, by
// damped Newton iteration on the resistance residual. Half steps
// (depth += error/2) rather than full Newton steps keep the iteration
// from overshooting into negative depth near the channel bed.
func QuasiNormal(node int, section *xs.XS, f *gsd.GSD, bedSlope, q float64) error {
	f.Normalize()
	f.Stats()

	residual := func() float64 {
		return q/section.TopW - section.HydRadius*math.Sqrt(g*math.Abs(section.HydRadius)*bedSlope)*section.Omega
	}

	errVal := 1.0
	for iter := 0; errVal > 1e-4; iter++ {
		section.Geometry()
		if section.HydRadius > 0 {
			section.Conveyance(f)
		}

		fp := -2.5 * math.Sqrt(g*math.Abs(section.HydRadius)*bedSlope) *
			(1.5*math.Log(11.0*math.Abs(section.HydRadius)/section.Rough) + 1.0)

		if fp == 0 {
			return &InvariantError{Routine: "QuasiNormal", Node: node, Detail: "zero resistance derivative"}
		}

		errVal = -residual() / fp
		section.Depth += errVal / 2
		errVal = math.Abs(errVal / section.Depth)

		if iter > quasiNormalMaxIter {
			return &ConvergenceError{Routine: "QuasiNormal", Node: node, Iters: iter}
		}
	}

	section.Geometry()
	section.Conveyance(f)
	return nil
}
