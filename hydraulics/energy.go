// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hydraulics

import (
	"math"

	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

const (
	energyConserveItermax = 300
	energyConserveTol     = 5e-4
)

// EnergyConserve solves for the upstream depth at node n that conserves
// energy with the already-known downstream node n+1, by bisection on the
// standard-step energy balance. The initial bracket doubles h2 until the
// energy residual turns positive, then bisects, switching from the
// downstream friction slope to a mean-conveyance friction slope
// (Sf = (qm/km)^2) after the first couple of iterations.
func EnergyConserve(n int, up, down *xs.XS, fUp, fDown *gsd.GSD, qUp, qDown, bedSlopeUp, bedSlopeDown, dx, critDepth float64) error {
	down.Geometry()
	meanVelocDown := qDown / down.FlowArea[2]
	down.Conveyance(fDown)
	vhd := down.Eci * meanVelocDown * meanVelocDown / (2 * g)
	sf2 := qDown * qDown / (down.Kmean * down.Kmean)

	h1 := critDepth // bisection's lower straddle point
	h2 := math.Max(10*h1, (down.Depth+bedSlopeDown*dx)*2)

	ff := -1.0
	for ff <= 0 {
		up.Depth = h2
		up.Geometry()
		meanVelocUp := qUp / up.FlowArea[2]
		if up.Depth > 0 {
			up.Conveyance(fUp)
		}
		sf := qUp / up.Kmean
		vhu := up.Eci * meanVelocUp * meanVelocUp / (2 * g)
		ff = (up.Depth + vhu) - (down.Depth + vhd) + ((bedSlopeDown+bedSlopeUp)/2-sf)*dx
		h2 = 2 * up.Depth
	}
	h2 = up.Depth
	up.Depth = (h1 + h2) / 1.5

	errVal := 1.0
	for iter := 0; errVal > energyConserveTol; iter++ {
		up.Geometry()
		meanVelocUp := qUp / up.FlowArea[2]
		if up.Depth > 0 {
			up.Conveyance(fUp)
		}

		sf := sf2
		vhu := up.Eci * meanVelocUp * meanVelocUp / (2 * g)

		if iter > 1 {
			qm := (qUp + qDown) / 2
			km := (up.Kmean + down.Kmean) / 2
			sfx := qm / km
			sf = sfx * sfx
		}

		ff = (up.Depth + vhu) - (down.Depth + vhd) + (bedSlopeUp-sf)*dx

		if ff > 0 {
			h2 = up.Depth
		} else {
			h1 = up.Depth
		}

		if h2 > critDepth {
			hu2 := (h1 + h2) / 2
			errVal = math.Abs(hu2-up.Depth) / up.Depth
			up.Depth = hu2
		} else {
			up.Depth = critDepth
			break
		}

		if iter > energyConserveItermax {
			return &ConvergenceError{Routine: "EnergyConserve", Node: n, Iters: iter}
		}
		if up.Depth < 0 {
			return &InvariantError{Routine: "EnergyConserve", Node: n, Detail: "negative depth"}
		}
	}
	return nil
}
