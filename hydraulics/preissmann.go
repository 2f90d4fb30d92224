// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hydraulics

import (
	"math"

	"github.com/cpmech/gosl/la"
	"github.com/cpmech/gosl/num"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

const (
	preissmannTol     = 0.001
	preissmannItermax = 1500
	fdFrMin           = 0.8
	fdFrMax           = 0.9
)

// FullyDynamicInput bundles the state the Preissmann sweep advances:
// current depth/discharge at every node, bed elevation, bed slope,
// sections and grain-size distributions, node spacing and the time step.
type FullyDynamicInput struct {
	Eta      []float64
	BedSlope []float64
	Sections []*xs.XS
	GSDs     []*gsd.GSD
	Dx       float64
	Dt       float64
	Theta    float64 // Preissmann weighting coefficient
	Q        []float64
	Y        []float64 // water-surface elevation, eta[i]+depth[i]
}

// pairState holds the cross-section quantities of one (i, i+1) node pair
// at a given (Q, Y) state, the working set both the time-level-n constants
// and the per-iteration residuals are built from.
type pairState struct {
	ari, arip1       float64 // total flow areas
	vi, vip1         float64 // mean velocities Q/A
	eci, ecip1       float64 // energy coefficients
	sf1, sf2         float64 // friction slopes |Q|Q/K^2
	centri, centrip1 float64 // centroid depths
	topwi            float64
	fadj             float64 // Froude-blended convective weight
}

func evalPair(in FullyDynamicInput, q, y []float64, i int) pairState {
	si, sip1 := in.Sections[i], in.Sections[i+1]
	si.Depth = math.Max(y[i]-in.Eta[i], 1e-6)
	si.Geometry()
	si.Conveyance(in.GSDs[i])
	sip1.Depth = math.Max(y[i+1]-in.Eta[i+1], 1e-6)
	sip1.Geometry()
	sip1.Conveyance(in.GSDs[i+1])

	st := pairState{
		ari: si.FlowArea[2], arip1: sip1.FlowArea[2],
		eci: si.Eci, ecip1: sip1.Eci,
		centri: si.Centroid, centrip1: sip1.Centroid,
		topwi: si.TopW,
	}
	st.vi = q[i] / st.ari
	st.vip1 = q[i+1] / st.arip1
	st.sf1 = math.Abs(q[i]) * q[i] / (si.Kmean * si.Kmean)
	st.sf2 = math.Abs(q[i+1]) * q[i+1] / (sip1.Kmean * sip1.Kmean)
	st.fadj = froudeBlend(st.eci * st.vi * st.vi * st.topwi / (g * st.ari))
	return st
}

// FullyDynamic advances one time step of the four-point implicit
// (Preissmann) scheme: two unknowns per node, assembled into a 2N-row
// banded system in delta form. Unknown ordering is [dY0, dQ0, dY1, dQ1,
// ...]; each interior node pair i contributes a continuity row at 2i+1
// and a momentum row at 2i+2, with the four coefficient columns covering
// (dY_i, dQ_i, dY_i+1, dQ_i+1) and column 4 the right-hand side. Row 0
// pins the upstream discharge and row 2N-1 the downstream stage. A node
// whose Froude number crosses the fdFrMin..fdFrMax blend entirely is
// forced to critical depth with Q continuity instead of the momentum
// equation (supercritical guard).
//
// The Jacobian entries are num.DerivCen central differences of the
// continuity/momentum residuals, so the linearization always agrees with
// the residuals it drives to zero.
func FullyDynamic(in FullyDynamicInput) error {
	n := len(in.Eta)
	if n < 3 {
		return &InvariantError{Routine: "FullyDynamic", Node: 0, Detail: "need at least 3 nodes"}
	}

	if err := QuasiNormal(0, in.Sections[0], in.GSDs[0], in.BedSlope[0], in.Q[0]); err != nil {
		return err
	}
	if err := QuasiNormal(n-1, in.Sections[n-1], in.GSDs[n-1], in.BedSlope[n-1], in.Q[n-1]); err != nil {
		return err
	}
	qbc := in.Q[0]
	ybc := in.Eta[n-1] + 2.2

	theta := in.Theta
	if theta <= 0 {
		theta = 0.7
	}
	dtx2 := 2 * in.Dt / in.Dx
	q, y := in.Q, in.Y

	// time-level-n halves of the continuity and momentum equations, frozen
	// before the iteration starts.
	c1 := make([]float64, n-1)
	c2 := make([]float64, n-1)
	for i := 0; i < n-1; i++ {
		st := evalPair(in, q, y, i)
		c1[i] = dtx2*(1-theta)*(q[i+1]-q[i]) - st.ari - st.arip1
		term1 := in.Dt * (1 - theta) * g * (st.arip1*st.sf2 + st.ari*st.sf1)
		term2 := -(q[i] + q[i+1])
		term3 := dtx2 * (1 - theta) *
			(st.ecip1*q[i+1]*st.vip1 - st.eci*q[i]*st.vi + g*st.fadj*(st.centrip1-st.centri))
		c2[i] = term1 + term2 + term3
	}

	contResid := func(qq, yy []float64, i int) float64 {
		st := evalPair(in, qq, yy, i)
		return st.ari + st.arip1 + dtx2*theta*(qq[i+1]-qq[i]) + c1[i]
	}
	momResid := func(qq, yy []float64, i int) float64 {
		st := evalPair(in, qq, yy, i)
		term1 := dtx2 * theta *
			(st.ecip1*qq[i+1]*st.vip1 - st.eci*qq[i]*st.vi + g*st.fadj*(st.centrip1-st.centri))
		term2 := theta * in.Dt * g * (st.sf2*st.arip1 + st.sf1*st.ari)
		return qq[i] + qq[i+1] + term1 + term2 + c2[i]
	}

	for iter := 0; iter < preissmannItermax; iter++ {
		eqn := la.MatAlloc(2*n, 5)

		eqn[0][1] = 1.0
		eqn[0][4] = -(q[0] - qbc)
		eqn[2*n-1][2] = 1.0
		eqn[2*n-1][4] = -(y[n-1] - ybc)

		for i := 0; i < n-1; i++ {
			k := 2*i + 1
			st := evalPair(in, q, y, i)
			fr2t := st.eci * st.vi * st.vi * st.topwi / (g * st.ari)

			if fr2t >= fdFrMax*fdFrMax {
				// Supercritical guard: force critical depth, keep Q continuous.
				crit, err := in.Sections[i].CriticalDepth(xs.CriticalDepthInput{
					Q:            q[i],
					OverbankFlag: in.Sections[i].Depth > in.Sections[i].BankHeight,
				})
				if err != nil {
					return err
				}
				eqn[k][1] = -1.0
				eqn[k][3] = 1.0
				eqn[k][4] = q[i] - q[i+1]
				eqn[k+1][0] = -1.0
				eqn[k+1][4] = y[i] - (in.Eta[i] + crit)
				continue
			}

			for col := 0; col < 4; col++ {
				qPert := append([]float64(nil), q...)
				yPert := append([]float64(nil), y...)
				var base float64
				set := func(x float64) {
					switch col {
					case 0:
						yPert[i] = x
					case 1:
						qPert[i] = x
					case 2:
						yPert[i+1] = x
					case 3:
						qPert[i+1] = x
					}
				}
				switch col {
				case 0:
					base = y[i]
				case 1:
					base = q[i]
				case 2:
					base = y[i+1]
				case 3:
					base = q[i+1]
				}
				eqn[k][col] = num.DerivCen(func(x float64, args ...interface{}) (res float64) {
					set(x)
					return contResid(qPert, yPert, i)
				}, base)
				eqn[k+1][col] = num.DerivCen(func(x float64, args ...interface{}) (res float64) {
					set(x)
					return momResid(qPert, yPert, i)
				}, base)
			}
			eqn[k][4] = -contResid(q, y, i)
			eqn[k+1][4] = -momResid(q, y, i)
		}

		df, err := doubleSweep(n, eqn)
		if err != nil {
			return err
		}

		sum := 0.0
		for i := 0; i < n; i++ {
			y[i] += df[2*i]
			q[i] += df[2*i+1]
			in.Sections[i].Depth = y[i] - in.Eta[i]
			if in.Sections[i].Depth < 0 {
				return &InvariantError{Routine: "FullyDynamic", Node: i, Detail: "negative depth"}
			}
			sum += math.Abs(df[2*i]) + math.Abs(df[2*i+1])
		}
		if sum < preissmannTol {
			return nil
		}
	}

	return &ConvergenceError{Routine: "FullyDynamic", Node: -1, Iters: preissmannItermax}
}

// froudeBlend linearly tapers the convective momentum term's weight from 1
// (fully subcritical, fr2 below fdFrMin^2) to 0 (at/above fdFrMax^2); a
// linear taper rather than a hard switch avoids a discontinuity in the
// Jacobian right at critical flow.
func froudeBlend(fr2 float64) float64 {
	lo, hi := fdFrMin*fdFrMin, fdFrMax*fdFrMax
	switch {
	case fr2 <= lo:
		return 1
	case fr2 >= hi:
		return 0
	default:
		return (hi - fr2) / (hi - lo)
	}
}

// doubleSweep solves the banded 2N-row system assembled into eqn by
// forward elimination and back substitution, two rows per node. Row 0
// must carry the upstream boundary (coefficient in column 1), row 2N-1
// the downstream boundary (column 2); interior rows come in (continuity,
// momentum) pairs at 2i+1 and 2i+2. A singular pivot is fatal.
func doubleSweep(n int, eqn [][]float64) ([]float64, error) {
	rows := 2 * n
	c := make([]float64, rows+2)
	x := make([]float64, rows+2)

	c[0] = 0.0
	c[1] = eqn[0][4]

	for inode := 0; inode < n-1; inode++ {
		j := 2*inode + 1
		k := j + 1
		t1 := eqn[j][0] + eqn[j][1]*c[k-2]
		t2 := eqn[j+1][0] + eqn[j+1][1]*c[k-2]
		t3 := eqn[j+1][4] - eqn[j+1][1]*c[k-1]
		t4 := eqn[j][4] - eqn[j][1]*c[k-1]
		d := t1*eqn[j+1][3] - t2*eqn[j][3]

		if math.Abs(d) <= 1e-8 {
			return nil, &InvariantError{Routine: "FullyDynamic", Node: inode, Detail: "singular pivot in double sweep"}
		}

		c[k] = (-t1*eqn[j+1][2] + t2*eqn[j][2]) / d
		c[k+1] = (t1*t3 - t2*t4) / d
	}

	m := 2*n - 2
	x[m] = eqn[m+1][4]
	x[m+1] = c[m]*x[m] + c[m+1]

	for inode := n - 1; inode > 0; inode-- {
		j := 2*inode - 1
		k := j - 1
		t4 := eqn[j][4] - eqn[j][1]*c[k+1]
		d := eqn[j][0] + eqn[j][1]*c[k]

		if math.Abs(d) <= 1e-8 {
			return nil, &InvariantError{Routine: "FullyDynamic", Node: inode, Detail: "singular pivot in double sweep"}
		}

		x[k] = (t4 - (eqn[j][2]*x[k+2] + eqn[j][3]*x[k+3])) / d
		x[k+1] = c[k]*x[k] + c[k+1]
	}

	return x[:rows], nil
}
