// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package xs implements cross-section geometry, flow resistance, stress
// partitioning and sediment-transport capacity for a single river node.
package xs

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
)

const (
	g   = 9.81  // gravitational acceleration, m/s^2
	rho = 1000. // water density, kg/m^3
	gs  = 1.65  // submerged sediment specific gravity
)

// XS holds the geometric and hydraulic state of one cross-section. Depth is
// the independent variable most solvers vary; everything else is derived
// from Geometry/Conveyance/ShearPartition being called in that order once
// Depth is set.
type XS struct {
	// static geometry, set at initialization
	Width         float64 // bed width, m
	BankHeight    float64 // bank height above bed, m
	Hmax          float64 // max vertical (unsloped) portion of bank, m
	Theta         float64 // bank angle, degrees from horizontal
	FpWidth       float64 // floodplain width at valley wall, m
	FpSlope       float64 // floodplain cross-slope, dimensionless (rise/run)
	ValleyWallSlp float64 // valley wall slope, dimensionless
	Sinuosity     float64 // channel sinuosity, [1, 2.6]; 0 reads as 1

	Channels []Channel // sub-channels; always at least one (RegimeReset)

	// per-step state
	Depth float64 // current water depth above bed, m

	// derived, valid after Geometry()
	B2b       float64    // bank-to-bank top width of the in-channel trapezoid
	FlowArea  [3]float64 // [0]=channel [1]=floodplain/overbank [2]=total
	FlowPerim [3]float64
	HydRadius float64
	TopW      float64
	Centroid  float64

	// derived, valid after Conveyance()
	Rough float64 // Keulegan roughness height
	Omega float64 // 1/Chezy-like resistance coefficient
	Eci   float64 // energy coefficient
	Kmean float64 // mean conveyance

	// derived, valid after ShearPartition()
	Ustar    float64 // shear velocity
	Velocity float64
	Tbed     float64
	Tbank    float64
	CompD    float64 // competent (largest moveable) grain diameter
	K        float64 // division between keystones and bed material load

	// derived, valid after WilcockCrowe()
	QbCap float64 // bedload transport capacity, m^3/s
}

// HasToe reports whether the bank has a sloped toe below a vertical upper
// portion, i.e. whether BankHeight exceeds the vertical extent Hmax. When
// false the bank is a simple rectangle and several geometry branches
// collapse to their "Case where channel is a rectangle" forms.
func (o *XS) HasToe() bool { return o.BankHeight > o.Hmax }

func (o *XS) thetaRad() float64 { return o.Theta * math.Pi / 180 }

// Geometry recomputes FlowArea, FlowPerim, HydRadius, TopW and Centroid for
// the current Depth across the three depth regimes: in-bank, over-bank and
// wall-to-wall.
func (o *XS) Geometry() {
	thetaRad := o.thetaRad()

	if o.HasToe() {
		o.B2b = o.Width + 2*(o.BankHeight-o.Hmax)/math.Tan(thetaRad)
	} else {
		o.B2b = o.Width
	}

	topFp := o.BankHeight + 1.5 // fpSlope ~ 1:28.5 ~ 2 deg; assume 1.5m floodplain relief

	switch {
	case o.Depth > topFp:
		ovFp := o.Depth - topFp
		ovBank := 1.5
		o.FlowArea[0] = o.B2b*o.BankHeight - math.Pow(o.BankHeight-o.Hmax, 2)/math.Tan(thetaRad) +
			(ovBank+ovFp)*o.B2b
		o.FlowArea[1] = 0.5*(ovBank*o.FpSlope*1.5) + 0.5*(ovBank*1.5) +
			(ovFp * (o.FpWidth - o.B2b)) + (ovFp * ovFp / o.ValleyWallSlp)
		o.TopW = o.FpWidth
	case o.Depth > o.BankHeight:
		ovBank := o.Depth - o.BankHeight
		o.FlowArea[0] = o.B2b*o.BankHeight - math.Pow(o.BankHeight-o.Hmax, 2)/math.Tan(thetaRad) +
			ovBank*(o.B2b+0.5*ovBank)
		o.FlowArea[1] = 0.5 * ovBank * ovBank * o.FpSlope
		o.TopW = o.B2b + ovBank*(o.ValleyWallSlp+o.FpSlope)
	default:
		if o.Depth <= o.BankHeight-o.Hmax {
			o.FlowArea[0] = o.Width*o.Depth + math.Pow(o.Depth, 2)/math.Tan(thetaRad)
			o.TopW = o.Width + 2*o.Depth/math.Tan(thetaRad)
		} else {
			o.FlowArea[0] = o.B2b*o.Depth - math.Pow(o.BankHeight-o.Hmax, 2)/math.Tan(thetaRad)
			o.TopW = o.Width + 2*(o.BankHeight-o.Hmax)/math.Tan(thetaRad)
		}
		o.FlowArea[1] = 0
	}
	o.FlowArea[2] = o.FlowArea[0] + o.FlowArea[1]

	o.geomPerim(thetaRad, topFp)

	o.Centroid = (o.Depth / 3) * ((2*o.Width + o.TopW) / (o.Width + o.TopW))
}

func (o *XS) geomPerim(thetaRad, topFp float64) {
	switch {
	case o.Depth > topFp:
		ovFp := o.Depth - topFp
		ovBank := 1.5
		o.FlowPerim[0] = o.Width + 2*o.Hmax + 2*(o.BankHeight-o.Hmax)/math.Tan(thetaRad)
		o.FlowPerim[1] = ovBank*(o.FpSlope+1.4142) + o.FpWidth -
			(o.FpSlope*ovBank + o.B2b + ovBank + 2*ovFp/o.ValleyWallSlp)
	case o.Depth > o.BankHeight:
		ovBank := o.Depth - o.BankHeight
		o.FlowPerim[0] = o.Width + 2*o.Hmax + 2*(o.BankHeight-o.Hmax)/math.Tan(thetaRad)
		o.FlowPerim[1] = ovBank * (o.FpSlope + 1.4142)
	default:
		if o.Depth <= o.BankHeight-o.Hmax {
			o.FlowPerim[0] = o.Width + 2*o.Depth/math.Sin(thetaRad)
		} else {
			o.FlowPerim[0] = o.Width + 2*(o.BankHeight-o.Hmax)/math.Sin(thetaRad) + 2*(o.Depth-(o.BankHeight-o.Hmax))
		}
		o.FlowPerim[1] = 0
	}
	o.FlowPerim[2] = o.FlowPerim[0] + o.FlowPerim[1]
	o.HydRadius = o.FlowArea[2] / o.FlowPerim[2]
}

// Conveyance updates flow-resistance quantities from the node's grain-size
// distribution F: the Keulegan roughness height, the resistance factor
// Omega and the two-compartment energy coefficient Eci.
func (o *XS) Conveyance(f *gsd.GSD) {
	f.Normalize()
	f.Stats()

	d50 := f.D50Meters()
	o.Rough = 2 * d50 * math.Pow(f.Stdv, 1.28)
	if o.Rough <= 0 {
		o.Rough = 0.01
	}
	o.Omega = 1 / (2.5 * math.Log(11.0*(o.Depth/o.Rough)))

	kCh := o.FlowArea[0] * math.Sqrt(g*o.Depth) / o.Omega
	kFp := 0.0
	ovBank := o.Depth - o.BankHeight

	if ovBank > 0 {
		kFp = o.FlowArea[1] * math.Sqrt(g*ovBank*0.5) / o.Omega
		o.Kmean = kCh + kFp
		o.Eci = (math.Pow(kCh, 3)/math.Pow(o.FlowArea[0], 2) + math.Pow(kFp, 3)/math.Pow(o.FlowArea[1], 2)) /
			(math.Pow(o.Kmean, 3) / math.Pow(o.FlowArea[2], 2))
	} else {
		o.Eci = 1
		o.Kmean = kCh
	}
}

// ShearPartition computes bed/bank shear stress, shear velocity and the
// competent grain diameter, following the Knight partition.
func (o *XS) ShearPartition(f *gsd.GSD, bedSlope float64) {
	thetaRad := o.thetaRad()

	o.Ustar = math.Sqrt(g * o.Depth * bedSlope)
	o.Velocity = 1 / o.Omega * o.Ustar

	sfBank := math.Pow(10.0, -1.4026*math.Log10(o.Width/(o.FlowPerim[2]-o.Width)+1.5)+0.3516)
	totStress := g * rho * o.Depth * bedSlope

	o.Tbed = totStress * (1 - sfBank/100) * (o.B2b/(2.*o.Width) + 0.5)
	o.Tbank = totStress * sfBank * (o.B2b + o.Width) * math.Sin(thetaRad) / (4 * o.Depth)

	o.CompD = o.Tbed / (0.02 * g * rho * gs)
	o.K = o.Tbed / (0.04 * g * rho * gs)
}

// WilcockCrowe estimates bedload transport capacity using the Wilcock and
// Crowe (2003) surface-based relation applied to the active-layer
// distribution f.
func (o *XS) WilcockCrowe(f *gsd.GSD) error {
	if err := f.CheckShape(); err != nil {
		return chk.Err("xs: WilcockCrowe: %v", err)
	}
	specWt := 0.65

	active := f.Clone()
	active.Normalize()
	active.Stats()

	taussrg := 0.021 + 0.015*math.Exp(-20*active.SandPct)
	d50 := active.D50Meters()
	phisgo := ((o.Ustar * o.Ustar) / specWt / g / d50) / taussrg

	fgSum := 1e-10
	for j := 0; j < active.Ngsz(); j++ {
		a0 := 0.5 * (active.Psi[j] + active.Psi[j+1])
		dj := math.Pow(2.0, a0) / 1000
		b := 0.67 / (1 + math.Exp(1.5-(dj/d50)))
		arg := phisgo * math.Pow(dj/d50, -b)

		var wwc float64
		if arg < 1.35 {
			wwc = 0.002 * math.Pow(arg, 7.5)
		} else {
			wwc = 14 * math.Pow(1-0.894/math.Sqrt(arg), 4.5)
		}

		ktot := 0.0
		for k := range active.Pct {
			active.Pct[k][j] *= wwc
			ktot += active.Pct[k][j]
		}
		fgSum += ktot
	}

	if fgSum > 0 {
		o.QbCap = fgSum * math.Pow(o.Ustar, 3) / specWt / g * o.Width
	} else {
		o.QbCap = 0
	}
	return nil
}
