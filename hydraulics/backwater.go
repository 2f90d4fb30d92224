// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hydraulics

import (
	"math"

	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

// frCritSq is the Froude-number-squared threshold above which the sweep
// switches from the energy equation to the quasi-normal assumption.
const frCritSq = 0.9 * 0.9

// BackwaterInput bundles the per-node arrays Backwater needs: node
// elevations, discharge, bed slope, sinuosity-adjusted cross-sections and
// grain-size distributions.
type BackwaterInput struct {
	Eta      []float64
	QwCumul  []float64
	BedSlope []float64
	Sections []*xs.XS
	GSDs     []*gsd.GSD
	Dx       float64

	// Rating maps the downstream-boundary discharge to a depth. Nil uses
	// the empirical 0.3*Q^0.3 relation.
	Rating func(q float64) float64
}

// Backwater sweeps a node array from the downstream boundary upstream,
// computing water-surface depth at every interior node. The downstream
// boundary depth comes from the rating curve, the upstream boundary from
// QuasiNormal, and each interior node picks between EnergyConserve and
// QuasiNormal depending on whether the local Froude number exceeds
// frCritSq.
func Backwater(in BackwaterInput) error {
	n := len(in.Eta)
	lastNode := n - 1

	last := in.Sections[lastNode]
	last.Geometry()
	last.Conveyance(in.GSDs[lastNode])

	if err := QuasiNormal(0, in.Sections[0], in.GSDs[0], in.BedSlope[0], in.QwCumul[0]); err != nil {
		return err
	}

	rating := in.Rating
	if rating == nil {
		rating = func(q float64) float64 { return 0.3 * math.Pow(q, 0.3) }
	}
	last.Depth = rating(in.QwCumul[lastNode])

	bQuasiNormal := false
	for node := n - 2; node > 0; node-- {
		section := in.Sections[node]
		section.Depth = 0.3 * math.Pow(in.QwCumul[node], 0.3)
		if in.BedSlope[node] < 0 {
			section.Depth = in.Sections[node+1].Depth - in.BedSlope[node]*in.Dx
		}

		section.Geometry()
		meanVeloc := in.QwCumul[node] / section.FlowArea[2]
		section.Conveyance(in.GSDs[node])
		fr2 := section.Eci * meanVeloc * meanVeloc / (g * section.Depth)

		critDepth, err := section.CriticalDepth(xs.CriticalDepthInput{
			Q:            in.QwCumul[node],
			OverbankFlag: section.Depth > section.BankHeight,
		})
		if err != nil {
			return err
		}

		var convergeErr error
		if fr2 < frCritSq || in.BedSlope[node] <= 0 || node == 0 {
			convergeErr = EnergyConserve(node, section, in.Sections[node+1], in.GSDs[node], in.GSDs[node+1],
				in.QwCumul[node], in.QwCumul[node+1], in.BedSlope[node], in.BedSlope[node+1], in.Dx, critDepth)
		} else {
			if !bQuasiNormal {
				convergeErr = QuasiNormal(node+1, in.Sections[node+1], in.GSDs[node+1], in.BedSlope[node+1], in.QwCumul[node+1])
			}
			if convergeErr == nil {
				convergeErr = QuasiNormal(node, section, in.GSDs[node], in.BedSlope[node], in.QwCumul[node])
			}
			if convergeErr != nil {
				section.Depth = in.Sections[node+1].Depth
			}
			bQuasiNormal = true
		}

		if convergeErr != nil || section.Depth < critDepth {
			section.Depth = critDepth
		}

		if section.Depth > 0 && in.BedSlope[node] > 0 {
			section.ShearPartition(in.GSDs[node], in.BedSlope[node])
		} else {
			section.Ustar = 1e-3
		}

		if section.Depth < 0 {
			return &InvariantError{Routine: "Backwater", Node: node, Detail: "negative depth"}
		}
	}
	return nil
}
