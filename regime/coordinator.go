// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package regime

import (
	"github.com/cpmech/gosl/rnd"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

const (
	splitAspectTol = 50. // maximum allowed channel width/depth aspect before splitting

	sinuosityLow  = 1.0 // sinuosity clamp, lower bound
	sinuosityHigh = 2.6 // sinuosity clamp, upper bound

	sinuosityResetStep = 260 // node visits before sinuosity is allowed to update
)

// Coordinator marches one node at a time through the regime solver: each
// call to Step advances exactly one node so the caller's outer time loop
// controls the overall pacing.
type Coordinator struct {
	NodeCount int
	counter   int // current node index being processed; wraps from 2 to NodeCount-2
	visits    int // total Step calls; the sinuosity update opens after sinuosityResetStep
}

// NewCoordinator returns a Coordinator seeded for reproducible channel
// splitting, starting at the second-to-last node. Seeding goes through
// rnd's package-level generator so a whole run shares one reproducible
// stream.
func NewCoordinator(nodeCount int, seed int) *Coordinator {
	rnd.Init(seed)
	return &Coordinator{
		NodeCount: nodeCount,
		counter:   nodeCount - 2,
	}
}

// StepInput bundles the per-node inputs Step needs beyond the cross-section
// and channel list it mutates in place.
type StepInput struct {
	Q         float64
	BedSlope  float64
	F         *gsd.GSD
	Theta0    float64
	FpWidth   float64
	ReachDx   float64
	Sinuosity float64
	OldBankHt float64
	OldArea   float64 // section.FlowArea[2] before this node's regime update, for the sinuosity deltaArea term
}

// StepOutput reports what changed so the caller can fold it back into the
// profile: the updated sinuosity (unchanged unless the update window has
// opened) and the number of channels after splitting.
type StepOutput struct {
	Sinuosity  float64
	NumChannel int
	NodeIndex  int
}

// Step performs one node's regime assessment: reset to a single channel,
// assess its equilibrium width, then run up to 5 sweeps through the
// channel list splitting any channel whose width/depth aspect exceeds
// splitAspectTol.
func (c *Coordinator) Step(section *xs.XS, in StepInput) (StepOutput, error) {
	hmax := section.Hmax
	bankHeight := section.BankHeight
	section.RegimeReset()

	res, err := FindWidth(hmax, bankHeight, in.Theta0, in.Q*section.Channels[0].QProp, in.BedSlope, in.F)
	if err != nil {
		return StepOutput{}, err
	}
	applyResult(&section.Channels[0], res)
	section.BankHeight = res.BankHeight
	section.Width = res.Width
	section.Theta = res.Theta

	for sweep := 0; sweep < 5; sweep++ {
		for n := 0; n < len(section.Channels) && n < 10; n++ {
			if section.Channels[n].Aspect() > splitAspectTol && len(section.Channels) < 10 {
				splitRatio := rnd.Float64(0, 1)
				if err := section.Split(n, splitRatio); err != nil {
					return StepOutput{}, err
				}
				newIdx := len(section.Channels) - 1
				r2, err := FindWidth(hmax, bankHeight, in.Theta0, in.Q*section.Channels[newIdx].QProp, in.BedSlope, in.F)
				if err != nil {
					return StepOutput{}, err
				}
				applyResult(&section.Channels[newIdx], r2)

				r3, err := FindWidth(hmax, bankHeight, in.Theta0, in.Q*section.Channels[n].QProp, in.BedSlope, in.F)
				if err != nil {
					return StepOutput{}, err
				}
				applyResult(&section.Channels[n], r3)
			}
		}
		section.Geometry()
	}

	sinuosity := in.Sinuosity
	if c.visits > sinuosityResetStep {
		// old area minus new: positive when material was removed, i.e.
		// the channel widened.
		deltaArea := in.OldArea - section.FlowArea[2]
		deltaEta := section.BankHeight - in.OldBankHt
		if in.FpWidth > 0 {
			deltaEta += deltaArea / in.FpWidth
		}
		reachDrop := in.BedSlope * in.ReachDx * in.Sinuosity
		if reachDrop != 0 {
			sinuosity = in.Sinuosity * ((reachDrop + deltaEta) / reachDrop)
		}
		if sinuosity < sinuosityLow {
			sinuosity = sinuosityLow
		}
		if sinuosity > sinuosityHigh {
			sinuosity = sinuosityHigh
		}
	}

	out := StepOutput{Sinuosity: sinuosity, NumChannel: len(section.Channels), NodeIndex: c.counter}

	c.visits++
	c.counter--
	if c.counter < 2 {
		c.counter = c.NodeCount - 2
	}
	return out, nil
}

// Counter returns the index of the node the next Step call will process.
func (c *Coordinator) Counter() int { return c.counter }

// applyResult folds one FindWidth result into a channel, including the
// width/depth aspect ratio the split sweep tests against.
func applyResult(ch *xs.Channel, r Result) {
	ch.Width = r.Width
	ch.Theta = r.Theta
	ch.Depth = r.Depth
	ch.SetAspect(r.Depth)
}
