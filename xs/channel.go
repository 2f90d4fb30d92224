// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package xs

import "github.com/cpmech/gosl/chk"

// maxChannels bounds how many sub-channels a cross-section can split into.
const maxChannels = 10

// Channel is one braid/anabranch of a multi-thread cross-section.
type Channel struct {
	Width float64
	Theta float64
	Depth float64 // flow depth from the channel's last regime assessment
	QProp float64 // fraction of total discharge routed through this channel

	aspect float64 // width/depth aspect ratio, updated by SetAspect
}

// Aspect returns the last computed width/depth aspect ratio.
func (c *Channel) Aspect() float64 { return c.aspect }

// SetAspect records the width/depth aspect ratio for split-tolerance checks.
func (c *Channel) SetAspect(depth float64) {
	if depth <= 0 {
		c.aspect = 0
		return
	}
	c.aspect = c.Width / depth
}

// RegimeReset collapses the cross-section back to a single full-width
// channel carrying all discharge, the starting point for each regime
// solver pass.
func (o *XS) RegimeReset() {
	o.Channels = []Channel{{Width: o.Width, Theta: o.Theta, QProp: 1.0}}
}

// MainChannel returns the index of the widest (primary) sub-channel.
func (o *XS) MainChannel() int {
	best := 0
	for i, c := range o.Channels {
		if c.Width > o.Channels[best].Width {
			best = i
		}
	}
	return best
}

// Split appends a new channel carrying splitRatio of channel idx's
// discharge proportion, shrinking idx's proportion by the same amount.
// Errors rather than panics when the slot limit is reached, since regime
// marching is expected to run for many nodes and one node hitting the cap
// shouldn't abort the rest.
func (o *XS) Split(idx int, splitRatio float64) error {
	if len(o.Channels) >= maxChannels {
		return chk.Err("xs: channel slot limit (%d) reached", maxChannels)
	}
	if idx < 0 || idx >= len(o.Channels) {
		return chk.Err("xs: split: channel index %d out of range", idx)
	}
	moved := splitRatio * o.Channels[idx].QProp
	o.Channels[idx].QProp *= 1 - splitRatio
	o.Channels = append(o.Channels, Channel{
		Width: o.Channels[idx].Width,
		Theta: o.Channels[idx].Theta,
		QProp: moved,
	})
	return nil
}
