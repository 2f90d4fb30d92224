// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profile owns the node array, advances simulation time, threads
// tributary inflows into cumulative discharge, and triggers the regime and
// stratigraphy updates around the hydraulic solver core.
package profile

import (
	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

// Node is one streamwise station of the river: its position, bed/bedrock
// elevation, cross-section, active-layer GSD and stratigraphic column.
type Node struct {
	X       float64 // streamwise coordinate, m
	Eta     float64 // bed elevation, m
	Bedrock float64 // elevation floor, m; Bedrock <= Eta always

	Section *xs.XS   // cross-section aggregate
	Active  *gsd.GSD // active-layer grain-size distribution

	// stratigraphic column: Stored[0] is the deepest layer ever laid down,
	// Stored[Ntop] is the current top of the stack. TopLayer is the
	// thickness remaining unconsumed in Stored[Ntop]; the rest of
	// Stored[Ntop] (if any) has already been eaten into the active layer.
	// Mid-column layers are never reordered.
	Stored         []*gsd.GSD
	TopLayer       float64
	Ntop           int
	LayerThickness float64
}

// NewNode allocates a node whose stratigraphic column starts as the given
// stored layers, with the top layer unconsumed.
func NewNode(x, eta, bedrock float64, section *xs.XS, active *gsd.GSD, stored []*gsd.GSD, layerThickness float64) *Node {
	return &Node{
		X: x, Eta: eta, Bedrock: bedrock,
		Section: section, Active: active,
		Stored:         stored,
		TopLayer:       layerThickness,
		Ntop:           len(stored) - 1,
		LayerThickness: layerThickness,
	}
}

// Degrade lowers the bed by thick metres, consuming the stratigraphic
// column top-down: thickness is taken out of TopLayer, and once a layer is
// fully consumed the column steps down to the next one, whose GSD replaces
// Active (a well-mixed exchange, not a blend — the active layer is a single
// representative GSD, not a mixture).
// Degrading below Bedrock returns an error. Once the deepest stored layer
// is used up, TopLayer stays at zero and the rest of thick is not taken
// from any layer.
func (n *Node) Degrade(thick float64) error {
	if thick < 0 {
		return chk.Err("profile: Degrade: negative thickness %v", thick)
	}
	n.Eta -= thick
	if n.Eta < n.Bedrock {
		return chk.Err("profile: node at x=%v degraded below bedrock (eta=%v, bedrock=%v)", n.X, n.Eta, n.Bedrock)
	}
	remaining := thick
	for remaining > 0 {
		if remaining < n.TopLayer {
			n.TopLayer -= remaining
			remaining = 0
			break
		}
		remaining -= n.TopLayer
		if n.Ntop == 0 {
			n.TopLayer = 0
			break
		}
		n.Ntop--
		n.Active = n.Stored[n.Ntop].Clone()
		n.Active.Normalize()
		n.Active.Stats()
		n.TopLayer = n.LayerThickness
	}
	return nil
}

// Aggrade raises the bed by thick metres, depositing gsd f onto the top of
// the stratigraphic column. When the growing top layer exceeds
// LayerThickness a new layer is appended above the current top, carrying
// the overflow thickness.
func (n *Node) Aggrade(thick float64, f *gsd.GSD) {
	if thick <= 0 {
		return
	}
	n.Eta += thick
	n.Active = f
	n.TopLayer += thick
	for n.TopLayer > n.LayerThickness {
		overflow := n.TopLayer - n.LayerThickness
		n.Stored = append(n.Stored, f.Clone())
		n.Ntop++
		n.TopLayer = overflow
	}
}

// CheckInvariants verifies the per-node invariants that don't require the
// rest of the profile: Eta >= Bedrock, and a nonnegative top-layer
// thickness.
func (n *Node) CheckInvariants() error {
	if n.Eta < n.Bedrock {
		return chk.Err("profile: node at x=%v: eta %v < bedrock %v", n.X, n.Eta, n.Bedrock)
	}
	if n.TopLayer < 0 {
		return chk.Err("profile: node at x=%v: negative top-layer thickness %v", n.X, n.TopLayer)
	}
	return nil
}
