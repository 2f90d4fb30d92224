// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package inp implements the initialization contract read from a JSON
// configuration file: node/stratigraphy setup, the hydrograph sources and
// the grain-size-distribution group library, including the substrate
// shift applied to it at load time.
package inp

import (
	"encoding/json"
	goio "io"
	"os"

	"github.com/cpmech/gosl/chk"
)

// Config holds the static setup of a run: node count, layer geometry and
// the stratigraphy/GSD-group assignment.
type Config struct {
	Desc   string `json:"desc"`   // description of the run
	DirOut string `json:"dirout"` // output directory

	Nnodes      int     `json:"nnodes"`      // number of nodes
	Dx          float64 `json:"dx"`          // node spacing, m
	Nlayer      int     `json:"nlayer"`      // number of stratigraphic layers
	LayerThick  float64 `json:"layerthick"`  // layer thickness, m
	DefaultLa   float64 `json:"defaultla"`   // default active-layer thickness, m
	Poro        float64 `json:"poro"`        // bed porosity
	Ngsz        int     `json:"ngsz"`        // number of grain-size bins
	Nlith       int     `json:"nlith"`       // number of lithologies
	Ngrp        int     `json:"ngrp"`        // number of GSD groups in the library
	SubstrDial  float64 `json:"substrdial"`  // substrate-shift dial, [-2, 2]
	RandAbr     float64 `json:"randabr"`     // per-lithology abrasion override; 0 disables
	RandomSeed  int     `json:"randomseed"`  // seed for regime-split and stochastic sampling
	HmaxTweak   float64 `json:"hmaxtweak"`   // multiplier on every node's Hmax; 0 reads as 1

	LongProfile  []float64 `json:"longprofile"`  // initial bed elevation per node
	Stratigraphy []int     `json:"stratigraphy"` // GSD group index per node
	ActiveGrp    []int     `json:"activegrp"`    // active-layer GSD group index per node (algrp)
	StoredGrp    []int     `json:"storedgrp"`    // stratigraphic-column GSD group index per node (stgrp)

	// per-node cross-section geometry, the remainder of each long-profile
	// entry (x, bedrock, width, sinuosity, fpWidth_factor, Hmax, theta);
	// each slice is either empty (every node gets the Default* scalar
	// below) or exactly Nnodes long.
	Bedrock       []float64 `json:"bedrock"`
	Width         []float64 `json:"width"`
	Sinuosity     []float64 `json:"sinuosity"`
	FpWidthFactor []float64 `json:"fpwidthfactor"` // floodplain width as a multiple of channel width
	Hmax          []float64 `json:"hmax"`
	Theta         []float64 `json:"theta"`

	DefaultBedrockDrop float64 `json:"defaultbedrockdrop"` // below LongProfile[i] when Bedrock is empty
	DefaultWidth       float64 `json:"defaultwidth"`
	DefaultSinuosity   float64 `json:"defaultsinuosity"`
	DefaultFpWidthFac  float64 `json:"defaultfpwidthfactor"`
	DefaultHmax        float64 `json:"defaulthmax"`
	DefaultTheta       float64 `json:"defaulttheta"`

	GSDLibraryIsCumulative bool `json:"gsdlibraryiscumulative"` // groups are cumulative percent-finer curves

	Groups     []GroupSpec `json:"groups"`     // GSD library, ngrp entries
	Hydrograph Hydrograph  `json:"hydrograph"` // discharge time series sources

	Solver SolverConfig `json:"solver"`
}

// NodeGeom is the fully-resolved cross-section geometry for one node:
// whichever of Config's per-node slices are populated, falling back to
// the Default* scalar when the slice is empty.
type NodeGeom struct {
	X             float64
	Eta           float64
	Bedrock       float64
	Width         float64
	Sinuosity     float64
	FpWidthFactor float64
	Hmax          float64
	Theta         float64
}

// NodeGeom resolves node i's geometry, erroring if i is out of range.
func (c *Config) NodeGeom(i int) (NodeGeom, error) {
	if i < 0 || i >= c.Nnodes {
		return NodeGeom{}, chk.Err("inp: node %d out of range [0,%d)", i, c.Nnodes)
	}
	eta := 0.0
	if len(c.LongProfile) > i {
		eta = c.LongProfile[i]
	}
	g := NodeGeom{
		X:             float64(i) * c.Dx,
		Eta:           eta,
		Bedrock:       pick(c.Bedrock, i, eta-c.defaultOr(c.DefaultBedrockDrop, 5)),
		Width:         pick(c.Width, i, c.defaultOr(c.DefaultWidth, 10)),
		Sinuosity:     pick(c.Sinuosity, i, c.defaultOr(c.DefaultSinuosity, 1)),
		FpWidthFactor: pick(c.FpWidthFactor, i, c.defaultOr(c.DefaultFpWidthFac, 10)),
		Hmax:          pick(c.Hmax, i, c.defaultOr(c.DefaultHmax, 1)),
		Theta:         pick(c.Theta, i, c.defaultOr(c.DefaultTheta, 45)),
	}
	return g, nil
}

// pick returns slice[i] if slice is long enough, otherwise def.
func pick(slice []float64, i int, def float64) float64 {
	if i < len(slice) {
		return slice[i]
	}
	return def
}

// defaultOr returns v unless it is exactly zero, in which case it returns
// fallback; used so a zero-value Config field reads as "unset" rather than
// as a literal zero width/sinuosity/theta.
func (c *Config) defaultOr(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}

// SolverConfig holds the run's configurable knobs: the Preissmann
// weighting coefficient, the upstream bed-slope weighting, time step,
// write interval and regime-solver toggle, plus the stochastic
// multipliers.
type SolverConfig struct {
	Name          string  `json:"name"`          // "backwater" or "dynamic"
	PreissTheta   float64 `json:"preisstheta"`   // Preissmann weighting coefficient
	HydUpw        float64 `json:"hydupw"`        // bed-slope upstream weighting
	Dt            float64 `json:"dt"`            // time step, s
	WriteInterval int     `json:"writeinterval"` // steps between snapshots
	RegimeFlag    bool    `json:"regimeflag"`    // run the regime solver each step

	QwTweak float64 `json:"qwtweak"` // uniform multiplier on every source's discharge; 0 reads as 1
	QsTweak float64 `json:"qstweak"` // uniform multiplier on transport capacity; 0 reads as 1
	FeedQw  float64 `json:"feedqw"`  // multiplier applied only to the feed (most-upstream) source
	FeedQs  float64 `json:"feedqs"`  // multiplier on the sediment supplied by the feed node
}

// Load reads and validates a Config from a JSON file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, chk.Err("inp: could not open config file %q: %v", path, err)
	}
	defer f.Close()
	return decode(f)
}

func decode(r goio.Reader) (*Config, error) {
	var cfg Config
	dec := json.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		return nil, chk.Err("inp: could not parse config: %v", err)
	}
	if err := cfg.check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) check() error {
	if c.Nnodes < 3 {
		return chk.Err("inp: nnodes must be >= 3, got %d", c.Nnodes)
	}
	if c.Dx <= 0 {
		return chk.Err("inp: dx must be positive, got %v", c.Dx)
	}
	if len(c.LongProfile) != 0 && len(c.LongProfile) != c.Nnodes {
		return chk.Err("inp: longprofile has %d entries, want %d", len(c.LongProfile), c.Nnodes)
	}
	if len(c.Stratigraphy) != 0 && len(c.Stratigraphy) != c.Nnodes {
		return chk.Err("inp: stratigraphy has %d entries, want %d", len(c.Stratigraphy), c.Nnodes)
	}
	if len(c.ActiveGrp) != 0 && len(c.ActiveGrp) != c.Nnodes {
		return chk.Err("inp: activegrp has %d entries, want %d", len(c.ActiveGrp), c.Nnodes)
	}
	if len(c.StoredGrp) != 0 && len(c.StoredGrp) != c.Nnodes {
		return chk.Err("inp: storedgrp has %d entries, want %d", len(c.StoredGrp), c.Nnodes)
	}
	return nil
}
