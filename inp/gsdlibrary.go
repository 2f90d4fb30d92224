// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
)

// GroupSpec is the raw, as-configured description of one GSD library
// group: per-lithology mass-fraction rows (differential, or cumulative
// percent-finer when Config.GSDLibraryIsCumulative is set), plus the
// per-lithology abrasion and density carried alongside them.
type GroupSpec struct {
	Pct      [][]float64 `json:"pct"`      // [nlith][ngsz], raw as configured
	Abrasion []float64   `json:"abrasion"` // [nlith]
	Density  []float64   `json:"density"`  // [nlith]
}

// toDifferential converts a cumulative distribution into per-bin
// differential fractions in place, differencing each bin against its
// finer neighbour from the coarse end down.
func toDifferential(rows [][]float64) {
	for _, row := range rows {
		for j := len(row) - 1; j > 0; j-- {
			row[j] -= row[j-1]
		}
	}
}

// BuildLibrary loads the GSD group library from the config's raw group
// specs, converting cumulative input to differential fractions when
// GSDLibraryIsCumulative is set, applying the substrate-shift kernel, and
// overriding every group's abrasion with RandAbr when it is nonzero (a
// zero value leaves the configured per-group abrasion untouched).
func (c *Config) BuildLibrary(groups []GroupSpec) (*gsd.Library, error) {
	if len(groups) != c.Ngrp {
		return nil, chk.Err("inp: %d group specs given, config wants ngrp=%d", len(groups), c.Ngrp)
	}

	lib := gsd.NewLibrary(c.Ngrp, c.Nlith)
	if want := lib.Groups[0].Ngsz(); c.Ngsz != want {
		return nil, chk.Err("inp: ngsz=%d does not match the fixed %d-bin psi scale", c.Ngsz, want)
	}
	for i, spec := range groups {
		if len(spec.Pct) != c.Nlith {
			return nil, chk.Err("inp: group %d has %d lithology rows, want %d", i, len(spec.Pct), c.Nlith)
		}
		rows := make([][]float64, len(spec.Pct))
		for k, row := range spec.Pct {
			if len(row) != c.Ngsz {
				return nil, chk.Err("inp: group %d lithology %d has %d bins, want %d", i, k, len(row), c.Ngsz)
			}
			rows[k] = append([]float64(nil), row...)
		}
		if c.GSDLibraryIsCumulative {
			toDifferential(rows)
		}

		g := lib.Groups[i]
		g.Pct = rows
		copy(g.Abrasion, spec.Abrasion)
		copy(g.Density, spec.Density)
		g.Normalize()
		g.Stats()

		if c.RandAbr != 0 {
			g.SetAbrasion(c.RandAbr)
		}
	}

	lib.Shift(c.SubstrDial)
	return lib, nil
}

// ActiveLayer returns a fresh GSD for node i's active layer, copied from
// the library group assigned by algrp, normalized and stat'd.
func (c *Config) ActiveLayer(lib *gsd.Library, algrp []int, i int) (*gsd.GSD, error) {
	if i < 0 || i >= len(algrp) {
		return nil, chk.Err("inp: node %d out of range for algrp (len %d)", i, len(algrp))
	}
	src, err := lib.Get(algrp[i])
	if err != nil {
		return nil, chk.Err("inp: node %d active-layer group: %v", i, err)
	}
	f := src.Clone()
	f.Normalize()
	f.Stats()
	return f, nil
}

// StratigraphicColumn builds the nlayer-deep stored-substrate column for
// node i from the library group assigned by stgrp, one clone per layer:
// every layer starts as a copy of the node's assigned group.
func (c *Config) StratigraphicColumn(lib *gsd.Library, stgrp []int, i int) ([]*gsd.GSD, error) {
	if i < 0 || i >= len(stgrp) {
		return nil, chk.Err("inp: node %d out of range for stgrp (len %d)", i, len(stgrp))
	}
	src, err := lib.Get(stgrp[i])
	if err != nil {
		return nil, chk.Err("inp: node %d stratigraphy group: %v", i, err)
	}
	col := make([]*gsd.GSD, c.Nlayer)
	for z := range col {
		col[z] = src.Clone()
	}
	return col, nil
}
