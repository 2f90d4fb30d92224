// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package out writes per-node simulation snapshots at writeInterval-spaced
// steps as round-trippable JSON.
package out

import (
	"encoding/json"
	"math"
	"os"
	"path"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/jmward-river/grate/profile"
)

// Row is one node's snapshot record: the hydraulic, geometric and
// grain-size state, plus the node coordinate needed to reconstruct the
// long profile on load.
type Row struct {
	T      float64 `json:"t"`
	X      float64 `json:"x"`
	Eta    float64 `json:"eta"`
	Depth  float64 `json:"depth"`
	Wsl    float64 `json:"wsl"` // water-surface level = eta + depth
	Q      float64 `json:"q"`
	V      float64 `json:"v"`
	Fr     float64 `json:"fr"`
	TauBed float64 `json:"taubed"`
	TauBnk float64 `json:"taubank"`
	Width  float64 `json:"width"`
	BankHt float64 `json:"bankht"`
	Theta  float64 `json:"theta"`
	D50    float64 `json:"d50"`
	D84    float64 `json:"d84"`
	D90    float64 `json:"d90"`
	Sigma  float64 `json:"sigma"`
	Qb     float64 `json:"qb"`
}

// Snapshot is one writeInterval-spaced output: the simulation time and one
// Row per node, in upstream-to-downstream order.
type Snapshot struct {
	Time float64 `json:"time"`
	Rows []Row   `json:"rows"`
}

// Capture builds a Snapshot from a Profile's current state and the
// cumulative discharge array the caller's last Step computed.
func Capture(p *profile.Profile, qwCumul []float64) Snapshot {
	snap := Snapshot{Time: p.CTime}
	for i, n := range p.Nodes {
		s := n.Section
		row := Row{
			T: p.CTime, X: n.X, Eta: n.Eta, Depth: s.Depth, Wsl: n.Eta + s.Depth,
			V: s.Velocity, TauBed: s.Tbed, TauBnk: s.Tbank,
			Width: s.Width, BankHt: s.BankHeight, Theta: s.Theta,
			D50: n.Active.Dsg, D84: n.Active.D84, D90: n.Active.D90, Sigma: n.Active.Stdv,
			Qb: s.QbCap,
		}
		if i < len(qwCumul) {
			row.Q = qwCumul[i]
		}
		if s.Depth > 0 {
			row.Fr = row.V / math.Sqrt(g*s.Depth)
		}
		snap.Rows = append(snap.Rows, row)
	}
	return snap
}

const g = 9.81

// Write encodes snap as indented JSON to dirout/fnkey_<step>.json,
// creating the output directory if needed.
func Write(dirout, fnkey string, step int, snap Snapshot) error {
	buf, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return chk.Err("out: could not encode snapshot: %v", err)
	}
	if dirout != "" {
		if err := os.MkdirAll(dirout, 0755); err != nil {
			return chk.Err("out: could not create output directory %q: %v", dirout, err)
		}
	}
	fn := path.Join(dirout, io.Sf("%s_%010d.json", fnkey, step))
	f, err := os.Create(fn)
	if err != nil {
		return chk.Err("out: could not create %q: %v", fn, err)
	}
	defer f.Close()
	if _, err := f.Write(buf); err != nil {
		return chk.Err("out: could not write %q: %v", fn, err)
	}
	io.Pf("out: wrote %s\n", fn)
	return nil
}

// Read decodes a Snapshot previously written by Write.
func Read(filename string) (Snapshot, error) {
	buf, err := os.ReadFile(filename)
	if err != nil {
		return Snapshot{}, chk.Err("out: could not read %q: %v", filename, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		return Snapshot{}, chk.Err("out: could not decode %q: %v", filename, err)
	}
	return snap, nil
}
