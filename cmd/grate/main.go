// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command grate runs the GRATE one-dimensional morphodynamic river
// simulator from a JSON configuration file.
package main

import (
	"flag"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/jmward-river/grate/inp"
	"github.com/jmward-river/grate/out"
	"github.com/jmward-river/grate/profile"
	"github.com/jmward-river/grate/xs"
)

func main() {
	verbose := true

	defer func() {
		if err := recover(); err != nil {
			chk.Verbose = true
			io.PfRed("ERROR: %v\n", err)
		}
	}()

	var cfgPath string
	var nsteps int
	flag.StringVar(&cfgPath, "config", "", "path to the run's JSON configuration file")
	flag.IntVar(&nsteps, "steps", 1, "number of time steps to advance")
	flag.BoolVar(&verbose, "verbose", true, "print progress messages")
	flag.Parse()

	if cfgPath == "" {
		chk.Panic("grate: -config is required. Ex.: grate -config reach.json -steps 100")
	}

	io.PfWhite("\nGRATE -- 1-D river morphodynamics\n\n")

	p, dirout, fnkey, err := build(cfgPath)
	if err != nil {
		chk.Panic("%v", err)
	}

	for i := 0; i < nsteps; i++ {
		if err := p.Step(); err != nil {
			chk.Panic("grate: step %d failed: %v", i, err)
		}
		if verbose {
			p.LogProgress()
		}
		if p.Cfg.WriteInterval > 0 && p.StepCount()%p.Cfg.WriteInterval == 0 {
			snap := out.Capture(p, p.LastQw())
			if err := out.Write(dirout, fnkey, p.StepCount(), snap); err != nil {
				chk.Panic("%v", err)
			}
		}
	}
}

// build reads the JSON configuration and assembles a Profile ready for
// the caller's time loop.
func build(cfgPath string) (*profile.Profile, string, string, error) {
	cfg, err := inp.Load(cfgPath)
	if err != nil {
		return nil, "", "", err
	}

	lib, err := cfg.BuildLibrary(cfg.Groups)
	if err != nil {
		return nil, "", "", err
	}

	nodes := make([]*profile.Node, cfg.Nnodes)
	for i := range nodes {
		geom, err := cfg.NodeGeom(i)
		if err != nil {
			return nil, "", "", err
		}
		active, err := cfg.ActiveLayer(lib, fillOrZero(cfg.ActiveGrp, cfg.Nnodes), i)
		if err != nil {
			return nil, "", "", err
		}
		if cfg.RandAbr != 0 {
			active.SetAbrasion(cfg.RandAbr)
		}
		stored, err := cfg.StratigraphicColumn(lib, fillOrZero(cfg.StoredGrp, cfg.Nnodes), i)
		if err != nil {
			return nil, "", "", err
		}

		hmax := geom.Hmax * orDefault(cfg.HmaxTweak, 1)
		section := &xs.XS{
			Width: geom.Width, Theta: geom.Theta, Hmax: hmax,
			BankHeight: hmax, FpWidth: geom.Width * geom.FpWidthFactor,
			FpSlope: 0.02, ValleyWallSlp: 0.5, Sinuosity: geom.Sinuosity,
		}
		nodes[i] = profile.NewNode(geom.X, geom.Eta, geom.Bedrock, section, active, stored, cfg.LayerThick)
	}

	pcfg := profile.Config{
		Dt: cfg.Solver.Dt, WriteInterval: cfg.Solver.WriteInterval, RegimeFlag: cfg.Solver.RegimeFlag,
		HydUpw: orDefault(cfg.Solver.HydUpw, 0.3), PreissTheta: orDefault(cfg.Solver.PreissTheta, 0.7),
		SolverName: cfg.Solver.Name, Poro: cfg.Poro, RandomSeed: cfg.RandomSeed,
		QwTweak: cfg.Solver.QwTweak, QsTweak: cfg.Solver.QsTweak,
		FeedQw: cfg.Solver.FeedQw, FeedQs: cfg.Solver.FeedQs,
	}

	p, err := profile.New(pcfg, nodes, &cfg.Hydrograph, cfg.Dx)
	if err != nil {
		return nil, "", "", err
	}
	return p, cfg.DirOut, cfg.Desc, nil
}

func orDefault(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// fillOrZero returns grp if it already has n entries, otherwise a freshly
// allocated all-zero slice (every node defaults to library group 0).
func fillOrZero(grp []int, n int) []int {
	if len(grp) == n {
		return grp
	}
	return make([]int, n)
}
