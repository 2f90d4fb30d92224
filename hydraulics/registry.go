// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package hydraulics

import (
	"github.com/cpmech/gosl/chk"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/xs"
)

// SolverConfig holds the configurable knobs of the hydraulic solve: the
// Preissmann weighting coefficient, the upstream-weighting factor for the
// bed-slope array, the time step and the downstream rating curve.
type SolverConfig struct {
	PreissTheta float64
	HydUpw      float64
	Dt          float64

	// TailwaterRating overrides the empirical 0.3*Q^0.3 downstream rating
	// with a caller-supplied curve, so a real gauged rating can be
	// substituted without touching the solver.
	TailwaterRating func(q float64) float64
}

// Solver advances a node array's water-surface profile by one step,
// either with the quasi-steady backwater sweep or the fully dynamic
// Preissmann scheme; SolverFor selects among the registered
// implementations by name.
type Solver interface {
	Step(eta, bedSlope []float64, sections []*xs.XS, gsds []*gsd.GSD, q []float64, dx float64) error
}

type solverAllocator func(cfg SolverConfig) Solver

var solverAllocators = map[string]solverAllocator{
	"backwater": func(cfg SolverConfig) Solver { return &backwaterSolver{cfg} },
	"dynamic":   func(cfg SolverConfig) Solver { return &dynamicSolver{cfg} },
}

// SolverFor returns the named Solver implementation, erroring on an
// unknown name rather than silently falling back to a default.
func SolverFor(name string, cfg SolverConfig) (Solver, error) {
	alloc, ok := solverAllocators[name]
	if !ok {
		return nil, chk.Err("hydraulics: unknown solver %q", name)
	}
	return alloc(cfg), nil
}

type backwaterSolver struct{ cfg SolverConfig }

func (s *backwaterSolver) Step(eta, bedSlope []float64, sections []*xs.XS, gsds []*gsd.GSD, q []float64, dx float64) error {
	return Backwater(BackwaterInput{
		Eta: eta, QwCumul: q, BedSlope: bedSlope, Sections: sections, GSDs: gsds, Dx: dx,
		Rating: s.cfg.TailwaterRating,
	})
}

type dynamicSolver struct{ cfg SolverConfig }

func (s *dynamicSolver) Step(eta, bedSlope []float64, sections []*xs.XS, gsds []*gsd.GSD, q []float64, dx float64) error {
	y := make([]float64, len(eta))
	for i := range eta {
		y[i] = eta[i] + sections[i].Depth
	}
	err := FullyDynamic(FullyDynamicInput{
		Eta: eta, BedSlope: bedSlope, Sections: sections, GSDs: gsds,
		Dx: dx, Dt: s.cfg.Dt, Theta: s.cfg.PreissTheta, Q: q, Y: y,
	})
	if err != nil {
		return err
	}
	for i := range eta {
		sections[i].Depth = y[i] - eta[i]
	}
	return nil
}
