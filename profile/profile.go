// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/cpmech/gosl/utl"
	"github.com/jmward-river/grate/gsd"
	"github.com/jmward-river/grate/hydraulics"
	"github.com/jmward-river/grate/inp"
	"github.com/jmward-river/grate/regime"
	"github.com/jmward-river/grate/xs"
)

// Config is the run-level configuration Profile needs beyond the static
// setup already captured in inp.Config: the resolved hydraulic solver
// knobs, regime toggle and stochastic multipliers.
type Config struct {
	Dt            float64
	WriteInterval int
	RegimeFlag    bool
	HydUpw        float64
	PreissTheta   float64
	SolverName    string // "backwater" or "dynamic"
	Poro          float64
	QwTweak       float64 // uniform multiplier on every source's discharge; 0 reads as 1
	QsTweak       float64 // uniform multiplier on transport capacity; 0 reads as 1
	FeedQw        float64 // multiplier on the feed (most-upstream) source only
	FeedQs        float64 // multiplier on the feed node's sediment supply
	RandomSeed    int
}

// Profile owns the full node array and the fixed per-step call sequence:
// build cumulative discharge, update the downstream boundary, recompute
// bed slope, solve the hydraulics, (periodically) update one node's
// regime, update sediment/stratigraphy, then advance time.
type Profile struct {
	Cfg        Config
	Nodes      []*Node
	Hydrograph *inp.Hydrograph
	Dx         float64

	solver      hydraulics.Solver
	regime      *regime.Coordinator
	theta0      []float64 // initial bank angle per node, the regime solver's starting guess
	fpWidth     []float64 // floodplain width per node
	sinuosity   []float64
	oldBankHt   []float64

	CTime       float64
	YearCounter int // index into the hydrograph's TweakTable; advances each Step, wrapping at the table length
	step        int
	lastQw      []float64
}

// LastQw returns the per-node cumulative discharge array computed by the
// most recent Step call, for callers (snapshot writers) that need it
// without recomputing it from the hydrograph.
func (p *Profile) LastQw() []float64 { return p.lastQw }

// StepCount returns the count of completed Step calls.
func (p *Profile) StepCount() int { return p.step }

// New assembles a Profile from a resolved configuration/hydrograph pair
// and a parallel array of already-constructed nodes (the caller is
// expected to have used inp.Config.NodeGeom/BuildLibrary/ActiveLayer/
// StratigraphicColumn to build each Node; Profile never parses files
// itself).
func New(cfg Config, nodes []*Node, hg *inp.Hydrograph, dx float64) (*Profile, error) {
	if len(nodes) < 3 {
		return nil, chk.Err("profile: need at least 3 nodes, got %d", len(nodes))
	}
	solverName := cfg.SolverName
	if solverName == "" {
		solverName = "backwater"
	}
	solver, err := hydraulics.SolverFor(solverName, hydraulics.SolverConfig{
		PreissTheta: cfg.PreissTheta,
		HydUpw:      cfg.HydUpw,
		Dt:          cfg.Dt,
	})
	if err != nil {
		return nil, err
	}

	p := &Profile{
		Cfg:        cfg,
		Nodes:      nodes,
		Hydrograph: hg,
		Dx:         dx,
		solver:     solver,
		regime:     regime.NewCoordinator(len(nodes), cfg.RandomSeed),
		theta0:     make([]float64, len(nodes)),
		fpWidth:    make([]float64, len(nodes)),
		sinuosity:  make([]float64, len(nodes)),
		oldBankHt:  make([]float64, len(nodes)),
	}
	for i, n := range nodes {
		if len(n.Section.Channels) == 0 {
			n.Section.RegimeReset()
		}
		if n.Section.Depth <= 0 {
			// a never-solved cross-section needs a nonzero seed depth or
			// the first QuasiNormal/Backwater call divides by a zero
			// hydraulic radius inside the Keulegan resistance term.
			n.Section.Depth = 0.3
		}
		p.theta0[i] = n.Section.Theta
		p.fpWidth[i] = n.Section.FpWidth
		p.sinuosity[i] = clampSinuosity(n.Section.Sinuosity)
		n.Section.Sinuosity = p.sinuosity[i]
	}
	return p, nil
}

func (p *Profile) eta() []float64 {
	v := make([]float64, len(p.Nodes))
	for i, n := range p.Nodes {
		v[i] = n.Eta
	}
	return v
}

func (p *Profile) xx() []float64 {
	v := make([]float64, len(p.Nodes))
	for i, n := range p.Nodes {
		v[i] = n.X
	}
	return v
}

func (p *Profile) sections() []*xs.XS {
	v := make([]*xs.XS, len(p.Nodes))
	for i, n := range p.Nodes {
		v[i] = n.Section
	}
	return v
}

func (p *Profile) gsds() []*gsd.GSD {
	v := make([]*gsd.GSD, len(p.Nodes))
	for i, n := range p.Nodes {
		v[i] = n.Active
	}
	return v
}

// Step advances the profile by one time step dt, in fixed order:
// cumulative discharge, downstream boundary, bed slope, hydraulic solve,
// (periodic) regime update, sediment/stratigraphy update, time advance.
func (p *Profile) Step() error {
	n := len(p.Nodes)
	eta := p.eta()
	sections := p.sections()
	gsds := p.gsds()

	// 1. cumulative discharge at every node from the hydrograph. The
	// uniform qwTweak scales every source, so it can be applied to the
	// cumulative array directly.
	qwCumul, err := p.Hydrograph.QuasiSteadyFlows(p.CTime, p.YearCounter, multOr1(p.Cfg.FeedQw), p.xx())
	if err != nil {
		return err
	}
	if tw := multOr1(p.Cfg.QwTweak); tw != 1 {
		for i := range qwCumul {
			qwCumul[i] *= tw
		}
	}

	// 2. downstream boundary XS (area/velocity/eci updated by Geometry and
	// Conveyance; the solver itself re-derives Fr^2 as needed). The rating
	// seed is applied before Geometry/Conveyance so a node that has never
	// been solved (Depth==0, e.g. the very first Step) doesn't divide by a
	// zero hydraulic radius inside Conveyance's Keulegan term.
	last := sections[n-1]
	if last.Depth <= 0 {
		last.Depth = 0.3 * math.Pow(qwCumul[n-1], 0.3)
	}
	last.Geometry()
	last.Conveyance(gsds[n-1])

	// 3. bed slope for every node.
	bedSlope := hydraulics.BedSlope(eta, p.Dx, p.sinuosity, p.Cfg.HydUpw)

	// 4. hydraulic solve.
	if err := p.solver.Step(eta, bedSlope, sections, gsds, qwCumul, p.Dx); err != nil {
		return err
	}

	// 5. periodic regime update, one node per step.
	if p.Cfg.RegimeFlag {
		idx := p.regime.Counter()
		node := p.Nodes[idx]
		p.oldBankHt[idx] = node.Section.BankHeight
		oldArea := node.Section.FlowArea[2]
		out, err := p.regime.Step(node.Section, regime.StepInput{
			Q:         qwCumul[idx],
			BedSlope:  bedSlope[idx],
			F:         node.Active,
			Theta0:    p.theta0[idx],
			FpWidth:   p.fpWidth[idx],
			ReachDx:   p.Dx,
			Sinuosity: p.sinuosity[idx],
			OldBankHt: p.oldBankHt[idx],
			OldArea:   oldArea,
		})
		if err != nil {
			return err
		}
		p.sinuosity[idx] = out.Sinuosity
		node.Section.Sinuosity = out.Sinuosity
	}

	// 6. sediment transport capacity and stratigraphy, then time advance.
	if err := p.updateStratigraphy(sections, gsds, bedSlope, qwCumul); err != nil {
		return err
	}

	p.lastQw = qwCumul
	p.CTime += p.Cfg.Dt
	p.step++
	if n := len(p.Hydrograph.TweakTable); n > 0 {
		p.YearCounter++
		if p.YearCounter >= n {
			p.YearCounter = 0
		}
	}
	return nil
}

// multOr1 maps a zero-value (unset) multiplier to 1.
func multOr1(v float64) float64 {
	if v == 0 {
		return 1
	}
	return v
}

// clampSinuosity maps a zero-value (unset) sinuosity to 1 and bounds the
// rest to [1, 2.6].
func clampSinuosity(s float64) float64 {
	if s < 1 {
		return 1
	}
	if s > 2.6 {
		return 2.6
	}
	return s
}

// updateStratigraphy computes Wilcock-Crowe transport capacity at every
// node (using the shear state the hydraulic solve just produced) and
// applies a simple Exner mass balance: a node whose upstream transport
// capacity exceeds its own degrades; a node receiving more than it can
// carry onward aggrades.
func (p *Profile) updateStratigraphy(sections []*xs.XS, gsds []*gsd.GSD, bedSlope, qwCumul []float64) error {
	n := len(sections)
	poro := p.Cfg.Poro
	if poro <= 0 || poro >= 1 {
		poro = 0.35
	}
	poro = utl.Max(0.05, poro)

	qsTweak := multOr1(p.Cfg.QsTweak)
	qb := make([]float64, n)
	for i := 0; i < n; i++ {
		if sections[i].Depth <= 0 || bedSlope[i] <= 0 {
			continue
		}
		if err := sections[i].WilcockCrowe(gsds[i]); err != nil {
			return err
		}
		qb[i] = qsTweak * sections[i].QbCap
	}
	qb[0] *= multOr1(p.Cfg.FeedQs)

	for i := 1; i < n-1; i++ {
		node := p.Nodes[i]
		netIn := qb[i-1] - qb[i]
		width := sections[i].Width
		if width <= 0 {
			continue
		}
		deltaEta := netIn * p.Cfg.Dt / (width * p.Dx * (1 - poro))
		switch {
		case deltaEta < 0:
			if err := node.Degrade(-deltaEta); err != nil {
				return err
			}
		case deltaEta > 0:
			node.Aggrade(deltaEta, node.Active)
		}
	}
	return nil
}

// LogProgress writes a one-line progress message between steps.
func (p *Profile) LogProgress() {
	io.Pf("t=%.1f step=%d\n", p.CTime, p.step)
}
