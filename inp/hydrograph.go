// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package inp

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/fun"
)

// Entry is one chronological sample of a discharge time series: the time
// in seconds since run start and the discharge at that time.
type Entry struct {
	Time float64 `json:"time"`
	Q    float64 `json:"q"`
}

// Source is one hydrograph source (a tributary or headwater feed),
// entering the profile at Coord (distance along the long profile) and
// carrying a chronological time series of discharge samples, grouped by
// a GSD library index (Grp) describing the sediment it contributes.
type Source struct {
	Coord  float64 `json:"coord"`
	Grp    int     `json:"grp"`
	Series []Entry `json:"series"`
}

// Hydrograph holds every Source ordered by Coord, most upstream first.
type Hydrograph struct {
	Sources []Source `json:"sources"`

	// TweakTable supplies an optional per-year flood multiplier:
	// tweakTable[yearCounter] scales every source's interpolated
	// discharge, simulating a seasonal hydrograph shape on top of the
	// raw series.
	TweakTable []float64 `json:"tweaktable"`
}

// Query linearly interpolates Source i's time series at time t. For t
// before the first sample or after the last, the boundary value is held
// constant rather than extrapolated.
func (h *Hydrograph) Query(i int, t float64) (float64, error) {
	if i < 0 || i >= len(h.Sources) {
		return 0, chk.Err("inp: source index %d out of range [0,%d)", i, len(h.Sources))
	}
	s := h.Sources[i].Series
	if len(s) == 0 {
		return 0, chk.Err("inp: source %d has no time series samples", i)
	}
	if t <= s[0].Time {
		return s[0].Q, nil
	}
	if t >= s[len(s)-1].Time {
		return s[len(s)-1].Q, nil
	}
	j := sort.Search(len(s), func(k int) bool { return s[k].Time >= t })
	lo, hi := s[j-1], s[j]
	frac := (t - lo.Time) / (hi.Time - lo.Time)
	return lo.Q + frac*(hi.Q-lo.Q), nil
}

// sourceFunc adapts one hydrograph Source to gosl/fun's fun.Func
// "callable of time" contract; x is unused since a hydrograph source only
// varies in time.
type sourceFunc struct {
	h *Hydrograph
	i int
}

// Init implements fun.Func; a sourceFunc is fully configured by its
// hydrograph, so there are no parameters to read.
func (s sourceFunc) Init(prms fun.Prms) error { return nil }

// F implements fun.Func: the interpolated discharge at time t.
func (s sourceFunc) F(t float64, x []float64) float64 {
	q, err := s.h.Query(s.i, t)
	if err != nil {
		return 0
	}
	return q
}

// G implements fun.Func: dQ/dt, the slope of the active interpolation
// segment (zero outside the sampled period, where F holds constant).
func (s sourceFunc) G(t float64, x []float64) float64 {
	series := s.h.Sources[s.i].Series
	if len(series) < 2 || t <= series[0].Time || t >= series[len(series)-1].Time {
		return 0
	}
	j := sort.Search(len(series), func(k int) bool { return series[k].Time >= t })
	lo, hi := series[j-1], series[j]
	return (hi.Q - lo.Q) / (hi.Time - lo.Time)
}

// H implements fun.Func: the second time derivative of a piecewise-linear
// series is zero everywhere it exists.
func (s sourceFunc) H(t float64, x []float64) float64 { return 0 }

// Grad implements fun.Func; a hydrograph source has no spatial dependence.
func (s sourceFunc) Grad(v []float64, t float64, x []float64) {
	for i := range v {
		v[i] = 0
	}
}

// AsFunc exposes source i as a fun.Func so callers that already thread
// fun.Func-shaped boundary drivers through their solve loop (as the
// profile coordinator's tributary inflow does) can treat a hydrograph
// source like any other time function.
func (h *Hydrograph) AsFunc(i int) (fun.Func, error) {
	if i < 0 || i >= len(h.Sources) {
		return nil, chk.Err("inp: source index %d out of range [0,%d)", i, len(h.Sources))
	}
	return sourceFunc{h: h, i: i}, nil
}

// Tweak returns the flood multiplier for yearCounter, clamped to 1 when
// no table was supplied, so a run without stochastic tweaking behaves as
// a plain steady hydrograph.
func (h *Hydrograph) Tweak(yearCounter int) float64 {
	if len(h.TweakTable) == 0 {
		return 1
	}
	if yearCounter < 0 {
		yearCounter = 0
	}
	if yearCounter >= len(h.TweakTable) {
		yearCounter = len(h.TweakTable) - 1
	}
	return h.TweakTable[yearCounter]
}

// QuasiSteadyFlows evaluates every source at time t, applies the yearly
// tweak to all sources and the feed multiplier to the most-upstream one
// (index 0), then accumulates them into a per-node cumulative discharge
// array by adding each source's contribution at every node downstream of
// its Coord. xx holds the along-profile coordinate of each node.
func (h *Hydrograph) QuasiSteadyFlows(t float64, yearCounter int, feedQw float64, xx []float64) ([]float64, error) {
	qAtSource := make([]float64, len(h.Sources))
	tweak := h.Tweak(yearCounter)
	for i := range h.Sources {
		q, err := h.Query(i, t)
		if err != nil {
			return nil, err
		}
		q *= tweak
		if i == 0 {
			q *= feedQw
		}
		qAtSource[i] = q
	}

	cumul := make([]float64, len(xx))
	if len(h.Sources) == 0 {
		return cumul, nil
	}
	cumul[0] = qAtSource[0]
	srcIdx := 0
	for j := 1; j < len(xx); j++ {
		cumul[j] = cumul[j-1]
		for srcIdx < len(h.Sources)-1 && xx[j] > h.Sources[srcIdx+1].Coord {
			srcIdx++
			cumul[j] += qAtSource[srcIdx]
		}
	}
	return cumul, nil
}
