// Copyright 2024 The Grate Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package hydraulics implements the backwater, quasi-normal,
// energy-conservation and fully-dynamic (Preissmann) solvers that advance
// water-surface profiles along a river node array.
package hydraulics

const g = 9.81

// BedSlope computes the per-node bed slope array from bed elevation eta,
// node spacing dx and per-node sinuosity: interior nodes blend the slope
// to the node above and below with weight hydUpw, while the two boundary
// nodes use a plain one-sided difference.
func BedSlope(eta []float64, dx float64, sinuosity []float64, hydUpw float64) []float64 {
	n := len(eta)
	slope := make([]float64, n)
	for i := n - 2; i > 0; i-- {
		slope[i] = (hydUpw*(eta[i-1]-eta[i])/dx +
			(1-hydUpw)*(eta[i]-eta[i+1])/dx) / sinuosity[i]
	}
	slope[0] = (eta[0] - eta[1]) / dx
	slope[n-1] = (eta[n-2] - eta[n-1]) / dx
	return slope
}
