// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package razor implements the k-winners-take-all sparsity gate that caps
// per-tick firing at a fixed count K. Without it, strong recurrence can
// cause seizure-like bursts and destroy sparsity; Razor enforces a
// biological target of roughly 0.1% population firing by retaining only
// the K candidates with the largest charge, breaking ties toward the
// smaller id, using a partial-selection algorithm that avoids an O(n log n)
// sort of the whole candidate set. Losers keep their charge, so repeated
// suprathreshold but sub-K neurons accumulate and eventually win -- this
// preserves slower signals rather than silencing them forever.
package razor

// Candidate is a neuron that crossed its effective firing threshold on a
// given tick, carrying enough identity and charge to rank it against its
// peers.
type Candidate struct {
	ID     uint32
	Charge int32
}

// Select returns the K candidates with the largest Charge, ties broken by
// the smaller ID, in descending-charge order. If len(candidates) <= k, or
// k <= 0, Select returns nil and the caller should treat all candidates as
// winners (the Razor gate is only a cap, never a floor).
func Select(candidates []Candidate, k int) []Candidate {
	if k <= 0 || len(candidates) <= k {
		return nil
	}
	winners := append([]Candidate(nil), candidates...)
	partitionTopK(winners, k)
	winners = winners[:k]
	insertionSortDesc(winners)
	return winners
}

func less(a, b Candidate) bool {
	if a.Charge != b.Charge {
		return a.Charge > b.Charge
	}
	return a.ID < b.ID
}

// partitionTopK performs a quickselect-style partial selection so that,
// on return, the k elements ranked ahead of the rest by less() occupy
// s[:k] (in arbitrary order within that prefix). Expected linear time.
func partitionTopK(s []Candidate, k int) {
	lo, hi := 0, len(s)-1
	for lo < hi {
		p := partition(s, lo, hi)
		switch {
		case p == k-1:
			return
		case p < k-1:
			lo = p + 1
		default:
			hi = p - 1
		}
	}
}

func partition(s []Candidate, lo, hi int) int {
	pivot := s[hi]
	i := lo
	for j := lo; j < hi; j++ {
		if less(s[j], pivot) {
			s[i], s[j] = s[j], s[i]
			i++
		}
	}
	s[i], s[hi] = s[hi], s[i]
	return i
}

func insertionSortDesc(s []Candidate) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && less(s[j], s[j-1]); j-- {
			s[j], s[j-1] = s[j-1], s[j]
		}
	}
}
