// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

// Pseudo-randomness in the engine never comes from a shared, mutable RNG
// (spec.md 5/9): every noise value derives exclusively from
// (current_tick, neuron_id, root_seed) through this documented linear
// congruential generator, so that two engines built with identical seeds
// and command sequences are bit-exact reproducible regardless of thread
// count or scheduling. This mirrors the constants used by the original
// implementation's noise generator
// (_examples/original_source/src/network.cpp).
const (
	lcgMultiplier = 1103515245
	lcgIncrement  = 12345
)

func lcgStep(seed uint64) uint64 {
	return seed*lcgMultiplier + lcgIncrement
}

// saltedSeed combines the per-tick seed with a neuron id and steps the LCG
// once more, giving each neuron an independent-looking stream for the same
// tick without any shared mutable state.
func saltedSeed(tick Tick, id NeuronID, rootSeed uint64) uint64 {
	base := lcgStep(uint64(tick)*1 + rootSeed)
	return lcgStep(base ^ uint64(id))
}

// lcgNoise returns a deterministic pseudo-random integer in [-amplitude,
// +amplitude] for the given tick and neuron, or 0 when amplitude <= 0.
func lcgNoise(tick Tick, id NeuronID, rootSeed uint64, amplitude int) int {
	if amplitude <= 0 {
		return 0
	}
	seed := saltedSeed(tick, id, rootSeed)
	span := 2*amplitude + 1
	return int((seed>>16)&0xFF)%span - amplitude
}

// DeterministicRoll returns a pseudo-random percentile in [0,99] for id at
// the current tick, derived from the same (current_tick, neuron_id,
// root_seed) LCG as firing noise. Collaborators outside
// the engine (e.g. motor.System's exploration) that need bounded,
// seed-reproducible randomness without a shared mutable RNG should use
// this rather than reaching for math/rand (spec.md 5).
func (nt *Network) DeterministicRoll(id NeuronID) int {
	seed := saltedSeed(nt.currentTick, id, nt.RootSeed)
	return int((seed >> 16) & 0xFF) % 100
}
