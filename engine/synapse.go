// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "fmt"

// Synapse holds the state of a single directed connection between two
// neurons. Weight and eligibility trace mutate under plasticity; the
// target and plastic flag never change after connect.
type Synapse struct {
	Target  NeuronID
	Weight  Weight
	Plastic bool

	// Eligibility is the operant-conditioning credit-assignment trace,
	// bounded [0, EligibilityMax]. Unused when Plastic is false.
	Eligibility int8
}

// SynapseVars names the introspectable fields of Synapse, mirroring
// leabra.SynapseVars.
var SynapseVars = []string{"Weight", "Plastic", "Eligibility"}

func newSynapse(target NeuronID, weight Weight, plastic bool) Synapse {
	return Synapse{
		Target:  target,
		Weight:  clampWeight(int32(weight)),
		Plastic: plastic,
	}
}

func (s *Synapse) clamp() {
	s.Weight = clampWeight(int32(s.Weight))
}

// markEligible sets the eligibility trace to its maximum when preFired is
// causally before postFired within the STDP window (spec.md 4.3/4.4). Only
// plastic synapses accrue eligibility.
func (s *Synapse) markEligible(preFired, postFired Tick) {
	if !s.Plastic {
		return
	}
	deltaT := postFired - preFired
	if deltaT > 0 && deltaT <= STDPWindow {
		s.Eligibility = EligibilityMax
	}
}

// updateWeight applies the immediate STDP delta for Pavlovian mode. No-op
// on non-plastic synapses.
func (s *Synapse) updateWeight(preFired, postFired Tick) {
	if !s.Plastic {
		return
	}
	delta := stdpDelta(postFired - preFired)
	s.Weight = clampWeight(int32(s.Weight) + int32(delta))
}

// decayEligibility decrements the trace by EligibilityDecay, floored at 0.
func (s *Synapse) decayEligibility() {
	if s.Eligibility <= 0 {
		return
	}
	s.Eligibility -= EligibilityDecay
	if s.Eligibility < 0 {
		s.Eligibility = 0
	}
}

// applyReward converts the eligibility trace into a weight delta scaled by
// rewardAmount, then zeroes the trace so it cannot double-dip (spec.md 4.4).
func (s *Synapse) applyReward(rewardAmount int) {
	if !s.Plastic || s.Eligibility <= 0 {
		return
	}
	delta := (int32(s.Eligibility) * int32(rewardAmount)) / RewardScaleFactor
	if delta < int32(WeightMin) {
		delta = int32(WeightMin)
	} else if delta > int32(WeightMax) {
		delta = int32(WeightMax)
	}
	s.Weight = clampWeight(int32(s.Weight) + delta)
	s.Eligibility = 0
}

// stdpDelta computes the STDP weight change for a signed pre/post timing
// difference (spec.md 4.3): zero outside +/-STDPWindow, magnitude 0/1/2
// via integer linear decay, sign following deltaT.
func stdpDelta(deltaT Tick) Weight {
	if deltaT == 0 {
		return 0
	}
	absDelta := deltaT
	if absDelta < 0 {
		absDelta = -absDelta
	}
	if absDelta > STDPWindow {
		return 0
	}
	magnitude := (2 * (STDPWindow - absDelta)) / STDPWindow
	if deltaT > 0 {
		return Weight(magnitude)
	}
	return Weight(-magnitude)
}

// VarByIndex returns a Synapse field by its position in SynapseVars.
func (s *Synapse) VarByIndex(idx int) (int64, error) {
	switch idx {
	case 0:
		return int64(s.Weight), nil
	case 1:
		if s.Plastic {
			return 1, nil
		}
		return 0, nil
	case 2:
		return int64(s.Eligibility), nil
	default:
		return 0, fmt.Errorf("engine.Synapse: VarByIndex: index %d out of range", idx)
	}
}

// SynapseVarByName returns the SynapseVars index of name, or an error.
func SynapseVarByName(name string) (int, error) {
	for i, v := range SynapseVars {
		if v == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("engine.Synapse: VarByName: variable name %q not valid", name)
}

// VarByName returns a Synapse field by name, for debug tooling.
func (s *Synapse) VarByName(name string) (int64, error) {
	idx, err := SynapseVarByName(name)
	if err != nil {
		return 0, err
	}
	return s.VarByIndex(idx)
}
