// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

// consolidationAcetylcholine and consolidationNorepinephrine are the
// internal-dominant regime's fixed levels: low ACh weakens external bus
// drive so recurrent activity dominates, low NE keeps panic_reset from
// interrupting replay (spec.md 4.10).
const (
	consolidationAcetylcholine = 20
	consolidationNorepinephrine = 20
)

// ConsolidationState is the neuromodulator snapshot BeginConsolidation
// returns, to be handed back to EndConsolidation once replay is done.
type ConsolidationState struct {
	Acetylcholine  int
	Norepinephrine int
	PlasticityWas  bool
}

// BeginConsolidation disables short-term memory (every neuron's V and
// last_fired_tick reset, weights untouched -- the same state Reset leaves
// synapses in), lowers ACh and NE into the internal-dominant regime, and
// enables plasticity, returning the prior state for EndConsolidation to
// restore (spec.md 4.10, corroborated by brain.cpp's dream()).
func (nt *Network) BeginConsolidation() ConsolidationState {
	prior := ConsolidationState{
		Acetylcholine:  nt.Chemicals.Acetylcholine,
		Norepinephrine: nt.Chemicals.Norepinephrine,
		PlasticityWas:  nt.PlasticityEnabled,
	}

	for i := range nt.Neurons {
		nt.Neurons[i].reset()
	}
	nt.firedThisTick = make([]bool, len(nt.Neurons))
	nt.firedLastTick = make([]bool, len(nt.Neurons))
	nt.queue.clear()

	nt.Chemicals.Acetylcholine = consolidationAcetylcholine
	nt.Chemicals.Norepinephrine = consolidationNorepinephrine
	nt.PlasticityEnabled = true

	return prior
}

// associationFireMargin is added atop a neuron's own threshold when
// DriveAssociation charges it, so it crosses effective threshold (which
// norepinephrine-derived noise may have pushed above the nominal value)
// during the very Step that follows.
const associationFireMargin = Charge(50)

// DriveAssociation charges every neuron in from enough to guarantee it
// fires, steps the network once (from's firing lands in fired_last_tick),
// then charges every neuron in to enough to guarantee it fires during the
// step that pairs it against fired_last_tick -- binding the A->B
// association via STDP in the plasticity phase of that second Step call.
// Dopamine is spiked before each phase so the plasticity gate (DA >= 10)
// holds throughout (spec.md 4.10's "drive input then target bus patterns
// in quick succession under elevated DA"). The caller must already have
// plasticity enabled (BeginConsolidation does this).
func (nt *Network) DriveAssociation(from, to []NeuronID, dopamine int) {
	nt.Chemicals.SpikeDopamine(dopamine)
	for _, id := range from {
		if int(id) < len(nt.Neurons) {
			nt.InjectCharge(id, nt.Neurons[id].Threshold+associationFireMargin)
		}
	}
	nt.Step()

	nt.Chemicals.SpikeDopamine(dopamine)
	for _, id := range to {
		if int(id) < len(nt.Neurons) {
			nt.InjectCharge(id, nt.Neurons[id].Threshold+associationFireMargin)
		}
	}
	nt.Step()
}

// EndConsolidation restores the neuromodulator and plasticity state
// BeginConsolidation saved, waking the network from the internal-dominant
// regime.
func (nt *Network) EndConsolidation(prior ConsolidationState) {
	nt.Chemicals.Acetylcholine = prior.Acetylcholine
	nt.Chemicals.Norepinephrine = prior.Norepinephrine
	nt.PlasticityEnabled = prior.PlasticityWas
}
