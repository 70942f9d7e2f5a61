// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "fmt"

// Neuron is a leaky integrate-and-fire unit. All state is integer; there is
// no floating-point neuron state anywhere in the engine.
type Neuron struct {
	V Charge // membrane potential, clamped >= 0 outside the fire phase

	Threshold  Charge // theta, > 0
	Leak       Charge // L, >= 0
	Refractory Tick   // R, ticks

	LastFiredTick Tick // initialized to -R-1 so a fresh neuron may fire immediately

	// SynapseBase and SynapseCount index this neuron's contiguous-arena
	// outgoing synapse range: [SynapseBase, SynapseBase+SynapseCount).
	SynapseBase  int
	SynapseCount int
}

// NeuronVars names the introspectable fields of Neuron, in declaration
// order, mirroring leabra.NeuronVars.
var NeuronVars = []string{"V", "Threshold", "Leak", "Refractory", "LastFiredTick", "SynapseCount"}

// newNeuron constructs a neuron at rest, refractory-clear from tick 0.
func newNeuron(threshold, leak Charge, refractory Tick) Neuron {
	return Neuron{
		Threshold:     threshold,
		Leak:          leak,
		Refractory:    refractory,
		LastFiredTick: -refractory - 1,
	}
}

// IsRefractory reports whether the neuron is within its refractory window
// at the given tick.
func (n *Neuron) IsRefractory(tick Tick) bool {
	return tick-n.LastFiredTick <= n.Refractory
}

// applyLeak drains the membrane potential by the neuron's leak plus a
// serotonin-derived patience bonus, clamped at zero.
func (n *Neuron) applyLeak(bonus Charge) {
	n.V = clampCharge(n.V - (n.Leak + bonus))
}

// addCharge adds signed charge with no clamping; clamping is the leak/fire
// phases' job (spec.md 4.2).
func (n *Neuron) addCharge(amount Charge) {
	n.V += amount
}

// reset zeroes membrane potential and restores the refractory-clear state,
// without touching threshold, leak, or refractory length.
func (n *Neuron) reset() {
	n.V = 0
	n.LastFiredTick = -n.Refractory - 1
}

// fire zeroes the membrane potential and records the firing tick. Callers
// are responsible for queuing the outgoing spike and updating fired-sets.
func (n *Neuron) fire(tick Tick) {
	n.V = 0
	n.LastFiredTick = tick
}

// VarByIndex returns a Neuron field by its position in NeuronVars.
func (n *Neuron) VarByIndex(idx int) (int64, error) {
	switch idx {
	case 0:
		return int64(n.V), nil
	case 1:
		return int64(n.Threshold), nil
	case 2:
		return int64(n.Leak), nil
	case 3:
		return int64(n.Refractory), nil
	case 4:
		return int64(n.LastFiredTick), nil
	case 5:
		return int64(n.SynapseCount), nil
	default:
		return 0, fmt.Errorf("engine.Neuron: VarByIndex: index %d out of range", idx)
	}
}

// NeuronVarByName returns the NeuronVars index of name, or an error.
func NeuronVarByName(name string) (int, error) {
	for i, v := range NeuronVars {
		if v == name {
			return i, nil
		}
	}
	return 0, fmt.Errorf("engine.Neuron: VarByName: variable name %q not valid", name)
}

// VarByName returns a Neuron field by name, for debug tooling.
func (n *Neuron) VarByName(name string) (int64, error) {
	idx, err := NeuronVarByName(name)
	if err != nil {
		return 0, err
	}
	return n.VarByIndex(idx)
}
