// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "github.com/emer/spikecore/razor"

// Step advances current_tick by one, executing the four-phase tick cycle
// in order (spec.md 4.1). No phase blocks; there is no I/O in the core.
func (nt *Network) Step() {
	nt.snapshot()
	nt.refractory.rebuild(nt.Neurons, nt.currentTick)

	nt.leakagePhase()
	nt.funTimerStart("Integrate")
	nt.integrationPhase()
	nt.funTimerStop("Integrate")
	nt.firingPhase()

	if nt.PlasticityEnabled {
		nt.funTimerStart("Plasticity")
		nt.plasticityPhase()
		nt.funTimerStop("Plasticity")
	}
	if nt.OperantMode {
		nt.decayEligibilityTraces()
	}

	nt.Chemicals.decay()

	if nt.Chemicals.IsPanicking() {
		nt.PanicReset()
	}
	nt.currentTick++
}

// Run calls Step n times.
func (nt *Network) Run(n int) {
	for i := 0; i < n; i++ {
		nt.Step()
	}
}

// snapshot moves fired_this_tick -> fired_last_tick, clears
// fired_this_tick, and resets the per-tick spike counters (spec.md 4.1
// step 1). The spike queue needs no explicit "advance" here: take()
// already removes exactly the tick it is asked for.
func (nt *Network) snapshot() {
	nt.firedLastTick, nt.firedThisTick = nt.firedThisTick, nt.firedLastTick
	for i := range nt.firedThisTick {
		nt.firedThisTick[i] = false
	}
	nt.lastCandidateCount = 0
	nt.lastSpikeCount = 0
}

// leakagePhase drains every non-refractory neuron's charge by its leak
// plus the serotonin "patience" bonus (spec.md 4.1 step 2). Data-parallel:
// each worker owns a disjoint neuron range, no synchronization needed
// (spec.md 5).
func (nt *Network) leakagePhase() {
	bonus := nt.Chemicals.LeakBonus()
	nt.thrRangeFun(func(lo, hi int) {
		for i := lo; i < hi; i++ {
			if nt.refractory.isSet(NeuronID(i)) {
				continue
			}
			nt.Neurons[i].applyLeak(bonus)
		}
	}, "Leak")
}

// integrationPhase pops every spike emitted last tick and adds its
// synapse weights to non-refractory targets. Sequential: spike-driven
// writes to shared target charges create contention under parallel
// execution (spec.md 5).
func (nt *Network) integrationPhase() {
	pre := nt.queue.take(nt.currentTick - 1)
	for _, p := range pre {
		arena, overflow := nt.outgoing(p)
		nt.integrateFrom(arena)
		nt.integrateFrom(overflow)
	}
}

func (nt *Network) integrateFrom(syns []Synapse) {
	for _, s := range syns {
		if nt.refractory.isSet(s.Target) {
			continue
		}
		nt.Neurons[s.Target].addCharge(Charge(s.Weight))
	}
}

// firingPhase computes each non-refractory neuron's effective threshold,
// collects above-threshold candidates, and -- if the Razor is enabled and
// candidates exceed K -- caps firing to the K largest by charge, ties
// broken toward the smaller id (spec.md 4.1 step 4).
func (nt *Network) firingPhase() {
	thresholdReduction := nt.Chemicals.ThresholdReduction()
	amplitude := nt.Chemicals.NoiseAmplitude()
	tick := nt.currentTick
	rootSeed := nt.RootSeed

	type perWorker struct{ cands []razor.Candidate }
	workers := make([]perWorker, max(nt.NThreads, 1))

	nt.thrRangeFun(func(lo, hi int) {
		tIdx := workerIndexFor(nt, lo)
		w := &workers[tIdx]
		for i := lo; i < hi; i++ {
			id := NeuronID(i)
			if nt.refractory.isSet(id) {
				continue
			}
			noise := lcgNoise(tick, id, rootSeed, amplitude)
			effThresh := nt.Neurons[i].Threshold - thresholdReduction + Charge(noise)
			if effThresh < 1 {
				effThresh = 1
			}
			if nt.Neurons[i].V >= effThresh {
				w.cands = append(w.cands, razor.Candidate{ID: uint32(id), Charge: int32(nt.Neurons[i].V)})
			}
		}
	}, "Fire")

	var candidates []razor.Candidate
	for _, w := range workers {
		candidates = append(candidates, w.cands...)
	}
	nt.lastCandidateCount = len(candidates)

	winners := candidates
	if nt.RazorEnabled {
		if capped := razor.Select(candidates, nt.MaxSpikesPerTick); capped != nil {
			winners = capped
		}
	}

	for _, c := range winners {
		id := NeuronID(c.ID)
		nt.Neurons[id].fire(tick)
		nt.queue.add(id, tick)
		nt.firedThisTick[id] = true
	}
	nt.lastSpikeCount = len(winners)
}

// workerIndexFor maps a range start back to its worker slot so the
// per-worker candidate buffers in firingPhase stay thread-local until the
// single coordinator merge (spec.md 5's "atomicity in parallel phases").
func workerIndexFor(nt *Network, lo int) int {
	for i, r := range nt.thrRanges {
		if r[0] == lo {
			return i
		}
	}
	return 0
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// plasticityPhase is gated by plasticity_enabled and DA >= 10 (spec.md 4.1
// step 5). It runs an LTP sweep over synapses from neurons that fired last
// tick onto neurons that fired this tick, then -- Pavlovian mode only -- an
// LTD sweep the other direction. Both sweeps compute deltaT from each
// neuron's own last_fired_tick rather than a synthetic tick-1/tick pair, so
// that an inject_spike-driven firing (which stamps last_fired_tick just as
// a natural fire does) produces the correct STDP timing even when paired
// against a firing several ticks in its past.
func (nt *Network) plasticityPhase() {
	if nt.Chemicals.Dopamine < 10 {
		return
	}

	for i, fired := range nt.firedLastTick {
		if !fired {
			continue
		}
		pre := NeuronID(i)
		preFired := nt.Neurons[pre].LastFiredTick
		nt.forEachOutgoing(pre, func(s *Synapse) {
			if !nt.firedThisTick[s.Target] {
				return
			}
			postFired := nt.Neurons[s.Target].LastFiredTick
			if nt.OperantMode {
				s.markEligible(preFired, postFired)
			} else {
				s.updateWeight(preFired, postFired)
			}
		})
	}

	if nt.OperantMode {
		return
	}
	for i, fired := range nt.firedThisTick {
		if !fired {
			continue
		}
		pre := NeuronID(i)
		preFired := nt.Neurons[pre].LastFiredTick
		nt.forEachOutgoing(pre, func(s *Synapse) {
			if !s.Plastic || !nt.firedLastTick[s.Target] {
				return
			}
			postFired := nt.Neurons[s.Target].LastFiredTick
			s.updateWeight(preFired, postFired)
		})
	}
}

// decayEligibilityTraces decays every plastic synapse's eligibility trace
// by one, saturating at zero (spec.md 4.1 step 6).
func (nt *Network) decayEligibilityTraces() {
	for i := range nt.Synapses {
		nt.Synapses[i].decayEligibility()
	}
	for pre, syns := range nt.DynamicSynapses {
		for i := range syns {
			syns[i].decayEligibility()
		}
		nt.DynamicSynapses[pre] = syns
	}
}
