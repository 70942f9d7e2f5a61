// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

// Neuromodulators is the four-channel chemical vector that biases learning,
// threshold, leak, and input gain (spec.md 3). Each channel is a signed
// byte in [0,100] and decays one step per tick toward its baseline; any
// mutation is clamped to the legal range. It is a plain value owned by the
// Network -- never a process-wide singleton (spec.md 9).
type Neuromodulators struct {
	Dopamine       int // DA: learning gate
	Norepinephrine int // NE: threshold gain + noise
	Serotonin      int // 5-HT: leak bonus, patience
	Acetylcholine  int // ACh: sensory-input gain
}

// Neuromodulator baselines, part of the external contract (spec.md 6).
const (
	BaselineDopamine       = 50
	BaselineNorepinephrine = 30
	BaselineSerotonin      = 50
	BaselineAcetylcholine  = 50
)

// DefaultNeuromodulators returns the vector at its resting baselines.
func DefaultNeuromodulators() Neuromodulators {
	return Neuromodulators{
		Dopamine:       BaselineDopamine,
		Norepinephrine: BaselineNorepinephrine,
		Serotonin:      BaselineSerotonin,
		Acetylcholine:  BaselineAcetylcholine,
	}
}

func stepToward(v, baseline int) int {
	switch {
	case v < baseline:
		return v + 1
	case v > baseline:
		return v - 1
	default:
		return v
	}
}

// decay moves each channel one step toward its baseline; called once per
// tick by the chemistry-decay phase (spec.md 4.1 step 7).
func (m *Neuromodulators) decay() {
	m.Dopamine = stepToward(m.Dopamine, BaselineDopamine)
	m.Norepinephrine = stepToward(m.Norepinephrine, BaselineNorepinephrine)
	m.Serotonin = stepToward(m.Serotonin, BaselineSerotonin)
	m.Acetylcholine = stepToward(m.Acetylcholine, BaselineAcetylcholine)
}

func (m *Neuromodulators) clamp() {
	m.Dopamine = clampByte(m.Dopamine, 0, 100)
	m.Norepinephrine = clampByte(m.Norepinephrine, 0, 100)
	m.Serotonin = clampByte(m.Serotonin, 0, 100)
	m.Acetylcholine = clampByte(m.Acetylcholine, 0, 100)
}

// SpikeDopamine adds delta to DA and clamps to [0,100].
func (m *Neuromodulators) SpikeDopamine(delta int) {
	m.Dopamine += delta
	m.clamp()
}

// SpikeNorepinephrine adds delta to NE and clamps to [0,100].
func (m *Neuromodulators) SpikeNorepinephrine(delta int) {
	m.Norepinephrine += delta
	m.clamp()
}

// SpikeSerotonin adds delta to 5-HT and clamps to [0,100].
func (m *Neuromodulators) SpikeSerotonin(delta int) {
	m.Serotonin += delta
	m.clamp()
}

// SpikeAcetylcholine adds delta to ACh and clamps to [0,100].
func (m *Neuromodulators) SpikeAcetylcholine(delta int) {
	m.Acetylcholine += delta
	m.clamp()
}

// LeakBonus is the per-tick serotonin-derived "patience" drain applied to
// every non-refractory neuron during the leak phase (spec.md 4.1 step 2).
func (m *Neuromodulators) LeakBonus() Charge {
	return Charge(m.Serotonin / 10)
}

// ThresholdReduction is the norepinephrine-derived reduction applied to
// every neuron's effective firing threshold (spec.md 4.1 step 4).
func (m *Neuromodulators) ThresholdReduction() Charge {
	return Charge(m.Norepinephrine / 5)
}

// NoiseAmplitude is the per-tick firing-noise amplitude A derived from NE;
// zero (deterministic) at NE<=60 (spec.md 4.1 step 4).
func (m *Neuromodulators) NoiseAmplitude() int {
	if m.Norepinephrine <= 60 {
		return 0
	}
	a := (m.Norepinephrine - 60) / 4
	if a < 0 {
		return 0
	}
	return a
}

// BusInjectionGain is the per-tick acetylcholine-derived charge injected
// into each bus neuron covered by a UKS presentation pattern (spec.md 4.9).
func (m *Neuromodulators) BusInjectionGain() Charge {
	return Charge(5 + m.Acetylcholine/10)
}

// SearchDepth is the serotonin-derived traversal depth collaborators use
// for graph search (spec.md 6): 3 + 5-HT/20, clamped to [3,8].
func (m *Neuromodulators) SearchDepth() int {
	d := 3 + m.Serotonin/20
	return clampByte(d, 3, 8)
}

// IsPanicking reports whether NE has crossed the panic-reset threshold.
func (m *Neuromodulators) IsPanicking() bool {
	return m.Norepinephrine >= PanicThreshold
}

// forcePostPanic sets NE to its fixed post-panic value (spec.md 4.1 step 8).
func (m *Neuromodulators) forcePostPanic() {
	m.Norepinephrine = PostPanicNE
}
