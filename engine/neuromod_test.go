// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "testing"

func TestDecayMovesTowardBaselineOneStep(t *testing.T) {
	m := Neuromodulators{Dopamine: 0, Norepinephrine: 100, Serotonin: 50, Acetylcholine: 50}
	m.decay()
	if m.Dopamine != 1 {
		t.Errorf("Dopamine = %d, want 1 (stepped up toward baseline 50)", m.Dopamine)
	}
	if m.Norepinephrine != 99 {
		t.Errorf("Norepinephrine = %d, want 99 (stepped down toward baseline 30)", m.Norepinephrine)
	}
	if m.Serotonin != 50 {
		t.Errorf("Serotonin = %d, want 50 (already at baseline)", m.Serotonin)
	}
}

func TestBusInjectionGainMonotonicInAcetylcholine(t *testing.T) {
	lowM := Neuromodulators{Acetylcholine: 0}
	highM := Neuromodulators{Acetylcholine: 100}
	low := lowM.BusInjectionGain()
	high := highM.BusInjectionGain()
	if high <= low {
		t.Errorf("BusInjectionGain(ACh=100) = %d, want > BusInjectionGain(ACh=0) = %d", high, low)
	}
}

func TestThresholdReductionMonotonicInNorepinephrine(t *testing.T) {
	lowM := Neuromodulators{Norepinephrine: 0}
	highM := Neuromodulators{Norepinephrine: 100}
	low := lowM.ThresholdReduction()
	high := highM.ThresholdReduction()
	if high <= low {
		t.Errorf("ThresholdReduction(NE=100) = %d, want > ThresholdReduction(NE=0) = %d", high, low)
	}
}

func TestNoiseAmplitudeZeroBelowSixty(t *testing.T) {
	for ne := 0; ne <= 60; ne++ {
		m := Neuromodulators{Norepinephrine: ne}
		if a := m.NoiseAmplitude(); a != 0 {
			t.Errorf("NoiseAmplitude(NE=%d) = %d, want 0", ne, a)
		}
	}
	m := Neuromodulators{Norepinephrine: 100}
	if a := m.NoiseAmplitude(); a <= 0 {
		t.Errorf("NoiseAmplitude(NE=100) = %d, want > 0", a)
	}
}

func TestSearchDepthClampedToRange(t *testing.T) {
	low := Neuromodulators{Serotonin: 0}
	high := Neuromodulators{Serotonin: 100}
	if d := low.SearchDepth(); d != 3 {
		t.Errorf("SearchDepth(5HT=0) = %d, want 3 (floor)", d)
	}
	if d := high.SearchDepth(); d != 8 {
		t.Errorf("SearchDepth(5HT=100) = %d, want 8 (ceiling)", d)
	}
}

func TestIsPanickingThreshold(t *testing.T) {
	belowM := Neuromodulators{Norepinephrine: PanicThreshold - 1}
	atM := Neuromodulators{Norepinephrine: PanicThreshold}
	if belowM.IsPanicking() {
		t.Errorf("IsPanicking at NE=%d, want false", PanicThreshold-1)
	}
	if !atM.IsPanicking() {
		t.Errorf("IsPanicking at NE=%d, want true", PanicThreshold)
	}
}

func TestSpikeClampsAtHundred(t *testing.T) {
	m := Neuromodulators{Dopamine: 90}
	m.SpikeDopamine(50)
	if m.Dopamine != 100 {
		t.Errorf("Dopamine after overflow spike = %d, want clamped 100", m.Dopamine)
	}
}
