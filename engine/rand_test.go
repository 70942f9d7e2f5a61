// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "testing"

func TestLcgNoiseZeroAmplitudeIsZero(t *testing.T) {
	if n := lcgNoise(5, 3, 42, 0); n != 0 {
		t.Errorf("lcgNoise(amplitude=0) = %d, want 0", n)
	}
	if n := lcgNoise(5, 3, 42, -4); n != 0 {
		t.Errorf("lcgNoise(amplitude=-4) = %d, want 0", n)
	}
}

func TestLcgNoiseWithinAmplitudeBounds(t *testing.T) {
	for id := NeuronID(0); id < 50; id++ {
		for tick := Tick(0); tick < 20; tick++ {
			n := lcgNoise(tick, id, 7, 5)
			if n < -5 || n > 5 {
				t.Fatalf("lcgNoise(tick=%d,id=%d) = %d, out of [-5,5]", tick, id, n)
			}
		}
	}
}

func TestLcgNoiseDeterministicForSameInputs(t *testing.T) {
	a := lcgNoise(12, 4, 99, 6)
	b := lcgNoise(12, 4, 99, 6)
	if a != b {
		t.Errorf("lcgNoise not deterministic: %d vs %d for identical inputs", a, b)
	}
}

func TestLcgNoiseVariesAcrossNeurons(t *testing.T) {
	seen := map[int]bool{}
	for id := NeuronID(0); id < 10; id++ {
		seen[lcgNoise(3, id, 1, 50)] = true
	}
	if len(seen) < 2 {
		t.Errorf("lcgNoise produced the same value for all 10 neurons, want variation")
	}
}
