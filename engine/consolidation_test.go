// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import "testing"

func TestBeginConsolidationLowersAChAndNEPreservesWeights(t *testing.T) {
	nt := NewNetwork("test", 4, 4)
	a := nt.AddNeuron(5, 0, 2)
	b := nt.AddNeuron(5, 0, 2)
	nt.ConnectNeurons(a, b, 7, true)
	nt.Chemicals.Acetylcholine = 90
	nt.Chemicals.Norepinephrine = 90
	nt.PlasticityEnabled = false

	prior := nt.BeginConsolidation()
	if prior.Acetylcholine != 90 || prior.Norepinephrine != 90 || prior.PlasticityWas {
		t.Fatalf("BeginConsolidation returned wrong prior state: %+v", prior)
	}
	if nt.Chemicals.Acetylcholine != consolidationAcetylcholine {
		t.Errorf("Acetylcholine = %d, want %d", nt.Chemicals.Acetylcholine, consolidationAcetylcholine)
	}
	if nt.Chemicals.Norepinephrine != consolidationNorepinephrine {
		t.Errorf("Norepinephrine = %d, want %d", nt.Chemicals.Norepinephrine, consolidationNorepinephrine)
	}
	if !nt.PlasticityEnabled {
		t.Errorf("PlasticityEnabled = false after BeginConsolidation, want true")
	}
	if w := nt.SynapseWeight(a, b); w != 7 {
		t.Errorf("SynapseWeight = %d after BeginConsolidation, want preserved 7", w)
	}
}

func TestEndConsolidationRestoresPriorState(t *testing.T) {
	nt := NewNetwork("test", 2, 2)
	nt.Chemicals.Acetylcholine = 77
	nt.Chemicals.Norepinephrine = 42
	nt.PlasticityEnabled = false

	prior := nt.BeginConsolidation()
	nt.EndConsolidation(prior)

	if nt.Chemicals.Acetylcholine != 77 {
		t.Errorf("Acetylcholine = %d after EndConsolidation, want restored 77", nt.Chemicals.Acetylcholine)
	}
	if nt.Chemicals.Norepinephrine != 42 {
		t.Errorf("Norepinephrine = %d after EndConsolidation, want restored 42", nt.Chemicals.Norepinephrine)
	}
	if nt.PlasticityEnabled {
		t.Errorf("PlasticityEnabled = true after EndConsolidation, want restored false")
	}
}

// TestDriveAssociationBindsViaSTDP exercises the full replay-hook pairing:
// BeginConsolidation followed by a single DriveAssociation call should
// bind the A->B pairing via STDP with no further Step calls needed.
func TestDriveAssociationBindsViaSTDP(t *testing.T) {
	nt := NewNetwork("test", 4, 4)
	a := nt.AddNeuron(100, 0, 0)
	b := nt.AddNeuron(100, 0, 0)
	nt.ConnectNeurons(a, b, 0, true)
	nt.Chemicals = Neuromodulators{}

	nt.BeginConsolidation()
	nt.DriveAssociation([]NeuronID{a}, []NeuronID{b}, 50)

	if w := nt.SynapseWeight(a, b); w <= 0 {
		t.Errorf("SynapseWeight(a,b) = %d after DriveAssociation, want > 0 (LTP bound)", w)
	}
}
