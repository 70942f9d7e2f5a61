// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package motor

import (
	"testing"

	"github.com/emer/spikecore/engine"
)

func newTestSystem() (*engine.Network, *System) {
	nt := engine.NewNetwork("test", 16, 64)
	s := New(nt, Defaults())
	return nt, s
}

func TestConnectToBusWiresPlasticZeroWeightBothWays(t *testing.T) {
	nt, s := newTestSystem()
	bus := []engine.NeuronID{nt.AddNeuron(2, 0, 1), nt.AddNeuron(2, 0, 1)}
	s.ConnectToBus(bus)

	left, _ := s.GetMotorNeuron(Left)
	right, _ := s.GetMotorNeuron(Right)
	for _, b := range bus {
		if w := nt.SynapseWeight(b, left); w != 0 {
			t.Errorf("bus->left weight = %d, want 0 (tabula rasa)", w)
		}
		if w := nt.SynapseWeight(b, right); w != 0 {
			t.Errorf("bus->right weight = %d, want 0 (tabula rasa)", w)
		}
	}
}

func TestForceActionInjectsOnlyNamedMotor(t *testing.T) {
	nt, s := newTestSystem()
	s.ForceAction(Left, 20)

	left, _ := s.GetMotorNeuron(Left)
	right, _ := s.GetMotorNeuron(Right)
	if nt.Charge(left) != 20 {
		t.Errorf("left charge = %d, want 20", nt.Charge(left))
	}
	if nt.Charge(right) != 0 {
		t.Errorf("right charge = %d, want 0 (untouched)", nt.Charge(right))
	}
}

func TestForceActionNoneIsNoOp(t *testing.T) {
	nt, s := newTestSystem()
	s.ForceAction(None, 20)

	left, _ := s.GetMotorNeuron(Left)
	right, _ := s.GetMotorNeuron(Right)
	if nt.Charge(left) != 0 || nt.Charge(right) != 0 {
		t.Errorf("ForceAction(None) injected charge, want no-op")
	}
}

func TestGetActionReflectsWhichMotorFired(t *testing.T) {
	nt, s := newTestSystem()
	if a := s.GetAction(); a != None {
		t.Fatalf("GetAction() before any firing = %v, want None", a)
	}

	s.ForceAction(Left, 20)
	nt.Step()
	if a := s.GetAction(); a != Left {
		t.Errorf("GetAction() = %v, want Left", a)
	}
}

func TestGetActionTieBreaksTowardHigherCharge(t *testing.T) {
	nt, s := newTestSystem()
	left, _ := s.GetMotorNeuron(Left)
	right, _ := s.GetMotorNeuron(Right)
	nt.InjectCharge(left, 30)
	nt.InjectCharge(right, 20)
	nt.Step()

	if !nt.DidFire(left) || !nt.DidFire(right) {
		t.Fatalf("setup failed: want both motor neurons to fire this tick")
	}
	// Firing resets both neurons' membrane potential to zero, so the
	// charge tie-break falls back to its default: Left wins ties.
	if a := s.GetAction(); a != Left {
		t.Errorf("GetAction() on simultaneous fire = %v, want Left (tie-break default)", a)
	}
}

func TestDriveAssociationThroughSTDPLearnsBusToMotor(t *testing.T) {
	nt, s := newTestSystem()
	bus := nt.AddNeuron(100, 0, 0)
	s.ConnectToBus([]engine.NeuronID{bus})
	nt.SetPlasticityEnabled(true)
	nt.Chemicals.Dopamine = 50

	left, _ := s.GetMotorNeuron(Left)
	nt.InjectCharge(bus, 150)
	nt.Step()
	s.ForceAction(Left, 150)
	nt.Step()

	if w := nt.SynapseWeight(bus, left); w <= 0 {
		t.Errorf("SynapseWeight(bus,left) = %d after coached pairing, want > 0 (STDP strengthened)", w)
	}
}

func TestGetAverageAndTotalWeightOverMultipleSources(t *testing.T) {
	nt, s := newTestSystem()
	bus := []engine.NeuronID{nt.AddNeuron(2, 0, 1), nt.AddNeuron(2, 0, 1)}
	s.ConnectToBus(bus)

	nt.SetPlasticityEnabled(false)
	if got := s.GetTotalWeight(Left); got != 0 {
		t.Errorf("GetTotalWeight(Left) = %d, want 0 before learning", got)
	}
	if got := s.GetAverageWeight(Left); got != 0 {
		t.Errorf("GetAverageWeight(Left) = %v, want 0 before learning", got)
	}
}

func TestInjectExplorationIsDeterministicForIdenticalNetworks(t *testing.T) {
	build := func() (*engine.Network, *System) {
		nt := engine.NewNetwork("test", 4, 4)
		nt.RootSeed = 7
		s := New(nt, Defaults())
		return nt, s
	}
	nt1, s1 := build()
	nt2, s2 := build()

	for i := 0; i < 10; i++ {
		s1.InjectExploration(50, 15)
		s2.InjectExploration(50, 15)
		l1, _ := s1.GetMotorNeuron(Left)
		r1, _ := s1.GetMotorNeuron(Right)
		l2, _ := s2.GetMotorNeuron(Left)
		r2, _ := s2.GetMotorNeuron(Right)
		if nt1.Charge(l1) != nt2.Charge(l2) || nt1.Charge(r1) != nt2.Charge(r2) {
			t.Fatalf("tick %d: exploration diverged between identically-seeded systems", i)
		}
		nt1.Step()
		nt2.Step()
	}
}
