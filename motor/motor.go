// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package motor implements the plastic bus->motor-neuron template: a pair
// of motor neurons whose incoming weights from the UKS recognition bus (or
// from specific column outputs) start at zero and are shaped entirely by
// STDP/operant reward, so a visual pattern comes to trigger an action only
// after it has been trained to (spec.md component table, "Motor
// interface"). Grounded on
// _examples/original_source/{include/bpagi,src}/motor.{hpp,cpp}.
package motor

import (
	"fmt"

	errors "cogentcore.org/core/grr"
	"github.com/emer/emergent/v2/params"
	"github.com/emer/spikecore/engine"
)

// Action identifies which motor neuron (if any) is driving behavior.
type Action int

const (
	Left Action = iota
	Right
	None
)

// Config parameterizes the two motor neurons and the default exploration
// behavior, mirroring motor.hpp's MotorSystem::Config.
type Config struct {
	MotorThreshold    engine.Charge
	MotorLeak         engine.Charge
	MotorRefractory   engine.Tick
	ExplorationRate   int // percent chance [0,100) each call
	ExplorationAmount engine.Charge
}

// Defaults returns the original's struct defaults.
func Defaults() Config {
	return Config{
		MotorThreshold:    8,
		MotorLeak:         2,
		MotorRefractory:   3,
		ExplorationRate:   30,
		ExplorationAmount: 15,
	}
}

// System owns the two motor neurons and every connection wired to them. It
// never steps the Network itself -- the host calls network.Step as usual;
// System only injects charge and reads fired/charge state between ticks.
type System struct {
	network *engine.Network
	config  Config

	left  engine.NeuronID
	right engine.NeuronID

	leftSources  []engine.NeuronID
	rightSources []engine.NeuronID
}

// New creates the two motor neurons in nt and returns the controller.
func New(nt *engine.Network, config Config) *System {
	s := &System{network: nt, config: config}
	s.left = nt.AddNeuron(config.MotorThreshold, config.MotorLeak, config.MotorRefractory)
	s.right = nt.AddNeuron(config.MotorThreshold, config.MotorLeak, config.MotorRefractory)
	return s
}

// ConnectToBus wires every bus neuron to both motor neurons with plastic,
// zero-initialized synapses ("tabula rasa" -- motor.cpp's connectToBus).
// Which connections eventually strengthen, and toward which action, is
// left entirely to subsequent STDP/reward.
func (s *System) ConnectToBus(busNeurons []engine.NeuronID) {
	for _, bus := range busNeurons {
		s.network.ConnectNeurons(bus, s.left, 0, true)
		s.leftSources = append(s.leftSources, bus)
		s.network.ConnectNeurons(bus, s.right, 0, true)
		s.rightSources = append(s.rightSources, bus)
	}
}

// ConnectColumn wires a single column output neuron directly to the motor
// neuron for action, plastic, at initialWeight (motor.cpp's
// connectColumn). This lets a specific learned concept drive a specific
// action without routing through the whole bus.
func (s *System) ConnectColumn(columnOutput engine.NeuronID, action Action, initialWeight engine.Weight) {
	target := s.neuronFor(action)
	s.network.ConnectNeurons(columnOutput, target, initialWeight, true)
	switch action {
	case Left:
		s.leftSources = append(s.leftSources, columnOutput)
	case Right:
		s.rightSources = append(s.rightSources, columnOutput)
	}
}

// ForceAction is the "coach" directly stimulating a motor neuron so it
// fires on the next Step, creating the post-synaptic spike STDP needs to
// strengthen whatever pre-synaptic pattern was just presented
// (motor.cpp's forceAction). None is a no-op.
func (s *System) ForceAction(action Action, amount engine.Charge) {
	switch action {
	case Left:
		s.network.InjectCharge(s.left, amount)
	case Right:
		s.network.InjectCharge(s.right, amount)
	}
}

// InjectExploration independently rolls each motor neuron against
// explorationRate (percent, [0,100)) and injects amount of charge on a
// hit, so operant conditioning has actions to attach reward to even
// before any association is learned. Rolls are deterministic -- derived
// from the Network's documented (current_tick, neuron_id, root_seed) LCG
// via DeterministicRoll rather than a shared mutable RNG (spec.md 5; the
// original's std::mt19937 thread-local generator is an explicit deviation
// recorded in DESIGN.md).
func (s *System) InjectExploration(explorationRate int, amount engine.Charge) {
	if s.network.DeterministicRoll(s.left) < explorationRate {
		s.network.InjectCharge(s.left, amount)
	}
	if s.network.DeterministicRoll(s.right) < explorationRate {
		s.network.InjectCharge(s.right, amount)
	}
}

// GetAction reports which motor neuron fired on the most recent Step. Both
// firing breaks the tie toward whichever currently holds more charge
// (motor.cpp's getAction).
func (s *System) GetAction() Action {
	leftFired := s.network.DidFire(s.left)
	rightFired := s.network.DidFire(s.right)
	switch {
	case leftFired && !rightFired:
		return Left
	case rightFired && !leftFired:
		return Right
	case leftFired && rightFired:
		if s.network.Charge(s.left) >= s.network.Charge(s.right) {
			return Left
		}
		return Right
	default:
		return None
	}
}

// DidFire reports whether action's motor neuron fired on the most recent
// Step. None always reports false.
func (s *System) DidFire(action Action) bool {
	switch action {
	case Left:
		return s.network.DidFire(s.left)
	case Right:
		return s.network.DidFire(s.right)
	default:
		return false
	}
}

// GetCharge returns action's motor neuron's current membrane potential.
// None always reports zero.
func (s *System) GetCharge(action Action) engine.Charge {
	switch action {
	case Left:
		return s.network.Charge(s.left)
	case Right:
		return s.network.Charge(s.right)
	default:
		return 0
	}
}

// GetMotorNeuron returns the underlying neuron id for action.
func (s *System) GetMotorNeuron(action Action) (engine.NeuronID, bool) {
	switch action {
	case Left:
		return s.left, true
	case Right:
		return s.right, true
	default:
		return 0, false
	}
}

// GetAverageWeight returns the mean synaptic weight across every
// connection wired toward action's motor neuron, a rough measure of how
// strongly the system has learned that association.
func (s *System) GetAverageWeight(action Action) float64 {
	sources, target := s.sourcesAndTarget(action)
	if len(sources) == 0 {
		return 0
	}
	total := 0
	for _, src := range sources {
		total += int(s.network.SynapseWeight(src, target))
	}
	return float64(total) / float64(len(sources))
}

// GetTotalWeight returns the sum of every connection wired toward action's
// motor neuron.
func (s *System) GetTotalWeight(action Action) int {
	sources, target := s.sourcesAndTarget(action)
	total := 0
	for _, src := range sources {
		total += int(s.network.SynapseWeight(src, target))
	}
	return total
}

// ApplyParams walks pars the way engine.Network.ApplyParams does, selecting
// the Sels whose Sel.Sel is "Motor" or "*" (System has no per-instance name
// to match against "#") and applying each key in a matching Sel's Params
// through applyParam. Unknown keys are logged and skipped rather than
// failing the whole sheet.
func (s *System) ApplyParams(pars *params.Sheet) error {
	var rerr error
	for _, sel := range *pars {
		if !engine.SelMatches(sel.Sel, "Motor", "") {
			continue
		}
		for key, val := range sel.Params {
			if err := s.applyParam(key, val); err != nil {
				rerr = errors.Log(err)
			}
		}
	}
	return rerr
}

func (s *System) applyParam(key, val string) error {
	switch key {
	case "Motor.Threshold":
		c, err := parseCharge(key, val)
		if err != nil {
			return err
		}
		s.config.MotorThreshold = c
		s.network.Neurons[s.left].Threshold = c
		s.network.Neurons[s.right].Threshold = c
	case "Motor.Leak":
		c, err := parseCharge(key, val)
		if err != nil {
			return err
		}
		s.config.MotorLeak = c
		s.network.Neurons[s.left].Leak = c
		s.network.Neurons[s.right].Leak = c
	case "Motor.ExplorationRate":
		var r int
		if _, err := fmt.Sscanf(val, "%d", &r); err != nil {
			return fmt.Errorf("Motor.ApplyParams: %s: %w", key, err)
		}
		s.config.ExplorationRate = r
	case "Motor.ExplorationAmount":
		c, err := parseCharge(key, val)
		if err != nil {
			return err
		}
		s.config.ExplorationAmount = c
	default:
		return fmt.Errorf("Motor.ApplyParams: unrecognized selector %q", key)
	}
	return nil
}

func parseCharge(key, val string) (engine.Charge, error) {
	var c int
	if _, err := fmt.Sscanf(val, "%d", &c); err != nil {
		return 0, fmt.Errorf("Motor.ApplyParams: %s: %w", key, err)
	}
	return engine.Charge(c), nil
}

func (s *System) neuronFor(action Action) engine.NeuronID {
	if action == Right {
		return s.right
	}
	return s.left
}

func (s *System) sourcesAndTarget(action Action) ([]engine.NeuronID, engine.NeuronID) {
	if action == Right {
		return s.rightSources, s.right
	}
	return s.leftSources, s.left
}
