// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package uks implements the Universal Knowledge Store: a pool of cortical
// columns that recognize bus patterns it has already learned and, on
// novelty, allocates a fresh column to learn the new one in one shot
// (spec.md 3-4, "UKS invariants" and "UKS state machine"). It is grounded
// on _examples/original_source/{include/bpagi,src}/uks.{hpp,cpp} and
// cortical_column.{hpp,cpp}.
package uks

import (
	"fmt"

	errors "cogentcore.org/core/grr"
	"github.com/emer/emergent/v2/params"
	"github.com/emer/spikecore/engine"
)

// StabilizationTicks is how many ticks UKS.Step waits, after a call to
// Present, before it begins injecting bus charge. In the original this
// gate lived in the out-of-scope Brain host
// (_examples/original_source/src/brain.cpp); SPEC_FULL.md assigns the
// behavior directly to UKS itself, so UKS.Present/Step consolidate it here.
const StabilizationTicks = 8

// requestThreshold/requestLeak/requestRefractory and globalInhibitorThreshold
// mirror buildWTACircuit's literal constants.
const (
	requestThreshold = engine.Charge(130)
	requestLeak      = engine.Charge(3)
	requestRefractory = engine.Tick(25)

	globalInhibitorThreshold = engine.Charge(3)

	busThreshold = engine.Charge(2)
)

// UKS wraps a Network with a recognition bus, a pool of Column "slots", a
// Request neuron (fires on unrecognized input), and a Global Inhibitor
// (enforces a single winning column). Present/Step must be interleaved
// with the underlying Network's own Step calls: Step reads the just-
// completed tick's firing results and stages bus injection for the tick
// that follows.
type UKS struct {
	network *engine.Network
	config  Config

	busNeurons       []engine.NeuronID
	columns          []Column
	requestNeuron    engine.NeuronID
	globalInhibitor  engine.NeuronID

	currentInput    []int // latched at the moment the stabilization gate opens
	pendingPattern  []int // staged by Present, consumed once the gate opens
	ticksSincePresent int
	gateOpen        bool

	activeColumn    int // -1 when none
	requestFired    bool

	totalAllocations  uint32
	totalRecognitions uint32
}

// New builds a UKS's neural infrastructure (bus, columns, WTA circuit) atop
// nt and returns the controller. nt should otherwise be empty of
// UKS-managed neurons; New adds config.BusWidth + config.NumColumns *
// ColumnTotalNeurons + 2 neurons to it.
func New(nt *engine.Network, config Config) *UKS {
	u := &UKS{
		network:     nt,
		config:      config,
		activeColumn: -1,
	}
	u.buildBus()
	u.buildColumns()
	u.buildWTACircuit()
	return u
}

func (u *UKS) buildBus() {
	u.busNeurons = make([]engine.NeuronID, u.config.BusWidth)
	for i := range u.busNeurons {
		u.busNeurons[i] = u.network.AddNeuron(busThreshold, 0, 1)
	}
}

func (u *UKS) buildColumns() {
	u.columns = make([]Column, u.config.NumColumns)
	for col := range u.columns {
		c := newColumn(u.network, uint32(col))

		for _, inp := range c.InputNeurons {
			for _, pyr := range c.PyramidalNeurons {
				if (uint64(inp)*7+uint64(pyr)*13)%5 < 2 {
					u.network.ConnectNeurons(inp, pyr, 5, false)
				}
			}
		}
		for _, pyr := range c.PyramidalNeurons {
			u.network.ConnectNeurons(pyr, c.OutputNeuron, 1, false)
		}
		for _, pyr := range c.PyramidalNeurons {
			u.network.ConnectNeurons(pyr, c.InhibitoryNeuron, 1, false)
		}
		for _, pyr := range c.PyramidalNeurons {
			u.network.ConnectNeurons(c.InhibitoryNeuron, pyr, -2, false)
		}
		for i, pi := range c.PyramidalNeurons {
			for j, pj := range c.PyramidalNeurons {
				if i == j {
					continue
				}
				if (uint64(pi)*11+uint64(pj)*17)%10 == 0 {
					u.network.ConnectNeurons(pi, pj, 1, false)
				}
			}
		}

		u.columns[col] = c
	}
}

func (u *UKS) buildWTACircuit() {
	u.requestNeuron = u.network.AddNeuron(requestThreshold, requestLeak, requestRefractory)
	u.globalInhibitor = u.network.AddNeuron(globalInhibitorThreshold, 0, 2)

	for _, bus := range u.busNeurons {
		u.network.ConnectNeurons(bus, u.requestNeuron, 1, false)
	}
	for _, c := range u.columns {
		for i := 0; i < 4; i++ {
			u.network.ConnectNeurons(c.OutputNeuron, u.requestNeuron, engine.WeightMin, false)
		}
	}

	for _, c := range u.columns {
		u.network.ConnectNeurons(c.OutputNeuron, u.globalInhibitor, 4, false)
	}
	for _, c := range u.columns {
		u.network.ConnectNeurons(u.globalInhibitor, c.OutputNeuron, -10, false)
	}

	for i := range u.columns {
		for j := range u.columns {
			if i == j {
				continue
			}
			u.network.ConnectNeurons(u.columns[i].OutputNeuron, u.columns[j].OutputNeuron, -6, false)
		}
	}
}

// Present stages a new bus pattern (bus-neuron indices to activate).
// Injection does not start immediately: per SPEC_FULL.md's stabilization
// window, UKS.Step only begins injecting charge into the pattern's bus
// neurons once StabilizationTicks have elapsed since this call, avoiding
// spurious novelty signals from a pattern that is still changing.
func (u *UKS) Present(pattern []int) {
	u.pendingPattern = append([]int(nil), pattern...)
	u.ticksSincePresent = 0
	u.gateOpen = false
	u.activeColumn = -1
	u.requestFired = false
}

// Step must be called once per tick, immediately after the underlying
// Network's Step. It evaluates the tick that just completed (recognition,
// novelty, or idle) and, once the stabilization gate is open, stages bus
// injection for the tick that follows.
func (u *UKS) Step() {
	responding := u.getRespondingColumns()

	anyActivity := len(responding) > 0
	surpriseEvent := false

	if anyActivity {
		winner := responding[0]
		u.activeColumn = int(winner)
		u.columns[winner].ActiveThisTick = true
		u.columns[winner].ActivationCount++
		u.totalRecognitions++
		u.requestFired = false
		u.network.SpikeDopamine(10)
	} else {
		u.requestFired = u.network.DidFire(u.requestNeuron)
		if u.requestFired {
			u.network.SurpriseSignal(50)
			surpriseEvent = true
			u.network.SpikeAcetylcholine(30)

			if u.config.EnableLearning && len(u.currentInput) > 0 {
				if free, ok := u.findFreeColumn(); ok {
					u.allocateColumn(free, u.currentInput)
					u.activeColumn = int(free)
					u.network.SpikeDopamine(30)
					u.currentInput = nil
				}
			}
		}
	}

	if !anyActivity && !surpriseEvent {
		u.network.CalmSignal(5)
		if u.network.Chemicals.Acetylcholine > 30 {
			u.network.Chemicals.Acetylcholine -= 2
		}
	}

	for i := range u.columns {
		u.columns[i].ActiveThisTick = u.columns[i].CheckActive(u.network)
	}

	u.advanceStabilization()
}

// advanceStabilization advances the tick counter started by Present and,
// once the stabilization window has elapsed, injects the pending pattern's
// bus charge for the Network's next Step (the acetylcholine-gated gain of
// Neuromodulators.BusInjectionGain, absorbing what the original splits
// across Brain::step and UKS::present/step).
func (u *UKS) advanceStabilization() {
	if len(u.pendingPattern) == 0 {
		return
	}
	u.ticksSincePresent++
	if u.ticksSincePresent < StabilizationTicks {
		return
	}
	if !u.gateOpen {
		u.currentInput = append([]int(nil), u.pendingPattern...)
		u.gateOpen = true
	}
	gain := u.network.Chemicals.BusInjectionGain()
	for _, idx := range u.pendingPattern {
		if idx < 0 || idx >= len(u.busNeurons) {
			continue
		}
		u.network.InjectCharge(u.busNeurons[idx], gain)
	}
}

// Reset deallocates every column and clears recognition state. This is a
// distinct operation from engine.Network.Reset, which never touches
// column allocation.
func (u *UKS) Reset() {
	for i := range u.columns {
		u.columns[i].reset()
	}
	u.currentInput = nil
	u.pendingPattern = nil
	u.ticksSincePresent = 0
	u.gateOpen = false
	u.activeColumn = -1
	u.requestFired = false
	u.totalAllocations = 0
	u.totalRecognitions = 0
}

// ApplyParams walks pars the way engine.Network.ApplyParams does,
// selecting the Sels whose Sel.Sel is "UKS" or "*" (UKS has no per-
// instance name to match against "#", unlike Network) and applying each
// key in a matching Sel's Params through applyParam. Unknown keys are
// logged and skipped rather than failing the whole sheet.
func (u *UKS) ApplyParams(pars *params.Sheet) error {
	var rerr error
	for _, sel := range *pars {
		if !engine.SelMatches(sel.Sel, "UKS", "") {
			continue
		}
		for key, val := range sel.Params {
			if err := u.applyParam(key, val); err != nil {
				rerr = errors.Log(err)
			}
		}
	}
	return rerr
}

func (u *UKS) applyParam(key, val string) error {
	switch key {
	case "UKS.EnableLearning":
		u.config.EnableLearning = val == "true"
	default:
		return fmt.Errorf("UKS.ApplyParams: unrecognized selector %q", key)
	}
	return nil
}

func (u *UKS) getRespondingColumns() []uint32 {
	var responding []uint32
	for i := range u.columns {
		if u.columns[i].Allocated && u.network.DidFire(u.columns[i].OutputNeuron) {
			responding = append(responding, uint32(i))
		}
	}
	return responding
}

func (u *UKS) findFreeColumn() (uint32, bool) {
	for i := range u.columns {
		if !u.columns[i].Allocated {
			return uint32(i), true
		}
	}
	return 0, false
}

// allocateColumn wires pattern's bus indices to columnID's input neurons:
// in-pattern indices get a weak excitatory edge, out-of-pattern indices get
// a maximally inhibitory one, so the column only fires on a close match
// (spec.md 4, "one-shot column allocation").
func (u *UKS) allocateColumn(columnID uint32, pattern []int) {
	c := &u.columns[columnID]
	c.Allocated = true
	c.AllocatedAtTick = u.network.CurrentTick()
	u.totalAllocations++

	inPattern := make(map[int]bool, len(pattern))
	for _, idx := range pattern {
		inPattern[idx] = true
	}

	for busIdx, bus := range u.busNeurons {
		weight := engine.WeightMin
		if inPattern[busIdx] {
			weight = 1
		}
		for _, input := range c.InputNeurons {
			u.network.ConnectNeurons(bus, input, weight, false)
		}
	}

	u.suppressOthers(columnID)
}

// suppressOthers injects inhibitory charge into every other free column's
// output neuron, preventing a second column from also allocating on the
// same tick (buildWTACircuit's lateral inhibition only fires synapses once
// a column is already active).
func (u *UKS) suppressOthers(winnerID uint32) {
	for i := range u.columns {
		if uint32(i) == winnerID || u.columns[i].Allocated {
			continue
		}
		u.network.InjectCharge(u.columns[i].OutputNeuron, -10)
	}
}

// ActiveColumn returns the column id that recognized or just learned the
// most recent pattern, and whether one exists.
func (u *UKS) ActiveColumn() (uint32, bool) {
	if u.activeColumn < 0 {
		return 0, false
	}
	return uint32(u.activeColumn), true
}

// DidRequestFire reports whether the Request neuron fired on the tick
// evaluated by the last Step call (novelty signal).
func (u *UKS) DidRequestFire() bool { return u.requestFired }

// AllocatedCount returns how many columns have been wired to a pattern.
func (u *UKS) AllocatedCount() int {
	n := 0
	for i := range u.columns {
		if u.columns[i].Allocated {
			n++
		}
	}
	return n
}

// FreeCount returns how many columns remain unallocated.
func (u *UKS) FreeCount() int { return len(u.columns) - u.AllocatedCount() }

// Column returns a copy of the column at id, and whether id is in range.
func (u *UKS) Column(id uint32) (Column, bool) {
	if int(id) >= len(u.columns) {
		return Column{}, false
	}
	return u.columns[id], true
}

// GetSearchDepth delegates to the Network's neuromodulator-driven search
// depth (spec.md glossary, "search depth").
func (u *UKS) GetSearchDepth() int {
	return u.network.Chemicals.SearchDepth()
}

// TotalAllocations returns the lifetime count of column allocations.
func (u *UKS) TotalAllocations() uint32 { return u.totalAllocations }

// TotalRecognitions returns the lifetime count of recognition events.
func (u *UKS) TotalRecognitions() uint32 { return u.totalRecognitions }

// CurrentInput returns the pattern latched when the stabilization gate
// most recently opened, nil if none is pending recognition.
func (u *UKS) CurrentInput() []int { return u.currentInput }

// BusNeurons returns the recognition bus's neuron ids, indexed the same
// way patterns passed to Present are.
func (u *UKS) BusNeurons() []engine.NeuronID { return u.busNeurons }

// RequestNeuron returns the Request neuron's id.
func (u *UKS) RequestNeuron() engine.NeuronID { return u.requestNeuron }

// GlobalInhibitor returns the Global Inhibitor neuron's id.
func (u *UKS) GlobalInhibitor() engine.NeuronID { return u.globalInhibitor }
