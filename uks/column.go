// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uks

import "github.com/emer/spikecore/engine"

// Column sizing and firing thresholds, mirrored from
// _examples/original_source/include/bpagi/cortical_column.hpp.
const (
	ColumnInputNeurons      = 20
	ColumnPyramidalNeurons  = 50
	ColumnTotalNeurons      = ColumnInputNeurons + ColumnPyramidalNeurons + 2 // + output + inhibitory

	ColumnInputThreshold      = engine.Charge(3)
	ColumnPyramidalThreshold  = engine.Charge(5)
	ColumnOutputThreshold     = engine.Charge(8)
	ColumnInhibitoryThreshold = engine.Charge(3)
)

// Column is one cortical column: a fixed population of input and pyramidal
// neurons funneling into a single output neuron, with one inhibitory
// neuron for local balance. Before allocation a column's neurons exist in
// the Network but carry no synapses to the recognition bus; allocation
// (see UKS.allocateColumn) wires it to a specific bus pattern exactly once
// (spec.md 3, "Cortical column").
type Column struct {
	ID uint32

	InputNeurons     []engine.NeuronID
	PyramidalNeurons []engine.NeuronID
	OutputNeuron     engine.NeuronID
	InhibitoryNeuron engine.NeuronID

	Allocated       bool
	ActiveThisTick  bool
	AllocatedAtTick engine.Tick
	ActivationCount uint32
}

// newColumn allocates the column's neuron population in nt and returns the
// (still-unallocated, i.e. not yet wired to any bus pattern) Column.
func newColumn(nt *engine.Network, id uint32) Column {
	c := Column{ID: id}
	c.InputNeurons = make([]engine.NeuronID, ColumnInputNeurons)
	for i := range c.InputNeurons {
		c.InputNeurons[i] = nt.AddNeuron(ColumnInputThreshold, 1, 2)
	}
	c.PyramidalNeurons = make([]engine.NeuronID, ColumnPyramidalNeurons)
	for i := range c.PyramidalNeurons {
		c.PyramidalNeurons[i] = nt.AddNeuron(ColumnPyramidalThreshold, 1, 3)
	}
	c.OutputNeuron = nt.AddNeuron(ColumnOutputThreshold, 0, 2)
	c.InhibitoryNeuron = nt.AddNeuron(ColumnInhibitoryThreshold, 0, 2)
	return c
}

// reset deallocates the column: it is returned to the free pool, its
// bookkeeping cleared. This is distinct from engine.Network.Reset, which
// zeros dynamic neuron/synapse state but must never discard a column's
// allocation (spec.md 3, "UKS invariants": "reset() on the Network must
// never implicitly deallocate a Column").
func (c *Column) reset() {
	c.Allocated = false
	c.ActiveThisTick = false
	c.AllocatedAtTick = 0
	c.ActivationCount = 0
}

// CheckActive reports whether the column's output neuron fired on the most
// recent Step, mirroring cortical_column.cpp's checkActive.
func (c *Column) CheckActive(nt *engine.Network) bool {
	return nt.DidFire(c.OutputNeuron)
}

// NeuronCount returns the number of neurons this column occupies in the
// Network: inputs, pyramidals, output, and inhibitory.
func (c *Column) NeuronCount() int {
	return len(c.InputNeurons) + len(c.PyramidalNeurons) + 2
}
