// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package spikecore is the overall repository for an integer-only, event-driven
spiking neural engine implemented in the Go language (golang).

This top-level of the repository has no functional code -- everything is
organized into the following sub-packages:

* engine: the core tick-scheduled network -- leaky integrate-and-fire neurons,
plastic synapses, the neuromodulator vector, and the four-phase step loop that
drives them. This is the only package that owns neuron and synapse state.

* razor: the k-winners-take-all partial-selection gate used by the engine's
firing phase to enforce sparse, capped per-tick activity.

* uks: the Universal Knowledge Store built atop an *engine.Network -- a
recognition bus, a Request neuron, and one-shot cortical-column allocation
under winner-take-all competition.

* motor: a thin, plastic bus-to-motor-neuron template that a host wires a
column's or bus's output onto, for action selection.

Vision pipelines, agent demos, the hippocampal memory layer, loggers, and CLI
entry points are not part of this repository; they are hosts that drive the
packages above through their public operations.
*/
package spikecore
