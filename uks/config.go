// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package uks

import "github.com/emer/spikecore/engine"

// Config parameterizes a UKS: the size of its column pool, the width of its
// recognition bus, and whether novel input may allocate new columns
// (spec.md 3, "UKS invariants"). Mirrors
// _examples/original_source/include/bpagi/uks.hpp's UKS::Config.
type Config struct {
	NumColumns           int
	BusWidth             int
	RecognitionThreshold engine.Charge
	EnableLearning       bool
}

// Defaults returns the original's struct-literal defaults: a small pool
// suitable for tests and examples.
func Defaults() Config {
	return Config{
		NumColumns:           100,
		BusWidth:             64,
		RecognitionThreshold: 12,
		EnableLearning:       true,
	}
}

// PresetTest returns the original's "Test" scale preset: small and fast,
// for unit tests and interactive exploration
// (_examples/original_source/include/bpagi/config.hpp, Config::Test).
func PresetTest() Config {
	c := Defaults()
	c.NumColumns = 100
	c.BusWidth = 64
	return c
}

// PresetHoneybee returns the original's "Honeybee" scale preset: roughly
// 1M-neuron-scale hosts, 10k columns.
func PresetHoneybee() Config {
	c := Defaults()
	c.NumColumns = 10_000
	c.BusWidth = 128
	return c
}

// PresetDragonfly returns the original's "Dragonfly" scale preset: roughly
// 5M-neuron-scale hosts, 50k columns, matching small-mammal-cortex ambition.
func PresetDragonfly() Config {
	c := Defaults()
	c.NumColumns = 50_000
	c.BusWidth = 256
	return c
}
