// Copyright (c) 2024, The Spikecore Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package engine

import (
	"fmt"
	"runtime"
	"sync"

	errors "cogentcore.org/core/grr"
	"github.com/c2h5oh/datasize"
	"github.com/emer/emergent/v2/params"
	"github.com/emer/emergent/v2/timer"
)

// rangeFunc is the unit of work dispatched to the worker pool: apply some
// per-neuron computation over the half-open id range [lo, hi).
type rangeFunc func(lo, hi int)

// Network owns every neuron, synapse, and piece of shared state in the
// engine; external code holds only opaque NeuronIDs (spec.md 5). Concurrent
// Step calls on the same Network, or calls to AddNeuron/ConnectNeurons
// during a Step, are disallowed by the caller.
type Network struct {
	Name string

	Neurons         []Neuron
	Synapses        []Synapse            // contiguous arena, indexed by Neuron.SynapseBase
	DynamicSynapses map[NeuronID][]Synapse // overflow, keyed by pre-neuron id

	queue          *spikeQueue
	refractory     refractoryBitmap
	firedThisTick  []bool
	firedLastTick  []bool

	Chemicals Neuromodulators
	RootSeed  uint64

	PlasticityEnabled bool
	OperantMode       bool
	RazorEnabled      bool
	MaxSpikesPerTick  int

	lastCandidateCount int
	lastSpikeCount     int
	currentTick        Tick

	// NThreads is the size of the static worker pool used for the Leak and
	// Firing candidate-collection phases (spec.md 5). 1 means sequential.
	NThreads    int
	thrRanges   [][2]int
	thrChans    []chan rangeFunc
	thrTimes    []timer.Time
	funTimes    map[string]*timer.Time
	waitGp      sync.WaitGroup
}

// NewNetwork constructs an empty Network with room for the given neuron
// and synapse counts (spec.md 6's new_network(neuron_capacity,
// synapse_capacity)). Capacities are hints, not hard limits: arenas grow.
func NewNetwork(name string, neuronCapacity, synapseCapacity int) *Network {
	nt := &Network{
		Name:             name,
		Neurons:          make([]Neuron, 0, neuronCapacity),
		Synapses:         make([]Synapse, 0, synapseCapacity),
		DynamicSynapses:  make(map[NeuronID][]Synapse),
		queue:            newSpikeQueue(),
		Chemicals:        DefaultNeuromodulators(),
		RazorEnabled:     true,
		MaxSpikesPerTick: 1000,
		NThreads:         1,
		funTimes:         make(map[string]*timer.Time),
	}
	return nt
}

// AddNeuron appends a new neuron at rest and returns its id. Neurons are
// never destroyed.
func (nt *Network) AddNeuron(threshold, leak Charge, refractory Tick) NeuronID {
	id := NeuronID(len(nt.Neurons))
	nt.Neurons = append(nt.Neurons, newNeuron(threshold, leak, refractory))
	nt.firedThisTick = append(nt.firedThisTick, false)
	nt.firedLastTick = append(nt.firedLastTick, false)
	return id
}

// ConnectNeurons appends a plastic or fixed synapse from -> to with the
// given weight, clamped to [WeightMin, WeightMax]. It returns false (and
// does nothing) if either id is out of range -- the only engine operation
// that reports failure (spec.md 7).
func (nt *Network) ConnectNeurons(from, to NeuronID, weight Weight, plastic bool) bool {
	if int(from) >= len(nt.Neurons) || int(to) >= len(nt.Neurons) {
		return false
	}
	syn := newSynapse(to, weight, plastic)
	n := &nt.Neurons[from]
	canExtendArena := n.SynapseCount == 0 || n.SynapseBase+n.SynapseCount == len(nt.Synapses)
	if canExtendArena {
		if n.SynapseCount == 0 {
			n.SynapseBase = len(nt.Synapses)
		}
		nt.Synapses = append(nt.Synapses, syn)
		n.SynapseCount++
		return true
	}
	nt.DynamicSynapses[from] = append(nt.DynamicSynapses[from], syn)
	return true
}

// outgoing returns the contiguous-arena slice and the dynamic-overflow
// slice for pre's outgoing synapses, to be traversed in that order
// (spec.md 3).
func (nt *Network) outgoing(pre NeuronID) ([]Synapse, []Synapse) {
	n := &nt.Neurons[pre]
	var arena []Synapse
	if n.SynapseCount > 0 {
		arena = nt.Synapses[n.SynapseBase : n.SynapseBase+n.SynapseCount]
	}
	return arena, nt.DynamicSynapses[pre]
}

// forEachOutgoing calls fn for every outgoing synapse of pre, contiguous
// arena first, then dynamic overflow, allowing fn to mutate in place.
func (nt *Network) forEachOutgoing(pre NeuronID, fn func(*Synapse)) {
	n := &nt.Neurons[pre]
	if n.SynapseCount > 0 {
		s := nt.Synapses[n.SynapseBase : n.SynapseBase+n.SynapseCount]
		for i := range s {
			fn(&s[i])
		}
	}
	overflow := nt.DynamicSynapses[pre]
	for i := range overflow {
		fn(&overflow[i])
	}
}

// Reset zeroes current_tick, clears the spike queue, and resets every
// neuron's V and last_fired_tick. Synapses and weights -- and any UKS
// column allocation built atop this Network -- are preserved (spec.md 6).
func (nt *Network) Reset() {
	nt.currentTick = 0
	nt.queue.clear()
	for i := range nt.Neurons {
		nt.Neurons[i].reset()
	}
	for i := range nt.firedThisTick {
		nt.firedThisTick[i] = false
		nt.firedLastTick[i] = false
	}
}

// CurrentTick returns the tick the next Step will execute, which equals the
// number of Steps completed since construction or the last Reset.
func (nt *Network) CurrentTick() Tick { return nt.currentTick }

// NeuronCount returns the number of neurons created so far.
func (nt *Network) NeuronCount() int { return len(nt.Neurons) }

// SynapseCount returns the total number of synapses, arena plus overflow.
func (nt *Network) SynapseCount() int {
	n := len(nt.Synapses)
	for _, s := range nt.DynamicSynapses {
		n += len(s)
	}
	return n
}

// DidFire reports whether id fired on the most recently completed tick.
func (nt *Network) DidFire(id NeuronID) bool {
	if int(id) >= len(nt.firedThisTick) {
		return false
	}
	return nt.firedThisTick[id]
}

// Charge returns id's current membrane potential, or 0 if id is invalid.
func (nt *Network) Charge(id NeuronID) Charge {
	if int(id) >= len(nt.Neurons) {
		return 0
	}
	return nt.Neurons[id].V
}

// Neuron returns a copy of id's neuron state, or the zero value if id is
// invalid.
func (nt *Network) Neuron(id NeuronID) Neuron {
	if int(id) >= len(nt.Neurons) {
		return Neuron{}
	}
	return nt.Neurons[id]
}

// FiredThisTick returns the ids that fired on the most recently completed
// tick, in ascending order -- a deterministic, ordered-by-id
// representation chosen over the source's unordered_set (spec.md 9).
func (nt *Network) FiredThisTick() []NeuronID {
	out := make([]NeuronID, 0, nt.lastSpikeCount)
	for i, fired := range nt.firedThisTick {
		if fired {
			out = append(out, NeuronID(i))
		}
	}
	return out
}

// SynapseWeight returns the weight of the synapse from -> to, or 0 if no
// such synapse exists (spec.md 6). Linear scan, contiguous then overflow.
func (nt *Network) SynapseWeight(from, to NeuronID) Weight {
	if int(from) >= len(nt.Neurons) {
		return 0
	}
	arena, overflow := nt.outgoing(from)
	for _, s := range arena {
		if s.Target == to {
			return s.Weight
		}
	}
	for _, s := range overflow {
		if s.Target == to {
			return s.Weight
		}
	}
	return 0
}

// NeuronSynapseCount returns the number of outgoing synapses id owns,
// arena plus overflow.
func (nt *Network) NeuronSynapseCount(id NeuronID) int {
	if int(id) >= len(nt.Neurons) {
		return 0
	}
	arena, overflow := nt.outgoing(id)
	return len(arena) + len(overflow)
}

// LastCandidateCount returns the number of above-threshold candidates seen
// by the most recent firing phase, before any Razor capping.
func (nt *Network) LastCandidateCount() int { return nt.lastCandidateCount }

// LastSpikeCount returns the number of neurons that actually fired on the
// most recently completed tick.
func (nt *Network) LastSpikeCount() int { return nt.lastSpikeCount }

// SetPlasticityEnabled toggles whether the plasticity phase runs at all.
func (nt *Network) SetPlasticityEnabled(on bool) { nt.PlasticityEnabled = on }

// IsPlasticityEnabled reports the plasticity-enabled flag.
func (nt *Network) IsPlasticityEnabled() bool { return nt.PlasticityEnabled }

// SetOperantMode toggles eligibility+reward credit assignment (true) vs.
// immediate Pavlovian STDP (false).
func (nt *Network) SetOperantMode(on bool) { nt.OperantMode = on }

// IsOperantMode reports the operant-mode flag.
func (nt *Network) IsOperantMode() bool { return nt.OperantMode }

// SetRazorEnabled toggles the k-WTA firing cap.
func (nt *Network) SetRazorEnabled(on bool) { nt.RazorEnabled = on }

// IsRazorEnabled reports the Razor-enabled flag.
func (nt *Network) IsRazorEnabled() bool { return nt.RazorEnabled }

// SetMaxSpikesPerTick sets K, the Razor firing cap.
func (nt *Network) SetMaxSpikesPerTick(k int) { nt.MaxSpikesPerTick = k }

// GetMaxSpikesPerTick returns K.
func (nt *Network) GetMaxSpikesPerTick() int { return nt.MaxSpikesPerTick }

// InjectSpike simulates an externally-driven firing: id is enqueued at
// current_tick, to be delivered by the following Step's integration phase,
// and recorded in fired_this_tick immediately (spec.md 4.2). It also stamps
// last_fired_tick exactly as a natural fire does, so an injected spike is
// indistinguishable from a natural one to the plasticity phase's STDP
// timing. Out-of-range ids are silently ignored.
func (nt *Network) InjectSpike(id NeuronID) {
	if int(id) >= len(nt.Neurons) {
		return
	}
	nt.Neurons[id].LastFiredTick = nt.currentTick
	nt.queue.add(id, nt.currentTick)
	nt.firedThisTick[id] = true
	nt.lastSpikeCount++
}

// InjectCharge adds amount (which may be negative) to id's membrane
// potential with no clamping -- clamping is the Leak/Fire phases' job
// (spec.md 4.2). Out-of-range ids are silently ignored.
func (nt *Network) InjectCharge(id NeuronID, amount Charge) {
	if int(id) >= len(nt.Neurons) {
		return
	}
	nt.Neurons[id].addCharge(amount)
}

// InjectReward applies amount to every plastic synapse with a positive
// eligibility trace, scaled by the trace and the reward-scale factor, then
// zeroes the trace (spec.md 4.2/4.4).
func (nt *Network) InjectReward(amount int) {
	for i := range nt.Synapses {
		nt.Synapses[i].applyReward(amount)
	}
	for pre, syns := range nt.DynamicSynapses {
		for i := range syns {
			syns[i].applyReward(amount)
		}
		nt.DynamicSynapses[pre] = syns
	}
}

// RewardSignal is a convenience wrapper: it calls InjectReward directly,
// and in operant mode additionally injects amount/10 as a dopamine spike
// ("predictable reward is itself mildly rewarding"), matching the
// original's rewardSignal helper (_examples/original_source/src/network.cpp).
func (nt *Network) RewardSignal(amount int) {
	nt.InjectReward(amount)
	if nt.OperantMode {
		nt.Chemicals.SpikeDopamine(amount / 10)
	}
}

// SurpriseSignal spikes norepinephrine, the chemical correlate of novelty.
func (nt *Network) SurpriseSignal(delta int) { nt.Chemicals.SpikeNorepinephrine(delta) }

// CalmSignal spikes serotonin, the chemical correlate of a quiescent tick.
func (nt *Network) CalmSignal(delta int) { nt.Chemicals.SpikeSerotonin(delta) }

// SpikeDopamine spikes DA by delta.
func (nt *Network) SpikeDopamine(delta int) { nt.Chemicals.SpikeDopamine(delta) }

// SpikeNorepinephrine spikes NE by delta.
func (nt *Network) SpikeNorepinephrine(delta int) { nt.Chemicals.SpikeNorepinephrine(delta) }

// SpikeSerotonin spikes 5-HT by delta.
func (nt *Network) SpikeSerotonin(delta int) { nt.Chemicals.SpikeSerotonin(delta) }

// SpikeAcetylcholine spikes ACh by delta.
func (nt *Network) SpikeAcetylcholine(delta int) { nt.Chemicals.SpikeAcetylcholine(delta) }

// PanicReset is the manually-forced variant of step 8 of the tick
// (spec.md 6): it zeroes every neuron's V, clears the spike queue, clears
// both fired-sets, and forces NE to PostPanicNE.
func (nt *Network) PanicReset() {
	for i := range nt.Neurons {
		nt.Neurons[i].V = 0
	}
	nt.queue.clear()
	for i := range nt.firedThisTick {
		nt.firedThisTick[i] = false
		nt.firedLastTick[i] = false
	}
	nt.Chemicals.forcePostPanic()
}

// InjectNoise adds a per-neuron pseudo-random integer in [-amplitude,
// +amplitude], derived from the engine's deterministic LCG, to every
// neuron's V (spec.md 4.2).
func (nt *Network) InjectNoise(amplitude int) {
	nt.InjectNoiseToHidden(amplitude, nil)
}

// InjectNoiseToHidden is InjectNoise restricted to neurons not present in
// excluded. The original implementation hardcodes the exclusion to
// vision-owned retina neurons; since vision is out of scope here, the
// exclusion set is caller-supplied, generalizing to any collaborator that
// reserves a neuron range (SPEC_FULL.md 4).
func (nt *Network) InjectNoiseToHidden(amplitude int, excluded map[NeuronID]bool) {
	for i := range nt.Neurons {
		id := NeuronID(i)
		if excluded != nil && excluded[id] {
			continue
		}
		nt.Neurons[i].addCharge(Charge(lcgNoise(nt.currentTick, id, nt.RootSeed, amplitude)))
	}
}

// Chemicals4 returns the four neuromodulator channels as a tuple, matching
// spec.md 6's chemicals() probe.
func (nt *Network) Chemicals4() (dopamine, norepinephrine, serotonin, acetylcholine int) {
	return nt.Chemicals.Dopamine, nt.Chemicals.Norepinephrine, nt.Chemicals.Serotonin, nt.Chemicals.Acetylcholine
}

// EstimatedMemory estimates the resident size of the neuron and synapse
// arenas at their current capacities, for hosts sizing a Network against
// the scale presets in SPEC_FULL.md 4 (Test/Honeybee/Dragonfly).
func (nt *Network) EstimatedMemory() datasize.ByteSize {
	const neuronSize = 48 // approximate resident size of engine.Neuron
	const synapseSize = 8 // approximate resident size of engine.Synapse
	total := uint64(cap(nt.Neurons))*neuronSize + uint64(cap(nt.Synapses))*synapseSize
	return datasize.ByteSize(total)
}

// ApplyParams walks pars the way leabra.NetworkBase.ApplyParams(pars
// *params.Sheet, setMsg bool) walks a Sheet: each Sel's selector is matched
// against this Network before its Params map is applied, rather than
// flattening every selector in the sheet onto every target regardless of
// Sel. A Sel selects this Network when Sel.Sel is "Network", "*", or
// "#"+nt.Name (mirroring the teacher's bare-type-name/wildcard/"#name"
// selector forms), and is skipped otherwise -- the same ParamSets["Base"]
// pattern built in leabra/basic_test.go, narrowed to engine.Network's flat
// dotted-key surface instead of per-layer/per-path struct fields. Unknown
// keys within a matching Sel are logged and skipped rather than failing
// the whole sheet.
func (nt *Network) ApplyParams(pars *params.Sheet) error {
	var rerr error
	for _, sel := range *pars {
		if !SelMatches(sel.Sel, "Network", nt.Name) {
			continue
		}
		for key, val := range sel.Params {
			if err := nt.applyParam(key, val); err != nil {
				rerr = errors.Log(err)
			}
		}
	}
	return rerr
}

// SelMatches reports whether a params.Sel's selector picks out a component
// of styleType (its bare type name, e.g. "Network", "UKS", "Motor") and/or
// styleName (its instance name, matched via "#"+name), mirroring the
// bare-type-name/"*"-wildcard/"#name" selector forms leabra's ApplyParams
// matches against via emer.Styler. Exported so uks.UKS.ApplyParams and
// motor.System.ApplyParams share the same matching rule instead of each
// reimplementing it.
func SelMatches(sel, styleType, styleName string) bool {
	switch {
	case sel == "*":
		return true
	case sel == styleType:
		return true
	case len(sel) > 0 && sel[0] == '#':
		return sel[1:] == styleName
	default:
		return false
	}
}

func (nt *Network) applyParam(key, val string) error {
	switch key {
	case "Network.Razor.K":
		var k int
		if _, err := fmt.Sscanf(val, "%d", &k); err != nil {
			return fmt.Errorf("Network.ApplyParams: %s: %w", key, err)
		}
		nt.MaxSpikesPerTick = k
	case "Network.Razor.Enabled":
		nt.RazorEnabled = val == "true"
	case "Network.Plasticity.Enabled":
		nt.PlasticityEnabled = val == "true"
	case "Network.OperantMode":
		nt.OperantMode = val == "true"
	default:
		return fmt.Errorf("Network.ApplyParams: unrecognized selector %q", key)
	}
	return nil
}

// BuildThreads partitions the neuron id space into nthr static, equal-size
// ranges and starts the worker pool, mirroring
// leabra.NetworkBase.BuildThreads/StartThreads. Deterministic mode keeps
// nthr fixed and the partition static, per spec.md 5/9.
func (nt *Network) BuildThreads(nthr int) {
	nt.StopThreads()
	if nthr < 1 {
		nthr = 1
	}
	nt.NThreads = nthr
	n := len(nt.Neurons)
	nt.thrRanges = make([][2]int, nthr)
	chunk := (n + nthr - 1) / nthr
	if chunk == 0 {
		chunk = 1
	}
	for t := 0; t < nthr; t++ {
		lo := t * chunk
		hi := lo + chunk
		if lo > n {
			lo = n
		}
		if hi > n {
			hi = n
		}
		nt.thrRanges[t] = [2]int{lo, hi}
	}
	if nthr <= 1 {
		return
	}
	nt.thrChans = make([]chan rangeFunc, nthr)
	nt.thrTimes = make([]timer.Time, nthr)
	for t := 0; t < nthr; t++ {
		nt.thrChans[t] = make(chan rangeFunc)
	}
	nt.StartThreads()
}

// StartThreads launches the worker goroutines that service thrChans.
func (nt *Network) StartThreads() {
	for t := 0; t < nt.NThreads; t++ {
		go nt.thrWorker(t)
	}
}

// StopThreads closes every worker channel, terminating the pool.
func (nt *Network) StopThreads() {
	for _, ch := range nt.thrChans {
		close(ch)
	}
	nt.thrChans = nil
}

func (nt *Network) thrWorker(tt int) {
	rng := nt.thrRanges[tt]
	for fn := range nt.thrChans[tt] {
		nt.thrTimes[tt].Start()
		fn(rng[0], rng[1])
		nt.thrTimes[tt].Stop()
		nt.waitGp.Done()
	}
}

// thrRangeFun runs fn over every static range, threaded if NThreads > 1,
// sequential otherwise, exactly mirroring leabra.NetworkBase.ThrLayFun.
func (nt *Network) thrRangeFun(fn rangeFunc, funcName string) {
	nt.funTimerStart(funcName)
	if nt.NThreads <= 1 {
		fn(0, len(nt.Neurons))
	} else {
		for t := 0; t < nt.NThreads; t++ {
			nt.waitGp.Add(1)
			nt.thrChans[t] <- fn
		}
		nt.waitGp.Wait()
	}
	nt.funTimerStop(funcName)
}

func (nt *Network) funTimerStart(name string) {
	ft, ok := nt.funTimes[name]
	if !ok {
		ft = &timer.Time{}
		nt.funTimes[name] = ft
	}
	ft.Start()
}

func (nt *Network) funTimerStop(name string) {
	if ft, ok := nt.funTimes[name]; ok {
		ft.Stop()
	}
}

// TimerReport prints per-phase timing, matching
// leabra.NetworkBase.TimerReport, scaled down to the tick's four phases.
func (nt *Network) TimerReport() {
	fmt.Printf("TimerReport: %v, NThreads: %v\n", nt.Name, nt.NThreads)
	for name, ft := range nt.funTimes {
		fmt.Printf("\t%-12s \t%7.4f\n", name, ft.TotalSecs())
	}
}

// defaultWorkerCount picks a worker-pool size for large populations,
// mirroring the original's parallel threshold for the leak/candidate
// phases (_examples/original_source/src/network.cpp uses OpenMP above
// 100k neurons).
func defaultWorkerCount(n int) int {
	if n < 100_000 {
		return 1
	}
	nc := runtime.NumCPU()
	if nc < 1 {
		nc = 1
	}
	return nc
}
