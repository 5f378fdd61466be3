// Copyright 2025 The netfight Authors
// This file is part of the netfight library.
//
// The netfight library is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// The netfight library is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with the netfight library. If not, see <http://www.gnu.org/licenses/>.

package rollback

import (
	"github.com/netfight/netfight/common"
	"github.com/netfight/netfight/log"
	"github.com/netfight/netfight/sim"
	"github.com/netfight/netfight/vm"
)

var logger = log.New("rollback")

// DefaultHistorySize is H, the history ring capacity. It must exceed the
// worst-case rollback distance with margin (spec section 3); 128 frames is
// a little over 2 seconds at 60Hz, generous for typical internet RTTs.
const DefaultHistorySize = 128

// VMFactory produces a fresh pair of per-player script VM instances cloned
// from the same loaded source, so player 1's and player 2's scopes never
// leak into each other (spec 4.5, 9 "Global vs per-player VM state").
type VMFactory func() (p1, p2 vm.VM)

// Engine is the rollback/predict engine of spec section 4.7. It owns the
// input ring buffers and the snapshot history, and is parameterized by
// which player is local so that setLocalInput always lands in the matching
// ring (spec 4.7 "Role awareness").
type Engine struct {
	localPlayer int // 1 or 2
	h           uint32

	p1Ring inputRing
	p2Ring inputRing

	seed      sim.State
	vmFactory VMFactory

	history []sim.State // slot f % h
	current sim.State
	latest  uint32 // monotonic frame count already committed; 0 = only the seed exists

	vm1, vm2 vm.VM
}

// NewEngine constructs a rollback engine seeded at seed, with a fresh VM
// pair from factory, and history capacity h (spec requires h >= 64).
func NewEngine(localPlayer int, h uint32, seed sim.State, factory VMFactory) *Engine {
	if h < 64 {
		h = DefaultHistorySize
	}
	p1, p2 := factory()
	e := &Engine{
		localPlayer: localPlayer,
		h:           h,
		seed:        seed,
		vmFactory:   factory,
		history:     make([]sim.State, h),
		current:     seed,
		latest:      0,
		vm1:         p1,
		vm2:         p2,
	}
	e.history[0] = seed
	return e
}

// Reset discards all history and VM state and reseeds the engine, matching
// spec 4.9 "On script apply, the rollback engine is discarded and a fresh
// one seeded from the initial state; history is wiped."
func (e *Engine) Reset(seed sim.State, factory VMFactory) {
	p1, p2 := factory()
	e.seed = seed
	e.vmFactory = factory
	e.history = make([]sim.State, e.h)
	e.history[0] = seed
	e.current = seed
	e.latest = 0
	e.vm1, e.vm2 = p1, p2
}

// SetLocalInput writes mask into the local player's ring slot for frame.
func (e *Engine) SetLocalInput(frame uint32, mask uint16) {
	e.localRing().set(frame, mask)
}

// SetRemoteInput writes mask into the remote player's ring slot for frame.
// It does not itself trigger a rollback: the caller (the live-channel
// engine, spec 4.8) is responsible for calling RollbackFrom when
// frame <= Latest().
func (e *Engine) SetRemoteInput(frame uint32, mask uint16) {
	e.remoteRing().set(frame, mask)
}

func (e *Engine) localRing() *inputRing {
	if e.localPlayer == 1 {
		return &e.p1Ring
	}
	return &e.p2Ring
}

func (e *Engine) remoteRing() *inputRing {
	if e.localPlayer == 1 {
		return &e.p2Ring
	}
	return &e.p1Ring
}

// p1Input and p2Input apply the lookup policy of spec 4.7: the local
// player's unwritten slot reads as zero; the remote player's unwritten slot
// falls back to its prediction - the mask of the nearest earlier written
// slot (see remoteValue).
func (e *Engine) p1Input(frame uint32) uint16 {
	if e.localPlayer == 1 {
		return e.localValue(&e.p1Ring, frame)
	}
	return e.remoteValue(&e.p1Ring, frame)
}

func (e *Engine) p2Input(frame uint32) uint16 {
	if e.localPlayer == 2 {
		return e.localValue(&e.p2Ring, frame)
	}
	return e.remoteValue(&e.p2Ring, frame)
}

func (e *Engine) localValue(r *inputRing, frame uint32) uint16 {
	m, _ := r.get(frame)
	return m
}

// remoteValue implements the glossary's "Prediction: ... assuming the
// remote input unchanged from its last known value": an unwritten slot
// walks back to the nearest earlier slot that was actually written, rather
// than only consulting frame-1 (which may itself be an unwritten gap),
// so a held direction keeps being predicted across multiple missing
// frames instead of decaying to neutral after one. This is a pure lookup
// over the ring's real contents - it never writes a prediction back into
// the ring - so it stays correct when replayed during RollbackFrom after
// an intermediate frame's real input has just been corrected.
func (e *Engine) remoteValue(r *inputRing, frame uint32) uint16 {
	for {
		if m, ok := r.get(frame); ok {
			return m
		}
		if frame == 0 {
			return 0
		}
		frame--
	}
}

// Latest returns the last committed monotonic frame number.
func (e *Engine) Latest() uint32 { return e.latest }

// GetLatest returns a copy of the latest committed snapshot.
func (e *Engine) GetLatest() sim.State { return e.current }

// HistoryAt returns the snapshot stored at frame's history slot and whether
// that slot's own Frame field actually matches frame (it won't, if the slot
// has since been overwritten by a later frame that aliases the same
// f mod H index).
func (e *Engine) HistoryAt(frame uint32) (sim.State, bool) {
	slot := e.history[frame%e.h]
	return slot, slot.Frame == uint16(frame&0xFFFF)
}

// SimulateTo advances from Latest() to target, committing each intermediate
// frame into history (spec 4.7).
func (e *Engine) SimulateTo(target uint32) {
	for f := e.latest + 1; f <= target; f++ {
		e.current = sim.Step(e.current, sim.InputMask(e.p1Input(f)), sim.InputMask(e.p2Input(f)), e.vm1, e.vm2)
		e.history[f%e.h] = e.current
		e.latest = f
	}
}

// RollbackFrom re-simulates every frame up to the current latest, because
// a remote input older than or equal to Latest() just arrived (spec 4.7).
//
// VM state strategy: this implementation always takes strategy (b) from
// spec 4.7/9 - a full VM re-initialization and replay from the seed - rather
// than snapshotting VM scope per history slot. A fresh VM pair is cloned
// from the factory and every frame from 1 to the current latest is replayed
// through the (now corrected) input rings. This is always correct
// regardless of how the VM's internal scope works, at the cost of replay
// length growing with match length; see DESIGN.md for the tradeoff
// discussion.
func (e *Engine) RollbackFrom(frame uint32) error {
	if frame > e.latest {
		// Nothing to roll back: the input arrived for a frame not yet
		// simulated; SimulateTo will pick it up naturally.
		return nil
	}
	if e.latest-frame >= e.h {
		logger.Warn("dropping remote input, too old to roll back to", "frame", frame, "latest", e.latest, "h", e.h)
		return common.ErrRingOverflow
	}

	target := e.latest
	p1, p2 := e.vmFactory()
	state := e.seed
	e.history[0] = state
	for f := uint32(1); f <= target; f++ {
		state = sim.Step(state, sim.InputMask(e.p1Input(f)), sim.InputMask(e.p2Input(f)), p1, p2)
		e.history[f%e.h] = state
	}
	e.vm1, e.vm2 = p1, p2
	e.current = state
	e.latest = target
	return nil
}
