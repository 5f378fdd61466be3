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

// Package livechan implements the live-input protocol engine of spec
// section 4.8: per-frame input send/receive with acks, and the periodic
// state-fingerprint exchange used for desync detection. The underlying
// channel is unordered and drops frames silently; this package never
// retransmits, matching spec section 5.
package livechan

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/netfight/netfight/log"
	"github.com/netfight/netfight/rollback"
	"github.com/netfight/netfight/sim"
	"github.com/netfight/netfight/wire"
)

// recentMismatchCapacity bounds how many StateHash mismatches the engine
// keeps for the operator console's "mismatches" command to inspect; a desync
// that never resolves would otherwise grow this log without limit over a
// long match.
const recentMismatchCapacity = 32

// Mismatch is one recorded StateHash disagreement, surfaced to the operator
// console for post-mortem inspection (spec 7's "opaque status channel").
type Mismatch struct {
	Frame uint32
	Local uint32
	Remote uint32
}

var logger = log.New("live")

// Sender is the outbound surface the live engine needs.
type Sender interface {
	Send(frame []byte) error
}

// Rollback is the subset of rollback.Engine the live engine drives.
type Rollback interface {
	SetRemoteInput(frame uint32, mask uint16)
	Latest() uint32
	RollbackFrom(frame uint32) error
	HistoryAt(frame uint32) (sim.State, bool)
}

// DesyncThreshold is the default number of consecutive StateHash
// mismatches before a DesyncDetected event fires. Spec 7/9 only requires
// logging; the event is a supplement (SPEC_FULL.md "Desync escalation").
const DesyncThreshold = 3

// Engine is the live-channel engine of spec section 4.8.
type Engine struct {
	out Sender
	rb  Rollback

	lastRemoteAck uint32
	desyncStreak  int
	recent        *lru.Cache

	// OnDesyncDetected, if set, is invoked once the consecutive-mismatch
	// streak reaches DesyncThreshold. Streak resets to zero on the next
	// matching hash.
	OnDesyncDetected func(frame uint32, local, remote uint32)
}

// NewEngine constructs a live-channel engine bound to out for sending and
// rb for steering the rollback engine.
func NewEngine(out Sender, rb Rollback) *Engine {
	recent, _ := lru.New(recentMismatchCapacity)
	return &Engine{out: out, rb: rb, recent: recent}
}

// RecentMismatches returns the StateHash disagreements still held in the
// bounded diagnostic log, oldest first.
func (e *Engine) RecentMismatches() []Mismatch {
	keys := e.recent.Keys()
	out := make([]Mismatch, 0, len(keys))
	for _, k := range keys {
		if v, ok := e.recent.Get(k); ok {
			out = append(out, v.(Mismatch))
		}
	}
	return out
}

// SendInput emits the local input for frame, plus the last-confirmed
// remote frame as the ack, per spec 4.9 "emit Input".
func (e *Engine) SendInput(frame uint32, mask uint16) error {
	return e.out.Send(wire.EncodeInput(wire.Input{
		Frame: uint16(frame),
		Mask:  mask,
		Ack:   uint16(e.lastRemoteAck),
	}))
}

// SendStateHash emits the periodic fingerprint, sent every 16 frames per
// spec 4.2/4.8.
func (e *Engine) SendStateHash(frame uint32, hash uint32) error {
	return e.out.Send(wire.EncodeStateHash(wire.StateHash{Frame: uint16(frame), Hash: hash}))
}

// HandleInput implements the receiving side of spec 4.8: write the remote
// input, and if it lands at or before the current latest, roll back to it.
// wireFrame is unwrapped against the rollback engine's current Latest()
// using wrap-aware arithmetic (spec 9).
func (e *Engine) HandleInput(in wire.Input) {
	frame := rollback.UnwrapFrame(in.Frame, e.rb.Latest())
	e.rb.SetRemoteInput(frame, in.Mask)
	if frame <= e.rb.Latest() {
		if err := e.rb.RollbackFrom(frame); err != nil {
			logger.Warn("rollback skipped", "frame", frame, "err", err)
		}
	}
	e.lastRemoteAck = rollback.UnwrapFrame(in.Ack, e.rb.Latest())
}

// LastRemoteAck returns the most recent ack the peer has reported, which
// the orchestrator uses to bound how far back history needs to stay valid.
func (e *Engine) LastRemoteAck() uint32 { return e.lastRemoteAck }

// HandleStateHash implements spec 4.8's StateHash receiver: compare against
// the local hash at the same frame if it is still within the history
// window; current contract is log-only, with an additive desync-streak
// escalation (SPEC_FULL.md).
func (e *Engine) HandleStateHash(s wire.StateHash) {
	frame := rollback.UnwrapFrame(s.Frame, e.rb.Latest())
	local, ok := e.rb.HistoryAt(frame)
	if !ok {
		// snapshot no longer in history; nothing to compare against.
		return
	}
	localHash := sim.Fingerprint(local)
	if localHash == s.Hash {
		e.desyncStreak = 0
		return
	}

	logger.Warn("state hash mismatch", "frame", frame, "local", localHash, "remote", s.Hash)
	e.recent.Add(frame, Mismatch{Frame: frame, Local: localHash, Remote: s.Hash})
	e.desyncStreak++
	if e.desyncStreak >= DesyncThreshold && e.OnDesyncDetected != nil {
		e.OnDesyncDetected(frame, localHash, s.Hash)
	}
}
