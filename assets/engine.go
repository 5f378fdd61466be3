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

// Package assets implements the asset-exchange engine of spec section 4.4:
// a manifest/need-list/chunk-stream state machine over a reliable, ordered
// transport, with backpressure on the sending side.
package assets

import (
	"github.com/netfight/netfight/cas"
	"github.com/netfight/netfight/common"
	"github.com/netfight/netfight/log"
	"github.com/netfight/netfight/wire"
)

var logger = log.New("assets")

// State names the per-peer-session receiving-side state machine of spec 4.4.
type State int

const (
	StateIdle State = iota
	StateAwaiting
	StateReady
)

// Sender is the minimal outbound surface the engine needs: send one frame.
// Backpressure is handled by the waitForLowWater callback passed to
// HandleNeedChunks, not through this interface. transport.Channel satisfies
// this.
type Sender interface {
	Send(frame []byte) error
}

// Notifier receives the engine's lifecycle events: a manifest bundle
// finished assembling, or a script arrived over the reliable channel.
type Notifier interface {
	OnAssembled(m wire.Manifest)
	OnScriptPush(name string, body []byte)
}

// Engine is the receiving+sending side of the asset-exchange protocol. One
// Engine is created per peer session.
type Engine struct {
	store   cas.Store
	notify  Notifier
	out     Sender
	state   State
	pending *wire.Manifest
}

// NewEngine constructs an asset engine bound to store for CAS access, notify
// for assembled/script-push callbacks, and out for sending NeedChunks /
// Chunk frames back to the peer.
func NewEngine(store cas.Store, notify Notifier, out Sender) *Engine {
	return &Engine{store: store, notify: notify, out: out, state: StateIdle}
}

// State returns the current receiving-side state.
func (e *Engine) State() State { return e.state }

// Pending returns the last manifest received, if any, and whether one has
// been received at all; it does not report assembly (see RequireAssembled).
func (e *Engine) Pending() (wire.Manifest, bool) {
	if e.pending == nil {
		return wire.Manifest{}, false
	}
	return *e.pending, true
}

// RequireAssembled returns the pending manifest only once every referenced
// chunk has arrived, and common.ErrAssetIncomplete otherwise; the operator
// console uses this to refuse starting a match against a half-downloaded
// bundle.
func (e *Engine) RequireAssembled() (wire.Manifest, error) {
	if e.state != StateReady || e.pending == nil {
		return wire.Manifest{}, common.ErrAssetIncomplete
	}
	return *e.pending, nil
}

// HandleManifest implements the receiving-side transition of spec 4.4: on
// Manifest receipt, compute the missing chunk set; if empty, the bundle is
// already assembled; otherwise emit NeedChunks and move to Awaiting.
func (e *Engine) HandleManifest(m wire.Manifest) error {
	e.pending = &m
	missing := e.missingChunks(m)
	if len(missing) == 0 {
		e.state = StateReady
		e.notify.OnAssembled(m)
		return nil
	}
	e.state = StateAwaiting
	frame, err := wire.EncodeNeedChunks(wire.NeedChunks{Hashes: missing})
	if err != nil {
		return err
	}
	return e.out.Send(frame)
}

// HandleChunk stores an incoming chunk and re-checks the pending manifest
// for completion. A chunk whose hash isn't referenced by the pending
// manifest is still stored (future-proofing per spec 4.4) but produces no
// state transition.
func (e *Engine) HandleChunk(c wire.Chunk) {
	e.store.Put(c.Hash, c.Payload)

	if e.pending == nil || e.state == StateReady {
		return
	}
	if !manifestReferences(*e.pending, c.Hash) {
		return
	}
	if e.allPresent(*e.pending) {
		e.state = StateReady
		e.notify.OnAssembled(*e.pending)
	}
}

// HandleScriptPush hands a received script straight to the notifier; spec
// 4.4 treats it as an independent frame on the same reliable channel.
func (e *Engine) HandleScriptPush(s wire.ScriptPush) {
	e.notify.OnScriptPush(s.Name, s.Body)
}

// HandleNeedChunks is the sending side of spec 4.4: for each requested
// hash present in the local CAS, stream one Chunk frame (offset 0, whole
// payload). A requested hash absent from the local CAS is silently
// skipped. waitForLowWater, if non-nil, is invoked before every send so the caller
// can block until the transport's buffered-amount-low notification fires.
func (e *Engine) HandleNeedChunks(n wire.NeedChunks, waitForLowWater func()) error {
	for _, hash := range n.Hashes {
		data, ok := e.store.Get(hash)
		if !ok {
			logger.Warn("skipping NeedChunks entry absent from local CAS", "hash", hash)
			continue
		}
		if waitForLowWater != nil {
			waitForLowWater()
		}
		frame, err := wire.EncodeChunk(wire.Chunk{Hash: hash, Offset: 0, Payload: data})
		if err != nil {
			return err
		}
		if err := e.out.Send(frame); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) missingChunks(m wire.Manifest) []string {
	var missing []string
	for _, c := range m.Chunks {
		if !e.store.Has(c.Hash) {
			missing = append(missing, c.Hash)
		}
	}
	if m.EffectiveType() == "sprite" {
		if atlas, ok := m.Meta["atlas"]; ok && !e.store.Has(atlas) {
			missing = append(missing, atlas)
		}
	}
	return missing
}

func (e *Engine) allPresent(m wire.Manifest) bool {
	return len(e.missingChunks(m)) == 0
}

func manifestReferences(m wire.Manifest, hash string) bool {
	for _, c := range m.Chunks {
		if c.Hash == hash {
			return true
		}
	}
	if m.EffectiveType() == "sprite" {
		if atlas, ok := m.Meta["atlas"]; ok && atlas == hash {
			return true
		}
	}
	return false
}
