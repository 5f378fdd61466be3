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

// Package orchestrator owns the session lifecycle of spec section 4.9: the
// Idle/Loading/Armed/Running state machine and the fixed 60Hz tick
// accumulator that drives the rollback engine, the viewer, and the two wire
// channels once both peers are ready.
package orchestrator

import (
	"fmt"

	"github.com/netfight/netfight/assets"
	"github.com/netfight/netfight/cas"
	"github.com/netfight/netfight/common"
	"github.com/netfight/netfight/livechan"
	"github.com/netfight/netfight/log"
	"github.com/netfight/netfight/rollback"
	"github.com/netfight/netfight/sim"
	"github.com/netfight/netfight/viewer"
	"github.com/netfight/netfight/vm"
	"github.com/netfight/netfight/wire"
)

var logger = log.New("orchestrator")

// Phase is the lifecycle state of spec 4.9.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseArmed
	PhaseRunning
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseArmed:
		return "armed"
	case PhaseRunning:
		return "running"
	default:
		return "unknown"
	}
}

// AssetSender carries both the assets and live channel sends; transport.Channel
// satisfies it for either role.
type AssetSender interface {
	Send(frame []byte) error
}

// InputSource samples the local player's current button mask once per tick
// (spec 4.9 "sample local input"). The concrete implementation lives outside
// this module (a keyboard/gamepad poller); tests substitute a canned source.
type InputSource interface {
	Sample() uint16
}

// Config bundles the construction-time parameters an Orchestrator needs.
type Config struct {
	LocalPlayer         int // 1 or 2
	HistorySize         uint32
	FingerprintInterval uint32 // frames between StateHash emissions, spec 4.8
	Store               cas.Store
	AssetChannel        AssetSender
	LiveChannel         AssetSender
	View                viewer.Viewer
	Input               InputSource
}

// Orchestrator wires a CAS, an asset engine, a rollback engine, a live-input
// engine, and a viewer into the session lifecycle of spec 4.9. Exactly one
// Orchestrator exists per peer per match (spec 5 "Ownership": "the
// orchestrator exclusively owns the rollback engine and the CAS").
type Orchestrator struct {
	cfg Config

	phase Phase

	store cas.Store
	view  viewer.Viewer
	input InputSource

	assets *assets.Engine
	live   *livechan.Engine
	rb     *rollback.Engine

	fingerprintInterval uint32
	historySize         uint32

	scriptName string
	scriptBody []byte

	assetsReady  bool
	scriptLoaded bool
	localStarted bool
	remoteReady  bool

	// accumSeconds is the wall-time accumulator of spec 4.9's fixed-step
	// loop. It only advances while the lifecycle is Running.
	accumSeconds float64
}

// New constructs an Orchestrator in PhaseIdle. The rollback and live engines
// are not created until a script is loaded (spec 4.9: "On script apply,
// the rollback engine is discarded and a fresh one seeded").
func New(cfg Config) *Orchestrator {
	h := cfg.HistorySize
	if h < 64 {
		h = rollback.DefaultHistorySize
	}
	fi := cfg.FingerprintInterval
	if fi == 0 {
		fi = 16
	}
	o := &Orchestrator{
		cfg:                 cfg,
		phase:               PhaseIdle,
		store:               cfg.Store,
		view:                cfg.View,
		input:               cfg.Input,
		historySize:         h,
		fingerprintInterval: fi,
	}
	o.assets = assets.NewEngine(cfg.Store, o, cfg.AssetChannel)
	return o
}

// Phase returns the current lifecycle state.
func (o *Orchestrator) Phase() Phase { return o.phase }

// Store returns the CAS backing this orchestrator, so an operator console
// can push new assets directly into it alongside sending the Manifest.
func (o *Orchestrator) Store() cas.Store { return o.store }

// Assembled returns the fully-downloaded asset manifest, or
// common.ErrAssetIncomplete if the bundle is still missing chunks; the
// operator console surfaces this on "status" so an operator can tell a
// stalled download from one that simply hasn't started.
func (o *Orchestrator) Assembled() (wire.Manifest, error) {
	return o.assets.RequireAssembled()
}

// RecentMismatches surfaces the live engine's bounded StateHash mismatch
// log for the operator console, empty before a script has ever been loaded.
func (o *Orchestrator) RecentMismatches() []livechan.Mismatch {
	if o.live == nil {
		return nil
	}
	return o.live.RecentMismatches()
}

// OnAssembled implements assets.Notifier: an asset bundle finished
// assembling. The orchestrator hands it to the viewer and re-evaluates
// arming (spec 4.9 "gating conditions").
func (o *Orchestrator) OnAssembled(m wire.Manifest) {
	o.assetsReady = true
	if o.view != nil {
		o.view.OnAssetsReady(m, o.store)
	}
	o.tryArm()
}

// OnScriptPush implements assets.Notifier: a script arrived. This discards
// any existing rollback engine and reseeds (spec 4.9 "On script apply").
func (o *Orchestrator) OnScriptPush(name string, body []byte) {
	o.scriptName = name
	o.scriptBody = body
	o.scriptLoaded = true

	// factory builds the single "global" VM spec §3 describes, loading the
	// script once, then Clone()s it into the two per-player instances so
	// neither starts from the other's accumulated scope state.
	factory := func() (vm.VM, vm.VM) {
		global := vm.NewGojaVM()
		if !global.LoadSource(body) {
			err := fmt.Errorf("%w: %v", common.ErrScriptCompile, global.TakeLastError())
			logger.Warn("script failed to load", "name", name, "err", err)
			if o.view != nil {
				o.view.OnStatus(err.Error())
			}
		}
		return global.Clone(), global.Clone()
	}

	seed := sim.Seed()
	if o.rb == nil {
		o.rb = rollback.NewEngine(o.cfg.LocalPlayer, o.historySize, seed, factory)
	} else {
		o.rb.Reset(seed, factory)
	}
	o.live = livechan.NewEngine(o.cfg.LiveChannel, o.rb)
	o.live.OnDesyncDetected = o.onDesyncDetected
	o.accumSeconds = 0

	if o.view != nil {
		o.view.OnStatus(fmt.Sprintf("script loaded: %s", name))
	}
	o.tryArm()
}

// HandleManifest forwards an incoming Manifest frame to the asset engine.
func (o *Orchestrator) HandleManifest(m wire.Manifest) error { return o.assets.HandleManifest(m) }

// HandleChunk forwards an incoming Chunk frame to the asset engine.
func (o *Orchestrator) HandleChunk(c wire.Chunk) { o.assets.HandleChunk(c) }

// HandleNeedChunks forwards a NeedChunks request to the asset engine's
// sending side, honoring the transport's backpressure signal.
func (o *Orchestrator) HandleNeedChunks(n wire.NeedChunks, waitForLowWater func()) error {
	return o.assets.HandleNeedChunks(n, waitForLowWater)
}

// HandleScriptPush forwards an incoming ScriptPush frame to the asset
// engine, which in turn calls back into OnScriptPush above.
func (o *Orchestrator) HandleScriptPush(s wire.ScriptPush) { o.assets.HandleScriptPush(s) }

// HandleGameStart records that the remote peer has signaled readiness
// (spec 4.9's two-sided GameStart gate).
func (o *Orchestrator) HandleGameStart() {
	o.remoteReady = true
	o.tryArm()
}

// HandleInput forwards an incoming Input frame to the live engine. It
// returns common.ErrNotRunning if no script has been loaded yet, since
// there is no live engine or rollback history to apply the input to.
func (o *Orchestrator) HandleInput(in wire.Input) error {
	if o.live == nil {
		return common.ErrNotRunning
	}
	o.live.HandleInput(in)
	return nil
}

// HandleStateHash forwards an incoming StateHash frame to the live engine.
// Like HandleInput, it returns common.ErrNotRunning before a script has
// been loaded.
func (o *Orchestrator) HandleStateHash(s wire.StateHash) error {
	if o.live == nil {
		return common.ErrNotRunning
	}
	o.live.HandleStateHash(s)
	return nil
}

// StartLocal marks the local peer ready to begin (operator pressed "start",
// or the console issued the start command) and emits GameStart.
func (o *Orchestrator) StartLocal() error {
	o.localStarted = true
	if err := o.cfg.LiveChannel.Send(wire.EncodeGameStart()); err != nil {
		return err
	}
	o.tryArm()
	return nil
}

// tryArm implements spec 4.9's gate: both assets loaded, script loaded, and
// both peers have issued/observed GameStart, moves the lifecycle from
// Loading/Armed to Running. Until all conditions hold, the phase reflects
// partial progress but the accumulator stays at zero (see Tick).
func (o *Orchestrator) tryArm() {
	switch {
	case o.assetsReady && o.scriptLoaded && o.localStarted && o.remoteReady:
		if o.phase != PhaseRunning {
			o.phase = PhaseRunning
			o.accumSeconds = 0
			if o.view != nil {
				o.view.OnStatus("match running")
			}
		}
	case o.assetsReady && o.scriptLoaded:
		o.phase = PhaseArmed
	case o.assetsReady || o.scriptLoaded:
		o.phase = PhaseLoading
	default:
		o.phase = PhaseIdle
	}
}

// onDesyncDetected relays the live engine's escalated desync event to the
// viewer's opaque status channel (spec 7).
func (o *Orchestrator) onDesyncDetected(frame uint32, local, remote uint32) {
	if o.view != nil {
		o.view.OnStatus(fmt.Sprintf("desync detected at frame %d: local=%08x remote=%08x", frame, local, remote))
	}
}

// Tick implements spec 4.9's fixed-step accumulator: given the wall-clock
// seconds elapsed since the previous call, it drives zero or more 16.666ms
// simulation steps. If the lifecycle is not Running, the accumulator is held
// at zero so no backlog builds up while waiting (spec 4.9 "If gating
// conditions... are not met, the accumulator is reset to zero").
func (o *Orchestrator) Tick(elapsedSeconds, tickPeriod float64) {
	if o.phase != PhaseRunning || o.rb == nil {
		o.accumSeconds = 0
		return
	}

	o.accumSeconds += elapsedSeconds
	for o.accumSeconds >= tickPeriod {
		o.stepOnce()
		o.accumSeconds -= tickPeriod
	}
}

// stepOnce performs the ordered sequence of spec section 5: sample local
// input, commit it, simulate to the next frame, hand the snapshot to the
// viewer, emit Input, and every fingerprintInterval frames emit StateHash.
func (o *Orchestrator) stepOnce() {
	next := o.rb.Latest() + 1

	var mask uint16
	if o.input != nil {
		mask = o.input.Sample()
	}
	o.rb.SetLocalInput(next, mask)
	o.rb.SimulateTo(next)

	snapshot := o.rb.GetLatest()
	if o.view != nil {
		o.view.OnState(snapshot)
	}

	if err := o.live.SendInput(next, mask); err != nil {
		logger.Warn("failed to send input", "frame", next, "err", err)
	}

	if next%o.fingerprintInterval == 0 {
		hash := sim.Fingerprint(snapshot)
		if err := o.live.SendStateHash(next, hash); err != nil {
			logger.Warn("failed to send state hash", "frame", next, "err", err)
		}
	}
}
