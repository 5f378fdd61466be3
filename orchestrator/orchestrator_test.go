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

package orchestrator

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netfight/netfight/cas"
	"github.com/netfight/netfight/common"
	"github.com/netfight/netfight/viewer"
	"github.com/netfight/netfight/wire"
)

type fakeSender struct{ frames [][]byte }

func (f *fakeSender) Send(frame []byte) error {
	f.frames = append(f.frames, append([]byte(nil), frame...))
	return nil
}

type fixedInput struct{ mask uint16 }

func (f fixedInput) Sample() uint16 { return f.mask }

const testScript = `
function tick(frame, inputMask) {
	var cmds = [];
	if (inputMask & 0x08) { cmds.push({t: "move", dx: 1}); }
	if (inputMask & 0x04) { cmds.push({t: "move", dx: -1}); }
	return cmds;
}
`

func newTestOrchestrator() (*Orchestrator, *fakeSender, *fakeSender, *viewer.Stub) {
	store := cas.NewMemStore()
	assetCh := &fakeSender{}
	liveCh := &fakeSender{}
	v := viewer.NewStub()
	o := New(Config{
		LocalPlayer:         1,
		HistorySize:         128,
		FingerprintInterval: 16,
		Store:               store,
		AssetChannel:        assetCh,
		LiveChannel:         liveCh,
		View:                v,
		Input:               fixedInput{mask: 0},
	})
	return o, assetCh, liveCh, v
}

func TestStartsIdleAndGatesThroughLifecycle(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	require.Equal(t, PhaseIdle, o.Phase())

	o.OnScriptPush("fight.js", []byte(testScript))
	require.Equal(t, PhaseLoading, o.Phase())

	o.OnAssembled(wire.Manifest{ID: "m1"})
	require.Equal(t, PhaseArmed, o.Phase())

	require.NoError(t, o.StartLocal())
	require.Equal(t, PhaseArmed, o.Phase()) // remote hasn't signaled yet

	o.HandleGameStart()
	require.Equal(t, PhaseRunning, o.Phase())
}

func TestTickDoesNothingUntilRunning(t *testing.T) {
	o, _, liveCh, v := newTestOrchestrator()
	o.Tick(1.0, 1.0/60.0) // a full second's worth of ticks, but not running
	require.Len(t, liveCh.frames, 0)
	require.Len(t, v.States, 0)
}

func TestTickAdvancesSimulationAndEmitsInput(t *testing.T) {
	o, _, liveCh, v := newTestOrchestrator()
	o.OnScriptPush("fight.js", []byte(testScript))
	o.OnAssembled(wire.Manifest{ID: "m1"})
	require.NoError(t, o.StartLocal())
	o.HandleGameStart()
	require.Equal(t, PhaseRunning, o.Phase())

	period := 1.0 / 60.0
	o.Tick(period*3.5, period)

	require.Len(t, v.States, 3)
	require.Len(t, liveCh.frames, 3)

	decoded, err := wire.Decode(liveCh.frames[0])
	require.NoError(t, err)
	in, ok := decoded.(wire.Input)
	require.True(t, ok)
	require.Equal(t, uint16(1), in.Frame)
}

func TestStateHashEmittedEveryFingerprintInterval(t *testing.T) {
	o, _, liveCh, _ := newTestOrchestrator()
	o.OnScriptPush("fight.js", []byte(testScript))
	o.OnAssembled(wire.Manifest{ID: "m1"})
	require.NoError(t, o.StartLocal())
	o.HandleGameStart()

	period := 1.0 / 60.0
	o.Tick(period*16.5, period)

	var hashCount int
	for _, f := range liveCh.frames {
		decoded, err := wire.Decode(f)
		require.NoError(t, err)
		if _, ok := decoded.(wire.StateHash); ok {
			hashCount++
		}
	}
	require.Equal(t, 1, hashCount)
}

func TestHandleInputAndStateHashRejectBeforeScriptLoaded(t *testing.T) {
	o, _, _, _ := newTestOrchestrator()
	require.ErrorIs(t, o.HandleInput(wire.Input{Frame: 1}), common.ErrNotRunning)
	require.ErrorIs(t, o.HandleStateHash(wire.StateHash{Frame: 1}), common.ErrNotRunning)

	o.OnScriptPush("fight.js", []byte(testScript))
	require.NoError(t, o.HandleInput(wire.Input{Frame: 1}))
}

func TestAssetHandlersDelegateToAssetsEngine(t *testing.T) {
	o, assetCh, _, v := newTestOrchestrator()
	m := wire.Manifest{ID: "m1", Chunks: []wire.ChunkRef{{Hash: "sha256:aa", Size: 1}}}

	require.NoError(t, o.HandleManifest(m))
	require.Len(t, assetCh.frames, 1) // NeedChunks went out, chunk missing

	o.HandleChunk(wire.Chunk{Hash: "sha256:aa", Payload: []byte("x")})
	require.Len(t, v.Statuses, 1)
	require.Contains(t, v.Statuses[0], "assets ready")
}
