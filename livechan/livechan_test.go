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

package livechan

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netfight/netfight/sim"
	"github.com/netfight/netfight/wire"
)

type fakeSender struct{ frames [][]byte }

func (f *fakeSender) Send(frame []byte) error {
	f.frames = append(f.frames, frame)
	return nil
}

type fakeRollback struct {
	latest      uint32
	remoteSets  []uint32
	rollbacks   []uint32
	history     map[uint32]sim.State
	rollbackErr error
}

func (r *fakeRollback) SetRemoteInput(frame uint32, mask uint16) { r.remoteSets = append(r.remoteSets, frame) }
func (r *fakeRollback) Latest() uint32                           { return r.latest }
func (r *fakeRollback) RollbackFrom(frame uint32) error {
	r.rollbacks = append(r.rollbacks, frame)
	return r.rollbackErr
}
func (r *fakeRollback) HistoryAt(frame uint32) (sim.State, bool) {
	st, ok := r.history[frame]
	return st, ok
}

func TestHandleInputTriggersRollbackWhenFrameNotAhead(t *testing.T) {
	rb := &fakeRollback{latest: 30}
	s := &fakeSender{}
	e := NewEngine(s, rb)

	e.HandleInput(wire.Input{Frame: 10, Mask: 0x08, Ack: 5})
	require.Equal(t, []uint32{10}, rb.remoteSets)
	require.Equal(t, []uint32{10}, rb.rollbacks)
	require.Equal(t, uint32(5), e.LastRemoteAck())
}

func TestHandleInputFutureFrameDoesNotRollback(t *testing.T) {
	rb := &fakeRollback{latest: 10}
	s := &fakeSender{}
	e := NewEngine(s, rb)

	e.HandleInput(wire.Input{Frame: 50, Mask: 0, Ack: 0})
	require.Equal(t, []uint32{50}, rb.remoteSets)
	require.Len(t, rb.rollbacks, 0)
}

func TestHandleStateHashLogsOnlyByDefault(t *testing.T) {
	st := sim.Seed()
	rb := &fakeRollback{latest: 0, history: map[uint32]sim.State{0: st}}
	s := &fakeSender{}
	e := NewEngine(s, rb)

	fired := false
	e.OnDesyncDetected = func(frame uint32, local, remote uint32) { fired = true }

	e.HandleStateHash(wire.StateHash{Frame: 0, Hash: sim.Fingerprint(st) + 1})
	require.False(t, fired) // single mismatch, below DesyncThreshold
}

func TestHandleStateHashEscalatesAfterThreshold(t *testing.T) {
	st := sim.Seed()
	rb := &fakeRollback{latest: 0, history: map[uint32]sim.State{0: st}}
	s := &fakeSender{}
	e := NewEngine(s, rb)

	gotFrame := ^uint32(0) // sentinel: stays unchanged unless the event fires
	e.OnDesyncDetected = func(frame uint32, local, remote uint32) { gotFrame = frame }

	for i := 0; i < DesyncThreshold; i++ {
		e.HandleStateHash(wire.StateHash{Frame: 0, Hash: sim.Fingerprint(st) + 1})
	}
	require.Equal(t, uint32(0), gotFrame)
}

func TestHandleStateHashMatchResetsStreak(t *testing.T) {
	st := sim.Seed()
	rb := &fakeRollback{latest: 0, history: map[uint32]sim.State{0: st}}
	s := &fakeSender{}
	e := NewEngine(s, rb)
	e.HandleStateHash(wire.StateHash{Frame: 0, Hash: sim.Fingerprint(st) + 1})
	e.HandleStateHash(wire.StateHash{Frame: 0, Hash: sim.Fingerprint(st)}) // matches, resets
	require.Equal(t, 0, e.desyncStreak)
}

func TestSendInputIncludesAck(t *testing.T) {
	rb := &fakeRollback{latest: 100}
	s := &fakeSender{}
	e := NewEngine(s, rb)
	e.HandleInput(wire.Input{Frame: 99, Mask: 0, Ack: 42})

	require.NoError(t, e.SendInput(101, 0x04))
	decoded, err := wire.Decode(s.frames[0])
	require.NoError(t, err)
	in := decoded.(wire.Input)
	require.Equal(t, uint16(101), in.Frame)
	require.Equal(t, uint16(42), in.Ack)
}
