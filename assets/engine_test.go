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

package assets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/netfight/netfight/cas"
	"github.com/netfight/netfight/common"
	"github.com/netfight/netfight/wire"
)

type fakeSender struct {
	frames [][]byte
}

func (f *fakeSender) Send(frame []byte) error {
	f.frames = append(f.frames, append([]byte(nil), frame...))
	return nil
}

type fakeNotifier struct {
	assembled   []wire.Manifest
	scriptPush  []wire.ScriptPush
}

func (n *fakeNotifier) OnAssembled(m wire.Manifest) { n.assembled = append(n.assembled, m) }
func (n *fakeNotifier) OnScriptPush(name string, body []byte) {
	n.scriptPush = append(n.scriptPush, wire.ScriptPush{Name: name, Body: body})
}

func TestManifestWithAllChunksPresentGoesReadyImmediately(t *testing.T) {
	store := cas.NewMemStore()
	h := cas.HashOf([]byte("mesh-bytes"))
	store.Put(h, []byte("mesh-bytes"))

	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	m := wire.Manifest{ID: "hero", Entry: "hero.mesh", Chunks: []wire.ChunkRef{{Hash: h, Size: 10, Mime: "model/gltf"}}}
	require.NoError(t, e.HandleManifest(m))
	require.Equal(t, StateReady, e.State())
	require.Len(t, n.assembled, 1)
	require.Len(t, s.frames, 0) // no NeedChunks sent, nothing missing
}

func TestManifestMissingChunksEmitsNeedChunksThenAssembles(t *testing.T) {
	store := cas.NewMemStore()
	h1 := cas.HashOf([]byte("chunk1"))
	h2 := cas.HashOf([]byte("chunk2"))

	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	m := wire.Manifest{
		ID:    "hero",
		Entry: "hero.mesh",
		Chunks: []wire.ChunkRef{
			{Hash: h1, Size: 6, Mime: "model/gltf"},
			{Hash: h2, Size: 6, Mime: "model/gltf"},
		},
	}
	require.NoError(t, e.HandleManifest(m))
	require.Equal(t, StateAwaiting, e.State())
	require.Len(t, s.frames, 1)

	decoded, err := wire.Decode(s.frames[0])
	require.NoError(t, err)
	need := decoded.(wire.NeedChunks)
	require.ElementsMatch(t, []string{h1, h2}, need.Hashes)

	e.HandleChunk(wire.Chunk{Hash: h1, Payload: []byte("chunk1")})
	require.Equal(t, StateAwaiting, e.State()) // still missing h2

	e.HandleChunk(wire.Chunk{Hash: h2, Payload: []byte("chunk2")})
	require.Equal(t, StateReady, e.State())
	require.Len(t, n.assembled, 1)
}

func TestSpriteManifestRequiresAtlas(t *testing.T) {
	store := cas.NewMemStore()
	spriteHash := cas.HashOf([]byte("sprite-sheet"))
	atlasHash := cas.HashOf([]byte(`{"cellWidth":32}`))

	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	m := wire.Manifest{
		ID:    "hero",
		Type:  "sprite",
		Entry: "hero.png",
		Chunks: []wire.ChunkRef{
			{Hash: spriteHash, Size: 100, Mime: "image/png"},
		},
		Meta: map[string]string{"atlas": atlasHash},
	}
	require.NoError(t, e.HandleManifest(m))
	require.Equal(t, StateAwaiting, e.State())

	e.HandleChunk(wire.Chunk{Hash: spriteHash, Payload: []byte("sprite-sheet")})
	require.Equal(t, StateAwaiting, e.State()) // atlas still missing

	e.HandleChunk(wire.Chunk{Hash: atlasHash, Payload: []byte(`{"cellWidth":32}`)})
	require.Equal(t, StateReady, e.State())
}

func TestUnreferencedChunkIsStoredButNoStateChange(t *testing.T) {
	store := cas.NewMemStore()
	h1 := cas.HashOf([]byte("needed"))
	stray := cas.HashOf([]byte("unrelated"))

	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	m := wire.Manifest{ID: "hero", Entry: "hero.mesh", Chunks: []wire.ChunkRef{{Hash: h1, Size: 6, Mime: "model/gltf"}}}
	require.NoError(t, e.HandleManifest(m))

	e.HandleChunk(wire.Chunk{Hash: stray, Payload: []byte("unrelated")})
	require.Equal(t, StateAwaiting, e.State())
	require.True(t, store.Has(stray))
}

func TestHandleNeedChunksStreamsPresentChunksAndSkipsMissing(t *testing.T) {
	store := cas.NewMemStore()
	h1 := cas.HashOf([]byte("present"))
	store.Put(h1, []byte("present"))
	missingHash := "sha256:" + "0000000000000000000000000000000000000000000000000000000000000000"[:64]

	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	waits := 0
	err := e.HandleNeedChunks(wire.NeedChunks{Hashes: []string{h1, missingHash}}, func() { waits++ })
	require.NoError(t, err)
	require.Len(t, s.frames, 1) // only the present chunk was sent
	require.Equal(t, 1, waits)

	decoded, err := wire.Decode(s.frames[0])
	require.NoError(t, err)
	chunk := decoded.(wire.Chunk)
	require.Equal(t, h1, chunk.Hash)
	require.Equal(t, []byte("present"), chunk.Payload)
}

func TestEmptyNeedChunksSendsNothing(t *testing.T) {
	store := cas.NewMemStore()
	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	err := e.HandleNeedChunks(wire.NeedChunks{}, nil)
	require.NoError(t, err)
	require.Len(t, s.frames, 0)
}

func TestRequireAssembledRejectsIncompleteBundle(t *testing.T) {
	store := cas.NewMemStore()
	h1 := cas.HashOf([]byte("chunk1"))
	h2 := cas.HashOf([]byte("chunk2"))

	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	_, err := e.RequireAssembled()
	require.ErrorIs(t, err, common.ErrAssetIncomplete)

	m := wire.Manifest{
		ID:    "hero",
		Entry: "hero.mesh",
		Chunks: []wire.ChunkRef{
			{Hash: h1, Size: 6, Mime: "model/gltf"},
			{Hash: h2, Size: 6, Mime: "model/gltf"},
		},
	}
	require.NoError(t, e.HandleManifest(m))
	_, err = e.RequireAssembled()
	require.ErrorIs(t, err, common.ErrAssetIncomplete)

	e.HandleChunk(wire.Chunk{Hash: h1, Payload: []byte("chunk1")})
	e.HandleChunk(wire.Chunk{Hash: h2, Payload: []byte("chunk2")})

	got, err := e.RequireAssembled()
	require.NoError(t, err)
	require.Equal(t, "hero", got.ID)
}

func TestScriptPushIsHandedToNotifier(t *testing.T) {
	store := cas.NewMemStore()
	n := &fakeNotifier{}
	s := &fakeSender{}
	e := NewEngine(store, n, s)

	e.HandleScriptPush(wire.ScriptPush{Name: "main.js", Body: []byte("function tick(){return []}")})
	require.Len(t, n.scriptPush, 1)
	require.Equal(t, "main.js", n.scriptPush[0].Name)
}
