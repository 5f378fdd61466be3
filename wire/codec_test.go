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

package wire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	m := Manifest{
		ID:    "hero-01",
		Type:  "sprite",
		Entry: "hero.json",
		Chunks: []ChunkRef{
			{Hash: "sha256:" + hexFill("11"), Size: 2048, Mime: "image/png"},
			{Hash: "sha256:" + hexFill("22"), Size: 512, Mime: "application/json"},
		},
		Meta: map[string]string{"atlas": "sha256:" + hexFill("22")},
	}
	enc, err := EncodeManifest(m)
	require.NoError(t, err)
	require.Equal(t, byte(OpManifest), enc[0])

	decAny, err := Decode(enc)
	require.NoError(t, err)
	dec, ok := decAny.(Manifest)
	require.True(t, ok)
	require.Equal(t, m, dec)
}

func TestNeedChunksRoundTrip(t *testing.T) {
	n := NeedChunks{Hashes: []string{"sha256:" + hexFill("aa"), "sha256:" + hexFill("bb")}}
	enc, err := EncodeNeedChunks(n)
	require.NoError(t, err)

	decAny, err := Decode(enc)
	require.NoError(t, err)
	dec, ok := decAny.(NeedChunks)
	require.True(t, ok)
	require.Equal(t, n, dec)
}

func TestEmptyNeedChunksIsValid(t *testing.T) {
	n := NeedChunks{}
	enc, err := EncodeNeedChunks(n)
	require.NoError(t, err)
	decAny, err := Decode(enc)
	require.NoError(t, err)
	dec := decAny.(NeedChunks)
	require.Len(t, dec.Hashes, 0)
}

func TestChunkRoundTrip(t *testing.T) {
	c := Chunk{Hash: "sha256:" + hexFill("cc"), Offset: 0, Payload: []byte("the quick brown fox")}
	enc, err := EncodeChunk(c)
	require.NoError(t, err)

	decAny, err := Decode(enc)
	require.NoError(t, err)
	dec, ok := decAny.(Chunk)
	require.True(t, ok)
	require.Equal(t, c, dec)
}

func TestScriptPushRoundTrip(t *testing.T) {
	s := ScriptPush{Name: "main.js", Body: []byte("function tick(f,i){return []}")}
	enc, err := EncodeScriptPush(s)
	require.NoError(t, err)

	decAny, err := Decode(enc)
	require.NoError(t, err)
	dec, ok := decAny.(ScriptPush)
	require.True(t, ok)
	require.Equal(t, s, dec)
}

func TestGameStartRoundTrip(t *testing.T) {
	enc := EncodeGameStart()
	require.Equal(t, []byte{byte(OpGameStart)}, enc)
	decAny, err := Decode(enc)
	require.NoError(t, err)
	_, ok := decAny.(GameStart)
	require.True(t, ok)
}

func TestInputRoundTrip(t *testing.T) {
	in := Input{Frame: 1234, Mask: 0x91, Ack: 1200}
	enc := EncodeInput(in)
	decAny, err := Decode(enc)
	require.NoError(t, err)
	dec, ok := decAny.(Input)
	require.True(t, ok)
	require.Equal(t, in, dec)
}

func TestStateHashRoundTrip(t *testing.T) {
	s := StateHash{Frame: 65535, Hash: 0xDEADBEEF}
	enc := EncodeStateHash(s)
	decAny, err := Decode(enc)
	require.NoError(t, err)
	dec, ok := decAny.(StateHash)
	require.True(t, ok)
	require.Equal(t, s, dec)
}

func TestDecodeMalformedFrameDoesNotPanic(t *testing.T) {
	_, err := Decode(nil)
	require.Error(t, err)

	_, err = Decode([]byte{byte(OpInput), 0x01})
	require.Error(t, err)

	_, err = Decode([]byte{0x99})
	require.Error(t, err)
}

func hexFill(pair string) string {
	out := ""
	for i := 0; i < 32; i++ {
		out += pair
	}
	return out
}
