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

package cas

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashOf(t *testing.T) {
	data := []byte("hello fighter")
	sum := sha256.Sum256(data)
	want := "sha256:" + hex.EncodeToString(sum[:])
	require.Equal(t, want, HashOf(data))
}

func TestMemStorePutGetIdempotent(t *testing.T) {
	m := NewMemStore()
	h := HashOf([]byte("abc"))
	require.False(t, m.Has(h))

	m.Put(h, []byte("abc"))
	require.True(t, m.Has(h))
	got, ok := m.Get(h)
	require.True(t, ok)
	require.Equal(t, []byte("abc"), got)

	// idempotent: a second Put with different bytes under the same hash is
	// a no-op, matching spec 4.2's "caller guarantees the hash" contract.
	m.Put(h, []byte("xyz"))
	got, _ = m.Get(h)
	require.Equal(t, []byte("abc"), got)
}

func TestMemStoreMissing(t *testing.T) {
	m := NewMemStore()
	_, ok := m.Get("sha256:deadbeef")
	require.False(t, ok)
}

func TestDiskStorePutGetRoundTripsThroughCompression(t *testing.T) {
	d, err := OpenDiskStore(t.TempDir())
	require.NoError(t, err)
	defer d.Close()

	h := HashOf([]byte("compress me compress me compress me"))
	require.False(t, d.Has(h))

	d.Put(h, []byte("compress me compress me compress me"))
	require.True(t, d.Has(h))
	got, ok := d.Get(h)
	require.True(t, ok)
	require.Equal(t, []byte("compress me compress me compress me"), got)
}

func TestDiskStorePutIdempotent(t *testing.T) {
	d, err := OpenDiskStore(t.TempDir())
	require.NoError(t, err)
	defer d.Close()

	h := HashOf([]byte("abc"))
	d.Put(h, []byte("abc"))
	d.Put(h, []byte("xyz"))
	got, _ := d.Get(h)
	require.Equal(t, []byte("abc"), got)
}
