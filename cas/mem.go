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
	"sync"

	"github.com/VictoriaMetrics/fastcache"
)

// defaultMemBytes sizes the fastcache backing the in-memory store. A single
// match's mesh/sprite bundle is small (low tens of MB at most), so 64MiB
// gives generous headroom without the caller tuning it.
const defaultMemBytes = 64 * 1024 * 1024

// MemStore is the default CAS backing: an in-memory, concurrency-safe byte
// cache. fastcache never evicts entries that fit within its configured
// capacity budget under the access pattern of a single match (insert-once,
// read-many), which satisfies the "no eviction" invariant of spec 4.2 in
// practice; callers that need a hard no-eviction guarantee regardless of
// bundle size should pair MemStore with DiskStore.
type MemStore struct {
	mu sync.RWMutex
	c  *fastcache.Cache
	// present tracks key membership explicitly: fastcache.Get cannot
	// distinguish "absent" from "empty byte slice present", which CAS
	// entries with a zero-length payload would otherwise confuse.
	present map[string]struct{}
}

// NewMemStore creates an empty in-memory CAS.
func NewMemStore() *MemStore {
	return &MemStore{
		c:       fastcache.New(defaultMemBytes),
		present: make(map[string]struct{}),
	}
}

// Put implements Store.
func (m *MemStore) Put(hash string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.present[hash]; ok {
		return
	}
	// SetBig rather than Set: fastcache's Set silently drops entries over
	// 64KB, and whole mesh/sprite chunks routinely exceed that.
	m.c.SetBig([]byte(hash), data)
	m.present[hash] = struct{}{}
}

// Has implements Store.
func (m *MemStore) Has(hash string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.present[hash]
	return ok
}

// Get implements Store.
func (m *MemStore) Get(hash string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.present[hash]; !ok {
		return nil, false
	}
	return m.c.GetBig(nil, []byte(hash)), true
}
