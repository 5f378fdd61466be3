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
	"github.com/golang/snappy"
	"github.com/syndtr/goleveldb/leveldb"
)

// DiskStore is a CAS backing for long sessions whose asset bundles exceed
// comfortable RAM residency. Every Put is durable to a leveldb instance on
// disk; reads go straight to leveldb. This supplements spec 4.2, which
// specifies the CAS's operations but not its backing storage.
//
// Payloads are snappy-compressed at rest: mesh/sprite bundles are the
// largest objects this store ever sees, and snappy's cheap CPU cost makes
// disk residency proportional to the compressed size instead of the raw
// one.
type DiskStore struct {
	db *leveldb.DB
}

// OpenDiskStore opens (creating if absent) a leveldb-backed CAS at dir.
func OpenDiskStore(dir string) (*DiskStore, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, err
	}
	return &DiskStore{db: db}, nil
}

// Put implements Store. Idempotent: an existing key is left untouched.
func (d *DiskStore) Put(hash string, data []byte) {
	if ok, _ := d.db.Has([]byte(hash), nil); ok {
		return
	}
	d.db.Put([]byte(hash), snappy.Encode(nil, data), nil)
}

// Has implements Store.
func (d *DiskStore) Has(hash string) bool {
	ok, _ := d.db.Has([]byte(hash), nil)
	return ok
}

// Get implements Store.
func (d *DiskStore) Get(hash string) ([]byte, bool) {
	raw, err := d.db.Get([]byte(hash), nil)
	if err != nil {
		return nil, false
	}
	data, err := snappy.Decode(nil, raw)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Close releases the underlying leveldb handle.
func (d *DiskStore) Close() error {
	return d.db.Close()
}
