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

// Package cas implements the content-addressed store described in spec
// section 4.2: a sha-256-keyed blob map with idempotent insert and no
// eviction, read by both the asset-exchange engine and the viewer.
package cas

import (
	"crypto/sha256"
	"encoding/hex"
)

// Store is the interface every CAS backing implements. The zero-value
// semantics and concurrency contract are spec 4.2 / 5: any access is safe
// for concurrent use, insertion is idempotent, there is no eviction.
type Store interface {
	// Put stores bytes under hash, idempotently. The caller guarantees hash
	// is correct; Put never verifies it (spec 4.2).
	Put(hash string, data []byte)

	// Has reports whether hash is present.
	Has(hash string) bool

	// Get retrieves the bytes stored under hash, or (nil, false).
	Get(hash string) ([]byte, bool)
}

// HashOf computes the canonical content-address for data:
// "sha256:" + hex(sha256(data)).
func HashOf(data []byte) string {
	sum := sha256.Sum256(data)
	return "sha256:" + hex.EncodeToString(sum[:])
}
