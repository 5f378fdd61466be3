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

package fixedpoint

// HashString is the public animation-name hash scripts use, spec 4.6:
// h=0; for each char c: h = ((h<<5) - h + codepoint(c)) | 0, two's-complement
// 32-bit. Implemented over runes so multi-byte UTF-8 names hash the same way
// a codepoint-iterating reference VM would.
func HashString(name string) int32 {
	var h int32
	for _, c := range name {
		h = (h << 5) - h + int32(c)
	}
	return h
}

// fnvOffset32 and fnvPrime32 are the seed and multiplier from spec 4.1.
const (
	fnvOffset32 uint32 = 0x811C9DC5
	fnvPrime32  uint32 = 0x01000193
)

// Hasher accumulates the FNV-1a-like state fingerprint one 32-bit word at a
// time, consuming each word as its raw bit pattern (little-endian on the
// wire, but the accumulation itself is endian-agnostic since it operates on
// the uint32 value directly).
type Hasher struct {
	h uint32
}

// NewHasher returns a Hasher seeded per spec 4.1.
func NewHasher() *Hasher {
	return &Hasher{h: fnvOffset32}
}

// WriteWord folds one 32-bit word into the running hash:
// h = (h XOR v) * prime, all unsigned 32-bit wraparound.
func (hs *Hasher) WriteWord(v uint32) {
	hs.h = (hs.h ^ v) * fnvPrime32
}

// WriteInt32 folds a signed 32-bit word in by its bit pattern.
func (hs *Hasher) WriteInt32(v int32) {
	hs.WriteWord(uint32(v))
}

// Sum returns the accumulated 32-bit fingerprint.
func (hs *Hasher) Sum() uint32 {
	return hs.h
}
