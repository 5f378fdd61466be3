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

// Package fixedpoint implements the signed 16.16 fixed-point arithmetic the
// simulation runs on, plus the two hash functions that give the system its
// determinism guarantees: the public string hash used by scripts to name
// animations, and the FNV-1a-like state fingerprint used for desync
// detection.
package fixedpoint

// Fixed is a signed Q16.16 fixed-point number stored in a 32-bit two's
// complement integer. All simulation positions and velocities use this type.
type Fixed int32

// Frac is the number of fractional bits.
const Frac = 16

// FromInt converts a whole number of world-units into Fixed.
func FromInt(n int32) Fixed { return Fixed(n << Frac) }

// FromFloat converts a real number into Fixed via truncation, matching
// spec 4.1: trunc(n * 65536).
func FromFloat(n float64) Fixed { return Fixed(int64(n * 65536)) }

// WalkSpeed is the spec constant WALK_SPEED = 0.25 world-units/tick,
// represented as 16384 in Q16.16.
const WalkSpeed Fixed = 16384

// Add is plain 32-bit integer addition; wraparound is the two's-complement
// wraparound of the underlying int32, which is intentional (spec 4.6: "x = x
// + vx (integer wrap implicit in 32-bit arithmetic)").
func Add(a, b Fixed) Fixed { return a + b }

// Sub is plain 32-bit integer subtraction.
func Sub(a, b Fixed) Fixed { return a - b }

// Mul multiplies two Q16.16 values: (a*b) >> 16 with an arithmetic right
// shift, computed in 64 bits to avoid intermediate overflow.
func Mul(a, b Fixed) Fixed {
	return Fixed((int64(a) * int64(b)) >> Frac)
}

// ToFloat returns the real-number value, for diagnostics only; never used
// inside the simulation step.
func (f Fixed) ToFloat() float64 {
	return float64(f) / 65536.0
}
