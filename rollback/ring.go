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

// Package rollback implements the input ring buffers, the snapshot history
// ring, and the rollback/predict engine of spec section 4.7.
package rollback

// inputRing is one player's fixed array of 65536 input masks indexed by
// frame & 0xFFFF (spec section 3 "Input ring buffers").
type inputRing struct {
	mask    [65536]uint16
	written [65536]bool
}

func (r *inputRing) set(frame uint32, m uint16) {
	idx := uint16(frame)
	r.mask[idx] = m
	r.written[idx] = true
}

// get returns the mask stored at frame and whether that slot was ever
// written. An unwritten slot reads as zero (spec section 3).
func (r *inputRing) get(frame uint32) (uint16, bool) {
	idx := uint16(frame)
	return r.mask[idx], r.written[idx]
}

// UnwrapFrame reconstructs the monotonic frame number nearest to latest
// that shares wireFrame's low 16 bits, per spec 9 "Frame-counter wrap":
// comparisons must be wrap-aware, using the distance (latest - f) mod
// 2^16. latest is assumed itself to be a monotonic, non-wrapping counter
// (as the rollback engine keeps internally); wireFrame is the 16-bit value
// carried on the wire.
func UnwrapFrame(wireFrame uint16, latest uint32) uint32 {
	base := latest &^ 0xFFFF
	candidate := base | uint32(wireFrame)
	// candidate must not be "in the future" relative to latest by more
	// than half the wrap period, else it really belongs to the previous
	// epoch.
	if candidate > latest && candidate-latest > 0x8000 {
		candidate -= 0x10000
	} else if candidate < latest && latest-candidate > 0x8000 {
		candidate += 0x10000
	}
	return candidate
}
