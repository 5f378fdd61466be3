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

package sim

import "github.com/netfight/netfight/fixedpoint"

// Fingerprint computes the state hash of spec 4.1 over the tuple
// (frame, p1.x, p1.vx, p1.hp, p1.anim, p2.x, p2.vx, p2.hp, p2.anim).
// It depends on no other field of State, which is one of the quantified
// invariants of spec section 8.
func Fingerprint(s State) uint32 {
	h := fixedpoint.NewHasher()
	h.WriteWord(uint32(s.Frame))
	h.WriteInt32(int32(s.P1.X))
	h.WriteInt32(int32(s.P1.VX))
	h.WriteInt32(s.P1.HP)
	h.WriteInt32(s.P1.Anim)
	h.WriteInt32(int32(s.P2.X))
	h.WriteInt32(int32(s.P2.VX))
	h.WriteInt32(s.P2.HP)
	h.WriteInt32(s.P2.Anim)
	return h.Sum()
}
