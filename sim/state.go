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

// Package sim implements the deterministic per-frame state machine: the
// Fighter/State data model (spec section 3) and the simulation step (spec
// section 4.6).
package sim

import "github.com/netfight/netfight/fixedpoint"

// InputMask is the 16-bit per-player button bitfield, spec section 3.
type InputMask uint16

const (
	InputUp         InputMask = 0x01
	InputDown       InputMask = 0x02
	InputLeft       InputMask = 0x04
	InputRight      InputMask = 0x08
	InputLightPunch InputMask = 0x10
	InputHeavyPunch InputMask = 0x20
	InputLightKick  InputMask = 0x40
	InputHeavyKick  InputMask = 0x80
	InputStart      InputMask = 0x100
)

// Fighter is one player's per-frame simulation record (spec section 3).
// All arithmetic on X, VX is integer (fixedpoint.Fixed); HP is clamped >= 0.
type Fighter struct {
	X    fixedpoint.Fixed
	VX   fixedpoint.Fixed
	HP   int32
	Anim int32
}

// State is the whole-match snapshot, logically immutable once committed to
// history: every simulation step returns a new State value rather than
// mutating an existing one.
type State struct {
	Frame uint16
	P1    Fighter
	P2    Fighter
}

// Seed returns the canonical starting State used by end-to-end scenarios in
// spec section 8: p1.x = -1.0, p2.x = +1.0 world units, both vx = 0,
// hp = 100, anim = 0.
func Seed() State {
	return State{
		Frame: 0,
		P1:    Fighter{X: fixedpoint.FromFloat(-1.0), VX: 0, HP: 100, Anim: 0},
		P2:    Fighter{X: fixedpoint.FromFloat(1.0), VX: 0, HP: 100, Anim: 0},
	}
}
