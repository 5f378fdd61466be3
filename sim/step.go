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

import (
	"github.com/netfight/netfight/fixedpoint"
	"github.com/netfight/netfight/vm"
)

// Step advances s by one frame under input masks i1, i2, driving vm1
// (player 1's script instance) and vm2 (player 2's). Ordering is strict and
// observable: P1 is advanced first, then P2 (spec 4.6).
func Step(s State, i1, i2 InputMask, vm1, vm2 vm.VM) State {
	nextFrame := uint32(s.Frame) + 1

	p1 := applyPlayer(s.P1, nextFrame, i1, vm1)
	p2 := applyPlayer(s.P2, nextFrame, i2, vm2)

	return State{
		Frame: uint16((uint32(s.Frame) + 1) & 0xFFFF),
		P1:    p1,
		P2:    p2,
	}
}

// applyPlayer runs one player's script for nextFrame and applies the
// resulting commands (or the direct-input fallback) plus physics.
func applyPlayer(f Fighter, nextFrame uint32, input InputMask, v vm.VM) Fighter {
	cmds := v.Tick(nextFrame, uint32(input))

	if len(cmds) == 0 {
		f.VX = fallbackVelocity(input)
	} else {
		for _, c := range cmds {
			switch c.Kind {
			case vm.CmdMove:
				switch {
				case c.Dx >= 1:
					f.VX = fixedpoint.WalkSpeed
				case c.Dx <= -1:
					f.VX = -fixedpoint.WalkSpeed
				default:
					f.VX = 0
				}
			case vm.CmdAnim:
				f.Anim = fixedpoint.HashString(c.Name)
			default:
				// unknown command: ignored, spec 4.5.
			}
		}
	}

	if f.HP < 0 {
		f.HP = 0
	}

	f.X = fixedpoint.Add(f.X, f.VX)
	return f
}

// fallbackVelocity implements spec 4.6 step 4: Left->-WALK, Right->+WALK,
// otherwise 0, used when the VM returned no commands (compile/runtime
// error, or a script that legitimately issues none this frame).
func fallbackVelocity(input InputMask) fixedpoint.Fixed {
	switch {
	case input&InputLeft != 0:
		return -fixedpoint.WalkSpeed
	case input&InputRight != 0:
		return fixedpoint.WalkSpeed
	default:
		return 0
	}
}
