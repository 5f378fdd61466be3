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

// Package vm adapts an embeddable script VM to the fixed contract spec
// section 4.5 requires of per-player fighter logic: loadSource, tick,
// clone, takeLastError, with no wall-clock, randomness, or I/O access.
package vm

// CommandKind names the stable, frozen command vocabulary a script's tick
// may emit.
type CommandKind string

const (
	CmdMove CommandKind = "move"
	CmdAnim CommandKind = "anim"
)

// Command is one instruction a script's tick produced for the current
// frame. Only the field relevant to Kind is populated. GojaVM drops script
// commands of an unknown kind before returning them, and the simulation
// step also ignores any Kind it does not recognize.
type Command struct {
	Kind CommandKind
	Dx   int    // for CmdMove: sign only, >=1 right, 0 stop, <=-1 left
	Name string // for CmdAnim: animation name, hashed by the simulation step
}

// VM is the fixed contract every per-player script instance satisfies.
type VM interface {
	// LoadSource compiles src, which must define a tick(frame, inputMask)
	// entry point. It returns false on compile error; the error itself is
	// retrievable via TakeLastError.
	LoadSource(src []byte) bool

	// Tick executes one frame of logic and returns the commands produced.
	// Called with the same (loaded source, accumulated scope, frame,
	// inputMask) it MUST return the same commands - see GojaVM in
	// gojavm.go for how that determinism is enforced.
	Tick(frame uint32, inputMask uint32) []Command

	// Clone produces a fresh VM instance that, once LoadSource is called
	// again with the same source, behaves identically to a freshly seeded
	// VM - no scope state leaks from the instance Clone was called on.
	Clone() VM

	// TakeLastError returns and clears the last compile or runtime error.
	TakeLastError() error
}
