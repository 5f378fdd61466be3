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

package common

import "errors"

// Sentinel errors shared across packages, following the error taxonomy of
// spec section 7.
var (
	// ErrRingOverflow is returned when a remote input arrives too late to
	// roll back to (latest - f >= H).
	ErrRingOverflow = errors.New("netfight: input too old to roll back to")

	// ErrMalformedFrame is returned by a wire decoder on a truncated or
	// otherwise unparseable frame. Decoders never panic; they return this.
	ErrMalformedFrame = errors.New("netfight: malformed wire frame")

	// ErrUnknownOpcode is returned when a wire frame's opcode is not one of
	// the known message kinds.
	ErrUnknownOpcode = errors.New("netfight: unknown opcode")

	// ErrAssetIncomplete indicates the requested manifest cannot yet be
	// assembled because one or more chunks are missing from the CAS.
	ErrAssetIncomplete = errors.New("netfight: asset bundle incomplete")

	// ErrScriptCompile wraps the script VM's compile error when a loaded
	// source fails to compile; the orchestrator reports it through the
	// log and the viewer's status channel.
	ErrScriptCompile = errors.New("netfight: script failed to compile")

	// ErrNotRunning indicates a live-channel frame arrived before any
	// script was loaded, so no live engine or rollback history exists yet.
	ErrNotRunning = errors.New("netfight: orchestrator is not running")
)
