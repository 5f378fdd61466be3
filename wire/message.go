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

// Package wire implements the pure encode/decode functions for every message
// kind on the assets and live channels (spec section 6). Every codec here is
// a pure function: there is no session state in this package, and decoders
// never panic on a well-formed-length-but-invalid-content frame.
package wire

// Opcode identifies a message kind. It is always the first byte of a frame.
type Opcode byte

const (
	OpManifest   Opcode = 0x01
	OpNeedChunks Opcode = 0x02
	OpChunk      Opcode = 0x03
	OpInput      Opcode = 0x10
	OpStateHash  Opcode = 0x11
	OpScriptPush Opcode = 0x20
	OpGameStart  Opcode = 0x22
)

// ChunkRef is one entry of a Manifest's chunk list.
type ChunkRef struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
	Mime string `json:"mime"`
}

// Manifest describes an asset bundle (spec section 3 "Manifest" / section 6
// JSON schema). Type defaults to "mesh" when empty, per spec.
type Manifest struct {
	ID    string            `json:"id"`
	Type  string            `json:"type,omitempty"`
	Entry string            `json:"entry"`
	Chunks []ChunkRef       `json:"chunks"`
	Meta  map[string]string `json:"meta,omitempty"`
}

// EffectiveType returns m.Type, defaulting to "mesh" when unset.
func (m Manifest) EffectiveType() string {
	if m.Type == "" {
		return "mesh"
	}
	return m.Type
}

// NeedChunks lists content hashes the sender is missing.
type NeedChunks struct {
	Hashes []string
}

// Chunk carries one content-addressed payload. The current spec always
// sends a chunk whole (Offset == 0); the Offset field is carried on the
// wire to future-proof partial/resumable chunk delivery.
type Chunk struct {
	Hash    string
	Offset  uint32
	Payload []byte
}

// ScriptPush delivers a named script source over the reliable channel.
type ScriptPush struct {
	Name string
	Body []byte
}

// GameStart is the reserved, payload-less control opcode that gates both
// peers into the Running lifecycle state (spec 4.9).
type GameStart struct{}

// Input is one frame's local input mask plus the last-confirmed remote
// frame, sent every tick over the live channel.
type Input struct {
	Frame uint16
	Mask  uint16
	Ack   uint16
}

// StateHash is the periodic fingerprint emitted every 16 frames for desync
// detection (spec 4.1, 4.8).
type StateHash struct {
	Frame uint16
	Hash  uint32
}
