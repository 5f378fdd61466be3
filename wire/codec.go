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

package wire

import (
	"encoding/binary"
	"encoding/json"

	"github.com/netfight/netfight/common"
)

// EncodeManifest serializes m as opcode 0x01 followed by its UTF-8 JSON
// payload (spec 6).
func EncodeManifest(m Manifest) ([]byte, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(body)+1)
	out = append(out, byte(OpManifest))
	out = append(out, body...)
	return out, nil
}

// DecodeManifest parses the payload following the opcode byte.
func DecodeManifest(payload []byte) (Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(payload, &m); err != nil {
		return Manifest{}, common.ErrMalformedFrame
	}
	return m, nil
}

// EncodeNeedChunks serializes opcode 0x02: u16 count, then count records of
// (u8 hashLen, hashLen bytes UTF-8).
func EncodeNeedChunks(n NeedChunks) ([]byte, error) {
	out := make([]byte, 0, 3+len(n.Hashes)*40)
	out = append(out, byte(OpNeedChunks))
	var countBuf [2]byte
	binary.LittleEndian.PutUint16(countBuf[:], uint16(len(n.Hashes)))
	out = append(out, countBuf[:]...)
	for _, h := range n.Hashes {
		if len(h) > 255 {
			h = h[:255]
		}
		out = append(out, byte(len(h)))
		out = append(out, h...)
	}
	return out, nil
}

// DecodeNeedChunks parses the payload following the opcode byte.
func DecodeNeedChunks(payload []byte) (NeedChunks, error) {
	if len(payload) < 2 {
		return NeedChunks{}, common.ErrMalformedFrame
	}
	count := binary.LittleEndian.Uint16(payload[:2])
	pos := 2
	hashes := make([]string, 0, count)
	for i := uint16(0); i < count; i++ {
		if pos >= len(payload) {
			return NeedChunks{}, common.ErrMalformedFrame
		}
		hl := int(payload[pos])
		pos++
		if pos+hl > len(payload) {
			return NeedChunks{}, common.ErrMalformedFrame
		}
		hashes = append(hashes, string(payload[pos:pos+hl]))
		pos += hl
	}
	return NeedChunks{Hashes: hashes}, nil
}

// EncodeChunk serializes opcode 0x03: u8 hashLen, hashLen bytes, u32 offset,
// remaining bytes = payload.
func EncodeChunk(c Chunk) ([]byte, error) {
	hash := c.Hash
	if len(hash) > 255 {
		hash = hash[:255]
	}
	out := make([]byte, 0, 1+1+len(hash)+4+len(c.Payload))
	out = append(out, byte(OpChunk))
	out = append(out, byte(len(hash)))
	out = append(out, hash...)
	var offBuf [4]byte
	binary.LittleEndian.PutUint32(offBuf[:], c.Offset)
	out = append(out, offBuf[:]...)
	out = append(out, c.Payload...)
	return out, nil
}

// DecodeChunk parses the payload following the opcode byte.
func DecodeChunk(payload []byte) (Chunk, error) {
	if len(payload) < 1 {
		return Chunk{}, common.ErrMalformedFrame
	}
	hl := int(payload[0])
	pos := 1
	if pos+hl+4 > len(payload) {
		return Chunk{}, common.ErrMalformedFrame
	}
	hash := string(payload[pos : pos+hl])
	pos += hl
	offset := binary.LittleEndian.Uint32(payload[pos : pos+4])
	pos += 4
	return Chunk{Hash: hash, Offset: offset, Payload: payload[pos:]}, nil
}

// EncodeScriptPush serializes opcode 0x20: u8 nameLen, nameLen bytes,
// u32 bodyLen, bodyLen bytes.
func EncodeScriptPush(s ScriptPush) ([]byte, error) {
	name := s.Name
	if len(name) > 255 {
		name = name[:255]
	}
	out := make([]byte, 0, 1+1+len(name)+4+len(s.Body))
	out = append(out, byte(OpScriptPush))
	out = append(out, byte(len(name)))
	out = append(out, name...)
	var lenBuf [4]byte
	binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(s.Body)))
	out = append(out, lenBuf[:]...)
	out = append(out, s.Body...)
	return out, nil
}

// DecodeScriptPush parses the payload following the opcode byte.
func DecodeScriptPush(payload []byte) (ScriptPush, error) {
	if len(payload) < 1 {
		return ScriptPush{}, common.ErrMalformedFrame
	}
	nl := int(payload[0])
	pos := 1
	if pos+nl+4 > len(payload) {
		return ScriptPush{}, common.ErrMalformedFrame
	}
	name := string(payload[pos : pos+nl])
	pos += nl
	bodyLen := int(binary.LittleEndian.Uint32(payload[pos : pos+4]))
	pos += 4
	if pos+bodyLen > len(payload) {
		return ScriptPush{}, common.ErrMalformedFrame
	}
	return ScriptPush{Name: name, Body: payload[pos : pos+bodyLen]}, nil
}

// EncodeGameStart serializes opcode 0x22 with no payload.
func EncodeGameStart() []byte {
	return []byte{byte(OpGameStart)}
}

// EncodeInput serializes opcode 0x10: u16 frame, u16 mask, u16 ack.
func EncodeInput(in Input) []byte {
	out := make([]byte, 7)
	out[0] = byte(OpInput)
	binary.LittleEndian.PutUint16(out[1:3], in.Frame)
	binary.LittleEndian.PutUint16(out[3:5], in.Mask)
	binary.LittleEndian.PutUint16(out[5:7], in.Ack)
	return out
}

// DecodeInput parses the payload following the opcode byte.
func DecodeInput(payload []byte) (Input, error) {
	if len(payload) < 6 {
		return Input{}, common.ErrMalformedFrame
	}
	return Input{
		Frame: binary.LittleEndian.Uint16(payload[0:2]),
		Mask:  binary.LittleEndian.Uint16(payload[2:4]),
		Ack:   binary.LittleEndian.Uint16(payload[4:6]),
	}, nil
}

// EncodeStateHash serializes opcode 0x11: u16 frame, u32 hash.
func EncodeStateHash(s StateHash) []byte {
	out := make([]byte, 7)
	out[0] = byte(OpStateHash)
	binary.LittleEndian.PutUint16(out[1:3], s.Frame)
	binary.LittleEndian.PutUint32(out[3:7], s.Hash)
	return out
}

// DecodeStateHash parses the payload following the opcode byte.
func DecodeStateHash(payload []byte) (StateHash, error) {
	if len(payload) < 6 {
		return StateHash{}, common.ErrMalformedFrame
	}
	return StateHash{
		Frame: binary.LittleEndian.Uint16(payload[0:2]),
		Hash:  binary.LittleEndian.Uint32(payload[2:6]),
	}, nil
}

// Decode dispatches on the frame's opcode byte and returns the decoded
// message as one of the concrete types in this package. Malformed or
// truncated frames return common.ErrMalformedFrame; an unrecognized opcode
// returns common.ErrUnknownOpcode. Callers are expected to drop the frame
// and log on either error (spec 7 "Malformed frame" disposition).
func Decode(frame []byte) (interface{}, error) {
	if len(frame) < 1 {
		return nil, common.ErrMalformedFrame
	}
	op := Opcode(frame[0])
	payload := frame[1:]
	switch op {
	case OpManifest:
		return DecodeManifest(payload)
	case OpNeedChunks:
		return DecodeNeedChunks(payload)
	case OpChunk:
		return DecodeChunk(payload)
	case OpScriptPush:
		return DecodeScriptPush(payload)
	case OpGameStart:
		return GameStart{}, nil
	case OpInput:
		return DecodeInput(payload)
	case OpStateHash:
		return DecodeStateHash(payload)
	default:
		return nil, common.ErrUnknownOpcode
	}
}
