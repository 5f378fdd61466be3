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

package livechan

import (
	"crypto/sha256"
	"encoding/binary"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DeriveVerificationCode turns the out-of-band session description both
// operators already exchanged (spec 6's "session description... exchanged
// by any transport outside this spec's scope") into a short numeric code
// each side can read aloud to confirm they are pairing with the peer they
// expect, rather than a man-in-the-middle. This is a supplement: nothing in
// the wire protocol depends on it, and a mismatch is caught by the humans,
// not the protocol.
func DeriveVerificationCode(sessionDescription []byte) string {
	h := hkdf.New(sha256.New, sessionDescription, nil, []byte("netfight-verification-code"))
	var buf [4]byte
	if _, err := io.ReadFull(h, buf[:]); err != nil {
		return "000000"
	}
	code := binary.BigEndian.Uint32(buf[:]) % 1000000
	return padSixDigits(code)
}

func padSixDigits(n uint32) string {
	digits := [6]byte{}
	for i := 5; i >= 0; i-- {
		digits[i] = byte('0' + n%10)
		n /= 10
	}
	return string(digits[:])
}
