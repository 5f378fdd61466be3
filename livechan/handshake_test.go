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
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDeriveVerificationCodeIsStableAndSixDigits(t *testing.T) {
	code := DeriveVerificationCode([]byte("session-description-blob"))
	require.Len(t, code, 6)
	for _, r := range code {
		require.True(t, r >= '0' && r <= '9')
	}
	require.Equal(t, code, DeriveVerificationCode([]byte("session-description-blob")))
}

func TestDeriveVerificationCodeDiffersAcrossSessions(t *testing.T) {
	a := DeriveVerificationCode([]byte("session-a"))
	b := DeriveVerificationCode([]byte("session-b"))
	require.NotEqual(t, a, b)
}
