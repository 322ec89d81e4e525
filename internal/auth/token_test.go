// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcore/authcore/internal/auth"
)

func TestGenerateResetToken(t *testing.T) {
	t.Run("token is hex with full entropy", func(t *testing.T) {
		token, hash, err := auth.GenerateResetToken()
		require.NoError(t, err)

		raw, err := hex.DecodeString(token)
		require.NoError(t, err)
		assert.Len(t, raw, auth.ResetTokenBytes)
		assert.Equal(t, auth.HashResetToken(token), hash)
	})

	t.Run("tokens are unique", func(t *testing.T) {
		token1, _, err := auth.GenerateResetToken()
		require.NoError(t, err)
		token2, _, err := auth.GenerateResetToken()
		require.NoError(t, err)
		assert.NotEqual(t, token1, token2)
	})
}

func TestHashResetToken(t *testing.T) {
	hash := auth.HashResetToken("some-token")

	// SHA256 as hex: 64 chars, deterministic, never the input.
	assert.Len(t, hash, 64)
	assert.Equal(t, hash, auth.HashResetToken("some-token"))
	assert.NotEqual(t, hash, auth.HashResetToken("other-token"))
	assert.NotContains(t, hash, "some-token")
}
