// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcore/authcore/internal/auth"
)

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, auth.ValidateUsername("ab"))
	assert.NoError(t, auth.ValidateUsername("alice"))
	assert.Error(t, auth.ValidateUsername("a"))
	assert.Error(t, auth.ValidateUsername(""))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, auth.ValidateEmail(""), "email is optional")
	assert.NoError(t, auth.ValidateEmail("alice@example.com"))
	assert.Error(t, auth.ValidateEmail("not-an-email"))
}

func TestUserJSONHidesPasswordHash(t *testing.T) {
	user := auth.User{
		ID:           1,
		Username:     "alice",
		PasswordHash: "$argon2id$...",
	}

	data, err := json.Marshal(user)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.NotContains(t, fields, "PasswordHash")
	assert.NotContains(t, string(data), "argon2id")
	assert.Equal(t, "alice", fields["username"])
}
