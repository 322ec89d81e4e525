// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/samber/oops"
)

// Reset token configuration.
const (
	ResetTokenBytes = 32             // 32 bytes = 64 hex chars, 256 bits of entropy
	ResetTokenTTL   = 72 * time.Hour // 3 day expiry
)

// GenerateResetToken creates a secure random token and its hash.
// Returns (plaintext_token, sha256_hash, error).
// The plaintext token is sent to the user; the hash is what the store keys on.
func GenerateResetToken() (token, hash string, err error) {
	tokenBytes := make([]byte, ResetTokenBytes)
	if _, err = rand.Read(tokenBytes); err != nil {
		return "", "", oops.Code("RESET_TOKEN_GENERATE_FAILED").Wrap(err)
	}

	token = hex.EncodeToString(tokenBytes)
	hash = HashResetToken(token)

	return token, hash, nil
}

// HashResetToken computes the SHA256 hash of a token. Stores key on the
// hash so a leaked store snapshot does not yield usable tokens.
func HashResetToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}

// ResetTokenStore maps single-use opaque tokens to a user id with a
// fixed TTL. Tokens expire on their own after ResetTokenTTL even if
// never consumed.
type ResetTokenStore interface {
	// Issue generates a fresh token bound to userID and returns its
	// plaintext form.
	Issue(ctx context.Context, userID int64) (string, error)

	// Resolve returns the bound user id if the token is present and not
	// expired. Does not consume.
	Resolve(ctx context.Context, token string) (int64, bool, error)

	// Consume atomically removes the binding and returns the user id it
	// held. Idempotent: a token that is already absent yields ok=false.
	// At most one of any number of concurrent consumers observes ok=true.
	Consume(ctx context.Context, token string) (int64, bool, error)
}
