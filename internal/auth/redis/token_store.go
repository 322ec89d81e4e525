// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package redis provides Redis-backed implementations of the auth
// reset-token store and session store.
package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/authcore/authcore/internal/auth"
)

const resetKeyPrefix = "reset:"

// ResetTokenStore implements auth.ResetTokenStore on a Redis key-expiry
// store. Keys are the SHA256 of the plaintext token; values are the
// bound user id; the TTL enforces auth.ResetTokenTTL without a sweeper.
type ResetTokenStore struct {
	rdb *redis.Client
}

// NewResetTokenStore creates a new ResetTokenStore.
func NewResetTokenStore(rdb *redis.Client) *ResetTokenStore {
	return &ResetTokenStore{rdb: rdb}
}

// Issue generates a fresh token bound to userID and stores its hash
// with the reset TTL.
func (s *ResetTokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token, hash, err := auth.GenerateResetToken()
	if err != nil {
		return "", err
	}

	key := resetKeyPrefix + hash
	if err := s.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), auth.ResetTokenTTL).Err(); err != nil {
		return "", oops.Code("RESET_ISSUE_FAILED").
			With("operation", "set reset token").
			With("user_id", userID).
			Wrap(err)
	}
	return token, nil
}

// Resolve returns the user id bound to token, without consuming it.
// An absent or expired token yields ok=false.
func (s *ResetTokenStore) Resolve(ctx context.Context, token string) (int64, bool, error) {
	val, err := s.rdb.Get(ctx, resetKeyPrefix+auth.HashResetToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("RESET_RESOLVE_FAILED").
			With("operation", "get reset token").
			Wrap(err)
	}
	return parseUserID(val)
}

// Consume atomically deletes the binding and returns the user id it
// held. GETDEL guarantees at most one of any number of concurrent
// consumers observes ok=true.
func (s *ResetTokenStore) Consume(ctx context.Context, token string) (int64, bool, error) {
	val, err := s.rdb.GetDel(ctx, resetKeyPrefix+auth.HashResetToken(token)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("RESET_CONSUME_FAILED").
			With("operation", "getdel reset token").
			Wrap(err)
	}
	return parseUserID(val)
}

func parseUserID(val string) (int64, bool, error) {
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, oops.Code("RESET_CORRUPT_BINDING").
			With("value", val).
			Wrap(err)
	}
	return userID, true, nil
}

// Compile-time interface check.
var _ auth.ResetTokenStore = (*ResetTokenStore)(nil)
