// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package redis

import (
	"context"
	"errors"
	"strconv"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"github.com/authcore/authcore/internal/auth"
)

const sessionKeyPrefix = "sess:"

// SessionStore keeps server-side session bindings in Redis. Each
// session is a ULID id mapping to the authenticated user id, with
// auth.SessionTTL enforced by the key's expiry.
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a new SessionStore.
func NewSessionStore(rdb *redis.Client) *SessionStore {
	return &SessionStore{rdb: rdb}
}

// Load returns the per-request session handle for the given cookie
// value. An empty id yields an unauthenticated session that allocates
// its id on first Bind.
func (s *SessionStore) Load(id string) *Session {
	return &Session{store: s, id: id}
}

// Session is the Redis-backed implementation of auth.Session. The
// transport layer owns the cookie: after the operation it consults
// ID/Started/Ended to decide whether to set or clear it.
type Session struct {
	store   *SessionStore
	id      string
	started bool // Bind allocated a fresh id; transport should set the cookie
	ended   bool // Destroy succeeded; transport should clear the cookie
}

// ID returns the session identifier, empty when no binding exists yet.
func (sess *Session) ID() string { return sess.id }

// Started reports whether this request created a new session id.
func (sess *Session) Started() bool { return sess.started }

// Ended reports whether this request destroyed the session.
func (sess *Session) Ended() bool { return sess.ended }

// UserID returns the bound user id, or ok=false when the session is
// unauthenticated or has expired.
func (sess *Session) UserID(ctx context.Context) (int64, bool, error) {
	if sess.id == "" {
		return 0, false, nil
	}
	val, err := sess.store.rdb.Get(ctx, sessionKeyPrefix+sess.id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("SESSION_READ_FAILED").
			With("operation", "get session").
			With("session_id", sess.id).
			Wrap(err)
	}
	userID, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, false, oops.Code("SESSION_CORRUPT_BINDING").
			With("session_id", sess.id).
			With("value", val).
			Wrap(err)
	}
	return userID, true, nil
}

// Bind marks the session authenticated as userID, allocating a fresh
// session id if none exists yet. Rebinding an existing session reuses
// its id and resets the TTL.
func (sess *Session) Bind(ctx context.Context, userID int64) error {
	if sess.id == "" {
		sess.id = ulid.Make().String()
		sess.started = true
	}
	key := sessionKeyPrefix + sess.id
	if err := sess.store.rdb.Set(ctx, key, strconv.FormatInt(userID, 10), auth.SessionTTL).Err(); err != nil {
		return oops.Code("SESSION_BIND_FAILED").
			With("operation", "set session").
			With("session_id", sess.id).
			With("user_id", userID).
			Wrap(err)
	}
	return nil
}

// Destroy removes the server-side binding. Destroying a session that
// never existed succeeds; a store fault is reported as (false, err) and
// leaves the cookie in place.
func (sess *Session) Destroy(ctx context.Context) (bool, error) {
	if sess.id == "" {
		return true, nil
	}
	if err := sess.store.rdb.Del(ctx, sessionKeyPrefix+sess.id).Err(); err != nil {
		return false, oops.Code("SESSION_DESTROY_FAILED").
			With("operation", "del session").
			With("session_id", sess.id).
			Wrap(err)
	}
	sess.ended = true
	return true, nil
}

// Compile-time interface check.
var _ auth.Session = (*Session)(nil)
