// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"context"
	"time"
)

// SessionTTL is how long a session binding lives without renewal.
const SessionTTL = 24 * time.Hour

// Session is the per-request authentication handle. The core only ever
// reads and writes a single field of the ambient session: the
// authenticated user id. Cookie mechanics belong to the transport.
type Session interface {
	// UserID returns the bound user id, or ok=false when the session is
	// unauthenticated.
	UserID(ctx context.Context) (int64, bool, error)

	// Bind marks the session authenticated as userID.
	Bind(ctx context.Context, userID int64) error

	// Destroy invalidates the session and clears its cookie. The outcome
	// is reported, never thrown: a failed destroy returns (false, err)
	// and callers are expected to treat it as best-effort.
	Destroy(ctx context.Context) (bool, error)
}
