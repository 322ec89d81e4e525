// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package auth implements the credential, session, and reset-token
// lifecycle for a local-login web backend.
//
// # Domain Types
//
// User is the identity record; its PasswordHash is owned by the
// UserRepository and never serialized to external responses.
// Reset tokens are opaque 256-bit values held by a ResetTokenStore
// with a fixed TTL; sessions are per-request handles bound to a
// user id via the Session interface.
//
// # Service
//
// Service is the orchestrator. Every mutating operation returns a
// *Result carrying either the affected User or a list of FieldError
// values; validation and business failures never surface as Go errors.
// Infrastructure faults (store unreachable, hashing failure) do.
package auth
