// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"context"
	"strings"
	"time"

	"github.com/samber/oops"
)

// Validation policy. The thresholds are deliberately permissive and are
// part of the documented contract, not an implementation accident.
const (
	MinUsernameLength = 2
	MinPasswordLength = 2
)

// User represents an identity record.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        *string   `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ValidateUsername checks the username against the registration policy.
func ValidateUsername(username string) error {
	if len(username) < MinUsernameLength {
		return oops.Code("AUTH_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	return nil
}

// ValidateEmail checks an email address. Empty is allowed; the address
// is optional at registration and only used as a recovery lookup key.
func ValidateEmail(email string) error {
	if email == "" {
		return nil
	}
	if !strings.Contains(email, "@") {
		return oops.Code("AUTH_INVALID_EMAIL").Errorf("email must contain @")
	}
	return nil
}

// UserRepository manages user persistence. Username and email are each
// globally unique; Create reports collisions as *DuplicateError so the
// caller can distinguish them from other persistence failures.
type UserRepository interface {
	// Create stores a new user and fills in the assigned ID and
	// timestamps on the passed value.
	Create(ctx context.Context, user *User) error

	// GetByID retrieves a user by ID.
	GetByID(ctx context.Context, id int64) (*User, error)

	// GetByUsername retrieves a user by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*User, error)

	// GetByEmail retrieves a user by email (case-insensitive).
	// Returns ErrNotFound if no user has the given email.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update persists mutated fields and refreshes UpdatedAt.
	Update(ctx context.Context, user *User) error

	// UpdatePassword updates only the password hash for a user.
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
