// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/oops"
)

// FieldError reports a validation or business failure attributed to a
// single input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Result is the outcome of a mutating operation: either the affected
// user or a non-empty list of field errors, never both.
type Result struct {
	User   *User        `json:"user,omitempty"`
	Errors []FieldError `json:"errors,omitempty"`
}

func fieldError(field, message string) *Result {
	return &Result{Errors: []FieldError{{Field: field, Message: message}}}
}

// RegisterInput carries the register operation's request fields.
// Email is optional.
type RegisterInput struct {
	Username string
	Password string
	Email    string
}

// DefaultMailTimeout bounds the reset-email dispatch so a slow mail
// transport cannot stall ForgotPassword.
const DefaultMailTimeout = 10 * time.Second

// dummyPasswordHash is used when a user doesn't exist to prevent timing attacks.
// We still run password verification to make response time consistent.
// This is NOT a real credential - it's a fake hash that will never match any password.
//
//nolint:gosec // G101: This is an intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Service orchestrates registration, login, session queries, and the
// password-reset flow over its injected collaborators.
type Service struct {
	users        UserRepository
	tokens       ResetTokenStore
	hasher       PasswordHasher
	mailer       Mailer
	logger       *slog.Logger
	resetBaseURL string
	mailTimeout  time.Duration
}

// NewService creates a Service. resetBaseURL is the external URL prefix
// embedded in recovery links, e.g. "https://app.example.com".
func NewService(users UserRepository, tokens ResetTokenStore, hasher PasswordHasher, mailer Mailer, resetBaseURL string) (*Service, error) {
	return NewServiceWithLogger(users, tokens, hasher, mailer, resetBaseURL, slog.Default())
}

// NewServiceWithLogger creates a Service with an explicit logger for
// best-effort failure reporting.
func NewServiceWithLogger(users UserRepository, tokens ResetTokenStore, hasher PasswordHasher, mailer Mailer, resetBaseURL string, logger *slog.Logger) (*Service, error) {
	if users == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("users repository is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("token store is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if mailer == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("mailer is required")
	}
	if logger == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("logger is required")
	}
	return &Service{
		users:        users,
		tokens:       tokens,
		hasher:       hasher,
		mailer:       mailer,
		logger:       logger,
		resetBaseURL: strings.TrimSuffix(resetBaseURL, "/"),
		mailTimeout:  DefaultMailTimeout,
	}, nil
}

// Register creates a new user, binds the session to it, and returns the
// created user. Validation failures and uniqueness conflicts come back
// as field errors; only infrastructure faults surface as Go errors.
func (s *Service) Register(ctx context.Context, sess Session, in RegisterInput) (*Result, error) {
	if ValidateUsername(in.Username) != nil {
		return fieldError("username", "username should be 2+ characters"), nil
	}
	if ValidateEmail(in.Email) != nil {
		return fieldError("email", "invalid email"), nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	user := &User{
		Username:     in.Username,
		PasswordHash: hash,
	}
	if in.Email != "" {
		email := in.Email
		user.Email = &email
	}

	if err := s.users.Create(ctx, user); err != nil {
		var dup *DuplicateError
		if errors.As(err, &dup) {
			if dup.Column == "email" {
				return fieldError("email", "Email already exists!"), nil
			}
			return fieldError("username", "Username already exists!"), nil
		}
		return nil, oops.Code("AUTH_REGISTER_FAILED").
			With("operation", "create user").
			With("username", in.Username).
			Wrap(err)
	}

	if err := s.bind(ctx, sess, user.ID); err != nil {
		return nil, err
	}

	return &Result{User: user}, nil
}

// Login verifies credentials and binds the session on success. An
// unknown username still runs a hash verification against a dummy hash
// so response time does not reveal whether the account exists.
func (s *Service) Login(ctx context.Context, sess Session, username, password string) (*Result, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			_, _ = s.hasher.Verify(password, dummyPasswordHash) //nolint:errcheck // timing equalization only
			return fieldError("username", "User does not exist!"), nil
		}
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "get user by username").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(password, user.PasswordHash)
	if err != nil {
		return nil, oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(err)
	}
	if !valid {
		return fieldError("password", "Invalid password!"), nil
	}

	if err := s.bind(ctx, sess, user.ID); err != nil {
		return nil, err
	}

	return &Result{User: user}, nil
}

// Me returns the user bound to the session, or nil when the session is
// unauthenticated or the account no longer exists. Absence is not an
// error.
func (s *Service) Me(ctx context.Context, sess Session) (*User, error) {
	userID, ok, err := sess.UserID(ctx)
	if err != nil {
		return nil, oops.Code("AUTH_ME_FAILED").
			With("operation", "read session").
			Wrap(err)
	}
	if !ok {
		return nil, nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, oops.Code("AUTH_ME_FAILED").
			With("operation", "get user by id").
			With("user_id", userID).
			Wrap(err)
	}
	return user, nil
}

// Logout destroys the session and reports the outcome. It never returns
// an error: a failed destroy is logged and reported as false.
func (s *Service) Logout(ctx context.Context, sess Session) bool {
	ok, err := sess.Destroy(ctx)
	if err != nil {
		s.logger.Warn("best-effort session destroy failed",
			"operation", "logout",
			"error", err.Error(),
		)
		return false
	}
	return ok
}

// ForgotPassword issues a reset token for the account behind email and
// dispatches the recovery link. It returns true whether or not the
// email maps to an account, so callers cannot enumerate registered
// addresses. Mail-dispatch failures are logged and swallowed for the
// same reason.
func (s *Service) ForgotPassword(ctx context.Context, email string) (bool, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return true, nil
		}
		return false, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get user by email").
			Wrap(err)
	}

	token, err := s.tokens.Issue(ctx, user.ID)
	if err != nil {
		return false, oops.Code("RESET_REQUEST_FAILED").
			With("operation", "issue token").
			With("user_id", user.ID).
			Wrap(err)
	}

	resetURL := s.resetBaseURL + "/change-password/" + token

	mailCtx, cancel := context.WithTimeout(ctx, s.mailTimeout)
	defer cancel()
	if err := s.mailer.SendPasswordReset(mailCtx, email, resetURL); err != nil {
		s.logger.Warn("best-effort reset mail dispatch failed",
			"operation", "send_password_reset",
			"user_id", user.ID,
			"error", err.Error(),
		)
	}

	return true, nil
}

// ChangePassword redeems a reset token for a new password. The token is
// consumed atomically before the new hash is persisted, so two
// concurrent calls with the same token cannot both succeed; the loser
// of the race sees an invalid-token field error. The session bind at
// the end is a convenience login and is best-effort.
func (s *Service) ChangePassword(ctx context.Context, sess Session, token, newPassword string) (*Result, error) {
	if len(newPassword) < MinPasswordLength {
		return fieldError("newPassword", "length must be greater than 2"), nil
	}

	userID, ok, err := s.tokens.Resolve(ctx, token)
	if err != nil {
		return nil, oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "resolve token").
			Wrap(err)
	}
	if !ok {
		return fieldError("token", "Invalid token"), nil
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fieldError("token", "User no longer exists"), nil
		}
		return nil, oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "get user by id").
			With("user_id", userID).
			Wrap(err)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	// Consume before persisting: at most one concurrent redemption of
	// the same token gets past this point.
	if _, ok, err = s.tokens.Consume(ctx, token); err != nil {
		return nil, oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "consume token").
			Wrap(err)
	} else if !ok {
		return fieldError("token", "Invalid token"), nil
	}

	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return nil, oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "update password").
			With("user_id", user.ID).
			Wrap(err)
	}
	user.PasswordHash = hash
	user.UpdatedAt = time.Now()

	// Convenience login after a successful reset. The token is already
	// consumed, so a bind failure must not fail the operation.
	if err := s.bind(ctx, sess, user.ID); err != nil {
		s.logger.Warn("best-effort session bind after password change failed",
			"operation", "change_password_bind",
			"user_id", user.ID,
			"error", err.Error(),
		)
	}

	return &Result{User: user}, nil
}

func (s *Service) bind(ctx context.Context, sess Session, userID int64) error {
	if err := sess.Bind(ctx, userID); err != nil {
		return oops.Code("AUTH_SESSION_BIND_FAILED").
			With("operation", "bind session").
			With("user_id", userID).
			Wrap(err)
	}
	return nil
}
