// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

// DuplicateError reports a uniqueness-constraint violation on create.
// Column names which user column conflicted ("username" or "email"),
// so callers can map the conflict to a field-level error without
// inspecting driver error text.
type DuplicateError struct {
	Column string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("duplicate value for column %q", e.Column)
}
