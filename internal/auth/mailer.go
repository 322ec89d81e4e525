// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

package auth

import "context"

// Mailer delivers the password-recovery link. Dispatch is fire-and-forget
// from the service's perspective; callers bound the call with their own
// timeout so a slow transport cannot stall ForgotPassword.
type Mailer interface {
	SendPasswordReset(ctx context.Context, to, resetURL string) error
}
