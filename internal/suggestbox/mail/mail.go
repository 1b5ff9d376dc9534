// Package mail delivers transactional notifications: account credentials,
// password-change confirmations, and recovery codes.
package mail

import "context"

// Mailer sends a single plain-text email. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
