package mail

import (
	"context"

	"github.com/aussiebroadwan/suggestbox/pkg/slogx"
)

// Log writes emails to the application log instead of sending them. Used
// when no SMTP relay is configured, so local development still surfaces
// recovery codes and generated passwords.
type Log struct{}

func NewLog() *Log {
	return &Log{}
}

func (m *Log) Send(ctx context.Context, to, subject, body string) error {
	slogx.FromContext(ctx).Info("mail (not sent, no SMTP relay configured)",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
