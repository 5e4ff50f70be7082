package email

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// NoopSender accepts every well-formed message and only logs it. main
// selects it when GYMTRACK_RESEND_KEY is unset.
type NoopSender struct{}

var _ Sender = (*NoopSender)(nil)

func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send logs req and returns a synthetic "noop-" message id.
func (s *NoopSender) Send(_ context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	var size int
	for _, a := range req.Attachments {
		size += len(a.Content)
	}
	slog.Info("email_skipped",
		"provider", "noop",
		"recipients", len(req.To),
		"subject", req.Subject,
		"attachments", len(req.Attachments),
		"attachment_bytes", size,
	)
	return SendResult{MessageID: "noop-" + uuid.NewString(), SentAt: time.Now()}, nil
}
