package email

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	now    func() time.Time
}

var _ Sender = (*ResendSender)(nil)

// ResendOption adjusts a ResendSender.
type ResendOption func(*ResendSender)

// WithBaseURL points the client at another API root (must end in '/').
func WithBaseURL(u *url.URL) ResendOption {
	return func(s *ResendSender) { s.client.BaseURL = u }
}

// NewResendSender builds a sender whose default From is from.
// PRE: apiKey is a Resend API key
func NewResendSender(apiKey, from string, opts ...ResendOption) *ResendSender {
	s := &ResendSender{
		client: resend.NewCustomClient(&http.Client{Timeout: 15 * time.Second}, apiKey),
		from:   from,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Send submits one message with its attachments.
// POST: returns the provider message id, or ErrNoRecipients before any call
func (s *ResendSender) Send(ctx context.Context, req SendRequest) (SendResult, error) {
	if len(req.To) == 0 {
		return SendResult{}, ErrNoRecipients
	}
	params := &resend.SendEmailRequest{
		From:    firstNonEmpty(req.From, s.from),
		To:      req.To,
		Subject: req.Subject,
		Html:    req.HTML,
	}
	for _, a := range req.Attachments {
		params.Attachments = append(params.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	start := s.now()
	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("email_send_failed", "provider", "resend", "error", err, "recipients", len(req.To))
		return SendResult{}, fmt.Errorf("resend: %w", err)
	}
	slog.Info("email_sent",
		"provider", "resend",
		"message_id", sent.Id,
		"recipients", len(req.To),
		"attachments", len(req.Attachments),
		"duration_ms", s.now().Sub(start).Milliseconds(),
	)
	return SendResult{MessageID: sent.Id, SentAt: s.now()}, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
