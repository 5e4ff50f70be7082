package email

import (
	"context"
	"errors"
	"time"
)

// ErrNoRecipients is returned when a request has no To addresses.
var ErrNoRecipients = errors.New("email has no recipients")

// Attachment is a file sent alongside the message body.
type Attachment struct {
	Filename string
	Content  []byte
}

// SendRequest contains the data needed to send an email via an external provider.
type SendRequest struct {
	To          []string
	From        string // falls back to the sender's default address
	Subject     string
	HTML        string
	Attachments []Attachment
}

// SendResult contains the response from the email provider.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// Sender delivers a single email.
type Sender interface {
	Send(ctx context.Context, req SendRequest) (SendResult, error)
}
