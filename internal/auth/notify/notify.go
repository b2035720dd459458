// Package notify delivers transactional mail. Delivery is best effort: the
// callers log failures and carry on.
package notify

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// ErrInvalidMessage is returned for messages that cannot be sent as-is.
var ErrInvalidMessage = errors.New("notify: invalid message")

// Message is a plain-text mail.
type Message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// Validate rejects empty recipients and header injection through To or
// Subject.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return errors.Join(ErrInvalidMessage, errors.New("empty recipient"))
	}
	if strings.ContainsAny(m.To, "\r\n") || strings.ContainsAny(m.Subject, "\r\n") {
		return errors.Join(ErrInvalidMessage, errors.New("line break in header"))
	}
	return nil
}

// Notifier sends a message to a single recipient.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes mail to the structured log instead of sending it.
type LogNotifier struct{}

func (LogNotifier) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	slogx.FromContext(ctx).Info("mail",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.String("body", msg.Body),
	)
	return nil
}
