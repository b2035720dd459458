package notify

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/scholarspace/scholarspace/pkg/slogx"
)

// Worker consumes mail tasks and delivers them.
type Worker struct {
	Delivery Notifier
	Logger   *slog.Logger
}

// Register installs the worker's handlers on mux.
func (w *Worker) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TaskTypeSendMail, w.HandleSendMail)
}

// HandleSendMail processes TaskTypeSendMail tasks. Undecodable or invalid
// payloads are dropped; delivery errors are retried by asynq.
func (w *Worker) HandleSendMail(ctx context.Context, t *asynq.Task) error {
	if w.Logger != nil {
		ctx = slogx.WithContext(ctx, w.Logger)
	}
	l := slogx.FromContext(ctx)

	var msg Message
	if err := json.Unmarshal(t.Payload(), &msg); err != nil {
		l.Error("drop undecodable mail task", slog.Any("error", err))
		return fmt.Errorf("decode mail task: %v: %w", err, asynq.SkipRetry)
	}
	if err := msg.Validate(); err != nil {
		l.Error("drop invalid mail task", slog.Any("error", err))
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	if err := w.Delivery.Send(ctx, msg); err != nil {
		if errors.Is(err, ErrInvalidMessage) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		l.Warn("mail delivery failed", slog.String("to", msg.To), slog.Any("error", err))
		return err
	}

	l.Info("mail delivered", slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}
