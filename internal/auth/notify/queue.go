package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the queue mail tasks are enqueued on.
	QueueDefault = "default"
	// TaskTypeSendMail is the asynq task type for outgoing mail.
	TaskTypeSendMail = "mail:send"
)

// NewSendMailTask wraps msg in an asynq task.
func NewSendMailTask(msg Message) (*asynq.Task, error) {
	data, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeSendMail, data,
		asynq.Queue(QueueDefault),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	), nil
}

// QueueNotifier hands mail to the worker through Redis.
type QueueNotifier struct {
	client *asynq.Client
}

// NewQueueNotifier returns a notifier enqueuing on the given Redis.
func NewQueueNotifier(opt asynq.RedisConnOpt) *QueueNotifier {
	return &QueueNotifier{client: asynq.NewClient(opt)}
}

func (n *QueueNotifier) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	task, err := NewSendMailTask(msg)
	if err != nil {
		return fmt.Errorf("notify: build task: %w", err)
	}
	if _, err := n.client.EnqueueContext(ctx, task); err != nil {
		return fmt.Errorf("notify: enqueue: %w", err)
	}
	return nil
}

// Close releases the Redis connection.
func (n *QueueNotifier) Close() error { return n.client.Close() }
