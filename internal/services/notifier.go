package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/patientportal/backend/internal/models"
)

const (
	// TypeProgramCompleted is the asynq task type published when a program reaches 100%
	TypeProgramCompleted = "progress:program_completed"
	notificationsQueue   = "notifications"
	notificationRetries  = 5
)

// TaskEnqueuer is the part of *asynq.Client used to publish tasks
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type asynqNotifier struct {
	client TaskEnqueuer
}

// NewAsynqNotifier creates a notifier that enqueues completion tasks for the notification worker
func NewAsynqNotifier(client TaskEnqueuer) *asynqNotifier {
	return &asynqNotifier{
		client: client,
	}
}

// NotifyProgramCompleted enqueues a program completion task.
// The task id is derived from user and program, so a duplicate still pending in the queue is not enqueued twice.
func (n *asynqNotifier) NotifyProgramCompleted(ctx context.Context, event models.ProgramCompletedEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal completion event: %w", err)
	}

	task := asynq.NewTask(TypeProgramCompleted, payload)
	_, err = n.client.EnqueueContext(ctx, task,
		asynq.Queue(notificationsQueue),
		asynq.MaxRetry(notificationRetries),
		asynq.TaskID(fmt.Sprintf("program-completed:%s:%s", event.UserID, event.ProgramID)),
	)
	if err != nil && !errors.Is(err, asynq.ErrTaskIDConflict) {
		return fmt.Errorf("failed to enqueue completion task: %w", err)
	}

	return nil
}

type noopNotifier struct{}

// NewNoopNotifier creates a notifier used when no queue is configured
func NewNoopNotifier() noopNotifier {
	return noopNotifier{}
}

func (noopNotifier) NotifyProgramCompleted(context.Context, models.ProgramCompletedEvent) error {
	return nil
}
