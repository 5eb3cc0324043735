package jobs

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskdeck/taskdeck/internal/audit"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskTypeAuditRecord is the task type for persisting audit log events.
	TaskTypeAuditRecord = "audit:record"
)

// AuditRecordPayload carries one log event through the queue.
type AuditRecordPayload struct {
	CreatedAt time.Time      `json:"created_at"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	UserID    string         `json:"user_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}

// NewAuditRecordTask constructs an Asynq task. Delivery is retry-less: a log
// write that fails once is dropped, never replayed against the operation it
// describes.
func NewAuditRecordTask(payload AuditRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskTypeAuditRecord, data, asynq.MaxRetry(0), asynq.Timeout(5*time.Second)), nil
}

// NewAuditRecordHandler returns the worker handler persisting queued events.
func NewAuditRecordHandler(repo audit.Repository) asynq.HandlerFunc {
	return func(ctx context.Context, t *asynq.Task) error {
		var payload AuditRecordPayload
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return asynq.SkipRetry
		}
		return repo.Insert(ctx, audit.Event{
			CreatedAt: payload.CreatedAt,
			Level:     audit.Level(payload.Level),
			Message:   payload.Message,
			UserID:    payload.UserID,
			Context:   payload.Context,
		})
	}
}
