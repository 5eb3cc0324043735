package jobs_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/jobs"
	_ "github.com/taskdeck/taskdeck/testing"
)

type captureRepo struct {
	inserted []audit.Event
	err      error
}

func (c *captureRepo) Insert(ctx context.Context, event audit.Event) error {
	if c.err != nil {
		return c.err
	}
	c.inserted = append(c.inserted, event)
	return nil
}

func (c *captureRepo) ListWindow(ctx context.Context, filters audit.Filters) ([]audit.Event, error) {
	return nil, nil
}

func TestAuditRecordRoundTrip(t *testing.T) {
	task, err := jobs.NewAuditRecordTask(jobs.AuditRecordPayload{
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Level:     "security",
		Message:   "User role changed",
		UserID:    "admin-1",
		Context:   map[string]any{"new_role": "admin"},
	})
	if err != nil {
		t.Fatalf("build task: %v", err)
	}
	if task.Type() != jobs.TaskTypeAuditRecord {
		t.Fatalf("unexpected task type %s", task.Type())
	}

	repo := &captureRepo{}
	if err := jobs.NewAuditRecordHandler(repo)(context.Background(), task); err != nil {
		t.Fatalf("handle task: %v", err)
	}
	if len(repo.inserted) != 1 {
		t.Fatalf("expected one insert, got %d", len(repo.inserted))
	}
	got := repo.inserted[0]
	if got.Level != audit.LevelSecurity || got.Message != "User role changed" || got.UserID != "admin-1" {
		t.Fatalf("unexpected event %+v", got)
	}
}

func TestAuditRecordHandlerSkipsBadPayload(t *testing.T) {
	repo := &captureRepo{}
	bad := asynq.NewTask(jobs.TaskTypeAuditRecord, []byte("not json"))

	err := jobs.NewAuditRecordHandler(repo)(context.Background(), bad)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("expected SkipRetry, got %v", err)
	}
	if len(repo.inserted) != 0 {
		t.Fatalf("malformed payload must not be inserted")
	}
}
