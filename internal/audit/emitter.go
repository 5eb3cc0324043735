package audit

import (
	"context"
	"log/slog"
	"time"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// Enqueuer hands an event to the background delivery queue.
type Enqueuer interface {
	EnqueueLogEvent(ctx context.Context, event Event) error
}

// Emitter is the fire-and-forget sink every state-changing operation reports
// to. Emission never fails or blocks the operation it describes: delivery
// errors are written to the operational logger and swallowed.
type Emitter struct {
	queue   Enqueuer
	repo    Repository
	logger  *slog.Logger
	timeout time.Duration
}

// NewEmitter constructs an Emitter. The queue is optional; when absent every
// event is written directly to the repository.
func NewEmitter(queue Enqueuer, repo Repository, logger *slog.Logger) *Emitter {
	return &Emitter{queue: queue, repo: repo, logger: logger, timeout: 2 * time.Second}
}

// Emit records a log event attributed to the session bound to ctx at call
// time. An unauthenticated or missing session yields a system-attributed
// event. Emission survives request cancellation: the write is attempted on a
// detached context even when the caller has already gone away.
func (e *Emitter) Emit(ctx context.Context, level Level, message string, eventContext map[string]any) {
	if e == nil {
		return
	}
	event := Event{
		CreatedAt: time.Now().UTC(),
		Level:     level,
		Message:   message,
		UserID:    shared.PrincipalFromContext(ctx),
		Context:   eventContext,
	}

	detached, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
	defer cancel()

	if e.queue != nil {
		if err := e.queue.EnqueueLogEvent(detached, event); err == nil {
			return
		} else if e.logger != nil {
			e.logger.Warn("audit enqueue failed, falling back to direct insert", slog.Any("error", err))
		}
	}
	if e.repo == nil {
		return
	}
	if err := e.repo.Insert(detached, event); err != nil && e.logger != nil {
		e.logger.Warn("audit insert failed", slog.String("message", message), slog.Any("error", err))
	}
}
