package tasks

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Emitter is the slice of the audit emitter the service needs.
type Emitter interface {
	Emit(ctx context.Context, level audit.Level, message string, eventContext map[string]any)
}

// ThrottleMetrics counts creation rejections. Optional.
type ThrottleMetrics interface {
	ObserveThrottleRejection(limit string)
}

// Service guards the task mutation paths. Creation runs through three checks
// in order: title validation (local, no store round-trip), the advisory
// cooldown, and the daily quota. The quota has a count-then-insert pre-flight
// for a fast rejection, but the authoritative rejection comes from the store
// trigger, which is atomic with the insert; a caller skipping the pre-flight
// cannot exceed the cap.
type Service struct {
	repo       RepositoryPort
	cooldown   *CooldownGuard
	emitter    Emitter
	logger     *slog.Logger
	dailyLimit int
	metrics    ThrottleMetrics
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, cooldown *CooldownGuard, emitter Emitter, logger *slog.Logger, dailyLimit int) *Service {
	return &Service{repo: repo, cooldown: cooldown, emitter: emitter, logger: logger, dailyLimit: dailyLimit}
}

// WithMetrics attaches a rejection counter to the service.
func (s *Service) WithMetrics(metrics ThrottleMetrics) *Service {
	s.metrics = metrics
	return s
}

// Create runs the gated creation path for the acting principal.
func (s *Service) Create(ctx context.Context, principalID, rawTitle string) (Task, error) {
	title := strings.TrimSpace(rawTitle)
	if n := utf8.RuneCountInString(title); n < TitleMinLen || n > TitleMaxLen {
		reason := "title must be between 3 and 100 characters"
		s.emit(ctx, audit.LevelWarning, "Invalid task title", map[string]any{
			"raw_title": rawTitle,
			"issue":     reason,
		})
		return Task{}, &shared.ValidationError{Field: "title", Reason: reason}
	}

	if s.cooldown.Active(ctx, principalID) {
		s.emit(ctx, audit.LevelWarning, "Task creation attempted too quickly", map[string]any{
			"user_id":          principalID,
			"cooldown_seconds": s.cooldown.Window().Seconds(),
		})
		s.observeRejection(shared.ThrottleCooldown)
		return Task{}, &shared.ThrottleError{Reason: shared.ThrottleCooldown}
	}

	// Optimistic pre-flight. Failure here is not fatal: the trigger decides.
	since := time.Now().Add(-24 * time.Hour)
	if count, err := s.repo.CountSince(ctx, principalID, since); err != nil {
		s.logger.Warn("quota pre-flight failed", slog.Any("error", err))
	} else if count >= s.dailyLimit {
		s.emit(ctx, audit.LevelWarning, "Daily task limit reached", map[string]any{
			"user_id": principalID,
			"limit":   s.dailyLimit,
		})
		s.observeRejection(shared.ThrottleDailyQuota)
		return Task{}, &shared.ThrottleError{Reason: shared.ThrottleDailyQuota}
	}

	task, err := s.repo.Create(ctx, principalID, title)
	if err != nil {
		if errors.Is(err, ErrDailyLimitReached) {
			s.emit(ctx, audit.LevelWarning, "Daily task limit reached (enforced by store)", map[string]any{
				"user_id": principalID,
				"limit":   s.dailyLimit,
			})
			s.observeRejection(shared.ThrottleDailyQuota)
			return Task{}, &shared.ThrottleError{Reason: shared.ThrottleDailyQuota}
		}
		s.emit(ctx, audit.LevelError, "Task creation failed", map[string]any{
			"user_id": principalID,
			"title":   title,
			"error":   err.Error(),
		})
		return Task{}, err
	}

	s.cooldown.Arm(ctx, principalID)
	s.emit(ctx, audit.LevelInfo, "Task created", map[string]any{
		"task_id": task.ID,
		"title":   task.Title,
	})
	return task, nil
}

// List returns the tasks visible to the actor, newest first. Admins see
// every task; everyone else only their own.
func (s *Service) List(ctx context.Context, actor Actor) ([]Task, error) {
	if actor.Admin {
		return s.repo.ListAll(ctx)
	}
	return s.repo.ListByOwner(ctx, actor.ID)
}

// ListAll returns every task. Reached only through the admin area.
func (s *Service) ListAll(ctx context.Context) ([]Task, error) {
	return s.repo.ListAll(ctx)
}

// Toggle flips the completion state. Owner or admin override; a toggle by a
// non-owner admin is a privileged change and logs at security level.
func (s *Service) Toggle(ctx context.Context, actor Actor, taskID string) (Task, error) {
	task, err := s.authorize(ctx, actor, taskID)
	if err != nil {
		return Task{}, err
	}
	if err := s.repo.SetDone(ctx, taskID, !task.IsDone); err != nil {
		s.emit(ctx, audit.LevelError, "Task toggle failed", map[string]any{
			"task_id": taskID,
			"error":   err.Error(),
		})
		return Task{}, err
	}
	task.IsDone = !task.IsDone
	if actor.ID != task.UserID {
		s.emit(ctx, audit.LevelSecurity, "Task toggled by admin override", map[string]any{
			"task_id":  taskID,
			"owner_id": task.UserID,
		})
	} else {
		s.emit(ctx, audit.LevelInfo, "Task state changed", map[string]any{
			"task_id":     taskID,
			"new_is_done": task.IsDone,
		})
	}
	return task, nil
}

// UpdateTitle edits the title with the same bounds as creation.
func (s *Service) UpdateTitle(ctx context.Context, actor Actor, taskID, rawTitle string) (Task, error) {
	title := strings.TrimSpace(rawTitle)
	if n := utf8.RuneCountInString(title); n < TitleMinLen || n > TitleMaxLen {
		reason := "title must be between 3 and 100 characters"
		s.emit(ctx, audit.LevelWarning, "Invalid title on task update", map[string]any{
			"task_id":   taskID,
			"raw_title": rawTitle,
			"issue":     reason,
		})
		return Task{}, &shared.ValidationError{Field: "title", Reason: reason}
	}
	task, err := s.authorize(ctx, actor, taskID)
	if err != nil {
		return Task{}, err
	}
	if err := s.repo.UpdateTitle(ctx, taskID, title); err != nil {
		s.emit(ctx, audit.LevelError, "Task update failed", map[string]any{
			"task_id": taskID,
			"error":   err.Error(),
		})
		return Task{}, err
	}
	task.Title = title
	s.emit(ctx, audit.LevelInfo, "Task updated", map[string]any{
		"task_id":   taskID,
		"new_title": title,
	})
	return task, nil
}

// Delete removes a task. Deletion by a non-owner admin logs at security
// level; deletion by the owner logs at warning level because it destroys
// data.
func (s *Service) Delete(ctx context.Context, actor Actor, taskID string) error {
	task, err := s.authorize(ctx, actor, taskID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, taskID); err != nil {
		s.emit(ctx, audit.LevelError, "Task deletion failed", map[string]any{
			"task_id": taskID,
			"error":   err.Error(),
		})
		return err
	}
	if actor.ID != task.UserID {
		s.emit(ctx, audit.LevelSecurity, "Task deleted by admin override", map[string]any{
			"task_id":  taskID,
			"owner_id": task.UserID,
		})
	} else {
		s.emit(ctx, audit.LevelWarning, "Task deleted", map[string]any{
			"task_id": taskID,
		})
	}
	return nil
}

// authorize loads the task and checks owner-or-admin access.
func (s *Service) authorize(ctx context.Context, actor Actor, taskID string) (Task, error) {
	task, err := s.repo.Get(ctx, taskID)
	if err != nil {
		return Task{}, err
	}
	if task.UserID != actor.ID && !actor.Admin {
		return Task{}, shared.ErrForbidden
	}
	return task, nil
}

func (s *Service) observeRejection(limit string) {
	if s.metrics != nil {
		s.metrics.ObserveThrottleRejection(limit)
	}
}

func (s *Service) emit(ctx context.Context, level audit.Level, message string, eventContext map[string]any) {
	if s.emitter != nil {
		s.emitter.Emit(ctx, level, message, eventContext)
	}
}
