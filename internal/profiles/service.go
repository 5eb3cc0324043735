package profiles

import (
	"context"
	"log/slog"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// Emitter is the slice of the audit emitter the service needs.
type Emitter interface {
	Emit(ctx context.Context, level audit.Level, message string, eventContext map[string]any)
}

// Service handles profile business logic. Role changes are privileged state
// changes and always produce a security-level log event, success or failure.
type Service struct {
	repo    RepositoryPort
	emitter Emitter
	logger  *slog.Logger
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, emitter Emitter, logger *slog.Logger) *Service {
	return &Service{repo: repo, emitter: emitter, logger: logger}
}

// List returns all profiles.
func (s *Service) List(ctx context.Context) ([]Profile, error) {
	return s.repo.List(ctx)
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id string) (Profile, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateRole changes the role stored for a principal. The caller is expected
// to have passed the admin-area gate already; the change takes effect on the
// target's next request because roles are re-read live.
func (s *Service) UpdateRole(ctx context.Context, targetID, newRole string) error {
	if !ValidRole(newRole) {
		err := &shared.ValidationError{Field: "role", Reason: "role must be admin or user"}
		s.emit(ctx, audit.LevelSecurity, "Role change rejected", map[string]any{
			"user_id": targetID,
			"role":    newRole,
			"error":   err.Error(),
		})
		return err
	}
	if err := s.repo.UpdateRole(ctx, targetID, newRole); err != nil {
		s.emit(ctx, audit.LevelSecurity, "Role change failed", map[string]any{
			"user_id": targetID,
			"role":    newRole,
			"error":   err.Error(),
		})
		return err
	}
	s.emit(ctx, audit.LevelSecurity, "User role changed", map[string]any{
		"user_id":  targetID,
		"new_role": newRole,
	})
	return nil
}

func (s *Service) emit(ctx context.Context, level audit.Level, message string, eventContext map[string]any) {
	if s.emitter != nil {
		s.emitter.Emit(ctx, level, message, eventContext)
	}
}
