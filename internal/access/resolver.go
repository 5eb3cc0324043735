package access

import (
	"context"
	"errors"
	"log/slog"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/shared"
)

// RoleReader reads the stored role for a principal. Implemented by the
// profiles repository.
type RoleReader interface {
	RoleByID(ctx context.Context, userID string) (string, error)
}

// Emitter is the slice of the audit emitter the resolver needs.
type Emitter interface {
	Emit(ctx context.Context, level audit.Level, message string, eventContext map[string]any)
}

// Resolver maps a session to a role. It is the single source of truth for
// authorization decisions: every caller goes through Resolve instead of
// deriving a role from a cached claim.
type Resolver struct {
	profiles RoleReader
	emitter  Emitter
	logger   *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(profiles RoleReader, emitter Emitter, logger *slog.Logger) *Resolver {
	return &Resolver{profiles: profiles, emitter: emitter, logger: logger}
}

// Resolve returns the live role for the session's principal. The profile row
// is re-read on every call because a role can change between requests. A
// missing profile or a failed read resolves to RoleUser, never RoleAdmin:
// the lookup failing open on the highest privilege is the dangerous
// direction.
func (r *Resolver) Resolve(ctx context.Context, sess *shared.Session) Role {
	if sess == nil || sess.User() == "" {
		return RoleNone
	}
	role, err := r.profiles.RoleByID(ctx, sess.User())
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return RoleUser
		}
		if r.logger != nil {
			r.logger.Error("role lookup failed", slog.String("user_id", sess.User()), slog.Any("error", err))
		}
		if r.emitter != nil {
			r.emitter.Emit(ctx, audit.LevelError, "Role lookup failed", map[string]any{
				"user_id": sess.User(),
				"error":   err.Error(),
			})
		}
		return RoleUser
	}
	if role == string(RoleAdmin) {
		return RoleAdmin
	}
	return RoleUser
}
