package profiles_test

import (
	"context"
	"errors"
	"testing"

	"github.com/taskdeck/taskdeck/internal/audit"
	"github.com/taskdeck/taskdeck/internal/profiles"
	"github.com/taskdeck/taskdeck/internal/shared"
	_ "github.com/taskdeck/taskdeck/testing"
)

type memRepo struct {
	roles     map[string]string
	updateErr error
}

func (m *memRepo) GetByID(ctx context.Context, id string) (profiles.Profile, error) {
	role, ok := m.roles[id]
	if !ok {
		return profiles.Profile{}, shared.ErrNotFound
	}
	return profiles.Profile{ID: id, Role: role}, nil
}

func (m *memRepo) RoleByID(ctx context.Context, id string) (string, error) {
	role, ok := m.roles[id]
	if !ok {
		return "", shared.ErrNotFound
	}
	return role, nil
}

func (m *memRepo) List(ctx context.Context) ([]profiles.Profile, error) {
	var out []profiles.Profile
	for id, role := range m.roles {
		out = append(out, profiles.Profile{ID: id, Role: role})
	}
	return out, nil
}

func (m *memRepo) UpdateRole(ctx context.Context, id, role string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	if _, ok := m.roles[id]; !ok {
		return shared.ErrNotFound
	}
	m.roles[id] = role
	return nil
}

type auditSink struct {
	levels   []audit.Level
	messages []string
}

func (a *auditSink) Emit(ctx context.Context, level audit.Level, message string, eventContext map[string]any) {
	a.levels = append(a.levels, level)
	a.messages = append(a.messages, message)
}

func TestUpdateRole(t *testing.T) {
	repo := &memRepo{roles: map[string]string{"u1": profiles.RoleUser}}
	sink := &auditSink{}
	svc := profiles.NewService(repo, sink, nil)

	if err := svc.UpdateRole(context.Background(), "u1", profiles.RoleAdmin); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if repo.roles["u1"] != profiles.RoleAdmin {
		t.Fatalf("role not persisted, got %q", repo.roles["u1"])
	}
	if len(sink.messages) != 1 || sink.messages[0] != "User role changed" {
		t.Fatalf("unexpected audit events %v", sink.messages)
	}
	if sink.levels[0] != audit.LevelSecurity {
		t.Fatalf("role changes log at security level, got %v", sink.levels[0])
	}
}

func TestUpdateRoleRejectsUnknownRole(t *testing.T) {
	repo := &memRepo{roles: map[string]string{"u1": profiles.RoleUser}}
	sink := &auditSink{}
	svc := profiles.NewService(repo, sink, nil)

	err := svc.UpdateRole(context.Background(), "u1", "superadmin")
	var verr *shared.ValidationError
	if !errors.As(err, &verr) || verr.Field != "role" {
		t.Fatalf("expected role validation error, got %v", err)
	}
	if repo.roles["u1"] != profiles.RoleUser {
		t.Fatalf("rejected change must not persist")
	}
	if len(sink.messages) != 1 || sink.messages[0] != "Role change rejected" || sink.levels[0] != audit.LevelSecurity {
		t.Fatalf("unexpected audit events %v", sink.messages)
	}
}

func TestUpdateRoleMissingTarget(t *testing.T) {
	repo := &memRepo{roles: map[string]string{}}
	sink := &auditSink{}
	svc := profiles.NewService(repo, sink, nil)

	if err := svc.UpdateRole(context.Background(), "ghost", profiles.RoleAdmin); !errors.Is(err, shared.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(sink.messages) != 1 || sink.messages[0] != "Role change failed" {
		t.Fatalf("unexpected audit events %v", sink.messages)
	}
}

func TestValidRole(t *testing.T) {
	for role, want := range map[string]bool{
		"admin": true,
		"user":  true,
		"":      false,
		"Admin": false,
		"root":  false,
	} {
		if got := profiles.ValidRole(role); got != want {
			t.Fatalf("ValidRole(%q) = %v, want %v", role, got, want)
		}
	}
}
