package app_test

import (
	"testing"
	"time"

	"github.com/taskdeck/taskdeck/internal/app"
	_ "github.com/taskdeck/taskdeck/testing"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")

	cfg, err := app.LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.AppAddr != ":8080" {
		t.Fatalf("unexpected addr %s", cfg.AppAddr)
	}
	if cfg.TaskCooldown != 5*time.Second {
		t.Fatalf("unexpected cooldown %v", cfg.TaskCooldown)
	}
	if cfg.TaskDailyLimit != 50 {
		t.Fatalf("unexpected daily limit %d", cfg.TaskDailyLimit)
	}
	if cfg.SessionTTL != 720*time.Hour {
		t.Fatalf("unexpected session ttl %v", cfg.SessionTTL)
	}
	if cfg.IsProduction() {
		t.Fatalf("default env must not be production")
	}
}

func TestLoadConfigRequiresSecrets(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")
	if _, err := app.LoadConfig(); err == nil {
		t.Fatalf("expected missing session secret to fail")
	}

	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "")
	if _, err := app.LoadConfig(); err == nil {
		t.Fatalf("expected missing csrf secret to fail")
	}
}

func TestLoadConfigRejectsNonPositiveLimit(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")
	t.Setenv("TASK_DAILY_LIMIT", "0")
	if _, err := app.LoadConfig(); err == nil {
		t.Fatalf("expected zero daily limit to fail")
	}
}

func TestIsProduction(t *testing.T) {
	t.Setenv("SESSION_SECRET", "test-session-secret")
	t.Setenv("CSRF_SECRET", "test-csrf-secret")
	t.Setenv("APP_ENV", "production")

	cfg, err := app.LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !cfg.IsProduction() {
		t.Fatalf("expected production env")
	}
}
