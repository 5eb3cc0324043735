package tasks

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// CooldownGuard enforces the minimum interval between consecutive accepted
// creations by the same principal. State lives in Redis under a key with TTL
// eviction, so it is shared across processes and lost state is harmless:
// the guard is advisory and never the sole quota boundary.
type CooldownGuard struct {
	client *redis.Client
	window time.Duration
	logger *slog.Logger
}

// NewCooldownGuard constructs a guard with the given window.
func NewCooldownGuard(client *redis.Client, window time.Duration, logger *slog.Logger) *CooldownGuard {
	return &CooldownGuard{client: client, window: window, logger: logger}
}

// Active reports whether the principal is still inside its cooldown window.
// A Redis failure resolves to false: the authoritative limits live in the
// record store, and a broken cache must not block legitimate creations.
func (g *CooldownGuard) Active(ctx context.Context, principalID string) bool {
	if g == nil || g.client == nil || principalID == "" {
		return false
	}
	n, err := g.client.Exists(ctx, g.key(principalID)).Result()
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("cooldown check failed", slog.Any("error", err))
		}
		return false
	}
	return n > 0
}

// Arm starts the cooldown window after an accepted creation. Best effort.
func (g *CooldownGuard) Arm(ctx context.Context, principalID string) {
	if g == nil || g.client == nil || principalID == "" {
		return
	}
	if err := g.client.Set(ctx, g.key(principalID), 1, g.window).Err(); err != nil && g.logger != nil {
		g.logger.Warn("cooldown arm failed", slog.Any("error", err))
	}
}

// Window exposes the configured cooldown duration.
func (g *CooldownGuard) Window() time.Duration {
	if g == nil {
		return 0
	}
	return g.window
}

func (g *CooldownGuard) key(principalID string) string {
	return "cooldown:task_create:" + principalID
}
