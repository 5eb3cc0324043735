package audit

import (
	"time"
)

// Level classifies a log event.
type Level string

// Log levels. Security is reserved for privileged state changes such as role
// updates and administrative overrides.
const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelSecurity Level = "security"
)

// Valid reports whether the level is one of the known values.
func (l Level) Valid() bool {
	switch l {
	case LevelInfo, LevelWarning, LevelError, LevelSecurity:
		return true
	}
	return false
}

// Event is an append-only log record. UserID is empty for system-attributed
// events (startup, anonymous failures).
type Event struct {
	ID        string         `json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	Level     Level          `json:"level"`
	Message   string         `json:"message"`
	UserID    string         `json:"user_id,omitempty"`
	Context   map[string]any `json:"context,omitempty"`
}
