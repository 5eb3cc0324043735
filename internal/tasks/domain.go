package tasks

import "time"

// Task is an owner-scoped todo item. Visible and mutable by its owner and,
// as an administrative override, by any admin.
type Task struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	IsDone    bool      `json:"is_done"`
	CreatedAt time.Time `json:"created_at"`
	UserID    string    `json:"user_id"`
}

// Actor identifies the authenticated principal performing an operation and
// whether it holds the admin override.
type Actor struct {
	ID    string
	Admin bool
}

// Creation limits. The cooldown is an advisory UX guard; the daily cap is
// authoritative at the record store.
const (
	TitleMinLen = 3
	TitleMaxLen = 100
)
