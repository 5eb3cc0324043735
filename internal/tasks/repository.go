package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taskdeck/taskdeck/internal/shared"
)

// DailyLimitToken is the error token the store raises when the insert trigger
// rejects a creation over the daily cap. The repository recognises it and
// translates it into ErrDailyLimitReached.
const DailyLimitToken = "DAILY_TASK_LIMIT_REACHED"

// ErrDailyLimitReached is returned when the store-side quota check rejected
// an insert.
var ErrDailyLimitReached = errors.New("daily task limit reached")

// RepositoryPort defines data access methods for tasks.
type RepositoryPort interface {
	Create(ctx context.Context, userID, title string) (Task, error)
	CountSince(ctx context.Context, userID string, since time.Time) (int, error)
	ListByOwner(ctx context.Context, userID string) ([]Task, error)
	ListAll(ctx context.Context) ([]Task, error)
	Get(ctx context.Context, id string) (Task, error)
	SetDone(ctx context.Context, id string, done bool) error
	UpdateTitle(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}

// Repository provides PostgreSQL backed persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a task. The tasks_daily_limit trigger counts the owner's
// creations in the trailing 24 hours atomically with the insert; its
// rejection surfaces here as ErrDailyLimitReached.
func (r *Repository) Create(ctx context.Context, userID, title string) (Task, error) {
	var t Task
	err := r.pool.QueryRow(ctx,
		`INSERT INTO tasks (id, title, user_id) VALUES ($1, $2, $3)
		 RETURNING id, title, is_done, created_at, user_id`,
		uuid.NewString(), title, userID).
		Scan(&t.ID, &t.Title, &t.IsDone, &t.CreatedAt, &t.UserID)
	if err != nil {
		if isDailyLimitError(err) {
			return Task{}, ErrDailyLimitReached
		}
		return Task{}, err
	}
	return t, nil
}

// CountSince returns the number of tasks the owner created at or after the
// given instant. Used as the optimistic pre-flight quota check only; the
// trigger remains authoritative.
func (r *Repository) CountSince(ctx context.Context, userID string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE user_id = $1 AND created_at >= $2`,
		userID, since).Scan(&count)
	return count, err
}

// ListByOwner returns the owner's tasks, newest first.
func (r *Repository) ListByOwner(ctx context.Context, userID string) ([]Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, is_done, created_at, user_id FROM tasks
		 WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// ListAll returns every task, newest first. Admin area only.
func (r *Repository) ListAll(ctx context.Context) ([]Task, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, is_done, created_at, user_id FROM tasks ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	return scanTasks(rows)
}

// Get fetches one task.
func (r *Repository) Get(ctx context.Context, id string) (Task, error) {
	var t Task
	err := r.pool.QueryRow(ctx,
		`SELECT id, title, is_done, created_at, user_id FROM tasks WHERE id = $1`, id).
		Scan(&t.ID, &t.Title, &t.IsDone, &t.CreatedAt, &t.UserID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.ErrNotFound
		}
		return Task{}, err
	}
	return t, nil
}

// SetDone updates the completion flag.
func (r *Repository) SetDone(ctx context.Context, id string, done bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET is_done = $2 WHERE id = $1`, id, done)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// UpdateTitle replaces the task title.
func (r *Repository) UpdateTitle(ctx context.Context, id, title string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE tasks SET title = $2 WHERE id = $1`, id, title)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete removes a task.
func (r *Repository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func scanTasks(rows pgx.Rows) ([]Task, error) {
	defer rows.Close()
	var result []Task
	for rows.Next() {
		var t Task
		if err := rows.Scan(&t.ID, &t.Title, &t.IsDone, &t.CreatedAt, &t.UserID); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// isDailyLimitError recognises the trigger's RAISE EXCEPTION by its message
// token. The code is P0001 (raise_exception); the token keeps the check
// independent of message wording around it.
func isDailyLimitError(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return strings.Contains(pgErr.Message, DailyLimitToken)
}

var _ RepositoryPort = (*Repository)(nil)
