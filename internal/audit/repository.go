package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists and reads log events.
type Repository interface {
	Insert(ctx context.Context, event Event) error
	ListWindow(ctx context.Context, filters Filters) ([]Event, error)
}

// Filters narrows log listings for the viewer.
type Filters struct {
	Level      Level
	UserID     string
	From       time.Time
	To         time.Time
	OffsetRows int
	LimitRows  int
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// Insert appends one event to the logs table. Events are never updated or
// deleted afterwards.
func (r *PGRepository) Insert(ctx context.Context, event Event) error {
	if r == nil || r.pool == nil {
		return errors.New("audit: repository not initialised")
	}
	if !event.Level.Valid() {
		return errors.New("audit: unknown level " + string(event.Level))
	}
	if event.Message == "" {
		return errors.New("audit: message required")
	}
	id := event.ID
	if id == "" {
		id = uuid.NewString()
	}
	var contextJSON []byte
	if event.Context != nil {
		data, err := json.Marshal(event.Context)
		if err != nil {
			return err
		}
		contextJSON = data
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO logs (id, created_at, level, message, user_id, context)
		 VALUES ($1, COALESCE($2, NOW()), $3, $4, $5, $6)`,
		id, toPgTime(event.CreatedAt), string(event.Level), event.Message,
		optionalUUID(event.UserID), contextJSON)
	return err
}

// ListWindow returns events newest first within the filter window.
func (r *PGRepository) ListWindow(ctx context.Context, filters Filters) ([]Event, error) {
	if r == nil || r.pool == nil {
		return nil, errors.New("audit: repository not initialised")
	}
	limit := filters.LimitRows
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx,
		`SELECT id, created_at, level, message, user_id, context
		 FROM logs
		 WHERE ($1::text = '' OR level = $1)
		   AND ($2::uuid IS NULL OR user_id = $2)
		   AND ($3::timestamptz IS NULL OR created_at >= $3)
		   AND ($4::timestamptz IS NULL OR created_at <= $4)
		 ORDER BY created_at DESC
		 OFFSET $5 LIMIT $6`,
		string(filters.Level), optionalUUID(filters.UserID),
		toPgTime(filters.From), toPgTime(filters.To),
		filters.OffsetRows, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var (
			event       Event
			createdAt   pgtype.Timestamptz
			userID      pgtype.UUID
			contextJSON []byte
			level       string
		)
		if err := rows.Scan(&event.ID, &createdAt, &level, &event.Message, &userID, &contextJSON); err != nil {
			return nil, err
		}
		event.Level = Level(level)
		if createdAt.Valid {
			event.CreatedAt = createdAt.Time
		}
		if userID.Valid {
			event.UserID = uuid.UUID(userID.Bytes).String()
		}
		if len(contextJSON) > 0 {
			if err := json.Unmarshal(contextJSON, &event.Context); err != nil {
				return nil, err
			}
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func toPgTime(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func optionalUUID(value string) pgtype.UUID {
	id, err := uuid.Parse(value)
	if err != nil {
		return pgtype.UUID{}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

var _ Repository = (*PGRepository)(nil)
