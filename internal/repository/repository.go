package repository

import (
	"context"
	"database/sql"
	"time"

	"phonebox/internal/models"
)

// SessionRepo stores one summary row per finished session.
type SessionRepo interface {
	Save(ctx context.Context, r models.SessionRecord) error
	Get(ctx context.Context, id string) (*models.SessionRecord, error)
	Totals(ctx context.Context) (models.Totals, error)
}

// EventRepo is the append-only session journal.
type EventRepo interface {
	Append(ctx context.Context, e models.SessionEvent) error
	List(ctx context.Context, q EventQuery) ([]models.SessionEvent, error)
}

// EventQuery filters List. Zero values mean "no bound".
type EventQuery struct {
	From      time.Time
	To        time.Time
	Type      string
	SessionID string
}

type Repository struct {
	SessionRepo SessionRepo
	EventRepo   EventRepo
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		SessionRepo: NewSessionSQLite(db),
		EventRepo:   NewEventSQLite(db),
	}
}
