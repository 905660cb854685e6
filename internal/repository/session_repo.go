package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"phonebox/internal/models"
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite {
	return &SessionSQLite{db: db}
}

const (
	insertSessionSQL = `
		INSERT INTO sessions (id, started_at, ended_at, duration_s, remaining_s, outcome, pauses, pause_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			ended_at=excluded.ended_at,
			remaining_s=excluded.remaining_s,
			outcome=excluded.outcome,
			pauses=excluded.pauses,
			pause_total=excluded.pause_total
	`

	selectSessionByIDSQL = `
		SELECT id, started_at, ended_at, duration_s, remaining_s, outcome, pauses
		FROM sessions WHERE id = ?
	`

	selectTotalsSQL = `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN outcome = 'EXPIRED' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN outcome = 'FAILED' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(pause_total), 0)
		FROM sessions
	`
)

// marshalPauseCounts converts the tally map to a JSON string.
func marshalPauseCounts(counts map[models.PauseReason]int) (string, error) {
	b, err := json.Marshal(counts)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// unmarshalPauseCounts parses a JSON string into a tally map.
func unmarshalPauseCounts(s string) (map[models.PauseReason]int, error) {
	if s == "" || s == "null" {
		return nil, nil
	}
	var counts map[models.PauseReason]int
	if err := json.Unmarshal([]byte(s), &counts); err != nil {
		return nil, err
	}
	return counts, nil
}

// Save inserts the summary row for a finished session, replacing the end state if it exists.
func (r *SessionSQLite) Save(ctx context.Context, rec models.SessionRecord) error {
	pausesJSON, err := marshalPauseCounts(rec.PauseCounts)
	if err != nil {
		return fmt.Errorf("marshal pause counts: %w", err)
	}

	total := 0
	for _, c := range rec.PauseCounts {
		total += c
	}

	ended := rec.EndedAt
	if ended.IsZero() {
		ended = time.Now().UTC()
	} else {
		ended = ended.UTC()
	}

	_, err = r.db.ExecContext(ctx, insertSessionSQL,
		rec.ID,
		rec.StartedAt.UTC(),
		ended,
		rec.DurationSeconds,
		rec.RemainingSeconds,
		string(rec.Outcome),
		pausesJSON,
		total,
	)
	if err != nil {
		return fmt.Errorf("save session %s: %w", rec.ID, err)
	}
	return nil
}

// Totals aggregates every stored session.
func (r *SessionSQLite) Totals(ctx context.Context) (models.Totals, error) {
	var t models.Totals
	if err := r.db.QueryRowContext(ctx, selectTotalsSQL).Scan(&t.Sessions, &t.Expired, &t.Failed, &t.Pauses); err != nil {
		return models.Totals{}, fmt.Errorf("select totals: %w", err)
	}
	return t, nil
}

// Get fetches a session summary by id. Returns (nil, nil) if not found.
func (r *SessionSQLite) Get(ctx context.Context, id string) (*models.SessionRecord, error) {
	var (
		rec        models.SessionRecord
		outcome    string
		pausesJSON sql.NullString
	)
	err := r.db.QueryRowContext(ctx, selectSessionByIDSQL, id).Scan(
		&rec.ID,
		&rec.StartedAt,
		&rec.EndedAt,
		&rec.DurationSeconds,
		&rec.RemainingSeconds,
		&outcome,
		&pausesJSON,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select session %s: %w", id, err)
	}

	counts, err := unmarshalPauseCounts(pausesJSON.String)
	if err != nil {
		return nil, fmt.Errorf("decode pauses of session %s: %w", id, err)
	}
	rec.Outcome = models.Outcome(outcome)
	rec.PauseCounts = counts
	rec.StartedAt = rec.StartedAt.UTC()
	rec.EndedAt = rec.EndedAt.UTC()
	return &rec, nil
}
