package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"phonebox/internal/models"
	"phonebox/internal/repository"
)

type HistoryService struct {
	eventRepo   repository.EventRepo
	sessionRepo repository.SessionRepo
}

func NewHistoryService(eventRepo repository.EventRepo, sessionRepo repository.SessionRepo) *HistoryService {
	return &HistoryService{eventRepo: eventRepo, sessionRepo: sessionRepo}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: From must be <= To")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeEventType trims spaces and uppercases the event type filter.
func normalizeEventType(s string) string {
	return strings.TrimSpace(strings.ToUpper(s))
}

// normalizeAndValidateFilter prepares query parameters and validates the time range.
func normalizeAndValidateFilter(f LogFilter) (repository.EventQuery, error) {
	from := normalizeToUTC(f.From)
	to := normalizeToUTC(f.To)

	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.EventQuery{}, errInvalidTimeRange
	}

	return repository.EventQuery{
		From:      from,
		To:        to,
		Type:      normalizeEventType(f.Type),
		SessionID: strings.TrimSpace(f.SessionID),
	}, nil
}

func (s *HistoryService) List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error) {
	q, err := normalizeAndValidateFilter(f)
	if err != nil {
		return nil, err
	}
	return s.eventRepo.List(ctx, q)
}

func (s *HistoryService) Totals(ctx context.Context) (models.Totals, error) {
	return s.sessionRepo.Totals(ctx)
}

// Session returns the stored summary for id, or nil if none was written.
func (s *HistoryService) Session(ctx context.Context, id string) (*models.SessionRecord, error) {
	return s.sessionRepo.Get(ctx, id)
}

// emptyHistory answers for a disabled journal.
type emptyHistory struct{}

func (emptyHistory) List(context.Context, LogFilter) ([]models.SessionEvent, error) { return nil, nil }
func (emptyHistory) Totals(context.Context) (models.Totals, error)                  { return models.Totals{}, nil }
func (emptyHistory) Session(context.Context, string) (*models.SessionRecord, error) {
	return nil, nil
}
