package service

import (
	"context"
	"time"

	"phonebox/internal/logger"
	"phonebox/internal/models"
	"phonebox/internal/repository"

	"github.com/google/uuid"
)

// JournalService appends session events and summaries to the repositories.
type JournalService struct {
	eventRepo   repository.EventRepo
	sessionRepo repository.SessionRepo
	log         *logger.Logger
	now         func() time.Time
}

func NewJournalService(eventRepo repository.EventRepo, sessionRepo repository.SessionRepo, log *logger.Logger) *JournalService {
	return &JournalService{
		eventRepo:   eventRepo,
		sessionRepo: sessionRepo,
		log:         log,
		now:         time.Now,
	}
}

// Record appends e, filling in the id and timestamp when missing.
func (j *JournalService) Record(ctx context.Context, e models.SessionEvent) {
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}
	if e.OccurredAt.IsZero() {
		e.OccurredAt = j.now().UTC()
	}
	if err := j.eventRepo.Append(ctx, e); err != nil && j.log != nil {
		j.log.Errorw("journal_append_failed", "err", err, "type", e.Type, "session_id", e.SessionID)
	}
}

// Finish stores the summary row of a terminal session.
func (j *JournalService) Finish(ctx context.Context, r models.SessionRecord) {
	if r.EndedAt.IsZero() {
		r.EndedAt = j.now().UTC()
	}
	if err := j.sessionRepo.Save(ctx, r); err != nil && j.log != nil {
		j.log.Errorw("journal_save_failed", "err", err, "session_id", r.ID, "outcome", r.Outcome)
	}
}

// NoopJournal drops everything. Used when the journal is disabled.
type NoopJournal struct{}

func (NoopJournal) Record(context.Context, models.SessionEvent)  {}
func (NoopJournal) Finish(context.Context, models.SessionRecord) {}
