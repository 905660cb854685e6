package service

import (
	"context"

	"phonebox/internal/logger"
	"phonebox/internal/models"
	"phonebox/internal/repository"
)

// Journal records what happens during a session. Failures are logged, never
// returned: storage trouble must not stop the lock logic.
type Journal interface {
	Record(ctx context.Context, e models.SessionEvent)
	Finish(ctx context.Context, r models.SessionRecord)
}

// History exposes read access to the journal.
type History interface {
	List(ctx context.Context, f LogFilter) ([]models.SessionEvent, error)
	Totals(ctx context.Context) (models.Totals, error)
	Session(ctx context.Context, id string) (*models.SessionRecord, error)
}

// Service aggregates the journal-backed services used next to the controller.
type Service struct {
	Journal
	History
}

// NewService wires the repository layer into concrete services. A nil
// repository gives a no-op journal and an empty history.
func NewService(repos *repository.Repository, log *logger.Logger) *Service {
	if repos == nil {
		return &Service{
			Journal: NoopJournal{},
			History: emptyHistory{},
		}
	}
	return &Service{
		Journal: NewJournalService(repos.EventRepo, repos.SessionRepo, log),
		History: NewHistoryService(repos.EventRepo, repos.SessionRepo),
	}
}
