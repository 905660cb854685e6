package main

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"phonebox/internal/config"
	"phonebox/internal/device"
	"phonebox/internal/device/gpio"
	"phonebox/internal/device/terminal"
	"phonebox/internal/logger"
	"phonebox/internal/repository"
	"phonebox/internal/repository/db"
	"phonebox/internal/service"
)

func main() {
	// init logger
	log := logger.Get(logger.InfoLevel)

	// load configs/config.yml
	cfg, err := config.Load("configs")
	if err != nil {
		log.Fatalw("error reading config", "err", err)
	}
	logger.SetLevel(cfg.LogLevel)

	// open journal
	conn, err := openJournal(cfg, log)
	if err != nil {
		log.Fatalw("failed to init sqlite", "err", err)
	}
	defer func() {
		if conn == nil {
			return
		}
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	// wire dependencies
	var repos *repository.Repository
	if conn != nil {
		repos = repository.NewRepository(conn)
	}
	services := service.NewService(repos, log)

	// context cancelled on SIGINT/SIGTERM or Ctrl-C in the terminal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go waitForShutdown(ctx, cancel, log)

	if totals, err := services.Totals(ctx); err != nil {
		log.Warnw("journal_totals_failed", "err", err)
	} else {
		log.Infow("journal_totals", "sessions", totals.Sessions, "expired", totals.Expired, "failed", totals.Failed, "pauses", totals.Pauses)
	}

	devs, err := openDevices(cfg, cancel, log)
	if err != nil {
		log.Fatalw("device unavailable", "platform", cfg.Platform, "err", err)
	}
	defer func() {
		if devs.Close == nil {
			return
		}
		if cerr := devs.Close(); cerr != nil {
			log.Errorw("failed to close devices", "err", cerr)
		}
	}()

	ctrl := service.NewController(devs, service.Settings{
		Tick:         cfg.Tick,
		PollInterval: cfg.PollInterval,
	}, services.Journal, log)

	runSessions(ctx, ctrl, services.History, log)
	log.Infow("shutting down")
}

// runSessions runs sessions back to back until ctx is cancelled. The end
// screen stays up until '*' is pressed.
func runSessions(ctx context.Context, ctrl *service.Controller, history service.History, log *logger.Logger) {
	for {
		s, err := ctrl.Run(ctx)
		if err != nil {
			if !errors.Is(err, context.Canceled) {
				log.Errorw("session_loop_stopped", "err", err)
			}
			return
		}
		log.Infow("session_finished",
			"session_id", s.ID,
			"state", ctrl.State().String(),
			"duration_seconds", s.DurationSeconds,
			"remaining_seconds", s.RemainingSeconds,
			"pauses", s.TotalPauses(),
		)
		logTrail(ctx, history, s.ID, log)

		if err := ctrl.WaitForRestart(ctx); err != nil {
			return
		}
	}
}

// logTrail writes the journaled events of one session at debug level.
func logTrail(ctx context.Context, history service.History, id string, log *logger.Logger) {
	events, err := history.List(ctx, service.LogFilter{SessionID: id})
	if err != nil {
		log.Warnw("journal_list_failed", "err", err, "session_id", id)
		return
	}
	for _, e := range events {
		log.Debugw("journal_event", "session_id", id, "type", e.Type, "at", e.OccurredAt, "description", e.Description)
	}
	if rec, err := history.Session(ctx, id); err == nil && rec != nil {
		log.Debugw("journal_session", "session_id", id, "outcome", rec.Outcome, "ended_at", rec.EndedAt)
	}
}

// openJournal opens the SQLite journal, or returns nil when it is disabled.
func openJournal(cfg config.Config, log *logger.Logger) (*sql.DB, error) {
	if !cfg.Journal.Enabled {
		log.Infow("journal disabled")
		return nil, nil
	}
	return db.InitDB(cfg.Journal.Path)
}

// openDevices initializes the configured platform.
func openDevices(cfg config.Config, cancel context.CancelFunc, log *logger.Logger) (device.Devices, error) {
	switch cfg.Platform {
	case config.PlatformGPIO:
		return gpio.Open(cfg, log)
	default:
		return terminal.Open(cfg, cancel)
	}
}

// waitForShutdown listens for termination signals and cancels ctx.
func waitForShutdown(ctx context.Context, cancel context.CancelFunc, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case sig := <-quit:
		log.Infow("signal received", "signal", sig.String())
		cancel()
	case <-ctx.Done():
	}
}
