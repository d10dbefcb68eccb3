package reconcile

import (
	"context"
	"time"

	"github.com/govnotify/letterpipe/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// WorkerConfig controls the daily sweep loop. The stuck-letter check runs
// in the morning; the acknowledgement audit must wait until after the
// evening print run has populated today's zips_sent folder.
type WorkerConfig struct {
	PollInterval time.Duration
	// StuckRunAtHour is the earliest UTC hour the stuck-letter sweep runs.
	StuckRunAtHour int
	// AckRunAtHour is the earliest UTC hour the acknowledgement audit runs.
	AckRunAtHour int
}

func DefaultWorkerConfig() WorkerConfig {
	return WorkerConfig{
		PollInterval:   10 * time.Minute,
		StuckRunAtHour: 9,
		AckRunAtHour:   23,
	}
}

func (c WorkerConfig) withDefaults() WorkerConfig {
	defaults := DefaultWorkerConfig()
	if c.PollInterval <= 0 {
		c.PollInterval = defaults.PollInterval
	}
	if c.StuckRunAtHour <= 0 {
		c.StuckRunAtHour = defaults.StuckRunAtHour
	}
	if c.AckRunAtHour <= 0 {
		c.AckRunAtHour = defaults.AckRunAtHour
	}
	return c
}

type WorkerParams struct {
	fx.In

	Auditor *AckAuditor
	Stuck   *StuckChecker
	Clock   clock.Clock
	Log     *zap.Logger
	Config  WorkerConfig `optional:"true"`
}

// Worker triggers each daily sweep once per day, the first poll at or
// after that sweep's configured hour.
type Worker struct {
	auditor *AckAuditor
	stuck   *StuckChecker
	clock   clock.Clock
	log     *zap.Logger
	cfg     WorkerConfig

	lastStuckDay string
	lastAckDay   string
}

func NewWorker(p WorkerParams) *Worker {
	return &Worker{
		auditor: p.Auditor,
		stuck:   p.Stuck,
		clock:   p.Clock,
		log:     p.Log.Named("reconcile.worker"),
		cfg:     p.Config.withDefaults(),
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("daily reconciliation sweep failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	now := w.clock.Now().UTC()
	day := now.Format("2006-01-02")

	if now.Hour() >= w.cfg.StuckRunAtHour && w.lastStuckDay != day {
		w.lastStuckDay = day
		if err := w.stuck.CheckStuckLetters(ctx); err != nil {
			w.log.Error("stuck letter check failed", zap.Error(err))
		}
	}

	if now.Hour() >= w.cfg.AckRunAtHour && w.lastAckDay != day {
		w.lastAckDay = day
		if err := w.auditor.CheckForMissingAckFiles(ctx); err != nil {
			w.log.Error("acknowledgement audit failed", zap.Error(err))
		}
	}
	return nil
}
