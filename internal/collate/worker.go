package collate

import (
	"context"
	"fmt"
	"time"

	"github.com/govnotify/letterpipe/internal/alerts"
	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type WorkerParams struct {
	fx.In

	Cfg     config.Config
	Window  *Window
	Engine  *Engine
	Tickets alerts.TicketClient
	Clock   clock.Clock
	Log     *zap.Logger
}

// Worker polls the clock and triggers a collation run while the local
// time sits inside the print-run window. Outside the window each poll is
// a silent no-op, so overlapping schedules are harmless.
type Worker struct {
	window       *Window
	engine       *Engine
	tickets      alerts.TicketClient
	clock        clock.Clock
	log          *zap.Logger
	pollInterval time.Duration
}

func NewWorker(p WorkerParams) *Worker {
	interval := p.Cfg.Letters.CollatePollInterval
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	return &Worker{
		window:       p.Window,
		engine:       p.Engine,
		tickets:      p.Tickets,
		clock:        p.Clock,
		log:          p.Log.Named("collate.worker"),
		pollInterval: interval,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Error("collation run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// RunOnce checks whether it is time to collate and, if so, runs the
// engine against the most recent cutoff. A failed run raises a support
// ticket; letters left behind will not dispatch until someone looks.
func (w *Worker) RunOnce(ctx context.Context) error {
	now := w.clock.Now()
	if !w.window.Contains(now) {
		w.log.Debug("outside print run window", zap.Time("now", now))
		return nil
	}
	cutoff := w.window.CutoffUTC(now)
	w.log.Info("starting collation run", zap.Time("cutoff", cutoff))

	err := w.engine.Collate(ctx, cutoff)
	if err == nil {
		return nil
	}
	ticket := alerts.Ticket{
		Subject: "Letter collation run failed",
		Message: fmt.Sprintf(
			"The letter collation run for cutoff %s failed: %v. Letters awaiting dispatch will not be sent until a run succeeds.",
			cutoff.Format(time.RFC3339), err,
		),
		Tags: []string{"notify_letters", "collate_failed"},
	}
	if ticketErr := w.tickets.SendTicket(ctx, ticket); ticketErr != nil {
		w.log.Error("failed to raise collation-failure ticket", zap.Error(ticketErr))
	}
	return err
}
