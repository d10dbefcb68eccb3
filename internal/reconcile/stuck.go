package reconcile

import (
	"context"
	"fmt"
	"time"

	"github.com/govnotify/letterpipe/internal/alerts"
	"github.com/govnotify/letterpipe/internal/calendar"
	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/notification"
	"github.com/govnotify/letterpipe/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type StuckCheckerParams struct {
	fx.In

	Repo     notification.Repository
	Calendar *calendar.Calendar
	Tickets  alerts.TicketClient
	Clock    clock.Clock
	Log      *zap.Logger
}

// StuckChecker alerts when letters handed to the provider two or more
// working days ago are still marked sending.
type StuckChecker struct {
	repo     notification.Repository
	calendar *calendar.Calendar
	tickets  alerts.TicketClient
	clock    clock.Clock
	log      *zap.Logger
	metrics  *metrics.LetterMetrics
}

func NewStuckChecker(p StuckCheckerParams) *StuckChecker {
	return &StuckChecker{
		repo:     p.Repo,
		calendar: p.Calendar,
		tickets:  p.Tickets,
		clock:    p.Clock,
		log:      p.Log.Named("reconcile.stuck"),
		metrics:  metrics.Letters(),
	}
}

// CheckStuckLetters runs the stuck-letter sweep. Weekends and bank
// holidays are skipped outright; a holiday-source failure propagates
// rather than risking a wrong alert.
func (s *StuckChecker) CheckStuckLetters(ctx context.Context) error {
	today := s.clock.Now().UTC()

	working, err := s.calendar.IsWorkingDay(ctx, today)
	if err != nil {
		return fmt.Errorf("working day check: %w", err)
	}
	if !working {
		s.log.Debug("skipping stuck letter check on non-working day")
		return nil
	}

	expected, err := s.calendar.OffsetWorkingDays(ctx, today, -2)
	if err != nil {
		return fmt.Errorf("compute expected sent-by date: %w", err)
	}
	// compare by calendar date: anything sent on the expected day counts
	boundary := time.Date(expected.Year(), expected.Month(), expected.Day(), 23, 59, 59, 0, time.UTC)

	letters, err := s.repo.FindStuckSending(ctx, boundary)
	if err != nil {
		return fmt.Errorf("query stuck letters: %w", err)
	}
	s.metrics.SetStuckLetters(len(letters))
	if len(letters) == 0 {
		return nil
	}

	expectedDate := expected.Format("2006-01-02")
	s.log.Error("letters still sending past expected window",
		zap.Int("count", len(letters)),
		zap.String("expected_sent_by", expectedDate),
	)
	ticket := alerts.Ticket{
		Subject: "Letters still in sending",
		Message: fmt.Sprintf(
			"%d letters were expected to be delivered by %s but are still in the sending state.",
			len(letters), expectedDate,
		),
		Tags: []string{"notify_letters", "stuck_sending"},
	}
	if err := s.tickets.SendTicket(ctx, ticket); err != nil {
		return fmt.Errorf("raise stuck-letter ticket: %w", err)
	}
	return nil
}
