package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/govnotify/letterpipe/internal/alerts"
	"github.com/govnotify/letterpipe/internal/calendar"
	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/notification"
	"github.com/govnotify/letterpipe/internal/postage"
	"go.uber.org/zap"
)

type stuckRepo struct {
	stuck    []notification.Notification
	boundary time.Time
	queried  bool
}

func (r *stuckRepo) FindByID(context.Context, string) (*notification.Notification, bool, error) {
	return nil, false, notification.ErrNotFound
}

func (r *stuckRepo) Update(context.Context, *notification.Notification, bool) error {
	return nil
}

func (r *stuckRepo) FindLettersToBeSent(context.Context, time.Time, postage.Class) ([]notification.Notification, error) {
	return nil, nil
}

func (r *stuckRepo) FindStuckSending(_ context.Context, sentBefore time.Time) ([]notification.Notification, error) {
	r.queried = true
	r.boundary = sentBefore
	return r.stuck, nil
}

func (r *stuckRepo) MarkSending(context.Context, []string, time.Time) error {
	return nil
}

func newStuckChecker(repo notification.Repository, tickets alerts.TicketClient, now time.Time) *StuckChecker {
	return NewStuckChecker(StuckCheckerParams{
		Repo:     repo,
		Calendar: calendar.New(calendar.NewMemorySource()),
		Tickets:  tickets,
		Clock:    clock.NewFixed(now),
		Log:      zap.NewNop(),
	})
}

func TestStuckCheckOnMondayLooksBackToThursday(t *testing.T) {
	repo := &stuckRepo{stuck: []notification.Notification{{ID: "a"}, {ID: "b"}}}
	tickets := alerts.NewMemoryClient()
	monday := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	checker := newStuckChecker(repo, tickets, monday)
	if err := checker.CheckStuckLetters(context.Background()); err != nil {
		t.Fatalf("check: %v", err)
	}

	if !repo.queried {
		t.Fatal("repository never queried")
	}
	if repo.boundary.Day() != 29 || repo.boundary.Month() != time.February {
		t.Fatalf("boundary=%v, want 29 February", repo.boundary)
	}
	got := tickets.Tickets()
	if len(got) != 1 {
		t.Fatalf("expected 1 ticket, got %d", len(got))
	}
}

func TestStuckCheckSkipsWeekend(t *testing.T) {
	repo := &stuckRepo{stuck: []notification.Notification{{ID: "a"}}}
	tickets := alerts.NewMemoryClient()
	saturday := time.Date(2024, 3, 2, 9, 30, 0, 0, time.UTC)

	checker := newStuckChecker(repo, tickets, saturday)
	if err := checker.CheckStuckLetters(context.Background()); err != nil {
		t.Fatalf("check: %v", err)
	}
	if repo.queried {
		t.Fatal("repository queried on a weekend")
	}
	if got := tickets.Tickets(); len(got) != 0 {
		t.Fatalf("expected no tickets, got %d", len(got))
	}
}

func TestStuckCheckNoStuckLettersNoTicket(t *testing.T) {
	repo := &stuckRepo{}
	tickets := alerts.NewMemoryClient()
	monday := time.Date(2024, 3, 4, 9, 30, 0, 0, time.UTC)

	checker := newStuckChecker(repo, tickets, monday)
	if err := checker.CheckStuckLetters(context.Background()); err != nil {
		t.Fatalf("check: %v", err)
	}
	if got := tickets.Tickets(); len(got) != 0 {
		t.Fatalf("expected no tickets, got %d", len(got))
	}
}
