package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/govnotify/letterpipe/internal/alerts"
	"github.com/govnotify/letterpipe/internal/calendar"
	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/storage"
	"go.uber.org/zap"
)

func newDailyWorker(repo *stuckRepo, blobs storage.BlobStore, tickets alerts.TicketClient, now *clock.Fixed) *Worker {
	auditor := NewAckAuditor(AckAuditorParams{
		Cfg:     auditConfig(),
		Blobs:   blobs,
		Tickets: tickets,
		Clock:   now,
		Log:     zap.NewNop(),
	})
	stuck := NewStuckChecker(StuckCheckerParams{
		Repo:     repo,
		Calendar: calendar.New(calendar.NewMemorySource()),
		Tickets:  tickets,
		Clock:    now,
		Log:      zap.NewNop(),
	})
	return NewWorker(WorkerParams{
		Auditor: auditor,
		Stuck:   stuck,
		Clock:   now,
		Log:     zap.NewNop(),
	})
}

func TestWorkerStuckSweepWaitsForMorningHour(t *testing.T) {
	repo := &stuckRepo{}
	now := clock.NewFixed(time.Date(2024, 3, 4, 8, 55, 0, 0, time.UTC))

	worker := newDailyWorker(repo, storage.NewMemoryStore(), alerts.NewMemoryClient(), now)
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.queried {
		t.Fatal("stuck sweep ran before the configured hour")
	}

	now.Advance(10 * time.Minute)
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !repo.queried {
		t.Fatal("stuck sweep did not run at the configured hour")
	}
}

func TestWorkerStuckSweepRunsOncePerDay(t *testing.T) {
	repo := &stuckRepo{}
	now := clock.NewFixed(time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC))

	worker := newDailyWorker(repo, storage.NewMemoryStore(), alerts.NewMemoryClient(), now)
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !repo.queried {
		t.Fatal("first sweep did not run")
	}

	repo.queried = false
	now.Advance(time.Hour)
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if repo.queried {
		t.Fatal("sweep ran twice on the same day")
	}

	now.Advance(24 * time.Hour)
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !repo.queried {
		t.Fatal("sweep did not run on the next day")
	}
}

func TestWorkerAckAuditRunsAfterPrintRun(t *testing.T) {
	blobs := storage.NewMemoryStore()
	tickets := alerts.NewMemoryClient()
	putSentMarker(t, blobs, "NOTIFY.2024-03-04.2.001.AAAABBBBCCCC.svc.org.ZIP")

	// morning poll: the print run has not happened yet, so no audit
	now := clock.NewFixed(time.Date(2024, 3, 4, 9, 5, 0, 0, time.UTC))
	worker := newDailyWorker(&stuckRepo{}, blobs, tickets, now)
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if got := tickets.Tickets(); len(got) != 0 {
		t.Fatalf("audit ran before the evening, tickets = %d", len(got))
	}

	// evening poll: today's marker has no ack file, so a ticket is raised
	now.Set(time.Date(2024, 3, 4, 23, 5, 0, 0, time.UTC))
	if err := worker.RunOnce(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	got := tickets.Tickets()
	if len(got) != 1 {
		t.Fatalf("expected 1 missing-ack ticket, got %d", len(got))
	}
	if got[0].Subject != "Letters not acknowledged by DVLA" {
		t.Fatalf("ticket subject = %q", got[0].Subject)
	}
}
