package reconcile

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/govnotify/letterpipe/internal/alerts"
	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/config"
	"github.com/govnotify/letterpipe/internal/observability/metrics"
	"github.com/govnotify/letterpipe/internal/postage"
	"github.com/govnotify/letterpipe/internal/storage"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	zipsSentFolder    = "zips_sent"
	ackFolder         = "root/dispatch"
	ackSuffix         = ".ACK.txt"
	missingAckRunbook = "letters-not-acknowledged-by-dvla"
)

type AckAuditorParams struct {
	fx.In

	Cfg     config.Config
	Blobs   storage.BlobStore
	Tickets alerts.TicketClient
	Clock   clock.Clock
	Log     *zap.Logger
}

// AckAuditor compares the archives dispatched today against the
// acknowledgement files the provider has written back, and raises a
// ticket for anything the provider never acknowledged.
type AckAuditor struct {
	cfg     config.LettersConfig
	runbook string
	blobs   storage.BlobStore
	tickets alerts.TicketClient
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.LetterMetrics
}

func NewAckAuditor(p AckAuditorParams) *AckAuditor {
	return &AckAuditor{
		cfg:     p.Cfg.Letters,
		runbook: p.Cfg.Alerts.RunbookURL,
		blobs:   p.Blobs,
		tickets: p.Tickets,
		clock:   p.Clock,
		log:     p.Log.Named("reconcile.ackaudit"),
		metrics: metrics.Letters(),
	}
}

// CheckForMissingAckFiles runs the daily outbound audit. Acknowledged
// batches we never sent today are expected noise from the previous run
// and only logged.
func (a *AckAuditor) CheckForMissingAckFiles(ctx context.Context) error {
	now := a.clock.Now().UTC()

	sent, err := a.listZipArchivesSentToday(ctx, now)
	if err != nil {
		return fmt.Errorf("list archives sent today: %w", err)
	}
	acked, err := a.listAcknowledgementsSinceYesterday(ctx, now)
	if err != nil {
		return fmt.Errorf("list acknowledgement files: %w", err)
	}

	var missing, extra []string
	for id := range sent {
		if _, ok := acked[id]; !ok {
			missing = append(missing, id)
		}
	}
	for id := range acked {
		if _, ok := sent[id]; !ok {
			extra = append(extra, id)
		}
	}
	sort.Strings(missing)
	sort.Strings(extra)

	a.metrics.SetMissingAckBatches(len(missing))

	if len(extra) > 0 {
		a.log.Info("acknowledgement files for batches not sent today",
			zap.Strings("batches", extra),
		)
	}
	if len(missing) == 0 {
		return nil
	}

	a.log.Error("batches sent to provider without acknowledgement",
		zap.Strings("batches", missing),
	)
	message := fmt.Sprintf(
		"Letter batches were sent to DVLA but no acknowledgement was received:\n%s\n\n"+
			"Sent markers: %s/%s/%s\nAcknowledgements: %s/%s\n\nRunbook: %s",
		strings.Join(missing, "\n"),
		a.cfg.PDFBucket, postage.DayFolder(now), zipsSentFolder,
		a.cfg.ProviderReplyBucket, ackFolder,
		a.runbook,
	)
	ticket := alerts.Ticket{
		Subject: "Letters not acknowledged by DVLA",
		Message: message,
		Tags:    []string{"notify_letters", "missing_ack"},
	}
	if err := a.tickets.SendTicket(ctx, ticket); err != nil {
		return fmt.Errorf("raise missing-ack ticket: %w", err)
	}
	return nil
}

func (a *AckAuditor) listZipArchivesSentToday(ctx context.Context, now time.Time) (map[string]struct{}, error) {
	prefix := postage.DayFolder(now) + "/" + zipsSentFolder + "/"
	objects, err := a.blobs.List(ctx, a.cfg.PDFBucket, storage.ListOptions{Prefix: prefix})
	if err != nil {
		return nil, err
	}
	return batchIDSet(objects), nil
}

func (a *AckAuditor) listAcknowledgementsSinceYesterday(ctx context.Context, now time.Time) (map[string]struct{}, error) {
	yesterday := now.AddDate(0, 0, -1)
	objects, err := a.blobs.List(ctx, a.cfg.ProviderReplyBucket, storage.ListOptions{
		Prefix:        ackFolder,
		Suffix:        ackSuffix,
		ModifiedAfter: yesterday,
	})
	if err != nil {
		return nil, err
	}
	return batchIDSet(objects), nil
}

// batchIDSet normalizes blob keys to batch identifiers: strip the path,
// uppercase, drop marker and archive extensions.
func batchIDSet(objects []storage.Object) map[string]struct{} {
	set := make(map[string]struct{}, len(objects))
	for _, obj := range objects {
		key := obj.Key
		if i := strings.LastIndex(key, "/"); i >= 0 {
			key = key[i+1:]
		}
		key = strings.ToUpper(key)
		for _, ext := range []string{".TXT", ".ACK", ".ZIP"} {
			key = strings.TrimSuffix(key, ext)
		}
		if key != "" {
			set[key] = struct{}{}
		}
	}
	return set
}
