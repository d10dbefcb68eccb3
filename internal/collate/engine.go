package collate

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"hash/fnv"
	"sort"
	"time"

	"github.com/govnotify/letterpipe/internal/clock"
	"github.com/govnotify/letterpipe/internal/config"
	"github.com/govnotify/letterpipe/internal/notification"
	"github.com/govnotify/letterpipe/internal/observability/metrics"
	"github.com/govnotify/letterpipe/internal/postage"
	"github.com/govnotify/letterpipe/internal/storage"
	"github.com/govnotify/letterpipe/internal/tasks"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const archiveSuffixLength = 12

type Params struct {
	fx.In

	Cfg    config.Config
	Window *Window
	Repo   notification.Repository
	Blobs  storage.BlobStore
	Queue  tasks.Queue
	Clock  clock.Clock
	Log    *zap.Logger
}

// Engine runs the daily collation: it lists eligible letters, groups them
// into bounded batches per service and organisation, and emits one
// archive-and-dispatch task per batch plus a volume summary for the
// provider's operational contacts.
type Engine struct {
	cfg     config.LettersConfig
	window  *Window
	repo    notification.Repository
	blobs   storage.BlobStore
	queue   tasks.Queue
	clock   clock.Clock
	log     *zap.Logger
	metrics *metrics.LetterMetrics
}

func NewEngine(p Params) *Engine {
	return &Engine{
		cfg:     p.Cfg.Letters,
		window:  p.Window,
		repo:    p.Repo,
		blobs:   p.Blobs,
		queue:   p.Queue,
		clock:   p.Clock,
		log:     p.Log.Named("collate.engine"),
		metrics: metrics.Letters(),
	}
}

// ListEligibleLetters resolves the letters of one postage class awaiting
// dispatch at the cutoff into blob references, ordered oldest folder first
// then by key. Candidates whose PDF is missing from storage are logged
// and skipped.
func (e *Engine) ListEligibleLetters(ctx context.Context, cutoffUTC time.Time, class postage.Class) ([]LetterFileRef, error) {
	rows, err := e.repo.FindLettersToBeSent(ctx, cutoffUTC, class)
	if err != nil {
		return nil, fmt.Errorf("list letters to be sent: %w", err)
	}
	return e.resolveFiles(ctx, class, rows)
}

func (e *Engine) resolveFiles(ctx context.Context, class postage.Class, rows []notification.Notification) ([]LetterFileRef, error) {
	letters := make([]LetterFileRef, 0, len(rows))
	for _, n := range rows {
		key := postage.PDFKey(n.Reference, class, n.CreatedAt.UTC())
		obj, err := e.blobs.Head(ctx, e.cfg.PDFBucket, key)
		if errors.Is(err, storage.ErrObjectNotFound) {
			e.log.Warn("letter pdf missing from storage",
				zap.String("key", key),
				zap.String("notification_id", n.ID),
			)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("head %s: %w", key, err)
		}
		letters = append(letters, LetterFileRef{
			StorageKey:     key,
			SizeBytes:      obj.Size,
			ServiceID:      n.ServiceID,
			OrganisationID: n.OrganisationID,
			NotificationID: n.ID,
		})
	}
	sort.Slice(letters, func(i, j int) bool {
		return letters[i].StorageKey < letters[j].StorageKey
	})
	return letters, nil
}

// Collate runs one print run against the given cutoff. Individual dispatch
// failures are logged and counted but never abort the remaining batches,
// and the volume summary is sent regardless.
func (e *Engine) Collate(ctx context.Context, cutoffUTC time.Time) error {
	runDate := e.window.RunDate(cutoffUTC)
	volumes := volumeSummary{}
	failures := 0

	for _, class := range postage.All() {
		rows, err := e.repo.FindLettersToBeSent(ctx, cutoffUTC, class)
		if err != nil {
			e.metrics.CollateRun("error")
			return fmt.Errorf("list letters to be sent: %w", err)
		}
		volumes.add(class, rows)

		if e.cfg.DVLAAPIEnabled {
			failures += e.dispatchViaAPI(ctx, class, rows)
			continue
		}

		letters, err := e.resolveFiles(ctx, class, rows)
		if err != nil {
			e.metrics.CollateRun("error")
			return err
		}
		failures += e.dispatchArchives(ctx, runDate, class, letters)
	}

	if err := e.submitVolumeEmail(ctx, runDate, volumes); err != nil {
		e.log.Error("volume summary submission failed", zap.Error(err))
		failures++
	}

	outcome := "ok"
	if failures > 0 {
		outcome = "partial"
	}
	e.metrics.CollateRun(outcome)
	e.log.Info("collation run complete",
		zap.String("cutoff", cutoffUTC.Format(time.RFC3339)),
		zap.Int("total_letters", volumes.totalVolume()),
		zap.Int("dispatch_failures", failures),
	)
	return nil
}

// dispatchArchives groups one postage class into per-service batches and
// submits an archive task per batch. The sequence number runs across all
// services within the class so archive names stay unique per day.
func (e *Engine) dispatchArchives(ctx context.Context, runDate time.Time, class postage.Class, letters []LetterFileRef) int {
	type groupKey struct{ serviceID, orgID string }
	grouped := make(map[groupKey][]LetterFileRef)
	var order []groupKey
	for _, l := range letters {
		k := groupKey{l.ServiceID, l.OrganisationID}
		if _, seen := grouped[k]; !seen {
			order = append(order, k)
		}
		grouped[k] = append(grouped[k], l)
	}

	failures := 0
	seq := 0
	for _, k := range order {
		grouper := NewGrouper(grouped[k], e.cfg.MaxZipBytes, e.cfg.MaxFilesPerZip)
		for {
			batch, ok := grouper.Next()
			if !ok {
				break
			}
			seq++
			name := archiveName(runDate, class, seq, k.serviceID, k.orgID)
			payload := tasks.ZipAndSendPayload{
				FilenamesToZip: batch.Keys(),
				UploadFilename: name,
				Compression:    tasks.CompressionZlib,
			}
			err := e.queue.Submit(ctx, tasks.Task{
				Name:      tasks.TaskZipAndSendLetterPDFs,
				Queue:     tasks.QueueFTPTasks,
				Payload:   payload.ToMap(),
				DedupeKey: archiveDedupeKey(runDate, class, seq, k.orgID, batch.Keys()),
			})
			if err != nil {
				failures++
				e.log.Error("archive dispatch failed",
					zap.String("archive", name),
					zap.Int("letters", len(batch.Letters)),
					zap.Error(err),
				)
				continue
			}
			if err := e.repo.MarkSending(ctx, batch.NotificationIDs(), e.clock.Now().UTC()); err != nil {
				failures++
				e.log.Error("failed to mark batch sending",
					zap.String("archive", name),
					zap.Error(err),
				)
				continue
			}
			e.metrics.BatchDispatched(string(class), len(batch.Letters))
			e.log.Info("archive dispatched",
				zap.String("archive", name),
				zap.Int("letters", len(batch.Letters)),
				zap.Int64("bytes", batch.SizeBytes),
			)
		}
	}
	return failures
}

func (e *Engine) dispatchViaAPI(ctx context.Context, class postage.Class, rows []notification.Notification) int {
	failures := 0
	for _, n := range rows {
		payload := tasks.DeliverLetterPayload{NotificationID: n.ID}
		err := e.queue.Submit(ctx, tasks.Task{
			Name:      tasks.TaskDeliverLetterViaAPI,
			Queue:     tasks.QueueSendLetter,
			Payload:   payload.ToMap(),
			DedupeKey: n.ID,
		})
		if err != nil {
			failures++
			e.log.Error("api dispatch failed",
				zap.String("notification_id", n.ID),
				zap.Error(err),
			)
			continue
		}
		if err := e.repo.MarkSending(ctx, []string{n.ID}, e.clock.Now().UTC()); err != nil {
			failures++
			e.log.Error("failed to mark letter sending",
				zap.String("notification_id", n.ID),
				zap.Error(err),
			)
			continue
		}
		e.metrics.LetterDispatchedViaAPI(string(class))
	}
	return failures
}

func (e *Engine) submitVolumeEmail(ctx context.Context, runDate time.Time, v volumeSummary) error {
	payload := v.toPayload(e.cfg.DVLAEmailAddresses, runDate)
	return e.queue.Submit(ctx, tasks.Task{
		Name:      tasks.TaskLettersVolumeEmail,
		Queue:     tasks.QueueInternalTasks,
		Payload:   payload.ToMap(),
		DedupeKey: "letters-volume-email." + runDate.Format("2006-01-02"),
	})
}

// archiveDedupeKey identifies a batch by its position in the run and by
// its content, so a batch whose composition shifted between overlapping
// runs is never mistaken for one already submitted.
func archiveDedupeKey(runDate time.Time, class postage.Class, seq int, orgID string, keys []string) string {
	h := fnv.New32a()
	for _, key := range keys {
		h.Write([]byte(key))
		h.Write([]byte{'\n'})
	}
	return fmt.Sprintf("%s.%s.%03d.%s.%08x",
		runDate.Format("2006-01-02"),
		class.FileCode(),
		seq,
		orgID,
		h.Sum32(),
	)
}

// archiveName builds the provider archive filename:
// NOTIFY.<date>.<code>.<seq>.<random>.<serviceId>.<orgId>.ZIP
func archiveName(runDate time.Time, class postage.Class, seq int, serviceID, orgID string) string {
	return fmt.Sprintf("NOTIFY.%s.%s.%03d.%s.%s.%s.ZIP",
		runDate.Format("2006-01-02"),
		class.FileCode(),
		seq,
		randomSuffix(archiveSuffixLength),
		serviceID,
		orgID,
	)
}

const suffixAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i := range buf {
		buf[i] = suffixAlphabet[int(buf[i])%len(suffixAlphabet)]
	}
	return string(buf)
}

type classVolume struct {
	letters int
	sheets  int
}

type volumeSummary struct {
	first         classVolume
	second        classVolume
	international classVolume
}

func (v *volumeSummary) add(class postage.Class, rows []notification.Notification) {
	var target *classVolume
	switch {
	case class == postage.FirstClass:
		target = &v.first
	case class.International():
		target = &v.international
	default:
		target = &v.second
	}
	for _, n := range rows {
		target.letters++
		target.sheets += n.BillableUnits
	}
}

func (v *volumeSummary) totalVolume() int {
	return v.first.letters + v.second.letters + v.international.letters
}

func (v *volumeSummary) toPayload(addresses []string, runDate time.Time) tasks.VolumeEmailPayload {
	return tasks.VolumeEmailPayload{
		Addresses:           addresses,
		TotalVolume:         v.totalVolume(),
		FirstClassVolume:    v.first.letters,
		SecondClassVolume:   v.second.letters,
		InternationalVolume: v.international.letters,
		TotalSheets:         v.first.sheets + v.second.sheets + v.international.sheets,
		FirstClassSheets:    v.first.sheets,
		SecondClassSheets:   v.second.sheets,
		InternationalSheets: v.international.sheets,
		Date:                runDate.Format("2 January 2006"),
	}
}
