package archive

import (
	"context"
	"time"

	"github.com/govnotify/letterpipe/internal/tasks"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type WorkerParams struct {
	fx.In

	Outbox  *tasks.Outbox
	Handler *Handler
	Log     *zap.Logger
}

// Worker drains pending zip-and-send tasks from the outbox. Failed tasks
// stay unpublished and are retried on the next poll.
type Worker struct {
	outbox       *tasks.Outbox
	handler      *Handler
	log          *zap.Logger
	pollInterval time.Duration
	batchSize    int
}

func NewWorker(p WorkerParams) *Worker {
	return &Worker{
		outbox:       p.Outbox,
		handler:      p.Handler,
		log:          p.Log.Named("archive.worker"),
		pollInterval: 30 * time.Second,
		batchSize:    20,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(ctx); err != nil {
			w.log.Warn("archive drain failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce(ctx context.Context) error {
	rows, err := w.outbox.Pending(ctx, tasks.QueueFTPTasks, w.batchSize)
	if err != nil {
		return err
	}
	for _, row := range rows {
		if row.TaskName != tasks.TaskZipAndSendLetterPDFs {
			continue
		}
		payload, err := tasks.ZipAndSendPayloadFromMap(row.Payload)
		if err != nil {
			w.log.Error("malformed archive task", zap.Int64("task_id", int64(row.ID)), zap.Error(err))
			continue
		}
		if err := w.handler.ZipAndSend(ctx, payload); err != nil {
			w.log.Error("archive task failed",
				zap.String("archive", payload.UploadFilename),
				zap.Error(err),
			)
			continue
		}
		if err := w.outbox.MarkPublished(ctx, row.ID); err != nil {
			return err
		}
	}
	return nil
}
