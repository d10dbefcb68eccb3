// Package archive builds the provider ZIP archives and drops them into
// the provider's pickup location.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/govnotify/letterpipe/internal/config"
	"github.com/govnotify/letterpipe/internal/observability/tracing"
	"github.com/govnotify/letterpipe/internal/storage"
	"github.com/govnotify/letterpipe/internal/tasks"
	"github.com/klauspost/compress/zip"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type HandlerParams struct {
	fx.In

	Cfg   config.Config
	Blobs storage.BlobStore
	Log   *zap.Logger
}

// Handler executes one zip-and-send task: fetch the letter PDFs, build
// the archive, upload it to the provider drop bucket and leave a sent
// marker for the acknowledgement audit.
type Handler struct {
	cfg   config.LettersConfig
	blobs storage.BlobStore
	log   *zap.Logger
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{
		cfg:   p.Cfg.Letters,
		blobs: p.Blobs,
		log:   p.Log.Named("archive"),
	}
}

func (h *Handler) ZipAndSend(ctx context.Context, payload tasks.ZipAndSendPayload) error {
	ctx, span := tracing.Tracer("archive").Start(ctx, "ZipAndSend")
	defer span.End()

	body, err := h.buildArchive(ctx, payload.FilenamesToZip)
	if err != nil {
		return err
	}
	if err := h.blobs.Put(ctx, h.cfg.ProviderDropBucket, payload.UploadFilename, body, nil); err != nil {
		return fmt.Errorf("upload archive %s: %w", payload.UploadFilename, err)
	}

	marker := sentMarkerKey(payload.UploadFilename)
	tags := map[string]string{storage.RetentionTagKey: storage.RetentionOneWeek}
	if err := h.blobs.Put(ctx, h.cfg.PDFBucket, marker, []byte{}, tags); err != nil {
		return fmt.Errorf("write sent marker %s: %w", marker, err)
	}

	h.log.Info("archive uploaded",
		zap.String("archive", payload.UploadFilename),
		zap.Int("letters", len(payload.FilenamesToZip)),
		zap.Int("bytes", len(body)),
	)
	return nil
}

func (h *Handler) buildArchive(ctx context.Context, keys []string) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, key := range keys {
		pdf, err := h.blobs.Get(ctx, h.cfg.PDFBucket, key)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", key, err)
		}
		name := key
		if i := strings.LastIndex(name, "/"); i >= 0 {
			name = name[i+1:]
		}
		entry, err := w.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
		if err != nil {
			return nil, err
		}
		if _, err := entry.Write(pdf); err != nil {
			return nil, err
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// sentMarkerKey derives the audit marker key from an archive name of the
// form NOTIFY.<date>.<code>.<seq>.<random>.<svc>.<org>.ZIP.
func sentMarkerKey(uploadFilename string) string {
	parts := strings.Split(uploadFilename, ".")
	day := ""
	if len(parts) > 1 {
		day = parts[1]
	}
	return day + "/zips_sent/" + uploadFilename + ".TXT"
}
