// Package tasks defines the asynchronous task contracts the pipeline emits
// and the outbox used to hand them to the task fabric.
package tasks

import (
	"context"
	"errors"
)

// Task names understood by downstream workers.
const (
	TaskZipAndSendLetterPDFs = "zip-and-send-letter-pdfs"
	TaskDeliverLetterViaAPI  = "deliver-letter"
	TaskLettersVolumeEmail   = "deliver-letters-volume-email"
)

// Queue names.
const (
	QueueFTPTasks      = "process-ftp-tasks"
	QueueSendLetter    = "send-letter-tasks"
	QueueInternalTasks = "notify-internal-tasks"
	QueuePeriodic      = "periodic-tasks"
)

// Compression algorithm identifier carried on archive tasks.
const CompressionZlib = "zlib"

// Task is one unit of asynchronous work. Delivery is at-least-once;
// consumers are responsible for idempotency.
type Task struct {
	Name      string
	Queue     string
	Payload   map[string]any
	DedupeKey string
}

// Queue accepts tasks for asynchronous execution. Submit is fire-and-forget;
// retry and dead-lettering belong to the task fabric, not the caller.
type Queue interface {
	Submit(ctx context.Context, task Task) error
}

// ZipAndSendPayload is the archive-and-dispatch task contract.
type ZipAndSendPayload struct {
	FilenamesToZip []string
	UploadFilename string
	Compression    string
}

func (p ZipAndSendPayload) ToMap() map[string]any {
	filenames := make([]any, len(p.FilenamesToZip))
	for i, f := range p.FilenamesToZip {
		filenames[i] = f
	}
	return map[string]any{
		"filenames_to_zip": filenames,
		"upload_filename":  p.UploadFilename,
		"compression":      p.Compression,
	}
}

// ZipAndSendPayloadFromMap decodes a stored task payload.
func ZipAndSendPayloadFromMap(m map[string]any) (ZipAndSendPayload, error) {
	var p ZipAndSendPayload
	raw, ok := m["filenames_to_zip"].([]any)
	if !ok {
		return p, errors.New("missing_filenames_to_zip")
	}
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			return p, errors.New("invalid_filenames_to_zip")
		}
		p.FilenamesToZip = append(p.FilenamesToZip, s)
	}
	p.UploadFilename, _ = m["upload_filename"].(string)
	if p.UploadFilename == "" {
		return p, errors.New("missing_upload_filename")
	}
	p.Compression, _ = m["compression"].(string)
	return p, nil
}

// DeliverLetterPayload is the direct-API dispatch task contract.
type DeliverLetterPayload struct {
	NotificationID string
}

func (p DeliverLetterPayload) ToMap() map[string]any {
	return map[string]any{"notification_id": p.NotificationID}
}

// VolumeEmailPayload carries the per-run letter volume summary sent to the
// provider's operational contacts.
type VolumeEmailPayload struct {
	Addresses []string

	TotalVolume         int
	FirstClassVolume    int
	SecondClassVolume   int
	InternationalVolume int

	TotalSheets         int
	FirstClassSheets    int
	SecondClassSheets   int
	InternationalSheets int

	Date string
}

func (p VolumeEmailPayload) ToMap() map[string]any {
	addresses := make([]any, len(p.Addresses))
	for i, a := range p.Addresses {
		addresses[i] = a
	}
	return map[string]any{
		"addresses":            addresses,
		"total_volume":         p.TotalVolume,
		"first_class_volume":   p.FirstClassVolume,
		"second_class_volume":  p.SecondClassVolume,
		"international_volume": p.InternationalVolume,
		"total_sheets":         p.TotalSheets,
		"first_class_sheets":   p.FirstClassSheets,
		"second_class_sheets":  p.SecondClassSheets,
		"international_sheets": p.InternationalSheets,
		"date":                 p.Date,
	}
}
