package tasks

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Outbox stores tasks in the task_outbox table inside the caller's
// transaction so a task is emitted iff the surrounding write commits.
// A relay drains published=false rows into the task fabric.
type Outbox struct {
	db    *gorm.DB
	genID *snowflake.Node
}

// OutboxRow is one stored task.
type OutboxRow struct {
	ID        snowflake.ID      `gorm:"primaryKey"`
	TaskName  string            `gorm:"type:text;not null"`
	Queue     string            `gorm:"type:text;not null"`
	Payload   datatypes.JSONMap `gorm:"type:jsonb"`
	DedupeKey *string           `gorm:"type:text"`
	Published bool              `gorm:"not null;default:false"`
	CreatedAt time.Time         `gorm:"not null"`
}

func (OutboxRow) TableName() string { return "task_outbox" }

func NewOutbox(db *gorm.DB, genID *snowflake.Node) *Outbox {
	return &Outbox{db: db, genID: genID}
}

// Submit stores a task using the default database connection.
func (o *Outbox) Submit(ctx context.Context, task Task) error {
	return o.submit(ctx, o.db, task)
}

// SubmitTx stores a task using an existing transaction.
func (o *Outbox) SubmitTx(ctx context.Context, tx *gorm.DB, task Task) error {
	if tx == nil {
		return errors.New("missing_transaction")
	}
	return o.submit(ctx, tx, task)
}

func (o *Outbox) submit(ctx context.Context, db *gorm.DB, task Task) error {
	if o == nil || db == nil || o.genID == nil {
		return errors.New("outbox_unavailable")
	}
	name := strings.TrimSpace(task.Name)
	if name == "" {
		return errors.New("missing_task_name")
	}
	queue := strings.TrimSpace(task.Queue)
	if queue == "" {
		return errors.New("missing_task_queue")
	}

	payload := datatypes.JSONMap{}
	for key, value := range task.Payload {
		if strings.TrimSpace(key) == "" {
			continue
		}
		payload[key] = value
	}

	dedupe := strings.TrimSpace(task.DedupeKey)
	var dedupeValue any
	if dedupe != "" {
		dedupeValue = dedupe
	}

	now := time.Now().UTC()
	return db.WithContext(ctx).Exec(
		`INSERT INTO task_outbox (id, task_name, queue, payload, dedupe_key, published, created_at)
		 VALUES (?, ?, ?, ?, ?, false, ?)
		 ON CONFLICT (queue, dedupe_key) DO NOTHING`,
		o.genID.Generate(),
		name,
		queue,
		payload,
		dedupeValue,
		now,
	).Error
}

// Pending returns unpublished tasks on a queue, oldest first.
func (o *Outbox) Pending(ctx context.Context, queue string, limit int) ([]OutboxRow, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []OutboxRow
	err := o.db.WithContext(ctx).
		Where("queue = ?", queue).
		Where("published = ?", false).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkPublished records that a task has been handed off.
func (o *Outbox) MarkPublished(ctx context.Context, id snowflake.ID) error {
	return o.db.WithContext(ctx).
		Model(&OutboxRow{}).
		Where("id = ?", id).
		Update("published", true).Error
}
