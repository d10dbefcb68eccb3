package tasks

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupOutboxDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetMaxOpenConns(1)
	err = db.Exec(`CREATE TABLE task_outbox (
		id INTEGER PRIMARY KEY,
		task_name TEXT NOT NULL,
		queue TEXT NOT NULL,
		payload TEXT,
		dedupe_key TEXT,
		published BOOLEAN NOT NULL DEFAULT false,
		created_at TIMESTAMP NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	err = db.Exec(`CREATE UNIQUE INDEX idx_task_outbox_dedupe ON task_outbox (queue, dedupe_key)`).Error
	if err != nil {
		t.Fatalf("create index: %v", err)
	}
	return db
}

func newTestOutbox(t *testing.T, db *gorm.DB) *Outbox {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return NewOutbox(db, node)
}

func countTasks(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Table("task_outbox").Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSubmitStoresTask(t *testing.T) {
	db := setupOutboxDB(t)
	outbox := newTestOutbox(t, db)

	payload := DeliverLetterPayload{NotificationID: "7f0b9d1e"}
	err := outbox.Submit(context.Background(), Task{
		Name:    TaskDeliverLetterViaAPI,
		Queue:   QueueSendLetter,
		Payload: payload.ToMap(),
	})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	var row struct {
		TaskName  string
		Queue     string
		Published bool
	}
	err = db.Table("task_outbox").Select("task_name, queue, published").Take(&row).Error
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if row.TaskName != TaskDeliverLetterViaAPI {
		t.Fatalf("task_name=%q", row.TaskName)
	}
	if row.Queue != QueueSendLetter {
		t.Fatalf("queue=%q", row.Queue)
	}
	if row.Published {
		t.Fatal("expected published=false")
	}
}

func TestSubmitDedupes(t *testing.T) {
	db := setupOutboxDB(t)
	outbox := newTestOutbox(t, db)
	ctx := context.Background()

	task := Task{
		Name:      TaskZipAndSendLetterPDFs,
		Queue:     QueueFTPTasks,
		Payload:   map[string]any{"upload_filename": "a.zip"},
		DedupeKey: "2024-03-04/first/001",
	}
	if err := outbox.Submit(ctx, task); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := outbox.Submit(ctx, task); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if got := countTasks(t, db); got != 1 {
		t.Fatalf("expected 1 row, got %d", got)
	}
}

func TestSubmitWithoutDedupeKeyAlwaysInserts(t *testing.T) {
	db := setupOutboxDB(t)
	outbox := newTestOutbox(t, db)
	ctx := context.Background()

	task := Task{Name: TaskLettersVolumeEmail, Queue: QueuePeriodic}
	if err := outbox.Submit(ctx, task); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	if err := outbox.Submit(ctx, task); err != nil {
		t.Fatalf("second submit: %v", err)
	}
	if got := countTasks(t, db); got != 2 {
		t.Fatalf("expected 2 rows, got %d", got)
	}
}

func TestSubmitValidation(t *testing.T) {
	db := setupOutboxDB(t)
	outbox := newTestOutbox(t, db)
	ctx := context.Background()

	if err := outbox.Submit(ctx, Task{Queue: QueuePeriodic}); err == nil {
		t.Fatal("expected error for missing task name")
	}
	if err := outbox.Submit(ctx, Task{Name: TaskLettersVolumeEmail}); err == nil {
		t.Fatal("expected error for missing queue")
	}
	if err := outbox.SubmitTx(ctx, nil, Task{Name: TaskLettersVolumeEmail, Queue: QueuePeriodic}); err == nil {
		t.Fatal("expected error for nil transaction")
	}
}
