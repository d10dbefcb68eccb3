package locks

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupLockDB(t *testing.T) *gorm.DB {
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
	err = db.Exec(`CREATE TABLE named_locks (
		name TEXT PRIMARY KEY,
		holder TEXT NOT NULL,
		acquired_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestTryAcquireContention(t *testing.T) {
	db := setupLockDB(t)
	locker := NewDBLocker(db, zap.NewNop())

	release, err := locker.TryAcquire(context.Background(), "dvla-credential-rotation")
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	if _, err := locker.TryAcquire(context.Background(), "dvla-credential-rotation"); !errors.Is(err, ErrLockHeld) {
		t.Fatalf("expected ErrLockHeld, got %v", err)
	}

	release()

	release2, err := locker.TryAcquire(context.Background(), "dvla-credential-rotation")
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	release2()
}

func TestTryAcquireReclaimsExpiredLock(t *testing.T) {
	db := setupLockDB(t)
	locker := NewDBLocker(db, zap.NewNop())

	base := time.Date(2024, 7, 5, 10, 0, 0, 0, time.UTC)
	locker.now = func() time.Time { return base }

	if _, err := locker.TryAcquire(context.Background(), "dvla-credential-rotation"); err != nil {
		t.Fatalf("first acquire: %v", err)
	}

	// Holder crashed; past the claim TTL the lock can be taken over.
	locker.now = func() time.Time { return base.Add(6 * time.Minute) }
	release, err := locker.TryAcquire(context.Background(), "dvla-credential-rotation")
	if err != nil {
		t.Fatalf("expected takeover of expired lock, got %v", err)
	}
	release()
}

func TestDifferentNamesDoNotContend(t *testing.T) {
	db := setupLockDB(t)
	locker := NewDBLocker(db, zap.NewNop())

	r1, err := locker.TryAcquire(context.Background(), "lock-a")
	if err != nil {
		t.Fatalf("acquire a: %v", err)
	}
	defer r1()

	r2, err := locker.TryAcquire(context.Background(), "lock-b")
	if err != nil {
		t.Fatalf("acquire b: %v", err)
	}
	defer r2()
}
