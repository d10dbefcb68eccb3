package secrets

import (
	"context"
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSecretDB(t *testing.T) *gorm.DB {
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
	err = db.Exec(`CREATE TABLE secrets (
		name TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`).Error
	if err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func TestDBStoreSetAndGet(t *testing.T) {
	store := NewDBStore(setupSecretDB(t))
	ctx := context.Background()

	if err := store.SetSecret(ctx, "notify/api/dvla_password", "hunter2!A"); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.GetSecret(ctx, "notify/api/dvla_password")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "hunter2!A" {
		t.Fatalf("value = %q", got)
	}
}

func TestDBStoreSetOverwrites(t *testing.T) {
	store := NewDBStore(setupSecretDB(t))
	ctx := context.Background()

	if err := store.SetSecret(ctx, "name", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := store.SetSecret(ctx, "name", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got, err := store.GetSecret(ctx, "name")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "second" {
		t.Fatalf("value = %q", got)
	}
}

func TestDBStoreMissingSecret(t *testing.T) {
	store := NewDBStore(setupSecretDB(t))

	_, err := store.GetSecret(context.Background(), "absent")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Fatalf("expected ErrSecretNotFound, got %v", err)
	}
}
