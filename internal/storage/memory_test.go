package storage

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryStoreListFilters(t *testing.T) {
	base := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC)
	now := base
	store := NewMemoryStoreWithNow(func() time.Time { return now })
	ctx := context.Background()

	put := func(key string) {
		if err := store.Put(ctx, "bucket", key, []byte("x"), nil); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}
	put("root/dispatch/old.ACK.txt")
	now = base.Add(48 * time.Hour)
	put("root/dispatch/new.ACK.txt")
	put("root/dispatch/report.csv")
	put("other/new.ACK.txt")

	objects, err := store.List(ctx, "bucket", ListOptions{
		Prefix:        "root/dispatch/",
		Suffix:        ".ACK.txt",
		ModifiedAfter: base.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(objects) != 1 || objects[0].Key != "root/dispatch/new.ACK.txt" {
		t.Fatalf("unexpected listing: %+v", objects)
	}
}

func TestMemoryStoreListOrdersByKey(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()
	for _, key := range []string{"c.pdf", "a.pdf", "b.pdf"} {
		if err := store.Put(ctx, "bucket", key, []byte("x"), nil); err != nil {
			t.Fatalf("put: %v", err)
		}
	}

	objects, err := store.List(ctx, "bucket", ListOptions{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	want := []string{"a.pdf", "b.pdf", "c.pdf"}
	for i, key := range want {
		if objects[i].Key != key {
			t.Fatalf("position %d: got %s want %s", i, objects[i].Key, key)
		}
	}
}

func TestMemoryStoreMissingObject(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "bucket", "missing"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("get: expected ErrObjectNotFound, got %v", err)
	}
	if _, err := store.Head(ctx, "bucket", "missing"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("head: expected ErrObjectNotFound, got %v", err)
	}
	if err := store.Copy(ctx, "bucket", "missing", "bucket", "dst"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("copy: expected ErrObjectNotFound, got %v", err)
	}
}

func TestMemoryStoreCopyAndDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	tags := map[string]string{RetentionTagKey: RetentionOneWeek}
	if err := store.Put(ctx, "src", "a.zip", []byte("payload"), tags); err != nil {
		t.Fatalf("put: %v", err)
	}
	if err := store.Copy(ctx, "src", "a.zip", "dst", "b.zip"); err != nil {
		t.Fatalf("copy: %v", err)
	}

	body, err := store.Get(ctx, "dst", "b.zip")
	if err != nil {
		t.Fatalf("get copy: %v", err)
	}
	if string(body) != "payload" {
		t.Fatalf("copy body = %q", body)
	}
	if got := store.Tags("dst", "b.zip")[RetentionTagKey]; got != RetentionOneWeek {
		t.Fatalf("copy retention tag = %q", got)
	}

	if err := store.Delete(ctx, "src", "a.zip"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "src", "a.zip"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("expected deleted object to be gone, got %v", err)
	}
}
