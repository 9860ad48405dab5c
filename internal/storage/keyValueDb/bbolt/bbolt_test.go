package bbolt

import (
	"context"
	"errors"
	"testing"

	"github.com/mitgajera/Token2022-Hook-AMM/internal/storage/keyValueDb"
)

func setupTestDB(t *testing.T) keyValueDb.DB {
	t.Helper()

	manager := NewManager(t.TempDir())
	t.Cleanup(func() {
		if err := manager.Close(); err != nil {
			t.Errorf("close failed: %v", err)
		}
	})

	db, err := manager.OpenDB("test")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	return db
}

func TestBoltReadWriteDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Write(ctx, []byte("k"), []byte("v")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := db.Read(ctx, []byte("k"))
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != "v" {
		t.Errorf("Read returned %q, want %q", got, "v")
	}

	if err := db.Delete(ctx, []byte("k")); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := db.Read(ctx, []byte("k")); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
		t.Errorf("Read after delete returned %v, want ErrKeyNotFound", err)
	}
}

func TestBoltBucketsAreIsolated(t *testing.T) {
	manager := NewManager(t.TempDir())
	t.Cleanup(func() { _ = manager.Close() })

	ctx := context.Background()

	first, err := manager.OpenDB("state")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	second, err := manager.OpenDB("meta")
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}

	if err := first.Write(ctx, []byte("k"), []byte("state-value")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if _, err := second.Read(ctx, []byte("k")); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
		t.Errorf("key leaked across buckets: %v", err)
	}
}

func TestBoltIterator(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for _, k := range []string{"a", "b", "c"} {
		if err := db.Write(ctx, []byte(k), []byte(k)); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	iter, err := db.Iterator(ctx, nil, nil)
	if err != nil {
		t.Fatalf("Iterator failed: %v", err)
	}
	defer iter.Close()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if len(keys) != 3 || keys[0] != "a" || keys[2] != "c" {
		t.Errorf("got keys %v, want [a b c]", keys)
	}
}
