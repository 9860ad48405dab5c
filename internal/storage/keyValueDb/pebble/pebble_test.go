package pebble

import (
	"context"
	"errors"
	"fmt"
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

func TestPebbleReadWriteDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	key := []byte("state/0001")
	value := []byte("record-bytes")

	if err := db.Write(ctx, key, value); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := db.Read(ctx, key)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if string(got) != string(value) {
		t.Errorf("Read returned %q, want %q", got, value)
	}

	if err := db.Delete(ctx, key); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := db.Read(ctx, key); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
		t.Errorf("Read after delete returned %v, want ErrKeyNotFound", err)
	}
}

func TestPebbleBatch(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	if err := db.Write(ctx, []byte("stale"), []byte("x")); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	ops := []keyValueDb.BatchOperation{
		{Type: keyValueDb.BatchPut, Key: []byte("a"), Value: []byte("1")},
		{Type: keyValueDb.BatchPut, Key: []byte("b"), Value: []byte("2")},
		{Type: keyValueDb.BatchDelete, Key: []byte("stale")},
	}
	if err := db.Batch(ctx, ops); err != nil {
		t.Fatalf("Batch failed: %v", err)
	}

	if _, err := db.Read(ctx, []byte("a")); err != nil {
		t.Errorf("batched put missing: %v", err)
	}
	if _, err := db.Read(ctx, []byte("stale")); !errors.Is(err, keyValueDb.ErrKeyNotFound) {
		t.Errorf("batched delete did not remove key: %v", err)
	}
}

func TestPebbleIteratorRange(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		key := []byte(fmt.Sprintf("k%02d", i))
		if err := db.Write(ctx, key, []byte{byte(i)}); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
	}

	iter, err := db.Iterator(ctx, []byte("k03"), []byte("k07"))
	if err != nil {
		t.Fatalf("Iterator failed: %v", err)
	}
	defer iter.Close()

	var keys []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
	}
	if err := iter.Error(); err != nil {
		t.Fatalf("iterator error: %v", err)
	}

	want := []string{"k03", "k04", "k05", "k06", "k07"}
	if len(keys) != len(want) {
		t.Fatalf("got keys %v, want %v", keys, want)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Errorf("key[%d] = %q, want %q", i, keys[i], want[i])
		}
	}
}
