package store

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"mimicbot/pkg/models"
)

func setup(t *testing.T) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "db")
	if err := Open(dir); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = Close() })
}

func TestInsertListRoundtrip(t *testing.T) {
	setup(t)

	for i := 0; i < 3; i++ {
		rec := models.CorpusRecord{
			EventID:  fmt.Sprintf("e%d", i),
			AuthorID: "u1",
			Content:  fmt.Sprintf("message %d", i),
		}
		if err := Insert(rec); err != nil {
			t.Fatalf("Insert e%d: %v", i, err)
		}
	}
	if err := Insert(models.CorpusRecord{EventID: "x1", AuthorID: "u2", Content: "other author"}); err != nil {
		t.Fatalf("Insert x1: %v", err)
	}

	got, err := ListByAuthor("u1")
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 records for u1, got %d", len(got))
	}
	// insertion order
	for i, c := range got {
		if want := fmt.Sprintf("message %d", i); c != want {
			t.Fatalf("position %d: expected %q, got %q", i, want, c)
		}
	}

	all, err := ListAll()
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 records total, got %d", len(all))
	}

	n, err := CountRecords()
	if err != nil {
		t.Fatalf("CountRecords: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected count 4, got %d", n)
	}
}

func TestInsertDuplicateRejected(t *testing.T) {
	setup(t)

	rec := models.CorpusRecord{EventID: "e1", AuthorID: "u1", Content: "first"}
	if err := Insert(rec); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	rec.Content = "second"
	err := Insert(rec)
	if !errors.Is(err, ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// original record untouched
	got, err := ListByAuthor("u1")
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if len(got) != 1 || got[0] != "first" {
		t.Fatalf("expected [first], got %v", got)
	}
}

func TestDeleteRemovesRecordAndIndex(t *testing.T) {
	setup(t)

	if err := Insert(models.CorpusRecord{EventID: "e1", AuthorID: "u1", Content: "one"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := Insert(models.CorpusRecord{EventID: "e2", AuthorID: "u1", Content: "two"}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if err := Delete("e1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	got, err := ListByAuthor("u1")
	if err != nil {
		t.Fatalf("ListByAuthor: %v", err)
	}
	if len(got) != 1 || got[0] != "two" {
		t.Fatalf("expected [two], got %v", got)
	}

	// index rows for e1 are gone too
	keys, err := ListKeys("author:u1:")
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(keys) != 1 {
		t.Fatalf("expected 1 index key, got %d: %v", len(keys), keys)
	}
}

func TestDeleteAbsentIsNoop(t *testing.T) {
	setup(t)

	if err := Delete("never-seen"); err != nil {
		t.Fatalf("expected nil for absent id, got %v", err)
	}
}

func TestInsertMissingEventID(t *testing.T) {
	setup(t)

	if err := Insert(models.CorpusRecord{AuthorID: "u1", Content: "x"}); err == nil {
		t.Fatalf("expected error for missing event id")
	}
}

func TestNotOpened(t *testing.T) {
	// no setup: the global handle must be nil here
	if db != nil {
		t.Skip("store already opened by another test")
	}
	if err := Insert(models.CorpusRecord{EventID: "e"}); err == nil {
		t.Fatalf("expected error when store not opened")
	}
	if _, err := ListByAuthor("u"); err == nil {
		t.Fatalf("expected error when store not opened")
	}
}
