package sqlite

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestPutAllRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Put("SA1", []byte(`{"globalId":"SA1"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put("IC2", []byte(`{"globalId":"IC2"}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("entries: %d", len(all))
	}
	if !bytes.Equal(all["SA1"], []byte(`{"globalId":"SA1"}`)) {
		t.Fatalf("payload: %s", all["SA1"])
	}
}

func TestPutUpserts(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = s.Close() }()

	if err := s.Put("SA1", []byte("v1")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Put("SA1", []byte("v2")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	all, err := s.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 1 || string(all["SA1"]) != "v2" {
		t.Fatalf("after upsert: %v", all)
	}
}

func TestPutRejectsEmptyKey(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "cache.db"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer func() { _ = s.Close() }()
	if err := s.Put("", []byte("x")); err == nil {
		t.Fatalf("expected error for empty global id")
	}
}

func TestReopenSeesPersistedPayloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	s, err := New(path)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Put("SA1", []byte("persisted")); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = reopened.Close() }()
	all, err := reopened.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if string(all["SA1"]) != "persisted" {
		t.Fatalf("reopened payload: %v", all)
	}
}
