package storage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if _, ok, err := s.Get("kamusi.state"); err != nil || ok {
		t.Fatalf("missing key should be (_, false, nil), got ok=%v err=%v", ok, err)
	}

	if err := s.Set("kamusi.state", "first"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set("kamusi.state", "second"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, ok, err := s.Get("kamusi.state")
	if err != nil || !ok || v != "second" {
		t.Fatalf("get after overwrite: v=%q ok=%v err=%v", v, ok, err)
	}

	if err := s.Delete("kamusi.state"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get("kamusi.state"); ok {
		t.Fatal("key survived delete")
	}
	if err := s.Delete("kamusi.state"); err != nil {
		t.Fatalf("delete of missing key must be a no-op, got %v", err)
	}
}

func TestFileStorePermissions(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Set("kamusi.state.key", "secret"); err != nil {
		t.Fatalf("set: %v", err)
	}
	info, err := os.Stat(filepath.Join(dir, "kamusi.state.key"))
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Fatalf("expected 0600 value file, got %o", perm)
	}
}

func TestFileStoreFlattensSeparators(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if err := s.Set("odd/key", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "odd_key")); err != nil {
		t.Fatalf("expected flattened file name: %v", err)
	}
	v, ok, err := s.Get("odd/key")
	if err != nil || !ok || v != "v" {
		t.Fatalf("get flattened key: v=%q ok=%v err=%v", v, ok, err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("set: %v", err)
	}
	v, ok, err := s.Get("k")
	if err != nil || !ok || v != "v" {
		t.Fatalf("get: v=%q ok=%v err=%v", v, ok, err)
	}
	if err := s.Delete("k"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := s.Get("k"); ok {
		t.Fatal("key survived delete")
	}
}
