package store_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"gatekey/internal/domain"
	"gatekey/internal/store"
)

func newSealedStore(t *testing.T, dir, pass string) *store.FileStore {
	t.Helper()
	s, err := store.NewFileStore(dir, store.WithPassphrase(pass), store.WithScryptCost(1<<10, 8, 1))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}
	return s
}

func TestFileStore_SealedSaveLoad_OK(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()

	var s domain.CredentialStore = newSealedStore(t, home, "pass")

	if err := s.Set(ctx, store.SessionKey, []byte("session-blob")); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := s.Get(ctx, store.SessionKey)
	if err != nil || !ok {
		t.Fatalf("get: ok=%v err=%v", ok, err)
	}
	if string(got) != "session-blob" {
		t.Fatalf("mismatch after load: %q", got)
	}

	entries, err := os.ReadDir(home)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, e := range entries {
		raw, _ := os.ReadFile(filepath.Join(home, e.Name()))
		if string(raw) == "session-blob" {
			t.Fatalf("value stored in plaintext")
		}
	}
}

func TestFileStore_WrongPassphrase_Fails(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()

	if err := newSealedStore(t, home, "correct").Set(ctx, store.SessionKey, []byte("x")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if _, _, err := newSealedStore(t, home, "wrong").Get(ctx, store.SessionKey); err == nil {
		t.Fatal("expected error with wrong passphrase")
	}
}

func TestFileStore_ValueBoundToKey(t *testing.T) {
	ctx := context.Background()
	home := t.TempDir()
	s := newSealedStore(t, home, "pass")

	if err := s.Set(ctx, store.ProofKey("0xAA"), []byte("proof-a")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Set(ctx, store.CurrentProofKey, []byte("proof-current")); err != nil {
		t.Fatalf("set: %v", err)
	}

	entries, err := os.ReadDir(home)
	if err != nil || len(entries) != 2 {
		t.Fatalf("expected 2 files, got %d (%v)", len(entries), err)
	}
	// Swap the two files on disk; each must refuse to open under the other key.
	a := filepath.Join(home, entries[0].Name())
	b := filepath.Join(home, entries[1].Name())
	ra, _ := os.ReadFile(a)
	rb, _ := os.ReadFile(b)
	_ = os.WriteFile(a, rb, 0o600)
	_ = os.WriteFile(b, ra, 0o600)

	if _, _, err := s.Get(ctx, store.CurrentProofKey); err == nil {
		t.Fatal("expected swapped value to fail authentication")
	}
}

func TestFileStore_Plain_RemoveIdempotent(t *testing.T) {
	ctx := context.Background()
	s, err := store.NewFileStore(filepath.Join(t.TempDir(), "nested", "home"))
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	if err := s.Remove(ctx, store.SessionKey); err != nil {
		t.Fatalf("remove missing: %v", err)
	}
	if err := s.Set(ctx, store.SessionKey, []byte("v")); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := s.Remove(ctx, store.SessionKey); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok, err := s.Get(ctx, store.SessionKey); ok || err != nil {
		t.Fatalf("expected missing after remove, ok=%v err=%v", ok, err)
	}
}
