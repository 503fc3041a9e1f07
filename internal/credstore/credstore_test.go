package credstore

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestFileStore(t *testing.T) *FileStore {
	t.Helper()
	return NewFileStore(filepath.Join(t.TempDir(), "credentials.json"))
}

func TestFileStoreTokenRoundTrip(t *testing.T) {
	store := newTestFileStore(t)

	// Missing file reads as empty token.
	token, err := store.Token()
	if err != nil {
		t.Fatalf("Token() on missing file: %v", err)
	}
	if token != "" {
		t.Errorf("Token() = %q, want empty", token)
	}

	if err := store.SetToken("abc123"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	token, err = store.Token()
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if token != "abc123" {
		t.Errorf("Token() = %q, want abc123", token)
	}

	if err := store.ClearToken(); err != nil {
		t.Fatalf("ClearToken: %v", err)
	}
	token, _ = store.Token()
	if token != "" {
		t.Errorf("Token() after clear = %q, want empty", token)
	}
}

func TestFileStoreGuestCartRoundTrip(t *testing.T) {
	store := newTestFileStore(t)

	cart, err := store.GuestCart()
	if err != nil {
		t.Fatalf("GuestCart on missing file: %v", err)
	}
	if len(cart) != 0 {
		t.Errorf("GuestCart on missing file = %v, want empty", cart)
	}

	want := map[int64]int{12: 2, 99: 1}
	if err := store.SetGuestCart(want); err != nil {
		t.Fatalf("SetGuestCart: %v", err)
	}

	got, err := store.GuestCart()
	if err != nil {
		t.Fatalf("GuestCart: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("GuestCart = %v, want %v", got, want)
	}
	for id, qty := range want {
		if got[id] != qty {
			t.Errorf("GuestCart[%d] = %d, want %d", id, got[id], qty)
		}
	}
}

func TestFileStoreCartClearDoesNotTouchToken(t *testing.T) {
	store := newTestFileStore(t)

	if err := store.SetToken("keep-me"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	if err := store.SetGuestCart(map[int64]int{5: 3}); err != nil {
		t.Fatalf("SetGuestCart: %v", err)
	}
	if err := store.SetGuestCart(nil); err != nil {
		t.Fatalf("SetGuestCart(nil): %v", err)
	}

	token, _ := store.Token()
	if token != "keep-me" {
		t.Errorf("Token after cart clear = %q, want keep-me", token)
	}
	cart, _ := store.GuestCart()
	if len(cart) != 0 {
		t.Errorf("GuestCart after clear = %v, want empty", cart)
	}
}

func TestFileStoreReturnsCopies(t *testing.T) {
	store := newTestFileStore(t)
	if err := store.SetGuestCart(map[int64]int{1: 1}); err != nil {
		t.Fatalf("SetGuestCart: %v", err)
	}

	cart, _ := store.GuestCart()
	cart[1] = 100

	again, _ := store.GuestCart()
	if again[1] != 1 {
		t.Errorf("mutation of returned map leaked into store: %v", again)
	}
}

func TestFileStoreNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "credentials.json"))

	if err := store.SetToken("x"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	for _, e := range entries {
		if e.Name() != "credentials.json" {
			t.Errorf("unexpected file left in dir: %s", e.Name())
		}
	}
}

func TestFileStoreCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "credentials.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	store := NewFileStore(path)
	if _, err := store.Token(); err == nil {
		t.Error("Token() on corrupt file should fail")
	}
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()

	if err := store.SetToken("t"); err != nil {
		t.Fatalf("SetToken: %v", err)
	}
	token, _ := store.Token()
	if token != "t" {
		t.Errorf("Token = %q, want t", token)
	}

	if err := store.SetGuestCart(map[int64]int{7: 4}); err != nil {
		t.Fatalf("SetGuestCart: %v", err)
	}
	cart, _ := store.GuestCart()
	if cart[7] != 4 {
		t.Errorf("GuestCart[7] = %d, want 4", cart[7])
	}

	store.ClearToken()
	token, _ = store.Token()
	if token != "" {
		t.Errorf("Token after clear = %q", token)
	}
}
