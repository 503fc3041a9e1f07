// Package credstore persists the client's local state: the API token and
// the guest cart. It replaces what the browser kept in localStorage.
package credstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store is the persistence boundary for token and guest cart state.
// Implementations must be safe for concurrent use.
type Store interface {
	// Token returns the stored token, or "" when none is stored.
	Token() (string, error)
	SetToken(token string) error
	ClearToken() error

	// GuestCart returns the guest cart as product ID → quantity.
	// A missing cart is an empty map, not an error.
	GuestCart() (map[int64]int, error)
	SetGuestCart(items map[int64]int) error
}

// fileState is the on-disk JSON shape.
type fileState struct {
	Token     string        `json:"token,omitempty"`
	GuestCart map[int64]int `json:"guest_cart,omitempty"`
}

// FileStore persists state to a single JSON file with atomic replacement.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a store backed by the file at path.
// The file is created on first write; its directory must exist or be creatable.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return "", err
	}
	return state.Token, nil
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(state *fileState) {
		state.Token = token
	})
}

func (s *FileStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(state *fileState) {
		state.Token = ""
	})
}

func (s *FileStore) GuestCart() (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	state, err := s.read()
	if err != nil {
		return nil, err
	}
	if state.GuestCart == nil {
		return map[int64]int{}, nil
	}
	// Copy so callers can't mutate shared state.
	items := make(map[int64]int, len(state.GuestCart))
	for id, qty := range state.GuestCart {
		items[id] = qty
	}
	return items, nil
}

func (s *FileStore) SetGuestCart(items map[int64]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.update(func(state *fileState) {
		if len(items) == 0 {
			state.GuestCart = nil
			return
		}
		state.GuestCart = make(map[int64]int, len(items))
		for id, qty := range items {
			state.GuestCart[id] = qty
		}
	})
}

// read loads current state. A missing file is empty state.
func (s *FileStore) read() (*fileState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return &fileState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading credentials file: %w", err)
	}

	var state fileState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("parsing credentials file: %w", err)
	}
	return &state, nil
}

// update applies fn to current state and writes it back atomically.
// Write-then-rename so a crash mid-write never corrupts the stored token.
func (s *FileStore) update(fn func(*fileState)) error {
	state, err := s.read()
	if err != nil {
		return err
	}

	fn(state)

	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding credentials: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating credentials dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing credentials: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replacing credentials file: %w", err)
	}
	return nil
}

// MemStore is an in-memory Store for tests and ephemeral sessions.
type MemStore struct {
	mu    sync.Mutex
	token string
	cart  map[int64]int
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{cart: map[int64]int{}}
}

func (s *MemStore) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token, nil
}

func (s *MemStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemStore) ClearToken() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	return nil
}

func (s *MemStore) GuestCart() (map[int64]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items := make(map[int64]int, len(s.cart))
	for id, qty := range s.cart {
		items[id] = qty
	}
	return items, nil
}

func (s *MemStore) SetGuestCart(items map[int64]int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = make(map[int64]int, len(items))
	for id, qty := range items {
		s.cart[id] = qty
	}
	return nil
}
