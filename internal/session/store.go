// Package session persists the device-scoped auth session: the bearer
// credential and the identity it was issued for, stored together so a
// process restart can bootstrap without re-verifying.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/digtrack/digtrack-go/internal/types"
)

// State is the persisted session. Credential and Identity are written as a
// unit; a state with one but not the other is never stored.
type State struct {
	Credential string         `json:"credential"`
	Identity   types.Identity `json:"identity"`
	// DeviceID is minted on the first persist and survives logout/login
	// cycles on the same store file.
	DeviceID string    `json:"device_id"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store holds at most one session State.
//
// Get returns (nil, nil) when no session is stored. Set must be durable by
// the time it returns: a Get from a fresh process observes the value. Clear
// is idempotent.
type Store interface {
	Get() (*State, error)
	Set(*State) error
	Clear() error
}

// DefaultPath returns the per-user session file location.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve config dir: %w", err)
	}
	return filepath.Join(dir, "digtrack", "session.json"), nil
}

// FileStore persists the State as a JSON file, mode 0600.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore returns a store backed by the file at path. The file and its
// directory are created lazily on the first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

func (s *FileStore) Get() (*State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode session file: %w", err)
	}
	if st.Credential == "" {
		return nil, nil
	}
	return &st, nil
}

func (s *FileStore) Set(st *State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if st.DeviceID == "" {
		if prev := s.readDeviceID(); prev != "" {
			st.DeviceID = prev
		} else {
			st.DeviceID = uuid.NewString()
		}
	}
	if st.SavedAt.IsZero() {
		st.SavedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	// Write-then-rename so a crash mid-write never leaves a truncated file.
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("persist session file: %w", err)
	}
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("clear session file: %w", err)
	}
	return nil
}

// readDeviceID recovers the device ID from an existing session file, even a
// cleared-out one, so the device identity is stable across logins.
func (s *FileStore) readDeviceID() string {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return ""
	}
	var st State
	if json.Unmarshal(data, &st) != nil {
		return ""
	}
	return st.DeviceID
}

// MemStore is an in-memory Store for tests.
type MemStore struct {
	mu sync.Mutex
	st *State
}

func NewMemStore() *MemStore { return &MemStore{} }

func (m *MemStore) Get() (*State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.st == nil {
		return nil, nil
	}
	cp := *m.st
	return &cp, nil
}

func (m *MemStore) Set(st *State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if st.DeviceID == "" {
		st.DeviceID = uuid.NewString()
	}
	cp := *st
	m.st = &cp
	return nil
}

func (m *MemStore) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.st = nil
	return nil
}
