package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

// Session is the client side authentication state, the persisted token.
type Session struct {
	Token string `json:"token"`
}

// Valid reports whether the session carries a token. Validity against the
// server is only known after a current-user call.
func (s Session) Valid() bool {
	return s.Token != ""
}

// SessionStore persists the session between runs.
type SessionStore interface {
	Load() (Session, error)
	Save(session Session) error
	Clear() error
}

// FileSessionStore keeps the session as a JSON file, created with user-only
// permissions since it holds a live credential.
type FileSessionStore struct {
	path string
}

func NewFileSessionStore(path string) *FileSessionStore {
	return &FileSessionStore{path: path}
}

// Load returns the stored session. A missing file is an empty session, not
// an error.
func (s *FileSessionStore) Load() (Session, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Session{}, nil
		}
		return Session{}, err
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return Session{}, err
	}

	return session, nil
}

func (s *FileSessionStore) Save(session Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	return os.WriteFile(s.path, data, 0o600)
}

// Clear removes the stored session. Clearing an already empty store is a
// no-op.
func (s *FileSessionStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// MemorySessionStore holds the session in memory, for tests and for callers
// that do not want persistence.
type MemorySessionStore struct {
	session Session
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{}
}

func (s *MemorySessionStore) Load() (Session, error) {
	return s.session, nil
}

func (s *MemorySessionStore) Save(session Session) error {
	s.session = session
	return nil
}

func (s *MemorySessionStore) Clear() error {
	s.session = Session{}
	return nil
}
