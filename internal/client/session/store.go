package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/isdelr/bookfinder-be/internal/models"
)

// FileName is the fixed name of the persisted session.
const FileName = "session.json"

// ErrNoSession is returned by Load when nothing is stored.
var ErrNoSession = errors.New("not logged in")

// Record is what the client keeps between invocations. Username, Role and
// ExpiresAt are decoded for display only.
type Record struct {
	Token     string      `json:"token"`
	Username  string      `json:"username"`
	Role      models.Role `json:"role"`
	ExpiresAt time.Time   `json:"expiresAt"`
}

// Store persists a single session record.
type Store interface {
	Save(record Record) error
	Load() (Record, error)
	Clear() error
}

// FileStore implements Store using a JSON file.
type FileStore struct {
	path string
}

// Ensure FileStore implements Store at compile time.
var _ Store = (*FileStore)(nil)

// DefaultDir returns ~/.bookfinder.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, ".bookfinder"), nil
}

// NewFileStore creates a FileStore keeping its file in dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &FileStore{path: filepath.Join(dir, FileName)}, nil
}

// Save writes the record with owner-only permissions.
func (s *FileStore) Save(record Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return os.WriteFile(s.path, data, 0600)
}

// Load reads the stored record.
func (s *FileStore) Load() (Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Record{}, ErrNoSession
		}
		return Record{}, fmt.Errorf("failed to read session file: %w", err)
	}
	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		return Record{}, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	if record.Token == "" {
		return Record{}, ErrNoSession
	}
	return record, nil
}

// Clear deletes the session file.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}
