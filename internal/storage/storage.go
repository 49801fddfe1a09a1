package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pfrederiksen/standings-scraper/internal/standings"
)

// ErrCorrupt is returned when the snapshot file exists but cannot be decoded
var ErrCorrupt = errors.New("snapshot file is not valid JSON")

// Storage handles persistence of the snapshot file
type Storage struct {
	path string
}

// New creates a new Storage instance for the snapshot file at path
func New(path string) (*Storage, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("snapshot path is required")
	}

	// Expand ~ to home directory
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	return &Storage{
		path: path,
	}, nil
}

// Path returns the location of the snapshot file
func (s *Storage) Path() string {
	return s.path
}

// LoadSnapshot loads the snapshot from disk. It returns nil and no error when
// the file does not exist yet, and an error wrapping ErrCorrupt when the file
// cannot be decoded.
func (s *Storage) LoadSnapshot() (*standings.Snapshot, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			// No previous snapshot
			return nil, nil
		}
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var snapshot standings.Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return snapshot.Repair(), nil
}

// SaveSnapshot writes the snapshot to disk, replacing any previous file, and
// returns the bytes written.
func (s *Storage) SaveSnapshot(snapshot *standings.Snapshot) ([]byte, error) {
	data, err := Encode(snapshot)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	if err := os.WriteFile(s.path, data, 0644); err != nil {
		return nil, fmt.Errorf("writing snapshot: %w", err)
	}

	return data, nil
}

// Encode renders a snapshot as indented UTF-8 JSON. Non-ASCII characters and
// HTML-significant characters are written as-is.
func Encode(snapshot *standings.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(snapshot); err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return buf.Bytes(), nil
}
