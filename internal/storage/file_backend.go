package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/weavehq/weave/internal/state"
	"github.com/weavehq/weave/internal/util"
)

// FileBackend persists ProjectState as one JSON document per key under a
// root directory, writing atomically via util.AtomicWriteFile.
type FileBackend struct {
	root string
	mu   sync.RWMutex
}

// NewFileBackend returns a FileBackend rooted at dir, creating it if absent.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &FileBackend{root: dir}, nil
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.root, key+".json")
}

// Save implements Backend.
func (b *FileBackend) Save(key string, s *state.ProjectState) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return util.AtomicWriteFile(b.path(key), data, 0o644)
}

// Load implements Backend.
func (b *FileBackend) Load(key string) (*state.ProjectState, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	data, err := os.ReadFile(b.path(key))
	if err != nil {
		return nil, fmt.Errorf("read state %s: %w", key, err)
	}
	var s state.ProjectState
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal state %s: %w", key, err)
	}
	return &s, nil
}

// Exists implements Backend.
func (b *FileBackend) Exists(key string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	_, err := os.Stat(b.path(key))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Close implements Backend; the file backend holds no resources.
func (b *FileBackend) Close() error {
	return nil
}
