package preferences

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Storage is a string key/value store for client preferences
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// MemoryStorage keeps preferences for the lifetime of the process
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{values: make(map[string]string)}
}

// Get implements Storage
func (m *MemoryStorage) Get(key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements Storage
func (m *MemoryStorage) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
	return nil
}

// FileStorage persists preferences as a JSON object in a single file.
// The file is read lazily and rewritten on every Set.
type FileStorage struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	values map[string]string
}

// NewFileStorage creates a file-backed store at path
func NewFileStorage(path string, logger *zap.Logger) *FileStorage {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileStorage{
		path:   path,
		logger: logger,
	}
}

// Get implements Storage
func (fs *FileStorage) Get(key string) (string, bool, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.load(); err != nil {
		return "", false, err
	}
	v, ok := fs.values[key]
	return v, ok, nil
}

// Set implements Storage
func (fs *FileStorage) Set(key, value string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	if err := fs.load(); err != nil {
		return err
	}
	fs.values[key] = value
	return fs.save()
}

func (fs *FileStorage) load() error {
	if fs.values != nil {
		return nil
	}

	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			// Created on first save
			fs.values = make(map[string]string)
			return nil
		}
		return fmt.Errorf("failed to read preferences file: %w", err)
	}

	values := make(map[string]string)
	if err := json.Unmarshal(data, &values); err != nil {
		return fmt.Errorf("failed to parse preferences file: %w", err)
	}

	fs.values = values
	fs.logger.Debug("Preferences loaded",
		zap.String("path", fs.path),
		zap.Int("keys", len(values)))

	return nil
}

func (fs *FileStorage) save() error {
	data, err := json.MarshalIndent(fs.values, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}

	if dir := filepath.Dir(fs.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create preferences dir: %w", err)
		}
	}

	// write-then-rename keeps the previous file intact on failure
	tmp := fs.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences file: %w", err)
	}
	if err := os.Rename(tmp, fs.path); err != nil {
		return fmt.Errorf("failed to replace preferences file: %w", err)
	}

	fs.logger.Debug("Preferences saved", zap.String("path", fs.path))
	return nil
}

// Backend names accepted by OpenStorage
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// OpenStorage builds the configured backend. The returned close function
// is never nil.
func OpenStorage(backend, path string, logger *zap.Logger) (Storage, func() error, error) {
	noop := func() error { return nil }

	switch backend {
	case BackendMemory, "":
		return NewMemoryStorage(), noop, nil
	case BackendFile:
		return NewFileStorage(path, logger), noop, nil
	case BackendSQLite:
		s, err := OpenSQLiteStorage(path, logger)
		if err != nil {
			return nil, noop, err
		}
		return s, s.Close, nil
	default:
		return nil, noop, fmt.Errorf("unknown preferences backend: %s", backend)
	}
}
