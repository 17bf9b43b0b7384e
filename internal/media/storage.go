package media

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
)

var (
	// ErrStorageUnavailable indicates no storage backend is configured.
	ErrStorageUnavailable = errors.New("media storage unavailable")
	// ErrEmptyKey indicates an object name resolved to an empty key.
	ErrEmptyKey = errors.New("media storage: empty key")
)

// Storage persists uploaded files and returns the URL they are served from.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
}

// ContentKey derives a stable object key from the file content. Uploading the same bytes twice
// yields the same key; the extension of name is preserved.
func ContentKey(prefix, name string, content []byte) string {
	sum := sha256.Sum256(content)
	key := hex.EncodeToString(sum[:])
	if ext := strings.ToLower(path.Ext(name)); ext != "" {
		key += ext
	}
	if prefix = strings.Trim(prefix, "/"); prefix != "" {
		key = prefix + "/" + key
	}
	return key
}

// Upload reads r fully and stores it under its content key below prefix.
func Upload(ctx context.Context, storage Storage, prefix, name string, r io.Reader) (string, error) {
	if storage == nil {
		return "", ErrStorageUnavailable
	}
	content, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read upload %s: %w", name, err)
	}
	return storage.Save(ctx, ContentKey(prefix, name, content), bytes.NewReader(content))
}

// MemoryStorage keeps objects in process memory. It backs local runs and tests.
type MemoryStorage struct {
	baseURL string

	mu      sync.RWMutex
	objects map[string][]byte
}

// NewMemoryStorage returns an empty MemoryStorage whose URLs start with baseURL.
func NewMemoryStorage(baseURL string) *MemoryStorage {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = "memory://media"
	}
	return &MemoryStorage{baseURL: strings.TrimSuffix(baseURL, "/"), objects: make(map[string][]byte)}
}

// Save stores the content of r under name.
func (m *MemoryStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	key := strings.TrimLeft(name, "/")
	if key == "" {
		return "", ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("memory storage read %s: %w", key, err)
	}

	m.mu.Lock()
	m.objects[key] = data
	m.mu.Unlock()
	return m.baseURL + "/" + key, nil
}

// Object returns a stored object.
func (m *MemoryStorage) Object(key string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, ok
}

// Len reports how many objects are stored.
func (m *MemoryStorage) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects)
}

var (
	_ Storage = (*MemoryStorage)(nil)
	_ Storage = (*S3Storage)(nil)
)
