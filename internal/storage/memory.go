package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"venturelink/pkg/types"
)

// Object is a stored blob and its content type.
type Object struct {
	Data        []byte
	ContentType string
}

// MemoryBucket is an in-memory SigningBucket. It is safe for concurrent use
// and backs tests and local development.
type MemoryBucket struct {
	name    string
	objects map[string]Object
	mu      sync.RWMutex
}

func NewMemoryBucket(name string) *MemoryBucket {
	return &MemoryBucket{
		name:    name,
		objects: make(map[string]Object),
	}
}

func (m *MemoryBucket) Download(_ context.Context, path string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[path]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", m.name, path, types.ErrObjectNotFound)
	}

	return append([]byte(nil), obj.Data...), nil
}

func (m *MemoryBucket) Upload(_ context.Context, path string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.objects[path] = Object{Data: append([]byte(nil), data...), ContentType: contentType}
	return nil
}

func (m *MemoryBucket) Move(_ context.Context, from, to string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, ok := m.objects[from]
	if !ok {
		return fmt.Errorf("%s/%s: %w", m.name, from, types.ErrObjectNotFound)
	}

	m.objects[to] = obj
	delete(m.objects, from)
	return nil
}

func (m *MemoryBucket) Delete(_ context.Context, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.objects, path)
	return nil
}

func (m *MemoryBucket) SignedUploadURL(_ context.Context, path, _ string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s/%s?op=put&ttl=%d", m.name, path, int(ttl.Seconds())), nil
}

func (m *MemoryBucket) SignedDownloadURL(_ context.Context, path string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("memory://%s/%s?op=get&ttl=%d", m.name, path, int(ttl.Seconds())), nil
}

// Object returns a stored object, for assertions.
func (m *MemoryBucket) Object(path string) (Object, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	obj, ok := m.objects[path]
	return obj, ok
}

// Paths lists every stored path in sorted order.
func (m *MemoryBucket) Paths() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	paths := make([]string, 0, len(m.objects))
	for p := range m.objects {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}
