package session

import (
	"encoding/json"
	"os"
	"sync"
)

// KV is the persisted client state: independently readable and removable
// key-value entries with no schema versioning.
type KV interface {
	Get(key string) (string, bool)
	Set(key, value string) error
	Delete(key string)
}

// MemoryKV keeps entries in process memory. Useful for tests and for
// embedders that manage persistence themselves.
type MemoryKV struct {
	mu    sync.RWMutex
	items map[string]string
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: map[string]string{}}
}

func (m *MemoryKV) Get(key string) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.items[key]
	return v, ok
}

func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = value
	return nil
}

func (m *MemoryKV) Delete(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
}

// FileKV persists entries as a single JSON object on disk, the way the
// browser page kept its session triple in localStorage. Reads are served
// from memory; every write rewrites the file.
type FileKV struct {
	path  string
	mu    sync.Mutex
	items map[string]string
}

// NewFileKV opens or creates the backing file.
func NewFileKV(path string) (*FileKV, error) {
	kv := &FileKV{path: path, items: map[string]string{}}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return kv, nil
		}
		return nil, err
	}
	if len(data) > 0 {
		if err := json.Unmarshal(data, &kv.items); err != nil {
			return nil, err
		}
	}
	return kv, nil
}

func (f *FileKV) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.items[key]
	return v, ok
}

func (f *FileKV) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items[key] = value
	return f.flush()
}

func (f *FileKV) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, key)
	_ = f.flush()
}

func (f *FileKV) flush() error {
	data, err := json.Marshal(f.items)
	if err != nil {
		return err
	}
	return os.WriteFile(f.path, data, 0o600)
}
