package relay

import (
	"context"
	"sync"
)

// CredentialStore maps relay-issued client-session identifiers to the
// upstream session cookie captured for that client. Keying by client keeps
// concurrent distinct logins isolated; within one client the last captured
// cookie wins, with no merging.
type CredentialStore interface {
	// Get returns the stored cookie for the client, or "" when none is held.
	Get(ctx context.Context, clientID string) (string, error)
	Set(ctx context.Context, clientID, cookie string) error
	Delete(ctx context.Context, clientID string) error
}

// MemoryCredentialStore keeps credentials in process memory. It is the
// default for a single relay instance.
type MemoryCredentialStore struct {
	mu    sync.RWMutex
	creds map[string]string
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{creds: map[string]string{}}
}

func (m *MemoryCredentialStore) Get(_ context.Context, clientID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.creds[clientID], nil
}

func (m *MemoryCredentialStore) Set(_ context.Context, clientID, cookie string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.creds[clientID] = cookie
	return nil
}

func (m *MemoryCredentialStore) Delete(_ context.Context, clientID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.creds, clientID)
	return nil
}
