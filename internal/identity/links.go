package identity

import (
	"context"
	"sync"
)

// SessionLinks maps session ids to account ids.
type SessionLinks interface {
	Link(ctx context.Context, sessionID, userID string) error
	// Lookup returns "" when the session is not linked.
	Lookup(ctx context.Context, sessionID string) (string, error)
	Unlink(ctx context.Context, sessionID string) error
}

type MemoryLinks struct {
	mu    sync.RWMutex
	links map[string]string
}

func NewMemoryLinks() *MemoryLinks {
	return &MemoryLinks{links: make(map[string]string)}
}

func (m *MemoryLinks) Link(_ context.Context, sessionID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.links[sessionID] = userID
	return nil
}

func (m *MemoryLinks) Lookup(_ context.Context, sessionID string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.links[sessionID], nil
}

func (m *MemoryLinks) Unlink(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.links, sessionID)
	return nil
}
