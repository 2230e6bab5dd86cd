package conversation

import "sync"

// MaxHistory caps each session's rolling chat buffer.
const MaxHistory = 20

type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Buffers holds the short-term chat history of every session.
type Buffers struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

func NewBuffers() *Buffers {
	return &Buffers{sessions: make(map[string][]Turn)}
}

// Append adds turns and drops the oldest beyond MaxHistory.
func (b *Buffers) Append(sessionID string, turns ...Turn) {
	b.mu.Lock()
	defer b.mu.Unlock()
	h := append(b.sessions[sessionID], turns...)
	if n := len(h); n > MaxHistory {
		h = append([]Turn(nil), h[n-MaxHistory:]...)
	}
	b.sessions[sessionID] = h
}

func (b *Buffers) History(sessionID string) []Turn {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]Turn{}, b.sessions[sessionID]...)
}

func (b *Buffers) Clear(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.sessions, sessionID)
}
