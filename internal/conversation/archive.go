// Package conversation holds the per-account conversation archive and the
// short rolling chat buffer each session feeds into prompts.
package conversation

import (
	"fmt"
	"sort"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/suPer8Hu/ai-companion/internal/common"
)

const (
	DefaultID        = "default"
	PlaceholderTitle = "Yeni Konuşma"
	titleRunes       = 50
	previewRunes     = 50
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type Conversation struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Messages      []Message `json:"messages"`
	CreatedAt     time.Time `json:"createdAt"`
	LastMessageAt time.Time `json:"lastMessageAt"`
}

func (c *Conversation) clone() Conversation {
	out := *c
	out.Messages = append([]Message{}, c.Messages...)
	return out
}

func (c *Conversation) hasUserMessage() bool {
	for _, m := range c.Messages {
		if m.Role == RoleUser {
			return true
		}
	}
	return false
}

type Summary struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	LastMessageAt time.Time `json:"lastMessageAt"`
	CreatedAt     time.Time `json:"createdAt"`
	MessageCount  int       `json:"messageCount"`
	Preview       string    `json:"preview"`
}

// Archive stores conversations per account id, in creation order.
type Archive struct {
	now func() time.Time

	mu    sync.RWMutex
	convs map[string][]*Conversation
}

func NewArchive() *Archive {
	return &Archive{now: time.Now, convs: make(map[string][]*Conversation)}
}

func (a *Archive) findLocked(userID, id string) (*Conversation, int) {
	for i, c := range a.convs[userID] {
		if c.ID == id {
			return c, i
		}
	}
	return nil, -1
}

// AppendTurn adds a message. A user turn creates the conversation if needed;
// an assistant turn for a missing conversation is dropped and the zero
// Conversation returned. An empty id means DefaultID. The first user message
// becomes the title.
func (a *Archive) AppendTurn(userID, conversationID string, role Role, content string) Conversation {
	if conversationID == "" {
		conversationID = DefaultID
	}
	now := a.now()

	a.mu.Lock()
	defer a.mu.Unlock()

	c, _ := a.findLocked(userID, conversationID)
	if c == nil {
		if role != RoleUser {
			return Conversation{}
		}
		c = &Conversation{ID: conversationID, Title: PlaceholderTitle, Messages: []Message{}, CreatedAt: now}
		a.convs[userID] = append(a.convs[userID], c)
	}
	if role == RoleUser && !c.hasUserMessage() {
		c.Title = Truncate(content, titleRunes)
	}
	c.Messages = append(c.Messages, Message{Role: role, Content: content, Timestamp: now})
	c.LastMessageAt = now
	return c.clone()
}

// Create starts an empty conversation with a placeholder title.
func (a *Archive) Create(userID string) Conversation {
	now := a.now()
	c := &Conversation{
		ID:            common.NewConversationID(),
		Title:         PlaceholderTitle,
		Messages:      []Message{},
		CreatedAt:     now,
		LastMessageAt: now,
	}
	a.mu.Lock()
	a.convs[userID] = append(a.convs[userID], c)
	a.mu.Unlock()
	return c.clone()
}

// List returns summaries, most recently active first.
func (a *Archive) List(userID string) []Summary {
	a.mu.RLock()
	out := make([]Summary, 0, len(a.convs[userID]))
	for _, c := range a.convs[userID] {
		s := Summary{
			ID:            c.ID,
			Title:         c.Title,
			LastMessageAt: c.LastMessageAt,
			CreatedAt:     c.CreatedAt,
			MessageCount:  len(c.Messages),
		}
		if n := len(c.Messages); n > 0 {
			s.Preview = Truncate(c.Messages[n-1].Content, previewRunes)
		}
		out = append(out, s)
	}
	a.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].LastMessageAt.After(out[j].LastMessageAt)
	})
	return out
}

func (a *Archive) Get(userID, id string) (Conversation, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	c, _ := a.findLocked(userID, id)
	if c == nil {
		return Conversation{}, fmt.Errorf("%w: conversation %s", common.ErrNotFound, id)
	}
	return c.clone(), nil
}

func (a *Archive) Delete(userID, id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, i := a.findLocked(userID, id)
	if i < 0 {
		return fmt.Errorf("%w: conversation %s", common.ErrNotFound, id)
	}
	list := a.convs[userID]
	a.convs[userID] = append(list[:i:i], list[i+1:]...)
	return nil
}

func (a *Archive) Export() map[string][]Conversation {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string][]Conversation, len(a.convs))
	for userID, list := range a.convs {
		cs := make([]Conversation, 0, len(list))
		for _, c := range list {
			cs = append(cs, c.clone())
		}
		out[userID] = cs
	}
	return out
}

func (a *Archive) Import(data map[string][]Conversation) {
	convs := make(map[string][]*Conversation, len(data))
	for userID, list := range data {
		ptrs := make([]*Conversation, 0, len(list))
		for i := range list {
			c := list[i].clone()
			ptrs = append(ptrs, &c)
		}
		convs[userID] = ptrs
	}
	a.mu.Lock()
	a.convs = convs
	a.mu.Unlock()
}

// Truncate cuts s to n runes and appends "..." when it was longer.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
