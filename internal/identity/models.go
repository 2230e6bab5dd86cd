package identity

import (
	"maps"
	"sort"
	"time"

	"github.com/suPer8Hu/ai-companion/internal/persona"
)

const (
	MaxConversationPatterns = 50
	sampleMessageRunes      = 100
	defaultResponseStyle    = "balanced"
)

type Account struct {
	UserID      string           `json:"userId"`
	Username    string           `json:"username"`
	Name        string           `json:"name"`
	Email       string           `json:"email"`
	Language    persona.Language `json:"language"`
	Personality string           `json:"personality"`
	CreatedAt   time.Time        `json:"createdAt"`
	LastLoginAt time.Time        `json:"lastLoginAt"`
	IsActive    bool             `json:"isActive"`
}

// Credential is keyed by lower-cased username. Password only appears in
// documents written before hashing was introduced and is cleared on import.
type Credential struct {
	UserID       string    `json:"userId"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	Password     string    `json:"password,omitempty"`
	Email        string    `json:"email"`
	CreatedAt    time.Time `json:"createdAt"`
}

type GuestProfile struct {
	Name        string           `json:"name,omitempty"`
	Language    persona.Language `json:"language"`
	Personality string           `json:"personality,omitempty"`
	Preferences map[string]any   `json:"preferences"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt,omitempty"`
}

func (g GuestProfile) clone() GuestProfile {
	g.Preferences = cloneMap(g.Preferences)
	return g
}

type Memory struct {
	Research           []string       `json:"research"`
	Preferences        map[string]any `json:"preferences"`
	Interests          []string       `json:"interests"`
	PersonalHistory    []any          `json:"personalHistory"`
	SavedConversations []any          `json:"savedConversations"`
}

func newMemory() *Memory {
	return &Memory{
		Research:           []string{},
		Preferences:        map[string]any{},
		Interests:          []string{},
		PersonalHistory:    []any{},
		SavedConversations: []any{},
	}
}

func (m *Memory) clone() Memory {
	return Memory{
		Research:           append([]string{}, m.Research...),
		Preferences:        cloneMap(m.Preferences),
		Interests:          append([]string{}, m.Interests...),
		PersonalHistory:    append([]any{}, m.PersonalHistory...),
		SavedConversations: append([]any{}, m.SavedConversations...),
	}
}

func cloneMap(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return maps.Clone(m)
}

// union appends the values of add missing from set, keeping order.
func union(set []string, add ...string) []string {
	seen := make(map[string]struct{}, len(set)+len(add))
	out := make([]string, 0, len(set)+len(add))
	for _, v := range append(append([]string{}, set...), add...) {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

type TopicCount struct {
	Topic string `json:"topic"`
	Count int    `json:"count"`
}

type PatternSample struct {
	Timestamp     time.Time `json:"timestamp"`
	Message       string    `json:"message"`
	MessageLength int       `json:"messageLength"`
	IsQuestion    bool      `json:"isQuestion"`
	HasEmoji      bool      `json:"hasEmoji"`
}

type Interaction struct {
	TotalMessages          int             `json:"totalMessages"`
	FavoriteTopics         []TopicCount    `json:"favoriteTopics"`
	CommonQuestions        []string        `json:"commonQuestions"`
	PreferredResponseStyle string          `json:"preferredResponseStyle"`
	ConversationPatterns   []PatternSample `json:"conversationPatterns"`
}

func newInteraction() *Interaction {
	return &Interaction{
		FavoriteTopics:         []TopicCount{},
		CommonQuestions:        []string{},
		PreferredResponseStyle: defaultResponseStyle,
		ConversationPatterns:   []PatternSample{},
	}
}

func (in *Interaction) clone() Interaction {
	out := *in
	out.FavoriteTopics = append([]TopicCount{}, in.FavoriteTopics...)
	out.CommonQuestions = append([]string{}, in.CommonQuestions...)
	out.ConversationPatterns = append([]PatternSample{}, in.ConversationPatterns...)
	return out
}

// TopTopics returns up to n topic names by count, ties in insertion order.
func (in Interaction) TopTopics(n int) []string {
	sorted := append([]TopicCount(nil), in.FavoriteTopics...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Count > sorted[j].Count })
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	out := make([]string, 0, len(sorted))
	for _, tc := range sorted {
		out = append(out, tc.Topic)
	}
	return out
}

// Identity is what a session resolves to. Account, Memory and Interaction
// are nil for guests.
type Identity struct {
	SessionID   string
	Account     *Account
	Guest       GuestProfile
	Memory      *Memory
	Interaction *Interaction
}

func (id Identity) Authenticated() bool { return id.Account != nil }

// Language prefers the account setting over the guest profile.
func (id Identity) Language() persona.Language {
	if id.Account != nil && id.Account.Language != "" {
		return id.Account.Language.OrDefault()
	}
	return id.Guest.Language.OrDefault()
}

// Personality prefers the account setting over the guest profile.
func (id Identity) Personality() string {
	if id.Account != nil && id.Account.Personality != "" {
		return id.Account.Personality
	}
	if id.Guest.Personality != "" {
		return id.Guest.Personality
	}
	return persona.DefaultTag
}

// DisplayName is the account name, or the guest name when set.
func (id Identity) DisplayName() string {
	if id.Account != nil {
		return id.Account.Name
	}
	return id.Guest.Name
}
