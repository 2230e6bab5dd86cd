// Package identity keeps guest profiles, accounts, credentials and per-user
// memory, and resolves chat sessions to either a guest or an account.
package identity

import (
	"context"
	"fmt"
	"maps"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/suPer8Hu/ai-companion/internal/auth"
	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/heuristics"
	"github.com/suPer8Hu/ai-companion/internal/persona"
)

type Store struct {
	links SessionLinks
	now   func() time.Time

	mu           sync.RWMutex
	logins       map[string]*Credential // lower-cased username
	accounts     map[string]*Account    // userId
	memories     map[string]*Memory
	interactions map[string]*Interaction
	guests       map[string]*GuestProfile // sessionId
}

func NewStore(links SessionLinks) *Store {
	if links == nil {
		links = NewMemoryLinks()
	}
	return &Store{
		links:        links,
		now:          time.Now,
		logins:       make(map[string]*Credential),
		accounts:     make(map[string]*Account),
		memories:     make(map[string]*Memory),
		interactions: make(map[string]*Interaction),
		guests:       make(map[string]*GuestProfile),
	}
}

type RegisterInput struct {
	Username string
	Password string
	Email    string
	Name     string
}

// Register creates an account and links a fresh session to it.
func (s *Store) Register(ctx context.Context, in RegisterInput) (Account, string, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return Account{}, "", fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}
	if len(in.Password) > auth.MaxPasswordBytes {
		return Account{}, "", fmt.Errorf("%w: password longer than %d bytes", common.ErrValidation, auth.MaxPasswordBytes)
	}
	key := strings.ToLower(in.Username)

	s.mu.RLock()
	_, taken := s.logins[key]
	s.mu.RUnlock()
	if taken {
		return Account{}, "", common.ErrDuplicateUsername
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return Account{}, "", fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	name := in.Name
	if name == "" {
		name = in.Username
	}
	acc := &Account{
		UserID:      common.NewUserID(),
		Username:    in.Username,
		Name:        name,
		Email:       in.Email,
		Language:    persona.DefaultLanguage,
		Personality: persona.DefaultTag,
		CreatedAt:   now,
		LastLoginAt: now,
		IsActive:    true,
	}

	s.mu.Lock()
	// re-check: another registration may have won while hashing
	if _, ok := s.logins[key]; ok {
		s.mu.Unlock()
		return Account{}, "", common.ErrDuplicateUsername
	}
	s.logins[key] = &Credential{UserID: acc.UserID, PasswordHash: hash, Email: in.Email, CreatedAt: now}
	s.accounts[acc.UserID] = acc
	s.memories[acc.UserID] = newMemory()
	s.interactions[acc.UserID] = newInteraction()
	out := *acc
	s.mu.Unlock()

	sessionID := common.NewSessionID()
	if err := s.links.Link(ctx, sessionID, acc.UserID); err != nil {
		return Account{}, "", fmt.Errorf("link session: %w", err)
	}
	return out, sessionID, nil
}

// Authenticate checks the credential and issues a new session id. Earlier
// sessions of the same account stay valid.
func (s *Store) Authenticate(ctx context.Context, username, password string) (Account, string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return Account{}, "", fmt.Errorf("%w: username and password are required", common.ErrValidation)
	}

	s.mu.RLock()
	cred, ok := s.logins[strings.ToLower(username)]
	var hash, userID string
	if ok {
		hash, userID = cred.PasswordHash, cred.UserID
	}
	s.mu.RUnlock()
	if !ok || !auth.CheckPassword(hash, password) {
		return Account{}, "", common.ErrInvalidCredentials
	}

	s.mu.Lock()
	acc, ok := s.accounts[userID]
	if !ok || !acc.IsActive {
		s.mu.Unlock()
		return Account{}, "", common.ErrInvalidCredentials
	}
	acc.LastLoginAt = s.now()
	out := *acc
	s.mu.Unlock()

	sessionID := common.NewSessionID()
	if err := s.links.Link(ctx, sessionID, userID); err != nil {
		return Account{}, "", fmt.Errorf("link session: %w", err)
	}
	return out, sessionID, nil
}

// Logout drops the session link and leaves account data alone.
func (s *Store) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.links.Unlink(ctx, sessionID)
}

// UserID returns "" for guest sessions.
func (s *Store) UserID(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.links.Lookup(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("lookup session: %w", err)
	}
	if userID == "" {
		return "", nil
	}
	s.mu.RLock()
	_, ok := s.accounts[userID]
	s.mu.RUnlock()
	if !ok {
		return "", nil
	}
	return userID, nil
}

// Resolve returns copies; callers may keep them.
func (s *Store) Resolve(ctx context.Context, sessionID string) (Identity, error) {
	userID, err := s.UserID(ctx, sessionID)
	if err != nil {
		return Identity{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	id := Identity{SessionID: sessionID, Guest: s.guestLocked(sessionID)}
	if userID == "" {
		return id, nil
	}
	stored, ok := s.accounts[userID]
	if !ok {
		return id, nil
	}
	acc := *stored
	id.Account = &acc
	if m, ok := s.memories[userID]; ok {
		mc := m.clone()
		id.Memory = &mc
	}
	if in, ok := s.interactions[userID]; ok {
		ic := in.clone()
		id.Interaction = &ic
	}
	return id, nil
}

func (s *Store) guestLocked(sessionID string) GuestProfile {
	if g, ok := s.guests[sessionID]; ok {
		return g.clone()
	}
	return GuestProfile{Language: persona.DefaultLanguage, Preferences: map[string]any{}, CreatedAt: s.now()}
}

// Guest returns the session's guest profile, or a default one.
func (s *Store) Guest(sessionID string) GuestProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.guestLocked(sessionID)
}

// UpdateGuest creates the profile on first use and stamps UpdatedAt.
func (s *Store) UpdateGuest(sessionID string, fn func(*GuestProfile)) GuestProfile {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.guests[sessionID]
	if !ok {
		fresh := s.guestLocked(sessionID)
		g = &fresh
		s.guests[sessionID] = g
	}
	fn(g)
	g.UpdatedAt = s.now()
	return g.clone()
}

func (s *Store) SetGuestName(sessionID, name string) GuestProfile {
	return s.UpdateGuest(sessionID, func(g *GuestProfile) { g.Name = name })
}

func (s *Store) SetGuestLanguage(sessionID string, lang persona.Language) GuestProfile {
	return s.UpdateGuest(sessionID, func(g *GuestProfile) { g.Language = lang })
}

func (s *Store) SetGuestPersonality(sessionID, tag string) GuestProfile {
	return s.UpdateGuest(sessionID, func(g *GuestProfile) { g.Personality = tag })
}

func (s *Store) MergeGuestPreferences(sessionID string, prefs map[string]any) GuestProfile {
	return s.UpdateGuest(sessionID, func(g *GuestProfile) {
		if g.Preferences == nil {
			g.Preferences = map[string]any{}
		}
		maps.Copy(g.Preferences, prefs)
	})
}

// UpdateAccount applies fn to the stored account.
func (s *Store) UpdateAccount(userID string, fn func(*Account)) (Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[userID]
	if !ok {
		return Account{}, fmt.Errorf("%w: account %s", common.ErrNotFound, userID)
	}
	fn(acc)
	return *acc, nil
}

func (s *Store) memoryLocked(userID string) (*Memory, error) {
	if _, ok := s.accounts[userID]; !ok {
		return nil, fmt.Errorf("%w: account %s", common.ErrNotFound, userID)
	}
	m, ok := s.memories[userID]
	if !ok {
		m = newMemory()
		s.memories[userID] = m
	}
	return m, nil
}

type MemoryPatch struct {
	Research    []string
	Interests   []string
	Preferences map[string]any
}

// UpdateMemory merges patch into the user's memory with set semantics for
// research and interests.
func (s *Store) UpdateMemory(userID string, patch MemoryPatch) (Memory, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.memoryLocked(userID)
	if err != nil {
		return Memory{}, err
	}
	if len(patch.Research) > 0 {
		m.Research = union(m.Research, patch.Research...)
	}
	if len(patch.Interests) > 0 {
		m.Interests = union(m.Interests, patch.Interests...)
	}
	if len(patch.Preferences) > 0 {
		if m.Preferences == nil {
			m.Preferences = map[string]any{}
		}
		maps.Copy(m.Preferences, patch.Preferences)
	}
	return m.clone(), nil
}

// AddInterest reports whether the interest was new.
func (s *Store) AddInterest(userID, interest string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, err := s.memoryLocked(userID)
	if err != nil {
		return false, err
	}
	before := len(m.Interests)
	m.Interests = union(m.Interests, interest)
	return len(m.Interests) > before, nil
}

func (s *Store) AddResearch(userID string, items ...string) error {
	_, err := s.UpdateMemory(userID, MemoryPatch{Research: items})
	return err
}

func (s *Store) Memory(userID string) (Memory, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[userID]; !ok {
		return Memory{}, fmt.Errorf("%w: account %s", common.ErrNotFound, userID)
	}
	if m, ok := s.memories[userID]; ok {
		return m.clone(), nil
	}
	return newMemory().clone(), nil
}

func (s *Store) Interaction(userID string) (Interaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, ok := s.accounts[userID]; !ok {
		return Interaction{}, fmt.Errorf("%w: account %s", common.ErrNotFound, userID)
	}
	if in, ok := s.interactions[userID]; ok {
		return in.clone(), nil
	}
	return newInteraction().clone(), nil
}

// RecordInteraction counts one authenticated chat turn: total messages,
// discussed topics and a bounded sample of message shapes.
func (s *Store) RecordInteraction(userID, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[userID]; !ok {
		return fmt.Errorf("%w: account %s", common.ErrNotFound, userID)
	}
	in, ok := s.interactions[userID]
	if !ok {
		in = newInteraction()
		s.interactions[userID] = in
	}

	in.TotalMessages++
	for _, topic := range heuristics.ExtractTopics(message) {
		found := false
		for i := range in.FavoriteTopics {
			if in.FavoriteTopics[i].Topic == topic {
				in.FavoriteTopics[i].Count++
				found = true
				break
			}
		}
		if !found {
			in.FavoriteTopics = append(in.FavoriteTopics, TopicCount{Topic: topic, Count: 1})
		}
	}

	in.ConversationPatterns = append(in.ConversationPatterns, PatternSample{
		Timestamp:     s.now(),
		Message:       truncateRunes(message, sampleMessageRunes),
		MessageLength: utf8.RuneCountInString(message),
		IsQuestion:    strings.Contains(message, "?"),
		HasEmoji:      heuristics.HasEmoji(message),
	})
	if n := len(in.ConversationPatterns); n > MaxConversationPatterns {
		in.ConversationPatterns = append([]PatternSample(nil), in.ConversationPatterns[n-MaxConversationPatterns:]...)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
