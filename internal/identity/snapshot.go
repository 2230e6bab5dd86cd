package identity

import (
	"fmt"

	"github.com/suPer8Hu/ai-companion/internal/auth"
)

// Snapshot is the durable part of the store. Guest profiles and session
// links live only in memory.
type Snapshot struct {
	Logins       map[string]Credential
	Accounts     map[string]Account
	Memories     map[string]Memory
	Interactions map[string]Interaction
}

func (s *Store) Export() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Logins:       make(map[string]Credential, len(s.logins)),
		Accounts:     make(map[string]Account, len(s.accounts)),
		Memories:     make(map[string]Memory, len(s.memories)),
		Interactions: make(map[string]Interaction, len(s.interactions)),
	}
	for k, v := range s.logins {
		snap.Logins[k] = *v
	}
	for k, v := range s.accounts {
		snap.Accounts[k] = *v
	}
	for k, v := range s.memories {
		snap.Memories[k] = v.clone()
	}
	for k, v := range s.interactions {
		snap.Interactions[k] = v.clone()
	}
	return snap
}

// Import replaces the durable maps. Plaintext passwords from older
// documents are hashed on the way in. It returns how many were migrated.
func (s *Store) Import(snap Snapshot) (int, error) {
	logins := make(map[string]*Credential, len(snap.Logins))
	migrated := 0
	for k, v := range snap.Logins {
		c := v
		if c.PasswordHash == "" && c.Password != "" {
			hash, err := auth.HashPassword(c.Password)
			if err != nil {
				return 0, fmt.Errorf("migrate password for %s: %w", k, err)
			}
			c.PasswordHash = hash
			migrated++
		}
		c.Password = ""
		logins[k] = &c
	}
	accounts := make(map[string]*Account, len(snap.Accounts))
	for k, v := range snap.Accounts {
		a := v
		accounts[k] = &a
	}
	memories := make(map[string]*Memory, len(snap.Memories))
	for k, v := range snap.Memories {
		m := v.clone()
		memories[k] = &m
	}
	interactions := make(map[string]*Interaction, len(snap.Interactions))
	for k, v := range snap.Interactions {
		in := v.clone()
		if in.PreferredResponseStyle == "" {
			in.PreferredResponseStyle = defaultResponseStyle
		}
		interactions[k] = &in
	}

	s.mu.Lock()
	s.logins, s.accounts, s.memories, s.interactions = logins, accounts, memories, interactions
	s.mu.Unlock()
	return migrated, nil
}
