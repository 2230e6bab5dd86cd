// Package persist checkpoints accounts, conversations and memories as three
// JSON documents and restores them at startup.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/identity"
)

type IdentitySource interface {
	Export() identity.Snapshot
	Import(identity.Snapshot) (int, error)
}

type ConversationSource interface {
	Export() map[string][]conversation.Conversation
	Import(map[string][]conversation.Conversation)
}

type Gateway struct {
	backend       Backend
	identities    IdentitySource
	conversations ConversationSource
	log           *zap.Logger
	now           func() time.Time

	// serializes writers; store locks are never held while writing
	mu sync.Mutex
}

func NewGateway(backend Backend, ids IdentitySource, convs ConversationSource, log *zap.Logger) *Gateway {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gateway{backend: backend, identities: ids, conversations: convs, log: log, now: time.Now}
}

func (g *Gateway) read(ctx context.Context, name string, v any) (bool, error) {
	data, ok, err := g.backend.Read(ctx, name)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", name, err)
	}
	return true, nil
}

// Load replaces in-memory state with the stored documents. Missing
// documents leave the matching maps empty.
func (g *Gateway) Load(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	var users usersDoc
	if _, err := g.read(ctx, DocUsers, &users); err != nil {
		return err
	}
	var mems memoriesDoc
	if _, err := g.read(ctx, DocMemories, &mems); err != nil {
		return err
	}
	var convs conversationsDoc
	if _, err := g.read(ctx, DocConversations, &convs); err != nil {
		return err
	}

	migrated, err := g.identities.Import(identity.Snapshot{
		Logins:       users.UserLoginData,
		Accounts:     users.UserAccounts,
		Memories:     mems.UserMemories,
		Interactions: mems.UserInteractions,
	})
	if err != nil {
		return err
	}
	g.conversations.Import(convs.UserConversations)

	g.log.Info("state loaded",
		zap.Int("users", len(users.UserLoginData)),
		zap.Int("conversation_owners", len(convs.UserConversations)),
		zap.Int("passwords_migrated", migrated),
	)
	return nil
}

// Save rewrites all three documents. It stops at the first failing write.
func (g *Gateway) Save(ctx context.Context) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	snap := g.identities.Export()
	convs := g.conversations.Export()
	now := g.now()

	docs := []struct {
		name string
		body any
	}{
		{DocUsers, usersDoc{UserLoginData: snap.Logins, UserAccounts: snap.Accounts, Timestamp: now}},
		{DocConversations, conversationsDoc{UserConversations: convs, Timestamp: now}},
		{DocMemories, memoriesDoc{UserMemories: snap.Memories, UserInteractions: snap.Interactions, Timestamp: now}},
	}
	for _, d := range docs {
		data, err := json.MarshalIndent(d.body, "", "  ")
		if err != nil {
			return fmt.Errorf("encode %s: %w", d.name, err)
		}
		if err := g.backend.Write(ctx, d.name, data); err != nil {
			return fmt.Errorf("write %s: %w", d.name, err)
		}
	}
	return nil
}

// SaveOrLog saves and only logs failures; in-memory state stays authoritative.
func (g *Gateway) SaveOrLog(ctx context.Context) {
	if err := g.Save(ctx); err != nil {
		g.log.Error("persist state", zap.Error(err))
	}
}

// Run checkpoints on every tick until ctx is done.
func (g *Gateway) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.SaveOrLog(ctx)
		}
	}
}
