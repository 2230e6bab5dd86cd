package chat

import (
	"context"

	"github.com/suPer8Hu/ai-companion/internal/command"
	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/heuristics"
	"github.com/suPer8Hu/ai-companion/internal/persona"
)

type EmotionsView struct {
	Emotions []heuristics.Reading `json:"emotions"`
	Trend    heuristics.Trend     `json:"trend"`
}

func (s *Service) Emotions(sessionID string) EmotionsView {
	st := s.sessions.get(orDefaultSession(sessionID))
	st.mu.Lock()
	defer st.mu.Unlock()
	out := append([]heuristics.Reading{}, st.emotions...)
	return EmotionsView{Emotions: out, Trend: heuristics.TrendOf(out)}
}

type EvolutionView struct {
	Evolution persona.Evolution  `json:"evolution"`
	Patterns  heuristics.Pattern `json:"patterns"`
}

func (s *Service) Evolution(sessionID string) EvolutionView {
	st := s.sessions.get(orDefaultSession(sessionID))
	st.mu.Lock()
	defer st.mu.Unlock()
	view := EvolutionView{Evolution: st.evolution.Clone(), Patterns: st.pattern.Clone()}
	if view.Evolution.Evolutions == nil {
		view.Evolution.Evolutions = []persona.Snapshot{}
	}
	if view.Patterns.PreferredResponseLength == nil {
		view.Patterns.PreferredResponseLength = []int{}
	}
	return view
}

func (s *Service) Creative(sessionID string) command.Workspace {
	return s.commands.Workspace(orDefaultSession(sessionID))
}

func (s *Service) History(sessionID string) []conversation.Turn {
	return s.buffers.History(orDefaultSession(sessionID))
}

func (s *Service) Clear(sessionID string) string {
	sessionID = orDefaultSession(sessionID)
	s.buffers.Clear(sessionID)
	return sessionID
}

// requireUser maps a guest session to ErrUnauthenticated.
func (s *Service) requireUser(ctx context.Context, sessionID string) (string, error) {
	userID, err := s.identities.UserID(ctx, sessionID)
	if err != nil {
		return "", err
	}
	if userID == "" {
		return "", common.ErrUnauthenticated
	}
	return userID, nil
}

func (s *Service) Conversations(ctx context.Context, sessionID string) ([]conversation.Summary, error) {
	userID, err := s.requireUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.archive.List(userID), nil
}

func (s *Service) Conversation(ctx context.Context, sessionID, conversationID string) (conversation.Conversation, error) {
	userID, err := s.requireUser(ctx, sessionID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	return s.archive.Get(userID, conversationID)
}

func (s *Service) NewConversation(ctx context.Context, sessionID string) (conversation.Conversation, error) {
	userID, err := s.requireUser(ctx, sessionID)
	if err != nil {
		return conversation.Conversation{}, err
	}
	return s.archive.Create(userID), nil
}

func (s *Service) DeleteConversation(ctx context.Context, sessionID, conversationID string) error {
	userID, err := s.requireUser(ctx, sessionID)
	if err != nil {
		return err
	}
	return s.archive.Delete(userID, conversationID)
}
