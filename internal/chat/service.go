package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/suPer8Hu/ai-companion/internal/ai"
	"github.com/suPer8Hu/ai-companion/internal/command"
	"github.com/suPer8Hu/ai-companion/internal/common"
	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/heuristics"
	"github.com/suPer8Hu/ai-companion/internal/identity"
	"github.com/suPer8Hu/ai-companion/internal/persona"
	"github.com/suPer8Hu/ai-companion/internal/prompt"
	"github.com/suPer8Hu/ai-companion/internal/store/rabbitmq"
)

const DefaultSessionID = "default"

// EventPublisher receives one event per finished turn.
type EventPublisher interface {
	PublishTurn(ctx context.Context, ev rabbitmq.TurnEvent) error
}

type Deps struct {
	Identities *identity.Store
	Archive    *conversation.Archive
	Buffers    *conversation.Buffers
	Commands   *command.Interpreter
	Personas   *persona.Table
	Registry   *ai.Registry
	Provider   string
	Model      string
	Events     EventPublisher
	Log        *zap.Logger
}

type Service struct {
	identities *identity.Store
	archive    *conversation.Archive
	buffers    *conversation.Buffers
	commands   *command.Interpreter
	personas   *persona.Table
	registry   *ai.Registry
	provider   string
	model      string
	events     EventPublisher
	log        *zap.Logger

	sessions sessions

	providerMu sync.Mutex
	cached     ai.Provider

	now func() time.Time
}

func NewService(d Deps) *Service {
	if d.Events == nil {
		d.Events = rabbitmq.Noop{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Personas == nil {
		d.Personas = persona.Builtin()
	}
	return &Service{
		identities: d.Identities,
		archive:    d.Archive,
		buffers:    d.Buffers,
		commands:   d.Commands,
		personas:   d.Personas,
		registry:   d.Registry,
		provider:   d.Provider,
		model:      d.Model,
		events:     d.Events,
		log:        d.Log,
		now:        time.Now,
	}
}

func orDefaultSession(sessionID string) string {
	if strings.TrimSpace(sessionID) == "" {
		return DefaultSessionID
	}
	return sessionID
}

// providerFor builds the configured provider once and reuses it. A failed
// build is retried on the next call.
func (s *Service) providerFor(ctx context.Context) (ai.Provider, error) {
	s.providerMu.Lock()
	defer s.providerMu.Unlock()
	if s.cached != nil {
		return s.cached, nil
	}
	p, err := s.registry.Get(ctx, s.provider, s.model)
	if err != nil {
		return nil, err
	}
	s.cached = p
	return p, nil
}

func (s *Service) generate(ctx context.Context, req ai.Request) (string, error) {
	p, err := s.providerFor(ctx)
	if err != nil {
		if errors.Is(err, common.ErrConfiguration) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	reply, err := p.Generate(ctx, req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrUpstream, err)
	}
	if strings.TrimSpace(reply) == "" {
		return "", fmt.Errorf("%w: empty reply from %s", common.ErrUpstream, s.provider)
	}
	return reply, nil
}

type TurnInput struct {
	SessionID      string
	ConversationID string
	Message        string
}

type UserInfo struct {
	Name          string `json:"name"`
	TotalMessages int    `json:"totalMessages"`
}

type TurnResult struct {
	Reply        string
	SessionID    string
	IsCommand    bool
	Emotion      heuristics.Reading
	EmotionTrend heuristics.Trend
	// UserInfo is nil for guests and for command turns.
	UserInfo *UserInfo
}

// Send runs one chat turn: commands are answered locally, everything else
// goes to the model with the composed prompt.
func (s *Service) Send(ctx context.Context, in TurnInput) (*TurnResult, error) {
	if strings.TrimSpace(in.Message) == "" {
		return nil, fmt.Errorf("%w: message is empty", common.ErrValidation)
	}
	sessionID := orDefaultSession(in.SessionID)
	message := in.Message

	st := s.sessions.get(sessionID)
	st.mu.Lock()
	defer st.mu.Unlock()

	userID, err := s.identities.UserID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if userID != "" {
		if err := s.identities.RecordInteraction(userID, message); err != nil {
			s.log.Warn("record interaction failed", zap.String("user_id", userID), zap.Error(err))
		}
	}

	reading := heuristics.DetectEmotion(message, s.now())
	trend := st.recordEmotion(reading)

	if command.IsCommand(message) {
		reply, err := s.commands.Execute(ctx, sessionID, message)
		if err != nil {
			return nil, err
		}
		s.publish(ctx, sessionID, userID, true, reading)
		return &TurnResult{
			Reply:        reply,
			SessionID:    sessionID,
			IsCommand:    true,
			Emotion:      reading,
			EmotionTrend: trend,
		}, nil
	}

	convID := in.ConversationID
	s.buffers.Append(sessionID, conversation.Turn{Role: conversation.RoleUser, Content: message})
	if userID != "" {
		s.archive.AppendTurn(userID, convID, conversation.RoleUser, message)
	}

	id, err := s.identities.Resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	lang := id.Language()

	evolved := st.evolution.Evolve(st.pattern, s.now())
	if evolved != nil {
		s.log.Debug("personality evolved",
			zap.String("session_id", sessionID),
			zap.Int("evolution", evolved.EvolutionCount),
			zap.Float64("formality", evolved.Traits.Formality),
			zap.Float64("casualness", evolved.Traits.Casualness),
		)
	}

	text := prompt.Compose(prompt.Input{
		Persona:  prompt.PersonaPrompt(evolved, s.personas, id.Personality(), lang),
		Identity: id,
		Emotion:  reading,
		Trend:    trend,
		History:  s.buffers.History(sessionID),
		Language: lang,
	})

	reply, err := s.generate(ctx, ai.Request{Prompt: text})
	if err != nil {
		return nil, err
	}

	s.buffers.Append(sessionID, conversation.Turn{Role: conversation.RoleAssistant, Content: reply})
	if userID != "" {
		s.archive.AppendTurn(userID, convID, conversation.RoleAssistant, reply)
	}
	st.pattern.Observe(message, reply)

	if userID != "" && heuristics.IsResearchRequest(message) {
		if topics := heuristics.ExtractTopics(message + " " + reply); len(topics) > 0 {
			if err := s.identities.AddResearch(userID, topics...); err != nil {
				s.log.Warn("store research failed", zap.String("user_id", userID), zap.Error(err))
			}
		}
	}

	s.publish(ctx, sessionID, userID, false, reading)

	res := &TurnResult{
		Reply:        reply,
		SessionID:    sessionID,
		Emotion:      reading,
		EmotionTrend: trend,
	}
	if id.Account != nil {
		info := &UserInfo{Name: id.Account.Name}
		if id.Interaction != nil {
			info.TotalMessages = id.Interaction.TotalMessages
		}
		res.UserInfo = info
	}
	return res, nil
}

func (s *Service) publish(ctx context.Context, sessionID, userID string, isCommand bool, r heuristics.Reading) {
	ev := rabbitmq.TurnEvent{
		SessionID: sessionID,
		UserID:    userID,
		IsCommand: isCommand,
		Emotion:   string(r.Dominant),
		Intensity: r.Intensity,
		At:        r.Timestamp,
	}
	if err := s.events.PublishTurn(ctx, ev); err != nil {
		s.log.Warn("publish turn event failed", zap.String("session_id", sessionID), zap.Error(err))
	}
}
