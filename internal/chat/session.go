package chat

import (
	"sync"

	"github.com/suPer8Hu/ai-companion/internal/heuristics"
	"github.com/suPer8Hu/ai-companion/internal/persona"
)

// MaxEmotionHistory bounds the readings kept per session.
const MaxEmotionHistory = 20

// sessionState is the per-session data that only lives in memory.
// mu is held for the whole turn, so two requests on one session never interleave.
type sessionState struct {
	mu        sync.Mutex
	emotions  []heuristics.Reading
	pattern   heuristics.Pattern
	evolution persona.Evolution
}

func (st *sessionState) recordEmotion(r heuristics.Reading) heuristics.Trend {
	st.emotions = append(st.emotions, r)
	if n := len(st.emotions); n > MaxEmotionHistory {
		st.emotions = append([]heuristics.Reading(nil), st.emotions[n-MaxEmotionHistory:]...)
	}
	return heuristics.TrendOf(st.emotions)
}

type sessions struct {
	mu sync.Mutex
	m  map[string]*sessionState
}

func (s *sessions) get(sessionID string) *sessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string]*sessionState)
	}
	st, ok := s.m[sessionID]
	if !ok {
		st = &sessionState{}
		s.m[sessionID] = st
	}
	return st
}
