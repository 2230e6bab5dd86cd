package persona

import (
	"strings"
	"time"

	"github.com/suPer8Hu/ai-companion/internal/heuristics"
)

// MinMessagesForEvolution is the observed message count that unlocks the
// adaptive personality.
const MinMessagesForEvolution = 5

type Traits struct {
	Formality        float64 `json:"formality"`
	Casualness       float64 `json:"casualness"`
	Humor            float64 `json:"humor"`
	Technicality     float64 `json:"technicality"`
	Emotionality     float64 `json:"emotionality"`
	Curiosity        float64 `json:"curiosity"`
	Openness         float64 `json:"openness"`
	ProblemSolving   float64 `json:"problemSolving"`
	LearningOriented float64 `json:"learningOriented"`
}

// TraitsOf divides every counter by the message count.
func TraitsOf(p heuristics.Pattern) Traits {
	if p.MessageCount == 0 {
		return Traits{}
	}
	n := float64(p.MessageCount)
	s, l := p.CommunicationStyle, p.LearningPatterns
	return Traits{
		Formality:        float64(s.Formal) / n,
		Casualness:       float64(s.Casual) / n,
		Humor:            float64(s.Humorous) / n,
		Technicality:     float64(s.Technical) / n,
		Emotionality:     float64(s.Emotional) / n,
		Curiosity:        float64(l.AsksQuestions) / n,
		Openness:         float64(l.SharesPersonal) / n,
		ProblemSolving:   float64(l.SeeksSolutions) / n,
		LearningOriented: float64(l.WantsExplanations) / n,
	}
}

type Snapshot struct {
	Timestamp    time.Time `json:"timestamp"`
	Traits       Traits    `json:"traits"`
	Prompt       string    `json:"prompt"`
	MessageCount int       `json:"messageCount"`
}

// Evolution is the per-session log of adaptive prompts.
type Evolution struct {
	Evolutions    []Snapshot `json:"evolutions"`
	CurrentTraits *Traits    `json:"currentTraits"`
}

type Evolved struct {
	Prompt         string `json:"prompt"`
	Traits         Traits `json:"traits"`
	EvolutionCount int    `json:"evolution"`
}

// Evolve derives a prompt from p once enough messages were observed and
// appends it to the log. It returns nil below the threshold.
func (e *Evolution) Evolve(p heuristics.Pattern, now time.Time) *Evolved {
	if p.MessageCount < MinMessagesForEvolution {
		return nil
	}
	traits := TraitsOf(p)
	prompt := BuildPrompt(traits, p)

	e.Evolutions = append(e.Evolutions, Snapshot{
		Timestamp:    now,
		Traits:       traits,
		Prompt:       prompt,
		MessageCount: p.MessageCount,
	})
	current := traits
	e.CurrentTraits = &current

	return &Evolved{Prompt: prompt, Traits: traits, EvolutionCount: len(e.Evolutions)}
}

// Clone returns a copy that shares nothing with e.
func (e *Evolution) Clone() Evolution {
	out := Evolution{Evolutions: append([]Snapshot(nil), e.Evolutions...)}
	if e.CurrentTraits != nil {
		t := *e.CurrentTraits
		out.CurrentTraits = &t
	}
	return out
}

const (
	conciseBelow       = 100
	comprehensiveAbove = 300
)

// BuildPrompt concatenates the clauses whose trait crosses its threshold.
func BuildPrompt(t Traits, p heuristics.Pattern) string {
	var b strings.Builder
	b.WriteString("You are an AI assistant that adapts to the user's communication style. ")

	if t.Formality > 0.3 {
		b.WriteString("Be professional and formal in your responses. ")
	} else if t.Casualness > 0.3 {
		b.WriteString("Use a casual, friendly tone and informal language. ")
	}
	if t.Humor > 0.2 {
		b.WriteString("Include appropriate humor and jokes in your responses. ")
	}
	if t.Technicality > 0.3 {
		b.WriteString("Provide technical details and use precise terminology. ")
	}
	if t.Emotionality > 0.3 {
		b.WriteString("Be emotionally supportive and empathetic. ")
	}
	if t.Curiosity > 0.4 {
		b.WriteString("Ask follow-up questions to encourage deeper discussion. ")
	}
	if t.LearningOriented > 0.3 {
		b.WriteString("Provide detailed explanations and educational content. ")
	}
	if t.ProblemSolving > 0.3 {
		b.WriteString("Focus on practical solutions and actionable advice. ")
	}

	if avg, ok := p.AverageResponseLength(); ok {
		switch {
		case avg < conciseBelow:
			b.WriteString("Keep your responses concise and to the point. ")
		case avg > comprehensiveAbove:
			b.WriteString("Provide comprehensive and detailed responses. ")
		}
	}
	return b.String()
}
