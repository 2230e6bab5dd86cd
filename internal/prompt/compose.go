// Package prompt assembles the single text prompt sent to the model.
package prompt

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/suPer8Hu/ai-companion/internal/conversation"
	"github.com/suPer8Hu/ai-companion/internal/heuristics"
	"github.com/suPer8Hu/ai-companion/internal/identity"
	"github.com/suPer8Hu/ai-companion/internal/persona"
)

const (
	recentResearch = 5
	topTopics      = 3
)

type Input struct {
	// Persona is the evolved prompt when one exists, else the static persona.
	Persona  string
	Identity identity.Identity
	Emotion  heuristics.Reading
	Trend    heuristics.Trend
	History  []conversation.Turn
	Language persona.Language
}

// PersonaPrompt lets an evolved personality replace the static table entry.
func PersonaPrompt(evolved *persona.Evolved, table *persona.Table, tag string, lang persona.Language) string {
	if evolved != nil {
		return evolved.Prompt
	}
	return table.Lookup(tag, lang).Prompt
}

func Compose(in Input) string {
	var b strings.Builder
	b.WriteString(in.Persona)
	b.WriteString(" ")
	writeUserFacts(&b, in.Identity)
	fmt.Fprintf(&b, "The user seems to be feeling %s (intensity: %.2f). Recent emotional trend: %s. Please respond appropriately to their emotional state. ",
		in.Emotion.Dominant, in.Emotion.Intensity, in.Trend.Trend)

	b.WriteString("Previous conversation:\n")
	for i, t := range in.History {
		if i > 0 {
			b.WriteString("\n")
		}
		if t.Role == conversation.RoleUser {
			b.WriteString("User: ")
		} else {
			b.WriteString("Assistant: ")
		}
		b.WriteString(t.Content)
	}
	b.WriteString("\n\n")
	b.WriteString(Instruction(in.Language))
	return b.String()
}

func writeUserFacts(b *strings.Builder, id identity.Identity) {
	if id.Account == nil {
		if id.Guest.Name != "" {
			fmt.Fprintf(b, "User's name is %s. ", id.Guest.Name)
		}
		return
	}

	fmt.Fprintf(b, "User's name is %s (username: %s). ", id.Account.Name, id.Account.Username)
	if m := id.Memory; m != nil {
		if len(m.Interests) > 0 {
			fmt.Fprintf(b, "User's interests include: %s. ", strings.Join(m.Interests, ", "))
		}
		if len(m.Research) > 0 {
			research := m.Research
			if len(research) > recentResearch {
				research = research[len(research)-recentResearch:]
			}
			fmt.Fprintf(b, "User has previously researched: %s. ", strings.Join(research, ", "))
		}
		if len(m.Preferences) > 0 {
			// json.Marshal sorts map keys, keeping the prompt stable
			if prefs, err := json.Marshal(m.Preferences); err == nil {
				fmt.Fprintf(b, "User preferences: %s. ", prefs)
			}
		}
	}
	if id.Interaction != nil {
		if top := id.Interaction.TopTopics(topTopics); len(top) > 0 {
			fmt.Fprintf(b, "User frequently discusses: %s. ", strings.Join(top, ", "))
		}
	}
}

// Instruction is the closing directive. It depends only on the language,
// never on the persona.
func Instruction(lang persona.Language) string {
	return "Please respond to the latest user message while considering the conversation history, user information, " +
		"their interests, research history, preferences, and their current emotional state. " +
		"It is essential and mandatory that you respond in " + lang.Directive() + " and absolutely never in any other language. " +
		"If the user language is Turkish, you must respond in Turkish. If the user language is English, you must respond in English. " +
		"Be empathetic and adapt your tone to match their emotions. " +
		"Use the user's name when appropriate and reference their interests or previous research when relevant."
}
