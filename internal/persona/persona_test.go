package persona

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suPer8Hu/ai-companion/internal/heuristics"
)

func TestBuiltinTable_AllPersonasBothLanguages(t *testing.T) {
	table := Builtin()
	for _, tag := range Tags {
		require.True(t, table.Known(tag), tag)
		for _, lang := range []Language{Turkish, English} {
			e := table.Lookup(tag, lang)
			assert.NotEmpty(t, e.Name, "%s/%s", tag, lang)
			assert.NotEmpty(t, e.Prompt, "%s/%s", tag, lang)
		}
	}
}

func TestLookup_UnknownFallsBackToFriend(t *testing.T) {
	table := Builtin()
	assert.Equal(t, table.Lookup("friend", English), table.Lookup("pirate", English))
	assert.Equal(t, "Arkadaş 😄", table.Lookup("nope", "").Name)
}

func TestLoadTable_RequiresDefault(t *testing.T) {
	_, err := LoadTable([]byte("teacher:\n  tr: {name: a, prompt: b}\n  en: {name: a, prompt: b}\n"))
	require.Error(t, err)
}

func TestParseLanguage(t *testing.T) {
	l, ok := ParseLanguage(" EN ")
	assert.True(t, ok)
	assert.Equal(t, English, l)

	_, ok = ParseLanguage("de")
	assert.False(t, ok)
	assert.Equal(t, Turkish, Language("de").OrDefault())
}

func casualPattern(n int) heuristics.Pattern {
	var p heuristics.Pattern
	for i := 0; i < n; i++ {
		p.Observe("hey lol", "short reply")
	}
	return p
}

func TestEvolve_BelowThresholdIsNil(t *testing.T) {
	var e Evolution
	for n := 1; n < MinMessagesForEvolution; n++ {
		if got := e.Evolve(casualPattern(n), time.Now()); got != nil {
			t.Fatalf("expected nil at %d messages", n)
		}
	}
	assert.Empty(t, e.Evolutions)
	assert.Nil(t, e.CurrentTraits)
}

func TestEvolve_CasualUser(t *testing.T) {
	var e Evolution
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	got := e.Evolve(casualPattern(5), now)
	require.NotNil(t, got)
	assert.Greater(t, got.Traits.Casualness, 0.0)
	assert.Equal(t, 1, got.EvolutionCount)
	assert.Contains(t, got.Prompt, "Use a casual, friendly tone and informal language.")
	assert.Contains(t, got.Prompt, "Include appropriate humor")
	assert.Contains(t, got.Prompt, "Keep your responses concise")

	require.Len(t, e.Evolutions, 1)
	assert.Equal(t, now, e.Evolutions[0].Timestamp)
	assert.Equal(t, 5, e.Evolutions[0].MessageCount)
	require.NotNil(t, e.CurrentTraits)
	assert.Equal(t, got.Traits, *e.CurrentTraits)

	again := e.Evolve(casualPattern(6), now)
	require.NotNil(t, again)
	assert.Equal(t, 2, again.EvolutionCount)
}

func TestBuildPrompt_FormalWinsOverCasual(t *testing.T) {
	prompt := BuildPrompt(Traits{Formality: 0.5, Casualness: 0.9}, heuristics.Pattern{})
	assert.Contains(t, prompt, "Be professional and formal")
	assert.NotContains(t, prompt, "casual")
}

func TestBuildPrompt_VerbosityClause(t *testing.T) {
	long := heuristics.Pattern{PreferredResponseLength: []int{400, 500}}
	mid := heuristics.Pattern{PreferredResponseLength: []int{200}}

	assert.Contains(t, BuildPrompt(Traits{}, long), "comprehensive and detailed")
	midPrompt := BuildPrompt(Traits{}, mid)
	assert.NotContains(t, midPrompt, "concise")
	assert.NotContains(t, midPrompt, "comprehensive")
	assert.True(t, strings.HasPrefix(midPrompt, "You are an AI assistant that adapts"))

	// no replies observed yet: no verbosity clause either way
	assert.Equal(t, "You are an AI assistant that adapts to the user's communication style. ",
		BuildPrompt(Traits{}, heuristics.Pattern{}))
}
