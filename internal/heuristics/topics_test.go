package heuristics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTopics(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"none", "merhaba nasılsın", nil},
		{"single", "I love football", []string{"spor"}},
		{"dedup within topic", "music and art, art!", []string{"sanat"}},
		{"table order", "my job is about software", []string{"teknoloji", "iş"}},
		{"whole words only", "apple artistic", nil},
		{"turkish", "Yarın seyahat planı ve yemek tarifi", []string{"yemek", "seyahat"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractTopics(tc.in))
		})
	}
}

func TestIsResearchRequest(t *testing.T) {
	assert.True(t, IsResearchRequest("Bunu araştırır mısın?"))
	assert.True(t, IsResearchRequest("I want to LEARN about travel"))
	assert.False(t, IsResearchRequest("just chatting"))
}

func TestHasEmoji(t *testing.T) {
	assert.True(t, HasEmoji("nice 😀"))
	assert.True(t, HasEmoji("launch 🚀"))
	assert.False(t, HasEmoji("plain text"))
}
