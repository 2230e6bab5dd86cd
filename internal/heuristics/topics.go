package heuristics

import (
	"regexp"
	"strings"
	"unicode"
)

type topicRule struct {
	topic    string
	keywords []string
}

// Topic labels are stored in Turkish; keywords cover both languages.
var topicRules = []topicRule{
	{"teknoloji", []string{"teknoloji", "technology", "bilgisayar", "computer", "yazılım", "software", "uygulama", "app"}},
	{"sanat", []string{"sanat", "art", "müzik", "music", "resim", "painting", "film", "movie"}},
	{"spor", []string{"spor", "sports", "futbol", "football", "basketbol", "basketball"}},
	{"yemek", []string{"yemek", "food", "tarif", "recipe", "mutfak", "kitchen"}},
	{"seyahat", []string{"seyahat", "travel", "tatil", "vacation", "gezi", "trip"}},
	{"eğitim", []string{"eğitim", "education", "öğrenme", "learning", "ders", "lesson"}},
	{"iş", []string{"iş", "work", "job", "kariyer", "career", "meslek", "profession"}},
	{"sağlık", []string{"sağlık", "health", "fitness", "egzersiz", "exercise"}},
}

// ExtractTopics returns the topic labels whose keywords appear as whole
// words in message, in table order and without duplicates.
func ExtractTopics(message string) []string {
	words := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(message)) {
		w = strings.TrimFunc(w, unicode.IsPunct)
		if w != "" {
			words[w] = struct{}{}
		}
	}

	var topics []string
	for _, rule := range topicRules {
		for _, kw := range rule.keywords {
			if _, ok := words[kw]; ok {
				topics = append(topics, rule.topic)
				break
			}
		}
	}
	return topics
}

var researchMarkers = []string{"araştır", "research", "öğren", "learn"}

// IsResearchRequest reports whether the user asked to look something up.
func IsResearchRequest(message string) bool {
	lower := strings.ToLower(message)
	for _, m := range researchMarkers {
		if strings.Contains(lower, m) {
			return true
		}
	}
	return false
}

var emojiRe = regexp.MustCompile(`[\x{1F600}-\x{1F64F}]|[\x{1F300}-\x{1F5FF}]|[\x{1F680}-\x{1F6FF}]`)

func HasEmoji(message string) bool {
	return emojiRe.MatchString(message)
}
