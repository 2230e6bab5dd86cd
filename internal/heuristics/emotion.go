// Package heuristics scores chat messages against fixed keyword and pattern
// tables: emotion classification, communication style and topic extraction.
package heuristics

import (
	"regexp"
	"strings"
	"time"
)

type Emotion string

const (
	Happy    Emotion = "happy"
	Sad      Emotion = "sad"
	Angry    Emotion = "angry"
	Excited  Emotion = "excited"
	Calm     Emotion = "calm"
	Confused Emotion = "confused"
	Neutral  Emotion = "neutral"
)

// Labels is the fixed iteration order. Ties resolve to the earlier label.
var Labels = []Emotion{Happy, Sad, Angry, Excited, Calm, Confused}

const (
	keywordWeight   = 0.3
	patternWeight   = 0.4
	neutralCeiling  = 0.2
	MaxEmotionScore = 1.0
)

type emotionRule struct {
	keywords []string
	patterns []*regexp.Regexp
}

var emotionRules = map[Emotion]emotionRule{
	Happy: {
		keywords: []string{"happy", "joy", "excited", "great", "awesome", "amazing", "fantastic", "wonderful", "perfect", "love", "mutlu", "harika", "müthiş", "süper", "güzel", "seviyorum"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`😊|😄|😁|🥳|❤️|💕|👍|✨`),
			regexp.MustCompile(`haha|lol|😂`),
			regexp.MustCompile(`!{2,}`),
			regexp.MustCompile(`(?i)yay|woohoo`),
		},
	},
	Sad: {
		keywords: []string{"sad", "depressed", "down", "upset", "crying", "terrible", "awful", "bad", "worst", "hate", "üzgün", "kötü", "berbat", "ağlıyorum", "mutsuz"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`😢|😭|💔|😔|😞`),
			regexp.MustCompile(`\.\.\.|…`),
			regexp.MustCompile(`(?i)why me|neden ben`),
		},
	},
	Angry: {
		keywords: []string{"angry", "mad", "furious", "annoyed", "frustrated", "irritated", "pissed", "rage", "kızgın", "sinirli", "öfkeli", "bıktım"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`😠|😡|🤬|💢`),
			regexp.MustCompile(`!{3,}`),
			// three shouted words in a row
			regexp.MustCompile(`\b[A-Z]{2,}\b\s+\b[A-Z]{2,}\b\s+\b[A-Z]{2,}\b`),
			regexp.MustCompile(`(?i)damn|hell`),
		},
	},
	Excited: {
		keywords: []string{"excited", "thrilled", "pumped", "energy", "energetic", "amazing", "incredible", "heyecanlı", "enerjik", "coşkulu"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`🚀|⚡|🔥|✨|🎉`),
			regexp.MustCompile(`!{2,}`),
			regexp.MustCompile(`(?i)can't wait|bekleyemiyorum`),
		},
	},
	Calm: {
		keywords: []string{"calm", "peaceful", "relaxed", "serene", "tranquil", "zen", "sakin", "huzurlu", "rahat"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`😌|🧘|☮️`),
			regexp.MustCompile(`\.\.`),
			regexp.MustCompile(`(?i)hmm|oh`),
		},
	},
	Confused: {
		keywords: []string{"confused", "lost", "what", "huh", "understand", "explain", "şaşkın", "anlamadım", "karışık"},
		patterns: []*regexp.Regexp{
			regexp.MustCompile(`🤔|😕|❓|❔`),
			regexp.MustCompile(`\?{2,}`),
			regexp.MustCompile(`(?i)what\?|ne\?`),
			regexp.MustCompile(`(?i)huh|hmm`),
		},
	},
}

// Reading is the emotion analysis of a single message.
type Reading struct {
	Emotions  map[Emotion]float64 `json:"emotions"`
	Dominant  Emotion             `json:"dominant"`
	Intensity float64             `json:"intensity"`
	Timestamp time.Time           `json:"timestamp"`
}

// DetectEmotion scores text against every label. Scores are additive and
// clamped to [0,1]; a best score at or below 0.2 reports Neutral while the
// score map keeps the raw values.
func DetectEmotion(text string, now time.Time) Reading {
	lower := strings.ToLower(text)
	scores := make(map[Emotion]float64, len(Labels))

	best := Labels[0]
	for _, label := range Labels {
		rule := emotionRules[label]
		score := 0.0
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				score += keywordWeight
			}
		}
		for _, re := range rule.patterns {
			if re.MatchString(text) {
				score += patternWeight
			}
		}
		if score > MaxEmotionScore {
			score = MaxEmotionScore
		}
		scores[label] = score
		if score > scores[best] {
			best = label
		}
	}

	dominant := best
	if scores[best] <= neutralCeiling {
		dominant = Neutral
	}
	return Reading{
		Emotions:  scores,
		Dominant:  dominant,
		Intensity: scores[best],
		Timestamp: now,
	}
}

// Trend summarizes the most recent readings of a session.
type Trend struct {
	Trend          Emotion   `json:"trend"`
	Stability      float64   `json:"stability"`
	RecentEmotions []Reading `json:"recentEmotions"`
}

const trendWindow = 5

var trendOrder = append(append([]Emotion(nil), Labels...), Neutral)

// TrendOf looks at the last five readings of history.
func TrendOf(history []Reading) Trend {
	if len(history) == 0 {
		return Trend{Trend: Neutral, Stability: 1.0, RecentEmotions: []Reading{}}
	}
	recent := history
	if len(recent) > trendWindow {
		recent = recent[len(recent)-trendWindow:]
	}

	counts := make(map[Emotion]int, len(trendOrder))
	for _, r := range recent {
		counts[r.Dominant]++
	}
	trend := Neutral
	bestCount := 0
	for _, e := range trendOrder {
		if counts[e] > bestCount {
			trend, bestCount = e, counts[e]
		}
	}

	return Trend{
		Trend:          trend,
		Stability:      float64(bestCount) / float64(len(recent)),
		RecentEmotions: append([]Reading(nil), recent...),
	}
}
