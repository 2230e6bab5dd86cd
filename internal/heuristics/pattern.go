package heuristics

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MaxLengthSamples bounds the reply-length sample kept per session.
const MaxLengthSamples = 10

var (
	formalRe    = regexp.MustCompile(`(?i)please|thank you|could you|would you|excuse me`)
	casualRe    = regexp.MustCompile(`(?i)hey|yo|sup|lol|haha|wow|cool`)
	humorRe     = regexp.MustCompile(`(?i)haha|lol|😂|😄|joke|funny`)
	technicalRe = regexp.MustCompile(`(?i)code|programming|algorithm|function|database|api|software`)
	emotionalRe = regexp.MustCompile(`(?i)feel|emotion|sad|happy|excited|worried|love|hate`)

	questionWordRe = regexp.MustCompile(`(?i)how|what|why|when|where`)
	personalRe     = regexp.MustCompile(`(?i)i am|i'm|my|me|personally|i think|i feel`)
	solutionRe     = regexp.MustCompile(`(?i)help|solve|fix|solution|problem`)
	explainRe      = regexp.MustCompile(`(?i)explain|understand|learn|teach|show me`)
)

type StyleCounts struct {
	Formal    int `json:"formal"`
	Casual    int `json:"casual"`
	Humorous  int `json:"humorous"`
	Technical int `json:"technical"`
	Emotional int `json:"emotional"`
}

type LearningCounts struct {
	AsksQuestions     int `json:"asksQuestions"`
	SharesPersonal    int `json:"sharesPersonal"`
	SeeksSolutions    int `json:"seeksSolutions"`
	WantsExplanations int `json:"wantsExplanations"`
}

// Pattern accumulates communication-style signals for one session.
// The zero value is ready to use.
type Pattern struct {
	MessageCount            int            `json:"messageCount"`
	CommunicationStyle      StyleCounts    `json:"communicationStyle"`
	LearningPatterns        LearningCounts `json:"learningPatterns"`
	PreferredResponseLength []int          `json:"preferredResponseLength"`
}

// Observe folds one exchange into the counters.
func (p *Pattern) Observe(userMessage, botResponse string) {
	p.MessageCount++

	if formalRe.MatchString(userMessage) {
		p.CommunicationStyle.Formal++
	}
	if casualRe.MatchString(userMessage) {
		p.CommunicationStyle.Casual++
	}
	if humorRe.MatchString(userMessage) {
		p.CommunicationStyle.Humorous++
	}
	if technicalRe.MatchString(userMessage) {
		p.CommunicationStyle.Technical++
	}
	if emotionalRe.MatchString(userMessage) {
		p.CommunicationStyle.Emotional++
	}

	if strings.Contains(userMessage, "?") || questionWordRe.MatchString(userMessage) {
		p.LearningPatterns.AsksQuestions++
	}
	if personalRe.MatchString(userMessage) {
		p.LearningPatterns.SharesPersonal++
	}
	if solutionRe.MatchString(userMessage) {
		p.LearningPatterns.SeeksSolutions++
	}
	if explainRe.MatchString(userMessage) {
		p.LearningPatterns.WantsExplanations++
	}

	p.PreferredResponseLength = append(p.PreferredResponseLength, utf8.RuneCountInString(botResponse))
	if n := len(p.PreferredResponseLength); n > MaxLengthSamples {
		p.PreferredResponseLength = append([]int(nil), p.PreferredResponseLength[n-MaxLengthSamples:]...)
	}
}

// AverageResponseLength reports false when no reply has been observed yet.
func (p *Pattern) AverageResponseLength() (float64, bool) {
	if len(p.PreferredResponseLength) == 0 {
		return 0, false
	}
	sum := 0
	for _, n := range p.PreferredResponseLength {
		sum += n
	}
	return float64(sum) / float64(len(p.PreferredResponseLength)), true
}

// Clone returns a deep copy safe to hand to readers.
func (p *Pattern) Clone() Pattern {
	out := *p
	out.PreferredResponseLength = append([]int(nil), p.PreferredResponseLength...)
	return out
}
