package heuristics

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestPatternObserve_Counters(t *testing.T) {
	var p Pattern
	// "you" also trips the casual "yo" marker.
	p.Observe("Could you please explain how this algorithm works?", "sure")
	p.Observe("hey lol that's funny", "haha")

	want := Pattern{
		MessageCount: 2,
		CommunicationStyle: StyleCounts{
			Formal:    1,
			Casual:    2,
			Humorous:  1,
			Technical: 1,
		},
		LearningPatterns: LearningCounts{
			AsksQuestions:     1,
			WantsExplanations: 1,
		},
		PreferredResponseLength: []int{4, 4},
	}
	if diff := cmp.Diff(want, p); diff != "" {
		t.Fatalf("pattern mismatch (-want +got):\n%s", diff)
	}
}

func TestPatternObserve_LengthSampleCapped(t *testing.T) {
	var p Pattern
	for i := 1; i <= 25; i++ {
		p.Observe("x", strings.Repeat("a", i))
		if len(p.PreferredResponseLength) > MaxLengthSamples {
			t.Fatalf("sample grew to %d", len(p.PreferredResponseLength))
		}
	}
	if p.PreferredResponseLength[0] != 16 || p.PreferredResponseLength[9] != 25 {
		t.Fatalf("expected oldest entries dropped, got %v", p.PreferredResponseLength)
	}
	avg, ok := p.AverageResponseLength()
	if !ok || avg != 20.5 {
		t.Fatalf("unexpected average %v (ok=%v)", avg, ok)
	}
}

func TestPatternAverage_EmptySample(t *testing.T) {
	var p Pattern
	if _, ok := p.AverageResponseLength(); ok {
		t.Fatalf("expected no average for empty sample")
	}
}

func TestPatternClone_Independent(t *testing.T) {
	var p Pattern
	p.Observe("hi", "hello")
	c := p.Clone()
	c.PreferredResponseLength[0] = 99
	if p.PreferredResponseLength[0] == 99 {
		t.Fatalf("clone shares backing array")
	}
}
