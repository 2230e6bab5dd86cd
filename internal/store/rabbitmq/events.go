package rabbitmq

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"
)

// TurnEvent is published once per completed chat turn.
type TurnEvent struct {
	SessionID string    `json:"sessionId"`
	UserID    string    `json:"userId,omitempty"`
	IsCommand bool      `json:"isCommand"`
	Emotion   string    `json:"emotion"`
	Intensity float64   `json:"intensity"`
	At        time.Time `json:"at"`
}

func DecodeTurnEvent(body []byte) (TurnEvent, error) {
	var ev TurnEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return TurnEvent{}, err
	}
	if ev.SessionID == "" {
		return TurnEvent{}, errors.New("turn event: missing sessionId")
	}
	return ev, nil
}

// Activity aggregates the events seen for one user, or one guest session.
type Activity struct {
	Key      string         `json:"key"`
	Turns    int            `json:"turns"`
	Commands int            `json:"commands"`
	Emotions map[string]int `json:"emotions"`
	LastSeen time.Time      `json:"lastSeen"`
}

// Tally is safe for concurrent use by the worker pool.
type Tally struct {
	mu   sync.Mutex
	byID map[string]*Activity
}

func NewTally() *Tally {
	return &Tally{byID: make(map[string]*Activity)}
}

func (t *Tally) Add(ev TurnEvent) {
	key := ev.UserID
	if key == "" {
		key = "guest:" + ev.SessionID
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	a, ok := t.byID[key]
	if !ok {
		a = &Activity{Key: key, Emotions: make(map[string]int)}
		t.byID[key] = a
	}
	a.Turns++
	if ev.IsCommand {
		a.Commands++
	}
	if ev.Emotion != "" {
		a.Emotions[ev.Emotion]++
	}
	if ev.At.After(a.LastSeen) {
		a.LastSeen = ev.At
	}
}

// Snapshot returns copies sorted by turn count, busiest first.
func (t *Tally) Snapshot() []Activity {
	t.mu.Lock()
	out := make([]Activity, 0, len(t.byID))
	for _, a := range t.byID {
		c := *a
		c.Emotions = make(map[string]int, len(a.Emotions))
		for k, v := range a.Emotions {
			c.Emotions[k] = v
		}
		out = append(out, c)
	}
	t.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Turns != out[j].Turns {
			return out[i].Turns > out[j].Turns
		}
		return out[i].Key < out[j].Key
	})
	return out
}
