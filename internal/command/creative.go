package command

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/suPer8Hu/ai-companion/internal/persona"
)

type Kind string

const (
	KindStory      Kind = "story"
	KindBrainstorm Kind = "brainstorm"
	KindPoem       Kind = "poem"
	KindRiddle     Kind = "riddle"
)

const (
	defaultTheme = "adventure"
	defaultTopic = "innovation"
	defaultStyle = "free verse"
)

// Project is one of Story, Brainstorm, Poem or Riddle.
type Project interface {
	Kind() Kind
	Started() time.Time
}

type Story struct {
	Theme     string    `json:"theme"`
	Opening   string    `json:"opening"`
	StartedAt time.Time `json:"startedAt"`
}

type Brainstorm struct {
	Topic     string    `json:"topic"`
	Technique string    `json:"technique"`
	StartedAt time.Time `json:"startedAt"`
}

type Poem struct {
	Style     string    `json:"style"`
	StartedAt time.Time `json:"startedAt"`
}

type Riddle struct {
	Riddle    string    `json:"riddle"`
	StartedAt time.Time `json:"startedAt"`
}

func (Story) Kind() Kind      { return KindStory }
func (Brainstorm) Kind() Kind { return KindBrainstorm }
func (Poem) Kind() Kind       { return KindPoem }
func (Riddle) Kind() Kind     { return KindRiddle }

func (p Story) Started() time.Time      { return p.StartedAt }
func (p Brainstorm) Started() time.Time { return p.StartedAt }
func (p Poem) Started() time.Time       { return p.StartedAt }
func (p Riddle) Started() time.Time     { return p.StartedAt }

func (p Story) MarshalJSON() ([]byte, error) {
	type plain Story
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{p.Kind(), plain(p)})
}

func (p Brainstorm) MarshalJSON() ([]byte, error) {
	type plain Brainstorm
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{p.Kind(), plain(p)})
}

func (p Poem) MarshalJSON() ([]byte, error) {
	type plain Poem
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{p.Kind(), plain(p)})
}

func (p Riddle) MarshalJSON() ([]byte, error) {
	type plain Riddle
	return json.Marshal(struct {
		Type Kind `json:"type"`
		plain
	}{p.Kind(), plain(p)})
}

// Workspace is a session's creative state. A new creative command replaces
// the active project; earlier ones are not kept.
type Workspace struct {
	Active Project
}

func (w Workspace) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Active  Project   `json:"activeProject"`
		History []Project `json:"history"`
	}{w.Active, []Project{}})
}

// Workspaces holds every session's creative workspace.
type Workspaces struct {
	mu sync.RWMutex
	m  map[string]Workspace
}

func NewWorkspaces() *Workspaces {
	return &Workspaces{m: make(map[string]Workspace)}
}

func (w *Workspaces) Get(sessionID string) Workspace {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.m[sessionID]
}

func (w *Workspaces) SetActive(sessionID string, p Project) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.m[sessionID] = Workspace{Active: p}
}

//go:embed creative.yaml
var creativeYAML []byte

// Pools are the fixed prompt lists creative commands pick from.
type Pools struct {
	Story      map[persona.Language][]string `yaml:"story"`
	Brainstorm map[persona.Language][]string `yaml:"brainstorm"`
	Riddle     map[persona.Language][]string `yaml:"riddle"`
}

func LoadPools(doc []byte) (*Pools, error) {
	var p Pools
	if err := yaml.Unmarshal(doc, &p); err != nil {
		return nil, fmt.Errorf("parse creative pools: %w", err)
	}
	for name, pool := range map[string]map[persona.Language][]string{
		"story": p.Story, "brainstorm": p.Brainstorm, "riddle": p.Riddle,
	} {
		for _, lang := range []persona.Language{persona.Turkish, persona.English} {
			if len(pool[lang]) == 0 {
				return nil, fmt.Errorf("creative pools: %s/%s is empty", name, lang)
			}
		}
	}
	return &p, nil
}

func BuiltinPools() *Pools {
	p, err := LoadPools(creativeYAML)
	if err != nil {
		panic(err)
	}
	return p
}

func pick(pool []string, intn func(int) int) string {
	i := intn(len(pool))
	if i < 0 || i >= len(pool) {
		i = 0
	}
	return pool[i]
}
