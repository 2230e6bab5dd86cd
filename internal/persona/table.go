// Package persona holds the static persona table and the adaptive
// personality derived from a session's communication pattern.
package persona

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

const DefaultTag = "friend"

// Tags in display order.
var Tags = []string{"friend", "teacher", "assistant", "professional", "formal", "distant"}

type Entry struct {
	Name   string `yaml:"name"`
	Prompt string `yaml:"prompt"`
}

//go:embed personas.yaml
var personasYAML []byte

// Table maps persona tag -> language -> entry.
type Table struct {
	entries map[string]map[Language]Entry
}

// LoadTable parses a persona document. Every tag needs both languages and
// the default persona must be present.
func LoadTable(doc []byte) (*Table, error) {
	raw := map[string]map[Language]Entry{}
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse personas: %w", err)
	}
	if _, ok := raw[DefaultTag]; !ok {
		return nil, fmt.Errorf("personas: missing %q", DefaultTag)
	}
	for tag, langs := range raw {
		for _, lang := range []Language{Turkish, English} {
			if langs[lang].Prompt == "" {
				return nil, fmt.Errorf("personas: %s/%s has no prompt", tag, lang)
			}
		}
	}
	return &Table{entries: raw}, nil
}

// Builtin returns the embedded persona table.
func Builtin() *Table {
	t, err := LoadTable(personasYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup falls back to the friend persona when tag is unknown.
func (t *Table) Lookup(tag string, lang Language) Entry {
	lang = lang.OrDefault()
	if langs, ok := t.entries[strings.ToLower(tag)]; ok {
		return langs[lang]
	}
	return t.entries[DefaultTag][lang]
}

func (t *Table) Known(tag string) bool {
	_, ok := t.entries[strings.ToLower(tag)]
	return ok
}
