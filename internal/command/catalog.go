package command

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"

	"github.com/suPer8Hu/ai-companion/internal/persona"
)

//go:embed messages.yaml
var messagesYAML []byte

// Catalog renders localized replies.
type Catalog struct {
	templates map[persona.Language]map[string]*template.Template
}

// LoadCatalog parses a language -> key -> template document. Both
// languages must define the same keys.
func LoadCatalog(doc []byte) (*Catalog, error) {
	raw := map[persona.Language]map[string]string{}
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, fmt.Errorf("parse messages: %w", err)
	}
	c := &Catalog{templates: make(map[persona.Language]map[string]*template.Template)}
	for _, lang := range []persona.Language{persona.Turkish, persona.English} {
		entries, ok := raw[lang]
		if !ok {
			return nil, fmt.Errorf("messages: missing language %q", lang)
		}
		c.templates[lang] = make(map[string]*template.Template, len(entries))
		for key, text := range entries {
			tpl, err := template.New(string(lang) + "." + key).Option("missingkey=error").Parse(text)
			if err != nil {
				return nil, fmt.Errorf("messages %s.%s: %w", lang, key, err)
			}
			c.templates[lang][key] = tpl
		}
	}
	for key := range c.templates[persona.Turkish] {
		if _, ok := c.templates[persona.English][key]; !ok {
			return nil, fmt.Errorf("messages: %q has no English text", key)
		}
	}
	return c, nil
}

func BuiltinCatalog() *Catalog {
	c, err := LoadCatalog(messagesYAML)
	if err != nil {
		panic(err)
	}
	return c
}

// Render falls back to the key itself when the template is missing or fails,
// so a broken entry shows up in the reply instead of failing the turn.
func (c *Catalog) Render(lang persona.Language, key string, data any) string {
	tpl, ok := c.templates[lang.OrDefault()][key]
	if !ok {
		return key
	}
	var b strings.Builder
	if err := tpl.Execute(&b, data); err != nil {
		return key
	}
	return b.String()
}
