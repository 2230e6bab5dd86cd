package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/suPer8Hu/ai-companion/internal/common"
)

// Media is an inline attachment sent alongside a prompt.
type Media struct {
	MIMEType string
	Data     []byte
}

type Request struct {
	Prompt      string
	Attachments []Media
}

// Provider produces a single text reply for a composed prompt.
type Provider interface {
	Generate(ctx context.Context, req Request) (string, error)
}

type ProviderFactory func(ctx context.Context, model string) (Provider, error)

type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]ProviderFactory)}
}

func (r *Registry) Register(name string, f ProviderFactory) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

func (r *Registry) Get(ctx context.Context, name string, model string) (Provider, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: unknown ai provider: %s", common.ErrConfiguration, name)
	}
	return f(ctx, model)
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for name := range r.factories {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// placeholderKeys are sample values shipped in env templates.
var placeholderKeys = map[string]bool{
	"your_gemini_api_key_here":     true,
	"your_openrouter_api_key_here": true,
	"your_anthropic_api_key_here":  true,
	"changeme":                     true,
}

func requireKey(provider, key string) error {
	key = strings.TrimSpace(key)
	if key == "" || placeholderKeys[strings.ToLower(key)] {
		return fmt.Errorf("%w: %s api key is missing", common.ErrConfiguration, provider)
	}
	return nil
}
