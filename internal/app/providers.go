package app

import (
	"context"
	"strings"

	"github.com/suPer8Hu/ai-companion/internal/ai"
	"github.com/suPer8Hu/ai-companion/internal/config"
)

// Registry registers every supported provider. The model argument overrides
// the configured default when set.
func Registry(cfg config.Config) *ai.Registry {
	reg := ai.NewRegistry()
	pick := func(model, def string) string {
		if m := strings.TrimSpace(model); m != "" {
			return m
		}
		return def
	}

	reg.Register("gemini", func(ctx context.Context, model string) (ai.Provider, error) {
		return ai.NewGeminiProvider(ctx, cfg.GeminiAPIKey, pick(model, cfg.GeminiModel), "")
	})
	reg.Register("ollama", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewOllamaProvider(cfg.OllamaBaseURL, pick(model, cfg.OllamaModel)), nil
	})
	reg.Register("openrouter", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewOpenRouterProvider(cfg.OpenRouterBaseURL, cfg.OpenRouterAPIKey, pick(model, cfg.OpenRouterModel),
			cfg.OpenRouterSiteURL, cfg.OpenRouterAppName)
	})
	reg.Register("claude", func(_ context.Context, model string) (ai.Provider, error) {
		return ai.NewClaudeProvider(cfg.AnthropicAPIKey, pick(model, cfg.AnthropicModel), "")
	})
	return reg
}
