package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/liushuangls/go-anthropic/v2"
)

const defaultClaudeModel = "claude-3-5-haiku-latest"

// ClaudeProvider ignores attachments.
type ClaudeProvider struct {
	client    *anthropic.Client
	model     string
	maxTokens int
}

func NewClaudeProvider(apiKey, model, baseURL string) (*ClaudeProvider, error) {
	if err := requireKey("anthropic", apiKey); err != nil {
		return nil, err
	}
	if strings.TrimSpace(model) == "" {
		model = defaultClaudeModel
	}
	var opts []anthropic.ClientOption
	if baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(baseURL))
	}
	return &ClaudeProvider{
		client:    anthropic.NewClient(apiKey, opts...),
		model:     strings.TrimSpace(model),
		maxTokens: 2048,
	}, nil
}

func (c *ClaudeProvider) Generate(ctx context.Context, r Request) (string, error) {
	resp, err := c.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model: anthropic.Model(c.model),
		Messages: []anthropic.Message{{
			Role:    anthropic.RoleUser,
			Content: []anthropic.MessageContent{anthropic.NewTextMessageContent(r.Prompt)},
		}},
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("claude: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == anthropic.MessagesContentTypeText {
			sb.WriteString(block.GetText())
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("claude: empty response")
	}
	return sb.String(), nil
}
