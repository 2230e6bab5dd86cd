package ai

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

type OpenRouterProvider struct {
	Model  string
	client *openai.Client
}

// attributionTransport adds the optional ranking headers OpenRouter reads.
type attributionTransport struct {
	base    http.RoundTripper
	siteURL string
	appName string
}

func (t attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	if t.siteURL != "" {
		req.Header.Set("HTTP-Referer", t.siteURL)
	}
	if t.appName != "" {
		req.Header.Set("X-Title", t.appName)
	}
	return t.base.RoundTrip(req)
}

func NewOpenRouterProvider(baseURL, apiKey, model, siteURL, appName string) (*OpenRouterProvider, error) {
	if err := requireKey("openrouter", apiKey); err != nil {
		return nil, err
	}
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("openrouter: model is required")
	}
	if baseURL == "" {
		baseURL = defaultOpenRouterURL
	}

	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(baseURL, "/")
	cfg.HTTPClient = &http.Client{
		Timeout: 90 * time.Second,
		Transport: attributionTransport{
			base:    http.DefaultTransport,
			siteURL: siteURL,
			appName: appName,
		},
	}
	return &OpenRouterProvider{Model: model, client: openai.NewClientWithConfig(cfg)}, nil
}

func (p *OpenRouterProvider) Generate(ctx context.Context, r Request) (string, error) {
	msg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(r.Attachments) == 0 {
		msg.Content = r.Prompt
	} else {
		msg.MultiContent = []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: r.Prompt}}
		for _, m := range r.Attachments {
			msg.MultiContent = append(msg.MultiContent, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:%s;base64,%s", m.MIMEType, base64.StdEncoding.EncodeToString(m.Data)),
				},
			})
		}
	}

	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    p.Model,
		Messages: []openai.ChatCompletionMessage{msg},
	})
	if err != nil {
		return "", fmt.Errorf("openrouter: %w", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", errors.New("openrouter: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}
