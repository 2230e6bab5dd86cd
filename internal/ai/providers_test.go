package ai

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pixel = Media{MIMEType: "image/png", Data: []byte{0x89, 'P', 'N', 'G'}}

func TestOllamaProvider_Generate(t *testing.T) {
	var got ollamaChatReq
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"merhaba"}}`))
	}))
	defer srv.Close()

	p := NewOllamaProvider(srv.URL, "llava")
	out, err := p.Generate(context.Background(), Request{Prompt: "describe", Attachments: []Media{pixel}})
	require.NoError(t, err)
	assert.Equal(t, "merhaba", out)

	require.Len(t, got.Messages, 1)
	assert.False(t, got.Stream)
	assert.Equal(t, "describe", got.Messages[0].Content)
	assert.Equal(t, []string{base64.StdEncoding.EncodeToString(pixel.Data)}, got.Messages[0].Images)
}

func TestOllamaProvider_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewOllamaProvider(srv.URL, "").Generate(context.Background(), Request{Prompt: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestOpenRouterProvider_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"))
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		assert.Equal(t, "https://companion.example", r.Header.Get("HTTP-Referer"))
		assert.Equal(t, "companion", r.Header.Get("X-Title"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":"hello"}}]}`))
	}))
	defer srv.Close()

	p, err := NewOpenRouterProvider(srv.URL, "sk-test", "vendor/model", "https://companion.example", "companion")
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), Request{Prompt: "look", Attachments: []Media{pixel}})
	require.NoError(t, err)
	assert.Equal(t, "hello", out)

	assert.Equal(t, "vendor/model", body["model"])
	msgs := body["messages"].([]any)
	require.Len(t, msgs, 1)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	image := parts[1].(map[string]any)["image_url"].(map[string]any)
	assert.True(t, strings.HasPrefix(image["url"].(string), "data:image/png;base64,"))
}

func TestClaudeProvider_Generate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "/messages"))
		assert.Equal(t, "sk-ant", r.Header.Get("X-Api-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_1","type":"message","role":"assistant","model":"claude","content":[{"type":"text","text":"selam"}],"stop_reason":"end_turn","usage":{"input_tokens":1,"output_tokens":1}}`))
	}))
	defer srv.Close()

	p, err := NewClaudeProvider("sk-ant", "", srv.URL)
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), Request{Prompt: "hi", Attachments: []Media{pixel}})
	require.NoError(t, err)
	assert.Equal(t, "selam", out)
}

func TestGeminiProvider_Generate(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "gemini-test:generateContent")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"mer"},{"text":"haba"}]}}]}`))
	}))
	defer srv.Close()

	p, err := NewGeminiProvider(context.Background(), "AIza-test", "gemini-test", srv.URL)
	require.NoError(t, err)
	out, err := p.Generate(context.Background(), Request{Prompt: "hi", Attachments: []Media{pixel}})
	require.NoError(t, err)
	assert.Equal(t, "merhaba", out)

	contents := body["contents"].([]any)
	require.Len(t, contents, 1)
	parts := contents[0].(map[string]any)["parts"].([]any)
	assert.Len(t, parts, 2)
}

func TestProviders_EmptyReplyIsAnError(t *testing.T) {
	gemini := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[]},"finishReason":"SAFETY"}]}`))
	}))
	defer gemini.Close()
	openrouter := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"x","object":"chat.completion","choices":[{"index":0,"message":{"role":"assistant","content":""}}]}`))
	}))
	defer openrouter.Close()

	g, err := NewGeminiProvider(context.Background(), "AIza-test", "gemini-test", gemini.URL)
	require.NoError(t, err)
	out, err := g.Generate(context.Background(), Request{Prompt: "hi"})
	assert.Error(t, err)
	assert.Empty(t, out)

	o, err := NewOpenRouterProvider(openrouter.URL, "sk-test", "vendor/model", "", "")
	require.NoError(t, err)
	out, err = o.Generate(context.Background(), Request{Prompt: "hi"})
	assert.Error(t, err)
	assert.Empty(t, out)
}
