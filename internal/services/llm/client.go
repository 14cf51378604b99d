// Package llm wraps the OpenRouter chat-completions API behind a single
// Generate call.
//
// OpenRouter speaks the OpenAI chat-completions format, so we use the
// go-openai client pointed at OpenRouter's base URL — one API key, any
// provider's models.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const systemPrompt = "You are a precise and insightful content summarizer. You extract key information from video transcripts and present it clearly."

// Client calls a chat-completions endpoint.
type Client struct {
	client     *openai.Client
	model      string
	configured bool
}

// New creates a generation client. baseURL may be empty to use the OpenAI
// default; for OpenRouter pass https://openrouter.ai/api/v1.
func New(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	// Go Pattern: Always configure timeouts on HTTP clients.
	// The default http.Client has NO timeout — requests can hang forever!
	cfg.HTTPClient = &http.Client{
		Timeout: 120 * time.Second, // LLMs can be slow
	}

	return &Client{
		client:     openai.NewClientWithConfig(cfg),
		model:      model,
		configured: apiKey != "",
	}
}

// IsConfigured reports whether an API key was provided.
func (c *Client) IsConfigured() bool {
	return c.configured
}

// Generate sends one prompt and returns the raw text response. Transport
// errors, API errors and empty responses all come back as plain errors —
// the summarizer decides what to do with them.
func (c *Client) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	if !c.configured {
		return "", fmt.Errorf("generation API key not configured; set OPENROUTER_API_KEY")
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		MaxTokens:   maxTokens,
		Temperature: 0.3,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("generation request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from model")
	}

	return resp.Choices[0].Message.Content, nil
}
