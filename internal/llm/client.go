// Package llm asks an OpenAI-compatible chat model for synthetic person names.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultModel     = openai.GPT4oMini
	defaultMaxTokens = 1200
	defaultTimeout   = time.Minute

	namesSystemPrompt = "You generate synthetic test data. Reply with plain text only."
	namesPrompt       = "List %d distinct realistic full names, one per line, " +
		"formatted as first name then last name. No numbering, titles or commentary."
)

// Config selects the endpoint and sampling for name requests. An empty BaseURL
// means the public OpenAI API.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	Temperature float32
	MaxTokens   int
}

type Client struct {
	api         *openai.Client
	model       string
	temperature float32
	maxTokens   int
	timeout     time.Duration
}

func New(cfg Config) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("llm: API key is required")
	}
	apiCfg := openai.DefaultConfig(apiKey)
	if baseURL := strings.TrimSpace(cfg.BaseURL); baseURL != "" {
		apiCfg.BaseURL = baseURL
	}

	c := &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		model:       strings.TrimSpace(cfg.Model),
		temperature: max(cfg.Temperature, 0),
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
	}
	if c.model == "" {
		c.model = defaultModel
	}
	if c.maxTokens <= 0 {
		c.maxTokens = defaultMaxTokens
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	return c, nil
}

func (c *Client) Model() string {
	return c.model
}

// ListNames requests n full names and returns the reply's non-empty lines with
// list markers removed. The model may return fewer or malformed lines; callers
// decide what to keep.
func (c *Client) ListNames(ctx context.Context, n int) ([]string, error) {
	if c == nil {
		return nil, fmt.Errorf("llm: client is nil")
	}
	if n <= 0 {
		return nil, fmt.Errorf("llm: name count must be positive, got %d", n)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: namesSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(namesPrompt, n)},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: list names: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm: empty response")
	}
	return SplitLines(resp.Choices[0].Message.Content), nil
}

// SplitLines drops blank lines and leading numbering or bullets.
func SplitLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimLeft(strings.TrimSpace(line), "0123456789.)-*• \t")
		if line != "" {
			out = append(out, strings.TrimSpace(line))
		}
	}
	return out
}
