// Package llm requests commit messages from an OpenAI-compatible gateway.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

var (
	errMissingAPIKey = errors.New("API key is not set")
	// ErrEmptyResponse is returned when the gateway answers without any text.
	ErrEmptyResponse = errors.New("LLM returned empty response")
)

// Options configures a Client. The key is passed explicitly and never read
// from the process environment.
type Options struct {
	APIKey  string
	APIBase string
	// Timeout bounds a single request. Zero leaves the request unbounded.
	Timeout time.Duration
}

type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

type Client struct {
	opts Options
	// newCompleter is swapped in tests.
	newCompleter func(Options) chatCompleter
}

func NewClient(opts Options) *Client {
	return &Client{opts: opts, newCompleter: newOpenAICompleter}
}

func newOpenAICompleter(opts Options) chatCompleter {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.APIBase != "" {
		cfg.BaseURL = strings.TrimRight(opts.APIBase, "/")
	}
	return openai.NewClientWithConfig(cfg)
}

// GenerateCommitMessage sends prompt as a single user message and returns
// the trimmed reply. There is no retry.
func (c *Client) GenerateCommitMessage(ctx context.Context, prompt string, model string) (string, error) {
	if strings.TrimSpace(c.opts.APIKey) == "" {
		return "", errMissingAPIKey
	}

	if c.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.opts.Timeout)
		defer cancel()
	}

	resp, err := c.newCompleter(c.opts).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("failed to call LLM: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", ErrEmptyResponse
	}
	return content, nil
}

// TestConnection sends a minimal request to verify credentials and model.
func (c *Client) TestConnection(ctx context.Context, model string) error {
	_, err := c.GenerateCommitMessage(ctx, "Reply with the single word: ok", model)
	return err
}
