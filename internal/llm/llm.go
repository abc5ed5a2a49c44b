package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
)

var ErrEmptyResponse = errors.New("LLM returned empty response")

// ChatCompleter is the part of the OpenAI client autocommit uses.
type ChatCompleter interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Options configures a Client.
type Options struct {
	// ServerURL is the completion endpoint's base address, for example an
	// Ollama server at http://localhost:11434.
	ServerURL  string
	APIKey     string
	Model      string
	HTTPClient *http.Client
}

// Client sends system + user prompts to an OpenAI-compatible chat endpoint.
type Client struct {
	api   ChatCompleter
	model string
}

func NewClient(opts Options) *Client {
	clientConfig := openai.DefaultConfig(opts.APIKey)
	clientConfig.BaseURL = BaseURL(opts.ServerURL)
	if opts.HTTPClient != nil {
		clientConfig.HTTPClient = opts.HTTPClient
	}
	return NewClientWithAPI(openai.NewClientWithConfig(clientConfig), opts.Model)
}

// NewClientWithAPI builds a Client around an existing ChatCompleter.
func NewClientWithAPI(api ChatCompleter, model string) *Client {
	return &Client{api: api, model: model}
}

// BaseURL turns a server address into the OpenAI-compatible API root by
// appending /v1 when the address does not already end with it.
func BaseURL(serverURL string) string {
	base := strings.TrimRight(strings.TrimSpace(serverURL), "/")
	if strings.HasSuffix(base, "/v1") {
		return base
	}
	return base + "/v1"
}

// Complete asks the model to answer prompt, conditioned on system.
func (c *Client) Complete(ctx context.Context, system, prompt string) (string, error) {
	messages := []openai.ChatCompletionMessage{
		{
			Role:    openai.ChatMessageRoleSystem,
			Content: system,
		},
		{
			Role:    openai.ChatMessageRoleUser,
			Content: prompt,
		},
	}

	resp, err := c.api.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:    c.model,
			Messages: messages,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to call LLM: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
