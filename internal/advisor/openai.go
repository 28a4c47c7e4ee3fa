package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Default OpenAI-compatible endpoint configuration.
const (
	DefaultEndpoint    = "https://api.openai.com/v1/chat/completions"
	DefaultModel       = "gpt-4o-mini"
	DefaultHTTPTimeout = 15 * time.Second
)

const systemPrompt = "You are a precise blockchain security analyst. " +
	"You respond only with the requested JSON object, no prose."

// OpenAIClient implements CompletionClient against any OpenAI-compatible
// chat-completions API.
type OpenAIClient struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

var _ CompletionClient = (*OpenAIClient)(nil)

// OpenAIOption configures OpenAIClient.
type OpenAIOption func(*OpenAIClient)

// WithEndpoint overrides the chat-completions URL.
func WithEndpoint(url string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.endpoint = url
	}
}

// WithModel overrides the model name.
func WithModel(model string) OpenAIOption {
	return func(c *OpenAIClient) {
		c.model = model
	}
}

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(client *http.Client) OpenAIOption {
	return func(c *OpenAIClient) {
		c.client = client
	}
}

// NewOpenAIClient creates a client. An empty apiKey is allowed at
// construction time; Complete will fail with a misconfiguration error,
// which the interpreter degrades to "no judgment".
func NewOpenAIClient(apiKey string, opts ...OpenAIOption) *OpenAIClient {
	c := &OpenAIClient{
		endpoint: DefaultEndpoint,
		model:    DefaultModel,
		apiKey:   apiKey,
		client:   &http.Client{Timeout: DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Complete sends the prompt as a single user message and returns the raw
// assistant text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts CompletionOptions) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("openai client misconfigured: missing api key")
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: opts.Temperature,
		MaxTokens:   opts.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("completion error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("completion response has no choices")
	}

	return parsed.Choices[0].Message.Content, nil
}
