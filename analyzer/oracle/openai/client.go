// Package openai implements a caller likelihood oracle backed by an OpenAI compatible chat
// completion endpoint.
package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"github.com/viant/toa/analyzer/oracle"
	"golang.org/x/time/rate"
)

const (
	// DefaultModel is the chat model used when none is configured
	DefaultModel = "gpt-4o"
	// DefaultAPIKeyEnv names the environment variable holding the API key
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
)

// Client estimates caller probabilities with a chat model
type Client struct {
	client      *openai.Client
	model       string
	temperature float32
	limiter     *rate.Limiter
	baseURL     string
	apiKey      string
	httpClient  *http.Client
}

type Option func(*Client)

// WithModel sets chat model
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithBaseURL sets an OpenAI compatible API base URL
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithAPIKey sets API key
func WithAPIKey(apiKey string) Option {
	return func(c *Client) {
		c.apiKey = apiKey
	}
}

// WithTemperature sets sampling temperature
func WithTemperature(temperature float32) Option {
	return func(c *Client) {
		c.temperature = temperature
	}
}

// WithRequestsPerSecond limits request rate, zero or less disables limiting
func WithRequestsPerSecond(rps float64) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
}

// WithHTTPClient sets http client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// Estimate asks the model which caller most likely introduces user controlled input
func (c *Client) Estimate(ctx context.Context, request *oracle.Request) (oracle.Distribution, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("failed to wait for rate limit: %w", err)
		}
	}
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt(request)},
		},
		Temperature: c.temperature,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to estimate callers of %v: %w", request.Function, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned for %v", oracle.ErrMalformed, request.Function)
	}
	return oracle.ParseResponse(resp.Choices[0].Message.Content)
}

// New creates a client
func New(opts ...Option) *Client {
	ret := &Client{model: DefaultModel}
	for _, opt := range opts {
		opt(ret)
	}
	cfg := openai.DefaultConfig(ret.apiKey)
	if ret.baseURL != "" {
		cfg.BaseURL = strings.TrimRight(ret.baseURL, "/")
	}
	if ret.httpClient != nil {
		cfg.HTTPClient = ret.httpClient
	}
	ret.client = openai.NewClientWithConfig(cfg)
	return ret
}
