// ABOUTME: OpenAI chat client used to draft CSV plans
// ABOUTME: Wraps go-openai with per-attempt timeouts and exponential backoff retries
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/harper/questos/internal/util"
)

// DefaultChatModel is the default model for chat completions
const DefaultChatModel = "gpt-4o-mini"

// ClientConfig holds configuration for the OpenAI client
type ClientConfig struct {
	APIKey      string
	ChatModel   string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	RetryDelay  time.Duration
	Temperature float32
}

// DefaultConfig returns the default client configuration
func DefaultConfig(apiKey string) *ClientConfig {
	return &ClientConfig{
		APIKey:      apiKey,
		ChatModel:   DefaultChatModel,
		Timeout:     30 * time.Second,
		MaxRetries:  3,
		RetryDelay:  2 * time.Second,
		Temperature: 0.4,
	}
}

// OpenAIClient wraps the OpenAI API client with retry logic
type OpenAIClient struct {
	client      *openai.Client
	chatModel   string
	timeout     time.Duration
	maxRetries  int
	retryDelay  time.Duration
	temperature float32
	logger      *zap.Logger
}

// NewOpenAIClient creates a new OpenAI client with the given API key using default configuration
func NewOpenAIClient(apiKey string) (*OpenAIClient, error) {
	return NewOpenAIClientWithConfig(DefaultConfig(apiKey))
}

// NewOpenAIClientWithConfig creates a new OpenAI client with custom configuration
func NewOpenAIClientWithConfig(config *ClientConfig) (*OpenAIClient, error) {
	if config == nil || config.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	apiConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		apiConfig.BaseURL = config.BaseURL
	}

	model := config.ChatModel
	if model == "" {
		model = DefaultChatModel
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(apiConfig),
		chatModel:   model,
		timeout:     timeout,
		maxRetries:  config.MaxRetries,
		retryDelay:  config.RetryDelay,
		temperature: config.Temperature,
		logger:      zap.NewNop(),
	}, nil
}

// SetLogger sets the logger used for retry diagnostics
func (c *OpenAIClient) SetLogger(logger *zap.Logger) {
	if logger != nil {
		c.logger = logger
	}
}

// Model returns the chat model in use
func (c *OpenAIClient) Model() string {
	return c.chatModel
}

// Complete sends a system and user message and returns the first choice's content
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	var content string

	err := util.Retry(ctx, c.maxRetries, c.retryDelay, func(ctx context.Context, attempt int) error {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.client.CreateChatCompletion(attemptCtx, openai.ChatCompletionRequest{
			Model: c.chatModel,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: system},
				{Role: openai.ChatMessageRoleUser, Content: user},
			},
			Temperature: c.temperature,
		})
		if err != nil {
			c.logger.Debug("chat completion failed", zap.Int("attempt", attempt+1), zap.Error(err))
			if !retryable(err) {
				return util.Permanent(err)
			}
			return err
		}

		if len(resp.Choices) == 0 {
			return errors.New("no completion choices returned")
		}

		content = strings.TrimSpace(resp.Choices[0].Message.Content)
		if content == "" {
			return errors.New("empty completion returned")
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	return content, nil
}

// retryable reports whether an API error may succeed on a later attempt
func retryable(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests || reqErr.HTTPStatusCode >= 500
	}
	return true
}
