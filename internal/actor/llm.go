package actor

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	defaultTimeout = 120 * time.Second
	maxRetries     = 3
	retryDelay     = 1 * time.Second
)

// LLMConfig configures the completion client. BaseURL may point at any
// OpenAI-compatible endpoint.
type LLMConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// Completer is the narrow surface the agents need from a completion
// client: one system+user prompt in, assistant text out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// LLMClient wraps the OpenAI client with retries. All agents in this
// package share one client; what differs between them is only the prompt
// and the expected response shape.
type LLMClient struct {
	client *openai.Client
	model  string
	temp   float32
	logger *zap.Logger
}

// NewLLMClient creates a completion client for an OpenAI-compatible API.
func NewLLMClient(cfg LLMConfig, logger *zap.Logger) *LLMClient {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	config.HTTPClient = &http.Client{Timeout: timeout}

	return &LLMClient{
		client: openai.NewClientWithConfig(config),
		model:  cfg.Model,
		temp:   cfg.Temperature,
		logger: logger,
	}
}

// Complete sends a system+user prompt pair and returns the assistant text.
// Transient failures are retried with linear backoff.
func (c *LLMClient) Complete(ctx context.Context, system, user string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: c.temp,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", fmt.Errorf("completion returned no choices")
			}
			return resp.Choices[0].Message.Content, nil
		}

		lastErr = err
		if !isRetryable(err) {
			break
		}
		c.logger.Warn("completion request failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
	return "", fmt.Errorf("completion failed after %d attempts: %w", maxRetries, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") ||
		strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "429") ||
		strings.Contains(msg, "503")
}

// extractJSON pulls the first JSON object or array out of a completion
// that may wrap it in prose or a fenced code block.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+3:]
		s = strings.TrimPrefix(s, "json")
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		s = strings.TrimSpace(s)
	}
	start := strings.IndexAny(s, "{[")
	if start < 0 {
		return s
	}
	open := s[start]
	closing := byte('}')
	if open == '[' {
		closing = ']'
	}
	depth := 0
	inString := false
	for i := start; i < len(s); i++ {
		switch {
		case inString:
			if s[i] == '\\' {
				i++
			} else if s[i] == '"' {
				inString = false
			}
		case s[i] == '"':
			inString = true
		case s[i] == open:
			depth++
		case s[i] == closing:
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return s[start:]
}
