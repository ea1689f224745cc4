package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/mindspace-backend/internal/config"
	"github.com/go-resty/resty/v2"
)

var (
	ErrLLMUnavailable = errors.New("no AI provider configured")
	ErrLLMEmptyReply  = errors.New("AI provider returned no content")
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is a provider-neutral chat completion call.
type CompletionRequest struct {
	Messages    []ChatMessage
	Temperature float64
	MaxTokens   int
}

// TextGenerator produces a reply for a conversation. It may be slow and it
// may fail; callers decide what a failure means for them.
type TextGenerator interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// LLMProvider is one OpenAI-compatible chat completions endpoint.
type LLMProvider struct {
	Name   string
	URL    string
	APIKey string
	Model  string
}

// LLMClient tries each configured provider in order until one answers.
type LLMClient struct {
	http      *resty.Client
	providers []LLMProvider
}

type completionBody struct {
	Model       string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type completionResult struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Content []struct {
		Text string `json:"text"`
	} `json:"content,omitempty"`
}

func NewLLMClient(timeout time.Duration, retries int, providers ...LLMProvider) *LLMClient {
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(retries).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= 500 || r.StatusCode() == 429
		}).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	configured := make([]LLMProvider, 0, len(providers))
	for _, p := range providers {
		if p.APIKey != "" && p.URL != "" {
			configured = append(configured, p)
		}
	}
	return &LLMClient{http: client, providers: configured}
}

// NewLLMClientFromConfig wires GLM, then DeepSeek, then OpenAI, skipping
// providers without an API key.
func NewLLMClientFromConfig(cfg *config.Config) *LLMClient {
	return NewLLMClient(cfg.AITimeout, 2,
		LLMProvider{Name: "glm", URL: cfg.GLMAPIURL, APIKey: cfg.GLMAPIKey, Model: cfg.GLMModel},
		LLMProvider{Name: "deepseek", URL: cfg.DeepSeekAPIURL, APIKey: cfg.DeepSeekAPIKey, Model: cfg.DeepSeekModel},
		LLMProvider{Name: "openai", URL: cfg.OpenAIAPIURL, APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel},
	)
}

func (c *LLMClient) Available() bool {
	return len(c.providers) > 0
}

func (c *LLMClient) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	if !c.Available() {
		return "", ErrLLMUnavailable
	}

	var errs []error
	for _, p := range c.providers {
		start := time.Now()
		content, err := c.call(ctx, p, req)
		if err == nil {
			slog.Debug("llm completion", "provider", p.Name, "latency_ms", time.Since(start).Milliseconds())
			return content, nil
		}
		slog.Warn("llm provider failed", "provider", p.Name, "error", err)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name, err))
		if ctx.Err() != nil {
			break
		}
	}
	return "", errors.Join(errs...)
}

func (c *LLMClient) call(ctx context.Context, p LLMProvider, req CompletionRequest) (string, error) {
	var result completionResult
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(p.APIKey).
		SetBody(completionBody{
			Model:       p.Model,
			Messages:    req.Messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
		}).
		SetResult(&result).
		Post(p.URL)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("status %d: %s", resp.StatusCode(), truncate(resp.String(), 200))
	}

	var content string
	if len(result.Choices) > 0 {
		content = result.Choices[0].Message.Content
	} else if len(result.Content) > 0 {
		content = result.Content[0].Text
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrLLMEmptyReply
	}
	return content, nil
}

// StripCodeFence removes a ```json (or bare ```) wrapper models like to add.
func StripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```html")
	content = strings.TrimPrefix(content, "```markdown")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	return strings.TrimSpace(content)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
