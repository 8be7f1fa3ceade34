package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/a11y-tools/a11y-triage/internal/models"
	"github.com/a11y-tools/a11y-triage/internal/rules"
	"github.com/a11y-tools/a11y-triage/pkg/logger"
)

// Defaults for the OpenRouter provider.
const (
	DefaultBaseURL = "https://openrouter.ai/api/v1"
	DefaultModel   = "tngtech/deepseek-r1t2-chimera:free"

	defaultTimeout     = 30 * time.Second
	defaultMinInterval = 200 * time.Millisecond
	defaultMaxRetries  = 3
)

// OpenRouterConfig configures the OpenRouter provider.
type OpenRouterConfig struct {
	APIKey  string
	BaseURL string
	Model   string

	// Timeout bounds each HTTP round trip. Zero means the default.
	Timeout time.Duration

	// MinInterval is the minimum spacing between consecutive calls,
	// enforced across goroutines. Zero means the default.
	MinInterval time.Duration
}

// OpenRouterProvider implements Provider against OpenRouter's
// OpenAI-compatible chat completion API.
type OpenRouterProvider struct {
	client *openai.Client
	model  string
	rules  *rules.DB
	logger logger.Logger

	available   bool
	minInterval time.Duration

	mu       sync.Mutex
	lastCall time.Time
}

// NewOpenRouterProvider creates the provider. An empty API key yields a
// provider that reports itself unavailable rather than an error, so callers
// can construct unconditionally and gate on Available.
func NewOpenRouterProvider(cfg OpenRouterConfig, db *rules.DB, log logger.Logger) *OpenRouterProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	minInterval := cfg.MinInterval
	if minInterval <= 0 {
		minInterval = defaultMinInterval
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = baseURL
	clientConfig.HTTPClient = &http.Client{Timeout: timeout}

	return &OpenRouterProvider{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		rules:       db,
		logger:      log,
		available:   cfg.APIKey != "",
		minInterval: minInterval,
	}
}

// Available implements Provider.
func (p *OpenRouterProvider) Available() bool {
	return p.available
}

// Analyze implements Provider. Transport failures surface as errors after
// retries are exhausted; a response that parses as text but not as the
// expected schema degrades to the fallback enrichment.
func (p *OpenRouterProvider) Analyze(ctx context.Context, req Request) (*models.Enrichment, error) {
	if !p.available {
		return nil, fmt.Errorf("AI provider not configured")
	}

	if err := p.throttle(ctx); err != nil {
		return nil, err
	}

	prompt := BuildPrompt(req, p.rules)

	var content string
	operation := func() error {
		resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: p.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleUser, Content: prompt},
			},
			Temperature: 0.2,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
		})
		if err != nil {
			if !retryable(err) {
				return backoff.Permanent(err)
			}
			p.logger.Warn("AI request failed, retrying", "rule_id", req.RuleID, "error", err)
			return err
		}
		if len(resp.Choices) == 0 {
			return backoff.Permanent(fmt.Errorf("empty completion response"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), defaultMaxRetries), ctx)
	if err := backoff.Retry(operation, policy); err != nil {
		return nil, fmt.Errorf("AI completion failed: %w", err)
	}

	enrichment, err := DecodeEnrichment(content)
	if err != nil {
		p.logger.Warn("unparseable AI response, using fallback",
			"rule_id", req.RuleID, "error", err)
		return Fallback(), nil
	}
	return enrichment, nil
}

// throttle enforces the minimum inter-call spacing.
func (p *OpenRouterProvider) throttle(ctx context.Context) error {
	p.mu.Lock()
	now := time.Now()
	wait := p.minInterval - now.Sub(p.lastCall)
	if wait > 0 {
		p.lastCall = p.lastCall.Add(p.minInterval)
	} else {
		p.lastCall = now
	}
	p.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// retryable reports whether a completion error is worth retrying: rate
// limiting and transient server errors.
func retryable(err error) bool {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		// Network-level failures have no status code; retry them.
		return true
	}
	switch apiErr.HTTPStatusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
