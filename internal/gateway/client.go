package gateway

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/promptform/promptform/internal/config"
	"github.com/promptform/promptform/internal/httpx"
	"github.com/promptform/promptform/internal/logger"
	"github.com/promptform/promptform/pkg/model"
)

const systemPrompt = `You design web forms. Given a plain-language description of a form,
respond with exactly one JSON object and nothing else.

If the description is clear and self-consistent, respond with a form schema:
{"type":"form","title":"...","description":"...","fields":[{"id":"snake_case","label":"...","type":"text|email|tel|number|select|textarea","placeholder":"...","required":true,"validation":{"pattern":"regex","message":"..."},"options":["..."]}]}
Only include "options" for select fields, and only include "validation" when a
custom constraint is genuinely needed. Field ids must be unique.

If the description is ambiguous or contradicts itself (for example it asks for
an anonymous form but requires personal contact details), do NOT guess. Respond
with a clarification request instead:
{"type":"clarification","contradiction":"what conflicts and why","questions":["..."]}
Ask the fewest questions needed to resolve the conflict.`

// Client talks to an OpenAI-compatible chat completions endpoint and turns
// the provider's reply into a model.GenerationResult. It implements
// negotiate.Gateway.
type Client struct {
	log        *logger.Logger
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	maxRetries int
}

func NewClient(cfg config.GatewayConfig, log *logger.Logger) (*Client, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gateway: api key required")
	}
	if log == nil {
		return nil, fmt.Errorf("gateway: logger required")
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		log:        log.With("service", "GatewayClient"),
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      cfg.Model,
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: maxRetries,
	}, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("gateway http %d: %s", e.StatusCode, e.Body)
}

func (e *httpError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
			Refusal string `json:"refusal,omitempty"`
		} `json:"message"`
	} `json:"choices"`
}

// Generate asks the provider to turn a description into a form schema or a
// clarification request. Transient failures are retried with exponential
// backoff; the returned error carries a Kind callers can branch on.
func (c *Client) Generate(ctx context.Context, description string) (model.GenerationResult, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.GenerationResult{}, &Error{Kind: KindMalformed, Err: fmt.Errorf("gateway: empty description")}
	}

	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: description},
		},
		Temperature: 0.2,
		ResponseFormat: &struct {
			Type string `json:"type"`
		}{Type: "json_object"},
	}

	var resp chatResponse
	if err := c.do(ctx, "POST", "/v1/chat/completions", req, &resp); err != nil {
		return model.GenerationResult{}, classify(err)
	}

	if len(resp.Choices) == 0 {
		return model.GenerationResult{}, &Error{Kind: KindMalformed, Err: fmt.Errorf("gateway: response has no choices")}
	}
	if r := strings.TrimSpace(resp.Choices[0].Message.Refusal); r != "" {
		return model.GenerationResult{}, &Error{Kind: KindMalformed, Err: fmt.Errorf("gateway: model refused: %s", r)}
	}

	content := []byte(stripFence(resp.Choices[0].Message.Content))
	if err := checkContract(content); err != nil {
		return model.GenerationResult{}, &Error{Kind: KindMalformed, Err: fmt.Errorf("gateway: %w", err)}
	}

	var result model.GenerationResult
	if err := json.Unmarshal(content, &result); err != nil {
		return model.GenerationResult{}, &Error{Kind: KindMalformed, Err: fmt.Errorf("gateway: decode result: %w", err)}
	}
	return result, nil
}

func (c *Client) doOnce(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return nil, nil, err
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, method, path, body)
		if err == nil {
			if out == nil {
				return nil
			}
			if uErr := json.Unmarshal(raw, out); uErr != nil {
				return fmt.Errorf("gateway decode error: %w; raw=%s", uErr, string(raw))
			}
			return nil
		}

		// Exhausted quota never recovers within a retry window.
		if isQuotaExhausted(err) {
			return err
		}
		if !httpx.IsRetryableError(err) {
			return err
		}
		if attempt == c.maxRetries {
			return err
		}

		sleepFor := httpx.RetryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = httpx.JitterSleep(sleepFor)

		c.log.Warn("gateway request retrying",
			"path", path,
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}

	return fmt.Errorf("unreachable retry loop")
}

func isQuotaExhausted(err error) bool {
	he, ok := err.(*httpError)
	return ok && he.StatusCode == http.StatusTooManyRequests &&
		strings.Contains(he.Body, "insufficient_quota")
}

func classify(err error) error {
	if he, ok := err.(*httpError); ok {
		switch {
		case isQuotaExhausted(err):
			return &Error{Kind: KindQuotaExhausted, Err: err}
		case he.StatusCode == http.StatusTooManyRequests:
			return &Error{Kind: KindRateLimited, Err: err}
		}
		return &Error{Kind: KindUnavailable, Err: err}
	}
	return &Error{Kind: KindUnavailable, Err: err}
}

// stripFence tolerates providers that wrap JSON in a markdown code fence
// despite json_object mode.
func stripFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
