package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/draftpress/draftpress/internal/logger"
	"github.com/go-resty/resty/v2"
)

// Client calls the generative text endpoint with bounded retry and
// exponential backoff.
type Client struct {
	client      *resty.Client
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	maxTokens   int
	maxAttempts int
	backoffBase time.Duration
}

// ClientOptions configures the generative client.
type ClientOptions struct {
	APIKey      string
	Model       string
	BaseURL     string // optional override, used in tests
	Timeout     time.Duration
	Temperature float64
	MaxTokens   int
	MaxAttempts int
	BackoffBase time.Duration // optional, defaults to 1s
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Status  string `json:"status"`
		Message string `json:"message"`
	} `json:"error"`
}

func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 3
	}
	if opts.BackoffBase <= 0 {
		opts.BackoffBase = time.Second
	}
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta/models"
	}
	return &Client{
		client:      resty.New().SetTimeout(opts.Timeout),
		apiKey:      opts.APIKey,
		model:       opts.Model,
		baseURL:     baseURL,
		temperature: opts.Temperature,
		maxTokens:   opts.MaxTokens,
		maxAttempts: opts.MaxAttempts,
		backoffBase: opts.BackoffBase,
	}
}

// Generate issues the prompt and returns the first candidate's text. It
// retries on transient failures and fails fast on 400/403.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	log := logger.Get()
	var lastErr error

	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, retryable, err := c.attempt(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !retryable {
			return "", err
		}
		lastErr = err

		if attempt < c.maxAttempts {
			delay := c.backoff(attempt)
			log.Warn().
				Err(err).
				Int("attempt", attempt).
				Dur("backoff", delay).
				Msg("Retryable AI failure, backing off")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrAIServiceUnavailable, ctx.Err())
			}
		}
	}

	return "", fmt.Errorf("%w: %d attempts failed, last: %v", ErrAIServiceUnavailable, c.maxAttempts, lastErr)
}

// attempt performs one call and classifies failure as retryable or fatal.
func (c *Client) attempt(ctx context.Context, prompt string) (text string, retryable bool, err error) {
	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	req := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}

	var body generateResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(req).
		SetResult(&body).
		SetError(&body).
		Post(url)

	if err != nil {
		// Transport errors and client timeouts are transient.
		return "", true, fmt.Errorf("AI request failed: %w", err)
	}

	switch resp.StatusCode() {
	case http.StatusBadRequest:
		return "", false, fmt.Errorf("%w: %s", ErrInvalidRequest, apiMessage(&body))
	case http.StatusForbidden:
		return "", false, fmt.Errorf("%w: %s", ErrAuthorizationDenied, apiMessage(&body))
	case http.StatusServiceUnavailable:
		return "", true, fmt.Errorf("AI service overloaded: %s", apiMessage(&body))
	}

	if body.Error != nil {
		if isOverloaded(body.Error.Status, body.Error.Message) {
			return "", true, fmt.Errorf("AI service overloaded: %s", body.Error.Message)
		}
		return "", true, fmt.Errorf("AI error: %s", body.Error.Message)
	}

	if len(body.Candidates) == 0 || len(body.Candidates[0].Content.Parts) == 0 {
		return "", true, fmt.Errorf("no valid response from AI service")
	}

	text = body.Candidates[0].Content.Parts[0].Text
	if strings.TrimSpace(text) == "" {
		return "", true, fmt.Errorf("no valid response from AI service")
	}
	return text, false, nil
}

// backoff returns min(base * 2^(attempt-1), 10*base).
func (c *Client) backoff(attempt int) time.Duration {
	delay := c.backoffBase << (attempt - 1)
	if limit := 10 * c.backoffBase; delay > limit {
		delay = limit
	}
	return delay
}

func isOverloaded(status, message string) bool {
	if status == "UNAVAILABLE" || status == "RESOURCE_EXHAUSTED" {
		return true
	}
	return strings.Contains(strings.ToLower(message), "overloaded")
}

func apiMessage(body *generateResponse) string {
	if body != nil && body.Error != nil && body.Error.Message != "" {
		return body.Error.Message
	}
	return "no error detail"
}
