package source

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ivlev/math2video/internal/config"
)

const (
	defaultHTTPTimeout    = 20 * time.Second
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 5 * time.Second
	defaultTemperature    = 0.7
	defaultMaxTokens      = 1000
)

// GeminiConfig captures what the client needs to reach generateContent.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Prompt  PromptOptions
}

// GeminiClient calls the Gemini REST API and returns the raw text of the
// first candidate.
type GeminiClient struct {
	cfg        GeminiConfig
	httpClient *http.Client

	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
	sleeper          func(time.Duration)
}

// GeminiOption customizes the client.
type GeminiOption func(*GeminiClient)

func WithHTTPClient(client *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryMaxAttempts sets the total number of attempts, not the number of
// retries.
func WithRetryMaxAttempts(attempts int) GeminiOption {
	return func(c *GeminiClient) {
		c.retryMaxAttempts = attempts
	}
}

func WithRetryBackoff(baseDelay, maxDelay time.Duration) GeminiOption {
	return func(c *GeminiClient) {
		c.retryBaseDelay = baseDelay
		c.retryMaxDelay = maxDelay
	}
}

// WithSleeper replaces the retry sleep (tests).
func WithSleeper(sleeper func(time.Duration)) GeminiOption {
	return func(c *GeminiClient) {
		c.sleeper = sleeper
	}
}

func NewGeminiClient(cfg GeminiConfig, opts ...GeminiOption) *GeminiClient {
	client := &GeminiClient{
		cfg: GeminiConfig{
			APIKey:  strings.TrimSpace(cfg.APIKey),
			BaseURL: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			Model:   strings.TrimSpace(cfg.Model),
			Prompt:  cfg.Prompt,
		},
		httpClient:       &http.Client{Timeout: defaultHTTPTimeout},
		retryMaxAttempts: config.DefaultRetries,
		retryBaseDelay:   defaultRetryBaseDelay,
		retryMaxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = config.DefaultGeminiBaseURL
	}
	if client.cfg.Model == "" {
		client.cfg.Model = config.DefaultGeminiModel
	}
	return client
}

// NewGeminiFromConfig returns nil when the generator is disabled or no key is
// available; callers then run on the fallback alone.
func NewGeminiFromConfig(cfg config.Generator, opts ...GeminiOption) *GeminiClient {
	if cfg.Disabled {
		return nil
	}
	key := cfg.ResolveAPIKey()
	if key == "" {
		return nil
	}
	retries := cfg.Retries
	if retries <= 0 {
		retries = 1
	}
	opts = append([]GeminiOption{WithRetryMaxAttempts(retries)}, opts...)
	return NewGeminiClient(GeminiConfig{
		APIKey:  key,
		BaseURL: cfg.BaseURL,
		Model:   cfg.Model,
		Prompt: PromptOptions{
			Level:  cfg.Level,
			Style:  cfg.Style,
			Enrich: cfg.Enrich,
		},
	}, opts...)
}

func (c *GeminiClient) Name() string { return "gemini/" + c.cfg.Model }

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
		Content      *content `json:"content"`
		FinishReason string   `json:"finishReason"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, snippet(e.Body))
}

// shapeError marks a 2xx response without the nested text field.
type shapeError struct {
	Reason  string
	Snippet string
}

func (e *shapeError) Error() string {
	return fmt.Sprintf("gemini response: %s (snippet: %s)", e.Reason, e.Snippet)
}

// Generate sends the prompt and returns the candidate text. Transport and
// status failures wrap ErrSourceUnavailable; a response missing
// candidates[0].content.parts[0].text wraps ErrMalformedInstructions.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", malformed(errors.New("gemini generate: prompt required"))
	}
	if c.cfg.APIKey == "" {
		return "", unavailable(errors.New("gemini generate: api key required"))
	}

	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: BuildRequest(prompt, c.cfg.Prompt)}}}},
		GenerationConfig: generationConfig{
			Temperature:     defaultTemperature,
			MaxOutputTokens: defaultMaxTokens,
		},
	}

	attempts := c.retryAttempts()
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		text, err := c.sendOnce(ctx, payload)
		if err == nil {
			return text, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt, attempts)
		if !retry {
			break
		}
		if err := c.sleep(ctx, delay); err != nil {
			lastErr = err
			break
		}
	}

	var shape *shapeError
	if errors.As(lastErr, &shape) {
		return "", malformed(lastErr)
	}
	return "", unavailable(lastErr)
}

func (c *GeminiClient) sendOnce(ctx context.Context, payload generateRequest) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, "models", c.cfg.Model+":generateContent")
	if err != nil {
		return "", fmt.Errorf("gemini request: build url: %w", err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return "", fmt.Errorf("gemini request: new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request: http error: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("gemini request: read body: %w", err)
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", &shapeError{Reason: "decode: " + err.Error(), Snippet: snippet(string(body))}
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("gemini request: api error %d: %s", decoded.Error.Code, strings.TrimSpace(decoded.Error.Message))
	}
	if len(decoded.Candidates) == 0 {
		return "", &shapeError{Reason: "no candidates", Snippet: snippet(string(body))}
	}
	first := decoded.Candidates[0]
	if first.Content == nil || len(first.Content.Parts) == 0 {
		return "", &shapeError{
			Reason:  fmt.Sprintf("candidate has no content parts (finishReason=%q)", first.FinishReason),
			Snippet: snippet(string(body)),
		}
	}
	text := strings.TrimSpace(first.Content.Parts[0].Text)
	if text == "" {
		return "", &shapeError{Reason: "empty text part", Snippet: snippet(string(body))}
	}
	return text, nil
}

func (c *GeminiClient) retryAttempts() int {
	if c.retryMaxAttempts <= 0 {
		return 1
	}
	return c.retryMaxAttempts
}

func (c *GeminiClient) retryDelay(ctx context.Context, err error, attempt, maxAttempts int) (time.Duration, bool) {
	if attempt >= maxAttempts || err == nil || ctx.Err() != nil {
		return 0, false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}

	var statusErr *httpStatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusRequestTimeout,
			statusErr.StatusCode == http.StatusTooManyRequests,
			statusErr.StatusCode >= http.StatusInternalServerError:
			if statusErr.RetryAfter > 0 {
				return c.capDelay(statusErr.RetryAfter), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return c.backoffDelay(attempt), true
	}
	return 0, false
}

// attempt 1 -> base, 2 -> base*2, 3 -> base*4, capped.
func (c *GeminiClient) backoffDelay(attempt int) time.Duration {
	if c.retryBaseDelay <= 0 {
		return 0
	}
	delay := c.retryBaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return c.capDelay(delay)
}

func (c *GeminiClient) capDelay(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if c.retryMaxDelay > 0 && delay > c.retryMaxDelay {
		return c.retryMaxDelay
	}
	return delay
}

func (c *GeminiClient) sleep(ctx context.Context, delay time.Duration) error {
	if delay <= 0 {
		return nil
	}
	if c.sleeper != nil {
		c.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay > 0 {
			return delay, true
		}
	}
	return 0, false
}

func snippet(s string) string {
	clean := strings.Join(strings.Fields(s), " ")
	if clean == "" {
		return "<empty>"
	}
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		return string(runes[:limit]) + "..."
	}
	return clean
}
