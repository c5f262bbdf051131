package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"savo/internal/commentary"
	"savo/internal/config"
	"savo/internal/services"
)

const (
	defaultBaseURL        = "https://generativelanguage.googleapis.com/v1beta"
	defaultHTTPTimeout    = 120 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 1 * time.Second
	defaultRetryMaxDelay  = 10 * time.Second
)

// Client talks to the Gemini generateContent endpoint.
type Client struct {
	cfg        config.Gemini
	httpClient *http.Client

	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryBackoff overrides the retry backoff delays.
func WithRetryBackoff(base, max time.Duration) Option {
	return func(c *Client) {
		c.baseDelay = base
		c.maxDelay = max
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(sleeper func(time.Duration)) Option {
	return func(c *Client) {
		c.sleeper = sleeper
	}
}

// NewClient constructs a Gemini client from the configuration section.
func NewClient(cfg config.Gemini, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultRetryAttempts
	}
	client := &Client{
		cfg:         cfg,
		httpClient:  &http.Client{Timeout: timeout},
		maxAttempts: attempts,
		baseDelay:   defaultRetryBaseDelay,
		maxDelay:    defaultRetryMaxDelay,
	}
	for _, opt := range opts {
		opt(client)
	}
	if strings.TrimSpace(client.cfg.BaseURL) == "" {
		client.cfg.BaseURL = defaultBaseURL
	}
	return client
}

// GenerateScript sends the prompt and decodes the model's response into a
// commentary script. Entries with empty text are dropped; events come back
// sorted by start time.
func (c *Client) GenerateScript(ctx context.Context, prompt string) (commentary.Script, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return commentary.Script{}, services.Wrap(services.ErrConfiguration, "gemini", "generate",
			"api key required (set gemini.api_key or GEMINI_API_KEY)", nil)
	}
	if strings.TrimSpace(prompt) == "" {
		return commentary.Script{}, services.Wrap(services.ErrValidation, "gemini", "generate", "empty prompt", nil)
	}

	text, err := c.generateWithRetry(ctx, prompt)
	if err != nil {
		return commentary.Script{}, err
	}
	return decodeScript(text)
}

type generateRequest struct {
	Contents         []content         `json:"contents"`
	GenerationConfig *generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature      float64 `json:"temperature"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content      content `json:"content"`
		FinishReason string  `json:"finishReason"`
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
	return fmt.Sprintf("gemini request: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

func (c *Client) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		text, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		delay, retry := c.retryDelay(ctx, err, attempt)
		if !retry {
			return "", err
		}
		if err := c.sleep(ctx, delay); err != nil {
			return "", err
		}
	}
	return "", services.Wrap(services.ErrTransient, "gemini", "generate",
		fmt.Sprintf("failed after %d attempts", c.maxAttempts), lastErr)
}

func (c *Client) generateOnce(ctx context.Context, prompt string) (string, error) {
	payload := generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: &generationConfig{
			Temperature:      0,
			ResponseMimeType: "application/json",
		},
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("gemini request: encode body: %w", err)
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent",
		strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
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
	if resp.StatusCode != http.StatusOK {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		return "", &httpStatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}

	var decoded generateResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return "", fmt.Errorf("gemini request: decode response: %w", err)
	}
	if decoded.Error != nil {
		return "", fmt.Errorf("gemini request: api error %d: %s", decoded.Error.Code, decoded.Error.Message)
	}
	for _, candidate := range decoded.Candidates {
		for _, p := range candidate.Content.Parts {
			if strings.TrimSpace(p.Text) != "" {
				return p.Text, nil
			}
		}
	}
	return "", errors.New("gemini request: response carries no text")
}

func (c *Client) retryDelay(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if attempt >= c.maxAttempts || ctx.Err() != nil {
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
				return min(statusErr.RetryAfter, c.maxDelay), true
			}
			return c.backoffDelay(attempt), true
		default:
			return 0, false
		}
	}
	return 0, false
}

// backoffDelay doubles the base delay per retry, capped at maxDelay.
func (c *Client) backoffDelay(attempt int) time.Duration {
	delay := c.baseDelay
	for i := 1; i < attempt; i++ {
		if delay > c.maxDelay/2 {
			return c.maxDelay
		}
		delay *= 2
	}
	return min(delay, c.maxDelay)
}

func (c *Client) sleep(ctx context.Context, delay time.Duration) error {
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

// scriptPayload mirrors the JSON object the prompt instructs the model to
// return.
type scriptPayload struct {
	CommentaryData []struct {
		Time       float64 `json:"time"`
		Commentary string  `json:"commentary"`
	} `json:"commentary_data"`
	ReportNarrative string `json:"report_narrative"`
}

func decodeScript(text string) (commentary.Script, error) {
	cleaned := stripCodeFence(text)
	var payload scriptPayload
	if err := json.Unmarshal([]byte(cleaned), &payload); err != nil {
		return commentary.Script{}, services.Wrap(services.ErrExternalTool, "gemini", "decode-script",
			snippet(cleaned), err)
	}

	script := commentary.Script{Narrative: strings.TrimSpace(payload.ReportNarrative)}
	for _, entry := range payload.CommentaryData {
		text := commentary.NormalizeText(entry.Commentary)
		if text == "" || entry.Time < 0 {
			continue
		}
		script.Events = append(script.Events, commentary.Event{Start: entry.Time, Text: text})
	}
	sort.Slice(script.Events, func(i, j int) bool {
		return script.Events[i].Start < script.Events[j].Start
	})
	return script, nil
}

// stripCodeFence removes a surrounding ``` or ```json fence when present.
func stripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	body := strings.TrimPrefix(trimmed, "```")
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = strings.TrimLeft(body[4:], " \t\r\n")
	}
	if idx := strings.LastIndex(body, "```"); idx >= 0 {
		body = body[:idx]
	}
	return strings.TrimSpace(body)
}

func snippet(text string) string {
	clean := strings.Join(strings.Fields(text), " ")
	const limit = 160
	if runes := []rune(clean); len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	if clean == "" {
		return "<empty>"
	}
	return clean
}
