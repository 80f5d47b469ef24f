// Package ollama is the client for the local model serving API used by
// ask and chat. Request parameters (model, token budget, retry policy)
// come from a resolved environment profile; the client enforces them.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/hollowaylabs/libris/internal/profile"
)

const (
	// apiPathTags is the Ollama API endpoint for listing models.
	apiPathTags = "/api/tags"

	// apiPathGenerate is the Ollama API endpoint for text generation.
	apiPathGenerate = "/api/generate"

	// defaultTopP is the nucleus sampling cutoff sent with every request.
	defaultTopP = 0.9
)

// Default request throttle: chat triggers one request per user turn, so
// a small steady rate protects the serving host without queueing delays.
const (
	defaultRequestRate  = rate.Limit(10)
	defaultRequestBurst = 1
)

var (
	// ErrUnavailable indicates the serving endpoint cannot be reached.
	ErrUnavailable = errors.New("ollama is not reachable")

	// ErrModelNotFound indicates the configured model is not installed.
	ErrModelNotFound = errors.New("model not found")
)

// Client talks to one Ollama endpoint with a fixed serving profile.
type Client struct {
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	retryCount  int
	retryDelay  time.Duration
	client      *http.Client
	limiter     *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sets the serving API base URL.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithModel sets the generation model.
func WithModel(model string) Option {
	return func(c *Client) {
		c.model = model
	}
}

// WithMaxTokens sets the response token budget.
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		c.maxTokens = n
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float64) Option {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithRetryPolicy sets the attempt count and initial delay between
// attempts. The delay doubles after each failed attempt.
func WithRetryPolicy(count int, delay time.Duration) Option {
	return func(c *Client) {
		if count < 1 {
			count = 1
		}
		c.retryCount = count
		c.retryDelay = delay
	}
}

// WithHTTPTimeout sets the per-request HTTP timeout.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// WithRequestRate sets the request throttle.
func WithRequestRate(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// NewClient creates a client with the medium-tier serving defaults.
func NewClient(opts ...Option) *Client {
	return NewClientFromConfig(profile.Resolve(profile.TierMedium, profile.HostingLocal), opts...)
}

// NewClientFromConfig creates a client from a resolved environment
// profile. Extra options are applied after the profile and win.
func NewClientFromConfig(cfg *profile.EnvironmentConfig, opts ...Option) *Client {
	c := &Client{
		client:  &http.Client{},
		limiter: rate.NewLimiter(defaultRequestRate, defaultRequestBurst),
	}

	applied := append([]Option{
		WithBaseURL(cfg.Serving.BaseURL),
		WithModel(cfg.Serving.Model),
		WithMaxTokens(cfg.Serving.MaxTokens),
		WithTemperature(cfg.Serving.Temperature),
		WithRetryPolicy(cfg.Serving.RetryCount, cfg.Serving.RetryDelay),
		WithHTTPTimeout(cfg.Performance.RequestTimeout),
	}, opts...)
	for _, opt := range applied {
		opt(c)
	}
	return c
}

// BaseURL returns the serving endpoint the client talks to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ModelName returns the configured generation model.
func (c *Client) ModelName() string {
	return c.model
}

// IsAvailable checks if the serving endpoint is running and accessible.
func (c *Client) IsAvailable(ctx context.Context) error {
	resp, err := c.doGet(ctx, apiPathTags)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	resp.Body.Close()
	return nil
}

// Models lists the model names installed on the endpoint.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	resp, err := c.doGet(ctx, apiPathTags)
	if err != nil {
		return nil, fmt.Errorf("listing models: %w", err)
	}
	defer resp.Body.Close()

	var result tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	names := make([]string, 0, len(result.Models))
	for _, m := range result.Models {
		names = append(names, m.Name)
	}
	return names, nil
}

// HasModel checks if the configured model is installed. A model name
// without a tag matches any installed tag of that model.
func (c *Client) HasModel(ctx context.Context) (bool, error) {
	names, err := c.Models(ctx)
	if err != nil {
		return false, err
	}

	for _, name := range names {
		if name == c.model {
			return true, nil
		}
		if !strings.Contains(c.model, ":") && strings.SplitN(name, ":", 2)[0] == c.model {
			return true, nil
		}
	}
	return false, nil
}

// Generate produces a completion for the prompt, retrying transient
// failures per the configured policy.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	var lastErr error
	delay := c.retryDelay
	for attempt := 0; attempt < c.retryCount; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
		}

		text, retryable, err := c.generateOnce(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable {
			return "", err
		}
	}
	return "", fmt.Errorf("after %d attempts: %w", c.retryCount, lastErr)
}

// generateOnce performs a single generation request. The second return
// reports whether the failure is worth retrying.
func (c *Client) generateOnce(ctx context.Context, prompt string) (string, bool, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: false,
		Options: generateOptions{
			Temperature: c.temperature,
			TopP:        defaultTopP,
			NumPredict:  c.maxTokens,
		},
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", false, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+apiPathGenerate, bytes.NewReader(body))
	if err != nil {
		return "", false, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", true, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		// Fall through to decode
	case resp.StatusCode == http.StatusNotFound:
		return "", false, fmt.Errorf("%w: %s", ErrModelNotFound, c.model)
	case resp.StatusCode >= 500:
		return "", true, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	default:
		return "", false, fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, formatErrorBody(resp.Body))
	}

	var result generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", false, fmt.Errorf("decoding response: %w", err)
	}

	return result.Response, false, nil
}

// doGet performs a GET request to the specified path and returns the response.
// The caller is responsible for closing the response body.
func (c *Client) doGet(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	return resp, nil
}

// formatErrorBody reads and formats the response body for error messages.
func formatErrorBody(body io.Reader) string {
	respBody, err := io.ReadAll(body)
	if err != nil {
		return fmt.Sprintf("(failed to read response body: %v)", err)
	}
	return string(respBody)
}

// generateRequest is the request body for the generate API.
type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// generateOptions carries the sampling parameters.
type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

// generateResponse is the response from the generate API.
type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// tagsResponse is the response from the tags API.
type tagsResponse struct {
	Models []modelInfo `json:"models"`
}

// modelInfo represents a model in the tags response.
type modelInfo struct {
	Name string `json:"name"`
}
