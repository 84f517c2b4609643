package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// ClientConfig holds remote tagging service configuration.
type ClientConfig struct {
	Provider    string // "spacy", "custom"
	Model       string // model name, e.g. "en_core_web_sm"
	Endpoint    string // full API URL
	APIKey      string
	MaxRetries  int // default: 3
	TimeoutSecs int // per-request timeout (default: 30)
}

// tagRequest is the JSON body sent to the tagging service.
type tagRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

// tagResponse is the JSON body returned by the tagging service.
type tagResponse struct {
	Data []struct {
		Index      int     `json:"index"`
		Label      Label   `json:"label"`
		Confidence float64 `json:"confidence"`
	} `json:"data"`
}

// HTTPError carries an HTTP failure with retry context.
type HTTPError struct {
	StatusCode int
	Message    string
	RetryAfter time.Duration
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// Client implements Tagger against an HTTP part-of-speech service.
type Client struct {
	config ClientConfig
	http   *http.Client
}

// ParseTaggerFlag parses the "--tagger provider/model" format, e.g.
// "spacy/en_core_web_sm". The model part may itself contain slashes.
func ParseTaggerFlag(flag string) (*ClientConfig, error) {
	if flag == "" {
		return nil, fmt.Errorf("empty tagger flag")
	}

	slashIdx := strings.Index(flag, "/")
	if slashIdx == -1 {
		return nil, fmt.Errorf("invalid --tagger format: expected 'provider/model', got %q", flag)
	}

	provider := flag[:slashIdx]
	model := flag[slashIdx+1:]

	if provider == "" {
		return nil, fmt.Errorf("empty provider in --tagger flag: %q", flag)
	}
	if model == "" {
		return nil, fmt.Errorf("empty model in --tagger flag: %q", flag)
	}

	config := &ClientConfig{
		Provider:    provider,
		Model:       model,
		MaxRetries:  3,
		TimeoutSecs: 30,
	}

	switch provider {
	case "spacy":
		// Local spacy-server style sidecar. No API key needed.
		config.Endpoint = "http://localhost:8080/v1/tags"
	case "custom":
		config.Endpoint = os.Getenv("SIGSCRUB_TAGGER_ENDPOINT")
		config.APIKey = os.Getenv("SIGSCRUB_TAGGER_API_KEY")
	default:
		return nil, fmt.Errorf("unknown provider %q. Supported: spacy, custom", provider)
	}

	if endpoint := os.Getenv("SIGSCRUB_TAGGER_ENDPOINT"); endpoint != "" {
		config.Endpoint = endpoint
	}
	if apiKey := os.Getenv("SIGSCRUB_TAGGER_API_KEY"); apiKey != "" {
		config.APIKey = apiKey
	}

	return config, nil
}

// Validate checks that the configuration is complete.
func (c *ClientConfig) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("max retries cannot be negative")
	}
	if c.TimeoutSecs <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	return nil
}

// NewClient creates a tagging client with the given configuration.
func NewClient(config *ClientConfig) (*Client, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &Client{
		config: *config,
		http: &http.Client{
			Timeout: time.Duration(config.TimeoutSecs) * time.Second,
		},
	}, nil
}

// Name implements Tagger.
func (c *Client) Name() string {
	return c.config.Provider + "/" + c.config.Model
}

// Tag implements Tagger for a single line.
func (c *Client) Tag(ctx context.Context, text string) (Tag, error) {
	tags, err := c.TagBatch(ctx, []string{text})
	if err != nil {
		return Tag{}, err
	}
	if len(tags) != 1 {
		return Tag{}, fmt.Errorf("expected 1 tag, got %d: %w", len(tags), ErrUnavailable)
	}
	return tags[0], nil
}

// TagBatch tags multiple lines in a single API call. Failures after all
// retries wrap ErrUnavailable so the detector can fail open.
func (c *Client) TagBatch(ctx context.Context, texts []string) ([]Tag, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		tags, err := c.attemptTagBatch(ctx, texts)
		if err == nil {
			return tags, nil
		}

		lastErr = err
		if attempt == c.config.MaxRetries {
			break
		}

		// Exponential backoff: 1s, 2s, 4s. Rate limited responses may
		// override with Retry-After.
		backoff := time.Duration(1<<attempt) * time.Second
		if httpErr, ok := err.(*HTTPError); ok && httpErr.StatusCode == 429 && httpErr.RetryAfter > 0 {
			backoff = httpErr.RetryAfter
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(backoff):
		}
	}

	return nil, fmt.Errorf("tagging failed after %d attempts: %v: %w", c.config.MaxRetries+1, lastErr, ErrUnavailable)
}

func (c *Client) attemptTagBatch(ctx context.Context, texts []string) ([]Tag, error) {
	requestBody, err := json.Marshal(tagRequest{Model: c.config.Model, Input: texts})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.config.Endpoint, bytes.NewBuffer(requestBody))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != 200 {
		var retryAfter time.Duration
		if retryAfterHeader := resp.Header.Get("Retry-After"); retryAfterHeader != "" {
			if seconds, err := strconv.Atoi(retryAfterHeader); err == nil {
				retryAfter = time.Duration(seconds) * time.Second
			}
		}

		return nil, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			RetryAfter: retryAfter,
		}
	}

	var tagResp tagResponse
	if err := json.Unmarshal(body, &tagResp); err != nil {
		return nil, fmt.Errorf("parsing response JSON: %w", err)
	}

	if len(tagResp.Data) != len(texts) {
		return nil, fmt.Errorf("expected %d tags, got %d", len(texts), len(tagResp.Data))
	}

	tags := make([]Tag, len(texts))
	for _, data := range tagResp.Data {
		if data.Index < 0 || data.Index >= len(tags) {
			return nil, fmt.Errorf("invalid tag index: %d", data.Index)
		}
		if data.Confidence < 0 || data.Confidence > 1 {
			return nil, fmt.Errorf("confidence out of range for index %d: %f", data.Index, data.Confidence)
		}
		tags[data.Index] = Tag{Label: data.Label, Confidence: data.Confidence}
	}

	return tags, nil
}
