// Package embedding provides a thin client for the external text-embedding
// service. Callers that treat embedding as best-effort use EmbedOrEmpty;
// callers that require a vector use Embed and propagate the typed failure.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

var (
	// ErrServiceUnavailable is returned when the embedding service cannot be
	// reached. Maps to HTTP 503 upstream.
	ErrServiceUnavailable = errors.New("embedding service unavailable")

	// ErrBadResponse is returned when the service answers without a
	// well-formed vector. Maps to HTTP 502 upstream.
	ErrBadResponse = errors.New("embedding service returned a malformed response")
)

const defaultTimeout = 10 * time.Second

// Config holds embedding client configuration
type Config struct {
	URL      string
	Provider string
	Timeout  time.Duration
}

// Client issues text-to-vector requests against the embedding service
type Client struct {
	config     *Config
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a new embedding client
func NewClient(config *Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type embedRequest struct {
	Text     string `json:"text"`
	Provider string `json:"provider"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

// Embed sends text to the embedding service and returns the resulting vector.
// Connection failures surface as ErrServiceUnavailable; non-2xx answers and
// malformed or empty vectors surface as ErrBadResponse.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	body, err := json.Marshal(embedRequest{Text: text, Provider: c.config.Provider})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Embedding service unreachable",
			slog.String("url", c.config.URL),
			slog.Any("error", err),
		)
		return nil, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Error("Embedding service returned non-2xx status",
			slog.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: status %d", ErrBadResponse, resp.StatusCode)
	}

	var parsed embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}

	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding vector", ErrBadResponse)
	}

	c.logger.Debug("Text embedded",
		slog.Int("text_len", len(text)),
		slog.Int("dimensions", len(parsed.Embedding)),
	)

	return parsed.Embedding, nil
}

// EmbedOrEmpty is the best-effort variant used where an embedding failure must
// not fail the primary operation. It logs the failure and returns an empty
// vector, never nil: the empty slice still encodes as an empty SQL array, so
// the record persists and is simply excluded from similarity queries.
func (c *Client) EmbedOrEmpty(ctx context.Context, text string) []float64 {
	vector, err := c.Embed(ctx, text)
	if err != nil {
		c.logger.Warn("Embedding skipped, continuing with empty vector",
			slog.Any("error", err),
		)
		return []float64{}
	}
	return vector
}
