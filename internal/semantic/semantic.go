// Package semantic defines the optional knowledge-service collaborator used by
// the semantic feature family, and an HTTP client for it.
//
// The service answers two questions about phrases:
//   - Generality: how general a concept is, in [0,1]
//   - Related: how related two concepts are, in [0,1]
//
// Every call carries a timeout. Failures surface as errs.ErrCollaboratorUnavailable
// so callers can apply their fallback policy.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chriscorrea/tagger/internal/errs"
)

// Source is a semantic-relatedness collaborator.
type Source interface {
	// Generality returns how general phrase is, in [0,1].
	Generality(ctx context.Context, phrase string) (float64, error)
	// Related returns the relatedness of two phrases, in [0,1].
	Related(ctx context.Context, a, b string) (float64, error)
}

// DefaultTimeout bounds a single request when the configuration sets none.
const DefaultTimeout = 2 * time.Second

// Config holds connection details for the HTTP knowledge service.
type Config struct {
	URL     string
	APIKey  string
	Timeout time.Duration
}

// Client is a minimal JSON client for a knowledge service exposing
// POST {url}/generality and POST {url}/related.
type Client struct {
	url     string
	apiKey  string
	timeout time.Duration
	client  *http.Client
}

// NewClient creates a Client. An empty URL is a configuration error.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, fmt.Errorf("%w: semantic service URL is required", errs.ErrConfiguration)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		url:     strings.TrimRight(cfg.URL, "/"),
		apiKey:  cfg.APIKey,
		timeout: timeout,
		client:  &http.Client{Timeout: timeout},
	}, nil
}

type scoreResponse struct {
	Score float64 `json:"score"`
}

// Generality queries the service for the generality of phrase.
func (c *Client) Generality(ctx context.Context, phrase string) (float64, error) {
	var resp scoreResponse
	if err := c.postJSON(ctx, "/generality", map[string]any{"phrase": phrase}, &resp); err != nil {
		return 0, err
	}
	return clamp(resp.Score), nil
}

// Related queries the service for the relatedness of a and b.
func (c *Client) Related(ctx context.Context, a, b string) (float64, error) {
	var resp scoreResponse
	if err := c.postJSON(ctx, "/related", map[string]any{"a": a, "b": b}, &resp); err != nil {
		return 0, err
	}
	return clamp(resp.Score), nil
}

// Ping checks that the service answers at all.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Generality(ctx, "ping")
	return err
}

func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request for %q: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "tagger/0.1")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: semantic service request %s failed: %v", errs.ErrCollaboratorUnavailable, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: semantic service %s returned status %d", errs.ErrCollaboratorUnavailable, path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: invalid semantic service response: %v", errs.ErrCollaboratorUnavailable, err)
	}
	return nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
