// Package remote implements core.RemoteSource over HTTP.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/aretw0/jotter/pkg/core"
)

// DefaultURL serves the public sample posts.
const DefaultURL = "https://jsonplaceholder.typicode.com/posts"

// StatusError is returned when the endpoint answers with a non-2xx status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("Request failed with status %d", e.Code)
}

// Config holds the configuration for the HTTP source.
type Config struct {
	URL     string
	Timeout time.Duration // zero means no per-request timeout
	// Retries is the number of extra attempts after a transport error
	// or a 5xx answer. Zero disables retrying.
	Retries    uint
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client fetches notes from a JSON endpoint returning an array of records.
type Client struct {
	config Config
	http   *http.Client
}

// NewClient creates an HTTP source.
func NewClient(config Config) *Client {
	if config.URL == "" {
		config.URL = DefaultURL
	}
	if config.Logger == nil {
		config.Logger = slog.New(slog.DiscardHandler)
	}
	hc := config.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	return &Client{config: config, http: hc}
}

// URL returns the endpoint being fetched.
func (c *Client) URL() string {
	return c.config.URL
}

// Fetch issues a GET and decodes the records in server order.
func (c *Client) Fetch(ctx context.Context) ([]core.RemoteNote, error) {
	return backoff.Retry(ctx, func() ([]core.RemoteNote, error) {
		records, err := c.fetchOnce(ctx)
		if err == nil {
			return records, nil
		}
		var statusErr *StatusError
		if errors.As(err, &statusErr) && statusErr.Code < 500 {
			return nil, backoff.Permanent(err)
		}
		if ctx.Err() != nil {
			return nil, backoff.Permanent(err)
		}
		c.config.Logger.Debug("fetch attempt failed", "url", c.config.URL, "error", err)
		return nil, err
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.config.Retries+1),
	)
}

func (c *Client) fetchOnce(ctx context.Context) ([]core.RemoteNote, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Code: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	var records []core.RemoteNote
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if records == nil {
		return nil, fmt.Errorf("failed to decode response: expected a JSON array")
	}
	c.config.Logger.Debug("fetched remote notes", "url", c.config.URL, "count", len(records))
	return records, nil
}

var _ core.RemoteSource = (*Client)(nil)
