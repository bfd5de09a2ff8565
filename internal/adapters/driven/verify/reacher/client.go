// Package reacher provides an email verification adapter backed by a
// Reacher backend (https://reacher.email), plus a lifecycle manager for
// running the backend binary locally.
package reacher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/deskhand/internal/core/domain"
	"github.com/custodia-labs/deskhand/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.EmailVerifier = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8080"

	// DefaultTimeout is generous: a single SMTP probe can legitimately
	// take tens of seconds against slow mail servers.
	DefaultTimeout = 90 * time.Second
)

// Config holds configuration for the Reacher client.
type Config struct {
	// BaseURL is the backend endpoint (default: http://localhost:8080).
	BaseURL string

	// Timeout is the per-check timeout (default: 90s).
	Timeout time.Duration
}

// Client verifies email addresses against a Reacher backend.
type Client struct {
	client  *http.Client
	baseURL string
}

// checkRequest is the Reacher /v0/check_email request format.
type checkRequest struct {
	ToEmail string `json:"to_email"`
}

// checkResponse is the Reacher /v0/check_email response format.
type checkResponse struct {
	IsReachable string `json:"is_reachable"`
	SMTP        struct {
		IsDeliverable bool `json:"is_deliverable"`
		IsCatchAll    bool `json:"is_catch_all"`
	} `json:"smtp"`
	Misc struct {
		IsDisposable bool `json:"is_disposable"`
	} `json:"misc"`
}

// NewClient creates a Reacher client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Client{
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
		baseURL: cfg.BaseURL,
	}
}

// Check verifies one address. Transport failures wrap
// domain.ErrVerifierUnavailable so callers can abort the run rather than
// marking every remaining row as an error.
func (c *Client) Check(ctx context.Context, email string) (*domain.EmailCheck, error) {
	jsonBody, err := json.Marshal(checkRequest{ToEmail: email})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/v0/check_email",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrVerifierUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reacher error (status %d): %s", resp.StatusCode, string(body))
	}

	var checkResp checkResponse
	if err := json.Unmarshal(body, &checkResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	return &domain.EmailCheck{
		Reachability: checkResp.IsReachable,
		Deliverable:  checkResp.SMTP.IsDeliverable,
		CatchAll:     checkResp.SMTP.IsCatchAll,
		Disposable:   checkResp.Misc.IsDisposable,
	}, nil
}

// Ping reports whether the backend answers on its health endpoint.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v0/check_email", http.NoBody)
	if err != nil {
		return fmt.Errorf("create ping request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrVerifierUnavailable, err)
	}
	resp.Body.Close()

	// Any HTTP answer means the process is up; method errors are fine.
	return nil
}
