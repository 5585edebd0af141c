// Package shareclient talks to a ccshare server over HTTP.
package shareclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/neilberkman/ccshare/internal/core/models"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 64 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:3006".
	BaseURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger receives request debug logs. If nil, nothing is logged.
	Logger *zap.Logger
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// New validates cfg and returns a client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("shareclient: BaseURL is required")
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("shareclient: invalid BaseURL %q: %w", cfg.BaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("shareclient: BaseURL %q must be http or https", cfg.BaseURL)
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: httpClient,
		logger:     logger,
	}, nil
}

// Created is the server's answer to a create call. The secret is only
// ever returned here.
type Created struct {
	ID     string `json:"id"`
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// Create registers a new share for sessionID.
func (c *Client) Create(ctx context.Context, sessionID string) (*Created, error) {
	body, err := c.do(ctx, http.MethodPost, "/api/share", map[string]string{"sessionID": sessionID})
	if err != nil {
		return nil, fmt.Errorf("shareclient: create failed: %w", err)
	}
	var out Created
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("shareclient: failed to parse create response: %w", err)
	}
	return &out, nil
}

// Sync appends events to the share's log.
func (c *Client) Sync(ctx context.Context, shareID, secret string, events []models.ShareData) error {
	req := struct {
		Secret string        `json:"secret"`
		Data   models.Events `json:"data"`
	}{Secret: secret, Data: events}
	if req.Data == nil {
		req.Data = models.Events{}
	}
	if _, err := c.do(ctx, http.MethodPost, "/api/share/"+url.PathEscape(shareID)+"/sync", req); err != nil {
		return fmt.Errorf("shareclient: sync failed: %w", err)
	}
	return nil
}

// Data fetches the share's current state as an event list.
func (c *Client) Data(ctx context.Context, shareID string) ([]models.ShareData, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/share/"+url.PathEscape(shareID)+"/data", nil)
	if err != nil {
		return nil, fmt.Errorf("shareclient: data failed: %w", err)
	}
	var events models.Events
	if err := json.Unmarshal(body, &events); err != nil {
		return nil, fmt.Errorf("shareclient: failed to parse share data: %w", err)
	}
	return events, nil
}

// Remove deletes the share.
func (c *Client) Remove(ctx context.Context, shareID, secret string) error {
	if _, err := c.do(ctx, http.MethodDelete, "/api/share/"+url.PathEscape(shareID), map[string]string{"secret": secret}); err != nil {
		return fmt.Errorf("shareclient: remove failed: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var bodyReader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if requestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s %s failed: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	c.logger.Debug("share api request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(body)),
	)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return body, nil
	}
	return nil, newAPIError(resp.StatusCode, body)
}
