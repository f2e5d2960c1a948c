package azure

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// SubscriptionKeyHeader carries the resource key on every request
	SubscriptionKeyHeader = "Ocp-Apim-Subscription-Key"

	// RequestIDHeader is echoed back by the service and shows up in its diagnostics
	RequestIDHeader = "x-ms-client-request-id"

	// DefaultTimeout applies when the caller passes zero
	DefaultTimeout = 60 * time.Second

	maxResponseBytes = 64 << 20
)

// Client performs authenticated calls against one Cognitive Services resource
type Client struct {
	endpoint    string
	key         string
	httpClient  *http.Client
	logger      *slog.Logger
	maxResponse int64
}

// NewClient creates a client for the resource at endpoint
func NewClient(endpoint, key string, timeout time.Duration, logger *slog.Logger) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("endpoint is empty")
	}
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("invalid endpoint %q: scheme must be http or https", endpoint)
	}
	if key == "" {
		return nil, fmt.Errorf("key is empty")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		endpoint:    strings.TrimSuffix(endpoint, "/"),
		key:         key,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
		maxResponse: maxResponseBytes,
	}, nil
}

// Endpoint returns the resource endpoint without a trailing slash
func (c *Client) Endpoint() string {
	return c.endpoint
}

// PostJSON marshals payload and posts it to path
func (c *Client) PostJSON(ctx context.Context, path string, query url.Values, payload any) ([]byte, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	return c.send(ctx, path, query, "application/json", body)
}

// PostBinary posts raw bytes to path
func (c *Client) PostBinary(ctx context.Context, path string, query url.Values, data []byte) ([]byte, error) {
	return c.send(ctx, path, query, "application/octet-stream", data)
}

// URL builds the absolute request URL for path and query
func (c *Client) URL(path string, query url.Values) string {
	u := c.endpoint + "/" + strings.TrimPrefix(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) send(ctx context.Context, path string, query url.Values, contentType string, body []byte) ([]byte, error) {
	target := c.URL(path, query)
	requestID := uuid.NewString()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set(SubscriptionKeyHeader, c.key)
	req.Header.Set(RequestIDHeader, requestID)

	c.logger.Debug("sending request",
		"url", target,
		"request_id", requestID,
		"bytes", len(body),
		slog.Group("headers", SubscriptionKeyHeader, c.key),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxResponse+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(data)) > c.maxResponse {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxResponse)
	}

	c.logger.Debug("received response",
		"request_id", requestID,
		"status", resp.StatusCode,
		"bytes", len(data),
		"elapsed", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newServiceError(resp.StatusCode, data)
	}

	return data, nil
}
