// Package upstream is the typed client for the remote store API, which owns
// every persistent entity (products, orders, users, reviews, blog posts).
// The gateway never touches a database; all reads and mutations go through
// this client.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"storefront-gateway/internal/util"
)

// APIError is an error response from the upstream store API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream responded %d: %s", e.StatusCode, e.Message)
}

// IsUnauthorized reports whether err is an upstream 401.
func IsUnauthorized(err error) bool {
	apiErr, ok := err.(*APIError)
	return ok && apiErr.StatusCode == http.StatusUnauthorized
}

// Client calls the upstream store API. The zero token form serves public
// storefront reads; WithAuth binds a bearer token and an invalidation hook
// for admin calls.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger

	token          string
	onUnauthorized func(ctx context.Context)
}

// NewClient creates a client for the store API rooted at baseURL.
// The "/api" prefix is appended here so callers pass bare endpoint paths.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/api",
		http:    &http.Client{Timeout: timeout},
		logger:  util.GetLogger(),
	}
}

// WithAuth returns a copy of the client that sends the given bearer token and
// invokes onUnauthorized once if the upstream rejects it with 401. The hook is
// how a session gets torn down without the client knowing about sessions.
func (c *Client) WithAuth(token string, onUnauthorized func(ctx context.Context)) *Client {
	bound := *c
	bound.token = token
	bound.onUnauthorized = onUnauthorized
	return &bound
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	ctx, span := util.StartSpan(ctx, "upstream "+method+" "+path)
	defer span.End()

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		util.UpstreamRequestsTotal.WithLabelValues(method, path, "error").Inc()
		return fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	status := strconv.Itoa(resp.StatusCode)
	util.UpstreamRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())
	util.UpstreamRequestsTotal.WithLabelValues(method, path, status).Inc()

	if resp.StatusCode == http.StatusUnauthorized {
		util.UpstreamAuthExpiredTotal.Inc()
		if c.onUnauthorized != nil {
			c.onUnauthorized(ctx)
			c.onUnauthorized = nil
		}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    readErrorMessage(resp.Body, resp.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode upstream response: %w", err)
	}
	return nil
}

// readErrorMessage extracts the upstream's {"message": ...} error body, which
// must be surfaced to the user verbatim (e.g. a server-side stock rejection).
func readErrorMessage(body io.Reader, statusCode int) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.NewDecoder(body).Decode(&payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return http.StatusText(statusCode)
}

// decodeValidList decodes a JSON array element by element, dropping records
// that fail to parse or validate instead of failing the whole response.
func decodeValidList[T any, PT interface {
	*T
	Validate() error
}](c *Client, raw []json.RawMessage, entity string) []T {
	items := make([]T, 0, len(raw))
	for _, msg := range raw {
		var item T
		if err := json.Unmarshal(msg, &item); err != nil {
			c.flagMalformed(entity, err)
			continue
		}
		if err := PT(&item).Validate(); err != nil {
			c.flagMalformed(entity, err)
			continue
		}
		items = append(items, item)
	}
	return items
}

func (c *Client) flagMalformed(entity string, err error) {
	util.MalformedRecordsTotal.WithLabelValues(entity).Inc()
	c.logger.Warn("Dropping malformed upstream record",
		zap.String("entity", entity),
		zap.Error(err))
}
