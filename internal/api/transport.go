package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/CareerServices-Pace/LinkSweep/internal/routes"
)

const (
	refreshPath = "/auth/refresh"

	// DefaultTimeout bounds every request; past it the call fails as a
	// network error rather than hanging a caller forever.
	DefaultTimeout = 10 * time.Second
)

// Client is the HTTP transport for the LinkSweep API. Credentials ride on
// server-set cookies held in the client's jar; no Authorization header is
// ever attached. A single response hook point (the 401 path in do) feeds the
// refresh coordinator.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     zerolog.Logger
	refresh    *RefreshCoordinator

	mu               sync.RWMutex
	route            string
	onSessionExpired func()
}

// New creates a client for the API at baseURL with an in-memory cookie jar
// and the default request timeout.
func New(baseURL string, logger zerolog.Logger) *Client {
	jar, _ := cookiejar.New(nil)

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
			Jar:     jar,
		},
		logger:  logger.With().Str("component", "api").Logger(),
		refresh: NewRefreshCoordinator(),
	}
}

// SetHTTPClient sets a custom HTTP client. Callers that still want cookie
// credentials must provide a jar.
func (c *Client) SetHTTPClient(httpClient *http.Client) {
	c.httpClient = httpClient
}

// SetTimeout overrides the per-request timeout.
func (c *Client) SetTimeout(d time.Duration) {
	c.httpClient.Timeout = d
}

// Refresh exposes the coordinator, mainly so tests can observe ticket state.
func (c *Client) Refresh() *RefreshCoordinator {
	return c.refresh
}

// SetRoute records the active route. The refresh guard consults it: 401s on
// public routes are expected and never trigger a renewal.
func (c *Client) SetRoute(path string) {
	c.mu.Lock()
	c.route = path
	c.mu.Unlock()
}

// Route returns the active route.
func (c *Client) Route() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.route
}

// SetSessionExpiredHandler registers the callback invoked when a renewal
// fails. The transport never mutates session state itself; the auth service
// owns that write.
func (c *Client) SetSessionExpiredHandler(fn func()) {
	c.mu.Lock()
	c.onSessionExpired = fn
	c.mu.Unlock()
}

// Get issues a GET and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with a JSON body and decodes the response into out.
// Both body and out may be nil.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

// do sends the request and applies the refresh protocol on 401:
// reject immediately when the request targets the refresh endpoint, was
// already replayed once, or the active route is public; otherwise renew the
// session through the coordinator and replay the original request exactly
// once.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindUnexpected, Detail: "failed to encode request body", cause: err}
		}
	}

	retried := false
	for {
		status, respBody, err := c.send(ctx, method, path, payload)
		if err != nil {
			return err
		}

		if status < http.StatusBadRequest {
			return decodeInto(respBody, out)
		}

		if status == http.StatusUnauthorized && !retried && c.refreshEligible(path) {
			retried = true
			if err := c.renewSession(ctx); err != nil {
				return err
			}
			continue
		}

		var eb errorBody
		_ = json.Unmarshal(respBody, &eb)
		if status == http.StatusUnauthorized {
			return &Error{
				Kind:   KindSessionExpired,
				Status: status,
				Detail: eb.Detail,
			}
		}
		return statusError(status, eb)
	}
}

// send performs a single request attempt. It never retries.
func (c *Client) send(ctx context.Context, method, path string, payload []byte) (int, []byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return 0, nil, &Error{Kind: KindUnexpected, Detail: "failed to create request", cause: err}
	}

	requestID := ulid.Make().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("method", method).Str("path", path).
			Str("request_id", requestID).Msg("request failed")
		return 0, nil, networkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, networkError(fmt.Errorf("failed to read response: %w", err))
	}

	c.logger.Debug().Str("method", method).Str("path", path).
		Str("request_id", requestID).Int("status", resp.StatusCode).
		Msg("request completed")

	return resp.StatusCode, respBody, nil
}

// refreshEligible applies the loop guards: never refresh for the refresh
// endpoint itself, and never on routes that are expected to be
// unauthenticated.
func (c *Client) refreshEligible(path string) bool {
	if path == refreshPath {
		return false
	}
	return !routes.IsPublic(c.Route())
}

// renewSession asks the coordinator for the shared renewal outcome. The
// creator of the ticket issues POST /auth/refresh; everyone else attaches.
func (c *Client) renewSession(ctx context.Context) error {
	err := c.refresh.AttachOrCreate(ctx, func(ctx context.Context) error {
		status, respBody, err := c.send(ctx, http.MethodPost, refreshPath, nil)
		if err != nil {
			return err
		}
		if status >= http.StatusBadRequest {
			var eb errorBody
			_ = json.Unmarshal(respBody, &eb)
			return statusError(status, eb)
		}
		return nil
	})
	if err == nil {
		return nil
	}

	c.logger.Warn().Err(err).Msg("session renewal failed")

	c.mu.RLock()
	expired := c.onSessionExpired
	c.mu.RUnlock()
	if expired != nil {
		expired()
	}

	return ErrSessionExpired
}

func decodeInto(body []byte, out any) error {
	if out == nil || len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{Kind: KindUnexpected, Detail: "failed to decode response", cause: err}
	}
	return nil
}
