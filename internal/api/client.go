// Package api is the typed HTTP client for the accident-form backend. The
// bearer token is read through an injected TokenSource so multiple sessions
// can coexist in one process.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultTimeout bounds every backend call; timeouts surface as plain
// transport errors, never as an *Error.
const DefaultTimeout = 20 * time.Second

// TokenSource supplies the current bearer token; empty means unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenStore is a concurrency-safe TokenSource mutated only by the session
// manager.
type TokenStore struct {
	mu    sync.RWMutex
	token string
}

// Token returns the current bearer token.
func (t *TokenStore) Token() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.token
}

// Set replaces the current bearer token; empty clears it.
func (t *TokenStore) Set(token string) {
	t.mu.Lock()
	t.token = token
	t.mu.Unlock()
}

// Error is a non-2xx backend response. Detail carries the backend's "detail"
// field when present.
type Error struct {
	Status int
	Detail string
	Body   []byte
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.Status, e.Detail)
	}
	return fmt.Sprintf("api: request failed with status %d", e.Status)
}

// IsAuthError reports whether err is a backend response the session layer
// treats as "session no longer valid" (401/403/404/422).
func IsAuthError(err error) bool {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusNotFound, http.StatusUnprocessableEntity:
		return true
	}
	return false
}

// Client calls the session-scoped REST surface.
type Client struct {
	baseURL string
	httpc   *http.Client
	tokens  TokenSource
	timeout time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient swaps the underlying http.Client (tests).
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpc = h }
}

// New builds a client for baseURL; tokens may be nil for token-free use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{},
		tokens:  tokens,
		timeout: DefaultTimeout,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) do(ctx context.Context, method, path string, body, out any, skipAuth bool) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var rd io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(buf)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if !skipAuth && c.tokens != nil {
		if tok := c.tokens.Token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode, Body: raw}
		var detail struct {
			Detail string `json:"detail"`
		}
		if json.Unmarshal(raw, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// CreateSession opens a new backend session; it is the only unauthenticated call.
func (c *Client) CreateSession(ctx context.Context, body CreateSessionBody) (*SessionResponse, error) {
	if body.FormType == "" {
		body.FormType = "EWYP"
	}
	var out SessionResponse
	if err := c.do(ctx, http.MethodPost, "/sessions", body, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshSession re-validates an existing session and rotates its token.
func (c *Client) RefreshSession(ctx context.Context, sessionID string) (*SessionResponse, error) {
	var out SessionResponse
	if err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/refresh-token", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// CloseSession tells the backend the session is finished.
func (c *Client) CloseSession(ctx context.Context, sessionID string) (*CloseResponse, error) {
	var out CloseResponse
	if err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/close", nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidateForm runs semantic validation over the listed backend field paths.
func (c *Client) ValidateForm(ctx context.Context, sessionID string, body ValidateBody) (*ValidateResponse, error) {
	var out ValidateResponse
	if err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/validate", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitForm stores the payload as a new version.
func (c *Client) SubmitForm(ctx context.Context, sessionID string, body SubmitBody) (*SubmitResponse, error) {
	var out SubmitResponse
	if err := c.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/forms", body, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// History lists stored versions, newest first. Zero limit means backend default.
func (c *Client) History(ctx context.Context, sessionID string, limit, offset int) (*HistoryResponse, error) {
	path := "/sessions/" + url.PathEscape(sessionID) + "/history"
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
	if enc := q.Encode(); enc != "" {
		path += "?" + enc
	}
	var out HistoryResponse
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// FormVersion fetches one stored snapshot.
func (c *Client) FormVersion(ctx context.Context, sessionID string, version int64) (*SnapshotResponse, error) {
	var out SnapshotResponse
	path := fmt.Sprintf("/sessions/%s/forms/%d", url.PathEscape(sessionID), version)
	if err := c.do(ctx, http.MethodGet, path, nil, &out, false); err != nil {
		return nil, err
	}
	return &out, nil
}

// PDFURL builds the direct download URL for a version; it is never fetched
// by the client itself.
func (c *Client) PDFURL(sessionID string, version int64) string {
	return fmt.Sprintf("%s/sessions/%s/forms/%d/pdf", c.baseURL, url.PathEscape(sessionID), version)
}
