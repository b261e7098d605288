// Package pbclient is a minimal PocketBase REST client for operational tooling
// that runs outside the server process.
//
// Only the endpoints the ops commands need are covered: health, superuser
// auth, collection listing and creation, and record lookup and creation.
package pbclient

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

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds every request when no http.Client is supplied.
const DefaultTimeout = 30 * time.Second

// Client talks to one PocketBase instance.
type Client struct {
	baseURL string
	http    *http.Client
	logger  zerolog.Logger

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option { return func(c *Client) { c.http = h } }

// WithLogger sets the request logger.
func WithLogger(l zerolog.Logger) Option { return func(c *Client) { c.logger = l } }

// WithToken presets an auth token.
func WithToken(token string) Option { return func(c *Client) { c.token = token } }

// New returns a client for baseURL, e.g. http://127.0.0.1:8090.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the instance URL.
func (c *Client) BaseURL() string { return c.baseURL }

// Token returns the current auth token, empty when unauthenticated.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// APIError is a non-2xx PocketBase response.
type APIError struct {
	Status  int            `json:"status"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data"`
}

func (e *APIError) Error() string {
	if len(e.Data) == 0 {
		return fmt.Sprintf("pocketbase: %d %s", e.Status, e.Message)
	}
	detail, _ := json.Marshal(e.Data)
	return fmt.Sprintf("pocketbase: %d %s %s", e.Status, e.Message, detail)
}

// IsNotFound reports whether err is a 404 from PocketBase.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// IsUnauthorized reports whether err is a 401 or 403 from PocketBase.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden)
}

// Health calls /api/health.
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/api/health", nil, nil)
}

// AuthSuperuser authenticates against the _superusers collection and keeps
// the token for subsequent requests.
func (c *Client) AuthSuperuser(ctx context.Context, email, password string) error {
	var out struct {
		Token string `json:"token"`
	}
	body := map[string]string{"identity": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/collections/_superusers/auth-with-password", body, &out); err != nil {
		return fmt.Errorf("superuser auth: %w", err)
	}
	if out.Token == "" {
		return errors.New("superuser auth: empty token")
	}
	c.mu.Lock()
	c.token = out.Token
	c.mu.Unlock()
	return nil
}

// Collection is the subset of collection metadata the client reads.
type Collection struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	System bool   `json:"system"`
}

type page[T any] struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
	Items      []T `json:"items"`
}

const perPage = 200

// Collections lists every collection, following pagination.
func (c *Client) Collections(ctx context.Context) ([]Collection, error) {
	var all []Collection
	for p := 1; ; p++ {
		var res page[Collection]
		q := url.Values{"page": {strconv.Itoa(p)}, "perPage": {strconv.Itoa(perPage)}}
		if err := c.do(ctx, http.MethodGet, "/api/collections?"+q.Encode(), nil, &res); err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		if p >= res.TotalPages || len(res.Items) == 0 {
			return all, nil
		}
	}
}

// Collection fetches one collection by name or id.
func (c *Client) Collection(ctx context.Context, nameOrID string) (Collection, error) {
	var out Collection
	err := c.do(ctx, http.MethodGet, "/api/collections/"+url.PathEscape(nameOrID), nil, &out)
	return out, err
}

// CreateCollection posts a collection payload as produced by schema.Payload.
func (c *Client) CreateCollection(ctx context.Context, payload map[string]any) (Collection, error) {
	var out Collection
	err := c.do(ctx, http.MethodPost, "/api/collections", payload, &out)
	return out, err
}

// DeleteCollection removes a collection by name or id.
func (c *Client) DeleteCollection(ctx context.Context, nameOrID string) error {
	return c.do(ctx, http.MethodDelete, "/api/collections/"+url.PathEscape(nameOrID), nil, nil)
}

// Record is a PocketBase record as decoded JSON.
type Record map[string]any

// FirstRecord returns the first record of collection matching filter, or an
// *APIError with status 404 when there is none.
func (c *Client) FirstRecord(ctx context.Context, collection, filter string) (Record, error) {
	var res page[Record]
	q := url.Values{"page": {"1"}, "perPage": {"1"}, "skipTotal": {"1"}, "filter": {filter}}
	path := "/api/collections/" + url.PathEscape(collection) + "/records?" + q.Encode()
	if err := c.do(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	if len(res.Items) == 0 {
		return nil, &APIError{Status: http.StatusNotFound, Message: "no matching record"}
	}
	return res.Items[0], nil
}

// CreateRecord creates a record in collection.
func (c *Client) CreateRecord(ctx context.Context, collection string, body map[string]any) (Record, error) {
	var out Record
	path := "/api/collections/" + url.PathEscape(collection) + "/records"
	err := c.do(ctx, http.MethodPost, path, body, &out)
	return out, err
}

// Quote renders s as a double-quoted filter string literal.
func Quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(s) + `"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("pocketbase request")

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if len(data) > 0 {
			_ = json.Unmarshal(data, apiErr)
		}
		apiErr.Status = resp.StatusCode
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
