package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/merchke/storefront/internal/storage"
	"github.com/merchke/storefront/types"
	"github.com/sirupsen/logrus"
)

// HeaderSessionID carries the guest session id when no token is stored.
const HeaderSessionID = "X-Session-ID"

const maxErrorBody = 64 << 10

// authEndpoints are the routes whose 401 means the stored token is dead.
// A 401 anywhere else, e.g. an optional cart migration, keeps the token.
var authEndpoints = []string{
	"/api/auth/login",
	"/api/auth/register",
	"/api/auth/profile",
}

// Options configures a Client.
type Options struct {
	BaseURL string

	// HTTPClient defaults to a client with Timeout (zero means none).
	HTTPClient *http.Client
	Timeout    time.Duration

	Logger logrus.FieldLogger

	// OnAuthExpired runs after an auth endpoint answered 401 and the token
	// was cleared. Front ends use it to send the user to the login page.
	OnAuthExpired func(ctx context.Context)

	// Now is used to timestamp guest session ids.
	Now func() time.Time
}

// Client is the single configured entry point to the backend API.
type Client struct {
	baseURL       string
	httpClient    *http.Client
	creds         *Credentials
	log           logrus.FieldLogger
	onAuthExpired func(ctx context.Context)
}

// New constructs a Client whose credentials persist in store.
func New(store *storage.Storage, opts Options) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if base == "" {
		return nil, errors.New("api base url is required")
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("invalid api base url: %w", err)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger := opts.Logger
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Client{
		baseURL:       base,
		httpClient:    httpClient,
		creds:         newCredentials(store, opts.Now),
		log:           logger,
		onAuthExpired: opts.OnAuthExpired,
	}, nil
}

// Credentials exposes the token and guest session id accessors.
func (c *Client) Credentials() *Credentials {
	return c.creds
}

// RequestOption adjusts a single request.
type RequestOption func(*requestOptions)

type requestOptions struct {
	withGuestSession bool
}

// WithGuestSession sends the guest session id even when a token is
// attached, so the backend can find the guest's cart.
func WithGuestSession() RequestOption {
	return func(o *requestOptions) {
		o.withGuestSession = true
	}
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do performs one request. body is JSON encoded when non-nil and the
// response is decoded into out when out is non-nil. Non-2xx responses
// return *APIError; transport failures return *NetworkError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s request: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create %s %s request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	if err := c.attachCredentials(ctx, req, ro); err != nil {
		return err
	}

	entry := c.log.WithFields(logrus.Fields{"method": method, "path": path})
	start := time.Now()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		entry.WithError(err).Warn("api request failed")
		return &NetworkError{Method: method, URL: req.URL.String(), Err: err}
	}
	defer resp.Body.Close()

	entry = entry.WithFields(logrus.Fields{
		"status":   resp.StatusCode,
		"duration": time.Since(start).String(),
	})
	entry.Debug("api request")

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := decodeError(resp, method, path)
		if resp.StatusCode == http.StatusUnauthorized {
			c.handleUnauthorized(ctx, path)
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return nil
}

func (c *Client) attachCredentials(ctx context.Context, req *http.Request, ro requestOptions) error {
	token, err := c.creds.Token(ctx)
	if err != nil {
		return err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
		if !ro.withGuestSession {
			return nil
		}
		// Only forward an id that already exists; never mint one for a
		// signed-in user.
		sessionID, err := c.creds.get(ctx, SessionIDKey)
		if err != nil {
			return err
		}
		if sessionID != "" {
			req.Header.Set(HeaderSessionID, sessionID)
		}
		return nil
	}

	sessionID, err := c.creds.SessionID(ctx)
	if err != nil {
		return err
	}
	req.Header.Set(HeaderSessionID, sessionID)
	return nil
}

func (c *Client) handleUnauthorized(ctx context.Context, path string) {
	entry := c.log.WithField("path", path)
	if !isAuthEndpoint(path) {
		entry.Info("401 from non-auth endpoint, keeping token")
		return
	}

	entry.Warn("401 from auth endpoint, clearing token")
	if err := c.creds.ClearToken(ctx); err != nil {
		entry.WithError(err).Error("failed to clear token")
	}
	if c.onAuthExpired != nil {
		c.onAuthExpired(ctx)
	}
}

func isAuthEndpoint(path string) bool {
	if i := strings.IndexAny(path, "?#"); i >= 0 {
		path = path[:i]
	}
	for _, endpoint := range authEndpoints {
		if path == endpoint || strings.HasPrefix(path, endpoint+"/") {
			return true
		}
	}
	return false
}

func decodeError(resp *http.Response, method, path string) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Method: method, Path: path}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(data) == 0 {
		return apiErr
	}

	var payload types.ErrorResponse
	if err := json.Unmarshal(data, &payload); err == nil && payload.Error != "" {
		apiErr.Message = payload.Error
		apiErr.Details = payload.Details
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}
