// Package api is a typed binding to the Atharva backend's REST surface.
// Every method performs exactly one round trip; there are no retries and no caching.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/atharva-labs/atharva-cli/internal/errs"
)

// APIError is a structured failure carrying the HTTP status and the
// backend-provided message or field-level detail.
type APIError struct {
	Status  int
	Message string
	Fields  map[string][]string
}

func (e *APIError) Error() string {
	if len(e.Fields) == 0 {
		return fmt.Sprintf("api: %d %s", e.Status, e.Message)
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], "; "))
	}
	return fmt.Sprintf("api: %d %s", e.Status, strings.Join(parts, ", "))
}

// Is maps HTTP status classes onto the shared sentinels for errors.Is checks.
func (e *APIError) Is(target error) bool {
	switch target {
	case errs.ErrUnauthorized:
		return e.Status == http.StatusUnauthorized
	case errs.ErrNotFound:
		return e.Status == http.StatusNotFound
	case errs.ErrAlreadyExists:
		return e.Status == http.StatusConflict
	case errs.ErrValidation:
		return e.Status == http.StatusBadRequest
	}
	return false
}

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. http://127.0.0.1:8000/api.
	BaseURL string
	// Timeout bounds every round trip; zero disables the client-side deadline.
	Timeout time.Duration
	// Tokens supplies the bearer credential; may be nil for an anonymous client.
	Tokens TokenSource
	// OnUnauthorized runs once per 401 response, before the error is returned.
	OnUnauthorized func()
	Logger         *zap.Logger
}

// Client is the API gateway client. It is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
}

// New constructs a Client with the bearer-injecting transport.
func New(opts Options) *Client {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http: &http.Client{
			Timeout: opts.Timeout,
			Transport: &authTransport{
				base:           http.DefaultTransport,
				tokens:         opts.Tokens,
				onUnauthorized: opts.OnUnauthorized,
			},
		},
		log: log,
	}
}

// do runs a single JSON round trip. A non-2xx status decodes into *APIError.
func (c *Client) do(ctx context.Context, method, path string, headers map[string]string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		apiErr := decodeAPIError(resp)
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return apiErr
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// decodeAPIError shapes a backend failure body. The backend answers either
// {"detail": "..."} / {"error": "..."} or a field map {"field": ["msg", ...]}.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	b, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil || len(b) == 0 {
		return apiErr
	}

	var top struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(b, &top) == nil {
		if top.Detail != "" {
			apiErr.Message = top.Detail
			return apiErr
		}
		if top.Error != "" {
			apiErr.Message = top.Error
			return apiErr
		}
	}

	var fields map[string][]string
	if json.Unmarshal(b, &fields) == nil && len(fields) > 0 {
		apiErr.Fields = fields
		apiErr.Message = "validation failed"
	}
	return apiErr
}
