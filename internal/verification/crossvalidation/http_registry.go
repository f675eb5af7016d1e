package crossvalidation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const maxRegistryResponse = 64 << 10

// HTTPRegistry posts the subject as JSON to a registry endpoint and decodes
// a RegistryResponse.
type HTTPRegistry struct {
	name   string
	url    string
	apiKey string
	client *http.Client
}

type HTTPOption func(*HTTPRegistry)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(r *HTTPRegistry) {
		r.client = c
	}
}

func WithAPIKey(key string) HTTPOption {
	return func(r *HTTPRegistry) {
		r.apiKey = key
	}
}

func NewHTTPRegistry(name, url string, opts ...HTTPOption) (*HTTPRegistry, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("registry name is required")
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return nil, fmt.Errorf("registry %s: url must be http(s): %q", name, url)
	}
	r := &HTTPRegistry{
		name: name,
		url:  url,
		// The orchestrator sets the real deadline per call.
		client: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *HTTPRegistry) Name() string { return r.name }

func (r *HTTPRegistry) Validate(ctx context.Context, subject Subject) (*RegistryResponse, error) {
	body, err := json.Marshal(subject)
	if err != nil {
		return nil, NewRegistryError(ErrorInternal, r.name, "encode request", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
	if err != nil {
		return nil, NewRegistryError(ErrorInternal, r.name, "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if r.apiKey != "" {
		req.Header.Set("X-API-Key", r.apiKey)
	}

	resp, err := r.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewRegistryError(ErrorTimeout, r.name, "request timed out", context.DeadlineExceeded)
		}
		return nil, NewRegistryError(ErrorOutage, r.name, "request failed", err)
	}
	defer resp.Body.Close()

	if category, failed := categorizeStatus(resp.StatusCode); failed {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxRegistryResponse))
		return nil, NewRegistryError(category, r.name, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var out RegistryResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxRegistryResponse)).Decode(&out); err != nil {
		return nil, NewRegistryError(ErrorBadData, r.name, "decode response", err)
	}
	if out.Confidence < 0 || out.Confidence > 1 {
		return nil, NewRegistryError(ErrorBadData, r.name, fmt.Sprintf("confidence %v out of range", out.Confidence), nil)
	}
	return &out, nil
}

func categorizeStatus(code int) (ErrorCategory, bool) {
	switch {
	case code >= 200 && code < 300:
		return "", false
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return ErrorAuthentication, true
	case code == http.StatusNotFound:
		return ErrorNotFound, true
	case code == http.StatusTooManyRequests:
		return ErrorRateLimited, true
	case code == http.StatusGatewayTimeout || code == http.StatusRequestTimeout:
		return ErrorTimeout, true
	case code >= 500:
		return ErrorOutage, true
	default:
		return ErrorBadData, true
	}
}
