package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

var (
	_ Store  = (*HTTPStore)(nil)
	_ Pinger = (*HTTPStore)(nil)
)

// HTTPStoreOption configures an [HTTPStore].
type HTTPStoreOption func(*HTTPStore)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) HTTPStoreOption {
	return func(s *HTTPStore) { s.client = c }
}

// HTTPStore queries a case service at GET {base}/cases/{id}.
type HTTPStore struct {
	base   string
	client *http.Client
}

// NewHTTPStore returns a store for the service at baseURL.
func NewHTTPStore(baseURL string, opts ...HTTPStoreOption) (*HTTPStore, error) {
	if baseURL == "" {
		return nil, errors.New("records: http store: base URL must not be empty")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, fmt.Errorf("records: http store: parse base URL: %w", err)
	}
	s := &HTTPStore{
		base:   strings.TrimRight(baseURL, "/"),
		client: &http.Client{Timeout: 10 * time.Second},
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Lookup implements [Store].
func (s *HTTPStore) Lookup(ctx context.Context, id string) (*Record, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, fmt.Errorf("records: empty identifier: %w", ErrNotFound)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/cases/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, fmt.Errorf("records: http store: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("records: http store: GET %s: %w: %w", id, ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("records: http store: %q: %w", id, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("records: http store: GET %s returned %d: %s: %w",
			id, resp.StatusCode, strings.TrimSpace(string(body)), ErrUnavailable)
	}

	var rec Record
	if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
		return nil, fmt.Errorf("records: http store: decode %q: %w", id, err)
	}
	return &rec, nil
}

// Ping implements [Pinger]. Any HTTP response counts as reachable.
func (s *HTTPStore) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/cases/", nil)
	if err != nil {
		return fmt.Errorf("records: http store: ping: %w", err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("records: http store: ping: %w", err)
	}
	_ = resp.Body.Close()
	return nil
}
