// Package libre provides translators backed by a LibreTranslate server
// (POST /translate).
//
// Usage:
//
//	f, err := libre.New("http://localhost:5000", libre.WithAPIKey("..."))
//	t, err := f.New("en", "pa")
//	out, err := t.Translate(ctx, "Case not found.")
package libre

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

	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
)

const (
	translateEndpoint = "/translate"
	defaultTimeout    = 15 * time.Second
)

var (
	_ translate.Factory    = (*Factory)(nil)
	_ translate.Translator = (*translator)(nil)
)

// Option is a functional option for configuring a Factory.
type Option func(*Factory)

// WithAPIKey sets the api_key sent with every request.
func WithAPIKey(key string) Option {
	return func(f *Factory) { f.apiKey = key }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Factory) { f.httpClient = c }
}

// Factory creates LibreTranslate translators. It is safe for concurrent use.
type Factory struct {
	serverURL  string
	apiKey     string
	httpClient *http.Client
}

// New returns a Factory for the server at serverURL.
func New(serverURL string, opts ...Option) (*Factory, error) {
	if serverURL == "" {
		return nil, errors.New("libre: serverURL must not be empty")
	}
	f := &Factory{
		serverURL:  strings.TrimRight(serverURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(f)
	}
	return f, nil
}

// New implements translate.Factory.
func (f *Factory) New(source, target string) (translate.Translator, error) {
	if source == "" || target == "" {
		return nil, fmt.Errorf("libre: %w: %q->%q", translate.ErrUnsupportedPair, source, target)
	}
	return &translator{f: f, source: source, target: target}, nil
}

type translator struct {
	f      *Factory
	source string
	target string
}

type request struct {
	Q      string `json:"q"`
	Source string `json:"source"`
	Target string `json:"target"`
	Format string `json:"format"`
	APIKey string `json:"api_key,omitempty"`
}

type response struct {
	TranslatedText string `json:"translatedText"`
	Error          string `json:"error"`
}

func (t *translator) Translate(ctx context.Context, text string) (string, error) {
	body, err := json.Marshal(request{Q: text, Source: t.source, Target: t.target, Format: "text", APIKey: t.f.apiKey})
	if err != nil {
		return "", fmt.Errorf("libre: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.f.serverURL+translateEndpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("libre: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("libre: POST %s: %w", translateEndpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("libre: read response: %w", err)
	}
	var out response
	if err := json.Unmarshal(data, &out); err != nil {
		return "", fmt.Errorf("libre: parse response (HTTP %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("libre: POST %s returned status %d: %s", translateEndpoint, resp.StatusCode, out.Error)
	}
	return out.TranslatedText, nil
}
