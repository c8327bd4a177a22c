// Package openai provides a speech recognizer backed by the OpenAI audio
// transcription API (or any server exposing the same endpoint).
package openai

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
)

const defaultModel = oai.AudioModelWhisper1

var _ stt.Recognizer = (*Recognizer)(nil)

// Recognizer implements stt.Recognizer using POST /audio/transcriptions.
type Recognizer struct {
	client oai.Client
	model  oai.AudioModel
}

type config struct {
	baseURL string
	timeout time.Duration
}

// Option is a functional option for Recognizer.
type Option func(*config)

// WithBaseURL overrides the default OpenAI API base URL.
func WithBaseURL(url string) Option {
	return func(c *config) { c.baseURL = url }
}

// WithTimeout sets a per-request HTTP timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) { c.timeout = d }
}

// New constructs a Recognizer. An empty model selects whisper-1.
func New(apiKey, model string, opts ...Option) (*Recognizer, error) {
	if apiKey == "" {
		return nil, errors.New("openai stt: apiKey must not be empty")
	}
	cfg := &config{}
	for _, o := range opts {
		o(cfg)
	}
	reqOpts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if cfg.baseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.baseURL))
	}
	if cfg.timeout > 0 {
		reqOpts = append(reqOpts, option.WithHTTPClient(&http.Client{Timeout: cfg.timeout}))
	}
	m := oai.AudioModel(model)
	if model == "" {
		m = defaultModel
	}
	return &Recognizer{client: oai.NewClient(reqOpts...), model: m}, nil
}

// namedWAV lets the multipart encoder name the upload.
type namedWAV struct{ *bytes.Reader }

func (namedWAV) Filename() string    { return "capture.wav" }
func (namedWAV) Name() string        { return "capture.wav" }
func (namedWAV) ContentType() string { return "audio/wav" }

// Recognize implements stt.Recognizer.
func (r *Recognizer) Recognize(ctx context.Context, c stt.Capture, language string) (string, error) {
	params := oai.AudioTranscriptionNewParams{
		File:  namedWAV{bytes.NewReader(c.WAV)},
		Model: r.model,
	}
	if language != "" {
		params.Language = oai.String(language)
	}
	res, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai stt: transcribe: %w", classify(err))
	}
	text := strings.TrimSpace(res.Text)
	if text == "" {
		return "", stt.ErrUnrecognized
	}
	return text, nil
}

// classify attaches the matching stt sentinel to an API error.
func classify(err error) error {
	var apiErr *oai.Error
	if errors.As(err, &apiErr) && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
		return fmt.Errorf("%w: %w", stt.ErrUnrecognized, err)
	}
	return fmt.Errorf("%w: %w", stt.ErrServiceUnavailable, err)
}
