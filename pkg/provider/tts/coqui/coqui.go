// Package coqui provides a Synthesizer backed by a Coqui TTS server.
//
// Two API modes are supported:
//
//   - APIModeStandard (default): the standard Coqui TTS server
//     (ghcr.io/coqui-ai/tts-cpu). Synthesis is GET /api/tts with URL query
//     parameters.
//
//   - APIModeXTTS: the Coqui XTTS v2 API server. Synthesis is
//     POST /tts_to_audio/ with a JSON body; multilingual, so one server can
//     speak English, Hindi and Punjabi prompts.
//
// Typical usage:
//
//	s, err := coqui.New("http://localhost:5002",
//	    coqui.WithSpeaker("hi", "female-1"),
//	    coqui.WithTimeout(15*time.Second),
//	)
//	clip, err := s.Synthesize(ctx, "नमस्ते", "hi")
package coqui

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

	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
)

var _ tts.Synthesizer = (*Synthesizer)(nil)

const (
	apiTTSEndpoint  = "/api/tts"
	xttsEndpoint    = "/tts_to_audio/"
	defaultTimeout  = 30 * time.Second
	maxResponseSize = 32 << 20
)

// APIMode selects the server flavour.
type APIMode string

// Supported API modes.
const (
	APIModeStandard APIMode = "standard"
	APIModeXTTS     APIMode = "xtts"
)

// Option is a functional option for configuring a Synthesizer.
type Option func(*Synthesizer)

// WithAPIMode selects the server API. Defaults to APIModeStandard.
func WithAPIMode(mode APIMode) Option {
	return func(s *Synthesizer) { s.mode = mode }
}

// WithSpeaker sets the speaker used for one language. An empty language sets
// the fallback speaker.
func WithSpeaker(language, speaker string) Option {
	return func(s *Synthesizer) { s.speakers[language] = speaker }
}

// WithTimeout sets the HTTP timeout per request. Defaults to 30s.
func WithTimeout(d time.Duration) Option {
	return func(s *Synthesizer) { s.httpClient.Timeout = d }
}

// Synthesizer implements tts.Synthesizer against a Coqui server.
type Synthesizer struct {
	serverURL  string
	mode       APIMode
	speakers   map[string]string
	httpClient *http.Client
}

// New creates a Synthesizer for the server at serverURL.
func New(serverURL string, opts ...Option) (*Synthesizer, error) {
	if serverURL == "" {
		return nil, errors.New("coqui: serverURL must not be empty")
	}
	s := &Synthesizer{
		serverURL:  strings.TrimRight(serverURL, "/"),
		mode:       APIModeStandard,
		speakers:   make(map[string]string),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, o := range opts {
		o(s)
	}
	if s.mode != APIModeStandard && s.mode != APIModeXTTS {
		return nil, fmt.Errorf("coqui: unknown api mode %q", s.mode)
	}
	return s, nil
}

func (s *Synthesizer) speaker(language string) string {
	if v, ok := s.speakers[language]; ok {
		return v
	}
	return s.speakers[""]
}

// Synthesize implements tts.Synthesizer.
func (s *Synthesizer) Synthesize(ctx context.Context, text, language string) (*audio.Clip, error) {
	if strings.TrimSpace(text) == "" {
		return nil, tts.ErrEmptyText
	}
	var (
		req *http.Request
		err error
	)
	if s.mode == APIModeXTTS {
		req, err = s.xttsRequest(ctx, text, language)
	} else {
		req, err = s.standardRequest(ctx, text, language)
	}
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "audio/wav")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coqui: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("coqui: %s %s returned status %d", req.Method, req.URL.Path, resp.StatusCode)
	}
	wav, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("coqui: read WAV response: %w", err)
	}
	return tts.NewWAVClip(wav, text, language), nil
}

func (s *Synthesizer) standardRequest(ctx context.Context, text, language string) (*http.Request, error) {
	params := url.Values{}
	params.Set("text", text)
	if sp := s.speaker(language); sp != "" {
		params.Set("speaker_id", sp)
	}
	if language != "" {
		params.Set("language_id", language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.serverURL+apiTTSEndpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("coqui: create tts request: %w", err)
	}
	return req, nil
}

type xttsRequest struct {
	Text       string `json:"text"`
	SpeakerWav string `json:"speaker_wav"`
	Language   string `json:"language"`
}

func (s *Synthesizer) xttsRequest(ctx context.Context, text, language string) (*http.Request, error) {
	data, err := json.Marshal(xttsRequest{Text: text, SpeakerWav: s.speaker(language), Language: language})
	if err != nil {
		return nil, fmt.Errorf("coqui: marshal tts request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.serverURL+xttsEndpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("coqui: create tts request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}
