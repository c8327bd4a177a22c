package coqui_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/MrWong99/courtkiosk/pkg/audio"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts"
	"github.com/MrWong99/courtkiosk/pkg/provider/tts/coqui"
)

func halfSecondWAV(t *testing.T) []byte {
	t.Helper()
	data, err := audio.EncodeWAV(make([]int, 8000), 16000, 1, 16)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}
	return data
}

func TestSynthesize_Standard(t *testing.T) {
	t.Parallel()

	wav := halfSecondWAV(t)
	var gotText, gotLang, gotSpeaker string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/api/tts" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		gotText, gotLang, gotSpeaker = q.Get("text"), q.Get("language_id"), q.Get("speaker_id")
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(wav)
	}))
	defer srv.Close()

	s, err := coqui.New(srv.URL, coqui.WithSpeaker("hi", "p225"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	clip, err := s.Synthesize(context.Background(), "नमस्ते", "hi")
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if gotText != "नमस्ते" || gotLang != "hi" || gotSpeaker != "p225" {
		t.Errorf("server saw text=%q lang=%q speaker=%q", gotText, gotLang, gotSpeaker)
	}
	if clip.Duration != 500*time.Millisecond {
		t.Errorf("clip.Duration = %v, want 500ms", clip.Duration)
	}
	if clip.Language != "hi" || clip.ContentType != "audio/wav" {
		t.Errorf("clip = %+v", clip)
	}
}

func TestSynthesize_XTTS(t *testing.T) {
	t.Parallel()

	wav := halfSecondWAV(t)
	var got struct {
		Text       string `json:"text"`
		SpeakerWav string `json:"speaker_wav"`
		Language   string `json:"language"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/tts_to_audio/" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Write(wav)
	}))
	defer srv.Close()

	s, err := coqui.New(srv.URL, coqui.WithAPIMode(coqui.APIModeXTTS), coqui.WithSpeaker("", "narrator"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Synthesize(context.Background(), "Case not found.", "en"); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if got.Text != "Case not found." || got.SpeakerWav != "narrator" || got.Language != "en" {
		t.Errorf("server saw %+v", got)
	}
}

func TestSynthesize_Errors(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s, _ := coqui.New(srv.URL)
	if _, err := s.Synthesize(context.Background(), "hello", "en"); err == nil {
		t.Error("Synthesize on 500: want error, got nil")
	}
	if _, err := s.Synthesize(context.Background(), "  ", "en"); !errors.Is(err, tts.ErrEmptyText) {
		t.Errorf("Synthesize(blank): err = %v, want ErrEmptyText", err)
	}
	if _, err := coqui.New(srv.URL, coqui.WithAPIMode("bogus")); err == nil {
		t.Error("New with unknown mode: want error, got nil")
	}
}
