package whisper_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/MrWong99/courtkiosk/pkg/provider/stt"
	"github.com/MrWong99/courtkiosk/pkg/provider/stt/whisper"
)

func TestNew_EmptyURL(t *testing.T) {
	t.Parallel()

	if _, err := whisper.New(""); err == nil {
		t.Fatal("New(\"\"): want error, got nil")
	}
}

func TestRecognize(t *testing.T) {
	t.Parallel()

	var gotLang, gotModel string
	var gotFile []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/inference" {
			http.Error(w, "wrong route", http.StatusNotFound)
			return
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotLang = r.FormValue("language")
		gotModel = r.FormValue("model")
		f, _, err := r.FormFile("file")
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotFile, _ = io.ReadAll(f)
		fmt.Fprint(w, `{"text":" CWP 1234 \n"}`)
	}))
	defer srv.Close()

	r, err := whisper.New(srv.URL+"/", whisper.WithModel("small"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	text, err := r.Recognize(context.Background(), stt.Capture{WAV: []byte("RIFFdata")}, "pa")
	if err != nil {
		t.Fatalf("Recognize: %v", err)
	}
	if text != "CWP 1234" {
		t.Errorf("Recognize = %q, want %q", text, "CWP 1234")
	}
	if gotLang != "pa" || gotModel != "small" || string(gotFile) != "RIFFdata" {
		t.Errorf("server saw language=%q model=%q file=%q", gotLang, gotModel, gotFile)
	}
}

func TestRecognize_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"blank audio", http.StatusOK, `{"text":"[BLANK_AUDIO]"}`, stt.ErrUnrecognized},
		{"empty", http.StatusOK, `{"text":""}`, stt.ErrUnrecognized},
		{"server error", http.StatusInternalServerError, `oops`, stt.ErrServiceUnavailable},
		{"bad request", http.StatusBadRequest, `bad`, stt.ErrUnrecognized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			r, _ := whisper.New(srv.URL)
			_, err := r.Recognize(context.Background(), stt.Capture{WAV: []byte("x")}, "en")
			if !errors.Is(err, tt.want) {
				t.Errorf("Recognize: err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestRecognize_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	r, _ := whisper.New(url)
	_, err := r.Recognize(context.Background(), stt.Capture{WAV: []byte("x")}, "en")
	if !errors.Is(err, stt.ErrServiceUnavailable) {
		t.Errorf("Recognize: err = %v, want ErrServiceUnavailable", err)
	}
}
