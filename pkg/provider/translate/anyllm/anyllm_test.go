package anyllm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
)

func TestSystemPrompt(t *testing.T) {
	t.Parallel()

	p := systemPrompt("en", "pa")
	if !strings.Contains(p, "English") || !strings.Contains(p, "Punjabi") {
		t.Errorf("systemPrompt(en, pa) = %q, want language names", p)
	}
	if got := languageName("fr"); got != "fr" {
		t.Errorf("languageName(fr) = %q, want the code back", got)
	}
}

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	if _, err := New("", "m"); err == nil {
		t.Error("New with empty provider: want error")
	}
	if _, err := New("openai", ""); err == nil {
		t.Error("New with empty model: want error")
	}
	if _, err := New("carrier-pigeon", "m"); err == nil {
		t.Error("New with unknown provider: want error")
	}
}

func TestFactory_RejectsSamePair(t *testing.T) {
	t.Parallel()

	f := &Factory{model: "m"}
	if _, err := f.New("hi", "hi"); !errors.Is(err, translate.ErrUnsupportedPair) {
		t.Errorf("New(hi, hi): err = %v, want ErrUnsupportedPair", err)
	}
}

func TestTranslate_OpenAICompatible(t *testing.T) {
	t.Parallel()

	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role string `json:"role"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"c1","object":"chat.completion","created":1,"model":"m",
			"choices":[{"index":0,"finish_reason":"stop","message":{"role":"assistant","content":" केस नहीं मिला। "}}]}`))
	}))
	defer srv.Close()

	f, err := New("openai", "m", anyllmlib.WithAPIKey("k"), anyllmlib.WithBaseURL(srv.URL))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tr, err := f.New("en", "hi")
	if err != nil {
		t.Fatalf("Factory.New: %v", err)
	}
	out, err := tr.Translate(context.Background(), "Case not found.")
	if err != nil {
		t.Fatalf("Translate: %v", err)
	}
	if out != "केस नहीं मिला।" {
		t.Errorf("Translate = %q", out)
	}
	if got.Model != "m" || len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Role != "user" {
		t.Errorf("request = %+v", got)
	}
}
