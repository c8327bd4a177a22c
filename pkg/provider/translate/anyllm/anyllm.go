// Package anyllm provides translators backed by a chat model through
// github.com/mozilla-ai/any-llm-go, which speaks to OpenAI, Anthropic, Gemini,
// Ollama, DeepSeek, Mistral, Groq, llama.cpp and llamafile.
//
// Usage:
//
//	f, err := anyllm.New("ollama", "llama3.1", anyllmlib.WithBaseURL("http://localhost:11434"))
//	t, err := f.New("en", "hi")
package anyllm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/mozilla-ai/any-llm-go/providers/anthropic"
	"github.com/mozilla-ai/any-llm-go/providers/deepseek"
	"github.com/mozilla-ai/any-llm-go/providers/gemini"
	"github.com/mozilla-ai/any-llm-go/providers/groq"
	"github.com/mozilla-ai/any-llm-go/providers/llamacpp"
	"github.com/mozilla-ai/any-llm-go/providers/llamafile"
	"github.com/mozilla-ai/any-llm-go/providers/mistral"
	"github.com/mozilla-ai/any-llm-go/providers/ollama"
	anyllmoai "github.com/mozilla-ai/any-llm-go/providers/openai"

	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
)

var (
	_ translate.Factory    = (*Factory)(nil)
	_ translate.Translator = (*translator)(nil)
)

// languageNames are used in the prompt; models follow names more reliably
// than codes.
var languageNames = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"pa": "Punjabi (Gurmukhi script)",
}

// Factory creates LLM-backed translators.
type Factory struct {
	backend anyllmlib.Provider
	model   string
}

// New creates a Factory for the given backend.
//
// providerName is one of: "openai", "anthropic", "gemini", "ollama",
// "deepseek", "mistral", "groq", "llamacpp", "llamafile". Without an API key
// option each backend reads its usual environment variable.
func New(providerName, model string, opts ...anyllmlib.Option) (*Factory, error) {
	if providerName == "" {
		return nil, errors.New("anyllm translate: providerName must not be empty")
	}
	if model == "" {
		return nil, errors.New("anyllm translate: model must not be empty")
	}
	backend, err := createBackend(providerName, opts...)
	if err != nil {
		return nil, fmt.Errorf("anyllm translate: create %q backend: %w", providerName, err)
	}
	return &Factory{backend: backend, model: model}, nil
}

func createBackend(providerName string, opts ...anyllmlib.Option) (anyllmlib.Provider, error) {
	switch strings.ToLower(providerName) {
	case "openai":
		return anyllmoai.New(opts...)
	case "anthropic":
		return anthropic.New(opts...)
	case "gemini":
		return gemini.New(opts...)
	case "ollama":
		return ollama.New(opts...)
	case "deepseek":
		return deepseek.New(opts...)
	case "mistral":
		return mistral.New(opts...)
	case "groq":
		return groq.New(opts...)
	case "llamacpp":
		return llamacpp.New(opts...)
	case "llamafile":
		return llamafile.New(opts...)
	default:
		return nil, fmt.Errorf("unsupported provider %q; supported: openai, anthropic, gemini, ollama, deepseek, mistral, groq, llamacpp, llamafile", providerName)
	}
}

// New implements translate.Factory.
func (f *Factory) New(source, target string) (translate.Translator, error) {
	if source == "" || target == "" || source == target {
		return nil, fmt.Errorf("anyllm translate: %w: %q->%q", translate.ErrUnsupportedPair, source, target)
	}
	return &translator{f: f, prompt: systemPrompt(source, target)}, nil
}

func languageName(code string) string {
	if n, ok := languageNames[code]; ok {
		return n
	}
	return code
}

// systemPrompt instructs the model to act as a plain translation function.
func systemPrompt(source, target string) string {
	return fmt.Sprintf(
		"You translate court kiosk announcements from %s to %s. "+
			"Reply with the translation only. Keep case numbers, names and dates unchanged.",
		languageName(source), languageName(target))
}

type translator struct {
	f      *Factory
	prompt string
}

func (t *translator) Translate(ctx context.Context, text string) (string, error) {
	resp, err := t.f.backend.Completion(ctx, anyllmlib.CompletionParams{
		Model: t.f.model,
		Messages: []anyllmlib.Message{
			{Role: anyllmlib.RoleSystem, Content: t.prompt},
			{Role: anyllmlib.RoleUser, Content: text},
		},
	})
	if err != nil {
		return "", fmt.Errorf("anyllm translate: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("anyllm translate: empty choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.ContentString()), nil
}
