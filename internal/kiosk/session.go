package kiosk

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/MrWong99/courtkiosk/pkg/caseid"
	"github.com/MrWong99/courtkiosk/pkg/provider/translate"
)

// sourceLanguage is the language prompts and narrations are written in.
const sourceLanguage = caseid.English

// maxParallelTranslations bounds prompt pre-translation.
const maxParallelTranslations = 4

// Session is one visitor conversation. It owns the translator handles, so
// nothing translated for one visitor leaks into the next.
type Session struct {
	ID        string
	StartedAt time.Time

	translations *translate.Cache

	mu       sync.Mutex
	language caseid.Language
	prepared map[string]string
}

func newSession(f translate.Factory, lang caseid.Language) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now().UTC(),
		language:  lang,
		prepared:  make(map[string]string),
	}
	if f != nil {
		s.translations = translate.NewCache(f)
	}
	return s
}

// Language returns the conversation language, empty until chosen.
func (s *Session) Language() caseid.Language {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

func (s *Session) setLanguage(l caseid.Language) {
	s.mu.Lock()
	s.language = l
	s.mu.Unlock()
}

// text returns text in the session language, from the prepared set when
// available.
func (s *Session) text(ctx context.Context, text string) string {
	lang := s.Language()
	if lang == "" || lang == sourceLanguage {
		return text
	}
	s.mu.Lock()
	out, ok := s.prepared[text]
	s.mu.Unlock()
	if ok {
		return out
	}
	out, _ = s.translations.Text(ctx, text, string(sourceLanguage), string(lang))
	return out
}

// prepare translates texts into the session language in parallel.
func (s *Session) prepare(ctx context.Context, texts ...string) error {
	lang := s.Language()
	if lang == "" || lang == sourceLanguage || s.translations == nil {
		return nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelTranslations)
	for _, text := range texts {
		g.Go(func() error {
			out, ok := s.translations.Text(gctx, text, string(sourceLanguage), string(lang))
			if !ok {
				return nil
			}
			s.mu.Lock()
			s.prepared[text] = out
			s.mu.Unlock()
			return gctx.Err()
		})
	}
	return g.Wait()
}
