package kiosk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/MrWong99/courtkiosk/internal/choice"
	"github.com/MrWong99/courtkiosk/internal/dictation"
	"github.com/MrWong99/courtkiosk/internal/observe"
	"github.com/MrWong99/courtkiosk/internal/records"
	"github.com/MrWong99/courtkiosk/pkg/caseid"
)

// Spoken prompts, written in English and translated per session.
const (
	PromptLanguage    = "Kindly select a language. I could understand three languages, Punjabi, English and Hindi. Speak anyone of them."
	PromptMenu        = "Kindly tell me, how would you like to get the details? 1. Case Search 2. Judgment Search 3. Filing Search"
	PromptCaseNumber  = "Kindly speak case number."
	PromptRepeat      = "Sorry, please say that again."
	PromptNoCase      = "No case found."
	PromptUnavailable = "The case records service is not available right now. Please try again later."

	promptSelectedFmt   = "Congrates you selected %s language."
	promptNoLanguage    = "You did not select any language. So by default I will continue with %s language."
	promptSearchFmt     = "Ok. You want to make a search by %s."
	promptCaseNumberFmt = "Your case number is %s."
)

// Conversation outcomes, also used as metric labels.
const (
	OutcomeNarrated    = "narrated"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeNoCase      = "no_case"
	OutcomeDictation   = "dictation_failed"
	OutcomeCancelled   = "cancelled"
)

var languageNames = map[caseid.Language]string{
	caseid.English: "english",
	caseid.Hindi:   "hindi",
	caseid.Punjabi: "punjabi",
}

var searchNames = map[string]string{
	choice.CaseSearch:     "case search",
	choice.JudgmentSearch: "judgment search",
	choice.FilingSearch:   "filing search",
}

// Result summarises a finished conversation.
type Result struct {
	SessionID  string
	Language   caseid.Language
	Search     string
	Identifier caseid.Identifier
	Record     *records.Record
	Outcome    string
}

func (k *Kiosk) converse(ctx context.Context, sess *Session) (res *Result, err error) {
	res = &Result{SessionID: sess.ID}
	ctx, span := observe.StartConversation(ctx, sess.ID, string(sess.Language()))
	log := observe.LoggerFrom(ctx, k.log)
	defer func() {
		if ctx.Err() != nil {
			res.Outcome = OutcomeCancelled
		}
		res.Language = sess.Language()
		span.SetAttributes(
			observe.AttrOutcome.String(res.Outcome),
			observe.AttrLanguage.String(string(res.Language)),
		)
		observe.EndSpan(span, err)
		k.metrics.RecordConversation(context.WithoutCancel(ctx), res.Outcome)
		k.feed.Status(context.WithoutCancel(ctx), "")
	}()

	if sess.Language() == "" {
		k.chooseLanguage(ctx, sess)
		if err := ctx.Err(); err != nil {
			return res, err
		}
	}
	log.Info("kiosk: conversation language", "lang", sess.Language())

	if err := sess.prepare(ctx, PromptMenu, PromptCaseNumber, PromptRepeat, PromptNoCase,
		PromptUnavailable, records.NotFoundText); err != nil {
		return res, err
	}

	res.Search = k.chooseSearch(ctx, sess)
	if err := ctx.Err(); err != nil {
		return res, err
	}
	if res.Search != choice.CaseSearch {
		k.speak(ctx, sess, PromptNoCase)
		res.Outcome = OutcomeNoCase
		return res, nil
	}

	k.speak(ctx, sess, PromptCaseNumber)
	id, err := k.dictate(ctx, sess)
	if err != nil {
		res.Outcome = OutcomeDictation
		log.Info("kiosk: dictation failed", "err", err)
		return res, err
	}
	res.Identifier = id
	k.feed.Echo(ctx, id.String())
	k.speakAs(ctx, fmt.Sprintf(promptCaseNumberFmt, id), sourceLanguage)

	rec, err := k.narrate(ctx, sess, id.String())
	res.Record = rec
	switch {
	case err == nil:
		res.Outcome = OutcomeNarrated
	case errors.Is(err, records.ErrNotFound):
		res.Outcome = OutcomeNotFound
		err = nil
	default:
		res.Outcome = OutcomeUnavailable
	}
	return res, err
}

// chooseLanguage asks for the conversation language. Silence or an
// unrecognised answer selects the default language.
func (k *Kiosk) chooseLanguage(ctx context.Context, sess *Session) caseid.Language {
	k.speakAs(ctx, PromptLanguage, sourceLanguage)
	k.feed.Status(ctx, "Listening for a language...")

	answer, err := k.listener.Listen(ctx, string(caseid.English))
	lang := k.defaultLang
	chosen := false
	if err != nil {
		k.log.Debug("kiosk: no language answer", "err", err)
	} else if v, _, ok := choice.Languages().Resolve(answer); ok {
		lang, chosen = caseid.Language(v), true
	}
	if ctx.Err() != nil {
		return lang
	}

	sess.setLanguage(lang)
	intro := fmt.Sprintf(promptSelectedFmt, languageNames[lang])
	if !chosen {
		intro = fmt.Sprintf(promptNoLanguage, languageNames[lang])
	}
	k.speak(ctx, sess, intro)
	return lang
}

// chooseSearch offers the search menu. Anything but a recognised judgment or
// filing search continues with a case search.
func (k *Kiosk) chooseSearch(ctx context.Context, sess *Session) string {
	k.speak(ctx, sess, PromptMenu)
	k.feed.Status(ctx, "Listening for a search type...")

	search := choice.CaseSearch
	answer, err := k.listener.Listen(ctx, string(sess.Language()))
	if err != nil {
		k.log.Debug("kiosk: no search answer", "err", err)
	} else {
		search = choice.SearchMenu().ResolveOr(answer, choice.CaseSearch)
	}
	if ctx.Err() != nil {
		return search
	}
	k.speak(ctx, sess, fmt.Sprintf(promptSearchFmt, searchNames[search]))
	return search
}

func (k *Kiosk) dictate(ctx context.Context, sess *Session) (caseid.Identifier, error) {
	combined, attempts := k.dictationSettings()
	p := dictation.New(k.vocab, k.listener,
		dictation.WithEcho(k.feed.Echo),
		dictation.WithStatus(k.feed.Status),
		dictation.WithPrompt(func(ctx context.Context, _ dictation.State, retry bool) {
			if retry {
				k.speak(ctx, sess, PromptRepeat)
			}
		}),
		dictation.WithTurnObserver(func(kind, status string) {
			k.metrics.RecordDictationTurn(context.WithoutCancel(ctx), kind, status)
		}),
		dictation.WithTurnAttempts(attempts),
		dictation.WithLogger(observe.LoggerFrom(ctx, k.log)),
	)
	if combined {
		return p.RunCombined(ctx, sess.Language())
	}
	return p.Run(ctx, sess.Language())
}

// narrate looks id up, shows the record and reads it aloud. A missing case
// is narrated as such and reported as an error wrapping records.ErrNotFound.
func (k *Kiosk) narrate(ctx context.Context, sess *Session, id string) (*records.Record, error) {
	lctx, span := observe.StartSpan(ctx, "kiosk.lookup",
		trace.WithAttributes(observe.AttrCaseID.String(id), attribute.String("records.source", k.storeName)))
	start := time.Now()
	rec, err := k.store.Lookup(lctx, id)
	status := "found"
	switch {
	case errors.Is(err, records.ErrNotFound):
		status = "not_found"
		observe.EndSpan(span, nil)
	case err != nil:
		status = "error"
		observe.EndSpan(span, err)
	default:
		observe.EndSpan(span, nil)
	}
	k.metrics.RecordLookup(ctx, k.storeName, status, time.Since(start))

	switch {
	case err == nil:
		k.feed.Record(ctx, rec)
		k.speak(ctx, sess, rec.Narration())
		return rec, nil
	case errors.Is(err, records.ErrNotFound):
		k.feed.Record(ctx, nil)
		k.speak(ctx, sess, records.NotFoundText)
		return nil, fmt.Errorf("kiosk: lookup %q: %w", id, err)
	default:
		observe.LoggerFrom(ctx, k.log).Warn("kiosk: record lookup failed", "case_id", id, "err", err)
		k.speak(ctx, sess, PromptUnavailable)
		return nil, fmt.Errorf("kiosk: lookup %q: %w", id, err)
	}
}

// speak reads English text aloud in the session language.
func (k *Kiosk) speak(ctx context.Context, sess *Session, text string) {
	start := time.Now()
	out := sess.text(ctx, text)
	if out != text {
		k.metrics.TranslateDuration.Record(ctx, time.Since(start).Seconds())
	}
	lang := sess.Language()
	if lang == "" {
		lang = sourceLanguage
	}
	k.speakAs(ctx, out, lang)
}

// speakAs synthesizes text in lang, plays it and paces the caption against
// the clip. Synthesis failures skip the audio and leave the text on the
// status line.
func (k *Kiosk) speakAs(ctx context.Context, text string, lang caseid.Language) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	clip, err := k.synth.Synthesize(ctx, text, string(lang))
	k.metrics.TTSDuration.Record(ctx, time.Since(start).Seconds())
	if err != nil {
		k.metrics.RecordProviderError(ctx, "tts", "tts")
		k.log.Warn("kiosk: speech synthesis failed", "lang", lang, "err", err)
		k.feed.Status(ctx, text)
		return
	}

	done, err := k.player.Play(ctx, clip)
	if err != nil {
		k.log.Warn("kiosk: playback failed", "err", err)
		done = nil
	}
	total := clip.Duration
	if total <= 0 {
		total = k.fallbackAudio
	}
	if err := k.pacer.Play(ctx, text, total, done); err != nil {
		k.log.Debug("kiosk: caption playback interrupted", "err", err)
	}
}
