// Package choice resolves a spoken answer to one of a small set of options,
// such as the language prompt or the search menu.
//
// Resolution runs in two stages:
//
//  1. Keywords: each option lists keywords in every supported script. A
//     single-word keyword must equal one token of the utterance; a phrase
//     must appear as a substring. Options are tried in declaration order and
//     the first hit wins.
//
//  2. Phonetics: when no keyword hits, every utterance token is compared to
//     the Latin-script keywords of four or more letters. Double Metaphone
//     overlap plus a Jaro-Winkler score of at least 0.70 accepts a
//     candidate; without overlap a pure Jaro-Winkler score of 0.85 is
//     required. The best score across all options wins.
package choice

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/antzucaro/matchr"
)

const (
	defaultPhoneticThreshold = 0.70
	defaultFuzzyThreshold    = 0.85

	minPhoneticKeyword = 4
)

// Choice is one selectable answer.
type Choice struct {
	// Value is returned when the choice is selected.
	Value string

	// Keywords are the words and phrases that select this choice,
	// matched case-insensitively.
	Keywords []string
}

// Option configures a [Resolver].
type Option func(*Resolver)

// WithPhoneticThreshold sets the minimum Jaro-Winkler score for a
// phonetically overlapping keyword. Default: 0.70.
func WithPhoneticThreshold(v float64) Option {
	return func(r *Resolver) { r.phoneticThreshold = v }
}

// WithFuzzyThreshold sets the minimum Jaro-Winkler score when no phonetic
// code overlaps. Default: 0.85.
func WithFuzzyThreshold(v float64) Option {
	return func(r *Resolver) { r.fuzzyThreshold = v }
}

// Resolver maps utterances to choices. It is read-only after construction
// and safe for concurrent use.
type Resolver struct {
	choices           []Choice
	phoneticThreshold float64
	fuzzyThreshold    float64
}

// NewResolver returns a resolver over choices.
func NewResolver(choices []Choice, opts ...Option) *Resolver {
	r := &Resolver{
		choices:           make([]Choice, len(choices)),
		phoneticThreshold: defaultPhoneticThreshold,
		fuzzyThreshold:    defaultFuzzyThreshold,
	}
	for i, c := range choices {
		kw := make([]string, 0, len(c.Keywords))
		for _, k := range c.Keywords {
			if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
				kw = append(kw, k)
			}
		}
		r.choices[i] = Choice{Value: c.Value, Keywords: kw}
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Resolve returns the value of the choice the utterance selects and the
// confidence of the match: 1 for keyword hits, the Jaro-Winkler score for
// phonetic ones.
func (r *Resolver) Resolve(utterance string) (value string, confidence float64, ok bool) {
	text := strings.ToLower(strings.TrimSpace(utterance))
	if text == "" {
		return "", 0, false
	}
	tokens := tokenize(text)

	for _, c := range r.choices {
		for _, k := range c.Keywords {
			if strings.Contains(k, " ") {
				if strings.Contains(text, k) {
					return c.Value, 1, true
				}
				continue
			}
			for _, t := range tokens {
				if t == k {
					return c.Value, 1, true
				}
			}
		}
	}
	return r.phonetic(tokens)
}

// ResolveOr is [Resolver.Resolve] with a fallback value.
func (r *Resolver) ResolveOr(utterance, fallback string) string {
	if v, _, ok := r.Resolve(utterance); ok {
		return v
	}
	return fallback
}

func (r *Resolver) phonetic(tokens []string) (string, float64, bool) {
	var (
		bestValue    string
		bestScore    float64
		bestPhonetic bool
	)
	for _, c := range r.choices {
		for _, k := range c.Keywords {
			if strings.Contains(k, " ") || !isLatin(k) || utf8.RuneCountInString(k) < minPhoneticKeyword {
				continue
			}
			kp, ks := matchr.DoubleMetaphone(k)
			for _, t := range tokens {
				if !isLatin(t) {
					continue
				}
				score := matchr.JaroWinkler(t, k, false)
				tp, ts := matchr.DoubleMetaphone(t)
				if codesOverlap(tp, ts, kp, ks) {
					if score >= r.phoneticThreshold && (!bestPhonetic || score > bestScore) {
						bestValue, bestScore, bestPhonetic = c.Value, score, true
					}
				} else if !bestPhonetic && score >= r.fuzzyThreshold && score > bestScore {
					bestValue, bestScore = c.Value, score
				}
			}
		}
	}
	if bestValue == "" {
		return "", 0, false
	}
	return bestValue, bestScore, true
}

func codesOverlap(ap, as, bp, bs string) bool {
	for _, a := range []string{ap, as} {
		if a == "" {
			continue
		}
		if a == bp || a == bs {
			return true
		}
	}
	return false
}

// tokenize splits on anything that is not a letter, mark or digit.
func tokenize(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsMark(r) && !unicode.IsDigit(r)
	})
}

func isLatin(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
