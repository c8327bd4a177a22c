package caseid

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DefaultCutoff is the minimum similarity ratio accepted by [CloseMatch].
const DefaultCutoff = 0.6

// CloseMatch returns the candidate most similar to word using the
// Ratcliff/Obershelp ratio, or false when no candidate reaches cutoff. Ties go
// to the lexically greatest candidate.
func CloseMatch(word string, candidates []string, cutoff float64) (string, float64, bool) {
	target := strings.Split(word, "")
	m := difflib.NewMatcher(nil, target)

	var (
		best      string
		bestScore float64
		found     bool
	)
	for _, c := range candidates {
		m.SetSeq1(strings.Split(c, ""))
		if m.RealQuickRatio() < cutoff || m.QuickRatio() < cutoff {
			continue
		}
		score := m.Ratio()
		if score < cutoff {
			continue
		}
		if !found || score > bestScore || (score == bestScore && c > best) {
			best, bestScore, found = c, score, true
		}
	}
	return best, bestScore, found
}

// letterNames maps spoken English letter names to the letter.
var letterNames = map[string]string{
	"AY": "A", "BE": "B", "BEE": "B", "SEE": "C", "SEA": "C", "CEE": "C",
	"DEE": "D", "EE": "E", "EF": "F", "EFF": "F", "GEE": "G", "JEE": "G",
	"AITCH": "H", "EYE": "I", "JAY": "J", "KAY": "K", "EL": "L", "ELL": "L",
	"EM": "M", "EN": "N", "OH": "O", "PEE": "P", "PE": "P", "CUE": "Q",
	"QUEUE": "Q", "AR": "R", "ARE": "R", "ES": "S", "ESS": "S", "TEE": "T",
	"TEA": "T", "YOU": "U", "VEE": "V", "EX": "X", "WHY": "Y", "ZED": "Z",
	"ZEE": "Z", "DOUBLEYOU": "W",
}

// collapseSpelling turns a spelled-out abbreviation into its letters:
// "SEE DOUBLE PEE" and "C.W.P." both become "CWP". "DOUBLE" alone reads as W.
// Tokens that are not letter names are kept verbatim.
func collapseSpelling(upper string) string {
	fields := strings.Fields(strings.ReplaceAll(upper, ".", " "))
	var b strings.Builder
	for i := 0; i < len(fields); i++ {
		tok := fields[i]
		if tok == "DOUBLE" {
			if i+1 < len(fields) && (fields[i+1] == "YOU" || fields[i+1] == "U") {
				i++
			}
			b.WriteString("W")
			continue
		}
		if l, ok := letterNames[tok]; ok {
			b.WriteString(l)
			continue
		}
		b.WriteString(tok)
	}
	return b.String()
}

// ResolveType maps a case-type transcript to a vocabulary key. It tries, in
// order: an exact key, an exact description, the spelled-out letters as a key,
// and finally the closest key above [DefaultCutoff]. It returns
// [ErrInvalidCaseType] when nothing matches.
func (v *Vocabulary) ResolveType(transcript string) (string, error) {
	upper := strings.ToUpper(strings.TrimSpace(transcript))
	if upper == "" {
		return "", &ParseError{Field: FieldType, Input: transcript, Err: ErrInvalidCaseType}
	}
	if v.Has(upper) {
		return upper, nil
	}
	if key, ok := v.KeyForDescription(strings.Join(strings.Fields(upper), " ")); ok {
		return key, nil
	}
	collapsed := collapseSpelling(upper)
	if v.Has(collapsed) {
		return collapsed, nil
	}
	if key, _, ok := CloseMatch(collapsed, v.keys, DefaultCutoff); ok {
		return key, nil
	}
	if collapsed != upper {
		if key, _, ok := CloseMatch(upper, v.keys, DefaultCutoff); ok {
			return key, nil
		}
	}
	return "", &ParseError{Field: FieldType, Input: transcript, Err: ErrInvalidCaseType}
}
