package caseid

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Identifier is an assembled case identifier. Year is empty only for
// identifiers parsed from a two-part combined utterance.
type Identifier struct {
	Type   string `json:"type"`
	Number string `json:"number"`
	Year   string `json:"year,omitempty"`
}

// String renders the canonical form TYPE-NUMBER-YEAR, or TYPE-NUMBER when the
// year is absent.
func (id Identifier) String() string {
	if id.Year == "" {
		return id.Type + "-" + id.Number
	}
	return id.Type + "-" + id.Number + "-" + id.Year
}

// IsZero reports whether id carries no components.
func (id Identifier) IsZero() bool { return id == Identifier{} }

var (
	numberShape   = regexp.MustCompile(`^[0-9]+(-[\p{L}\p{M}\p{N}_]+)?$`)
	combinedShape = regexp.MustCompile(`^[A-Za-z]+-[0-9]+(-[0-9]+)?$`)
)

// toHyphens replaces every whitespace run with a single hyphen.
func toHyphens(s string) string { return strings.Join(strings.Fields(s), "-") }

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// NormalizeNumber turns a case-number transcript into NUMBER or
// NUMBER-QUALIFIER. Numerals of lang are rewritten to ASCII digits and the
// letter O is read as zero. The transcript is split on whitespace and hyphens;
// the last all-digit token is the number and the last other token, upper-cased,
// is the qualifier.
func NormalizeNumber(transcript string, lang Language) (string, error) {
	text := foldZeros(MapNumerals(transcript, lang))
	var numeric, qualifier string
	for _, part := range strings.Split(toHyphens(text), "-") {
		if isDigits(part) {
			numeric = part
		} else if part != "" {
			qualifier = strings.ToUpper(part)
		}
	}
	if numeric == "" {
		return "", &ParseError{Field: FieldNumber, Input: transcript, Reason: "numeric part missing", Err: ErrInvalidCaseNumber}
	}
	out := numeric
	if qualifier != "" {
		out += "-" + qualifier
	}
	if !numberShape.MatchString(out) {
		return "", &ParseError{Field: FieldNumber, Input: transcript, Reason: "want NUMBER or NUMBER-QUALIFIER", Err: ErrInvalidCaseNumber}
	}
	return out, nil
}

// NormalizeYear turns a case-year transcript into exactly four ASCII digits.
// Whitespace between digits is dropped, so "20 23" reads as 2023.
func NormalizeYear(transcript string, lang Language) (string, error) {
	text := foldZeros(MapNumerals(transcript, lang))
	text = strings.Join(strings.Fields(text), "")
	if len(text) != 4 || !isDigits(text) {
		return "", &ParseError{Field: FieldYear, Input: transcript, Reason: "want 4 digits", Err: ErrInvalidCaseYear}
	}
	return text, nil
}

// ParseCombined parses a single utterance of the form TYPE-NUMBER[-YEAR],
// delimited by hyphens or whitespace. Unlike [Vocabulary.ResolveType] the type
// must be an exact vocabulary key. Every failure wraps
// [ErrMalformedCombinedIdentifier] together with the specific cause.
func (v *Vocabulary) ParseCombined(transcript string, lang Language) (Identifier, error) {
	text := toHyphens(MapNumerals(transcript, lang))
	parts := strings.Split(text, "-")
	// The leading type token is letters only; zero-folding it would break keys
	// such as CO or FAO.
	for i := 1; i < len(parts); i++ {
		parts[i] = foldZeros(parts[i])
	}
	text = strings.Join(parts, "-")

	malformed := func(cause error, reason string) (Identifier, error) {
		err := ErrMalformedCombinedIdentifier
		if cause != nil {
			err = fmt.Errorf("%w: %w", ErrMalformedCombinedIdentifier, cause)
		}
		return Identifier{}, &ParseError{Field: FieldCombined, Input: transcript, Reason: reason, Err: err}
	}

	// The shape admits exactly two or three parts.
	if !combinedShape.MatchString(text) {
		return malformed(nil, "want TYPE-NUMBER[-YEAR]")
	}
	id := Identifier{Type: strings.ToUpper(parts[0]), Number: parts[1]}
	if !v.Has(id.Type) {
		return malformed(ErrInvalidCaseType, "unknown type "+strconv.Quote(id.Type))
	}
	if !isDigits(id.Number) {
		return malformed(ErrInvalidCaseNumber, "number must be digits")
	}
	if len(parts) == 3 {
		if len(parts[2]) != 4 || !isDigits(parts[2]) {
			return malformed(ErrInvalidCaseYear, "year must be 4 digits")
		}
		id.Year = parts[2]
	}
	return id, nil
}

// LegacyNumber builds an identifier in the simple numbering scheme
// PREFIX-NNN from the digits found in input, zero-padded to three places.
func LegacyNumber(prefix, input string) (string, error) {
	var digits strings.Builder
	for _, r := range input {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return "", &ParseError{Field: FieldNumber, Input: input, Reason: "no digits", Err: ErrInvalidCaseNumber}
	}
	n := digits.String()
	if len(n) < 3 {
		n = strings.Repeat("0", 3-len(n)) + n
	}
	return prefix + "-" + n, nil
}
