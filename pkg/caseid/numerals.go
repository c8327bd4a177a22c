package caseid

import (
	"regexp"
	"strings"
)

// Language is a BCP-47 primary language subtag understood by the kiosk.
type Language string

// Supported languages.
const (
	English Language = "en"
	Hindi   Language = "hi"
	Punjabi Language = "pa"
)

// ParseLanguage maps a language code to a [Language]. Unknown or empty codes
// report false.
func ParseLanguage(code string) (Language, bool) {
	switch Language(strings.ToLower(strings.TrimSpace(code))) {
	case English:
		return English, true
	case Hindi:
		return Hindi, true
	case Punjabi:
		return Punjabi, true
	}
	return "", false
}

// IsValid reports whether l is one of the supported languages.
func (l Language) IsValid() bool {
	_, ok := ParseLanguage(string(l))
	return ok
}

// numeral is one row of a numeral table.
type numeral struct {
	token string
	digit string
}

// Replacement order matters: native digits first, then spoken words.
var (
	punjabiNumerals = []numeral{
		{"੦", "0"}, {"੧", "1"}, {"੨", "2"}, {"੩", "3"}, {"੪", "4"},
		{"੫", "5"}, {"੬", "6"}, {"੭", "7"}, {"੮", "8"}, {"੯", "9"},
		{"ਸਿਫਰ", "0"}, {"ਇੱਕ", "1"}, {"ਦੋ", "2"}, {"ਤਿੰਨ", "3"}, {"ਚਾਰ", "4"},
		{"ਪੰਜ", "5"}, {"ਛੇ", "6"}, {"ਸੱਤ", "7"}, {"ਅੱਠ", "8"}, {"ਨੌਂ", "9"},
	}
	hindiNumerals = []numeral{
		{"०", "0"}, {"१", "1"}, {"२", "2"}, {"३", "3"}, {"४", "4"},
		{"५", "5"}, {"६", "6"}, {"७", "7"}, {"८", "8"}, {"९", "9"},
		{"शून्य", "0"}, {"एक", "1"}, {"दो", "2"}, {"तीन", "3"}, {"चार", "4"},
		{"पांच", "5"}, {"छह", "6"}, {"सात", "7"}, {"आठ", "8"}, {"नौ", "9"},
	}
	englishNumerals = []numeral{
		{"zero", "0"}, {"one", "1"}, {"two", "2"}, {"three", "3"}, {"four", "4"},
		{"five", "5"}, {"six", "6"}, {"seven", "7"}, {"eight", "8"}, {"nine", "9"},
	}
)

// NumeralMap rewrites spoken or native-script digits of one language into
// ASCII digits.
type NumeralMap struct {
	lang  Language
	table []numeral
	// fold holds case-insensitive patterns for Latin-script tables.
	fold []*regexp.Regexp
}

var numeralMaps = map[Language]*NumeralMap{
	Punjabi: {lang: Punjabi, table: punjabiNumerals},
	Hindi:   {lang: Hindi, table: hindiNumerals},
	English: newFoldingMap(English, englishNumerals),
}

func newFoldingMap(lang Language, table []numeral) *NumeralMap {
	m := &NumeralMap{lang: lang, table: table, fold: make([]*regexp.Regexp, len(table))}
	for i, n := range table {
		m.fold[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(n.token))
	}
	return m
}

// NumeralsFor returns the numeral map of lang. Unknown languages use the
// English table.
func NumeralsFor(lang Language) *NumeralMap {
	if m, ok := numeralMaps[lang]; ok {
		return m
	}
	return numeralMaps[English]
}

// Language returns the language this map rewrites.
func (m *NumeralMap) Language() Language { return m.lang }

// Apply replaces every numeral token in text by its digit, table row by table
// row. ASCII digits pass through unchanged, so Apply is idempotent on them.
func (m *NumeralMap) Apply(text string) string {
	for i, n := range m.table {
		if m.fold != nil {
			text = m.fold[i].ReplaceAllLiteralString(text, n.digit)
			continue
		}
		text = strings.ReplaceAll(text, n.token, n.digit)
	}
	return text
}

// MapNumerals is shorthand for NumeralsFor(lang).Apply(text).
func MapNumerals(text string, lang Language) string {
	return NumeralsFor(lang).Apply(text)
}

// zeroLetters is the usual misrecognition of spoken "oh" as a digit.
var zeroLetters = strings.NewReplacer("O", "0", "o", "0")

func foldZeros(s string) string { return zeroLetters.Replace(s) }
