package choice

import "github.com/MrWong99/courtkiosk/pkg/caseid"

// DefaultLanguage is used when the visitor names no language.
const DefaultLanguage = caseid.Punjabi

// Search menu values.
const (
	CaseSearch     = "case"
	JudgmentSearch = "judgment"
	FilingSearch   = "filing"
)

// Languages resolves the answer to the language prompt to a language code.
func Languages() *Resolver {
	return NewResolver([]Choice{
		{Value: string(caseid.English), Keywords: []string{"english", "angrezi", "इंग्लिश", "अंग्रेजी", "ਅੰਗਰੇਜ਼ੀ", "ਇੰਗਲਿਸ਼"}},
		{Value: string(caseid.Punjabi), Keywords: []string{"punjabi", "panjabi", "ਪੰਜਾਬੀ", "पंजाबी"}},
		{Value: string(caseid.Hindi), Keywords: []string{"hindi", "हिंदी", "हिन्दी", "ਹਿੰਦੀ"}},
	})
}

// SearchMenu resolves the answer to the "how would you like to search"
// prompt. Visitors may name the search or say its position.
func SearchMenu() *Resolver {
	return NewResolver([]Choice{
		{Value: CaseSearch, Keywords: []string{"1", "one", "ek", "ik", "case search", "केस खोज", "ਕੇਸ ਖੋਜ", "एक", "ਇੱਕ", "case"}},
		{Value: JudgmentSearch, Keywords: []string{"2", "two", "tu", "do", "judgment search", "निर्णय खोज", "ਨਿਰਣੇ ਦੀ ਖੋਜ", "दो", "ਦੋ", "judgment", "judgement"}},
		{Value: FilingSearch, Keywords: []string{"3", "three", "teen", "filing search", "फाइलिंग खोज", "ਫਾਈਲਿੰਗ ਖੋਜ", "तीन", "ਤਿੰਨ", "filing"}},
	})
}
