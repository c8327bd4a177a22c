// Package caseid parses and validates court case identifiers.
//
// A case identifier is the triple (type, number, year) rendered canonically as
// "CWP-1234-2023". The type must be a key of a [Vocabulary]; the number is a
// run of digits optionally followed by a qualifier ("1234-LPA"); the year is
// exactly four ASCII digits.
//
// The package is pure: it never performs I/O apart from [LoadVocabulary], and
// every exported value is safe for concurrent use once constructed.
package caseid

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Entry is one case-type abbreviation and its full description.
type Entry struct {
	Key         string `yaml:"key"`
	Description string `yaml:"description"`
}

// Vocabulary is an immutable set of case types keyed by abbreviation.
// Construct one with [NewVocabulary], [DefaultVocabulary] or [LoadVocabulary].
type Vocabulary struct {
	entries []Entry
	byKey   map[string]string
	byDesc  map[string]string
	keys    []string
}

// NewVocabulary builds a vocabulary from entries. Keys and descriptions are
// upper-cased. Empty and duplicate keys are rejected.
func NewVocabulary(entries []Entry) (*Vocabulary, error) {
	v := &Vocabulary{
		entries: make([]Entry, 0, len(entries)),
		byKey:   make(map[string]string, len(entries)),
		byDesc:  make(map[string]string, len(entries)),
		keys:    make([]string, 0, len(entries)),
	}
	for i, e := range entries {
		key := strings.ToUpper(strings.TrimSpace(e.Key))
		desc := strings.ToUpper(strings.TrimSpace(e.Description))
		if key == "" {
			return nil, fmt.Errorf("caseid: vocabulary entry %d: empty key", i)
		}
		if _, dup := v.byKey[key]; dup {
			return nil, fmt.Errorf("caseid: vocabulary entry %d: duplicate key %q", i, key)
		}
		v.byKey[key] = desc
		// First key wins when two abbreviations share a description.
		if _, seen := v.byDesc[desc]; !seen && desc != "" {
			v.byDesc[desc] = key
		}
		v.keys = append(v.keys, key)
		v.entries = append(v.entries, Entry{Key: key, Description: desc})
	}
	return v, nil
}

// DefaultVocabulary returns the built-in case-type table. The table is built
// on first use and shared afterwards.
var DefaultVocabulary = sync.OnceValue(func() *Vocabulary {
	v, err := NewVocabulary(builtinCaseTypes)
	if err != nil {
		panic("caseid: builtin vocabulary: " + err.Error())
	}
	return v
})

// vocabularyFile is the YAML shape accepted by [LoadVocabulary].
type vocabularyFile struct {
	CaseTypes []Entry `yaml:"case_types"`
}

// LoadVocabulary reads a YAML vocabulary file of the form
//
//	case_types:
//	  - key: CWP
//	    description: CIVIL WRIT PETITION
func LoadVocabulary(path string) (*Vocabulary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("caseid: open vocabulary %q: %w", path, err)
	}
	defer f.Close()
	v, err := LoadVocabularyFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("caseid: parse vocabulary %q: %w", path, err)
	}
	return v, nil
}

// LoadVocabularyFromReader decodes a YAML vocabulary from r.
func LoadVocabularyFromReader(r io.Reader) (*Vocabulary, error) {
	var vf vocabularyFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&vf); err != nil {
		return nil, fmt.Errorf("caseid: decode vocabulary yaml: %w", err)
	}
	if len(vf.CaseTypes) == 0 {
		return nil, fmt.Errorf("caseid: vocabulary has no case_types")
	}
	return NewVocabulary(vf.CaseTypes)
}

// Len returns the number of case types.
func (v *Vocabulary) Len() int { return len(v.keys) }

// Has reports whether key is a known abbreviation. The comparison is exact.
func (v *Vocabulary) Has(key string) bool {
	_, ok := v.byKey[key]
	return ok
}

// Description returns the full description for key.
func (v *Vocabulary) Description(key string) (string, bool) {
	d, ok := v.byKey[key]
	return d, ok
}

// KeyForDescription performs the reverse lookup from an upper-case description
// to its abbreviation.
func (v *Vocabulary) KeyForDescription(desc string) (string, bool) {
	k, ok := v.byDesc[desc]
	return k, ok
}

// Keys returns the abbreviations in table order. The returned slice is a copy.
func (v *Vocabulary) Keys() []string { return slices.Clone(v.keys) }

// Entries returns the table in order. The returned slice is a copy.
func (v *Vocabulary) Entries() []Entry { return slices.Clone(v.entries) }
