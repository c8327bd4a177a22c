package records

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/MrWong99/courtkiosk/pkg/caseid"
)

var _ Store = (*MemStore)(nil)

// SampleRecords is the built-in database used when no case file exists.
func SampleRecords() []Record {
	return []Record{
		{CaseNumber: "2025-001", Case: "John Doe vs. State", CourtNumber: "Court 1", JudgeName: "Judge Smith"},
		{CaseNumber: "2025-002", Case: "Jane Doe vs. State", CourtNumber: "Court 2", JudgeName: "Judge Brown"},
		{CaseNumber: "2025-003", Case: "Alice vs. Bob", CourtNumber: "Court 3", JudgeName: "Judge White"},
	}
}

// MemStoreOption configures a [MemStore].
type MemStoreOption func(*MemStore)

// WithLegacyPrefix enables the PREFIX-NNN fallback: identifiers that match
// no record exactly are retried as prefix, a hyphen, and their digits
// zero-padded to three places. "12" becomes "2025-012" with prefix "2025".
func WithLegacyPrefix(prefix string) MemStoreOption {
	return func(s *MemStore) { s.legacyPrefix = strings.TrimSuffix(prefix, "-") }
}

// MemStore is an in-memory [Store]. Its contents can be swapped atomically
// with [MemStore.Replace], which the file [Watcher] uses on reload.
type MemStore struct {
	legacyPrefix string

	mu    sync.RWMutex
	byKey map[string]*Record
}

// NewMemStore returns a store holding recs. Records without a key are skipped;
// on duplicate keys the last record wins.
func NewMemStore(recs []Record, opts ...MemStoreOption) *MemStore {
	s := &MemStore{}
	for _, o := range opts {
		o(s)
	}
	s.Replace(recs)
	return s
}

// Replace swaps the store contents.
func (s *MemStore) Replace(recs []Record) {
	m := make(map[string]*Record, len(recs))
	for i := range recs {
		r := recs[i]
		k := r.Key()
		if k == "" {
			continue
		}
		m[k] = &r
	}
	s.mu.Lock()
	s.byKey = m
	s.mu.Unlock()
}

// Len returns the number of stored records.
func (s *MemStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byKey)
}

// Lookup implements [Store].
func (s *MemStore) Lookup(_ context.Context, id string) (*Record, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	if key == "" {
		return nil, fmt.Errorf("records: empty identifier: %w", ErrNotFound)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if r, ok := s.byKey[key]; ok {
		return r, nil
	}
	if s.legacyPrefix != "" {
		if legacy, err := caseid.LegacyNumber(s.legacyPrefix, key); err == nil {
			if r, ok := s.byKey[legacy]; ok {
				return r, nil
			}
		}
	}
	return nil, fmt.Errorf("records: lookup %q: %w", key, ErrNotFound)
}

// LoadFile reads records from a JSON file. A missing file yields
// [SampleRecords] and a warning.
func LoadFile(path string) ([]Record, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Warn("records: case file not found, using sample database", "path", path)
		return SampleRecords(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("records: read %q: %w", path, err)
	}
	recs, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("records: %q: %w", path, err)
	}
	return recs, nil
}

// Decode parses either a JSON array of records or an object whose "cases"
// field holds one.
func Decode(r io.Reader) ([]Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("records: read: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("records: empty document")
	}
	if data[0] == '{' {
		var wrapped struct {
			Cases []Record `json:"cases"`
		}
		if err := json.Unmarshal(data, &wrapped); err != nil {
			return nil, fmt.Errorf("records: decode: %w", err)
		}
		return wrapped.Cases, nil
	}
	var recs []Record
	if err := json.Unmarshal(data, &recs); err != nil {
		return nil, fmt.Errorf("records: decode: %w", err)
	}
	return recs, nil
}
