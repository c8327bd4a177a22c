package records

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no record matches the identifier.
	ErrNotFound = errors.New("records: case not found")

	// ErrUnavailable is returned when the backing service cannot be reached.
	ErrUnavailable = errors.New("records: service unavailable")
)

// Store resolves case identifiers to records. Implementations must be safe
// for concurrent use.
type Store interface {
	// Lookup returns the record filed under id. It returns an error wrapping
	// [ErrNotFound] when there is none.
	Lookup(ctx context.Context, id string) (*Record, error)
}

// Pinger is implemented by stores whose backend can be probed for readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ping probes s when it implements [Pinger] and reports nil otherwise.
func Ping(ctx context.Context, s Store) error {
	if p, ok := s.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
