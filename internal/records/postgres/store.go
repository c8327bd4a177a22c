package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrWong99/courtkiosk/internal/records"
)

var (
	_ records.Store  = (*Store)(nil)
	_ records.Pinger = (*Store)(nil)
)

// Store is a PostgreSQL-backed case record store. It is safe for concurrent use.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore connects to the database at dsn, verifies the connection and runs
// [Migrate].
func NewStore(ctx context.Context, dsn string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres store: parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres store: create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: ping: %w", err)
	}

	if err := Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres store: migrate: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() { s.pool.Close() }

// Ping implements [records.Pinger].
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres store: ping: %w", err)
	}
	return nil
}

const selectCase = `
SELECT case_key, title, case_type, case_no, case_year, court_number, judge_name,
       petitioner_name, respondent_name, advocate_name, status, next_date
FROM cases
WHERE case_key = $1`

// Lookup implements [records.Store].
func (s *Store) Lookup(ctx context.Context, id string) (*records.Record, error) {
	key := strings.ToUpper(strings.TrimSpace(id))
	if key == "" {
		return nil, fmt.Errorf("postgres store: empty identifier: %w", records.ErrNotFound)
	}

	var r records.Record
	err := s.pool.QueryRow(ctx, selectCase, key).Scan(
		&r.CaseNumber, &r.Case, &r.CaseType, &r.CaseNo, &r.CaseYear, &r.CourtNumber, &r.JudgeName,
		&r.PetitionerName, &r.RespondentName, &r.AdvocateName, &r.Status, &r.NextDate,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("postgres store: lookup %q: %w", key, records.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("postgres store: lookup %q: %w: %w", key, records.ErrUnavailable, err)
	}
	return &r, nil
}

const upsertCase = `
INSERT INTO cases (case_key, title, case_type, case_no, case_year, court_number, judge_name,
                   petitioner_name, respondent_name, advocate_name, status, next_date, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, now())
ON CONFLICT (case_key) DO UPDATE SET
    title           = EXCLUDED.title,
    case_type       = EXCLUDED.case_type,
    case_no         = EXCLUDED.case_no,
    case_year       = EXCLUDED.case_year,
    court_number    = EXCLUDED.court_number,
    judge_name      = EXCLUDED.judge_name,
    petitioner_name = EXCLUDED.petitioner_name,
    respondent_name = EXCLUDED.respondent_name,
    advocate_name   = EXCLUDED.advocate_name,
    status          = EXCLUDED.status,
    next_date       = EXCLUDED.next_date,
    updated_at      = now()`

func upsertArgs(key string, r records.Record) []any {
	return []any{
		key, r.Heading(), r.CaseType.String(), r.CaseNo.String(), r.CaseYear.String(),
		r.CourtNumber.String(), r.JudgeName.String(),
		r.PetitionerName.String(), r.RespondentName.String(), r.AdvocateName.String(),
		r.Status.String(), r.NextDate.String(),
	}
}

// Upsert inserts or replaces r under its [records.Record.Key].
func (s *Store) Upsert(ctx context.Context, r records.Record) error {
	key := r.Key()
	if key == "" {
		return errors.New("postgres store: upsert: record has no identifier")
	}
	_, err := s.pool.Exec(ctx, upsertCase, upsertArgs(key, r)...)
	if err != nil {
		return fmt.Errorf("postgres store: upsert %q: %w", key, err)
	}
	return nil
}

// Import upserts every keyed record in one transaction and returns how many
// were written.
func (s *Store) Import(ctx context.Context, recs []records.Record) (int, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres store: import: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, r := range recs {
		key := r.Key()
		if key == "" {
			continue
		}
		batch.Queue(upsertCase, upsertArgs(key, r)...)
	}
	n := batch.Len()
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return 0, fmt.Errorf("postgres store: import: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres store: import: commit: %w", err)
	}
	return n, nil
}
