// Package postgres provides a PostgreSQL-backed [records.Store].
//
// Records live in a single cases table keyed by the upper-cased identifier.
// [Migrate] creates it on first use.
//
// Usage:
//
//	store, err := postgres.NewStore(ctx, dsn)
//	if err != nil { … }
//	defer store.Close()
//
//	_ = store.Upsert(ctx, rec)
//	rec, err := store.Lookup(ctx, "CWP-1234-2023")
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const ddlCases = `
CREATE TABLE IF NOT EXISTS cases (
    case_key         TEXT         PRIMARY KEY,
    title            TEXT         NOT NULL DEFAULT '',
    case_type        TEXT         NOT NULL DEFAULT '',
    case_no          TEXT         NOT NULL DEFAULT '',
    case_year        TEXT         NOT NULL DEFAULT '',
    court_number     TEXT         NOT NULL DEFAULT '',
    judge_name       TEXT         NOT NULL DEFAULT '',
    petitioner_name  TEXT         NOT NULL DEFAULT '',
    respondent_name  TEXT         NOT NULL DEFAULT '',
    advocate_name    TEXT         NOT NULL DEFAULT '',
    status           TEXT         NOT NULL DEFAULT '',
    next_date        TEXT         NOT NULL DEFAULT '',
    updated_at       TIMESTAMPTZ  NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_cases_type_no_year
    ON cases (case_type, case_no, case_year);
`

// Migrate creates the cases table and its indexes. It is idempotent.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, ddlCases); err != nil {
		return fmt.Errorf("postgres migrate: %w", err)
	}
	return nil
}
