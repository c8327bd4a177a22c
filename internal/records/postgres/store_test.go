package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MrWong99/courtkiosk/internal/records"
	"github.com/MrWong99/courtkiosk/internal/records/postgres"
)

// testDSN returns the test database DSN from the environment, or skips the
// test if COURTKIOSK_TEST_POSTGRES_DSN is not set.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("COURTKIOSK_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("COURTKIOSK_TEST_POSTGRES_DSN not set, skipping PostgreSQL integration tests")
	}
	return dsn
}

func newTestStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := testDSN(t)
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("pool: %v", err)
	}
	if _, err := pool.Exec(ctx, "DROP TABLE IF EXISTS cases"); err != nil {
		t.Fatalf("drop: %v", err)
	}
	pool.Close()

	store, err := postgres.NewStore(ctx, dsn)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(store.Close)
	return store
}

func TestStore_UpsertLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	rec := records.Record{
		CaseType: "CWP", CaseNo: "1234", CaseYear: "2023",
		PetitionerName: "Ram Singh", RespondentName: "State of Punjab",
		Status: "Pending", NextDate: "2025-03-01",
	}
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert: %v", err)
	}

	got, err := store.Lookup(ctx, "cwp-1234-2023")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.Key() != "CWP-1234-2023" || got.Status != "Pending" || got.Heading() != "Ram Singh vs. State of Punjab" {
		t.Errorf("got %+v", got)
	}

	rec.Status = "Disposed"
	if err := store.Upsert(ctx, rec); err != nil {
		t.Fatalf("Upsert (update): %v", err)
	}
	got, _ = store.Lookup(ctx, "CWP-1234-2023")
	if got.Status != "Disposed" {
		t.Errorf("status = %q, want Disposed", got.Status)
	}

	if _, err := store.Lookup(ctx, "LPA-1-2020"); !errors.Is(err, records.ErrNotFound) {
		t.Errorf("missing err = %v, want ErrNotFound", err)
	}
}

func TestStore_Import(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	recs := append(records.SampleRecords(), records.Record{JudgeName: "no key"})
	n, err := store.Import(ctx, recs)
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if n != 3 {
		t.Errorf("imported %d, want 3", n)
	}
	got, err := store.Lookup(ctx, "2025-003")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got.JudgeName != "Judge White" || got.Heading() != "Alice vs. Bob" {
		t.Errorf("got %+v", got)
	}
	if err := store.Ping(ctx); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
