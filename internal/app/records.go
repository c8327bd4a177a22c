package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/MrWong99/courtkiosk/internal/config"
	"github.com/MrWong99/courtkiosk/internal/records"
	"github.com/MrWong99/courtkiosk/internal/records/postgres"
)

// initRecords opens the configured record store unless one was injected.
func (a *App) initRecords(ctx context.Context) error {
	if a.store != nil {
		if a.storeName == "" {
			a.storeName = "injected"
		}
		return nil
	}

	rc := a.cfg.Records
	var (
		store records.Store
		mem   *records.MemStore
	)
	switch rc.Backend {
	case config.RecordsHTTP:
		s, err := records.NewHTTPStore(rc.BaseURL)
		if err != nil {
			return err
		}
		store = s

	case config.RecordsPostgres:
		s, err := postgres.NewStore(ctx, rc.PostgresDSN)
		if err != nil {
			return err
		}
		store = s
		a.closers = append(a.closers, func() error {
			s.Close()
			return nil
		})

	default:
		recs, err := records.LoadFile(rc.Path)
		if err != nil {
			return err
		}
		mem = records.NewMemStore(recs, records.WithLegacyPrefix(rc.LegacyPrefix))
		store = mem
		slog.Info("case records loaded", "path", rc.Path, "records", mem.Len())
	}

	reset := func() {}
	if rc.Cache {
		c := records.NewCached(store)
		reset = c.Reset
		store = c
	}

	if mem != nil && rc.WatchInterval > 0 {
		w, err := records.NewWatcher(rc.Path, mem,
			records.WithInterval(rc.WatchInterval),
			records.WithReloadHook(func(int) { reset() }),
		)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func() error {
			w.Stop()
			return nil
		})
	}

	a.store = store
	a.storeName = string(rc.Backend)
	return nil
}

// recordsCheck probes the record store for /readyz.
func (a *App) recordsCheck(ctx context.Context) error {
	if err := records.Ping(ctx, a.store); err != nil {
		return fmt.Errorf("%s: %w", a.storeName, err)
	}
	return nil
}
