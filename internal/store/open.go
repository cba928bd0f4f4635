package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/DaanHessen/snappr/internal/util"
)

// OpenBackend opens the backend named by cfg.Backend. The postgres backend
// applies pending migrations first.
func OpenBackend(ctx context.Context, cfg util.Config) (Backend, error) {
	switch cfg.Backend {
	case "", util.BackendMemory:
		return NewMemoryBackend(), nil
	case util.BackendBolt:
		return OpenBolt(cfg.Path)
	case util.BackendSQLite:
		return OpenSQLite(cfg.Path)
	case util.BackendPostgres:
		mig, err := NewMigrator(cfg.DSN)
		if err != nil {
			return nil, err
		}
		migCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		if err := mig.Up(migCtx); err != nil && err != ErrNoChange {
			return nil, err
		}
		db, err := Open(ctx, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return NewPostgresBackend(db), nil
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

// OpenRecordStore opens the configured backend and binds it to the session.
func OpenRecordStore(ctx context.Context, cfg util.Config, logger *log.Logger) (*RecordStore, error) {
	b, err := OpenBackend(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s, err := NewRecordStore(b, cfg.SessionID, WithCompression(cfg.Compress), WithLogger(logger))
	if err != nil {
		_ = b.Close()
		return nil, err
	}
	return s, nil
}
