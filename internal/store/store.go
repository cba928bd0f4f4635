package store

import (
	"context"
	"database/sql"
	errs "errors"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrNoChange = errs.New("no change")

// DB wraps gorm.DB and exposes Close.
type DB struct {
	gorm *gorm.DB
	sql  *sql.DB
}

func (d *DB) Close() error { return d.sql.Close() }

// Open connects to postgres.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("missing DSN")
	}
	gdb, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, wrap(err, "open postgres")
	}
	sdb, err := gdb.DB()
	if err != nil {
		return nil, wrap(err, "postgres handle")
	}
	sdb.SetConnMaxLifetime(30 * time.Minute)
	sdb.SetMaxOpenConns(4)
	sdb.SetMaxIdleConns(2)
	if err := sdb.PingContext(ctx); err != nil {
		_ = sdb.Close()
		return nil, wrap(err, "ping postgres")
	}
	return &DB{gorm: gdb, sql: sdb}, nil
}

// WithTx executes fn within a database transaction.
func (d *DB) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return d.gorm.WithContext(ctx).Transaction(fn)
}

// SessionState is one row of session_state.
type SessionState struct {
	Key       string `gorm:"primaryKey"`
	Payload   []byte
	UpdatedAt time.Time
}

func (SessionState) TableName() string { return "session_state" }

// PostgresBackend stores payloads in the session_state table created by the
// embedded migrations.
type PostgresBackend struct {
	db *DB
}

func NewPostgresBackend(db *DB) *PostgresBackend { return &PostgresBackend{db: db} }

func (p *PostgresBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var row SessionState
	err := p.db.gorm.WithContext(ctx).Where("key = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, wrap(err, "postgres get")
	}
	return row.Payload, true, nil
}

func (p *PostgresBackend) Put(ctx context.Context, key string, value []byte) error {
	return wrap(p.db.WithTx(ctx, func(tx *gorm.DB) error {
		return tx.Exec(`INSERT INTO session_state(key, payload, updated_at) VALUES (?,?,now())
		ON CONFLICT (key) DO UPDATE SET payload=EXCLUDED.payload, updated_at=EXCLUDED.updated_at`, key, value).Error
	}), "postgres put")
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	return wrap(p.db.gorm.WithContext(ctx).Exec(`DELETE FROM session_state WHERE key = ?`, key).Error, "postgres delete")
}

func (p *PostgresBackend) Close() error { return p.db.Close() }

// Helper error wrap
func wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(err, msg)
}
