// AngelaMos | 2026
// sql.go

package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/angelamos/voltgear/internal/config"
	"github.com/angelamos/voltgear/internal/core"
)

const createDocumentsTable = `
	CREATE TABLE IF NOT EXISTS kv_documents (
		doc_key TEXT PRIMARY KEY,
		doc     TEXT NOT NULL
	)`

// SQLBackend stores documents in a two-column table, one row per key.
// sqlx.Rebind keeps the queries portable between sqlite3 and postgres.
type SQLBackend struct {
	db *sqlx.DB
}

func NewSQLBackend(
	ctx context.Context,
	cfg config.StoreConfig,
) (*SQLBackend, error) {
	driver := cfg.Driver
	dsn := cfg.URL
	if driver == "sqlite3" {
		dsn = cfg.Path
	}
	if driver == "postgres" {
		driver = "pgx"
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect to store database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on connection failure
		return nil, fmt.Errorf("ping store database: %w", err)
	}

	if _, err := db.ExecContext(ctx, createDocumentsTable); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on schema failure
		return nil, fmt.Errorf("create documents table: %w", err)
	}

	return &SQLBackend{db: db}, nil
}

func (b *SQLBackend) Load(ctx context.Context, key string) ([]byte, error) {
	query := b.db.Rebind(`SELECT doc FROM kv_documents WHERE doc_key = ?`)

	var doc string
	err := b.db.GetContext(ctx, &doc, query, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load %q: %w", key, core.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}

	return []byte(doc), nil
}

func (b *SQLBackend) Store(ctx context.Context, key string, doc []byte) error {
	query := b.db.Rebind(`
		INSERT INTO kv_documents (doc_key, doc) VALUES (?, ?)
		ON CONFLICT (doc_key) DO UPDATE SET doc = excluded.doc`)

	if _, err := b.db.ExecContext(ctx, query, key, string(doc)); err != nil {
		return fmt.Errorf("store %q: %w", key, err)
	}

	return nil
}

func (b *SQLBackend) Delete(ctx context.Context, key string) error {
	query := b.db.Rebind(`DELETE FROM kv_documents WHERE doc_key = ?`)

	if _, err := b.db.ExecContext(ctx, query, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}

	return nil
}

// Keys assumes the app's fixed key constants: no LIKE-metacharacter
// escaping is done on the prefix.
func (b *SQLBackend) Keys(ctx context.Context, prefix string) ([]string, error) {
	query := b.db.Rebind(
		`SELECT doc_key FROM kv_documents WHERE doc_key LIKE ? ORDER BY doc_key`)

	keys := []string{}
	if err := b.db.SelectContext(ctx, &keys, query, prefix+"%"); err != nil {
		return nil, fmt.Errorf("list keys %q: %w", prefix, err)
	}
	return keys, nil
}

func (b *SQLBackend) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := b.db.PingContext(pingCtx); err != nil {
		return fmt.Errorf("store database ping failed: %w", err)
	}

	return nil
}

func (b *SQLBackend) Close() error {
	return b.db.Close()
}

func (b *SQLBackend) Stats() sql.DBStats {
	return b.db.Stats()
}

var _ Backend = (*SQLBackend)(nil)
