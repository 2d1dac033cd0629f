package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"leet2git/internal/common"
)

// Dialect covers the differences between the SQL backends of a tier.
type Dialect struct {
	Name        string
	Placeholder func(n int) string
}

var (
	DialectPostgres = Dialect{Name: "postgres", Placeholder: func(n int) string { return "$" + strconv.Itoa(n) }}
	DialectSQLite   = Dialect{Name: "sqlite", Placeholder: func(int) string { return "?" }}
)

type sqlTier struct {
	db        *sql.DB
	namespace string

	getQuery    string
	setQuery    string
	deleteQuery string
	clearQuery  string
	sizeQuery   string
}

// NewSQLTier keeps a tier in the kv_store table, partitioned by namespace so
// both tiers can share one database.
func NewSQLTier(ctx context.Context, db *sql.DB, dialect Dialect, namespace string) (KVTier, error) {
	p := dialect.Placeholder
	t := &sqlTier{
		db:        db,
		namespace: namespace,
		getQuery:  fmt.Sprintf(`SELECT store_value FROM kv_store WHERE namespace = %s AND store_key = %s`, p(1), p(2)),
		setQuery: fmt.Sprintf(`INSERT INTO kv_store (namespace, store_key, store_value, updated_at)
			VALUES (%s, %s, %s, %s)
			ON CONFLICT (namespace, store_key) DO UPDATE SET store_value = excluded.store_value, updated_at = excluded.updated_at`,
			p(1), p(2), p(3), p(4)),
		deleteQuery: fmt.Sprintf(`DELETE FROM kv_store WHERE namespace = %s AND store_key = %s`, p(1), p(2)),
		clearQuery:  fmt.Sprintf(`DELETE FROM kv_store WHERE namespace = %s`, p(1)),
		sizeQuery:   fmt.Sprintf(`SELECT COALESCE(SUM(LENGTH(store_key) + LENGTH(store_value)), 0) FROM kv_store WHERE namespace = %s`, p(1)),
	}
	if err := t.migrate(ctx); err != nil {
		return nil, err
	}
	return t, nil
}

func (t *sqlTier) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS kv_store (
			namespace TEXT NOT NULL,
			store_key TEXT NOT NULL,
			store_value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (namespace, store_key)
		)`,
	}
	for _, stmt := range stmts {
		if _, err := t.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("sqlTier.migrate: %w", err)
		}
	}
	return nil
}

func (t *sqlTier) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := t.db.QueryRowContext(ctx, t.getQuery, t.namespace, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("sqlTier.Get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (t *sqlTier) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := t.db.ExecContext(ctx, t.setQuery, t.namespace, key, string(value), now); err != nil {
		return fmt.Errorf("sqlTier.Set %s: %w", key, err)
	}
	return nil
}

func (t *sqlTier) Delete(ctx context.Context, key string) error {
	if _, err := t.db.ExecContext(ctx, t.deleteQuery, t.namespace, key); err != nil {
		return fmt.Errorf("sqlTier.Delete %s: %w", key, err)
	}
	return nil
}

func (t *sqlTier) Clear(ctx context.Context) error {
	if _, err := t.db.ExecContext(ctx, t.clearQuery, t.namespace); err != nil {
		return fmt.Errorf("sqlTier.Clear: %w", err)
	}
	return nil
}

func (t *sqlTier) BytesInUse(ctx context.Context) (int64, error) {
	var n int64
	if err := t.db.QueryRowContext(ctx, t.sizeQuery, t.namespace).Scan(&n); err != nil {
		return 0, fmt.Errorf("sqlTier.BytesInUse: %w", err)
	}
	return n, nil
}
