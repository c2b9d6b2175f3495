package storage

import (
	"context"
	"database/sql"
	"errors"
)

// PostgresBackend stores values in the storefront_kv table created by
// the migrations under internal/db/migrations.
type PostgresBackend struct {
	db *sql.DB
}

func NewPostgresBackend(db *sql.DB) *PostgresBackend {
	return &PostgresBackend{db: db}
}

func (p *PostgresBackend) Get(ctx context.Context, key string) (string, error) {
	const query = `SELECT value FROM storefront_kv WHERE key = $1`
	var value string
	if err := p.db.QueryRowContext(ctx, query, key).Scan(&value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return value, nil
}

func (p *PostgresBackend) Set(ctx context.Context, key, value string) error {
	const query = `
		INSERT INTO storefront_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`
	_, err := p.db.ExecContext(ctx, query, key, value)
	return err
}

func (p *PostgresBackend) SetIfAbsent(ctx context.Context, key, value string) (string, error) {
	const query = `
		INSERT INTO storefront_kv (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO NOTHING`
	if _, err := p.db.ExecContext(ctx, query, key, value); err != nil {
		return "", err
	}
	return p.Get(ctx, key)
}

func (p *PostgresBackend) Delete(ctx context.Context, key string) error {
	const query = `DELETE FROM storefront_kv WHERE key = $1`
	_, err := p.db.ExecContext(ctx, query, key)
	return err
}

func (p *PostgresBackend) Close() error {
	return p.db.Close()
}
