package database

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct{ Pool *pgxpool.Pool }

func New(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	p, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, err
	}
	return &DB{Pool: p}, nil
}

func (d *DB) Close() { d.Pool.Close() }

// EnsureSchema creates the tables on first run. The reservation queue is an
// ordered side table keyed by (book_id, position) so FIFO order survives
// round trips.
func (d *DB) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS members (
			id   TEXT PRIMARY KEY,
			name TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id             TEXT PRIMARY KEY,
			title          TEXT NOT NULL,
			loaned_to      TEXT,
			due_date       DATE,
			first_due_date DATE,
			version        BIGINT NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS book_reservations (
			book_id   TEXT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			position  INT  NOT NULL,
			member_id TEXT NOT NULL,
			PRIMARY KEY (book_id, position)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_books_loaned_to ON books(loaned_to)`,
		`CREATE INDEX IF NOT EXISTS idx_books_due_date ON books(due_date)`,
		`CREATE INDEX IF NOT EXISTS idx_reservations_member ON book_reservations(member_id)`,
	}
	for _, q := range stmts {
		if _, err := d.Pool.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}
