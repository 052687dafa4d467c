package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pingTimeout  = 1 * time.Second
	queryTimeout = 3 * time.Second

	pgUndefinedTable = "42P01"
)

// PostgresSink keeps snapshots in the catalog_snapshots table:
//
//	CREATE TABLE catalog_snapshots (
//		id         UUID PRIMARY KEY,
//		created_at TIMESTAMPTZ NOT NULL,
//		payload    BYTEA NOT NULL
//	);
type PostgresSink struct {
	db  DBTX
	now func() time.Time
}

// DBTX is the part of *pgxpool.Pool the sink uses.
type DBTX interface {
	Ping(ctx context.Context) error
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func NewPostgresSink(db DBTX) *PostgresSink {
	return &PostgresSink{db: db, now: time.Now}
}

// OpenPostgres opens a pgx pool and checks connectivity.
func OpenPostgres(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	if err := NewPostgresSink(pool).Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

func (s *PostgresSink) Ping(ctx context.Context) error {
	return withTimeout(ctx, pingTimeout, func(ctx context.Context) error {
		return s.db.Ping(ctx)
	})
}

func (s *PostgresSink) Save(ctx context.Context, blob []byte) error {
	return withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		_, err := s.db.Exec(ctx, `
			INSERT INTO catalog_snapshots (id, created_at, payload)
			VALUES ($1, $2, $3)
		`, uuid.New(), s.now().UTC(), blob)
		return explainPgError(err)
	})
}

func (s *PostgresSink) Load(ctx context.Context) ([]byte, error) {
	var blob []byte

	err := withTimeout(ctx, queryTimeout, func(ctx context.Context) error {
		return s.db.QueryRow(ctx, `
			SELECT payload
			FROM catalog_snapshots
			ORDER BY created_at DESC
			LIMIT 1
		`).Scan(&blob)
	})

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("catalog_snapshots: %w", ErrNoSnapshot)
	}
	if err != nil {
		return nil, explainPgError(err)
	}
	return blob, nil
}

func withTimeout(parent context.Context, d time.Duration, fn func(ctx context.Context) error) error {
	ctx, cancel := context.WithTimeout(parent, d)
	defer cancel()
	return fn(ctx)
}

func explainPgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUndefinedTable {
		return fmt.Errorf("catalog_snapshots table is missing: %w", err)
	}
	return err
}
