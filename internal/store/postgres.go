package store

import (
	"context"
	"database/sql"
	"errors"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Postgres persists audit records to a Postgres table, created ahead of
// time by the operator:
//
//	CREATE TABLE IF NOT EXISTS solve_audit (
//	    id text PRIMARY KEY,
//	    request_hash text NOT NULL,
//	    status text NOT NULL,
//	    objective integer NOT NULL,
//	    created_at timestamptz NOT NULL
//	);
type Postgres struct {
	db *sql.DB
}

// NewPostgres opens a pgx connection pool against dsn.
func NewPostgres(dsn string) (*Postgres, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Record(ctx context.Context, rec Record) error {
	_, err := p.db.ExecContext(ctx,
		`INSERT INTO solve_audit (id, request_hash, status, objective, created_at)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (id) DO UPDATE SET status = $3, objective = $4`,
		rec.ID, rec.RequestHash, rec.Status, rec.Objective, rec.CreatedAt)
	return err
}

func (p *Postgres) Get(ctx context.Context, id string) (Record, error) {
	var rec Record
	row := p.db.QueryRowContext(ctx,
		`SELECT id, request_hash, status, objective, created_at FROM solve_audit WHERE id = $1`, id)
	if err := row.Scan(&rec.ID, &rec.RequestHash, &rec.Status, &rec.Objective, &rec.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func (p *Postgres) RecentByRequestHash(ctx context.Context, hash string, limit int) ([]Record, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	rows, err := p.db.QueryContext(ctx,
		`SELECT id, request_hash, status, objective, created_at FROM solve_audit
		 WHERE request_hash = $1 ORDER BY created_at DESC LIMIT $2`, hash, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.ID, &rec.RequestHash, &rec.Status, &rec.Objective, &rec.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (p *Postgres) Close() error {
	return p.db.Close()
}
