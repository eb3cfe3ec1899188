// Package pg implementa ProfileRepository sobre PostgreSQL (tabla profiles, doc jsonb).
package pg

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/accountsd/internal/domain/repository"
)

type Config struct {
	DSN   string `yaml:"dsn"`
	Table string `yaml:"table"`
}

type ProfileRepo struct {
	pool  *pgxpool.Pool
	table string
}

func Open(ctx context.Context, cfg Config) (*ProfileRepo, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("pg: %w", repository.ErrNoDatabase)
	}
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pg ping: %w", err)
	}
	return New(pool, cfg.Table), nil
}

// New usa un pool existente. table vacío = "profiles".
func New(pool *pgxpool.Pool, table string) *ProfileRepo {
	if table == "" {
		table = "profiles"
	}
	return &ProfileRepo{pool: pool, table: pgx.Identifier{table}.Sanitize()}
}

func (r *ProfileRepo) Pool() *pgxpool.Pool { return r.pool }

func (r *ProfileRepo) Close() { r.pool.Close() }

func (r *ProfileRepo) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func withKey(userID string, doc map[string]any) repository.Document {
	if doc == nil {
		doc = map[string]any{}
	}
	d := repository.Document(doc)
	d[repository.ProfileKeyField] = userID
	return d
}

func (r *ProfileRepo) FindAll(ctx context.Context) ([]repository.Document, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, doc FROM `+r.table)
	if err != nil {
		return nil, fmt.Errorf("pg query: %w", err)
	}
	defer rows.Close()

	var out []repository.Document
	for rows.Next() {
		var userID string
		var doc map[string]any
		if err := rows.Scan(&userID, &doc); err != nil {
			return nil, fmt.Errorf("pg scan: %w", err)
		}
		out = append(out, withKey(userID, doc))
	}
	return out, rows.Err()
}

func (r *ProfileRepo) FindByKey(ctx context.Context, subjectID string) (repository.Document, error) {
	var doc map[string]any
	err := r.pool.QueryRow(ctx, `SELECT doc FROM `+r.table+` WHERE user_id = $1`, subjectID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("pg query row: %w", err)
	}
	return withKey(subjectID, doc), nil
}

func (r *ProfileRepo) DeleteByKey(ctx context.Context, subjectID string) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM `+r.table+` WHERE user_id = $1`, subjectID)
	if err != nil {
		return 0, fmt.Errorf("pg delete: %w", err)
	}
	return tag.RowsAffected(), nil
}
