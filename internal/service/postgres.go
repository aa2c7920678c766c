package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresExecutor runs statements directly against Postgres for self-hosted
// deployments that skip the hosted execution service.
type PostgresExecutor struct {
	pool *pgxpool.Pool
}

func NewPostgresExecutor(ctx context.Context, dsn string) (*PostgresExecutor, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool.New: %w", err)
	}
	return &PostgresExecutor{pool: pool}, nil
}

func (e *PostgresExecutor) Name() string { return "postgres" }

func (e *PostgresExecutor) Execute(ctx context.Context, sql string) ([]map[string]any, error) {
	rows, err := e.pool.Query(ctx, sql)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	results := []map[string]any{}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		row := make(map[string]any, len(fields))
		for i, fd := range fields {
			row[fd.Name] = values[i]
		}
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return results, nil
}

func (e *PostgresExecutor) TestConnection(ctx context.Context) error {
	return e.pool.Ping(ctx)
}

// Close releases the connection pool.
func (e *PostgresExecutor) Close() {
	e.pool.Close()
}
