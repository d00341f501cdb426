package store

import (
	"context"
	"database/sql"
	"fmt"
)

// runRepo implements RunRepo on the sqlite handle.
type runRepo struct {
	db *sql.DB
}

func (r *runRepo) Save(ctx context.Context, run *Run) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO runs (id, url, questions, artifact, status, error, started_at, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.URL, run.Questions, run.Artifact, run.Status, run.Error,
		run.StartedAt.UTC(), run.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (r *runRepo) List(ctx context.Context, limit int) ([]Run, error) {
	query := `SELECT id, url, questions, artifact, status, error, started_at, duration_ms
	          FROM runs ORDER BY started_at DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.URL, &run.Questions, &run.Artifact,
			&run.Status, &run.Error, &run.StartedAt, &run.DurationMs); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
