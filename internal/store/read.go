package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// ReadRun retrieves a run header and its sites in execution order.
// Returns sql.ErrNoRows if the run does not exist.
func (s *Store) ReadRun(ctx context.Context, id string) (Run, []Site, error) {
	run, err := s.readHeader(ctx, id)
	if err != nil {
		return Run{}, nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT position, name, observed, enumerated, dims, sizes, data
		FROM sites
		WHERE run_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return Run{}, nil, fmt.Errorf("query sites: %w", err)
	}
	defer rows.Close()

	sites := []Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return Run{}, nil, err
		}
		sites = append(sites, site)
	}
	if err := rows.Err(); err != nil {
		return Run{}, nil, fmt.Errorf("iterate sites: %w", err)
	}

	return run, sites, nil
}

// ListRuns returns run headers, newest first. A limit of zero or less means
// no limit.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	query := `
		SELECT id, model, seed, particles, objective, created_at
		FROM runs
		ORDER BY created_at DESC, id ASC
	`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}

	return runs, nil
}

func (s *Store) readHeader(ctx context.Context, id string) (Run, error) {
	var run Run
	var seed int64
	var createdAt string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, model, seed, particles, objective, created_at
		FROM runs
		WHERE id = ?
	`, id).Scan(&run.ID, &run.Model, &seed, &run.Particles, &run.Objective, &createdAt)
	if err != nil {
		return Run{}, err
	}
	run.Seed = uint64(seed)
	run.CreatedAt, err = parseTimestamp(createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("run %q: %w", id, err)
	}
	return run, nil
}

func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var seed int64
	var createdAt string
	if err := rows.Scan(&run.ID, &run.Model, &seed, &run.Particles, &run.Objective, &createdAt); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Seed = uint64(seed)
	t, err := parseTimestamp(createdAt)
	if err != nil {
		return Run{}, fmt.Errorf("run %q: %w", run.ID, err)
	}
	run.CreatedAt = t
	return run, nil
}

func scanSite(rows *sql.Rows) (Site, error) {
	var site Site
	var dimsJSON, sizesJSON, dataJSON string
	if err := rows.Scan(
		&site.Position, &site.Name, &site.Observed, &site.Enumerated,
		&dimsJSON, &sizesJSON, &dataJSON,
	); err != nil {
		return Site{}, fmt.Errorf("scan site: %w", err)
	}

	if err := json.Unmarshal([]byte(dimsJSON), &site.Dims); err != nil {
		return Site{}, fmt.Errorf("site %q: unmarshal dims: %w", site.Name, err)
	}
	if err := json.Unmarshal([]byte(sizesJSON), &site.Sizes); err != nil {
		return Site{}, fmt.Errorf("site %q: unmarshal sizes: %w", site.Name, err)
	}
	if err := json.Unmarshal([]byte(dataJSON), &site.Data); err != nil {
		return Site{}, fmt.Errorf("site %q: unmarshal data: %w", site.Name, err)
	}
	return site, nil
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02T15:04:05.000Z", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse created_at: %w", err)
	}
	return t, nil
}
