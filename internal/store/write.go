package store

import (
	"context"
	"encoding/json"
	"fmt"
)

// WriteRun inserts a run header and its trace rows in a single transaction.
// A run is immutable once written; re-inserting an existing ID is an error.
func (s *Store) WriteRun(ctx context.Context, run Run, sites []Site) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("write run: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, model, seed, particles, objective)
		VALUES (?, ?, ?, ?, ?)
	`,
		run.ID,
		run.Model,
		int64(run.Seed),
		run.Particles,
		run.Objective,
	)
	if err != nil {
		return fmt.Errorf("write run: insert header: %w", err)
	}

	for _, site := range sites {
		dimsJSON, sizesJSON, dataJSON, err := marshalSite(site)
		if err != nil {
			return fmt.Errorf("write run: %w", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sites
			(run_id, position, name, observed, enumerated, dims, sizes, data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`,
			run.ID,
			site.Position,
			site.Name,
			site.Observed,
			site.Enumerated,
			dimsJSON,
			sizesJSON,
			dataJSON,
		)
		if err != nil {
			return fmt.Errorf("write run: insert site %q: %w", site.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("write run: commit: %w", err)
	}
	return nil
}

// DeleteRun removes a run and, via the foreign key cascade, its sites.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete run: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("delete run: %q not found", id)
	}
	return nil
}

// marshalSite serializes the variable-length site columns. JSON keeps the
// columns readable in ad hoc sqlite3 queries; empty slices marshal to "[]"
// and "null" is never written.
func marshalSite(site Site) (dims, sizes, data string, err error) {
	d := site.Dims
	if d == nil {
		d = []string{}
	}
	z := site.Sizes
	if z == nil {
		z = []int{}
	}
	v := site.Data
	if v == nil {
		v = []float64{}
	}

	dimsB, err := json.Marshal(d)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal dims: %w", err)
	}
	sizesB, err := json.Marshal(z)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal sizes: %w", err)
	}
	dataB, err := json.Marshal(v)
	if err != nil {
		return "", "", "", fmt.Errorf("marshal data: %w", err)
	}
	return string(dimsB), string(sizesB), string(dataB), nil
}
