// Package harness runs bundled model scenarios end to end: compute the
// objective, round-trip the trace through an in-memory store, and compare
// the structural trace shape against golden files.
package harness

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/minuet-ml/minuet/internal/engine"
	"github.com/minuet-ml/minuet/internal/infer"
	"github.com/minuet-ml/minuet/internal/store"
)

// Scenario is one end-to-end case: a model plus its run configuration.
type Scenario struct {
	// Name uniquely identifies the scenario and its golden file.
	Name string

	// Description explains what the scenario covers.
	Description string

	// Model is the generative procedure under test.
	Model engine.Model

	// Particles is the sampling axis size. Zero means one.
	Particles int

	// Seed fixes the run RNG so traces are reproducible.
	Seed uint64
}

// Result is the outcome of one scenario execution.
type Result struct {
	// Objective is the evaluated log-marginal.
	Objective float64

	// EnumDims lists the enumeration axes the run marginalized.
	EnumDims []string

	// Trace holds the recorded sites after a store round trip.
	Trace []engine.SiteRecord
}

// Run executes a scenario. The trace is written to a fresh in-memory store
// and read back, so every scenario also exercises persistence.
func Run(scenario *Scenario) (*Result, error) {
	if scenario.Model == nil {
		return nil, fmt.Errorf("scenario %q has no model", scenario.Name)
	}

	res, err := infer.Marginal(scenario.Model, infer.Config{
		Particles: scenario.Particles,
		Seed:      scenario.Seed,
	})
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", scenario.Name, err)
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("scenario %q: open store: %w", scenario.Name, err)
	}
	defer st.Close()

	ctx := context.Background()
	run := store.Run{
		ID:        uuid.NewString(),
		Model:     scenario.Name,
		Seed:      scenario.Seed,
		Particles: scenario.Particles,
		Objective: res.LogMarginal,
	}
	if err := st.WriteRun(ctx, run, store.SitesFromRecords(res.Trace)); err != nil {
		return nil, fmt.Errorf("scenario %q: write trace: %w", scenario.Name, err)
	}
	_, sites, err := st.ReadRun(ctx, run.ID)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: read trace: %w", scenario.Name, err)
	}
	records, err := store.Records(sites)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: rebuild trace: %w", scenario.Name, err)
	}

	return &Result{
		Objective: res.LogMarginal,
		EnumDims:  res.EnumDims,
		Trace:     records,
	}, nil
}
