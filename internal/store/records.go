package store

import (
	"fmt"
	"time"

	"github.com/minuet-ml/minuet/internal/engine"
	"github.com/minuet-ml/minuet/internal/tensor"
)

// Run is the stored header of one composed model execution.
type Run struct {
	ID        string
	Model     string
	Seed      uint64
	Particles int
	Objective float64
	CreatedAt time.Time
}

// Site is one stored trace entry.
type Site struct {
	Position   int
	Name       string
	Observed   bool
	Enumerated bool
	Dims       []string
	Sizes      []int
	Data       []float64
}

// SitesFromRecords converts an execution trace into storable rows.
func SitesFromRecords(records []engine.SiteRecord) []Site {
	sites := make([]Site, len(records))
	for i, r := range records {
		sites[i] = Site{
			Position:   i,
			Name:       r.Name,
			Observed:   r.Observed,
			Enumerated: r.Enumerated,
			Dims:       r.Dims,
			Sizes:      r.Sizes,
			Data:       r.Value.Data(),
		}
	}
	return sites
}

// Records converts stored rows back into an execution trace, rebuilding the
// value tensors. Used to seed a replay handler from a stored run.
func Records(sites []Site) ([]engine.SiteRecord, error) {
	records := make([]engine.SiteRecord, len(sites))
	for i, s := range sites {
		value, err := tensor.New(s.Dims, s.Sizes, s.Data)
		if err != nil {
			return nil, fmt.Errorf("rebuild site %q: %w", s.Name, err)
		}
		records[i] = engine.SiteRecord{
			Name:       s.Name,
			Observed:   s.Observed,
			Enumerated: s.Enumerated,
			Dims:       s.Dims,
			Sizes:      s.Sizes,
			Value:      value,
		}
	}
	return records, nil
}
