package harness

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the structural shape of a scenario's trace: site names,
// flags, axes, and sizes. Element data is deliberately excluded so goldens
// stay free of floating-point noise.
type TraceSnapshot struct {
	Scenario  string         `json:"scenario"`
	Particles int            `json:"particles"`
	EnumDims  []string       `json:"enum_dims"`
	Sites     []SiteSnapshot `json:"sites"`
}

// SiteSnapshot is one trace entry without its values.
type SiteSnapshot struct {
	Name       string   `json:"name"`
	Observed   bool     `json:"observed"`
	Enumerated bool     `json:"enumerated"`
	Dims       []string `json:"dims"`
	Sizes      []int    `json:"sizes"`
}

// Snapshot builds the structural snapshot of a result. Nil slices are
// normalized to empty ones so the JSON encoding is stable.
func Snapshot(scenario *Scenario, result *Result) TraceSnapshot {
	particles := scenario.Particles
	if particles <= 0 {
		particles = 1
	}
	snap := TraceSnapshot{
		Scenario:  scenario.Name,
		Particles: particles,
		EnumDims:  emptyIfNil(result.EnumDims),
		Sites:     make([]SiteSnapshot, len(result.Trace)),
	}
	for i, r := range result.Trace {
		snap.Sites[i] = SiteSnapshot{
			Name:       r.Name,
			Observed:   r.Observed,
			Enumerated: r.Enumerated,
			Dims:       emptyIfNil(r.Dims),
			Sizes:      emptyIntsIfNil(r.Sizes),
		}
	}
	return snap
}

// RunWithGolden executes a scenario and compares its trace snapshot against
// testdata/golden/<name>.golden. Regenerate goldens with:
//
//	go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(Snapshot(scenario, result), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}
	data = append(data, '\n')

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenario.Name, data)

	return result, nil
}

func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func emptyIntsIfNil(s []int) []int {
	if s == nil {
		return []int{}
	}
	return s
}
