package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minuet-ml/minuet/internal/store"
)

func TestReplayMatchesStoredRun(t *testing.T) {
	dbPath, runID := runStoredModel(t, hmmModelYAML)

	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", runID, writeModelYAML(t, hmmModelYAML)})

	require.NoError(t, cmd.Execute())
	assert.Contains(t, buf.String(), "MATCH")
}

func TestReplayDetectsModelDrift(t *testing.T) {
	dbPath, runID := runStoredModel(t, hmmModelYAML)

	// Same structure, different emission parameters: the replayed objective
	// cannot match the stored one.
	drifted := `name: day-night
kind: hmm
hmm:
  initial: [0.6, 0.4]
  transition:
    - [0.7, 0.3]
    - [0.2, 0.8]
  means: [-2.0, 3.0]
  sigma: 0.8
  observations: [-0.5, 0.9, 1.2]
`
	buf := &bytes.Buffer{}
	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(buf)
	cmd.SetArgs([]string{"--db", dbPath, "--run", runID, writeModelYAML(t, drifted)})

	err := cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, buf.String(), "MISMATCH")
}

func TestReplayUnknownRun(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "runs.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--run", "absent", writeModelYAML(t, hmmModelYAML)})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestReplayCorruptedObjective(t *testing.T) {
	dbPath, runID := runStoredModel(t, mixtureModelYAML)

	// Rewrite the stored run with a wrong objective, keeping the trace.
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	run, sites, err := st.ReadRun(ctx, runID)
	require.NoError(t, err)
	require.NoError(t, st.DeleteRun(ctx, runID))
	run.Objective += 1
	require.NoError(t, st.WriteRun(ctx, run, sites))
	require.NoError(t, st.Close())

	cmd := NewReplayCommand(&RootOptions{Format: "text"})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"--db", dbPath, "--run", runID, writeModelYAML(t, mixtureModelYAML)})

	err = cmd.Execute()
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
}
