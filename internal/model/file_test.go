package model

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModelFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const hmmYAML = `name: day-night
kind: hmm
hmm:
  initial: [0.6, 0.4]
  transition:
    - [0.7, 0.3]
    - [0.2, 0.8]
  means: [-1.0, 1.5]
  sigma: 0.8
  observations: [-0.5, 0.9, 1.2]
`

const mixtureYAML = `name: two-coins
kind: mixture
mixture:
  weight: 0.3
  means: [-1.0, 2.0]
  sigma: 0.5
  observations: [0.7]
`

func TestLoad_HMM(t *testing.T) {
	f, err := Load(writeModelFile(t, hmmYAML))
	require.NoError(t, err)

	assert.Equal(t, "day-night", f.Name)
	assert.Equal(t, KindHMM, f.Kind)
	require.NotNil(t, f.HMM)
	assert.Equal(t, []float64{0.6, 0.4}, f.HMM.Initial)

	m, err := f.Build()
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestLoad_Mixture(t *testing.T) {
	f, err := Load(writeModelFile(t, mixtureYAML))
	require.NoError(t, err)

	assert.Equal(t, KindMixture, f.Kind)
	require.NotNil(t, f.Mixture)

	m, err := f.Build()
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			"unknown field",
			"name: x\nkind: hmm\nhmm:\n  initial: [1]\n  transitions: []\n",
			"parse model file",
		},
		{
			"missing name",
			"kind: mixture\nmixture:\n  weight: 0.5\n  means: [0, 1]\n  sigma: 1\n  observations: [0]\n",
			"name is required",
		},
		{
			"missing kind",
			"name: x\n",
			"kind is required",
		},
		{
			"unknown kind",
			"name: x\nkind: lda\n",
			"unknown kind",
		},
		{
			"kind block mismatch",
			"name: x\nkind: hmm\nmixture:\n  weight: 0.5\n  means: [0, 1]\n  sigma: 1\n  observations: [0]\n",
			"hmm block is missing",
		},
		{
			"invalid parameters",
			"name: x\nkind: mixture\nmixture:\n  weight: 2\n  means: [0, 1]\n  sigma: 1\n  observations: [0]\n",
			"weight must be in",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeModelFile(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read model file")
}
