package dims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLeaseRelease(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Lease("x1"))
	assert.True(t, r.Live("x1"))

	require.NoError(t, r.Release("x1"))
	assert.False(t, r.Live("x1"))
	assert.Zero(t, r.Len())
}

func TestLease_Duplicate(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Lease("x1"))
	assert.Error(t, r.Lease("x1"), "double lease must fail")
}

func TestLease_EmptyName(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Lease(""))
}

func TestRelease_NotLeased(t *testing.T) {
	r := NewRegistry()
	assert.Error(t, r.Release("ghost"))
}

func TestRelease_Double(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Lease("p"))
	require.NoError(t, r.Release("p"))
	assert.Error(t, r.Release("p"))
}

func TestFresh_AvoidsLiveNames(t *testing.T) {
	r := NewRegistry()

	name, err := r.Fresh("particle")
	require.NoError(t, err)
	assert.Equal(t, "particle", name)

	name2, err := r.Fresh("particle")
	require.NoError(t, err)
	assert.Equal(t, "particle_1", name2)

	assert.Equal(t, []string{"particle", "particle_1"}, r.Leased())
}

func TestLeased_OrderPreserved(t *testing.T) {
	r := NewRegistry()

	require.NoError(t, r.Lease("a"))
	require.NoError(t, r.Lease("b"))
	require.NoError(t, r.Lease("c"))
	require.NoError(t, r.Release("b"))

	assert.Equal(t, []string{"a", "c"}, r.Leased())
}
