package histogram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGridValidation(t *testing.T) {
	_, err := NewGrid(0, 10)
	assert.Error(t, err)
	_, err = NewGrid(10, -1)
	assert.Error(t, err)

	g, err := NewGrid(50, 50)
	require.NoError(t, err)
	assert.Equal(t, 2500, g.NumBins())
}

// Two pairs with known (rp, w) in one bin: the normalized mean must be
// the weighted mean.
func TestNormalizeWeightedMean(t *testing.T) {
	g, err := NewGrid(2, 2)
	require.NoError(t, err)

	g.Add(3, 2.0, 10.0, 5.0, 2.2)
	g.Add(3, 6.0, 30.0, 7.0, 2.4)

	res := g.Normalize()
	require.Equal(t, int64(2), res.Count[3])
	assert.InDelta(t, 8.0, res.Weight[3], 1e-15)
	assert.InDelta(t, (10.0*2+30.0*6)/8, res.MeanRP[3], 1e-12)
	assert.InDelta(t, (5.0*2+7.0*6)/8, res.MeanRT[3], 1e-12)
	assert.InDelta(t, (2.2*2+2.4*6)/8, res.MeanZ[3], 1e-12)
}

func TestNormalizeEmptyBins(t *testing.T) {
	g, err := NewGrid(3, 3)
	require.NoError(t, err)
	res := g.Normalize()
	for i := 0; i < g.NumBins(); i++ {
		assert.Zero(t, res.Weight[i])
		assert.Zero(t, res.MeanRP[i])
		assert.Zero(t, res.MeanRT[i])
		assert.Zero(t, res.MeanZ[i])
		assert.Zero(t, res.Count[i])
	}
}

func TestMergeCommutative(t *testing.T) {
	build := func(adds [][5]float64) *Grid {
		g, err := NewGrid(4, 4)
		require.NoError(t, err)
		for _, a := range adds {
			g.Add(int(a[0]), a[1], a[2], a[3], a[4])
		}
		return g
	}

	a := [][5]float64{{0, 1, 2, 3, 4}, {5, 0.5, -1, 2, 2.1}}
	b := [][5]float64{{5, 2, 8, 1, 2.3}, {15, 3, 4, 4, 2.0}}

	ab := build(a)
	require.NoError(t, ab.Merge(build(b)))
	ba := build(b)
	require.NoError(t, ba.Merge(build(a)))

	resAB := ab.Normalize()
	resBA := ba.Normalize()
	for i := range resAB.Weight {
		assert.InDelta(t, resAB.Weight[i], resBA.Weight[i], 1e-15)
		assert.InDelta(t, resAB.MeanRP[i], resBA.MeanRP[i], 1e-12)
		assert.Equal(t, resAB.Count[i], resBA.Count[i])
	}
}

func TestMergeDimensionMismatch(t *testing.T) {
	a, err := NewGrid(4, 4)
	require.NoError(t, err)
	b, err := NewGrid(4, 5)
	require.NoError(t, err)
	assert.ErrorIs(t, a.Merge(b), ErrDimensionMismatch)
}
