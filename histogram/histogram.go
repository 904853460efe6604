// Package histogram accumulates weighted pair counts on a flattened 2D
// grid of parallel × transverse separation bins and normalizes them into
// per-bin means. Grids merge by element-wise addition, so partial grids
// from independent workers combine in any order.
package histogram

import (
	"errors"
	"fmt"
)

// ErrDimensionMismatch is returned when two grids with different bin
// layouts are merged.
var ErrDimensionMismatch = errors.New("histogram: grid dimensions differ")

// Grid is a flattened numRP × numRT accumulator. Bin (bp, bt) lives at
// flat index bt + numRT*bp. A Grid is not safe for concurrent mutation;
// each worker fills its own and the partials are merged afterwards.
type Grid struct {
	numRP, numRT int

	weight []float64 // Σ w12
	wRP    []float64 // Σ w12·rp
	wRT    []float64 // Σ w12·rt
	wZ     []float64 // Σ w12·z
	count  []int64   // raw pair count
}

// NewGrid creates an empty grid.
func NewGrid(numRP, numRT int) (*Grid, error) {
	if numRP < 1 || numRT < 1 {
		return nil, fmt.Errorf("histogram: non-positive dimensions %d x %d", numRP, numRT)
	}
	n := numRP * numRT
	return &Grid{
		numRP:  numRP,
		numRT:  numRT,
		weight: make([]float64, n),
		wRP:    make([]float64, n),
		wRT:    make([]float64, n),
		wZ:     make([]float64, n),
		count:  make([]int64, n),
	}, nil
}

// Dims returns the grid dimensions (parallel, transverse).
func (g *Grid) Dims() (numRP, numRT int) { return g.numRP, g.numRT }

// NumBins returns the flattened bin count.
func (g *Grid) NumBins() int { return g.numRP * g.numRT }

// Add accumulates one pair into a flat bin.
func (g *Grid) Add(bin int, w12, rp, rt, z float64) {
	g.weight[bin] += w12
	g.wRP[bin] += w12 * rp
	g.wRT[bin] += w12 * rt
	g.wZ[bin] += w12 * z
	g.count[bin]++
}

// Merge adds other into g element-wise. Merging is commutative and
// associative up to floating-point rounding, so the final histogram does
// not depend on worker completion order.
func (g *Grid) Merge(other *Grid) error {
	if other.numRP != g.numRP || other.numRT != g.numRT {
		return fmt.Errorf("%w: %dx%d vs %dx%d", ErrDimensionMismatch,
			g.numRP, g.numRT, other.numRP, other.numRT)
	}
	for i := range g.weight {
		g.weight[i] += other.weight[i]
		g.wRP[i] += other.wRP[i]
		g.wRT[i] += other.wRT[i]
		g.wZ[i] += other.wZ[i]
		g.count[i] += other.count[i]
	}
	return nil
}

// Result is the normalized histogram: per-bin weighted mean separations
// and redshift alongside the raw accumulators. Bounds and bin counts are
// carried so the result is self-describing for persistence.
type Result struct {
	NumRP, NumRT int

	RPMin, RPMax float64
	RTMax        float64

	Weight []float64
	MeanRP []float64
	MeanRT []float64
	MeanZ  []float64
	Count  []int64
}

// Normalize divides the weighted sums by the weight per bin. Bins with
// zero accumulated weight keep their zero values; an empty bin is not an
// error.
func (g *Grid) Normalize() *Result {
	n := g.NumBins()
	res := &Result{
		NumRP:  g.numRP,
		NumRT:  g.numRT,
		Weight: make([]float64, n),
		MeanRP: make([]float64, n),
		MeanRT: make([]float64, n),
		MeanZ:  make([]float64, n),
		Count:  make([]int64, n),
	}
	copy(res.Weight, g.weight)
	copy(res.Count, g.count)
	for i := 0; i < n; i++ {
		if g.weight[i] > 0 {
			res.MeanRP[i] = g.wRP[i] / g.weight[i]
			res.MeanRT[i] = g.wRT[i] / g.weight[i]
			res.MeanZ[i] = g.wZ[i] / g.weight[i]
		}
	}
	return res
}
