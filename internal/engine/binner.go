package engine

import (
	"math"

	"github.com/quasarlab/skycorr/catalog"
	"github.com/quasarlab/skycorr/histogram"
)

// worker owns one partition of the primary catalog: a private histogram
// grid and a reusable neighbor buffer. Workers never touch each other's
// state; only runState is shared.
type worker struct {
	params Params
	target *catalog.Catalog
	shared *runState
	grid   *histogram.Grid
	buf    *neighborBuffer
}

func newWorker(p Params, target *catalog.Catalog, shared *runState) (*worker, error) {
	grid, err := histogram.NewGrid(p.NumRP, p.NumRT)
	if err != nil {
		return nil, err
	}
	return &worker{
		params: p,
		target: target,
		shared: shared,
		grid:   grid,
		buf:    newNeighborBuffer(),
	}, nil
}

// process finds o1's neighbors and accumulates all accepted pairs. The
// neighbor buffer is consumed within this call; nothing about the pair
// pass survives on the object itself.
func (w *worker) process(o1 *catalog.Object) {
	n, clamped := w.buf.fill(o1, w.target, w.params)
	if clamped > 0 {
		w.shared.warnClamped(clamped)
	}
	if n == 0 {
		return
	}
	w.binPairs(o1, n)
}

// binPairs is the accumulation kernel. It runs over the buffer's SOA
// arrays without allocating.
//
// For each neighbor:
//
//	rp  = (r1 − r2)·cos(ang/2)    (absolute value under AbsRP)
//	rt  = (rt1 + rt2)·sin(ang/2)
//	z   = (z1 + z2)/2
//	w12 = w1·w2
//
// kept only under the strict mask rpMin ≤ rp < rpMax, rt < rtMax,
// w12 > 0. The mask alone decides which pairs are counted; the index
// clamp below never reinstates an excluded pair.
func (w *worker) binPairs(o1 *catalog.Object, n int) {
	p := w.params
	rpSpan := p.RPMax - p.RPMin
	fNumRP := float64(p.NumRP)
	fNumRT := float64(p.NumRT)

	for i := 0; i < n; i++ {
		sinHalf, cosHalf := math.Sincos(w.buf.accAng[i] / 2)
		rp := (o1.RComov - w.buf.r2[i]) * cosHalf
		if p.AbsRP {
			rp = math.Abs(rp)
		}
		rt := (o1.RTransComov + w.buf.rt2[i]) * sinHalf
		w12 := o1.Weight * w.buf.w2[i]

		if rp < p.RPMin || rp >= p.RPMax || rt >= p.RTMax || w12 <= 0 {
			continue
		}

		bp := int((rp - p.RPMin) / rpSpan * fNumRP)
		bt := int(rt / p.RTMax * fNumRT)
		// The mask guarantees the scaled fractions are below 1, but the
		// division can round a value within one ulp of the upper edge to
		// exactly 1. Guard the bound without changing pair membership.
		if bp == p.NumRP {
			bp = p.NumRP - 1
		}
		if bt == p.NumRT {
			bt = p.NumRT - 1
		}

		z := (o1.Z + w.buf.z2[i]) / 2
		w.grid.Add(bt+p.NumRT*bp, w12, rp, rt, z)
	}
}
