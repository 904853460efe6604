package engine

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quasarlab/skycorr/catalog"
)

func testParams() Params {
	return Params{
		RPMin:   -200,
		RPMax:   200,
		RTMax:   200,
		NumRP:   50,
		NumRT:   50,
		AngMax:  0.1,
		ZCutMin: 0,
		ZCutMax: 10,
		AbsRP:   true,
	}
}

func mustObject(t *testing.T, id int64, ra, dec, z, r, w float64) *catalog.Object {
	t.Helper()
	o, err := catalog.NewObject(id, ra, dec, z, r, r, w)
	require.NoError(t, err)
	return o
}

// pushPair loads one synthetic neighbor into the worker buffer.
func pushPair(w *worker, ang, z2, r2, rt2, w2 float64) {
	w.buf.accAng = append(w.buf.accAng, ang)
	w.buf.z2 = append(w.buf.z2, z2)
	w.buf.r2 = append(w.buf.r2, r2)
	w.buf.rt2 = append(w.buf.rt2, rt2)
	w.buf.w2 = append(w.buf.w2, w2)
}

// A pair with rp exactly rp_max (ang=0 makes rp = r1-r2 exact) must be
// excluded by the strict mask, never clamped into the last bin.
func TestBinPairsRPUpperBoundExcluded(t *testing.T) {
	p := testParams()
	w, err := newWorker(p, nil, &runState{})
	require.NoError(t, err)

	o1 := mustObject(t, 1, 0, 0, 2.0, 200, 1)
	pushPair(w, 0, 2.0, 0, 0, 1) // rp = 200 == RPMax
	w.binPairs(o1, 1)

	res := w.grid.Normalize()
	for i, c := range res.Count {
		assert.Zero(t, c, "bin %d unexpectedly populated", i)
	}

	// One ulp below the bound lands in the last parallel bin row.
	w2, err := newWorker(p, nil, &runState{})
	require.NoError(t, err)
	o1b := mustObject(t, 1, 0, 0, 2.0, math.Nextafter(200, 0), 1)
	pushPair(w2, 0, 2.0, 0, 0, 1)
	w2.binPairs(o1b, 1)

	res2 := w2.grid.Normalize()
	var total int64
	for bin, c := range res2.Count {
		if c > 0 {
			assert.Equal(t, p.NumRP-1, bin/p.NumRT, "wrong parallel row")
		}
		total += c
	}
	assert.Equal(t, int64(1), total)
}

// rt exactly rt_max: an antipodal pair has ang = π and sin(ang/2) = 1,
// so rt = rt1 + rt2 exactly.
func TestBinPairsRTUpperBoundExcluded(t *testing.T) {
	p := testParams()
	w, err := newWorker(p, nil, &runState{})
	require.NoError(t, err)

	o1 := mustObject(t, 1, 0, 0, 2.0, 100, 1)
	o1.RTransComov = 120
	pushPair(w, math.Pi, 2.0, 100, 80, 1) // rt = 120 + 80 = 200 == RTMax
	w.binPairs(o1, 1)

	res := w.grid.Normalize()
	for _, c := range res.Count {
		assert.Zero(t, c)
	}
}

func TestBinPairsZeroWeightExcluded(t *testing.T) {
	p := testParams()
	w, err := newWorker(p, nil, &runState{})
	require.NoError(t, err)

	o1 := mustObject(t, 1, 0, 0, 2.0, 110, 1)
	pushPair(w, 0.01, 2.0, 100, 100, 0)
	w.binPairs(o1, 1)

	res := w.grid.Normalize()
	for _, c := range res.Count {
		assert.Zero(t, c)
	}
}

func TestBinPairsWeightedMean(t *testing.T) {
	p := testParams()
	w, err := newWorker(p, nil, &runState{})
	require.NoError(t, err)

	// ang = 0: rp = r1 - r2 exactly, rt = 0, both pairs in one bin.
	o1 := mustObject(t, 1, 0, 0, 2.0, 1000, 1)
	pushPair(w, 0, 2.2, 990, 0, 2) // rp = 10, w12 = 2
	pushPair(w, 0, 2.6, 988, 0, 6) // rp = 12, w12 = 6
	w.binPairs(o1, 2)

	res := w.grid.Normalize()
	// Both rp values scale to the same bin: floor((rp+200)/400*50) = 26.
	bin := 0 + p.NumRT*26
	require.Equal(t, int64(2), res.Count[bin])
	assert.InDelta(t, 8.0, res.Weight[bin], 1e-12)
	assert.InDelta(t, (10.0*2+12.0*6)/8, res.MeanRP[bin], 1e-12)
	assert.InDelta(t, (2.1*2+2.3*6)/8, res.MeanZ[bin], 1e-12)
}

func TestBinPairsSign(t *testing.T) {
	// o1 closer than its neighbor: rp = r1 - r2 < 0.
	o1 := mustObject(t, 1, 0, 0, 2.0, 990, 1)

	t.Run("AbsoluteFoldsNegative", func(t *testing.T) {
		p := testParams()
		p.AbsRP = true
		w, err := newWorker(p, nil, &runState{})
		require.NoError(t, err)
		pushPair(w, 0, 2.0, 1000, 0, 1)
		w.binPairs(o1, 1)

		res := w.grid.Normalize()
		bin := p.NumRT * 26 // |rp| = 10
		assert.Equal(t, int64(1), res.Count[bin])
		assert.InDelta(t, 10.0, res.MeanRP[bin], 1e-12)
	})

	t.Run("SignedKeepsNegative", func(t *testing.T) {
		p := testParams()
		p.AbsRP = false
		w, err := newWorker(p, nil, &runState{})
		require.NoError(t, err)
		pushPair(w, 0, 2.0, 1000, 0, 1)
		w.binPairs(o1, 1)

		res := w.grid.Normalize()
		bin := p.NumRT * 23 // floor((-10+200)/400*50) = 23
		assert.Equal(t, int64(1), res.Count[bin])
		assert.InDelta(t, -10.0, res.MeanRP[bin], 1e-12)
	})
}
