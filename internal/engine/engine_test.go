package engine

import (
	"context"
	"math"
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quasarlab/skycorr/catalog"
	"github.com/quasarlab/skycorr/pixel"
)

type countingProgress struct {
	n atomic.Int64
}

func (c *countingProgress) Increment() { c.n.Add(1) }

// randomCatalog builds a reproducible catalog clustered in a patch of
// sky so objects actually have neighbors.
func randomCatalog(t *testing.T, seed int64, n int) *catalog.Catalog {
	t.Helper()
	rng := rand.New(rand.NewSource(seed))
	scheme, err := pixel.NewRingScheme(64)
	require.NoError(t, err)

	objs := make([]*catalog.Object, 0, n)
	for i := 0; i < n; i++ {
		ra := 1.0 + rng.Float64()*0.2
		dec := -0.1 + rng.Float64()*0.2
		z := 2.0 + rng.Float64()
		r := 3300 + rng.Float64()*400
		w := 0.5 + rng.Float64()
		o, err := catalog.NewObject(int64(i), ra, dec, z, r, r, w)
		require.NoError(t, err)
		objs = append(objs, o)
	}
	cat, err := catalog.New(scheme, objs)
	require.NoError(t, err)
	return cat
}

// The final histogram must not depend on how cells are partitioned
// across workers.
func TestRunIndependentOfPartitioning(t *testing.T) {
	cat := randomCatalog(t, 42, 300)
	p := testParams()

	p.Workers = 1
	base, err := Run(context.Background(), cat, cat, p, nil, nil)
	require.NoError(t, err)
	want := base.Normalize()

	for _, workers := range []int{3, 8} {
		p.Workers = workers
		prog := &countingProgress{}
		grid, err := Run(context.Background(), cat, cat, p, nil, prog)
		require.NoError(t, err)
		res := grid.Normalize()

		// Progress counter always ends at the primary object count.
		assert.Equal(t, int64(cat.Len()), prog.n.Load(), "workers=%d", workers)

		for i := range want.Weight {
			assert.InDelta(t, want.Weight[i], res.Weight[i], 1e-9,
				"weight bin %d differs, workers=%d", i, workers)
			assert.Equal(t, want.Count[i], res.Count[i],
				"count bin %d differs, workers=%d", i, workers)
			assert.InDelta(t, want.MeanRP[i], res.MeanRP[i], 1e-9,
				"mean rp bin %d differs, workers=%d", i, workers)
		}
	}
}

func TestRunEmptyCatalog(t *testing.T) {
	scheme, err := pixel.NewRingScheme(16)
	require.NoError(t, err)
	cat, err := catalog.New(scheme, nil)
	require.NoError(t, err)

	grid, err := Run(context.Background(), cat, cat, testParams(), nil, nil)
	require.NoError(t, err)
	res := grid.Normalize()
	for _, c := range res.Count {
		assert.Zero(t, c)
	}
}

func TestRunCanceledContext(t *testing.T) {
	cat := randomCatalog(t, 7, 100)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cat, cat, testParams(), nil, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

// Same-catalog runs accumulate both orientations of every unordered
// pair, exactly like a cross run over two copies of the catalog.
func TestRunBothOrientationsAccumulate(t *testing.T) {
	scheme, err := pixel.NewRingScheme(64)
	require.NoError(t, err)

	a := mustObject(t, 1, 1.0, 0, 2.0, 3400, 1)
	b := mustObject(t, 2, 1.0+0.01, 0, 2.0, 3410, 1)
	cat, err := catalog.New(scheme, []*catalog.Object{a, b})
	require.NoError(t, err)

	p := testParams()
	p.Workers = 1
	grid, err := Run(context.Background(), cat, cat, p, nil, nil)
	require.NoError(t, err)

	res := grid.Normalize()
	var total int64
	for _, c := range res.Count {
		total += c
	}
	assert.Equal(t, int64(2), total)
}

func TestPartition(t *testing.T) {
	ids := []uint32{1, 2, 3, 4, 5, 6, 7}

	tests := []struct {
		name string
		n    int
		want [][]uint32
	}{
		{"Single", 1, [][]uint32{{1, 2, 3, 4, 5, 6, 7}}},
		{"Uneven", 3, [][]uint32{{1, 2, 3}, {4, 5}, {6, 7}}},
		{"Exact", 7, [][]uint32{{1}, {2}, {3}, {4}, {5}, {6}, {7}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := partition(ids, tt.n)
			require.Equal(t, tt.want, got)
			// Chunks are contiguous and cover all ids.
			var flat []uint32
			for _, c := range got {
				flat = append(flat, c...)
			}
			assert.Equal(t, ids, flat)
		})
	}
}

// Sanity: the two kernels agree with a direct brute-force count.
func TestRunMatchesBruteForce(t *testing.T) {
	cat := randomCatalog(t, 99, 80)
	p := testParams()
	p.Workers = 2

	grid, err := Run(context.Background(), cat, cat, p, nil, nil)
	require.NoError(t, err)
	res := grid.Normalize()

	// Brute force over all ordered pairs.
	var objs []*catalog.Object
	for _, id := range cat.CellIDs() {
		objs = append(objs, cat.Objects(id)...)
	}
	var wantPairs int64
	for _, o1 := range objs {
		for _, o2 := range objs {
			if o1.ThingID == o2.ThingID {
				continue
			}
			ang := sepBrute(o1, o2)
			if ang >= p.AngMax {
				continue
			}
			zm := (o1.Z + o2.Z) / 2
			if zm < p.ZCutMin || zm >= p.ZCutMax {
				continue
			}
			rp := math.Abs((o1.RComov - o2.RComov) * math.Cos(ang/2))
			rt := (o1.RTransComov + o2.RTransComov) * math.Sin(ang/2)
			w12 := o1.Weight * o2.Weight
			if rp < p.RPMin || rp >= p.RPMax || rt >= p.RTMax || w12 <= 0 {
				continue
			}
			wantPairs++
		}
	}

	var gotPairs int64
	for _, c := range res.Count {
		gotPairs += c
	}
	assert.Equal(t, wantPairs, gotPairs)
}

func sepBrute(a, b *catalog.Object) float64 {
	cos := a.X*b.X + a.Y*b.Y + a.Z*b.Z
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	ang := math.Acos(cos)
	if math.Abs(b.RA-a.RA) < 2.0/3600.0*math.Pi/180.0 &&
		math.Abs(b.Dec-a.Dec) < 2.0/3600.0*math.Pi/180.0 {
		dDec := b.Dec - a.Dec
		dRA := a.CosDec * (b.RA - a.RA)
		ang = math.Sqrt(dDec*dDec + dRA*dRA)
	}
	return ang
}
