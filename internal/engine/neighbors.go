package engine

import (
	"github.com/quasarlab/skycorr/angular"
	"github.com/quasarlab/skycorr/catalog"
)

// neighborBuffer is the per-worker working set for one object's neighbor
// list. It replaces a per-object neighbor attribute: the buffer is
// reused across objects, so peak memory is bounded by the largest single
// candidate list rather than the total pair count.
type neighborBuffer struct {
	// candidate stage
	batch *angular.Batch
	objs  []*catalog.Object
	ang   []float64

	// accepted stage, structure-of-arrays for the binning kernel
	accAng []float64
	z2     []float64
	r2     []float64
	rt2    []float64
	w2     []float64
}

func newNeighborBuffer() *neighborBuffer {
	const hint = 256
	return &neighborBuffer{
		batch:  angular.NewBatch(hint),
		objs:   make([]*catalog.Object, 0, hint),
		ang:    make([]float64, 0, hint),
		accAng: make([]float64, 0, hint),
		z2:     make([]float64, 0, hint),
		r2:     make([]float64, 0, hint),
		rt2:    make([]float64, 0, hint),
		w2:     make([]float64, 0, hint),
	}
}

func (b *neighborBuffer) reset() {
	b.batch.Reset()
	b.objs = b.objs[:0]
	b.ang = b.ang[:0]
	b.accAng = b.accAng[:0]
	b.z2 = b.z2[:0]
	b.r2 = b.r2[:0]
	b.rt2 = b.rt2[:0]
	b.w2 = b.w2[:0]
}

// fill gathers the accepted neighbors of o1 from the target catalog into
// the buffer's SOA arrays and returns their count, plus the number of
// pair cosines that had to be clamped.
//
// Acceptance: the candidate comes from a cell within AngMax of o1, its
// ThingID differs from o1's (an object is never its own neighbor, even
// across catalogs), its exact separation is below AngMax, and the pair's
// mean redshift falls in [ZCutMin, ZCutMax). An object ending up with
// zero neighbors is not an error; it simply contributes nothing.
func (b *neighborBuffer) fill(o1 *catalog.Object, target *catalog.Catalog, p Params) (n, clamped int) {
	b.reset()

	cells := target.Scheme().CellsWithin(o1.Point, p.AngMax)
	it := cells.Iterator()
	for it.HasNext() {
		for _, o2 := range target.Objects(it.Next()) {
			if o2.ThingID == o1.ThingID {
				continue
			}
			b.objs = append(b.objs, o2)
			b.batch.Append(o2.Point)
		}
	}
	if len(b.objs) == 0 {
		return 0, 0
	}

	if cap(b.ang) < len(b.objs) {
		b.ang = make([]float64, len(b.objs))
	}
	b.ang = b.ang[:len(b.objs)]
	clamped = angular.Separations(o1.Point, b.batch, b.ang)

	for i, o2 := range b.objs {
		if b.ang[i] >= p.AngMax {
			continue
		}
		zMean := (o1.Z + o2.Z) / 2
		if zMean < p.ZCutMin || zMean >= p.ZCutMax {
			continue
		}
		b.accAng = append(b.accAng, b.ang[i])
		b.z2 = append(b.z2, o2.Z)
		b.r2 = append(b.r2, o2.RComov)
		b.rt2 = append(b.rt2, o2.RTransComov)
		b.w2 = append(b.w2, o2.Weight)
	}
	return len(b.accAng), clamped
}
