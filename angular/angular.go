package angular

import "math"

// SmallAngleCutoff is the separation (radians) below which the arccos
// formulation loses precision and the flat-sky approximation is used
// instead. 2 arcseconds.
const SmallAngleCutoff = 2.0 / 3600.0 * math.Pi / 180.0

// Point is a fixed position on the unit sphere. The cartesian components
// and cos(dec) are derived once at construction and never change.
type Point struct {
	RA, Dec float64
	X, Y, Z float64
	CosDec  float64
}

// NewPoint derives the unit vector for a right ascension and declination
// given in radians.
func NewPoint(ra, dec float64) Point {
	sinDec, cosDec := math.Sincos(dec)
	sinRA, cosRA := math.Sincos(ra)
	return Point{
		RA:     ra,
		Dec:    dec,
		X:      cosRA * cosDec,
		Y:      sinRA * cosDec,
		Z:      sinDec,
		CosDec: cosDec,
	}
}

// Batch is a structure-of-arrays collection of candidate positions.
// Reset and reuse batches across reference objects to keep the neighbor
// search allocation-free in steady state.
type Batch struct {
	X, Y, Z []float64
	RA, Dec []float64
}

// NewBatch creates a batch with room for n positions.
func NewBatch(n int) *Batch {
	return &Batch{
		X:   make([]float64, 0, n),
		Y:   make([]float64, 0, n),
		Z:   make([]float64, 0, n),
		RA:  make([]float64, 0, n),
		Dec: make([]float64, 0, n),
	}
}

// Append adds a position to the batch.
func (b *Batch) Append(p Point) {
	b.X = append(b.X, p.X)
	b.Y = append(b.Y, p.Y)
	b.Z = append(b.Z, p.Z)
	b.RA = append(b.RA, p.RA)
	b.Dec = append(b.Dec, p.Dec)
}

// Len returns the number of positions in the batch.
func (b *Batch) Len() int { return len(b.X) }

// Reset empties the batch, retaining capacity.
func (b *Batch) Reset() {
	b.X = b.X[:0]
	b.Y = b.Y[:0]
	b.Z = b.Z[:0]
	b.RA = b.RA[:0]
	b.Dec = b.Dec[:0]
}

// Separations fills out[:b.Len()] with the angular separation (radians)
// between ref and each batch position.
//
// The separation is arccos of the unit-vector dot product, with the
// cosine clamped to [-1, 1]; the number of clamped entries is returned so
// the caller can emit a diagnostic. For candidates within
// SmallAngleCutoff of ref in both RA and Dec the entry is recomputed with
// the flat-sky approximation sqrt(Δdec² + (cosDec·Δra)²), which stays
// accurate where arccos does not.
//
// out must have at least b.Len() elements.
func Separations(ref Point, b *Batch, out []float64) (clamped int) {
	for i := range b.X {
		cos := ref.X*b.X[i] + ref.Y*b.Y[i] + ref.Z*b.Z[i]
		var ang float64
		switch {
		case cos >= 1:
			clamped++
			ang = 0
		case cos <= -1:
			clamped++
			ang = math.Pi
		default:
			ang = math.Acos(cos)
		}
		if math.Abs(b.RA[i]-ref.RA) < SmallAngleCutoff &&
			math.Abs(b.Dec[i]-ref.Dec) < SmallAngleCutoff {
			dDec := b.Dec[i] - ref.Dec
			dRA := ref.CosDec * (b.RA[i] - ref.RA)
			ang = math.Sqrt(dDec*dDec + dRA*dRA)
		}
		out[i] = ang
	}
	return clamped
}

// Separation returns the angular separation between two points. It
// applies the same clamping and small-angle handling as Separations.
func Separation(a, b Point) float64 {
	var batch Batch
	batch.X = []float64{b.X}
	batch.Y = []float64{b.Y}
	batch.Z = []float64{b.Z}
	batch.RA = []float64{b.RA}
	batch.Dec = []float64{b.Dec}
	var out [1]float64
	Separations(a, &batch, out[:])
	return out[0]
}
