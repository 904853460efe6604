package pixel

import (
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/quasarlab/skycorr/angular"
)

// padding applied to query bounds so positions sitting exactly on a cell
// edge cannot be lost to floating-point rounding.
const queryPad = 1e-12

// RingScheme partitions the sphere into iso-latitude bands, each split
// into equal-width RA cells. Cells are close to square: a band's RA
// subdivision is chosen so cell width tracks the band height at the
// band's central declination. Polar bands collapse to a single cell.
type RingScheme struct {
	bands  int
	height float64 // band height (radians)
	nra    []uint32
	offset []uint32
	total  uint32
}

// NewRingScheme creates a scheme with the given number of declination
// bands. More bands mean smaller cells and tighter disc queries.
func NewRingScheme(bands int) (*RingScheme, error) {
	if bands < 1 {
		return nil, fmt.Errorf("pixel: bands must be positive, got %d", bands)
	}
	s := &RingScheme{
		bands:  bands,
		height: math.Pi / float64(bands),
		nra:    make([]uint32, bands),
		offset: make([]uint32, bands),
	}
	for b := 0; b < bands; b++ {
		decMid := -math.Pi/2 + (float64(b)+0.5)*s.height
		n := int(math.Round(2 * math.Pi * math.Cos(decMid) / s.height))
		if n < 1 {
			n = 1
		}
		s.offset[b] = s.total
		s.nra[b] = uint32(n)
		s.total += uint32(n)
	}
	return s, nil
}

// NumCells implements Scheme.
func (s *RingScheme) NumCells() uint32 { return s.total }

// Cell implements Scheme.
func (s *RingScheme) Cell(ra, dec float64) uint32 {
	b := s.band(dec)
	n := s.nra[b]
	c := uint32(normalizeRA(ra) / (2 * math.Pi) * float64(n))
	if c >= n {
		c = n - 1
	}
	return s.offset[b] + c
}

// CellsWithin implements Scheme. The result is a superset of the cells
// intersecting the disc: the declination extent of the disc selects the
// bands, and the widest RA extent of the disc (the tangent longitude of
// the spherical cap, asin(sin r / cos dec)) selects an arc of cells in
// every band. Caps that reach over a pole take whole rings.
func (s *RingScheme) CellsWithin(p angular.Point, radius float64) *roaring.Bitmap {
	out := roaring.New()
	if radius <= 0 {
		out.Add(s.Cell(p.RA, p.Dec))
		return out
	}
	if radius >= math.Pi/2 {
		// Wide cones degenerate to a full-sky scan.
		out.AddRange(0, uint64(s.total))
		return out
	}

	allRA := false
	var dRA float64
	if sr := math.Sin(radius); sr >= p.CosDec {
		allRA = true // the cap contains a pole
	} else {
		dRA = math.Asin(sr/p.CosDec) + queryPad
	}

	bLo := s.band(math.Max(p.Dec-radius-queryPad, -math.Pi/2))
	bHi := s.band(math.Min(p.Dec+radius+queryPad, math.Pi/2))
	for b := bLo; b <= bHi; b++ {
		base := uint64(s.offset[b])
		if allRA {
			out.AddRange(base, base+uint64(s.nra[b]))
			continue
		}
		s.addArc(out, b, p.RA, dRA)
	}
	return out
}

// addArc adds the cells of band b intersecting [ra-dRA, ra+dRA].
func (s *RingScheme) addArc(out *roaring.Bitmap, b int, ra, dRA float64) {
	n := s.nra[b]
	base := uint64(s.offset[b])
	cellWidth := 2 * math.Pi / float64(n)
	if 2*dRA+cellWidth >= 2*math.Pi {
		out.AddRange(base, base+uint64(n))
		return
	}

	lo := normalizeRA(ra - dRA)
	hi := normalizeRA(ra + dRA)
	cl := uint32(lo / (2 * math.Pi) * float64(n))
	if cl >= n {
		cl = n - 1
	}
	ch := uint32(hi / (2 * math.Pi) * float64(n))
	if ch >= n {
		ch = n - 1
	}
	if lo <= hi {
		out.AddRange(base+uint64(cl), base+uint64(ch)+1)
		return
	}
	// The arc wraps through RA = 0.
	out.AddRange(base+uint64(cl), base+uint64(n))
	out.AddRange(base, base+uint64(ch)+1)
}

func (s *RingScheme) band(dec float64) int {
	b := int((dec + math.Pi/2) / s.height)
	if b < 0 {
		b = 0
	}
	if b >= s.bands {
		b = s.bands - 1
	}
	return b
}

func normalizeRA(ra float64) float64 {
	ra = math.Mod(ra, 2*math.Pi)
	if ra < 0 {
		ra += 2 * math.Pi
	}
	return ra
}
