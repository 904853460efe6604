package pixel

import (
	"github.com/RoaringBitmap/roaring/v2"

	"github.com/quasarlab/skycorr/angular"
)

// Scheme is a fixed partition of the sphere into cells identified by
// dense uint32 ids in [0, NumCells).
//
// CellsWithin is an inclusive query: it may return cells that hold no
// point within radius of p (false positives are filtered downstream by
// exact angular separations), but it must never omit a cell that could
// hold such a point.
type Scheme interface {
	// NumCells returns the total number of cells in the partition.
	NumCells() uint32

	// Cell returns the id of the cell containing the position given by
	// right ascension and declination in radians.
	Cell(ra, dec float64) uint32

	// CellsWithin returns the ids of all cells that may contain a point
	// within the angular radius (radians) of p.
	CellsWithin(p angular.Point, radius float64) *roaring.Bitmap
}
