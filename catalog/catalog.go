// Package catalog holds the tracer objects entering a correlation run,
// grouped by pixelization cell. Catalogs are built once and are
// read-only afterwards, so the correlation workers share them without
// synchronization.
package catalog

import (
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/quasarlab/skycorr/angular"
	"github.com/quasarlab/skycorr/pixel"
)

var (
	// ErrInvalidObject is wrapped by all object construction failures.
	ErrInvalidObject = errors.New("catalog: invalid object")

	// ErrNilScheme is returned when a catalog is built without a
	// pixelization scheme.
	ErrNilScheme = errors.New("catalog: nil pixelization scheme")
)

// Object is one sky tracer contributing to the correlation. All fields
// are immutable after construction.
type Object struct {
	angular.Point

	// ThingID uniquely identifies the underlying source. Pairs of
	// objects with equal ThingID are never counted, even across
	// catalogs.
	ThingID int64

	// Z is the object redshift.
	Z float64

	// RComov is the radial comoving distance, used for the parallel
	// separation axis.
	RComov float64

	// RTransComov is the transverse comoving distance, used for the
	// transverse separation axis. Equal to RComov in a flat cosmology
	// without distortion corrections.
	RTransComov float64

	// Weight is the object's non-negative scalar weight.
	Weight float64
}

// NewObject validates the inputs and derives the object's unit vector.
// RA and Dec are in radians; Dec must lie in [-π/2, π/2]. Weight must be
// finite and non-negative, all other values finite.
func NewObject(thingID int64, ra, dec, z, rComov, rTransComov, weight float64) (*Object, error) {
	for name, v := range map[string]float64{
		"ra": ra, "dec": dec, "z": z,
		"r_comov": rComov, "r_trans_comov": rTransComov, "weight": weight,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: non-finite %s", ErrInvalidObject, name)
		}
	}
	if dec < -math.Pi/2 || dec > math.Pi/2 {
		return nil, fmt.Errorf("%w: dec %v outside [-π/2, π/2]", ErrInvalidObject, dec)
	}
	if weight < 0 {
		return nil, fmt.Errorf("%w: negative weight %v", ErrInvalidObject, weight)
	}
	return &Object{
		Point:       angular.NewPoint(ra, dec),
		ThingID:     thingID,
		Z:           z,
		RComov:      rComov,
		RTransComov: rTransComov,
		Weight:      weight,
	}, nil
}

// Catalog maps pixelization cells to the objects they contain.
type Catalog struct {
	scheme pixel.Scheme
	cells  map[uint32][]*Object
	ids    []uint32
	n      int
}

// New groups objects by the cell containing them. The scheme is retained
// and drives the catalog's neighbor queries.
func New(scheme pixel.Scheme, objects []*Object) (*Catalog, error) {
	if scheme == nil {
		return nil, ErrNilScheme
	}
	c := &Catalog{
		scheme: scheme,
		cells:  make(map[uint32][]*Object),
		n:      len(objects),
	}
	for _, o := range objects {
		id := scheme.Cell(o.RA, o.Dec)
		c.cells[id] = append(c.cells[id], o)
	}
	c.ids = make([]uint32, 0, len(c.cells))
	for id := range c.cells {
		c.ids = append(c.ids, id)
	}
	slices.Sort(c.ids)
	return c, nil
}

// Scheme returns the pixelization scheme the catalog was built over.
func (c *Catalog) Scheme() pixel.Scheme { return c.scheme }

// CellIDs returns the sorted ids of all non-empty cells. Callers must
// not mutate the returned slice.
func (c *Catalog) CellIDs() []uint32 { return c.ids }

// Objects returns the objects in a cell, or nil for an empty cell.
// Callers must not mutate the returned slice.
func (c *Catalog) Objects(cell uint32) []*Object { return c.cells[cell] }

// Len returns the total number of objects in the catalog.
func (c *Catalog) Len() int { return c.n }
