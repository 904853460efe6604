package skycorr

import (
	"errors"
	"fmt"
)

var (
	// ErrNilCatalog is returned when a required catalog is missing.
	ErrNilCatalog = errors.New("skycorr: nil catalog")

	// ErrSecondaryCatalog is returned when the secondary catalog does
	// not match the correlation kind: auto runs must not pass one,
	// cross runs must.
	ErrSecondaryCatalog = errors.New("skycorr: secondary catalog does not match correlation kind")

	// ErrSchemeMismatch is returned when the two catalogs of a cross
	// run were built over different pixelization schemes. Cell ids are
	// only comparable within one scheme.
	ErrSchemeMismatch = errors.New("skycorr: catalogs use different pixelization schemes")
)

// ErrInvalidConfig reports a rejected configuration field.
type ErrInvalidConfig struct {
	Field  string
	Reason string
}

func (e *ErrInvalidConfig) Error() string {
	return fmt.Sprintf("skycorr: invalid config: %s %s", e.Field, e.Reason)
}
