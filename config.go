package skycorr

import (
	"fmt"
	"math"
)

// Kind selects the correlation flavor. It decides which catalogs enter
// the run and the sign convention of the parallel separation.
type Kind int

const (
	// KindAuto correlates a catalog with itself.
	KindAuto Kind = iota

	// KindCrossDR cross-correlates a data catalog (primary) against a
	// random catalog (secondary).
	KindCrossDR

	// KindCrossRD cross-correlates a random catalog (primary) against a
	// data catalog (secondary).
	KindCrossRD

	// KindCross is a genuine cross-correlation between two distinct
	// tracer types. Unlike the data/random kinds it keeps the sign of
	// the parallel separation, so swapping the catalogs mirrors the
	// histogram.
	KindCross
)

func (k Kind) String() string {
	switch k {
	case KindAuto:
		return "auto"
	case KindCrossDR:
		return "cross-dr"
	case KindCrossRD:
		return "cross-rd"
	case KindCross:
		return "cross"
	default:
		return fmt.Sprintf("Unknown(%d)", int(k))
	}
}

// absoluteRP reports whether the parallel separation is folded to its
// absolute value. Only a genuine cross-correlation keeps the sign.
func (k Kind) absoluteRP() bool { return k != KindCross }

// valid reports whether k is a defined kind.
func (k Kind) valid() bool { return k >= KindAuto && k <= KindCross }

// Config holds the immutable run parameters. Distances are in the same
// comoving units as the catalog objects (conventionally Mpc/h), angles
// in radians.
type Config struct {
	// RPMin and RPMax bound the parallel separation. RPMin may be
	// negative for signed cross-correlations.
	RPMin, RPMax float64

	// RTMax bounds the transverse separation. The lower bound is zero.
	RTMax float64

	// NumRPBins × NumRTBins is the histogram shape.
	NumRPBins, NumRTBins int

	// AngMax is the maximum angular separation searched. Pairs wider
	// apart are never formed. See cosmo.Model.AngMax for deriving it
	// from RTMax and the catalogs' minimum redshift.
	AngMax float64

	// ZCutMin and ZCutMax accept a pair when its mean redshift falls in
	// [ZCutMin, ZCutMax).
	ZCutMin, ZCutMax float64

	// Kind selects auto, data/random cross, or genuine cross mode.
	Kind Kind
}

// Validate checks the configuration. All failures wrap ErrInvalidConfig.
func (c Config) Validate() error {
	for field, v := range map[string]float64{
		"RPMin": c.RPMin, "RPMax": c.RPMax, "RTMax": c.RTMax,
		"AngMax": c.AngMax, "ZCutMin": c.ZCutMin, "ZCutMax": c.ZCutMax,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &ErrInvalidConfig{Field: field, Reason: "must be finite"}
		}
	}
	if c.RPMax <= c.RPMin {
		return &ErrInvalidConfig{Field: "RPMax", Reason: "must exceed RPMin"}
	}
	if c.RTMax <= 0 {
		return &ErrInvalidConfig{Field: "RTMax", Reason: "must be positive"}
	}
	if c.NumRPBins < 1 {
		return &ErrInvalidConfig{Field: "NumRPBins", Reason: "must be positive"}
	}
	if c.NumRTBins < 1 {
		return &ErrInvalidConfig{Field: "NumRTBins", Reason: "must be positive"}
	}
	if c.AngMax <= 0 || c.AngMax > math.Pi {
		return &ErrInvalidConfig{Field: "AngMax", Reason: "must be in (0, π]"}
	}
	if c.ZCutMax <= c.ZCutMin {
		return &ErrInvalidConfig{Field: "ZCutMax", Reason: "must exceed ZCutMin"}
	}
	if !c.Kind.valid() {
		return &ErrInvalidConfig{Field: "Kind", Reason: "unknown correlation kind"}
	}
	return nil
}
