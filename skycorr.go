package skycorr

import (
	"context"
	"log/slog"

	"github.com/quasarlab/skycorr/catalog"
	"github.com/quasarlab/skycorr/histogram"
	"github.com/quasarlab/skycorr/internal/engine"
)

// Correlator runs a pair-counting pass over one or two catalogs. It is
// immutable after construction and safe for concurrent Run calls.
type Correlator struct {
	primary   *catalog.Catalog
	secondary *catalog.Catalog
	cfg       Config
	opts      options
}

// New validates the configuration and catalogs and builds a Correlator.
//
// For KindAuto the secondary catalog must be nil: every object of the
// primary is paired against the rest of the primary. For the cross
// kinds a secondary catalog is required and must be built over the same
// pixelization scheme as the primary, since the neighbor search
// resolves the primary's positions to the secondary's cell ids.
func New(primary, secondary *catalog.Catalog, cfg Config, optFns ...Option) (*Correlator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if primary == nil {
		return nil, ErrNilCatalog
	}
	if cfg.Kind == KindAuto {
		if secondary != nil {
			return nil, ErrSecondaryCatalog
		}
	} else {
		if secondary == nil {
			return nil, ErrSecondaryCatalog
		}
		if primary.Scheme() != secondary.Scheme() {
			return nil, ErrSchemeMismatch
		}
	}
	return &Correlator{
		primary:   primary,
		secondary: secondary,
		cfg:       cfg,
		opts:      applyOptions(optFns),
	}, nil
}

// Run counts all accepted pairs, merges the per-worker histograms and
// returns the normalized result. The context cancels the run; a
// canceled run returns no partial result.
func (c *Correlator) Run(ctx context.Context) (*histogram.Result, error) {
	target := c.primary
	if c.cfg.Kind != KindAuto {
		target = c.secondary
	}

	var sl *slog.Logger
	if c.opts.logger != nil {
		l := c.opts.logger.WithKind(c.cfg.Kind).WithObjects(c.primary.Len())
		l.Info("starting correlation run",
			slog.Int("num_rp_bins", c.cfg.NumRPBins),
			slog.Int("num_rt_bins", c.cfg.NumRTBins),
			slog.Float64("ang_max", c.cfg.AngMax))
		sl = l.Logger
	}
	if c.opts.progress != nil {
		c.opts.progress.Start(int64(c.primary.Len()))
	}

	grid, err := engine.Run(ctx, c.primary, target, engine.Params{
		RPMin:   c.cfg.RPMin,
		RPMax:   c.cfg.RPMax,
		RTMax:   c.cfg.RTMax,
		NumRP:   c.cfg.NumRPBins,
		NumRT:   c.cfg.NumRTBins,
		AngMax:  c.cfg.AngMax,
		ZCutMin: c.cfg.ZCutMin,
		ZCutMax: c.cfg.ZCutMax,
		AbsRP:   c.cfg.Kind.absoluteRP(),
		Workers: c.opts.workers,
	}, sl, c.opts.progress)
	if err != nil {
		if sl != nil {
			sl.Error("correlation run failed", slog.Any("error", err))
		}
		return nil, err
	}

	res := grid.Normalize()
	res.RPMin = c.cfg.RPMin
	res.RPMax = c.cfg.RPMax
	res.RTMax = c.cfg.RTMax

	if sl != nil {
		var pairs int64
		for _, n := range res.Count {
			pairs += n
		}
		sl.Info("correlation run completed", slog.Int64("pairs", pairs))
	}
	return res, nil
}
