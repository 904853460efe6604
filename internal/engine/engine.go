// Package engine runs the pair-counting pass: it partitions the primary
// catalog's cells across workers, finds each object's neighbors through
// the pixelization index, bins the accepted pairs into per-worker
// histogram grids and merges the partials. Catalogs are read-only during
// the pass; the only shared mutable state is the progress counter.
package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/quasarlab/skycorr/catalog"
	"github.com/quasarlab/skycorr/histogram"
)

// Params are the immutable run parameters, mirrored from the public
// configuration.
type Params struct {
	RPMin, RPMax float64
	RTMax        float64
	NumRP, NumRT int
	AngMax       float64
	ZCutMin      float64
	ZCutMax      float64

	// AbsRP folds the parallel separation to its absolute value. Set for
	// same-catalog runs and for cross runs where the catalogs play
	// data/random roles; genuine cross-correlations keep the sign.
	AbsRP bool

	Workers int
}

// Progress receives one call per fully processed primary object. The
// counter is advisory: nothing in the pass depends on its value.
type Progress interface {
	Increment()
}

// Run executes the full pass and returns the merged histogram grid.
//
// The primary catalog's cell ids are split into contiguous chunks, one
// errgroup goroutine per chunk. Each worker accumulates into a private
// grid, so the merge order cannot affect the result beyond floating-point
// rounding. Any worker error, including context cancellation, fails the
// whole run; there are no partial results.
func Run(ctx context.Context, primary, target *catalog.Catalog, p Params,
	logger *slog.Logger, prog Progress) (*histogram.Grid, error) {

	merged, err := histogram.NewGrid(p.NumRP, p.NumRT)
	if err != nil {
		return nil, err
	}

	cells := primary.CellIDs()
	if len(cells) == 0 {
		return merged, nil
	}

	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(cells) {
		workers = len(cells)
	}
	chunks := partition(cells, workers)

	shared := &runState{
		logger: logger,
		total:  int64(primary.Len()),
		logLim: rate.NewLimiter(rate.Every(time.Second), 1),
	}

	grids := make([]*histogram.Grid, len(chunks))
	g, ctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			w, err := newWorker(p, target, shared)
			if err != nil {
				return err
			}
			for _, cell := range chunk {
				if err := ctx.Err(); err != nil {
					return err
				}
				for _, o1 := range primary.Objects(cell) {
					w.process(o1)
					shared.objectDone()
					if prog != nil {
						prog.Increment()
					}
				}
			}
			grids[i] = w.grid
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, pg := range grids {
		if err := merged.Merge(pg); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

// runState is the cross-worker shared state: the advisory progress
// counter and the once-per-run clamp diagnostic.
type runState struct {
	logger    *slog.Logger
	total     int64
	done      atomic.Int64
	logLim    *rate.Limiter
	clampOnce sync.Once
}

func (s *runState) objectDone() {
	n := s.done.Add(1)
	if s.logger != nil && s.logLim.Allow() {
		s.logger.Info("computing correlation",
			slog.Int64("objects_done", n),
			slog.Int64("objects_total", s.total),
			slog.Float64("percent", 100*float64(n)/float64(s.total)))
	}
}

func (s *runState) warnClamped(n int) {
	s.clampOnce.Do(func() {
		if s.logger != nil {
			s.logger.Warn("pair cosines clamped to [-1, 1]", slog.Int("pairs", n))
		}
	})
}

// partition splits ids into n contiguous chunks of near-equal length.
func partition(ids []uint32, n int) [][]uint32 {
	chunks := make([][]uint32, 0, n)
	size := len(ids) / n
	rem := len(ids) % n
	start := 0
	for i := 0; i < n; i++ {
		end := start + size
		if i < rem {
			end++
		}
		if start < end {
			chunks = append(chunks, ids[start:end])
		}
		start = end
	}
	return chunks
}
