package skycorr

import "log/slog"

type options struct {
	workers  int
	logger   *Logger
	progress ProgressTracker
}

// Option configures Correlator constructor behavior.
type Option func(*options)

// WithWorkers configures the number of worker goroutines for the run.
// Each worker processes a contiguous slice of the primary catalog's
// cells into a private histogram, so the result is identical for any
// worker count.
//
// If workers <= 0, runtime.GOMAXPROCS(0) is used.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithLogger configures structured logging for the run.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := skycorr.NewJSONLogger(slog.LevelInfo)
//	corr, _ := skycorr.New(cat, nil, cfg, skycorr.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithProgress configures a progress tracker for the run.
// Pass nil to disable progress reporting.
func WithProgress(p ProgressTracker) Option {
	return func(o *options) {
		o.progress = p
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		logger:   NoopLogger(),
		progress: NoopProgressTracker{},
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
