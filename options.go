package hypervec

import (
	"log/slog"

	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/metadata"
)

type options struct {
	metricsCollector MetricsCollector
	logger           *Logger
	parallelism      int
	memoryLimit      int64
	configFile       string
	learner          curvature.Kind
	learnOptions     *curvature.Options
}

// Option configures Open.
type Option func(*options)

// WithMetricsCollector configures a metrics collector for monitoring operations.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &hypervec.BasicMetricsCollector{}
//	db, _ := hypervec.Open(hypervec.WithMetricsCollector(metrics))
//	// ... use db ...
//	stats := metrics.GetStats()
//	fmt.Printf("Searches: %d, Avg latency: %dns\n", stats.SearchCount, stats.SearchAvgNanos)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := hypervec.NewJSONLogger(slog.LevelInfo)
//	db, _ := hypervec.Open(hypervec.WithLogger(logger))
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

// WithParallelism bounds the workers used by search scoring and batch
// conversion. Values <= 0 use runtime.GOMAXPROCS(0).
func WithParallelism(n int) Option {
	return func(o *options) {
		o.parallelism = n
	}
}

// WithMemoryLimit caps the encoded vector bytes held across all
// collections. Inserts beyond the cap fail with ErrMemoryLimit. Values <= 0
// only track usage.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithConfigFile loads a YAML configuration file on Open. Collections it
// declares are created, and its log level, memory limit, parallelism and
// curvature settings apply unless set by another option.
func WithConfigFile(path string) Option {
	return func(o *options) {
		o.configFile = path
	}
}

// WithCurvatureLearner selects the strategy used by LearnCurvature when the
// caller passes none, and the options it runs with.
func WithCurvatureLearner(kind curvature.Kind, opts *curvature.Options) Option {
	return func(o *options) {
		o.learner = kind
		o.learnOptions = opts
	}
}

func applyOptions(opts []Option) options {
	o := options{
		learner: curvature.KindGridSearch,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// SearchOption configures a single Search call.
type SearchOption func(*searchOptions)

type searchOptions struct {
	geometry  *geometry.Kind
	filter    metadata.Expr
	curvature float64
}

// WithGeometry searches in the given geometry instead of the collection's.
func WithGeometry(kind geometry.Kind) SearchOption {
	return func(o *searchOptions) {
		o.geometry = &kind
	}
}

// WithFilter restricts the search to records whose metadata match expr.
func WithFilter(expr metadata.Expr) SearchOption {
	return func(o *searchOptions) {
		o.filter = expr
	}
}

// WithCurvature sets the curvature of a Poincaré search over a collection
// that does not carry its own.
func WithCurvature(c float64) SearchOption {
	return func(o *searchOptions) {
		o.curvature = c
	}
}
