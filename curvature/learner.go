// Package curvature selects a negative curvature for the Poincaré ball that
// suits a given hierarchy.
//
// Two interchangeable strategies implement Learner: GridSearch, a structural
// heuristic over depth and branching factor, and GradientDescent, which fits
// the curvature so that hyperbolic distances of a random embedding track hop
// distances in the hierarchy.
package curvature

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"sync/atomic"

	"github.com/hupe1980/hypervec/geometry"
)

// ErrInvalidOptions is returned when learner options are inconsistent.
var ErrInvalidOptions = errors.New("curvature: invalid options")

// Learner selects a curvature for a hierarchy.
//
// Learn always returns a negative value within the option bounds. The last
// learned value is published atomically, but concurrent Learn calls on one
// instance must be serialized by the caller.
type Learner interface {
	Learn(ctx context.Context, h Hierarchy, opts *Options) (float64, error)
	LastLearned() float64
	Default() float64
}

// Options tunes curvature learning. A nil *Options means DefaultOptions().
type Options struct {
	// MinCurvature and MaxCurvature bound the result (MinCurvature < MaxCurvature < 0).
	MinCurvature float64
	MaxCurvature float64

	// LearningRate is the gradient descent step size.
	LearningRate float64
	// MaxIterations caps gradient descent iterations.
	MaxIterations int
	// Threshold stops gradient descent once the loss changes by less.
	Threshold float64
	// Dimensions of the random embedding used by gradient descent.
	Dimensions int
	// MaxRadius passed to the Euclidean to Poincaré conversion.
	MaxRadius float64
	// Seed for the random embedding.
	Seed int64
}

// DefaultOptions returns the default learning options.
func DefaultOptions() Options {
	return Options{
		MinCurvature:  -5.0,
		MaxCurvature:  -0.1,
		LearningRate:  0.01,
		MaxIterations: 100,
		Threshold:     1e-4,
		Dimensions:    3,
		MaxRadius:     0.9,
		Seed:          42,
	}
}

// Validate checks the options for consistency.
func (o *Options) Validate() error {
	switch {
	case !(o.MaxCurvature < 0):
		return fmt.Errorf("%w: max curvature %v must be negative", ErrInvalidOptions, o.MaxCurvature)
	case !(o.MinCurvature < o.MaxCurvature) || math.IsInf(o.MinCurvature, -1):
		return fmt.Errorf("%w: min curvature %v must be finite and below max %v", ErrInvalidOptions, o.MinCurvature, o.MaxCurvature)
	case !(o.LearningRate > 0):
		return fmt.Errorf("%w: learning rate %v must be positive", ErrInvalidOptions, o.LearningRate)
	case o.MaxIterations < 0:
		return fmt.Errorf("%w: max iterations %d must not be negative", ErrInvalidOptions, o.MaxIterations)
	case !(o.Threshold >= 0):
		return fmt.Errorf("%w: threshold %v must not be negative", ErrInvalidOptions, o.Threshold)
	case o.Dimensions <= 0:
		return fmt.Errorf("%w: dimensions %d must be positive", ErrInvalidOptions, o.Dimensions)
	case !(o.MaxRadius > 0 && o.MaxRadius < 1):
		return &geometry.ErrInvalidRadius{Radius: o.MaxRadius}
	}
	return nil
}

func (o *Options) clamp(c float64) float64 {
	return math.Max(o.MinCurvature, math.Min(o.MaxCurvature, c))
}

func resolveOptions(opts *Options) (*Options, error) {
	if opts == nil {
		d := DefaultOptions()
		return &d, nil
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Kind identifies a learning strategy.
type Kind int

const (
	// KindGridSearch selects GridSearch.
	KindGridSearch Kind = iota
	// KindGradientDescent selects GradientDescent.
	KindGradientDescent
)

func (k Kind) String() string {
	switch k {
	case KindGridSearch:
		return "grid"
	case KindGradientDescent:
		return "gradient"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind parses "grid" or "gradient" (also "grid_search", "gradient_descent").
func ParseKind(s string) (Kind, error) {
	switch s {
	case "grid", "grid_search":
		return KindGridSearch, nil
	case "gradient", "gradient_descent":
		return KindGradientDescent, nil
	default:
		return 0, fmt.Errorf("curvature: unknown learner %q", s)
	}
}

// Option configures a learner.
type Option func(*config)

type config struct {
	logger *slog.Logger
}

// WithLogger sets the logger used for progress reporting.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func applyOptions(opts []Option) config {
	c := config{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, fn := range opts {
		fn(&c)
	}
	return c
}

// New creates a learner of the given kind.
func New(kind Kind, opts ...Option) (Learner, error) {
	switch kind {
	case KindGridSearch:
		return NewGridSearch(opts...), nil
	case KindGradientDescent:
		return NewGradientDescent(opts...), nil
	default:
		return nil, fmt.Errorf("curvature: unknown learner %v", kind)
	}
}

// NewDefault returns the default learner, a GridSearch.
func NewDefault(opts ...Option) Learner {
	return NewGridSearch(opts...)
}

// lastValue holds the most recently learned curvature.
type lastValue struct {
	bits atomic.Uint64
}

func newLastValue() *lastValue {
	v := &lastValue{}
	v.store(geometry.DefaultCurvature)
	return v
}

func (v *lastValue) store(c float64) { v.bits.Store(math.Float64bits(c)) }

func (v *lastValue) load() float64 { return math.Float64frombits(v.bits.Load()) }
