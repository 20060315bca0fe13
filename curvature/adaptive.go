package curvature

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/hupe1980/hypervec/convert"
	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/poincare"
)

// AdaptiveConverter converts Euclidean vectors at a curvature that follows a
// Learner.
type AdaptiveConverter struct {
	learner   Learner
	converter *convert.Converter
	curvature atomic.Uint64
}

// NewAdaptiveConverter binds a converter to learner. A nil learner means
// NewDefault(). The initial curvature is the learner's last learned value.
func NewAdaptiveConverter(learner Learner, conv *convert.Converter) *AdaptiveConverter {
	if learner == nil {
		learner = NewDefault()
	}
	if conv == nil {
		conv = convert.New()
	}
	a := &AdaptiveConverter{learner: learner, converter: conv}
	a.curvature.Store(math.Float64bits(learner.LastLearned()))
	return a
}

// Curvature returns the curvature used for conversion.
func (a *AdaptiveConverter) Curvature() float64 {
	return math.Float64frombits(a.curvature.Load())
}

// SetCurvature overrides the conversion curvature.
func (a *AdaptiveConverter) SetCurvature(c float64) error {
	if err := geometry.ValidateCurvature(c); err != nil {
		return err
	}
	a.curvature.Store(math.Float64bits(c))
	return nil
}

// Sync adopts the learner's last learned curvature and returns it.
func (a *AdaptiveConverter) Sync() float64 {
	c := a.learner.LastLearned()
	a.curvature.Store(math.Float64bits(c))
	return c
}

// Learn runs the learner on h and adopts the result.
func (a *AdaptiveConverter) Learn(ctx context.Context, h Hierarchy, opts *Options) (float64, error) {
	c, err := a.learner.Learn(ctx, h, opts)
	if err != nil {
		return 0, err
	}
	a.curvature.Store(math.Float64bits(c))
	return c, nil
}

// EuclideanToPoincare converts v at the current curvature.
func (a *AdaptiveConverter) EuclideanToPoincare(v euclidean.Vector, maxRadius float64) (poincare.Vector, error) {
	return a.converter.EuclideanToPoincare(v, maxRadius, a.Curvature())
}

// BatchEuclideanToPoincare converts vs at the current curvature.
func (a *AdaptiveConverter) BatchEuclideanToPoincare(ctx context.Context, vs []euclidean.Vector, maxRadius float64) ([]poincare.Vector, error) {
	return a.converter.BatchEuclideanToPoincare(ctx, vs, maxRadius, a.Curvature())
}
