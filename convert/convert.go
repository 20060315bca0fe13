// Package convert maps vectors between Euclidean space and the Poincaré ball.
package convert

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/poincare"
)

// batchTarget is the fraction of maxRadius the largest pairwise distance of a
// batch is scaled to before conversion.
const batchTarget = 0.9

// Options configures a Converter.
type Options struct {
	// Parallelism bounds the number of goroutines used by batch conversion.
	// Values <= 0 mean runtime.GOMAXPROCS(0).
	Parallelism int
}

// DefaultOptions contains the default converter configuration.
var DefaultOptions = Options{
	Parallelism: 0,
}

// WithParallelism sets Options.Parallelism.
func WithParallelism(n int) func(o *Options) {
	return func(o *Options) {
		o.Parallelism = n
	}
}

// Converter converts vectors between the two geometries. It holds no mutable
// state and is safe for concurrent use. The zero value is ready to use.
type Converter struct {
	opts Options
	flat euclidean.Ops
}

// New creates a Converter.
func New(optFns ...func(o *Options)) *Converter {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Converter{opts: opts}
}

// EuclideanToPoincare radially compresses v into the ball with
//
//	scale = maxRadius * (2/π) * atan(|v|) / |v|
//
// The direction of v is preserved and the output norm is strictly below
// maxRadius. The zero vector maps to the origin.
func (c *Converter) EuclideanToPoincare(v euclidean.Vector, maxRadius, curvature float64) (poincare.Vector, error) {
	if err := validateRadius(maxRadius); err != nil {
		return poincare.Vector{}, err
	}
	n := v.Norm()
	if n < geometry.Epsilon {
		return poincare.Zeros(v.Dimension(), curvature)
	}

	r := maxRadius * (2 / math.Pi) * math.Atan(n)
	// atan saturates to π/2 for huge norms.
	r = math.Min(r, math.Nextafter(maxRadius, 0))

	scale := r / n
	data := v.Components()
	for i := range data {
		data[i] *= scale
	}
	return poincare.New(data, curvature)
}

// PoincareToEuclidean inverts EuclideanToPoincare with
//
//	scale = tan(π|x| / (2*maxRadius)) / |x|
//
// Points with |x| >= maxRadius are outside the image of the forward mapping and
// fail with *geometry.ErrOutOfBall.
func (c *Converter) PoincareToEuclidean(x poincare.Vector, maxRadius float64) (euclidean.Vector, error) {
	if err := validateRadius(maxRadius); err != nil {
		return euclidean.Vector{}, err
	}
	n := x.Norm()
	if n < geometry.Epsilon {
		return euclidean.Zeros(x.Dimension()), nil
	}
	if n >= maxRadius {
		return euclidean.Vector{}, &geometry.ErrOutOfBall{Norm: n}
	}

	scale := math.Tan(math.Pi*n/(2*maxRadius)) / n
	data := x.Components()
	for i := range data {
		data[i] *= scale
	}
	return euclidean.Wrap(data), nil
}

// BatchEuclideanToPoincare converts vs with one global scale so the largest
// pairwise distance of the batch maps to 0.9*maxRadius before the per-vector
// arctangent compression. Relative distance ratios survive better than with
// independent conversion.
//
// The O(n²) pairwise scan runs in parallel. All vectors must share one
// dimension.
func (c *Converter) BatchEuclideanToPoincare(ctx context.Context, vs []euclidean.Vector, maxRadius, curvature float64) ([]poincare.Vector, error) {
	if err := validateRadius(maxRadius); err != nil {
		return nil, err
	}
	if len(vs) == 0 {
		return []poincare.Vector{}, nil
	}

	maxDist, err := c.maxPairwiseDistance(ctx, vs)
	if err != nil {
		return nil, err
	}

	factor := 1.0
	if maxDist > 0 {
		factor = maxRadius * batchTarget / maxDist
	}

	out := make([]poincare.Vector, len(vs))
	for i, v := range vs {
		scaled, _ := c.flat.Scale(v, factor)
		p, err := c.EuclideanToPoincare(scaled, maxRadius, curvature)
		if err != nil {
			return nil, err
		}
		out[i] = p
	}
	return out, nil
}

// BatchPoincareToEuclidean applies PoincareToEuclidean to every element.
func (c *Converter) BatchPoincareToEuclidean(xs []poincare.Vector, maxRadius float64) ([]euclidean.Vector, error) {
	out := make([]euclidean.Vector, len(xs))
	for i, x := range xs {
		v, err := c.PoincareToEuclidean(x, maxRadius)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Converter) maxPairwiseDistance(ctx context.Context, vs []euclidean.Vector) (float64, error) {
	rowMax := make([]float64, len(vs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism())

	for i := range vs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			var m float64
			for j := i + 1; j < len(vs); j++ {
				d, err := c.flat.Distance(vs[i], vs[j])
				if err != nil {
					return err
				}
				m = math.Max(m, d)
			}
			rowMax[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	var m float64
	for _, d := range rowMax {
		m = math.Max(m, d)
	}
	return m, nil
}

func (c *Converter) parallelism() int {
	if c.opts.Parallelism > 0 {
		return c.opts.Parallelism
	}
	return runtime.GOMAXPROCS(0)
}

func validateRadius(r float64) error {
	if !(r > 0 && r < 1) {
		return &geometry.ErrInvalidRadius{Radius: r}
	}
	return nil
}
