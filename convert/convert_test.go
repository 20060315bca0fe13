package convert

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/poincare"
)

func TestEuclideanToPoincare(t *testing.T) {
	c := New()

	tests := []struct {
		name      string
		v         euclidean.Vector
		maxRadius float64
	}{
		{"Unit", euclidean.New(1, 0, 0), 0.9},
		{"Small", euclidean.New(0.01, -0.02), 0.5},
		{"Large", euclidean.New(300, -400), 0.9},
		{"Huge", euclidean.New(1e300, 1e300), 0.9},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := c.EuclideanToPoincare(tt.v, tt.maxRadius, -1)
			require.NoError(t, err)
			assert.Less(t, p.Norm(), tt.maxRadius)
			assert.Equal(t, -1.0, p.Curvature())

			// Direction is preserved.
			var ops euclidean.Ops
			u1, err := ops.Normalize(tt.v)
			require.NoError(t, err)
			u2, err := ops.Normalize(p.Euclidean())
			require.NoError(t, err)
			assert.InDeltaSlice(t, u1.Components(), u2.Components(), 1e-9)
		})
	}

	t.Run("Zero", func(t *testing.T) {
		p, err := c.EuclideanToPoincare(euclidean.Zeros(3), 0.9, -1)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 0, 0}, p.Components())
	})

	t.Run("KnownValue", func(t *testing.T) {
		p, err := c.EuclideanToPoincare(euclidean.New(1, 0), 0.9, -1)
		require.NoError(t, err)
		// atan(1) = π/4
		assert.InDelta(t, 0.45, p.At(0), 1e-12)
	})
}

func TestInvalidRadius(t *testing.T) {
	c := New()
	for _, r := range []float64{0, 1, -0.5, 1.5, math.NaN()} {
		_, err := c.EuclideanToPoincare(euclidean.New(1), r, -1)
		var ir *geometry.ErrInvalidRadius
		assert.ErrorAs(t, err, &ir, "radius %v", r)

		_, err = c.PoincareToEuclidean(poincare.MustNew([]float64{0.1}, -1), r)
		assert.ErrorAs(t, err, &ir, "radius %v", r)

		_, err = c.BatchEuclideanToPoincare(context.Background(), []euclidean.Vector{euclidean.New(1)}, r, -1)
		assert.ErrorAs(t, err, &ir, "radius %v", r)
	}
}

func TestRoundTrip(t *testing.T) {
	c := New()
	v := euclidean.New(0.7, -1.2, 2.5)

	p, err := c.EuclideanToPoincare(v, 0.9, -1)
	require.NoError(t, err)

	back, err := c.PoincareToEuclidean(p, 0.9)
	require.NoError(t, err)
	assert.InDeltaSlice(t, v.Components(), back.Components(), 1e-9)

	zero, err := c.PoincareToEuclidean(poincare.MustNew([]float64{0, 0}, -1), 0.9)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0}, zero.Components())
}

func TestPoincareToEuclideanOutsideImage(t *testing.T) {
	c := New()
	_, err := c.PoincareToEuclidean(poincare.MustNew([]float64{0.95, 0}, -1), 0.9)
	var oob *geometry.ErrOutOfBall
	require.ErrorAs(t, err, &oob)
	assert.InDelta(t, 0.95, oob.Norm, 1e-12)
}

func TestBatchEuclideanToPoincare(t *testing.T) {
	ctx := context.Background()

	t.Run("PreservesRatios", func(t *testing.T) {
		c := New(WithParallelism(2))
		vs := []euclidean.Vector{
			euclidean.New(1, 0),
			euclidean.New(2, 0),
			euclidean.New(0, 3),
		}

		ps, err := c.BatchEuclideanToPoincare(ctx, vs, 0.8, -1)
		require.NoError(t, err)
		require.Len(t, ps, 3)

		var ops euclidean.Ops
		dist := func(a, b euclidean.Vector) float64 {
			d, err := ops.Distance(a, b)
			require.NoError(t, err)
			return d
		}

		before := dist(vs[0], vs[1]) / dist(vs[0], vs[2])
		after := dist(ps[0].Euclidean(), ps[1].Euclidean()) / dist(ps[0].Euclidean(), ps[2].Euclidean())
		assert.InDelta(t, before, after, 0.1)

		for _, p := range ps {
			assert.Less(t, p.Norm(), 0.8)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		ps, err := New().BatchEuclideanToPoincare(ctx, nil, 0.9, -1)
		require.NoError(t, err)
		assert.Empty(t, ps)
	})

	t.Run("Identical", func(t *testing.T) {
		vs := []euclidean.Vector{euclidean.New(1, 1), euclidean.New(1, 1)}
		ps, err := New().BatchEuclideanToPoincare(ctx, vs, 0.9, -1)
		require.NoError(t, err)
		assert.True(t, ps[0].Equal(ps[1]))
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		vs := []euclidean.Vector{euclidean.New(1, 1), euclidean.New(1)}
		_, err := New().BatchEuclideanToPoincare(ctx, vs, 0.9, -1)
		var dm *geometry.ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})

	t.Run("Canceled", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		vs := []euclidean.Vector{euclidean.New(1, 1), euclidean.New(2, 1)}
		_, err := New().BatchEuclideanToPoincare(cctx, vs, 0.9, -1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestBatchPoincareToEuclidean(t *testing.T) {
	var c Converter
	xs := []poincare.Vector{
		poincare.MustNew([]float64{0.1, 0.2}, -1),
		poincare.MustNew([]float64{-0.3, 0}, -1),
	}

	vs, err := c.BatchPoincareToEuclidean(xs, 0.9)
	require.NoError(t, err)
	require.Len(t, vs, 2)

	for i, v := range vs {
		p, err := c.EuclideanToPoincare(v, 0.9, -1)
		require.NoError(t, err)
		assert.InDeltaSlice(t, xs[i].Components(), p.Components(), 1e-12)
	}
}
