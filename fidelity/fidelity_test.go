package fidelity

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hypervec/curvature"
	"github.com/hupe1980/hypervec/geometry"
	"github.com/hupe1980/hypervec/testutil"
)

// twoBranches is root -> a -> a1 -> a11 and root -> b -> b1 -> b11.
func twoBranches() curvature.Hierarchy {
	return curvature.Hierarchy{
		"root": nil,
		"a":    {"root"},
		"b":    {"root"},
		"a1":   {"a"},
		"b1":   {"b"},
		"a11":  {"a1"},
		"b11":  {"b1"},
	}
}

func absDistance(a, b float64) (float64, error) { return math.Abs(a - b), nil }

func TestEvaluate(t *testing.T) {
	h := twoBranches()
	ctx := context.Background()

	tests := []struct {
		name   string
		points map[string]float64
		k      int
		want   float64
	}{
		{
			name:   "OrderedLine",
			points: map[string]float64{"a11": -3, "a1": -2, "a": -1, "root": 0, "b": 1, "b1": 2, "b11": 3},
			k:      1,
			want:   1,
		},
		{
			name:   "SwappedLeaves",
			points: map[string]float64{"a11": 3, "a1": -2, "a": -1, "root": 0, "b": 1, "b1": 2, "b11": -3},
			k:      1,
			want:   4.0 / 7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(ctx, h, tt.points, absDistance, tt.k)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestEvaluateByLevel(t *testing.T) {
	points := map[string]float64{"a11": 3, "a1": -2, "a": -1, "root": 0, "b": 1, "b1": 2, "b11": -3}

	got, err := EvaluateByLevel(context.Background(), twoBranches(), points, absDistance, 1, func(o *Options) { o.Parallelism = 2 })
	require.NoError(t, err)
	assert.Equal(t, map[int]float64{0: 1, 1: 1, 2: 0.5, 3: 0}, got)
}

func TestEvaluateFewerNeighborsThanK(t *testing.T) {
	h := curvature.Hierarchy{"root": nil, "a": {"root"}}
	got, err := Evaluate(context.Background(), h, map[string]float64{"root": 0, "a": 1}, absDistance, 4)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, got, 1e-12)

	single := curvature.Hierarchy{"root": nil}
	got, err = Evaluate(context.Background(), single, map[string]float64{"root": 0}, absDistance, 3)
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestEvaluateErrors(t *testing.T) {
	h := twoBranches()
	ctx := context.Background()
	full := map[string]float64{"a11": -3, "a1": -2, "a": -1, "root": 0, "b": 1, "b1": 2, "b11": 3}

	t.Run("InvalidK", func(t *testing.T) {
		_, err := Evaluate(ctx, h, full, absDistance, 0)
		assert.Error(t, err)
	})

	t.Run("MissingPoint", func(t *testing.T) {
		_, err := Evaluate(ctx, h, map[string]float64{"root": 0}, absDistance, 1)
		assert.ErrorIs(t, err, ErrMissingPoint)
	})

	t.Run("DistanceError", func(t *testing.T) {
		failing := func(a, b float64) (float64, error) { return 0, geometry.ErrDegenerateVector }
		_, err := Evaluate(ctx, h, full, failing, 1)
		assert.ErrorIs(t, err, geometry.ErrDegenerateVector)
	})

	t.Run("Canceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Evaluate(ctx, h, full, absDistance, 1)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestCompare(t *testing.T) {
	tree := testutil.NewRNG(7).Tree(4, 2, 5)
	h := curvature.Hierarchy(tree.Parents)

	cmp, err := Compare(context.Background(), h, tree.Vectors, 5, 0.9, geometry.DefaultCurvature)
	require.NoError(t, err)

	assert.Equal(t, 5, cmp.Dimension)
	assert.GreaterOrEqual(t, cmp.Euclidean, 0.0)
	assert.LessOrEqual(t, cmp.Euclidean, 1.0)
	assert.GreaterOrEqual(t, cmp.Poincare, 0.0)
	assert.LessOrEqual(t, cmp.Poincare, 1.0)
	assert.InDelta(t, cmp.Poincare-cmp.Euclidean, cmp.Improvement, 1e-12)

	_, err = Compare(context.Background(), h, tree.Vectors, 5, 1.5, geometry.DefaultCurvature)
	assert.Error(t, err)
}
