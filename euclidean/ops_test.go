package euclidean

import (
	"errors"
	"math"
	"testing"

	"github.com/hupe1980/hypervec/geometry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vector
		expected float64
	}{
		{"Simple", New(1, 2, 3), New(4, 5, 6), math.Sqrt(27)},
		{"Zero", New(0, 0, 0), New(0, 0, 0), 0},
		{"Identical", New(1, 2, 3), New(1, 2, 3), 0},
		{"Mixed", New(1, -1), New(-1, 1), math.Sqrt(8)},
		{"Empty", New(), New(), 0},
	}

	var ops Ops
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ops.Distance(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-12)

			back, err := ops.Distance(tt.b, tt.a)
			require.NoError(t, err)
			assert.Equal(t, got, back)
		})
	}
}

func TestSquaredDistanceAndInnerProduct(t *testing.T) {
	var ops Ops
	a, b := New(1, 2, 3), New(4, 5, 6)

	sq, err := ops.SquaredDistance(a, b)
	require.NoError(t, err)
	assert.Equal(t, 27.0, sq)

	ip, err := ops.InnerProduct(a, b)
	require.NoError(t, err)
	assert.Equal(t, 32.0, ip)
}

func TestDimensionMismatch(t *testing.T) {
	var ops Ops
	a, b := New(1, 2, 3), New(1, 2)

	calls := map[string]func() error{
		"Distance": func() error { _, err := ops.Distance(a, b); return err },
		"Squared":  func() error { _, err := ops.SquaredDistance(a, b); return err },
		"Inner":    func() error { _, err := ops.InnerProduct(a, b); return err },
		"Add":      func() error { _, err := ops.Add(a, b); return err },
		"Subtract": func() error { _, err := ops.Subtract(a, b); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var dm *geometry.ErrDimensionMismatch
			require.True(t, errors.As(call(), &dm))
			assert.Equal(t, 3, dm.Expected)
			assert.Equal(t, 2, dm.Actual)
		})
	}
}

func TestArithmetic(t *testing.T) {
	var ops Ops
	a, b := New(1, 2, 3), New(0.5, -1, 2)

	sum, err := ops.Add(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 1, 5}, sum.Components())

	diff, err := ops.Subtract(a, b)
	require.NoError(t, err)
	assert.Equal(t, []float64{0.5, 3, 1}, diff.Components())

	scaled, err := ops.Scale(a, -2)
	require.NoError(t, err)
	assert.Equal(t, []float64{-2, -4, -6}, scaled.Components())

	// Operands are never mutated.
	assert.Equal(t, []float64{1, 2, 3}, a.Components())
}

func TestNormalize(t *testing.T) {
	var ops Ops

	t.Run("Unit", func(t *testing.T) {
		n, err := ops.Normalize(New(3, 4))
		require.NoError(t, err)
		assert.InDelta(t, 0.6, n.At(0), 1e-12)
		assert.InDelta(t, 0.8, n.At(1), 1e-12)
		assert.InDelta(t, 1.0, n.Norm(), 1e-12)
	})

	t.Run("Degenerate", func(t *testing.T) {
		_, err := ops.Normalize(New(1e-12, 0))
		assert.ErrorIs(t, err, geometry.ErrDegenerateVector)
	})
}

func TestNormOverflowSafe(t *testing.T) {
	v := New(1e200, 1e200)
	assert.InDelta(t, math.Sqrt2*1e200, v.Norm(), 1e188)
	assert.False(t, math.IsInf(v.Norm(), 0))

	assert.Equal(t, 5.0, New(3, 4).Norm())
	assert.Equal(t, 0.0, Zeros(4).Norm())
}

func TestVectorAccessors(t *testing.T) {
	src := []float64{1, 2, 3}
	v := New(src...)
	src[0] = 99
	assert.Equal(t, 1.0, v.At(0), "New must copy its input")

	c := v.Components()
	c[1] = 99
	assert.Equal(t, 2.0, v.At(1), "Components must return a copy")

	f := FromFloat32([]float32{0.5, 0.25})
	assert.Equal(t, 2, f.Dimension())
	assert.Equal(t, []float32{0.5, 0.25}, f.Float32())
	assert.True(t, f.Equal(New(0.5, 0.25)))
	assert.Equal(t, "Euclidean[0.5, 0.25]", f.String())
}
