package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"euclidean", Euclidean, false},
		{"Poincare", Poincare, false},
		{" poincare_ball ", Poincare, false},
		{"hyperbolic", Poincare, false},
		{"lorentz", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKindText(t *testing.T) {
	b, err := Poincare.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "poincare", string(b))

	var k Kind
	require.NoError(t, k.UnmarshalText([]byte("euclidean")))
	assert.Equal(t, Euclidean, k)

	_, err = Kind(9).MarshalText()
	assert.Error(t, err)
	assert.Equal(t, "Unknown(9)", Kind(9).String())
}

func TestAcosh(t *testing.T) {
	v, err := Acosh(1)
	require.NoError(t, err)
	assert.Equal(t, 0.0, v)

	v, err = Acosh(math.Cosh(2))
	require.NoError(t, err)
	assert.InDelta(t, 2.0, v, 1e-12)

	for _, bad := range []float64{0.999, -3, math.NaN()} {
		_, err = Acosh(bad)
		var de *ErrDomain
		require.True(t, errors.As(err, &de), "arg %g", bad)
		assert.Equal(t, "acosh", de.Func)
	}
}

func TestAtanh(t *testing.T) {
	v, err := Atanh(0.5)
	require.NoError(t, err)
	assert.InDelta(t, 0.5493061443340549, v, 1e-12)

	for _, bad := range []float64{1, -1, 2, math.NaN()} {
		_, err = Atanh(bad)
		var de *ErrDomain
		require.True(t, errors.As(err, &de), "arg %g", bad)
		assert.Contains(t, de.Error(), "atanh")
	}
}

func TestValidateCurvature(t *testing.T) {
	assert.NoError(t, ValidateCurvature(-1))
	assert.NoError(t, ValidateCurvature(-0.1))

	for _, bad := range []float64{0, 1, math.NaN(), math.Inf(-1)} {
		var ic *ErrInvalidCurvature
		assert.True(t, errors.As(ValidateCurvature(bad), &ic), "curvature %g", bad)
	}
}
