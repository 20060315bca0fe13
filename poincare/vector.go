// Package poincare implements vector arithmetic in the Poincaré ball model of
// hyperbolic space.
//
// A Vector is a point strictly inside the open unit ball together with the
// (negative) curvature of the space it belongs to. Two vectors are only
// mutually operable when both dimension and curvature match exactly.
package poincare

import (
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/hupe1980/hypervec/euclidean"
	"github.com/hupe1980/hypervec/geometry"
)

// Vector is an immutable point in the Poincaré ball.
type Vector struct {
	data      []float64
	curvature float64
}

// New returns a point with a copy of components.
//
// It fails with *geometry.ErrOutOfBall when the squared norm is not strictly
// below 1 and with *geometry.ErrInvalidCurvature when curvature is not negative.
func New(components []float64, curvature float64) (Vector, error) {
	return wrap(slices.Clone(components), curvature)
}

// MustNew is like New but panics on error. Intended for tests and examples.
func MustNew(components []float64, curvature float64) Vector {
	v, err := New(components, curvature)
	if err != nil {
		panic(err)
	}
	return v
}

// FromFloat32 widens an at-rest float32 vector into the ball.
func FromFloat32(v []float32, curvature float64) (Vector, error) {
	data := make([]float64, len(v))
	for i, x := range v {
		data[i] = float64(x)
	}
	return wrap(data, curvature)
}

// FromEuclidean places a Euclidean vector inside the ball by multiplying it
// with min(0.9, 0.9/|v|). Short vectors shrink by 0.9; long ones land on the
// 0.9 sphere. Use convert.Converter for a distance-preserving mapping.
func FromEuclidean(v euclidean.Vector, curvature float64) (Vector, error) {
	n := v.Norm()
	if n < geometry.Epsilon {
		return wrap(v.Components(), curvature)
	}
	s := math.Min(0.9, 0.9/n)
	data := v.Components()
	for i := range data {
		data[i] *= s
	}
	return wrap(data, curvature)
}

// Zeros returns the origin of the ball.
func Zeros(dim int, curvature float64) (Vector, error) {
	return wrap(make([]float64, dim), curvature)
}

func wrap(data []float64, curvature float64) (Vector, error) {
	if err := geometry.ValidateCurvature(curvature); err != nil {
		return Vector{}, err
	}
	sq := squaredNorm(data)
	if !(sq < 1) {
		return Vector{}, &geometry.ErrOutOfBall{Norm: math.Sqrt(sq)}
	}
	return Vector{data: data, curvature: curvature}, nil
}

// Dimension returns the number of components.
func (v Vector) Dimension() int { return len(v.data) }

// At returns the i-th component.
func (v Vector) At(i int) float64 { return v.data[i] }

// Curvature returns the curvature of the space the point belongs to.
func (v Vector) Curvature() float64 { return v.curvature }

// Components returns a copy of the components.
func (v Vector) Components() []float64 { return slices.Clone(v.data) }

// Float32 narrows the point to its at-rest representation.
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v.data))
	for i, x := range v.data {
		out[i] = float32(x)
	}
	return out
}

// Euclidean returns the same coordinates as a flat-space vector.
func (v Vector) Euclidean() euclidean.Vector {
	return euclidean.New(v.data...)
}

// SquaredNorm returns the squared Euclidean norm of the coordinates.
func (v Vector) SquaredNorm() float64 { return squaredNorm(v.data) }

// Norm returns the Euclidean norm of the coordinates.
func (v Vector) Norm() float64 { return math.Sqrt(squaredNorm(v.data)) }

// Equal reports whether both points have identical coordinates and curvature.
func (v Vector) Equal(o Vector) bool {
	return v.curvature == o.curvature && slices.Equal(v.data, o.data)
}

func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteString("Poincare[")
	for i, x := range v.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(x, 'g', 6, 64))
	}
	sb.WriteString("; c=")
	sb.WriteString(strconv.FormatFloat(v.curvature, 'g', -1, 64))
	sb.WriteByte(']')
	return sb.String()
}

func squaredNorm(data []float64) float64 {
	var sum float64
	for _, x := range data {
		sum += x * x
	}
	return sum
}
