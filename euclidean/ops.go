package euclidean

import (
	"math"

	"github.com/hupe1980/hypervec/geometry"
)

// Compile-time check to ensure Ops satisfies the shared capability.
var _ geometry.Operations[Vector] = Ops{}

// Ops implements flat-space vector operations. The zero value is ready to use.
type Ops struct{}

// Distance returns the L2 distance between a and b.
func (Ops) Distance(a, b Vector) (float64, error) {
	if err := sameDimension(a, b); err != nil {
		return 0, err
	}
	return math.Sqrt(squaredL2(a.data, b.data)), nil
}

// SquaredDistance returns the squared L2 distance between a and b.
func (Ops) SquaredDistance(a, b Vector) (float64, error) {
	if err := sameDimension(a, b); err != nil {
		return 0, err
	}
	return squaredL2(a.data, b.data), nil
}

// InnerProduct returns the dot product of a and b.
func (Ops) InnerProduct(a, b Vector) (float64, error) {
	if err := sameDimension(a, b); err != nil {
		return 0, err
	}
	return dot(a.data, b.data), nil
}

// Add returns a + b.
func (Ops) Add(a, b Vector) (Vector, error) {
	if err := sameDimension(a, b); err != nil {
		return Vector{}, err
	}
	out := make([]float64, len(a.data))
	for i := range out {
		out[i] = a.data[i] + b.data[i]
	}
	return Vector{data: out}, nil
}

// Subtract returns a - b.
func (Ops) Subtract(a, b Vector) (Vector, error) {
	if err := sameDimension(a, b); err != nil {
		return Vector{}, err
	}
	out := make([]float64, len(a.data))
	for i := range out {
		out[i] = a.data[i] - b.data[i]
	}
	return Vector{data: out}, nil
}

// Scale returns v * s. It never fails; the error is part of the shared
// Operations contract.
func (Ops) Scale(v Vector, s float64) (Vector, error) {
	return scale(v, s), nil
}

// Normalize returns v / ||v||.
// It fails with geometry.ErrDegenerateVector when ||v|| < geometry.Epsilon.
func (Ops) Normalize(v Vector) (Vector, error) {
	n := v.Norm()
	if n < geometry.Epsilon {
		return Vector{}, geometry.ErrDegenerateVector
	}
	out := make([]float64, len(v.data))
	for i, x := range v.data {
		out[i] = x / n
	}
	return Vector{data: out}, nil
}

func scale(v Vector, s float64) Vector {
	out := make([]float64, len(v.data))
	for i, x := range v.data {
		out[i] = x * s
	}
	return Vector{data: out}
}

func sameDimension(a, b Vector) error {
	if len(a.data) != len(b.data) {
		return &geometry.ErrDimensionMismatch{Expected: len(a.data), Actual: len(b.data)}
	}
	return nil
}
