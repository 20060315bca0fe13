// Package euclidean implements vector arithmetic in flat space.
//
// Vectors are immutable: every operation returns a new Vector. Components are
// kept in float64 even though records store them as float32 at rest.
package euclidean

import (
	"math"
	"slices"
	"strconv"
	"strings"
)

// Vector is an immutable point in Euclidean space.
type Vector struct {
	data []float64
}

// New returns a vector holding a copy of components.
func New(components ...float64) Vector {
	return Vector{data: slices.Clone(components)}
}

// FromFloat32 widens an at-rest float32 vector.
func FromFloat32(v []float32) Vector {
	data := make([]float64, len(v))
	for i, x := range v {
		data[i] = float64(x)
	}
	return Vector{data: data}
}

// Zeros returns the origin of the given dimension.
func Zeros(dim int) Vector {
	return Vector{data: make([]float64, dim)}
}

// Dimension returns the number of components.
func (v Vector) Dimension() int { return len(v.data) }

// At returns the i-th component.
func (v Vector) At(i int) float64 { return v.data[i] }

// Components returns a copy of the components.
func (v Vector) Components() []float64 { return slices.Clone(v.data) }

// Float32 narrows the vector to its at-rest representation.
func (v Vector) Float32() []float32 {
	out := make([]float32, len(v.data))
	for i, x := range v.data {
		out[i] = float32(x)
	}
	return out
}

// SquaredNorm returns the sum of squared components.
func (v Vector) SquaredNorm() float64 {
	return dot(v.data, v.data)
}

// Norm returns the L2 norm. Large components are rescaled before squaring so
// the result does not overflow for finite input.
func (v Vector) Norm() float64 {
	maxAbs := 0.0
	for _, x := range v.data {
		maxAbs = math.Max(maxAbs, math.Abs(x))
	}
	if maxAbs == 0 || math.IsInf(maxAbs, 0) || math.IsNaN(maxAbs) {
		return maxAbs
	}
	if maxAbs < 1e150 && maxAbs > 1e-150 {
		return math.Sqrt(v.SquaredNorm())
	}
	var sum float64
	for _, x := range v.data {
		r := x / maxAbs
		sum += r * r
	}
	return maxAbs * math.Sqrt(sum)
}

// Equal reports whether both vectors have identical components.
func (v Vector) Equal(o Vector) bool {
	return slices.Equal(v.data, o.data)
}

func (v Vector) String() string {
	var sb strings.Builder
	sb.WriteString("Euclidean[")
	for i, x := range v.data {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.FormatFloat(x, 'g', 6, 64))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Data exposes the backing slice without copying. Callers must not modify it.
// It exists for allocation-free reads by sibling algebra packages.
func (v Vector) Data() []float64 { return v.data }

// Wrap takes ownership of data without copying. The caller must not retain or
// modify data afterwards.
func Wrap(data []float64) Vector { return Vector{data: data} }

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

func squaredL2(a, b []float64) float64 {
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}
