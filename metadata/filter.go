package metadata

import (
	"cmp"
	"math"
	"slices"
	"strings"
)

// Operator represents a comparison operator for filtering.
type Operator string

const (
	// OpEqual represents the equality operator.
	OpEqual Operator = "eq"
	// OpNotEqual represents the inequality operator.
	OpNotEqual Operator = "ne"
	// OpGreaterThan represents the greater than operator.
	OpGreaterThan Operator = "gt"
	// OpGreaterEqual represents the greater than or equal operator.
	OpGreaterEqual Operator = "gte"
	// OpLessThan represents the less than operator.
	OpLessThan Operator = "lt"
	// OpLessEqual represents the less than or equal operator.
	OpLessEqual Operator = "lte"
	// OpIn represents the in list operator.
	OpIn Operator = "in"
	// OpContains represents the contains substring operator.
	OpContains Operator = "contains"
)

// Filter compares one document field against a literal. It is the leaf of an
// Expr tree.
type Filter struct {
	Key      string
	Operator Operator
	Value    Value
}

func (*Filter) expr() {}

// Matches reports whether doc satisfies the comparison. A missing field, an
// invalid literal, or operand types the operator does not support all yield
// false. A nil filter matches every document.
func (f *Filter) Matches(doc Document) bool {
	if f == nil {
		return true
	}
	got, ok := doc[f.Key]
	if !ok || f.Value.Kind == KindInvalid {
		return false
	}

	switch f.Operator {
	case OpEqual:
		return valuesEqual(got, f.Value)
	case OpNotEqual:
		return !valuesEqual(got, f.Value)
	case OpGreaterThan, OpGreaterEqual, OpLessThan, OpLessEqual:
		c, ok := orderNumbers(got, f.Value)
		if !ok {
			return false
		}
		return orderHolds(f.Operator, c)
	case OpIn:
		if f.Value.Kind != KindArray {
			return false
		}
		for _, candidate := range f.Value.A {
			if valuesEqual(got, candidate) {
				return true
			}
		}
		return false
	case OpContains:
		if got.Kind != KindString || f.Value.Kind != KindString {
			return false
		}
		return strings.Contains(got.s.Value(), f.Value.s.Value())
	default:
		return false
	}
}

func (f *Filter) String() string {
	return f.Key + " " + string(f.Operator) + " " + f.Value.String()
}

func orderHolds(op Operator, c int) bool {
	switch op {
	case OpGreaterThan:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	case OpLessThan:
		return c < 0
	default:
		return c <= 0
	}
}

// orderNumbers compares two numeric values. Ints compare exactly; mixed
// operands compare as float64. ok is false unless both are numbers.
func orderNumbers(a, b Value) (c int, ok bool) {
	if !numeric(a) || !numeric(b) {
		return 0, false
	}
	if a.Kind == KindInt && b.Kind == KindInt {
		return cmp.Compare(a.I64, b.I64), true
	}
	x, y := toFloat(a), toFloat(b)
	if math.IsNaN(x) || math.IsNaN(y) {
		return 0, false
	}
	return cmp.Compare(x, y), true
}

func valuesEqual(a, b Value) bool {
	if a.Kind == KindNull || b.Kind == KindNull {
		return a.Kind == b.Kind
	}
	if c, ok := orderNumbers(a, b); ok {
		return c == 0
	}
	if a.Kind != b.Kind {
		return false
	}

	switch a.Kind {
	case KindString:
		return a.s == b.s
	case KindBool:
		return a.B == b.B
	case KindArray:
		return slices.EqualFunc(a.A, b.A, valuesEqual)
	default:
		return false
	}
}

func numeric(v Value) bool {
	return v.Kind == KindInt || v.Kind == KindFloat
}

func toFloat(v Value) float64 {
	if v.Kind == KindInt {
		return float64(v.I64)
	}
	return v.F64
}
