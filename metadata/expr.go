package metadata

import "fmt"

// Expr is a boolean predicate over a Document. The set of implementations is
// closed: *Filter, *AndExpr, *OrExpr and *NotExpr. Nodes are immutable once
// built; combinators return new nodes and never modify their operands.
type Expr interface {
	fmt.Stringer
	expr()
}

// AndExpr matches when both operands match.
type AndExpr struct {
	Left, Right Expr
}

// OrExpr matches when at least one operand matches.
type OrExpr struct {
	Left, Right Expr
}

// NotExpr inverts its operand.
type NotExpr struct {
	Expr Expr
}

func (*AndExpr) expr() {}
func (*OrExpr) expr()  {}
func (*NotExpr) expr() {}

func (e *AndExpr) String() string { return "(" + render(e.Left) + " AND " + render(e.Right) + ")" }
func (e *OrExpr) String() string  { return "(" + render(e.Left) + " OR " + render(e.Right) + ")" }
func (e *NotExpr) String() string { return "NOT " + render(e.Expr) }

func render(e Expr) string {
	if IsNil(e) {
		return "TRUE"
	}
	return e.String()
}

// IsNil reports whether e is nil or a nil node pointer. Both match every
// document.
func IsNil(e Expr) bool {
	switch n := e.(type) {
	case nil:
		return true
	case *Filter:
		return n == nil
	case *AndExpr:
		return n == nil
	case *OrExpr:
		return n == nil
	case *NotExpr:
		return n == nil
	default:
		return false
	}
}

// Evaluate reports whether doc satisfies e. A nil expression matches every
// document, including a nil one.
func Evaluate(e Expr, doc Document) bool {
	if IsNil(e) {
		return true
	}
	switch n := e.(type) {
	case *Filter:
		return n.Matches(doc)
	case *AndExpr:
		return Evaluate(n.Left, doc) && Evaluate(n.Right, doc)
	case *OrExpr:
		return Evaluate(n.Left, doc) || Evaluate(n.Right, doc)
	case *NotExpr:
		return !Evaluate(n.Expr, doc)
	default:
		panic(fmt.Sprintf("metadata: unexpected expression %T", e))
	}
}

// Compare builds a leaf comparing key with the Go value v. Values FromAny
// cannot convert produce a literal that never matches.
func Compare(key string, op Operator, v any) *Filter {
	val, err := FromAny(v)
	if err != nil {
		val = Value{}
	}
	return &Filter{Key: key, Operator: op, Value: val}
}

// Eq matches documents whose key equals v. Ints and floats compare by value.
func Eq(key string, v any) *Filter { return Compare(key, OpEqual, v) }

// Ne matches documents whose key is present and differs from v.
func Ne(key string, v any) *Filter { return Compare(key, OpNotEqual, v) }

// Gt matches numeric fields greater than v.
func Gt(key string, v any) *Filter { return Compare(key, OpGreaterThan, v) }

// Gte matches numeric fields greater than or equal to v.
func Gte(key string, v any) *Filter { return Compare(key, OpGreaterEqual, v) }

// Lt matches numeric fields less than v.
func Lt(key string, v any) *Filter { return Compare(key, OpLessThan, v) }

// Lte matches numeric fields less than or equal to v.
func Lte(key string, v any) *Filter { return Compare(key, OpLessEqual, v) }

// Contains matches string fields containing the substring s.
func Contains(key, s string) *Filter { return Compare(key, OpContains, s) }

// In matches fields equal to any of values.
func In(key string, values ...any) *Filter {
	arr := make([]Value, 0, len(values))
	for _, v := range values {
		val, err := FromAny(v)
		if err != nil {
			return &Filter{Key: key, Operator: OpIn}
		}
		arr = append(arr, val)
	}
	return &Filter{Key: key, Operator: OpIn, Value: Array(arr)}
}

// And combines expressions left to right: And(a, b, c) is (a AND b) AND c.
func And(left, right Expr, more ...Expr) Expr {
	e := Expr(&AndExpr{Left: left, Right: right})
	for _, m := range more {
		e = &AndExpr{Left: e, Right: m}
	}
	return e
}

// Or combines expressions left to right: Or(a, b, c) is (a OR b) OR c.
func Or(left, right Expr, more ...Expr) Expr {
	e := Expr(&OrExpr{Left: left, Right: right})
	for _, m := range more {
		e = &OrExpr{Left: e, Right: m}
	}
	return e
}

// Not negates e.
func Not(e Expr) Expr {
	return &NotExpr{Expr: e}
}
