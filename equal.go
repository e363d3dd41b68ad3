package diffx

import "math"

// equal decides whether two values are the same. When epsilon is non-nil and
// both values are numbers, they're equal if the absolute difference of their
// float projections is strictly below *epsilon. A number always equals itself,
// whatever the tolerance. Composites are walked with an explicit stack
func equal(a, b Value, epsilon *float64) bool {
	if a.kind != KindArray && a.kind != KindObject {
		return equalScalar(a, b, epsilon)
	}

	type pair struct{ a, b Value }
	stack := []pair{{a, b}}
	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if p.a.kind != p.b.kind {
			return false
		}
		switch p.a.kind {
		case KindArray:
			if len(p.a.arr) != len(p.b.arr) {
				return false
			}
			for i := range p.a.arr {
				stack = append(stack, pair{p.a.arr[i], p.b.arr[i]})
			}
		case KindObject:
			if len(p.a.obj) != len(p.b.obj) {
				return false
			}
			for k, av := range p.a.obj {
				bv, ok := p.b.obj[k]
				if !ok {
					return false
				}
				stack = append(stack, pair{av, bv})
			}
		default:
			if !equalScalar(p.a, p.b, epsilon) {
				return false
			}
		}
	}
	return true
}

func equalScalar(a, b Value, epsilon *float64) bool {
	if a.kind != b.kind {
		return false
	}

	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		if sameNumber(a.num, b.num) {
			return true
		}
		if epsilon != nil {
			return math.Abs(a.num.f-b.num.f) < *epsilon
		}
		return false
	case KindString:
		return a.s == b.s
	}
	return false
}

// sameNumber compares numbers by exact value. An integer equals a float only
// when the float holds exactly that integer. NaN is considered the same as
// NaN so a tree always equals itself
func sameNumber(a, b number) bool {
	switch {
	case a.isInt && b.isInt:
		return a.i == b.i
	case a.isInt:
		return intEqualsFloat(a.i, b.f)
	case b.isInt:
		return intEqualsFloat(b.i, a.f)
	}
	if math.IsNaN(a.f) && math.IsNaN(b.f) {
		return true
	}
	return a.f == b.f
}

// intEqualsFloat avoids rounding i through float64, which loses precision
// above 2^53
func intEqualsFloat(i int64, f float64) bool {
	// -2^63 is exactly representable, 2^63 is the first float past MaxInt64
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return false
	}
	return int64(f) == i
}

// sameKind reports whether a and b share one of the six value variants,
// regardless of content
func sameKind(a, b Value) bool {
	return a.kind == b.kind
}
