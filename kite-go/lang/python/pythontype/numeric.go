package pythontype

import "github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"

// numericRank orders the numeric tower. Operands of mixed types are
// promoted to the higher rank.
func numericRank(code TypeCode) int {
	switch code {
	case BoolType:
		return 1
	case IntType:
		return 2
	case LongType:
		return 3
	case FloatType:
		return 4
	case ComplexType:
		return 5
	}
	return 0
}

func isBitwise(op pythonast.Op) bool {
	switch op {
	case pythonast.BitAnd, pythonast.BitOr, pythonast.BitXor:
		return true
	}
	return false
}

// numericResult evaluates an arithmetic operator on two builtin numbers.
// True division of integers gives a float, bitwise operators on two bools
// give a bool, and any other arithmetic on bools behaves as on ints.
func numericResult(l Namespace, op pythonast.Op, r Namespace) (TypeUnion, bool) {
	lc, rc := codeOf(l), codeOf(r)
	lr, rr := numericRank(lc), numericRank(rc)
	if lr == 0 || rr == 0 {
		return TypeUnion{}, false
	}

	b := Builtins
	if lc == BoolType && rc == BoolType && isBitwise(op) {
		return NewUnion(b.Bool.Instance), true
	}

	code := lc
	if rr > lr {
		code = rc
	}
	if code == BoolType {
		code = IntType
	}

	switch op {
	case pythonast.Div:
		if code == IntType || code == LongType {
			code = FloatType
		}
	case pythonast.LShift, pythonast.RShift, pythonast.BitAnd, pythonast.BitOr, pythonast.BitXor:
		if code == FloatType || code == ComplexType {
			return TypeUnion{}, false
		}
	case pythonast.Add, pythonast.Sub, pythonast.Mul, pythonast.FloorDiv, pythonast.Mod, pythonast.Pow:
	default:
		return TypeUnion{}, false
	}
	return NewUnion(b.ClassByCode(code).Instance), true
}

// numericUnary evaluates -x, +x and ~x on a builtin number. Negating an int
// constant keeps the constant.
func numericUnary(op pythonast.Op, ns Namespace) (TypeUnion, bool) {
	code := codeOf(ns)
	if numericRank(code) == 0 {
		return TypeUnion{}, false
	}
	b := Builtins
	if c, ok := ns.(*ConstantInfo); ok && op == pythonast.Sub {
		switch v := c.Value.(type) {
		case int64:
			return NewUnion(b.IntConst(-v)), true
		case float64:
			return NewUnion(b.FloatConst(-v)), true
		}
	}
	if code == BoolType {
		code = IntType
	}
	if op == pythonast.Invert && (code == FloatType || code == ComplexType) {
		return TypeUnion{}, false
	}
	return NewUnion(b.ClassByCode(code).Instance), true
}
