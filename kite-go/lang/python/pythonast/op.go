package pythonast

// Op is an operator appearing in a BinaryExpr, UnaryExpr or AugAssignStmt
type Op int

// Operators
const (
	IllegalOp Op = iota
	Add
	Sub
	Mul
	MatMul
	Div
	FloorDiv
	Mod
	Pow
	LShift
	RShift
	BitAnd
	BitOr
	BitXor
	And
	Or
	Not
	Invert
	Eq
	NotEq
	Lt
	LtE
	Gt
	GtE
	Is
	IsNot
	In
	NotIn
)

var opSymbols = map[Op]string{
	Add:      "+",
	Sub:      "-",
	Mul:      "*",
	MatMul:   "@",
	Div:      "/",
	FloorDiv: "//",
	Mod:      "%",
	Pow:      "**",
	LShift:   "<<",
	RShift:   ">>",
	BitAnd:   "&",
	BitOr:    "|",
	BitXor:   "^",
	And:      "and",
	Or:       "or",
	Not:      "not",
	Invert:   "~",
	Eq:       "==",
	NotEq:    "!=",
	Lt:       "<",
	LtE:      "<=",
	Gt:       ">",
	GtE:      ">=",
	Is:       "is",
	IsNot:    "is not",
	In:       "in",
	NotIn:    "not in",
}

var symbolOps = func() map[string]Op {
	m := make(map[string]Op, len(opSymbols)+1)
	for op, sym := range opSymbols {
		m[sym] = op
	}
	m["<>"] = NotEq
	return m
}()

// String returns the operator as it is written in source
func (op Op) String() string {
	if s, ok := opSymbols[op]; ok {
		return s
	}
	return "<illegal>"
}

// LookupOp finds the operator for a source symbol such as "+" or "not in".
// Augmented assignment symbols like "+=" map to the underlying operator.
func LookupOp(sym string) Op {
	if op, ok := symbolOps[sym]; ok {
		return op
	}
	if n := len(sym); n > 1 && sym[n-1] == '=' {
		if op, ok := symbolOps[sym[:n-1]]; ok {
			return op
		}
	}
	return IllegalOp
}

// IsComparison returns true for comparison operators, which always produce a
// bool for builtin operands
func (op Op) IsComparison() bool {
	switch op {
	case Eq, NotEq, Lt, LtE, Gt, GtE, Is, IsNot, In, NotIn:
		return true
	}
	return false
}

// IsBoolean returns true for `and` and `or`
func (op Op) IsBoolean() bool {
	return op == And || op == Or
}

// Dunder returns the special method implementing the operator, e.g. "__add__"
// for Add. Operators without a special method return "".
func (op Op) Dunder() string {
	switch op {
	case Add:
		return "__add__"
	case Sub:
		return "__sub__"
	case Mul:
		return "__mul__"
	case MatMul:
		return "__matmul__"
	case Div:
		return "__truediv__"
	case FloorDiv:
		return "__floordiv__"
	case Mod:
		return "__mod__"
	case Pow:
		return "__pow__"
	case LShift:
		return "__lshift__"
	case RShift:
		return "__rshift__"
	case BitAnd:
		return "__and__"
	case BitOr:
		return "__or__"
	case BitXor:
		return "__xor__"
	case Eq:
		return "__eq__"
	case NotEq:
		return "__ne__"
	case Lt:
		return "__lt__"
	case LtE:
		return "__le__"
	case Gt:
		return "__gt__"
	case GtE:
		return "__ge__"
	case In, NotIn:
		return "__contains__"
	case Invert:
		return "__invert__"
	}
	return ""
}

// ReflectedDunder returns the reflected special method, e.g. "__radd__" for
// Add, or "" if the operator has none.
func (op Op) ReflectedDunder() string {
	switch op {
	case Add, Sub, Mul, MatMul, Div, FloorDiv, Mod, Pow, LShift, RShift, BitAnd, BitOr, BitXor:
		d := op.Dunder()
		return "__r" + d[2:]
	}
	return ""
}
