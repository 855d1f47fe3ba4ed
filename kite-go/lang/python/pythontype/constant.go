package pythontype

import (
	"fmt"
	"strconv"
)

// ConstantInfo is a literal value: a number, a string, True, False, None,
// Ellipsis or NotImplemented. Value holds an int64, float64, complex128,
// string, bool or nil.
type ConstantInfo struct {
	record
	Class *BuiltinClass
	Value interface{}
}

// NewConstant creates a constant of the given builtin class
func NewConstant(cls *BuiltinClass, value interface{}) *ConstantInfo {
	return &ConstantInfo{record: newRecord(), Class: cls, Value: value}
}

// Kind implements Namespace
func (c *ConstantInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (c *ConstantInfo) Name() string { return c.Class.name }

// Literal renders the value the way it would appear in source
func (c *ConstantInfo) Literal() string {
	switch v := c.Value.(type) {
	case nil:
		switch c.Class.Code {
		case EllipsisType:
			return "Ellipsis"
		case NotImplementedType:
			return "NotImplemented"
		}
		return "None"
	case bool:
		if v {
			return "True"
		}
		return "False"
	case int64:
		return strconv.FormatInt(v, 10)
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case complex128:
		return fmt.Sprintf("%gj", imag(v))
	case string:
		switch c.Class.Code {
		case BytesType:
			return "b" + strconv.Quote(v)
		case UnicodeType:
			return "u" + strconv.Quote(v)
		}
		return strconv.Quote(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// Strings returns the values of the str constants in a union
func Strings(u TypeUnion) []string {
	var out []string
	for _, ns := range u.Types() {
		if c, ok := ns.(*ConstantInfo); ok {
			if s, ok := c.Value.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// Ints returns the values of the int constants in a union
func Ints(u TypeUnion) []int64 {
	var out []int64
	for _, ns := range u.Types() {
		if c, ok := ns.(*ConstantInfo); ok {
			if i, ok := c.Value.(int64); ok {
				out = append(out, i)
			}
		}
	}
	return out
}
