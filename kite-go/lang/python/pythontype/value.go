// Package pythontype contains the value model of the type inference engine:
// the closed set of namespaces a python value may be represented by, the
// unions of namespaces accumulated for each binding, the bindings themselves
// (VariableDef), scopes, classes and their MRO, functions and call binding,
// and the specialized builtin collections.
package pythontype

import (
	"fmt"
	"sync/atomic"
)

// Kind categorizes a namespace for descriptions and member listings
type Kind int

const (
	// UnknownKind indicates a namespace about which we know nothing
	UnknownKind Kind = iota
	// TypeKind indicates a class
	TypeKind
	// InstanceKind indicates an instance of some class
	InstanceKind
	// FunctionKind indicates a function
	FunctionKind
	// MethodKind indicates a function bound to a receiver
	MethodKind
	// ModuleKind indicates a module
	ModuleKind
	// PropertyKind indicates a descriptor such as a property
	PropertyKind
	// MultipleKind indicates a member with several possible values
	MultipleKind
)

// String gets a string representation of this kind
func (k Kind) String() string {
	switch k {
	case UnknownKind:
		return "unknown"
	case TypeKind:
		return "type"
	case InstanceKind:
		return "instance"
	case FunctionKind:
		return "function"
	case MethodKind:
		return "method"
	case ModuleKind:
		return "module"
	case PropertyKind:
		return "property"
	case MultipleKind:
		return "multiple"
	default:
		return fmt.Sprintf("invalid(%d)", k)
	}
}

// Namespace is one runtime shape that a python value may take. The set of
// implementations is closed: every operation on namespaces (see ops.go) is
// an exhaustive switch over the types listed below.
//
//   *BuiltinClass, *BuiltinInstance, *BuiltinFunction, *BuiltinMethod,
//   *BuiltinModule, *ConstantInfo, *ClassInfo, *InstanceInfo, *FunctionInfo,
//   *BoundMethod, *ModuleInfo, *ListInfo, *TupleInfo, *DictInfo, *SetInfo,
//   *RangeInfo, *GeneratorInfo, *IteratorInfo, *SuperInfo, *DescriptorInfo,
//   *MultipleMemberInfo
//
// A namespace never changes identity once created. What is learned about it
// later is recorded in the VariableDefs it owns.
type Namespace interface {
	// Kind categorizes the namespace
	Kind() Kind
	// Name is the short name used in descriptions, e.g. "int" or "Widget"
	Name() string

	id() uint64
	namespace()
}

var lastID uint64

// record is embedded in every namespace and provides its identity
type record struct {
	ident uint64
}

func newRecord() record {
	return record{ident: atomic.AddUint64(&lastID, 1)}
}

func (r *record) id() uint64 { return r.ident }

func (*record) namespace() {}
