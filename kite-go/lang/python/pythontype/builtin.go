package pythontype

import (
	"sort"
	"strings"
)

// TypeCode identifies the builtin classes the engine gives special
// treatment to
type TypeCode int

// Builtin type codes
const (
	ObjectType TypeCode = iota
	TypeType
	NoneType
	BoolType
	IntType
	LongType
	FloatType
	ComplexType
	StrType
	BytesType
	UnicodeType
	ListType
	TupleType
	DictType
	SetType
	FrozenSetType
	RangeType
	SliceType
	FunctionType
	BuiltinFunctionType
	MethodType
	GeneratorType
	ModuleType
	PropertyType
	ClassMethodType
	StaticMethodType
	SuperType
	ListIteratorType
	TupleIteratorType
	SetIteratorType
	StrIteratorType
	RangeIteratorType
	DictKeysType
	DictValuesType
	DictItemsType
	EnumerateType
	ZipType
	MapType
	FilterType
	ReversedType
	FileType
	EllipsisType
	NotImplementedType
	ExceptionType
)

type callFunc func(c *Call) TypeUnion

// BuiltinClass is a class provided by the interpreter
type BuiltinClass struct {
	record
	name  string
	Code  TypeCode
	Bases []*BuiltinClass
	Doc   string

	// Instance is the single namespace standing for every instance of the
	// class that is not tracked more precisely
	Instance *BuiltinInstance

	mro       []*BuiltinClass
	members   map[string]Namespace
	construct callFunc
	params    []string
}

// Kind implements Namespace
func (c *BuiltinClass) Kind() Kind { return TypeKind }

// Name implements Namespace
func (c *BuiltinClass) Name() string { return c.name }

// Mro returns the linearization of the class, starting with the class
func (c *BuiltinClass) Mro() []*BuiltinClass { return c.mro }

// OwnMember returns a member declared on the class itself
func (c *BuiltinClass) OwnMember(name string) (Namespace, bool) {
	ns, ok := c.members[name]
	return ns, ok
}

// Member looks name up along the class's MRO
func (c *BuiltinClass) Member(name string) (Namespace, bool) {
	for _, m := range c.mro {
		if ns, ok := m.members[name]; ok {
			return ns, true
		}
	}
	return nil, false
}

// MemberNames returns the sorted names of every member visible on the class
func (c *BuiltinClass) MemberNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, m := range c.mro {
		for name := range m.members {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	sort.Strings(out)
	return out
}

// IsSubclass returns true if o appears in the MRO of c
func (c *BuiltinClass) IsSubclass(o *BuiltinClass) bool {
	for _, m := range c.mro {
		if m == o {
			return true
		}
	}
	return false
}

// Params returns the parameter names of the class's constructor
func (c *BuiltinClass) Params() []string { return c.params }

func (c *BuiltinClass) def(name, params string, call callFunc) *BuiltinFunction {
	f := &BuiltinFunction{
		record: newRecord(),
		name:   name,
		Owner:  c,
		params: splitParams(params),
		call:   call,
	}
	c.members[name] = f
	return f
}

func (c *BuiltinClass) attr(name string, ns Namespace) {
	c.members[name] = ns
}

// BuiltinInstance stands for an instance of a builtin class
type BuiltinInstance struct {
	record
	Class *BuiltinClass
}

// Kind implements Namespace
func (i *BuiltinInstance) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (i *BuiltinInstance) Name() string { return i.Class.name }

// BuiltinFunction is a function provided by the interpreter, either at
// module level or as a member of a builtin class
type BuiltinFunction struct {
	record
	name string
	Doc  string
	// Owner is the class the function is a member of, or nil
	Owner *BuiltinClass

	params []string
	call   callFunc
}

// Kind implements Namespace
func (f *BuiltinFunction) Kind() Kind { return FunctionKind }

// Name implements Namespace
func (f *BuiltinFunction) Name() string { return f.name }

// Params returns the parameter names shown in signatures
func (f *BuiltinFunction) Params() []string { return f.params }

// Invoke calls the function
func (f *BuiltinFunction) Invoke(c *Call) TypeUnion {
	if f.call == nil || c == nil {
		return TypeUnion{}
	}
	inner := *c
	inner.callee = f
	return f.call(&inner)
}

// BuiltinMethod is a builtin function bound to a receiver
type BuiltinMethod struct {
	record
	Func *BuiltinFunction
	Self Namespace
}

// NewBuiltinMethod binds f to self
func NewBuiltinMethod(f *BuiltinFunction, self Namespace) *BuiltinMethod {
	return &BuiltinMethod{record: newRecord(), Func: f, Self: self}
}

// Kind implements Namespace
func (m *BuiltinMethod) Kind() Kind { return MethodKind }

// Name implements Namespace
func (m *BuiltinMethod) Name() string { return m.Func.name }

// Invoke calls the method with its receiver
func (m *BuiltinMethod) Invoke(c *Call) TypeUnion {
	bound := *c
	bound.Self = m.Self
	return m.Func.Invoke(&bound)
}

// BuiltinModule is a module provided by the interpreter
type BuiltinModule struct {
	record
	name    string
	members map[string]Namespace
}

// Kind implements Namespace
func (m *BuiltinModule) Kind() Kind { return ModuleKind }

// Name implements Namespace
func (m *BuiltinModule) Name() string { return m.name }

// Member returns a member of the module
func (m *BuiltinModule) Member(name string) (Namespace, bool) {
	ns, ok := m.members[name]
	return ns, ok
}

// MemberNames returns the sorted member names
func (m *BuiltinModule) MemberNames() []string {
	out := make([]string, 0, len(m.members))
	for name := range m.members {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func (m *BuiltinModule) def(name, params string, call callFunc) *BuiltinFunction {
	f := &BuiltinFunction{
		record: newRecord(),
		name:   name,
		params: splitParams(params),
		call:   call,
	}
	m.members[name] = f
	return f
}

func splitParams(params string) []string {
	if params == "" {
		return nil
	}
	return strings.Split(params, ", ")
}

// BuiltinTable holds the builtin classes, constants and the builtins module
type BuiltinTable struct {
	Object, Type, NoneType, Bool, Int, Long, Float, Complex *BuiltinClass
	Str, Bytes, Unicode                                     *BuiltinClass
	List, Tuple, Dict, Set, FrozenSet, Range, Slice         *BuiltinClass
	Function, BuiltinFunction, Method, Generator, Module    *BuiltinClass
	Property, ClassMethod, StaticMethod, Super              *BuiltinClass
	ListIterator, TupleIterator, SetIterator, StrIterator   *BuiltinClass
	RangeIterator, DictKeys, DictValues, DictItems          *BuiltinClass
	Enumerate, Zip, Map, Filter, Reversed, File             *BuiltinClass
	Ellipsis, NotImplemented                                *BuiltinClass
	BaseException, Exception, StopIteration                 *BuiltinClass

	None, True, False, EllipsisValue, NotImplementedValue *ConstantInfo

	// BuiltinsModule is the builtins module. Names that are not bound in any
	// scope resolve against it.
	BuiltinsModule *BuiltinModule

	classes map[TypeCode]*BuiltinClass
}

// Builtins is the table shared by every session. It is never mutated after
// initialization.
var Builtins *BuiltinTable

func init() {
	Builtins = newBuiltinTable()
}

func (b *BuiltinTable) class(name string, code TypeCode, bases ...*BuiltinClass) *BuiltinClass {
	c := &BuiltinClass{
		record:  newRecord(),
		name:    name,
		Code:    code,
		Bases:   bases,
		members: make(map[string]Namespace),
	}
	c.Instance = &BuiltinInstance{record: newRecord(), Class: c}
	c.mro = builtinMro(c)
	if _, ok := b.classes[code]; !ok {
		b.classes[code] = c
	}
	b.BuiltinsModule.members[name] = c
	return c
}

// builtinMro linearizes builtin classes. Builtin hierarchies are trees
// apart from object, so a depth first walk with object moved last matches
// C3.
func builtinMro(c *BuiltinClass) []*BuiltinClass {
	var out []*BuiltinClass
	seen := make(map[*BuiltinClass]bool)
	var object *BuiltinClass
	var visit func(*BuiltinClass)
	visit = func(k *BuiltinClass) {
		if seen[k] {
			return
		}
		seen[k] = true
		if k.Code == ObjectType {
			object = k
			return
		}
		out = append(out, k)
		for _, base := range k.Bases {
			visit(base)
		}
	}
	visit(c)
	if object != nil {
		out = append(out, object)
	}
	return out
}

// ClassByCode returns the builtin class for a type code
func (b *BuiltinTable) ClassByCode(code TypeCode) *BuiltinClass {
	return b.classes[code]
}

// Lookup returns the builtin bound to name
func (b *BuiltinTable) Lookup(name string) (Namespace, bool) {
	return b.BuiltinsModule.Member(name)
}

// IntConst returns an int constant
func (b *BuiltinTable) IntConst(v int64) *ConstantInfo {
	return NewConstant(b.Int, v)
}

// StrConst returns a str constant
func (b *BuiltinTable) StrConst(s string) *ConstantInfo {
	return NewConstant(b.Str, s)
}

// FloatConst returns a float constant
func (b *BuiltinTable) FloatConst(f float64) *ConstantInfo {
	return NewConstant(b.Float, f)
}

// BoolConst returns True or False
func (b *BuiltinTable) BoolConst(v bool) *ConstantInfo {
	if v {
		return b.True
	}
	return b.False
}

// returns builds a call func that evaluates to an instance of the class with
// the given code
func (b *BuiltinTable) returns(code TypeCode) callFunc {
	return func(*Call) TypeUnion {
		return NewUnion(b.classes[code].Instance)
	}
}

func (b *BuiltinTable) returnsNone(*Call) TypeUnion {
	return NewUnion(b.None)
}

func returnsSelf(c *Call) TypeUnion {
	if c.Self == nil {
		return TypeUnion{}
	}
	return NewUnion(c.Self)
}

// TypeOf returns the class of a namespace: what type(x) evaluates to
func TypeOf(ns Namespace) Namespace {
	b := Builtins
	switch ns := ns.(type) {
	case *BuiltinClass:
		return b.Type
	case *BuiltinInstance:
		return ns.Class
	case *BuiltinFunction:
		return b.BuiltinFunction
	case *BuiltinMethod:
		return b.BuiltinFunction
	case *BuiltinModule:
		return b.Module
	case *ConstantInfo:
		return ns.Class
	case *ClassInfo:
		return b.Type
	case *InstanceInfo:
		return ns.Class
	case *FunctionInfo:
		return b.Function
	case *BoundMethod:
		return b.Method
	case *ModuleInfo:
		return b.Module
	case *ListInfo:
		return ns.cls
	case *TupleInfo:
		return b.Tuple
	case *DictInfo:
		return ns.cls
	case *SetInfo:
		return ns.cls
	case *RangeInfo:
		return b.Range
	case *GeneratorInfo:
		return b.Generator
	case *IteratorInfo:
		return ns.cls
	case *SuperInfo:
		return b.Super
	case *DescriptorInfo:
		return ns.class()
	case *MultipleMemberInfo:
		return b.Object
	case nil:
		return nil
	default:
		unhandled("TypeOf", ns)
		return nil
	}
}

// builtinClassOf returns the builtin class a namespace is an instance of,
// or nil for instances of user classes and for non-instances
func builtinClassOf(ns Namespace) *BuiltinClass {
	if !isInstanceLike(ns) {
		return nil
	}
	c, _ := TypeOf(ns).(*BuiltinClass)
	return c
}

// codeOf returns the type code of the builtin class of an instance, or -1
func codeOf(ns Namespace) TypeCode {
	if c := builtinClassOf(ns); c != nil {
		return c.Code
	}
	return -1
}
