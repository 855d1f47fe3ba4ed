package pythontype

import "github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"

func newBuiltinTable() *BuiltinTable {
	b := &BuiltinTable{
		BuiltinsModule: &BuiltinModule{
			record:  newRecord(),
			name:    "builtins",
			members: make(map[string]Namespace),
		},
		classes: make(map[TypeCode]*BuiltinClass),
	}

	b.Object = b.class("object", ObjectType)
	b.Type = b.class("type", TypeType, b.Object)
	b.NoneType = b.internal("NoneType", NoneType, b.Object)
	b.Int = b.class("int", IntType, b.Object)
	b.Bool = b.class("bool", BoolType, b.Int)
	b.Long = b.class("long", LongType, b.Object)
	b.Float = b.class("float", FloatType, b.Object)
	b.Complex = b.class("complex", ComplexType, b.Object)
	b.Str = b.class("str", StrType, b.Object)
	b.Bytes = b.class("bytes", BytesType, b.Object)
	b.Unicode = b.class("unicode", UnicodeType, b.Object)
	b.List = b.class("list", ListType, b.Object)
	b.Tuple = b.class("tuple", TupleType, b.Object)
	b.Dict = b.class("dict", DictType, b.Object)
	b.Set = b.class("set", SetType, b.Object)
	b.FrozenSet = b.class("frozenset", FrozenSetType, b.Object)
	b.Range = b.class("range", RangeType, b.Object)
	b.Slice = b.class("slice", SliceType, b.Object)
	b.Function = b.internal("function", FunctionType, b.Object)
	b.BuiltinFunction = b.internal("builtin_function_or_method", BuiltinFunctionType, b.Object)
	b.Method = b.internal("method", MethodType, b.Object)
	b.Generator = b.internal("generator", GeneratorType, b.Object)
	b.Module = b.internal("module", ModuleType, b.Object)
	b.Property = b.class("property", PropertyType, b.Object)
	b.ClassMethod = b.class("classmethod", ClassMethodType, b.Object)
	b.StaticMethod = b.class("staticmethod", StaticMethodType, b.Object)
	b.Super = b.class("super", SuperType, b.Object)
	b.ListIterator = b.internal("list_iterator", ListIteratorType, b.Object)
	b.TupleIterator = b.internal("tuple_iterator", TupleIteratorType, b.Object)
	b.SetIterator = b.internal("set_iterator", SetIteratorType, b.Object)
	b.StrIterator = b.internal("str_iterator", StrIteratorType, b.Object)
	b.RangeIterator = b.internal("range_iterator", RangeIteratorType, b.Object)
	b.DictKeys = b.internal("dict_keys", DictKeysType, b.Object)
	b.DictValues = b.internal("dict_values", DictValuesType, b.Object)
	b.DictItems = b.internal("dict_items", DictItemsType, b.Object)
	b.Enumerate = b.class("enumerate", EnumerateType, b.Object)
	b.Zip = b.class("zip", ZipType, b.Object)
	b.Map = b.class("map", MapType, b.Object)
	b.Filter = b.class("filter", FilterType, b.Object)
	b.Reversed = b.class("reversed", ReversedType, b.Object)
	b.File = b.class("file", FileType, b.Object)
	b.Ellipsis = b.internal("ellipsis", EllipsisType, b.Object)
	b.NotImplemented = b.internal("NotImplementedType", NotImplementedType, b.Object)

	b.BuiltinsModule.members["xrange"] = b.Range
	b.BuiltinsModule.members["basestring"] = b.Str

	b.None = NewConstant(b.NoneType, nil)
	b.True = NewConstant(b.Bool, true)
	b.False = NewConstant(b.Bool, false)
	b.EllipsisValue = NewConstant(b.Ellipsis, nil)
	b.NotImplementedValue = NewConstant(b.NotImplemented, nil)
	for name, ns := range map[string]Namespace{
		"None":           b.None,
		"True":           b.True,
		"False":          b.False,
		"Ellipsis":       b.EllipsisValue,
		"NotImplemented": b.NotImplementedValue,
		"__debug__":      b.Bool.Instance,
		"__name__":       b.Str.Instance,
		"__doc__":        b.Str.Instance,
	} {
		b.BuiltinsModule.members[name] = ns
	}

	b.exceptions()

	b.objectMembers()
	b.numberMembers()
	b.stringMembers()
	b.listMembers()
	b.tupleMembers()
	b.dictMembers()
	b.setMembers()
	b.iteratorMembers()
	b.descriptorMembers()
	b.fileMembers()
	b.constructors()
	b.functions()
	return b
}

// internal creates a class that is not reachable by name from the builtins
// module
func (b *BuiltinTable) internal(name string, code TypeCode, bases ...*BuiltinClass) *BuiltinClass {
	c := b.class(name, code, bases...)
	delete(b.BuiltinsModule.members, name)
	return c
}

func (b *BuiltinTable) exceptions() {
	b.BaseException = b.class("BaseException", ExceptionType, b.Object)
	b.Exception = b.class("Exception", ExceptionType, b.BaseException)
	b.StopIteration = b.class("StopIteration", ExceptionType, b.Exception)

	b.BaseException.attr("args", b.Tuple.Instance)
	b.BaseException.attr("message", b.Str.Instance)
	b.BaseException.def("with_traceback", "tb", returnsSelf)
	b.StopIteration.attr("value", b.Object.Instance)

	exc := func(name string, base *BuiltinClass) *BuiltinClass {
		return b.class(name, ExceptionType, base)
	}
	for _, name := range []string{"KeyboardInterrupt", "SystemExit", "GeneratorExit"} {
		exc(name, b.BaseException)
	}

	arith := exc("ArithmeticError", b.Exception)
	for _, name := range []string{"ZeroDivisionError", "OverflowError", "FloatingPointError"} {
		exc(name, arith)
	}
	lookup := exc("LookupError", b.Exception)
	exc("KeyError", lookup)
	exc("IndexError", lookup)

	value := exc("ValueError", b.Exception)
	unicodeErr := exc("UnicodeError", value)
	for _, name := range []string{"UnicodeDecodeError", "UnicodeEncodeError", "UnicodeTranslateError"} {
		exc(name, unicodeErr)
	}

	runtime := exc("RuntimeError", b.Exception)
	exc("NotImplementedError", runtime)
	exc("RecursionError", runtime)

	os := exc("OSError", b.Exception)
	os.attr("errno", b.Int.Instance)
	os.attr("strerror", b.Str.Instance)
	os.attr("filename", b.Str.Instance)
	b.BuiltinsModule.members["IOError"] = os
	b.BuiltinsModule.members["EnvironmentError"] = os
	for _, name := range []string{"FileNotFoundError", "FileExistsError", "PermissionError",
		"IsADirectoryError", "NotADirectoryError", "TimeoutError", "ConnectionError", "InterruptedError"} {
		exc(name, os)
	}

	importErr := exc("ImportError", b.Exception)
	importErr.attr("name", b.Str.Instance)
	exc("ModuleNotFoundError", importErr)

	nameErr := exc("NameError", b.Exception)
	exc("UnboundLocalError", nameErr)

	syntax := exc("SyntaxError", b.Exception)
	exc("IndentationError", syntax)

	for _, name := range []string{"TypeError", "AttributeError", "AssertionError", "EOFError",
		"MemoryError", "SystemError", "BufferError", "ReferenceError", "StopAsyncIteration"} {
		exc(name, b.Exception)
	}

	warning := exc("Warning", b.Exception)
	for _, name := range []string{"UserWarning", "DeprecationWarning", "PendingDeprecationWarning",
		"SyntaxWarning", "RuntimeWarning", "FutureWarning", "ImportWarning", "UnicodeWarning",
		"BytesWarning", "ResourceWarning"} {
		exc(name, warning)
	}
}

func (b *BuiltinTable) objectMembers() {
	obj := b.Object
	obj.def("__init__", "", b.returnsNone)
	obj.def("__str__", "", b.returns(StrType))
	obj.def("__repr__", "", b.returns(StrType))
	obj.def("__format__", "format_spec", b.returns(StrType))
	obj.def("__eq__", "other", b.returns(BoolType))
	obj.def("__ne__", "other", b.returns(BoolType))
	obj.def("__hash__", "", b.returns(IntType))
	obj.def("__setattr__", "name, value", b.returnsNone)
	obj.def("__delattr__", "name", b.returnsNone)
	obj.def("__dir__", "", func(c *Call) TypeUnion {
		l := c.newList()
		l.AddElements(c.Site, NewUnion(b.Str.Instance))
		return NewUnion(l)
	})
	obj.attr("__doc__", b.Str.Instance)
	obj.attr("__module__", b.Str.Instance)
	obj.attr("__dict__", b.Dict.Instance)

	typ := b.Type
	typ.def("mro", "", b.returns(ListType))
	typ.def("__subclasses__", "", b.returns(ListType))
	typ.attr("__bases__", b.Tuple.Instance)
	typ.attr("__mro__", b.Tuple.Instance)
	typ.attr("__qualname__", b.Str.Instance)

	for _, cls := range []*BuiltinClass{b.Function, b.BuiltinFunction, b.Method} {
		cls.attr("__name__", b.Str.Instance)
		cls.attr("__qualname__", b.Str.Instance)
		cls.attr("__defaults__", b.Tuple.Instance)
	}
	b.Function.attr("__code__", b.Object.Instance)
	b.Function.attr("__globals__", b.Dict.Instance)

	b.Module.attr("__name__", b.Str.Instance)
	b.Module.attr("__file__", b.Str.Instance)
	b.Module.attr("__package__", b.Str.Instance)

	for _, name := range []string{"start", "stop", "step"} {
		b.Slice.attr(name, b.Object.Instance)
		b.Range.attr(name, b.Int.Instance)
	}
	b.Slice.def("indices", "len", func(c *Call) TypeUnion {
		i := NewUnion(b.Int.Instance)
		return NewUnion(c.newTuple(i, i, i))
	})
	b.Range.def("index", "value", b.returns(IntType))
	b.Range.def("count", "value", b.returns(IntType))
	b.Range.def("__len__", "", b.returns(IntType))
	b.Range.def("__contains__", "value", b.returns(BoolType))
}

func (b *BuiltinTable) numberMembers() {
	for _, cls := range []*BuiltinClass{b.Int, b.Long, b.Float, b.Complex} {
		self := b.returns(cls.Code)
		cls.def("conjugate", "", self)
		cls.def("__abs__", "", self)
		switch cls.Code {
		case ComplexType:
			cls.attr("real", b.Float.Instance)
			cls.attr("imag", b.Float.Instance)
		default:
			cls.attr("real", cls.Instance)
			cls.attr("imag", cls.Instance)
		}
	}
	for _, cls := range []*BuiltinClass{b.Int, b.Long} {
		cls.def("bit_length", "", b.returns(IntType))
		cls.def("to_bytes", "length, byteorder", b.returns(BytesType))
		cls.attr("numerator", cls.Instance)
		cls.attr("denominator", cls.Instance)
	}
	b.Int.def("from_bytes", "bytes, byteorder", b.returns(IntType))
	b.Float.def("is_integer", "", b.returns(BoolType))
	b.Float.def("hex", "", b.returns(StrType))
	b.Float.def("fromhex", "string", b.returns(FloatType))
	b.Float.def("as_integer_ratio", "", func(c *Call) TypeUnion {
		i := NewUnion(b.Int.Instance)
		return NewUnion(c.newTuple(i, i))
	})
}

func (b *BuiltinTable) stringMembers() {
	for _, cls := range []*BuiltinClass{b.Str, b.Bytes, b.Unicode} {
		cls := cls
		self := b.returns(cls.Code)
		for _, name := range []string{"upper", "lower", "strip", "lstrip", "rstrip", "title",
			"capitalize", "swapcase", "casefold", "center", "ljust", "rjust", "zfill",
			"expandtabs", "replace", "format", "join", "translate"} {
			cls.def(name, "*args", self)
		}
		for _, name := range []string{"startswith", "endswith", "isdigit", "isalpha", "isalnum",
			"isspace", "isupper", "islower", "istitle", "isdecimal", "isnumeric", "isidentifier"} {
			cls.def(name, "*args", b.returns(BoolType))
		}
		for _, name := range []string{"find", "rfind", "index", "rindex", "count", "__len__"} {
			cls.def(name, "*args", b.returns(IntType))
		}
		cls.def("__contains__", "value", b.returns(BoolType))
		split := func(c *Call) TypeUnion {
			l := c.newList()
			l.AddElements(c.Site, NewUnion(cls.Instance))
			return NewUnion(l)
		}
		cls.def("split", "sep=None, maxsplit=-1", split)
		cls.def("rsplit", "sep=None, maxsplit=-1", split)
		cls.def("splitlines", "keepends=False", split)
		partition := func(c *Call) TypeUnion {
			s := NewUnion(cls.Instance)
			return NewUnion(c.newTuple(s, s, s))
		}
		cls.def("partition", "sep", partition)
		cls.def("rpartition", "sep", partition)
	}
	b.Str.def("encode", "encoding='utf-8', errors='strict'", b.returns(BytesType))
	b.Unicode.def("encode", "encoding='utf-8', errors='strict'", b.returns(StrType))
	b.Bytes.def("decode", "encoding='utf-8', errors='strict'", b.returns(StrType))
	b.Str.def("decode", "encoding='utf-8', errors='strict'", b.returns(UnicodeType))
	b.Str.def("format_map", "mapping", b.returns(StrType))
	b.Bytes.def("hex", "", b.returns(StrType))
}

func selfIterator(c *Call) *IteratorInfo {
	it, _ := c.Self.(*IteratorInfo)
	return it
}

func (b *BuiltinTable) iteratorMembers() {
	next := func(c *Call) TypeUnion {
		if it := selfIterator(c); it != nil {
			return it.ElementTypes(c.Site)
		}
		return TypeUnion{}
	}
	for _, cls := range []*BuiltinClass{b.ListIterator, b.TupleIterator, b.SetIterator,
		b.StrIterator, b.RangeIterator, b.Enumerate, b.Zip, b.Map, b.Filter, b.Reversed} {
		cls.def("__next__", "", next)
		cls.def("next", "", next)
		cls.def("__iter__", "", returnsSelf)
	}
	for _, cls := range []*BuiltinClass{b.DictKeys, b.DictValues, b.DictItems} {
		cls.def("__iter__", "", returnsSelf)
		cls.def("__len__", "", b.returns(IntType))
		cls.def("__contains__", "value", b.returns(BoolType))
	}

	gen := b.Generator
	withGen := func(f func(c *Call, g *GeneratorInfo) TypeUnion) callFunc {
		return func(c *Call) TypeUnion {
			if g, ok := c.Self.(*GeneratorInfo); ok {
				return f(c, g)
			}
			return TypeUnion{}
		}
	}
	yields := withGen(func(c *Call, g *GeneratorInfo) TypeUnion {
		return g.Yields.TypesFor(c.Unit)
	})
	gen.def("__next__", "", yields)
	gen.def("next", "", yields)
	gen.def("send", "value", withGen(func(c *Call, g *GeneratorInfo) TypeUnion {
		g.AddSend(c.Site, c.Args.Arg(0))
		return g.Yields.TypesFor(c.Unit)
	}))
	gen.def("throw", "type, value=None, traceback=None", yields)
	gen.def("close", "", b.returnsNone)
	gen.def("__iter__", "", returnsSelf)
}

func (b *BuiltinTable) fileMembers() {
	f := b.File
	f.def("read", "size=-1", b.returns(StrType))
	f.def("readline", "size=-1", b.returns(StrType))
	f.def("readlines", "hint=-1", func(c *Call) TypeUnion {
		l := c.newList()
		l.AddElements(c.Site, NewUnion(b.Str.Instance))
		return NewUnion(l)
	})
	f.def("write", "s", b.returns(IntType))
	f.def("writelines", "lines", b.returnsNone)
	f.def("close", "", b.returnsNone)
	f.def("flush", "", b.returnsNone)
	f.def("seek", "offset, whence=0", b.returns(IntType))
	f.def("tell", "", b.returns(IntType))
	f.def("fileno", "", b.returns(IntType))
	f.def("__enter__", "", returnsSelf)
	f.def("__exit__", "*args", b.returnsNone)
	f.def("__iter__", "", returnsSelf)
	f.def("__next__", "", b.returns(StrType))
	f.def("next", "", b.returns(StrType))
	f.attr("name", b.Str.Instance)
	f.attr("mode", b.Str.Instance)
	f.attr("closed", b.Bool.Instance)
}

// newIterator returns the iterator of the given class created by the builtin
// being called, holding types
func (c *Call) newIterator(cls *BuiltinClass, types TypeUnion) *IteratorInfo {
	it := c.memo(memoIterator, func() Namespace {
		return newIterator(cls, c.Site.newDef(cls.name))
	}).(*IteratorInfo)
	it.Elements.AddTypesLimited(c.Unit, types, c.Limits().IndexTypes)
	return it
}

func (b *BuiltinTable) constructors() {
	b.Type.construct = func(c *Call) TypeUnion {
		if c.Args.Len() == 1 {
			var out TypeUnion
			for _, ns := range c.Args.Arg(0).Types() {
				out, _ = out.Add(TypeOf(ns))
			}
			return out
		}
		return NewUnion(b.Type.Instance)
	}
	b.Type.params = []string{"object_or_name", "bases=None", "dict=None"}

	b.Bool.construct = b.returns(BoolType)
	b.Bool.params = []string{"x=False"}

	b.Range.construct = func(c *Call) TypeUnion {
		return NewUnion(NewRangeAt(c.Site))
	}
	b.Range.params = []string{"start", "stop=None", "step=1"}

	b.Super.construct = func(c *Call) TypeUnion {
		var out TypeUnion
		if c.Args.Len() > 0 {
			var selves []Namespace
			for _, s := range c.Args.Arg(1).Types() {
				selves = append(selves, s)
			}
			if len(selves) == 0 {
				selves = append(selves, nil)
			}
			for _, ns := range c.Args.Arg(0).Types() {
				cls, ok := ns.(*ClassInfo)
				if !ok {
					continue
				}
				for _, self := range selves {
					out, _ = out.Add(NewSuperAt(c.Site, cls, self))
				}
			}
		} else {
			out = implicitSuper(c)
		}
		if out.IsEmpty() {
			return NewUnion(b.Super.Instance)
		}
		return out
	}
	b.Super.params = []string{"type=None", "object_or_type=None"}

	b.Enumerate.construct = func(c *Call) TypeUnion {
		elems := GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0))
		t := c.newTuple(NewUnion(b.Int.Instance), elems)
		return NewUnion(c.newIterator(b.Enumerate, NewUnion(t)))
	}
	b.Enumerate.params = []string{"iterable", "start=0"}

	b.Zip.construct = func(c *Call) TypeUnion {
		var elems []TypeUnion
		for _, arg := range c.Args.Positional {
			elems = append(elems, GetEnumeratedTypesUnion(c.Site, arg))
		}
		t := c.newTuple(elems...)
		return NewUnion(c.newIterator(b.Zip, NewUnion(t)))
	}
	b.Zip.params = []string{"*iterables"}

	b.Map.construct = func(c *Call) TypeUnion {
		var args []TypeUnion
		for i := 1; i < c.Args.Len(); i++ {
			args = append(args, GetEnumeratedTypesUnion(c.Site, c.Args.Arg(i)))
		}
		res := InvokeUnion(c.Site, c.Args.Arg(0), PositionalArgs(args...))
		return NewUnion(c.newIterator(b.Map, res))
	}
	b.Map.params = []string{"function", "*iterables"}

	b.Filter.construct = func(c *Call) TypeUnion {
		elems := GetEnumeratedTypesUnion(c.Site, c.Args.Arg(1))
		return NewUnion(c.newIterator(b.Filter, elems))
	}
	b.Filter.params = []string{"function", "iterable"}

	b.Reversed.construct = func(c *Call) TypeUnion {
		elems := GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0))
		return NewUnion(c.newIterator(b.Reversed, elems))
	}
	b.Reversed.params = []string{"sequence"}

	b.Object.params = []string{}
	b.Int.params = []string{"x=0", "base=10"}
	b.Float.params = []string{"x=0.0"}
	b.Str.params = []string{"object=''"}
	b.File.params = []string{"name", "mode='r'", "buffering=-1"}
}

// implicitSuper evaluates super() without arguments inside a method: the
// class is the one defining the method, the receiver its first parameter
func implicitSuper(c *Call) TypeUnion {
	if c.Unit == nil {
		return TypeUnion{}
	}
	for s := c.Unit.Scope; s != nil; s = s.Parent {
		fa := s.Function
		if fa == nil {
			continue
		}
		cls := fa.Function.Class
		if cls == nil || len(fa.Params) == 0 {
			return TypeUnion{}
		}
		var out TypeUnion
		for _, self := range fa.Params[0].TypesFor(c.Unit).Types() {
			out, _ = out.Add(NewSuperAt(c.Site, cls, self))
		}
		if out.IsEmpty() {
			out, _ = out.Add(NewSuperAt(c.Site, cls, cls.Instance))
		}
		return out
	}
	return TypeUnion{}
}

func (b *BuiltinTable) functions() {
	m := b.BuiltinsModule
	boolean := b.returns(BoolType)
	integer := b.returns(IntType)
	str := b.returns(StrType)

	for name, params := range map[string]string{
		"isinstance": "obj, class_or_tuple",
		"issubclass": "cls, class_or_tuple",
		"hasattr":    "obj, name",
		"callable":   "obj",
		"any":        "iterable",
		"all":        "iterable",
	} {
		m.def(name, params, boolean)
	}
	for name, params := range map[string]string{
		"len":  "obj",
		"hash": "obj",
		"id":   "obj",
		"ord":  "c",
	} {
		m.def(name, params, integer)
	}
	for name, params := range map[string]string{
		"repr":      "obj",
		"format":    "value, format_spec=''",
		"chr":       "i",
		"unichr":    "i",
		"hex":       "number",
		"oct":       "number",
		"bin":       "number",
		"input":     "prompt=None",
		"raw_input": "prompt=None",
		"ascii":     "obj",
	} {
		m.def(name, params, str)
	}
	m.def("print", "*values, sep=' ', end='\\n', file=None", b.returnsNone)
	m.def("setattr", "obj, name, value", func(c *Call) TypeUnion {
		for _, name := range Strings(c.Args.Arg(1)) {
			SetMemberUnion(c.Site, c.Args.Arg(0), name, c.Args.Arg(2))
		}
		return NewUnion(b.None)
	})
	m.def("delattr", "obj, name", func(c *Call) TypeUnion {
		for _, name := range Strings(c.Args.Arg(1)) {
			for _, ns := range c.Args.Arg(0).Types() {
				DeleteMember(c.Site, ns, name)
			}
		}
		return NewUnion(b.None)
	})
	m.def("getattr", "obj, name, default=None", func(c *Call) TypeUnion {
		var out TypeUnion
		for _, name := range Strings(c.Args.Arg(1)) {
			out, _ = out.Union(GetMemberUnion(c.Site, c.Args.Arg(0), name))
		}
		out, _ = out.Union(c.Args.Arg(2))
		return out
	})
	m.def("iter", "iterable", func(c *Call) TypeUnion {
		return GetIteratorUnion(c.Site, c.Args.Arg(0))
	})
	m.def("next", "iterator, default=None", func(c *Call) TypeUnion {
		out := GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0))
		out, _ = out.Union(c.Args.Arg(1))
		return out
	})
	m.def("sorted", "iterable, key=None, reverse=False", func(c *Call) TypeUnion {
		l := c.newList()
		l.AddElements(c.Site, GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0)))
		return NewUnion(l)
	})
	extreme := func(c *Call) TypeUnion {
		if c.Args.Len() == 1 {
			out := GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0))
			if d, ok := c.Args.Keyword("default"); ok {
				out, _ = out.Union(d)
			}
			return out
		}
		return Unite(c.Args.Positional...)
	}
	m.def("min", "iterable, *args, key=None, default=None", extreme)
	m.def("max", "iterable, *args, key=None, default=None", extreme)
	m.def("sum", "iterable, start=0", func(c *Call) TypeUnion {
		out := GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0))
		if c.Args.Len() > 1 {
			out, _ = out.Union(c.Args.Arg(1))
		}
		if out.IsEmpty() {
			return NewUnion(b.Int.Instance)
		}
		return out
	})
	m.def("abs", "x", func(c *Call) TypeUnion {
		var out TypeUnion
		for _, ns := range c.Args.Arg(0).Types() {
			if res, ok := numericUnary(pythonast.Add, ns); ok {
				out, _ = out.Union(res)
			}
		}
		return out
	})
	m.def("round", "number, ndigits=None", func(c *Call) TypeUnion {
		if c.Args.Len() > 1 {
			return NewUnion(b.Float.Instance)
		}
		return NewUnion(b.Int.Instance)
	})
	m.def("divmod", "a, b", func(c *Call) TypeUnion {
		var q TypeUnion
		for _, l := range c.Args.Arg(0).Types() {
			for _, r := range c.Args.Arg(1).Types() {
				if res, ok := numericResult(l, pythonast.FloorDiv, r); ok {
					q, _ = q.Union(res)
				}
			}
		}
		return NewUnion(c.newTuple(q, q))
	})
	m.def("pow", "base, exp, mod=None", func(c *Call) TypeUnion {
		var out TypeUnion
		for _, l := range c.Args.Arg(0).Types() {
			for _, r := range c.Args.Arg(1).Types() {
				if res, ok := numericResult(l, pythonast.Pow, r); ok {
					out, _ = out.Union(res)
				}
			}
		}
		return out
	})
	m.def("open", "file, mode='r', buffering=-1, encoding=None", b.returns(FileType))
	m.def("dir", "obj=None", func(c *Call) TypeUnion {
		l := c.newList()
		l.AddElements(c.Site, NewUnion(b.Str.Instance))
		return NewUnion(l)
	})
	for _, name := range []string{"vars", "globals", "locals"} {
		m.def(name, "", func(c *Call) TypeUnion {
			d := c.newDict()
			d.SetItem(c.Site, NewUnion(b.Str.Instance), NewUnion(b.Object.Instance))
			return NewUnion(d)
		})
	}
	m.def("__import__", "name, globals=None, locals=None, fromlist=(), level=0", b.returns(ModuleType))
}
