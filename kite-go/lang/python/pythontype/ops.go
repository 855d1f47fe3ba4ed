package pythontype

import (
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/kiteco/pyinfer/kite-golib/rollbar"
)

// unhandled reports a namespace type missing from an operation's switch
func unhandled(op string, ns Namespace) {
	rollbar.Critical(errors.Errorf("%s: unhandled namespace type %T", op, ns))
}

// -- attributes

// GetMember evaluates `ns.name`
func GetMember(site Site, ns Namespace, name string) TypeUnion {
	if ns == nil {
		return TypeUnion{}
	}
	if name == "__class__" {
		if _, ok := ns.(*ModuleInfo); !ok {
			return NewUnion(TypeOf(ns))
		}
	}

	b := Builtins
	switch ns := ns.(type) {
	case *BuiltinClass:
		if name == "__name__" {
			return NewUnion(b.StrConst(ns.name))
		}
		if m, ok := ns.Member(name); ok {
			return GetDescriptor(site, m, nil, ns)
		}
		return builtinMember(site, b.Type, ns, nil, name)
	case *BuiltinInstance:
		return builtinMember(site, ns.Class, ns, nil, name)
	case *BuiltinFunction:
		if name == "__name__" {
			return NewUnion(b.StrConst(ns.name))
		}
		return builtinMember(site, b.BuiltinFunction, ns, nil, name)
	case *BuiltinMethod:
		if name == "__self__" {
			return NewUnion(ns.Self)
		}
		return GetMember(site, ns.Func, name)
	case *BuiltinModule:
		if m, ok := ns.Member(name); ok {
			return NewUnion(m)
		}
		return TypeUnion{}
	case *ConstantInfo:
		return builtinMember(site, ns.Class, ns, nil, name)
	case *ClassInfo:
		return classMember(site, ns, name)
	case *InstanceInfo:
		return ns.getAttr(site, name)
	case *FunctionInfo:
		switch name {
		case "__name__", "__qualname__":
			return NewUnion(b.StrConst(ns.name))
		case "__defaults__":
			return NewUnion(b.Tuple.Instance)
		}
		return builtinMember(site, b.Function, ns, nil, name)
	case *BoundMethod:
		switch name {
		case "__self__":
			return NewUnion(ns.Self)
		case "__func__":
			return NewUnion(ns.Func)
		}
		return GetMember(site, ns.Func, name)
	case *ModuleInfo:
		return ns.getAttr(site, name)
	case *ListInfo:
		return builtinMember(site, ns.cls, ns, &ns.methods, name)
	case *TupleInfo:
		return builtinMember(site, b.Tuple, ns, &ns.methods, name)
	case *DictInfo:
		return builtinMember(site, ns.cls, ns, &ns.methods, name)
	case *SetInfo:
		return builtinMember(site, ns.cls, ns, &ns.methods, name)
	case *RangeInfo:
		return builtinMember(site, b.Range, ns, &ns.methods, name)
	case *GeneratorInfo:
		return builtinMember(site, b.Generator, ns, &ns.methods, name)
	case *IteratorInfo:
		return builtinMember(site, ns.cls, ns, &ns.methods, name)
	case *SuperInfo:
		return ns.getAttr(site, name)
	case *DescriptorInfo:
		return builtinMember(site, ns.class(), ns, &ns.methods, name)
	case *MultipleMemberInfo:
		return GetMemberUnion(site, ns.Members, name)
	default:
		unhandled("GetMember", ns)
		return TypeUnion{}
	}
}

// classMember reads an attribute of a user class: members along the MRO,
// then the attributes every class has, then members of the metaclass bound to
// the class
func classMember(site Site, cls *ClassInfo, name string) TypeUnion {
	var out TypeUnion
	for _, m := range GetMemberFromMro(site, cls, name).Types() {
		out, _ = out.Union(GetDescriptor(site, m, nil, cls))
	}
	if !out.IsEmpty() {
		return out
	}
	if special, ok := cls.specialMember(site, name); ok {
		return special
	}
	for _, meta := range cls.metaclasses(site) {
		switch meta := meta.(type) {
		case *ClassInfo:
			if meta == cls {
				continue
			}
			for _, m := range GetMemberFromMro(site, meta, name).Types() {
				out, _ = out.Union(GetDescriptor(site, m, cls, meta))
			}
		case *BuiltinClass:
			out, _ = out.Union(builtinMember(site, meta, cls, nil, name))
		}
	}
	if out.IsEmpty() {
		out = builtinMember(site, Builtins.Type, cls, nil, name)
	}
	return out
}

// GetMemberUnion evaluates `x.name` for every namespace x may be
func GetMemberUnion(site Site, u TypeUnion, name string) TypeUnion {
	var out TypeUnion
	for _, ns := range u.Types() {
		out, _ = out.Union(GetMember(site, ns, name))
	}
	return out
}

// GetDescriptor applies the descriptor protocol to a member found on a class:
// functions read through an instance become bound methods, properties call
// their getters, classmethods bind to the owner. Other members are returned
// unchanged.
func GetDescriptor(site Site, member, instance, owner Namespace) TypeUnion {
	switch m := member.(type) {
	case *FunctionInfo:
		if instance != nil {
			return NewUnion(NewBoundMethod(m, instance))
		}
	case *BuiltinFunction:
		if instance != nil && m.Owner != nil {
			return NewUnion(NewBuiltinMethod(m, instance))
		}
	case *DescriptorInfo:
		return m.get(site, instance, owner)
	}
	return NewUnion(member)
}

// SetMember evaluates the assignment `ns.name = value`
func SetMember(site Site, ns Namespace, name string, value TypeUnion) {
	switch ns := ns.(type) {
	case *InstanceInfo:
		ns.setAttr(site, name, value)
	case *ClassInfo:
		v := ns.Scope.Declare(name)
		if !site.ForEval() && !pythonast.IsNil(site.Node) {
			v.AddAssignment(site.Location())
		}
		v.AddTypesLimited(site.Unit, value, site.Limits().AssignedTypes)
	case *ModuleInfo:
		ns.setAttr(site, name, value)
	case *MultipleMemberInfo:
		SetMemberUnion(site, ns.Members, name, value)
	case *BuiltinClass, *BuiltinInstance, *BuiltinFunction, *BuiltinMethod, *BuiltinModule,
		*ConstantInfo, *FunctionInfo, *BoundMethod, *ListInfo, *TupleInfo, *DictInfo, *SetInfo,
		*RangeInfo, *GeneratorInfo, *IteratorInfo, *SuperInfo, *DescriptorInfo, nil:
		// attributes of these are not tracked
	default:
		unhandled("SetMember", ns)
	}
}

// SetMemberUnion evaluates `x.name = value` for every namespace x may be
func SetMemberUnion(site Site, u TypeUnion, name string, value TypeUnion) {
	for _, ns := range u.Types() {
		SetMember(site, ns, name, value)
	}
}

// DeleteMember evaluates `del ns.name`
func DeleteMember(site Site, ns Namespace, name string) {
	switch ns := ns.(type) {
	case *InstanceInfo:
		ns.delAttr(name)
	case *ClassInfo:
		ns.Scope.Delete(name)
	case *ModuleInfo:
		ns.Scope.Delete(name)
	case *MultipleMemberInfo:
		for _, m := range ns.Members.Types() {
			DeleteMember(site, m, name)
		}
	case *BuiltinClass, *BuiltinInstance, *BuiltinFunction, *BuiltinMethod, *BuiltinModule,
		*ConstantInfo, *FunctionInfo, *BoundMethod, *ListInfo, *TupleInfo, *DictInfo, *SetInfo,
		*RangeInfo, *GeneratorInfo, *IteratorInfo, *SuperInfo, *DescriptorInfo, nil:
	default:
		unhandled("DeleteMember", ns)
	}
}

// -- calls

// Invoke evaluates calling ns with args
func Invoke(site Site, ns Namespace, args Args) TypeUnion {
	call := NewCall(site, args)
	switch ns := ns.(type) {
	case *BuiltinClass:
		if ns.construct == nil {
			return NewUnion(ns.Instance)
		}
		call.callee = ns
		return ns.construct(call)
	case *BuiltinFunction:
		return ns.Invoke(call)
	case *BuiltinMethod:
		return ns.Invoke(call)
	case *ClassInfo:
		return ns.call(call)
	case *InstanceInfo:
		var out TypeUnion
		for _, m := range GetMemberFromMro(site, ns.Class, "__call__").Types() {
			if _, ok := m.(*BuiltinFunction); ok {
				continue
			}
			out, _ = out.Union(InvokeUnion(site, GetDescriptor(site, m, ns, ns.Class), args))
		}
		return out
	case *FunctionInfo:
		return ns.Invoke(call)
	case *BoundMethod:
		return ns.Invoke(call)
	case *MultipleMemberInfo:
		return InvokeUnion(site, ns.Members, args)
	case *BuiltinInstance, *BuiltinModule, *ConstantInfo, *ModuleInfo, *ListInfo, *TupleInfo,
		*DictInfo, *SetInfo, *RangeInfo, *GeneratorInfo, *IteratorInfo, *SuperInfo,
		*DescriptorInfo, nil:
		return TypeUnion{}
	default:
		unhandled("Invoke", ns)
		return TypeUnion{}
	}
}

// InvokeUnion evaluates calling every namespace in u
func InvokeUnion(site Site, u TypeUnion, args Args) TypeUnion {
	var out TypeUnion
	for _, ns := range u.Types() {
		out, _ = out.Union(Invoke(site, ns, args))
	}
	return out
}

// callMethod looks a special method up on the class of ns and calls it
func callMethod(site Site, ns Namespace, name string, args Args) (TypeUnion, bool) {
	inst, ok := ns.(*InstanceInfo)
	if !ok || name == "" {
		return TypeUnion{}, false
	}
	members := GetMemberFromMro(site, inst.Class, name)
	var out TypeUnion
	found := false
	for _, m := range members.Types() {
		if _, ok := m.(*BuiltinFunction); ok {
			continue
		}
		found = true
		out, _ = out.Union(InvokeUnion(site, GetDescriptor(site, m, inst, inst.Class), args))
	}
	return out, found
}

// -- subscripts

// GetIndex evaluates `ns[index]`
func GetIndex(site Site, ns Namespace, index TypeUnion) TypeUnion {
	b := Builtins
	slice := isSliceIndex(index)
	switch ns := ns.(type) {
	case *ListInfo:
		if slice {
			return NewUnion(ns)
		}
		return ns.ElementTypes(site)
	case *TupleInfo:
		if slice {
			t := site.memoSub(memoTuple, rehash(ns.id(), saltTuple), func() Namespace {
				return newTuple(site, 0, true)
			}).(*TupleInfo)
			t.AddStar(site, ns.AllTypes(site))
			return NewUnion(t)
		}
		ints := Ints(index)
		if len(ints) == 0 || len(ints) != index.Len() {
			return ns.AllTypes(site)
		}
		var out TypeUnion
		for _, i := range ints {
			out, _ = out.Union(ns.Index(site, int(i)))
		}
		return out
	case *DictInfo:
		return ns.ValueTypes(site)
	case *RangeInfo:
		if slice {
			return NewUnion(ns)
		}
		return NewUnion(b.Int.Instance)
	case *ConstantInfo:
		return indexBuiltin(ns.Class, slice)
	case *BuiltinInstance:
		return indexBuiltin(ns.Class, slice)
	case *InstanceInfo:
		res, _ := callMethod(site, ns, "__getitem__", PositionalArgs(index))
		return res
	case *ClassInfo:
		hook := classMember(site, ns, "__class_getitem__")
		if hook.IsEmpty() {
			return NewUnion(ns)
		}
		return InvokeUnion(site, hook, PositionalArgs(index))
	case *BuiltinClass:
		// generic aliases such as list[int] evaluate to the class
		return NewUnion(ns)
	case *MultipleMemberInfo:
		return GetIndexUnion(site, ns.Members, index)
	case *BuiltinFunction, *BuiltinMethod, *BuiltinModule, *FunctionInfo, *BoundMethod,
		*ModuleInfo, *SetInfo, *GeneratorInfo, *IteratorInfo, *SuperInfo, *DescriptorInfo, nil:
		return TypeUnion{}
	default:
		unhandled("GetIndex", ns)
		return TypeUnion{}
	}
}

// indexBuiltin answers subscripts of untracked builtin instances
func indexBuiltin(cls *BuiltinClass, slice bool) TypeUnion {
	b := Builtins
	switch cls.Code {
	case StrType, UnicodeType:
		return NewUnion(cls.Instance)
	case BytesType:
		if slice {
			return NewUnion(cls.Instance)
		}
		return NewUnion(b.Int.Instance)
	case ListType, TupleType:
		if slice {
			return NewUnion(cls.Instance)
		}
	}
	return TypeUnion{}
}

func isSliceIndex(index TypeUnion) bool {
	for _, ns := range index.Types() {
		if codeOf(ns) == SliceType {
			return true
		}
	}
	return false
}

// GetIndexUnion evaluates `x[index]` for every namespace x may be
func GetIndexUnion(site Site, u TypeUnion, index TypeUnion) TypeUnion {
	var out TypeUnion
	for _, ns := range u.Types() {
		out, _ = out.Union(GetIndex(site, ns, index))
	}
	return out
}

// SetIndex evaluates `ns[index] = value`
func SetIndex(site Site, ns Namespace, index, value TypeUnion) {
	switch ns := ns.(type) {
	case *ListInfo:
		if isSliceIndex(index) {
			ns.AddElements(site, GetEnumeratedTypesUnion(site, value))
			return
		}
		ns.AddElements(site, value)
	case *DictInfo:
		ns.SetItem(site, index, value)
	case *InstanceInfo:
		callMethod(site, ns, "__setitem__", PositionalArgs(index, value))
	case *MultipleMemberInfo:
		SetIndexUnion(site, ns.Members, index, value)
	case *BuiltinClass, *BuiltinInstance, *BuiltinFunction, *BuiltinMethod, *BuiltinModule,
		*ConstantInfo, *ClassInfo, *FunctionInfo, *BoundMethod, *ModuleInfo, *TupleInfo, *SetInfo,
		*RangeInfo, *GeneratorInfo, *IteratorInfo, *SuperInfo, *DescriptorInfo, nil:
	default:
		unhandled("SetIndex", ns)
	}
}

// SetIndexUnion evaluates `x[index] = value` for every namespace x may be
func SetIndexUnion(site Site, u TypeUnion, index, value TypeUnion) {
	for _, ns := range u.Types() {
		SetIndex(site, ns, index, value)
	}
}

// -- operators

// BinaryOpUnion evaluates a binary operator, comparison or boolean operator
func BinaryOpUnion(site Site, left TypeUnion, op pythonast.Op, right TypeUnion) TypeUnion {
	if op.IsBoolean() {
		out, _ := left.Union(right)
		return out
	}
	b := Builtins
	switch op {
	case pythonast.Is, pythonast.IsNot, pythonast.In, pythonast.NotIn:
		return NewUnion(b.Bool.Instance)
	}
	var out TypeUnion
	for _, l := range left.Types() {
		for _, r := range right.Types() {
			out, _ = out.Union(BinaryOp(site, l, op, r))
		}
	}
	if out.IsEmpty() && op.IsComparison() {
		return NewUnion(b.Bool.Instance)
	}
	return out
}

// BinaryOp evaluates `l op r` for one pair of operands. User classes are
// consulted through their special methods first, the left operand before
// the reflected method of the right one.
func BinaryOp(site Site, l Namespace, op pythonast.Op, r Namespace) TypeUnion {
	if d := op.Dunder(); d != "" {
		if res, ok := callMethod(site, l, d, PositionalArgs(NewUnion(r))); ok {
			return res
		}
	}
	if d := op.ReflectedDunder(); d != "" {
		if res, ok := callMethod(site, r, d, PositionalArgs(NewUnion(l))); ok {
			return res
		}
	}

	b := Builtins
	if op.IsComparison() {
		return NewUnion(b.Bool.Instance)
	}
	if res, ok := numericResult(l, op, r); ok {
		return res
	}
	return sequenceOp(site, l, op, r)
}

// sequenceOp evaluates operators on builtin sequences, strings and sets
func sequenceOp(site Site, l Namespace, op pythonast.Op, r Namespace) TypeUnion {
	b := Builtins
	lc, rc := codeOf(l), codeOf(r)
	isInt := func(c TypeCode) bool { return c == IntType || c == LongType || c == BoolType }

	switch op {
	case pythonast.Add:
		switch l := l.(type) {
		case *ListInfo:
			rl, ok := r.(*ListInfo)
			if !ok {
				break
			}
			out := site.memoSub(memoConcat, rehash(l.id(), rl.id()), func() Namespace {
				return newList(site)
			}).(*ListInfo)
			out.AddElements(site, l.ElementTypes(site))
			out.AddElements(site, rl.ElementTypes(site))
			return NewUnion(out)
		case *TupleInfo:
			rt, ok := r.(*TupleInfo)
			if !ok {
				break
			}
			return NewUnion(concatTuples(site, l, rt))
		}
		if lc == rc && (lc == StrType || lc == BytesType || lc == UnicodeType) {
			return NewUnion(b.ClassByCode(lc).Instance)
		}
		if (lc == StrType && rc == UnicodeType) || (lc == UnicodeType && rc == StrType) {
			return NewUnion(b.Unicode.Instance)
		}
		if lc == rc && (lc == ListType || lc == TupleType) {
			return NewUnion(b.ClassByCode(lc).Instance)
		}
	case pythonast.Mul:
		seq, n := l, rc
		if isInt(lc) {
			seq, n = r, lc
		}
		if !isInt(n) {
			break
		}
		switch s := seq.(type) {
		case *ListInfo:
			return NewUnion(s)
		case *TupleInfo:
			t := site.memoSub(memoConcat, rehash(s.id(), saltTuple), func() Namespace {
				return newTuple(site, 0, true)
			}).(*TupleInfo)
			t.AddStar(site, s.AllTypes(site))
			return NewUnion(t)
		}
		switch c := codeOf(seq); c {
		case StrType, BytesType, UnicodeType, ListType, TupleType:
			return NewUnion(b.ClassByCode(c).Instance)
		}
	case pythonast.Mod:
		switch lc {
		case StrType, BytesType, UnicodeType:
			return NewUnion(b.ClassByCode(lc).Instance)
		}
	case pythonast.BitOr, pythonast.BitAnd, pythonast.BitXor, pythonast.Sub:
		switch l := l.(type) {
		case *SetInfo:
			if op == pythonast.Sub || op == pythonast.BitAnd {
				return NewUnion(l)
			}
			out := site.memoSub(memoConcat, rehash(l.id(), r.id()), func() Namespace {
				return newSet(site, l.cls)
			}).(*SetInfo)
			out.AddElements(site, l.ElementTypes(site))
			out.AddElements(site, GetEnumeratedTypes(site, r))
			return NewUnion(out)
		case *DictInfo:
			rd, ok := r.(*DictInfo)
			if !ok || op != pythonast.BitOr {
				break
			}
			out := site.memoSub(memoConcat, rehash(l.id(), rd.id()), func() Namespace {
				return newDict(site)
			}).(*DictInfo)
			out.SetItem(site, l.KeyTypes(site), l.ValueTypes(site))
			out.SetItem(site, rd.KeyTypes(site), rd.ValueTypes(site))
			return NewUnion(out)
		}
	}
	return TypeUnion{}
}

// concatTuples evaluates `l + r` for two tuples, keeping positions when both
// have a known length
func concatTuples(site Site, l, r *TupleInfo) *TupleInfo {
	star := l.Star != nil || r.Star != nil
	n := l.Len() + r.Len()
	if star {
		n = l.Len()
	}
	t := site.memoSub(memoConcat, rehash(l.id(), r.id()), func() Namespace {
		return newTuple(site, n, star)
	}).(*TupleInfo)
	for i := 0; i < l.Len(); i++ {
		t.SetElement(site, i, l.Index(site, i))
	}
	if l.Star != nil {
		t.AddStar(site, l.Star.TypesFor(site.Unit))
	}
	if !star {
		for i := 0; i < r.Len(); i++ {
			t.SetElement(site, l.Len()+i, r.Index(site, i))
		}
		return t
	}
	t.AddStar(site, r.AllTypes(site))
	return t
}

// UnaryOpUnion evaluates a unary operator
func UnaryOpUnion(site Site, op pythonast.Op, u TypeUnion) TypeUnion {
	if op == pythonast.Not {
		return NewUnion(Builtins.Bool.Instance)
	}
	var out TypeUnion
	for _, ns := range u.Types() {
		out, _ = out.Union(UnaryOp(site, op, ns))
	}
	return out
}

// UnaryOp evaluates a unary operator on one operand
func UnaryOp(site Site, op pythonast.Op, ns Namespace) TypeUnion {
	if op == pythonast.Not {
		return NewUnion(Builtins.Bool.Instance)
	}
	var dunder string
	switch op {
	case pythonast.Sub:
		dunder = "__neg__"
	case pythonast.Add:
		dunder = "__pos__"
	case pythonast.Invert:
		dunder = "__invert__"
	}
	if res, ok := callMethod(site, ns, dunder, Args{}); ok {
		return res
	}
	res, _ := numericUnary(op, ns)
	return res
}

// -- iteration

// GetIterator evaluates iter(ns)
func GetIterator(site Site, ns Namespace) TypeUnion {
	b := Builtins
	switch ns := ns.(type) {
	case *ListInfo:
		return NewUnion(ns.Iterator(site))
	case *TupleInfo:
		return NewUnion(site.memoSub(memoIterator, ns.id(), func() Namespace {
			return newSourceIterator(b.TupleIterator, ns)
		}))
	case *DictInfo:
		return NewUnion(ns.KeysView(site))
	case *SetInfo:
		return NewUnion(ns.Iterator(site))
	case *RangeInfo:
		return NewUnion(ns.Iterator(site))
	case *GeneratorInfo:
		return NewUnion(ns)
	case *IteratorInfo:
		return NewUnion(ns)
	case *ConstantInfo, *BuiltinInstance:
		switch codeOf(ns) {
		case StrType, UnicodeType, BytesType:
			return NewUnion(site.memoSub(memoIterator, TypeOf(ns).id(), func() Namespace {
				return newSourceIterator(b.StrIterator, ns)
			}))
		}
		return TypeUnion{}
	case *InstanceInfo:
		res, _ := callMethod(site, ns, "__iter__", Args{})
		return res
	case *MultipleMemberInfo:
		return GetIteratorUnion(site, ns.Members)
	case *BuiltinClass, *BuiltinFunction, *BuiltinMethod, *BuiltinModule, *ClassInfo,
		*FunctionInfo, *BoundMethod, *ModuleInfo, *SuperInfo, *DescriptorInfo, nil:
		return TypeUnion{}
	default:
		unhandled("GetIterator", ns)
		return TypeUnion{}
	}
}

// GetIteratorUnion evaluates iter(x) for every namespace x may be
func GetIteratorUnion(site Site, u TypeUnion) TypeUnion {
	var out TypeUnion
	for _, ns := range u.Types() {
		out, _ = out.Union(GetIterator(site, ns))
	}
	return out
}

// GetEnumeratedTypes returns what iterating over ns produces
func GetEnumeratedTypes(site Site, ns Namespace) TypeUnion {
	var v Visited
	return enumerated(site, ns, &v)
}

func enumerated(site Site, ns Namespace, v *Visited) TypeUnion {
	b := Builtins
	switch ns := ns.(type) {
	case *ListInfo:
		return ns.ElementTypes(site)
	case *TupleInfo:
		return ns.AllTypes(site)
	case *DictInfo:
		return ns.KeyTypes(site)
	case *SetInfo:
		return ns.ElementTypes(site)
	case *RangeInfo:
		return NewUnion(b.Int.Instance)
	case *GeneratorInfo:
		return ns.Yields.TypesFor(site.Unit)
	case *IteratorInfo:
		if ns.Elements != nil {
			return ns.Elements.TypesFor(site.Unit)
		}
		if ns.Source == nil || !v.Push(ns) {
			return TypeUnion{}
		}
		defer v.Pop(ns)
		return enumerated(site, ns.Source, v)
	case *ConstantInfo, *BuiltinInstance:
		switch c := codeOf(ns); c {
		case StrType, UnicodeType:
			return NewUnion(b.ClassByCode(c).Instance)
		case BytesType:
			return NewUnion(b.Int.Instance)
		}
		return TypeUnion{}
	case *InstanceInfo:
		if !v.Push(ns) {
			return TypeUnion{}
		}
		defer v.Pop(ns)
		iters, ok := callMethod(site, ns, "__iter__", Args{})
		if !ok {
			res, _ := callMethod(site, ns, "__getitem__", PositionalArgs(NewUnion(b.Int.Instance)))
			return res
		}
		var out TypeUnion
		for _, it := range iters.Types() {
			if inst, ok := it.(*InstanceInfo); ok {
				next, found := callMethod(site, inst, "__next__", Args{})
				if !found {
					next, _ = callMethod(site, inst, "next", Args{})
				}
				out, _ = out.Union(next)
				continue
			}
			out, _ = out.Union(enumerated(site, it, v))
		}
		return out
	case *MultipleMemberInfo:
		var out TypeUnion
		for _, m := range ns.Members.Types() {
			out, _ = out.Union(enumerated(site, m, v))
		}
		return out
	case *BuiltinClass, *BuiltinFunction, *BuiltinMethod, *BuiltinModule, *ClassInfo,
		*FunctionInfo, *BoundMethod, *ModuleInfo, *SuperInfo, *DescriptorInfo, nil:
		return TypeUnion{}
	default:
		unhandled("GetEnumeratedTypes", ns)
		return TypeUnion{}
	}
}

// GetEnumeratedTypesUnion returns what iterating over any namespace in u
// produces
func GetEnumeratedTypesUnion(site Site, u TypeUnion) TypeUnion {
	var out TypeUnion
	for _, ns := range u.Types() {
		out, _ = out.Union(GetEnumeratedTypes(site, ns))
	}
	return out
}

// -- type tests

// IsInstance returns true if ns is known to be an instance of cls
func IsInstance(ns, cls Namespace) bool {
	if !isInstanceLike(ns) {
		return false
	}
	return IsSubclass(TypeOf(ns), cls)
}

// IsSubclass returns true if cls appears in the linearization of sub
func IsSubclass(sub, cls Namespace) bool {
	if sub == nil || cls == nil {
		return false
	}
	if isObjectClass(cls) {
		return isClassLike(sub)
	}
	for _, c := range linearize(sub) {
		if c == cls {
			return true
		}
	}
	return false
}
