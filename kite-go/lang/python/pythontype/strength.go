package pythontype

// unionEquals decides whether two namespaces collapse into one member of a
// union at the given strength.
func unionEquals(a, b Namespace, strength int) bool {
	if a == b {
		return true
	}
	if strength >= MergeToObject && sameCategory(a, b) {
		return true
	}
	if strength >= MergeBaseClass && commonBase(a, b) != nil {
		return true
	}
	if strength >= MergeSameClass && sameClass(a, b) {
		return true
	}
	return identical(a, b)
}

// unionMerge returns the representative of two namespaces that are equal at
// the given strength. The first argument is preferred.
func unionMerge(a, b Namespace, strength int) Namespace {
	if a == b || identical(a, b) {
		return a
	}
	if strength >= MergeSameClass && sameClass(a, b) {
		return mergeSameClass(a, b)
	}
	if strength >= MergeBaseClass {
		if c := commonBase(a, b); c != nil {
			if isClassLike(a) {
				return c
			}
			return instanceOf(c)
		}
	}
	if strength >= MergeToObject && sameCategory(a, b) {
		switch {
		case isClassLike(a):
			return Builtins.Type
		case isFunctionLike(a):
			return Builtins.Function.Instance
		default:
			return Builtins.Object.Instance
		}
	}
	return a
}

// identical implements MergeIdentity
func identical(a, b Namespace) bool {
	switch a := a.(type) {
	case *ConstantInfo:
		if b, ok := b.(*ConstantInfo); ok {
			return a.Class == b.Class && a.Value == b.Value
		}
	case *BoundMethod:
		if b, ok := b.(*BoundMethod); ok {
			return a.Func == b.Func && a.Self == b.Self
		}
	case *BuiltinMethod:
		if b, ok := b.(*BuiltinMethod); ok {
			return a.Func == b.Func && a.Self == b.Self
		}
	}
	return false
}

// sameClass implements MergeSameClass
func sameClass(a, b Namespace) bool {
	switch a := a.(type) {
	case *ConstantInfo:
		switch b := b.(type) {
		case *ConstantInfo:
			return a.Class == b.Class
		case *BuiltinInstance:
			return a.Class == b.Class
		}
	case *BuiltinInstance:
		switch b := b.(type) {
		case *ConstantInfo:
			return a.Class == b.Class
		case *BuiltinInstance:
			return a.Class == b.Class
		}
	case *ListInfo:
		b, ok := b.(*ListInfo)
		return ok && a.cls == b.cls
	case *DictInfo:
		b, ok := b.(*DictInfo)
		return ok && a.cls == b.cls
	case *SetInfo:
		b, ok := b.(*SetInfo)
		return ok && a.cls == b.cls
	case *GeneratorInfo:
		_, ok := b.(*GeneratorInfo)
		return ok
	case *IteratorInfo:
		b, ok := b.(*IteratorInfo)
		return ok && a.cls == b.cls
	case *TupleInfo:
		b, ok := b.(*TupleInfo)
		return ok && len(a.Elements) == len(b.Elements) && (a.Star == nil) == (b.Star == nil)
	case *BoundMethod:
		b, ok := b.(*BoundMethod)
		return ok && a.Func == b.Func
	case *BuiltinMethod:
		b, ok := b.(*BuiltinMethod)
		return ok && a.Func == b.Func
	}
	return false
}

// mergeSameClass folds b into a. Collections keep a and absorb the element
// types of b.
func mergeSameClass(a, b Namespace) Namespace {
	switch a := a.(type) {
	case *ConstantInfo:
		return a.Class.Instance
	case *BuiltinInstance:
		return a
	case *ListInfo:
		a.Elements.absorb(b.(*ListInfo).Elements)
	case *SetInfo:
		a.Elements.absorb(b.(*SetInfo).Elements)
	case *DictInfo:
		bd := b.(*DictInfo)
		a.Keys.absorb(bd.Keys)
		a.Values.absorb(bd.Values)
	case *GeneratorInfo:
		bg := b.(*GeneratorInfo)
		a.Yields.absorb(bg.Yields)
		a.Sends.absorb(bg.Sends)
		a.Returns.absorb(bg.Returns)
	case *IteratorInfo:
		a.Elements.absorb(b.(*IteratorInfo).Elements)
	case *TupleInfo:
		bt := b.(*TupleInfo)
		for i, e := range a.Elements {
			e.absorb(bt.Elements[i])
		}
		if a.Star != nil {
			a.Star.absorb(bt.Star)
		}
	}
	return a
}

func sameCategory(a, b Namespace) bool {
	switch {
	case isClassLike(a):
		return isClassLike(b)
	case isFunctionLike(a):
		return isFunctionLike(b)
	case isInstanceLike(a):
		return isInstanceLike(b)
	}
	return false
}

func isClassLike(ns Namespace) bool {
	switch ns.(type) {
	case *ClassInfo, *BuiltinClass:
		return true
	}
	return false
}

func isFunctionLike(ns Namespace) bool {
	switch ns.(type) {
	case *FunctionInfo, *BoundMethod, *BuiltinFunction, *BuiltinMethod:
		return true
	}
	return false
}

func isInstanceLike(ns Namespace) bool {
	switch ns.(type) {
	case *BuiltinInstance, *ConstantInfo, *InstanceInfo, *ListInfo, *TupleInfo, *DictInfo,
		*SetInfo, *RangeInfo, *GeneratorInfo, *IteratorInfo, *SuperInfo, *DescriptorInfo:
		return true
	}
	return false
}

// commonBase returns the first class other than object shared by the
// linearizations of a and b, which must both be classes or both be
// instances. It returns nil otherwise.
func commonBase(a, b Namespace) Namespace {
	var ca, cb Namespace
	switch {
	case isClassLike(a) && isClassLike(b):
		ca, cb = a, b
	case isInstanceLike(a) && isInstanceLike(b):
		ca, cb = TypeOf(a), TypeOf(b)
	default:
		return nil
	}
	if ca == nil || cb == nil {
		return nil
	}
	lb := linearize(cb)
	for _, c := range linearize(ca) {
		if isObjectClass(c) {
			continue
		}
		for _, d := range lb {
			if c == d {
				return c
			}
		}
	}
	return nil
}

func isObjectClass(ns Namespace) bool {
	bc, ok := ns.(*BuiltinClass)
	return ok && bc.Code == ObjectType
}

// linearize flattens the MRO of a class into a list of classes
func linearize(cls Namespace) []Namespace {
	switch cls := cls.(type) {
	case *BuiltinClass:
		out := make([]Namespace, 0, len(cls.mro))
		for _, c := range cls.mro {
			out = append(out, c)
		}
		return out
	case *ClassInfo:
		var out []Namespace
		for _, entry := range cls.Mro.Entries() {
			for _, c := range entry.Types() {
				if isClassLike(c) {
					out = append(out, c)
				}
			}
		}
		return out
	}
	return nil
}

// instanceOf returns the instance namespace of a class
func instanceOf(cls Namespace) Namespace {
	switch cls := cls.(type) {
	case *BuiltinClass:
		return cls.Instance
	case *ClassInfo:
		return cls.Instance
	}
	return nil
}
