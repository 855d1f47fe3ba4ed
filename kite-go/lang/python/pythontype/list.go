package pythontype

// ListInfo is a list created at one site. Every element shares one union.
type ListInfo struct {
	record
	cls      *BuiltinClass
	Elements *VariableDef

	methods methodCache
	iter    *IteratorInfo
}

func newList(site Site) *ListInfo {
	return &ListInfo{record: newRecord(), cls: Builtins.List, Elements: site.newDef("[]")}
}

// NewListAt returns the list created by the display or comprehension at site
func NewListAt(site Site) *ListInfo {
	return site.memo(memoList, func() Namespace { return newList(site) }).(*ListInfo)
}

// Kind implements Namespace
func (l *ListInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (l *ListInfo) Name() string { return l.cls.name }

// AddElements adds element types, strengthening the union past the index
// limit
func (l *ListInfo) AddElements(site Site, types TypeUnion) bool {
	return l.Elements.AddTypesLimited(site.Unit, types, site.Limits().IndexTypes)
}

// ElementTypes reads the element union
func (l *ListInfo) ElementTypes(site Site) TypeUnion {
	return l.Elements.TypesFor(site.Unit)
}

// Iterator returns the iterator over the list
func (l *ListInfo) Iterator(site Site) *IteratorInfo {
	if l.iter != nil {
		return l.iter
	}
	it := newIterator(Builtins.ListIterator, l.Elements)
	if !site.ForEval() {
		l.iter = it
	}
	return it
}

func selfList(c *Call) *ListInfo {
	l, _ := c.Self.(*ListInfo)
	return l
}

func (b *BuiltinTable) listMembers() {
	cls := b.List
	cls.def("append", "object", func(c *Call) TypeUnion {
		if l := selfList(c); l != nil {
			l.AddElements(c.Site, c.Args.Arg(0))
		}
		return NewUnion(b.None)
	})
	cls.def("extend", "iterable", func(c *Call) TypeUnion {
		if l := selfList(c); l != nil {
			l.AddElements(c.Site, GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0)))
		}
		return NewUnion(b.None)
	})
	cls.def("insert", "index, object", func(c *Call) TypeUnion {
		if l := selfList(c); l != nil {
			l.AddElements(c.Site, c.Args.Arg(1))
		}
		return NewUnion(b.None)
	})
	cls.def("pop", "index=-1", func(c *Call) TypeUnion {
		if l := selfList(c); l != nil {
			return l.ElementTypes(c.Site)
		}
		return TypeUnion{}
	})
	cls.def("copy", "", func(c *Call) TypeUnion {
		l := selfList(c)
		if l == nil {
			return NewUnion(b.List.Instance)
		}
		cp := c.newList()
		cp.AddElements(c.Site, l.ElementTypes(c.Site))
		return NewUnion(cp)
	})
	cls.def("remove", "value", b.returnsNone)
	cls.def("clear", "", b.returnsNone)
	cls.def("reverse", "", b.returnsNone)
	cls.def("sort", "key=None, reverse=False", b.returnsNone)
	cls.def("index", "value, start=0, stop=None", b.returns(IntType))
	cls.def("count", "value", b.returns(IntType))
	cls.def("__len__", "", b.returns(IntType))
	cls.def("__contains__", "value", b.returns(BoolType))

	cls.construct = func(c *Call) TypeUnion {
		l := c.newList()
		l.AddElements(c.Site, GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0)))
		return NewUnion(l)
	}
	cls.params = []string{"iterable=()"}
}

// newList returns the list created by the builtin being called
func (c *Call) newList() *ListInfo {
	return c.memo(memoList, func() Namespace { return newList(c.Site) }).(*ListInfo)
}
