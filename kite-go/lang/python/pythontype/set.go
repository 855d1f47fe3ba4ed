package pythontype

// SetInfo is a set or frozenset created at one site
type SetInfo struct {
	record
	cls      *BuiltinClass
	Elements *VariableDef

	methods methodCache
	iter    *IteratorInfo
}

func newSet(site Site, cls *BuiltinClass) *SetInfo {
	return &SetInfo{record: newRecord(), cls: cls, Elements: site.newDef("{}")}
}

// NewSetAt returns the set created by the display or comprehension at site
func NewSetAt(site Site) *SetInfo {
	return site.memo(memoSet, func() Namespace { return newSet(site, Builtins.Set) }).(*SetInfo)
}

// Kind implements Namespace
func (s *SetInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (s *SetInfo) Name() string { return s.cls.name }

// AddElements adds element types
func (s *SetInfo) AddElements(site Site, types TypeUnion) bool {
	return s.Elements.AddTypesLimited(site.Unit, types, site.Limits().IndexTypes)
}

// ElementTypes reads the element union
func (s *SetInfo) ElementTypes(site Site) TypeUnion {
	return s.Elements.TypesFor(site.Unit)
}

// Iterator returns the iterator over the set
func (s *SetInfo) Iterator(site Site) *IteratorInfo {
	if s.iter != nil {
		return s.iter
	}
	it := newIterator(Builtins.SetIterator, s.Elements)
	if !site.ForEval() {
		s.iter = it
	}
	return it
}

func selfSet(c *Call) *SetInfo {
	s, _ := c.Self.(*SetInfo)
	return s
}

func (b *BuiltinTable) setMembers() {
	// derived returns a set of the receiver's class holding the receiver's
	// elements plus the elements of the arguments
	derived := func(withArgs bool) callFunc {
		return func(c *Call) TypeUnion {
			s := selfSet(c)
			if s == nil {
				return TypeUnion{}
			}
			out := c.newSet(s.cls)
			out.AddElements(c.Site, s.ElementTypes(c.Site))
			if withArgs {
				for _, arg := range c.Args.Positional {
					out.AddElements(c.Site, GetEnumeratedTypesUnion(c.Site, arg))
				}
			}
			return NewUnion(out)
		}
	}

	for _, cls := range []*BuiltinClass{b.Set, b.FrozenSet} {
		cls := cls
		cls.def("union", "*others", derived(true))
		cls.def("symmetric_difference", "other", derived(true))
		cls.def("intersection", "*others", derived(false))
		cls.def("difference", "*others", derived(false))
		cls.def("copy", "", derived(false))
		cls.def("issubset", "other", b.returns(BoolType))
		cls.def("issuperset", "other", b.returns(BoolType))
		cls.def("isdisjoint", "other", b.returns(BoolType))
		cls.def("__len__", "", b.returns(IntType))
		cls.def("__contains__", "value", b.returns(BoolType))

		cls.construct = func(c *Call) TypeUnion {
			s := c.newSet(cls)
			s.AddElements(c.Site, GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0)))
			return NewUnion(s)
		}
		cls.params = []string{"iterable=()"}
	}

	cls := b.Set
	cls.def("add", "element", func(c *Call) TypeUnion {
		if s := selfSet(c); s != nil {
			s.AddElements(c.Site, c.Args.Arg(0))
		}
		return NewUnion(b.None)
	})
	cls.def("update", "*others", func(c *Call) TypeUnion {
		if s := selfSet(c); s != nil {
			for _, arg := range c.Args.Positional {
				s.AddElements(c.Site, GetEnumeratedTypesUnion(c.Site, arg))
			}
		}
		return NewUnion(b.None)
	})
	cls.def("pop", "", func(c *Call) TypeUnion {
		if s := selfSet(c); s != nil {
			return s.ElementTypes(c.Site)
		}
		return TypeUnion{}
	})
	cls.def("remove", "element", b.returnsNone)
	cls.def("discard", "element", b.returnsNone)
	cls.def("clear", "", b.returnsNone)
	cls.def("intersection_update", "*others", b.returnsNone)
	cls.def("difference_update", "*others", b.returnsNone)
}

// newSet returns the set created by the builtin being called
func (c *Call) newSet(cls *BuiltinClass) *SetInfo {
	sub := rehash(cls.id())
	if c.callee != nil {
		sub = rehash(c.callee.id(), cls.id())
	}
	return c.Site.memoSub(memoSet, sub, func() Namespace { return newSet(c.Site, cls) }).(*SetInfo)
}
