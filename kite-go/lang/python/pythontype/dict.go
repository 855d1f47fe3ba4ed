package pythontype

// DictInfo is a dict created at one site. All keys share one union and all
// values share another.
type DictInfo struct {
	record
	cls    *BuiltinClass
	Keys   *VariableDef
	Values *VariableDef

	methods methodCache

	// views and derived namespaces, created on first use
	item      *TupleInfo
	items     *ListInfo
	keys      *IteratorInfo
	values    *IteratorInfo
	iterItems *IteratorInfo
}

func newDict(site Site) *DictInfo {
	return &DictInfo{
		record: newRecord(),
		cls:    Builtins.Dict,
		Keys:   site.newDef("keys"),
		Values: site.newDef("values"),
	}
}

// NewDictAt returns the dict created by the display or comprehension at site
func NewDictAt(site Site) *DictInfo {
	return site.memo(memoDict, func() Namespace { return newDict(site) }).(*DictInfo)
}

// Kind implements Namespace
func (d *DictInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (d *DictInfo) Name() string { return d.cls.name }

// SetItem records an entry
func (d *DictInfo) SetItem(site Site, keys, values TypeUnion) bool {
	limits := site.Limits()
	changed := d.Keys.AddTypesLimited(site.Unit, keys, limits.DictKeyTypes)
	if d.Values.AddTypesLimited(site.Unit, values, limits.DictValueTypes) {
		changed = true
	}
	return changed
}

// KeyTypes reads the key union
func (d *DictInfo) KeyTypes(site Site) TypeUnion {
	return d.Keys.TypesFor(site.Unit)
}

// ValueTypes reads the value union
func (d *DictInfo) ValueTypes(site Site) TypeUnion {
	return d.Values.TypesFor(site.Unit)
}

// Item returns the (key, value) tuple produced by items() and popitem()
func (d *DictInfo) Item(site Site) *TupleInfo {
	if d.item != nil {
		return d.item
	}
	t := newTupleOf(d.Keys, d.Values)
	if !site.ForEval() {
		d.item = t
	}
	return t
}

// Items returns the list of (key, value) tuples
func (d *DictInfo) Items(site Site) *ListInfo {
	if d.items != nil {
		return d.items
	}
	l := &ListInfo{
		record:   newRecord(),
		cls:      Builtins.List,
		Elements: newFixedDef("items", NewUnion(d.Item(site))),
	}
	if !site.ForEval() {
		d.items = l
	}
	return l
}

// KeysView returns the iterable over the keys
func (d *DictInfo) KeysView(site Site) *IteratorInfo {
	if d.keys != nil {
		return d.keys
	}
	it := newIterator(Builtins.DictKeys, d.Keys)
	if !site.ForEval() {
		d.keys = it
	}
	return it
}

// ValuesView returns the iterable over the values
func (d *DictInfo) ValuesView(site Site) *IteratorInfo {
	if d.values != nil {
		return d.values
	}
	it := newIterator(Builtins.DictValues, d.Values)
	if !site.ForEval() {
		d.values = it
	}
	return it
}

// ItemsIterator returns the iterator over (key, value) tuples
func (d *DictInfo) ItemsIterator(site Site) *IteratorInfo {
	if d.iterItems != nil {
		return d.iterItems
	}
	it := newIterator(Builtins.DictItems, newFixedDef("items", NewUnion(d.Item(site))))
	if !site.ForEval() {
		d.iterItems = it
	}
	return it
}

// Update merges the entries of a mapping, or of an iterable of pairs, into
// the dict
func (d *DictInfo) Update(site Site, other TypeUnion) {
	for _, ns := range other.Types() {
		if od, ok := ns.(*DictInfo); ok {
			if od != d {
				d.SetItem(site, od.KeyTypes(site), od.ValueTypes(site))
			}
			continue
		}
		for _, pair := range GetEnumeratedTypes(site, ns).Types() {
			if t, ok := pair.(*TupleInfo); ok && t.Len() >= 2 {
				d.SetItem(site, t.Index(site, 0), t.Index(site, 1))
			}
		}
	}
}

// UpdateKeywords records keyword arguments as str keys
func (d *DictInfo) UpdateKeywords(site Site, kws []Keyword) {
	for _, kw := range kws {
		d.SetItem(site, NewUnion(Builtins.StrConst(kw.Name)), kw.Types)
	}
}

func selfDict(c *Call) *DictInfo {
	d, _ := c.Self.(*DictInfo)
	return d
}

func (b *BuiltinTable) dictMembers() {
	cls := b.Dict
	withDict := func(f func(c *Call, d *DictInfo) TypeUnion) callFunc {
		return func(c *Call) TypeUnion {
			if d := selfDict(c); d != nil {
				return f(c, d)
			}
			return TypeUnion{}
		}
	}

	cls.def("get", "key, default=None", withDict(func(c *Call, d *DictInfo) TypeUnion {
		out := d.ValueTypes(c.Site)
		if c.Args.Len() > 1 {
			out, _ = out.Union(c.Args.Arg(1))
		} else {
			out, _ = out.Add(b.None)
		}
		return out
	}))
	cls.def("items", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		return NewUnion(d.Items(c.Site))
	}))
	cls.def("keys", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		return NewUnion(d.KeysView(c.Site))
	}))
	cls.def("values", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		return NewUnion(d.ValuesView(c.Site))
	}))
	cls.def("iteritems", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		return NewUnion(d.ItemsIterator(c.Site))
	}))
	cls.def("iterkeys", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		return NewUnion(d.KeysView(c.Site))
	}))
	cls.def("itervalues", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		return NewUnion(d.ValuesView(c.Site))
	}))
	cls.def("pop", "key, default", withDict(func(c *Call, d *DictInfo) TypeUnion {
		out := d.ValueTypes(c.Site)
		if c.Args.Len() > 1 {
			out, _ = out.Union(c.Args.Arg(1))
		}
		return out
	}))
	cls.def("popitem", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		return NewUnion(d.Item(c.Site))
	}))
	cls.def("setdefault", "key, default=None", withDict(func(c *Call, d *DictInfo) TypeUnion {
		value := c.Args.Arg(1)
		if c.Args.Len() < 2 {
			value = NewUnion(b.None)
		}
		d.SetItem(c.Site, c.Args.Arg(0), value)
		return d.ValueTypes(c.Site)
	}))
	cls.def("update", "other=(), **kwargs", withDict(func(c *Call, d *DictInfo) TypeUnion {
		d.Update(c.Site, c.Args.Arg(0))
		d.UpdateKeywords(c.Site, c.Args.Keywords)
		return NewUnion(b.None)
	}))
	cls.def("copy", "", withDict(func(c *Call, d *DictInfo) TypeUnion {
		cp := c.newDict()
		cp.SetItem(c.Site, d.KeyTypes(c.Site), d.ValueTypes(c.Site))
		return NewUnion(cp)
	}))
	cls.def("fromkeys", "iterable, value=None", func(c *Call) TypeUnion {
		d := c.newDict()
		value := c.Args.Arg(1)
		if c.Args.Len() < 2 {
			value = NewUnion(b.None)
		}
		d.SetItem(c.Site, GetEnumeratedTypesUnion(c.Site, c.Args.Arg(0)), value)
		return NewUnion(d)
	})
	cls.def("has_key", "key", b.returns(BoolType))
	cls.def("clear", "", b.returnsNone)
	cls.def("__len__", "", b.returns(IntType))
	cls.def("__contains__", "key", b.returns(BoolType))

	cls.construct = func(c *Call) TypeUnion {
		d := c.newDict()
		d.Update(c.Site, c.Args.Arg(0))
		d.UpdateKeywords(c.Site, c.Args.Keywords)
		return NewUnion(d)
	}
	cls.params = []string{"mapping=()", "**kwargs"}
}

// newDict returns the dict created by the builtin being called
func (c *Call) newDict() *DictInfo {
	return c.memo(memoDict, func() Namespace { return newDict(c.Site) }).(*DictInfo)
}
