package pythontype

// methodCache memoizes the builtin methods bound to one collection, so that
// looking a method up twice yields the same namespace
type methodCache map[*BuiltinFunction]*BuiltinMethod

// bind returns f bound to self. Methods bound while evaluating a query are
// not cached, since queries may run concurrently with each other.
func (m *methodCache) bind(site Site, f *BuiltinFunction, self Namespace) *BuiltinMethod {
	if bm, ok := (*m)[f]; ok {
		return bm
	}
	bm := NewBuiltinMethod(f, self)
	if site.ForEval() {
		return bm
	}
	if *m == nil {
		*m = make(methodCache)
	}
	(*m)[f] = bm
	return bm
}

// builtinMember looks name up on the builtin class backing an instance and
// binds functions to the instance
func builtinMember(site Site, cls *BuiltinClass, self Namespace, cache *methodCache, name string) TypeUnion {
	member, ok := cls.Member(name)
	if !ok {
		return TypeUnion{}
	}
	f, ok := member.(*BuiltinFunction)
	if !ok {
		return NewUnion(member)
	}
	if cache == nil {
		return NewUnion(NewBuiltinMethod(f, self))
	}
	return NewUnion(cache.bind(site, f, self))
}

// -- iterators

// IteratorInfo is an iterator, or an iterable view, whose elements are
// either tracked by Elements or derived from Source
type IteratorInfo struct {
	record
	cls      *BuiltinClass
	Elements *VariableDef
	Source   Namespace

	methods methodCache
}

func newIterator(cls *BuiltinClass, elements *VariableDef) *IteratorInfo {
	return &IteratorInfo{record: newRecord(), cls: cls, Elements: elements}
}

func newSourceIterator(cls *BuiltinClass, source Namespace) *IteratorInfo {
	return &IteratorInfo{record: newRecord(), cls: cls, Source: source}
}

// Kind implements Namespace
func (it *IteratorInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (it *IteratorInfo) Name() string { return it.cls.name }

// Class returns the builtin class of the iterator
func (it *IteratorInfo) Class() *BuiltinClass { return it.cls }

// ElementTypes returns what iterating produces
func (it *IteratorInfo) ElementTypes(site Site) TypeUnion {
	if it.Elements != nil {
		return it.Elements.TypesFor(site.Unit)
	}
	if it.Source != nil {
		return GetEnumeratedTypes(site, it.Source)
	}
	return TypeUnion{}
}

// -- ranges

// RangeInfo is a range object. It always produces ints.
type RangeInfo struct {
	record
	methods methodCache
	iter    *IteratorInfo
}

// NewRangeAt returns the range created at site
func NewRangeAt(site Site) *RangeInfo {
	return site.memo(memoRange, func() Namespace {
		return &RangeInfo{record: newRecord()}
	}).(*RangeInfo)
}

// Kind implements Namespace
func (r *RangeInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (r *RangeInfo) Name() string { return "range" }

// Iterator returns the iterator over the range
func (r *RangeInfo) Iterator(site Site) *IteratorInfo {
	if r.iter != nil {
		return r.iter
	}
	it := newIterator(Builtins.RangeIterator, newFixedDef("range", NewUnion(Builtins.Int.Instance)))
	if !site.ForEval() {
		r.iter = it
	}
	return it
}

// -- generators

// GeneratorInfo is a generator object: the result of calling a generator
// function, or a generator expression
type GeneratorInfo struct {
	record
	// Function is the generator function, nil for generator expressions
	Function *FunctionInfo

	Yields  *VariableDef
	Sends   *VariableDef
	Returns *VariableDef

	methods methodCache
}

func newGenerator(site Site, fn *FunctionInfo) *GeneratorInfo {
	return &GeneratorInfo{
		record:   newRecord(),
		Function: fn,
		Yields:   site.newDef("yield"),
		Sends:    site.newDef("send"),
		Returns:  site.newDef("return"),
	}
}

// NewGeneratorAt returns the generator created by the generator expression
// at site
func NewGeneratorAt(site Site) *GeneratorInfo {
	return site.memo(memoGenerator, func() Namespace {
		return newGenerator(site, nil)
	}).(*GeneratorInfo)
}

// Kind implements Namespace
func (g *GeneratorInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (g *GeneratorInfo) Name() string { return "generator" }

// AddYield records a yielded value
func (g *GeneratorInfo) AddYield(site Site, types TypeUnion) bool {
	return g.Yields.AddTypesLimited(site.Unit, types, site.Limits().YieldTypes)
}

// AddSend records a value sent into the generator
func (g *GeneratorInfo) AddSend(site Site, types TypeUnion) bool {
	return g.Sends.AddTypesLimited(site.Unit, types, site.Limits().YieldTypes)
}

// AddReturn records the value of a return statement in the generator
func (g *GeneratorInfo) AddReturn(site Site, types TypeUnion) bool {
	return g.Returns.AddTypesLimited(site.Unit, types, site.Limits().YieldTypes)
}

// YieldFrom delegates to inner as `yield from inner` does: inner's yields
// become ours, what is sent to us is sent to inner, and the expression
// evaluates to what inner returns. Iterables other than generators only
// contribute their elements.
func (g *GeneratorInfo) YieldFrom(site Site, inner TypeUnion) TypeUnion {
	var result TypeUnion
	for _, ns := range inner.Types() {
		if ig, ok := ns.(*GeneratorInfo); ok {
			if ig == g {
				continue
			}
			g.AddYield(site, ig.Yields.TypesFor(site.Unit))
			ig.AddSend(site, g.Sends.TypesFor(site.Unit))
			result, _ = result.Union(ig.Returns.TypesFor(site.Unit))
			continue
		}
		g.AddYield(site, GetEnumeratedTypes(site, ns))
	}
	return result
}
