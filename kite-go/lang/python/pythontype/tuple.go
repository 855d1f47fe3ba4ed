package pythontype

import "math"

// TupleInfo is a tuple created at one site. Tuples of known length track
// one union per position. Star holds the contents of tuples, or parts of
// tuples, whose length is unknown.
type TupleInfo struct {
	record
	Elements []*VariableDef
	Star     *VariableDef

	methods methodCache
}

func newTuple(site Site, n int, star bool) *TupleInfo {
	t := &TupleInfo{record: newRecord()}
	for i := 0; i < n; i++ {
		t.Elements = append(t.Elements, site.newDef("()"))
	}
	if star {
		t.Star = site.newDef("(*)")
	}
	return t
}

// newTupleOf creates a tuple over existing bindings
func newTupleOf(elems ...*VariableDef) *TupleInfo {
	return &TupleInfo{record: newRecord(), Elements: elems}
}

// NewTupleAt returns the tuple of length n created at site
func NewTupleAt(site Site, n int) *TupleInfo {
	return site.memoSub(memoTuple, uint64(n), func() Namespace {
		return newTuple(site, n, false)
	}).(*TupleInfo)
}

// NewStarTupleAt returns the tuple of n known elements followed by an
// unknown number of others created at site
func NewStarTupleAt(site Site, n int) *TupleInfo {
	return site.memoSub(memoTuple, math.MaxUint32+uint64(n), func() Namespace {
		return newTuple(site, n, true)
	}).(*TupleInfo)
}

// Kind implements Namespace
func (t *TupleInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (t *TupleInfo) Name() string { return "tuple" }

// SetElement adds types to the i-th element
func (t *TupleInfo) SetElement(site Site, i int, types TypeUnion) bool {
	if i < 0 || i >= len(t.Elements) {
		return t.AddStar(site, types)
	}
	return t.Elements[i].AddTypesLimited(site.Unit, types, site.Limits().IndexTypes)
}

// AddStar adds types to the unknown part of the tuple. Tuples of known
// length ignore them.
func (t *TupleInfo) AddStar(site Site, types TypeUnion) bool {
	if t.Star == nil {
		return false
	}
	return t.Star.AddTypesLimited(site.Unit, types, site.Limits().IndexTypes)
}

// Index returns the types at position i. Negative positions count from the
// end. Tuples with an unknown part answer with every element.
func (t *TupleInfo) Index(site Site, i int) TypeUnion {
	if t.Star == nil {
		if i < 0 {
			i += len(t.Elements)
		}
		if i >= 0 && i < len(t.Elements) {
			return t.Elements[i].TypesFor(site.Unit)
		}
		return TypeUnion{}
	}
	if i >= 0 && i < len(t.Elements) {
		return t.Elements[i].TypesFor(site.Unit)
	}
	return t.AllTypes(site)
}

// AllTypes returns the union of every element
func (t *TupleInfo) AllTypes(site Site) TypeUnion {
	var out TypeUnion
	for _, e := range t.Elements {
		out, _ = out.Union(e.TypesFor(site.Unit))
	}
	if t.Star != nil {
		out, _ = out.Union(t.Star.TypesFor(site.Unit))
	}
	return out
}

// Len returns the number of known elements
func (t *TupleInfo) Len() int { return len(t.Elements) }

// newStarTuple returns the tuple of unknown length created by the builtin
// being called
func (c *Call) newStarTuple() *TupleInfo {
	return c.memo(memoTuple, func() Namespace { return newTuple(c.Site, 0, true) }).(*TupleInfo)
}

// newTuple returns the tuple of known length created by the builtin being
// called, with elems added to its positions
func (c *Call) newTuple(elems ...TypeUnion) *TupleInfo {
	sub := uint64(len(elems))
	if c.callee != nil {
		sub = rehash(c.callee.id(), sub)
	}
	t := c.Site.memoSub(memoTuple, sub, func() Namespace {
		return newTuple(c.Site, len(elems), false)
	}).(*TupleInfo)
	for i, e := range elems {
		t.SetElement(c.Site, i, e)
	}
	return t
}

func (b *BuiltinTable) tupleMembers() {
	cls := b.Tuple
	cls.def("index", "value, start=0, stop=None", b.returns(IntType))
	cls.def("count", "value", b.returns(IntType))
	cls.def("__len__", "", b.returns(IntType))
	cls.def("__contains__", "value", b.returns(BoolType))

	cls.construct = func(c *Call) TypeUnion {
		arg := c.Args.Arg(0)
		if arg.IsEmpty() {
			return NewUnion(c.newStarTuple())
		}
		var out TypeUnion
		for _, ns := range arg.Types() {
			if t, ok := ns.(*TupleInfo); ok {
				out, _ = out.Add(t)
				continue
			}
			t := c.newStarTuple()
			t.AddStar(c.Site, GetEnumeratedTypes(c.Site, ns))
			out, _ = out.Add(t)
		}
		return out
	}
	cls.params = []string{"iterable=()"}
}
