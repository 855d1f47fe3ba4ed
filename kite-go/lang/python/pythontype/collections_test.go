package pythontype

import (
	"testing"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// callMember evaluates `ns.name(args...)`
func callMember(site Site, ns Namespace, name string, args ...TypeUnion) TypeUnion {
	return InvokeUnion(site, GetMember(site, ns, name), PositionalArgs(args...))
}

func TestList(t *testing.T) {
	env := newTestEnv(t)
	l := NewListAt(env.site())

	callMember(env.site(), l, "append", NewUnion(intc(1)))
	callMember(env.site(), l, "extend", NewUnion(strc("abc")))
	assert.True(t, l.Elements.Types().Contains(intc(1)))
	assert.True(t, l.Elements.Types().Contains(Builtins.Str.Instance))

	popped := callMember(env.site(), l, "pop")
	assert.True(t, popped.Equals(l.Elements.Types()))

	cp := callMember(env.site(), l, "copy")
	only, ok := cp.Only()
	require.True(t, ok)
	assert.False(t, only == Namespace(l))
	assert.True(t, GetEnumeratedTypes(env.site(), only).Contains(intc(1)))

	// bound methods are cached on the list
	m1 := GetMember(env.site(), l, "append")
	m2 := GetMember(env.site(), l, "append")
	assert.True(t, m1.Types()[0] == m2.Types()[0])

	idx := GetIndex(env.site(), l, NewUnion(intc(0)))
	assert.True(t, idx.Equals(l.Elements.Types()))
}

func TestList_Concat(t *testing.T) {
	env := newTestEnv(t)
	a := NewListAt(env.site())
	a.AddElements(env.site(), NewUnion(intc(1)))
	b := NewListAt(env.site())
	b.AddElements(env.site(), NewUnion(strc("x")))

	site := env.site()
	res := BinaryOp(site, a, pythonast.Add, b)
	only, ok := res.Only()
	require.True(t, ok)
	l := only.(*ListInfo)
	assert.True(t, l.Elements.Types().Equals(NewUnion(intc(1), strc("x"))))

	// the same site produces the same list
	again := BinaryOp(site, a, pythonast.Add, b)
	assert.True(t, again.Types()[0] == only)
}

func TestDict(t *testing.T) {
	env := newTestEnv(t)
	d := NewDictAt(env.site())
	d.SetItem(env.site(), NewUnion(strc("a")), NewUnion(intc(1)))
	d.SetItem(env.site(), NewUnion(strc("b")), NewUnion(Builtins.Float.Instance))

	keys := callMember(env.site(), d, "keys")
	assert.True(t, GetEnumeratedTypesUnion(env.site(), keys).Equals(NewUnion(strc("a"), strc("b"))))

	values := callMember(env.site(), d, "values")
	assert.True(t, GetEnumeratedTypesUnion(env.site(), values).Equals(NewUnion(intc(1), Builtins.Float.Instance)))

	// simulate "for k, v in d.items(): ..."
	items := callMember(env.site(), d, "items")
	pairs := GetEnumeratedTypesUnion(env.site(), items)
	only, ok := pairs.Only()
	require.True(t, ok)
	pair := only.(*TupleInfo)
	require.Equal(t, 2, pair.Len())
	assert.True(t, pair.Index(env.site(), 0).Equals(NewUnion(strc("a"), strc("b"))))
	assert.True(t, pair.Index(env.site(), 1).Equals(NewUnion(intc(1), Builtins.Float.Instance)))

	// simulate "x = d.setdefault('c', None)"
	ret := callMember(env.site(), d, "setdefault", NewUnion(strc("c")), NewUnion(Builtins.None))
	assert.True(t, ret.Contains(Builtins.None))
	assert.True(t, d.Keys.Types().Contains(strc("c")))

	got := callMember(env.site(), d, "get", NewUnion(strc("a")))
	assert.True(t, got.Contains(intc(1)))
	assert.True(t, got.Contains(Builtins.None))

	// iterating a dict produces its keys
	assert.True(t, GetEnumeratedTypes(env.site(), d).Contains(strc("a")))
	assert.True(t, GetIndex(env.site(), d, NewUnion(strc("a"))).Contains(intc(1)))
}

func TestDict_Update(t *testing.T) {
	env := newTestEnv(t)
	a := NewDictAt(env.site())
	b := NewDictAt(env.site())
	b.SetItem(env.site(), NewUnion(intc(1)), NewUnion(strc("one")))

	args := PositionalArgs(NewUnion(b))
	args.Keywords = []Keyword{{Name: "k", Types: NewUnion(Builtins.Bool.Instance)}}
	InvokeUnion(env.site(), GetMember(env.site(), a, "update"), args)

	assert.True(t, a.Keys.Types().Contains(intc(1)))
	assert.True(t, a.Keys.Types().Contains(strc("k")))
	assert.True(t, a.Values.Types().Contains(strc("one")))
	assert.True(t, a.Values.Types().Contains(Builtins.Bool.Instance))
}

func TestSet(t *testing.T) {
	env := newTestEnv(t)
	s := NewSetAt(env.site())
	callMember(env.site(), s, "add", NewUnion(intc(1)))
	assert.True(t, s.Elements.Types().Contains(intc(1)))

	popped := callMember(env.site(), s, "pop")
	assert.True(t, popped.Contains(intc(1)))

	other := NewSetAt(env.site())
	other.AddElements(env.site(), NewUnion(strc("x")))
	union := BinaryOp(env.site(), s, pythonast.BitOr, other)
	assert.True(t, GetEnumeratedTypesUnion(env.site(), union).Equals(NewUnion(intc(1), strc("x"))))
}

func TestTuple(t *testing.T) {
	env := newTestEnv(t)
	tup := NewTupleAt(env.site(), 2)
	tup.SetElement(env.site(), 0, NewUnion(intc(1)))
	tup.SetElement(env.site(), 1, NewUnion(strc("a")))

	assert.True(t, GetIndex(env.site(), tup, NewUnion(intc(0))).Equals(NewUnion(intc(1))))
	assert.True(t, GetIndex(env.site(), tup, NewUnion(intc(-1))).Equals(NewUnion(strc("a"))))
	assert.True(t, GetIndex(env.site(), tup, NewUnion(Builtins.Int.Instance)).Equals(NewUnion(intc(1), strc("a"))))
	assert.True(t, GetEnumeratedTypes(env.site(), tup).Equals(NewUnion(intc(1), strc("a"))))

	other := NewTupleAt(env.site(), 1)
	other.SetElement(env.site(), 0, NewUnion(Builtins.Float.Instance))
	sum, ok := BinaryOp(env.site(), tup, pythonast.Add, other).Only()
	require.True(t, ok)
	cat := sum.(*TupleInfo)
	require.Equal(t, 3, cat.Len())
	assert.True(t, cat.Index(env.site(), 2).Equals(NewUnion(Builtins.Float.Instance)))
}

func TestGenerator(t *testing.T) {
	env := newTestEnv(t)
	inner := NewGeneratorAt(env.site())
	inner.AddYield(env.site(), NewUnion(intc(1)))
	inner.AddYield(env.site(), NewUnion(strc("s")))
	inner.AddReturn(env.site(), NewUnion(Builtins.Float.Instance))

	assert.True(t, callMember(env.site(), inner, "__next__").Equals(NewUnion(intc(1), strc("s"))))
	assert.True(t, GetEnumeratedTypes(env.site(), inner).Equals(NewUnion(intc(1), strc("s"))))

	// yield from delegates yields, sends and the return value
	outer := NewGeneratorAt(env.site())
	res := outer.YieldFrom(env.site(), NewUnion(inner))
	assert.True(t, res.Equals(NewUnion(Builtins.Float.Instance)))
	assert.True(t, outer.Yields.Types().Equals(NewUnion(intc(1), strc("s"))))

	callMember(env.site(), outer, "send", NewUnion(Builtins.Bool.Instance))
	outer.YieldFrom(env.site(), NewUnion(inner))
	assert.True(t, inner.Sends.Types().Contains(Builtins.Bool.Instance))

	// yield from a plain iterable contributes its elements
	l := NewListAt(env.site())
	l.AddElements(env.site(), NewUnion(Builtins.Complex.Instance))
	outer.YieldFrom(env.site(), NewUnion(l))
	assert.True(t, outer.Yields.Types().Contains(Builtins.Complex.Instance))

	// a generator delegating to itself does not loop
	outer.YieldFrom(env.site(), NewUnion(outer))
}

func TestIterator_SelfSource(t *testing.T) {
	it := newSourceIterator(Builtins.ListIterator, nil)
	it.Source = it
	env := newTestEnv(t)
	assert.True(t, GetEnumeratedTypes(env.site(), it).IsEmpty())
}

func TestRange(t *testing.T) {
	env := newTestEnv(t)
	r := Invoke(env.site(), Builtins.Range, PositionalArgs(NewUnion(intc(10))))
	only, ok := r.Only()
	require.True(t, ok)
	_, ok = only.(*RangeInfo)
	require.True(t, ok)
	assert.True(t, GetEnumeratedTypes(env.site(), only).Equals(NewUnion(Builtins.Int.Instance)))

	xrange, ok := Builtins.Lookup("xrange")
	require.True(t, ok)
	assert.Equal(t, Namespace(Builtins.Range), xrange)
}
