package pythontype

import (
	"testing"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBinaryOp_Numeric(t *testing.T) {
	env := newTestEnv(t)
	b := Builtins

	type tc struct {
		l, r     Namespace
		op       pythonast.Op
		expected Namespace
	}
	for _, c := range []tc{
		{intc(1), b.Float.Instance, pythonast.Add, b.Float.Instance},
		{intc(1), intc(2), pythonast.Div, b.Float.Instance},
		{intc(1), intc(2), pythonast.FloorDiv, b.Int.Instance},
		{b.True, b.False, pythonast.BitAnd, b.Bool.Instance},
		{b.True, intc(1), pythonast.Add, b.Int.Instance},
		{b.Complex.Instance, intc(1), pythonast.Mul, b.Complex.Instance},
		{strc("a"), intc(3), pythonast.Mul, b.Str.Instance},
		{intc(3), strc("a"), pythonast.Mul, b.Str.Instance},
		{strc("a"), strc("b"), pythonast.Add, b.Str.Instance},
		{strc("%d"), intc(1), pythonast.Mod, b.Str.Instance},
		{intc(1), strc("a"), pythonast.Lt, b.Bool.Instance},
	} {
		res := BinaryOp(env.site(), c.l, c.op, c.r)
		assert.True(t, res.Equals(NewUnion(c.expected)), "%s %v %s gave %s", c.l.Name(), c.op, c.r.Name(), res.String())
	}

	// float operands do not support shifts
	assert.True(t, BinaryOp(env.site(), b.Float.Instance, pythonast.LShift, intc(1)).IsEmpty())
}

func TestBinaryOpUnion(t *testing.T) {
	env := newTestEnv(t)
	b := Builtins

	// x or y may be either operand
	res := BinaryOpUnion(env.site(), NewUnion(intc(1)), pythonast.Or, NewUnion(strc("a")))
	assert.True(t, res.Equals(NewUnion(intc(1), strc("a"))))

	res = BinaryOpUnion(env.site(), NewUnion(intc(1), b.Float.Instance), pythonast.Add, NewUnion(intc(2)))
	assert.True(t, res.Equals(NewUnion(b.Int.Instance, b.Float.Instance)))

	// comparisons are bools even when nothing is known about the operands
	res = BinaryOpUnion(env.site(), TypeUnion{}, pythonast.Eq, TypeUnion{})
	assert.True(t, res.Equals(NewUnion(b.Bool.Instance)))
}

func TestBinaryOp_Dunder(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{CallDepth: 0})
	vec := env.class("Vec")
	add := env.function("__add__", vec.Scope, testParams{names: []string{"self", "other"}})
	fa := add.Primary()
	fa.AddReturn(Site{Unit: fa.Unit}, NewUnion(vec.Instance))

	res := BinaryOp(env.site(), vec.Instance, pythonast.Add, intc(1))
	assert.True(t, res.Equals(NewUnion(vec.Instance)))
	assert.True(t, fa.Params[1].Types().Contains(intc(1)))

	// the reflected method of the right operand
	radd := env.function("__radd__", vec.Scope, testParams{names: []string{"self", "other"}})
	ra := radd.Primary()
	ra.AddReturn(Site{Unit: ra.Unit}, NewUnion(strc("r")))
	res = BinaryOp(env.site(), intc(1), pythonast.Add, vec.Instance)
	assert.True(t, res.Equals(NewUnion(strc("r"))))
}

func TestUnaryOp(t *testing.T) {
	env := newTestEnv(t)
	b := Builtins
	assert.True(t, UnaryOp(env.site(), pythonast.Sub, intc(3)).Equals(NewUnion(intc(-3))))
	assert.True(t, UnaryOp(env.site(), pythonast.Invert, b.Bool.Instance).Equals(NewUnion(b.Int.Instance)))
	assert.True(t, UnaryOp(env.site(), pythonast.Invert, b.Float.Instance).IsEmpty())
	assert.True(t, UnaryOpUnion(env.site(), pythonast.Not, NewUnion(strc("x"))).Equals(NewUnion(b.Bool.Instance)))
}

func TestEnumerateAndZip(t *testing.T) {
	env := newTestEnv(t)
	b := Builtins
	l := NewListAt(env.site())
	l.AddElements(env.site(), NewUnion(strc("a")))

	// for i, x in enumerate(l)
	it := Invoke(env.site(), b.Enumerate, PositionalArgs(NewUnion(l)))
	pairs := GetEnumeratedTypesUnion(env.site(), it)
	only, ok := pairs.Only()
	require.True(t, ok)
	pair := only.(*TupleInfo)
	require.Equal(t, 2, pair.Len())
	assert.True(t, pair.Index(env.site(), 0).Equals(NewUnion(b.Int.Instance)))
	assert.True(t, pair.Index(env.site(), 1).Equals(NewUnion(strc("a"))))

	// for x, y, z in zip(l, range(3), "abc")
	r := Invoke(env.site(), b.Range, PositionalArgs(NewUnion(intc(3))))
	it = Invoke(env.site(), b.Zip, PositionalArgs(NewUnion(l), r, NewUnion(strc("abc"))))
	only, ok = GetEnumeratedTypesUnion(env.site(), it).Only()
	require.True(t, ok)
	triple := only.(*TupleInfo)
	require.Equal(t, 3, triple.Len())
	assert.True(t, triple.Index(env.site(), 0).Equals(NewUnion(strc("a"))))
	assert.True(t, triple.Index(env.site(), 1).Equals(NewUnion(b.Int.Instance)))
	assert.True(t, triple.Index(env.site(), 2).Equals(NewUnion(b.Str.Instance)))

	// next() on the iterator gives the same tuples
	next := callMember(env.site(), it.Types()[0], "__next__")
	assert.True(t, next.Contains(triple))
}

func TestConstructors(t *testing.T) {
	env := newTestEnv(t)
	b := Builtins

	res := Invoke(env.site(), b.Type, PositionalArgs(NewUnion(intc(1), strc("a"))))
	assert.True(t, res.Equals(NewUnion(b.Int, b.Str)))

	l := NewListAt(env.site())
	l.AddElements(env.site(), NewUnion(intc(1)))
	only, ok := Invoke(env.site(), b.Set, PositionalArgs(NewUnion(l))).Only()
	require.True(t, ok)
	s := only.(*SetInfo)
	assert.True(t, s.Elements.Types().Equals(NewUnion(intc(1))))

	// dict(a=1)
	args := Args{Keywords: []Keyword{{Name: "a", Types: NewUnion(intc(1))}}}
	only, ok = Invoke(env.site(), b.Dict, args).Only()
	require.True(t, ok)
	d := only.(*DictInfo)
	assert.True(t, d.Keys.Types().Equals(NewUnion(strc("a"))))

	// builtin classes without a constructor produce their instance
	assert.True(t, Invoke(env.site(), b.Float, Args{}).Equals(NewUnion(b.Float.Instance)))
}

func TestSuper(t *testing.T) {
	env := newTestEnv(t)
	a := env.class("A")
	bcls := env.class("B", a)
	env.member(a, "f", intc(1))
	env.member(bcls, "f", strc("b"))

	// super(B, instance).f
	sup := Invoke(env.site(), Builtins.Super, PositionalArgs(NewUnion(bcls), NewUnion(bcls.Instance)))
	only, ok := sup.Only()
	require.True(t, ok)
	proxy, ok := only.(*SuperInfo)
	require.True(t, ok)
	assert.True(t, proxy.Class == bcls)

	assert.True(t, GetMember(env.site(), proxy, "f").Equals(NewUnion(intc(1))))
	assert.True(t, GetMember(env.site(), bcls.Instance, "f").Equals(NewUnion(strc("b"))))

	// members past the user classes come from object
	init := GetMember(env.site(), proxy, "__init__")
	assert.False(t, init.IsEmpty())
}

func TestInstance_GetAttrHook(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{CallDepth: 0})
	cls := env.class("Proxy")
	hook := env.function("__getattr__", cls.Scope, testParams{names: []string{"self", "name"}})
	fa := hook.Primary()
	fa.AddReturn(Site{Unit: fa.Unit}, NewUnion(strc("dynamic")))
	env.member(cls, "real", intc(1))

	assert.True(t, GetMember(env.site(), cls.Instance, "real").Equals(NewUnion(intc(1))))
	assert.True(t, GetMember(env.site(), cls.Instance, "anything").Equals(NewUnion(strc("dynamic"))))

	// the hook is not bound to the names it was consulted with
	assert.False(t, fa.Params[1].Types().Contains(strc("anything")))

	// special names never go through the hook
	assert.True(t, GetMember(env.site(), cls.Instance, "__nothing__").IsEmpty())
}

func TestDescriptions(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{CallDepth: 0})
	b := Builtins

	assert.Equal(t, "int 3", LongDescription(intc(3)))
	assert.Equal(t, `str "a"`, LongDescription(strc("a")))
	assert.Equal(t, "type int", ShortDescription(b.Int))
	assert.Equal(t, "int", ShortDescription(b.Int.Instance))

	l := NewListAt(env.site())
	assert.Equal(t, "list[unknown]", LongDescription(l))
	l.AddElements(env.site(), NewUnion(intc(1), intc(2)))
	assert.Equal(t, "list[int]", LongDescription(l))

	d := NewDictAt(env.site())
	d.SetItem(env.site(), NewUnion(strc("k")), NewUnion(b.Float.Instance))
	assert.Equal(t, "dict[str, float]", LongDescription(d))

	tup := NewTupleAt(env.site(), 2)
	tup.SetElement(env.site(), 0, NewUnion(intc(1)))
	tup.SetElement(env.site(), 1, NewUnion(strc("a")))
	assert.Equal(t, "tuple[int, str]", LongDescription(tup))

	gen := NewGeneratorAt(env.site())
	gen.AddYield(env.site(), NewUnion(b.Bytes.Instance))
	assert.Equal(t, "generator[bytes]", LongDescription(gen))

	base := env.class("Base")
	derived := env.class("Derived", base)
	assert.Equal(t, "class Base", LongDescription(base))
	assert.Equal(t, "class Derived(Base)", LongDescription(derived))
	assert.Equal(t, "class Derived", ShortDescription(derived))
	assert.Equal(t, "Derived", ShortDescription(derived.Instance))

	assert.Equal(t, "module test", ShortDescription(env.module))
}

func TestSignatures(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{CallDepth: 0})

	f := env.function("f", nil, testParams{names: []string{"a", "b"}, vararg: "args", kwarg: "kw"})
	sigs := Signatures(f)
	require.Len(t, sigs, 1)
	assert.Equal(t, "f(a, b, *args, **kw)", sigs[0].String())
	assert.Equal(t, "def f(a, b, *args, **kw)", LongDescription(f))

	fa := f.Primary()
	fa.AddReturn(Site{Unit: fa.Unit}, NewUnion(intc(1)))
	assert.Equal(t, "f(a, b, *args, **kw) -> int", Signatures(f)[0].String())

	cls := env.class("A")
	env.function("__init__", cls.Scope, testParams{names: []string{"self", "x"}})
	m := env.function("m", cls.Scope, testParams{names: []string{"self", "y"}})

	sigs = Signatures(cls)
	require.Len(t, sigs, 1)
	assert.Equal(t, "A(x)", sigs[0].String())

	bound := NewBoundMethod(m, cls.Instance)
	assert.Equal(t, "m(y)", Signatures(bound)[0].String())
	assert.Equal(t, "method m", ShortDescription(bound))

	sigs = Signatures(Builtins.Range)
	require.Len(t, sigs, 1)
	assert.Equal(t, "range(start, stop=None, step=1)", sigs[0].String())

	// classes without __init__ take no arguments
	bare := env.class("Bare")
	assert.Equal(t, "Bare()", Signatures(bare)[0].String())
}
