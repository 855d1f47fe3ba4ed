package pythontype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBindArguments(t *testing.T) {
	env := newTestEnv(t)
	spec := ParamSpec{Names: []string{"a", "b"}, Vararg: true, Kwarg: true}

	// f(1, 2, 3, 4, x=5)
	args := PositionalArgs(NewUnion(intc(1)), NewUnion(intc(2)), NewUnion(intc(3)), NewUnion(intc(4)))
	args.Keywords = []Keyword{{Name: "x", Types: NewUnion(intc(5))}}

	set := BindArguments(env.site(), spec, args)
	require.Len(t, set.Params, 2)
	assert.True(t, set.Params[0].Equals(NewUnion(intc(1))))
	assert.True(t, set.Params[1].Equals(NewUnion(intc(2))))
	assert.True(t, set.Vararg.Equals(NewUnion(intc(3), intc(4))))
	assert.True(t, set.Kwarg.Equals(NewUnion(intc(5))))
	assert.Equal(t, []string{"x"}, set.KwargNames)
}

func TestBindArguments_Keywords(t *testing.T) {
	env := newTestEnv(t)
	spec := ParamSpec{Names: []string{"a", "b", "c"}, KeywordOnly: []bool{false, false, true}}

	args := PositionalArgs(NewUnion(intc(1)), NewUnion(intc(2)), NewUnion(intc(3)))
	args.Keywords = []Keyword{
		{Name: "c", Types: NewUnion(strc("c"))},
		{Name: "nope", Types: NewUnion(strc("dropped"))},
	}

	set := BindArguments(env.site(), spec, args)
	assert.True(t, set.Params[0].Equals(NewUnion(intc(1))))
	assert.True(t, set.Params[1].Equals(NewUnion(intc(2))))
	// keyword-only parameters never take positional arguments, and extra
	// arguments are ignored
	assert.True(t, set.Params[2].Equals(NewUnion(strc("c"))))
	assert.True(t, set.Vararg.IsEmpty())
	assert.True(t, set.Kwarg.IsEmpty())
}

func TestBindArguments_Splats(t *testing.T) {
	env := newTestEnv(t)
	spec := ParamSpec{Names: []string{"a", "b", "c"}}

	tup := NewTupleAt(env.site(), 2)
	tup.SetElement(env.site(), 0, NewUnion(intc(1)))
	tup.SetElement(env.site(), 1, NewUnion(strc("s")))

	// f(0, *(1, "s"))
	args := PositionalArgs(NewUnion(intc(0)))
	args.Splats = []TypeUnion{NewUnion(tup)}
	set := BindArguments(env.site(), spec, args)
	assert.True(t, set.Params[0].Equals(NewUnion(intc(0))))
	assert.True(t, set.Params[1].Equals(NewUnion(intc(1))))
	assert.True(t, set.Params[2].Equals(NewUnion(strc("s"))))

	// f(*some_list) spreads the elements over every slot
	l := NewListAt(env.site())
	l.AddElements(env.site(), NewUnion(Builtins.Float.Instance))
	args = Args{Splats: []TypeUnion{NewUnion(l)}}
	set = BindArguments(env.site(), spec, args)
	for _, p := range set.Params {
		assert.True(t, p.Contains(Builtins.Float.Instance))
	}
}

func TestBindArguments_DoubleSplat(t *testing.T) {
	env := newTestEnv(t)
	spec := ParamSpec{Names: []string{"a", "b"}, Kwarg: true}

	d := NewDictAt(env.site())
	d.SetItem(env.site(), NewUnion(strc("b")), NewUnion(intc(7)))

	args := Args{DoubleSplats: []TypeUnion{NewUnion(d)}}
	set := BindArguments(env.site(), spec, args)
	assert.True(t, set.Params[0].IsEmpty())
	assert.True(t, set.Params[1].Equals(NewUnion(intc(7))))
	assert.True(t, set.Kwarg.Equals(NewUnion(intc(7))))
}

func TestBindArguments_Limits(t *testing.T) {
	limits := DefaultLimits()
	limits.NormalArgumentTypes = 2
	env := newTestEnvWithLimits(t, limits)
	spec := ParamSpec{Names: []string{"a"}}

	set := BindArguments(env.site(), spec, PositionalArgs(NewUnion(intc(1), intc(2), intc(3))))
	assert.Equal(t, MergeSameClass, set.Params[0].Strength())
	assert.True(t, set.Params[0].Equals(NewUnion(Builtins.Int.Instance)))
}

func TestFunction_Invoke(t *testing.T) {
	env := newTestEnv(t)
	f := env.function("f", nil, testParams{names: []string{"a", "b"}, vararg: "args", kwarg: "kw"})

	args := PositionalArgs(NewUnion(intc(1)), NewUnion(intc(2)), NewUnion(intc(3)), NewUnion(intc(4)))
	args.Keywords = []Keyword{{Name: "x", Types: NewUnion(intc(5))}}
	Invoke(env.site(), f, args)

	// the call got its own specialization
	require.Len(t, f.Analyses(), 2)
	fa := f.Analyses()[1]
	assert.True(t, env.queue.contains(fa.Unit))

	assert.True(t, fa.Params[0].Types().Equals(NewUnion(intc(1))))
	assert.True(t, fa.Params[1].Types().Equals(NewUnion(intc(2))))
	assert.True(t, fa.Vararg.Star.Types().Equals(NewUnion(intc(3), intc(4))))
	assert.True(t, fa.Kwarg.Keys.Types().Equals(NewUnion(strc("x"))))
	assert.True(t, fa.Kwarg.Values.Types().Equals(NewUnion(intc(5))))

	// *args and **kw are bound in the function scope
	assert.True(t, fa.Scope.Get("args").Types().Contains(fa.Vararg))
	assert.True(t, fa.Scope.Get("kw").Types().Contains(fa.Kwarg))
}

func TestFunction_Returns(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{CallDepth: 0})
	f := env.function("f", nil, testParams{names: []string{"a"}})

	caller := env.site()
	res := Invoke(caller, f, PositionalArgs(NewUnion(intc(1))))
	assert.True(t, res.IsEmpty())

	// the caller is revisited once the body returns something
	env.queue.units = nil
	fa := f.Primary()
	fa.AddReturn(Site{Unit: fa.Unit}, NewUnion(strc("r")))
	assert.True(t, env.queue.contains(env.unit))

	res = Invoke(caller, f, PositionalArgs(NewUnion(intc(1))))
	assert.True(t, res.Equals(NewUnion(strc("r"))))
	assert.True(t, f.AllReturns().Equals(NewUnion(strc("r"))))

	// queries see every return without binding anything
	res = Invoke(env.evalSite(), f, PositionalArgs(NewUnion(intc(2))))
	assert.True(t, res.Equals(NewUnion(strc("r"))))
	assert.False(t, fa.Params[0].Types().Contains(intc(2)))
}

func TestFunction_DecreaseCallDepth(t *testing.T) {
	limits := DefaultLimits()
	limits.CallDepth = 1
	limits.DecreaseCallDepth = 3
	env := newTestEnvWithLimits(t, limits)
	f := env.function("f", nil, testParams{names: []string{"a"}})

	for i := 0; i < 3; i++ {
		Invoke(env.site(), f, PositionalArgs(NewUnion(intc(int64(i)))))
	}
	assert.Equal(t, 0, f.CallDepth())
	assert.Len(t, f.Analyses(), 4)

	// further calls share the primary analysis
	Invoke(env.site(), f, PositionalArgs(NewUnion(intc(9))))
	assert.Len(t, f.Analyses(), 4)
	assert.True(t, f.Primary().Params[0].Types().Contains(intc(9)))
}

func TestClass_Construct(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{CallDepth: 0})
	cls := env.class("A")
	init := env.function("__init__", cls.Scope, testParams{names: []string{"self", "x"}})

	res := Invoke(env.site(), cls, PositionalArgs(NewUnion(intc(1))))
	assert.True(t, res.Equals(NewUnion(cls.Instance)))

	fa := init.Primary()
	assert.True(t, fa.Params[0].Types().Contains(cls.Instance))
	assert.True(t, fa.Params[1].Types().Contains(intc(1)))
}

func TestBoundMethod(t *testing.T) {
	env := newTestEnvWithLimits(t, Limits{CallDepth: 0})
	cls := env.class("A")
	m := env.function("m", cls.Scope, testParams{names: []string{"self", "y"}})

	bound := GetMember(env.site(), cls.Instance, "m")
	only, ok := bound.Only()
	require.True(t, ok)
	bm, ok := only.(*BoundMethod)
	require.True(t, ok)
	assert.True(t, bm.Func == m)

	InvokeUnion(env.site(), bound, PositionalArgs(NewUnion(strc("y"))))
	fa := m.Primary()
	assert.True(t, fa.Params[0].Types().Contains(cls.Instance))
	assert.True(t, fa.Params[1].Types().Contains(strc("y")))

	// through the class, the function stays unbound
	unbound := GetMember(env.site(), cls, "m")
	assert.True(t, unbound.Contains(m))
}
