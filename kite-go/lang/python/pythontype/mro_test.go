package pythontype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMro_Diamond(t *testing.T) {
	env := newTestEnv(t)
	d := env.class("D")
	a := env.class("A", d)
	b := env.class("B", d)
	c := env.class("C", a, b)

	assert.True(t, c.Mro.IsValid)
	assert.Equal(t, []string{"{C}", "{A}", "{B}", "{D}"}, mroNames(c))
}

func TestMro_Inconsistent(t *testing.T) {
	env := newTestEnv(t)
	x := env.class("X")
	y := env.class("Y", x)
	z := env.class("Z", x, y)

	assert.False(t, z.Mro.IsValid)
	assert.Equal(t, []string{"{Z}"}, mroNames(z))
	assert.True(t, y.Mro.IsValid)
}

func TestMro_ConflictingOrder(t *testing.T) {
	env := newTestEnv(t)
	a := env.class("A")
	b := env.class("B")
	x := env.class("X", a, b)
	y := env.class("Y", b, a)
	z := env.class("Z", x, y)
	env.member(a, "inherited", intc(1))
	env.member(z, "own", strc("z"))

	assert.True(t, x.Mro.IsValid)
	assert.True(t, y.Mro.IsValid)
	assert.False(t, z.Mro.IsValid)
	assert.Equal(t, []string{"{Z}"}, mroNames(z))

	assert.True(t, GetMemberFromMro(env.site(), z, "own").Equals(NewUnion(strc("z"))))
	assert.True(t, GetMemberFromMro(env.site(), z, "inherited").IsEmpty())
	assert.True(t, GetMemberFromMro(env.site(), x, "inherited").Contains(intc(1)))
}

func TestMro_Cycle(t *testing.T) {
	env := newTestEnv(t)
	a := env.class("A")
	b := env.class("B", a)

	// class A(B) after class B(A)
	site := Site{Unit: env.unit, Node: a.Node}
	a.SetBases(site, []TypeUnion{NewUnion(b)})

	assert.False(t, a.Mro.IsValid)
	assert.Equal(t, []string{"{A}"}, mroNames(a))

	// lookups on either class terminate
	env.member(b, "f", intc(1))
	GetMemberFromMro(env.site(), a, "f")
	GetMemberFromMro(env.site(), b, "f")
	GetAllMembers(env.site(), a)
}

func TestMro_SelfBase(t *testing.T) {
	env := newTestEnv(t)
	a := env.class("A")
	a.SetBases(Site{Unit: env.unit, Node: a.Node}, []TypeUnion{NewUnion(a)})
	assert.False(t, a.Mro.IsValid)
}

func TestMro_AmbiguousBase(t *testing.T) {
	env := newTestEnv(t)
	p := env.class("P")
	q := env.class("Q")
	env.member(p, "f", intc(1))
	env.member(q, "f", strc("a"))

	// class C(P if cond else Q)
	c := env.class("C")
	c.SetBases(Site{Unit: env.unit, Node: c.Node}, []TypeUnion{NewUnion(p, q)})
	require.True(t, c.Mro.IsValid)
	assert.Len(t, c.Mro.Entries(), 2)

	f := GetMemberFromMro(env.site(), c, "f")
	assert.True(t, f.Contains(intc(1)))
	assert.True(t, f.Contains(strc("a")))
}

func TestMro_BuiltinBase(t *testing.T) {
	env := newTestEnv(t)
	c := env.class("MyError", Builtins.Exception)
	require.True(t, c.Mro.IsValid)
	assert.Equal(t, []string{"{MyError}", "{Exception}", "{BaseException}", "{object}"}, mroNames(c))

	args := GetMemberFromMro(env.site(), c, "args")
	assert.True(t, args.Contains(Builtins.Tuple.Instance))
	assert.True(t, IsSubclass(c, Builtins.BaseException))
	assert.True(t, IsInstance(c.Instance, Builtins.Exception))
}

func TestGetMemberFromMro(t *testing.T) {
	env := newTestEnv(t)
	d := env.class("D")
	a := env.class("A", d)
	b := env.class("B", d)
	c := env.class("C", a, b)

	env.member(d, "g", strc("d"))
	env.member(b, "g", intc(2))
	env.member(d, "h", strc("h"))

	assert.True(t, GetMemberFromMro(env.site(), c, "g").Equals(NewUnion(intc(2))))
	assert.True(t, GetMemberFromMro(env.site(), c, "h").Equals(NewUnion(strc("h"))))

	// object is the fallback
	repr := GetMemberFromMro(env.site(), c, "__repr__")
	require.Equal(t, 1, repr.Len())
	_, ok := repr.Types()[0].(*BuiltinFunction)
	assert.True(t, ok)

	assert.True(t, GetMemberFromMro(env.site(), c, "missing").IsEmpty())

	members := GetAllMembers(env.site(), c)
	assert.Contains(t, members, "g")
	assert.Contains(t, members, "h")
	assert.Contains(t, members, "__init__")
	assert.NotContains(t, members, "missing")
}

func TestMro_Update(t *testing.T) {
	env := newTestEnv(t)
	a := env.class("A")
	b := env.class("B", a)
	c := env.class("C", b)
	env.member(a, "x", intc(1))
	require.True(t, GetMemberFromMro(env.site(), c, "x").Contains(intc(1)))

	// a reader of the MRO is revisited when a base changes
	reader := NewUnit(env.state, FunctionUnit, nil, env.module.Scope, env.entry, env.unit)
	GetMemberFromMro(Site{Unit: reader}, c, "x")
	env.queue.units = nil

	b.ClearBases()
	assert.Equal(t, []string{"{C}", "{B}"}, mroNames(c))
	assert.True(t, env.queue.contains(reader))
	assert.True(t, GetMemberFromMro(env.site(), c, "x").IsEmpty())
}

func TestMro_BaseChangeReachesSubclasses(t *testing.T) {
	env := newTestEnv(t)
	a := env.class("A")
	b := env.class("B", a)
	c := env.class("C", b)
	x := env.class("X")
	env.member(a, "f", intc(1))
	env.member(x, "g", strc("x"))
	require.Equal(t, []string{"{C}", "{B}", "{A}"}, mroNames(c))

	// class A(X) replaces class A()
	a.SetBases(Site{Unit: env.unit, Node: a.Node}, []TypeUnion{NewUnion(x)})

	assert.Equal(t, []string{"{A}", "{X}"}, mroNames(a))
	assert.Equal(t, []string{"{B}", "{A}", "{X}"}, mroNames(b))
	assert.Equal(t, []string{"{C}", "{B}", "{A}", "{X}"}, mroNames(c))
	assert.True(t, c.Mro.IsValid)
	assert.True(t, GetMemberFromMro(env.site(), c, "f").Equals(NewUnion(intc(1))))
	assert.True(t, GetMemberFromMro(env.site(), c, "g").Equals(NewUnion(strc("x"))))
}
