package pythontype

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnion(t *testing.T) {
	b := Builtins
	a := NewUnion(intc(123), b.Str.Instance)
	c := NewUnion(b.Str.Instance, intc(123), intc(123))
	d := NewUnion(b.Int.Instance, b.Float.Instance)

	assert.True(t, a.Equals(c))
	assert.True(t, c.Equals(a))
	assert.False(t, a.Equals(d))
	assert.Equal(t, 2, c.Len())
}

func TestUnion_Idempotent(t *testing.T) {
	a := NewUnion(intc(1), strc("x"), Builtins.Float.Instance)

	u, changed := a.Union(a)
	assert.False(t, changed)
	assert.True(t, u.Equals(a))

	u, changed = a.Add(intc(1))
	assert.False(t, changed)
	assert.Equal(t, 3, u.Len())
}

func TestUnion_Commutative(t *testing.T) {
	a := NewUnion(intc(1), strc("x"))
	c := NewUnion(Builtins.Float.Instance, intc(2))

	ac := Unite(a, c)
	ca := Unite(c, a)
	assert.True(t, ac.Equals(ca))
	assert.Equal(t, 4, ac.Len())
}

func TestUnion_Empty(t *testing.T) {
	var u TypeUnion
	assert.True(t, u.IsEmpty())
	assert.True(t, u.Equals(NewUnion()))

	u, changed := u.Add(nil)
	assert.False(t, changed)
	assert.True(t, u.IsEmpty())
}

func TestUnion_SameClass(t *testing.T) {
	b := Builtins
	u := NewUnion(intc(1), intc(2), strc("a")).AsStrength(MergeSameClass)
	require.Equal(t, 2, u.Len())
	assert.True(t, u.Contains(b.Int.Instance))
	assert.True(t, u.Contains(b.Str.Instance))
	assert.Equal(t, MergeSameClass, u.Strength())

	// a constant added to a strengthened union collapses into its class
	u, changed := u.Add(intc(99))
	assert.False(t, changed)
	assert.Equal(t, 2, u.Len())
}

func TestUnion_BaseClass(t *testing.T) {
	b := Builtins
	u := NewUnion(b.Bool.Instance, b.Int.Instance, b.Str.Instance).AsStrength(MergeBaseClass)
	require.Equal(t, 2, u.Len())
	assert.True(t, u.Contains(b.Int.Instance))
	assert.True(t, u.Contains(b.Str.Instance))

	u = u.AsStrength(MergeToObject)
	only, ok := u.Only()
	require.True(t, ok)
	assert.Equal(t, Namespace(b.Object.Instance), only)
}

func TestUnion_UserClasses(t *testing.T) {
	env := newTestEnv(t)
	base := env.class("Base")
	x := env.class("X", base)
	y := env.class("Y", base)
	z := env.class("Z")

	u := NewUnion(x.Instance, y.Instance, z.Instance).AsStrength(MergeBaseClass)
	require.Equal(t, 2, u.Len())
	assert.True(t, u.Contains(base.Instance))
	assert.True(t, u.Contains(z.Instance))

	classes := NewUnion(x, y).AsStrength(MergeBaseClass)
	only, ok := classes.Only()
	require.True(t, ok)
	assert.Equal(t, Namespace(base), only)

	classes = NewUnion(x, z, Builtins.Int).AsStrength(MergeToObject)
	only, ok = classes.Only()
	require.True(t, ok)
	assert.Equal(t, Namespace(Builtins.Type), only)
}

func TestUnion_Reduce(t *testing.T) {
	u := NewUnion(intc(1), intc(2), intc(3), strc("a"))

	assert.Equal(t, 4, u.Reduce(0).Len())
	assert.Equal(t, 4, u.Reduce(10).Len())

	r := u.Reduce(2)
	assert.Equal(t, 2, r.Len())
	assert.Equal(t, MergeSameClass, r.Strength())

	r = u.Reduce(1)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, MergeToObject, r.Strength())
}

func TestUnion_MergeCollections(t *testing.T) {
	env := newTestEnv(t)
	l1 := NewListAt(env.site())
	l1.AddElements(env.site(), NewUnion(intc(1)))
	l2 := NewListAt(env.site())
	l2.AddElements(env.site(), NewUnion(strc("a")))

	u := NewUnion(l1, l2)
	assert.Equal(t, 2, u.Len())

	u = u.AsStrength(MergeSameClass)
	only, ok := u.Only()
	require.True(t, ok)
	l := only.(*ListInfo)
	elems := l.Elements.Types()
	assert.True(t, elems.Contains(intc(1)))
	assert.True(t, elems.Contains(strc("a")))
}

func TestUnion_TuplesByArity(t *testing.T) {
	env := newTestEnv(t)
	t1 := NewTupleAt(env.site(), 2)
	t2 := NewTupleAt(env.site(), 2)
	t3 := NewTupleAt(env.site(), 3)

	u := NewUnion(t1, t2, t3).AsStrength(MergeSameClass)
	assert.Equal(t, 2, u.Len())
}

func TestUnion_Filter(t *testing.T) {
	env := newTestEnv(t)
	cls := env.class("A")
	u := NewUnion(cls, cls.Instance, Builtins.Int)
	classes := u.Filter(isClassLike)
	assert.Equal(t, 2, classes.Len())
	assert.False(t, classes.Contains(cls.Instance))
}
