package pythonparser

import (
	"testing"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireParse(t *testing.T, src string) *pythonast.Module {
	mod, err := Parse(kitectx.Background(), []byte(src), Options{NoCache: true})
	require.NoError(t, err)
	require.NotNil(t, mod)
	return mod
}

func TestAssign(t *testing.T) {
	mod := requireParse(t, "x = y = 1\n")
	require.Len(t, mod.Body, 1)

	assign, ok := mod.Body[0].(*pythonast.AssignStmt)
	require.True(t, ok)
	require.Len(t, assign.Targets, 2)
	assert.Equal(t, "x", assign.Targets[0].(*pythonast.NameExpr).Ident)
	assert.Equal(t, "y", assign.Targets[1].(*pythonast.NameExpr).Ident)
	assert.Equal(t, pythonast.Assign, assign.Targets[0].(*pythonast.NameExpr).Usage)
	assert.Equal(t, "1", assign.Value.(*pythonast.NumberExpr).Literal)
}

func TestTupleAssign(t *testing.T) {
	mod := requireParse(t, "a, b = 1, 'x'\n")
	assign := mod.Body[0].(*pythonast.AssignStmt)

	target, ok := assign.Targets[0].(*pythonast.TupleExpr)
	require.True(t, ok)
	assert.Len(t, target.Elts, 2)
	assert.Equal(t, pythonast.Assign, pythonast.GetUsage(target.Elts[1]))

	value, ok := assign.Value.(*pythonast.TupleExpr)
	require.True(t, ok)
	require.Len(t, value.Elts, 2)
	str := value.Elts[1].(*pythonast.StringExpr)
	assert.Equal(t, "x", str.Value)
	assert.Equal(t, pythonast.Str, str.Kind)
}

func TestSingleTargets(t *testing.T) {
	src := `
a = f(1)
b, = xs
c += 1
del d
`
	mod := requireParse(t, src)
	require.Len(t, mod.Body, 4)

	assign := mod.Body[0].(*pythonast.AssignStmt)
	require.Len(t, assign.Targets, 1)
	name, ok := assign.Targets[0].(*pythonast.NameExpr)
	require.True(t, ok, "target is %T", assign.Targets[0])
	assert.Equal(t, "a", name.Ident)
	_, ok = assign.Value.(*pythonast.CallExpr)
	assert.True(t, ok, "value is %T", assign.Value)

	// a trailing comma makes a tuple
	unpack := mod.Body[1].(*pythonast.AssignStmt)
	tuple, ok := unpack.Targets[0].(*pythonast.TupleExpr)
	require.True(t, ok, "target is %T", unpack.Targets[0])
	assert.Len(t, tuple.Elts, 1)

	aug := mod.Body[2].(*pythonast.AugAssignStmt)
	_, ok = aug.Target.(*pythonast.NameExpr)
	assert.True(t, ok, "target is %T", aug.Target)

	del := mod.Body[3].(*pythonast.DelStmt)
	require.Len(t, del.Targets, 1)
	_, ok = del.Targets[0].(*pythonast.NameExpr)
	assert.True(t, ok, "target is %T", del.Targets[0])
}

func TestAugAssign(t *testing.T) {
	mod := requireParse(t, "x += 2\n")
	aug, ok := mod.Body[0].(*pythonast.AugAssignStmt)
	require.True(t, ok)
	assert.Equal(t, pythonast.Add, aug.Op)
}

func TestFunctionDef(t *testing.T) {
	src := `
def f(a, b=1, *args, c, **kw):
    return a
`
	mod := requireParse(t, src)
	require.Len(t, mod.Body, 1)
	def, ok := mod.Body[0].(*pythonast.FunctionDefStmt)
	require.True(t, ok)

	assert.Equal(t, "f", def.Name.Ident)
	require.Len(t, def.Parameters, 3)
	assert.Equal(t, "a", def.Parameters[0].Name.Ident)
	assert.Equal(t, "b", def.Parameters[1].Name.Ident)
	assert.NotNil(t, def.Parameters[1].Default)
	assert.Equal(t, "c", def.Parameters[2].Name.Ident)
	assert.True(t, def.Parameters[2].KeywordOnly)
	require.NotNil(t, def.Vararg)
	assert.Equal(t, "args", def.Vararg.Name.Ident)
	require.NotNil(t, def.Kwarg)
	assert.Equal(t, "kw", def.Kwarg.Name.Ident)

	require.Len(t, def.Body, 1)
	ret, ok := def.Body[0].(*pythonast.ReturnStmt)
	require.True(t, ok)
	value, ok := ret.Value.(*pythonast.NameExpr)
	require.True(t, ok, "return value is %T", ret.Value)
	assert.Equal(t, "a", value.Ident)
}

func TestOneLineBodies(t *testing.T) {
	mod := requireParse(t, "def ident(x): return x\nclass A: y = 1\n")
	require.Len(t, mod.Body, 2)

	def := mod.Body[0].(*pythonast.FunctionDefStmt)
	require.Len(t, def.Body, 1)
	_, ok := def.Body[0].(*pythonast.ReturnStmt)
	assert.True(t, ok)

	class := mod.Body[1].(*pythonast.ClassDefStmt)
	require.Len(t, class.Body, 1)
	_, ok = class.Body[0].(*pythonast.AssignStmt)
	assert.True(t, ok)
}

func TestDecoratedClass(t *testing.T) {
	src := `
@decorate
class C(A, B):
    x = 1
`
	mod := requireParse(t, src)
	require.Len(t, mod.Body, 1)
	class, ok := mod.Body[0].(*pythonast.ClassDefStmt)
	require.True(t, ok)
	assert.Equal(t, "C", class.Name.Ident)
	require.Len(t, class.Args, 2)
	assert.Equal(t, "A", class.Args[0].Value.(*pythonast.NameExpr).Ident)
	require.Len(t, class.Decorators, 1)
	assert.Equal(t, "decorate", class.Decorators[0].(*pythonast.NameExpr).Ident)
	assert.Len(t, class.Body, 1)
}

func TestImports(t *testing.T) {
	src := `
import os.path, json as j
from ..pkg import a, b as c
from x import *
`
	mod := requireParse(t, src)
	require.Len(t, mod.Body, 3)

	imp := mod.Body[0].(*pythonast.ImportNameStmt)
	require.Len(t, imp.Names, 2)
	assert.Equal(t, "os.path", imp.Names[0].External.Join())
	assert.Nil(t, imp.Names[0].Internal)
	assert.Equal(t, "json", imp.Names[1].External.Join())
	assert.Equal(t, "j", imp.Names[1].Internal.Ident)

	from := mod.Body[1].(*pythonast.ImportFromStmt)
	assert.Equal(t, 2, from.Dots)
	assert.Equal(t, "pkg", from.Package.Join())
	require.Len(t, from.Names, 2)
	assert.Equal(t, "a", from.Names[0].External.Ident)
	assert.Equal(t, "c", from.Names[1].Internal.Ident)

	wild := mod.Body[2].(*pythonast.ImportFromStmt)
	assert.True(t, wild.Wildcard)
	assert.Equal(t, "x", wild.Package.Join())
}

func TestCallArguments(t *testing.T) {
	mod := requireParse(t, "f(1, *xs, k=2, **kw)\n")
	stmt := mod.Body[0].(*pythonast.ExprStmt)
	call := stmt.Value.(*pythonast.CallExpr)
	require.Len(t, call.Args, 4)
	assert.Equal(t, pythonast.PositionalArg, call.Args[0].Kind)
	assert.Equal(t, pythonast.ListSplatArg, call.Args[1].Kind)
	assert.Equal(t, pythonast.KeywordArg, call.Args[2].Kind)
	assert.Equal(t, "k", call.Args[2].Name.Ident)
	assert.Equal(t, pythonast.DictSplatArg, call.Args[3].Kind)
}

func TestChainedComparison(t *testing.T) {
	mod := requireParse(t, "a < b < c\n")
	expr := mod.Body[0].(*pythonast.ExprStmt).Value.(*pythonast.BinaryExpr)
	assert.Equal(t, pythonast.And, expr.Op)
	assert.Equal(t, pythonast.Lt, expr.Left.(*pythonast.BinaryExpr).Op)
	assert.Equal(t, pythonast.Lt, expr.Right.(*pythonast.BinaryExpr).Op)
}

func TestNotIn(t *testing.T) {
	mod := requireParse(t, "a not in b\n")
	expr := mod.Body[0].(*pythonast.ExprStmt).Value.(*pythonast.BinaryExpr)
	assert.Equal(t, pythonast.NotIn, expr.Op)
}

func TestComprehension(t *testing.T) {
	mod := requireParse(t, "[x for x, y in pairs if x]\n")
	comp, ok := mod.Body[0].(*pythonast.ExprStmt).Value.(*pythonast.ListComprehensionExpr)
	require.True(t, ok)
	require.Len(t, comp.Generators, 1)
	gen := comp.Generators[0]
	assert.Len(t, gen.Vars, 2)
	assert.Equal(t, "pairs", gen.Iterable.(*pythonast.NameExpr).Ident)
	assert.Len(t, gen.Filters, 1)
}

func TestYield(t *testing.T) {
	src := `
def g():
    yield 1
    yield from h()
`
	mod := requireParse(t, src)
	def := mod.Body[0].(*pythonast.FunctionDefStmt)
	require.Len(t, def.Body, 2)

	first := def.Body[0].(*pythonast.ExprStmt).Value.(*pythonast.YieldExpr)
	assert.False(t, first.From)
	second := def.Body[1].(*pythonast.ExprStmt).Value.(*pythonast.YieldExpr)
	assert.True(t, second.From)
	_, ok := second.Value.(*pythonast.CallExpr)
	assert.True(t, ok)
}

func TestControlFlow(t *testing.T) {
	src := `
if a:
    pass
elif b:
    pass
else:
    x = 1
for i in xs:
    break
while c:
    continue
try:
    pass
except ValueError as e:
    pass
finally:
    pass
with open(p) as f:
    pass
`
	mod := requireParse(t, src)
	require.Len(t, mod.Body, 5)

	ifStmt := mod.Body[0].(*pythonast.IfStmt)
	require.Len(t, ifStmt.Branches, 2)
	assert.Len(t, ifStmt.Branches[0].Body, 1)
	assert.Equal(t, "a", ifStmt.Branches[0].Condition.(*pythonast.NameExpr).Ident)
	assert.Len(t, ifStmt.Branches[1].Body, 1)
	assert.Equal(t, "b", ifStmt.Branches[1].Condition.(*pythonast.NameExpr).Ident)
	assert.Len(t, ifStmt.Else, 1)

	forStmt := mod.Body[1].(*pythonast.ForStmt)
	require.Len(t, forStmt.Targets, 1)
	assert.Equal(t, "i", forStmt.Targets[0].(*pythonast.NameExpr).Ident)
	assert.Equal(t, "xs", forStmt.Iterable.(*pythonast.NameExpr).Ident)
	assert.Len(t, forStmt.Body, 1)

	while, ok := mod.Body[2].(*pythonast.WhileStmt)
	require.True(t, ok)
	assert.Len(t, while.Body, 1)

	try := mod.Body[3].(*pythonast.TryStmt)
	assert.Len(t, try.Body, 1)
	require.Len(t, try.Handlers, 1)
	assert.Len(t, try.Handlers[0].Body, 1)
	assert.Equal(t, "ValueError", try.Handlers[0].Type.(*pythonast.NameExpr).Ident)
	assert.Equal(t, "e", try.Handlers[0].Target.(*pythonast.NameExpr).Ident)
	assert.Len(t, try.Finally, 1)

	with := mod.Body[4].(*pythonast.WithStmt)
	assert.Len(t, with.Body, 1)
	require.Len(t, with.Items, 1)
	assert.Equal(t, "f", with.Items[0].Target.(*pythonast.NameExpr).Ident)
}

func TestSyntaxError(t *testing.T) {
	src := []byte("def f(:\n    pass\nx = 1\n")

	mod, err := Parse(kitectx.Background(), src, Options{ErrorMode: FailFast, NoCache: true})
	assert.Error(t, err)
	assert.Nil(t, mod)

	mod, err = Parse(kitectx.Background(), src, Options{ErrorMode: Recover, NoCache: true})
	assert.Error(t, err)
	assert.NotNil(t, mod)
}

func TestParseString(t *testing.T) {
	kind, value := parseString(`b'abc'`)
	assert.Equal(t, pythonast.Bytes, kind)
	assert.Equal(t, "abc", value)

	kind, value = parseString(`"""doc"""`)
	assert.Equal(t, pythonast.Str, kind)
	assert.Equal(t, "doc", value)

	kind, _ = parseString(`f"{x}"`)
	assert.Equal(t, pythonast.FormatString, kind)
}

func TestParseCache(t *testing.T) {
	PurgeParseCache()
	assert.Equal(t, 0, parseCache.Len())

	contents := []byte("x = 1\n")
	_, ok := getCachedParse(contents, Recover)
	assert.False(t, ok)

	first, err := Parse(kitectx.Background(), contents, Options{ErrorMode: Recover})
	require.NoError(t, err)
	assert.Equal(t, 1, parseCache.Len())

	second, err := Parse(kitectx.Background(), contents, Options{ErrorMode: Recover})
	require.NoError(t, err)
	assert.True(t, first == second, "expected the cached module")
	assert.Equal(t, 1, parseCache.Len())

	PurgeParseCache()
	assert.Equal(t, 0, parseCache.Len())
}
