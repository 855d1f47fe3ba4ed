package pythonstatic

import (
	"testing"
	"time"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonenv"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func unresolvedNames(m *ModuleAnalysis) []string {
	var out []string
	for _, u := range m.UnresolvedImports() {
		out = append(out, u.Name)
	}
	return out
}

func TestImports(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/mod.py":      "def g():\n    return 'a'\n",
		"main.py": `
import pkg.mod
from pkg.mod import g
from pkg import mod as m2
import pkg.mod as m3

x = g()
y = pkg.mod
z = m2.g()
w = m3
`,
	})
	m := s.add("main.py")
	pos := end(m)

	assert.Equal(t, "str", describe(m.TypesOfName("x", pos)))
	assert.Equal(t, "module pkg.mod", describe(m.TypesOfName("y", pos)))
	assert.Equal(t, "str", describe(m.TypesOfName("z", pos)))
	assert.Equal(t, "module pkg.mod", describe(m.TypesOfName("w", pos)))
	assert.Equal(t, "module pkg", describe(m.TypesOfName("pkg", pos)))
	assert.Empty(t, m.UnresolvedImports())

	require.NotNil(t, s.a.Module(s.path("pkg/mod.py")))
}

func TestRelativeImports(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"pkg/__init__.py": "from .sub import value\n",
		"pkg/sub.py":      "value = 1.5\n",
		"pkg/other.py":    "from . import sub\nfrom .sub import value as v\nfrom ... import nothing\n",
	})
	pkg := s.add("pkg/__init__.py")
	assert.Equal(t, "float", describe(pkg.TypesOfName("value", end(pkg))))

	other := s.add("pkg/other.py")
	assert.Equal(t, "module pkg.sub", describe(other.TypesOfName("sub", end(other))))
	assert.Equal(t, "float", describe(other.TypesOfName("v", end(other))))
	assert.Equal(t, []string{"..."}, unresolvedNames(other))
}

func TestStarImports(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"exported.py": "__all__ = ['a', '_c']\na = 1\nb = 2\n_c = 'x'\n",
		"plain.py":    "d = 1\n_e = 2\n",
		"main.py":     "from exported import *\nfrom plain import *\n",
	})
	m := s.add("main.py")

	names := m.Names()
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "_c")
	assert.NotContains(t, names, "b")
	assert.Contains(t, names, "d")
	assert.NotContains(t, names, "_e")
	assert.Equal(t, "str", describe(m.TypesOfName("_c", end(m))))
}

func TestStarImportSeesNewNames(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"lib.py":  "a = 1\n",
		"main.py": "from lib import *\n",
	})
	m := s.add("main.py")
	assert.NotContains(t, m.Names(), "b")

	s.update("lib.py", "a = 1\nb = 'x'\n")
	assert.Contains(t, m.Names(), "b")
	assert.Equal(t, "str", describe(m.TypesOfName("b", end(m))))
}

func TestUnresolvedImports(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"main.py": "import missing.mod\nfrom nowhere import z\nx = z\n",
	})
	m := s.add("main.py")
	assert.Equal(t, []string{"missing.mod", "nowhere"}, unresolvedNames(m))

	// the name is still defined by the import
	defs, err := m.Definitions("z", end(m))
	require.NoError(t, err)
	assert.Len(t, defs, 1)

	// adding the module resolves the import
	s.write("nowhere.py", "z = 1\n")
	require.NoError(t, s.a.AddModule(s.path("nowhere.py"), []byte("z = 1\n")))
	s.wait()
	assert.Equal(t, []string{"missing.mod"}, unresolvedNames(m))
	assert.Equal(t, "int", describe(m.TypesOfName("x", end(m))))
}

func TestSetSearchPaths(t *testing.T) {
	s := newTestSession(t, map[string]string{"main.py": "import extra\nx = extra.v\n"})
	require.NoError(t, afero.WriteFile(s.fs, "/lib/extra.py", []byte("v = 1\n"), 0644))
	m := s.add("main.py")
	assert.Equal(t, []string{"extra"}, unresolvedNames(m))

	s.a.SetSearchPaths(testRoot, "/lib")
	s.wait()
	assert.Equal(t, []string{"/src", "/lib"}, s.a.SearchPaths())
	assert.Empty(t, m.UnresolvedImports())
	assert.Equal(t, "int", describe(m.TypesOfName("x", end(m))))
}

func TestUpdatePropagates(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"lib.py":  "def f():\n    return 1\n",
		"main.py": "from lib import f\nx = f()\n",
	})
	m := s.add("main.py")
	assert.Equal(t, "int", describe(m.TypesOfName("x", end(m))))

	s.update("lib.py", "def f():\n    return 'a'\n")
	assert.Equal(t, "str", describe(m.TypesOfName("x", end(m))))
}

func TestUpdateReplacesImportedConstants(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"lib.py":  "y = 1\n",
		"mid.py":  "from lib import y\n",
		"main.py": "from mid import y\nz = y\n",
	})
	m := s.add("main.py")
	assert.Equal(t, "int", describe(m.TypesOfName("z", end(m))))

	s.update("lib.py", "y = 'a'\n")
	assert.Equal(t, "str", describe(m.TypesOfName("z", end(m))))
}

func TestRemoveModule(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"pkg/__init__.py": "",
		"pkg/lib.py":      "y = 1\n",
		"main.py":         "import pkg.lib\nx = pkg.lib.y\n",
	})
	m := s.add("main.py")
	assert.Equal(t, "int", describe(m.TypesOfName("x", end(m))))

	require.NoError(t, s.fs.Remove(s.path("pkg/lib.py")))
	assert.True(t, s.a.RemoveModule(s.path("pkg/lib.py")))
	assert.False(t, s.a.RemoveModule(s.path("pkg/lib.py")))
	s.wait()

	assert.Nil(t, s.a.Module(s.path("pkg/lib.py")))
	assert.Equal(t, "", describe(m.TypesOfName("x", end(m))))
	assert.Equal(t, []string{"pkg.lib"}, unresolvedNames(m))
}

func TestApplyEvents(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"lib.py":  "y = 1\n",
		"main.py": "from lib import y\n",
	})
	m := s.add("main.py")

	s.write("lib.py", "y = 'a'\n")
	require.NoError(t, s.a.ApplyEvents([]pythonenv.Event{{Path: s.path("lib.py"), Type: pythonenv.ModifiedEvent}}))
	s.wait()
	assert.Equal(t, "str", describe(m.TypesOfName("y", end(m))))

	require.NoError(t, s.fs.Remove(s.path("lib.py")))
	err := s.a.ApplyEvents([]pythonenv.Event{
		{Path: s.path("gone.py"), Type: pythonenv.ModifiedEvent},
		{Path: s.path("lib.py"), Type: pythonenv.RemovedEvent},
	})
	assert.Error(t, err)
	s.wait()
	assert.Nil(t, s.a.Module(s.path("lib.py")))
}

func TestQueriesInsideFunctions(t *testing.T) {
	src := `
def f(a, b=1.5):
    c = [a]
    return c

f("s")
`
	s := newTestSession(t, map[string]string{"main.py": src})
	m := s.add("main.py")

	inside := m.Offset(4, 5)
	assert.Equal(t, "str", describe(m.TypesOfName("a", inside)))
	assert.Equal(t, "float", describe(m.TypesOfName("b", inside)))

	types, err := m.TypesOf("c[0]", inside)
	require.NoError(t, err)
	assert.Equal(t, "str", describe(types))

	// a is not bound at the top level
	assert.Equal(t, "", describe(m.TypesOfName("a", end(m))))

	sigs, err := m.Signatures("f", end(m))
	require.NoError(t, err)
	require.Len(t, sigs, 1)
	assert.Equal(t, "f", sigs[0].Name)
	assert.Equal(t, []string{"a", "b=float"}, sigs[0].Params)
	assert.Equal(t, "list", sigs[0].Returns)
}

func TestDescriptions(t *testing.T) {
	s := newTestSession(t, map[string]string{"main.py": "x = [1, 2]\nclass A(object):\n    pass\n"})
	m := s.add("main.py")

	descs, err := m.Descriptions("x", end(m))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, Description{Short: "list", Long: "list[int]"}, descs[0])

	descs, err = m.Descriptions("A", end(m))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "class A", descs[0].Short)
	assert.Equal(t, "class A(object)", descs[0].Long)

	_, err = m.Descriptions("x = ", end(m))
	assert.Error(t, err)
}

func TestQueriesAreCached(t *testing.T) {
	s := newTestSession(t, map[string]string{"main.py": "x = 1\n"})
	m := s.add("main.py")

	first, err := m.TypesOf("x", end(m))
	require.NoError(t, err)
	n := s.a.cache.Len()
	second, err := m.TypesOf("x", end(m))
	require.NoError(t, err)
	assert.True(t, first.Equals(second))
	assert.Equal(t, n, s.a.cache.Len())

	// an edit starts a new generation
	s.update("main.py", "x = 'a'\n")
	third, err := m.TypesOf("x", end(m))
	require.NoError(t, err)
	assert.Equal(t, "str", describe(third))
}

func TestQueriesBuiltOnTypesReturn(t *testing.T) {
	s := newTestSession(t, map[string]string{"main.py": "x = 1\ndef f(a):\n    return a\n"})
	m := s.add("main.py")

	done := make(chan struct{})
	go func() {
		defer close(done)
		descs, err := m.Descriptions("x", end(m))
		assert.NoError(t, err)
		assert.Len(t, descs, 1)
		_, err = m.Signatures("f", end(m))
		assert.NoError(t, err)
		_, err = m.Members("x", end(m))
		assert.NoError(t, err)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("queries did not return")
	}

	// the analysis can still take the write lock
	s.update("main.py", "x = 'a'\n")
	descs, err := m.Descriptions("x", end(m))
	require.NoError(t, err)
	require.Len(t, descs, 1)
	assert.Equal(t, "str", descs[0].Short)
}

func TestReferencesAndDefinitions(t *testing.T) {
	src := `x = 1
x = 2
y = x + x

class A(object):
    def __init__(self):
        self.v = x

a = A()
w = a.v
`
	s := newTestSession(t, map[string]string{"main.py": src})
	m := s.add("main.py")

	defs, err := m.Definitions("x", end(m))
	require.NoError(t, err)
	require.Len(t, defs, 2)
	assert.Equal(t, 1, defs[0].Line())
	assert.Equal(t, 2, defs[1].Line())

	refs, err := m.References("x", end(m))
	require.NoError(t, err)
	require.Len(t, refs, 3)
	assert.Equal(t, []int{3, 3, 7}, []int{refs[0].Line(), refs[1].Line(), refs[2].Line()})

	defs, err = m.Definitions("a.v", end(m))
	require.NoError(t, err)
	require.Len(t, defs, 1)
	assert.Equal(t, 7, defs[0].Line())

	refs, err = m.References("a.v", end(m))
	require.NoError(t, err)
	require.Len(t, refs, 1)
	assert.Equal(t, 10, refs[0].Line())
	assert.True(t, pythonenv.IsPositionLocator(pythonenv.Locator(refs[0])))
}

func TestMembersOfModules(t *testing.T) {
	s := newTestSession(t, map[string]string{
		"lib.py":  "a = 1\ndef f():\n    pass\n",
		"main.py": "import lib\n",
	})
	m := s.add("main.py")

	members, err := m.Members("lib", end(m))
	require.NoError(t, err)
	assert.Contains(t, members, "a")
	assert.Contains(t, members, "f")

	members, err = m.Members("'s'", end(m))
	require.NoError(t, err)
	assert.Contains(t, members, "upper")
}

func TestCustomDecorators(t *testing.T) {
	src := `
def wrap(f):
    return 1

@wrap
def g():
    return "s"
`
	limits := pythontype.DefaultLimits()
	limits.ProcessCustomDecorators = false
	s := newTestSessionWithLimits(t, limits, map[string]string{"main.py": src})
	m := s.add("main.py")
	assert.Equal(t, "function g", describe(m.TypesOfName("g", end(m))))

	s = newTestSession(t, map[string]string{"main.py": src})
	m = s.add("main.py")
	assert.Equal(t, "int", describe(m.TypesOfName("g", end(m))))
}

func TestCloseStopsAnalysis(t *testing.T) {
	s := newTestSession(t, map[string]string{"main.py": "x = 1\n"})
	s.add("main.py")
	s.a.Close()
	assert.False(t, s.a.IsAnalyzing())

	// units queued after Close are ignored
	require.NoError(t, s.a.UpdateModule(s.path("main.py"), []byte("x = 2\n")))
	assert.False(t, s.a.IsAnalyzing())
}
