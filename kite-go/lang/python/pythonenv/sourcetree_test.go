package pythonenv

import (
	"testing"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(name, path string, pkg, stub bool) *pythontype.ModuleEntry {
	e := pythontype.NewModuleEntry(pythonimports.NewDottedPath(name), path)
	e.IsPackage = pkg
	e.IsStub = stub
	return e
}

func TestSourceTree(t *testing.T) {
	st := NewSourceTree()
	st.PreferStubs = true

	a := entry("a", "/src/a/__init__.py", true, false)
	b := entry("a.b", "/src/a/b.py", false, false)
	bStub := entry("a.b", "/src/a/b.pyi", false, true)
	c := entry("c", "/src/c.py", false, false)
	for _, e := range []*pythontype.ModuleEntry{a, bStub, b, c} {
		st.AddFile(e)
	}

	assert.Len(t, st.Files, 4)
	assert.True(t, st.File("/src/a/../a/b.py") == b)
	assert.True(t, st.ImportAbs(pythonimports.NewDottedPath("a.b")) == bStub)
	assert.Equal(t, []string{"a", "c"}, st.ListAbs())

	pkg, err := st.Package("/src/a/b.py")
	require.NoError(t, err)
	assert.True(t, pkg == a)
	_, err = st.Package("/src/c.py")
	assert.Error(t, err)

	// the source takes over the name when the stub goes away
	assert.True(t, st.RemoveFile("/src/a/b.pyi") == bStub)
	assert.True(t, st.ImportAbs(pythonimports.NewDottedPath("a.b")) == b)
	assert.Nil(t, st.RemoveFile("/src/a/b.pyi"))
}

func TestSourceTree_WithoutStubPreference(t *testing.T) {
	st := NewSourceTree()
	bStub := entry("a.b", "/src/a/b.pyi", false, true)
	b := entry("a.b", "/src/a/b.py", false, false)
	st.AddFile(bStub)
	st.AddFile(b)
	assert.True(t, st.ImportAbs(pythonimports.NewDottedPath("a.b")) == b)
}

func TestSourceTree_ImportRel(t *testing.T) {
	st := NewSourceTree()
	a := entry("a", "/src/a/__init__.py", true, false)
	b := entry("a.b", "/src/a/b.py", false, false)
	c := entry("a.c", "/src/a/c.py", false, false)
	st.AddFile(a)
	st.AddFile(b)
	st.AddFile(c)

	// from . import c, issued by a.b
	name, found, err := st.ImportRel(b, 1, pythonimports.DottedPath{})
	require.NoError(t, err)
	assert.Equal(t, "a", name.String())
	assert.True(t, found == a)

	// from .c import x
	name, found, err = st.ImportRel(b, 1, pythonimports.NewDottedPath("c"))
	require.NoError(t, err)
	assert.Equal(t, "a.c", name.String())
	assert.True(t, found == c)

	// from .b import x, issued by the package itself
	name, found, err = st.ImportRel(a, 1, pythonimports.NewDottedPath("b"))
	require.NoError(t, err)
	assert.Equal(t, "a.b", name.String())
	assert.True(t, found == b)

	// unknown modules resolve to a name but no entry
	name, found, err = st.ImportRel(b, 1, pythonimports.NewDottedPath("missing"))
	require.NoError(t, err)
	assert.Equal(t, "a.missing", name.String())
	assert.Nil(t, found)

	_, _, err = st.ImportRel(b, 3, pythonimports.DottedPath{})
	assert.Equal(t, pythonimports.ErrBeyondTopLevel, err)
}

func TestSourceTree_Flatten(t *testing.T) {
	st := NewSourceTree()
	st.PreferStubs = true
	st.AddFile(entry("a.b", "/src/a/b.py", false, false))
	st.AddFile(entry("a.b", "/src/a/b.pyi", false, true))

	flat := st.Flatten()
	require.Len(t, flat.Files, 2)
	assert.Equal(t, FlatItem{Name: "a.b", Path: "/src/a/b.py", Shadowed: true, Version: 1}, flat.Files[0])
	assert.Equal(t, FlatItem{Name: "a.b", Path: "/src/a/b.pyi", IsStub: true, Version: 1}, flat.Files[1])
}
