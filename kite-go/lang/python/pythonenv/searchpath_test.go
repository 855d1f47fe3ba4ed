package pythonenv

import (
	"path/filepath"
	"testing"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireFs(t *testing.T, files map[string]string) afero.Fs {
	fs := afero.NewMemMapFs()
	for path, src := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(src), 0644))
	}
	return fs
}

func noStubs() pythontype.Limits {
	limits := pythontype.DefaultLimits()
	limits.UseTypeStubPackages = false
	return limits
}

func TestResolver_ModuleName(t *testing.T) {
	fs := requireFs(t, map[string]string{
		"/src/a/__init__.py":     "",
		"/src/a/b.py":            "",
		"/src/top.py":            "",
		"/src/a-stubs/b.pyi":     "",
		"/other/pkg/__init__.py": "",
		"/other/pkg/mod.py":      "",
	})
	r := NewResolver(fs, []string{"/src"}, pythontype.DefaultLimits())

	type tc struct {
		path      string
		name      string
		isPackage bool
		isStub    bool
	}
	for _, c := range []tc{
		{"/src/a/b.py", "a.b", false, false},
		{"/src/a/__init__.py", "a", true, false},
		{"/src/top.py", "top", false, false},
		{"/src/a-stubs/b.pyi", "a.b", false, true},
		// outside the search paths, enclosing packages give the name
		{"/other/pkg/mod.py", "pkg.mod", false, false},
	} {
		cand, err := r.ModuleName(c.path)
		require.NoError(t, err, c.path)
		assert.Equal(t, c.name, cand.Name.String(), c.path)
		assert.Equal(t, c.isPackage, cand.IsPackage, c.path)
		assert.Equal(t, c.isStub, cand.IsStub, c.path)
	}

	_, err := r.ModuleName("/src/1bad.py")
	assert.Error(t, err)
	_, err = r.ModuleName("/src/a/notes.txt")
	assert.Error(t, err)
	_, err = r.ModuleName("/src/__init__.py")
	assert.Error(t, err)
}

func TestResolver_Find(t *testing.T) {
	fs := requireFs(t, map[string]string{
		"/src/a/__init__.py": "",
		"/src/a/b.py":        "",
		"/src/a/b.pyi":       "",
		"/src/c.py":          "",
		"/lib/c.py":          "",
		"/lib/d.py":          "",
	})
	r := NewResolver(fs, []string{"/src", "/lib"}, pythontype.DefaultLimits())

	type tc struct {
		name   string
		path   string
		isStub bool
	}
	for _, c := range []tc{
		{"a", "/src/a/__init__.py", false},
		{"a.b", "/src/a/b.pyi", true},
		{"c", "/src/c.py", false},
		{"d", "/lib/d.py", false},
	} {
		cand, err := r.Find(pythonimports.NewDottedPath(c.name))
		require.NoError(t, err, c.name)
		assert.Equal(t, c.path, cand.Path, c.name)
		assert.Equal(t, c.isStub, cand.IsStub, c.name)
		assert.Equal(t, c.name, cand.Name.String())
	}

	_, err := r.Find(pythonimports.NewDottedPath("missing"))
	assert.Equal(t, ErrNotFound, err)
	_, err = r.Find(pythonimports.DottedPath{})
	assert.Error(t, err)

	// without stubs the source is used
	r = NewResolver(fs, []string{"/src", "/lib"}, noStubs())
	cand, err := r.Find(pythonimports.NewDottedPath("a.b"))
	require.NoError(t, err)
	assert.Equal(t, "/src/a/b.py", cand.Path)
}

func TestResolver_StubPackages(t *testing.T) {
	fs := requireFs(t, map[string]string{
		"/site/requests/__init__.py":        "",
		"/site/requests/api.py":             "",
		"/site/requests/models.py":          "",
		"/site/requests-stubs/__init__.pyi": "",
		"/site/requests-stubs/api.pyi":      "",
	})
	paths := []string{"/site"}

	find := func(r *Resolver, name string) (string, error) {
		cand, err := r.Find(pythonimports.NewDottedPath(name))
		return cand.Path, err
	}

	r := NewResolver(fs, paths, pythontype.DefaultLimits())
	path, err := find(r, "requests")
	require.NoError(t, err)
	assert.Equal(t, "/site/requests-stubs/__init__.pyi", path)
	path, err = find(r, "requests.api")
	require.NoError(t, err)
	assert.Equal(t, "/site/requests-stubs/api.pyi", path)
	// modules the stubs do not cover come from the sources
	path, err = find(r, "requests.models")
	require.NoError(t, err)
	assert.Equal(t, "/site/requests/models.py", path)

	exclusive := pythontype.DefaultLimits()
	exclusive.UseTypeStubPackagesExclusively = true
	r = NewResolver(fs, paths, exclusive)
	_, err = find(r, "requests.models")
	assert.Equal(t, ErrNotFound, err)
	path, err = find(r, "requests.api")
	require.NoError(t, err)
	assert.Equal(t, "/site/requests-stubs/api.pyi", path)

	r = NewResolver(fs, paths, noStubs())
	path, err = find(r, "requests")
	require.NoError(t, err)
	assert.Equal(t, "/site/requests/__init__.py", path)
}

func TestResolver_Walk(t *testing.T) {
	fs := requireFs(t, map[string]string{
		"/src/a/__init__.py": "",
		"/src/a/b.py":        "",
		"/src/a/b.pyi":       "",
		"/src/.hidden/x.py":  "",
		"/src/readme.md":     "",
	})

	walk := func(r *Resolver) []string {
		var names []string
		err := r.Walk(kitectx.Background(), "/src", func(c Candidate) error {
			names = append(names, c.Path)
			return nil
		})
		require.NoError(t, err)
		return names
	}

	r := NewResolver(fs, []string{"/src"}, pythontype.DefaultLimits())
	assert.Equal(t, []string{"/src/a/__init__.py", "/src/a/b.py", "/src/a/b.pyi"}, walk(r))

	r = NewResolver(fs, []string{"/src"}, noStubs())
	assert.Equal(t, []string{"/src/a/__init__.py", "/src/a/b.py"}, walk(r))
}

func TestIsPythonFile(t *testing.T) {
	assert.True(t, IsPythonFile("/a/b.py"))
	assert.True(t, IsPythonFile("b.pyi"))
	assert.True(t, IsPythonFile("__init__.py"))
	assert.False(t, IsPythonFile("b.pyc"))
	assert.False(t, IsPythonFile("my-module.py"))
	assert.False(t, IsPythonFile("/a/b"))
}
