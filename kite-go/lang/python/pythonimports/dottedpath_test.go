package pythonimports

import (
	"testing"

	spooky "github.com/dgryski/go-spooky"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDottedPath(t *testing.T) {
	p := NewDottedPath("abc.def.ghi")

	assert.Len(t, p.Parts, 3)
	assert.Equal(t, "abc", p.Parts[0])
	assert.Equal(t, "def", p.Parts[1])
	assert.Equal(t, "ghi", p.Parts[2])

	assert.EqualValues(t, spooky.Hash64([]byte("abc.def.ghi")), p.Hash)
	assert.Equal(t, p.Hash, NewPath("abc", "def", "ghi").Hash)

	assert.Equal(t, "abc.def.ghi", p.String())

	assert.Equal(t, "abc", p.Head())
	assert.Equal(t, "ghi", p.Last())
	assert.Equal(t, "abc.def", p.Predecessor().String())

	assert.True(t, p.Equals("abc.def.ghi"))
	assert.False(t, p.Equals(""))
	assert.False(t, p.Equals("abc.def"))
	assert.False(t, p.Equals("abc.def.ghi.jkl"))

	assert.False(t, p.Empty())
	assert.True(t, p.Valid())
}

func TestDottedPath_Empty(t *testing.T) {
	p := NewDottedPath("")
	assert.Len(t, p.Parts, 0)
	assert.EqualValues(t, 0, p.Hash)
	assert.Equal(t, "", p.String())
	assert.Equal(t, "", p.Head())
	assert.True(t, p.Equals(""))
	assert.True(t, p.Empty())
	assert.True(t, p.Predecessor().Empty())
}

func TestPrefixes(t *testing.T) {
	var got []string
	for _, p := range NewDottedPath("a.b.c").Prefixes() {
		got = append(got, p.String())
	}
	assert.Equal(t, []string{"a", "a.b", "a.b.c"}, got)
}

func TestResolveRelative(t *testing.T) {
	type tc struct {
		importer  string
		isPackage bool
		dots      int
		rel       string
		expected  string
	}

	for _, c := range []tc{
		{"pkg.mod", false, 0, "os", "os"},
		{"pkg.mod", false, 1, "", "pkg"},
		{"pkg.mod", false, 1, "sibling", "pkg.sibling"},
		{"pkg.sub.mod", false, 2, "other", "pkg.other"},
		{"pkg", true, 1, "mod", "pkg.mod"},
		{"pkg.sub", true, 2, "", "pkg"},
	} {
		got, err := ResolveRelative(NewDottedPath(c.importer), c.isPackage, c.dots, NewDottedPath(c.rel))
		require.NoError(t, err, "%+v", c)
		assert.Equal(t, c.expected, got.String(), "%+v", c)
	}

	_, err := ResolveRelative(NewDottedPath("mod"), false, 2, NewDottedPath("x"))
	assert.Equal(t, ErrBeyondTopLevel, err)
}
