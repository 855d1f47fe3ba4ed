package pythonenv

import (
	"go/token"
	"testing"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFilename(t *testing.T) {
	var filename, expected, actual string

	filename = "example.py"
	expected = "example.py"
	actual = encodeFilename(filename)
	assert.Equal(t, expected, actual)

	filename = "/path/to/example.py"
	expected = ":path:to:example.py"
	actual = encodeFilename(filename)
	assert.Equal(t, expected, actual)

	filename = "another:example.py"
	expected = "another::example.py"
	actual = encodeFilename(filename)
	assert.Equal(t, expected, actual)

	filename = "/path/to/another:example.py"
	expected = ":path:to:another::example.py"
	actual = encodeFilename(filename)
	assert.Equal(t, expected, actual)
}

func TestDecodeFilename(t *testing.T) {
	var encoded, expected, actual string

	encoded = "example.py"
	expected = "example.py"
	actual = decodeFilename(encoded)
	assert.Equal(t, expected, actual)

	encoded = ":path:to:example.py"
	expected = "/path/to/example.py"
	actual = decodeFilename(encoded)
	assert.Equal(t, expected, actual)

	encoded = "another::example.py"
	expected = "another:example.py"
	actual = decodeFilename(encoded)
	assert.Equal(t, expected, actual)

	encoded = ":path:to:another::example.py"
	expected = "/path/to/another:example.py"
	actual = decodeFilename(encoded)
	assert.Equal(t, expected, actual)
}

func testLocation(src string, from int) pythontype.Location {
	entry := pythontype.NewModuleEntry(pythonimports.NewDottedPath("example"), "/path/to/example.py")
	entry.Lines = pythonast.NewLineMap([]byte(src))
	return pythontype.Location{Entry: entry, Span: pythonast.Span{From: token.Pos(from), To: token.Pos(from + 1)}}
}

func TestLocator(t *testing.T) {
	loc := testLocation("x = 1\ny = x\n", 10)
	assert.Equal(t, ":path:to:example.py;2;5", Locator(loc))
	assert.Equal(t, ":path:to:example.py;2;5;x", SymbolLocator(loc, "x"))

	// locations without a line index have no locator
	assert.Equal(t, "", Locator(pythontype.Location{}))
	assert.Equal(t, "", SymbolLocator(loc, ""))
}

func TestIsLocator(t *testing.T) {
	assert.True(t, IsLocator("file;1;2"))
	assert.True(t, IsLocator("file;1;2;name"))
	assert.False(t, IsLocator("file;1"))
	assert.False(t, IsLocator(";1;2"))
	assert.False(t, IsLocator("file;a;2"))

	assert.True(t, IsPositionLocator("file;1;2"))
	assert.False(t, IsPositionLocator("file;1;2;name"))
	assert.True(t, IsSymbolLocator("file;1;2;name"))
	assert.False(t, IsSymbolLocator("file;1;2;"))
}

func TestParseLocator(t *testing.T) {
	pos, name, err := ParseLocator(":path:to:another::example.py;12;4")
	require.NoError(t, err)
	assert.Equal(t, Position{File: "/path/to/another:example.py", Line: 12, Column: 4}, pos)
	assert.Equal(t, "", name)

	pos, name, err = ParseLocator("a.py;1;1;attr")
	require.NoError(t, err)
	assert.Equal(t, "a.py", pos.File)
	assert.Equal(t, "attr", name)

	_, _, err = ParseLocator("not a locator")
	assert.Error(t, err)
}

func TestLocatorRoundTrip(t *testing.T) {
	loc := testLocation("import os\n", 7)
	pos, _, err := ParseLocator(Locator(loc))
	require.NoError(t, err)
	expected, ok := PositionOf(loc)
	require.True(t, ok)
	assert.Equal(t, expected, pos)
}
