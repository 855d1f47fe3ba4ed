package pythonenv

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/errors"
)

const (
	// The separator character used in locators
	locatorSep = ";"
	// The regular expression for position locators: file;line;column
	positionLocatorRegexpStr = "^[^;]+;[0-9]+;[0-9]+$"
	// The regular expression for symbol locators: file;line;column;name
	symbolLocatorRegexpStr = "^[^;]+;[0-9]+;[0-9]+;[^;]+$"
)

var (
	positionLocatorRegexp = regexp.MustCompile(positionLocatorRegexpStr)
	symbolLocatorRegexp   = regexp.MustCompile(symbolLocatorRegexpStr)
)

// Position is a 1-based line and column in a file
type Position struct {
	File   string
	Line   int
	Column int
}

// LocatorForPosition returns the locator string for a position
func LocatorForPosition(pos Position) string {
	if pos.File == "" {
		return ""
	}
	return strings.Join([]string{
		encodeFilename(pos.File),
		strconv.Itoa(pos.Line),
		strconv.Itoa(pos.Column),
	}, locatorSep)
}

// PositionOf returns the position of the start of a location. It returns
// false if the location's module has no line index.
func PositionOf(loc pythontype.Location) (Position, bool) {
	if loc.Entry == nil || loc.Entry.Lines == nil {
		return Position{}, false
	}
	line, col := loc.Entry.Lines.Position(loc.Span.From)
	return Position{File: loc.Entry.Path, Line: line, Column: col}, true
}

// Locator returns a string that identifies the start of loc: the encoded
// file name, the line and the column
func Locator(loc pythontype.Location) string {
	pos, ok := PositionOf(loc)
	if !ok {
		return ""
	}
	return LocatorForPosition(pos)
}

// SymbolLocator returns the locator for a name bound or read at loc
func SymbolLocator(loc pythontype.Location, name string) string {
	l := Locator(loc)
	if l == "" || name == "" {
		return ""
	}
	return l + locatorSep + name
}

// IsLocator checks if loc is a valid position or symbol locator
func IsLocator(loc string) bool {
	return IsPositionLocator(loc) || IsSymbolLocator(loc)
}

// IsPositionLocator checks if loc is a valid position locator
func IsPositionLocator(loc string) bool {
	return positionLocatorRegexp.MatchString(loc)
}

// IsSymbolLocator checks if loc is a valid symbol locator. Symbol locators
// must have a non-empty name.
func IsSymbolLocator(loc string) bool {
	return symbolLocatorRegexp.MatchString(loc)
}

// ParseLocator parses loc as either a position or a symbol locator. If it is
// a symbol locator, the returned name is non-empty.
func ParseLocator(loc string) (Position, string, error) {
	if !IsLocator(loc) {
		return Position{}, "", errors.Errorf("invalid locator string: %s", loc)
	}
	parts := strings.Split(loc, locatorSep)
	line, err := strconv.Atoi(parts[1])
	if err != nil {
		return Position{}, "", errors.Errorf("invalid locator string (cannot parse line): %s", loc)
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil {
		return Position{}, "", errors.Errorf("invalid locator string (cannot parse column): %s", loc)
	}
	pos := Position{File: decodeFilename(parts[0]), Line: line, Column: col}

	var name string
	if len(parts) == 4 {
		name = parts[3]
	}
	return pos, name, nil
}

func encodeFilename(f string) string {
	return strings.Replace(strings.Replace(f, ":", "::", -1), "/", ":", -1)
}

func decodeFilename(s string) string {
	parts := strings.Split(s, "::")
	for i := range parts {
		parts[i] = strings.Replace(parts[i], ":", "/", -1)
	}
	return strings.Join(parts, ":")
}
