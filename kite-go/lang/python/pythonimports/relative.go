package pythonimports

import (
	"github.com/kiteco/pyinfer/kite-golib/errors"
)

// ErrBeyondTopLevel is returned for a relative import with more leading dots
// than the importing module has enclosing packages
var ErrBeyondTopLevel = errors.New("attempted relative import beyond top-level package")

// ResolveRelative computes the absolute name targeted by `from <dots><rel> import ...`
// issued from the module importer. isPackage is true when importer is the
// __init__ module of a package, in which case one dot names the package itself.
func ResolveRelative(importer DottedPath, isPackage bool, dots int, rel DottedPath) (DottedPath, error) {
	if dots == 0 {
		return rel, nil
	}

	base := importer.Parts
	if !isPackage {
		if len(base) == 0 {
			return DottedPath{}, ErrBeyondTopLevel
		}
		base = base[:len(base)-1]
	}
	up := dots - 1
	if up > len(base) {
		return DottedPath{}, ErrBeyondTopLevel
	}
	base = base[:len(base)-up]
	if len(base) == 0 && rel.Empty() {
		return DottedPath{}, ErrBeyondTopLevel
	}

	parts := make([]string, 0, len(base)+len(rel.Parts))
	parts = append(parts, base...)
	parts = append(parts, rel.Parts...)
	return NewPath(parts...), nil
}
