package pythonenv

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
	"github.com/spf13/afero"
)

const (
	sourceExt = ".py"
	stubExt   = ".pyi"
	initName  = "__init__"
	stubsDir  = "-stubs"
)

var (
	// identifiers that may name a module or package
	identRegexp = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
)

// ErrNotFound is returned when no file on the search paths provides a module
var ErrNotFound = errors.New("module not found on search paths")

// Candidate is a file that provides a module
type Candidate struct {
	Name      pythonimports.DottedPath
	Path      string
	IsPackage bool
	IsStub    bool
}

// Resolver maps module names to files and files to module names using an
// ordered list of search paths. Earlier search paths take priority.
type Resolver struct {
	fs        afero.Fs
	paths     []string
	useStubs  bool
	stubsOnly bool
}

// NewResolver creates a resolver over fs. Stub handling follows the
// useTypeStubPackages options of limits.
func NewResolver(fs afero.Fs, paths []string, limits pythontype.Limits) *Resolver {
	r := &Resolver{
		fs:        fs,
		useStubs:  limits.UseTypeStubPackages || limits.UseTypeStubPackagesExclusively,
		stubsOnly: limits.UseTypeStubPackagesExclusively,
	}
	for _, p := range paths {
		r.paths = append(r.paths, filepath.Clean(p))
	}
	return r
}

// SearchPaths returns the search paths in priority order
func (r *Resolver) SearchPaths() []string {
	return append([]string(nil), r.paths...)
}

// Fs returns the file system the resolver reads
func (r *Resolver) Fs() afero.Fs { return r.fs }

// IsPythonFile returns true for source and stub files whose base name is a
// valid module name
func IsPythonFile(path string) bool {
	_, _, ok := splitModuleFile(filepath.Base(path))
	return ok
}

// splitModuleFile splits a file name into the module name and whether it is
// a stub
func splitModuleFile(base string) (string, bool, bool) {
	var name string
	var stub bool
	switch {
	case strings.HasSuffix(base, stubExt):
		name, stub = strings.TrimSuffix(base, stubExt), true
	case strings.HasSuffix(base, sourceExt):
		name = strings.TrimSuffix(base, sourceExt)
	default:
		return "", false, false
	}
	if !identRegexp.MatchString(name) {
		return "", false, false
	}
	return name, stub, true
}

// packageName strips the stubs suffix from a directory name
func packageName(dir string) (string, bool) {
	name := strings.TrimSuffix(dir, stubsDir)
	if !identRegexp.MatchString(name) {
		return "", false
	}
	return name, true
}

// ModuleName computes the dotted name of the module stored at path. The
// most specific search path containing the file is used; files outside every
// search path are named by walking up through the enclosing packages.
func (r *Resolver) ModuleName(path string) (Candidate, error) {
	path = filepath.Clean(path)
	name, stub, ok := splitModuleFile(filepath.Base(path))
	if !ok {
		return Candidate{}, errors.Errorf("not a python module: %s", path)
	}
	c := Candidate{Path: path, IsStub: stub}

	var parts []string
	if name == initName {
		c.IsPackage = true
	} else {
		parts = append(parts, name)
	}

	dir := filepath.Dir(path)
	if root := r.rootFor(dir); root != "" {
		rel, err := filepath.Rel(root, dir)
		if err != nil {
			return Candidate{}, errors.Wrapf(err, "error computing module name of %s", path)
		}
		var prefix []string
		if rel != "." {
			for _, comp := range strings.Split(rel, string(filepath.Separator)) {
				pkg, ok := packageName(comp)
				if !ok {
					return Candidate{}, errors.Errorf("%s is not a valid package name in %s", comp, path)
				}
				if pkg != comp {
					c.IsStub = true
				}
				prefix = append(prefix, pkg)
			}
		}
		parts = append(prefix, parts...)
	} else {
		for r.isPackageDir(dir) {
			pkg, ok := packageName(filepath.Base(dir))
			if !ok {
				break
			}
			parts = append([]string{pkg}, parts...)
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	if len(parts) == 0 {
		return Candidate{}, errors.Errorf("cannot name the package at %s", path)
	}
	c.Name = pythonimports.NewPath(parts...)
	return c, nil
}

// rootFor returns the longest search path containing dir
func (r *Resolver) rootFor(dir string) string {
	var best string
	for _, p := range r.paths {
		if p != dir && !strings.HasPrefix(dir, p+string(filepath.Separator)) {
			continue
		}
		if len(p) > len(best) {
			best = p
		}
	}
	return best
}

func (r *Resolver) isPackageDir(dir string) bool {
	return r.exists(filepath.Join(dir, initName+sourceExt)) || r.exists(filepath.Join(dir, initName+stubExt))
}

func (r *Resolver) exists(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && !info.IsDir()
}

func (r *Resolver) isDir(path string) bool {
	info, err := r.fs.Stat(path)
	return err == nil && info.IsDir()
}

// hasStubPackage returns true if some search path holds <head>-stubs
func (r *Resolver) hasStubPackage(head string) bool {
	for _, p := range r.paths {
		if r.isDir(filepath.Join(p, head+stubsDir)) {
			return true
		}
	}
	return false
}

// Find returns the file providing the module name. With stubs enabled,
// <pkg>-stubs packages are searched before the sources and .pyi files win
// over .py files in the same directory. In exclusive mode packages with a
// stubs package are only resolved against it.
func (r *Resolver) Find(name pythonimports.DottedPath) (Candidate, error) {
	if name.Empty() || !name.Valid() {
		return Candidate{}, errors.Errorf("invalid module name %q", name.String())
	}

	head := name.Head()
	stubsOnly := false
	if r.useStubs {
		for _, p := range r.paths {
			if c, ok := r.findIn(filepath.Join(p, head+stubsDir), name.Parts[1:], true); ok {
				c.Name = name
				return c, nil
			}
		}
		stubsOnly = r.stubsOnly && r.hasStubPackage(head)
	}
	if stubsOnly {
		return Candidate{}, ErrNotFound
	}

	for _, p := range r.paths {
		if c, ok := r.findIn(filepath.Join(p, head), name.Parts[1:], false); ok {
			c.Name = name
			return c, nil
		}
	}
	return Candidate{}, ErrNotFound
}

// findIn looks for the module rest below base, where base is the path of
// the top-level package or module without extension
func (r *Resolver) findIn(base string, rest []string, stubPkg bool) (Candidate, bool) {
	p := filepath.Join(append([]string{base}, rest...)...)
	exts := []string{sourceExt}
	if r.useStubs {
		exts = []string{stubExt, sourceExt}
	}
	for _, ext := range exts {
		init := filepath.Join(p, initName+ext)
		if r.exists(init) {
			return Candidate{Path: init, IsPackage: true, IsStub: stubPkg || ext == stubExt}, true
		}
	}
	if stubPkg && len(rest) == 0 {
		// a stubs package is a directory; the bare name is never a module
		return Candidate{}, false
	}
	for _, ext := range exts {
		file := p + ext
		if r.exists(file) {
			return Candidate{Path: file, IsStub: stubPkg || ext == stubExt}, true
		}
	}
	return Candidate{}, false
}

// Walk calls fn for every module file below root, in lexical order. Files
// that cannot be named are skipped. Source files shadowed by a stub with the
// same module name are reported after it and callers may ignore them.
func (r *Resolver) Walk(ctx kitectx.Context, root string, fn func(Candidate) error) error {
	ctx.CheckAbort()
	return afero.Walk(r.fs, root, func(path string, info os.FileInfo, err error) error {
		ctx.CheckAbort()
		if err != nil {
			return errors.Wrapf(err, "error walking %s", path)
		}
		if info.IsDir() {
			if base := filepath.Base(path); path != root && strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsPythonFile(path) {
			return nil
		}
		c, err := r.ModuleName(path)
		if err != nil {
			return nil
		}
		if c.IsStub && !r.useStubs {
			return nil
		}
		return fn(c)
	})
}
