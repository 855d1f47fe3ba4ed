package pythonenv

import (
	"path/filepath"
	"sort"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/errors"
)

// SourceTree indexes the module entries of an analysis session by file path
// and by module name. It is not safe for concurrent use.
type SourceTree struct {
	Files map[string]*pythontype.ModuleEntry // Files maps file paths to modules
	Names map[string]*pythontype.ModuleEntry // Names maps dotted names to the module importing them yields

	// PreferStubs makes a stub keep its name when a source file with the
	// same module name is added
	PreferStubs bool
}

// NewSourceTree constructs an empty source tree
func NewSourceTree() *SourceTree {
	return &SourceTree{
		Files: make(map[string]*pythontype.ModuleEntry),
		Names: make(map[string]*pythontype.ModuleEntry),
	}
}

// AddFile inserts a module into the source tree. A module already known
// under the same name is shadowed unless it is a stub and stubs are
// preferred.
func (t *SourceTree) AddFile(entry *pythontype.ModuleEntry) {
	t.Files[filepath.Clean(entry.Path)] = entry
	name := entry.Name.String()
	if cur, ok := t.Names[name]; ok && cur != entry && !t.shadows(entry, cur) {
		return
	}
	t.Names[name] = entry
}

// shadows returns true if entry should take the name of cur
func (t *SourceTree) shadows(entry, cur *pythontype.ModuleEntry) bool {
	if t.PreferStubs && cur.IsStub != entry.IsStub {
		return entry.IsStub
	}
	return true
}

// RemoveFile drops the module stored at path and returns it. If another
// file provides the same module name it takes over the name.
func (t *SourceTree) RemoveFile(path string) *pythontype.ModuleEntry {
	path = filepath.Clean(path)
	entry, ok := t.Files[path]
	if !ok {
		return nil
	}
	delete(t.Files, path)

	name := entry.Name.String()
	if t.Names[name] != entry {
		return entry
	}
	delete(t.Names, name)
	for _, other := range t.sortedFiles() {
		if other.Name.String() == name {
			t.AddFile(other)
		}
	}
	return entry
}

// File returns the module stored at path
func (t *SourceTree) File(path string) *pythontype.ModuleEntry {
	return t.Files[filepath.Clean(path)]
}

// ImportAbs finds the module an absolute import of name yields
func (t *SourceTree) ImportAbs(name pythonimports.DottedPath) *pythontype.ModuleEntry {
	return t.Names[name.String()]
}

// ImportRel resolves the name of a relative import such as
// "from ..foo import bar" issued by importer. The module itself is returned
// when it is known.
func (t *SourceTree) ImportRel(importer *pythontype.ModuleEntry, dots int, rel pythonimports.DottedPath) (pythonimports.DottedPath, *pythontype.ModuleEntry, error) {
	name, err := pythonimports.ResolveRelative(importer.Name, importer.IsPackage, dots, rel)
	if err != nil {
		return pythonimports.DottedPath{}, nil, err
	}
	return name, t.ImportAbs(name), nil
}

// ListAbs returns the sorted names of the top-level modules and packages
func (t *SourceTree) ListAbs() []string {
	seen := make(map[string]bool)
	var out []string
	for _, entry := range t.Names {
		head := entry.Name.Head()
		if !seen[head] {
			seen[head] = true
			out = append(out, head)
		}
	}
	sort.Strings(out)
	return out
}

// Package returns the package containing the module at path
func (t *SourceTree) Package(path string) (*pythontype.ModuleEntry, error) {
	entry := t.File(path)
	if entry == nil {
		return nil, errors.Errorf("unable to find module for path `%s`", path)
	}
	parent := entry.Name.Predecessor()
	if parent.Empty() {
		return nil, errors.Errorf("module `%s` is not in a package", entry.Name.String())
	}
	pkg := t.ImportAbs(parent)
	if pkg == nil {
		return nil, errors.Errorf("unable to find package `%s`", parent.String())
	}
	return pkg, nil
}

func (t *SourceTree) sortedFiles() []*pythontype.ModuleEntry {
	paths := make([]string, 0, len(t.Files))
	for p := range t.Files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	out := make([]*pythontype.ModuleEntry, 0, len(paths))
	for _, p := range paths {
		out = append(out, t.Files[p])
	}
	return out
}

// Entries returns every module in path order
func (t *SourceTree) Entries() []*pythontype.ModuleEntry {
	return t.sortedFiles()
}

// Flatten creates a flat listing of this source tree suitable for printing
func (t *SourceTree) Flatten() FlatSourceTree {
	var ft FlatSourceTree
	for _, entry := range t.sortedFiles() {
		ft.Files = append(ft.Files, FlatItem{
			Name:      entry.Name.String(),
			Path:      entry.Path,
			IsPackage: entry.IsPackage,
			IsStub:    entry.IsStub,
			Shadowed:  t.Names[entry.Name.String()] != entry,
			Version:   entry.Version(),
		})
	}
	return ft
}
