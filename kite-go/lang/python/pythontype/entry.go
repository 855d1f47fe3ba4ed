package pythontype

import (
	"sync/atomic"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
)

// ModuleEntry is one source file known to the analyzer. Its version is bumped
// every time the file's syntax tree is replaced, which invalidates the units
// created for the old tree and the types those units contributed.
type ModuleEntry struct {
	Name      pythonimports.DottedPath
	Path      string
	IsPackage bool
	IsStub    bool

	// Tree and Lines describe the current version of the source
	Tree  *pythonast.Module
	Lines *pythonast.LineMap

	// Module is the namespace for the module. It survives updates, so that
	// importers keep referring to the same namespace.
	Module *ModuleInfo

	version int64
	removed int32
}

// NewModuleEntry creates an entry at version 1
func NewModuleEntry(name pythonimports.DottedPath, path string) *ModuleEntry {
	return &ModuleEntry{Name: name, Path: path, version: 1}
}

// Version returns the current version of the entry
func (e *ModuleEntry) Version() int {
	if e == nil {
		return 0
	}
	return int(atomic.LoadInt64(&e.version))
}

// Bump starts a new version of the entry
func (e *ModuleEntry) Bump() int {
	return int(atomic.AddInt64(&e.version, 1))
}

// Remove marks the entry as removed from the analysis
func (e *ModuleEntry) Remove() {
	atomic.StoreInt32(&e.removed, 1)
}

// Removed returns true once the entry has been removed
func (e *ModuleEntry) Removed() bool {
	return e != nil && atomic.LoadInt32(&e.removed) == 1
}

// live returns true if information recorded at version by e is still valid.
// A nil entry stands for information that never goes stale, such as the
// builtins.
func (e *ModuleEntry) live(version int) bool {
	if e == nil {
		return true
	}
	return !e.Removed() && e.Version() == version
}

// Location identifies a span of source in a module
type Location struct {
	Entry *ModuleEntry
	Span  pythonast.Span
}

// Line returns the 1-based line of the start of the location, or 0 if the
// entry has no line map
func (l Location) Line() int {
	if l.Entry == nil || l.Entry.Lines == nil {
		return 0
	}
	line, _ := l.Entry.Lines.Position(l.Span.From)
	return line
}
