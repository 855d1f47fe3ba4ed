package pythonstatic

import (
	"strings"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonenv"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// loadModule returns the module an absolute import of name yields, reading
// it from the search paths the first time. It returns nil if no file
// provides the module. The caller must hold the write lock.
func (a *Analyzer) loadModule(name pythonimports.DottedPath) *pythontype.ModuleEntry {
	if entry := a.sources.ImportAbs(name); entry != nil {
		return entry
	}
	key := name.String()
	if a.missing[key] {
		return nil
	}

	c, err := a.resolver.Find(name)
	if err != nil {
		if err != pythonenv.ErrNotFound {
			a.recordError(errors.NewHostError("", err, "cannot resolve module %s", key))
		}
		a.missing[key] = true
		return nil
	}
	if entry := a.sources.File(c.Path); entry != nil && !entry.Removed() {
		return entry
	}

	src, err := afero.ReadFile(a.opts.Fs, c.Path)
	if err != nil {
		a.recordError(errors.NewHostError(c.Path, errors.WithStack(err), "cannot read module %s", key))
		a.missing[key] = true
		return nil
	}
	entry, err := a.addLocked(c, src)
	if err != nil {
		a.missing[key] = true
		return nil
	}
	a.logger.Debug("loaded module from search path", zap.String("name", key), zap.String("path", c.Path))
	return entry
}

// importPath loads every prefix of name, linking each module to its parent
// package. The result holds nil from the first module that could not be
// found onwards.
func (w *walker) importPath(name pythonimports.DottedPath, node pythonast.Node) []*pythontype.ModuleEntry {
	out := make([]*pythontype.ModuleEntry, len(name.Parts))
	for i, prefix := range name.Prefixes() {
		mod := w.a.loadModule(prefix)
		if mod == nil {
			w.unresolved(name.String(), node)
			w.a.graph.addWaiting(prefix.String(), w.unit.Entry)
			break
		}
		out[i] = mod
		w.a.graph.addImport(w.unit.Entry, mod)
		if i > 0 {
			out[i-1].Module.AddChild(name.Parts[i], mod.Module)
		}
	}
	return out
}

func (w *walker) unresolved(name string, node pythonast.Node) {
	if w.unit.ForEval {
		return
	}
	w.a.logger.Debug("unresolved import", zap.String("name", name), zap.String("path", w.unit.Entry.Path))
	w.unit.Entry.Module.AddUnresolvedImport(name, w.location(node))
}

// importName walks `import a.b.c`, which binds a, and
// `import a.b.c as d`, which binds d to a.b.c
func (w *walker) importName(s *pythonast.ImportNameStmt) {
	for _, clause := range s.Names {
		if clause.External == nil || len(clause.External.Names) == 0 {
			continue
		}
		name := pythonimports.NewDottedPath(clause.External.Join())
		mods := w.importPath(name, clause.External)

		bound, mod := clause.External.Names[0], mods[0]
		if clause.Internal != nil {
			bound, mod = clause.Internal, mods[len(mods)-1]
		}
		var types pythontype.TypeUnion
		if mod != nil {
			types = pythontype.NewUnion(mod.Module)
		}
		w.bindName(bound, types)
	}
}

// importFrom walks `from x import a, b as c` and `from x import *`.
// Relative imports are resolved against the importing module.
func (w *walker) importFrom(s *pythonast.ImportFromStmt) {
	entry := w.unit.Entry
	var node pythonast.Node = s
	var rel pythonimports.DottedPath
	if s.Package != nil {
		node = s.Package
		rel = pythonimports.NewDottedPath(s.Package.Join())
	}

	target := rel
	if s.Dots > 0 {
		var err error
		target, err = pythonimports.ResolveRelative(entry.Name, entry.IsPackage, s.Dots, rel)
		if err != nil {
			w.unresolved(strings.Repeat(".", s.Dots)+rel.String(), node)
			w.bindUnresolved(s)
			return
		}
	}
	if target.Empty() || !target.Valid() {
		w.bindUnresolved(s)
		return
	}

	mods := w.importPath(target, node)
	mod := mods[len(mods)-1]
	if mod == nil {
		w.bindUnresolved(s)
		return
	}
	if s.Wildcard {
		w.importStar(s, mod, target)
		return
	}
	for _, clause := range s.Names {
		types := w.importedName(mod, target, clause.External.Ident, clause.External)
		bound := clause.Internal
		if bound == nil {
			bound = clause.External
		}
		w.bindName(bound, types)
	}
}

// bindUnresolved binds the names of an import whose module is missing, so
// that they still have definitions
func (w *walker) bindUnresolved(s *pythonast.ImportFromStmt) {
	for _, clause := range s.Names {
		bound := clause.Internal
		if bound == nil {
			bound = clause.External
		}
		w.bindName(bound, pythontype.TypeUnion{})
	}
}

// importedName reads name from an imported module. Packages that do not bind
// the name may provide it as a submodule.
func (w *walker) importedName(mod *pythontype.ModuleEntry, target pythonimports.DottedPath, name string, node pythonast.Node) pythontype.TypeUnion {
	m := mod.Module
	if v := m.Scope.Get(name); (v == nil || !v.IsBound()) && m.Child(name) == nil && mod.IsPackage {
		sub := target.WithTail(name)
		if child := w.a.loadModule(sub); child != nil {
			m.AddChild(name, child.Module)
			w.a.graph.addImport(w.unit.Entry, child)
		} else {
			w.a.graph.addWaiting(sub.String(), w.unit.Entry)
		}
	}
	return pythontype.GetMember(w.site(node), m, name)
}

// importStar binds the names a module exports. The importer is revisited
// when the set of names bound by the module changes.
func (w *walker) importStar(s *pythonast.ImportFromStmt, mod *pythontype.ModuleEntry, target pythonimports.DottedPath) {
	w.a.graph.addStar(w.unit.Entry, mod)
	loc := w.location(s)
	limit := w.limits().AssignedTypes
	for _, name := range w.exportedNames(mod.Module) {
		types := w.importedName(mod, target, name, s)
		v := w.scope.Declare(name)
		v.AddAssignment(loc)
		v.AddTypesLimited(w.unit, types, limit)
	}
}

// exportedNames returns the strings listed in `__all__`, or else the bound
// names that do not start with an underscore
func (w *walker) exportedNames(m *pythontype.ModuleInfo) []string {
	if v := m.Scope.Get("__all__"); v != nil && v.IsBound() {
		site := w.site(nil)
		listed := pythontype.Strings(pythontype.GetEnumeratedTypesUnion(site, v.TypesFor(w.unit)))
		if len(listed) > 0 {
			seen := make(map[string]bool)
			var out []string
			for _, name := range listed {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
			return out
		}
	}
	var out []string
	for _, name := range m.Scope.Names() {
		if !strings.HasPrefix(name, "_") {
			out = append(out, name)
		}
	}
	return out
}
