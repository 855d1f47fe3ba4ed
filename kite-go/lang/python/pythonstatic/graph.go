package pythonstatic

import (
	"sort"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
)

type entrySet map[*pythontype.ModuleEntry]bool

func (s entrySet) sorted() []*pythontype.ModuleEntry {
	out := make([]*pythontype.ModuleEntry, 0, len(s))
	for e := range s {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out
}

// importGraph records which modules import which. Edges are added as import
// statements are walked and are only dropped when a module is removed.
type importGraph struct {
	// importers maps a module to the modules importing it
	importers map[*pythontype.ModuleEntry]entrySet
	// stars maps a module to the modules star-importing it
	stars map[*pythontype.ModuleEntry]entrySet
	// waiting maps a module name that could not be found to its importers
	waiting map[string]entrySet
	// names is the number of names a module bound the last time it ran
	names map[*pythontype.ModuleEntry]int
}

func newImportGraph() *importGraph {
	return &importGraph{
		importers: make(map[*pythontype.ModuleEntry]entrySet),
		stars:     make(map[*pythontype.ModuleEntry]entrySet),
		waiting:   make(map[string]entrySet),
		names:     make(map[*pythontype.ModuleEntry]int),
	}
}

func addEdge(m map[*pythontype.ModuleEntry]entrySet, to, from *pythontype.ModuleEntry) {
	if to == from {
		return
	}
	s := m[to]
	if s == nil {
		s = make(entrySet)
		m[to] = s
	}
	s[from] = true
}

func (g *importGraph) addImport(importer, imported *pythontype.ModuleEntry) {
	addEdge(g.importers, imported, importer)
}

func (g *importGraph) addStar(importer, imported *pythontype.ModuleEntry) {
	addEdge(g.importers, imported, importer)
	addEdge(g.stars, imported, importer)
}

func (g *importGraph) addWaiting(name string, importer *pythontype.ModuleEntry) {
	s := g.waiting[name]
	if s == nil {
		s = make(entrySet)
		g.waiting[name] = s
	}
	s[importer] = true
}

// resolved returns and forgets the modules waiting for name
func (g *importGraph) resolved(name string) []*pythontype.ModuleEntry {
	s, ok := g.waiting[name]
	if !ok {
		return nil
	}
	delete(g.waiting, name)
	return s.sorted()
}

func (g *importGraph) importersOf(e *pythontype.ModuleEntry) []*pythontype.ModuleEntry {
	return g.importers[e].sorted()
}

func (g *importGraph) starImportersOf(e *pythontype.ModuleEntry) []*pythontype.ModuleEntry {
	return g.stars[e].sorted()
}

// namesChanged records the number of names bound by a module and returns
// true if it differs from the previous run
func (g *importGraph) namesChanged(e *pythontype.ModuleEntry, n int) bool {
	prev, ok := g.names[e]
	g.names[e] = n
	return !ok || prev != n
}

// remove drops every edge touching e and returns the modules that imported it
func (g *importGraph) remove(e *pythontype.ModuleEntry) []*pythontype.ModuleEntry {
	importers := g.importersOf(e)
	delete(g.importers, e)
	delete(g.stars, e)
	delete(g.names, e)
	for _, m := range []map[*pythontype.ModuleEntry]entrySet{g.importers, g.stars} {
		for _, s := range m {
			delete(s, e)
		}
	}
	for name, s := range g.waiting {
		delete(s, e)
		if len(s) == 0 {
			delete(g.waiting, name)
		}
	}
	return importers
}

// definitions indexes the classes and functions created while walking one
// version of a module, so that queries can find the units evaluating a
// position
type definitions struct {
	version   int
	classes   map[pythonast.Node][]*pythontype.ClassInfo
	functions map[pythonast.Node][]*pythontype.FunctionInfo
}

func (a *Analyzer) definitionsFor(entry *pythontype.ModuleEntry) *definitions {
	d := a.defs[entry]
	if d == nil || d.version != entry.Version() {
		d = &definitions{
			version:   entry.Version(),
			classes:   make(map[pythonast.Node][]*pythontype.ClassInfo),
			functions: make(map[pythonast.Node][]*pythontype.FunctionInfo),
		}
		a.defs[entry] = d
	}
	return d
}

func (d *definitions) addClass(c *pythontype.ClassInfo) {
	for _, e := range d.classes[c.Node] {
		if e == c {
			return
		}
	}
	d.classes[c.Node] = append(d.classes[c.Node], c)
}

func (d *definitions) addFunction(f *pythontype.FunctionInfo) {
	node := f.Node()
	for _, e := range d.functions[node] {
		if e == f {
			return
		}
	}
	d.functions[node] = append(d.functions[node], f)
}

// moduleUnitDone revisits star importers when the set of names bound by a
// module changed
func (a *Analyzer) moduleUnitDone(u *pythontype.AnalysisUnit) {
	entry := u.Entry
	if entry.Module == nil || entry.Module.Unit != u {
		return
	}
	if !a.graph.namesChanged(entry, len(entry.Module.Scope.Names())) {
		return
	}
	for _, importer := range a.graph.starImportersOf(entry) {
		a.enqueueModule(importer, pythontype.NormalPriority)
	}
}
