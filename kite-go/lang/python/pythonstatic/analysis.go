package pythonstatic

import (
	"go/token"
	"sort"
	"strings"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonparser"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
)

// ModuleAnalysis answers queries about one module of a session. Queries
// see the analysis as far as it has progressed; they wait for the unit
// being run, if any, but not for the queue to drain.
type ModuleAnalysis struct {
	a     *Analyzer
	entry *pythontype.ModuleEntry
}

// Description holds the short and long descriptions of a namespace
type Description struct {
	Short string
	Long  string
}

// Module returns the analysis of the module stored at path, or nil if the
// module is unknown
func (a *Analyzer) Module(path string) *ModuleAnalysis {
	a.mu.RLock()
	defer a.mu.RUnlock()
	entry := a.sources.File(path)
	if entry == nil || entry.Removed() {
		return nil
	}
	return &ModuleAnalysis{a: a, entry: entry}
}

// Path returns the file the module is stored at
func (m *ModuleAnalysis) Path() string { return m.entry.Path }

// Name returns the dotted name of the module
func (m *ModuleAnalysis) Name() string { return m.entry.Name.String() }

// Offset converts a 1-based line and column to a position in the module's
// current source
func (m *ModuleAnalysis) Offset(line, col int) token.Pos {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	if m.entry.Lines == nil {
		return token.NoPos
	}
	return m.entry.Lines.Offset(line, col)
}

// Tree returns the syntax tree of the current version of the module
func (m *ModuleAnalysis) Tree() *pythonast.Module {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	return m.entry.Tree
}

// Names returns the names bound at the top level of the module
func (m *ModuleAnalysis) Names() []string {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	if m.entry.Module == nil {
		return nil
	}
	return m.entry.Module.Scope.Names()
}

// UnresolvedImports returns the imports of the current version of the
// module whose modules could not be found
func (m *ModuleAnalysis) UnresolvedImports() []pythontype.UnresolvedImport {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	if m.entry.Module == nil {
		return nil
	}
	return m.entry.Module.UnresolvedImports()
}

// TypesOf evaluates a python expression as if it appeared at pos
func (m *ModuleAnalysis) TypesOf(expr string, pos token.Pos) (pythontype.TypeUnion, error) {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	return m.typesOf(expr, pos)
}

// TypesOfName returns the types of a name as seen at pos
func (m *ModuleAnalysis) TypesOfName(name string, pos token.Pos) pythontype.TypeUnion {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	res, _ := m.cached(nameQuery, name, pos, func() (interface{}, error) {
		return m.eval(&pythonast.NameExpr{Ident: name}, pos), nil
	})
	return res.(pythontype.TypeUnion)
}

// Descriptions describes each namespace an expression may evaluate to
func (m *ModuleAnalysis) Descriptions(expr string, pos token.Pos) ([]Description, error) {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	res, err := m.cached(descriptionQuery, expr, pos, func() (interface{}, error) {
		types, err := m.typesOf(expr, pos)
		if err != nil {
			return nil, err
		}
		var out []Description
		for _, ns := range types.Types() {
			out = append(out, Description{
				Short: pythontype.ShortDescription(ns),
				Long:  pythontype.LongDescription(ns),
			})
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]Description), nil
}

// Signatures returns the ways an expression may be called
func (m *ModuleAnalysis) Signatures(expr string, pos token.Pos) ([]pythontype.Signature, error) {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	res, err := m.cached(signatureQuery, expr, pos, func() (interface{}, error) {
		types, err := m.typesOf(expr, pos)
		if err != nil {
			return nil, err
		}
		var out []pythontype.Signature
		for _, ns := range types.Types() {
			out = append(out, pythontype.Signatures(ns)...)
		}
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]pythontype.Signature), nil
}

// Members returns the sorted attribute names of what an expression may
// evaluate to
func (m *ModuleAnalysis) Members(expr string, pos token.Pos) ([]string, error) {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	res, err := m.cached(memberQuery, expr, pos, func() (interface{}, error) {
		types, err := m.typesOf(expr, pos)
		if err != nil {
			return nil, err
		}
		seen := make(map[string]bool)
		var out []string
		for _, ns := range types.Types() {
			for _, name := range memberNames(ns) {
				if !seen[name] {
					seen[name] = true
					out = append(out, name)
				}
			}
		}
		sort.Strings(out)
		return out, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]string), nil
}

func memberNames(ns pythontype.Namespace) []string {
	switch ns := ns.(type) {
	case *pythontype.ClassInfo:
		return ns.Members()
	case *pythontype.InstanceInfo:
		return append(ns.AttrNames(), ns.Class.Members()...)
	case *pythontype.ModuleInfo:
		return ns.MemberNames()
	case *pythontype.BuiltinModule:
		return ns.MemberNames()
	case *pythontype.BuiltinClass:
		return ns.MemberNames()
	}
	if cls, ok := pythontype.TypeOf(ns).(*pythontype.BuiltinClass); ok {
		return cls.MemberNames()
	}
	return nil
}

// References returns the places a name is read. Dotted names such as
// "self.x" or "mod.f" find the references of an attribute.
func (m *ModuleAnalysis) References(name string, pos token.Pos) ([]pythontype.Location, error) {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	res, err := m.cached(referenceQuery, name, pos, func() (interface{}, error) {
		defs, err := m.bindings(name, pos)
		if err != nil {
			return nil, err
		}
		var locs []pythontype.Location
		for _, v := range defs {
			locs = append(locs, v.References()...)
		}
		return sortLocations(locs), nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]pythontype.Location), nil
}

// Definitions returns the places a name is assigned, including parameters,
// imports and definitions by def and class statements
func (m *ModuleAnalysis) Definitions(name string, pos token.Pos) ([]pythontype.Location, error) {
	m.a.mu.RLock()
	defer m.a.mu.RUnlock()
	res, err := m.cached(definitionQuery, name, pos, func() (interface{}, error) {
		defs, err := m.bindings(name, pos)
		if err != nil {
			return nil, err
		}
		var locs []pythontype.Location
		for _, v := range defs {
			locs = append(locs, v.Definitions()...)
		}
		return sortLocations(locs), nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]pythontype.Location), nil
}

// bindings finds the bindings a name refers to at pos
func (m *ModuleAnalysis) bindings(name string, pos token.Pos) ([]*pythontype.VariableDef, error) {
	var out []*pythontype.VariableDef
	add := func(v *pythontype.VariableDef) {
		if v == nil {
			return
		}
		for _, e := range out {
			if e == v {
				return
			}
		}
		out = append(out, v)
	}

	if i := strings.LastIndex(name, "."); i > 0 {
		obj, err := m.typesOf(name[:i], pos)
		if err != nil {
			return nil, err
		}
		attr := name[i+1:]
		for _, ns := range obj.Types() {
			switch ns := ns.(type) {
			case *pythontype.InstanceInfo:
				add(ns.Attr(attr))
				add(ns.Class.Scope.Get(attr))
			case *pythontype.ClassInfo:
				add(ns.Scope.Get(attr))
			case *pythontype.ModuleInfo:
				add(ns.Scope.Get(attr))
			}
		}
		return out, nil
	}

	for _, u := range m.unitsAt(pos) {
		add(u.Scope.Lookup(name))
	}
	return out, nil
}

func sortLocations(locs []pythontype.Location) []pythontype.Location {
	seen := make(map[pythontype.Location]bool)
	var out []pythontype.Location
	for _, loc := range locs {
		if !seen[loc] {
			seen[loc] = true
			out = append(out, loc)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Entry != b.Entry {
			return entryPath(a.Entry) < entryPath(b.Entry)
		}
		return a.Span.From < b.Span.From
	})
	return out
}

func entryPath(e *pythontype.ModuleEntry) string {
	if e == nil {
		return ""
	}
	return e.Path
}

// -- evaluation

type queryKind int

const (
	typesQuery queryKind = iota
	nameQuery
	descriptionQuery
	signatureQuery
	memberQuery
	referenceQuery
	definitionQuery
)

// cacheKey identifies a query result. Results are only reused while no unit
// has run and no module has changed since they were computed.
type cacheKey struct {
	generation uint64
	entry      *pythontype.ModuleEntry
	kind       queryKind
	text       string
	pos        token.Pos
}

// cached returns the result of compute for the query, computing it at most
// once per generation. Errors are not cached. The caller must hold the read
// lock.
func (m *ModuleAnalysis) cached(kind queryKind, text string, pos token.Pos, compute func() (interface{}, error)) (interface{}, error) {
	key := cacheKey{generation: m.a.generation, entry: m.entry, kind: kind, text: text, pos: pos}
	if m.a.cache != nil {
		if res, ok := m.a.cache.Get(key); ok {
			return res, nil
		}
	}

	res, err := compute()
	if err != nil {
		return nil, err
	}
	if m.a.cache != nil {
		m.a.cache.Add(key, res)
	}
	return res, nil
}

func (m *ModuleAnalysis) typesOf(expr string, pos token.Pos) (pythontype.TypeUnion, error) {
	res, err := m.cached(typesQuery, expr, pos, func() (interface{}, error) {
		e, err := parseExpr(expr)
		if err != nil {
			return nil, err
		}
		return m.eval(e, pos), nil
	})
	if err != nil {
		return pythontype.TypeUnion{}, err
	}
	return res.(pythontype.TypeUnion), nil
}

// parseExpr parses the text of a single python expression
func parseExpr(expr string) (pythonast.Expr, error) {
	mod, err := pythonparser.Parse(kitectx.Background(), []byte(expr), pythonparser.Options{
		ErrorMode: pythonparser.FailFast,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "cannot parse expression %q", expr)
	}
	if mod == nil || len(mod.Body) != 1 {
		return nil, errors.Errorf("not a single expression: %q", expr)
	}
	stmt, ok := mod.Body[0].(*pythonast.ExprStmt)
	if !ok {
		return nil, errors.Errorf("not an expression: %q", expr)
	}
	return stmt.Value, nil
}

// eval evaluates e in every unit that evaluates pos, without changing the
// analysis
func (m *ModuleAnalysis) eval(e pythonast.Expr, pos token.Pos) pythontype.TypeUnion {
	m.a.evalMu.Lock()
	defer m.a.evalMu.Unlock()

	var out pythontype.TypeUnion
	for _, u := range m.unitsAt(pos) {
		w := newWalker(kitectx.Background(), m.a, u.CopyForEval())
		out, _ = out.Union(w.expr(e))
	}
	return out
}

// unitsAt returns the units that evaluate the code at pos: the module unit,
// the bodies of enclosing classes, every analysis of enclosing functions and
// lambdas, and enclosing comprehensions
func (m *ModuleAnalysis) unitsAt(pos token.Pos) []*pythontype.AnalysisUnit {
	entry := m.entry
	if entry.Module == nil || entry.Module.Unit == nil || entry.Tree == nil {
		return nil
	}
	units := []*pythontype.AnalysisUnit{entry.Module.Unit}

	defs := m.a.defs[entry]
	if defs != nil && defs.version != entry.Version() {
		defs = nil
	}

	path := pythonast.EnclosingNodes(entry.Tree, pos)
	for i, n := range path {
		var next pythonast.Node
		if i+1 < len(path) {
			next = path[i+1]
		}
		var inner []*pythontype.AnalysisUnit
		switch n := n.(type) {
		case *pythonast.ClassDefStmt:
			if defs == nil || !inBody(next, n.Body) {
				continue
			}
			for _, c := range defs.classes[n] {
				inner = append(inner, c.Unit)
			}
		case *pythonast.FunctionDefStmt:
			if defs == nil || !(inBody(next, n.Body) || isParameterName(next, pos)) {
				continue
			}
			inner = analysisUnits(defs.functions[n])
		case *pythonast.LambdaExpr:
			if defs == nil || !(next == pythonast.Node(n.Body) || isParameterName(next, pos)) {
				continue
			}
			inner = analysisUnits(defs.functions[n])
		case pythonast.Comprehension:
			if gens := n.Base().Generators; len(gens) > 0 && !pythonast.IsNil(gens[0].Iterable) && gens[0].Iterable.Begin() <= pos && pos <= gens[0].Iterable.End() {
				continue
			}
			for _, u := range units {
				if c := u.Child(n); c != nil {
					inner = append(inner, c)
				}
			}
		}
		if len(inner) > 0 {
			units = inner
		}
	}
	return units
}

func inBody(n pythonast.Node, body []pythonast.Stmt) bool {
	for _, s := range body {
		if pythonast.Node(s) == n {
			return true
		}
	}
	return false
}

func isParameterName(n pythonast.Node, pos token.Pos) bool {
	switch p := n.(type) {
	case *pythonast.Parameter:
		return p.Name != nil && p.Name.Contains(pos)
	case *pythonast.ArgsParameter:
		return true
	}
	return false
}

func analysisUnits(funcs []*pythontype.FunctionInfo) []*pythontype.AnalysisUnit {
	var out []*pythontype.AnalysisUnit
	for _, f := range funcs {
		for _, fa := range f.Analyses() {
			out = append(out, fa.Unit)
		}
	}
	return out
}
