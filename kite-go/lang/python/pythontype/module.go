package pythontype

import (
	"sort"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
)

// ModuleInfo is the namespace of a source module. It lives as long as its
// entry: the module scope survives edits, and the bindings in it drop the
// contributions made by older versions of the source.
type ModuleInfo struct {
	record
	Entry *ModuleEntry
	Scope *Scope

	// Unit walks the top level of the current version of the module
	Unit *AnalysisUnit

	children   map[string]*ModuleInfo
	unresolved []UnresolvedImport
	version    int
}

// UnresolvedImport is an import statement whose module could not be found
type UnresolvedImport struct {
	Name     string
	Location Location
}

// NewModuleInfo creates the namespace for entry and links it to the entry
func NewModuleInfo(entry *ModuleEntry) *ModuleInfo {
	m := &ModuleInfo{record: newRecord(), Entry: entry}
	m.Scope = NewScope(ModuleScope, nil, entry.Tree)
	m.Scope.Module = m
	entry.Module = m
	return m
}

// Kind implements Namespace
func (m *ModuleInfo) Kind() Kind { return ModuleKind }

// Name implements Namespace
func (m *ModuleInfo) Name() string {
	if m.Entry == nil || m.Entry.Name.Empty() {
		return "module"
	}
	return m.Entry.Name.Last()
}

// NewUnit creates the unit for the current version of the module's source
func (m *ModuleInfo) NewUnit(state *State) *AnalysisUnit {
	m.Scope.Node = m.Entry.Tree
	m.Unit = NewUnit(state, ModuleUnit, m.Entry.Tree, m.Scope, m.Entry, nil)
	return m.Unit
}

// AddChild records a submodule, which becomes reachable as an attribute once
// it has been imported
func (m *ModuleInfo) AddChild(name string, child *ModuleInfo) {
	if m.children == nil {
		m.children = make(map[string]*ModuleInfo)
	}
	m.children[name] = child
}

// Child returns the submodule with the given name
func (m *ModuleInfo) Child(name string) *ModuleInfo {
	return m.children[name]
}

// RemoveChild forgets a submodule
func (m *ModuleInfo) RemoveChild(name string) {
	delete(m.children, name)
}

// ChildNames returns the names of known submodules
func (m *ModuleInfo) ChildNames() []string {
	out := make([]string, 0, len(m.children))
	for name := range m.children {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// AddUnresolvedImport records an import that could not be resolved while
// walking the current version of the module
func (m *ModuleInfo) AddUnresolvedImport(name string, loc Location) {
	m.resetUnresolved()
	for _, u := range m.unresolved {
		if u.Name == name && u.Location == loc {
			return
		}
	}
	m.unresolved = append(m.unresolved, UnresolvedImport{Name: name, Location: loc})
}

// UnresolvedImports returns the unresolved imports of the current version
func (m *ModuleInfo) UnresolvedImports() []UnresolvedImport {
	if m.version != m.Entry.Version() {
		return nil
	}
	return append([]UnresolvedImport(nil), m.unresolved...)
}

func (m *ModuleInfo) resetUnresolved() {
	if v := m.Entry.Version(); m.version != v {
		m.version = v
		m.unresolved = nil
	}
}

// getAttr reads a module attribute. Reading a name the module does not bind
// leaves a hidden binding, so the reader is revisited if the module later
// binds it.
func (m *ModuleInfo) getAttr(site Site, name string) TypeUnion {
	if v := m.Scope.Get(name); v != nil && (v.IsBound() || site.ForEval()) {
		m.reference(site, v)
		return v.TypesFor(site.Unit)
	}
	if child := m.Child(name); child != nil {
		return NewUnion(child)
	}
	switch name {
	case "__name__":
		return NewUnion(Builtins.StrConst(m.Entry.Name.String()))
	case "__file__", "__doc__", "__package__":
		return NewUnion(Builtins.Str.Instance)
	case "__dict__":
		return NewUnion(Builtins.Dict.Instance)
	}
	if site.ForEval() {
		return TypeUnion{}
	}
	v := m.Scope.getOrEphemeral(name)
	m.reference(site, v)
	return v.TypesFor(site.Unit)
}

func (m *ModuleInfo) reference(site Site, v *VariableDef) {
	if !site.ForEval() && !pythonast.IsNil(site.Node) {
		v.AddReference(site.Location())
	}
}

// setAttr assigns a module attribute from outside the module
func (m *ModuleInfo) setAttr(site Site, name string, value TypeUnion) {
	v := m.Scope.Declare(name)
	if !site.ForEval() && !pythonast.IsNil(site.Node) {
		v.AddAssignment(site.Location())
	}
	v.AddTypesLimited(site.Unit, value, site.Limits().AssignedTypes)
}

// MemberNames returns the names bound in the module and its known submodules
func (m *ModuleInfo) MemberNames() []string {
	seen := make(map[string]bool)
	var out []string
	for _, name := range m.Scope.Names() {
		seen[name] = true
		out = append(out, name)
	}
	for _, name := range m.ChildNames() {
		if !seen[name] {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
