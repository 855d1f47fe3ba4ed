package pythontype

import (
	"fmt"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
)

// ScopeKind is the kind of block a scope belongs to
type ScopeKind int

const (
	// ModuleScope holds module globals
	ModuleScope ScopeKind = iota
	// ClassScope holds the names assigned in a class body
	ClassScope
	// FunctionScope holds parameters and locals of a function or lambda
	FunctionScope
	// ComprehensionScope holds the targets of a comprehension
	ComprehensionScope
)

func (k ScopeKind) String() string {
	switch k {
	case ModuleScope:
		return "module"
	case ClassScope:
		return "class"
	case FunctionScope:
		return "function"
	case ComprehensionScope:
		return "comprehension"
	default:
		return fmt.Sprintf("invalid(%d)", k)
	}
}

// Scope maps names to bindings for one block. Scopes nest strictly: every
// scope except a module scope has a parent.
type Scope struct {
	Kind   ScopeKind
	Parent *Scope
	Node   pythonast.Node

	// Module is set on module scopes, Class on class scopes and Function on
	// function scopes
	Module   *ModuleInfo
	Class    *ClassInfo
	Function *FunctionAnalysis

	vars      map[string]*VariableDef
	order     []string
	globals   map[string]bool
	nonlocals map[string]bool
}

// NewScope creates an empty scope
func NewScope(kind ScopeKind, parent *Scope, node pythonast.Node) *Scope {
	return &Scope{
		Kind:   kind,
		Parent: parent,
		Node:   node,
		vars:   make(map[string]*VariableDef),
	}
}

// ModuleScope returns the outermost scope
func (s *Scope) ModuleScope() *Scope {
	for s.Parent != nil {
		s = s.Parent
	}
	return s
}

// EnclosingClass returns the class whose body directly contains this scope,
// skipping comprehension scopes, or nil
func (s *Scope) EnclosingClass() *ClassInfo {
	for p := s.Parent; p != nil; p = p.Parent {
		switch p.Kind {
		case ClassScope:
			return p.Class
		case ComprehensionScope:
			continue
		}
		return nil
	}
	return nil
}

// DeclareGlobal redirects name to the module scope
func (s *Scope) DeclareGlobal(name string) {
	if s.globals == nil {
		s.globals = make(map[string]bool)
	}
	s.globals[name] = true
}

// DeclareNonLocal redirects name to the nearest enclosing function scope
func (s *Scope) DeclareNonLocal(name string) {
	if s.nonlocals == nil {
		s.nonlocals = make(map[string]bool)
	}
	s.nonlocals[name] = true
}

// target returns the scope that owns assignments to name from s
func (s *Scope) target(name string) *Scope {
	if s.globals[name] {
		return s.ModuleScope()
	}
	if s.nonlocals[name] {
		for p := s.Parent; p != nil; p = p.Parent {
			if p.Kind != FunctionScope {
				continue
			}
			if _, ok := p.vars[name]; ok {
				return p.target(name)
			}
		}
	}
	return s
}

// Get returns the binding for name in this scope only, following global
// and nonlocal declarations
func (s *Scope) Get(name string) *VariableDef {
	t := s.target(name)
	return t.vars[name]
}

// Declare creates the binding for name in the scope that owns assignments
// to it, or returns the existing one. A binding created earlier by a read
// is kept, so its dependents are preserved.
func (s *Scope) Declare(name string) *VariableDef {
	t := s.target(name)
	if v, ok := t.vars[name]; ok {
		return v
	}
	v := NewVariableDef(name)
	t.vars[name] = v
	t.order = append(t.order, name)
	return v
}

// Lookup resolves a read of name. Enclosing class scopes are skipped for
// nested blocks. It returns nil if no scope binds the name.
func (s *Scope) Lookup(name string) *VariableDef {
	if v := s.Get(name); v != nil {
		return v
	}
	for p := s.Parent; p != nil; p = p.Parent {
		if p.Kind == ClassScope {
			continue
		}
		if v := p.Get(name); v != nil {
			return v
		}
	}
	return nil
}

// LookupOrEphemeral resolves a read of name, creating a hidden binding in
// the module scope if nothing binds it yet. A later assignment to the name
// promotes that binding and re-runs its readers.
func (s *Scope) LookupOrEphemeral(name string) *VariableDef {
	if v := s.Lookup(name); v != nil {
		return v
	}
	m := s.ModuleScope()
	v := newEphemeralDef(name)
	m.vars[name] = v
	m.order = append(m.order, name)
	return v
}

// getOrEphemeral returns the binding for name in this scope, creating a
// hidden one if the name is not bound yet
func (s *Scope) getOrEphemeral(name string) *VariableDef {
	if v := s.Get(name); v != nil {
		return v
	}
	v := newEphemeralDef(name)
	s.vars[name] = v
	s.order = append(s.order, name)
	return v
}

// Names returns the names bound in this scope in declaration order,
// excluding bindings that were only read, were deleted, or were only bound by
// an older version of a module
func (s *Scope) Names() []string {
	var out []string
	for _, name := range s.order {
		if s.vars[name].IsBound() {
			out = append(out, name)
		}
	}
	return out
}

// Variables returns the bindings listed by Names
func (s *Scope) Variables() []*VariableDef {
	var out []*VariableDef
	for _, name := range s.Names() {
		out = append(out, s.vars[name])
	}
	return out
}

// Contains returns true if name is bound in this scope and visible in
// listings
func (s *Scope) Contains(name string) bool {
	v := s.Get(name)
	return v != nil && v.IsBound()
}

// Delete marks the binding for name as deleted
func (s *Scope) Delete(name string) {
	if v := s.Get(name); v != nil {
		v.MarkDeleted()
	}
}
