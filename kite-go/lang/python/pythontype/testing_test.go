package pythontype

import (
	"testing"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-golib/rollbar"
)

// testQueue records every unit that was enqueued
type testQueue struct {
	units []*AnalysisUnit
}

func (q *testQueue) Enqueue(u *AnalysisUnit, p Priority) {
	q.units = append(q.units, u)
}

func (q *testQueue) contains(u *AnalysisUnit) bool {
	for _, x := range q.units {
		if x == u {
			return true
		}
	}
	return false
}

type testEnv struct {
	t      *testing.T
	queue  *testQueue
	state  *State
	entry  *ModuleEntry
	module *ModuleInfo
	unit   *AnalysisUnit
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithLimits(t, DefaultLimits())
}

func newTestEnvWithLimits(t *testing.T, limits Limits) *testEnv {
	q := &testQueue{}
	state := NewState(limits, nil, q)
	entry := NewModuleEntry(pythonimports.NewDottedPath("test"), "test.py")
	entry.Tree = &pythonast.Module{}
	mod := NewModuleInfo(entry)
	return &testEnv{
		t:      t,
		queue:  q,
		state:  state,
		entry:  entry,
		module: mod,
		unit:   mod.NewUnit(state),
	}
}

// site returns a site at a node of its own, so that namespaces created there
// do not collide with namespaces created at other sites
func (e *testEnv) site() Site {
	return Site{Unit: e.unit, Node: &pythonast.NameExpr{Ident: "_"}}
}

// evalSite returns a site in a query copy of the module unit
func (e *testEnv) evalSite() Site {
	return Site{Unit: e.unit.CopyForEval(), Node: &pythonast.NameExpr{Ident: "_"}}
}

func (e *testEnv) class(name string, bases ...Namespace) *ClassInfo {
	node := &pythonast.ClassDefStmt{Name: &pythonast.NameExpr{Ident: name}}
	site := Site{Unit: e.unit, Node: node}
	cls, created := NewClassAt(site, node, e.module.Scope)
	if !created {
		e.t.Fatalf("class %s created twice", name)
	}
	var us []TypeUnion
	for _, b := range bases {
		us = append(us, NewUnion(b))
	}
	cls.SetBases(site, us)
	e.module.Scope.Declare(name).AddTypes(e.unit, NewUnion(cls))
	return cls
}

// member binds name in the body of cls
func (e *testEnv) member(cls *ClassInfo, name string, types ...Namespace) {
	cls.Scope.Declare(name).AddTypes(e.unit, NewUnion(types...))
}

type testParams struct {
	names  []string
	vararg string
	kwarg  string
}

func (e *testEnv) function(name string, scope *Scope, params testParams) *FunctionInfo {
	node := &pythonast.FunctionDefStmt{Name: &pythonast.NameExpr{Ident: name}}
	for _, p := range params.names {
		node.Parameters = append(node.Parameters, &pythonast.Parameter{Name: &pythonast.NameExpr{Ident: p}})
	}
	if params.vararg != "" {
		node.Vararg = &pythonast.ArgsParameter{Name: &pythonast.NameExpr{Ident: params.vararg}}
	}
	if params.kwarg != "" {
		node.Kwarg = &pythonast.ArgsParameter{Name: &pythonast.NameExpr{Ident: params.kwarg}}
	}
	if scope == nil {
		scope = e.module.Scope
	}
	f, _ := NewFunctionAt(Site{Unit: e.unit, Node: node}, node, scope)
	scope.Declare(name).AddTypes(e.unit, NewUnion(f))
	return f
}

func mroNames(cls *ClassInfo) []string {
	var out []string
	for _, entry := range cls.Mro.Entries() {
		out = append(out, entry.String())
	}
	return out
}

func intc(v int64) *ConstantInfo { return Builtins.IntConst(v) }

func strc(s string) *ConstantInfo { return Builtins.StrConst(s) }

func withPanic(t *testing.T) {
	t.Cleanup(rollbar.WithPanic(t))
}
