package pythontype

import (
	"fmt"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/kiteco/pyinfer/kite-golib/rollbar"
)

// UnitKind is the kind of subtree an AnalysisUnit walks
type UnitKind int

const (
	// ModuleUnit walks the top level of a module
	ModuleUnit UnitKind = iota
	// ClassUnit walks a class body
	ClassUnit
	// FunctionUnit walks a function or lambda body for one call chain
	FunctionUnit
	// ComprehensionUnit walks a comprehension
	ComprehensionUnit
)

func (k UnitKind) String() string {
	switch k {
	case ModuleUnit:
		return "module"
	case ClassUnit:
		return "class"
	case FunctionUnit:
		return "function"
	case ComprehensionUnit:
		return "comprehension"
	default:
		return fmt.Sprintf("invalid(%d)", k)
	}
}

// UnitState is the scheduling state of a unit
type UnitState int

const (
	// Idle units are not queued
	Idle UnitState = iota
	// Pending units are queued
	Pending
	// Running units are being walked
	Running
)

func (s UnitState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("invalid(%d)", s)
	}
}

// Priority orders queued units
type Priority int

const (
	// NormalPriority is used for direct edits
	NormalPriority Priority = iota
	// LowPriority is used for re-analysis triggered by a changed import
	LowPriority
)

// CallChain is the list of call sites, innermost first, through which a
// function analysis was reached. Unused slots are nil. CallChain values are
// comparable and used as map keys.
type CallChain [MaxCallDepth]pythonast.Node

// Push returns the chain with node prepended, truncated to depth entries
func (c CallChain) Push(node pythonast.Node, depth int) CallChain {
	var out CallChain
	if depth <= 0 {
		return out
	}
	if depth > MaxCallDepth {
		depth = MaxCallDepth
	}
	out[0] = node
	for i := 1; i < depth; i++ {
		out[i] = c[i-1]
	}
	return out
}

// Len returns the number of call sites in the chain
func (c CallChain) Len() int {
	for i, n := range c {
		if n == nil {
			return i
		}
	}
	return len(c)
}

// AnalysisUnit is the smallest piece of re-runnable work: a module top level,
// a class body, a function body specialized on a call chain, or a
// comprehension. Units are created while walking their enclosing unit and are
// invalidated when the module's tree is replaced.
type AnalysisUnit struct {
	Kind  UnitKind
	Node  pythonast.Node
	Scope *Scope
	Entry *ModuleEntry
	State *State

	// Parent is the unit whose walk created this one
	Parent *AnalysisUnit

	// Function is set for function units
	Function *FunctionAnalysis

	// CallChain is the chain this unit's function was specialized on
	CallChain CallChain

	// ForEval units evaluate expressions for queries. They never register
	// dependencies and only write to the bindings of namespaces they create.
	ForEval bool

	version int

	// memo holds the namespaces created by this unit, see Site.memo. Units
	// evaluating for queries keep their own memo and read through to the unit
	// they were copied from.
	memo     map[memoKey]Namespace
	evalBase *AnalysisUnit

	// children are the units created by this unit that are not owned by a
	// namespace, such as comprehensions
	children map[pythonast.Node]*AnalysisUnit

	// the fields below are owned by the scheduler
	status  UnitState
	requeue bool
}

// NewUnit creates a unit for node in scope, bound to the current version of
// entry
func NewUnit(state *State, kind UnitKind, node pythonast.Node, scope *Scope, entry *ModuleEntry, parent *AnalysisUnit) *AnalysisUnit {
	u := &AnalysisUnit{
		Kind:    kind,
		Node:    node,
		Scope:   scope,
		Entry:   entry,
		State:   state,
		Parent:  parent,
		version: entry.Version(),
	}
	if parent != nil {
		u.CallChain = parent.CallChain
	}
	return u
}

// Version returns the version of the entry the unit was created for
func (u *AnalysisUnit) Version() int { return u.version }

// Stale returns true if the unit belongs to an old version of its module
func (u *AnalysisUnit) Stale() bool {
	return u.Entry != nil && !u.Entry.live(u.version)
}

// CopyForEval returns a unit that evaluates in the same scope without
// registering dependencies
func (u *AnalysisUnit) CopyForEval() *AnalysisUnit {
	if u.ForEval {
		return u
	}
	cp := &AnalysisUnit{
		Kind:      u.Kind,
		Node:      u.Node,
		Scope:     u.Scope,
		Entry:     u.Entry,
		State:     u.State,
		Parent:    u.Parent,
		Function:  u.Function,
		CallChain: u.CallChain,
		ForEval:   true,
		version:   u.version,
		evalBase:  u,
	}
	return cp
}

func (u *AnalysisUnit) lookupMemo(k memoKey) (Namespace, bool) {
	if ns, ok := u.memo[k]; ok {
		return ns, true
	}
	if u.evalBase != nil {
		ns, ok := u.evalBase.memo[k]
		return ns, ok
	}
	return nil, false
}

func (u *AnalysisUnit) storeMemo(k memoKey, ns Namespace) {
	if u.memo == nil {
		u.memo = make(map[memoKey]Namespace)
	}
	u.memo[k] = ns
}

// ChildUnit returns the unit this unit created for node, calling create the
// first time. A unit evaluating for a query starts from an evaluation copy of
// the child owned by the unit it was copied from, when there is one.
func (u *AnalysisUnit) ChildUnit(node pythonast.Node, create func() *AnalysisUnit) (*AnalysisUnit, bool) {
	if c, ok := u.children[node]; ok {
		return c, false
	}
	var c *AnalysisUnit
	if base := u.evalBase; base != nil && base.children[node] != nil {
		c = base.children[node].CopyForEval()
	} else {
		c = create()
	}
	if u.children == nil {
		u.children = make(map[pythonast.Node]*AnalysisUnit)
	}
	u.children[node] = c
	return c, true
}

// Child returns the unit created for node by ChildUnit, or nil
func (u *AnalysisUnit) Child(node pythonast.Node) *AnalysisUnit {
	if c, ok := u.children[node]; ok {
		return c
	}
	if u.evalBase != nil {
		return u.evalBase.children[node]
	}
	return nil
}

// Enqueue asks the scheduler to run the unit
func (u *AnalysisUnit) Enqueue(p Priority) {
	if u == nil || u.ForEval || u.State == nil || u.State.Queue == nil {
		return
	}
	u.State.Queue.Enqueue(u, p)
}

// Status returns the scheduling state of the unit
func (u *AnalysisUnit) Status() UnitState { return u.status }

// MarkPending moves an idle unit to Pending and returns true if it must be
// pushed on the queue. A running unit is flagged so that End requeues it.
func (u *AnalysisUnit) MarkPending() bool {
	switch u.status {
	case Idle:
		u.status = Pending
		return true
	case Running:
		u.requeue = true
	}
	return false
}

// Begin moves a pending unit to Running. Starting a unit in any other state
// means the scheduler lost track of it.
func (u *AnalysisUnit) Begin() error {
	if u.status != Pending {
		err := errors.Errorf("cannot run %s unit in state %s", u.Kind, u.status)
		rollbar.Critical(err, u.Entry.pathOrEmpty())
		return err
	}
	u.status = Running
	u.requeue = false
	return nil
}

// End moves a running unit back to Idle, or to Pending if it was enqueued
// while running, in which case it returns true.
func (u *AnalysisUnit) End() bool {
	if u.status != Running {
		rollbar.Critical(errors.Errorf("cannot end %s unit in state %s", u.Kind, u.status), u.Entry.pathOrEmpty())
		return false
	}
	if u.requeue {
		u.requeue = false
		u.status = Pending
		return true
	}
	u.status = Idle
	return false
}

// Drop returns a pending unit to Idle without running it
func (u *AnalysisUnit) Drop() {
	u.status = Idle
	u.requeue = false
}

func (u *AnalysisUnit) String() string {
	path := u.Entry.pathOrEmpty()
	if u.Node == nil {
		return fmt.Sprintf("%s unit in %s", u.Kind, path)
	}
	return fmt.Sprintf("%s unit in %s at %d", u.Kind, path, u.Node.Begin())
}

func (e *ModuleEntry) pathOrEmpty() string {
	if e == nil {
		return ""
	}
	return e.Path
}
