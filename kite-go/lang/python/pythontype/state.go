package pythontype

import (
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-golib/kitelog"
)

// Enqueuer schedules units. It is implemented by the analyzer's queue.
type Enqueuer interface {
	Enqueue(u *AnalysisUnit, p Priority)
}

// State is shared by every unit of an analysis session
type State struct {
	Limits Limits
	Logger *kitelog.Logger
	Queue  Enqueuer
}

// NewState creates the shared state for a session. A nil logger discards
// everything.
func NewState(limits Limits, logger *kitelog.Logger, queue Enqueuer) *State {
	if logger == nil {
		logger = kitelog.Discard
	}
	return &State{
		Limits: limits.Normalize(),
		Logger: logger,
		Queue:  queue,
	}
}

// Site is the place an operation is evaluated from: the running unit and the
// syntax node being evaluated. Namespaces created by an operation are
// memoized on the unit, keyed by the node, so that re-running a unit returns
// the same namespaces.
type Site struct {
	Unit *AnalysisUnit
	Node pythonast.Node
}

// State returns the session state of the site
func (s Site) State() *State {
	if s.Unit == nil {
		return nil
	}
	return s.Unit.State
}

// Limits returns the session limits, or the defaults for a detached site
func (s Site) Limits() Limits {
	if st := s.State(); st != nil {
		return st.Limits
	}
	return DefaultLimits()
}

// Logger returns the session logger
func (s Site) Logger() *kitelog.Logger {
	if st := s.State(); st != nil && st.Logger != nil {
		return st.Logger
	}
	return kitelog.Discard
}

// Entry returns the module the site belongs to
func (s Site) Entry() *ModuleEntry {
	if s.Unit == nil {
		return nil
	}
	return s.Unit.Entry
}

// ForEval returns true for sites that must not record dependencies
func (s Site) ForEval() bool {
	return s.Unit != nil && s.Unit.ForEval
}

// Location returns the source location of the site's node
func (s Site) Location() Location {
	loc := Location{Entry: s.Entry()}
	if !pythonast.IsNil(s.Node) {
		loc.Span = pythonast.Span{From: s.Node.Begin(), To: s.Node.End()}
	}
	return loc
}

// At returns a site for another node in the same unit
func (s Site) At(node pythonast.Node) Site {
	return Site{Unit: s.Unit, Node: node}
}

// newDef creates a VariableDef owned by a namespace created at the site.
// Namespaces created while evaluating for a query accept writes from the
// query's unit.
func (s Site) newDef(name string) *VariableDef {
	v := NewVariableDef(name)
	v.evalOnly = s.ForEval()
	return v
}

type memoTag int

const (
	memoList memoTag = iota
	memoTuple
	memoDict
	memoSet
	memoRange
	memoIterator
	memoGenerator
	memoClass
	memoFunction
	memoDescriptor
	memoSuper
	memoCopy
	memoConcat
	memoCall
	memoScope
)

type memoKey struct {
	node pythonast.Node
	tag  memoTag
	sub  uint64
}

// memo returns the namespace created earlier at the site with the same tag,
// or creates and records a new one. Sites without a node or unit never
// memoize.
func (s Site) memo(tag memoTag, create func() Namespace) Namespace {
	return s.memoSub(tag, 0, create)
}

// memoSub is memo for sites that create several namespaces with one tag
func (s Site) memoSub(tag memoTag, sub uint64, create func() Namespace) Namespace {
	ns, _ := s.memoNew(tag, sub, create)
	return ns
}

// memoNew is memoSub that also reports whether the namespace was created
func (s Site) memoNew(tag memoTag, sub uint64, create func() Namespace) (Namespace, bool) {
	if s.Unit == nil || pythonast.IsNil(s.Node) {
		return create(), true
	}
	key := memoKey{node: s.Node, tag: tag, sub: sub}
	if ns, ok := s.Unit.lookupMemo(key); ok {
		return ns, false
	}
	ns := create()
	s.Unit.storeMemo(key, ns)
	return ns, true
}

// Keyword is a named call argument
type Keyword struct {
	Name  string
	Types TypeUnion
}

// Args are the evaluated arguments of a call
type Args struct {
	Positional   []TypeUnion
	Splats       []TypeUnion
	Keywords     []Keyword
	DoubleSplats []TypeUnion
}

// PositionalArgs builds Args holding only positional arguments
func PositionalArgs(pos ...TypeUnion) Args {
	return Args{Positional: pos}
}

// Prepend returns the arguments with self inserted as the first positional
// argument
func (a Args) Prepend(self Namespace) Args {
	pos := make([]TypeUnion, 0, len(a.Positional)+1)
	pos = append(pos, NewUnion(self))
	pos = append(pos, a.Positional...)
	a.Positional = pos
	return a
}

// Arg returns the i-th positional argument, or the empty union
func (a Args) Arg(i int) TypeUnion {
	if i < 0 || i >= len(a.Positional) {
		return TypeUnion{}
	}
	return a.Positional[i]
}

// Keyword returns the named argument
func (a Args) Keyword(name string) (TypeUnion, bool) {
	for _, kw := range a.Keywords {
		if kw.Name == name {
			return kw.Types, true
		}
	}
	return TypeUnion{}, false
}

// Len returns the number of explicit positional arguments
func (a Args) Len() int { return len(a.Positional) }

// Empty returns true if the call passes nothing
func (a Args) Empty() bool {
	return len(a.Positional) == 0 && len(a.Splats) == 0 && len(a.Keywords) == 0 && len(a.DoubleSplats) == 0
}

// Call is one invocation of a namespace
type Call struct {
	Site
	// Self is the receiver of builtin methods
	Self Namespace
	Args Args

	// callee is the builtin being invoked. Namespaces created by builtins
	// are memoized per callee.
	callee Namespace
}

func (c *Call) memo(tag memoTag, create func() Namespace) Namespace {
	var sub uint64
	if c.callee != nil {
		sub = c.callee.id()
	}
	return c.Site.memoSub(tag, sub, create)
}

// NewCall creates a call from site with the given arguments
func NewCall(site Site, args Args) *Call {
	return &Call{Site: site, Args: args}
}
