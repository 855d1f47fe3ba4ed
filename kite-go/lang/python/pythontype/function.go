package pythontype

import (
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"go.uber.org/zap"
)

// FunctionInfo is a function defined by a def statement or a lambda. Each
// distinct call chain reaching the function, up to the call depth, gets its
// own FunctionAnalysis; the analysis for the empty chain is always present.
type FunctionInfo struct {
	record
	name   string
	Def    *pythonast.FunctionDefStmt
	Lambda *pythonast.LambdaExpr
	Entry  *ModuleEntry

	// Parent is the scope the function is defined in
	Parent *Scope
	// Class is the class whose body defines the function, or nil
	Class *ClassInfo
	// DeclaringUnit is the unit that evaluated the definition
	DeclaringUnit *AnalysisUnit

	// Defaults holds the default value of each parameter, nil for parameters
	// without one
	Defaults []*VariableDef

	IsGenerator bool
	IsAsync     bool

	// set when the function is wrapped by staticmethod or classmethod
	IsStaticMethod bool
	IsClassMethod  bool

	analyses  map[CallChain]*FunctionAnalysis
	order     []*FunctionAnalysis
	callDepth int
	newChains int
}

// NewFunctionAt returns the function created by the def statement or lambda
// at site, and whether it was created by this call. The caller must enqueue
// the primary analysis of a new function.
func NewFunctionAt(site Site, node pythonast.Node, parent *Scope) (*FunctionInfo, bool) {
	ns, created := site.memoNew(memoFunction, 0, func() Namespace {
		f := &FunctionInfo{
			record:        newRecord(),
			Entry:         site.Entry(),
			Parent:        parent,
			Class:         enclosingClassOf(parent),
			DeclaringUnit: site.Unit,
			callDepth:     site.Limits().CallDepth,
		}
		switch n := node.(type) {
		case *pythonast.FunctionDefStmt:
			f.Def = n
			f.name = n.Name.Ident
			f.IsAsync = n.Async
			f.IsGenerator = containsYield(n)
		case *pythonast.LambdaExpr:
			f.Lambda = n
			f.name = "<lambda>"
			f.IsGenerator = containsYield(n)
		}
		for _, p := range f.Parameters() {
			if pythonast.IsNil(p.Default) {
				f.Defaults = append(f.Defaults, nil)
				continue
			}
			f.Defaults = append(f.Defaults, site.newDef(p.Name.Ident))
		}
		f.Primary()
		return f
	})
	return ns.(*FunctionInfo), created
}

func enclosingClassOf(s *Scope) *ClassInfo {
	if s != nil && s.Kind == ClassScope {
		return s.Class
	}
	return nil
}

// Kind implements Namespace
func (f *FunctionInfo) Kind() Kind { return FunctionKind }

// Name implements Namespace
func (f *FunctionInfo) Name() string { return f.name }

// Node returns the def statement or lambda
func (f *FunctionInfo) Node() pythonast.Node {
	if f.Def != nil {
		return f.Def
	}
	return f.Lambda
}

// Parameters returns the named parameters
func (f *FunctionInfo) Parameters() []*pythonast.Parameter {
	if f.Def != nil {
		return f.Def.Parameters
	}
	if f.Lambda != nil {
		return f.Lambda.Parameters
	}
	return nil
}

// Vararg returns the *args parameter, or nil
func (f *FunctionInfo) Vararg() *pythonast.ArgsParameter {
	if f.Def != nil {
		return f.Def.Vararg
	}
	if f.Lambda != nil {
		return f.Lambda.Vararg
	}
	return nil
}

// Kwarg returns the **kwargs parameter, or nil
func (f *FunctionInfo) Kwarg() *pythonast.ArgsParameter {
	if f.Def != nil {
		return f.Def.Kwarg
	}
	if f.Lambda != nil {
		return f.Lambda.Kwarg
	}
	return nil
}

// ParamNames returns the names of the named parameters
func (f *FunctionInfo) ParamNames() []string {
	var out []string
	for _, p := range f.Parameters() {
		out = append(out, p.Name.Ident)
	}
	return out
}

// Spec returns the binding shape of the parameter list
func (f *FunctionInfo) Spec() ParamSpec {
	spec := ParamSpec{Vararg: f.Vararg() != nil, Kwarg: f.Kwarg() != nil}
	for _, p := range f.Parameters() {
		spec.Names = append(spec.Names, p.Name.Ident)
		spec.KeywordOnly = append(spec.KeywordOnly, p.KeywordOnly)
	}
	return spec
}

// IsMethod returns true for functions defined in a class body
func (f *FunctionInfo) IsMethod() bool { return f.Class != nil }

// Primary returns the analysis used for calls that are not specialized
func (f *FunctionInfo) Primary() *FunctionAnalysis {
	return f.analysis(CallChain{})
}

// Analyses returns every analysis of the function, the primary one first
func (f *FunctionInfo) Analyses() []*FunctionAnalysis { return f.order }

// CallDepth returns the current specialization depth
func (f *FunctionInfo) CallDepth() int { return f.callDepth }

func (f *FunctionInfo) analysis(chain CallChain) *FunctionAnalysis {
	if fa, ok := f.analyses[chain]; ok {
		return fa
	}
	if f.analyses == nil {
		f.analyses = make(map[CallChain]*FunctionAnalysis)
	}
	fa := newFunctionAnalysis(f, chain)
	f.analyses[chain] = fa
	f.order = append(f.order, fa)
	return fa
}

// analysisFor picks the analysis a call from site binds to. Each new chain
// counts towards lowering the function's call depth.
func (f *FunctionInfo) analysisFor(site Site) *FunctionAnalysis {
	limits := site.Limits()
	if f.callDepth <= 0 || (limits.UnifyCallsToNew && (f.name == "__new__" || f.name == "__init__")) {
		return f.Primary()
	}
	var parent CallChain
	if site.Unit != nil {
		parent = site.Unit.CallChain
	}
	chain := parent.Push(site.Node, f.callDepth)
	if fa, ok := f.analyses[chain]; ok {
		return fa
	}
	fa := f.analysis(chain)
	f.newChains++
	if limits.DecreaseCallDepth > 0 && f.newChains >= limits.DecreaseCallDepth {
		f.callDepth--
		f.newChains = 0
		site.Logger().Debug("decreasing call depth",
			zap.String("function", f.name), zap.Int("depth", f.callDepth))
	}
	return fa
}

// Invoke binds the arguments of a call to an analysis of the function and
// returns what the function returns. Evaluations for queries bind nothing
// and see the union of every analysis.
func (f *FunctionInfo) Invoke(call *Call) TypeUnion {
	if call.ForEval() {
		return f.AllReturns()
	}
	fa := f.analysisFor(call.Site)
	fa.bind(call.Site, call.Args)
	return fa.result(call.Site)
}

// AllReturns returns the union of the results of every analysis
func (f *FunctionInfo) AllReturns() TypeUnion {
	var out TypeUnion
	for _, fa := range f.order {
		if fa.Generator != nil {
			out, _ = out.Add(fa.Generator)
			continue
		}
		out, _ = out.Union(fa.Return.Types())
	}
	return out
}

// containsYield reports whether the body of a function or lambda yields,
// ignoring nested functions and classes
func containsYield(node pythonast.Node) bool {
	found := false
	var body []pythonast.Node
	switch n := node.(type) {
	case *pythonast.FunctionDefStmt:
		for _, s := range n.Body {
			body = append(body, s)
		}
	case *pythonast.LambdaExpr:
		body = append(body, n.Body)
	}
	for _, b := range body {
		if pythonast.IsNil(b) {
			continue
		}
		pythonast.Inspect(b, func(n pythonast.Node) bool {
			if found || pythonast.IsNil(n) {
				return false
			}
			switch n.(type) {
			case *pythonast.YieldExpr:
				found = true
				return false
			case *pythonast.FunctionDefStmt, *pythonast.LambdaExpr, *pythonast.ClassDefStmt:
				return false
			}
			return true
		})
	}
	return found
}

// FunctionAnalysis is one specialization of a function: the scope its body
// is walked in, its parameter bindings and what it returns
type FunctionAnalysis struct {
	Function  *FunctionInfo
	CallChain CallChain
	Unit      *AnalysisUnit
	Scope     *Scope

	Params []*VariableDef
	// Vararg holds the *args tuple, Kwarg the **kwargs dict
	Vararg *TupleInfo
	Kwarg  *DictInfo

	Return *VariableDef
	// Generator is set for generator functions. Calls return it.
	Generator *GeneratorInfo

	queued bool
}

func newFunctionAnalysis(f *FunctionInfo, chain CallChain) *FunctionAnalysis {
	fa := &FunctionAnalysis{
		Function:  f,
		CallChain: chain,
		Return:    NewVariableDef("return"),
	}
	node := f.Node()
	fa.Scope = NewScope(FunctionScope, f.Parent, node)
	fa.Scope.Function = fa

	var state *State
	if f.DeclaringUnit != nil {
		state = f.DeclaringUnit.State
	}
	fa.Unit = NewUnit(state, FunctionUnit, node, fa.Scope, f.Entry, f.DeclaringUnit)
	fa.Unit.Function = fa
	fa.Unit.CallChain = chain
	if f.DeclaringUnit != nil {
		fa.Unit.ForEval = f.DeclaringUnit.ForEval
	}
	site := Site{Unit: fa.Unit, Node: node}

	for _, p := range f.Parameters() {
		fa.Params = append(fa.Params, fa.Scope.Declare(p.Name.Ident))
	}
	if p := f.Vararg(); p != nil {
		fa.Vararg = newTuple(site, 0, true)
		fa.Scope.Declare(p.Name.Ident).AddTypes(nil, NewUnion(fa.Vararg))
	}
	if p := f.Kwarg(); p != nil {
		fa.Kwarg = newDict(site)
		fa.Scope.Declare(p.Name.Ident).AddTypes(nil, NewUnion(fa.Kwarg))
	}
	if f.IsGenerator {
		fa.Generator = newGenerator(site, f)
	}
	return fa
}

// Enqueue schedules the analysis once. Later changes to its parameters
// reschedule it through their dependents.
func (fa *FunctionAnalysis) Enqueue() {
	if fa.queued {
		return
	}
	fa.queued = true
	fa.Unit.Enqueue(NormalPriority)
}

// bind adds the arguments of a call to the parameters
func (fa *FunctionAnalysis) bind(site Site, args Args) {
	limits := site.Limits()
	set := BindArguments(site, fa.Function.Spec(), args)
	for i, p := range fa.Params {
		if i < len(set.Params) {
			p.AddTypesLimited(site.Unit, set.Params[i], limits.NormalArgumentTypes)
		}
	}
	if fa.Vararg != nil {
		fa.Vararg.Star.AddTypesLimited(site.Unit, set.Vararg, limits.ListArgumentTypes)
	}
	if fa.Kwarg != nil {
		for _, name := range set.KwargNames {
			fa.Kwarg.Keys.AddTypes(site.Unit, NewUnion(Builtins.StrConst(name)))
		}
		fa.Kwarg.Keys.MakeUnionStrongerIfMoreThan(limits.DictKeyTypes)
		fa.Kwarg.Values.AddTypesLimited(site.Unit, set.Kwarg, limits.DictArgumentTypes)
	}
	fa.Enqueue()
}

// result returns what a call evaluates to and registers the caller as a
// dependent of the return binding
func (fa *FunctionAnalysis) result(site Site) TypeUnion {
	if fa.Generator != nil {
		return NewUnion(fa.Generator)
	}
	return fa.Return.TypesFor(site.Unit)
}

// AddReturn records the value of a return statement
func (fa *FunctionAnalysis) AddReturn(site Site, types TypeUnion) bool {
	if fa.Generator != nil {
		return fa.Generator.AddReturn(site, types)
	}
	return fa.Return.AddTypesLimited(site.Unit, types, site.Limits().ReturnTypes)
}

// BoundMethod is a user function bound to a receiver
type BoundMethod struct {
	record
	Func *FunctionInfo
	Self Namespace
}

// NewBoundMethod binds f to self
func NewBoundMethod(f *FunctionInfo, self Namespace) *BoundMethod {
	return &BoundMethod{record: newRecord(), Func: f, Self: self}
}

// Kind implements Namespace
func (m *BoundMethod) Kind() Kind { return MethodKind }

// Name implements Namespace
func (m *BoundMethod) Name() string { return m.Func.name }

// Invoke calls the function with the receiver prepended
func (m *BoundMethod) Invoke(call *Call) TypeUnion {
	bound := *call
	bound.Args = call.Args.Prepend(m.Self)
	return m.Func.Invoke(&bound)
}
