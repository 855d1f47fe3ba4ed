package pythonstatic

import (
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"
)

// walker evaluates the statements and expressions of one unit. A walker over
// a unit copied for evaluation reads bindings without changing them.
type walker struct {
	ctx   kitectx.Context
	a     *Analyzer
	unit  *pythontype.AnalysisUnit
	scope *pythontype.Scope
}

func newWalker(ctx kitectx.Context, a *Analyzer, u *pythontype.AnalysisUnit) *walker {
	return &walker{ctx: ctx, a: a, unit: u, scope: u.Scope}
}

func (w *walker) site(node pythonast.Node) pythontype.Site {
	return pythontype.Site{Unit: w.unit, Node: node}
}

func (w *walker) location(node pythonast.Node) pythontype.Location {
	return w.site(node).Location()
}

func (w *walker) limits() pythontype.Limits {
	return w.unit.State.Limits
}

// -- units

func (w *walker) module() {
	entry := w.unit.Entry
	if entry.Tree == nil {
		return
	}
	b := pythontype.Builtins
	w.scope.Declare("__name__").AddTypes(w.unit, pythontype.NewUnion(b.StrConst(entry.Name.String())))
	for _, name := range []string{"__file__", "__doc__", "__package__"} {
		w.scope.Declare(name).AddTypes(w.unit, pythontype.NewUnion(b.Str.Instance))
	}
	w.stmts(entry.Tree.Body)
}

func (w *walker) classBody() {
	cls := w.scope.Class
	w.stmts(cls.Node.Body)
	if v := w.scope.Get("__metaclass__"); v != nil && v.IsBound() {
		cls.Metaclass.AddTypes(w.unit, v.TypesFor(w.unit))
	}
}

func (w *walker) function() {
	fa := w.unit.Function
	f := fa.Function
	limits := w.limits()

	if f.Def != nil {
		w.declareLocals(f.Def.Body)
	}
	for i, p := range f.Parameters() {
		v := fa.Params[i]
		v.AddAssignment(w.location(p.Name))
		if d := f.Defaults[i]; d != nil {
			v.AddTypesLimited(w.unit, d.TypesFor(w.unit), limits.NormalArgumentTypes)
		}
	}
	for _, p := range []*pythonast.ArgsParameter{f.Vararg(), f.Kwarg()} {
		if p != nil {
			w.scope.Declare(p.Name.Ident).AddAssignment(w.location(p.Name))
		}
	}
	w.bindReceiver(fa)

	if f.Lambda != nil {
		fa.AddReturn(w.site(f.Lambda.Body), w.expr(f.Lambda.Body))
		return
	}
	w.stmts(f.Def.Body)
	if !f.IsGenerator && !returnsValue(f.Def) {
		fa.AddReturn(w.site(f.Def), pythontype.NewUnion(pythontype.Builtins.None))
	}
}

// bindReceiver gives the first parameter of a method the instances of its
// class and subclasses, or the classes themselves for class methods
func (w *walker) bindReceiver(fa *pythontype.FunctionAnalysis) {
	f := fa.Function
	if f.Class == nil || f.Lambda != nil || f.IsStaticMethod || len(fa.Params) == 0 {
		return
	}
	classes := f.Name() == "__new__" || f.IsClassMethod
	var types pythontype.TypeUnion
	var v pythontype.Visited
	var add func(c *pythontype.ClassInfo)
	add = func(c *pythontype.ClassInfo) {
		if !v.Push(c) {
			return
		}
		if classes {
			types, _ = types.Add(c)
		} else {
			types, _ = types.Add(c.Instance)
		}
		for _, sub := range c.Subclasses() {
			if !sub.Entry.Removed() {
				add(sub)
			}
		}
	}
	add(f.Class)
	fa.Params[0].AddTypesLimited(w.unit, types, w.limits().NormalArgumentTypes)
}

// declareLocals creates the bindings of the names a function body assigns,
// so that reads before the assignment do not resolve to an enclosing scope
func (w *walker) declareLocals(body []pythonast.Stmt) {
	var names []string
	for _, s := range body {
		pythonast.Inspect(s, func(n pythonast.Node) bool {
			if pythonast.IsNil(n) {
				return false
			}
			switch n := n.(type) {
			case *pythonast.GlobalStmt:
				for _, name := range n.Names {
					w.scope.DeclareGlobal(name.Ident)
				}
			case *pythonast.NonLocalStmt:
				for _, name := range n.Names {
					w.scope.DeclareNonLocal(name.Ident)
				}
			case *pythonast.FunctionDefStmt:
				names = append(names, n.Name.Ident)
				return false
			case *pythonast.ClassDefStmt:
				names = append(names, n.Name.Ident)
				return false
			case *pythonast.LambdaExpr, pythonast.Comprehension:
				return false
			case *pythonast.ImportNameStmt:
				for _, clause := range n.Names {
					if clause.Internal != nil {
						names = append(names, clause.Internal.Ident)
					} else if clause.External != nil && len(clause.External.Names) > 0 {
						names = append(names, clause.External.Names[0].Ident)
					}
				}
				return false
			case *pythonast.ImportFromStmt:
				for _, clause := range n.Names {
					if clause.Internal != nil {
						names = append(names, clause.Internal.Ident)
					} else {
						names = append(names, clause.External.Ident)
					}
				}
				return false
			case *pythonast.NameExpr:
				if n.Usage == pythonast.Assign || n.Usage == pythonast.Delete {
					names = append(names, n.Ident)
				}
			case *pythonast.AssignExpr:
				names = append(names, n.Target.Ident)
			}
			return true
		})
	}
	for _, name := range names {
		w.scope.Declare(name)
	}
}

// returnsValue reports whether a function body has a return statement with
// a value, ignoring nested functions and classes
func returnsValue(def *pythonast.FunctionDefStmt) bool {
	found := false
	for _, s := range def.Body {
		pythonast.Inspect(s, func(n pythonast.Node) bool {
			if found || pythonast.IsNil(n) {
				return false
			}
			switch n := n.(type) {
			case *pythonast.ReturnStmt:
				if !pythonast.IsNil(n.Value) {
					found = true
				}
				return false
			case *pythonast.FunctionDefStmt, *pythonast.ClassDefStmt, *pythonast.LambdaExpr:
				return false
			case pythonast.Expr:
				return false
			}
			return true
		})
	}
	return found
}

// -- statements

func (w *walker) stmts(stmts []pythonast.Stmt) {
	for _, s := range stmts {
		w.stmt(s)
	}
}

func (w *walker) stmt(s pythonast.Stmt) {
	w.ctx.CheckAbort()
	switch s := s.(type) {
	case *pythonast.ExprStmt:
		w.expr(s.Value)
	case *pythonast.AssignStmt:
		w.assignStmt(s)
	case *pythonast.AugAssignStmt:
		w.augAssign(s)
	case *pythonast.DelStmt:
		for _, t := range s.Targets {
			w.del(t)
		}
	case *pythonast.ReturnStmt:
		w.returnStmt(s)
	case *pythonast.RaiseStmt:
		w.expr(s.Type)
		w.expr(s.Cause)
	case *pythonast.AssertStmt:
		w.expr(s.Condition)
		w.expr(s.Message)
	case *pythonast.GlobalStmt:
		for _, name := range s.Names {
			w.scope.DeclareGlobal(name.Ident)
		}
	case *pythonast.NonLocalStmt:
		for _, name := range s.Names {
			w.scope.DeclareNonLocal(name.Ident)
		}
	case *pythonast.ImportNameStmt:
		w.importName(s)
	case *pythonast.ImportFromStmt:
		w.importFrom(s)
	case *pythonast.IfStmt:
		for _, branch := range s.Branches {
			w.expr(branch.Condition)
			w.stmts(branch.Body)
		}
		w.stmts(s.Else)
	case *pythonast.WhileStmt:
		w.expr(s.Condition)
		w.stmts(s.Body)
		w.stmts(s.Else)
	case *pythonast.ForStmt:
		w.forStmt(s)
	case *pythonast.TryStmt:
		w.tryStmt(s)
	case *pythonast.WithStmt:
		w.withStmt(s)
	case *pythonast.FunctionDefStmt:
		w.functionDef(s)
	case *pythonast.ClassDefStmt:
		w.classDef(s)
	}
}

func (w *walker) assignStmt(s *pythonast.AssignStmt) {
	w.expr(s.Annotation)
	if pythonast.IsNil(s.Value) {
		return
	}
	value := w.expr(s.Value)
	for _, t := range s.Targets {
		w.assign(t, value)
	}
}

// assign binds value to an assignment target
func (w *walker) assign(target pythonast.Expr, value pythontype.TypeUnion) {
	switch t := target.(type) {
	case *pythonast.NameExpr:
		w.bindName(t, value)
	case *pythonast.AttributeExpr:
		obj := w.expr(t.Value)
		pythontype.SetMemberUnion(w.site(t.Attribute), obj, t.Attribute.Ident, value)
	case *pythonast.IndexExpr:
		obj := w.expr(t.Value)
		index := w.expr(t.Subscript)
		pythontype.SetIndexUnion(w.site(t), obj, index, value)
	case *pythonast.TupleExpr:
		w.unpack(t, t.Elts, value)
	case *pythonast.ListExpr:
		w.unpack(t, t.Values, value)
	case *pythonast.StarExpr:
		site := w.site(t)
		l := pythontype.NewListAt(site)
		l.AddElements(site, pythontype.GetEnumeratedTypesUnion(site, value))
		w.assign(t.Value, pythontype.NewUnion(l))
	}
}

// unpack binds the elements of value to a sequence of targets. Tuples whose
// length matches the targets are unpacked position by position; everything
// else gives each target the union of its elements.
func (w *walker) unpack(node pythonast.Node, targets []pythonast.Expr, value pythontype.TypeUnion) {
	star := false
	for _, t := range targets {
		if _, ok := t.(*pythonast.StarExpr); ok {
			star = true
		}
	}
	site := w.site(node)
	elems := make([]pythontype.TypeUnion, len(targets))
	for _, ns := range value.Types() {
		if t, ok := ns.(*pythontype.TupleInfo); ok && !star && t.Star == nil && t.Len() == len(targets) {
			for i := range targets {
				elems[i], _ = elems[i].Union(t.Index(site, i))
			}
			continue
		}
		all := pythontype.GetEnumeratedTypes(site, ns)
		for i := range targets {
			elems[i], _ = elems[i].Union(all)
		}
	}
	for i, t := range targets {
		if s, ok := t.(*pythonast.StarExpr); ok {
			ssite := w.site(s)
			l := pythontype.NewListAt(ssite)
			l.AddElements(ssite, elems[i])
			w.assign(s.Value, pythontype.NewUnion(l))
			continue
		}
		w.assign(t, elems[i])
	}
}

// bindName assigns to a name in the current scope
func (w *walker) bindName(n *pythonast.NameExpr, value pythontype.TypeUnion) *pythontype.VariableDef {
	v := w.scope.Declare(n.Ident)
	if !w.unit.ForEval {
		v.AddAssignment(w.location(n))
	}
	v.AddTypesLimited(w.unit, value, w.limits().AssignedTypes)
	return v
}

func (w *walker) augAssign(s *pythonast.AugAssignStmt) {
	current := w.expr(s.Target)
	value := w.expr(s.Value)
	site := w.site(s)

	var result pythontype.TypeUnion
	for _, ns := range current.Types() {
		switch c := ns.(type) {
		case *pythontype.ListInfo:
			if s.Op == pythonast.Add {
				c.AddElements(site, pythontype.GetEnumeratedTypesUnion(site, value))
				result, _ = result.Add(c)
				continue
			}
		case *pythontype.SetInfo:
			if s.Op == pythonast.BitOr {
				c.AddElements(site, pythontype.GetEnumeratedTypesUnion(site, value))
				result, _ = result.Add(c)
				continue
			}
		case *pythontype.DictInfo:
			if s.Op == pythonast.BitOr {
				c.Update(site, value)
				result, _ = result.Add(c)
				continue
			}
		}
		result, _ = result.Union(pythontype.BinaryOpUnion(site, pythontype.NewUnion(ns), s.Op, value))
	}
	w.assign(s.Target, result)
}

func (w *walker) del(target pythonast.Expr) {
	switch t := target.(type) {
	case *pythonast.NameExpr:
		if !w.unit.ForEval {
			w.scope.Delete(t.Ident)
		}
	case *pythonast.AttributeExpr:
		site := w.site(t.Attribute)
		for _, ns := range w.expr(t.Value).Types() {
			pythontype.DeleteMember(site, ns, t.Attribute.Ident)
		}
	case *pythonast.IndexExpr:
		w.expr(t.Value)
		w.expr(t.Subscript)
	case *pythonast.TupleExpr:
		for _, e := range t.Elts {
			w.del(e)
		}
	case *pythonast.ListExpr:
		for _, e := range t.Values {
			w.del(e)
		}
	}
}

func (w *walker) returnStmt(s *pythonast.ReturnStmt) {
	value := pythontype.NewUnion(pythontype.Builtins.None)
	if !pythonast.IsNil(s.Value) {
		value = w.expr(s.Value)
	}
	if fa := w.unit.Function; fa != nil {
		fa.AddReturn(w.site(s), value)
	}
}

func (w *walker) forStmt(s *pythonast.ForStmt) {
	site := w.site(s)
	elems := pythontype.GetEnumeratedTypesUnion(site, w.expr(s.Iterable))
	if len(s.Targets) == 1 {
		w.assign(s.Targets[0], elems)
	} else {
		w.unpack(s, s.Targets, elems)
	}
	w.stmts(s.Body)
	w.stmts(s.Else)
}

func (w *walker) tryStmt(s *pythonast.TryStmt) {
	w.stmts(s.Body)
	for _, h := range s.Handlers {
		var caught pythontype.TypeUnion
		if !pythonast.IsNil(h.Type) {
			caught = exceptionInstances(w.site(h), w.expr(h.Type))
		}
		if !pythonast.IsNil(h.Target) {
			w.assign(h.Target, caught)
		}
		w.stmts(h.Body)
	}
	w.stmts(s.Else)
	w.stmts(s.Finally)
}

// exceptionInstances returns the instances an except clause catching
// classes binds. Tuples of classes are flattened.
func exceptionInstances(site pythontype.Site, classes pythontype.TypeUnion) pythontype.TypeUnion {
	var out pythontype.TypeUnion
	for _, ns := range classes.Types() {
		switch ns := ns.(type) {
		case *pythontype.ClassInfo:
			out, _ = out.Add(ns.Instance)
		case *pythontype.BuiltinClass:
			out, _ = out.Add(ns.Instance)
		case *pythontype.TupleInfo:
			out, _ = out.Union(exceptionInstances(site, ns.AllTypes(site)))
		}
	}
	return out
}

func (w *walker) withStmt(s *pythonast.WithStmt) {
	enter := "__enter__"
	if s.Async {
		enter = "__aenter__"
	}
	for _, item := range s.Items {
		site := w.site(item)
		value := w.expr(item.Value)
		entered := pythontype.InvokeUnion(site, pythontype.GetMemberUnion(site, value, enter), pythontype.Args{})
		if !pythonast.IsNil(item.Target) {
			w.assign(item.Target, entered)
		}
	}
	w.stmts(s.Body)
}

// -- definitions

func (w *walker) functionDef(s *pythonast.FunctionDefStmt) {
	f, created := pythontype.NewFunctionAt(w.site(s), s, w.scope)
	w.evalDefaults(f)
	w.expr(s.Annotation)
	if created {
		w.defined(f)
	}
	value := w.decorate(s.Decorators, pythontype.NewUnion(f))
	w.bindName(s.Name, value)
}

// evalDefaults evaluates the default values and annotations of a function's
// parameters in the scope the function is defined in
func (w *walker) evalDefaults(f *pythontype.FunctionInfo) {
	limit := w.limits().NormalArgumentTypes
	for i, p := range f.Parameters() {
		if d := f.Defaults[i]; d != nil {
			d.AddTypesLimited(w.unit, w.expr(p.Default), limit)
		}
		w.expr(p.Annotation)
	}
	for _, p := range []*pythonast.ArgsParameter{f.Vararg(), f.Kwarg()} {
		if p != nil {
			w.expr(p.Annotation)
		}
	}
}

// defined registers a new function and schedules its primary analysis
func (w *walker) defined(f *pythontype.FunctionInfo) {
	if w.unit.ForEval {
		return
	}
	w.a.definitionsFor(w.unit.Entry).addFunction(f)
	f.Primary().Enqueue()
}

func (w *walker) classDef(s *pythonast.ClassDefStmt) {
	site := w.site(s)
	var bases []pythontype.TypeUnion
	var meta pythontype.TypeUnion
	for _, arg := range s.Args {
		value := w.expr(arg.Value)
		switch arg.Kind {
		case pythonast.PositionalArg:
			bases = append(bases, value)
		case pythonast.ListSplatArg:
			bases = append(bases, pythontype.GetEnumeratedTypesUnion(site, value))
		case pythonast.KeywordArg:
			if arg.Name != nil && arg.Name.Ident == "metaclass" {
				meta = value
			}
		}
	}

	cls, created := pythontype.NewClassAt(site, s, w.scope)
	cls.SetBases(site, bases)
	cls.Metaclass.AddTypes(w.unit, meta)
	if created && !w.unit.ForEval {
		w.a.definitionsFor(w.unit.Entry).addClass(cls)
		w.a.runUnit(w.ctx, cls.Unit)
	}
	value := w.decorate(s.Decorators, pythontype.NewUnion(cls))
	w.bindName(s.Name, value)
}

// decorate applies decorators innermost first. A decorator that yields
// nothing leaves the decorated value alone.
func (w *walker) decorate(decorators []pythonast.Expr, value pythontype.TypeUnion) pythontype.TypeUnion {
	for i := len(decorators) - 1; i >= 0; i-- {
		d := decorators[i]
		site := w.site(d)
		var out pythontype.TypeUnion
		for _, ns := range w.expr(d).Types() {
			if !w.applies(ns) {
				continue
			}
			out, _ = out.Union(pythontype.Invoke(site, ns, pythontype.PositionalArgs(value)))
		}
		if !out.IsEmpty() {
			value = out
		}
	}
	return value
}

// applies returns true for decorators that are evaluated: the builtin
// descriptor types and their methods always, anything else only when custom
// decorators are processed
func (w *walker) applies(decorator pythontype.Namespace) bool {
	b := pythontype.Builtins
	switch d := decorator.(type) {
	case *pythontype.BuiltinClass:
		if d == b.Property || d == b.ClassMethod || d == b.StaticMethod {
			return true
		}
	case *pythontype.BuiltinMethod:
		if _, ok := d.Self.(*pythontype.DescriptorInfo); ok {
			return true
		}
	}
	return w.limits().ProcessCustomDecorators
}
