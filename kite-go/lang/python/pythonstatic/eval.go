package pythonstatic

import (
	"strconv"
	"strings"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
)

// expr evaluates an expression to the union of namespaces it may produce
func (w *walker) expr(e pythonast.Expr) pythontype.TypeUnion {
	if pythonast.IsNil(e) {
		return pythontype.TypeUnion{}
	}
	b := pythontype.Builtins
	switch e := e.(type) {
	case *pythonast.NameExpr:
		return w.name(e)
	case *pythonast.NumberExpr:
		return pythontype.NewUnion(number(e.Literal))
	case *pythonast.StringExpr:
		return pythontype.NewUnion(str(e))
	case *pythonast.EllipsisExpr:
		return pythontype.NewUnion(b.EllipsisValue)
	case *pythonast.AttributeExpr:
		obj := w.expr(e.Value)
		return pythontype.GetMemberUnion(w.site(e.Attribute), obj, e.Attribute.Ident)
	case *pythonast.CallExpr:
		fn := w.expr(e.Func)
		return pythontype.InvokeUnion(w.site(e), fn, w.args(e.Args))
	case *pythonast.IndexExpr:
		obj := w.expr(e.Value)
		index := w.expr(e.Subscript)
		return pythontype.GetIndexUnion(w.site(e), obj, index)
	case *pythonast.SliceExpr:
		w.expr(e.Lower)
		w.expr(e.Upper)
		w.expr(e.Step)
		return pythontype.NewUnion(b.Slice.Instance)
	case *pythonast.BinaryExpr:
		left := w.expr(e.Left)
		right := w.expr(e.Right)
		return pythontype.BinaryOpUnion(w.site(e), left, e.Op, right)
	case *pythonast.UnaryExpr:
		return pythontype.UnaryOpUnion(w.site(e), e.Op, w.expr(e.Value))
	case *pythonast.IfExpr:
		w.expr(e.Condition)
		out, _ := w.expr(e.Body).Union(w.expr(e.Else))
		return out
	case *pythonast.LambdaExpr:
		return w.lambda(e)
	case *pythonast.ListExpr:
		return w.list(e)
	case *pythonast.TupleExpr:
		return w.tuple(e)
	case *pythonast.SetExpr:
		return w.set(e)
	case *pythonast.DictExpr:
		return w.dict(e)
	case *pythonast.StarExpr:
		return w.expr(e.Value)
	case pythonast.Comprehension:
		return w.comprehension(e)
	case *pythonast.YieldExpr:
		return w.yield(e)
	case *pythonast.AwaitExpr:
		return w.expr(e.Value)
	case *pythonast.AssignExpr:
		return w.walrus(e)
	}
	return pythontype.TypeUnion{}
}

// name resolves a read of a name. Names no scope binds resolve against the
// builtins; the reader still depends on the module binding so that shadowing
// the builtin later revisits it.
func (w *walker) name(e *pythonast.NameExpr) pythontype.TypeUnion {
	v := w.scope.Lookup(e.Ident)
	if v != nil && v.IsBound() {
		if !w.unit.ForEval {
			v.AddReference(w.location(e))
		}
		return v.TypesFor(w.unit)
	}
	if ns, ok := pythontype.Builtins.Lookup(e.Ident); ok {
		if !w.unit.ForEval {
			w.scope.LookupOrEphemeral(e.Ident).AddDependency(w.unit)
		}
		return pythontype.NewUnion(ns)
	}
	if w.unit.ForEval {
		return v.Types()
	}
	v = w.scope.LookupOrEphemeral(e.Ident)
	v.AddReference(w.location(e))
	return v.TypesFor(w.unit)
}

// number returns the namespace of a numeric literal. Integer literals that
// fit in 64 bits and float literals keep their value.
func number(literal string) pythontype.Namespace {
	b := pythontype.Builtins
	s := strings.ToLower(strings.Replace(literal, "_", "", -1))
	switch {
	case strings.HasSuffix(s, "j"):
		return b.Complex.Instance
	case strings.HasSuffix(s, "l"):
		return b.Long.Instance
	}
	isHex := strings.HasPrefix(s, "0x")
	if !isHex && strings.ContainsAny(s, ".e") {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return b.FloatConst(f)
		}
		return b.Float.Instance
	}
	if i, err := strconv.ParseInt(s, 0, 64); err == nil {
		return b.IntConst(i)
	}
	return b.Int.Instance
}

func str(e *pythonast.StringExpr) pythontype.Namespace {
	b := pythontype.Builtins
	switch e.Kind {
	case pythonast.Bytes:
		return pythontype.NewConstant(b.Bytes, e.Value)
	case pythonast.Unicode:
		return pythontype.NewConstant(b.Unicode, e.Value)
	case pythonast.FormatString:
		return b.Str.Instance
	default:
		return b.StrConst(e.Value)
	}
}

func (w *walker) args(list []*pythonast.Argument) pythontype.Args {
	var args pythontype.Args
	for _, arg := range list {
		value := w.expr(arg.Value)
		switch arg.Kind {
		case pythonast.PositionalArg:
			args.Positional = append(args.Positional, value)
		case pythonast.KeywordArg:
			var name string
			if arg.Name != nil {
				name = arg.Name.Ident
			}
			args.Keywords = append(args.Keywords, pythontype.Keyword{Name: name, Types: value})
		case pythonast.ListSplatArg:
			args.Splats = append(args.Splats, value)
		case pythonast.DictSplatArg:
			args.DoubleSplats = append(args.DoubleSplats, value)
		}
	}
	return args
}

func (w *walker) lambda(e *pythonast.LambdaExpr) pythontype.TypeUnion {
	f, created := pythontype.NewFunctionAt(w.site(e), e, w.scope)
	w.evalDefaults(f)
	if created {
		w.defined(f)
	}
	return pythontype.NewUnion(f)
}

// -- displays

func (w *walker) list(e *pythonast.ListExpr) pythontype.TypeUnion {
	site := w.site(e)
	l := pythontype.NewListAt(site)
	for _, v := range e.Values {
		l.AddElements(site, w.element(v))
	}
	return pythontype.NewUnion(l)
}

func (w *walker) set(e *pythonast.SetExpr) pythontype.TypeUnion {
	site := w.site(e)
	s := pythontype.NewSetAt(site)
	for _, v := range e.Values {
		s.AddElements(site, w.element(v))
	}
	return pythontype.NewUnion(s)
}

// element evaluates one entry of a display, unpacking starred entries
func (w *walker) element(e pythonast.Expr) pythontype.TypeUnion {
	if s, ok := e.(*pythonast.StarExpr); ok {
		return pythontype.GetEnumeratedTypesUnion(w.site(s), w.expr(s.Value))
	}
	return w.expr(e)
}

func (w *walker) tuple(e *pythonast.TupleExpr) pythontype.TypeUnion {
	site := w.site(e)
	for _, v := range e.Elts {
		if _, ok := v.(*pythonast.StarExpr); ok {
			t := pythontype.NewStarTupleAt(site, 0)
			for _, v := range e.Elts {
				t.AddStar(site, w.element(v))
			}
			return pythontype.NewUnion(t)
		}
	}
	t := pythontype.NewTupleAt(site, len(e.Elts))
	for i, v := range e.Elts {
		t.SetElement(site, i, w.expr(v))
	}
	return pythontype.NewUnion(t)
}

func (w *walker) dict(e *pythonast.DictExpr) pythontype.TypeUnion {
	site := w.site(e)
	d := pythontype.NewDictAt(site)
	for _, item := range e.Items {
		if pythonast.IsNil(item.Key) {
			d.Update(site, w.expr(item.Value))
			continue
		}
		d.SetItem(site, w.expr(item.Key), w.expr(item.Value))
	}
	return pythontype.NewUnion(d)
}

// -- comprehensions

// comprehension evaluates a comprehension in its own unit. The unit is run
// inline each time the enclosing unit runs and is also queued on its own when
// the bindings it reads change.
func (w *walker) comprehension(e pythonast.Comprehension) pythontype.TypeUnion {
	child, _ := w.unit.ChildUnit(e, func() *pythontype.AnalysisUnit {
		scope := pythontype.NewScope(pythontype.ComprehensionScope, w.scope, e)
		u := pythontype.NewUnit(w.unit.State, pythontype.ComprehensionUnit, e, scope, w.unit.Entry, w.unit)
		u.Function = w.unit.Function
		u.ForEval = w.unit.ForEval
		return u
	})
	return newWalker(w.ctx, w.a, child).comprehensionBody()
}

func (w *walker) comprehensionBody() pythontype.TypeUnion {
	e := w.unit.Node.(pythonast.Comprehension)
	base := e.Base()
	for i, g := range base.Generators {
		var iterable pythontype.TypeUnion
		if i == 0 {
			// the outermost iterable is evaluated in the enclosing scope
			outer := &walker{ctx: w.ctx, a: w.a, unit: w.unit, scope: w.scope.Parent}
			iterable = outer.expr(g.Iterable)
		} else {
			iterable = w.expr(g.Iterable)
		}
		elems := pythontype.GetEnumeratedTypesUnion(w.site(g), iterable)
		if len(g.Vars) == 1 {
			w.assign(g.Vars[0], elems)
		} else {
			w.unpack(g, g.Vars, elems)
		}
		for _, f := range g.Filters {
			w.expr(f)
		}
	}

	site := w.site(e)
	switch e := e.(type) {
	case *pythonast.ListComprehensionExpr:
		l := pythontype.NewListAt(site)
		l.AddElements(site, w.expr(base.Result))
		return pythontype.NewUnion(l)
	case *pythonast.SetComprehensionExpr:
		s := pythontype.NewSetAt(site)
		s.AddElements(site, w.expr(base.Result))
		return pythontype.NewUnion(s)
	case *pythonast.DictComprehensionExpr:
		d := pythontype.NewDictAt(site)
		d.SetItem(site, w.expr(e.Key), w.expr(e.Value))
		return pythontype.NewUnion(d)
	default:
		g := pythontype.NewGeneratorAt(site)
		g.AddYield(site, w.expr(base.Result))
		return pythontype.NewUnion(g)
	}
}

// -- generators

func (w *walker) yield(e *pythonast.YieldExpr) pythontype.TypeUnion {
	var gen *pythontype.GeneratorInfo
	if fa := w.unit.Function; fa != nil {
		gen = fa.Generator
	}
	if gen == nil {
		w.expr(e.Value)
		return pythontype.TypeUnion{}
	}
	site := w.site(e)
	if e.From {
		return gen.YieldFrom(site, w.expr(e.Value))
	}
	value := pythontype.NewUnion(pythontype.Builtins.None)
	if !pythonast.IsNil(e.Value) {
		value = w.expr(e.Value)
	}
	gen.AddYield(site, value)
	return gen.Sends.TypesFor(w.unit)
}

// walrus binds its target in the nearest scope that is not a comprehension
func (w *walker) walrus(e *pythonast.AssignExpr) pythontype.TypeUnion {
	value := w.expr(e.Value)
	scope := w.scope
	for scope.Kind == pythontype.ComprehensionScope && scope.Parent != nil {
		scope = scope.Parent
	}
	v := scope.Declare(e.Target.Ident)
	if !w.unit.ForEval {
		v.AddAssignment(w.location(e.Target))
	}
	v.AddTypesLimited(w.unit, value, w.limits().AssignedTypes)
	return value
}
