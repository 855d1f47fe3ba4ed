package pythonparser

import (
	"go/token"
	"strings"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-golib/errors"
	"github.com/kiteco/pyinfer/kite-golib/kitectx"

	sitter "github.com/kiteco/go-tree-sitter"
)

// converter turns a tree-sitter concrete syntax tree into a pythonast tree.
// Node names cover both the 2020 grammar and the renames made after it
// (pattern_list, as_pattern, with_clause and friends).
type converter struct {
	ctx   kitectx.Context
	src   []byte
	lines *pythonast.LineMap
	errs  errors.Errors
}

func (c *converter) text(n *sitter.Node) string {
	return n.Content(c.src)
}

func (c *converter) span(n *sitter.Node) pythonast.Span {
	return pythonast.Span{From: token.Pos(n.StartByte()), To: token.Pos(n.EndByte())}
}

func (c *converter) fail(n *sitter.Node, msg string) {
	pos := token.Pos(n.StartByte())
	line, _ := c.lines.Position(pos)
	c.errs = errors.Append(c.errs, SyntaxError{Pos: pos, Line: line, Msg: msg})
}

// collectErrors records every ERROR and MISSING node below n
func (c *converter) collectErrors(n *sitter.Node) {
	if n == nil {
		return
	}
	switch {
	case n.Type() == "ERROR":
		c.fail(n, "invalid syntax")
		return
	case n.IsMissing():
		c.fail(n, "missing "+n.Type())
		return
	case !n.HasError():
		return
	}
	for _, ch := range children(n) {
		c.collectErrors(ch)
	}
}

func children(n *sitter.Node) []*sitter.Node {
	if n == nil {
		return nil
	}
	var out []*sitter.Node
	for i := 0; i < int(n.ChildCount()); i++ {
		ch := n.Child(i)
		if ch == nil || ch.Type() == "comment" {
			continue
		}
		out = append(out, ch)
	}
	return out
}

func field(n *sitter.Node, name string) *sitter.Node {
	if n == nil {
		return nil
	}
	return n.ChildByFieldName(name)
}

// block returns the suite of a compound statement or clause. The pinned
// grammar reaches the suite through a hidden rule, so the field lookup misses
// it and the last block child is used instead.
func block(n *sitter.Node, name string) *sitter.Node {
	if b := field(n, name); b != nil {
		return b
	}
	var out *sitter.Node
	for _, ch := range children(n) {
		if ch.Type() == "block" {
			out = ch
		}
	}
	return out
}

// clause returns the field name of n, or else its first child of type typ
func clause(n *sitter.Node, name, typ string) *sitter.Node {
	if ch := field(n, name); ch != nil {
		return ch
	}
	for _, ch := range children(n) {
		if ch.Type() == typ {
			return ch
		}
	}
	return nil
}

// condition returns the condition of an if, elif or while
func condition(n *sitter.Node) *sitter.Node {
	if cond := field(n, "condition"); cond != nil {
		return cond
	}
	for _, ch := range children(n) {
		if isExpr(ch) {
			return ch
		}
	}
	return nil
}

// hasComma returns true if a comma separates or ends the children of n
func hasComma(n *sitter.Node) bool {
	for _, ch := range children(n) {
		if ch.Type() == "," {
			return true
		}
	}
	return false
}

func sameNode(a, b *sitter.Node) bool {
	return a != nil && b != nil && a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte() && a.Type() == b.Type()
}

// -- statements

func (c *converter) module(root *sitter.Node) *pythonast.Module {
	c.collectErrors(root)
	mod := &pythonast.Module{Span: c.span(root)}
	for _, ch := range children(root) {
		c.ctx.CheckAbort()
		mod.Body = append(mod.Body, c.stmt(ch)...)
	}
	return mod
}

// suite converts a block, or a bare simple statement after a colon
func (c *converter) suite(n *sitter.Node) []pythonast.Stmt {
	if n == nil {
		return nil
	}
	if n.Type() != "block" {
		return c.stmt(n)
	}
	var out []pythonast.Stmt
	for _, ch := range children(n) {
		out = append(out, c.stmt(ch)...)
	}
	return out
}

func (c *converter) stmt(n *sitter.Node) []pythonast.Stmt {
	sp := c.span(n)
	switch n.Type() {
	case "expression_statement":
		return []pythonast.Stmt{c.exprStmt(n)}
	case "assignment", "augmented_assignment":
		return []pythonast.Stmt{c.assignment(n)}
	case "return_statement":
		ret := &pythonast.ReturnStmt{Span: sp}
		if exprs := c.exprChildren(n); len(exprs) > 0 {
			ret.Value = c.pack(n, exprs)
		}
		return []pythonast.Stmt{ret}
	case "delete_statement":
		del := &pythonast.DelStmt{Span: sp}
		for _, e := range c.exprChildren(n) {
			if tup, ok := e.(*pythonast.TupleExpr); ok {
				del.Targets = append(del.Targets, tup.Elts...)
			} else {
				del.Targets = append(del.Targets, e)
			}
		}
		for _, t := range del.Targets {
			pythonast.SetUsage(t, pythonast.Delete)
		}
		return []pythonast.Stmt{del}
	case "raise_statement":
		raise := &pythonast.RaiseStmt{Span: sp}
		cause := field(n, "cause")
		for _, ch := range children(n) {
			if !isExpr(ch) || sameNode(ch, cause) {
				continue
			}
			if raise.Type == nil {
				raise.Type = c.expr(ch)
			}
		}
		if cause != nil {
			raise.Cause = c.expr(cause)
		}
		return []pythonast.Stmt{raise}
	case "assert_statement":
		exprs := c.exprChildren(n)
		as := &pythonast.AssertStmt{Span: sp}
		if len(exprs) > 0 {
			as.Condition = exprs[0]
		}
		if len(exprs) > 1 {
			as.Message = exprs[1]
		}
		return []pythonast.Stmt{as}
	case "pass_statement":
		return []pythonast.Stmt{&pythonast.PassStmt{Span: sp}}
	case "break_statement":
		return []pythonast.Stmt{&pythonast.BreakStmt{Span: sp}}
	case "continue_statement":
		return []pythonast.Stmt{&pythonast.ContinueStmt{Span: sp}}
	case "global_statement":
		return []pythonast.Stmt{&pythonast.GlobalStmt{Span: sp, Names: c.names(n)}}
	case "nonlocal_statement":
		return []pythonast.Stmt{&pythonast.NonLocalStmt{Span: sp, Names: c.names(n)}}
	case "import_statement":
		return []pythonast.Stmt{c.importName(n)}
	case "import_from_statement":
		return []pythonast.Stmt{c.importFrom(n)}
	case "future_import_statement":
		return nil
	case "print_statement", "exec_statement":
		fn := &pythonast.NameExpr{Span: pythonast.Span{From: sp.From, To: sp.From}, Ident: strings.TrimSuffix(n.Type(), "_statement")}
		call := &pythonast.CallExpr{Span: sp, Func: fn}
		for _, e := range c.exprChildren(n) {
			call.Args = append(call.Args, &pythonast.Argument{Span: pythonast.Span{From: e.Begin(), To: e.End()}, Value: e})
		}
		return []pythonast.Stmt{&pythonast.ExprStmt{Span: sp, Value: call}}
	case "if_statement":
		return []pythonast.Stmt{c.ifStmt(n)}
	case "for_statement":
		return []pythonast.Stmt{c.forStmt(n)}
	case "while_statement":
		w := &pythonast.WhileStmt{
			Span:      sp,
			Condition: c.optExpr(condition(n)),
			Body:      c.suite(block(n, "body")),
		}
		if alt := clause(n, "alternative", "else_clause"); alt != nil {
			w.Else = c.suite(block(alt, "body"))
		}
		return []pythonast.Stmt{w}
	case "try_statement":
		return []pythonast.Stmt{c.tryStmt(n)}
	case "with_statement":
		return []pythonast.Stmt{c.withStmt(n)}
	case "function_definition":
		return []pythonast.Stmt{c.functionDef(n, nil)}
	case "class_definition":
		return []pythonast.Stmt{c.classDef(n, nil)}
	case "decorated_definition":
		var decorators []pythonast.Expr
		for _, ch := range children(n) {
			if ch.Type() == "decorator" {
				decorators = append(decorators, c.decorator(ch))
			}
		}
		def := field(n, "definition")
		if def == nil {
			for _, ch := range children(n) {
				if ch.Type() == "function_definition" || ch.Type() == "class_definition" {
					def = ch
				}
			}
		}
		switch {
		case def == nil:
			return []pythonast.Stmt{&pythonast.BadStmt{Span: sp}}
		case def.Type() == "class_definition":
			return []pythonast.Stmt{c.classDef(def, decorators)}
		default:
			return []pythonast.Stmt{c.functionDef(def, decorators)}
		}
	case "ERROR":
		return []pythonast.Stmt{&pythonast.BadStmt{Span: sp}}
	case ";", ":", "\n":
		return nil
	}
	if isExpr(n) {
		return []pythonast.Stmt{&pythonast.ExprStmt{Span: sp, Value: c.expr(n)}}
	}
	return nil
}

func (c *converter) exprStmt(n *sitter.Node) pythonast.Stmt {
	sp := c.span(n)
	kids := children(n)
	if len(kids) == 1 {
		switch kids[0].Type() {
		case "assignment", "augmented_assignment":
			return c.assignment(kids[0])
		}
	}
	exprs := c.exprChildren(n)
	if len(exprs) == 0 {
		return &pythonast.BadStmt{Span: sp}
	}
	return &pythonast.ExprStmt{Span: sp, Value: c.pack(n, exprs)}
}

func (c *converter) assignment(n *sitter.Node) pythonast.Stmt {
	sp := c.span(n)
	if n.Type() == "augmented_assignment" {
		op := pythonast.IllegalOp
		if o := field(n, "operator"); o != nil {
			op = pythonast.LookupOp(c.text(o))
		}
		target := c.expr(field(n, "left"))
		pythonast.SetUsage(target, pythonast.Assign)
		return &pythonast.AugAssignStmt{
			Span:   sp,
			Target: target,
			Op:     op,
			Value:  c.rhs(field(n, "right")),
		}
	}

	stmt := &pythonast.AssignStmt{Span: sp}
	if typ := field(n, "type"); typ != nil {
		stmt.Annotation = c.expr(typ)
	}
	cur := n
	for {
		target := c.expr(field(cur, "left"))
		pythonast.SetUsage(target, pythonast.Assign)
		stmt.Targets = append(stmt.Targets, target)

		right := field(cur, "right")
		if right != nil && right.Type() == "assignment" {
			cur = right
			continue
		}
		if right != nil {
			stmt.Value = c.rhs(right)
		}
		break
	}
	return stmt
}

// rhs converts the right hand side of an assignment
func (c *converter) rhs(n *sitter.Node) pythonast.Expr {
	if n == nil {
		return nil
	}
	return c.expr(n)
}

func (c *converter) names(n *sitter.Node) []*pythonast.NameExpr {
	var out []*pythonast.NameExpr
	for _, ch := range children(n) {
		if ch.Type() == "identifier" {
			out = append(out, c.name(ch))
		}
	}
	return out
}

func (c *converter) name(n *sitter.Node) *pythonast.NameExpr {
	return &pythonast.NameExpr{Span: c.span(n), Ident: c.text(n)}
}

func (c *converter) dotted(n *sitter.Node) *pythonast.DottedExpr {
	d := &pythonast.DottedExpr{Span: c.span(n)}
	if n.Type() == "identifier" {
		d.Names = []*pythonast.NameExpr{c.name(n)}
		return d
	}
	d.Names = c.names(n)
	return d
}

func (c *converter) importName(n *sitter.Node) pythonast.Stmt {
	stmt := &pythonast.ImportNameStmt{Span: c.span(n)}
	for _, ch := range children(n) {
		switch ch.Type() {
		case "dotted_name":
			stmt.Names = append(stmt.Names, &pythonast.DottedAsName{Span: c.span(ch), External: c.dotted(ch)})
		case "aliased_import":
			clause := &pythonast.DottedAsName{Span: c.span(ch)}
			if name := field(ch, "name"); name != nil {
				clause.External = c.dotted(name)
			}
			if alias := field(ch, "alias"); alias != nil {
				clause.Internal = c.name(alias)
			}
			if clause.External != nil {
				stmt.Names = append(stmt.Names, clause)
			}
		}
	}
	return stmt
}

func (c *converter) importFrom(n *sitter.Node) pythonast.Stmt {
	stmt := &pythonast.ImportFromStmt{Span: c.span(n)}
	if mod := field(n, "module_name"); mod != nil {
		switch mod.Type() {
		case "relative_import":
			for _, ch := range children(mod) {
				switch ch.Type() {
				case "import_prefix":
					stmt.Dots = strings.Count(c.text(ch), ".")
				case "dotted_name":
					stmt.Package = c.dotted(ch)
				}
			}
		default:
			stmt.Package = c.dotted(mod)
		}
	}

	seenImport := false
	for _, ch := range children(n) {
		if ch.Type() == "import" {
			seenImport = true
			continue
		}
		if !seenImport {
			continue
		}
		switch ch.Type() {
		case "wildcard_import":
			stmt.Wildcard = true
		case "dotted_name", "identifier":
			stmt.Names = append(stmt.Names, &pythonast.ImportAsName{Span: c.span(ch), External: c.leaf(ch)})
		case "aliased_import":
			clause := &pythonast.ImportAsName{Span: c.span(ch)}
			if name := field(ch, "name"); name != nil {
				clause.External = c.leaf(name)
			}
			if alias := field(ch, "alias"); alias != nil {
				clause.Internal = c.name(alias)
			}
			if clause.External != nil {
				stmt.Names = append(stmt.Names, clause)
			}
		}
	}
	return stmt
}

// leaf converts a dotted_name holding a single identifier to a name
func (c *converter) leaf(n *sitter.Node) *pythonast.NameExpr {
	if n.Type() == "identifier" {
		return c.name(n)
	}
	names := c.names(n)
	if len(names) == 0 {
		return &pythonast.NameExpr{Span: c.span(n), Ident: c.text(n)}
	}
	return names[len(names)-1]
}

func (c *converter) ifStmt(n *sitter.Node) pythonast.Stmt {
	stmt := &pythonast.IfStmt{Span: c.span(n)}
	stmt.Branches = append(stmt.Branches, &pythonast.Branch{
		Span:      c.span(n),
		Condition: c.optExpr(condition(n)),
		Body:      c.suite(block(n, "consequence")),
	})
	for _, ch := range children(n) {
		switch ch.Type() {
		case "elif_clause":
			stmt.Branches = append(stmt.Branches, &pythonast.Branch{
				Span:      c.span(ch),
				Condition: c.optExpr(condition(ch)),
				Body:      c.suite(block(ch, "consequence")),
			})
		case "else_clause":
			stmt.Else = c.suite(block(ch, "body"))
		}
	}
	return stmt
}

func (c *converter) forStmt(n *sitter.Node) pythonast.Stmt {
	stmt := &pythonast.ForStmt{
		Span:     c.span(n),
		Targets:  c.targets(field(n, "left")),
		Iterable: c.optExpr(field(n, "right")),
		Body:     c.suite(block(n, "body")),
	}
	if kids := children(n); len(kids) > 0 && kids[0].Type() == "async" {
		stmt.Async = true
	}
	if alt := clause(n, "alternative", "else_clause"); alt != nil {
		stmt.Else = c.suite(block(alt, "body"))
	}
	return stmt
}

// targets converts the left hand side of a for loop or comprehension clause.
// `for a, b in x` yields two targets, `for (a, b) in x` a single tuple.
func (c *converter) targets(n *sitter.Node) []pythonast.Expr {
	if n == nil {
		return nil
	}
	var out []pythonast.Expr
	switch n.Type() {
	case "variables", "pattern_list", "expression_list":
		out = c.exprChildren(n)
	default:
		out = []pythonast.Expr{c.expr(n)}
	}
	for _, t := range out {
		pythonast.SetUsage(t, pythonast.Assign)
	}
	return out
}

func (c *converter) tryStmt(n *sitter.Node) pythonast.Stmt {
	stmt := &pythonast.TryStmt{Span: c.span(n), Body: c.suite(block(n, "body"))}
	for _, ch := range children(n) {
		switch ch.Type() {
		case "except_clause", "except_group_clause":
			stmt.Handlers = append(stmt.Handlers, c.exceptClause(ch))
		case "else_clause":
			stmt.Else = c.suite(block(ch, "body"))
		case "finally_clause":
			stmt.Finally = c.suite(block(ch, "body"))
		}
	}
	return stmt
}

func (c *converter) exceptClause(n *sitter.Node) *pythonast.ExceptClause {
	clause := &pythonast.ExceptClause{Span: c.span(n)}
	var exprs []*sitter.Node
	for _, ch := range children(n) {
		switch {
		case ch.Type() == "block":
			clause.Body = c.suite(ch)
		case ch.Type() == "as_pattern":
			kids := children(ch)
			if len(kids) > 0 {
				exprs = append(exprs, kids[0])
			}
			if alias := field(ch, "alias"); alias != nil {
				exprs = append(exprs, alias)
			}
		case isExpr(ch):
			exprs = append(exprs, ch)
		}
	}
	if len(exprs) > 0 {
		clause.Type = c.expr(exprs[0])
	}
	if len(exprs) > 1 {
		clause.Target = c.expr(exprs[1])
		pythonast.SetUsage(clause.Target, pythonast.Assign)
	}
	return clause
}

func (c *converter) withStmt(n *sitter.Node) pythonast.Stmt {
	stmt := &pythonast.WithStmt{Span: c.span(n), Body: c.suite(block(n, "body"))}
	var visit func(*sitter.Node)
	visit = func(p *sitter.Node) {
		for _, ch := range children(p) {
			switch ch.Type() {
			case "async":
				stmt.Async = true
			case "with_clause":
				visit(ch)
			case "with_item":
				stmt.Items = append(stmt.Items, c.withItem(ch))
			}
		}
	}
	visit(n)
	return stmt
}

func (c *converter) withItem(n *sitter.Node) *pythonast.WithItem {
	item := &pythonast.WithItem{Span: c.span(n)}
	value := field(n, "value")
	alias := field(n, "alias")
	if value != nil && value.Type() == "as_pattern" {
		if kids := children(value); len(kids) > 0 {
			alias = field(value, "alias")
			value = kids[0]
		}
	}
	item.Value = c.optExpr(value)
	if alias != nil {
		item.Target = c.expr(alias)
		pythonast.SetUsage(item.Target, pythonast.Assign)
	}
	return item
}

func (c *converter) decorator(n *sitter.Node) pythonast.Expr {
	var dotted *sitter.Node
	var args *sitter.Node
	for _, ch := range children(n) {
		switch {
		case ch.Type() == "dotted_name":
			dotted = ch
		case ch.Type() == "argument_list":
			args = ch
		case isExpr(ch):
			return c.expr(ch)
		}
	}
	if dotted == nil {
		return &pythonast.BadExpr{Span: c.span(n)}
	}
	// older grammars spell the decorator as a dotted name and optional arguments
	var expr pythonast.Expr
	for _, name := range c.names(dotted) {
		if expr == nil {
			expr = name
			continue
		}
		expr = &pythonast.AttributeExpr{
			Span:      pythonast.Span{From: expr.Begin(), To: name.End()},
			Value:     expr,
			Attribute: name,
		}
	}
	if expr == nil {
		return &pythonast.BadExpr{Span: c.span(n)}
	}
	if args != nil {
		expr = &pythonast.CallExpr{
			Span: pythonast.Span{From: expr.Begin(), To: token.Pos(args.EndByte())},
			Func: expr,
			Args: c.arguments(args),
		}
	}
	return expr
}

func (c *converter) functionDef(n *sitter.Node, decorators []pythonast.Expr) pythonast.Stmt {
	def := &pythonast.FunctionDefStmt{
		Span:       c.span(n),
		Decorators: decorators,
		Body:       c.suite(block(n, "body")),
	}
	if name := field(n, "name"); name != nil {
		def.Name = c.name(name)
	} else {
		return &pythonast.BadStmt{Span: c.span(n)}
	}
	def.Name.Usage = pythonast.Assign
	if kids := children(n); len(kids) > 0 && kids[0].Type() == "async" {
		def.Async = true
	}
	def.Parameters, def.Vararg, def.Kwarg = c.parameters(field(n, "parameters"))
	if ret := field(n, "return_type"); ret != nil {
		def.Annotation = c.expr(ret)
	}
	return def
}

func (c *converter) classDef(n *sitter.Node, decorators []pythonast.Expr) pythonast.Stmt {
	def := &pythonast.ClassDefStmt{
		Span:       c.span(n),
		Decorators: decorators,
		Body:       c.suite(block(n, "body")),
	}
	name := field(n, "name")
	if name == nil {
		return &pythonast.BadStmt{Span: c.span(n)}
	}
	def.Name = c.name(name)
	def.Name.Usage = pythonast.Assign
	if supers := field(n, "superclasses"); supers != nil {
		def.Args = c.arguments(supers)
	}
	return def
}

func (c *converter) parameters(n *sitter.Node) ([]*pythonast.Parameter, *pythonast.ArgsParameter, *pythonast.ArgsParameter) {
	var params []*pythonast.Parameter
	var vararg, kwarg *pythonast.ArgsParameter
	keywordOnly := false

	splat := func(p *sitter.Node, annotation pythonast.Expr) *pythonast.ArgsParameter {
		for _, ch := range children(p) {
			if ch.Type() == "identifier" {
				name := c.name(ch)
				name.Usage = pythonast.Assign
				return &pythonast.ArgsParameter{Span: c.span(p), Name: name, Annotation: annotation}
			}
		}
		return nil
	}

	for _, ch := range children(n) {
		param := &pythonast.Parameter{Span: c.span(ch), KeywordOnly: keywordOnly}
		switch ch.Type() {
		case "identifier", "keyword_identifier":
			param.Name = c.name(ch)
		case "default_parameter":
			param.Name = c.optName(field(ch, "name"))
			param.Default = c.optExpr(field(ch, "value"))
		case "typed_default_parameter":
			param.Name = c.optName(field(ch, "name"))
			param.Annotation = c.optExpr(field(ch, "type"))
			param.Default = c.optExpr(field(ch, "value"))
		case "typed_parameter":
			annotation := c.optExpr(field(ch, "type"))
			for _, k := range children(ch) {
				switch k.Type() {
				case "identifier":
					param.Name = c.name(k)
					param.Annotation = annotation
				case "list_splat", "list_splat_pattern":
					vararg = splat(k, annotation)
					keywordOnly = true
				case "dictionary_splat", "dictionary_splat_pattern":
					kwarg = splat(k, annotation)
				}
			}
		case "list_splat", "list_splat_pattern":
			vararg = splat(ch, nil)
			keywordOnly = true
		case "dictionary_splat", "dictionary_splat_pattern":
			kwarg = splat(ch, nil)
		case "*", "keyword_separator":
			keywordOnly = true
		}
		if param.Name != nil {
			param.Name.Usage = pythonast.Assign
			params = append(params, param)
		}
	}
	return params, vararg, kwarg
}

func (c *converter) optName(n *sitter.Node) *pythonast.NameExpr {
	if n == nil {
		return nil
	}
	return c.name(n)
}

// -- expressions

var exprTypes = map[string]bool{
	"identifier":               true,
	"keyword_identifier":       true,
	"true":                     true,
	"false":                    true,
	"none":                     true,
	"integer":                  true,
	"float":                    true,
	"string":                   true,
	"concatenated_string":      true,
	"ellipsis":                 true,
	"attribute":                true,
	"subscript":                true,
	"slice":                    true,
	"call":                     true,
	"binary_operator":          true,
	"boolean_operator":         true,
	"not_operator":             true,
	"unary_operator":           true,
	"comparison_operator":      true,
	"conditional_expression":   true,
	"lambda":                   true,
	"list":                     true,
	"tuple":                    true,
	"set":                      true,
	"dictionary":               true,
	"expression_list":          true,
	"pattern_list":             true,
	"tuple_pattern":            true,
	"list_pattern":             true,
	"variables":                true,
	"parenthesized_expression": true,
	"list_comprehension":       true,
	"set_comprehension":        true,
	"dictionary_comprehension": true,
	"generator_expression":     true,
	"yield":                    true,
	"await":                    true,
	"named_expression":         true,
	"list_splat":               true,
	"list_splat_pattern":       true,
	"parenthesized_list_splat": true,
	"type":                     true,
	"ERROR":                    true,
}

func isExpr(n *sitter.Node) bool {
	return n != nil && exprTypes[n.Type()]
}

func (c *converter) exprChildren(n *sitter.Node) []pythonast.Expr {
	var out []pythonast.Expr
	for _, ch := range children(n) {
		if isExpr(ch) {
			out = append(out, c.expr(ch))
		}
	}
	return out
}

// pack turns a comma separated sequence into a single expression
func (c *converter) pack(n *sitter.Node, exprs []pythonast.Expr) pythonast.Expr {
	if len(exprs) == 1 {
		return exprs[0]
	}
	return &pythonast.TupleExpr{
		Span: pythonast.Span{From: exprs[0].Begin(), To: exprs[len(exprs)-1].End()},
		Elts: exprs,
	}
}

func (c *converter) optExpr(n *sitter.Node) pythonast.Expr {
	if n == nil {
		return nil
	}
	return c.expr(n)
}

func (c *converter) expr(n *sitter.Node) pythonast.Expr {
	if n == nil {
		return nil
	}
	sp := c.span(n)
	switch n.Type() {
	case "identifier", "keyword_identifier":
		return c.name(n)
	case "true":
		return &pythonast.NameExpr{Span: sp, Ident: "True"}
	case "false":
		return &pythonast.NameExpr{Span: sp, Ident: "False"}
	case "none":
		return &pythonast.NameExpr{Span: sp, Ident: "None"}
	case "integer", "float":
		return &pythonast.NumberExpr{Span: sp, Literal: c.text(n)}
	case "string":
		kind, value := parseString(c.text(n))
		return &pythonast.StringExpr{Span: sp, Kind: kind, Value: value}
	case "concatenated_string":
		str := &pythonast.StringExpr{Span: sp}
		for i, ch := range children(n) {
			kind, value := parseString(c.text(ch))
			if i == 0 {
				str.Kind = kind
			}
			str.Value += value
		}
		return str
	case "ellipsis":
		return &pythonast.EllipsisExpr{Span: sp}
	case "attribute":
		attr := field(n, "attribute")
		if attr == nil {
			return &pythonast.BadExpr{Span: sp}
		}
		return &pythonast.AttributeExpr{
			Span:      sp,
			Value:     c.optExpr(field(n, "object")),
			Attribute: c.name(attr),
		}
	case "subscript":
		value := field(n, "value")
		var subs []pythonast.Expr
		for _, ch := range children(n) {
			if sameNode(ch, value) {
				continue
			}
			if isExpr(ch) {
				subs = append(subs, c.expr(ch))
			}
		}
		ix := &pythonast.IndexExpr{Span: sp, Value: c.optExpr(value)}
		if len(subs) > 0 {
			ix.Subscript = c.pack(n, subs)
		}
		return ix
	case "slice":
		return c.slice(n)
	case "call":
		call := &pythonast.CallExpr{Span: sp, Func: c.optExpr(field(n, "function"))}
		if args := field(n, "arguments"); args != nil {
			if args.Type() == "generator_expression" {
				gen := c.expr(args)
				call.Args = []*pythonast.Argument{{Span: c.span(args), Value: gen}}
			} else {
				call.Args = c.arguments(args)
			}
		}
		return call
	case "binary_operator", "boolean_operator":
		left, right := field(n, "left"), field(n, "right")
		op := pythonast.IllegalOp
		if o := field(n, "operator"); o != nil {
			op = pythonast.LookupOp(c.text(o))
		} else {
			for _, ch := range children(n) {
				if !sameNode(ch, left) && !sameNode(ch, right) {
					op = pythonast.LookupOp(c.text(ch))
					break
				}
			}
		}
		return &pythonast.BinaryExpr{Span: sp, Left: c.optExpr(left), Op: op, Right: c.optExpr(right)}
	case "not_operator":
		arg := field(n, "argument")
		if arg == nil {
			if kids := children(n); len(kids) > 1 {
				arg = kids[len(kids)-1]
			}
		}
		return &pythonast.UnaryExpr{Span: sp, Op: pythonast.Not, Value: c.optExpr(arg)}
	case "unary_operator":
		kids := children(n)
		arg := field(n, "argument")
		if arg == nil && len(kids) > 1 {
			arg = kids[len(kids)-1]
		}
		op := pythonast.IllegalOp
		if len(kids) > 0 {
			switch c.text(kids[0]) {
			case "-":
				op = pythonast.Sub
			case "+":
				op = pythonast.Add
			case "~":
				op = pythonast.Invert
			}
		}
		return &pythonast.UnaryExpr{Span: sp, Op: op, Value: c.optExpr(arg)}
	case "comparison_operator":
		return c.comparison(n)
	case "conditional_expression":
		exprs := c.exprChildren(n)
		if len(exprs) != 3 {
			return &pythonast.BadExpr{Span: sp}
		}
		return &pythonast.IfExpr{Span: sp, Body: exprs[0], Condition: exprs[1], Else: exprs[2]}
	case "lambda":
		body := field(n, "body")
		if body == nil {
			if exprs := children(n); len(exprs) > 0 && isExpr(exprs[len(exprs)-1]) {
				body = exprs[len(exprs)-1]
			}
		}
		lambda := &pythonast.LambdaExpr{Span: sp, Body: c.optExpr(body)}
		lambda.Parameters, lambda.Vararg, lambda.Kwarg = c.parameters(field(n, "parameters"))
		return lambda
	case "list", "list_pattern":
		return &pythonast.ListExpr{Span: sp, Values: c.exprChildren(n)}
	case "tuple", "expression_list", "pattern_list", "tuple_pattern", "variables":
		exprs := c.exprChildren(n)
		switch n.Type() {
		case "expression_list", "pattern_list", "variables":
			// a lone expression without a trailing comma is not a tuple
			if len(exprs) == 1 && !hasComma(n) {
				return exprs[0]
			}
		}
		return &pythonast.TupleExpr{Span: sp, Elts: exprs}
	case "set":
		return &pythonast.SetExpr{Span: sp, Values: c.exprChildren(n)}
	case "dictionary":
		dict := &pythonast.DictExpr{Span: sp}
		for _, ch := range children(n) {
			switch ch.Type() {
			case "pair":
				dict.Items = append(dict.Items, &pythonast.KeyValuePair{
					Span:  c.span(ch),
					Key:   c.optExpr(field(ch, "key")),
					Value: c.optExpr(field(ch, "value")),
				})
			case "dictionary_splat":
				dict.Items = append(dict.Items, &pythonast.KeyValuePair{Span: c.span(ch), Value: c.splatValue(ch)})
			}
		}
		return dict
	case "parenthesized_expression", "type":
		exprs := c.exprChildren(n)
		if len(exprs) != 1 {
			return &pythonast.BadExpr{Span: sp}
		}
		return exprs[0]
	case "list_comprehension", "set_comprehension", "generator_expression", "dictionary_comprehension":
		return c.comprehension(n)
	case "yield":
		y := &pythonast.YieldExpr{Span: sp}
		for _, ch := range children(n) {
			if ch.Type() == "from" {
				y.From = true
			}
		}
		if exprs := c.exprChildren(n); len(exprs) > 0 {
			y.Value = c.pack(n, exprs)
		}
		return y
	case "await":
		return &pythonast.AwaitExpr{Span: sp, Value: c.first(n)}
	case "named_expression":
		name := field(n, "name")
		if name == nil {
			return &pythonast.BadExpr{Span: sp}
		}
		target := c.name(name)
		target.Usage = pythonast.Assign
		return &pythonast.AssignExpr{Span: sp, Target: target, Value: c.optExpr(field(n, "value"))}
	case "list_splat", "list_splat_pattern", "parenthesized_list_splat":
		return &pythonast.StarExpr{Span: sp, Value: c.splatValue(n)}
	}
	return &pythonast.BadExpr{Span: sp}
}

func (c *converter) first(n *sitter.Node) pythonast.Expr {
	if exprs := c.exprChildren(n); len(exprs) > 0 {
		return exprs[0]
	}
	return nil
}

func (c *converter) splatValue(n *sitter.Node) pythonast.Expr {
	if v := c.first(n); v != nil {
		if star, ok := v.(*pythonast.StarExpr); ok && n.Type() == "parenthesized_list_splat" {
			return star.Value
		}
		return v
	}
	return &pythonast.BadExpr{Span: c.span(n)}
}

func (c *converter) slice(n *sitter.Node) pythonast.Expr {
	s := &pythonast.SliceExpr{Span: c.span(n)}
	part := 0
	for _, ch := range children(n) {
		if ch.Type() == ":" {
			part++
			continue
		}
		if !isExpr(ch) {
			continue
		}
		switch part {
		case 0:
			s.Lower = c.expr(ch)
		case 1:
			s.Upper = c.expr(ch)
		default:
			s.Step = c.expr(ch)
		}
	}
	return s
}

func (c *converter) arguments(n *sitter.Node) []*pythonast.Argument {
	var args []*pythonast.Argument
	for _, ch := range children(n) {
		sp := c.span(ch)
		switch {
		case ch.Type() == "keyword_argument":
			name := field(ch, "name")
			if name == nil {
				continue
			}
			args = append(args, &pythonast.Argument{
				Span:  sp,
				Kind:  pythonast.KeywordArg,
				Name:  c.name(name),
				Value: c.optExpr(field(ch, "value")),
			})
		case ch.Type() == "list_splat" || ch.Type() == "parenthesized_list_splat":
			args = append(args, &pythonast.Argument{Span: sp, Kind: pythonast.ListSplatArg, Value: c.splatValue(ch)})
		case ch.Type() == "dictionary_splat":
			args = append(args, &pythonast.Argument{Span: sp, Kind: pythonast.DictSplatArg, Value: c.splatValue(ch)})
		case isExpr(ch):
			args = append(args, &pythonast.Argument{Span: sp, Value: c.expr(ch)})
		}
	}
	return args
}

// comparison converts a (possibly chained) comparison. `a < b < c` becomes
// `a < b and b < c`.
func (c *converter) comparison(n *sitter.Node) pythonast.Expr {
	var operands []pythonast.Expr
	var ops []pythonast.Op
	pending := ""
	for _, ch := range children(n) {
		if isExpr(ch) {
			if pending != "" {
				ops = append(ops, pythonast.LookupOp(pending))
				pending = ""
			}
			operands = append(operands, c.expr(ch))
			continue
		}
		if pending == "" {
			pending = c.text(ch)
		} else {
			pending += " " + c.text(ch)
		}
	}
	if len(operands) < 2 || len(ops) != len(operands)-1 {
		return &pythonast.BadExpr{Span: c.span(n)}
	}

	var out pythonast.Expr
	for i, op := range ops {
		cmp := &pythonast.BinaryExpr{
			Span:  pythonast.Span{From: operands[i].Begin(), To: operands[i+1].End()},
			Left:  operands[i],
			Op:    op,
			Right: operands[i+1],
		}
		if out == nil {
			out = cmp
			continue
		}
		out = &pythonast.BinaryExpr{
			Span:  pythonast.Span{From: out.Begin(), To: cmp.End()},
			Left:  out,
			Op:    pythonast.And,
			Right: cmp,
		}
	}
	return out
}

func (c *converter) comprehension(n *sitter.Node) pythonast.Expr {
	base := pythonast.BaseComprehension{Span: c.span(n)}
	body := field(n, "body")
	if body == nil {
		for _, ch := range children(n) {
			if isExpr(ch) || ch.Type() == "pair" {
				body = ch
				break
			}
		}
	}

	var clauses []*sitter.Node
	for _, ch := range children(n) {
		switch ch.Type() {
		case "for_in_clause", "if_clause":
			clauses = append(clauses, ch)
		case "comprehension_clauses":
			clauses = append(clauses, children(ch)...)
		}
	}
	for _, cl := range clauses {
		switch cl.Type() {
		case "for_in_clause":
			gen := &pythonast.Generator{Span: c.span(cl), Vars: c.targets(field(cl, "left"))}
			right := field(cl, "right")
			var iters []pythonast.Expr
			seenIn := false
			for _, ch := range children(cl) {
				if ch.Type() == "in" {
					seenIn = true
					continue
				}
				if seenIn && isExpr(ch) {
					iters = append(iters, c.expr(ch))
				}
			}
			if len(iters) == 0 && right != nil {
				iters = []pythonast.Expr{c.expr(right)}
			}
			if len(iters) > 0 {
				gen.Iterable = c.pack(cl, iters)
			}
			base.Generators = append(base.Generators, gen)
		case "if_clause":
			if len(base.Generators) == 0 {
				continue
			}
			last := base.Generators[len(base.Generators)-1]
			if cond := c.first(cl); cond != nil {
				last.Filters = append(last.Filters, cond)
			}
		}
	}

	switch n.Type() {
	case "dictionary_comprehension":
		dc := &pythonast.DictComprehensionExpr{BaseComprehension: base}
		if body != nil {
			dc.Key = c.optExpr(field(body, "key"))
			dc.Value = c.optExpr(field(body, "value"))
		}
		return dc
	case "list_comprehension":
		base.Result = c.optExpr(body)
		return &pythonast.ListComprehensionExpr{BaseComprehension: base}
	case "set_comprehension":
		base.Result = c.optExpr(body)
		return &pythonast.SetComprehensionExpr{BaseComprehension: base}
	default:
		base.Result = c.optExpr(body)
		return &pythonast.ComprehensionExpr{BaseComprehension: base}
	}
}

// parseString strips the prefix and quotes from a string literal
func parseString(lit string) (pythonast.StringKind, string) {
	i := 0
	for i < len(lit) && lit[i] != '"' && lit[i] != '\'' {
		i++
	}
	prefix := strings.ToLower(lit[:i])
	body := lit[i:]

	kind := pythonast.Str
	switch {
	case strings.Contains(prefix, "b"):
		kind = pythonast.Bytes
	case strings.Contains(prefix, "f"):
		kind = pythonast.FormatString
	case strings.Contains(prefix, "u"):
		kind = pythonast.Unicode
	}

	for _, q := range []string{`"""`, `'''`, `"`, `'`} {
		if len(body) >= 2*len(q) && strings.HasPrefix(body, q) && strings.HasSuffix(body, q) {
			return kind, body[len(q) : len(body)-len(q)]
		}
	}
	return kind, strings.Trim(body, `"'`)
}
