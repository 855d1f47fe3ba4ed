package pythonast

import "fmt"

// Visitor is called for each node encountered by Walk. If the result visitor
// w is not nil, Walk visits each of the children of node with w, followed by
// a call of w.Visit(nil).
type Visitor interface {
	Visit(node Node) (w Visitor)
}

func walkExprs(v Visitor, exprs []Expr) {
	for _, x := range exprs {
		walkIfNotNil(v, x)
	}
}

func walkStmts(v Visitor, stmts []Stmt) {
	for _, s := range stmts {
		walkIfNotNil(v, s)
	}
}

func walkParams(v Visitor, params []*Parameter, vararg, kwarg *ArgsParameter) {
	for _, p := range params {
		Walk(v, p)
	}
	if vararg != nil {
		Walk(v, vararg)
	}
	if kwarg != nil {
		Walk(v, kwarg)
	}
}

func walkIfNotNil(v Visitor, n Node) {
	if !IsNil(n) {
		Walk(v, n)
	}
}

// Walk traverses the syntax tree in depth-first order: it starts by calling
// v.Visit(node); node must not be nil. If the visitor w returned by
// v.Visit(node) is not nil, Walk is invoked recursively with visitor w for
// each of the non-nil children of node, followed by a call of w.Visit(nil).
func Walk(v Visitor, node Node) {
	if v = v.Visit(node); v == nil {
		return
	}

	switch n := node.(type) {
	case *Module:
		walkStmts(v, n.Body)

	// expressions
	case *NameExpr, *NumberExpr, *StringExpr, *EllipsisExpr, *BadExpr:
		// leaves
	case *AttributeExpr:
		walkIfNotNil(v, n.Value)
		walkIfNotNil(v, n.Attribute)
	case *Argument:
		walkIfNotNil(v, n.Name)
		walkIfNotNil(v, n.Value)
	case *CallExpr:
		walkIfNotNil(v, n.Func)
		for _, arg := range n.Args {
			Walk(v, arg)
		}
	case *IndexExpr:
		walkIfNotNil(v, n.Value)
		walkIfNotNil(v, n.Subscript)
	case *SliceExpr:
		walkIfNotNil(v, n.Lower)
		walkIfNotNil(v, n.Upper)
		walkIfNotNil(v, n.Step)
	case *BinaryExpr:
		walkIfNotNil(v, n.Left)
		walkIfNotNil(v, n.Right)
	case *UnaryExpr:
		walkIfNotNil(v, n.Value)
	case *IfExpr:
		walkIfNotNil(v, n.Body)
		walkIfNotNil(v, n.Condition)
		walkIfNotNil(v, n.Else)
	case *LambdaExpr:
		walkParams(v, n.Parameters, n.Vararg, n.Kwarg)
		walkIfNotNil(v, n.Body)
	case *ListExpr:
		walkExprs(v, n.Values)
	case *TupleExpr:
		walkExprs(v, n.Elts)
	case *SetExpr:
		walkExprs(v, n.Values)
	case *KeyValuePair:
		walkIfNotNil(v, n.Key)
		walkIfNotNil(v, n.Value)
	case *DictExpr:
		for _, item := range n.Items {
			Walk(v, item)
		}
	case *StarExpr:
		walkIfNotNil(v, n.Value)
	case *Generator:
		walkExprs(v, n.Vars)
		walkIfNotNil(v, n.Iterable)
		walkExprs(v, n.Filters)
	case *ComprehensionExpr:
		walkComprehension(v, &n.BaseComprehension)
	case *ListComprehensionExpr:
		walkComprehension(v, &n.BaseComprehension)
	case *SetComprehensionExpr:
		walkComprehension(v, &n.BaseComprehension)
	case *DictComprehensionExpr:
		walkIfNotNil(v, n.Key)
		walkIfNotNil(v, n.Value)
		walkComprehension(v, &n.BaseComprehension)
	case *YieldExpr:
		walkIfNotNil(v, n.Value)
	case *AwaitExpr:
		walkIfNotNil(v, n.Value)
	case *AssignExpr:
		walkIfNotNil(v, n.Target)
		walkIfNotNil(v, n.Value)

	// statements
	case *BadStmt, *PassStmt, *BreakStmt, *ContinueStmt:
		// leaves
	case *ExprStmt:
		walkIfNotNil(v, n.Value)
	case *AssignStmt:
		walkExprs(v, n.Targets)
		walkIfNotNil(v, n.Annotation)
		walkIfNotNil(v, n.Value)
	case *AugAssignStmt:
		walkIfNotNil(v, n.Target)
		walkIfNotNil(v, n.Value)
	case *DelStmt:
		walkExprs(v, n.Targets)
	case *ReturnStmt:
		walkIfNotNil(v, n.Value)
	case *RaiseStmt:
		walkIfNotNil(v, n.Type)
		walkIfNotNil(v, n.Cause)
	case *AssertStmt:
		walkIfNotNil(v, n.Condition)
		walkIfNotNil(v, n.Message)
	case *GlobalStmt:
		for _, name := range n.Names {
			Walk(v, name)
		}
	case *NonLocalStmt:
		for _, name := range n.Names {
			Walk(v, name)
		}
	case *DottedExpr:
		for _, name := range n.Names {
			Walk(v, name)
		}
	case *DottedAsName:
		walkIfNotNil(v, n.External)
		walkIfNotNil(v, n.Internal)
	case *ImportNameStmt:
		for _, name := range n.Names {
			Walk(v, name)
		}
	case *ImportAsName:
		walkIfNotNil(v, n.External)
		walkIfNotNil(v, n.Internal)
	case *ImportFromStmt:
		walkIfNotNil(v, n.Package)
		for _, name := range n.Names {
			Walk(v, name)
		}
	case *Branch:
		walkIfNotNil(v, n.Condition)
		walkStmts(v, n.Body)
	case *IfStmt:
		for _, b := range n.Branches {
			Walk(v, b)
		}
		walkStmts(v, n.Else)
	case *WhileStmt:
		walkIfNotNil(v, n.Condition)
		walkStmts(v, n.Body)
		walkStmts(v, n.Else)
	case *ForStmt:
		walkExprs(v, n.Targets)
		walkIfNotNil(v, n.Iterable)
		walkStmts(v, n.Body)
		walkStmts(v, n.Else)
	case *ExceptClause:
		walkIfNotNil(v, n.Type)
		walkIfNotNil(v, n.Target)
		walkStmts(v, n.Body)
	case *TryStmt:
		walkStmts(v, n.Body)
		for _, h := range n.Handlers {
			Walk(v, h)
		}
		walkStmts(v, n.Else)
		walkStmts(v, n.Finally)
	case *WithItem:
		walkIfNotNil(v, n.Value)
		walkIfNotNil(v, n.Target)
	case *WithStmt:
		for _, item := range n.Items {
			Walk(v, item)
		}
		walkStmts(v, n.Body)
	case *Parameter:
		walkIfNotNil(v, n.Name)
		walkIfNotNil(v, n.Default)
		walkIfNotNil(v, n.Annotation)
	case *ArgsParameter:
		walkIfNotNil(v, n.Name)
		walkIfNotNil(v, n.Annotation)
	case *FunctionDefStmt:
		walkExprs(v, n.Decorators)
		walkIfNotNil(v, n.Name)
		walkParams(v, n.Parameters, n.Vararg, n.Kwarg)
		walkIfNotNil(v, n.Annotation)
		walkStmts(v, n.Body)
	case *ClassDefStmt:
		walkExprs(v, n.Decorators)
		walkIfNotNil(v, n.Name)
		for _, arg := range n.Args {
			Walk(v, arg)
		}
		walkStmts(v, n.Body)

	default:
		panic(fmt.Sprintf("pythonast.Walk: unexpected node type %T", n))
	}

	v.Visit(nil)
}

func walkComprehension(v Visitor, c *BaseComprehension) {
	walkIfNotNil(v, c.Result)
	for _, gen := range c.Generators {
		Walk(v, gen)
	}
}

type inspector func(Node) bool

func (f inspector) Visit(node Node) Visitor {
	if f(node) {
		return f
	}
	return nil
}

// Inspect traverses the syntax tree in depth-first order: it starts by
// calling f(node); node must not be nil. If f returns true, Inspect invokes f
// recursively for each of the non-nil children of node, followed by a call
// of f(nil).
func Inspect(node Node, f func(Node) bool) {
	Walk(inspector(f), node)
}
