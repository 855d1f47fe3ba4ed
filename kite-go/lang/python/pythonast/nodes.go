// Package pythonast defines the syntax tree consumed by the type inference
// engine. Trees are produced by a frontend (see pythonparser); the engine only
// relies on the node set below, child traversal (Walk, Inspect) and the
// mapping from byte offsets to lines (LineMap).
package pythonast

import (
	"go/token"
	"reflect"
)

// Node is implemented by all nodes in the syntax tree
type Node interface {
	Begin() token.Pos
	End() token.Pos
}

// Expr is implemented by all expression nodes
type Expr interface {
	Node
	expr()
}

// Stmt is implemented by all statement nodes
type Stmt interface {
	Node
	stmt()
}

// Span records the byte range [From, To) a node covers in the source
type Span struct {
	From token.Pos
	To   token.Pos
}

// Begin returns the offset of the first byte of the node
func (s Span) Begin() token.Pos { return s.From }

// End returns the offset one past the last byte of the node
func (s Span) End() token.Pos { return s.To }

// Contains returns true if pos lies within the span. The end offset is
// included so that a cursor placed right after an identifier still hits it.
func (s Span) Contains(pos token.Pos) bool {
	return s.From <= pos && pos <= s.To
}

// IsNil returns true if the node is nil or a typed nil pointer
func IsNil(n Node) bool {
	if n == nil {
		return true
	}
	v := reflect.ValueOf(n)
	return v.Kind() == reflect.Ptr && v.IsNil()
}

// Module is the root of a syntax tree
type Module struct {
	Span
	Body []Stmt
}

// -- expressions

// NameExpr is an identifier. True, False and None are also represented as
// names and resolved through the builtins.
type NameExpr struct {
	Span
	Ident string
	Usage Usage
}

// NumberExpr is a numeric literal
type NumberExpr struct {
	Span
	Literal string
}

// StringKind distinguishes the runtime type of a string literal
type StringKind int

const (
	// Str is a plain string literal
	Str StringKind = iota
	// Bytes is a b"" literal
	Bytes
	// Unicode is a u"" literal
	Unicode
	// FormatString is an f"" literal
	FormatString
)

// StringExpr is a string literal, possibly the concatenation of several
// adjacent literals
type StringExpr struct {
	Span
	Kind StringKind
	// Value is the literal contents without prefix and quotes
	Value string
}

// EllipsisExpr is `...`
type EllipsisExpr struct {
	Span
}

// AttributeExpr is `Value.Attribute`
type AttributeExpr struct {
	Span
	Value     Expr
	Attribute *NameExpr
	Usage     Usage
}

// ArgKind is the syntactic form of a call argument
type ArgKind int

const (
	// PositionalArg is `f(x)`
	PositionalArg ArgKind = iota
	// KeywordArg is `f(name=x)`
	KeywordArg
	// ListSplatArg is `f(*x)`
	ListSplatArg
	// DictSplatArg is `f(**x)`
	DictSplatArg
)

// Argument is one argument of a call or class definition
type Argument struct {
	Span
	Kind  ArgKind
	Name  *NameExpr // only set for keyword arguments
	Value Expr
}

// CallExpr is a function call
type CallExpr struct {
	Span
	Func Expr
	Args []*Argument
}

// IndexExpr is `Value[Subscript]`
type IndexExpr struct {
	Span
	Value     Expr
	Subscript Expr
	Usage     Usage
}

// SliceExpr is `Lower:Upper:Step` inside a subscript
type SliceExpr struct {
	Span
	Lower Expr
	Upper Expr
	Step  Expr
}

// BinaryExpr is a binary operation, comparison or boolean operation
type BinaryExpr struct {
	Span
	Left  Expr
	Op    Op
	Right Expr
}

// UnaryExpr is a unary operation, including `not`
type UnaryExpr struct {
	Span
	Op    Op
	Value Expr
}

// IfExpr is `Body if Condition else Else`
type IfExpr struct {
	Span
	Body      Expr
	Condition Expr
	Else      Expr
}

// LambdaExpr is an anonymous function
type LambdaExpr struct {
	Span
	Parameters []*Parameter
	Vararg     *ArgsParameter
	Kwarg      *ArgsParameter
	Body       Expr
}

// ListExpr is a list display
type ListExpr struct {
	Span
	Values []Expr
	Usage  Usage
}

// TupleExpr is a tuple display, parenthesized or not
type TupleExpr struct {
	Span
	Elts  []Expr
	Usage Usage
}

// SetExpr is a set display
type SetExpr struct {
	Span
	Values []Expr
}

// KeyValuePair is one entry of a dict display. A nil Key denotes `**Value`.
type KeyValuePair struct {
	Span
	Key   Expr
	Value Expr
}

// DictExpr is a dict display
type DictExpr struct {
	Span
	Items []*KeyValuePair
}

// StarExpr is `*Value` inside a display or an assignment target
type StarExpr struct {
	Span
	Value Expr
}

// Generator is one `for Vars in Iterable if Filters...` clause
type Generator struct {
	Span
	Vars     []Expr
	Iterable Expr
	Filters  []Expr
}

// BaseComprehension holds what all comprehensions share
type BaseComprehension struct {
	Span
	Result     Expr // nil for dict comprehensions
	Generators []*Generator
}

// ComprehensionExpr is a generator expression
type ComprehensionExpr struct {
	BaseComprehension
}

// ListComprehensionExpr is `[Result for ...]`
type ListComprehensionExpr struct {
	BaseComprehension
}

// SetComprehensionExpr is `{Result for ...}`
type SetComprehensionExpr struct {
	BaseComprehension
}

// DictComprehensionExpr is `{Key: Value for ...}`
type DictComprehensionExpr struct {
	BaseComprehension
	Key   Expr
	Value Expr
}

// Comprehension is implemented by the four comprehension node types
type Comprehension interface {
	Expr
	Base() *BaseComprehension
}

// Base implements Comprehension
func (c *BaseComprehension) Base() *BaseComprehension { return c }

// YieldExpr is `yield Value` or `yield from Value`
type YieldExpr struct {
	Span
	Value Expr
	From  bool
}

// AwaitExpr is `await Value`
type AwaitExpr struct {
	Span
	Value Expr
}

// AssignExpr is the assignment expression `Target := Value`
type AssignExpr struct {
	Span
	Target *NameExpr
	Value  Expr
}

// BadExpr stands in for an expression the frontend could not parse
type BadExpr struct {
	Span
}

// -- statements

// BadStmt stands in for a statement the frontend could not parse
type BadStmt struct {
	Span
}

// ExprStmt is an expression evaluated for its side effects
type ExprStmt struct {
	Span
	Value Expr
}

// AssignStmt is `Targets[0] = Targets[1] = ... = Value`
type AssignStmt struct {
	Span
	Targets    []Expr
	Annotation Expr
	Value      Expr // nil for a bare annotation `x: int`
}

// AugAssignStmt is `Target op= Value`
type AugAssignStmt struct {
	Span
	Target Expr
	Op     Op
	Value  Expr
}

// DelStmt is `del Targets`
type DelStmt struct {
	Span
	Targets []Expr
}

// PassStmt is `pass`
type PassStmt struct {
	Span
}

// BreakStmt is `break`
type BreakStmt struct {
	Span
}

// ContinueStmt is `continue`
type ContinueStmt struct {
	Span
}

// ReturnStmt is `return Value`
type ReturnStmt struct {
	Span
	Value Expr
}

// RaiseStmt is `raise Type from Cause`
type RaiseStmt struct {
	Span
	Type  Expr
	Cause Expr
}

// AssertStmt is `assert Condition, Message`
type AssertStmt struct {
	Span
	Condition Expr
	Message   Expr
}

// GlobalStmt is `global Names`
type GlobalStmt struct {
	Span
	Names []*NameExpr
}

// NonLocalStmt is `nonlocal Names`
type NonLocalStmt struct {
	Span
	Names []*NameExpr
}

// DottedExpr is a dotted module path such as `os.path`
type DottedExpr struct {
	Span
	Names []*NameExpr
}

// Join returns the dotted path as a string
func (d *DottedExpr) Join() string {
	if d == nil {
		return ""
	}
	var out []byte
	for i, n := range d.Names {
		if i > 0 {
			out = append(out, '.')
		}
		out = append(out, n.Ident...)
	}
	return string(out)
}

// DottedAsName is one clause of `import External as Internal`
type DottedAsName struct {
	Span
	External *DottedExpr
	Internal *NameExpr // nil if there is no alias
}

// ImportNameStmt is `import a.b, c as d`
type ImportNameStmt struct {
	Span
	Names []*DottedAsName
}

// ImportAsName is one clause of `from x import External as Internal`
type ImportAsName struct {
	Span
	External *NameExpr
	Internal *NameExpr // nil if there is no alias
}

// ImportFromStmt is `from ..Package import Names` or `from Package import *`
type ImportFromStmt struct {
	Span
	Dots     int
	Package  *DottedExpr // nil for `from . import x`
	Names    []*ImportAsName
	Wildcard bool
}

// Branch is one `if`/`elif` arm
type Branch struct {
	Span
	Condition Expr
	Body      []Stmt
}

// IfStmt is an if/elif/else chain
type IfStmt struct {
	Span
	Branches []*Branch
	Else     []Stmt
}

// WhileStmt is a while loop
type WhileStmt struct {
	Span
	Condition Expr
	Body      []Stmt
	Else      []Stmt
}

// ForStmt is a for loop
type ForStmt struct {
	Span
	Targets  []Expr
	Iterable Expr
	Body     []Stmt
	Else     []Stmt
	Async    bool
}

// ExceptClause is one `except Type as Target` handler
type ExceptClause struct {
	Span
	Type   Expr
	Target Expr
	Body   []Stmt
}

// TryStmt is try/except/else/finally
type TryStmt struct {
	Span
	Body     []Stmt
	Handlers []*ExceptClause
	Else     []Stmt
	Finally  []Stmt
}

// WithItem is one `Value as Target` clause of a with statement
type WithItem struct {
	Span
	Value  Expr
	Target Expr
}

// WithStmt is a with statement
type WithStmt struct {
	Span
	Items []*WithItem
	Body  []Stmt
	Async bool
}

// Parameter is a named parameter of a function or lambda
type Parameter struct {
	Span
	Name        *NameExpr
	Default     Expr
	Annotation  Expr
	KeywordOnly bool
}

// ArgsParameter is the `*args` or `**kwargs` parameter
type ArgsParameter struct {
	Span
	Name       *NameExpr
	Annotation Expr
}

// FunctionDefStmt is a def statement
type FunctionDefStmt struct {
	Span
	Decorators []Expr
	Name       *NameExpr
	Parameters []*Parameter
	Vararg     *ArgsParameter
	Kwarg      *ArgsParameter
	Annotation Expr
	Body       []Stmt
	Async      bool
}

// ClassDefStmt is a class statement
type ClassDefStmt struct {
	Span
	Decorators []Expr
	Name       *NameExpr
	Args       []*Argument
	Body       []Stmt
}

func (*NameExpr) expr()              {}
func (*NumberExpr) expr()            {}
func (*StringExpr) expr()            {}
func (*EllipsisExpr) expr()          {}
func (*AttributeExpr) expr()         {}
func (*CallExpr) expr()              {}
func (*IndexExpr) expr()             {}
func (*SliceExpr) expr()             {}
func (*BinaryExpr) expr()            {}
func (*UnaryExpr) expr()             {}
func (*IfExpr) expr()                {}
func (*LambdaExpr) expr()            {}
func (*ListExpr) expr()              {}
func (*TupleExpr) expr()             {}
func (*SetExpr) expr()               {}
func (*DictExpr) expr()              {}
func (*StarExpr) expr()              {}
func (*ComprehensionExpr) expr()     {}
func (*ListComprehensionExpr) expr() {}
func (*SetComprehensionExpr) expr()  {}
func (*DictComprehensionExpr) expr() {}
func (*YieldExpr) expr()             {}
func (*AwaitExpr) expr()             {}
func (*AssignExpr) expr()            {}
func (*BadExpr) expr()               {}

func (*BadStmt) stmt()         {}
func (*ExprStmt) stmt()        {}
func (*AssignStmt) stmt()      {}
func (*AugAssignStmt) stmt()   {}
func (*DelStmt) stmt()         {}
func (*PassStmt) stmt()        {}
func (*BreakStmt) stmt()       {}
func (*ContinueStmt) stmt()    {}
func (*ReturnStmt) stmt()      {}
func (*RaiseStmt) stmt()       {}
func (*AssertStmt) stmt()      {}
func (*GlobalStmt) stmt()      {}
func (*NonLocalStmt) stmt()    {}
func (*ImportNameStmt) stmt()  {}
func (*ImportFromStmt) stmt()  {}
func (*IfStmt) stmt()          {}
func (*WhileStmt) stmt()       {}
func (*ForStmt) stmt()         {}
func (*TryStmt) stmt()         {}
func (*WithStmt) stmt()        {}
func (*FunctionDefStmt) stmt() {}
func (*ClassDefStmt) stmt()    {}
