package pythonast

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func newName(s string, from int) *NameExpr {
	return &NameExpr{Span: Span{From: posOf(from), To: posOf(from + len(s))}, Ident: s}
}

var (
	// create an expression like (a + (b + c))
	a     = newName("a", 0)
	b     = newName("b", 5)
	c     = newName("c", 9)
	inner = &BinaryExpr{
		Span:  Span{From: 4, To: 10},
		Left:  b,
		Op:    Add,
		Right: c,
	}
	outer = &BinaryExpr{
		Span:  Span{From: 0, To: 11},
		Left:  a,
		Op:    Add,
		Right: inner,
	}
)

func TestInspect(t *testing.T) {
	expected := []Node{
		outer,
		a,
		nil, // closes "a"
		inner,
		b,
		nil, // closes "b"
		c,
		nil, // closes "c"
		nil, // closes "inner"
		nil, // closes "outer"
	}

	var actual []Node
	Inspect(outer, func(n Node) bool {
		actual = append(actual, n)
		return true
	})

	assert.Equal(t, expected, actual)
}

func TestInspectPrune(t *testing.T) {
	var names []string
	Inspect(outer, func(n Node) bool {
		if n == inner {
			return false
		}
		if name, ok := n.(*NameExpr); ok {
			names = append(names, name.Ident)
		}
		return true
	})
	assert.Equal(t, []string{"a"}, names)
}

func TestWalkStatements(t *testing.T) {
	fn := &FunctionDefStmt{
		Name:       newName("f", 4),
		Parameters: []*Parameter{{Name: newName("x", 6)}},
		Body: []Stmt{
			&ReturnStmt{Value: newName("x", 17)},
		},
	}
	mod := &Module{Body: []Stmt{fn}}

	var idents []string
	Inspect(mod, func(n Node) bool {
		if name, ok := n.(*NameExpr); ok {
			idents = append(idents, name.Ident)
		}
		return true
	})
	assert.Equal(t, []string{"f", "x", "x"}, idents)
	assert.Equal(t, 7, CountNodes(mod))
}

func TestEnclosingNodes(t *testing.T) {
	path := EnclosingNodes(outer, 9)
	assert.Equal(t, []Node{outer, inner, c}, path)

	path = EnclosingNodes(outer, 0)
	assert.Equal(t, []Node{outer, a}, path)

	assert.Empty(t, EnclosingNodes(outer, 20))
}

func TestPrint(t *testing.T) {
	var buf bytes.Buffer
	Print(outer, &buf, "  ")
	expected := "BinaryExpr[+]\n  NameExpr[a]\n  BinaryExpr[+]\n    NameExpr[b]\n    NameExpr[c]\n"
	assert.Equal(t, expected, buf.String())
}

func TestLookupOp(t *testing.T) {
	assert.Equal(t, Add, LookupOp("+"))
	assert.Equal(t, FloorDiv, LookupOp("//="))
	assert.Equal(t, NotIn, LookupOp("not in"))
	assert.Equal(t, NotEq, LookupOp("<>"))
	assert.Equal(t, IllegalOp, LookupOp("?"))
	assert.Equal(t, "__radd__", Add.ReflectedDunder())
	assert.Equal(t, "", Eq.ReflectedDunder())
	assert.True(t, In.IsComparison())
}

func TestLineMap(t *testing.T) {
	m := NewLineMap([]byte("ab\ncd\n\nx"))
	line, col := m.Position(0)
	assert.Equal(t, []int{1, 1}, []int{line, col})
	line, col = m.Position(4)
	assert.Equal(t, []int{2, 2}, []int{line, col})
	line, col = m.Position(7)
	assert.Equal(t, []int{4, 1}, []int{line, col})
	assert.Equal(t, posOf(4), m.Offset(2, 2))
	assert.Equal(t, 4, m.LineCount())
}
