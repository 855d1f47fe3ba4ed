package pythonast

import (
	"fmt"
	"io"
	"reflect"
	"strings"
)

func derefType(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Ptr, reflect.Slice, reflect.Array:
		return derefType(t.Elem())
	default:
		return t
	}
}

func typename(obj interface{}) string {
	return derefType(reflect.TypeOf(obj)).Name()
}

// String returns a short textual representation of a node
func String(n Node) string {
	if IsNil(n) {
		return "Nil"
	}
	out := typename(n)
	switch n := n.(type) {
	case *AttributeExpr:
		if n.Attribute != nil {
			out += "[" + n.Attribute.Ident + "]"
		}
	case *NameExpr:
		out += "[" + n.Ident + "]"
	case *NumberExpr:
		out += "[" + n.Literal + "]"
	case *StringExpr:
		out += "[" + strings.Replace(n.Value, "\n", "\\n", -1) + "]"
	case *BinaryExpr:
		out += "[" + n.Op.String() + "]"
	case *UnaryExpr:
		out += "[" + n.Op.String() + "]"
	case *AugAssignStmt:
		out += "[" + n.Op.String() + "]"
	case *ImportFromStmt:
		out += fmt.Sprintf("[%s%s]", strings.Repeat(".", n.Dots), n.Package.Join())
	}
	return out
}

type prettyPrinter struct {
	depth     int
	indent    string
	positions bool
	w         io.Writer
}

func (p *prettyPrinter) Visit(n Node) Visitor {
	if n == nil {
		p.depth--
	} else {
		prefix := strings.Repeat(p.indent, p.depth)
		if p.positions {
			prefix = fmt.Sprintf("[%4d...%4d]", n.Begin(), n.End()) + prefix
		}
		fmt.Fprintln(p.w, prefix+String(n))
		p.depth++
	}
	return p
}

// Print writes a textual representation of syntax tree to the given writer
func Print(root Node, w io.Writer, indent string) {
	printer := prettyPrinter{
		w:      w,
		indent: indent,
	}
	Walk(&printer, root)
}

// PrintPositions writes a textual representation of syntax tree to the given writer,
// including begin and end positions for each node.
func PrintPositions(root Node, w io.Writer, indent string) {
	printer := prettyPrinter{
		w:         w,
		indent:    indent,
		positions: true,
	}
	Walk(&printer, root)
}
