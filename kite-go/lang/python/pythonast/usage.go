package pythonast

// Usage indicates whether an expression is being evaluated, assigned, deleted, or imported.
// In the following examples, "x" will have Usage=Evaluate:
//    print(x)
//    another = x
//    x.y = 3           <-- because "x" is being loaded even though "x.y" is being assigned to
// In the following examples, "x" will have Usage=Assign:
//    x = 3
//    def foo(x): pass
//    lambda x: something
//    x, y, z = something()
//    for x in y: pass
// In the following examples, "x" will have Usage=Delete:
//    del x
// In the following examples, "x" will have Usage=Import:
//    import x
//    from somepackage import y as x
type Usage int

const (
	// Evaluate is for expressions that are being evaluated
	Evaluate Usage = iota
	// Assign is for expressions that are being assigned to
	Assign
	// Delete is for expressions that are being deleted
	Delete
	// Import is for expressions that are being imported
	Import
)

func (u Usage) String() string {
	switch u {
	case Evaluate:
		return "Evaluate"
	case Assign:
		return "Assign"
	case Delete:
		return "Delete"
	case Import:
		return "Import"
	default:
		return "Invalid"
	}
}

// GetUsage returns the Usage for the given Expr
func GetUsage(expr Expr) Usage {
	switch expr := expr.(type) {
	case *NameExpr:
		return expr.Usage
	case *TupleExpr:
		return expr.Usage
	case *IndexExpr:
		return expr.Usage
	case *AttributeExpr:
		return expr.Usage
	case *ListExpr:
		return expr.Usage
	case *StarExpr:
		return GetUsage(expr.Value)
	default:
		return Evaluate
	}
}

// SetUsage marks expr, and for tuple and list targets each of their
// elements, with the given usage. The value part of attribute and index
// targets is still evaluated.
func SetUsage(expr Expr, u Usage) {
	switch expr := expr.(type) {
	case *NameExpr:
		expr.Usage = u
	case *AttributeExpr:
		expr.Usage = u
	case *IndexExpr:
		expr.Usage = u
	case *TupleExpr:
		expr.Usage = u
		for _, elt := range expr.Elts {
			SetUsage(elt, u)
		}
	case *ListExpr:
		expr.Usage = u
		for _, elt := range expr.Values {
			SetUsage(elt, u)
		}
	case *StarExpr:
		SetUsage(expr.Value, u)
	}
}
