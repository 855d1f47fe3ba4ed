package pythonast

import "go/token"

// CountNodes counts the number of nodes in an AST
func CountNodes(node Node) int {
	var count int
	Inspect(node, func(n Node) bool {
		if n != nil {
			count++
		}
		return true
	})
	return count
}

// EnclosingNodes returns the chain of nodes whose span contains pos, from
// the root down to the innermost node. When adjacent siblings both touch pos
// the first one wins.
func EnclosingNodes(root Node, pos token.Pos) []Node {
	var path []Node
	var depth int
	Inspect(root, func(n Node) bool {
		if n == nil {
			depth--
			return false
		}
		// only a child of the last node on the path, and only the first
		// such child, can extend the path
		if len(path) != depth || pos < n.Begin() || pos > n.End() {
			return false
		}
		path = append(path, n)
		depth++
		return true
	})
	return path
}
