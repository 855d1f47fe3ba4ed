package pythontype

// Visited is the set of namespaces a recursive traversal is currently
// processing. A traversal pushes a namespace before descending into it and
// pops it afterwards, so cycles in class graphs end the descent instead of
// recursing forever. The zero value is ready to use.
type Visited struct {
	seen map[uint64]struct{}
}

// Push marks ns as being processed and returns false if it already was
func (v *Visited) Push(ns Namespace) bool {
	if ns == nil {
		return false
	}
	if v.seen == nil {
		v.seen = make(map[uint64]struct{})
	}
	if _, ok := v.seen[ns.id()]; ok {
		return false
	}
	v.seen[ns.id()] = struct{}{}
	return true
}

// Pop unmarks ns
func (v *Visited) Pop(ns Namespace) {
	if ns != nil {
		delete(v.seen, ns.id())
	}
}

// Contains returns true if ns is being processed
func (v *Visited) Contains(ns Namespace) bool {
	if ns == nil {
		return false
	}
	_, ok := v.seen[ns.id()]
	return ok
}

// Len returns the number of namespaces being processed
func (v *Visited) Len() int { return len(v.seen) }
