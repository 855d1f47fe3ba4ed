package pythontype

import (
	"sort"
	"strings"
)

// Merge strengths, from weakest to strongest. At a given strength two
// namespaces that compare equal are collapsed into one representative.
const (
	// MergeIdentity keeps every distinct namespace. Constants compare by
	// type and value, bound methods by function and receiver.
	MergeIdentity = 0
	// MergeSameClass collapses constants into the instance of their class,
	// and collections of the same kind created at different sites
	MergeSameClass = 1
	// MergeBaseClass collapses instances and classes into their first
	// common base class other than object
	MergeBaseClass = 2
	// MergeToObject collapses every instance into an object instance, every
	// class into type and every function into a function instance
	MergeToObject = 3

	// MaxStrength is the strongest merge strength
	MaxStrength = MergeToObject
)

// TypeUnion is an immutable, deduplicated set of namespaces. The zero value is
// the empty union. Deduplication uses the equality of the union's merge
// strength, see unionEquals.
type TypeUnion struct {
	types    []Namespace
	hashes   []uint64
	strength int
}

// NewUnion builds a union at MergeIdentity strength
func NewUnion(ns ...Namespace) TypeUnion {
	var u TypeUnion
	for _, n := range ns {
		u, _ = u.Add(n)
	}
	return u
}

// Unite combines several unions. The result has the strength of the
// strongest input.
func Unite(us ...TypeUnion) TypeUnion {
	var out TypeUnion
	for _, u := range us {
		out, _ = out.Union(u)
	}
	return out
}

// Len returns the number of namespaces in the union
func (u TypeUnion) Len() int { return len(u.types) }

// IsEmpty returns true if the union holds no namespaces
func (u TypeUnion) IsEmpty() bool { return len(u.types) == 0 }

// Strength returns the merge strength of the union
func (u TypeUnion) Strength() int { return u.strength }

// Types returns the namespaces in the union. The slice must not be modified.
func (u TypeUnion) Types() []Namespace { return u.types }

// Only returns the single namespace in a union of one
func (u TypeUnion) Only() (Namespace, bool) {
	if len(u.types) != 1 {
		return nil, false
	}
	return u.types[0], true
}

// Contains returns true if ns is in the union under the union's strength
func (u TypeUnion) Contains(ns Namespace) bool {
	return u.index(ns, unionHash(ns, u.strength)) >= 0
}

func (u TypeUnion) index(ns Namespace, h uint64) int {
	for i, t := range u.types {
		if u.strength < MergeBaseClass && u.hashes[i] != h {
			continue
		}
		if unionEquals(t, ns, u.strength) {
			return i
		}
	}
	return -1
}

// Add returns the union with ns added, and whether anything changed. A
// namespace equal to an existing member under the union's strength is
// merged into that member's representative.
func (u TypeUnion) Add(ns Namespace) (TypeUnion, bool) {
	if ns == nil {
		return u, false
	}
	h := unionHash(ns, u.strength)
	if i := u.index(ns, h); i >= 0 {
		existing := u.types[i]
		merged := unionMerge(existing, ns, u.strength)
		if merged == existing {
			return u, false
		}
		out := u.clone(0)
		out.types[i] = merged
		out.hashes[i] = unionHash(merged, u.strength)
		return out.dedupe(), true
	}
	out := u.clone(1)
	out.types = append(out.types, ns)
	out.hashes = append(out.hashes, h)
	return out, true
}

// Union returns the union of u and o, and whether u changed
func (u TypeUnion) Union(o TypeUnion) (TypeUnion, bool) {
	if o.strength > u.strength {
		u = u.AsStrength(o.strength)
	}
	if len(u.types) == 0 && u.strength == o.strength {
		return o, len(o.types) > 0
	}
	changed := false
	for _, ns := range o.types {
		var c bool
		u, c = u.Add(ns)
		changed = changed || c
	}
	return u, changed
}

// AsStrength returns the union deduplicated again at the given strength. The
// strength of a union never decreases.
func (u TypeUnion) AsStrength(strength int) TypeUnion {
	if strength > MaxStrength {
		strength = MaxStrength
	}
	if strength <= u.strength {
		return u
	}
	out := TypeUnion{strength: strength}
	for _, ns := range u.types {
		out, _ = out.Add(ns)
	}
	return out
}

// Reduce strengthens the union one level at a time until it holds at most
// limit namespaces. A limit of zero or less leaves the union unchanged.
func (u TypeUnion) Reduce(limit int) TypeUnion {
	if limit <= 0 {
		return u
	}
	for u.strength < MaxStrength && len(u.types) > limit {
		u = u.AsStrength(u.strength + 1)
	}
	return u
}

// Equals returns true if both unions hold the same namespaces under the
// stronger of the two strengths
func (u TypeUnion) Equals(o TypeUnion) bool {
	s := u.strength
	if o.strength > s {
		s = o.strength
	}
	a, b := u.AsStrength(s), o.AsStrength(s)
	if len(a.types) != len(b.types) {
		return false
	}
	for _, ns := range a.types {
		if !b.Contains(ns) {
			return false
		}
	}
	for _, ns := range b.types {
		if !a.Contains(ns) {
			return false
		}
	}
	return true
}

// Filter returns the namespaces for which keep returns true
func (u TypeUnion) Filter(keep func(Namespace) bool) TypeUnion {
	out := TypeUnion{strength: u.strength}
	for i, ns := range u.types {
		if keep(ns) {
			out.types = append(out.types, ns)
			out.hashes = append(out.hashes, u.hashes[i])
		}
	}
	return out
}

// String lists the short names of the namespaces in the union
func (u TypeUnion) String() string {
	names := make([]string, 0, len(u.types))
	for _, ns := range u.types {
		names = append(names, ns.Name())
	}
	sort.Strings(names)
	return "{" + strings.Join(names, ", ") + "}"
}

func (u TypeUnion) clone(extra int) TypeUnion {
	out := TypeUnion{
		types:    make([]Namespace, len(u.types), len(u.types)+extra),
		hashes:   make([]uint64, len(u.hashes), len(u.hashes)+extra),
		strength: u.strength,
	}
	copy(out.types, u.types)
	copy(out.hashes, u.hashes)
	return out
}

// dedupe removes members made equal by a merge. It is only needed when a
// merge produced a representative that equals another existing member.
func (u TypeUnion) dedupe() TypeUnion {
	out := TypeUnion{strength: u.strength}
	for i, ns := range u.types {
		if j := out.index(ns, u.hashes[i]); j >= 0 {
			out.types[j] = unionMerge(out.types[j], ns, u.strength)
			out.hashes[j] = unionHash(out.types[j], u.strength)
			continue
		}
		out.types = append(out.types, ns)
		out.hashes = append(out.hashes, u.hashes[i])
	}
	return out
}
