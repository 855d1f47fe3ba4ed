package pythontype

// Mro is the method resolution order of a user class. Each entry is a union:
// a base expression that may evaluate to several classes contributes a single
// ambiguous entry, and member lookup on that entry consults every class in
// it. The first entry is always the class itself.
type Mro struct {
	cls     *ClassInfo
	entries []TypeUnion

	// IsValid is false when the bases admit no consistent linearization, in
	// which case the MRO holds only the class itself
	IsValid bool
}

// Entries returns the linearization, starting with the class
func (m *Mro) Entries() []TypeUnion {
	if m == nil {
		return nil
	}
	return m.entries
}

// recompute linearizes the bases again from their current MROs and returns
// true if the result differs from the previous one
func (m *Mro) recompute() bool {
	entries, valid := m.compute()
	if valid == m.IsValid && sameEntries(entries, m.entries) {
		return false
	}
	m.entries = entries
	m.IsValid = valid
	return true
}

func (m *Mro) compute() ([]TypeUnion, bool) {
	self := []TypeUnion{NewUnion(m.cls)}

	var lists [][]TypeUnion
	var declared []TypeUnion
	for _, base := range m.cls.bases {
		classes := base.Filter(isClassLike)
		if classes.IsEmpty() {
			continue
		}
		if classes.Len() > 1 {
			lists = append(lists, []TypeUnion{classes})
			declared = append(declared, classes)
			continue
		}
		ns := classes.Types()[0]
		if ns == m.cls {
			return self, false
		}
		baseMro := mroOf(ns)
		for _, e := range baseMro {
			if e.Contains(m.cls) {
				// the class inherits from itself
				return self, false
			}
		}
		if len(baseMro) == 0 {
			continue
		}
		lists = append(lists, baseMro)
		declared = append(declared, classes)
	}
	if len(lists) == 0 {
		return self, true
	}
	lists = append(lists, declared)

	merged, ok := c3Merge(lists)
	if !ok {
		return self, false
	}
	return append(self, merged...), true
}

// mroOf returns the linearization of a base class as MRO entries
func mroOf(ns Namespace) []TypeUnion {
	switch ns := ns.(type) {
	case *BuiltinClass:
		out := make([]TypeUnion, 0, len(ns.mro))
		for _, c := range ns.mro {
			out = append(out, NewUnion(c))
		}
		return out
	case *ClassInfo:
		return ns.Mro.Entries()
	}
	return nil
}

// c3Merge merges linearizations as described for Python 2.3's MRO: it
// repeatedly takes the first head that appears in no list's tail.
func c3Merge(lists [][]TypeUnion) ([]TypeUnion, bool) {
	var out []TypeUnion
	for {
		nonEmpty := lists[:0:0]
		for _, l := range lists {
			if len(l) > 0 {
				nonEmpty = append(nonEmpty, l)
			}
		}
		lists = nonEmpty
		if len(lists) == 0 {
			return out, true
		}

		var head TypeUnion
		found := false
		for _, l := range lists {
			if !inTail(l[0], lists) {
				head, found = l[0], true
				break
			}
		}
		if !found {
			return nil, false
		}
		out = append(out, head)
		for i, l := range lists {
			if sameEntry(l[0], head) {
				lists[i] = l[1:]
			}
		}
	}
}

func inTail(e TypeUnion, lists [][]TypeUnion) bool {
	for _, l := range lists {
		for _, t := range l[1:] {
			if sameEntry(e, t) {
				return true
			}
		}
	}
	return false
}

func sameEntry(a, b TypeUnion) bool {
	na, oka := a.Only()
	nb, okb := b.Only()
	if oka && okb {
		return na == nb
	}
	return a.Equals(b)
}

func sameEntries(a, b []TypeUnion) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameEntry(a[i], b[i]) {
			return false
		}
	}
	return true
}

// GetMemberFromMro looks name up along the MRO of a user class. Classes with
// a valid MRO fall back to the members of object. The unit of site is
// revisited when the MRO changes.
func GetMemberFromMro(site Site, cls *ClassInfo, name string) TypeUnion {
	var v Visited
	return cls.lookup(site, name, &v)
}

func (c *ClassInfo) lookup(site Site, name string, v *Visited) TypeUnion {
	if !v.Push(c) {
		return TypeUnion{}
	}
	defer v.Pop(c)

	if !site.ForEval() {
		c.mroDeps.add(site.Unit)
	}
	if !c.Mro.IsValid {
		return c.ownMember(site, name)
	}

	for _, entry := range c.Mro.Entries() {
		if res := entryMember(site, entry, name, v); !res.IsEmpty() {
			return res
		}
	}

	if m, ok := Builtins.Object.OwnMember(name); ok {
		return NewUnion(m)
	}
	return TypeUnion{}
}

// entryMember looks name up on one MRO entry. A single class answers with
// its own members only, since the classes after it are entries of their own.
// An ambiguous entry consults the full MRO of each of its classes.
func entryMember(site Site, entry TypeUnion, name string, v *Visited) TypeUnion {
	ambiguous := entry.Len() > 1
	var res TypeUnion
	for _, ns := range entry.Types() {
		var found TypeUnion
		switch ns := ns.(type) {
		case *ClassInfo:
			if ambiguous {
				found = ns.lookup(site, name, v)
			} else {
				found = ns.ownMember(site, name)
			}
		case *BuiltinClass:
			var m Namespace
			var ok bool
			if ambiguous {
				m, ok = ns.Member(name)
			} else {
				m, ok = ns.OwnMember(name)
			}
			if ok {
				found = NewUnion(m)
			}
		}
		res, _ = res.Union(found)
	}
	return res
}

// GetAllMembers returns every member visible on a user class, keyed by name.
// Names bound closer to the class in the MRO shadow the same names further
// along it.
func GetAllMembers(site Site, cls *ClassInfo) map[string]TypeUnion {
	out := make(map[string]TypeUnion)
	for _, name := range cls.Members() {
		if u := GetMemberFromMro(site, cls, name); !u.IsEmpty() {
			out[name] = u
		}
	}
	return out
}
