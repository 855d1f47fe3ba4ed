package pythontype

import (
	"sort"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
)

// ClassInfo is a class defined by a class statement
type ClassInfo struct {
	record
	name  string
	Node  *pythonast.ClassDefStmt
	Entry *ModuleEntry

	// Scope holds the names assigned in the class body
	Scope *Scope
	// Unit walks the class body
	Unit *AnalysisUnit
	// Instance stands for every instance of the class
	Instance *InstanceInfo
	Mro      *Mro

	// Metaclass holds the classes given by `metaclass=` or `__metaclass__`
	Metaclass *VariableDef

	bases      []TypeUnion
	subclasses []*ClassInfo

	// mroDeps are the units that looked members up through the MRO. They
	// are revisited when the MRO changes.
	mroDeps dependents
}

// NewClassAt returns the class created by the class statement evaluated at
// site, and whether it was created by this call. The class body unit must be
// enqueued by the caller when the class is new.
func NewClassAt(site Site, node *pythonast.ClassDefStmt, parent *Scope) (*ClassInfo, bool) {
	ns, created := site.memoNew(memoClass, 0, func() Namespace {
		c := &ClassInfo{
			record:    newRecord(),
			name:      node.Name.Ident,
			Node:      node,
			Entry:     site.Entry(),
			Metaclass: site.newDef("__metaclass__"),
		}
		c.Scope = NewScope(ClassScope, parent, node)
		c.Scope.Class = c
		c.Instance = &InstanceInfo{record: newRecord(), Class: c}
		c.Mro = &Mro{cls: c, entries: []TypeUnion{NewUnion(c)}, IsValid: true}
		c.Unit = NewUnit(site.State(), ClassUnit, node, c.Scope, site.Entry(), site.Unit)
		c.Unit.ForEval = site.ForEval()
		return c
	})
	return ns.(*ClassInfo), created
}

// Kind implements Namespace
func (c *ClassInfo) Kind() Kind { return TypeKind }

// Name implements Namespace
func (c *ClassInfo) Name() string { return c.name }

// Bases returns the base unions the MRO was last computed from
func (c *ClassInfo) Bases() []TypeUnion { return c.bases }

// Subclasses returns the user classes that list c among their bases
func (c *ClassInfo) Subclasses() []*ClassInfo { return c.subclasses }

// SetBases records the evaluated base expressions of the class statement and
// recomputes the MRO if they changed. Units that looked members up through
// the old MRO are revisited.
func (c *ClassInfo) SetBases(site Site, bases []TypeUnion) {
	if site.ForEval() || sameBases(c.bases, bases) {
		return
	}
	c.bases = bases
	for _, base := range bases {
		for _, ns := range base.Types() {
			if b, ok := ns.(*ClassInfo); ok && b != c {
				b.addSubclass(c)
			}
		}
	}
	var v Visited
	c.updateMro(&v)
}

// ClearBases forgets the bases, leaving an MRO of the class alone
func (c *ClassInfo) ClearBases() {
	if len(c.bases) == 0 {
		return
	}
	c.bases = nil
	var v Visited
	c.updateMro(&v)
}

func (c *ClassInfo) addSubclass(sub *ClassInfo) {
	for _, s := range c.subclasses {
		if s == sub {
			return
		}
	}
	c.subclasses = append(c.subclasses, sub)
}

// updateMro recomputes the MRO and, if it changed, the MROs of subclasses.
// v holds the classes on the propagation path, which ends the walk when the
// subclass relation has a cycle.
func (c *ClassInfo) updateMro(v *Visited) {
	if !v.Push(c) {
		return
	}
	defer v.Pop(c)

	if !c.Mro.recompute() {
		return
	}
	c.mroDeps.enqueue(NormalPriority)
	for _, sub := range c.subclasses {
		if sub.Entry.Removed() {
			continue
		}
		sub.updateMro(v)
	}
}

func sameBases(a, b []TypeUnion) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equals(b[i]) {
			return false
		}
	}
	return true
}

// ownMember reads a name from the class body. Reading a name the body does
// not bind yet leaves a hidden binding behind, so that a later assignment
// revisits the reader.
func (c *ClassInfo) ownMember(site Site, name string) TypeUnion {
	v := c.Scope.Get(name)
	if v == nil {
		if site.ForEval() {
			return TypeUnion{}
		}
		v = c.Scope.getOrEphemeral(name)
	}
	if !site.ForEval() && !pythonast.IsNil(site.Node) {
		v.AddReference(site.Location())
	}
	return v.TypesFor(site.Unit)
}

// specialMember answers the attributes the interpreter provides on every
// class
func (c *ClassInfo) specialMember(site Site, name string) (TypeUnion, bool) {
	b := Builtins
	switch name {
	case "__name__", "__qualname__", "__module__":
		if name == "__name__" {
			return NewUnion(b.StrConst(c.name)), true
		}
		return NewUnion(b.Str.Instance), true
	case "__doc__":
		return NewUnion(b.Str.Instance), true
	case "__class__":
		return NewUnion(TypeOf(c)), true
	case "__bases__", "__mro__":
		t := site.memoSub(memoTuple, rehashString(c.id(), name), func() Namespace {
			return newTuple(site, 0, true)
		}).(*TupleInfo)
		for _, e := range c.Mro.Entries() {
			t.AddStar(site, e)
		}
		return NewUnion(t), true
	case "__dict__":
		d := site.memoSub(memoDict, c.id(), func() Namespace { return newDict(site) }).(*DictInfo)
		for _, n := range c.Scope.Names() {
			d.SetItem(site, NewUnion(b.StrConst(n)), c.Scope.Get(n).TypesFor(site.Unit))
		}
		return NewUnion(d), true
	}
	return TypeUnion{}, false
}

// metaclasses returns the explicitly declared metaclasses
func (c *ClassInfo) metaclasses(site Site) []Namespace {
	var out []Namespace
	for _, ns := range c.Metaclass.TypesFor(site.Unit).Types() {
		if isClassLike(ns) {
			out = append(out, ns)
		}
	}
	return out
}

// Members returns the sorted names of every member visible on the class,
// including inherited ones
func (c *ClassInfo) Members() []string {
	seen := make(map[string]bool)
	var out []string
	add := func(name string) {
		if !seen[name] {
			seen[name] = true
			out = append(out, name)
		}
	}
	var v Visited
	collectMemberNames(c, &v, add)
	if c.Mro.IsValid {
		for _, name := range Builtins.Object.MemberNames() {
			add(name)
		}
	}
	sort.Strings(out)
	return out
}

func collectMemberNames(cls Namespace, v *Visited, add func(string)) {
	if !v.Push(cls) {
		return
	}
	defer v.Pop(cls)
	switch cls := cls.(type) {
	case *BuiltinClass:
		for _, name := range cls.MemberNames() {
			add(name)
		}
	case *ClassInfo:
		for _, name := range cls.Scope.Names() {
			add(name)
		}
		for _, entry := range cls.Mro.Entries() {
			for _, ns := range entry.Types() {
				if ns != cls {
					collectMemberNames(ns, v, add)
				}
			}
		}
	}
}

// IsSubclass returns true if base appears in the MRO of c
func (c *ClassInfo) IsSubclass(base Namespace) bool {
	for _, ns := range linearize(c) {
		if ns == base {
			return true
		}
	}
	return false
}

// call constructs an instance: user `__new__` methods may substitute the
// result, `__init__` methods are called with the instance
func (c *ClassInfo) call(call *Call) TypeUnion {
	site := call.Site
	out := NewUnion(c.Instance)

	for _, ns := range GetMemberFromMro(site, c, "__new__").Types() {
		if _, ok := ns.(*FunctionInfo); !ok {
			continue
		}
		res := Invoke(site, ns, call.Args.Prepend(c))
		for _, r := range res.Types() {
			if isInstanceLike(r) {
				out, _ = out.Add(r)
			}
		}
	}

	for _, ns := range GetMemberFromMro(site, c, "__init__").Types() {
		switch ns.(type) {
		case *FunctionInfo, *DescriptorInfo:
			InvokeUnion(site, GetDescriptor(site, ns, c.Instance, c), call.Args)
		}
	}
	return out
}
