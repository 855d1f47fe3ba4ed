package pythontype

// SuperInfo is the proxy returned by super(). Member lookups skip the MRO up
// to and including Class.
type SuperInfo struct {
	record
	Class *ClassInfo
	// Self is the instance or class the proxy binds members to
	Self Namespace
}

// NewSuperAt returns the proxy created at site
func NewSuperAt(site Site, cls *ClassInfo, self Namespace) *SuperInfo {
	sub := cls.id()
	if self != nil {
		sub = rehash(cls.id(), self.id())
	}
	return site.memoSub(memoSuper, sub, func() Namespace {
		return &SuperInfo{record: newRecord(), Class: cls, Self: self}
	}).(*SuperInfo)
}

// Kind implements Namespace
func (s *SuperInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (s *SuperInfo) Name() string { return "super" }

// owner returns the class whose MRO the proxy walks
func (s *SuperInfo) owner() *ClassInfo {
	switch self := s.Self.(type) {
	case *InstanceInfo:
		return self.Class
	case *ClassInfo:
		return self
	}
	return s.Class
}

// remaining returns the MRO entries after Class
func (s *SuperInfo) remaining() []TypeUnion {
	entries := s.owner().Mro.Entries()
	for i, e := range entries {
		if e.Contains(s.Class) {
			return entries[i+1:]
		}
	}
	if entries = s.Class.Mro.Entries(); len(entries) > 0 {
		return entries[1:]
	}
	return nil
}

func (s *SuperInfo) getAttr(site Site, name string) TypeUnion {
	if !site.ForEval() {
		s.owner().mroDeps.add(site.Unit)
	}

	var instance Namespace
	owner := Namespace(s.owner())
	switch s.Self.(type) {
	case *ClassInfo:
	case nil:
	default:
		instance = s.Self
	}

	var v Visited
	v.Push(s.Class)
	for _, entry := range s.remaining() {
		res := entryMember(site, entry, name, &v)
		if res.IsEmpty() {
			continue
		}
		var out TypeUnion
		for _, m := range res.Types() {
			out, _ = out.Union(GetDescriptor(site, m, instance, owner))
		}
		return out
	}
	if m, ok := Builtins.Object.OwnMember(name); ok {
		return GetDescriptor(site, m, instance, owner)
	}
	return TypeUnion{}
}
