package pythontype

// MultipleMemberInfo stands for a member that has several possible values,
// for example an attribute bound in both branches of an if statement. It is
// produced for queries that must answer with a single namespace.
type MultipleMemberInfo struct {
	record
	Members TypeUnion
}

// Collapse returns the only namespace of a union, a MultipleMemberInfo for
// unions of several namespaces, or nil for the empty union
func Collapse(u TypeUnion) Namespace {
	switch u.Len() {
	case 0:
		return nil
	case 1:
		return u.Types()[0]
	}
	return &MultipleMemberInfo{record: newRecord(), Members: u}
}

// Kind implements Namespace
func (m *MultipleMemberInfo) Kind() Kind { return MultipleKind }

// Name implements Namespace
func (m *MultipleMemberInfo) Name() string { return m.Members.String() }
