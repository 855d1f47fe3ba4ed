package pythontype

// DescriptorKind is the builtin decorator a descriptor was created by
type DescriptorKind int

const (
	// PropertyDescriptor calls its getter when read through an instance
	PropertyDescriptor DescriptorKind = iota
	// ClassMethodDescriptor binds its function to the class
	ClassMethodDescriptor
	// StaticMethodDescriptor never binds its function
	StaticMethodDescriptor
)

// DescriptorInfo is a property, classmethod or staticmethod object
type DescriptorInfo struct {
	record
	Descriptor DescriptorKind

	// Func holds the wrapped functions, Setter the property setters
	Func   *VariableDef
	Setter *VariableDef

	methods methodCache
}

// NewDescriptorAt returns the descriptor of the given kind created at site
func NewDescriptorAt(site Site, kind DescriptorKind) *DescriptorInfo {
	return site.memoSub(memoDescriptor, uint64(kind), func() Namespace {
		return &DescriptorInfo{
			record:     newRecord(),
			Descriptor: kind,
			Func:       site.newDef("fget"),
			Setter:     site.newDef("fset"),
		}
	}).(*DescriptorInfo)
}

// Kind implements Namespace
func (d *DescriptorInfo) Kind() Kind { return PropertyKind }

// Name implements Namespace
func (d *DescriptorInfo) Name() string { return d.class().name }

func (d *DescriptorInfo) class() *BuiltinClass {
	switch d.Descriptor {
	case ClassMethodDescriptor:
		return Builtins.ClassMethod
	case StaticMethodDescriptor:
		return Builtins.StaticMethod
	default:
		return Builtins.Property
	}
}

// Wrap records the wrapped functions
func (d *DescriptorInfo) Wrap(site Site, funcs TypeUnion) {
	for _, ns := range funcs.Types() {
		f, ok := ns.(*FunctionInfo)
		if !ok || site.ForEval() {
			continue
		}
		switch d.Descriptor {
		case ClassMethodDescriptor:
			f.IsClassMethod = true
		case StaticMethodDescriptor:
			f.IsStaticMethod = true
		}
	}
	d.Func.AddTypes(site.Unit, funcs)
}

// get implements the descriptor protocol: what reading the descriptor
// through instance, or through owner when instance is nil, evaluates to
func (d *DescriptorInfo) get(site Site, instance, owner Namespace) TypeUnion {
	funcs := d.Func.TypesFor(site.Unit)
	switch d.Descriptor {
	case PropertyDescriptor:
		if instance == nil {
			return NewUnion(d)
		}
		var out TypeUnion
		for _, f := range funcs.Types() {
			out, _ = out.Union(Invoke(site, f, PositionalArgs(NewUnion(instance))))
		}
		return out
	case ClassMethodDescriptor:
		if owner == nil {
			return funcs
		}
		var out TypeUnion
		for _, f := range funcs.Types() {
			out, _ = out.Union(bindTo(f, owner))
		}
		return out
	default:
		return funcs
	}
}

// bindTo binds a callable to a receiver
func bindTo(f, self Namespace) TypeUnion {
	switch f := f.(type) {
	case *FunctionInfo:
		return NewUnion(NewBoundMethod(f, self))
	case *BuiltinFunction:
		return NewUnion(NewBuiltinMethod(f, self))
	}
	return NewUnion(f)
}

func selfDescriptor(c *Call) *DescriptorInfo {
	d, _ := c.Self.(*DescriptorInfo)
	return d
}

func (b *BuiltinTable) descriptorMembers() {
	prop := b.Property
	prop.def("getter", "fget", func(c *Call) TypeUnion {
		if d := selfDescriptor(c); d != nil {
			d.Wrap(c.Site, c.Args.Arg(0))
			return NewUnion(d)
		}
		return TypeUnion{}
	})
	prop.def("setter", "fset", func(c *Call) TypeUnion {
		if d := selfDescriptor(c); d != nil {
			d.Setter.AddTypes(c.Unit, c.Args.Arg(0))
			return NewUnion(d)
		}
		return TypeUnion{}
	})
	prop.def("deleter", "fdel", returnsSelf)
	prop.construct = func(c *Call) TypeUnion {
		d := NewDescriptorAt(c.Site, PropertyDescriptor)
		d.Wrap(c.Site, c.Args.Arg(0))
		if fget, ok := c.Args.Keyword("fget"); ok {
			d.Wrap(c.Site, fget)
		}
		d.Setter.AddTypes(c.Unit, c.Args.Arg(1))
		if fset, ok := c.Args.Keyword("fset"); ok {
			d.Setter.AddTypes(c.Unit, fset)
		}
		return NewUnion(d)
	}
	prop.params = []string{"fget=None", "fset=None", "fdel=None", "doc=None"}

	wrapper := func(kind DescriptorKind) callFunc {
		return func(c *Call) TypeUnion {
			d := NewDescriptorAt(c.Site, kind)
			d.Wrap(c.Site, c.Args.Arg(0))
			return NewUnion(d)
		}
	}
	b.ClassMethod.construct = wrapper(ClassMethodDescriptor)
	b.ClassMethod.params = []string{"function"}
	b.StaticMethod.construct = wrapper(StaticMethodDescriptor)
	b.StaticMethod.params = []string{"function"}

	for _, cls := range []*BuiltinClass{b.Property, b.ClassMethod, b.StaticMethod} {
		cls.attr("__func__", b.Function.Instance)
		cls.attr("__doc__", b.Str.Instance)
	}
}
