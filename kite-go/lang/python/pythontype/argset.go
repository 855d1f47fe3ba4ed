package pythontype

// ParamSpec is the shape of a parameter list for binding purposes
type ParamSpec struct {
	Names       []string
	KeywordOnly []bool
	Vararg      bool
	Kwarg       bool
}

func (p ParamSpec) index(name string) int {
	for i, n := range p.Names {
		if n == name {
			return i
		}
	}
	return -1
}

// positional returns the number of parameters that accept positional
// arguments
func (p ParamSpec) positional() int {
	n := 0
	for i := range p.Names {
		if i < len(p.KeywordOnly) && p.KeywordOnly[i] {
			break
		}
		n++
	}
	return n
}

// ArgumentSet is the result of binding call arguments to a parameter list:
// the types flowing into each named parameter, into *args and into **kwargs
type ArgumentSet struct {
	Params []TypeUnion
	// Vararg holds the element types of the *args tuple
	Vararg TypeUnion
	// Kwarg holds the value types of the **kwargs dict, KwargNames the
	// keyword names that landed in it
	Kwarg      TypeUnion
	KwargNames []string
}

// BindArguments matches call arguments to parameters the way the interpreter
// does, without reporting errors. Arguments with nowhere to go are dropped.
// A splatted tuple of known length fills the positional slots after the
// explicit arguments one by one; other splatted iterables contribute their
// element types to every remaining slot. Each slot is strengthened to fit the
// limit for its kind.
func BindArguments(site Site, spec ParamSpec, args Args) ArgumentSet {
	set := ArgumentSet{Params: make([]TypeUnion, len(spec.Names))}
	npos := spec.positional()

	add := func(i int, types TypeUnion) {
		set.Params[i], _ = set.Params[i].Union(types)
	}
	addVararg := func(types TypeUnion) {
		if spec.Vararg {
			set.Vararg, _ = set.Vararg.Union(types)
		}
	}

	for i, arg := range args.Positional {
		if i < npos {
			add(i, arg)
		} else {
			addVararg(arg)
		}
	}

	next := len(args.Positional)
	for _, splat := range args.Splats {
		advance := 0
		for _, ns := range splat.Types() {
			if t, ok := ns.(*TupleInfo); ok && t.Star == nil {
				for j, e := range t.Elements {
					types := e.TypesFor(site.Unit)
					if next+j < npos {
						add(next+j, types)
					} else {
						addVararg(types)
					}
				}
				if t.Len() > advance {
					advance = t.Len()
				}
				continue
			}
			elems := GetEnumeratedTypes(site, ns)
			for j := next; j < npos; j++ {
				add(j, elems)
			}
			addVararg(elems)
		}
		next += advance
	}

	for _, kw := range args.Keywords {
		if i := spec.index(kw.Name); i >= 0 {
			add(i, kw.Types)
			continue
		}
		if spec.Kwarg {
			set.Kwarg, _ = set.Kwarg.Union(kw.Types)
			set.KwargNames = append(set.KwargNames, kw.Name)
		}
	}

	for _, splat := range args.DoubleSplats {
		for _, ns := range splat.Types() {
			d, ok := ns.(*DictInfo)
			if !ok {
				continue
			}
			values := d.ValueTypes(site)
			for _, key := range Strings(d.KeyTypes(site)) {
				if i := spec.index(key); i >= 0 {
					add(i, values)
				}
			}
			if spec.Kwarg {
				set.Kwarg, _ = set.Kwarg.Union(values)
			}
		}
	}

	limits := site.Limits()
	for i := range set.Params {
		set.Params[i] = set.Params[i].Reduce(limits.NormalArgumentTypes)
	}
	set.Vararg = set.Vararg.Reduce(limits.ListArgumentTypes)
	set.Kwarg = set.Kwarg.Reduce(limits.DictArgumentTypes)
	return set
}
