package pythontype

import (
	"fmt"
	"strings"
)

// Signature describes one way of calling a namespace
type Signature struct {
	Name   string
	Params []string
	// Returns describes the return union, empty when nothing is known
	Returns string
}

// String renders the signature as a def line would read
func (s Signature) String() string {
	out := fmt.Sprintf("%s(%s)", s.Name, strings.Join(s.Params, ", "))
	if s.Returns != "" {
		out += " -> " + s.Returns
	}
	return out
}

// ShortDescription names the type of a namespace, e.g. "int", "list" or
// "class Foo"
func ShortDescription(ns Namespace) string {
	switch ns := ns.(type) {
	case nil:
		return "unknown"
	case *BuiltinClass:
		return "type " + ns.name
	case *ClassInfo:
		return "class " + ns.name
	case *FunctionInfo:
		return "function " + ns.name
	case *BoundMethod:
		return "method " + ns.Func.name
	case *BuiltinFunction:
		return "function " + ns.name
	case *BuiltinMethod:
		return "method " + ns.Func.name
	case *ModuleInfo:
		if ns.Entry != nil && !ns.Entry.Name.Empty() {
			return "module " + ns.Entry.Name.String()
		}
		return "module"
	case *BuiltinModule:
		return "module " + ns.name
	case *InstanceInfo:
		return ns.Class.name
	case *MultipleMemberInfo:
		return describeUnion(ns.Members)
	default:
		return ns.Name()
	}
}

// LongDescription describes a namespace together with what it holds, e.g.
// "list[int | str]", "int 3" or "def f(a, b=int)". Reading element types
// here never registers dependencies.
func LongDescription(ns Namespace) string {
	switch ns := ns.(type) {
	case *ConstantInfo:
		return ns.Class.name + " " + ns.Literal()
	case *ListInfo:
		return fmt.Sprintf("%s[%s]", ns.cls.name, describeDef(ns.Elements))
	case *SetInfo:
		return fmt.Sprintf("%s[%s]", ns.cls.name, describeDef(ns.Elements))
	case *DictInfo:
		return fmt.Sprintf("%s[%s, %s]", ns.cls.name, describeDef(ns.Keys), describeDef(ns.Values))
	case *TupleInfo:
		var parts []string
		for _, e := range ns.Elements {
			parts = append(parts, describeDef(e))
		}
		if ns.Star != nil {
			parts = append(parts, describeDef(ns.Star)+", ...")
		}
		return fmt.Sprintf("tuple[%s]", strings.Join(parts, ", "))
	case *IteratorInfo:
		if ns.Elements != nil {
			return fmt.Sprintf("%s[%s]", ns.cls.name, describeDef(ns.Elements))
		}
		return ns.cls.name
	case *GeneratorInfo:
		return fmt.Sprintf("generator[%s]", describeDef(ns.Yields))
	case *ClassInfo:
		var bases []string
		for _, b := range ns.bases {
			var names []string
			for _, base := range b.Types() {
				names = append(names, base.Name())
			}
			bases = append(bases, strings.Join(names, " | "))
		}
		if len(bases) == 0 {
			return "class " + ns.name
		}
		return fmt.Sprintf("class %s(%s)", ns.name, strings.Join(bases, ", "))
	case *FunctionInfo, *BoundMethod, *BuiltinFunction, *BuiltinMethod:
		sigs := Signatures(ns)
		if len(sigs) == 0 {
			return ShortDescription(ns)
		}
		return "def " + sigs[0].String()
	case *DescriptorInfo:
		return fmt.Sprintf("%s[%s]", ns.class().name, describeDef(ns.Func))
	case *SuperInfo:
		return "super of " + ns.Class.name
	default:
		return ShortDescription(ns)
	}
}

// Signatures returns the ways a namespace can be called. Classes are called
// through their __init__.
func Signatures(ns Namespace) []Signature {
	switch ns := ns.(type) {
	case *FunctionInfo:
		return []Signature{functionSignature(ns, false)}
	case *BoundMethod:
		return []Signature{functionSignature(ns.Func, true)}
	case *BuiltinFunction:
		return []Signature{{Name: ns.name, Params: ns.params}}
	case *BuiltinMethod:
		return []Signature{{Name: ns.Func.name, Params: ns.Func.params}}
	case *BuiltinClass:
		return []Signature{{Name: ns.name, Params: ns.params}}
	case *ClassInfo:
		var out []Signature
		init := ns.Scope.Get("__init__")
		if init == nil {
			return []Signature{{Name: ns.name}}
		}
		for _, m := range init.Types().Types() {
			if f, ok := m.(*FunctionInfo); ok {
				sig := functionSignature(f, true)
				sig.Name = ns.name
				sig.Returns = ""
				out = append(out, sig)
			}
		}
		if len(out) == 0 {
			out = append(out, Signature{Name: ns.name})
		}
		return out
	case *DescriptorInfo:
		var out []Signature
		for _, f := range ns.Func.Types().Types() {
			out = append(out, Signatures(f)...)
		}
		return out
	case *MultipleMemberInfo:
		var out []Signature
		for _, m := range ns.Members.Types() {
			out = append(out, Signatures(m)...)
		}
		return out
	}
	return nil
}

func functionSignature(f *FunctionInfo, bound bool) Signature {
	sig := Signature{Name: f.name}
	params := f.Parameters()
	for i, p := range params {
		if bound && i == 0 {
			continue
		}
		s := p.Name.Ident
		if i < len(f.Defaults) && f.Defaults[i] != nil {
			s += "=" + describeDef(f.Defaults[i])
		}
		sig.Params = append(sig.Params, s)
	}
	if v := f.Vararg(); v != nil {
		sig.Params = append(sig.Params, "*"+v.Name.Ident)
	}
	if k := f.Kwarg(); k != nil {
		sig.Params = append(sig.Params, "**"+k.Name.Ident)
	}
	sig.Returns = describeUnion(f.AllReturns())
	if sig.Returns == "unknown" {
		sig.Returns = ""
	}
	return sig
}

func describeDef(v *VariableDef) string {
	if v == nil {
		return "unknown"
	}
	return describeUnion(v.Types())
}

func describeUnion(u TypeUnion) string {
	if u.IsEmpty() {
		return "unknown"
	}
	seen := make(map[string]bool)
	var parts []string
	for _, ns := range u.Types() {
		s := ShortDescription(ns)
		if !seen[s] {
			seen[s] = true
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " | ")
}
