package pythontype

import (
	"sort"
	"strings"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
)

// InstanceInfo stands for every instance of a user class. Attributes assigned
// through any instance are recorded here.
type InstanceInfo struct {
	record
	Class *ClassInfo

	attrs map[string]*VariableDef
	order []string
}

// Kind implements Namespace
func (i *InstanceInfo) Kind() Kind { return InstanceKind }

// Name implements Namespace
func (i *InstanceInfo) Name() string { return i.Class.name }

// Attr returns the binding for an attribute assigned on the instance, or nil
func (i *InstanceInfo) Attr(name string) *VariableDef {
	return i.attrs[name]
}

// attr returns the binding for an attribute, creating a hidden one so that a
// later assignment revisits the reader. Evaluations for queries never
// create bindings.
func (i *InstanceInfo) attr(site Site, name string) *VariableDef {
	if v, ok := i.attrs[name]; ok {
		return v
	}
	if site.ForEval() {
		return nil
	}
	if i.attrs == nil {
		i.attrs = make(map[string]*VariableDef)
	}
	v := newEphemeralDef(name)
	i.attrs[name] = v
	i.order = append(i.order, name)
	return v
}

// AttrNames returns the names of the attributes assigned on the instance
func (i *InstanceInfo) AttrNames() []string {
	var out []string
	for _, name := range i.order {
		if i.attrs[name].IsBound() {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// getAttr reads an attribute: class members bound to the instance, plus what
// was assigned on the instance. If neither exists, `__getattr__` is consulted.
func (i *InstanceInfo) getAttr(site Site, name string) TypeUnion {
	if name == "__class__" {
		return NewUnion(i.Class)
	}

	var out TypeUnion
	for _, m := range GetMemberFromMro(site, i.Class, name).Types() {
		out, _ = out.Union(GetDescriptor(site, m, i, i.Class))
	}
	if v := i.attr(site, name); v != nil {
		if !site.ForEval() && !pythonast.IsNil(site.Node) {
			v.AddReference(site.Location())
		}
		out, _ = out.Union(v.TypesFor(site.Unit))
	}
	if !out.IsEmpty() || isDunder(name) {
		return out
	}

	// __getattr__ is evaluated as a query: it sees what the hook returns
	// for any name and never binds arguments or records dependencies
	hook := GetMemberFromMro(site, i.Class, "__getattr__")
	eval := site
	if site.Unit != nil {
		eval.Unit = site.Unit.CopyForEval()
	}
	args := PositionalArgs(NewUnion(Builtins.StrConst(name)))
	for _, ns := range hook.Types() {
		if _, ok := ns.(*FunctionInfo); !ok {
			continue
		}
		for _, bound := range GetDescriptor(eval, ns, i, i.Class).Types() {
			out, _ = out.Union(Invoke(eval, bound, args))
		}
	}
	return out
}

// setAttr assigns an attribute. Properties with setters receive the value
// instead.
func (i *InstanceInfo) setAttr(site Site, name string, value TypeUnion) {
	handled := false
	for _, m := range GetMemberFromMro(site, i.Class, name).Types() {
		d, ok := m.(*DescriptorInfo)
		if !ok || d.Descriptor != PropertyDescriptor {
			continue
		}
		handled = true
		for _, setter := range d.Setter.TypesFor(site.Unit).Types() {
			Invoke(site, setter, PositionalArgs(NewUnion(i), value))
		}
	}
	if handled {
		return
	}
	v := i.attr(site, name)
	if v == nil {
		return
	}
	if !site.ForEval() && !pythonast.IsNil(site.Node) {
		v.AddAssignment(site.Location())
	}
	v.AddTypesLimited(site.Unit, value, site.Limits().InstanceMembers)
}

// delAttr marks an attribute as deleted
func (i *InstanceInfo) delAttr(name string) {
	if v, ok := i.attrs[name]; ok {
		v.MarkDeleted()
	}
}

func isDunder(name string) bool {
	return len(name) > 4 && strings.HasPrefix(name, "__") && strings.HasSuffix(name, "__")
}
