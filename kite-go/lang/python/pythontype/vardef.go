package pythontype

import (
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"go.uber.org/zap"
)

// contribution holds the types one module added to a VariableDef while at
// a particular version
type contribution struct {
	entry   *ModuleEntry
	version int
	types   TypeUnion
}

// dependents is a set of units to revisit when something they read changes
type dependents struct {
	units map[*AnalysisUnit]struct{}
	order []*AnalysisUnit
}

func (d *dependents) add(u *AnalysisUnit) bool {
	if u == nil || u.ForEval {
		return false
	}
	if _, ok := d.units[u]; ok {
		return false
	}
	if d.units == nil {
		d.units = make(map[*AnalysisUnit]struct{})
	}
	d.units[u] = struct{}{}
	d.order = append(d.order, u)
	return true
}

// enqueue queues every live dependent and forgets the stale ones
func (d *dependents) enqueue(p Priority) {
	if len(d.order) == 0 {
		return
	}
	live := d.order[:0]
	for _, u := range d.order {
		if u.Stale() {
			delete(d.units, u)
			continue
		}
		live = append(live, u)
	}
	for i := len(live); i < len(d.order); i++ {
		d.order[i] = nil
	}
	d.order = live
	for _, u := range live {
		u.Enqueue(p)
	}
}

func (d *dependents) len() int { return len(d.order) }

// locations records the spans in one module, at one version, that refer to a
// VariableDef
type locations struct {
	entry   *ModuleEntry
	version int
	spans   []pythonast.Span
}

type locationSet []*locations

func (ls *locationSet) add(loc Location) {
	version := loc.Entry.Version()
	for _, l := range *ls {
		if l.entry != loc.Entry {
			continue
		}
		if l.version != version {
			l.version = version
			l.spans = l.spans[:0]
		}
		for _, s := range l.spans {
			if s == loc.Span {
				return
			}
		}
		l.spans = append(l.spans, loc.Span)
		return
	}
	*ls = append(*ls, &locations{entry: loc.Entry, version: version, spans: []pythonast.Span{loc.Span}})
}

func (ls locationSet) list() []Location {
	var out []Location
	for _, l := range ls {
		if !l.entry.live(l.version) {
			continue
		}
		for _, s := range l.spans {
			out = append(out, Location{Entry: l.entry, Span: s})
		}
	}
	return out
}

// VariableDef is the record for one binding: the union of the types that
// every contributing module assigned to it, the units to revisit when that
// union grows, and the source locations that assign or reference it.
//
// A VariableDef is only written by the unit that is currently running.
type VariableDef struct {
	Name string

	contribs   []*contribution
	deps       dependents
	refs       locationSet
	defs       locationSet
	strength   int
	deleted    bool
	ephemeral  bool
	absorbing  bool
	hardLimitd bool

	// evalOnly defs belong to namespaces created while evaluating a query
	evalOnly bool
}

// NewVariableDef creates an empty binding
func NewVariableDef(name string) *VariableDef {
	return &VariableDef{Name: name}
}

// newFixedDef creates a binding whose types never go stale
func newFixedDef(name string, types TypeUnion) *VariableDef {
	v := &VariableDef{Name: name}
	if !types.IsEmpty() {
		v.contribs = []*contribution{{types: types}}
	}
	return v
}

// newEphemeralDef creates a binding for a name that was read before being
// assigned. It is hidden from listings until it is assigned.
func newEphemeralDef(name string) *VariableDef {
	return &VariableDef{Name: name, ephemeral: true}
}

// IsEphemeral returns true if the binding has only been read so far
func (v *VariableDef) IsEphemeral() bool { return v.ephemeral }

// IsAlive returns false once the binding was deleted and not reassigned
func (v *VariableDef) IsAlive() bool { return !v.deleted }

// MarkDeleted records that the binding was removed with `del`
func (v *VariableDef) MarkDeleted() { v.deleted = true }

// IsBound returns true if the binding has a live assignment or live types
// and was not deleted
func (v *VariableDef) IsBound() bool {
	if v.ephemeral || v.deleted {
		return false
	}
	return len(v.Definitions()) > 0 || !v.Types().IsEmpty()
}

// Strength returns the merge strength applied to the binding's union
func (v *VariableDef) Strength() int { return v.strength }

// Types returns the union of the live contributions
func (v *VariableDef) Types() TypeUnion {
	if v == nil {
		return TypeUnion{}
	}
	switch len(v.contribs) {
	case 0:
		return TypeUnion{strength: v.strength}
	case 1:
		c := v.contribs[0]
		if !c.entry.live(c.version) {
			return TypeUnion{strength: v.strength}
		}
		return c.types
	}
	out := TypeUnion{strength: v.strength}
	for _, c := range v.contribs {
		if c.entry.live(c.version) {
			out, _ = out.Union(c.types)
		}
	}
	return out
}

// TypesFor reads the union and registers unit as a dependent
func (v *VariableDef) TypesFor(unit *AnalysisUnit) TypeUnion {
	v.AddDependency(unit)
	return v.Types()
}

// contribution returns the contribution of entry at its current version,
// discarding one recorded for an older version
func (v *VariableDef) contribution(entry *ModuleEntry) *contribution {
	version := entry.Version()
	for _, c := range v.contribs {
		if c.entry == entry {
			if c.version != version {
				c.version = version
				c.types = TypeUnion{strength: v.strength}
			}
			return c
		}
	}
	c := &contribution{entry: entry, version: version, types: TypeUnion{strength: v.strength}}
	v.contribs = append(v.contribs, c)
	return c
}

// AddTypes adds types on behalf of unit and returns true if the binding's
// union grew. Dependents are enqueued when it did. Writes from ForEval units
// are ignored unless the binding was created by the same evaluation.
func (v *VariableDef) AddTypes(unit *AnalysisUnit, types TypeUnion) bool {
	if unit != nil && unit.ForEval && !v.evalOnly {
		return false
	}
	v.ephemeral = false
	v.deleted = false
	if types.IsEmpty() {
		return false
	}

	var entry *ModuleEntry
	if unit != nil {
		entry = unit.Entry
	}
	c := v.contribution(entry)

	changed := false
	for _, ns := range types.AsStrength(v.strength).Types() {
		if c.types.Len() >= HardTypeLimit {
			if !v.hardLimitd && unit != nil && unit.State != nil {
				unit.State.Logger.Warn("type limit reached",
					zap.String("name", v.Name), zap.Int("limit", HardTypeLimit))
			}
			v.hardLimitd = true
			break
		}
		var added bool
		c.types, added = c.types.Add(ns)
		changed = changed || added
	}
	if changed {
		v.EnqueueDependents()
	}
	return changed
}

// AddTypesLimited adds types and then strengthens the union if it holds more
// than limit namespaces
func (v *VariableDef) AddTypesLimited(unit *AnalysisUnit, types TypeUnion, limit int) bool {
	changed := v.AddTypes(unit, types)
	if changed {
		v.MakeUnionStrongerIfMoreThan(limit)
	}
	return changed
}

// MakeUnionStrongerIfMoreThan raises the merge strength one level at a time
// until the union holds at most limit namespaces or the strength is maximal.
// A limit of zero or less disables strengthening.
func (v *VariableDef) MakeUnionStrongerIfMoreThan(limit int) bool {
	if limit <= 0 {
		return false
	}
	changed := false
	for v.strength < MaxStrength && v.Types().Len() > limit {
		v.strength++
		for _, c := range v.contribs {
			c.types = c.types.AsStrength(v.strength)
		}
		changed = true
	}
	if changed {
		v.EnqueueDependents()
	}
	return changed
}

// absorb merges the contributions of other into v. It is used when two
// collections are collapsed into one representative.
func (v *VariableDef) absorb(other *VariableDef) {
	if v == nil || other == nil || v == other || v.absorbing {
		return
	}
	v.absorbing = true
	defer func() { v.absorbing = false }()

	changed := false
	for _, oc := range other.contribs {
		if !oc.entry.live(oc.version) {
			continue
		}
		c := v.contribution(oc.entry)
		var added bool
		c.types, added = c.types.Union(oc.types.AsStrength(v.strength))
		changed = changed || added
	}
	if changed {
		v.EnqueueDependents()
	}
}

// AddDependency registers unit to be enqueued when the union grows
func (v *VariableDef) AddDependency(unit *AnalysisUnit) {
	v.deps.add(unit)
}

// Dependents returns the number of units that depend on the binding
func (v *VariableDef) Dependents() int { return v.deps.len() }

// EnqueueDependents enqueues every live dependent at normal priority
func (v *VariableDef) EnqueueDependents() {
	v.deps.enqueue(NormalPriority)
}

// AddReference records a read of the binding
func (v *VariableDef) AddReference(loc Location) {
	v.refs.add(loc)
}

// AddAssignment records a write to the binding
func (v *VariableDef) AddAssignment(loc Location) {
	v.ephemeral = false
	v.deleted = false
	v.defs.add(loc)
}

// References returns the live read locations
func (v *VariableDef) References() []Location { return v.refs.list() }

// Definitions returns the live write locations
func (v *VariableDef) Definitions() []Location { return v.defs.list() }
