package pythontype

// MaxCallDepth is the largest call depth that can be configured
const MaxCallDepth = 8

// HardTypeLimit caps the number of namespaces in any single union. Types
// added past it are dropped.
const HardTypeLimit = 1000

// Limits bounds the growth of unions and call chains during an analysis
// session. A Limits value is fixed for the lifetime of a session.
type Limits struct {
	// CrossModule is the number of import edges a module change propagates
	// across. 0 means unlimited.
	CrossModule int `yaml:"crossModule"`

	// CallDepth is the length of the call chain functions are specialized on
	CallDepth int `yaml:"callDepth"`

	// DecreaseCallDepth is the number of specializations a function may
	// accumulate before its call depth is reduced by one. 0 disables the
	// reduction.
	DecreaseCallDepth int `yaml:"decreaseCallDepth"`

	// NormalArgumentTypes is the number of types an ordinary parameter holds
	// before its union is made stronger
	NormalArgumentTypes int `yaml:"normalArgumentTypes"`

	// ListArgumentTypes applies to the contents of *args
	ListArgumentTypes int `yaml:"listArgumentTypes"`

	// DictArgumentTypes applies to the values of **kwargs
	DictArgumentTypes int `yaml:"dictArgumentTypes"`

	// ReturnTypes applies to function return values
	ReturnTypes int `yaml:"returnTypes"`

	// YieldTypes applies to generator yields, sends and returns
	YieldTypes int `yaml:"yieldTypes"`

	// InstanceMembers applies to attributes assigned on instances
	InstanceMembers int `yaml:"instanceMembers"`

	// DictKeyTypes applies to dict keys
	DictKeyTypes int `yaml:"dictKeyTypes"`

	// DictValueTypes applies to dict values
	DictValueTypes int `yaml:"dictValueTypes"`

	// IndexTypes applies to list, tuple and set elements
	IndexTypes int `yaml:"indexTypes"`

	// AssignedTypes applies to names bound by assignment
	AssignedTypes int `yaml:"assignedTypes"`

	// UnifyCallsToNew makes every call to __new__ share one analysis
	UnifyCallsToNew bool `yaml:"unifyCallsToNew"`

	// ProcessCustomDecorators replaces a decorated function with the result
	// of calling its decorators. property, classmethod and staticmethod are
	// always understood.
	ProcessCustomDecorators bool `yaml:"processCustomDecorators"`

	// UseTypeStubPackages lets .pyi files and <pkg>-stubs packages take
	// precedence over sources
	UseTypeStubPackages bool `yaml:"useTypeStubPackages"`

	// UseTypeStubPackagesExclusively ignores the sources of packages that
	// have stubs
	UseTypeStubPackagesExclusively bool `yaml:"useTypeStubPackagesExclusively"`
}

// DefaultLimits are the limits used for user code
func DefaultLimits() Limits {
	return Limits{
		CrossModule:             0,
		CallDepth:               3,
		DecreaseCallDepth:       30,
		NormalArgumentTypes:     50,
		ListArgumentTypes:       20,
		DictArgumentTypes:       20,
		ReturnTypes:             20,
		YieldTypes:              20,
		InstanceMembers:         50,
		DictKeyTypes:            10,
		DictValueTypes:          30,
		IndexTypes:              30,
		AssignedTypes:           100,
		ProcessCustomDecorators: true,
		UseTypeStubPackages:     true,
	}
}

// StandardLibraryLimits are tighter limits suited to analyzing a large
// library tree
func StandardLibraryLimits() Limits {
	l := DefaultLimits()
	l.CallDepth = 2
	l.DecreaseCallDepth = 20
	l.NormalArgumentTypes = 10
	l.ListArgumentTypes = 5
	l.DictArgumentTypes = 5
	l.ReturnTypes = 10
	l.YieldTypes = 10
	l.InstanceMembers = 5
	l.DictKeyTypes = 5
	l.DictValueTypes = 20
	l.IndexTypes = 5
	l.AssignedTypes = 50
	return l
}

// Normalize clamps out of range values
func (l Limits) Normalize() Limits {
	if l.CallDepth < 0 {
		l.CallDepth = 0
	}
	if l.CallDepth > MaxCallDepth {
		l.CallDepth = MaxCallDepth
	}
	if l.DecreaseCallDepth < 0 {
		l.DecreaseCallDepth = 0
	}
	if l.CrossModule < 0 {
		l.CrossModule = 0
	}
	return l
}
