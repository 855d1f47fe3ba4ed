package pythontype

import (
	"encoding/binary"
	"fmt"

	spooky "github.com/dgryski/go-spooky"
)

// These constants keep the hashes of different variants apart. The numbers
// are randomly generated.
const (
	saltIdentity    = 6852785620859
	saltConstant    = 2608058625550
	saltClassOf     = 2569784136639
	saltTuple       = 9785314953969
	saltBoundMethod = 4651918196213
	saltKind        = 1531549486451
)

// rehash combines several 64 bit values into one hash
func rehash(x ...uint64) uint64 {
	var h uint64
	b := make([]byte, 8)
	for _, xi := range x {
		binary.LittleEndian.PutUint64(b, xi)
		h = spooky.Hash64Seed(b, h)
	}
	return h
}

// rehashString combines a hash with the hash of a string
func rehashString(x uint64, s string) uint64 {
	return spooky.Hash64Seed([]byte(s), x)
}

// unionHash is consistent with unionEquals for strengths below
// MergeBaseClass: namespaces that compare equal hash equally. Stronger
// strengths do not use hashes.
func unionHash(ns Namespace, strength int) uint64 {
	if strength >= MergeBaseClass {
		return rehash(saltKind, uint64(ns.Kind()))
	}
	if strength >= MergeSameClass {
		switch ns := ns.(type) {
		case *ConstantInfo:
			return rehash(saltClassOf, ns.Class.id())
		case *BuiltinInstance:
			return rehash(saltClassOf, ns.Class.id())
		case *ListInfo, *DictInfo, *SetInfo, *GeneratorInfo, *IteratorInfo:
			return rehash(saltClassOf, TypeOf(ns).id())
		case *TupleInfo:
			star := uint64(0)
			if ns.Star != nil {
				star = 1
			}
			return rehash(saltTuple, uint64(len(ns.Elements)), star)
		case *BoundMethod:
			return rehash(saltBoundMethod, ns.Func.id())
		case *BuiltinMethod:
			return rehash(saltBoundMethod, ns.Func.id())
		}
	}
	switch ns := ns.(type) {
	case *ConstantInfo:
		return rehashString(rehash(saltConstant, ns.Class.id()), fmt.Sprintf("%T:%v", ns.Value, ns.Value))
	case *BoundMethod:
		if ns.Self == nil {
			return rehash(saltBoundMethod, ns.Func.id())
		}
		return rehash(saltBoundMethod, ns.Func.id(), ns.Self.id())
	case *BuiltinMethod:
		if ns.Self == nil {
			return rehash(saltBoundMethod, ns.Func.id())
		}
		return rehash(saltBoundMethod, ns.Func.id(), ns.Self.id())
	}
	return rehash(saltIdentity, ns.id())
}
