// Package pythonimports names python modules. A module name is a DottedPath
// such as "os.path"; relative imports are resolved against the name of the
// importing module.
package pythonimports

import (
	"fmt"
	"strings"

	spooky "github.com/dgryski/go-spooky"
)

// DottedPath represents a dot-separated python module or member path.
// Hash is a 64 bit non-cryptographic hash of the path. It should
// only be used to determine whether two paths are equal.
// The empty path is represented by an empty list of parts and a
// hash of zero.
type DottedPath struct {
	Hash  Hash
	Parts []string
}

// PathHash hashes the dotted path p
func PathHash(b []byte) Hash {
	return Hash(spooky.Hash64(b))
}

// NewDottedPath constructs a dotted path by splitting a string at periods
func NewDottedPath(s string) DottedPath {
	if s == "" {
		return DottedPath{} // because strings.Split returns a length-1 array for empty input
	}
	return DottedPath{
		Hash:  PathHash([]byte(s)),
		Parts: strings.Split(s, "."),
	}
}

// NewPath constructs a dotted path from a sequence of parts
func NewPath(parts ...string) DottedPath {
	if len(parts) == 0 {
		return DottedPath{}
	}
	return DottedPath{
		Hash:  PathHash([]byte(strings.Join(parts, "."))),
		Parts: parts,
	}
}

// Empty returns true if the path is empty
func (p DottedPath) Empty() bool {
	return len(p.Parts) == 0
}

// Head returns the first path component, e.g. "os" for
// "os.path.join", or empty string if the path is empty.
func (p DottedPath) Head() string {
	if len(p.Parts) == 0 {
		return ""
	}
	return p.Parts[0]
}

// Last returns the last path component, e.g. "join" for
// "os.path.join", or empty string if the path is empty.
func (p DottedPath) Last() string {
	if len(p.Parts) == 0 {
		return ""
	}
	return p.Parts[len(p.Parts)-1]
}

// Predecessor returns the path without the tail e.g. for
// "x.y.z", this function returns "x.y". If the path has fewer
// than 2 components, this function returns the empty path.
func (p DottedPath) Predecessor() DottedPath {
	if len(p.Parts) < 2 {
		return DottedPath{}
	}
	return NewPath(p.Parts[:len(p.Parts)-1]...)
}

// Prefixes returns every non-empty prefix of the path, shortest first:
// "a", "a.b", "a.b.c" for "a.b.c". Importing "a.b.c" binds "a" and loads
// each of these modules in turn.
func (p DottedPath) Prefixes() []DottedPath {
	out := make([]DottedPath, 0, len(p.Parts))
	for i := 1; i <= len(p.Parts); i++ {
		out = append(out, NewPath(p.Parts[:i]...))
	}
	return out
}

// Equals returns true if p.String() == s (but avoids allocs)
func (p DottedPath) Equals(s string) bool {
	for i, part := range p.Parts {
		if !strings.HasPrefix(s, part) {
			return false
		}
		s = s[len(part):]
		if i < len(p.Parts)-1 {
			if !strings.HasPrefix(s, ".") {
				return false
			}
			s = s[1:]
		}
	}
	return len(s) == 0
}

// Valid returns false if any path component is empty or
// contains periods
func (p DottedPath) Valid() bool {
	for _, part := range p.Parts {
		if part == "" || strings.Contains(part, ".") {
			return false
		}
	}
	return true
}

// String returns the path components joined with periods,
// e.g. "os.path.join"
func (p DottedPath) String() string {
	return strings.Join(p.Parts, ".")
}

// WithTail returns a copy of this path with one or more components appended
func (p DottedPath) WithTail(components ...string) DottedPath {
	parts := make([]string, len(p.Parts)+len(components))
	copy(parts, p.Parts)
	copy(parts[len(p.Parts):], components)
	return NewPath(parts...)
}

// Hash represents the hash of a dotted path
type Hash uint64

// String representation of h
func (h Hash) String() string {
	return fmt.Sprintf("%x", uint64(h))
}
