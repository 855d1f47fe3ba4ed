package pythonast

import (
	"go/token"
	"sort"
)

// LineMap maps byte offsets in a source buffer to line and column numbers
type LineMap struct {
	starts []int // byte offset of the first character of each line
	size   int
}

// NewLineMap indexes the line starts of src
func NewLineMap(src []byte) *LineMap {
	starts := []int{0}
	for i, c := range src {
		if c == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &LineMap{starts: starts, size: len(src)}
}

// Position returns the 1-based line and column of pos
func (m *LineMap) Position(pos token.Pos) (line, col int) {
	off := int(pos)
	if off < 0 {
		off = 0
	}
	if off > m.size {
		off = m.size
	}
	i := sort.Search(len(m.starts), func(i int) bool { return m.starts[i] > off }) - 1
	return i + 1, off - m.starts[i] + 1
}

// Offset returns the byte offset of the 1-based line and column, clamped to
// the buffer
func (m *LineMap) Offset(line, col int) token.Pos {
	if line < 1 {
		return 0
	}
	if line > len(m.starts) {
		return token.Pos(m.size)
	}
	off := m.starts[line-1] + col - 1
	if off < m.starts[line-1] {
		off = m.starts[line-1]
	}
	if off > m.size {
		off = m.size
	}
	return token.Pos(off)
}

// LineCount returns the number of lines in the buffer
func (m *LineMap) LineCount() int {
	return len(m.starts)
}
