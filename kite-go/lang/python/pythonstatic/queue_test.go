package pythonstatic

import (
	"testing"
	"time"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonast"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythonimports"
	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testUnits(t *testing.T, q *Queue, n int) (*pythontype.ModuleEntry, []*pythontype.AnalysisUnit) {
	state := pythontype.NewState(pythontype.DefaultLimits(), nil, q)
	entry := pythontype.NewModuleEntry(pythonimports.NewDottedPath("m"), "/src/m.py")
	entry.Tree = &pythonast.Module{}
	mod := pythontype.NewModuleInfo(entry)

	var units []*pythontype.AnalysisUnit
	for i := 0; i < n; i++ {
		node := &pythonast.ClassDefStmt{Span: pythonast.Span{From: 1, To: 2}}
		units = append(units, pythontype.NewUnit(state, pythontype.ClassUnit, node, mod.Scope, entry, nil))
	}
	return entry, units
}

func TestQueue_Dedup(t *testing.T) {
	q := NewQueue(nil)
	_, units := testUnits(t, q, 1)

	units[0].Enqueue(pythontype.NormalPriority)
	units[0].Enqueue(pythontype.LowPriority)
	assert.Equal(t, 1, q.Len())
	assert.True(t, q.IsAnalyzing())

	u := q.next()
	require.True(t, u == units[0])
	q.done(u)
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.IsAnalyzing())
}

func TestQueue_Priority(t *testing.T) {
	q := NewQueue(nil)
	_, units := testUnits(t, q, 3)

	units[0].Enqueue(pythontype.LowPriority)
	units[1].Enqueue(pythontype.NormalPriority)
	units[2].Enqueue(pythontype.NormalPriority)

	var order []*pythontype.AnalysisUnit
	for q.Len() > 0 {
		u := q.next()
		order = append(order, u)
		q.done(u)
	}
	require.Len(t, order, 3)
	assert.True(t, order[0] == units[1])
	assert.True(t, order[1] == units[2])
	assert.True(t, order[2] == units[0])
}

func TestQueue_RequeueWhileRunning(t *testing.T) {
	q := NewQueue(nil)
	_, units := testUnits(t, q, 1)

	units[0].Enqueue(pythontype.NormalPriority)
	u := q.next()
	assert.Equal(t, pythontype.Running, u.Status())

	u.Enqueue(pythontype.LowPriority)
	assert.Equal(t, 0, q.Len())

	q.done(u)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, pythontype.Pending, u.Status())
}

func TestQueue_DropsStaleUnits(t *testing.T) {
	q := NewQueue(nil)
	entry, units := testUnits(t, q, 2)

	units[0].Enqueue(pythontype.NormalPriority)
	entry.Bump()

	fresh := pythontype.NewUnit(units[1].State, pythontype.ClassUnit, units[1].Node, units[1].Scope, entry, nil)
	fresh.Enqueue(pythontype.NormalPriority)

	u := q.next()
	assert.True(t, u == fresh)
	assert.Equal(t, pythontype.Idle, units[0].Status())
	q.done(u)
}

func TestQueue_DropsUnitsThatCannotStart(t *testing.T) {
	q := NewQueue(nil)
	_, units := testUnits(t, q, 2)

	units[0].Enqueue(pythontype.NormalPriority)
	require.NoError(t, units[0].Begin())
	units[1].Enqueue(pythontype.NormalPriority)

	u := q.next()
	assert.True(t, u == units[1])
	assert.Equal(t, pythontype.Idle, units[0].Status())
	q.done(u)

	// the dropped unit can be scheduled again
	units[0].Enqueue(pythontype.NormalPriority)
	assert.Equal(t, 1, q.Len())
	assert.Equal(t, pythontype.Pending, units[0].Status())
}

func TestQueue_WaitForIdle(t *testing.T) {
	q := NewQueue(nil)
	_, units := testUnits(t, q, 1)
	assert.True(t, q.WaitForIdle(time.Millisecond))

	units[0].Enqueue(pythontype.NormalPriority)
	assert.False(t, q.WaitForIdle(10*time.Millisecond))

	go func() {
		u := q.next()
		q.done(u)
	}()
	assert.True(t, q.WaitForIdle(5*time.Second))
}

func TestQueue_Stop(t *testing.T) {
	q := NewQueue(nil)
	_, units := testUnits(t, q, 2)
	units[0].Enqueue(pythontype.NormalPriority)

	q.Stop()
	assert.Equal(t, 0, q.Len())
	assert.Equal(t, pythontype.Idle, units[0].Status())
	assert.Nil(t, q.next())

	units[1].Enqueue(pythontype.NormalPriority)
	assert.Equal(t, 0, q.Len())
	assert.False(t, q.IsAnalyzing())
}
