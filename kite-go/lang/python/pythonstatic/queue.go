package pythonstatic

import (
	"container/list"
	"sync"
	"time"

	"github.com/kiteco/pyinfer/kite-go/lang/python/pythontype"
	"github.com/kiteco/pyinfer/kite-golib/kitelog"
	"go.uber.org/zap"
)

// Queue holds the units waiting to be analyzed. Units are de-duplicated by
// their scheduling state, run in FIFO order within a priority, and normal
// priority units always run before low priority ones. The queue is safe for
// concurrent use; the units it holds are only walked by the goroutine
// draining it.
type Queue struct {
	cond *sync.Cond

	pending [2]*list.List
	// requeue records the priority a running unit was enqueued with
	requeue map[*pythontype.AnalysisUnit]pythontype.Priority
	running *pythontype.AnalysisUnit
	stopped bool

	logger *kitelog.Logger
}

// NewQueue creates an empty queue
func NewQueue(logger *kitelog.Logger) *Queue {
	if logger == nil {
		logger = kitelog.Discard
	}
	return &Queue{
		cond:    sync.NewCond(&sync.Mutex{}),
		pending: [2]*list.List{list.New(), list.New()},
		requeue: make(map[*pythontype.AnalysisUnit]pythontype.Priority),
		logger:  logger,
	}
}

func index(p pythontype.Priority) int {
	if p == pythontype.LowPriority {
		return 1
	}
	return 0
}

// Enqueue implements pythontype.Enqueuer. Units already pending are left
// where they are; units that are running are run again once they finish.
func (q *Queue) Enqueue(u *pythontype.AnalysisUnit, p pythontype.Priority) {
	if u == nil || u.ForEval {
		return
	}
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	if q.stopped {
		return
	}
	if u.Status() == pythontype.Running {
		if prev, ok := q.requeue[u]; !ok || p < prev {
			q.requeue[u] = p
		}
	}
	if !u.MarkPending() {
		return
	}
	q.pending[index(p)].PushBack(u)
	q.cond.Broadcast()
}

// Len returns the number of pending units
func (q *Queue) Len() int {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	return q.pending[0].Len() + q.pending[1].Len()
}

// next blocks until a unit is ready to run and marks it running. It returns
// nil once the queue is stopped. Units of old module versions are dropped
// without running.
func (q *Queue) next() *pythontype.AnalysisUnit {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	for {
		if q.stopped {
			return nil
		}
		u := q.popLocked()
		if u == nil {
			q.cond.Wait()
			continue
		}
		if u.Stale() {
			q.logger.Debug("dropping stale unit", zap.Stringer("unit", u))
			u.Drop()
			q.cond.Broadcast()
			continue
		}
		if err := u.Begin(); err != nil {
			q.logger.Warn("cannot start unit", zap.Error(err))
			delete(q.requeue, u)
			u.Drop()
			q.cond.Broadcast()
			continue
		}
		q.running = u
		return u
	}
}

func (q *Queue) popLocked() *pythontype.AnalysisUnit {
	for _, l := range q.pending {
		if front := l.Front(); front != nil {
			return l.Remove(front).(*pythontype.AnalysisUnit)
		}
	}
	return nil
}

// done marks a unit returned by next as finished, queueing it again if it
// was enqueued while running
func (q *Queue) done(u *pythontype.AnalysisUnit) {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	if q.running == u {
		q.running = nil
	}
	p, wanted := q.requeue[u]
	delete(q.requeue, u)
	if u.End() {
		if q.stopped {
			u.Drop()
		} else {
			if !wanted {
				p = pythontype.NormalPriority
			}
			q.pending[index(p)].PushBack(u)
		}
	}
	q.cond.Broadcast()
}

// Stop drops every pending unit and wakes up the goroutines waiting on the
// queue. Units enqueued afterwards are ignored.
func (q *Queue) Stop() {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()

	q.stopped = true
	for _, l := range q.pending {
		for e := l.Front(); e != nil; e = e.Next() {
			e.Value.(*pythontype.AnalysisUnit).Drop()
		}
		l.Init()
	}
	q.cond.Broadcast()
}

// IsAnalyzing returns true while units are pending or running
func (q *Queue) IsAnalyzing() bool {
	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	return q.busyLocked()
}

func (q *Queue) busyLocked() bool {
	if q.stopped {
		return false
	}
	return q.running != nil || q.pending[0].Len() > 0 || q.pending[1].Len() > 0
}

// WaitForIdle blocks until no unit is pending or running, or until timeout
// elapses. It returns true if the queue became idle.
func (q *Queue) WaitForIdle(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	timer := time.AfterFunc(timeout, func() {
		q.cond.L.Lock()
		defer q.cond.L.Unlock()
		q.cond.Broadcast()
	})
	defer timer.Stop()

	q.cond.L.Lock()
	defer q.cond.L.Unlock()
	for q.busyLocked() {
		if !time.Now().Before(deadline) {
			return false
		}
		q.cond.Wait()
	}
	return true
}
