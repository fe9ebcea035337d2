// Package loop drives per-frame rendering: a next-frame scheduler, the
// on/off loop toggle and the one-shot readiness latch the loop waits on.
//
// Everything except Ready is single-goroutine: call it from the thread that
// owns the GL context.
package loop

import (
	"time"
)

// FrameID identifies a pending frame request. Zero is never issued.
type FrameID uint64

// FrameFunc runs once per requested frame with the frame timestamp.
type FrameFunc func(t time.Duration)

// Scheduler requests and cancels next-frame callbacks.
type Scheduler interface {
	RequestFrame(fn FrameFunc) FrameID
	CancelFrame(id FrameID)
}

type request struct {
	id FrameID
	fn FrameFunc
}

// Queue is a cooperative Scheduler pumped by the window loop. Callbacks
// requested while a frame runs are deferred to the next RunFrame.
type Queue struct {
	nextID  FrameID
	pending []request
	// running is the batch RunFrame is working through; cancelled holds
	// ids from it that must no longer run.
	running   []request
	cancelled map[FrameID]bool
	start     time.Time
	now       func() time.Time
}

var _ Scheduler = (*Queue)(nil)

// NewQueue returns an empty queue. Frame timestamps count from this call.
func NewQueue() *Queue {
	q := &Queue{now: time.Now}
	q.start = q.now()
	return q
}

// RequestFrame schedules fn for the next RunFrame.
func (q *Queue) RequestFrame(fn FrameFunc) FrameID {
	q.nextID++
	q.pending = append(q.pending, request{id: q.nextID, fn: fn})
	return q.nextID
}

// CancelFrame drops a pending request. A request in the frame currently
// running is skipped if it has not run yet. Unknown or already run ids are
// ignored.
func (q *Queue) CancelFrame(id FrameID) {
	for i, r := range q.pending {
		if r.id == id {
			q.pending = append(q.pending[:i], q.pending[i+1:]...)
			return
		}
	}
	for _, r := range q.running {
		if r.id == id {
			if q.cancelled == nil {
				q.cancelled = make(map[FrameID]bool)
			}
			q.cancelled[id] = true
			return
		}
	}
}

// Pending reports the number of requests waiting for the next frame.
func (q *Queue) Pending() int {
	return len(q.pending)
}

// RunFrame runs every callback pending at entry, in request order, and
// reports how many ran. Callbacks cancelled by an earlier callback of the
// same frame are skipped.
func (q *Queue) RunFrame() int {
	q.running = q.pending
	q.pending = nil
	defer func() {
		q.running = nil
		q.cancelled = nil
	}()

	t := q.now().Sub(q.start)
	ran := 0
	for _, r := range q.running {
		if q.cancelled[r.id] {
			continue
		}
		r.fn(t)
		ran++
	}
	return ran
}
