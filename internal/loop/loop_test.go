package loop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// countingScheduler wraps a Queue and counts requests and cancels.
type countingScheduler struct {
	*Queue
	requests int
	cancels  int
}

func (c *countingScheduler) RequestFrame(fn FrameFunc) FrameID {
	c.requests++
	return c.Queue.RequestFrame(fn)
}

func (c *countingScheduler) CancelFrame(id FrameID) {
	c.cancels++
	c.Queue.CancelFrame(id)
}

func TestQueueDefersNestedRequests(t *testing.T) {
	q := NewQueue()
	var order []string

	q.RequestFrame(func(time.Duration) {
		order = append(order, "a")
		q.RequestFrame(func(time.Duration) { order = append(order, "nested") })
	})
	q.RequestFrame(func(time.Duration) { order = append(order, "b") })

	if ran := q.RunFrame(); ran != 2 {
		t.Errorf("first frame ran %d callbacks, want 2", ran)
	}
	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("order = %v, want [a b]", order)
	}
	if q.Pending() != 1 {
		t.Errorf("pending = %d, want nested request queued", q.Pending())
	}

	q.RunFrame()
	if len(order) != 3 || order[2] != "nested" {
		t.Errorf("order = %v, want nested on second frame", order)
	}
}

func TestQueueCancel(t *testing.T) {
	q := NewQueue()
	ran := false
	id := q.RequestFrame(func(time.Duration) { ran = true })
	q.CancelFrame(id)
	q.CancelFrame(id)
	q.CancelFrame(9999)

	if q.RunFrame() != 0 || ran {
		t.Error("cancelled callback ran")
	}
}

func TestQueueCancelWithinFrame(t *testing.T) {
	q := NewQueue()
	ran := false
	var later FrameID
	q.RequestFrame(func(time.Duration) { q.CancelFrame(later) })
	later = q.RequestFrame(func(time.Duration) { ran = true })

	if n := q.RunFrame(); n != 1 {
		t.Errorf("ran %d callbacks, want 1", n)
	}
	if ran {
		t.Error("callback cancelled earlier in the frame still ran")
	}
	if q.Pending() != 0 {
		t.Errorf("pending = %d, want 0", q.Pending())
	}
}

func TestQueueTimestamps(t *testing.T) {
	q := NewQueue()
	base := q.start
	q.now = func() time.Time { return base.Add(16 * time.Millisecond) }

	var got time.Duration
	q.RequestFrame(func(ts time.Duration) { got = ts })
	q.RunFrame()
	if got != 16*time.Millisecond {
		t.Errorf("timestamp = %v, want 16ms", got)
	}
}

func TestToggleStartIsIdempotent(t *testing.T) {
	s := &countingScheduler{Queue: NewQueue()}
	frames := 0
	tg := NewToggle(s, func(time.Duration) { frames++ })

	tg.Start()
	tg.Start()
	if s.requests != 1 || s.Pending() != 1 {
		t.Fatalf("requests = %d pending = %d, want one outstanding request", s.requests, s.Pending())
	}

	for i := 0; i < 3; i++ {
		s.RunFrame()
	}
	if frames != 3 {
		t.Errorf("frames = %d, want 3", frames)
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want exactly one while running", s.Pending())
	}
}

func TestToggleStartStopStart(t *testing.T) {
	s := &countingScheduler{Queue: NewQueue()}
	tg := NewToggle(s, func(time.Duration) {})

	tg.Start()
	before := s.requests
	tg.Stop()
	tg.Start()

	if got := s.requests - before; got != 1 {
		t.Errorf("fresh requests = %d, want 1", got)
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want 1", s.Pending())
	}
}

func TestToggleFlip(t *testing.T) {
	s := &countingScheduler{Queue: NewQueue()}
	tg := NewToggle(s, func(time.Duration) {})

	if !tg.Toggle() || !tg.Running() {
		t.Fatal("first toggle should start")
	}
	if tg.Toggle() || tg.Running() {
		t.Fatal("second toggle should stop")
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d after stop, want 0", s.Pending())
	}
	if s.requests != 1 || s.cancels != 1 {
		t.Errorf("requests/cancels = %d/%d, want 1/1", s.requests, s.cancels)
	}
}

func TestToggleStopBeforeFirstFrame(t *testing.T) {
	s := &countingScheduler{Queue: NewQueue()}
	frames := 0
	tg := NewToggle(s, func(time.Duration) { frames++ })

	tg.Stop()
	if s.cancels != 0 {
		t.Error("stopping a stopped loop should not cancel")
	}

	tg.Start()
	tg.Stop()
	s.RunFrame()
	if frames != 0 {
		t.Errorf("frames = %d, want 0", frames)
	}
}

func TestToggleStopFromRender(t *testing.T) {
	s := &countingScheduler{Queue: NewQueue()}
	var tg *Toggle
	frames := 0
	tg = NewToggle(s, func(time.Duration) {
		frames++
		tg.Stop()
	})

	tg.Start()
	s.RunFrame()
	s.RunFrame()

	if frames != 1 {
		t.Errorf("frames = %d, want 1", frames)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d, want 0", s.Pending())
	}
}

func TestToggleStopFromOtherCallback(t *testing.T) {
	s := &countingScheduler{Queue: NewQueue()}
	frames := 0
	tg := NewToggle(s, func(time.Duration) { frames++ })

	s.RequestFrame(func(time.Duration) { tg.Stop() })
	tg.Start()
	for i := 0; i < 3; i++ {
		s.RunFrame()
	}

	if tg.Running() {
		t.Fatal("loop reports running after stop")
	}
	if frames != 0 {
		t.Errorf("frames = %d after stop, want 0", frames)
	}
	if s.Pending() != 0 {
		t.Errorf("pending = %d, want 0", s.Pending())
	}
}

func TestToggleRestartWithinFrame(t *testing.T) {
	s := &countingScheduler{Queue: NewQueue()}
	frames := 0
	tg := NewToggle(s, func(time.Duration) { frames++ })

	s.RequestFrame(func(time.Duration) {
		tg.Stop()
		tg.Start()
	})
	tg.Start()

	s.RunFrame()
	if frames != 0 || s.Pending() != 1 {
		t.Fatalf("frames = %d pending = %d, want 0 and 1", frames, s.Pending())
	}
	for i := 0; i < 3; i++ {
		s.RunFrame()
	}
	if frames != 3 {
		t.Errorf("frames = %d, want one per frame", frames)
	}
	if s.Pending() != 1 {
		t.Errorf("pending = %d, want a single chain", s.Pending())
	}
}

func TestReady(t *testing.T) {
	var r Ready
	if r.Fired() {
		t.Fatal("zero Ready reports fired")
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-r.Done()
		}()
	}

	r.Fire()
	r.Fire()
	wg.Wait()

	if !r.Fired() {
		t.Error("Ready not fired after Fire")
	}
}

func TestWaitReady(t *testing.T) {
	var r Ready
	go r.Fire()
	if err := WaitReady(context.Background(), r.Done()); err != nil {
		t.Errorf("WaitReady = %v, want nil", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	never := make(chan struct{})
	if err := WaitReady(ctx, never); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitReady = %v, want deadline exceeded", err)
	}
}
