package loop

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/mapgl/internal/logger"
)

// Toggle is an idempotent on/off switch around a self-rescheduling frame
// function. While running exactly one frame request is outstanding.
type Toggle struct {
	sched   Scheduler
	render  FrameFunc
	pending FrameID
	running bool
}

// NewToggle returns a stopped toggle that renders through sched.
func NewToggle(sched Scheduler, render FrameFunc) *Toggle {
	return &Toggle{sched: sched, render: render}
}

// Running reports whether the loop is started.
func (t *Toggle) Running() bool {
	return t.running
}

// Start begins the loop. Starting a running loop does nothing.
func (t *Toggle) Start() {
	if t.running {
		return
	}
	t.running = true
	t.pending = t.sched.RequestFrame(t.tick)
	logger.Debug("render loop started", zap.Uint64("frame", uint64(t.pending)))
}

// Stop cancels the pending frame. Stopping a stopped loop does nothing.
func (t *Toggle) Stop() {
	if !t.running {
		return
	}
	t.running = false
	t.sched.CancelFrame(t.pending)
	t.pending = 0
	logger.Debug("render loop stopped")
}

// Toggle flips between started and stopped and reports the new state.
func (t *Toggle) Toggle() bool {
	if t.running {
		t.Stop()
	} else {
		t.Start()
	}
	return t.running
}

// tick requests the next frame before rendering so a render that stops the
// loop cancels that request.
func (t *Toggle) tick(ts time.Duration) {
	if !t.running {
		return
	}
	t.pending = t.sched.RequestFrame(t.tick)
	t.render(ts)
}
