// Package input handles SDL2 input events.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// EventType classifies a processed input event.
type EventType int

const (
	EventNone EventType = iota
	EventQuit
	EventWindowResize
	EventKeyDown
	EventKeyUp
	EventMouseMove
	EventMouseDown
	EventMouseUp
	EventMouseWheel
)

// Mouse buttons as reported in Event.Button.
const (
	ButtonLeft   = sdl.BUTTON_LEFT
	ButtonMiddle = sdl.BUTTON_MIDDLE
	ButtonRight  = sdl.BUTTON_RIGHT
)

// Event represents a processed input event.
type Event struct {
	Type   EventType
	Key    sdl.Scancode
	Repeat bool
	Width  int
	Height int
	MouseX int
	MouseY int
	// Relative motion for EventMouseMove.
	DeltaX int
	DeltaY int
	// Scroll amount for EventMouseWheel; positive is away from the user.
	WheelY float64
	Button uint8
	Shift  bool
}

// Input handles all input processing.
type Input struct {
	events  []Event
	buttons map[uint8]bool
	keys    map[sdl.Scancode]bool
}

// New creates a new input handler.
func New() *Input {
	return &Input{
		events:  make([]Event, 0, 16),
		buttons: make(map[uint8]bool),
		keys:    make(map[sdl.Scancode]bool),
	}
}

// Update polls SDL events and converts them to map events.
// Returns true if the application should quit.
func (i *Input) Update() bool {
	i.events = i.events[:0]

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if i.translate(event) {
			return true
		}
	}

	return false
}

func (i *Input) translate(event sdl.Event) bool {
	shift := sdl.GetModState()&sdl.KMOD_SHIFT != 0

	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.events = append(i.events, Event{Type: EventQuit})
		return true

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.events = append(i.events, Event{
				Type:   EventWindowResize,
				Width:  int(e.Data1),
				Height: int(e.Data2),
			})
		}

	case *sdl.KeyboardEvent:
		sc := e.Keysym.Scancode
		if e.Type == sdl.KEYDOWN {
			i.keys[sc] = true
			i.events = append(i.events, Event{
				Type:   EventKeyDown,
				Key:    sc,
				Repeat: e.Repeat != 0,
				Shift:  shift,
			})
		} else if e.Type == sdl.KEYUP {
			delete(i.keys, sc)
			i.events = append(i.events, Event{
				Type:  EventKeyUp,
				Key:   sc,
				Shift: shift,
			})
		}

	case *sdl.MouseMotionEvent:
		i.events = append(i.events, Event{
			Type:   EventMouseMove,
			MouseX: int(e.X),
			MouseY: int(e.Y),
			DeltaX: int(e.XRel),
			DeltaY: int(e.YRel),
			Shift:  shift,
		})

	case *sdl.MouseButtonEvent:
		ev := Event{
			MouseX: int(e.X),
			MouseY: int(e.Y),
			Button: e.Button,
			Shift:  shift,
		}
		if e.Type == sdl.MOUSEBUTTONDOWN {
			i.buttons[e.Button] = true
			ev.Type = EventMouseDown
		} else {
			delete(i.buttons, e.Button)
			ev.Type = EventMouseUp
		}
		i.events = append(i.events, ev)

	case *sdl.MouseWheelEvent:
		y := float64(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			y = -y
		}
		i.events = append(i.events, Event{
			Type:   EventMouseWheel,
			WheelY: y,
			Shift:  shift,
		})
	}
	return false
}

// Events returns the events from the last Update.
func (i *Input) Events() []Event {
	return i.events
}

// IsKeyPressed checks if a specific key was pressed this frame.
func (i *Input) IsKeyPressed(scancode sdl.Scancode) bool {
	for _, e := range i.events {
		if e.Type == EventKeyDown && !e.Repeat && e.Key == scancode {
			return true
		}
	}
	return false
}

// IsKeyDown reports whether the key is currently held.
func (i *Input) IsKeyDown(scancode sdl.Scancode) bool {
	return i.keys[scancode]
}

// IsButtonDown reports whether the mouse button is currently held.
func (i *Input) IsButtonDown(button uint8) bool {
	return i.buttons[button]
}
