// Package input turns SDL2 events into the viewer's commands and camera
// gestures.
package input

import (
	"github.com/veandco/go-sdl2/sdl"
)

// Command is a discrete viewer action bound to a key or a click.
type Command int

const (
	CmdNone Command = iota
	CmdQuit
	CmdToggleProjection
	CmdNextField
	CmdNextColorTable
	CmdToggleRiggingLines
	CmdTogglePolarVectors
	CmdToggleAutoRange
	CmdNextFace
	CmdClearSelection
	CmdResetView
	CmdSnapshot
	CmdSelect
)

var commandNames = map[Command]string{
	CmdQuit:               "quit",
	CmdToggleProjection:   "toggle-projection",
	CmdNextField:          "next-field",
	CmdNextColorTable:     "next-color-table",
	CmdToggleRiggingLines: "toggle-rigging-lines",
	CmdTogglePolarVectors: "toggle-polar-vectors",
	CmdToggleAutoRange:    "toggle-auto-range",
	CmdNextFace:           "next-face",
	CmdClearSelection:     "clear-selection",
	CmdResetView:          "reset-view",
	CmdSnapshot:           "snapshot",
	CmdSelect:             "select",
}

func (c Command) String() string {
	if s, ok := commandNames[c]; ok {
		return s
	}
	return "none"
}

// DefaultBindings maps keys to commands.
var DefaultBindings = map[sdl.Keycode]Command{
	sdl.K_ESCAPE: CmdQuit,
	sdl.K_q:      CmdQuit,
	sdl.K_m:      CmdToggleProjection,
	sdl.K_f:      CmdNextField,
	sdl.K_c:      CmdNextColorTable,
	sdl.K_r:      CmdToggleRiggingLines,
	sdl.K_v:      CmdTogglePolarVectors,
	sdl.K_a:      CmdToggleAutoRange,
	sdl.K_TAB:    CmdNextFace,
	sdl.K_x:      CmdClearSelection,
	sdl.K_HOME:   CmdResetView,
	sdl.K_F12:    CmdSnapshot,
}

// Event is one command with the cursor position it was issued at.
type Event struct {
	Command Command
	X, Y    int
}

// Frame collects everything that happened since the last Update.
type Frame struct {
	Events []Event
	// DragX, DragY accumulate left-button motion in screen coordinates.
	DragX, DragY float32
	// Zoom accumulates wheel steps, positive away from the user.
	Zoom float32
	// Resized is set when the window size changed.
	Resized bool
}

// clickSlop is the motion in pixels under which a press-release pair counts
// as a click rather than a drag.
const clickSlop = 4

// Input handles all input processing.
type Input struct {
	bindings map[sdl.Keycode]Command
	frame    Frame

	pressed        bool
	pressX, pressY int
	moved          int
}

// New creates an input handler with the given key bindings, or
// DefaultBindings when nil.
func New(bindings map[sdl.Keycode]Command) *Input {
	if bindings == nil {
		bindings = DefaultBindings
	}
	return &Input{
		bindings: bindings,
		frame:    Frame{Events: make([]Event, 0, 8)},
	}
}

// Update polls SDL events. It returns false once the window was asked to
// close.
func (i *Input) Update() bool {
	i.frame.Events = i.frame.Events[:0]
	i.frame.DragX, i.frame.DragY, i.frame.Zoom = 0, 0, 0
	i.frame.Resized = false

	running := true
	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		if !i.handle(event) {
			running = false
		}
	}
	return running
}

func (i *Input) handle(event sdl.Event) bool {
	switch e := event.(type) {
	case *sdl.QuitEvent:
		i.push(CmdQuit, 0, 0)
		return false

	case *sdl.WindowEvent:
		if e.Event == sdl.WINDOWEVENT_RESIZED || e.Event == sdl.WINDOWEVENT_SIZE_CHANGED {
			i.frame.Resized = true
		}

	case *sdl.KeyboardEvent:
		if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
			if cmd, ok := i.bindings[e.Keysym.Sym]; ok {
				i.push(cmd, 0, 0)
			}
		}

	case *sdl.MouseMotionEvent:
		if i.pressed {
			i.frame.DragX += float32(e.XRel)
			i.frame.DragY += float32(e.YRel)
			i.moved += abs(int(e.XRel)) + abs(int(e.YRel))
		}

	case *sdl.MouseButtonEvent:
		if e.Button != sdl.BUTTON_LEFT {
			break
		}
		if e.Type == sdl.MOUSEBUTTONDOWN {
			i.pressed = true
			i.pressX, i.pressY = int(e.X), int(e.Y)
			i.moved = 0
		} else if e.Type == sdl.MOUSEBUTTONUP && i.pressed {
			i.pressed = false
			if i.moved < clickSlop {
				i.push(CmdSelect, i.pressX, i.pressY)
			}
		}

	case *sdl.MouseWheelEvent:
		dy := float32(e.Y)
		if e.Direction == sdl.MOUSEWHEEL_FLIPPED {
			dy = -dy
		}
		i.frame.Zoom += dy
	}
	return true
}

func (i *Input) push(cmd Command, x, y int) {
	i.frame.Events = append(i.frame.Events, Event{Command: cmd, X: x, Y: y})
}

// Frame returns what was collected by the last Update.
func (i *Input) Frame() *Frame {
	return &i.frame
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
