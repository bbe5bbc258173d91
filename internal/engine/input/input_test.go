package input

import (
	"testing"

	"github.com/veandco/go-sdl2/sdl"
)

func feed(i *Input, events ...sdl.Event) {
	i.frame.Events = i.frame.Events[:0]
	i.frame.DragX, i.frame.DragY, i.frame.Zoom = 0, 0, 0
	for _, e := range events {
		i.handle(e)
	}
}

func TestKeyBindings(t *testing.T) {
	tests := []struct {
		key  sdl.Keycode
		want Command
	}{
		{sdl.K_m, CmdToggleProjection},
		{sdl.K_f, CmdNextField},
		{sdl.K_F12, CmdSnapshot},
		{sdl.K_ESCAPE, CmdQuit},
	}

	in := New(nil)
	for _, tt := range tests {
		feed(in, &sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: tt.key}})
		if got := in.Frame().Events; len(got) != 1 || got[0].Command != tt.want {
			t.Errorf("key %d: events = %v, want %s", tt.key, got, tt.want)
		}
	}

	// Auto-repeat and unbound keys are ignored.
	feed(in,
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Repeat: 1, Keysym: sdl.Keysym{Sym: sdl.K_m}},
		&sdl.KeyboardEvent{Type: sdl.KEYDOWN, Keysym: sdl.Keysym{Sym: sdl.K_z}},
	)
	if n := len(in.Frame().Events); n != 0 {
		t.Errorf("got %d events, want 0", n)
	}
}

func TestClickSelects(t *testing.T) {
	in := New(nil)
	feed(in,
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, X: 120, Y: 80},
		&sdl.MouseMotionEvent{XRel: 1, YRel: 1},
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT, X: 121, Y: 81},
	)
	got := in.Frame().Events
	if len(got) != 1 || got[0].Command != CmdSelect || got[0].X != 120 || got[0].Y != 80 {
		t.Errorf("events = %v, want select at (120, 80)", got)
	}
}

func TestDragDoesNotSelect(t *testing.T) {
	in := New(nil)
	feed(in,
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONDOWN, Button: sdl.BUTTON_LEFT, X: 10, Y: 10},
		&sdl.MouseMotionEvent{XRel: 30, YRel: -5},
		&sdl.MouseMotionEvent{XRel: 10, YRel: 0},
		&sdl.MouseButtonEvent{Type: sdl.MOUSEBUTTONUP, Button: sdl.BUTTON_LEFT, X: 50, Y: 5},
	)
	f := in.Frame()
	if len(f.Events) != 0 {
		t.Errorf("events = %v, want none", f.Events)
	}
	if f.DragX != 40 || f.DragY != -5 {
		t.Errorf("drag = (%f, %f), want (40, -5)", f.DragX, f.DragY)
	}
}

func TestWheel(t *testing.T) {
	in := New(nil)
	feed(in,
		&sdl.MouseWheelEvent{Y: 2},
		&sdl.MouseWheelEvent{Y: 1, Direction: sdl.MOUSEWHEEL_FLIPPED},
	)
	if z := in.Frame().Zoom; z != 1 {
		t.Errorf("Zoom = %f, want 1", z)
	}
}

func TestQuitStopsRunning(t *testing.T) {
	in := New(nil)
	if in.handle(&sdl.QuitEvent{}) {
		t.Error("handle(QuitEvent) should report false")
	}
	if got := in.Frame().Events; len(got) != 1 || got[0].Command != CmdQuit {
		t.Errorf("events = %v", got)
	}
}

func TestCommandString(t *testing.T) {
	if CmdSnapshot.String() != "snapshot" || CmdNone.String() != "none" {
		t.Errorf("unexpected names %q %q", CmdSnapshot, CmdNone)
	}
}
