package vip

import (
	"errors"
	"testing"
	"time"

	"github.com/nf/c8/chip8"
)

func TestNewSystemTooLarge(t *testing.T) {
	_, err := NewSystem(make([]byte, chip8.MaxProgramSize+1), chip8.Quirks{})
	if !errors.Is(err, chip8.ProgramTooLarge) {
		t.Fatalf("got error %v, want %v", err, chip8.ProgramTooLarge)
	}
}

func TestSystemPresentsBlankScreen(t *testing.T) {
	s, err := NewSystem([]byte{0x60, 0x01}, chip8.Quirks{})
	if err != nil {
		t.Fatal(err)
	}
	fb, n := s.Display.Frame()
	if n != 1 || fb != (chip8.Framebuffer{}) {
		t.Fatalf("after load: frames = %d, blank = %v", n, fb == chip8.Framebuffer{})
	}
	if s.m.Redraw {
		t.Error("Redraw not cleared after presenting")
	}
	if _, err := s.Step(); err != nil {
		t.Fatal(err)
	}
	if _, n := s.Display.Frame(); n != 1 {
		t.Errorf("frames = %d after a step that does not draw, want 1", n)
	}
}

func TestSystemDraw(t *testing.T) {
	s, err := NewSystem([]byte{
		0xf0, 0x29, // LD F, V0
		0xd0, 0x05, // DRW V0, V0, 5
	}, chip8.Quirks{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatal(err)
		}
	}
	fb, n := s.Display.Frame()
	if n != 2 {
		t.Fatalf("frames = %d, want 2", n)
	}
	// The top row of the glyph for 0 is 0xF0.
	for x, want := range []byte{1, 1, 1, 1, 0} {
		if fb[0][x] != want {
			t.Errorf("pixel (%d, 0) = %d, want %d", x, fb[0][x], want)
		}
	}
}

func TestSystemKeypad(t *testing.T) {
	s, err := NewSystem([]byte{0xf0, 0x0a}, chip8.Quirks{}) // LD V0, K
	if err != nil {
		t.Fatal(err)
	}
	fx, err := s.Step()
	if err != nil {
		t.Fatal(err)
	}
	if !fx.Blocked {
		t.Fatal("not blocked with no key down")
	}
	s.Keypad.Tap(5)
	if fx, err = s.Step(); err != nil {
		t.Fatal(err)
	}
	if fx.Blocked || s.m.V[0] != 5 {
		t.Errorf("Blocked = %v, V0 = %d; want false, 5", fx.Blocked, s.m.V[0])
	}
}

func TestSystemBuzzer(t *testing.T) {
	s, err := NewSystem([]byte{
		0x60, 0x02, // LD V0, 2
		0xf0, 0x18, // LD ST, V0
		0x12, 0x04, // JP 204
	}, chip8.Quirks{})
	if err != nil {
		t.Fatal(err)
	}
	var tones []bool
	for i := 0; i < 4; i++ {
		if _, err := s.Step(); err != nil {
			t.Fatal(err)
		}
		tones = append(tones, s.Buzzer.Tone())
	}
	if want := []bool{false, true, true, false}; !equalBools(tones, want) {
		t.Errorf("tones = %v, want %v", tones, want)
	}
	select {
	case <-s.Buzzer.Beeps():
	default:
		t.Error("no beep")
	}
	if n := s.Buzzer.Count(); n != 1 {
		t.Errorf("beeps = %d, want 1", n)
	}
}

func equalBools(a, b []bool) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestParseFrontend(t *testing.T) {
	for _, name := range []string{"none", "shiny", "ebiten", "term"} {
		f, err := ParseFrontend(name)
		if err != nil {
			t.Fatal(err)
		}
		if f.String() != name {
			t.Errorf("ParseFrontend(%q).String() = %q", name, f)
		}
	}
	if _, err := ParseFrontend("sdl"); err == nil {
		t.Error("ParseFrontend(\"sdl\") succeeded")
	}
}

func TestRunnerError(t *testing.T) {
	r := NewRunner(Options{Hz: 1000})
	err := r.Run([]byte{0xff, 0xff})
	if !errors.Is(err, chip8.UnknownOpcode) {
		t.Fatalf("Run returned %v, want %v", err, chip8.UnknownOpcode)
	}
	var e chip8.Error
	if !errors.As(err, &e) || e.Addr != chip8.ProgramAddr {
		t.Errorf("Run returned %#v, want error at %.3x", err, chip8.ProgramAddr)
	}
}

type stateEvent struct {
	m chip8.Machine
	k StateKind
}

// runDev starts rom in a headless dev-mode runner and returns the runner,
// a channel of non-quiet state changes, and a channel that receives the
// result of Run.
func runDev(t *testing.T, rom []byte) (*Runner, <-chan stateEvent, <-chan error) {
	t.Helper()
	states := make(chan stateEvent, 16)
	r := NewRunner(Options{
		Hz:  1000,
		Dev: true,
		State: func(m *chip8.Machine, k StateKind) {
			if k != QuietState {
				states <- stateEvent{*m, k}
			}
		},
	})
	done := make(chan error, 1)
	go func() { done <- r.Run(rom) }()
	return r, states, done
}

func waitState(t *testing.T, states <-chan stateEvent, k StateKind) chip8.Machine {
	t.Helper()
	timeout := time.After(5 * time.Second)
	for {
		select {
		case s := <-states:
			if s.k == k {
				return s.m
			}
		case <-timeout:
			t.Fatalf("timed out waiting for state %d", k)
		}
	}
}

func TestRunnerBreakStep(t *testing.T) {
	r, states, done := runDev(t, []byte{
		0x60, 0x01, // 200: LD V0, 1
		0x70, 0x01, // 202: ADD V0, 1
		0x12, 0x02, // 204: JP 202
	})
	r.Debug("break", 0x204)
	m := waitState(t, states, BreakState)
	if m.PC != 0x204 {
		t.Fatalf("stopped at %.3x, want 204", m.PC)
	}
	v := m.V[0]

	r.Debug("step", 0)
	m = waitState(t, states, PauseState)
	if m.PC != 0x202 {
		t.Errorf("after step PC = %.3x, want 202", m.PC)
	}
	r.Debug("step", 0)
	m = waitState(t, states, PauseState)
	if m.PC != 0x204 || m.V[0] != v+1 {
		t.Errorf("after step PC = %.3x V0 = %d, want 204, %d", m.PC, m.V[0], v+1)
	}

	r.Debug("clear", 0)
	r.Debug("cont", 0)
	waitState(t, states, ClearState)

	r.Debug("exit", 0)
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}

func TestRunnerSwap(t *testing.T) {
	r, states, done := runDev(t, []byte{0xff, 0xff})
	m := waitState(t, states, HaltState)
	if m.PC != chip8.ProgramAddr {
		t.Errorf("halted at %.3x", m.PC)
	}

	r.Swap([]byte{0x62, 0x07, 0x12, 0x02})
	m = waitState(t, states, ClearState)
	if m.Mem[chip8.ProgramAddr] != 0x62 || m.PC != chip8.ProgramAddr {
		t.Errorf("after swap Mem[200] = %.2x, PC = %.3x", m.Mem[chip8.ProgramAddr], m.PC)
	}

	r.Debug("pause", 0)
	waitState(t, states, PauseState)
	r.Debug("step", 0)
	m = waitState(t, states, PauseState)
	if m.V[2] != 7 {
		t.Errorf("V2 = %d after running swapped program, want 7", m.V[2])
	}

	r.Debug("exit", 0)
	if err := <-done; err != nil {
		t.Fatalf("Run returned %v", err)
	}
}
