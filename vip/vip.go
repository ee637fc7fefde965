// Package vip implements the machine a CHIP-8 program runs on: the step
// cadence, keypad, display, buzzer, and the frontends that present them.
package vip

import (
	"fmt"
	"log"
	"time"

	"github.com/nf/c8/chip8"
)

// Frontend selects how the display and keypad are presented.
type Frontend int

const (
	Headless Frontend = iota
	Shiny
	Ebiten
	Terminal
)

var frontendNames = map[string]Frontend{
	"none":   Headless,
	"shiny":  Shiny,
	"ebiten": Ebiten,
	"term":   Terminal,
}

func ParseFrontend(s string) (Frontend, error) {
	if f, ok := frontendNames[s]; ok {
		return f, nil
	}
	return 0, fmt.Errorf("unknown frontend %q (want shiny, ebiten, term or none)", s)
}

func (f Frontend) String() string {
	for s, v := range frontendNames {
		if v == f {
			return s
		}
	}
	return fmt.Sprintf("Frontend(%d)", int(f))
}

// StateKind describes why a StateFunc was called.
type StateKind int

const (
	ClearState StateKind = iota // execution resumed
	QuietState                  // a normal step completed
	BreakState                  // stopped at a breakpoint
	PauseState                  // paused, or single-stepped while paused
	HaltState                   // stopped by an error
)

// StateFunc receives a copy of the machine after changes of state.
// It is called from the goroutine that runs the machine.
type StateFunc func(m *chip8.Machine, k StateKind)

type Options struct {
	Frontend Frontend
	Hz       int // steps per second
	Scale    int // window pixels per CHIP-8 pixel
	Quirks   chip8.Quirks
	Theme    Theme
	Dev      bool // keep running after errors, allow Swap
	State    StateFunc
}

// DefaultHz is the traditional step rate, which is also the timer rate.
const DefaultHz = 60

// System is a CHIP-8 machine together with its devices.
type System struct {
	Keypad  Keypad
	Display Display
	Buzzer  Buzzer

	m *chip8.Machine
}

// NewSystem returns a System running rom.
func NewSystem(rom []byte, q chip8.Quirks) (*System, error) {
	s := &System{m: chip8.NewMachine(q)}
	s.Display.Theme = DefaultTheme
	s.Buzzer.init()
	if err := s.Load(rom); err != nil {
		return nil, err
	}
	return s, nil
}

// Load resets the machine and loads rom.
func (s *System) Load(rom []byte) error {
	s.m.Reset()
	s.Keypad.Reset()
	if err := s.m.LoadProgram(rom); err != nil {
		return err
	}
	s.present()
	return nil
}

// Step presents the keypad to the machine, executes one step, and
// forwards its effects to the display and buzzer.
func (s *System) Step() (chip8.Effects, error) {
	s.m.Keys = s.Keypad.state()
	fx, err := s.m.Step()
	if err != nil {
		return fx, err
	}
	s.present()
	s.Buzzer.update(fx)
	return fx, nil
}

// present publishes the screen if it changed.
func (s *System) present() {
	if s.m.Redraw {
		s.Display.publish(&s.m.Screen)
		s.m.Redraw = false
	}
}

// Snapshot returns a copy of the machine.
func (s *System) Snapshot() chip8.Machine { return *s.m }

// Runner drives a System at a fixed rate and presents it with a frontend.
type Runner struct {
	opts Options

	swap  chan []byte
	debug chan debugCmd
	done  chan bool
}

type debugCmd struct {
	cmd  string
	addr uint16
}

func NewRunner(opts Options) *Runner {
	if opts.Hz <= 0 {
		opts.Hz = DefaultHz
	}
	if opts.Scale <= 0 {
		opts.Scale = 10
	}
	if opts.Theme == (Theme{}) {
		opts.Theme = DefaultTheme
	}
	return &Runner{
		opts:  opts,
		swap:  make(chan []byte),
		debug: make(chan debugCmd),
		done:  make(chan bool),
	}
}

// Swap resets the machine and replaces its program with rom.
// It may only be called in dev mode, while Run is running.
func (r *Runner) Swap(rom []byte) {
	if !r.opts.Dev {
		panic("Swap called while not running in dev mode")
	}
	select {
	case r.swap <- rom:
	case <-r.done:
	}
}

// Debug sends a debugger command to the running machine. The commands are
//
//	pause   stop stepping
//	cont    resume stepping
//	step    execute one instruction while paused (or pause)
//	break   pause before executing the instruction at addr
//	clear   remove the breakpoint
//	exit    stop the machine
func (r *Runner) Debug(cmd string, addr uint16) {
	select {
	case r.debug <- debugCmd{cmd, addr}:
	case <-r.done:
	}
}

// Run runs rom until the frontend exits, the debugger sends exit, or (when
// not in dev mode) the machine fails. It returns the machine's error, if
// any.
func (r *Runner) Run(rom []byte) error {
	s, err := NewSystem(rom, r.opts.Quirks)
	if err != nil {
		return err
	}
	s.Display.Theme = r.opts.Theme

	var (
		exit    = make(chan bool)
		execErr = make(chan error, 1)
	)
	go func() {
		execErr <- r.exec(s)
		close(exit)
	}()

	var frontErr error
	if f := r.frontend(s); f != nil {
		// Frontends drive the GUI on the calling goroutine
		// until exit is closed or the user quits.
		frontErr = f.Run(exit)
	} else {
		<-exit
	}
	close(r.done)
	if err := <-execErr; err != nil {
		return err
	}
	return frontErr
}

type frontend interface {
	Run(exit <-chan bool) error
}

func (r *Runner) frontend(s *System) frontend {
	switch r.opts.Frontend {
	case Shiny:
		return newGUI(s, r.opts.Scale)
	case Ebiten:
		return newEbitenGUI(s, r.opts.Scale)
	case Terminal:
		return newTerm(s)
	default:
		return nil
	}
}

// exec steps s at the configured rate until done is closed, the debugger
// sends exit, or the machine fails outside dev mode.
func (r *Runner) exec(s *System) error {
	t := time.NewTicker(time.Second / time.Duration(r.opts.Hz))
	defer t.Stop()

	var (
		paused bool
		halted bool
		resume bool // step once without checking the breakpoint
		brk    = -1
	)
	state := func(k StateKind) {
		if r.opts.State != nil {
			m := s.Snapshot()
			r.opts.State(&m, k)
		}
	}
	step := func(k StateKind) error {
		if _, err := s.Step(); err != nil {
			halted = true
			state(HaltState)
			if !r.opts.Dev {
				return err
			}
			log.Printf("chip8: %v", err)
			return nil
		}
		state(k)
		return nil
	}

	for {
		select {
		case <-r.done:
			return nil

		case rom := <-r.swap:
			if err := s.Load(rom); err != nil {
				log.Printf("chip8: %v", err)
				halted = true
				state(HaltState)
				break
			}
			halted, resume = false, false
			if paused {
				state(PauseState)
			} else {
				state(ClearState)
			}

		case c := <-r.debug:
			switch c.cmd {
			case "exit":
				return nil
			case "pause":
				paused = true
				state(PauseState)
			case "cont":
				if paused {
					paused, resume = false, true
					state(ClearState)
				}
			case "step":
				if !paused {
					paused = true
					state(PauseState)
					break
				}
				if !halted {
					if err := step(PauseState); err != nil {
						return err
					}
				}
			case "break":
				brk = int(c.addr)
			case "clear":
				brk = -1
			default:
				log.Printf("unknown debug command %q", c.cmd)
			}

		case <-t.C:
			if paused || halted {
				break
			}
			if brk >= 0 && int(s.m.PC) == brk && !resume {
				paused = true
				state(BreakState)
				break
			}
			resume = false
			if err := step(QuietState); err != nil {
				return err
			}
		}
	}
}
