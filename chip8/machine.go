// Package chip8 provides an implementation of a CHIP-8 interpreter, called
// Machine, that can be used to execute CHIP-8 programs.
package chip8

import (
	"fmt"
	"math/rand"
)

const (
	MemSize        = 0x1000
	ProgramAddr    = 0x200
	MaxProgramSize = MemSize - ProgramAddr
	StackSize      = 16
	NumKeys        = 16

	Width  = 64
	Height = 32
)

// Framebuffer holds the display, one byte per pixel: 1 is lit, 0 is unlit.
type Framebuffer [Height][Width]byte

// Machine is an implementation of a CHIP-8 interpreter.
//
// A Machine is not safe for concurrent use; callers that share one between
// goroutines must serialize calls to Step and any access to its fields.
type Machine struct {
	Mem    [MemSize]byte
	V      [16]byte
	I      uint16
	PC     uint16
	Stack  [StackSize]uint16
	SP     byte
	Delay  byte
	Sound  byte
	Screen Framebuffer
	Keys   [NumKeys]bool

	// Redraw is set whenever Screen changes.
	// It is cleared by the display after it has consumed Screen.
	Redraw bool
	// Blocked is set while the machine waits in FX0A for a key press.
	Blocked bool

	Quirks Quirks
	// Rand returns a uniformly distributed random byte for CXNN.
	// If nil, math/rand is used.
	Rand func() byte
}

// NewMachine returns a reset Machine with the given quirks.
func NewMachine(q Quirks) *Machine {
	m := &Machine{Quirks: q}
	m.Reset()
	return m
}

// Reset clears all machine state, loads the font, and points PC at
// ProgramAddr. Quirks and Rand are preserved.
func (m *Machine) Reset() {
	*m = Machine{
		PC:     ProgramAddr,
		Redraw: true,
		Quirks: m.Quirks,
		Rand:   m.Rand,
	}
	copy(m.Mem[FontAddr:], font[:])
}

// LoadProgram copies rom into memory at ProgramAddr.
// It returns an error wrapping ProgramTooLarge if rom does not fit.
func (m *Machine) LoadProgram(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return fmt.Errorf("%w: %d bytes, limit is %d", ProgramTooLarge, len(rom), MaxProgramSize)
	}
	copy(m.Mem[ProgramAddr:], rom)
	return nil
}

// Effects reports the externally visible results of a Step.
type Effects struct {
	Redraw  bool // Screen changed.
	Blocked bool // Waiting in FX0A for a key press.
	Tone    bool // Sound timer was running; a tone should be playing.
	Beep    bool // Sound timer ran out this step.
}

// Step executes the instruction at PC and then advances the timers.
// While the machine is blocked in FX0A, Step only checks for a key press.
//
// If the instruction cannot be executed Step returns an Error and the
// machine is left unchanged.
func (m *Machine) Step() (fx Effects, err error) {
	var (
		addr    = m.PC
		op      Op
		fetched bool
	)
	defer func() {
		if e := recover(); e != nil {
			if f, ok := e.(Fault); ok {
				fx = Effects{Blocked: m.Blocked}
				err = Error{Fault: f, Op: op, Addr: addr, Fetch: !fetched}
			} else {
				panic(e)
			}
		}
	}()

	op = m.fetch()
	fetched = true
	fx = m.exec(op)
	if fx.Redraw {
		m.Redraw = true
	}
	fx.Blocked = m.Blocked
	fx.Tone, fx.Beep = m.tick()
	return fx, nil
}

func (m *Machine) fetch() Op {
	a := m.span(m.PC, 2)
	return Op(m.Mem[a])<<8 | Op(m.Mem[a+1])
}

// exec executes op. Faults are raised with panic before any state is
// modified.
func (m *Machine) exec(op Op) (fx Effects) {
	var (
		x, y   = op.X(), op.Y()
		vx, vy = m.V[x], m.V[y]
		next   = m.PC + 2
	)
	switch op.Kind() {
	case CLS:
		m.Screen = Framebuffer{}
		fx.Redraw = true
	case RET:
		if m.SP == 0 {
			panic(StackUnderflow)
		}
		m.SP--
		next = m.Stack[m.SP]
	case JP:
		next = op.NNN()
	case CALL:
		if m.SP == StackSize {
			panic(StackOverflow)
		}
		m.Stack[m.SP] = next
		m.SP++
		next = op.NNN()
	case SE:
		if vx == op.NN() {
			next += 2
		}
	case SNE:
		if vx != op.NN() {
			next += 2
		}
	case SER:
		if vx == vy {
			next += 2
		}
	case SNER:
		if vx != vy {
			next += 2
		}
	case LD:
		m.V[x] = op.NN()
	case ADD:
		m.V[x] = vx + op.NN()
	case LDR:
		m.V[x] = vy
	case OR:
		m.logic(x, vx|vy)
	case AND:
		m.logic(x, vx&vy)
	case XOR:
		m.logic(x, vx^vy)
	case ADDR:
		sum := uint16(vx) + uint16(vy)
		m.setWithFlag(x, byte(sum), sum > 0xff)
	case SUB:
		m.setWithFlag(x, vx-vy, vx >= vy)
	case SUBN:
		m.setWithFlag(x, vy-vx, vy >= vx)
	case SHR:
		v := m.shiftSource(vx, vy)
		m.setWithFlag(x, v>>1, v&0x01 != 0)
	case SHL:
		v := m.shiftSource(vx, vy)
		m.setWithFlag(x, v<<1, v&0x80 != 0)
	case LDI:
		m.I = op.NNN()
	case JPV:
		base := m.V[0]
		if m.Quirks.JumpVX {
			base = vx
		}
		next = uint16(base) + op.NNN()
	case RND:
		m.V[x] = m.random() & op.NN()
	case DRW:
		m.draw(vx, vy, op.N())
		fx.Redraw = true
	case SKP:
		if m.Keys[vx&0xf] {
			next += 2
		}
	case SKNP:
		if !m.Keys[vx&0xf] {
			next += 2
		}
	case LDVDT:
		m.V[x] = m.Delay
	case LDK:
		k, ok := m.pressed()
		if !ok {
			m.Blocked = true
			next = m.PC
			break
		}
		m.Blocked = false
		m.V[x] = k
	case LDDT:
		m.Delay = vx
	case LDST:
		m.Sound = vx
	case ADDI:
		m.I = (m.I + uint16(vx)) % MemSize
	case LDF:
		m.I = FontAddr + uint16(vx&0xf)*glyphSize
	case LDB:
		a := m.span(m.I, 3)
		m.Mem[a] = vx / 100
		m.Mem[a+1] = vx / 10 % 10
		m.Mem[a+2] = vx % 10
	case STM:
		a := m.span(m.I, int(x)+1)
		copy(m.Mem[a:], m.V[:x+1])
		m.advanceI(x)
	case LDM:
		a := m.span(m.I, int(x)+1)
		copy(m.V[:x+1], m.Mem[a:])
		m.advanceI(x)
	default:
		panic(UnknownOpcode)
	}
	m.PC = next
	return fx
}

// setWithFlag writes flag to VF and then v to VX, so that when X is F
// the result wins.
func (m *Machine) setWithFlag(x, v byte, flag bool) {
	if flag {
		m.V[0xf] = 1
	} else {
		m.V[0xf] = 0
	}
	m.V[x] = v
}

func (m *Machine) logic(x, v byte) {
	if m.Quirks.ResetVF {
		m.V[0xf] = 0
	}
	m.V[x] = v
}

func (m *Machine) shiftSource(vx, vy byte) byte {
	if m.Quirks.ShiftVY {
		return vy
	}
	return vx
}

func (m *Machine) advanceI(x byte) {
	if m.Quirks.LoadStoreI {
		m.I = (m.I + uint16(x) + 1) % MemSize
	}
}

// draw XORs the n-row sprite at I onto the screen at (x0, y0) and sets VF
// if any lit pixel was turned off.
func (m *Machine) draw(x0, y0, n byte) {
	var (
		sprite = m.span(m.I, int(n))
		clip   = m.Quirks.ClipSprites
	)
	x0 %= Width
	y0 %= Height
	m.V[0xf] = 0
	for row := 0; row < int(n); row++ {
		y := int(y0) + row
		if y >= Height {
			if clip {
				break
			}
			y %= Height
		}
		bits := m.Mem[sprite+row]
		for col := 0; col < 8; col++ {
			if bits&(0x80>>col) == 0 {
				continue
			}
			x := int(x0) + col
			if x >= Width {
				if clip {
					break
				}
				x %= Width
			}
			px := &m.Screen[y][x]
			if *px == 1 {
				m.V[0xf] = 1
			}
			*px ^= 1
		}
	}
}

// pressed returns the lowest-numbered key that is down.
func (m *Machine) pressed() (byte, bool) {
	for k, down := range m.Keys {
		if down {
			return byte(k), true
		}
	}
	return 0, false
}

func (m *Machine) random() byte {
	if m.Rand != nil {
		return m.Rand()
	}
	return byte(rand.Uint32())
}

// tick decrements the delay and sound timers.
func (m *Machine) tick() (tone, beep bool) {
	if m.Delay > 0 {
		m.Delay--
	}
	if m.Sound > 0 {
		tone = true
		beep = m.Sound == 1
		m.Sound--
	}
	return tone, beep
}

// span checks that the n bytes starting at addr are addressable and
// returns addr as an index into Mem.
func (m *Machine) span(addr uint16, n int) int {
	if int(addr)+n > MemSize {
		panic(MemoryOutOfRange)
	}
	return int(addr)
}

// OpAt returns the instruction word at addr, or 0 if addr is out of range.
func (m *Machine) OpAt(addr uint16) Op {
	if int(addr)+1 >= MemSize {
		return 0
	}
	return Op(m.Mem[addr])<<8 | Op(m.Mem[addr+1])
}

// OpAddr returns the memory address the instruction at addr refers to,
// either as a branch target or through I, and reports whether it has one.
func (m *Machine) OpAddr(addr uint16) (uint16, bool) {
	switch op := m.OpAt(addr); op.Kind() {
	case JP, CALL, LDI:
		return op.NNN(), true
	case JPV:
		base := m.V[0]
		if m.Quirks.JumpVX {
			base = m.V[op.X()]
		}
		return uint16(base) + op.NNN(), true
	case RET:
		if m.SP == 0 {
			return 0, false
		}
		return m.Stack[m.SP-1], true
	case DRW, LDB, STM, LDM:
		return m.I, true
	}
	return 0, false
}
