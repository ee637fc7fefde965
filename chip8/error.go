package chip8

import "fmt"

// Fault signifies the type of condition that stopped an instruction.
// Faults are errors and may be matched with errors.Is.
type Fault byte

const (
	MemoryOutOfRange Fault = 0x01
	StackOverflow    Fault = 0x02
	StackUnderflow   Fault = 0x03
	ProgramTooLarge  Fault = 0x04
	UnknownOpcode    Fault = 0x05
)

func (f Fault) Error() string { return f.String() }

func (f Fault) String() string {
	if s, ok := map[Fault]string{
		MemoryOutOfRange: "memory out of range",
		StackOverflow:    "stack overflow",
		StackUnderflow:   "stack underflow",
		ProgramTooLarge:  "program too large",
		UnknownOpcode:    "unknown opcode",
	}[f]; ok {
		return s
	}
	return fmt.Sprintf("unknown fault (%.2x)", byte(f))
}

// Error is returned by Step when the instruction at Addr cannot be executed.
// The machine is left as it was before the call.
type Error struct {
	Fault
	Op   Op
	Addr uint16
	// Fetch is set when the instruction word itself could not be read.
	// Op is then zero.
	Fetch bool
}

func (e Error) Error() string {
	if e.Fetch {
		return fmt.Sprintf("%s fetching instruction at %.3x", e.Fault, e.Addr)
	}
	return fmt.Sprintf("%s executing %.4x (%s) at %.3x", e.Fault, uint16(e.Op), e.Op, e.Addr)
}

func (e Error) Unwrap() error { return e.Fault }
