package chip8

import "fmt"

// Op is a raw 16-bit instruction word.
type Op uint16

// X returns the first register operand (0x0F00).
func (o Op) X() byte { return byte((o & 0x0f00) >> 8) }

// Y returns the second register operand (0x00F0).
func (o Op) Y() byte { return byte((o & 0x00f0) >> 4) }

// N returns the low nibble (0x000F).
func (o Op) N() byte { return byte(o & 0x000f) }

// NN returns the low byte (0x00FF).
func (o Op) NN() byte { return byte(o & 0x00ff) }

// NNN returns the 12-bit address or immediate (0x0FFF).
func (o Op) NNN() uint16 { return uint16(o & 0x0fff) }

// Kind identifies which instruction an Op encodes.
type Kind byte

const (
	Unknown Kind = iota
	CLS          // 00E0
	RET          // 00EE
	JP           // 1NNN
	CALL         // 2NNN
	SE           // 3XNN
	SNE          // 4XNN
	SER          // 5XY0
	LD           // 6XNN
	ADD          // 7XNN
	LDR          // 8XY0
	OR           // 8XY1
	AND          // 8XY2
	XOR          // 8XY3
	ADDR         // 8XY4
	SUB          // 8XY5
	SHR          // 8XY6
	SUBN         // 8XY7
	SHL          // 8XYE
	SNER         // 9XY0
	LDI          // ANNN
	JPV          // BNNN
	RND          // CXNN
	DRW          // DXYN
	SKP          // EX9E
	SKNP         // EXA1
	LDVDT        // FX07
	LDK          // FX0A
	LDDT         // FX15
	LDST         // FX18
	ADDI         // FX1E
	LDF          // FX29
	LDB          // FX33
	STM          // FX55
	LDM          // FX65

	numKinds
)

// Kind decodes o. It returns Unknown if o is not a valid instruction.
func (o Op) Kind() Kind {
	switch o & 0xf000 {
	case 0x0000:
		switch o {
		case 0x00e0:
			return CLS
		case 0x00ee:
			return RET
		}
	case 0x1000:
		return JP
	case 0x2000:
		return CALL
	case 0x3000:
		return SE
	case 0x4000:
		return SNE
	case 0x5000:
		if o.N() == 0 {
			return SER
		}
	case 0x6000:
		return LD
	case 0x7000:
		return ADD
	case 0x8000:
		switch o.N() {
		case 0x0:
			return LDR
		case 0x1:
			return OR
		case 0x2:
			return AND
		case 0x3:
			return XOR
		case 0x4:
			return ADDR
		case 0x5:
			return SUB
		case 0x6:
			return SHR
		case 0x7:
			return SUBN
		case 0xe:
			return SHL
		}
	case 0x9000:
		if o.N() == 0 {
			return SNER
		}
	case 0xa000:
		return LDI
	case 0xb000:
		return JPV
	case 0xc000:
		return RND
	case 0xd000:
		return DRW
	case 0xe000:
		switch o.NN() {
		case 0x9e:
			return SKP
		case 0xa1:
			return SKNP
		}
	case 0xf000:
		switch o.NN() {
		case 0x07:
			return LDVDT
		case 0x0a:
			return LDK
		case 0x15:
			return LDDT
		case 0x18:
			return LDST
		case 0x1e:
			return ADDI
		case 0x29:
			return LDF
		case 0x33:
			return LDB
		case 0x55:
			return STM
		case 0x65:
			return LDM
		}
	}
	return Unknown
}

var kindNames = [numKinds]string{
	Unknown: "DW",
	CLS:     "CLS",
	RET:     "RET",
	JP:      "JP",
	CALL:    "CALL",
	SE:      "SE",
	SNE:     "SNE",
	SER:     "SE",
	LD:      "LD",
	ADD:     "ADD",
	LDR:     "LD",
	OR:      "OR",
	AND:     "AND",
	XOR:     "XOR",
	ADDR:    "ADD",
	SUB:     "SUB",
	SHR:     "SHR",
	SUBN:    "SUBN",
	SHL:     "SHL",
	SNER:    "SNE",
	LDI:     "LD",
	JPV:     "JP",
	RND:     "RND",
	DRW:     "DRW",
	SKP:     "SKP",
	SKNP:    "SKNP",
	LDVDT:   "LD",
	LDK:     "LD",
	LDDT:    "LD",
	LDST:    "LD",
	ADDI:    "ADD",
	LDF:     "LD",
	LDB:     "LD",
	STM:     "LD",
	LDM:     "LD",
}

// String returns the mnemonic of the instruction kind.
func (k Kind) String() string {
	if k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", byte(k))
}

// String disassembles o using Cowgod's mnemonics.
func (o Op) String() string {
	var (
		k    = o.Kind()
		x, y = o.X(), o.Y()
	)
	switch k {
	case CLS, RET:
		return k.String()
	case JP, CALL:
		return fmt.Sprintf("%s 0x%.3X", k, o.NNN())
	case SE, SNE, LD, ADD, RND:
		return fmt.Sprintf("%s V%X, 0x%.2X", k, x, o.NN())
	case SER, LDR, OR, AND, XOR, ADDR, SUB, SHR, SUBN, SHL, SNER:
		return fmt.Sprintf("%s V%X, V%X", k, x, y)
	case LDI:
		return fmt.Sprintf("LD I, 0x%.3X", o.NNN())
	case JPV:
		return fmt.Sprintf("JP V0, 0x%.3X", o.NNN())
	case DRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", x, y, o.N())
	case SKP, SKNP:
		return fmt.Sprintf("%s V%X", k, x)
	case LDVDT:
		return fmt.Sprintf("LD V%X, DT", x)
	case LDK:
		return fmt.Sprintf("LD V%X, K", x)
	case LDDT:
		return fmt.Sprintf("LD DT, V%X", x)
	case LDST:
		return fmt.Sprintf("LD ST, V%X", x)
	case ADDI:
		return fmt.Sprintf("ADD I, V%X", x)
	case LDF:
		return fmt.Sprintf("LD F, V%X", x)
	case LDB:
		return fmt.Sprintf("LD B, V%X", x)
	case STM:
		return fmt.Sprintf("LD [I], V%X", x)
	case LDM:
		return fmt.Sprintf("LD V%X, [I]", x)
	default:
		return fmt.Sprintf("DW 0x%.4X", uint16(o))
	}
}
