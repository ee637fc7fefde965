package chip8

import (
	"strings"
	"testing"
)

func TestOpFields(t *testing.T) {
	op := Op(0xd4a7)
	if op.X() != 0x4 || op.Y() != 0xa || op.N() != 0x7 || op.NN() != 0xa7 || op.NNN() != 0x4a7 {
		t.Errorf("fields of %.4x: X=%x Y=%x N=%x NN=%.2x NNN=%.3x",
			uint16(op), op.X(), op.Y(), op.N(), op.NN(), op.NNN())
	}
}

func TestOpKind(t *testing.T) {
	for _, c := range []struct {
		op   Op
		kind Kind
	}{
		{0x00e0, CLS},
		{0x00ee, RET},
		{0x0000, Unknown},
		{0x00e1, Unknown},
		{0x1fff, JP},
		{0x2000, CALL},
		{0x3abc, SE},
		{0x4abc, SNE},
		{0x5ab0, SER},
		{0x5ab1, Unknown},
		{0x6abc, LD},
		{0x7abc, ADD},
		{0x8ab0, LDR},
		{0x8ab1, OR},
		{0x8ab2, AND},
		{0x8ab3, XOR},
		{0x8ab4, ADDR},
		{0x8ab5, SUB},
		{0x8ab6, SHR},
		{0x8ab7, SUBN},
		{0x8abe, SHL},
		{0x8ab9, Unknown},
		{0x9ab0, SNER},
		{0x9ab1, Unknown},
		{0xa123, LDI},
		{0xb123, JPV},
		{0xc123, RND},
		{0xd123, DRW},
		{0xe19e, SKP},
		{0xe1a1, SKNP},
		{0xe19f, Unknown},
		{0xf107, LDVDT},
		{0xf10a, LDK},
		{0xf115, LDDT},
		{0xf118, LDST},
		{0xf11e, ADDI},
		{0xf129, LDF},
		{0xf133, LDB},
		{0xf155, STM},
		{0xf165, LDM},
		{0xf166, Unknown},
		{0xffff, Unknown},
	} {
		if g := c.op.Kind(); g != c.kind {
			t.Errorf("Op(%.4x).Kind() = %v, want %v", uint16(c.op), g, c.kind)
		}
	}
}

// Check that every decodable word disassembles to its kind's mnemonic and
// that every other word disassembles as data.
func TestOpString(t *testing.T) {
	for w := 0; w <= 0xffff; w++ {
		op := Op(w)
		s := op.String()
		k := op.Kind()
		if k == Unknown {
			if !strings.HasPrefix(s, "DW 0x") {
				t.Fatalf("Op(%.4x).String() = %q, want DW", w, s)
			}
			continue
		}
		if !strings.HasPrefix(s, k.String()) {
			t.Fatalf("Op(%.4x).String() = %q, want prefix %q", w, s, k)
		}
	}
}

func TestOpStringMnemonics(t *testing.T) {
	for _, c := range []struct {
		op   Op
		want string
	}{
		{0x00e0, "CLS"},
		{0x00ee, "RET"},
		{0x1208, "JP 0x208"},
		{0x2abc, "CALL 0xABC"},
		{0x3105, "SE V1, 0x05"},
		{0x5a10, "SE VA, V1"},
		{0x6005, "LD V0, 0x05"},
		{0x8126, "SHR V1, V2"},
		{0xa210, "LD I, 0x210"},
		{0xb300, "JP V0, 0x300"},
		{0xc3ff, "RND V3, 0xFF"},
		{0xd015, "DRW V0, V1, 5"},
		{0xe59e, "SKP V5"},
		{0xf00a, "LD V0, K"},
		{0xf229, "LD F, V2"},
		{0xf355, "LD [I], V3"},
		{0xf365, "LD V3, [I]"},
		{0xffff, "DW 0xFFFF"},
	} {
		if g := c.op.String(); g != c.want {
			t.Errorf("Op(%.4x).String() = %q, want %q", uint16(c.op), g, c.want)
		}
	}
}
