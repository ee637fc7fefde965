package vip

import "testing"

func TestKeyForRune(t *testing.T) {
	for _, c := range []struct {
		r   rune
		key byte
		ok  bool
	}{
		{'1', 0x1, true},
		{'4', 0xc, true},
		{'q', 0x4, true},
		{'Q', 0x4, true},
		{'x', 0x0, true},
		{'V', 0xf, true},
		{'5', 0, false},
		{'p', 0, false},
	} {
		k, ok := KeyForRune(c.r)
		if k != c.key || ok != c.ok {
			t.Errorf("KeyForRune(%q) = %x, %v; want %x, %v", c.r, k, ok, c.key, c.ok)
		}
	}
}

func TestKeyLayoutCoversKeypad(t *testing.T) {
	seen := map[byte]bool{}
	for _, k := range keyLayout {
		seen[k] = true
	}
	for k := byte(0); k < 16; k++ {
		if !seen[k] {
			t.Errorf("key %X has no host key", k)
		}
	}
}

func TestKeypadSet(t *testing.T) {
	var k Keypad
	k.Set(0xa, true)
	for i := 0; i < 10; i++ {
		if s := k.state(); !s[0xa] {
			t.Fatalf("held key released after %d steps", i)
		}
	}
	k.Set(0xa, false)
	if s := k.state(); s[0xa] {
		t.Error("released key still down")
	}
}

func TestKeypadTap(t *testing.T) {
	var k Keypad
	k.Tap(3)
	for i := 0; i < tapSteps; i++ {
		s := k.state()
		if !s[3] {
			t.Fatalf("tapped key up at step %d", i)
		}
		for j, down := range s {
			if down && j != 3 {
				t.Fatalf("key %X down", j)
			}
		}
	}
	if s := k.state(); s[3] {
		t.Errorf("tapped key still down after %d steps", tapSteps)
	}
}

func TestKeypadReset(t *testing.T) {
	var k Keypad
	k.Set(1, true)
	k.Tap(2)
	k.Reset()
	if s := k.state(); s[1] || s[2] {
		t.Errorf("keys down after Reset: %v", s)
	}
}
