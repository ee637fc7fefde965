package vip

import (
	"sync"
	"unicode"

	"github.com/nf/c8/chip8"
)

// tapSteps is how many steps a tapped key stays down. Terminals report
// key presses but not releases, so their keys are tapped rather than set.
const tapSteps = 6

// Keypad holds the host's view of the 16-key hex keypad.
// It is safe for concurrent use.
type Keypad struct {
	mu   sync.Mutex
	down [chip8.NumKeys]bool
	taps [chip8.NumKeys]int
}

// Set records that key is held down or released.
func (k *Keypad) Set(key byte, down bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down[key&0xf] = down
}

// Tap presses key for the next tapSteps steps.
func (k *Keypad) Tap(key byte) {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.taps[key&0xf] = tapSteps
}

// Reset releases all keys.
func (k *Keypad) Reset() {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.down = [chip8.NumKeys]bool{}
	k.taps = [chip8.NumKeys]int{}
}

// state returns the keys to present to the machine for one step,
// and ages any taps.
func (k *Keypad) state() (s [chip8.NumKeys]bool) {
	k.mu.Lock()
	defer k.mu.Unlock()
	for i := range s {
		s[i] = k.down[i] || k.taps[i] > 0
		if k.taps[i] > 0 {
			k.taps[i]--
		}
	}
	return s
}

// keyLayout maps the left-hand block of a QWERTY keyboard onto the
// COSMAC VIP keypad:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keyLayout = map[rune]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// KeyForRune returns the keypad key for the host key r.
func KeyForRune(r rune) (byte, bool) {
	k, ok := keyLayout[unicode.ToLower(r)]
	return k, ok
}
