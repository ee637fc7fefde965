package vip

import (
	"sync/atomic"

	"github.com/nf/c8/chip8"
)

// Buzzer receives the machine's tone requests. The machine never produces
// sound itself; frontends decide how to make a tone audible.
type Buzzer struct {
	beep  chan bool
	tone  atomic.Bool
	beeps atomic.Int64
}

func (b *Buzzer) init() {
	b.beep = make(chan bool, 1)
}

// Beeps delivers a value each time the sound timer runs out.
// Beeps that arrive while one is pending are merged.
func (b *Buzzer) Beeps() <-chan bool { return b.beep }

// Tone reports whether the sound timer was running at the last step.
func (b *Buzzer) Tone() bool { return b.tone.Load() }

// Count returns the number of beeps so far.
func (b *Buzzer) Count() int64 { return b.beeps.Load() }

func (b *Buzzer) update(fx chip8.Effects) {
	b.tone.Store(fx.Tone)
	if !fx.Beep {
		return
	}
	b.beeps.Add(1)
	select {
	case b.beep <- true:
	default:
	}
}
