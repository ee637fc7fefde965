package vip

import (
	"image/color"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nf/c8/chip8"
)

// term presents the display in a terminal, two pixel rows per cell.
type term struct {
	*System

	scr    tcell.Screen
	frames int
}

func newTerm(s *System) *term {
	return &term{System: s, frames: -1}
}

func (t *term) Run(exit <-chan bool) error {
	scr, err := tcell.NewScreen()
	if err != nil {
		return err
	}
	if err := scr.Init(); err != nil {
		return err
	}
	defer scr.Fini()
	t.scr = scr

	events := make(chan tcell.Event)
	go func() {
		for {
			ev := scr.PollEvent()
			if ev == nil {
				return // screen finalized
			}
			select {
			case events <- ev:
			case <-exit:
				return
			}
		}
	}()

	tick := time.NewTicker(time.Second / 60)
	defer tick.Stop()
	for {
		select {
		case <-exit:
			return nil
		case ev := <-events:
			switch ev := ev.(type) {
			case *tcell.EventKey:
				switch ev.Key() {
				case tcell.KeyEscape, tcell.KeyCtrlC:
					return nil
				case tcell.KeyRune:
					if k, ok := KeyForRune(ev.Rune()); ok {
						t.Keypad.Tap(k)
					}
				}
			case *tcell.EventResize:
				t.frames = -1
				scr.Sync()
			}
		case <-t.Buzzer.Beeps():
			scr.Beep()
		case <-tick.C:
			t.draw()
		}
	}
}

// halfBlocks is indexed by top<<1 | bottom.
var halfBlocks = [4]rune{' ', '▄', '▀', '█'}

func (t *term) draw() {
	fb, n := t.Display.Frame()
	if n == t.frames {
		return
	}
	t.frames = n
	style := tcell.StyleDefault.
		Foreground(termColor(t.Display.Theme.On)).
		Background(termColor(t.Display.Theme.Off))
	for y, row := range cells(&fb) {
		for x, c := range []rune(row) {
			t.scr.SetContent(x, y, c, nil, style)
		}
	}
	t.scr.Show()
}

func termColor(c color.RGBA) tcell.Color {
	return tcell.NewRGBColor(int32(c.R), int32(c.G), int32(c.B))
}

// cells returns the terminal rendering of fb as text, one string per row.
func cells(fb *chip8.Framebuffer) []string {
	rows := make([]string, 0, chip8.Height/2)
	for y := 0; y < chip8.Height; y += 2 {
		row := make([]rune, chip8.Width)
		for x := range row {
			row[x] = halfBlocks[fb[y][x]<<1|fb[y+1][x]]
		}
		rows = append(rows, string(row))
	}
	return rows
}
