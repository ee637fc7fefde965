package vip

import (
	"fmt"
	"image"
	"image/draw"
	"log"
	"os"
	"time"

	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"

	"github.com/nf/c8/chip8"
)

type gui struct {
	*System

	scale  int
	buf    screen.Buffer
	tex    screen.Texture
	frames int // updated to match Display.frames after copying buf
	dirty  bool
}

func newGUI(s *System, scale int) *gui {
	return &gui{System: s, scale: scale, frames: -1}
}

func (g *gui) Run(exit <-chan bool) error {
	var runErr error
	driver.Main(func(s screen.Screen) {
		runErr = g.run(s, exit)
	})
	return runErr
}

func (g *gui) run(s screen.Screen, exit <-chan bool) error {
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  "c8",
		Width:  chip8.Width * g.scale,
		Height: chip8.Height * g.scale,
	})
	if err != nil {
		return err
	}
	defer w.Release()

	dim := image.Point{chip8.Width, chip8.Height}
	if g.buf, err = s.NewBuffer(dim); err != nil {
		return err
	}
	defer g.buf.Release()
	if g.tex, err = s.NewTexture(dim); err != nil {
		return err
	}
	defer g.tex.Release()

	type update struct{}
	go func() {
		t := time.NewTicker(time.Second / 60)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				w.Send(update{})
			case <-exit:
				w.Send(update{})
				return
			}
		}
	}()

	var sz size.Event
	for {
		e := w.NextEvent()

		select {
		case <-exit:
			return nil
		default:
		}

		switch e := e.(type) {
		case size.Event:
			sz = e
			if sz.WidthPx+sz.HeightPx == 0 {
				return nil
			}
			g.dirty = true

		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case key.Event:
			if e.Code == key.CodeEscape {
				return nil
			}
			if k, ok := KeyForRune(e.Rune); ok {
				switch e.Direction {
				case key.DirPress:
					g.Keypad.Set(k, true)
				case key.DirRelease:
					g.Keypad.Set(k, false)
				}
			}

		case paint.Event:
			g.dirty = true

		case update:
			g.update()
			select {
			case <-g.Buzzer.Beeps():
				bell()
			default:
			}

		case error:
			log.Print(e)
		}

		if g.dirty && sz.WidthPx > 0 {
			w.Fill(sz.Bounds(), g.Display.Theme.Off, draw.Src)
			w.Scale(fit(sz.Bounds()), g.tex, g.tex.Bounds(), draw.Src, nil)
			w.Publish()
			g.dirty = false
		}
	}
}

// update copies a newly published frame into the texture.
func (g *gui) update() {
	fb, n := g.Display.Frame()
	if n == g.frames {
		return
	}
	g.frames = n
	renderInto(g.buf.RGBA(), &fb, g.Display.Theme)
	g.tex.Upload(image.Point{}, g.buf, g.buf.Bounds())
	g.dirty = true
}

// fit returns the largest 2:1 rectangle centred in r.
func fit(r image.Rectangle) image.Rectangle {
	w, h := r.Dx(), r.Dy()
	if w > h*chip8.Width/chip8.Height {
		w = h * chip8.Width / chip8.Height
	} else {
		h = w * chip8.Height / chip8.Width
	}
	p := r.Min.Add(image.Pt((r.Dx()-w)/2, (r.Dy()-h)/2))
	return image.Rectangle{Min: p, Max: p.Add(image.Pt(w, h))}
}

// bell rings the bell of the terminal that started a window frontend.
func bell() {
	fmt.Fprint(os.Stderr, "\a")
}
