package vip

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/nf/c8/chip8"
)

// ebitenKeys maps keypad keys to the keys of keyLayout.
var ebitenKeys = [chip8.NumKeys]ebiten.Key{
	0x1: ebiten.KeyDigit1, 0x2: ebiten.KeyDigit2, 0x3: ebiten.KeyDigit3, 0xc: ebiten.KeyDigit4,
	0x4: ebiten.KeyQ, 0x5: ebiten.KeyW, 0x6: ebiten.KeyE, 0xd: ebiten.KeyR,
	0x7: ebiten.KeyA, 0x8: ebiten.KeyS, 0x9: ebiten.KeyD, 0xe: ebiten.KeyF,
	0xa: ebiten.KeyZ, 0x0: ebiten.KeyX, 0xb: ebiten.KeyC, 0xf: ebiten.KeyV,
}

type ebitenGUI struct {
	*System

	scale  int
	exit   <-chan bool
	img    *ebiten.Image
	frames int
}

func newEbitenGUI(s *System, scale int) *ebitenGUI {
	return &ebitenGUI{System: s, scale: scale, frames: -1}
}

func (g *ebitenGUI) Run(exit <-chan bool) error {
	g.exit = exit
	g.img = ebiten.NewImage(chip8.Width, chip8.Height)
	ebiten.SetWindowTitle("c8")
	ebiten.SetWindowSize(chip8.Width*g.scale, chip8.Height*g.scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	if err := ebiten.RunGame(g); err != nil && err != ebiten.Termination {
		return err
	}
	return nil
}

func (g *ebitenGUI) Update() error {
	select {
	case <-g.exit:
		return ebiten.Termination
	default:
	}
	if ebiten.IsKeyPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	for k, ek := range ebitenKeys {
		g.Keypad.Set(byte(k), ebiten.IsKeyPressed(ek))
	}
	select {
	case <-g.Buzzer.Beeps():
		bell()
	default:
	}
	return nil
}

func (g *ebitenGUI) Draw(screen *ebiten.Image) {
	if fb, n := g.Display.Frame(); n != g.frames {
		g.frames = n
		g.img.WritePixels(render(&fb, g.Display.Theme).Pix)
	}
	screen.DrawImage(g.img, nil)
}

func (g *ebitenGUI) Layout(outsideWidth, outsideHeight int) (int, int) {
	return chip8.Width, chip8.Height
}
