package vip

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/image/draw"

	"github.com/nf/c8/chip8"
)

// Theme holds the colours of lit and unlit pixels.
type Theme struct {
	On, Off color.RGBA
}

var DefaultTheme = Theme{
	On:  color.RGBA{0xff, 0xff, 0xff, 0xff},
	Off: color.RGBA{0x00, 0x00, 0x00, 0xff},
}

// ParseColor parses a colour written as rrggbb or rgb, with or without
// a leading '#'.
func ParseColor(s string) (color.RGBA, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid colour %q", s)
	}
	return color.RGBA{byte(v >> 16), byte(v >> 8), byte(v), 0xff}, nil
}

// Display holds the most recently drawn frame.
// It is safe for concurrent use.
type Display struct {
	Theme Theme

	mu     sync.Mutex
	fb     chip8.Framebuffer
	frames int // count of frames published
}

func (d *Display) publish(fb *chip8.Framebuffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fb = *fb
	d.frames++
}

// Frame returns the current frame and the number of frames published so
// far, which callers can compare against to skip unchanged frames.
func (d *Display) Frame() (chip8.Framebuffer, int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fb, d.frames
}

// Image renders the current frame with each pixel scaled to a
// scale × scale block.
func (d *Display) Image(scale int) *image.RGBA {
	fb, _ := d.Frame()
	return Image(&fb, d.Theme, scale)
}

// WritePNG writes the current frame to w as a PNG image.
func (d *Display) WritePNG(w io.Writer, scale int) error {
	return png.Encode(w, d.Image(scale))
}

// Image renders fb in the colours of t, scaled by scale.
func Image(fb *chip8.Framebuffer, t Theme, scale int) *image.RGBA {
	m := render(fb, t)
	if scale <= 1 {
		return m
	}
	dst := image.NewRGBA(image.Rect(0, 0, chip8.Width*scale, chip8.Height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), m, m.Bounds(), draw.Src, nil)
	return dst
}

// WritePNG writes fb to w as a PNG image.
func WritePNG(w io.Writer, fb *chip8.Framebuffer, t Theme, scale int) error {
	return png.Encode(w, Image(fb, t, scale))
}

// render draws fb into a new Width × Height image.
func render(fb *chip8.Framebuffer, t Theme) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	renderInto(m, fb, t)
	return m
}

func renderInto(m *image.RGBA, fb *chip8.Framebuffer, t Theme) {
	for y := range fb {
		for x, px := range fb[y] {
			c := t.Off
			if px != 0 {
				c = t.On
			}
			m.SetRGBA(x, y, c)
		}
	}
}
