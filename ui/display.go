package ui

import (
	"image/color"

	"sparkcalc/hal"

	"tinygo.org/x/drivers"
)

// fbDisplay adapts an RGB565 framebuffer to the tinyfont and tinyterm display interfaces.
type fbDisplay struct {
	fb hal.Framebuffer
}

func newFBDisplay(fb hal.Framebuffer) *fbDisplay {
	return &fbDisplay{fb: fb}
}

func (d *fbDisplay) Size() (x, y int16) {
	if d.fb == nil {
		return 0, 0
	}
	return int16(d.fb.Width()), int16(d.fb.Height())
}

func (d *fbDisplay) SetPixel(x, y int16, c color.RGBA) {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return
	}
	buf := d.fb.Buffer()
	ix, iy := int(x), int(y)
	if ix < 0 || ix >= d.fb.Width() || iy < 0 || iy >= d.fb.Height() {
		return
	}
	off := iy*d.fb.StrideBytes() + ix*2
	if off < 0 || off+1 >= len(buf) {
		return
	}
	pixel := rgb565From888(c.R, c.G, c.B)
	buf[off] = byte(pixel)
	buf[off+1] = byte(pixel >> 8)
}

func (d *fbDisplay) Display() error {
	if d.fb == nil {
		return nil
	}
	return d.fb.Present()
}

func (d *fbDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	if d.fb == nil || d.fb.Format() != hal.PixelFormatRGB565 {
		return nil
	}
	buf := d.fb.Buffer()
	w, h := d.fb.Width(), d.fb.Height()

	x0 := clampInt(int(x), 0, w)
	y0 := clampInt(int(y), 0, h)
	x1 := clampInt(int(x)+int(width), 0, w)
	y1 := clampInt(int(y)+int(height), 0, h)
	if x0 >= x1 || y0 >= y1 {
		return nil
	}

	pixel := rgb565From888(c.R, c.G, c.B)
	lo, hi := byte(pixel), byte(pixel>>8)
	stride := d.fb.StrideBytes()
	for py := y0; py < y1; py++ {
		row := py * stride
		for px := x0; px < x1; px++ {
			off := row + px*2
			if off+1 >= len(buf) {
				break
			}
			buf[off] = lo
			buf[off+1] = hi
		}
	}
	return nil
}

func (d *fbDisplay) SetScroll(line int16) {}

func (d *fbDisplay) SetRotation(rotation drivers.Rotation) error { return nil }

// strokeRect draws a one pixel outline.
func (d *fbDisplay) strokeRect(r rect, c color.RGBA) {
	_ = d.FillRectangle(r.x, r.y, r.w, 1, c)
	_ = d.FillRectangle(r.x, r.y+r.h-1, r.w, 1, c)
	_ = d.FillRectangle(r.x, r.y, 1, r.h, c)
	_ = d.FillRectangle(r.x+r.w-1, r.y, 1, r.h, c)
}

// regionDisplay exposes a rectangle of a display as a display of its own,
// so a tinyterm terminal can own one panel.
type regionDisplay struct {
	base *fbDisplay
	r    rect
}

func (d regionDisplay) Size() (x, y int16) { return d.r.w, d.r.h }

func (d regionDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.r.w || y >= d.r.h {
		return
	}
	d.base.SetPixel(d.r.x+x, d.r.y+y, c)
}

func (d regionDisplay) Display() error { return nil }

func (d regionDisplay) FillRectangle(x, y, width, height int16, c color.RGBA) error {
	x0 := int16(clampInt(int(x), 0, int(d.r.w)))
	y0 := int16(clampInt(int(y), 0, int(d.r.h)))
	x1 := int16(clampInt(int(x)+int(width), 0, int(d.r.w)))
	y1 := int16(clampInt(int(y)+int(height), 0, int(d.r.h)))
	if x0 >= x1 || y0 >= y1 {
		return nil
	}
	return d.base.FillRectangle(d.r.x+x0, d.r.y+y0, x1-x0, y1-y0, c)
}

func (d regionDisplay) SetScroll(line int16) {}

func (d regionDisplay) SetRotation(rotation drivers.Rotation) error { return nil }

func rgb565From888(r, g, b uint8) uint16 {
	return uint16((uint16(r>>3)&0x1F)<<11 | (uint16(g>>2)&0x3F)<<5 | (uint16(b>>3) & 0x1F))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
