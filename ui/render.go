package ui

// This file contains the framebuffer renderer of the calculator window.

import (
	"image/color"
	"strings"

	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
	"tinygo.org/x/tinyterm"
)

func (t *Task) initFont() {
	t.font = &proggy.TinySZ8pt7b
	t.fontHeight = int16(t.font.GetYAdvance())
	if t.fontHeight <= 0 {
		t.fontHeight = 10
	}
	t.fontOffset = t.fontHeight - t.fontHeight/4
	_, outboxWidth := tinyfont.LineWidth(t.font, "0")
	t.fontWidth = int16(outboxWidth)
	if t.fontWidth <= 0 {
		t.fontWidth = 6
	}
}

// Render redraws the window when something changed and updates the console status line.
func (t *Task) Render() {
	t.publishStatus()
	if !t.dirty || t.fb == nil || t.d == nil {
		return
	}
	t.dirty = false

	w := int16(t.fb.Width())
	h := int16(t.fb.Height())
	_ = t.d.FillRectangle(0, 0, w, h, t.theme.Window)

	t.renderDisplay()
	t.renderKeys()
	t.renderHistory()
	t.renderStatus()
	if t.showHelp {
		t.renderHelp()
	}

	_ = t.fb.Present()
}

func (t *Task) renderDisplay() {
	r := t.lay.display
	_ = t.d.FillRectangle(r.x, r.y, r.w, r.h, t.theme.DisplayBG)
	t.d.strokeRect(r, t.theme.Focus)

	cols := int((r.w - 8) / t.fontWidth)
	if t.calc.MemoryValue() != 0 {
		t.drawString(r.x+4, r.y+4, "M", t.theme.DisplayFG, 1)
	}
	if !t.voice.Available() {
		s := "voice off"
		t.drawString(r.x+r.w-4-int16(len(s))*t.fontWidth, r.y+4, s, t.theme.DisplayFG, cols)
	}

	text := tailRunes(t.calc.Display(), cols)
	x := r.x + r.w - 4 - int16(len([]rune(text)))*t.fontWidth
	t.drawString(x, r.y+r.h-4-t.fontHeight, text, t.theme.DisplayFG, cols)
}

func (t *Task) renderKeys() {
	for i, b := range buttons {
		r := t.lay.keys[i]
		bg := t.theme.ButtonAlt
		if b.isDigitKey() {
			bg = t.theme.Button
		}
		_ = t.d.FillRectangle(r.x, r.y, r.w, r.h, bg)
		if i == t.focus {
			t.d.strokeRect(r, t.theme.Focus)
		}

		label := b.label
		if b.act == actVoice && !t.voice.Available() {
			label = "Voice(off)"
		}
		cols := int((r.w - 2) / t.fontWidth)
		label = clipRunes(label, cols)
		lw := int16(len([]rune(label))) * t.fontWidth
		t.drawString(r.x+(r.w-lw)/2, r.y+(r.h-t.fontHeight)/2, label, t.theme.ButtonFG, cols)
	}
}

// renderHistory writes the newest history entries into the history panel
// through a terminal that owns the panel.
func (t *Task) renderHistory() {
	r := t.lay.history
	if r.h < t.fontHeight || r.w < t.fontWidth {
		return
	}
	_ = t.d.FillRectangle(r.x, r.y, r.w, r.h, t.theme.PanelBG)

	term := tinyterm.NewTerminal(regionDisplay{base: t.d, r: r})
	term.Configure(&tinyterm.Config{
		Font:       t.font,
		FontHeight: t.fontHeight,
		FontOffset: t.fontOffset,
	})

	rows := int(r.h / t.fontHeight)
	cols := int(r.w / t.fontWidth)
	history := t.calc.History()
	if len(history) > rows {
		history = history[len(history)-rows:]
	}
	lines := make([]string, len(history))
	for i, e := range history {
		lines[i] = tailRunes(e, cols)
	}
	_, _ = term.Write([]byte(strings.Join(lines, "\r\n")))
}

func (t *Task) renderStatus() {
	r := t.lay.status
	cols := int(r.w / t.fontWidth)
	t.drawString(r.x+2, r.y+2, clipRunes(t.statusText(), cols), t.theme.StatusFG, cols)
}

func (t *Task) renderHelp() {
	w := int16(t.fb.Width())
	h := int16(t.fb.Height())
	box := rect{x: 2 * margin, y: 2 * margin, w: w - 4*margin, h: h - 4*margin}
	_ = t.d.FillRectangle(box.x, box.y, box.w, box.h, t.theme.DisplayBG)
	t.d.strokeRect(box, t.theme.Focus)

	cols := int((box.w - 8) / t.fontWidth)
	y := box.y + 4
	for _, l := range helpLines {
		if y+t.fontHeight > box.y+box.h {
			break
		}
		t.drawString(box.x+4, y, l, t.theme.DisplayFG, cols)
		y += t.fontHeight
	}
}

// drawString draws s with its top-left corner at (x, y), clipped to cols runes.
func (t *Task) drawString(x, y int16, s string, fg color.RGBA, cols int) {
	col := int16(0)
	for _, r := range s {
		if int(col) >= cols {
			return
		}
		tinyfont.DrawChar(t.d, t.font, x+col*t.fontWidth, y+t.fontOffset, r, fg)
		col++
	}
}

func clipRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[:n])
}

// tailRunes keeps the last n runes of s.
func tailRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= n {
		return s
	}
	return string(rs[len(rs)-n:])
}
