package ui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sparkcalc/calc"
	"sparkcalc/hal"
	"sparkcalc/speech"
)

type memFB struct {
	w, h     int
	buf      []byte
	presents int
}

func newMemFB(w, h int) *memFB {
	return &memFB{w: w, h: h, buf: make([]byte, w*h*2)}
}

func (f *memFB) Width() int              { return f.w }
func (f *memFB) Height() int             { return f.h }
func (f *memFB) Format() hal.PixelFormat { return hal.PixelFormatRGB565 }
func (f *memFB) StrideBytes() int        { return f.w * 2 }
func (f *memFB) Buffer() []byte          { return f.buf }
func (f *memFB) ClearRGB(r, g, b uint8)  {}
func (f *memFB) Present() error          { f.presents++; return nil }

func (f *memFB) pixel(x, y int) uint16 {
	off := y*f.w*2 + x*2
	return uint16(f.buf[off]) | uint16(f.buf[off+1])<<8
}

type memDisplay struct{ fb hal.Framebuffer }

func (d memDisplay) Framebuffer() hal.Framebuffer { return d.fb }

type notice struct {
	title, msg string
	isError    bool
}

type recordingNotifier struct{ notices []notice }

func (n *recordingNotifier) Notify(title, msg string, isError bool) {
	n.notices = append(n.notices, notice{title, msg, isError})
}

func (n *recordingNotifier) last() notice {
	if len(n.notices) == 0 {
		return notice{}
	}
	return n.notices[len(n.notices)-1]
}

type stubChooser struct {
	path  string
	err   error
	calls int
}

func (c *stubChooser) SaveFile(title, filterDesc, ext string) (string, error) {
	c.calls++
	return c.path, c.err
}

type stubVoice struct {
	available bool
	heard     string
	err       error
	said      []string
	onListen  func()
}

func (v *stubVoice) Available() bool { return v.available }
func (v *stubVoice) Say(text string) { v.said = append(v.said, text) }
func (v *stubVoice) Listen(context.Context) (string, error) {
	if v.onListen != nil {
		v.onListen()
	}
	return v.heard, v.err
}

type recordingConsole struct {
	statuses []string
	lines    []string
}

func (c *recordingConsole) Status(line string)  { c.statuses = append(c.statuses, line) }
func (c *recordingConsole) Println(line string) { c.lines = append(c.lines, line) }

type fixture struct {
	t       *Task
	fb      *memFB
	notes   *recordingNotifier
	files   *stubChooser
	voice   *stubVoice
	console *recordingConsole
}

func newFixture() *fixture {
	f := &fixture{
		fb:      newMemFB(320, 400),
		notes:   &recordingNotifier{},
		files:   &stubChooser{},
		voice:   &stubVoice{},
		console: &recordingConsole{},
	}
	f.t = New(memDisplay{fb: f.fb}, Options{
		Voice:    f.voice,
		Notifier: f.notes,
		Files:    f.files,
		Console:  f.console,
	})
	return f
}

func (f *fixture) press(labels ...string) {
	for _, l := range labels {
		i := buttonIndex(l)
		if i < 0 {
			panic("no button " + l)
		}
		f.t.pressButton(i)
	}
}

func (f *fixture) typeText(s string) {
	for _, r := range s {
		f.t.HandleKey(hal.KeyEvent{Press: true, Rune: r})
	}
}

func (f *fixture) key(code hal.KeyCode) {
	f.t.HandleKey(hal.KeyEvent{Code: code, Press: true})
	f.t.HandleKey(hal.KeyEvent{Code: code, Press: false})
}

func TestKeypad_Evaluate(t *testing.T) {
	f := newFixture()
	f.press("7", "*", "6", "=")

	c := f.t.Calculator()
	if c.Display() != "42" {
		t.Fatalf("display=%q, want 42", c.Display())
	}
	if h := c.History(); len(h) != 1 || h[0] != "7*6 = 42" {
		t.Fatalf("history=%q", h)
	}
	if len(f.voice.said) != 1 || f.voice.said[0] != "42" {
		t.Fatalf("said=%q, want [42]", f.voice.said)
	}
	if len(f.notes.notices) != 0 {
		t.Fatalf("unexpected notices %v", f.notes.notices)
	}
}

func TestKeypad_Errors(t *testing.T) {
	tests := []struct {
		name   string
		labels []string
		want   string
	}{
		{name: "division", labels: []string{"1", "/", "0", "="}, want: "Division by zero"},
		{name: "syntax", labels: []string{"2", "+", "="}, want: "Invalid input"},
		{name: "shortcut", labels: []string{"-", "4", "sqrt"}, want: "Invalid scientific operation"},
		{name: "memory", labels: []string{"2", "+", "M+"}, want: "Memory operation failed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.press(tt.labels...)
			got := f.notes.last()
			if got.title != "Error" || got.msg != tt.want || !got.isError {
				t.Fatalf("notice=%+v, want Error/%q", got, tt.want)
			}
			if !strings.Contains(f.t.statusText(), tt.want) {
				t.Fatalf("status=%q does not echo %q", f.t.statusText(), tt.want)
			}
		})
	}
}

func TestKeypad_ShortcutsAndMemory(t *testing.T) {
	f := newFixture()
	c := f.t.Calculator()

	f.press("3", "0", "sin")
	if c.Display() != "0.5" {
		t.Fatalf("sin 30 = %q, want 0.5", c.Display())
	}
	if h := c.History(); len(h) != 1 || h[0] != "sin(30.0) = 0.5" {
		t.Fatalf("history=%q", h)
	}

	f.press("C", "5", "M+", "C", "3", "M+", "C", "MR")
	if c.Display() != "8" {
		t.Fatalf("MR = %q, want 8", c.Display())
	}
	if !strings.Contains(f.t.statusText(), "M=8") {
		t.Fatalf("status=%q lacks memory indicator", f.t.statusText())
	}
	f.press("MC")
	if c.MemoryValue() != 0 {
		t.Fatalf("register=%v after MC", c.MemoryValue())
	}

	f.press("C", "2", "^", "3", "=", "+", "Ans", "<-")
	if c.Expression() != "8+" {
		t.Fatalf("buffer=%q, want 8+", c.Expression())
	}
}

func TestExport(t *testing.T) {
	dir := t.TempDir()

	t.Run("empty history", func(t *testing.T) {
		f := newFixture()
		f.press("Hist")
		if got := f.notes.last(); got.title != "History" || got.msg != "No history yet" || got.isError {
			t.Fatalf("notice=%+v", got)
		}
		if f.files.calls != 0 {
			t.Fatalf("dialog shown for empty history")
		}
	})

	t.Run("dialog adds extension", func(t *testing.T) {
		f := newFixture()
		f.files.path = filepath.Join(dir, "calc")
		f.press("1", "+", "1", "=")
		f.key(hal.KeyF2)

		want := filepath.Join(dir, "calc.txt")
		if got := f.notes.last(); got.title != "Saved" || got.msg != "History exported to: "+want {
			t.Fatalf("notice=%+v", got)
		}
		b, err := os.ReadFile(want)
		if err != nil {
			t.Fatalf("ReadFile error: %v", err)
		}
		if string(b) != "1+1 = 2" {
			t.Fatalf("file=%q", b)
		}
	})

	t.Run("cancel is silent", func(t *testing.T) {
		f := newFixture()
		f.files.err = hal.ErrCancelled
		f.press("1", "=")
		f.press("Hist")
		if len(f.notes.notices) != 0 {
			t.Fatalf("notices=%v, want none", f.notes.notices)
		}
	})

	t.Run("dialog failure", func(t *testing.T) {
		f := newFixture()
		f.files.err = errors.New("no display")
		f.press("1", "=")
		f.press("Hist")
		if got := f.notes.last(); got.msg != "Could not save: no display" || !got.isError {
			t.Fatalf("notice=%+v", got)
		}
	})

	t.Run("write failure", func(t *testing.T) {
		f := newFixture()
		f.press("1", "=")
		f.t.runCommand("export " + filepath.Join(dir, "missing", "h.txt"))
		if got := f.notes.last(); !strings.HasPrefix(got.msg, "Could not save: ") || !got.isError {
			t.Fatalf("notice=%+v", got)
		}
	})

	t.Run("command skips dialog", func(t *testing.T) {
		f := newFixture()
		path := filepath.Join(dir, "direct.log")
		f.press("2", "*", "2", "=")
		f.typeText(":export " + path)
		f.key(hal.KeyEnter)
		if f.files.calls != 0 {
			t.Fatalf("dialog shown for :export with a path")
		}
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("export file missing: %v", err)
		}
	})
}

func TestVoice(t *testing.T) {
	t.Run("unavailable", func(t *testing.T) {
		f := newFixture()
		f.press("Voice")
		want := notice{"Voice", "Voice packages not installed. See README to enable.", false}
		if got := f.notes.last(); got != want {
			t.Fatalf("notice=%+v, want %+v", got, want)
		}
	})

	t.Run("heard", func(t *testing.T) {
		f := newFixture()
		f.voice.available = true
		f.voice.heard = "2 plus 3"
		f.key(hal.KeyF1)
		c := f.t.Calculator()
		if c.Expression() != "2 + 3" || c.Display() != "2 + 3" {
			t.Fatalf("buffer=%q display=%q", c.Expression(), c.Display())
		}
		f.key(hal.KeyEnter)
		if c.Display() != "5" {
			t.Fatalf("display=%q, want 5", c.Display())
		}
	})

	t.Run("prompt shown before listening", func(t *testing.T) {
		f := newFixture()
		f.voice.available = true
		f.voice.heard = "7"
		f.t.Render()
		presents := f.fb.presents

		var status string
		var drawn int
		f.voice.onListen = func() {
			if n := len(f.console.statuses); n > 0 {
				status = f.console.statuses[n-1]
			}
			drawn = f.fb.presents - presents
		}
		f.key(hal.KeyF1)
		if !strings.HasSuffix(status, "Listening...") {
			t.Fatalf("status during listen=%q, want the Listening... prompt", status)
		}
		if drawn == 0 {
			t.Fatalf("no frame presented before listening")
		}
	})

		t.Run("not understood", func(t *testing.T) {
		f := newFixture()
		f.voice.available = true
		f.voice.err = speech.ErrVoiceRecognition
		f.t.runCommand("voice")
		want := notice{"Voice", "Could not understand. Try typing instead.", true}
		if got := f.notes.last(); got != want {
			t.Fatalf("notice=%+v, want %+v", got, want)
		}
	})
}

func TestTheme(t *testing.T) {
	f := newFixture()
	if f.t.Theme().Name != "light" {
		t.Fatalf("start theme=%q, want light", f.t.Theme().Name)
	}
	f.press("Dark")
	if f.t.Theme().Name != "dark" {
		t.Fatalf("theme=%q after Dark", f.t.Theme().Name)
	}
	f.key(hal.KeyF3)
	if f.t.Theme().Name != "light" {
		t.Fatalf("theme=%q after F3", f.t.Theme().Name)
	}
	f.t.SetTheme("blue")
	if f.t.Theme().Name != "light" {
		t.Fatalf("unknown theme applied")
	}
	f.t.runCommand("theme dark")
	if f.t.Theme().Name != "dark" {
		t.Fatalf("theme=%q after :theme dark", f.t.Theme().Name)
	}

	f.t.Render()
	want := rgb565From888(DarkTheme.Window.R, DarkTheme.Window.G, DarkTheme.Window.B)
	if got := f.fb.pixel(0, 0); got != want {
		t.Fatalf("corner pixel=%#04x, want %#04x", got, want)
	}
	if f.fb.presents != 1 {
		t.Fatalf("presents=%d, want 1", f.fb.presents)
	}
	f.t.Render()
	if f.fb.presents != 1 {
		t.Fatalf("unchanged frame presented again")
	}
}

func TestCommands(t *testing.T) {
	f := newFixture()
	c := f.t.Calculator()

	f.typeText("30:sin")
	if !strings.HasPrefix(f.t.statusText(), ":sin") {
		t.Fatalf("status=%q, want the command line", f.t.statusText())
	}
	f.key(hal.KeyEnter)
	if c.Display() != "0.5" {
		t.Fatalf("display=%q, want 0.5", c.Display())
	}

	f.typeText(":m+")
	f.key(hal.KeyEnter)
	if c.MemoryValue() != 0.5 {
		t.Fatalf("register=%v, want 0.5", c.MemoryValue())
	}

	f.typeText(":bogus")
	f.key(hal.KeyEnter)
	if !strings.Contains(f.t.statusText(), "Unknown command") {
		t.Fatalf("status=%q", f.t.statusText())
	}

	f.typeText(":history")
	f.key(hal.KeyEnter)
	if len(f.console.lines) != 1 || f.console.lines[0] != "sin(30.0) = 0.5" {
		t.Fatalf("printed=%q", f.console.lines)
	}

	f.typeText(":mr")
	f.key(hal.KeyEscape)
	if c.Display() != "0.5" {
		t.Fatalf("cancelled command ran: display=%q", c.Display())
	}
	f.key(hal.KeyEscape)
	if c.Display() != "" {
		t.Fatalf("Escape did not clear: %q", c.Display())
	}
}

func TestPointerAndFocus(t *testing.T) {
	f := newFixture()
	c := f.t.Calculator()

	r := f.t.lay.keys[buttonIndex("7")]
	f.t.HandlePointer(hal.PointerEvent{X: int(r.x + r.w/2), Y: int(r.y + r.h/2), Press: true})
	f.t.HandlePointer(hal.PointerEvent{X: int(r.x + r.w/2), Y: int(r.y + r.h/2), Press: false})
	if c.Display() != "7" {
		t.Fatalf("display=%q after click, want 7", c.Display())
	}
	if f.t.focus != buttonIndex("7") {
		t.Fatalf("focus=%d, want the clicked key", f.t.focus)
	}

	f.key(hal.KeyRight) // 8
	f.key(hal.KeyDown)  // 5
	f.key(hal.KeyTab)
	if c.Display() != "75" {
		t.Fatalf("display=%q, want 75", c.Display())
	}

	f.t.HandlePointer(hal.PointerEvent{X: 0, Y: 0, Press: true})
	if c.Display() != "75" {
		t.Fatalf("click outside keys changed display to %q", c.Display())
	}
}

func TestMessageExpires(t *testing.T) {
	f := newFixture()
	f.t.Tick(100)
	f.press("=")
	if f.t.message == "" {
		t.Fatalf("no message after failed evaluation")
	}
	f.t.Tick(100 + messageTicks - 1)
	if f.t.message == "" {
		t.Fatalf("message expired early")
	}
	f.t.Tick(100 + messageTicks)
	if f.t.message != "" {
		t.Fatalf("message=%q, want expired", f.t.message)
	}
}

func TestConsoleStatusAndReset(t *testing.T) {
	f := newFixture()
	f.press("4", "2")
	f.t.Render()
	f.t.Render()
	if n := len(f.console.statuses); n != 1 || f.console.statuses[0] != "> 42" {
		t.Fatalf("statuses=%q", f.console.statuses)
	}

	f.t.Reset("Internal error")
	if f.t.Calculator().Expression() != "" {
		t.Fatalf("Reset kept the buffer")
	}
	if got := f.notes.last(); got.msg != "Internal error" || !got.isError {
		t.Fatalf("notice=%+v", got)
	}
}

func TestHelpToggle(t *testing.T) {
	f := newFixture()
	f.typeText("?")
	if !f.t.showHelp {
		t.Fatalf("help not shown")
	}
	f.t.Render()
	f.typeText("1")
	if f.t.Calculator().Display() != "" {
		t.Fatalf("key reached the calculator while help was shown")
	}
	f.key(hal.KeyEscape)
	if f.t.showHelp {
		t.Fatalf("help still shown")
	}

	f.t.runCommand("help")
	if f.t.showHelp || len(f.console.lines) != len(helpLines) {
		t.Fatalf("console help: shown=%v lines=%d", f.t.showHelp, len(f.console.lines))
	}
}

func TestNew_DefaultsWithoutDisplay(t *testing.T) {
	tk := New(nil, Options{Theme: "dark"})
	if tk.Theme().Name != "dark" {
		t.Fatalf("theme=%q", tk.Theme().Name)
	}
	tk.HandleKey(hal.KeyEvent{Press: true, Rune: '1'})
	tk.HandleKey(hal.KeyEvent{Code: hal.KeyEnter, Press: true})
	tk.Render()
	if tk.Calculator().Display() != "1" {
		t.Fatalf("display=%q", tk.Calculator().Display())
	}
	var _ calc.Speaker = speech.Nop()
}
