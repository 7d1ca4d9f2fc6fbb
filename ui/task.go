// Package ui implements the calculator window: display, keypad, history
// panel and status line rendered into a framebuffer, plus the keyboard,
// pointer and command-line handling that drive the calculator.
package ui

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"sparkcalc/calc"
	"sparkcalc/hal"
	"sparkcalc/speech"

	"tinygo.org/x/tinyfont"
)

const (
	// messageTicks is how long a status message stays, in milliseconds.
	messageTicks  = 4000
	listenTimeout = 20 * time.Second
	maxCmdline    = 128
)

// Notifier shows modal notices.
type Notifier interface {
	Notify(title, msg string, isError bool)
}

// FileChooser asks where to save a file.
type FileChooser interface {
	SaveFile(title, filterDesc, ext string) (string, error)
}

// Console receives the status line and printed output in headless mode.
type Console interface {
	Status(line string)
	Println(line string)
}

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
}

// Options wires a Task to the calculator and the host.
type Options struct {
	Calc     *calc.Calculator
	Voice    speech.Engine
	Notifier Notifier
	Files    FileChooser
	// Console may be nil.
	Console Console
	Log     Logger
	Theme   string
}

// Task is the calculator window. It is driven from a single goroutine.
type Task struct {
	calc    *calc.Calculator
	voice   speech.Engine
	notify  Notifier
	files   FileChooser
	console Console
	log     Logger

	fb hal.Framebuffer
	d  *fbDisplay

	font       *tinyfont.Font
	fontWidth  int16
	fontHeight int16
	fontOffset int16

	lay   layout
	theme Theme

	focus    int
	showHelp bool

	cmdMode bool
	cmdline []rune

	message      string
	messageUntil uint64
	now          uint64

	dirty      bool
	lastStatus string
}

// New returns a Task drawing into disp. disp may be nil for a display-less task.
func New(disp hal.Display, opts Options) *Task {
	t := &Task{
		calc:    opts.Calc,
		voice:   opts.Voice,
		notify:  opts.Notifier,
		files:   opts.Files,
		console: opts.Console,
		log:     opts.Log,
		theme:   LightTheme,
		focus:   buttonIndex("="),
		dirty:   true,
	}
	if t.voice == nil {
		t.voice = speech.Nop()
	}
	if t.calc == nil {
		t.calc = calc.New(t.voice, opts.Log)
	}
	if th, ok := ThemeByName(opts.Theme); ok {
		t.theme = th
	}
	t.initFont()
	if disp != nil {
		if fb := disp.Framebuffer(); fb != nil {
			t.fb = fb
			t.d = newFBDisplay(fb)
			t.lay = newLayout(int16(fb.Width()), int16(fb.Height()), t.fontHeight)
		}
	}
	return t
}

func (t *Task) logf(format string, args ...any) {
	if t.log == nil {
		return
	}
	t.log.WriteLineString("ui: " + fmt.Sprintf(format, args...))
}

// Calculator returns the calculator driven by the task.
func (t *Task) Calculator() *calc.Calculator { return t.calc }

// Theme returns the active theme.
func (t *Task) Theme() Theme { return t.theme }

// SetTheme switches to the named theme. Unknown names are ignored.
func (t *Task) SetTheme(name string) {
	th, ok := ThemeByName(name)
	if !ok {
		t.logf("unknown theme %q", name)
		return
	}
	if th.Name == t.theme.Name {
		return
	}
	t.theme = th
	t.logf("theme %s", th.Name)
	t.dirty = true
}

func (t *Task) toggleTheme() {
	if t.theme.Name == DarkTheme.Name {
		t.SetTheme(LightTheme.Name)
		return
	}
	t.SetTheme(DarkTheme.Name)
}

// Tick advances the task clock to seq milliseconds.
func (t *Task) Tick(seq uint64) {
	t.now = seq
	if t.message != "" && t.now >= t.messageUntil {
		t.message = ""
		t.dirty = true
	}
}

func (t *Task) setMessage(msg string) {
	t.message = msg
	t.messageUntil = t.now + messageTicks
	t.dirty = true
}

// report shows a modal notice and echoes it in the status line.
func (t *Task) report(title, msg string, isError bool) {
	t.setMessage(msg)
	if t.notify != nil {
		t.notify.Notify(title, msg, isError)
	}
}

// HandleKey dispatches one key event. Releases are ignored.
func (t *Task) HandleKey(ev hal.KeyEvent) {
	if !ev.Press {
		return
	}
	t.dirty = true

	if t.showHelp {
		switch {
		case ev.Code == hal.KeyEscape, ev.Code == hal.KeyEnter, ev.Rune == '?':
			t.showHelp = false
		}
		return
	}
	if t.cmdMode {
		t.handleCommandKey(ev)
		return
	}

	switch ev.Code {
	case hal.KeyEnter:
		t.evaluate()
	case hal.KeyBackspace, hal.KeyDelete:
		t.calc.Backspace()
	case hal.KeyEscape:
		t.calc.Clear()
	case hal.KeyUp:
		t.moveFocus(0, -1)
	case hal.KeyDown:
		t.moveFocus(0, 1)
	case hal.KeyLeft:
		t.moveFocus(-1, 0)
	case hal.KeyRight:
		t.moveFocus(1, 0)
	case hal.KeyHome:
		t.focus = 0
	case hal.KeyEnd:
		t.focus = len(buttons) - 1
	case hal.KeyTab:
		t.pressButton(t.focus)
	case hal.KeyF1:
		t.listen()
	case hal.KeyF2:
		t.exportHistory("")
	case hal.KeyF3:
		t.toggleTheme()
	case hal.KeyUnknown:
		t.handleRune(ev.Rune)
	}
}

func (t *Task) handleRune(r rune) {
	switch {
	case r == ':':
		t.cmdMode = true
		t.cmdline = t.cmdline[:0]
	case r == '=':
		t.evaluate()
	case r == '?':
		t.showHelp = true
	case r == '\r' || r == '\n':
		t.evaluate()
	case r == 0x08 || r == 0x7f:
		t.calc.Backspace()
	case r >= 0x20:
		t.calc.Press(string(r))
	}
}

func (t *Task) handleCommandKey(ev hal.KeyEvent) {
	switch ev.Code {
	case hal.KeyEnter:
		line := string(t.cmdline)
		t.cmdMode = false
		t.cmdline = t.cmdline[:0]
		t.runCommand(line)
	case hal.KeyEscape:
		t.cmdMode = false
		t.cmdline = t.cmdline[:0]
	case hal.KeyBackspace, hal.KeyDelete:
		if len(t.cmdline) == 0 {
			t.cmdMode = false
			return
		}
		t.cmdline = t.cmdline[:len(t.cmdline)-1]
	case hal.KeyUnknown:
		if ev.Rune >= 0x20 && ev.Rune != 0x7f && len(t.cmdline) < maxCmdline {
			t.cmdline = append(t.cmdline, ev.Rune)
		}
	}
}

func (t *Task) moveFocus(dx, dy int) {
	col := t.focus%gridCols + dx
	row := t.focus/gridCols + dy
	col = (col + gridCols) % gridCols
	row = (row + gridRows) % gridRows
	t.focus = row*gridCols + col
}

// HandlePointer presses the button under a primary click.
func (t *Task) HandlePointer(ev hal.PointerEvent) {
	if !ev.Press || t.fb == nil {
		return
	}
	t.dirty = true
	if t.showHelp {
		t.showHelp = false
		return
	}
	if i := t.lay.keyAt(ev.X, ev.Y); i >= 0 {
		t.focus = i
		t.pressButton(i)
	}
}

func (t *Task) pressButton(i int) {
	if i < 0 || i >= len(buttons) {
		return
	}
	b := buttons[i]
	t.dirty = true
	switch b.act {
	case actPress:
		t.calc.Press(b.text)
	case actFunc:
		t.applyFunction(b.fn)
	case actEval:
		t.evaluate()
	case actClear:
		t.calc.Clear()
	case actBackspace:
		t.calc.Backspace()
	case actAnswer:
		t.calc.InsertAnswer()
	case actMemory:
		t.memory(b.mem)
	case actExport:
		t.exportHistory("")
	case actVoice:
		t.listen()
	case actDark:
		t.SetTheme(DarkTheme.Name)
	case actLight:
		t.SetTheme(LightTheme.Name)
	case actHelp:
		t.showHelp = !t.showHelp
	}
}

func (t *Task) evaluate() {
	if _, err := t.calc.Evaluate(); err != nil {
		t.report("Error", calc.Message(err), true)
		return
	}
	t.message = ""
}

func (t *Task) applyFunction(fn calc.Func) {
	if _, err := t.calc.ApplyFunction(fn); err != nil {
		t.report("Error", calc.Message(err), true)
	}
}

func (t *Task) memory(op calc.MemoryOp) {
	if err := t.calc.Memory(op); err != nil {
		t.report("Error", calc.Message(err), true)
	}
}

// exportHistory writes the history to path, asking for one when path is empty.
func (t *Task) exportHistory(path string) {
	history := t.calc.History()
	if len(history) == 0 {
		t.report("History", calc.Message(calc.ErrNothingToExport), false)
		return
	}
	if path == "" {
		if t.files == nil {
			t.report("Error", "Could not save: no file dialog", true)
			return
		}
		p, err := t.files.SaveFile("Export history", "Text files", "txt")
		if errors.Is(err, hal.ErrCancelled) || (err == nil && p == "") {
			return
		}
		if err != nil {
			t.report("Error", "Could not save: "+err.Error(), true)
			return
		}
		path = withDefaultExt(p, ".txt")
	}
	if err := calc.WriteHistory(path, history); err != nil {
		t.logf("export %s: %v", path, err)
		t.report("Error", "Could not save: "+err.Error(), true)
		return
	}
	t.logf("exported %d entries to %s", len(history), path)
	t.report("Saved", "History exported to: "+path, false)
}

func withDefaultExt(path, ext string) string {
	if filepath.Ext(path) == "" {
		return path + ext
	}
	return path
}

// listen fills the buffer with one normalized spoken expression.
func (t *Task) listen() {
	if !t.voice.Available() {
		t.report("Voice", "Voice packages not installed. See README to enable.", false)
		return
	}
	t.setMessage("Listening...")
	// Listen blocks the step; show the prompt first.
	t.Render()
	ctx, cancel := context.WithTimeout(context.Background(), listenTimeout)
	defer cancel()
	text, err := t.voice.Listen(ctx)
	if err != nil {
		t.logf("listen: %v", err)
		t.report("Voice", "Could not understand. Try typing instead.", true)
		return
	}
	t.calc.SetExpression(calc.NormalizeSpoken(text))
	t.message = ""
}

// Reset recovers from an internal failure: the buffer is emptied and the
// message is shown.
func (t *Task) Reset(msg string) {
	t.cmdMode = false
	t.cmdline = t.cmdline[:0]
	t.showHelp = false
	t.calc.Clear()
	t.report("Error", msg, true)
}

func (t *Task) statusText() string {
	var parts []string
	if t.cmdMode {
		parts = append(parts, ":"+string(t.cmdline))
	} else {
		parts = append(parts, "> "+t.calc.Display())
	}
	if m := t.calc.MemoryValue(); m != 0 {
		parts = append(parts, "M="+formatMemory(m))
	}
	if t.message != "" {
		parts = append(parts, t.message)
	}
	return strings.Join(parts, " | ")
}

func formatMemory(m float64) string {
	v := calc.Float(m)
	return calc.Format(v)
}

// publishStatus sends the status line to the console when it changed.
func (t *Task) publishStatus() {
	if t.console == nil {
		return
	}
	s := t.statusText()
	if s == t.lastStatus {
		return
	}
	t.lastStatus = s
	t.console.Status(s)
}

func (t *Task) println(line string) {
	if t.console != nil {
		t.console.Println(line)
	}
}
