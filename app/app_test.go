package app

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"sparkcalc/hal"
	"sparkcalc/internal/config"
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
func (f *memFB) Present() error          { f.presents++; return nil }

func (f *memFB) ClearRGB(r, g, b uint8) {
	p := uint16(r>>3)<<11 | uint16(g>>2)<<5 | uint16(b>>3)
	for i := 0; i+1 < len(f.buf); i += 2 {
		f.buf[i] = byte(p)
		f.buf[i+1] = byte(p >> 8)
	}
}

type lineLog struct {
	lines []string
	raw   []string
}

func (l *lineLog) WriteLineString(s string) { l.lines = append(l.lines, s) }
func (l *lineLog) WriteLineBytes(b []byte)  { l.raw = append(l.raw, string(b)) }

func (l *lineLog) rawContains(sub string) bool {
	for _, line := range l.raw {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

func (l *lineLog) contains(sub string) bool {
	for _, line := range l.lines {
		if strings.Contains(line, sub) {
			return true
		}
	}
	return false
}

type fakeHAL struct {
	log     *lineLog
	fb      *memFB
	keys    chan hal.KeyEvent
	ptrs    chan hal.PointerEvent
	ticks   chan uint64
	console hal.Console
}

func newFakeHAL() *fakeHAL {
	return &fakeHAL{
		log:   &lineLog{},
		fb:    newMemFB(320, 400),
		keys:  make(chan hal.KeyEvent, 64),
		ptrs:  make(chan hal.PointerEvent, 16),
		ticks: make(chan uint64, 64),
	}
}

func (h *fakeHAL) Logger() hal.Logger   { return h.log }
func (h *fakeHAL) Display() hal.Display { return h }
func (h *fakeHAL) Input() hal.Input     { return h }
func (h *fakeHAL) Time() hal.Time       { return h }
func (h *fakeHAL) Dialogs() hal.Dialogs { return nil }
func (h *fakeHAL) Console() hal.Console { return h.console }

func (h *fakeHAL) Framebuffer() hal.Framebuffer { return h.fb }
func (h *fakeHAL) Keyboard() hal.Keyboard       { return keyboard(h.keys) }
func (h *fakeHAL) Pointer() hal.Pointer         { return pointer(h.ptrs) }
func (h *fakeHAL) Ticks() <-chan uint64         { return h.ticks }

type keyboard chan hal.KeyEvent

func (k keyboard) Events() <-chan hal.KeyEvent { return k }

type pointer chan hal.PointerEvent

func (p pointer) Events() <-chan hal.PointerEvent { return p }

func (h *fakeHAL) typeString(s string) {
	for _, r := range s {
		h.keys <- hal.KeyEvent{Press: true, Rune: r}
	}
}

type statusConsole struct {
	status string
	panics bool
}

func (c *statusConsole) Status(line string) {
	if c.panics {
		panic("console broke")
	}
	c.status = line
}

func (c *statusConsole) Println(string) {}

type panickyVoice struct {
	said []string
	bomb string
}

func (v *panickyVoice) Available() bool { return true }

func (v *panickyVoice) Say(text string) {
	if text == v.bomb {
		v.bomb = ""
		panic("speaker exploded")
	}
	v.said = append(v.said, text)
}

func (v *panickyVoice) Listen(context.Context) (string, error) { return "", errors.New("no mic") }

func testConfig() Config {
	return Config{Settings: config.Default(), Voice: &panickyVoice{}}
}

func TestStep_EvaluatesTypedExpression(t *testing.T) {
	h := newFakeHAL()
	a := New(h, testConfig())

	h.typeString("2+3=")
	if err := a.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if h.fb.presents == 0 {
		t.Fatalf("expected a frame to be presented")
	}
	if !h.log.contains("calc: 2+3 = 5") {
		t.Fatalf("history entry not logged: %q", h.log.lines)
	}
}

func TestStep_PublishesStatusToConsole(t *testing.T) {
	h := newFakeHAL()
	con := &statusConsole{}
	h.console = con
	a := New(h, testConfig())

	h.typeString("7*6")
	if err := a.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if con.status != "> 7*6" {
		t.Fatalf("status=%q, want %q", con.status, "> 7*6")
	}
	h.keys <- hal.KeyEvent{Code: hal.KeyEnter, Press: true}
	if err := a.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if con.status != "> 42" {
		t.Fatalf("status=%q, want %q", con.status, "> 42")
	}
}

func TestStep_BoundsEventsPerStep(t *testing.T) {
	h := newFakeHAL()
	h.keys = make(chan hal.KeyEvent, maxEventsPerStep+10)
	s := New(h, testConfig())

	for i := 0; i < maxEventsPerStep+10; i++ {
		h.keys <- hal.KeyEvent{Press: true, Rune: '1'}
	}
	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := len(h.keys); got != 10 {
		t.Fatalf("queued after one step=%d, want 10", got)
	}
	if got := len(s.task.Calculator().Expression()); got != maxEventsPerStep {
		t.Fatalf("expression length=%d, want %d", got, maxEventsPerStep)
	}
}

func TestStep_DrainsTicks(t *testing.T) {
	h := newFakeHAL()
	s := New(h, testConfig())
	for i := uint64(1); i <= 10; i++ {
		h.ticks <- i
	}
	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if len(h.ticks) != 0 {
		t.Fatalf("ticks left unread: %d", len(h.ticks))
	}
}

func TestStep_RecoversFromPanic(t *testing.T) {
	h := newFakeHAL()
	con := &statusConsole{}
	h.console = con
	voice := &panickyVoice{bomb: "5"}
	cfg := testConfig()
	cfg.Voice = voice
	s := New(h, cfg)

	h.typeString("2+3=")
	if err := s.Step(); err != nil {
		t.Fatalf("step after recovered panic: %v", err)
	}
	if s.panics != 1 {
		t.Fatalf("panics=%d, want 1", s.panics)
	}
	if !h.log.contains("speaker exploded") {
		t.Fatalf("panic not logged: %q", h.log.lines)
	}
	if !h.log.rawContains("runtime/debug.Stack") {
		t.Fatalf("stack not logged as raw lines: %q", h.log.raw)
	}
	if got := s.task.Calculator().Display(); got != "" {
		t.Fatalf("display=%q, want empty after reset", got)
	}
	if !strings.Contains(con.status, "Internal error") {
		t.Fatalf("status=%q, want Internal error", con.status)
	}

	h.typeString("1+1=")
	if err := s.Step(); err != nil {
		t.Fatalf("step: %v", err)
	}
	if got := s.task.Calculator().Display(); got != "2" {
		t.Fatalf("display=%q, want 2", got)
	}
}

func TestStep_PanicDuringResetIsFatal(t *testing.T) {
	h := newFakeHAL()
	h.console = &statusConsole{panics: true}
	a := New(h, testConfig())

	err := a.Step()
	if !errors.Is(err, ErrPanicked) {
		t.Fatalf("err=%v, want ErrPanicked", err)
	}
	if err := a.Step(); !errors.Is(err, ErrPanicked) {
		t.Fatalf("second step err=%v, want ErrPanicked", err)
	}

	dark := 0
	for y := 0; y < h.fb.h; y++ {
		for x := 0; x < h.fb.w; x++ {
			off := y*h.fb.w*2 + x*2
			if h.fb.buf[off] == 0 && h.fb.buf[off+1] == 0 {
				dark++
			}
		}
	}
	if dark == 0 {
		t.Fatalf("panic screen drew no text")
	}
}

func TestStep_ReloadsThemeFromSettingsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"theme":"light"}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	h := newFakeHAL()
	cfg := testConfig()
	cfg.SettingsPath = path
	s := New(h, cfg)
	if s.watcher == nil {
		t.Fatalf("watcher not started")
	}
	defer s.Close()

	if err := os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for s.task.Theme().Name != "dark" {
		if time.Now().After(deadline) {
			t.Fatalf("theme=%q after reload, want dark", s.task.Theme().Name)
		}
		if err := s.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestNew_SkipsWatcherForMissingFile(t *testing.T) {
	h := newFakeHAL()
	cfg := testConfig()
	cfg.SettingsPath = filepath.Join(t.TempDir(), "nope", "settings.json")
	s := New(h, cfg)
	if s.watcher != nil {
		t.Fatalf("watcher started for a missing file")
	}
}

func TestTakeRunes(t *testing.T) {
	tests := []struct {
		in         string
		n          int16
		head, tail string
	}{
		{in: "abcdef", n: 4, head: "abcd", tail: "ef"},
		{in: "abc", n: 4, head: "abc", tail: ""},
		{in: "äöü", n: 2, head: "äö", tail: "ü"},
		{in: "x", n: 0, head: "", tail: "x"},
	}
	for _, tt := range tests {
		head, tail := takeRunes(tt.in, tt.n)
		if head != tt.head || tail != tt.tail {
			t.Fatalf("takeRunes(%q, %d) = %q, %q; want %q, %q", tt.in, tt.n, head, tail, tt.head, tt.tail)
		}
	}
}

func TestClose_StopsSettingsWatcher(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "settings.json")
	if err := os.WriteFile(path, []byte(`{"theme":"light"}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}

	h := newFakeHAL()
	cfg := testConfig()
	cfg.SettingsPath = path
	a := New(h, cfg)
	w := a.watcher
	if w == nil {
		t.Fatalf("watcher not started")
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	select {
	case <-w.Updates():
		t.Fatalf("unexpected update after Close")
	default:
	}
	if a.watcher != nil {
		t.Fatalf("watcher still attached after Close")
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}

	if err := os.WriteFile(path, []byte(`{"theme":"dark"}`), 0o644); err != nil {
		t.Fatalf("write settings: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if err := a.Step(); err != nil {
		t.Fatalf("Step after Close: %v", err)
	}
	if a.task.Theme().Name != "light" {
		t.Fatalf("theme=%q after Close, want light", a.task.Theme().Name)
	}
}
