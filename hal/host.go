package hal

import (
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the host HAL shared by both runners.
type Options struct {
	Width  int
	Height int
	Scale  int
	Title  string

	Log LogConfig
}

// LogConfig selects where log lines go. An empty File logs to the console
// stream only.
type LogConfig struct {
	File       string
	MaxSizeMB  int
	MaxBackups int
}

func (o Options) withDefaults() Options {
	if o.Width <= 0 {
		o.Width = 320
	}
	if o.Height <= 0 {
		o.Height = 400
	}
	if o.Scale <= 0 {
		o.Scale = 2
	}
	return o
}

type hostHAL struct {
	logger  *hostLogger
	fb      *hostFramebuffer
	kbd     *hostKeyboard
	ptr     *hostPointer
	t       *hostTime
	dialogs Dialogs
	console Console
}

func newHost(opts Options, logOut io.Writer) *hostHAL {
	opts = opts.withDefaults()
	return &hostHAL{
		logger: newHostLogger(opts.Log, logOut),
		fb:     newHostFramebuffer(opts.Width, opts.Height),
		kbd:    newHostKeyboard(),
		ptr:    newHostPointer(),
		t:      newHostTime(),
	}
}

func (h *hostHAL) Logger() Logger   { return h.logger }
func (h *hostHAL) Display() Display { return hostDisplay{fb: h.fb} }
func (h *hostHAL) Input() Input     { return hostInput{kbd: h.kbd, ptr: h.ptr} }
func (h *hostHAL) Time() Time       { return h.t }
func (h *hostHAL) Dialogs() Dialogs { return h.dialogs }
func (h *hostHAL) Console() Console { return h.console }

func (h *hostHAL) close() {
	if err := h.logger.Close(); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
}

type hostDisplay struct {
	fb *hostFramebuffer
}

func (d hostDisplay) Framebuffer() Framebuffer { return d.fb }

type hostInput struct {
	kbd *hostKeyboard
	ptr *hostPointer
}

func (in hostInput) Keyboard() Keyboard { return in.kbd }
func (in hostInput) Pointer() Pointer   { return in.ptr }

type hostLogger struct {
	mu   sync.Mutex
	w    io.Writer
	file *lumberjack.Logger
}

// newHostLogger writes to out, and to a rotated file as well when cfg names one.
func newHostLogger(cfg LogConfig, out io.Writer) *hostLogger {
	if out == nil {
		out = os.Stdout
	}
	l := &hostLogger{w: out}
	if cfg.File != "" {
		l.file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSizeMB,
			MaxBackups: cfg.MaxBackups,
			Compress:   true,
		}
		l.w = io.MultiWriter(out, l.file)
	}
	return l
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	line := make([]byte, 0, len(b)+1)
	line = append(append(line, b...), '\n')
	_, _ = l.w.Write(line)
}

func (l *hostLogger) Close() error {
	if l.file == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
