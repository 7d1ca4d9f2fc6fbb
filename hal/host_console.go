package hal

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gosuri/uilive"
	"github.com/mattn/go-isatty"
)

// hostConsole renders the headless status line. On a terminal the line is
// redrawn in place with uilive; otherwise each change is printed once.
type hostConsole struct {
	mu   sync.Mutex
	out  io.Writer
	live *uilive.Writer
	last string
}

func newHostConsole(out *os.File) *hostConsole {
	c := &hostConsole{out: out}
	if isatty.IsTerminal(out.Fd()) || isatty.IsCygwinTerminal(out.Fd()) {
		c.live = uilive.New()
		c.live.Out = out
	}
	return c
}

func (c *hostConsole) Status(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if line == c.last {
		return
	}
	c.last = line
	if c.live == nil {
		fmt.Fprintln(c.out, line)
		return
	}
	fmt.Fprintln(c.live, line)
	_ = c.live.Flush()
}

func (c *hostConsole) Println(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.live == nil {
		fmt.Fprintln(c.out, line)
		return
	}
	fmt.Fprintln(c.live.Bypass(), line)
}

// consoleDialogs answers dialogs without a window: notices become console
// lines and save dialogs pick a timestamped file in dir.
type consoleDialogs struct {
	c   Console
	log Logger
	dir string
	now func() time.Time
}

func (d *consoleDialogs) SaveFile(title, filterDesc, ext string) (string, error) {
	name := "sparkcalc-history-" + d.now().Format("20060102-150405")
	if ext != "" {
		name += "." + ext
	}
	return filepath.Join(d.dir, name), nil
}

func (d *consoleDialogs) Notify(title, msg string, isError bool) {
	d.log.WriteLineString("notice: " + title + ": " + msg)
	prefix := title
	if isError {
		prefix = "error: " + title
	}
	d.c.Println("[" + prefix + "] " + msg)
}
