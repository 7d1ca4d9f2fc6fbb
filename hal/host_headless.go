package hal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Enabled bool
	Hz      int
	Ticks   uint64
	// Input is read line by line as typed text; nil means no input.
	Input io.Reader
	// Output receives the console; nil means os.Stdout.
	Output *os.File
	// ExitOnEOF stops the runner once Input is exhausted.
	ExitOnEOF bool
}

// RunHeadless runs the calculator without opening a window. Each input line is
// typed followed by Enter, and the status line is written to the console.
func RunHeadless(ctx context.Context, opts Options, newApp func(HAL) func() error, cfg HeadlessConfig) error {
	if cfg.Hz <= 0 {
		cfg.Hz = 60
	}
	d := time.Second / time.Duration(cfg.Hz)
	if d <= 0 {
		return fmt.Errorf("invalid headless hz: %d", cfg.Hz)
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	h := newHost(opts, os.Stderr)
	defer h.close()
	console := newHostConsole(out)
	wd, err := os.Getwd()
	if err != nil {
		wd = "."
	}
	h.console = console
	h.dialogs = &consoleDialogs{c: console, log: h.logger, dir: wd, now: time.Now}
	step := newApp(h)

	eof := make(chan struct{})
	if cfg.Input != nil {
		go func() {
			defer close(eof)
			sc := bufio.NewScanner(cfg.Input)
			for sc.Scan() {
				h.kbd.typeLine(sc.Text())
			}
			if err := sc.Err(); err != nil {
				h.logger.WriteLineString("headless: read input: " + err.Error())
			}
		}()
	}

	t := time.NewTicker(d)
	defer t.Stop()

	var tick uint64
	inputDone := false
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-eof:
			inputDone = true
			eof = nil
		case now := <-t.C:
			h.t.advance(now)
			if step != nil {
				if err := step(); err != nil {
					return err
				}
			}
			tick++
			if cfg.Ticks > 0 && tick >= cfg.Ticks {
				return nil
			}
			if cfg.ExitOnEOF && inputDone && len(h.kbd.ch) == 0 {
				return nil
			}
		}
	}
}
