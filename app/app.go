// Package app wires the host, the settings, the speech engine, the
// calculator and the window into the step function driven by a runner.
package app

import (
	"fmt"
	"os"

	"sparkcalc/calc"
	"sparkcalc/hal"
	"sparkcalc/internal/config"
	"sparkcalc/speech"
	"sparkcalc/ui"
)

// maxEventsPerStep bounds the input handled in one step so rendering keeps up.
const maxEventsPerStep = 256

// Config is the startup configuration of the application.
type Config struct {
	Settings config.Config
	// SettingsPath is watched for live changes when the file exists.
	SettingsPath string
	// OpenMicrophone is nil in builds without audio capture.
	OpenMicrophone speech.OpenFunc
	// Voice overrides engine selection; used by tests.
	Voice speech.Engine
}

// App is the running calculator. The runner calls Step once per frame and
// Close after the last step.
type App struct {
	h    hal.HAL
	log  hal.Logger
	task *ui.Task

	keys  <-chan hal.KeyEvent
	ptrs  <-chan hal.PointerEvent
	ticks <-chan uint64

	watcher *config.Watcher

	panics int
	fatal  error
}

// New builds the application on h.
func New(h hal.HAL, cfg Config) *App {
	log := h.Logger()
	logf(log, "starting: theme=%s voice=%v", cfg.Settings.Theme, cfg.Settings.Voice)

	eng := cfg.Voice
	if eng == nil {
		eng = speech.New(speech.Config{
			Enabled:       cfg.Settings.Voice,
			SpeakCommand:  cfg.Settings.SpeakCommand,
			ListenCommand: cfg.Settings.ListenCommand,
			Log:           log,
			Open:          cfg.OpenMicrophone,
		})
	}

	opts := ui.Options{
		Calc:  calc.New(eng, log),
		Voice: eng,
		Log:   log,
		Theme: cfg.Settings.Theme,
	}
	if d := h.Dialogs(); d != nil {
		opts.Notifier = d
		opts.Files = d
	}
	if c := h.Console(); c != nil {
		opts.Console = c
	}

	a := &App{
		h:    h,
		log:  log,
		task: ui.New(h.Display(), opts),
	}
	if in := h.Input(); in != nil {
		if k := in.Keyboard(); k != nil {
			a.keys = k.Events()
		}
		if p := in.Pointer(); p != nil {
			a.ptrs = p.Events()
		}
	}
	if t := h.Time(); t != nil {
		a.ticks = t.Ticks()
	}

	if cfg.SettingsPath != "" {
		if _, err := os.Stat(cfg.SettingsPath); err == nil {
			w, err := config.Watch(cfg.SettingsPath)
			if err != nil {
				logf(log, "settings reload disabled: %v", err)
			} else {
				a.watcher = w
			}
		}
	}
	return a
}

// Close stops the settings watcher. It is safe to call more than once.
func (a *App) Close() error {
	if a.watcher == nil {
		return nil
	}
	err := a.watcher.Close()
	a.watcher = nil
	return err
}

func logf(l hal.Logger, format string, args ...any) {
	if l == nil {
		return
	}
	l.WriteLineString("app: " + fmt.Sprintf(format, args...))
}

// Step handles everything queued since the previous step, then renders.
func (a *App) Step() (err error) {
	if a.fatal != nil {
		return a.fatal
	}
	defer func() {
		if r := recover(); r != nil {
			a.recoverPanic(r)
			err = a.fatal
		}
	}()

	for i := 0; i < maxEventsPerStep; i++ {
		select {
		case ev := <-a.keys:
			a.task.HandleKey(ev)
			continue
		case ev := <-a.ptrs:
			a.task.HandlePointer(ev)
			continue
		default:
		}
		break
	}

	a.drainTicks()
	a.applySettings()
	a.task.Render()
	return nil
}

func (a *App) drainTicks() {
	var last uint64
	for {
		select {
		case seq := <-a.ticks:
			last = seq
			continue
		default:
		}
		break
	}
	if last != 0 {
		a.task.Tick(last)
	}
}

func (a *App) applySettings() {
	if a.watcher == nil {
		return
	}
	for {
		select {
		case c := <-a.watcher.Updates():
			logf(a.log, "settings reloaded: theme=%s", c.Theme)
			a.task.SetTheme(c.Theme)
			continue
		case err := <-a.watcher.Errors():
			logf(a.log, "settings: %v", err)
			continue
		default:
		}
		return
	}
}
