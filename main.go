package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"sparkcalc/app"
	"sparkcalc/hal"
	"sparkcalc/internal/buildinfo"
	"sparkcalc/internal/config"
	"sparkcalc/speech"
	"sparkcalc/speech/mic"

	"github.com/mattn/go-isatty"
)

func main() {
	var cfg hal.HeadlessConfig
	var showVersion bool
	flag.BoolVar(&cfg.Enabled, "headless", false, "Run without a window; type expressions on stdin.")
	flag.IntVar(&cfg.Hz, "hz", 60, "Tick rate in headless mode.")
	flag.Uint64Var(&cfg.Ticks, "ticks", 0, "Stop after N ticks in headless mode (0 = run forever).")
	flag.BoolVar(&showVersion, "version", false, "Print the build and exit.")
	settingsPath := flag.String("config", config.DefaultPath(), "Settings file (JSON).")
	overrides := config.RegisterFlags(flag.CommandLine)
	flag.Parse()

	if showVersion {
		fmt.Println(buildinfo.String())
		return
	}

	settings, err := config.Load(*settingsPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	overrides.Apply(&settings)
	if err := settings.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "sparkcalc:", err)
		os.Exit(2)
	}

	opts := hal.Options{
		Scale: settings.Scale,
		Title: "SparkCalc (" + buildinfo.Short() + ")",
		Log: hal.LogConfig{
			File:       settings.LogFile,
			MaxSizeMB:  settings.LogMaxSizeMB,
			MaxBackups: settings.LogMaxBackups,
		},
	}
	var running *app.App
	newApp := func(h hal.HAL) func() error {
		h.Logger().WriteLineString(buildinfo.String())
		running = app.New(h, app.Config{
			Settings:       settings,
			SettingsPath:   *settingsPath,
			OpenMicrophone: openMicrophone,
		})
		return running.Step
	}

	err = run(opts, newApp, cfg)
	if running != nil {
		if cerr := running.Close(); cerr != nil {
			fmt.Fprintln(os.Stderr, cerr)
		}
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(opts hal.Options, newApp func(hal.HAL) func() error, cfg hal.HeadlessConfig) error {
	if !cfg.Enabled {
		return hal.RunWindow(opts, newApp)
	}
	cfg.Input = os.Stdin
	cfg.ExitOnEOF = !isatty.IsTerminal(os.Stdin.Fd()) && !isatty.IsCygwinTerminal(os.Stdin.Fd())
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return hal.RunHeadless(ctx, opts, newApp, cfg)
}

func openMicrophone(sampleRate, frameLen int) (speech.Microphone, error) {
	s, err := mic.Open(sampleRate, frameLen)
	if err != nil {
		return nil, err
	}
	return s, nil
}
