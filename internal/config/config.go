// Package config holds the calculator settings: built-in defaults, an optional
// JSON settings file, command-line overrides and live reload of the file.
package config

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// Config is the merged settings of one run.
type Config struct {
	Theme         string `json:"theme"`
	Scale         int    `json:"scale"`
	SpeakCommand  string `json:"speak_command"`
	ListenCommand string `json:"listen_command"`
	Voice         bool   `json:"voice"`
	LogFile       string `json:"log_file"`
	LogMaxSizeMB  int    `json:"log_max_size_mb"`
	LogMaxBackups int    `json:"log_max_backups"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Theme:         ThemeLight,
		Scale:         2,
		SpeakCommand:  "espeak",
		ListenCommand: "whisper-transcribe",
		Voice:         true,
		LogMaxSizeMB:  10,
		LogMaxBackups: 3,
	}
}

// DefaultPath is settings.json under the user configuration directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "sparkcalc", "settings.json")
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	}
	if err != nil {
		return c, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := decode(b, &c); err != nil {
		return Default(), fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func decode(b []byte, c *Config) error {
	if len(strings.TrimSpace(string(b))) == 0 {
		return nil
	}
	if err := json.Unmarshal(b, c); err != nil {
		return err
	}
	return c.Validate()
}

// Validate checks the fields that have a fixed domain.
func (c *Config) Validate() error {
	switch c.Theme {
	case ThemeLight, ThemeDark:
	default:
		return fmt.Errorf("theme %q: want %q or %q", c.Theme, ThemeLight, ThemeDark)
	}
	if c.Scale < 1 || c.Scale > 8 {
		return fmt.Errorf("scale %d: want 1..8", c.Scale)
	}
	if c.LogMaxSizeMB < 0 || c.LogMaxBackups < 0 {
		return fmt.Errorf("log rotation limits must not be negative")
	}
	return nil
}

// Overrides are the settings flags. Only flags given on the command line
// replace file values.
type Overrides struct {
	fs *flag.FlagSet
	v  Config

	noVoice bool
}

// RegisterFlags defines the settings flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Overrides {
	o := &Overrides{fs: fs}
	d := Default()
	fs.StringVar(&o.v.Theme, "theme", d.Theme, "Start theme: light or dark.")
	fs.IntVar(&o.v.Scale, "scale", d.Scale, "Window scale factor.")
	fs.StringVar(&o.v.SpeakCommand, "speak-cmd", d.SpeakCommand, "Text-to-speech command; the text is passed as the last argument.")
	fs.StringVar(&o.v.ListenCommand, "listen-cmd", d.ListenCommand, "Speech recognizer command; a WAV path is passed as the last argument.")
	fs.StringVar(&o.v.LogFile, "log-file", "", "Write logs to a size-rotated file.")
	fs.BoolVar(&o.noVoice, "no-voice", false, "Disable voice input and output.")
	return o
}

// Apply copies every explicitly set flag into c.
func (o *Overrides) Apply(c *Config) {
	o.fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "theme":
			c.Theme = o.v.Theme
		case "scale":
			c.Scale = o.v.Scale
		case "speak-cmd":
			c.SpeakCommand = o.v.SpeakCommand
		case "listen-cmd":
			c.ListenCommand = o.v.ListenCommand
		case "log-file":
			c.LogFile = o.v.LogFile
		case "no-voice":
			if o.noVoice {
				c.Voice = false
			}
		}
	})
}
