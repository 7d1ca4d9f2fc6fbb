// Package speech provides the optional voice capability of the calculator:
// spoken results through an external text-to-speech command and spoken
// expressions through the microphone plus an external recognizer.
//
// The capability is chosen once at startup. When any piece is missing the
// no-op engine is used and the rest of the application behaves the same.
package speech

import (
	"context"
	"errors"
	"fmt"
	"os/exec"

	"github.com/google/shlex"
)

var (
	// ErrVoiceUnavailable is returned by Listen on the no-op engine.
	ErrVoiceUnavailable = errors.New("voice unavailable")
	// ErrVoiceRecognition means no phrase could be turned into text.
	ErrVoiceRecognition = errors.New("voice not recognized")
)

const (
	DefaultSpeakCommand  = "espeak"
	DefaultListenCommand = "whisper-transcribe"
)

// Engine speaks results and listens for spoken expressions.
type Engine interface {
	Available() bool
	// Say speaks text. Failures are logged and otherwise ignored.
	Say(text string)
	// Listen records one phrase and returns its transcript.
	Listen(ctx context.Context) (string, error)
}

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
}

// Microphone delivers 16-bit mono PCM frames.
type Microphone interface {
	Read(frame []int16) error
	Close() error
}

// OpenFunc opens the default capture device.
type OpenFunc func(sampleRate, frameLen int) (Microphone, error)

// Config selects and parameterizes the engine.
type Config struct {
	Enabled       bool
	SpeakCommand  string
	ListenCommand string
	Log           Logger
	// Open is nil when the build has no capture backend.
	Open OpenFunc
}

// New returns the live engine when the speaker command, the recognizer
// command and the microphone are all usable, and the no-op engine otherwise.
func New(cfg Config) Engine {
	l := logger{cfg.Log}
	if !cfg.Enabled {
		l.logf("voice disabled")
		return Nop()
	}

	speak, err := resolveCommand(cfg.SpeakCommand, DefaultSpeakCommand)
	if err != nil {
		l.logf("speaker unavailable: %v", err)
		return Nop()
	}
	listen, err := resolveCommand(cfg.ListenCommand, DefaultListenCommand)
	if err != nil {
		l.logf("recognizer unavailable: %v", err)
		return Nop()
	}
	if cfg.Open == nil {
		l.logf("microphone unavailable: no capture backend")
		return Nop()
	}
	m, err := cfg.Open(SampleRate, FrameLen)
	if err != nil {
		l.logf("microphone unavailable: %v", err)
		return Nop()
	}
	_ = m.Close()

	l.logf("voice ready: speak=%s listen=%s", speak[0], listen[0])
	return &liveEngine{
		speak:  speak,
		listen: listen,
		open:   cfg.Open,
		log:    l,
		vad:    defaultVAD(),
	}
}

// resolveCommand splits a command line and resolves its program on PATH.
func resolveCommand(line, fallback string) ([]string, error) {
	if line == "" {
		line = fallback
	}
	argv, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", line, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command")
	}
	path, err := exec.LookPath(argv[0])
	if err != nil {
		return nil, err
	}
	argv[0] = path
	return argv, nil
}

type logger struct {
	l Logger
}

func (l logger) logf(format string, args ...any) {
	if l.l == nil {
		return
	}
	l.l.WriteLineString("speech: " + fmt.Sprintf(format, args...))
}

type nopEngine struct{}

// Nop returns the engine used when voice is unavailable.
func Nop() Engine { return nopEngine{} }

func (nopEngine) Available() bool { return false }
func (nopEngine) Say(string)      {}

func (nopEngine) Listen(context.Context) (string, error) {
	return "", ErrVoiceUnavailable
}
