package speech

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// recognizeTimeout bounds one run of the recognizer command.
const recognizeTimeout = 30 * time.Second

type liveEngine struct {
	speak  []string
	listen []string
	open   OpenFunc
	log    logger
	vad    vadParams
}

func (e *liveEngine) Available() bool { return true }

func (e *liveEngine) Say(text string) {
	if text == "" {
		return
	}
	cmd := e.command(context.Background(), e.speak, text)
	if err := cmd.Start(); err != nil {
		e.log.logf("say: %v", err)
		return
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			e.log.logf("say %q: %v", text, err)
		}
	}()
}

// sayWait speaks text and returns once the speaker command exits.
func (e *liveEngine) sayWait(ctx context.Context, text string) {
	if err := e.command(ctx, e.speak, text).Run(); err != nil {
		e.log.logf("say %q: %v", text, err)
	}
}

func (e *liveEngine) Listen(ctx context.Context) (string, error) {
	e.sayWait(ctx, "Listening")

	m, err := e.open(SampleRate, FrameLen)
	if err != nil {
		return "", fmt.Errorf("%w: open microphone: %v", ErrVoiceUnavailable, err)
	}
	pcm, err := record(ctx, m, e.vad)
	if cerr := m.Close(); cerr != nil {
		e.log.logf("close microphone: %v", cerr)
	}
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "sparkcalc-*.wav")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrVoiceRecognition, err)
	}
	path := f.Name()
	defer os.Remove(path)
	werr := WriteWAV(f, SampleRate, pcm)
	if cerr := f.Close(); werr == nil {
		werr = cerr
	}
	if werr != nil {
		return "", fmt.Errorf("%w: write %s: %v", ErrVoiceRecognition, path, werr)
	}

	ctx, cancel := context.WithTimeout(ctx, recognizeTimeout)
	defer cancel()
	var stdout, stderr bytes.Buffer
	cmd := e.command(ctx, e.listen, path)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		e.log.logf("recognizer: %v: %s", err, strings.TrimSpace(stderr.String()))
		return "", fmt.Errorf("%w: %v", ErrVoiceRecognition, err)
	}
	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return "", fmt.Errorf("%w: empty transcript", ErrVoiceRecognition)
	}
	e.log.logf("heard %q", text)
	return text, nil
}

func (e *liveEngine) command(ctx context.Context, argv []string, arg string) *exec.Cmd {
	args := append(append([]string(nil), argv[1:]...), arg)
	return exec.CommandContext(ctx, argv[0], args...)
}
