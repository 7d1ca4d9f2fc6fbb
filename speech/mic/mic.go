//go:build cgo

// Package mic captures microphone audio through PortAudio.
package mic

import (
	"fmt"
	"sync"

	pa "github.com/gordonklaus/portaudio"
)

var initMu sync.Mutex

// Stream is an open 16-bit mono input stream on the default device.
type Stream struct {
	s   *pa.Stream
	buf []int16
}

// Open initializes PortAudio and starts capturing from the default input device.
func Open(sampleRate, frameLen int) (*Stream, error) {
	initMu.Lock()
	defer initMu.Unlock()

	if err := pa.Initialize(); err != nil {
		return nil, fmt.Errorf("mic: init portaudio: %w", err)
	}
	if _, err := pa.DefaultInputDevice(); err != nil {
		_ = pa.Terminate()
		return nil, fmt.Errorf("mic: no default input device: %w", err)
	}
	buf := make([]int16, frameLen)
	s, err := pa.OpenDefaultStream(1, 0, float64(sampleRate), frameLen, buf)
	if err != nil {
		_ = pa.Terminate()
		return nil, fmt.Errorf("mic: open stream: %w", err)
	}
	if err := s.Start(); err != nil {
		_ = s.Close()
		_ = pa.Terminate()
		return nil, fmt.Errorf("mic: start stream: %w", err)
	}
	return &Stream{s: s, buf: buf}, nil
}

// Read blocks until len(frame) samples are captured. frame must have the
// frame length passed to Open.
func (m *Stream) Read(frame []int16) error {
	if err := m.s.Read(); err != nil {
		return fmt.Errorf("mic: read: %w", err)
	}
	copy(frame, m.buf)
	return nil
}

// Close stops the stream and releases PortAudio.
func (m *Stream) Close() error {
	initMu.Lock()
	defer initMu.Unlock()

	err := m.s.Stop()
	if cerr := m.s.Close(); err == nil {
		err = cerr
	}
	if terr := pa.Terminate(); err == nil {
		err = terr
	}
	if err != nil {
		return fmt.Errorf("mic: close: %w", err)
	}
	return nil
}
