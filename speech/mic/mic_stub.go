//go:build !cgo

package mic

import "errors"

// ErrUnavailable is returned by Open in builds without cgo.
var ErrUnavailable = errors.New("mic: capture requires cgo (build with CGO_ENABLED=1)")

// Stream is never returned in builds without cgo.
type Stream struct{}

func Open(sampleRate, frameLen int) (*Stream, error) {
	return nil, ErrUnavailable
}

func (m *Stream) Read(frame []int16) error { return ErrUnavailable }
func (m *Stream) Close() error             { return nil }
