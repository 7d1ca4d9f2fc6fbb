package speech

import (
	"context"
	"fmt"
	"math"
	"time"
)

const (
	// SampleRate is the capture rate in Hz.
	SampleRate = 16000
	// FrameLen is the number of samples per microphone read (20 ms).
	FrameLen = 320
)

// vadParams bounds one phrase capture.
type vadParams struct {
	sampleRate int
	frameLen   int
	threshold  float64

	startTimeout time.Duration
	silence      time.Duration
	maxPhrase    time.Duration
}

func defaultVAD() vadParams {
	return vadParams{
		sampleRate:   SampleRate,
		frameLen:     FrameLen,
		threshold:    300,
		startTimeout: 5 * time.Second,
		silence:      800 * time.Millisecond,
		maxPhrase:    10 * time.Second,
	}
}

func (p vadParams) frames(d time.Duration) int {
	n := int(d * time.Duration(p.sampleRate) / (time.Second * time.Duration(p.frameLen)))
	if n < 1 {
		n = 1
	}
	return n
}

type frameReader interface {
	Read(frame []int16) error
}

// record waits for speech, then captures until enough trailing silence or
// the phrase limit. Durations are counted in frames, not wall time.
func record(ctx context.Context, src frameReader, p vadParams) ([]int16, error) {
	startFrames := p.frames(p.startTimeout)
	silenceFrames := p.frames(p.silence)
	maxFrames := p.frames(p.maxPhrase)

	frame := make([]int16, p.frameLen)
	var pcm []int16
	started := false
	quiet := 0

	for i := 0; ; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrVoiceRecognition, err)
		}
		if err := src.Read(frame); err != nil {
			return nil, fmt.Errorf("%w: read microphone: %v", ErrVoiceRecognition, err)
		}
		loud := rms(frame) >= p.threshold

		if !started {
			if !loud {
				if i+1 >= startFrames {
					return nil, fmt.Errorf("%w: no speech within %s", ErrVoiceRecognition, p.startTimeout)
				}
				continue
			}
			started = true
		}

		pcm = append(pcm, frame...)
		if loud {
			quiet = 0
		} else {
			quiet++
		}
		if quiet >= silenceFrames || len(pcm) >= maxFrames*p.frameLen {
			return pcm, nil
		}
	}
}

func rms(frame []int16) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, s := range frame {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(frame)))
}
