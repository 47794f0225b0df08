package audio

import (
	"errors"
	"fmt"
	"time"
)

// Common errors for audio devices.
var (
	ErrDeviceClosed       = errors.New("audio device is closed")
	ErrDeviceBusy         = errors.New("audio device is already playing")
	ErrBackendUnavailable = errors.New("audio backend not available in this build")
	ErrInvalidAudioFormat = errors.New("invalid audio format")
	ErrEmptyClip          = errors.New("clip has no audio data")
)

// Clip is one indivisible spoken segment: signed 16-bit little endian PCM,
// interleaved when Channels is 2. Clips are shared and must not be mutated
// after loading.
type Clip struct {
	Name       string
	PCM        []byte
	SampleRate int
	Channels   int
}

// Duration returns the playing time of the clip.
func (c *Clip) Duration() time.Duration {
	if c == nil || c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	frames := len(c.PCM) / (c.Channels * 2)
	return time.Duration(frames) * time.Second / time.Duration(c.SampleRate)
}

// String returns the clip name.
func (c *Clip) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.Name
}

// Device plays a single clip and calls onFinished exactly once when the
// clip has finished. onFinished may be called from any goroutine and must
// not block.
type Device interface {
	Play(clip *Clip, onFinished func()) error
}

// checkFormat verifies that clip can be played by a device configured with
// the given sample rate and channel count.
func checkFormat(clip *Clip, sampleRate, channels int) error {
	if clip == nil || len(clip.PCM) == 0 {
		return ErrEmptyClip
	}
	if clip.SampleRate != sampleRate || clip.Channels != channels {
		return fmt.Errorf("%w: clip %q is %d Hz/%d ch, device is %d Hz/%d ch",
			ErrInvalidAudioFormat, clip.Name, clip.SampleRate, clip.Channels, sampleRate, channels)
	}
	if len(clip.PCM)%(channels*2) != 0 {
		return fmt.Errorf("%w: clip %q has a partial frame", ErrInvalidAudioFormat, clip.Name)
	}
	return nil
}
