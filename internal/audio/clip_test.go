package audio

import (
	"errors"
	"testing"
	"time"
)

// testClip returns a silent 44.1 kHz stereo clip of roughly duration d.
func testClip(name string, d time.Duration) *Clip {
	frames := int(d.Seconds() * 44100)
	if frames == 0 {
		frames = 1
	}
	return &Clip{Name: name, PCM: make([]byte, frames*4), SampleRate: 44100, Channels: 2}
}

func TestClipDuration(t *testing.T) {
	tests := []struct {
		name string
		clip *Clip
		want time.Duration
	}{
		{"one second stereo", &Clip{PCM: make([]byte, 44100*4), SampleRate: 44100, Channels: 2}, time.Second},
		{"half second mono", &Clip{PCM: make([]byte, 24000*2), SampleRate: 48000, Channels: 1}, 500 * time.Millisecond},
		{"no format", &Clip{PCM: make([]byte, 100)}, 0},
		{"nil", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.clip.Duration(); got != tt.want {
				t.Errorf("Duration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCheckFormat(t *testing.T) {
	good := testClip("ok", 10*time.Millisecond)
	if err := checkFormat(good, 44100, 2); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	if err := checkFormat(nil, 44100, 2); !errors.Is(err, ErrEmptyClip) {
		t.Errorf("nil clip: expected ErrEmptyClip, got %v", err)
	}

	if err := checkFormat(good, 48000, 2); !errors.Is(err, ErrInvalidAudioFormat) {
		t.Errorf("rate mismatch: expected ErrInvalidAudioFormat, got %v", err)
	}

	partial := &Clip{Name: "partial", PCM: make([]byte, 6), SampleRate: 44100, Channels: 2}
	if err := checkFormat(partial, 44100, 2); !errors.Is(err, ErrInvalidAudioFormat) {
		t.Errorf("partial frame: expected ErrInvalidAudioFormat, got %v", err)
	}
}
