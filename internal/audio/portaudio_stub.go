//go:build !portaudio

package audio

import "fmt"

// StreamPlayer is unavailable without the portaudio build tag.
type StreamPlayer struct{}

// NewStreamPlayer always fails in this build.
func NewStreamPlayer(PlayerConfig) (*StreamPlayer, error) {
	return nil, fmt.Errorf("portaudio: %w (rebuild with -tags portaudio)", ErrBackendUnavailable)
}

// Play always fails in this build.
func (*StreamPlayer) Play(*Clip, func()) error {
	return ErrBackendUnavailable
}

// Close is a no-op.
func (*StreamPlayer) Close() error {
	return nil
}
