package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/go-mp3"
)

// DecodeMP3 decodes an MP3 stream into a 16-bit stereo clip at the
// stream's native sample rate.
func DecodeMP3(name string, r io.Reader) (*Clip, error) {
	d, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}

	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("decode %s: %w", name, ErrEmptyClip)
	}

	// go-mp3 always produces 16-bit little endian stereo
	return &Clip{Name: name, PCM: pcm, SampleRate: d.SampleRate(), Channels: 2}, nil
}

// NewPCMClip wraps raw 16-bit little endian PCM.
func NewPCMClip(name string, pcm []byte, sampleRate, channels int) (*Clip, error) {
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%s: %w", name, ErrEmptyClip)
	}
	if channels != 1 && channels != 2 {
		return nil, fmt.Errorf("%w: %s has %d channels", ErrInvalidAudioFormat, name, channels)
	}
	if len(pcm)%(channels*2) != 0 {
		return nil, fmt.Errorf("%w: %s has a partial frame", ErrInvalidAudioFormat, name)
	}
	return &Clip{Name: name, PCM: pcm, SampleRate: sampleRate, Channels: channels}, nil
}

// LoadClip reads a segment file and converts it to the given output format.
// .mp3 files are decoded; .pcm and .raw files are taken to be 16-bit little
// endian PCM already at sampleRate with the given channel count.
func LoadClip(path, name string, sampleRate, channels int) (*Clip, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeClip(path, name, data, sampleRate, channels)
}

// DecodeClip is LoadClip for data already in memory. path only selects the
// decoder by extension.
func DecodeClip(path, name string, data []byte, sampleRate, channels int) (*Clip, error) {
	var (
		clip *Clip
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".mp3":
		clip, err = DecodeMP3(name, bytes.NewReader(data))
	case ".pcm", ".raw":
		clip, err = NewPCMClip(name, data, sampleRate, channels)
	default:
		return nil, fmt.Errorf("%w: unsupported segment file type %q", ErrInvalidAudioFormat, ext)
	}
	if err != nil {
		return nil, err
	}

	return Conform(clip, sampleRate, channels)
}

// Conform returns clip in the given format, converting between mono and
// stereo if needed. Resampling is not supported.
func Conform(clip *Clip, sampleRate, channels int) (*Clip, error) {
	if clip.SampleRate != sampleRate {
		return nil, fmt.Errorf("%w: %s is %d Hz, output is %d Hz",
			ErrInvalidAudioFormat, clip.Name, clip.SampleRate, sampleRate)
	}

	switch {
	case clip.Channels == channels:
		return clip, nil
	case clip.Channels == 2 && channels == 1:
		return &Clip{Name: clip.Name, PCM: downmix(clip.PCM), SampleRate: sampleRate, Channels: 1}, nil
	case clip.Channels == 1 && channels == 2:
		return &Clip{Name: clip.Name, PCM: upmix(clip.PCM), SampleRate: sampleRate, Channels: 2}, nil
	default:
		return nil, fmt.Errorf("%w: cannot convert %d channels to %d", ErrInvalidAudioFormat, clip.Channels, channels)
	}
}

// downmix averages interleaved stereo frames into mono.
func downmix(stereo []byte) []byte {
	frames := len(stereo) / 4
	out := make([]byte, frames*2)
	for i := 0; i < frames; i++ {
		l := int32(int16(binary.LittleEndian.Uint16(stereo[i*4:])))
		r := int32(int16(binary.LittleEndian.Uint16(stereo[i*4+2:])))
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16((l+r)/2)))
	}
	return out
}

// upmix duplicates each mono sample into both stereo channels.
func upmix(mono []byte) []byte {
	frames := len(mono) / 2
	out := make([]byte, frames*4)
	for i := 0; i < frames; i++ {
		copy(out[i*4:], mono[i*2:i*2+2])
		copy(out[i*4+2:], mono[i*2:i*2+2])
	}
	return out
}
