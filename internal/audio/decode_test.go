package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func pcm16(samples ...int16) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(s))
	}
	return out
}

func TestLoadClip_PCM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "three.pcm")
	if err := os.WriteFile(path, pcm16(1, 2, 3, 4), 0o644); err != nil {
		t.Fatal(err)
	}

	clip, err := LoadClip(path, "three", 44100, 2)
	if err != nil {
		t.Fatalf("LoadClip failed: %v", err)
	}
	if clip.Name != "three" || clip.SampleRate != 44100 || clip.Channels != 2 {
		t.Errorf("unexpected clip: %+v", clip)
	}
	if len(clip.PCM) != 8 {
		t.Errorf("expected 8 bytes of PCM, got %d", len(clip.PCM))
	}
}

func TestLoadClip_Errors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadClip(filepath.Join(dir, "missing.pcm"), "missing", 44100, 2); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}

	wav := filepath.Join(dir, "tone.wav")
	os.WriteFile(wav, []byte("RIFF"), 0o644)
	if _, err := LoadClip(wav, "tone", 44100, 2); !errors.Is(err, ErrInvalidAudioFormat) {
		t.Errorf("expected ErrInvalidAudioFormat for .wav, got %v", err)
	}

	odd := filepath.Join(dir, "odd.pcm")
	os.WriteFile(odd, []byte{1, 2, 3}, 0o644)
	if _, err := LoadClip(odd, "odd", 44100, 2); !errors.Is(err, ErrInvalidAudioFormat) {
		t.Errorf("expected ErrInvalidAudioFormat for partial frame, got %v", err)
	}

	empty := filepath.Join(dir, "empty.pcm")
	os.WriteFile(empty, nil, 0o644)
	if _, err := LoadClip(empty, "empty", 44100, 2); !errors.Is(err, ErrEmptyClip) {
		t.Errorf("expected ErrEmptyClip, got %v", err)
	}
}

func TestDecodeMP3_Invalid(t *testing.T) {
	if _, err := DecodeMP3("nothing", bytes.NewReader(nil)); err == nil {
		t.Error("expected an error decoding empty input")
	}
}

func TestConform(t *testing.T) {
	stereo := &Clip{Name: "s", PCM: pcm16(100, 300, -100, -300), SampleRate: 44100, Channels: 2}

	mono, err := Conform(stereo, 44100, 1)
	if err != nil {
		t.Fatalf("Conform to mono failed: %v", err)
	}
	if !bytes.Equal(mono.PCM, pcm16(200, -200)) {
		t.Errorf("downmix = %v, want %v", mono.PCM, pcm16(200, -200))
	}

	back, err := Conform(mono, 44100, 2)
	if err != nil {
		t.Fatalf("Conform to stereo failed: %v", err)
	}
	if !bytes.Equal(back.PCM, pcm16(200, 200, -200, -200)) {
		t.Errorf("upmix = %v", back.PCM)
	}

	same, _ := Conform(stereo, 44100, 2)
	if same != stereo {
		t.Error("Conform should return the clip unchanged when formats match")
	}

	if _, err := Conform(stereo, 48000, 2); !errors.Is(err, ErrInvalidAudioFormat) {
		t.Errorf("expected ErrInvalidAudioFormat for rate mismatch, got %v", err)
	}
}
