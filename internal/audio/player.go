package audio

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/ebitengine/oto/v3"
)

// Player is a Device that plays clips through oto.
// Only one oto context may exist per process, so create one Player.
type Player struct {
	// OTO context - initialized once and reused
	context *oto.Context

	// Current playback
	player *oto.Player

	// CRITICAL: Keep clip data alive during playback
	active *Clip

	// State management
	state  atomic.Int32  // PlayerState
	volume atomic.Uint64 // volume * 1e6

	// Synchronization
	mu sync.Mutex
	wg sync.WaitGroup

	// Configuration
	sampleRate   int
	channels     int
	bitDepth     int
	bufferSize   int
	pollInterval time.Duration
}

// PlayerConfig contains configuration for the audio player.
type PlayerConfig struct {
	SampleRate   int           // 44100 or 48000 Hz only
	Channels     int           // 1 = mono, 2 = stereo
	BitDepth     int           // 16 bits per sample
	BufferSize   int           // Buffer size for streaming
	PollInterval time.Duration // How often completion is checked
}

// DefaultPlayerConfig returns the default player configuration.
func DefaultPlayerConfig() PlayerConfig {
	return PlayerConfig{
		SampleRate:   44100, // CD quality
		Channels:     2,     // Decoded MP3 segments are stereo
		BitDepth:     16,    // Standard bit depth
		BufferSize:   4096,  // 4KB buffer
		PollInterval: 10 * time.Millisecond,
	}
}

// NewPlayer opens the default output device.
func NewPlayer(config PlayerConfig) (*Player, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	op := &oto.NewContextOptions{
		SampleRate:   config.SampleRate,
		ChannelCount: config.Channels,
		Format:       oto.FormatSignedInt16LE, // 16-bit little endian
		BufferSize:   time.Duration(config.BufferSize) * time.Second / time.Duration(config.SampleRate*config.Channels*2),
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to create oto context: %w", err)
	}

	// Wait for context to be ready
	<-readyChan

	p := &Player{
		context:      ctx,
		sampleRate:   config.SampleRate,
		channels:     config.Channels,
		bitDepth:     config.BitDepth,
		bufferSize:   config.BufferSize,
		pollInterval: config.PollInterval,
	}
	if p.pollInterval <= 0 {
		p.pollInterval = DefaultPlayerConfig().PollInterval
	}

	p.state.Store(int32(StateStopped))
	p.SetVolume(1.0) // Full volume by default

	return p, nil
}

// ValidateConfig validates a player configuration.
func ValidateConfig(config PlayerConfig) error {
	// OTO only supports specific sample rates reliably
	if config.SampleRate != 44100 && config.SampleRate != 48000 {
		return fmt.Errorf("sample rate must be 44100 or 48000 Hz, got %d", config.SampleRate)
	}

	if config.Channels != 1 && config.Channels != 2 {
		return fmt.Errorf("channels must be 1 (mono) or 2 (stereo), got %d", config.Channels)
	}

	if config.BitDepth != 16 {
		return fmt.Errorf("bit depth must be 16, got %d", config.BitDepth)
	}

	if config.BufferSize <= 0 {
		return errors.New("buffer size must be positive")
	}

	return nil
}

// Play starts clip and calls onFinished from a watcher goroutine once oto
// has drained it. It fails with ErrDeviceBusy if a clip is still playing.
func (p *Player) Play(clip *Clip, onFinished func()) error {
	if err := checkFormat(clip, p.sampleRate, p.channels); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	switch PlayerState(p.state.Load()) {
	case StateClosed:
		return ErrDeviceClosed
	case StatePlaying:
		return ErrDeviceBusy
	}

	player := p.context.NewPlayer(bytes.NewReader(clip.PCM))
	if player == nil {
		return errors.New("failed to create oto player")
	}
	player.SetVolume(p.getVolume())

	// Store references to prevent GC
	p.player = player
	p.active = clip
	p.state.Store(int32(StatePlaying))

	player.Play()

	p.wg.Add(1)
	go p.watch(player, clip, onFinished)

	return nil
}

// watch polls until player has drained, releases it, then reports
// completion.
func (p *Player) watch(player *oto.Player, clip *Clip, onFinished func()) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for range ticker.C {
		if !player.IsPlaying() {
			break
		}
	}

	if err := player.Err(); err != nil {
		log.Warn("Playback error", "segment", clip, "err", err)
	}

	p.mu.Lock()
	if p.player == player {
		player.Close()
		p.player = nil
		p.active = nil
		if PlayerState(p.state.Load()) == StatePlaying {
			p.state.Store(int32(StateStopped))
		}
	}
	p.mu.Unlock()

	onFinished()
}

// Stop cuts off the current clip. Its completion is still reported.
func (p *Player) Stop() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.player != nil {
		p.player.Pause()
	}
	return nil
}

// IsPlaying returns whether a clip is currently playing.
func (p *Player) IsPlaying() bool {
	return PlayerState(p.state.Load()) == StatePlaying
}

// SetVolume sets the playback volume (0.0 to 1.0).
func (p *Player) SetVolume(volume float64) error {
	if volume < 0.0 || volume > 1.0 {
		return fmt.Errorf("volume must be between 0.0 and 1.0, got %f", volume)
	}

	p.volume.Store(uint64(volume * 1000000))

	p.mu.Lock()
	if p.player != nil {
		p.player.SetVolume(volume)
	}
	p.mu.Unlock()

	return nil
}

func (p *Player) getVolume() float64 {
	return float64(p.volume.Load()) / 1000000.0
}

// GetVolume returns the current volume.
func (p *Player) GetVolume() float64 {
	return p.getVolume()
}

// GetState returns the current player state.
func (p *Player) GetState() PlayerState {
	return PlayerState(p.state.Load())
}

// Close stops playback and waits for the watcher to report completion.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.player != nil {
		p.player.Pause()
	}
	p.state.Store(int32(StateClosed))
	p.mu.Unlock()

	p.wg.Wait()

	p.mu.Lock()
	// oto.Context has no Close in v3; dropping the reference is all we can do
	p.context = nil
	p.mu.Unlock()

	return nil
}
