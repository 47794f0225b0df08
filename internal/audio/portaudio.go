//go:build portaudio

package audio

import (
	"encoding/binary"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
)

// framesPerBuffer is the blocking write size of the portaudio stream.
const framesPerBuffer = 1024

// StreamPlayer is a Device that writes clips to a blocking portaudio
// output stream.
type StreamPlayer struct {
	stream      *portaudio.Stream
	audioBuffer []int16
	config      PlayerConfig

	mu     sync.Mutex
	busy   bool
	closed bool
	wg     sync.WaitGroup
}

// NewStreamPlayer initializes portaudio and opens the default output.
func NewStreamPlayer(config PlayerConfig) (*StreamPlayer, error) {
	if err := ValidateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	p := &StreamPlayer{
		config:      config,
		audioBuffer: make([]int16, framesPerBuffer*config.Channels),
	}

	stream, err := portaudio.OpenDefaultStream(
		0,
		config.Channels,
		float64(config.SampleRate),
		framesPerBuffer,
		p.audioBuffer,
	)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start stream: %w", err)
	}

	p.stream = stream
	return p, nil
}

// Play writes clip to the stream on a background goroutine and calls
// onFinished once the last buffer has been accepted.
func (p *StreamPlayer) Play(clip *Clip, onFinished func()) error {
	if err := checkFormat(clip, p.config.SampleRate, p.config.Channels); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return ErrDeviceClosed
	}
	if p.busy {
		return ErrDeviceBusy
	}
	p.busy = true

	p.wg.Add(1)
	go p.write(clip, onFinished)
	return nil
}

func (p *StreamPlayer) write(clip *Clip, onFinished func()) {
	defer p.wg.Done()

	samples := convertBytesToSamples(clip.PCM)
	bufferLen := len(p.audioBuffer)

	for off := 0; off < len(samples); off += bufferLen {
		n := copy(p.audioBuffer, samples[off:])
		// Zero-fill the tail of the last buffer
		for i := n; i < bufferLen; i++ {
			p.audioBuffer[i] = 0
		}
		if err := p.stream.Write(); err != nil {
			log.Warn("Error writing audio", "segment", clip, "err", err)
			break
		}
	}

	p.mu.Lock()
	p.busy = false
	p.mu.Unlock()

	onFinished()
}

func convertBytesToSamples(audioBytes []byte) []int16 {
	samples := make([]int16, len(audioBytes)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(audioBytes[i*2 : i*2+2]))
	}
	return samples
}

// Close waits for the current clip, then closes the stream and terminates
// portaudio.
func (p *StreamPlayer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	p.wg.Wait()

	var err error
	if p.stream != nil {
		p.stream.Stop()
		err = p.stream.Close()
	}
	portaudio.Terminate()
	return err
}
