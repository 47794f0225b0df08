package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"
)

var (
	// ErrBusy is returned by SetSequence and Start while a sequence is playing.
	ErrBusy = errors.New("sequencer is playing")

	// ErrNoSequence is the panic value for Start without a playable segment.
	// It signals a programming error in the caller, not a runtime condition.
	ErrNoSequence = errors.New("no segment to play")

	// ErrSequencerClosed is returned after Close.
	ErrSequencerClosed = errors.New("sequencer is closed")
)

// SequencerState is the playback state of a Sequencer.
type SequencerState int32

const (
	// SequencerIdle has no sequence loaded.
	SequencerIdle SequencerState = iota
	// SequencerReady has a sequence loaded that has not been started.
	SequencerReady
	// SequencerPlaying is working through a sequence.
	SequencerPlaying
)

// String returns the string representation of the state.
func (s SequencerState) String() string {
	switch s {
	case SequencerIdle:
		return "idle"
	case SequencerReady:
		return "ready"
	case SequencerPlaying:
		return "playing"
	default:
		return fmt.Sprintf("unknown(%d)", s)
	}
}

// SequencerStats tracks sequencer activity.
type SequencerStats struct {
	SegmentsStarted    int64
	SegmentsFinished   int64
	SequencesCompleted int64
	SequencesAbandoned int64
	BusyRejections     int64
}

// segmentDone is posted by the device callback. generation ties it to the
// segment it belongs to so late or duplicate callbacks are ignored.
type segmentDone struct {
	generation uint64
}

// Sequencer plays an ordered list of clips on a Device with no overlap and
// no gaps beyond device latency. Device completion callbacks only post an
// event; advancing to the next clip happens on the sequencer's own
// goroutine so device APIs are never re-entered from their callbacks.
type Sequencer struct {
	device Device
	onIdle func()

	mu         sync.Mutex
	clips      []*Clip
	index      int
	state      SequencerState
	generation uint64
	closed     bool
	stats      SequencerStats

	events    chan segmentDone
	done      chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewSequencer creates a sequencer that plays on device. onIdle, if not nil,
// is called without any sequencer lock held each time a sequence ends,
// whether it completed or was abandoned after a device error.
func NewSequencer(device Device, onIdle func()) *Sequencer {
	s := &Sequencer{
		device: device,
		onIdle: onIdle,
		events: make(chan segmentDone, 8),
		done:   make(chan struct{}),
	}

	s.wg.Add(1)
	go s.run()

	return s
}

// SetSequence loads clips for playback, resetting the position to the first
// clip. It returns ErrBusy while a sequence is playing.
func (s *Sequencer) SetSequence(clips []*Clip) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSequencerClosed
	}
	if s.state == SequencerPlaying {
		s.stats.BusyRejections++
		return ErrBusy
	}

	s.clips = clips
	s.index = 0
	s.state = SequencerReady
	return nil
}

// Start plays the clip at the current position. The remaining clips follow
// automatically. Start panics with ErrNoSequence if no sequence is loaded or
// the loaded one has already been played through.
//
// If the device refuses the clip the sequence is abandoned, the sequencer
// goes idle and the error is returned.
func (s *Sequencer) Start() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSequencerClosed
	}
	if s.state == SequencerPlaying {
		s.stats.BusyRejections++
		s.mu.Unlock()
		return ErrBusy
	}
	if s.clips == nil || s.index >= len(s.clips) {
		pos, n := s.index, len(s.clips)
		s.mu.Unlock()
		panic(fmt.Errorf("audio: Start at position %d of %d: %w", pos, n, ErrNoSequence))
	}
	err := s.startLocked()
	s.mu.Unlock()

	if err != nil {
		s.notifyIdle()
	}
	return err
}

// IsPlaying reports whether a sequence is in progress.
func (s *Sequencer) IsPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == SequencerPlaying
}

// State returns the current state.
func (s *Sequencer) State() SequencerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Stats returns current sequencer statistics.
func (s *Sequencer) Stats() SequencerStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

// Close stops the event goroutine. A clip already handed to the device is
// not interrupted but its completion is ignored.
func (s *Sequencer) Close() error {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		s.closed = true
		s.mu.Unlock()

		close(s.done)
		s.wg.Wait()
	})
	return nil
}

// startLocked hands the current clip to the device. Caller holds mu and
// has checked that the position is in range.
func (s *Sequencer) startLocked() error {
	s.generation++
	gen := s.generation
	clip := s.clips[s.index]
	s.state = SequencerPlaying

	if err := s.device.Play(clip, func() { s.post(gen) }); err != nil {
		pos := s.index
		s.abandonLocked()
		return fmt.Errorf("play segment %d (%s): %w", pos, clip, err)
	}

	s.stats.SegmentsStarted++
	log.Debug("Segment started", "position", s.index, "of", len(s.clips), "segment", clip, "duration", clip.Duration())
	return nil
}

// abandonLocked drops the current sequence after a failure. Caller holds mu.
func (s *Sequencer) abandonLocked() {
	s.clips = nil
	s.index = 0
	s.state = SequencerIdle
	s.stats.SequencesAbandoned++
}

// post is the device completion callback. It never blocks.
func (s *Sequencer) post(gen uint64) {
	select {
	case s.events <- segmentDone{generation: gen}:
	case <-s.done:
	default:
		log.Warn("Dropping segment completion, event buffer full", "generation", gen)
	}
}

func (s *Sequencer) run() {
	defer s.wg.Done()

	for {
		select {
		case <-s.done:
			return
		case ev := <-s.events:
			s.segmentFinished(ev)
		}
	}
}

// segmentFinished advances to the next clip or ends the sequence.
func (s *Sequencer) segmentFinished(ev segmentDone) {
	s.mu.Lock()

	if ev.generation != s.generation || s.state != SequencerPlaying {
		s.mu.Unlock()
		log.Debug("Ignoring stale segment completion", "generation", ev.generation)
		return
	}

	s.stats.SegmentsFinished++
	s.index++

	if s.index < len(s.clips) {
		err := s.startLocked()
		s.mu.Unlock()
		if err != nil {
			log.Error("Abandoning sequence", "err", err)
			s.notifyIdle()
		}
		return
	}

	s.clips = nil
	s.index = 0
	s.state = SequencerIdle
	s.stats.SequencesCompleted++
	s.mu.Unlock()

	s.notifyIdle()
}

func (s *Sequencer) notifyIdle() {
	if s.onIdle != nil {
		s.onIdle()
	}
}
