package audio

import (
	"sync"
	"sync/atomic"
	"time"
)

// PlayerState represents the current state of a device.
type PlayerState int32

const (
	StateStopped PlayerState = iota
	StatePlaying
	StateClosed
)

// String returns the string representation of the state.
func (s PlayerState) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StatePlaying:
		return "playing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MockPlayer is a Device for tests. It records what it was asked to play and
// simulates playback either on a timer (the default) or under manual control
// via Finish.
type MockPlayer struct {
	state atomic.Int32 // PlayerState

	// Test callbacks
	callbacks MockCallbacks

	mu       sync.Mutex
	played   []string
	pending  func()
	timer    *time.Timer
	manual   bool
	playErr  error
	inFlight int
	overlaps int

	// Test configuration
	delayFactor float64 // Speed up/slow down simulated playback

	// Metrics for testing
	playCount   atomic.Int64
	finishCount atomic.Int64
}

// MockCallbacks provides hooks for testing.
type MockCallbacks struct {
	OnPlay   func(clip *Clip)
	OnFinish func(clip *Clip)
	OnClose  func()
}

// MockPlayerMetrics contains playback metrics for testing.
type MockPlayerMetrics struct {
	PlayCount   int64
	FinishCount int64
	Overlaps    int
}

// DefaultMockPlayer creates a mock that finishes each clip after its
// duration scaled by the delay factor.
func DefaultMockPlayer() *MockPlayer {
	mp := &MockPlayer{
		delayFactor: 1.0,
	}
	mp.state.Store(int32(StateStopped))
	return mp
}

// NewMockPlayer creates a timed mock player with custom callbacks.
func NewMockPlayer(callbacks MockCallbacks) *MockPlayer {
	mp := DefaultMockPlayer()
	mp.callbacks = callbacks
	return mp
}

// NewManualMockPlayer creates a mock whose clips only finish when Finish is
// called.
func NewManualMockPlayer() *MockPlayer {
	mp := DefaultMockPlayer()
	mp.manual = true
	return mp
}

// Play records clip and schedules its completion.
func (mp *MockPlayer) Play(clip *Clip, onFinished func()) error {
	mp.mu.Lock()

	if PlayerState(mp.state.Load()) == StateClosed {
		mp.mu.Unlock()
		return ErrDeviceClosed
	}
	if mp.playErr != nil {
		err := mp.playErr
		mp.mu.Unlock()
		return err
	}

	if mp.inFlight > 0 {
		mp.overlaps++
	}
	mp.inFlight++
	mp.played = append(mp.played, clip.String())
	mp.playCount.Add(1)
	mp.state.Store(int32(StatePlaying))

	var once sync.Once
	finish := func() {
		once.Do(func() {
			mp.complete(clip)
			onFinished()
		})
	}
	mp.pending = finish

	if !mp.manual {
		delay := time.Duration(float64(clip.Duration()) * mp.delayFactor)
		mp.timer = time.AfterFunc(delay, finish)
	}
	callback := mp.callbacks.OnPlay
	mp.mu.Unlock()

	if callback != nil {
		callback(clip)
	}
	return nil
}

// complete updates bookkeeping before the completion callback runs.
func (mp *MockPlayer) complete(clip *Clip) {
	mp.mu.Lock()
	mp.inFlight--
	if mp.inFlight == 0 && PlayerState(mp.state.Load()) == StatePlaying {
		mp.state.Store(int32(StateStopped))
	}
	mp.pending = nil
	mp.timer = nil
	callback := mp.callbacks.OnFinish
	mp.mu.Unlock()

	mp.finishCount.Add(1)
	if callback != nil {
		callback(clip)
	}
}

// Finish completes the most recently started clip as if the device had
// reached its end. It reports false if nothing is playing.
func (mp *MockPlayer) Finish() bool {
	mp.mu.Lock()
	finish := mp.pending
	if mp.timer != nil {
		mp.timer.Stop()
	}
	mp.mu.Unlock()

	if finish == nil {
		return false
	}
	finish()
	return true
}

// IsPlaying returns whether a clip is currently playing.
func (mp *MockPlayer) IsPlaying() bool {
	return PlayerState(mp.state.Load()) == StatePlaying
}

// Played returns the names of all clips played so far, in order.
func (mp *MockPlayer) Played() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	out := make([]string, len(mp.played))
	copy(out, mp.played)
	return out
}

// WaitForPlays blocks until at least n clips have been played.
func (mp *MockPlayer) WaitForPlays(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if mp.playCount.Load() >= int64(n) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		<-ticker.C
	}
}

// WaitForFinishes blocks until at least n clips have finished.
func (mp *MockPlayer) WaitForFinishes(n int, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for {
		if mp.finishCount.Load() >= int64(n) {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		<-ticker.C
	}
}

// Close releases the mock. A pending clip never finishes.
func (mp *MockPlayer) Close() error {
	mp.mu.Lock()
	if mp.timer != nil {
		mp.timer.Stop()
		mp.timer = nil
	}
	mp.pending = nil
	mp.state.Store(int32(StateClosed))
	callback := mp.callbacks.OnClose
	mp.mu.Unlock()

	if callback != nil {
		callback()
	}
	return nil
}

// Test helper methods

// GetState returns the current player state for testing.
func (mp *MockPlayer) GetState() PlayerState {
	return PlayerState(mp.state.Load())
}

// SetDelayFactor scales simulated clip durations.
// 1.0 is real time, 0.1 is ten times faster.
func (mp *MockPlayer) SetDelayFactor(factor float64) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.delayFactor = factor
}

// SetPlayError makes every following Play fail with err. nil clears it.
func (mp *MockPlayer) SetPlayError(err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.playErr = err
}

// GetMetrics returns playback metrics for testing.
func (mp *MockPlayer) GetMetrics() MockPlayerMetrics {
	mp.mu.Lock()
	overlaps := mp.overlaps
	mp.mu.Unlock()

	return MockPlayerMetrics{
		PlayCount:   mp.playCount.Load(),
		FinishCount: mp.finishCount.Load(),
		Overlaps:    overlaps,
	}
}
