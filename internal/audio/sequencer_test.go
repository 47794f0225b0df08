package audio

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

// idleSignal counts onIdle calls and lets tests wait for them.
type idleSignal struct {
	ch chan struct{}
}

func newIdleSignal() *idleSignal {
	return &idleSignal{ch: make(chan struct{}, 16)}
}

func (s *idleSignal) notify() {
	s.ch <- struct{}{}
}

func (s *idleSignal) wait(t *testing.T) {
	t.Helper()
	select {
	case <-s.ch:
	case <-time.After(time.Second):
		t.Fatal("sequencer did not go idle")
	}
}

func clips(names ...string) []*Clip {
	out := make([]*Clip, len(names))
	for i, n := range names {
		out[i] = testClip(n, 10*time.Millisecond)
	}
	return out
}

// recordingDevice keeps every completion callback so tests can fire them
// out of order or more than once.
type recordingDevice struct {
	mu        sync.Mutex
	callbacks []func()
}

func (d *recordingDevice) Play(_ *Clip, onFinished func()) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.callbacks = append(d.callbacks, onFinished)
	return nil
}

func (d *recordingDevice) callback(i int) func() {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.callbacks[i]
}

func (d *recordingDevice) count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.callbacks)
}

func expectNoSequencePanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected a panic")
		}
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrNoSequence) {
			t.Fatalf("expected ErrNoSequence panic, got %v", r)
		}
	}()
	fn()
}

func TestSequencer_PlaysInOrderWithoutOverlap(t *testing.T) {
	player := NewManualMockPlayer()
	idle := newIdleSignal()
	seq := NewSequencer(player, idle.notify)
	defer seq.Close()

	if err := seq.SetSequence(clips("tone", "three", "level")); err != nil {
		t.Fatalf("SetSequence failed: %v", err)
	}
	if seq.State() != SequencerReady {
		t.Errorf("expected ready, got %v", seq.State())
	}
	if err := seq.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	for i := 1; i <= 3; i++ {
		if !player.WaitForPlays(i, time.Second) {
			t.Fatalf("segment %d was not started", i)
		}
		if !seq.IsPlaying() {
			t.Errorf("expected playing during segment %d", i)
		}
		player.Finish()
	}
	idle.wait(t)

	if got := fmt.Sprint(player.Played()); got != "[tone three level]" {
		t.Errorf("played %s, want [tone three level]", got)
	}
	if seq.State() != SequencerIdle {
		t.Errorf("expected idle, got %v", seq.State())
	}
	if player.GetMetrics().Overlaps != 0 {
		t.Error("segments overlapped")
	}

	stats := seq.Stats()
	if stats.SegmentsStarted != 3 || stats.SegmentsFinished != 3 || stats.SequencesCompleted != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
}

func TestSequencer_TimedDevice(t *testing.T) {
	player := DefaultMockPlayer()
	player.SetDelayFactor(0.5)
	idle := newIdleSignal()
	seq := NewSequencer(player, idle.notify)
	defer seq.Close()

	for round := 0; round < 3; round++ {
		if err := seq.SetSequence(clips("traffic", "alpha", "nine", "high")); err != nil {
			t.Fatalf("SetSequence failed: %v", err)
		}
		if err := seq.Start(); err != nil {
			t.Fatalf("Start failed: %v", err)
		}
		idle.wait(t)
	}

	if got := len(player.Played()); got != 12 {
		t.Errorf("expected 12 segments played, got %d", got)
	}
	if player.GetMetrics().Overlaps != 0 {
		t.Error("segments overlapped")
	}
}

func TestSequencer_BusyWhilePlaying(t *testing.T) {
	player := NewManualMockPlayer()
	idle := newIdleSignal()
	seq := NewSequencer(player, idle.notify)
	defer seq.Close()

	seq.SetSequence(clips("tone", "two"))
	if err := seq.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if err := seq.SetSequence(clips("other")); !errors.Is(err, ErrBusy) {
		t.Errorf("SetSequence while playing: expected ErrBusy, got %v", err)
	}
	if err := seq.Start(); !errors.Is(err, ErrBusy) {
		t.Errorf("Start while playing: expected ErrBusy, got %v", err)
	}

	// The rejected sequence did not disturb the running one
	player.Finish()
	player.WaitForPlays(2, time.Second)
	player.Finish()
	idle.wait(t)

	if got := fmt.Sprint(player.Played()); got != "[tone two]" {
		t.Errorf("played %s, want [tone two]", got)
	}
	if got := seq.Stats().BusyRejections; got != 2 {
		t.Errorf("expected 2 busy rejections, got %d", got)
	}
}

func TestSequencer_StartWithoutSequencePanics(t *testing.T) {
	seq := NewSequencer(NewManualMockPlayer(), nil)
	defer seq.Close()

	expectNoSequencePanic(t, func() { seq.Start() })

	// Still usable after the panic
	if err := seq.SetSequence(clips("tone")); err != nil {
		t.Fatalf("SetSequence after panic failed: %v", err)
	}
}

func TestSequencer_StartAfterEndPanics(t *testing.T) {
	player := NewManualMockPlayer()
	idle := newIdleSignal()
	seq := NewSequencer(player, idle.notify)
	defer seq.Close()

	seq.SetSequence(clips("tone"))
	seq.Start()
	player.Finish()
	idle.wait(t)

	expectNoSequencePanic(t, func() { seq.Start() })
}

func TestSequencer_DeviceErrorOnStart(t *testing.T) {
	player := NewManualMockPlayer()
	player.SetPlayError(errors.New("no device"))
	idle := newIdleSignal()
	seq := NewSequencer(player, idle.notify)
	defer seq.Close()

	seq.SetSequence(clips("tone", "one"))
	if err := seq.Start(); err == nil {
		t.Fatal("expected Start to fail")
	}
	idle.wait(t)

	if seq.State() != SequencerIdle {
		t.Errorf("expected idle after device error, got %v", seq.State())
	}
	if got := seq.Stats().SequencesAbandoned; got != 1 {
		t.Errorf("expected 1 abandoned sequence, got %d", got)
	}
}

func TestSequencer_DeviceErrorMidSequence(t *testing.T) {
	player := NewManualMockPlayer()
	idle := newIdleSignal()
	seq := NewSequencer(player, idle.notify)
	defer seq.Close()

	seq.SetSequence(clips("tone", "one", "low"))
	if err := seq.Start(); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	player.SetPlayError(errors.New("device unplugged"))
	player.Finish()
	idle.wait(t)

	if seq.IsPlaying() {
		t.Error("sequencer still playing after device error")
	}
	if got := fmt.Sprint(player.Played()); got != "[tone]" {
		t.Errorf("played %s, want [tone]", got)
	}

	// A new sequence can be loaded once idle
	player.SetPlayError(nil)
	if err := seq.SetSequence(clips("tone")); err != nil {
		t.Errorf("SetSequence after abandon failed: %v", err)
	}
}

func TestSequencer_IgnoresStaleCompletions(t *testing.T) {
	dev := &recordingDevice{}
	idle := newIdleSignal()
	seq := NewSequencer(dev, idle.notify)
	defer seq.Close()

	seq.SetSequence(clips("tone", "six", "level"))
	seq.Start()

	first := dev.callback(0)
	first()
	first() // duplicate

	deadline := time.Now().Add(time.Second)
	for dev.count() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	time.Sleep(20 * time.Millisecond)

	if got := dev.count(); got != 2 {
		t.Fatalf("expected exactly 2 segments started, got %d", got)
	}
	if got := seq.Stats().SegmentsFinished; got != 1 {
		t.Errorf("expected 1 finished segment, got %d", got)
	}

	dev.callback(1)()
	for dev.count() < 3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	dev.callback(2)()
	idle.wait(t)
}

func TestSequencer_ClosedRejectsWork(t *testing.T) {
	seq := NewSequencer(NewManualMockPlayer(), nil)
	seq.Close()

	if err := seq.SetSequence(clips("tone")); !errors.Is(err, ErrSequencerClosed) {
		t.Errorf("expected ErrSequencerClosed, got %v", err)
	}
	if err := seq.Start(); !errors.Is(err, ErrSequencerClosed) {
		t.Errorf("expected ErrSequencerClosed, got %v", err)
	}
	seq.Close()
}

func TestSequencerState_String(t *testing.T) {
	if SequencerPlaying.String() != "playing" || SequencerState(9).String() != "unknown(9)" {
		t.Error("unexpected state names")
	}
}
