package audio

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestMockPlayer_TimedCompletion(t *testing.T) {
	player := DefaultMockPlayer()
	defer player.Close()

	if player.GetState() != StateStopped {
		t.Errorf("Initial state should be Stopped, got %v", player.GetState())
	}

	clip := testClip("tone", 20*time.Millisecond)
	done := make(chan struct{})
	if err := player.Play(clip, func() { close(done) }); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	if !player.IsPlaying() {
		t.Error("Player should be playing after Play()")
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("clip did not finish")
	}

	if player.IsPlaying() {
		t.Error("Player should be stopped after the clip finished")
	}

	metrics := player.GetMetrics()
	if metrics.PlayCount != 1 || metrics.FinishCount != 1 {
		t.Errorf("unexpected metrics: %+v", metrics)
	}
}

func TestMockPlayer_ManualFinish(t *testing.T) {
	player := NewManualMockPlayer()
	defer player.Close()

	if player.Finish() {
		t.Error("Finish should report false with nothing playing")
	}

	var finished atomic.Int32
	if err := player.Play(testClip("three", time.Millisecond), func() { finished.Add(1) }); err != nil {
		t.Fatalf("Play failed: %v", err)
	}

	time.Sleep(20 * time.Millisecond)
	if finished.Load() != 0 {
		t.Fatal("manual clip finished on its own")
	}

	if !player.Finish() {
		t.Fatal("Finish should report true while playing")
	}
	if finished.Load() != 1 {
		t.Errorf("expected one completion, got %d", finished.Load())
	}

	// A second Finish has nothing left to complete
	if player.Finish() {
		t.Error("Finish completed the same clip twice")
	}
}

func TestMockPlayer_Callbacks(t *testing.T) {
	var played, finished, closed atomic.Int32

	player := NewMockPlayer(MockCallbacks{
		OnPlay:   func(*Clip) { played.Add(1) },
		OnFinish: func(*Clip) { finished.Add(1) },
		OnClose:  func() { closed.Add(1) },
	})
	player.SetDelayFactor(0.1)

	done := make(chan struct{})
	if err := player.Play(testClip("high", 50*time.Millisecond), func() { close(done) }); err != nil {
		t.Fatalf("Play failed: %v", err)
	}
	<-done
	player.Close()

	if played.Load() != 1 || finished.Load() != 1 || closed.Load() != 1 {
		t.Errorf("callbacks: play=%d finish=%d close=%d", played.Load(), finished.Load(), closed.Load())
	}
}

func TestMockPlayer_PlayError(t *testing.T) {
	player := NewManualMockPlayer()
	defer player.Close()

	boom := errors.New("device unplugged")
	player.SetPlayError(boom)

	if err := player.Play(testClip("tone", time.Millisecond), func() {}); !errors.Is(err, boom) {
		t.Errorf("expected configured error, got %v", err)
	}
	if len(player.Played()) != 0 {
		t.Error("failed Play should not be recorded")
	}

	player.SetPlayError(nil)
	if err := player.Play(testClip("tone", time.Millisecond), func() {}); err != nil {
		t.Errorf("Play after clearing the error failed: %v", err)
	}
}

func TestMockPlayer_Closed(t *testing.T) {
	player := DefaultMockPlayer()
	player.Close()

	if err := player.Play(testClip("tone", time.Millisecond), func() {}); !errors.Is(err, ErrDeviceClosed) {
		t.Errorf("expected ErrDeviceClosed, got %v", err)
	}
	if player.GetState() != StateClosed {
		t.Errorf("expected closed state, got %v", player.GetState())
	}
}

func TestMockPlayer_RecordsOverlap(t *testing.T) {
	player := NewManualMockPlayer()
	defer player.Close()

	player.Play(testClip("a", time.Millisecond), func() {})
	player.Play(testClip("b", time.Millisecond), func() {})

	if got := player.GetMetrics().Overlaps; got != 1 {
		t.Errorf("expected 1 overlap, got %d", got)
	}
}

func BenchmarkMockPlayer_Play(b *testing.B) {
	player := NewManualMockPlayer()
	defer player.Close()

	clip := testClip("tone", time.Millisecond)
	for i := 0; i < b.N; i++ {
		player.Play(clip, func() {})
		player.Finish()
	}
}
