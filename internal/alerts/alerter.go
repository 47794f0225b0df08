// Package alerts runs the dispatcher that speaks queued traffic alerts one
// at a time.
package alerts

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/dgnsrekt/trafficcall/internal/audio"
	"github.com/dgnsrekt/trafficcall/internal/callout"
	"github.com/dgnsrekt/trafficcall/internal/queue"
	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

var (
	// ErrAlerterClosed is returned when operations are attempted after Close
	ErrAlerterClosed = errors.New("alerter is closed")

	// ErrMissingIdentifier is returned for reports without an identifier
	ErrMissingIdentifier = errors.New("traffic report has no identifier")

	// ErrInvalidReport is returned for non-finite positions or headings
	ErrInvalidReport = errors.New("traffic report has a non-finite position or heading")
)

// Alerter owns the alert queue, the callout builder and the playback
// sequencer, and runs the single dispatcher goroutine that connects them.
type Alerter struct {
	// Components
	queue     *queue.AlertQueue
	builder   *callout.Builder
	sequencer *audio.Sequencer

	// Processing control
	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running atomic.Bool
	closed  bool

	// Metrics and monitoring
	stats   Stats
	statsMu sync.Mutex
}

// Stats tracks dispatcher activity.
type Stats struct {
	Running      bool
	Announced    int64 // alerts whose playback started
	Skipped      int64 // alerts dropped because playback was busy
	BuildErrors  int64 // alerts dropped because a segment was missing
	PlayErrors   int64 // alerts dropped because the device refused them
	LastActivity time.Time

	Queue     queue.Stats
	Sequencer audio.SequencerStats
	Aliases   int
}

// New creates a stopped alerter that plays on device with voice.
func New(device audio.Device, voice *callout.Voice, opts callout.Options) (*Alerter, error) {
	if device == nil {
		return nil, fmt.Errorf("device cannot be nil")
	}
	if voice == nil {
		return nil, fmt.Errorf("voice cannot be nil")
	}
	if err := voice.Validate(opts); err != nil {
		log.Warn("Voice is incomplete, affected alerts will be skipped", "err", err)
	}

	a := &Alerter{
		queue:   queue.NewAlertQueue(),
		builder: callout.NewBuilder(voice, opts),
	}
	// Playback completion re-evaluates the dispatcher's wait
	a.sequencer = audio.NewSequencer(device, a.queue.Notify)

	return a, nil
}

// AlertTrafficPosition queues an announcement of report relative to own.
// An alert already queued for the same identifier is updated in place and
// replaced is true. Alerts are accepted whether or not the dispatcher runs.
func (a *Alerter) AlertTrafficPosition(report traffic.Report, own traffic.Ownship) (replaced bool, err error) {
	if report.Identifier == "" {
		return false, ErrMissingIdentifier
	}
	if !finite(report.Position.Latitude, report.Position.Longitude,
		own.Position.Latitude, own.Position.Longitude, own.Heading) {
		return false, ErrInvalidReport
	}

	replaced, err = a.queue.Submit(traffic.Alert{Traffic: report, Ownship: own})
	if errors.Is(err, queue.ErrQueueClosed) {
		return false, ErrAlerterClosed
	}
	if err != nil {
		return false, err
	}

	log.Debug("Alert queued", "id", report.Identifier, "replaced", replaced)
	return replaced, nil
}

// Start launches the dispatcher. A dispatcher that is already running is
// stopped first, so at most one ever runs.
func (a *Alerter) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return ErrAlerterClosed
	}
	a.stopLocked()

	runCtx, cancel := context.WithCancel(ctx)
	a.cancel = cancel
	a.running.Store(true)

	a.wg.Add(1)
	go a.loop(runCtx)

	log.Info("Traffic alerts started")
	return nil
}

// Stop interrupts the dispatcher and waits for it to exit. A callout that
// is already playing is allowed to finish.
func (a *Alerter) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.stopLocked() {
		log.Info("Traffic alerts stopped")
	}
}

func (a *Alerter) stopLocked() bool {
	if a.cancel == nil {
		return false
	}
	a.cancel()
	a.wg.Wait()
	a.cancel = nil
	a.running.Store(false)
	return true
}

// IsRunning reports whether the dispatcher goroutine is running.
func (a *Alerter) IsRunning() bool {
	return a.running.Load()
}

// SetOptions changes the callout wording for subsequent alerts.
func (a *Alerter) SetOptions(opts callout.Options) {
	a.builder.SetOptions(opts)
}

// Options returns the current callout wording.
func (a *Alerter) Options() callout.Options {
	return a.builder.Options()
}

// Pending returns the identifiers waiting to be announced, in order.
func (a *Alerter) Pending() []string {
	return a.queue.Snapshot()
}

// Drain blocks until nothing is queued, every taken alert has been
// dispatched and nothing is playing.
func (a *Alerter) Drain(ctx context.Context) error {
	ticker := time.NewTicker(20 * time.Millisecond)
	defer ticker.Stop()

	for {
		if a.drained() {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// drained reads the queue before the dispatcher counters and the counters
// before the sequencer, so an alert in between is always seen somewhere.
func (a *Alerter) drained() bool {
	q := a.queue.Stats()
	if q.CurrentSize > 0 {
		return false
	}

	a.statsMu.Lock()
	handled := a.stats.Announced + a.stats.Skipped + a.stats.BuildErrors + a.stats.PlayErrors
	a.statsMu.Unlock()
	if handled < q.TotalTaken {
		return false
	}

	return a.sequencer.State() == audio.SequencerIdle
}

// Stats returns a snapshot of dispatcher statistics.
func (a *Alerter) Stats() Stats {
	a.statsMu.Lock()
	stats := a.stats
	a.statsMu.Unlock()

	stats.Running = a.IsRunning()
	stats.Queue = a.queue.Stats()
	stats.Sequencer = a.sequencer.Stats()
	stats.Aliases = a.builder.Aliases().Len()
	return stats
}

// Close stops the dispatcher and releases the queue and sequencer. The
// device is owned by the caller.
func (a *Alerter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed {
		return nil
	}
	a.stopLocked()
	a.closed = true

	a.queue.Close()
	return a.sequencer.Close()
}

// loop is the dispatcher: wait until an alert is queued and playback is
// idle, then announce it.
func (a *Alerter) loop(ctx context.Context) {
	defer a.wg.Done()
	defer a.running.Store(false)

	for {
		alert, err := a.queue.TakeNextWhen(ctx, a.idle)
		if err != nil {
			if ctx.Err() == nil && !errors.Is(err, queue.ErrQueueClosed) {
				log.Error("Dispatcher wait failed", "err", err)
			}
			return
		}

		a.dispatch(alert)
	}
}

// idle is evaluated under the queue lock.
func (a *Alerter) idle() bool {
	return !a.sequencer.IsPlaying()
}

// dispatch announces one alert. Failures drop the alert; nothing is
// retried.
func (a *Alerter) dispatch(alert traffic.Alert) error {
	seq, err := a.builder.Build(alert)
	if err != nil {
		a.count(func(s *Stats) { s.BuildErrors++ })
		log.Error("Cannot build callout, skipping alert", "id", alert.ID(), "err", err)
		return err
	}

	if err := a.sequencer.SetSequence(seq); err != nil {
		a.count(func(s *Stats) { s.Skipped++ })
		log.Warn("Playback busy, dropping alert", "id", alert.ID(), "err", err)
		return err
	}

	if err := a.sequencer.Start(); err != nil {
		a.count(func(s *Stats) { s.PlayErrors++ })
		log.Error("Cannot play callout, skipping alert", "id", alert.ID(), "err", err)
		return err
	}

	a.count(func(s *Stats) { s.Announced++ })
	log.Info("Announcing", "alert", alert, "segments", len(seq))
	return nil
}

func (a *Alerter) count(update func(*Stats)) {
	a.statsMu.Lock()
	defer a.statsMu.Unlock()
	update(&a.stats)
	a.stats.LastActivity = time.Now()
}

func finite(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
