package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dgnsrekt/trafficcall/internal/traffic"
)

var (
	// ErrQueueClosed is returned when operations are attempted on a closed queue
	ErrQueueClosed = errors.New("queue is closed")

	// ErrQueueEmpty is returned by Peek when nothing is queued
	ErrQueueEmpty = errors.New("queue is empty")
)

// AlertQueue is a deduplicating FIFO of pending alerts.
// Any number of goroutines may Submit; exactly one consumer should take.
type AlertQueue struct {
	alerts []traffic.Alert

	// Synchronization
	mu       sync.Mutex
	notEmpty *sync.Cond

	// State
	closed bool
	stats  Stats
}

// Stats tracks queue activity.
type Stats struct {
	TotalSubmitted int64
	TotalReplaced  int64
	TotalTaken     int64
	CurrentSize    int
	PeakSize       int
	LastSubmit     time.Time
	LastTake       time.Time
}

// NewAlertQueue creates an empty alert queue.
func NewAlertQueue() *AlertQueue {
	q := &AlertQueue{
		alerts: make([]traffic.Alert, 0, 8),
	}
	q.notEmpty = sync.NewCond(&q.mu)
	return q
}

// Submit queues an alert. If an alert with the same identifier is already
// queued its data is replaced in place and replaced is true.
// Waiting consumers are woken either way.
func (q *AlertQueue) Submit(alert traffic.Alert) (replaced bool, err error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false, ErrQueueClosed
	}

	q.stats.TotalSubmitted++
	q.stats.LastSubmit = time.Now()

	if i := q.indexOf(alert.ID()); i >= 0 {
		q.alerts[i] = alert
		q.stats.TotalReplaced++
		replaced = true
	} else {
		q.alerts = append(q.alerts, alert)
		if len(q.alerts) > q.stats.PeakSize {
			q.stats.PeakSize = len(q.alerts)
		}
	}
	q.stats.CurrentSize = len(q.alerts)

	q.notEmpty.Broadcast()

	return replaced, nil
}

// TakeNext blocks until an alert is queued, then removes and returns the
// earliest inserted one.
func (q *AlertQueue) TakeNext(ctx context.Context) (traffic.Alert, error) {
	return q.TakeNextWhen(ctx, nil)
}

// TakeNextWhen is TakeNext with an extra condition: it also waits until
// ready reports true. ready is evaluated with the queue lock held, so
// whatever it observes must call Notify when it changes.
func (q *AlertQueue) TakeNextWhen(ctx context.Context, ready func() bool) (traffic.Alert, error) {
	// Wake the waiter on cancellation. The broadcast takes the lock so it
	// cannot slip in between the ctx check and Wait below.
	stop := context.AfterFunc(ctx, func() {
		q.mu.Lock()
		defer q.mu.Unlock()
		q.notEmpty.Broadcast()
	})
	defer stop()

	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if q.closed {
			return traffic.Alert{}, ErrQueueClosed
		}
		if err := ctx.Err(); err != nil {
			return traffic.Alert{}, err
		}
		if len(q.alerts) > 0 && (ready == nil || ready()) {
			break
		}
		q.notEmpty.Wait()
	}

	alert := q.alerts[0]
	q.alerts[0] = traffic.Alert{}
	q.alerts = q.alerts[1:]

	q.stats.TotalTaken++
	q.stats.LastTake = time.Now()
	q.stats.CurrentSize = len(q.alerts)

	return alert, nil
}

// Notify wakes any goroutine blocked in TakeNextWhen so it re-evaluates
// its condition.
func (q *AlertQueue) Notify() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.notEmpty.Broadcast()
}

// Peek returns the next alert without removing it.
func (q *AlertQueue) Peek() (traffic.Alert, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return traffic.Alert{}, ErrQueueClosed
	}
	if len(q.alerts) == 0 {
		return traffic.Alert{}, ErrQueueEmpty
	}
	return q.alerts[0], nil
}

// Size returns the number of queued alerts.
func (q *AlertQueue) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.alerts)
}

// Snapshot returns the queued identifiers in dispatch order.
func (q *AlertQueue) Snapshot() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	ids := make([]string, len(q.alerts))
	for i, a := range q.alerts {
		ids[i] = a.ID()
	}
	return ids
}

// Stats returns current queue statistics.
func (q *AlertQueue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	stats := q.stats
	stats.CurrentSize = len(q.alerts)
	return stats
}

// Close shuts the queue down and wakes any waiters.
func (q *AlertQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	q.closed = true
	q.notEmpty.Broadcast()
	return nil
}

// indexOf returns the position of id in the queue or -1. Caller holds mu.
func (q *AlertQueue) indexOf(id string) int {
	for i := range q.alerts {
		if q.alerts[i].ID() == id {
			return i
		}
	}
	return -1
}
