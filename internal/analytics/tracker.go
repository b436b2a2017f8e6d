// Package analytics records search and click events off the request path and
// serves cached aggregate metrics.
package analytics

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/atsume/internal/models"
	"github.com/hyperjump/atsume/internal/storage"
)

const (
	defaultQueueSize = 1024
	maxBatch         = 64
	writeTimeout     = 5 * time.Second
)

// ErrClosed is returned by Track calls after Close.
var ErrClosed = errors.New("analytics tracker closed")

// ErrQueueFull is returned when the event queue has no room; the event is dropped.
var ErrQueueFull = errors.New("analytics queue full")

type event struct {
	search *models.SearchEvent
	click  *models.ClickEvent
}

// Tracker queues events and writes them to storage from one background worker.
// Track calls never block.
type Tracker struct {
	store   storage.Storage
	queue   chan event
	logger  *zap.Logger
	mu      sync.RWMutex // held for reading while sending, for writing while closing
	closed  bool
	done    chan struct{}
	written atomic.Int64
	dropped atomic.Int64
	onFlush func()
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithFlushHook calls fn from the worker after each batch is stored.
func WithFlushHook(fn func()) TrackerOption {
	return func(t *Tracker) { t.onFlush = fn }
}

// NewTracker starts a tracker writing to store. queueSize <= 0 uses the default.
func NewTracker(store storage.Storage, queueSize int, logger *zap.Logger, opts ...TrackerOption) *Tracker {
	if queueSize <= 0 {
		queueSize = defaultQueueSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracker{
		store:  store,
		queue:  make(chan event, queueSize),
		logger: logger,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}
	go t.run()
	return t
}

// TrackSearch enqueues a search event.
func (t *Tracker) TrackSearch(ev models.SearchEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	return t.enqueue(event{search: &ev})
}

// TrackResultClick enqueues a click event.
func (t *Tracker) TrackResultClick(ev models.ClickEvent) error {
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	return t.enqueue(event{click: &ev})
}

func (t *Tracker) enqueue(ev event) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return ErrClosed
	}
	select {
	case t.queue <- ev:
		return nil
	default:
		n := t.dropped.Add(1)
		t.logger.Warn("analytics queue full, dropping event", zap.Int64("dropped_total", n))
		return ErrQueueFull
	}
}

func (t *Tracker) run() {
	defer close(t.done)
	for ev := range t.queue {
		batch := []event{ev}
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-t.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		t.write(batch)
	}
}

func (t *Tracker) write(batch []event) {
	var (
		searches []*models.SearchEvent
		clicks   []*models.ClickEvent
	)
	for _, ev := range batch {
		if ev.search != nil {
			searches = append(searches, ev.search)
		}
		if ev.click != nil {
			clicks = append(clicks, ev.click)
		}
	}
	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()
	if err := t.store.BatchRecord(ctx, searches, clicks); err != nil {
		t.logger.Warn("failed to write analytics events",
			zap.Int("searches", len(searches)),
			zap.Int("clicks", len(clicks)),
			zap.Error(err))
		return
	}
	t.written.Add(int64(len(batch)))
	if t.onFlush != nil {
		t.onFlush()
	}
}

// Stats reports how many events were written and dropped.
func (t *Tracker) Stats() (written, dropped int64) {
	return t.written.Load(), t.dropped.Load()
}

// Close stops accepting events, writes everything already queued, and waits for
// the worker to finish or ctx to expire.
func (t *Tracker) Close(ctx context.Context) error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
