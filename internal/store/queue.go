package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/netmon/internal/observability"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/state"
	"github.com/unkn0wn-root/netmon/internal/telemetry"
)

const DefaultRefreshRate = 50 * time.Millisecond

var ErrQueueClosed = errors.New("queue closed")

type QueueOptions struct {
	// Lazy holds incoming adds and updates until the refresh timer fires.
	Lazy         bool
	RefreshRate  time.Duration
	Instrumenter telemetry.Instrumenter
	Metrics      *observability.Metrics
	Logger       *zerolog.Logger
}

// Queue batches request adds and updates in arrival order and applies each
// batch to the store as one unit.
type Queue struct {
	store *Store
	rate  time.Duration
	inst  telemetry.Instrumenter
	met   *observability.Metrics
	log   *zerolog.Logger

	// flushMu keeps batches from overtaking each other between being
	// taken off pending and reaching the store.
	flushMu sync.Mutex

	mu      sync.Mutex
	pending []state.Action
	adds    int
	updates int
	lazy    bool
	closed  bool
	stop    func() bool

	afterFunc func(time.Duration, func()) func() bool
}

func NewQueue(st *Store, opts QueueOptions) *Queue {
	q := &Queue{
		store: st,
		rate:  opts.RefreshRate,
		inst:  opts.Instrumenter,
		met:   opts.Metrics,
		log:   opts.Logger,
		lazy:  opts.Lazy,
		afterFunc: func(d time.Duration, f func()) func() bool {
			return time.AfterFunc(d, f).Stop
		},
	}
	if q.rate <= 0 {
		q.rate = DefaultRefreshRate
	}
	if q.inst == nil {
		q.inst = telemetry.Noop()
	}
	if q.log == nil {
		q.log = observability.Nop()
	}
	return q
}

func (q *Queue) Add(id string, data request.Data) error {
	return q.push(state.AddRequest{ID: id, Data: data})
}

func (q *Queue) Update(id string, data request.Data) error {
	return q.push(state.UpdateRequest{ID: id, Data: data})
}

// Push queues any action behind the pending adds and updates.
func (q *Queue) Push(a state.Action) error {
	return q.push(a)
}

func (q *Queue) push(a state.Action) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueueClosed
	}
	q.pending = append(q.pending, a)
	switch a.(type) {
	case state.AddRequest:
		q.adds++
	case state.UpdateRequest:
		q.updates++
	}
	if !q.lazy {
		q.mu.Unlock()
		q.Flush(context.Background())
		return nil
	}
	if q.stop == nil {
		q.stop = q.afterFunc(q.rate, q.onTimer)
	}
	q.mu.Unlock()
	return nil
}

func (q *Queue) onTimer() {
	q.Flush(context.Background())
}

// Flush applies everything pending now. Subscribers see one notification.
// Concurrent flushes apply their batches in the order they were queued.
func (q *Queue) Flush(ctx context.Context) {
	q.flushMu.Lock()
	defer q.flushMu.Unlock()

	q.mu.Lock()
	batch := q.pending
	adds, updates, lazy := q.adds, q.updates, q.lazy
	q.pending = nil
	q.adds, q.updates = 0, 0
	if q.stop != nil {
		q.stop()
		q.stop = nil
	}
	q.mu.Unlock()

	if len(batch) == 0 {
		return
	}

	_, span := q.inst.StartFlush(ctx, telemetry.FlushStart{
		Actions: len(batch),
		Adds:    adds,
		Updates: updates,
		Lazy:    lazy,
	})
	start := time.Now()
	q.store.DispatchBatch(batch)
	elapsed := time.Since(start)

	requests := len(q.store.GetState().Requests)
	span.End(telemetry.FlushResult{Requests: requests, Duration: elapsed})
	q.met.ObserveFlush(len(batch), elapsed)
	q.log.Debug().
		Int("actions", len(batch)).
		Int("adds", adds).
		Int("updates", updates).
		Dur("took", elapsed).
		Msg("queue flushed")
}

// SetLazy switches batching mode. Turning it off flushes what is pending.
func (q *Queue) SetLazy(lazy bool) {
	q.mu.Lock()
	q.lazy = lazy
	q.mu.Unlock()
	if !lazy {
		q.Flush(context.Background())
	}
}

func (q *Queue) Lazy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lazy
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close flushes pending actions. Later pushes return ErrQueueClosed.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()
	q.Flush(context.Background())
	return nil
}
