package store

import (
	"slices"
	"sync"

	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/netmon/internal/actions"
	"github.com/unkn0wn-root/netmon/internal/observability"
	"github.com/unkn0wn-root/netmon/internal/selectors"
	"github.com/unkn0wn-root/netmon/internal/state"
)

type Handler func(state.Action)

// API is the part of the store visible to middleware.
type API interface {
	Dispatch(a state.Action)
	GetState() state.State
}

// Middleware wraps the next handler in the chain. The innermost handler
// applies the reducer, so state read after next returns includes the action.
type Middleware func(api API, next Handler) Handler

type Option func(*Store)

func WithLogger(log *zerolog.Logger) Option {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

func WithMetrics(m *observability.Metrics) Option {
	return func(s *Store) { s.metrics = m }
}

func WithMiddleware(mw ...Middleware) Option {
	return func(s *Store) { s.middleware = append(s.middleware, mw...) }
}

func WithInitialState(st state.State) Option {
	return func(s *Store) { s.current = st }
}

// Store owns the current state. Actions are applied one at a time in the
// order they were dispatched; a dispatch made while another is being applied
// (from a subscriber or another goroutine) is queued behind it.
type Store struct {
	mu      sync.RWMutex
	current state.State

	pendingMu sync.Mutex
	pending   [][]state.Action
	draining  bool

	subMu  sync.Mutex
	subs   map[uint64]func(state.State)
	nextID uint64

	middleware []Middleware
	chain      Handler
	memo       *selectors.Memo
	log        *zerolog.Logger
	metrics    *observability.Metrics
}

func New(opts ...Option) *Store {
	s := &Store{
		current: state.New(),
		subs:    make(map[uint64]func(state.State)),
		memo:    selectors.NewMemo(),
		log:     observability.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	h := Handler(s.reduce)
	for i := len(s.middleware) - 1; i >= 0; i-- {
		h = s.middleware[i](s, h)
	}
	s.chain = h
	return s
}

func (s *Store) GetState() state.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Memo is the derivation cache shared by everything reading this store.
func (s *Store) Memo() *selectors.Memo { return s.memo }

func (s *Store) Dispatch(a state.Action) {
	if a == nil {
		return
	}
	s.enqueue([]state.Action{a})
}

// DispatchBatch applies every action in order and notifies subscribers once.
func (s *Store) DispatchBatch(batch []state.Action) {
	if len(batch) == 0 {
		return
	}
	s.enqueue(slices.Clone(batch))
}

// Run executes a thunk against this store.
func (s *Store) Run(thunk actions.Thunk) {
	thunk(s.Dispatch, s.GetState)
}

func (s *Store) enqueue(batch []state.Action) {
	s.pendingMu.Lock()
	s.pending = append(s.pending, batch)
	if s.draining {
		s.pendingMu.Unlock()
		return
	}
	s.draining = true
	for len(s.pending) > 0 {
		next := s.pending[0]
		s.pending = s.pending[1:]
		s.pendingMu.Unlock()
		s.apply(next)
		s.pendingMu.Lock()
	}
	s.draining = false
	s.pendingMu.Unlock()
}

func (s *Store) apply(batch []state.Action) {
	for _, a := range batch {
		if a != nil {
			s.chain(a)
		}
	}
	current := s.GetState()
	if s.metrics != nil {
		s.metrics.SetCounts(len(current.Requests), len(s.memo.Displayed(current)))
	}
	s.notify(current)
}

func (s *Store) reduce(a state.Action) {
	s.mu.Lock()
	s.current = state.Reduce(s.current, a)
	s.mu.Unlock()
	s.metrics.ObserveAction(a.Kind())
	s.log.Trace().Str("kind", a.Kind()).Msg("action applied")
}

// Subscribe registers fn to run after every dispatch. The returned func
// removes it.
func (s *Store) Subscribe(fn func(state.State)) func() {
	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.subMu.Unlock()
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify(current state.State) {
	s.subMu.Lock()
	ids := make([]uint64, 0, len(s.subs))
	for id := range s.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	fns := make([]func(state.State), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.subs[id])
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(current)
	}
}

// Watch calls fn whenever the value picked by sel changes.
func Watch[T comparable](s *Store, sel func(state.State) T, fn func(prev, next T)) func() {
	var mu sync.Mutex
	prev := sel(s.GetState())
	return s.Subscribe(func(current state.State) {
		next := sel(current)
		mu.Lock()
		old := prev
		changed := old != next
		prev = next
		mu.Unlock()
		if changed {
			fn(old, next)
		}
	})
}
