package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/unkn0wn-root/netmon/internal/actions"
	"github.com/unkn0wn-root/netmon/internal/observability"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/state"
	"github.com/unkn0wn-root/netmon/internal/telemetry"
)

func started(ms float64) request.Data {
	return request.Data{StartedMillis: request.Ptr(ms), URL: request.Ptr("https://a.test/x")}
}

func TestDispatchAppliesAndNotifies(t *testing.T) {
	s := New()
	var seen []int
	unsubscribe := s.Subscribe(func(st state.State) {
		seen = append(seen, len(st.Requests))
	})

	s.Dispatch(actions.Add("a", started(1)))
	s.Dispatch(actions.Add("b", started(2)))
	unsubscribe()
	s.Dispatch(actions.Add("c", started(3)))

	if got := len(s.GetState().Requests); got != 3 {
		t.Fatalf("expected 3 requests, got %d", got)
	}
	if !slices.Equal(seen, []int{1, 2}) {
		t.Fatalf("unexpected notifications %v", seen)
	}
}

func TestDispatchBatchNotifiesOnce(t *testing.T) {
	s := New()
	calls := 0
	s.Subscribe(func(state.State) { calls++ })

	s.DispatchBatch([]state.Action{
		actions.Add("a", started(1)),
		actions.Update("a", request.Data{Status: request.Ptr("200")}),
		actions.Add("b", started(2)),
	})

	if calls != 1 {
		t.Fatalf("expected one notification, got %d", calls)
	}
	rec, ok := s.GetState().ByID("a")
	if !ok || rec.Data.StatusOr() != "200" {
		t.Fatalf("expected update applied in order, got %+v ok=%v", rec, ok)
	}
}

func TestDispatchFromSubscriberIsQueued(t *testing.T) {
	s := New()
	var order []string
	s.Subscribe(func(st state.State) {
		order = append(order, fmt.Sprintf("%d:%s", len(st.Requests), st.SelectedItem))
		if len(st.Requests) == 1 && st.SelectedItem == "" {
			s.Dispatch(actions.Select("a"))
		}
	})

	s.Dispatch(actions.Add("a", started(1)))

	want := []string{"1:", "1:a"}
	if !slices.Equal(order, want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
}

func TestMiddlewareWrapsReducerInOrder(t *testing.T) {
	var trace []string
	named := func(name string) Middleware {
		return func(api API, next Handler) Handler {
			return func(a state.Action) {
				trace = append(trace, name+">"+a.Kind())
				next(a)
				trace = append(trace, fmt.Sprintf("%s<%d", name, len(api.GetState().Requests)))
			}
		}
	}
	s := New(WithMiddleware(named("outer"), named("inner")))

	s.Dispatch(actions.Add("a", started(1)))

	want := []string{"outer>add_request", "inner>add_request", "inner<1", "outer<1"}
	if !slices.Equal(trace, want) {
		t.Fatalf("expected %v, got %v", want, trace)
	}
}

func TestMiddlewareDispatchRunsAfterCurrentAction(t *testing.T) {
	follow := func(api API, next Handler) Handler {
		return func(a state.Action) {
			next(a)
			if add, ok := a.(state.AddRequest); ok {
				api.Dispatch(actions.Update(add.ID, request.Data{Status: request.Ptr("204")}))
			}
		}
	}
	s := New(WithMiddleware(follow))

	s.Dispatch(actions.Add("a", started(1)))

	rec, _ := s.GetState().ByID("a")
	if rec.Data.StatusOr() != "204" {
		t.Fatalf("expected follow-up update, got %q", rec.Data.StatusOr())
	}
}

func TestWatchFiresOnChangeOnly(t *testing.T) {
	s := New()
	var changes [][2]string
	Watch(s, func(st state.State) string { return st.SelectedItem }, func(prev, next string) {
		changes = append(changes, [2]string{prev, next})
	})

	s.Dispatch(actions.Add("a", started(1)))
	s.Dispatch(actions.Add("b", started(2)))
	s.Dispatch(actions.Select("b"))
	s.Dispatch(actions.Select("b"))
	s.Dispatch(actions.Clear())

	want := [][2]string{{"", "b"}, {"b", ""}}
	if !slices.Equal(changes, want) {
		t.Fatalf("expected %v, got %v", want, changes)
	}
}

func TestRunSelectDelta(t *testing.T) {
	s := New()
	s.DispatchBatch([]state.Action{
		actions.Add("a", started(1)),
		actions.Add("b", started(2)),
		actions.Add("c", started(3)),
	})

	s.Run(actions.SelectDelta(actions.Last))
	if got := s.GetState().SelectedItem; got != "c" {
		t.Fatalf("expected last row selected, got %q", got)
	}
	s.Run(actions.SelectDelta(-1))
	if got := s.GetState().SelectedItem; got != "b" {
		t.Fatalf("expected previous row selected, got %q", got)
	}
}

func TestStoreRecordsMetrics(t *testing.T) {
	m := observability.NewMetrics()
	s := New(WithMetrics(m))

	s.Dispatch(actions.Add("a", started(1)))
	s.Dispatch(actions.Add("b", started(2)))
	s.Dispatch(actions.FilterOn("images"))

	if got := testutil.ToFloat64(m.Requests); got != 2 {
		t.Fatalf("expected requests gauge 2, got %v", got)
	}
	if got := testutil.ToFloat64(m.Displayed); got != 0 {
		t.Fatalf("expected no images displayed, got %v", got)
	}
	if got := testutil.ToFloat64(m.ActionsTotal.WithLabelValues("add_request")); got != 2 {
		t.Fatalf("expected 2 add actions, got %v", got)
	}
}

func TestConcurrentDispatchKeepsEveryAction(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Dispatch(actions.Add(fmt.Sprintf("r%d", i), started(float64(i))))
		}()
	}
	wg.Wait()

	if got := len(s.GetState().Requests); got != 32 {
		t.Fatalf("expected 32 requests, got %d", got)
	}
}

type manualTimer struct {
	mu      sync.Mutex
	fire    func()
	delay   time.Duration
	stopped int
}

func (m *manualTimer) afterFunc(d time.Duration, f func()) func() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fire = f
	m.delay = d
	return func() bool {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.stopped++
		return true
	}
}

func (m *manualTimer) trigger(t *testing.T) {
	t.Helper()
	m.mu.Lock()
	f := m.fire
	m.fire = nil
	m.mu.Unlock()
	if f == nil {
		t.Fatalf("no timer scheduled")
	}
	f()
}

func newLazyQueue(t *testing.T, s *Store, opts QueueOptions) (*Queue, *manualTimer) {
	t.Helper()
	opts.Lazy = true
	q := NewQueue(s, opts)
	timer := &manualTimer{}
	q.afterFunc = timer.afterFunc
	return q, timer
}

func TestQueueEagerModeAppliesImmediately(t *testing.T) {
	s := New()
	q := NewQueue(s, QueueOptions{})

	if err := q.Add("a", started(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	if got := len(s.GetState().Requests); got != 1 {
		t.Fatalf("expected immediate apply, got %d requests", got)
	}
	if q.Len() != 0 {
		t.Fatalf("expected nothing pending")
	}
}

func TestQueueLazyModeBatchesUntilTimer(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	inst, err := telemetry.New(telemetry.Config{ServiceName: "netmon-test"}, telemetry.WithSpanProcessor(recorder))
	if err != nil {
		t.Fatalf("telemetry: %v", err)
	}
	t.Cleanup(func() { _ = inst.Shutdown(context.Background()) })
	m := observability.NewMetrics()

	s := New()
	notifications := 0
	s.Subscribe(func(state.State) { notifications++ })
	q, timer := newLazyQueue(t, s, QueueOptions{Instrumenter: inst, Metrics: m})

	_ = q.Add("a", started(1))
	_ = q.Update("a", request.Data{Status: request.Ptr("200")})
	_ = q.Add("b", started(2))

	if got := len(s.GetState().Requests); got != 0 {
		t.Fatalf("expected nothing applied before refresh, got %d", got)
	}
	if timer.delay != DefaultRefreshRate {
		t.Fatalf("expected default refresh rate, got %v", timer.delay)
	}

	timer.trigger(t)

	st := s.GetState()
	if len(st.Requests) != 2 {
		t.Fatalf("expected 2 requests after refresh, got %d", len(st.Requests))
	}
	if rec, _ := st.ByID("a"); rec.Data.StatusOr() != "200" {
		t.Fatalf("expected queued update applied after add, got %q", rec.Data.StatusOr())
	}
	if notifications != 1 {
		t.Fatalf("expected one notification per flush, got %d", notifications)
	}

	spans := recorder.Ended()
	if len(spans) != 1 || spans[0].Name() != "netmon.queue.flush" {
		t.Fatalf("expected one flush span, got %d", len(spans))
	}
	if got := testutil.CollectAndCount(m.FlushActions); got != 1 {
		t.Fatalf("expected flush histogram to be collected, got %d", got)
	}
}

func TestQueueSetLazyFalseFlushes(t *testing.T) {
	s := New()
	q, _ := newLazyQueue(t, s, QueueOptions{RefreshRate: 10 * time.Millisecond})

	_ = q.Add("a", started(1))
	if len(s.GetState().Requests) != 0 {
		t.Fatalf("expected pending add")
	}
	q.SetLazy(false)
	if q.Lazy() {
		t.Fatalf("expected eager mode")
	}
	if len(s.GetState().Requests) != 1 {
		t.Fatalf("expected flush on switching to eager mode")
	}

	_ = q.Add("b", started(2))
	if len(s.GetState().Requests) != 2 {
		t.Fatalf("expected eager add to apply immediately")
	}
}

func TestQueueCloseFlushesThenRejects(t *testing.T) {
	s := New()
	q, timer := newLazyQueue(t, s, QueueOptions{})

	_ = q.Add("a", started(1))
	if err := q.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if len(s.GetState().Requests) != 1 {
		t.Fatalf("expected pending add to be flushed on close")
	}
	if timer.stopped == 0 {
		t.Fatalf("expected refresh timer to be stopped")
	}
	if err := q.Add("b", started(2)); !errors.Is(err, ErrQueueClosed) {
		t.Fatalf("expected ErrQueueClosed, got %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestQueuePushKeepsArrivalOrder(t *testing.T) {
	s := New()
	q, timer := newLazyQueue(t, s, QueueOptions{})

	_ = q.Add("a", started(1))
	_ = q.Push(actions.Select("a"))
	_ = q.Add("b", started(2))
	timer.trigger(t)

	st := s.GetState()
	if st.SelectedItem != "a" || len(st.Requests) != 2 {
		t.Fatalf("unexpected state after flush: selected=%q requests=%d", st.SelectedItem, len(st.Requests))
	}
}

type gatedInstrumenter struct {
	telemetry.Instrumenter
	once    sync.Once
	entered chan struct{}
	release chan struct{}
}

func (g *gatedInstrumenter) StartFlush(ctx context.Context, info telemetry.FlushStart) (context.Context, telemetry.FlushSpan) {
	g.once.Do(func() {
		close(g.entered)
		<-g.release
	})
	return g.Instrumenter.StartFlush(ctx, info)
}

func TestQueueOverlappingFlushesKeepOrder(t *testing.T) {
	s := New()
	inst := &gatedInstrumenter{
		Instrumenter: telemetry.Noop(),
		entered:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	q, timer := newLazyQueue(t, s, QueueOptions{Instrumenter: inst})

	if err := q.Add("r1", started(1)); err != nil {
		t.Fatalf("add: %v", err)
	}
	timer.mu.Lock()
	fire := timer.fire
	timer.mu.Unlock()

	timerDone := make(chan struct{})
	go func() {
		defer close(timerDone)
		fire()
	}()
	<-inst.entered

	eagerDone := make(chan error, 1)
	go func() {
		q.SetLazy(false)
		eagerDone <- q.Update("r1", request.Data{Status: request.Ptr("200")})
	}()
	time.Sleep(20 * time.Millisecond)
	close(inst.release)

	<-timerDone
	if err := <-eagerDone; err != nil {
		t.Fatalf("update: %v", err)
	}

	rec, ok := s.GetState().ByID("r1")
	if !ok || rec.Data.StatusOr() != "200" {
		t.Fatalf("expected update applied after its add, got status %q ok=%v", rec.Data.StatusOr(), ok)
	}
}
