// Package enrich resolves long string bodies after they arrive and feeds the
// derived fields back into the store.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"

	"github.com/unkn0wn-root/netmon/internal/observability"
	"github.com/unkn0wn-root/netmon/internal/request"
	"github.com/unkn0wn-root/netmon/internal/state"
	"github.com/unkn0wn-root/netmon/internal/store"
	"github.com/unkn0wn-root/netmon/internal/telemetry"
)

const (
	PurposeImage  = "image_data_uri"
	PurposeUpload = "upload_headers"

	DefaultMaxConcurrent = 4
	DefaultTimeout       = 10 * time.Second
)

var ErrNoFetcher = errors.New("no string fetcher configured")

// Fetcher returns the full text behind a long string reference.
type Fetcher interface {
	Fetch(ctx context.Context, ref string) (string, error)
}

type FetcherFunc func(ctx context.Context, ref string) (string, error)

func (f FetcherFunc) Fetch(ctx context.Context, ref string) (string, error) {
	return f(ctx, ref)
}

type Options struct {
	Fetcher       Fetcher
	MaxConcurrent int64
	Timeout       time.Duration
	Logger        *zerolog.Logger
	Metrics       *observability.Metrics
	Instrumenter  telemetry.Instrumenter
}

type Enricher struct {
	fetcher Fetcher
	sem     *semaphore.Weighted
	timeout time.Duration
	log     *zerolog.Logger
	met     *observability.Metrics
	inst    telemetry.Instrumenter

	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func New(opts Options) *Enricher {
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = DefaultMaxConcurrent
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	e := &Enricher{
		fetcher: opts.Fetcher,
		sem:     semaphore.NewWeighted(limit),
		timeout: timeout,
		log:     opts.Logger,
		met:     opts.Metrics,
		inst:    opts.Instrumenter,
	}
	if e.log == nil {
		e.log = observability.Nop()
	}
	if e.inst == nil {
		e.inst = telemetry.Noop()
	}
	e.ctx, e.cancel = context.WithCancel(context.Background())
	return e
}

// Middleware starts fetches for updates that carry an image response body or
// request post data. Results are dispatched as follow-up updates.
func (e *Enricher) Middleware() store.Middleware {
	return func(api store.API, next store.Handler) store.Handler {
		return func(a state.Action) {
			next(a)

			upd, ok := a.(state.UpdateRequest)
			if !ok {
				return
			}
			if rc := upd.Data.ResponseContent; rc != nil {
				rec, found := api.GetState().ByID(upd.ID)
				if found && strings.Contains(rec.Data.MimeTypeOr(), "image/") {
					mime := rec.Data.MimeTypeOr()
					encoding := rc.Content.Encoding
					e.start(upd.ID, PurposeImage, rc.Content.Text, func(body string) {
						uri := DataURI(mime, encoding, body)
						api.Dispatch(state.UpdateRequest{
							ID:   upd.ID,
							Data: request.Data{ResponseContentDataURI: &uri},
						})
					})
				}
			}
			if pd := upd.Data.RequestPostData; pd != nil {
				e.start(upd.ID, PurposeUpload, pd.PostData, func(body string) {
					api.Dispatch(state.UpdateRequest{
						ID:   upd.ID,
						Data: request.Data{RequestHeadersFromUploadStream: UploadHeaders(body)},
					})
				})
			}
		}
	}
}

func (e *Enricher) start(id, purpose string, text request.LongString, deliver func(string)) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		e.log.Debug().
			Str("request_id", id).
			Str("purpose", purpose).
			Msg("enricher closed, fetch skipped")
		return
	}
	e.wg.Add(1)
	e.mu.Unlock()
	go func() {
		defer e.wg.Done()
		body, err := e.resolve(id, purpose, text)
		e.met.ObserveEnrich(purpose, err)
		if err != nil {
			e.log.Warn().Err(err).
				Str("request_id", id).
				Str("purpose", purpose).
				Msg("enrichment failed")
			return
		}
		deliver(body)
	}()
}

func (e *Enricher) resolve(id, purpose string, text request.LongString) (string, error) {
	if !text.IsRef() {
		return text.Text, nil
	}
	if e.fetcher == nil {
		return "", ErrNoFetcher
	}
	if err := e.sem.Acquire(e.ctx, 1); err != nil {
		return "", fmt.Errorf("wait for fetch slot: %w", err)
	}
	defer e.sem.Release(1)

	ctx, cancel := context.WithTimeout(e.ctx, e.timeout)
	defer cancel()
	ctx, span := e.inst.StartFetch(ctx, telemetry.FetchStart{
		RequestID: id,
		Ref:       text.Ref,
		Purpose:   purpose,
		Length:    text.Length,
	})
	body, err := e.fetcher.Fetch(ctx, text.Ref)
	if err != nil {
		err = fmt.Errorf("fetch %s: %w", text.Ref, err)
	}
	span.End(telemetry.FetchResult{Err: err, Bytes: len(body)})
	return body, err
}

// Wait blocks until every started fetch has finished.
func (e *Enricher) Wait() { e.wg.Wait() }

// Close cancels outstanding fetches and waits for them to return. Updates
// seen after Close start no new fetches.
func (e *Enricher) Close() error {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.cancel()
	e.wg.Wait()
	return nil
}
