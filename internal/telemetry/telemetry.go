package telemetry

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

var tracerName = "github.com/unkn0wn-root/netmon/internal/telemetry"

type Instrumenter interface {
	StartFlush(ctx context.Context, info FlushStart) (context.Context, FlushSpan)
	StartFetch(ctx context.Context, info FetchStart) (context.Context, FetchSpan)
	Shutdown(ctx context.Context) error
}

// FlushStart describes one drain of the batching queue.
type FlushStart struct {
	Actions int
	Adds    int
	Updates int
	Lazy    bool
}

type FlushResult struct {
	Requests int
	Duration time.Duration
}

type FlushSpan interface {
	End(result FlushResult)
}

// FetchStart describes one long string lookup made for enrichment.
type FetchStart struct {
	RequestID string
	Ref       string
	Purpose   string
	Length    int
}

type FetchResult struct {
	Err   error
	Bytes int
}

type FetchSpan interface {
	End(result FetchResult)
}

type providerOptions struct {
	exporter       sdktrace.SpanExporter
	spanProcessors []sdktrace.SpanProcessor
}

type Option func(*providerOptions)

func WithSpanProcessor(proc sdktrace.SpanProcessor) Option {
	return func(opts *providerOptions) {
		if proc != nil {
			opts.spanProcessors = append(opts.spanProcessors, proc)
		}
	}
}

func WithExporter(exp sdktrace.SpanExporter) Option {
	return func(opts *providerOptions) {
		if exp != nil {
			opts.exporter = exp
		}
	}
}

type manager struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
	shutdown sync.Once
}

func New(cfg Config, opts ...Option) (Instrumenter, error) {
	builder := providerOptions{}
	for _, opt := range opts {
		opt(&builder)
	}

	if !cfg.Enabled() && builder.exporter == nil && len(builder.spanProcessors) == 0 {
		return Noop(), nil
	}

	res, err := resource.New(
		context.Background(),
		resource.WithSchemaURL(semconv.SchemaURL),
		resource.WithAttributes(buildResourceAttributes(cfg)...),
	)
	if err != nil {
		return nil, err
	}

	exporter := builder.exporter
	if exporter == nil && cfg.Enabled() {
		exporter, err = newExporter(cfg)
		if err != nil {
			return nil, err
		}
	}

	var tpOpts []sdktrace.TracerProviderOption
	tpOpts = append(tpOpts, sdktrace.WithResource(res))
	if exporter != nil {
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	}
	for _, proc := range builder.spanProcessors {
		tpOpts = append(tpOpts, sdktrace.WithSpanProcessor(proc))
	}

	tp := sdktrace.NewTracerProvider(tpOpts...)
	return &manager{tracer: tp.Tracer(tracerName), provider: tp}, nil
}

func (m *manager) StartFlush(ctx context.Context, info FlushStart) (context.Context, FlushSpan) {
	ctx, span := m.tracer.Start(
		ctx,
		"netmon.queue.flush",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int("netmon.flush.actions", info.Actions),
			attribute.Int("netmon.flush.adds", info.Adds),
			attribute.Int("netmon.flush.updates", info.Updates),
			attribute.Bool("netmon.flush.lazy", info.Lazy),
		),
	)
	return ctx, &flushSpan{span: span}
}

func (m *manager) StartFetch(ctx context.Context, info FetchStart) (context.Context, FetchSpan) {
	attrs := []attribute.KeyValue{
		attribute.String("netmon.request.id", info.RequestID),
		attribute.String("netmon.fetch.purpose", info.Purpose),
	}
	if strings.TrimSpace(info.Ref) != "" {
		attrs = append(attrs, attribute.String("netmon.fetch.ref", info.Ref))
	}
	if info.Length > 0 {
		attrs = append(attrs, attribute.Int("netmon.fetch.length", info.Length))
	}
	ctx, span := m.tracer.Start(
		ctx,
		"netmon.enrich."+info.Purpose,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	return ctx, &fetchSpan{span: span}
}

func (m *manager) Shutdown(ctx context.Context) error {
	if m == nil || m.provider == nil {
		return nil
	}
	var shutdownErr error
	m.shutdown.Do(func() {
		shutdownErr = m.provider.Shutdown(ctx)
	})
	return shutdownErr
}

type flushSpan struct {
	span trace.Span
}

func (fs *flushSpan) End(result FlushResult) {
	if fs == nil || fs.span == nil {
		return
	}
	fs.span.SetAttributes(
		attribute.Int("netmon.state.requests", result.Requests),
		attribute.Int64("netmon.flush.duration_us", result.Duration.Microseconds()),
	)
	fs.span.SetStatus(codes.Ok, "OK")
	fs.span.End()
}

type fetchSpan struct {
	span trace.Span
}

func (fs *fetchSpan) End(result FetchResult) {
	if fs == nil || fs.span == nil {
		return
	}
	if result.Err != nil {
		fs.span.RecordError(result.Err)
		fs.span.SetStatus(codes.Error, result.Err.Error())
	} else {
		fs.span.SetAttributes(attribute.Int("netmon.fetch.bytes", result.Bytes))
		fs.span.SetStatus(codes.Ok, "OK")
	}
	fs.span.End()
}

func Noop() Instrumenter {
	return noopInstrumenter{}
}

type noopInstrumenter struct{}

type noopFlushSpan struct{}

type noopFetchSpan struct{}

func (noopInstrumenter) StartFlush(ctx context.Context, _ FlushStart) (context.Context, FlushSpan) {
	return ctx, noopFlushSpan{}
}

func (noopInstrumenter) StartFetch(ctx context.Context, _ FetchStart) (context.Context, FetchSpan) {
	return ctx, noopFetchSpan{}
}

func (noopInstrumenter) Shutdown(context.Context) error { return nil }

func (noopFlushSpan) End(FlushResult) {}

func (noopFetchSpan) End(FetchResult) {}

func newExporter(cfg Config) (sdktrace.SpanExporter, error) {
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return nil, errors.New("telemetry endpoint is required")
	}

	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	clientOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(cfg.Endpoint),
	}
	if cfg.Insecure {
		clientOpts = append(clientOpts, otlptracegrpc.WithInsecure())
	}
	if len(cfg.Headers) > 0 {
		clientOpts = append(clientOpts, otlptracegrpc.WithHeaders(cfg.Headers))
	}

	client := otlptracegrpc.NewClient(clientOpts...)
	return otlptrace.New(ctx, client)
}

func buildResourceAttributes(cfg Config) []attribute.KeyValue {
	name := cfg.ServiceName
	if strings.TrimSpace(name) == "" {
		name = DefaultServiceName
	}
	attrs := []attribute.KeyValue{
		semconv.ServiceName(name),
	}
	if strings.TrimSpace(cfg.Version) != "" {
		attrs = append(attrs, semconv.ServiceVersion(cfg.Version))
	}
	return attrs
}
