package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/rs/zerolog"

	"github.com/unkn0wn-root/netmon/internal/actions"
	"github.com/unkn0wn-root/netmon/internal/bindings"
	"github.com/unkn0wn-root/netmon/internal/config"
	"github.com/unkn0wn-root/netmon/internal/enrich"
	"github.com/unkn0wn-root/netmon/internal/filters"
	"github.com/unkn0wn-root/netmon/internal/observability"
	"github.com/unkn0wn-root/netmon/internal/selectors"
	"github.com/unkn0wn-root/netmon/internal/source"
	"github.com/unkn0wn-root/netmon/internal/state"
	"github.com/unkn0wn-root/netmon/internal/store"
	"github.com/unkn0wn-root/netmon/internal/telemetry"
	"github.com/unkn0wn-root/netmon/internal/ui"
	"github.com/unkn0wn-root/netmon/internal/waterfall"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var errNoSource = errors.New("no event source: pass --replay or --ws")

const (
	dumpFormatTable = "table"
	dumpFormatJSON  = "json"
)

type options struct {
	replay      string
	wsURL       string
	follow      bool
	dump        bool
	format      string
	details     string
	pngPath     string
	width       int
	logFile     string
	logLevel    string
	metricsAddr string
	showVersion bool
	telemetry   telemetry.Config
}

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "netmon: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	opts := options{telemetry: telemetry.ConfigFromEnv(os.Getenv)}
	opts.telemetry.Version = version

	fs := flag.NewFlagSet("netmon", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, heredoc.Doc(`
			Usage: netmon [flags]

			Inspect network activity from a recorded event log or a live feed.

			Examples:
			  netmon --replay session.jsonl
			  netmon --replay capture.jsonl --follow
			  netmon --ws ws://127.0.0.1:6080/events
			  netmon --replay session.jsonl --dump --png waterfall.png

			Flags:
		`))
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.replay, "replay", "", "Event log to replay (JSON lines, - for stdin)")
	fs.StringVar(&opts.wsURL, "ws", "", "WebSocket URL of a live event feed")
	fs.BoolVar(&opts.follow, "follow", false, "Keep reading the replay file as it grows")
	fs.BoolVar(&opts.dump, "dump", false, "Print the request list and exit instead of opening the UI")
	fs.StringVar(&opts.format, "format", dumpFormatTable, "Dump format: table or json")
	fs.StringVar(&opts.details, "details", "", "With --dump, print the details of this request id")
	fs.StringVar(&opts.pngPath, "png", "", "With --dump, write the waterfall background PNG here")
	fs.IntVar(&opts.width, "width", 160, "With --dump, table width in cells")
	fs.StringVar(&opts.logFile, "log-file", "", "Write JSON logs to this file")
	fs.StringVar(&opts.logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")
	fs.BoolVar(&opts.showVersion, "version", false, "Show netmon version")
	fs.StringVar(
		&opts.telemetry.Endpoint,
		"otel-endpoint",
		opts.telemetry.Endpoint,
		"OTLP collector endpoint for queue and enrichment spans",
	)
	fs.BoolVar(
		&opts.telemetry.Insecure,
		"otel-insecure",
		opts.telemetry.Insecure,
		"Disable TLS for OTLP trace export",
	)
	fs.StringVar(
		&opts.telemetry.ServiceName,
		"otel-service",
		opts.telemetry.ServiceName,
		"Override service.name resource attribute for exported spans",
	)
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	if fs.NArg() > 0 {
		return options{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}

	opts.telemetry.Endpoint = strings.TrimSpace(opts.telemetry.Endpoint)
	opts.telemetry.ServiceName = strings.TrimSpace(opts.telemetry.ServiceName)
	opts.format = strings.ToLower(strings.TrimSpace(opts.format))
	if opts.format != dumpFormatTable && opts.format != dumpFormatJSON {
		return options{}, fmt.Errorf("unknown dump format %q", opts.format)
	}
	if opts.follow && (opts.dump || opts.replay == "" || opts.replay == "-") {
		return options{}, errors.New("--follow needs a replay file and the interactive UI")
	}
	return opts, nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	if opts.showVersion {
		fmt.Fprintf(stdout, "netmon %s\n  commit: %s\n  built:  %s\n", version, commit, date)
		return nil
	}
	if opts.replay == "" && opts.wsURL == "" {
		return errNoSource
	}

	settings, handle, settingsErr := config.LoadSettings()
	if settingsErr != nil {
		settings = config.DefaultSettings()
	}
	if opts.logLevel == "" {
		opts.logLevel = settings.LogLevel
	}

	logger, closeLog, err := openLogger(opts, stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	if settingsErr != nil {
		logger.Warn().Err(settingsErr).Msg("settings load failed, using defaults")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	metrics := observability.NewMetrics()
	if opts.metricsAddr != "" {
		srv, err := observability.ListenMetrics(opts.metricsAddr, metrics, logger)
		if err != nil {
			return err
		}
		go func() {
			if err := srv.Serve(ctx); err != nil {
				logger.Error().Err(err).Msg("metrics server")
			}
		}()
	}

	inst, err := telemetry.New(opts.telemetry)
	if err != nil {
		logger.Warn().Err(err).Msg("telemetry init failed")
		inst = telemetry.Noop()
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := inst.Shutdown(shutdownCtx); err != nil {
			logger.Warn().Err(err).Msg("telemetry shutdown")
		}
	}()

	strs := source.NewStringTable()
	enricher := enrich.New(enrich.Options{
		Fetcher:      enrich.FetcherFunc(strs.Fetch),
		Logger:       logger,
		Metrics:      metrics,
		Instrumenter: inst,
	})
	defer func() { _ = enricher.Close() }()

	st := store.New(
		store.WithLogger(logger),
		store.WithMetrics(metrics),
		store.WithMiddleware(enricher.Middleware()),
		store.WithInitialState(initialState(settings)),
	)
	queue := store.NewQueue(st, store.QueueOptions{
		Lazy:         settings.LazyUpdate && !opts.dump,
		RefreshRate:  settings.RefreshInterval(),
		Instrumenter: inst,
		Metrics:      metrics,
		Logger:       logger,
	})
	sink := &source.StoreSink{Queue: queue, Strings: strs, Logger: logger, Metrics: metrics}
	feed := func(ctx context.Context) error {
		return runSource(ctx, opts, stdin, sink)
	}

	if opts.dump {
		if err := feed(ctx); err != nil {
			return err
		}
		if err := queue.Close(); err != nil {
			return err
		}
		enricher.Wait()
		return dump(opts, st.GetState(), stdout)
	}

	km, _, err := bindings.Load(config.Dir())
	if err != nil {
		logger.Warn().Err(err).Msg("bindings load failed, using defaults")
		km = bindings.DefaultMap()
	}
	if err := runUI(ctx, st, queue, km, logger, feed); err != nil {
		return err
	}

	settings.Filters = selectors.ActiveFilters(st.GetState())
	settings.LazyUpdate = queue.Lazy()
	if err := queue.Close(); err != nil {
		logger.Debug().Err(err).Msg("queue close")
	}
	// A file that failed to load is left for the user to fix.
	if settingsErr == nil {
		if err := config.SaveSettings(settings, handle); err != nil {
			logger.Warn().Err(err).Msg("settings save failed")
		}
	}
	return nil
}

// initialState restores persisted preferences onto a fresh state.
func initialState(settings config.Settings) state.State {
	s := state.New()
	s.WaterfallWidth = settings.WaterfallWidth
	for _, tag := range settings.Filters {
		if tag != filters.All {
			s = state.Reduce(s, actions.FilterOn(tag))
		}
	}
	return s
}

func openLogger(opts options, stderr io.Writer) (*zerolog.Logger, func(), error) {
	if opts.logFile != "" {
		f, err := os.OpenFile(opts.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open log file: %w", err)
		}
		return observability.NewLogger(opts.logLevel, f), func() { _ = f.Close() }, nil
	}
	if opts.dump {
		return observability.NewConsoleLogger(opts.logLevel, stderr), func() {}, nil
	}
	// The UI owns the terminal.
	return observability.Nop(), func() {}, nil
}

func runSource(ctx context.Context, opts options, stdin io.Reader, sink source.Sink) error {
	switch {
	case opts.wsURL != "":
		return source.Dial(ctx, opts.wsURL, sink)
	case opts.follow:
		return source.Follow(ctx, opts.replay, sink, 0)
	case opts.replay == "-":
		return source.Replay(ctx, stdin, sink)
	default:
		f, err := os.Open(opts.replay)
		if err != nil {
			return fmt.Errorf("open replay: %w", err)
		}
		defer f.Close()
		return source.Replay(ctx, f, sink)
	}
}

func runUI(
	ctx context.Context,
	st *store.Store,
	queue *store.Queue,
	km *bindings.Map,
	logger *zerolog.Logger,
	feed func(context.Context) error,
) error {
	model := ui.New(ui.Config{Store: st, Queue: queue, Bindings: km, Logger: logger})
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	feedCtx, stopFeed := context.WithCancel(ctx)
	defer stopFeed()
	go func() {
		if err := feed(feedCtx); err != nil {
			if feedCtx.Err() == nil {
				logger.Error().Err(err).Msg("event source")
				program.Send(ui.SourceError(err))
			}
			return
		}
		program.Send(ui.SourceDone())
	}()

	final, err := program.Run()
	if m, ok := final.(ui.Model); ok {
		m.Close()
	}
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func dump(opts options, st state.State, stdout io.Writer) error {
	if opts.pngPath != "" {
		if err := writePNG(opts.pngPath, st); err != nil {
			return err
		}
	}

	if opts.details != "" {
		rec, ok := st.ByID(opts.details)
		if !ok {
			return fmt.Errorf("request %q not found", opts.details)
		}
		if opts.format == dumpFormatJSON {
			return writeJSON(stdout, rec)
		}
		_, err := io.WriteString(stdout, ui.RenderDetails(rec))
		return err
	}

	if opts.format == dumpFormatJSON {
		return writeJSON(stdout, selectors.Displayed(st))
	}
	out := termenv.NewOutput(stdout)
	styled := !termenv.EnvNoColor() && out.ColorProfile() != termenv.Ascii
	_, err := io.WriteString(stdout, ui.RenderTable(st, opts.width, styled))
	return err
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode dump: %w", err)
	}
	return nil
}

func writePNG(path string, st state.State) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return waterfall.EncodePNG(f, waterfall.Background(st))
}
