package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/zero-day-ai/text2cypher/cmd/text2cypher/internal"
	"github.com/zero-day-ai/text2cypher/internal/config"
	"github.com/zero-day-ai/text2cypher/internal/events"
	"github.com/zero-day-ai/text2cypher/internal/observability"
	"github.com/zero-day-ai/text2cypher/internal/pipeline"
	"github.com/zero-day-ai/text2cypher/internal/resource"
	"github.com/zero-day-ai/text2cypher/pkg/version"
)

// managerOptions are appended to every resource manager the CLI builds.
// Tests use it to swap in mock graph clients.
var managerOptions []resource.Option

const shutdownTimeout = 5 * time.Second

// app is the per-invocation wiring shared by every command.
type app struct {
	cfg      *config.Config
	flags    *GlobalFlags
	logger   *slog.Logger
	manager  *resource.Manager
	stats    *pipeline.Stats
	recorder pipeline.StatsRecorder
	tracer   *sdktrace.TracerProvider
	metrics  *observability.Metrics
	out      io.Writer

	closeLog func() error
}

// newApp loads the configuration and builds logging, telemetry and the
// resource manager from it.
func newApp(cmd *cobra.Command) (*app, error) {
	flags, err := ParseGlobalFlags(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "failed to load configuration", err)
	}
	if flags.LogLevel != "" {
		cfg.Logging.Level = flags.LogLevel
	} else if flags.IsVerbose() {
		cfg.Logging.Level = "debug"
	}
	if flags.IsVerbose() {
		cfg.Events.Verbose = true
	}
	if flags.IsQuiet() {
		cfg.Events.Verbose = false
	}
	if flags.OutputFormat != "" {
		cfg.Events.Format = flags.OutputFormat
	}

	logOut, closeLog, err := observability.OpenOutput(cfg.Logging.Output)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "failed to open log output", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, logOut)
	if err != nil {
		_ = closeLog()
		return nil, internal.WrapError(internal.ExitConfigError, "failed to create logger", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a := &app{
		cfg:      cfg,
		flags:    flags,
		logger:   logger,
		stats:    pipeline.NewStats(),
		out:      cmd.OutOrStdout(),
		closeLog: closeLog,
	}

	if cfg.Tracing.ServiceVersion == "" {
		cfg.Tracing.ServiceVersion = version.Version
	}
	a.tracer, err = observability.InitTracing(ctx, cfg.Tracing)
	if err != nil {
		a.close(ctx)
		return nil, internal.WrapError(internal.ExitConfigError, "failed to initialize tracing", err)
	}

	a.metrics, err = observability.InitMetrics(ctx, cfg.Metrics)
	if err != nil {
		a.close(ctx)
		return nil, internal.WrapError(internal.ExitConfigError, "failed to initialize metrics", err)
	}
	pm, err := observability.NewPipelineMetrics(a.metrics.MeterProvider())
	if err != nil {
		a.close(ctx)
		return nil, internal.WrapError(internal.ExitConfigError, "failed to register pipeline metrics", err)
	}
	a.recorder = pipeline.MultiStats{a.stats, pm}

	opts := append([]resource.Option{resource.WithLogger(logger)}, managerOptions...)
	a.manager = resource.NewManager(cfg, opts...)

	logger.Debug("configuration loaded",
		"llms", len(cfg.LLMs),
		"databases", len(cfg.Databases),
		"variant", cfg.Pipeline.Variant,
		"fewshot_store", cfg.Fewshot.Store,
	)
	return a, nil
}

func loadConfig(flags *GlobalFlags) (*config.Config, error) {
	path := flags.ConfigFile
	if path == "" {
		home := flags.HomeDir
		if home == "" {
			home = os.Getenv("TEXT2CYPHER_HOME")
		}
		if home == "" {
			home = config.DefaultHomeDir()
		}
		path = config.DefaultConfigPath(home)
	}

	loader := config.NewConfigLoader(nil)
	if flags.ConfigFile != "" {
		return loader.Load(path)
	}
	return loader.LoadWithDefaults(path)
}

// engine builds a pipeline engine that reports to the app's stats.
func (a *app) engine(ctx context.Context, extra ...pipeline.EngineOption) (*pipeline.Engine, error) {
	opts := append([]pipeline.EngineOption{pipeline.WithStats(a.recorder)}, extra...)
	eng, err := a.manager.Engine(ctx, opts...)
	if err != nil {
		return nil, internal.WrapError(internal.ExitCodeFor(err), "failed to build pipeline", err)
	}
	return eng, nil
}

// sinks builds the event fanout for one command: a writer sink on w unless
// w is nil, plus NATS when a server is configured. A NATS server that
// cannot be reached is logged and skipped.
func (a *app) sinks(w io.Writer) (*events.Fanout, error) {
	format, err := events.ParseFormat(a.cfg.Events.Format)
	if err != nil {
		return nil, internal.WrapError(internal.ExitConfigError, "invalid event format", err)
	}

	var list []events.Sink
	if w != nil {
		list = append(list, events.NewWriterSink(w, format, events.WithVerbose(a.cfg.Events.Verbose)))
	}
	if nc := a.cfg.Events.NATS; nc.URL != "" {
		sink, err := events.DialNATS(events.NATSConfig{
			URL:           nc.URL,
			SubjectPrefix: nc.Subject,
			ClientName:    "text2cypher",
			Token:         nc.Token,
			MaxReconnects: nc.MaxReconnects,
			ReconnectWait: nc.ReconnectWait,
		})
		if err != nil {
			a.logger.Warn("event publishing to nats disabled", "url", nc.URL, "error", err)
		} else {
			list = append(list, sink)
		}
	}

	return events.NewFanout(list, events.WithErrorHandler(func(err error, ev pipeline.ProgressEvent) {
		a.logger.Warn("event sink rejected event", "event_type", ev.Type, "run_id", ev.RunID, "error", err)
	})), nil
}

// serveMetrics exposes the prometheus scrape endpoint until ctx is done.
// It is a no-op for other metric providers.
func (a *app) serveMetrics(ctx context.Context) {
	handler := a.metrics.Handler()
	if handler == nil {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(a.cfg.Metrics.Port)),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		a.logger.Info("serving metrics", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server failed", "error", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
}

// close releases connections and flushes telemetry.
func (a *app) close(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	if a.manager != nil {
		if err := a.manager.Close(ctx); err != nil {
			a.logger.Warn("failed to close resources", "error", err)
		}
	}
	if err := a.metrics.Shutdown(ctx); err != nil {
		a.logger.Warn("failed to shutdown metrics", "error", err)
	}
	if err := observability.ShutdownTracing(ctx, a.tracer); err != nil {
		a.logger.Warn("failed to shutdown tracing", "error", err)
	}
	if a.closeLog != nil {
		_ = a.closeLog()
	}
}

// defaultName returns the only key of m when flag is empty.
func defaultName[V any](flag, kind string, m map[string]V) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if len(m) == 1 {
		for name := range m {
			return name, nil
		}
	}
	if len(m) == 0 {
		return "", internal.NewCLIError(internal.ExitConfigError, fmt.Sprintf("no %s configured", kind))
	}
	return "", internal.NewCLIError(internal.ExitConfigError, fmt.Sprintf("several %ss configured, select one with --%s", kind, flagFor(kind)))
}

func flagFor(kind string) string {
	if kind == "database" {
		return "db"
	}
	return kind
}
