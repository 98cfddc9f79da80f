package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"blockwatch/internal/analysis"
	"blockwatch/internal/config"
	"blockwatch/internal/geo"
	"blockwatch/internal/listener"
	"blockwatch/internal/logging"
	"blockwatch/internal/metrics"
	"blockwatch/internal/models"
	"blockwatch/internal/notify"
	"blockwatch/internal/output"
	"blockwatch/internal/pipeline"
	"blockwatch/internal/replay"
	"blockwatch/internal/reporting"
	"blockwatch/internal/supervisor"
	"blockwatch/internal/tui"
)

// How long the listener and metrics server get to return after a signal.
const shutdownTimeout = 5 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Int("port", 0, "UDP port to listen on (overrides config)")
	geoEndpoint := flag.String("geo-endpoint", "", "Geolocation endpoint, queried as <endpoint>/<ip> (overrides config)")
	noNotify := flag.Bool("no-notify", false, "Disable audible notifications")
	tuiMode := flag.Bool("tui", false, "Show a live dashboard instead of printing alerts")
	replayFile := flag.String("replay", "", "Replay firewall datagrams from a pcap file and exit")
	report := flag.Bool("report", false, "Write an HTML session report on exit")
	flag.Parse()

	if *tuiMode && *replayFile != "" {
		fmt.Fprintln(os.Stderr, "Error: -tui and -replay cannot be combined")
		return 1
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if applyFlags(cfg, *port, *geoEndpoint, *noNotify) {
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	// The dashboard owns the terminal, so logs go to a file while it runs.
	var logOut io.Writer = os.Stderr
	if *tuiMode {
		f, err := os.OpenFile("blockwatch.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: open log file: %v\n", err)
			return 1
		}
		defer f.Close()
		logOut = f
	}
	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
		Output: logOut,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stats := analysis.NewPipelineStats()
	if *report {
		defer writeReport(stats)
	}

	// Sinks
	var (
		primary output.Sink
		errs    output.ErrorReporter
		program *tea.Program
	)
	if *tuiMode {
		model := tui.NewDashboardModel(stats, cfg.Listen.Addr())
		program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		sink := tui.NewSink(program)
		primary, errs = sink, sink
	} else {
		console := output.NewConsole(os.Stdout, cfg.Output.Color)
		primary, errs = console, console
	}

	sinks := output.Multi{primary}
	if cfg.NATS.Enabled {
		natsSink, err := output.NewNATS(cfg.NATS.URL, cfg.NATS.Subject)
		if err != nil {
			logging.Error().Err(err).Msg("NATS sink unavailable")
			return 1
		}
		defer natsSink.Close()
		sinks = append(sinks, natsSink)
	}

	terminal, closeTerminal := notify.Terminal()
	defer closeTerminal()

	notifier := notify.New(notify.Options{
		Enabled:        cfg.Notify.Enabled,
		Bell:           cfg.Notify.Bell,
		Command:        cfg.Notify.Command,
		CommandTimeout: cfg.Notify.CommandTimeout,
		Terminal:       terminal,
	})

	p := pipeline.New(buildLocator(cfg.Geo), sinks, notifier, stats)

	if *replayFile != "" {
		res, err := replay.File(ctx, *replayFile, cfg.Listen.Port, p, errs)
		if err != nil {
			logging.Error().Err(err).Str("file", *replayFile).Msg("replay failed")
			return 1
		}
		logging.Info().Int("delivered", res.Delivered).Msg("replay complete")
		return 0
	}

	l, err := listener.New(cfg.Listen, p, errs)
	if err != nil {
		logging.Error().Err(err).Msg("failed to start listener")
		return 1
	}

	tree := supervisor.NewTree(logging.NewSlogLogger(), shutdownTimeout)
	tree.AddIngestService(l)

	if cfg.Metrics.Enabled {
		if err := metrics.RegisterPipeline(stats); err != nil {
			logging.Error().Err(err).Msg("failed to register pipeline metrics")
			return 1
		}
		tree.AddTelemetryService(metrics.NewServer(cfg.Metrics.Address))
	}

	logging.Info().
		Str("listen", cfg.Listen.Addr()).
		Bool("geo", cfg.Geo.Enabled).
		Bool("notify", cfg.Notify.Enabled).
		Bool("nats", cfg.NATS.Enabled).
		Msg("blockwatch started")

	if program == nil {
		if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor stopped")
			return 1
		}
		logging.Info().Msg("blockwatch stopped")
		return 0
	}

	treeCtx, cancelTree := context.WithCancel(ctx)
	treeErr := tree.ServeBackground(treeCtx)

	if _, err := program.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		logging.Error().Err(err).Msg("dashboard failed")
	}

	// Quitting the dashboard stops the daemon.
	cancelTree()
	<-treeErr
	logging.Info().Msg("blockwatch stopped")
	return 0
}

// applyFlags lays command-line overrides over the loaded config and reports
// whether anything changed.
func applyFlags(cfg *config.Config, port int, geoEndpoint string, noNotify bool) bool {
	changed := false
	if port != 0 {
		cfg.Listen.Port = port
		changed = true
	}
	if geoEndpoint != "" {
		cfg.Geo.Endpoint = geoEndpoint
		changed = true
	}
	if noNotify {
		cfg.Notify.Enabled = false
		changed = true
	}
	return changed
}

func buildLocator(cfg config.GeoConfig) geo.Locator {
	if !cfg.Enabled {
		return geo.Static(models.UnknownLocation)
	}
	return geo.NewHTTPLocator(geo.Options{
		Endpoint:        cfg.Endpoint,
		Timeout:         cfg.Timeout,
		RatePerMinute:   cfg.RatePerMinute,
		BreakerFailures: cfg.BreakerFailures,
		BreakerTimeout:  cfg.BreakerTimeout,
	})
}

func writeReport(stats *analysis.PipelineStats) {
	filename, err := reporting.GenerateSessionReport(stats, "html", ".")
	if err != nil {
		logging.Error().Err(err).Msg("failed to write session report")
		return
	}
	fmt.Printf("Session report saved to %s\n", filename)
}
