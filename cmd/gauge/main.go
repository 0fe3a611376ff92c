package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"gauge/internal/core/analyze"
	"gauge/internal/core/config"
)

var (
	configPath = flag.String("config", defaultConfigPath, "Path to config file")
	watch      = flag.Bool("watch", false, "Keep running and re-analyze on file changes")
	jsonOut    = flag.Bool("json", false, "Emit the full report as JSON instead of a summary")
	lang       = flag.String("lang", "", "Force a language instead of path-based detection")
	workers    = flag.Int("workers", 0, "Analysis worker count (0 = auto)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	version    = flag.Bool("version", false, "Print version and exit")
)

const (
	VERSION           = "1.0.0"
	defaultConfigPath = "./gauge.toml"
)

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("gauge v%s\n", VERSION)
		os.Exit(0)
	}

	logLevel := slog.LevelInfo
	if *verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if *workers > 0 {
		cfg.Scan.Workers = *workers
	}

	roots := flag.Args()
	if len(roots) == 0 {
		roots = cfg.Paths
	}
	if len(roots) == 0 {
		roots = []string{"."}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app, err := NewApp(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}

	if code := run(ctx, app, roots, *watch, *jsonOut, *lang); code != 0 {
		cancel()
		os.Exit(code)
	}
}

// run executes one scan or the watch loop and closes the app before its exit
// code is acted on, so history writes and trace spans are flushed even when
// the process is about to exit non-zero.
func run(ctx context.Context, app *App, roots []string, watchMode, jsonOut bool, langHint string) int {
	defer app.Close(context.Background())

	emit := func(agg *analyze.Aggregate) {
		if jsonOut {
			if err := app.WriteJSON(agg); err != nil {
				app.logger.Error("failed to write JSON report", "error", err)
			}
			return
		}
		app.PrintSummary(ctx, agg)
	}

	if watchMode {
		if err := app.WatchAndRescan(ctx, roots, langHint, emit); err != nil {
			app.logger.Error("watch mode failed", "error", err)
			return 1
		}
		return 0
	}

	agg, err := app.RunOnce(ctx, roots, langHint)
	if err != nil {
		app.logger.Error("scan failed", "error", err)
		return 1
	}
	emit(agg)
	if !agg.AllSucceeded() {
		return 1
	}
	return 0
}

// loadConfig falls back to the checked-in example file (or the built-in
// defaults) only when the default config path does not exist; a config file
// that is present but broken stays an error.
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil && path == defaultConfigPath {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if _, exampleErr := os.Stat("./gauge.example.toml"); exampleErr == nil {
				return config.Load("./gauge.example.toml")
			}
			return config.Load("")
		}
	}
	return cfg, err
}
