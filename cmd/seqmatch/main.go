// Package main implements the entry point for the seqmatch command.
// It scans a stream of items against declarative sequence patterns,
// either from stdin or from a NATS subject.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"

	"github.com/c360/seqmatch/health"
	"github.com/c360/seqmatch/match"
	"github.com/c360/seqmatch/metric"
	"github.com/c360/seqmatch/pattern"
	"github.com/c360/seqmatch/pkg/timestamp"
	windowmatch "github.com/c360/seqmatch/processor/window_match"
	"github.com/c360/seqmatch/ruleset"
	"github.com/c360/seqmatch/store"
)

// Build information constants
const (
	Version   = "0.1.0"
	BuildTime = "dev"
	appName   = "seqmatch"
)

func main() {
	// Add panic recovery
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	// Run application with proper error handling
	if err := run(); err != nil {
		slog.Error("Application failed", "error", err, "exit_code", 1)
		os.Exit(1)
	}
}

func run() error {
	cliCfg, logger, shouldExit, err := initializeCLI()
	if shouldExit || err != nil {
		return err
	}

	patterns, err := loadRules(cliCfg.RulesPath, logger)
	if err != nil {
		return err
	}

	if cliCfg.Validate {
		slog.Info("Rules file is valid", "patterns", len(patterns))
		return nil
	}

	switch cliCfg.Mode {
	case "serve":
		return runServe(cliCfg, logger, patterns)
	default:
		return runScan(cliCfg, logger, patterns)
	}
}

// initializeCLI parses flags and sets up logging
func initializeCLI() (*CLIConfig, *slog.Logger, bool, error) {
	cliCfg := parseFlags()
	if err := validateFlags(cliCfg); err != nil {
		return nil, nil, false, fmt.Errorf("invalid flags: %w", err)
	}

	if cliCfg.ShowVersion {
		fmt.Printf("%s version %s\n", appName, Version)
		return nil, nil, true, nil
	}

	if cliCfg.ShowHelp {
		printDetailedHelp()
		return nil, nil, true, nil
	}

	logger := setupLogger(cliCfg.LogLevel, cliCfg.LogFormat)
	slog.SetDefault(logger)

	slog.Info("Starting seqmatch (sequence pattern matching)",
		"version", Version,
		"build_time", BuildTime,
		"mode", cliCfg.Mode,
		"rules_path", cliCfg.RulesPath)

	return cliCfg, logger, false, nil
}

// loadRules loads and compiles the pattern rules file
func loadRules(path string, logger *slog.Logger) ([]pattern.Pattern[string], error) {
	loader, err := ruleset.NewLoader(ruleset.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("create rules loader: %w", err)
	}

	patterns, err := loader.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load rules: %w", err)
	}

	slog.Info("Rules loaded", "path", path, "patterns", len(patterns))
	return patterns, nil
}

// runScan reads items from stdin, one per line, and prints match events
// as JSON lines on stdout.
func runScan(cliCfg *CLIConfig, logger *slog.Logger, patterns []pattern.Pattern[string]) error {
	matcher, err := match.New(cliCfg.WindowCapacity,
		match.WithLogger[string](logger),
		match.WithPatterns(patterns...))
	if err != nil {
		return fmt.Errorf("create matcher: %w", err)
	}

	out := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var matches int64
	for scanner.Scan() {
		result, err := matcher.ProcessItem(scanner.Text())
		if err != nil {
			slog.Error("Item scan failed", "position", matcher.Position(), "error", err)
			continue
		}
		if result == nil {
			continue
		}

		matches++
		event := windowmatch.MatchEvent{
			ID:        uuid.NewString(),
			Source:    cliCfg.Source,
			Pattern:   result.Pattern,
			Start:     result.Start,
			End:       result.End,
			Items:     result.Items,
			Captures:  result.Captures,
			Value:     result.Value,
			Extracted: result.Extracted,
			Timestamp: timestamp.Now(),
		}
		if err := out.Encode(event); err != nil {
			return fmt.Errorf("write match event: %w", err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	slog.Info("Scan complete",
		"items", matcher.ItemsProcessed(),
		"matches", matches)
	return nil
}

// runServe scans a NATS subject until interrupted.
func runServe(cliCfg *CLIConfig, logger *slog.Logger, patterns []pattern.Pattern[string]) error {
	ctx := context.Background()
	registry := metric.NewMetricsRegistry()

	matcher, err := match.New(cliCfg.WindowCapacity,
		match.WithLogger[string](logger),
		match.WithMetrics[string](registry, "seqmatch"),
		match.WithPatterns(patterns...))
	if err != nil {
		return fmt.Errorf("create matcher: %w", err)
	}

	conn, err := connectNATS(cliCfg.NATSURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	procOpts := []windowmatch.Option{
		windowmatch.WithLogger(logger),
		windowmatch.WithMetricsRegistry(registry),
	}

	journal, err := setupJournal(ctx, cliCfg, logger)
	if err != nil {
		return err
	}
	if journal != nil {
		defer func() { _ = journal.Close() }()
		procOpts = append(procOpts, windowmatch.WithJournal(journal))
	}

	procCfg := windowmatch.DefaultConfig()
	procCfg.InputSubject = cliCfg.InputSubject
	procCfg.OutputSubject = cliCfg.OutputSubject
	procCfg.Source = cliCfg.Source

	processor, err := windowmatch.NewProcessor(procCfg, matcher, conn, procOpts...)
	if err != nil {
		return fmt.Errorf("create processor: %w", err)
	}

	var monitor *health.Monitor
	if cliCfg.MetricsPort > 0 {
		monitor = health.NewMonitor()
		metricsServer := metric.NewServer(cliCfg.MetricsPort, "/metrics", registry)
		metricsServer.SetHealthMonitor(monitor)
		// Start blocks until the server is stopped, so it runs in its
		// own goroutine; Stop closes the listener on shutdown.
		go func() {
			if err := metricsServer.Start(); err != nil {
				slog.Error("Metrics server error", "error", err)
			}
		}()
		defer func() { _ = metricsServer.Stop() }()
		slog.Info("Metrics server started", "address", metricsServer.Address())
	}

	signalCtx, signalCancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer signalCancel()

	if err := processor.Start(signalCtx); err != nil {
		return fmt.Errorf("start processor: %w", err)
	}
	if monitor != nil {
		go pollHealth(signalCtx, monitor, processor)
	}
	slog.Info("seqmatch started successfully (scanning for matches)")

	<-signalCtx.Done()
	slog.Info("Received shutdown signal")

	if err := processor.Stop(cliCfg.ShutdownTimeout); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	slog.Info("seqmatch shutdown complete",
		"items_processed", processor.ItemsProcessed(),
		"matches_emitted", processor.MatchesEmitted())
	return nil
}

// pollHealth feeds the processor's health reports to the monitor backing
// the /health endpoint until shutdown.
func pollHealth(ctx context.Context, monitor *health.Monitor, processor *windowmatch.Processor) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		monitor.Update("processor", processor.Health())
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// connectNATS establishes the NATS connection with reconnect handling
func connectNATS(url string) (*nats.Conn, error) {
	slog.Info("Connecting to NATS", "url", url)
	conn, err := nats.Connect(url,
		nats.Name(appName),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}
	return conn, nil
}

// setupJournal opens the Postgres match journal when a DSN is configured
func setupJournal(ctx context.Context, cliCfg *CLIConfig, logger *slog.Logger) (*store.Store, error) {
	if cliCfg.PostgresDSN == "" {
		return nil, nil
	}

	slog.Info("Connecting to match journal")
	connCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	journal, err := store.Open(connCtx, cliCfg.PostgresDSN, store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open match journal: %w", err)
	}

	if err := journal.Migrate(connCtx); err != nil {
		_ = journal.Close()
		return nil, fmt.Errorf("migrate match journal: %w", err)
	}

	return journal, nil
}
