package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	RulesPath       string
	Mode            string
	WindowCapacity  int
	NATSURL         string
	InputSubject    string
	OutputSubject   string
	Source          string
	PostgresDSN     string
	MetricsPort     int
	LogLevel        string
	LogFormat       string
	Debug           bool
	ShutdownTimeout time.Duration
	ShowVersion     bool
	ShowHelp        bool
	Validate        bool
}

func parseFlags() *CLIConfig {
	cfg := &CLIConfig{}

	// Define flags with environment variable fallback
	flag.StringVar(&cfg.RulesPath, "rules",
		getEnv("SEQMATCH_RULES", "rules.yaml"),
		"Path to pattern rules file (env: SEQMATCH_RULES)")

	flag.StringVar(&cfg.RulesPath, "r",
		getEnv("SEQMATCH_RULES", "rules.yaml"),
		"Path to pattern rules file (env: SEQMATCH_RULES)")

	flag.StringVar(&cfg.Mode, "mode",
		getEnv("SEQMATCH_MODE", "scan"),
		"Run mode: scan (stdin), serve (NATS) (env: SEQMATCH_MODE)")

	flag.IntVar(&cfg.WindowCapacity, "window",
		getEnvInt("SEQMATCH_WINDOW", 128),
		"Scrolling window capacity in items (env: SEQMATCH_WINDOW)")

	flag.StringVar(&cfg.NATSURL, "nats-url",
		getEnv("SEQMATCH_NATS_URL", "nats://localhost:4222"),
		"NATS server URL for serve mode (env: SEQMATCH_NATS_URL)")

	flag.StringVar(&cfg.InputSubject, "input-subject",
		getEnv("SEQMATCH_INPUT_SUBJECT", "items.raw"),
		"NATS subject to scan in serve mode (env: SEQMATCH_INPUT_SUBJECT)")

	flag.StringVar(&cfg.OutputSubject, "output-subject",
		getEnv("SEQMATCH_OUTPUT_SUBJECT", "matches.found"),
		"NATS subject for match events in serve mode (env: SEQMATCH_OUTPUT_SUBJECT)")

	flag.StringVar(&cfg.Source, "source",
		getEnv("SEQMATCH_SOURCE", ""),
		"Source tag attached to match events (env: SEQMATCH_SOURCE)")

	flag.StringVar(&cfg.PostgresDSN, "postgres-dsn",
		getEnv("SEQMATCH_POSTGRES_DSN", ""),
		"Postgres DSN for the match journal, empty to disable (env: SEQMATCH_POSTGRES_DSN)")

	flag.IntVar(&cfg.MetricsPort, "metrics-port",
		getEnvInt("SEQMATCH_METRICS_PORT", 0),
		"Prometheus metrics port, 0 to disable (env: SEQMATCH_METRICS_PORT)")

	flag.StringVar(&cfg.LogLevel, "log-level",
		getEnv("SEQMATCH_LOG_LEVEL", "info"),
		"Log level: debug, info, warn, error (env: SEQMATCH_LOG_LEVEL)")

	flag.StringVar(&cfg.LogFormat, "log-format",
		getEnv("SEQMATCH_LOG_FORMAT", "json"),
		"Log format: json, text (env: SEQMATCH_LOG_FORMAT)")

	flag.BoolVar(&cfg.Debug, "debug",
		getEnvBool("SEQMATCH_DEBUG", false),
		"Enable debug mode (env: SEQMATCH_DEBUG)")

	flag.DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout",
		getEnvDuration("SEQMATCH_SHUTDOWN_TIMEOUT", 30*time.Second),
		"Graceful shutdown timeout (env: SEQMATCH_SHUTDOWN_TIMEOUT)")

	flag.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")
	flag.BoolVar(&cfg.ShowVersion, "v", false, "Show version information")
	flag.BoolVar(&cfg.ShowHelp, "help", false, "Show help information")
	flag.BoolVar(&cfg.ShowHelp, "h", false, "Show help information")
	flag.BoolVar(&cfg.Validate, "validate", false, "Validate the rules file and exit")

	// Custom usage
	flag.Usage = func() {
		printDetailedHelp()
	}

	flag.Parse()

	// Override log level if debug is set
	if cfg.Debug {
		cfg.LogLevel = "debug"
	}

	return cfg
}

func validateFlags(cfg *CLIConfig) error {
	// Skip validation for special flags
	if cfg.ShowVersion || cfg.ShowHelp {
		return nil
	}

	// Validate rules file exists
	if _, err := os.Stat(cfg.RulesPath); err != nil {
		return fmt.Errorf("rules file not found: %s", cfg.RulesPath)
	}

	validModes := []string{"scan", "serve"}
	if !contains(validModes, cfg.Mode) {
		return fmt.Errorf("invalid mode: %s", cfg.Mode)
	}

	if cfg.WindowCapacity < 0 {
		return fmt.Errorf("invalid window capacity: %d", cfg.WindowCapacity)
	}

	// Validate log level
	validLevels := []string{"debug", "info", "warn", "error"}
	if !contains(validLevels, cfg.LogLevel) {
		return fmt.Errorf("invalid log level: %s", cfg.LogLevel)
	}

	// Validate log format
	validFormats := []string{"json", "text"}
	if !contains(validFormats, cfg.LogFormat) {
		return fmt.Errorf("invalid log format: %s", cfg.LogFormat)
	}

	// Validate metrics port
	if cfg.MetricsPort < 0 || cfg.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port: %d", cfg.MetricsPort)
	}

	return nil
}

func printDetailedHelp() {
	_, _ = fmt.Fprintf(os.Stderr, `%s - Sequence Pattern Matching

Usage: %s [options]

Options:
`, appName, os.Args[0])
	flag.PrintDefaults()
	_, _ = fmt.Fprintf(os.Stderr, `
Examples:
  # Scan stdin, one item per line
  tail -f /var/log/auth.log | %s --rules=auth.yaml

  # Serve a NATS subject with a Postgres journal
  %s --mode=serve --rules=auth.yaml \
      --nats-url=nats://localhost:4222 \
      --postgres-dsn="postgres://seqmatch@localhost/seqmatch?sslmode=disable"

  # Run with environment variables
  export SEQMATCH_RULES=/etc/seqmatch/rules.yaml
  export SEQMATCH_MODE=serve
  %s

  # Validate rules only
  %s --rules=auth.yaml --validate

Version: %s
Build: %s
`, os.Args[0], os.Args[0], os.Args[0], os.Args[0], Version, BuildTime)
}

// Environment variable helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Utility function to check if slice contains string
func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
